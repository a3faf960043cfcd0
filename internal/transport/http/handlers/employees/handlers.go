package employeeshandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"hcm/internal/domain/directory"
	"hcm/internal/domain/identity"
	"hcm/internal/platform/crypto"
	"hcm/internal/platform/workingdays"
	"hcm/internal/requestctx"
	"hcm/internal/transport/http/api"
	"hcm/internal/transport/http/middleware"
	"hcm/internal/transport/http/shared"
)

const (
	defaultPage     = 1
	defaultPageSize = 5
	hireEndpoint    = "POST /employees"
)

type Directory interface {
	ListEmployees(ctx context.Context, scope directory.Scope, filter directory.Filter, page directory.PageRequest) (directory.Page, error)
	Employee(ctx context.Context, scope directory.Scope, id int) (*directory.Employee, error)
	Self(ctx context.Context, email string) (*directory.Employee, error)
	Hire(ctx context.Context, in directory.EmployeeInput, role, password string) (*directory.Employee, error)
	Amend(ctx context.Context, scope directory.Scope, id int, in directory.EmployeeInput, role, newPassword string) (*directory.Employee, error)
	Dismiss(ctx context.Context, scope directory.Scope, id int) error
}

type WorkingDays interface {
	WorkingDays(ctx context.Context, countryCode string, month int) (int, error)
}

type Idempotency interface {
	Check(ctx context.Context, accountID, endpoint, key, requestHash string) (json.RawMessage, bool, error)
	Save(ctx context.Context, accountID, endpoint, key, requestHash string, response json.RawMessage) error
}

// CipherFailures counts ciphertext that could not be decrypted.
type CipherFailures interface {
	CipherFailure()
}

type Handler struct {
	Directory   Directory
	Perms       middleware.PermissionStore
	WorkingDays WorkingDays
	Idempotency Idempotency
	Failures    CipherFailures
	Now         func() time.Time
}

func NewHandler(dir Directory, perms middleware.PermissionStore, days WorkingDays, idem Idempotency, failures CipherFailures) *Handler {
	return &Handler{Directory: dir, Perms: perms, WorkingDays: days, Idempotency: idem, Failures: failures, Now: time.Now}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/me", func(r chi.Router) {
		r.Use(middleware.RequirePermission(identity.PermEmployeesSelf, h.Perms))
		r.Get("/", h.handleMe)
		r.Get("/profile.pdf", h.handleMyProfilePDF)
	})
	r.Route("/employees", func(r chi.Router) {
		r.With(middleware.RequirePermission(identity.PermEmployeesRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(identity.PermEmployeesCreate, h.Perms)).Post("/", h.handleCreate)
		r.Route("/{employeeID}", func(r chi.Router) {
			r.With(middleware.RequirePermission(identity.PermEmployeesRead, h.Perms)).Get("/", h.handleGet)
			r.With(middleware.RequirePermission(identity.PermEmployeesWrite, h.Perms)).Put("/", h.handleUpdate)
			r.With(middleware.RequirePermission(identity.PermEmployeesDelete, h.Perms)).Delete("/", h.handleDelete)
			r.With(middleware.RequirePermission(identity.PermEmployeesRead, h.Perms)).Get("/profile.pdf", h.handleProfilePDF)
			r.With(middleware.RequirePermission(identity.PermEmployeesRead, h.Perms)).Get("/working-days", h.handleWorkingDays)
		})
	})
}

type employeePayload struct {
	directory.EmployeeInput
	Role     string `json:"role"`
	Password string `json:"password"`
}

type pageResponse struct {
	Items      []directory.Employee `json:"items"`
	Total      int                  `json:"total"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"pageSize"`
	TotalPages int                  `json:"totalPages"`
}

// scopeFor resolves the caller's visibility. Managers are bound to the
// department of their own employee record.
func (h *Handler) scopeFor(ctx context.Context, user identity.UserContext) (directory.Scope, error) {
	departmentID := 0
	if user.Role == identity.RoleManager {
		self, err := h.Directory.Self(ctx, user.Email)
		if err != nil {
			return directory.Scope{}, err
		}
		if self != nil {
			departmentID = self.DepartmentID
		}
	}
	return directory.ScopeFor(user.Role, departmentID)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	emp, err := h.Directory.Self(r.Context(), user.Email)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	directory.RedactFor(emp, user)
	api.Success(w, map[string]any{
		"account":  map[string]string{"id": user.AccountID, "email": user.Email, "role": user.Role},
		"employee": emp,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMyProfilePDF(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	emp, err := h.Directory.Self(r.Context(), user.Email)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if emp == nil {
		h.fail(w, r, directory.ErrNotFound)
		return
	}
	h.writePDF(w, r, *emp)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	v := shared.NewValidator()
	filter := directory.Filter{
		Search:         r.URL.Query().Get("search"),
		DepartmentID:   shared.QueryInt(r, v, "departmentId", 0),
		EmployeeTypeID: shared.QueryInt(r, v, "employeeTypeId", 0),
	}
	page := directory.PageRequest{
		Number: shared.QueryInt(r, v, "page", defaultPage),
		Size:   shared.QueryInt(r, v, "pageSize", defaultPageSize),
	}
	if v.Reject(w, requestID) {
		return
	}

	scope, err := h.scopeFor(r.Context(), user)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	result, err := h.Directory.ListEmployees(r.Context(), scope, filter, page)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	for i := range result.Items {
		directory.RedactFor(&result.Items[i], user)
	}
	api.Success(w, pageResponse{
		Items:      result.Items,
		Total:      result.Total,
		Page:       result.Number,
		PageSize:   result.Size,
		TotalPages: result.TotalPages(),
	}, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	emp, user, ok := h.loadInScope(w, r)
	if !ok {
		return
	}
	directory.RedactFor(emp, user)
	api.Success(w, emp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	raw, payload, ok := decodePayload(w, r)
	if !ok {
		return
	}

	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	hash := middleware.RequestHash(raw)
	if key != "" && h.Idempotency != nil {
		stored, found, err := h.Idempotency.Check(r.Context(), user.AccountID, hireEndpoint, key, hash)
		if errors.Is(err, middleware.ErrIdempotencyConflict) {
			api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key reused with a different payload", requestID)
			return
		}
		if err != nil {
			requestctx.Logger(r.Context()).Warn("idempotency check failed", "err", err)
		}
		if found {
			api.Created(w, stored, requestID)
			return
		}
	}

	emp, err := h.Directory.Hire(r.Context(), payload.EmployeeInput, payload.Role, payload.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	directory.RedactFor(emp, user)

	if key != "" && h.Idempotency != nil {
		if body, err := json.Marshal(emp); err == nil {
			if err := h.Idempotency.Save(r.Context(), user.AccountID, hireEndpoint, key, hash, body); err != nil {
				requestctx.Logger(r.Context()).Warn("idempotency save failed", "err", err)
			}
		}
	}
	api.Created(w, emp, requestID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	id, ok := employeeID(w, r)
	if !ok {
		return
	}
	_, payload, ok := decodePayload(w, r)
	if !ok {
		return
	}
	scope, err := h.scopeFor(r.Context(), user)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	emp, err := h.Directory.Amend(r.Context(), scope, id, payload.EmployeeInput, payload.Role, payload.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	directory.RedactFor(emp, user)
	api.Success(w, emp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	id, ok := employeeID(w, r)
	if !ok {
		return
	}
	scope, err := h.scopeFor(r.Context(), user)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Directory.Dismiss(r.Context(), scope, id); err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleProfilePDF(w http.ResponseWriter, r *http.Request) {
	emp, _, ok := h.loadInScope(w, r)
	if !ok {
		return
	}
	h.writePDF(w, r, *emp)
}

func (h *Handler) handleWorkingDays(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	month := shared.QueryInt(r, v, "month", int(h.Now().Month()))
	if month < 1 || month > 12 {
		v.Add("month", "must be between 1 and 12")
	}
	if v.Reject(w, requestID) {
		return
	}

	emp, _, ok := h.loadInScope(w, r)
	if !ok {
		return
	}
	if emp.CountryCode == "" {
		api.Fail(w, http.StatusUnprocessableEntity, "country_missing", "employee has no country code", requestID)
		return
	}
	if h.WorkingDays == nil {
		api.Fail(w, http.StatusServiceUnavailable, "working_days_unavailable", "working days lookup is not configured", requestID)
		return
	}
	days, err := h.WorkingDays.WorkingDays(r.Context(), emp.CountryCode, month)
	if err != nil {
		if errors.Is(err, workingdays.ErrNotConfigured) {
			api.Fail(w, http.StatusServiceUnavailable, "working_days_unavailable", "working days lookup is not configured", requestID)
			return
		}
		requestctx.Logger(r.Context()).Warn("working days lookup failed", "employeeId", emp.ID, "err", err)
		api.Fail(w, http.StatusBadGateway, "working_days_failed", "working days lookup failed", requestID)
		return
	}
	api.Success(w, map[string]any{
		"employeeId":  emp.ID,
		"countryCode": emp.CountryCode,
		"month":       month,
		"workingDays": days,
	}, requestID)
}

func (h *Handler) loadInScope(w http.ResponseWriter, r *http.Request) (*directory.Employee, identity.UserContext, bool) {
	user, _ := middleware.GetUser(r.Context())
	id, ok := employeeID(w, r)
	if !ok {
		return nil, user, false
	}
	scope, err := h.scopeFor(r.Context(), user)
	if err != nil {
		h.fail(w, r, err)
		return nil, user, false
	}
	emp, err := h.Directory.Employee(r.Context(), scope, id)
	if err != nil {
		h.fail(w, r, err)
		return nil, user, false
	}
	return emp, user, true
}

func (h *Handler) writePDF(w http.ResponseWriter, r *http.Request, emp directory.Employee) {
	user, _ := middleware.GetUser(r.Context())
	directory.RedactFor(&emp, user)

	var buf bytes.Buffer
	if err := directory.RenderProfilePDF(&buf, emp, h.Now()); err != nil {
		requestctx.Logger(r.Context()).Error("profile pdf render failed", "employeeId", emp.ID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "pdf_failed", "failed to render profile", middleware.GetRequestID(r.Context()))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=employee-%d.pdf", emp.ID))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		requestctx.Logger(r.Context()).Warn("profile pdf write failed", "err", err)
	}
}

// fail maps domain errors onto the response envelope.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	v := shared.NewValidator()
	if v.Merge(err) {
		shared.FailValidation(w, requestID, v.Issues())
		return
	}

	var perr *directory.PersistenceError
	var cerr *crypto.CipherError
	switch {
	case errors.Is(err, directory.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", requestID)
	case errors.Is(err, directory.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "outside your department", requestID)
	case errors.As(err, &cerr):
		if h.Failures != nil {
			h.Failures.CipherFailure()
		}
		requestctx.Logger(r.Context()).Error("stored ciphertext unreadable", "reason", cerr.Reason)
		api.Fail(w, http.StatusInternalServerError, "cipher_error", "stored data could not be decrypted", requestID)
	case errors.As(err, &perr) && perr.UniqueViolation():
		api.Fail(w, http.StatusConflict, "employee_exists", "employee email already exists", requestID)
	case errors.As(err, &perr) && perr.ForeignKeyViolation():
		api.Fail(w, http.StatusConflict, "invalid_reference", "department, designation or employee type does not exist", requestID)
	default:
		requestctx.Logger(r.Context()).Error("employee request failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "request failed", requestID)
	}
}

func employeeID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "employeeID"))
	if err != nil || id <= 0 {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "employee id must be a positive integer", middleware.GetRequestID(r.Context()))
		return 0, false
	}
	return id, true
}

func decodePayload(w http.ResponseWriter, r *http.Request) ([]byte, employeePayload, bool) {
	var payload employeePayload
	var raw bytes.Buffer
	decoder := json.NewDecoder(io.TeeReader(r.Body, &raw))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return nil, payload, false
	}
	return raw.Bytes(), payload, true
}
