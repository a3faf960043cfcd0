package referencehandler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"hcm/internal/domain/directory"
	"hcm/internal/domain/identity"
	"hcm/internal/requestctx"
	"hcm/internal/transport/http/api"
	"hcm/internal/transport/http/middleware"
)

type Reference interface {
	ListDepartments(ctx context.Context) ([]directory.Department, error)
	ListEmployeeTypes(ctx context.Context) ([]directory.EmployeeType, error)
	DesignationsForDepartment(ctx context.Context, departmentID int) ([]directory.Designation, error)
}

type Handler struct {
	Reference Reference
	Perms     middleware.PermissionStore
}

func NewHandler(ref Reference, perms middleware.PermissionStore) *Handler {
	return &Handler{Reference: ref, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequirePermission(identity.PermReferenceRead, h.Perms))
		r.Get("/departments", h.handleDepartments)
		r.Get("/departments/{departmentID}/designations", h.handleDesignations)
		r.Get("/employee-types", h.handleEmployeeTypes)
	})
}

func (h *Handler) handleDepartments(w http.ResponseWriter, r *http.Request) {
	out, err := h.Reference.ListDepartments(r.Context())
	if err != nil {
		requestctx.Logger(r.Context()).Error("list departments failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "department_list_failed", "failed to list departments", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleEmployeeTypes(w http.ResponseWriter, r *http.Request) {
	out, err := h.Reference.ListEmployeeTypes(r.Context())
	if err != nil {
		requestctx.Logger(r.Context()).Error("list employee types failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "employee_type_list_failed", "failed to list employee types", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDesignations(w http.ResponseWriter, r *http.Request) {
	departmentID, err := strconv.Atoi(chi.URLParam(r, "departmentID"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "department id must be an integer", middleware.GetRequestID(r.Context()))
		return
	}
	out, err := h.Reference.DesignationsForDepartment(r.Context(), departmentID)
	if err != nil {
		requestctx.Logger(r.Context()).Error("list designations failed", "departmentId", departmentID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "designation_list_failed", "failed to list designations", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}
