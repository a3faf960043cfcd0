package audithandler

import (
	"context"
	"encoding/csv"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"hcm/internal/domain/audit"
	"hcm/internal/domain/identity"
	"hcm/internal/transport/http/middleware"
)

type fakeEvents struct {
	filter  audit.Filter
	limit   int
	offset  int
	listErr error
}

func (f *fakeEvents) Count(context.Context, audit.Filter) (int, error) {
	return 42, nil
}

func (f *fakeEvents) List(_ context.Context, filter audit.Filter, limit, offset int) ([]audit.Event, error) {
	f.filter, f.limit, f.offset = filter, limit, offset
	if f.listErr != nil {
		return nil, f.listErr
	}
	return []audit.Event{{
		ID:            7,
		ActorID:       "acc-1",
		Action:        audit.ActionEmployeeUpdate,
		EntityType:    audit.EntityEmployee,
		EntityID:      "3",
		ChangedFields: []string{"salary", "iban"},
		CreatedAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}}, nil
}

func serve(events Events, role, path string) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(middleware.WithUser(r.Context(), identity.UserContext{AccountID: "acc-1", Role: role})))
		})
	})
	NewHandler(events, identity.NewPolicy()).RegisterRoutes(router)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestListEvents(t *testing.T) {
	events := &fakeEvents{}
	rec := serve(events, identity.RoleHRAdmin, "/audit?action=employee.update&entityId=3&limit=1000&offset=5")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Total-Count") != "42" {
		t.Fatalf("expected total header, got %q", rec.Header().Get("X-Total-Count"))
	}
	if events.filter.Action != audit.ActionEmployeeUpdate || events.filter.EntityID != "3" {
		t.Fatalf("unexpected filter %+v", events.filter)
	}
	if events.limit != 500 || events.offset != 5 {
		t.Fatalf("expected clamped paging, got %d/%d", events.limit, events.offset)
	}
}

func TestListEventsRequiresAuditPermission(t *testing.T) {
	rec := serve(&fakeEvents{}, identity.RoleManager, "/audit")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestListEventsFailure(t *testing.T) {
	rec := serve(&fakeEvents{listErr: errors.New("db down")}, identity.RoleHRAdmin, "/audit")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestExportEvents(t *testing.T) {
	rec := serve(&fakeEvents{}, identity.RoleHRAdmin, "/audit/export")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "text/csv" {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}
	rows, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 2 || rows[1][7] != "salary;iban" || rows[1][8] != "2026-01-02T03:04:05Z" {
		t.Fatalf("unexpected rows %v", rows)
	}
}
