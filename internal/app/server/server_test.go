package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"hcm/internal/domain/audit"
	"hcm/internal/domain/directory"
	"hcm/internal/domain/directory/directorytest"
	"hcm/internal/domain/identity"
	"hcm/internal/platform/config"
	"hcm/internal/platform/jobs"
	"hcm/internal/platform/metrics"
)

type stubIdentity struct{}

func (stubIdentity) Authenticate(_ context.Context, email, _ string, _ string) (identity.LoginResult, error) {
	return identity.LoginResult{Token: "t", Email: email, Role: identity.RoleEmployee}, nil
}

func (stubIdentity) SetupMFA(context.Context, string) (identity.MFASetup, error) {
	return identity.MFASetup{}, nil
}

func (stubIdentity) EnableMFA(context.Context, string, string) error  { return nil }
func (stubIdentity) DisableMFA(context.Context, string, string) error { return nil }

type stubEvents struct{}

func (stubEvents) Count(context.Context, audit.Filter) (int, error) { return 0, nil }
func (stubEvents) List(context.Context, audit.Filter, int, int) ([]audit.Event, error) {
	return nil, nil
}

type stubDays struct{}

func (stubDays) WorkingDays(context.Context, string, int) (int, error) { return 20, nil }

func newTestApp(t *testing.T) (*App, *identity.TokenIssuer) {
	t.Helper()
	cfg := config.Load()
	cfg.MetricsEnabled = true
	cfg.LoginRateLimitPerMinute = 2
	cfg.MutationRateLimitPerMinute = 1
	cfg.MaxBodyBytes = 4096

	tokens := identity.NewTokenIssuer("test-secret", time.Hour)
	store := directorytest.NewMemoryStore()
	store.Add(directory.Employee{
		FullName: "Jane Roe", Email: "jane@example.com", DepartmentID: 2, DesignationID: 4,
		EmployeeTypeID: 1, Salary: 1000, Country: "Bulgaria", CountryCode: "bg",
	})
	dir := directory.NewService(store, directorytest.NewAccounts(), nil, directory.NewValidator(time.Now))

	app := &App{Config: cfg, Metrics: metrics.New()}
	app.Router = app.routes(routeDeps{
		tokens:    tokens,
		policy:    identity.NewPolicy(),
		identity:  stubIdentity{},
		directory: dir,
		audit:     stubEvents{},
		days:      stubDays{},
	})
	return app, tokens
}

func TestRouterHealthAndMetrics(t *testing.T) {
	app, _ := newTestApp(t)

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected healthz response %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected request id header")
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatal("expected security headers")
	}

	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "hcm_http_requests_total") {
		t.Fatalf("expected request counter in metrics output, got %d", rec.Code)
	}
}

func TestRouterLoginIsRateLimited(t *testing.T) {
	app, _ := newTestApp(t)
	login := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"a@example.com","password":"secret"}`))
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, req)
		return rec.Code
	}
	for i := 0; i < 2; i++ {
		if code := login(); code != http.StatusOK {
			t.Fatalf("attempt %d: expected 200, got %d", i+1, code)
		}
	}
	if code := login(); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", code)
	}
}

func TestRouterEnforcesAuthentication(t *testing.T) {
	app, tokens := newTestApp(t)

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/employees", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/mfa/setup", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for mfa setup without token, got %d", rec.Code)
	}

	token, _, err := tokens.Issue(identity.Account{ID: "acc-1", Email: "hr@example.com", Role: identity.RoleHRAdmin})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/employees", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rec.Code)
	}
	var body struct {
		Data struct {
			Total int `json:"total"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.Total != 1 {
		t.Fatalf("expected one employee, got %d", body.Data.Total)
	}
}

func TestRouterThrottlesEmployeeWrites(t *testing.T) {
	app, tokens := newTestApp(t)
	token, _, err := tokens.Issue(identity.Account{ID: "acc-1", Email: "hr@example.com", Role: identity.RoleHRAdmin})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	send := func(method, path string) int {
		req := httptest.NewRequest(method, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send(http.MethodDelete, "/api/v1/employees/999"); code == http.StatusTooManyRequests {
		t.Fatal("expected first write to reach the handler")
	}
	if code := send(http.MethodDelete, "/api/v1/employees/998"); code != http.StatusTooManyRequests {
		t.Fatalf("expected second write to be throttled, got %d", code)
	}
	if code := send(http.MethodGet, "/api/v1/employees"); code != http.StatusOK {
		t.Fatalf("expected reads to stay open, got %d", code)
	}
}

func TestAppAgainstDatabase(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	cfg := config.Load()
	cfg.DatabaseURL = dsn
	cfg.JWTSecret = "integration-secret"
	cfg.Environment = "test"
	cfg.RunMigrations = true
	cfg.RunSeed = true

	ctx := context.Background()
	app, err := New(ctx, cfg)
	if err != nil {
		t.Fatalf("app init: %v", err)
	}
	defer app.Close()

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected ready, got %d", rec.Code)
	}

	payload, _ := json.Marshal(map[string]string{"email": "john@example.com", "password": "John123!"})
	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload)))
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	var login struct {
		Data identity.LoginResult `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &login); err != nil {
		t.Fatalf("decode login: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/employees?search=a&page=3", nil)
	req.Header.Set("Authorization", "Bearer "+login.Data.Token)
	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list failed: %d %s", rec.Code, rec.Body.String())
	}
	var page struct {
		Data struct {
			Items      []json.RawMessage `json:"items"`
			Total      int               `json:"total"`
			TotalPages int               `json:"totalPages"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.Data.Total != 12 || page.Data.TotalPages != 3 || len(page.Data.Items) != 2 {
		t.Fatalf("unexpected page %+v", page.Data)
	}
}

type countingPruner struct{ calls int }

func (p *countingPruner) Prune(context.Context, time.Time) (int64, error) {
	p.calls++
	return 0, nil
}

func TestHousekeepingSchedulesAuditRetentionOnlyWhenConfigured(t *testing.T) {
	cfg := config.Config{HousekeepingInterval: time.Hour, IdempotencyTTL: 24 * time.Hour}
	idem, auditLog := &countingPruner{}, &countingPruner{}

	if tasks := Housekeeping(cfg, nil, idem, auditLog).Tasks(); len(tasks) != 1 || tasks[0].Type != jobs.JobIdempotencyExpiry {
		t.Fatalf("expected only idempotency expiry, got %+v", tasks)
	}

	cfg.AuditRetention = 90 * 24 * time.Hour
	svc := Housekeeping(cfg, nil, idem, auditLog)
	if len(svc.Tasks()) != 2 {
		t.Fatalf("expected audit retention task, got %d tasks", len(svc.Tasks()))
	}
	for _, task := range svc.Tasks() {
		if _, err := svc.RunNow(context.Background(), task.Type, task.Run); err != nil {
			t.Fatalf("%s: %v", task.Type, err)
		}
	}
	if idem.calls != 1 || auditLog.calls != 1 {
		t.Fatalf("expected each pruner once, got %d/%d", idem.calls, auditLog.calls)
	}
}
