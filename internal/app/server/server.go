package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hcm/internal/domain/audit"
	"hcm/internal/domain/directory"
	"hcm/internal/domain/identity"
	"hcm/internal/platform/config"
	"hcm/internal/platform/crypto"
	"hcm/internal/platform/db"
	"hcm/internal/platform/jobs"
	"hcm/internal/platform/metrics"
	"hcm/internal/platform/workingdays"
	audithandler "hcm/internal/transport/http/handlers/audit"
	authhandler "hcm/internal/transport/http/handlers/auth"
	employeeshandler "hcm/internal/transport/http/handlers/employees"
	referencehandler "hcm/internal/transport/http/handlers/reference"
	"hcm/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Router  http.Handler
	Metrics *metrics.Collector
	Jobs    *jobs.Service
}

// New connects to the database, prepares the schema and assembles the
// HTTP router. The caller owns the returned App and must Close it.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db connect failed: %w", err)
	}

	cipher, err := crypto.NewFieldCipherFromConfig(cfg.FieldCipherKey, cfg.FieldCipherIV)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("field cipher: %w", err)
	}
	sealer, err := crypto.NewSealer(cfg.DataEncryptionKey)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("data encryption key: %w", err)
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cipher); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed failed: %w", err)
		}
	}

	collector := metrics.New()
	tokens := identity.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	identitySvc := identity.NewService(identity.NewStore(pool), tokens, sealer)
	policy := identity.NewPolicy()
	auditSvc := audit.New(pool)
	directorySvc := directory.NewService(
		directory.NewStore(pool, cipher),
		identitySvc,
		auditSvc,
		directory.NewValidator(time.Now),
	)

	idem := middleware.NewIdempotencyStore(pool)
	app := &App{
		Config:  cfg,
		DB:      pool,
		Metrics: collector,
		Jobs:    Housekeeping(cfg, &jobs.PGRunLog{DB: pool}, idem, auditSvc),
	}
	app.Router = app.routes(routeDeps{
		tokens:    tokens,
		policy:    policy,
		identity:  identitySvc,
		directory: directorySvc,
		audit:     auditSvc,
		days:      workingdays.NewClient(cfg.WorkingDaysAPIURL, cfg.WorkingDaysAPIKey),
		idem:      idem,
	})
	return app, nil
}

// Housekeeping schedules expiry of replayable create responses and, when a
// retention period is configured, of old audit events.
func Housekeeping(cfg config.Config, runs jobs.RunLog, idem, auditLog jobs.Pruner) *jobs.Service {
	svc := jobs.New(runs)
	svc.Schedule(jobs.RetentionTask(jobs.JobIdempotencyExpiry, cfg.HousekeepingInterval, cfg.IdempotencyTTL, idem, time.Now))
	if cfg.AuditRetention > 0 {
		svc.Schedule(jobs.RetentionTask(jobs.JobAuditRetention, cfg.HousekeepingInterval, cfg.AuditRetention, auditLog, time.Now))
	}
	return svc
}

type routeDeps struct {
	tokens    middleware.TokenParser
	policy    middleware.PermissionStore
	identity  authhandler.Authenticator
	directory *directory.Service
	audit     audithandler.Events
	days      employeeshandler.WorkingDays
	idem      employeeshandler.Idempotency
}

func (a *App) routes(deps routeDeps) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestIDFrom(a.Config.TrustProxyHeaders))
	router.Use(middleware.Logger(a.Metrics))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(a.Config.IsProduction()))
	router.Use(middleware.BodyLimit(a.Config.MaxBodyBytes))
	router.Use(middleware.Auth(deps.tokens))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.DB.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if a.Config.MetricsEnabled {
		router.Handle("/metrics", a.Metrics.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(deps.identity)
		loginLimit := middleware.LoginRateLimit(a.Config.LoginRateLimitPerMinute, time.Minute,
			middleware.WithOnLimited(func() { slog.Warn("login rate limit exceeded") }))
		r.With(loginLimit).Post("/auth/login", authHandler.HandleLogin)
		r.Route("/auth/mfa", func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/setup", authHandler.HandleMFASetup)
			r.Post("/enable", authHandler.HandleMFAEnable)
			r.Post("/disable", authHandler.HandleMFADisable)
		})

		employeesHandler := employeeshandler.NewHandler(deps.directory, deps.policy, deps.days, deps.idem, a.Metrics)
		r.Group(func(r chi.Router) {
			r.Use(middleware.MutationRateLimit(a.Config.MutationRateLimitPerMinute, time.Minute))
			employeesHandler.RegisterRoutes(r)
		})

		referenceHandler := referencehandler.NewHandler(deps.directory, deps.policy)
		referenceHandler.RegisterRoutes(r)

		auditHandler := audithandler.NewHandler(deps.audit, deps.policy)
		auditHandler.RegisterRoutes(r)
	})

	return router
}

// Run serves until ctx is cancelled, then drains in-flight requests for at
// most the configured shutdown timeout.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if a.Jobs != nil {
		a.Jobs.Start(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HCM server listening", "addr", a.Config.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down", "timeout", a.Config.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}
