package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	JobIdempotencyExpiry = "idempotency_expiry"
	JobAuditRetention    = "audit_retention"
)

// RunLog persists one row per job execution.
type RunLog interface {
	Begin(ctx context.Context, jobType string) (int64, error)
	Finish(ctx context.Context, runID int64, status string, details []byte) error
}

// Pruner deletes rows older than a cutoff.
type Pruner interface {
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

type Task struct {
	Type     string
	Interval time.Duration
	Run      func(context.Context) (any, error)
}

type Service struct {
	Runs  RunLog
	tasks []Task
	queue chan job
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

func New(runs RunLog) *Service {
	return &Service{
		Runs:  runs,
		queue: make(chan job, 128),
	}
}

// Schedule registers a task for Start. Tasks with a non-positive interval
// are kept for RunNow but never ticked.
func (s *Service) Schedule(task Task) {
	s.tasks = append(s.tasks, task)
}

func (s *Service) Tasks() []Task {
	return s.tasks
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	for _, task := range s.tasks {
		if task.Interval > 0 {
			go s.schedule(ctx, task)
		}
	}
}

func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType)
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	var runID int64
	if s.Runs != nil {
		id, err := s.Runs.Begin(ctx, j.Type)
		if err != nil {
			slog.Warn("job run insert failed", "jobType", j.Type, "err", err)
		}
		runID = id
	}

	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != 0 {
		if updErr := s.Runs.Finish(ctx, runID, status, detailsJSON); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}

func (s *Service) schedule(ctx context.Context, task Task) {
	ticker := time.NewTicker(task.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(task.Type, task.Run)
		}
	}
}

// RetentionTask deletes everything older than keep on each run.
func RetentionTask(jobType string, interval, keep time.Duration, target Pruner, now func() time.Time) Task {
	return Task{
		Type:     jobType,
		Interval: interval,
		Run: func(ctx context.Context) (any, error) {
			cutoff := now().Add(-keep)
			deleted, err := target.Prune(ctx, cutoff)
			return map[string]any{
				"cutoff":  cutoff,
				"deleted": deleted,
			}, err
		},
	}
}

// PGRunLog writes job runs to the job_runs table.
type PGRunLog struct {
	DB *pgxpool.Pool
}

func (l *PGRunLog) Begin(ctx context.Context, jobType string) (int64, error) {
	var id int64
	err := l.DB.QueryRow(ctx, `
    INSERT INTO job_runs (job_type, status)
    VALUES ($1, $2)
    RETURNING id
  `, jobType, "running").Scan(&id)
	return id, err
}

func (l *PGRunLog) Finish(ctx context.Context, runID int64, status string, details []byte) error {
	_, err := l.DB.Exec(ctx, `
    UPDATE job_runs
    SET status = $1, details_json = $2, completed_at = now()
    WHERE id = $3
  `, status, details, runID)
	return err
}
