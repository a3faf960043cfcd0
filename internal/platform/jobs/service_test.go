package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"
)

type runRecord struct {
	jobType string
	status  string
	details map[string]any
}

type memoryRunLog struct {
	mu      sync.Mutex
	nextID  int64
	runs    map[int64]*runRecord
	beginFn func() error
}

func newMemoryRunLog() *memoryRunLog {
	return &memoryRunLog{runs: map[int64]*runRecord{}}
}

func (l *memoryRunLog) Begin(_ context.Context, jobType string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.beginFn != nil {
		if err := l.beginFn(); err != nil {
			return 0, err
		}
	}
	l.nextID++
	l.runs[l.nextID] = &runRecord{jobType: jobType, status: "running"}
	return l.nextID, nil
}

func (l *memoryRunLog) Finish(_ context.Context, runID int64, status string, details []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	run := l.runs[runID]
	run.status = status
	return json.Unmarshal(details, &run.details)
}

func (l *memoryRunLog) snapshot() []runRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]runRecord, 0, len(l.runs))
	for id := int64(1); id <= l.nextID; id++ {
		out = append(out, *l.runs[id])
	}
	return out
}

type prunerFunc func(ctx context.Context, cutoff time.Time) (int64, error)

func (f prunerFunc) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	return f(ctx, cutoff)
}

func TestRetentionTaskComputesCutoff(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	var got time.Time
	task := RetentionTask(JobIdempotencyExpiry, time.Hour, 24*time.Hour, prunerFunc(func(_ context.Context, cutoff time.Time) (int64, error) {
		got = cutoff
		return 3, nil
	}), func() time.Time { return now })

	runs := newMemoryRunLog()
	details, err := New(runs).RunNow(context.Background(), task.Type, task.Run)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !got.Equal(now.Add(-24 * time.Hour)) {
		t.Fatalf("unexpected cutoff %v", got)
	}
	if details.(map[string]any)["deleted"] != int64(3) {
		t.Fatalf("unexpected details %v", details)
	}
	recorded := runs.snapshot()
	if len(recorded) != 1 || recorded[0].status != "completed" || recorded[0].details["deleted"] != float64(3) {
		t.Fatalf("unexpected run log %+v", recorded)
	}
}

func TestRunNowRecordsFailure(t *testing.T) {
	runs := newMemoryRunLog()
	_, err := New(runs).RunNow(context.Background(), JobAuditRetention, func(context.Context) (any, error) {
		return nil, errors.New("db down")
	})
	if err == nil {
		t.Fatal("expected job error")
	}
	if recorded := runs.snapshot(); recorded[0].status != "failed" || recorded[0].jobType != JobAuditRetention {
		t.Fatalf("unexpected run log %+v", recorded)
	}
}

func TestRunNowSurvivesRunLogOutage(t *testing.T) {
	runs := newMemoryRunLog()
	runs.beginFn = func() error { return errors.New("insert failed") }
	ran := false
	if _, err := New(runs).RunNow(context.Background(), JobAuditRetention, func(context.Context) (any, error) {
		ran = true
		return nil, nil
	}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !ran {
		t.Fatal("expected job to run without a run log")
	}
}

func TestStartTicksScheduledTasks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{}, 4)
	svc := New(nil)
	svc.Schedule(Task{Type: "tick", Interval: 10 * time.Millisecond, Run: func(context.Context) (any, error) {
		select {
		case done <- struct{}{}:
		default:
		}
		return nil, nil
	}})
	svc.Schedule(Task{Type: "manual", Run: func(context.Context) (any, error) {
		t.Error("unscheduled task must not tick")
		return nil, nil
	}})
	svc.Start(ctx)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled task never ran")
	}
	if len(svc.Tasks()) != 2 {
		t.Fatalf("expected two registered tasks, got %d", len(svc.Tasks()))
	}
}
