// Package background runs detached section saves on a fixed worker pool and
// keeps the outcome of each task observable.
package background

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"portfolio-admin-backend/internal/domain"
	"portfolio-admin-backend/pkg/logger"

	"github.com/google/uuid"
)

var (
	ErrQueueFull   = errors.New("background queue is full")
	ErrQueueClosed = errors.New("background queue is shut down")
)

type job struct {
	id  string
	run func(ctx context.Context) error
}

type Queue struct {
	jobs    chan job
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration

	mu      sync.RWMutex
	closed  bool
	tasks   map[string]*domain.BackgroundTask
	order   []string
	history int
	now     func() time.Time
}

type Config struct {
	Workers int
	Buffer  int
	// History is how many finished tasks stay listed.
	History int
	// Timeout bounds a single task.
	Timeout time.Duration
}

func NewQueue(cfg Config) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = 64
	}
	if cfg.History <= 0 {
		cfg.History = 100
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		jobs:    make(chan job, cfg.Buffer),
		ctx:     ctx,
		cancel:  cancel,
		timeout: cfg.Timeout,
		tasks:   make(map[string]*domain.BackgroundTask),
		history: cfg.History,
		now:     time.Now,
	}

	q.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go q.worker()
	}
	return q
}

// Enqueue registers a pending task and hands it to the pool without blocking.
func (q *Queue) Enqueue(kind, ownerID string, run func(ctx context.Context) error) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return "", ErrQueueClosed
	}

	id := uuid.NewString()
	select {
	case q.jobs <- job{id: id, run: run}:
	default:
		return "", ErrQueueFull
	}

	q.tasks[id] = &domain.BackgroundTask{
		ID:        id,
		Kind:      kind,
		OwnerID:   ownerID,
		Status:    domain.TaskPending,
		CreatedAt: q.now(),
	}
	q.order = append(q.order, id)
	q.trim()
	return id, nil
}

// trim drops the oldest finished tasks beyond the history size. Callers hold mu.
func (q *Queue) trim() {
	for len(q.order) > q.history {
		dropped := false
		for i, id := range q.order {
			t := q.tasks[id]
			if t.Status == domain.TaskSucceeded || t.Status == domain.TaskFailed {
				delete(q.tasks, id)
				q.order = append(q.order[:i], q.order[i+1:]...)
				dropped = true
				break
			}
		}
		if !dropped {
			return
		}
	}
}

// Tasks lists tasks newest first.
func (q *Queue) Tasks() []domain.BackgroundTask {
	q.mu.RLock()
	defer q.mu.RUnlock()

	out := make([]domain.BackgroundTask, 0, len(q.order))
	for i := len(q.order) - 1; i >= 0; i-- {
		out = append(out, *q.tasks[q.order[i]])
	}
	return out
}

func (q *Queue) Task(id string) (domain.BackgroundTask, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	t, ok := q.tasks[id]
	if !ok {
		return domain.BackgroundTask{}, false
	}
	return *t, true
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for j := range q.jobs {
		q.execute(j)
	}
}

func (q *Queue) execute(j job) {
	q.update(j.id, func(t *domain.BackgroundTask) {
		now := q.now()
		t.Status = domain.TaskRunning
		t.StartedAt = &now
	})

	ctx, cancel := context.WithTimeout(q.ctx, q.timeout)
	defer cancel()

	err := q.safeRun(ctx, j.run)

	q.update(j.id, func(t *domain.BackgroundTask) {
		now := q.now()
		t.FinishedAt = &now
		if err != nil {
			t.Status = domain.TaskFailed
			t.Error = err.Error()
			logger.Log.Error("background task failed", "task_id", t.ID, "kind", t.Kind, "error", err)
			return
		}
		t.Status = domain.TaskSucceeded
		logger.Log.Info("background task succeeded", "task_id", t.ID, "kind", t.Kind)
	})
}

func (q *Queue) safeRun(ctx context.Context, run func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return run(ctx)
}

func (q *Queue) update(id string, fn func(*domain.BackgroundTask)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if t, ok := q.tasks[id]; ok {
		fn(t)
	}
}

// Shutdown stops accepting tasks and waits for queued ones to finish. When ctx
// ends first, running tasks see their context canceled.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.cancel()
		return nil
	case <-ctx.Done():
		q.cancel()
		<-done
		return ctx.Err()
	}
}
