package background

import (
	"context"
	"errors"
	"testing"
	"time"

	"portfolio-admin-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFor(t *testing.T, q *Queue, id string, status domain.TaskStatus) domain.BackgroundTask {
	t.Helper()
	var task domain.BackgroundTask
	require.Eventually(t, func() bool {
		var ok bool
		task, ok = q.Task(id)
		return ok && task.Status == status
	}, 2*time.Second, 5*time.Millisecond)
	return task
}

func TestQueue(t *testing.T) {
	t.Run("Should record success", func(t *testing.T) {
		q := NewQueue(Config{Workers: 1})
		defer q.Shutdown(context.Background())

		id, err := q.Enqueue("projects.save", "owner", func(ctx context.Context) error { return nil })
		require.NoError(t, err)

		task := waitFor(t, q, id, domain.TaskSucceeded)
		assert.Equal(t, "projects.save", task.Kind)
		assert.NotNil(t, task.StartedAt)
		assert.NotNil(t, task.FinishedAt)
	})

	t.Run("Should record failures instead of swallowing them", func(t *testing.T) {
		q := NewQueue(Config{Workers: 1})
		defer q.Shutdown(context.Background())

		id, err := q.Enqueue("projects.save", "owner", func(ctx context.Context) error {
			return errors.New("insert into projects: connection refused")
		})
		require.NoError(t, err)

		task := waitFor(t, q, id, domain.TaskFailed)
		assert.Equal(t, "insert into projects: connection refused", task.Error)
	})

	t.Run("Should turn a panic into a failed task", func(t *testing.T) {
		q := NewQueue(Config{Workers: 1})
		defer q.Shutdown(context.Background())

		id, err := q.Enqueue("projects.save", "owner", func(ctx context.Context) error { panic("boom") })
		require.NoError(t, err)

		task := waitFor(t, q, id, domain.TaskFailed)
		assert.Contains(t, task.Error, "boom")
	})

	t.Run("Should reject work when the buffer is full", func(t *testing.T) {
		q := NewQueue(Config{Workers: 1, Buffer: 1})
		release := make(chan struct{})
		started := make(chan struct{})

		_, err := q.Enqueue("block", "o", func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
		require.NoError(t, err)
		<-started

		_, err = q.Enqueue("queued", "o", func(ctx context.Context) error { return nil })
		require.NoError(t, err)

		_, err = q.Enqueue("overflow", "o", func(ctx context.Context) error { return nil })
		assert.ErrorIs(t, err, ErrQueueFull)

		close(release)
		require.NoError(t, q.Shutdown(context.Background()))
	})

	t.Run("Should drain on shutdown and refuse new work", func(t *testing.T) {
		q := NewQueue(Config{Workers: 2})
		ids := make([]string, 0, 5)
		for i := 0; i < 5; i++ {
			id, err := q.Enqueue("k", "o", func(ctx context.Context) error {
				time.Sleep(5 * time.Millisecond)
				return nil
			})
			require.NoError(t, err)
			ids = append(ids, id)
		}

		require.NoError(t, q.Shutdown(context.Background()))
		for _, id := range ids {
			task, ok := q.Task(id)
			require.True(t, ok)
			assert.Equal(t, domain.TaskSucceeded, task.Status)
		}

		_, err := q.Enqueue("late", "o", func(ctx context.Context) error { return nil })
		assert.ErrorIs(t, err, ErrQueueClosed)
	})

	t.Run("Should list newest first and keep bounded history", func(t *testing.T) {
		q := NewQueue(Config{Workers: 1, History: 2})
		var last string
		for i := 0; i < 4; i++ {
			id, err := q.Enqueue("k", "o", func(ctx context.Context) error { return nil })
			require.NoError(t, err)
			waitFor(t, q, id, domain.TaskSucceeded)
			last = id
		}
		require.NoError(t, q.Shutdown(context.Background()))

		tasks := q.Tasks()
		assert.Len(t, tasks, 2)
		assert.Equal(t, last, tasks[0].ID)
	})
}
