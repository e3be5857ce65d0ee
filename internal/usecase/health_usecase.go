package usecase

import (
	"context"
	"time"

	"portfolio-admin-backend/internal/domain"
)

type HealthUsecase interface {
	Check(ctx context.Context) map[string]string
}

// Probe reports the health of one dependency. A nil Probe is skipped.
type Probe func(ctx context.Context) error

type healthUsecase struct {
	database Probe
	redis    Probe
	queue    domain.TaskQueue
}

// NewHealthUsecase checks the database and, when configured, Redis. The
// overall status degrades only when the database is down.
func NewHealthUsecase(database, redis Probe, queue domain.TaskQueue) HealthUsecase {
	return &healthUsecase{database: database, redis: redis, queue: queue}
}

func (u *healthUsecase) Check(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	result := map[string]string{
		"status":   "ok",
		"database": probeStatus(ctx, u.database),
		"redis":    probeStatus(ctx, u.redis),
	}
	if result["database"] != "ok" && result["database"] != "disabled" {
		result["status"] = "degraded"
	}
	if u.queue != nil {
		running := 0
		for _, t := range u.queue.Tasks() {
			if t.Status == domain.TaskPending || t.Status == domain.TaskRunning {
				running++
			}
		}
		if running > 0 {
			result["background"] = "busy"
		} else {
			result["background"] = "idle"
		}
	}
	return result
}

func probeStatus(ctx context.Context, probe Probe) string {
	if probe == nil {
		return "disabled"
	}
	if err := probe(ctx); err != nil {
		return "unavailable"
	}
	return "ok"
}
