package v1

import (
	"context"
	"net/http"
	"strconv"

	"portfolio-admin-backend/internal/delivery/http/response"
	"portfolio-admin-backend/internal/domain"
	"portfolio-admin-backend/pkg/apperror"
	"portfolio-admin-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

// AuditReader returns the most recent persisted security events.
type AuditReader interface {
	Recent(ctx context.Context, limit int) ([]security.SecurityEvent, error)
}

type DiagnosticsHandler struct {
	queue domain.TaskQueue
	audit AuditReader
}

// NewDiagnosticsHandler registers read-only views of background saves and the
// audit trail. Either dependency may be nil, the view is then empty.
func NewDiagnosticsHandler(protected *gin.RouterGroup, queue domain.TaskQueue, audit AuditReader) {
	handler := &DiagnosticsHandler{queue: queue, audit: audit}

	diag := protected.Group("/diagnostics")
	{
		diag.GET("/background", handler.Background)
		diag.GET("/background/:id", handler.BackgroundTask)
		diag.GET("/audit", handler.Audit)
	}
}

// Background godoc
// @Summary      Background saves
// @Description  Recent detached saves with their status and failure text.
// @Tags         diagnostics
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]domain.BackgroundTask}
// @Router       /diagnostics/background [get]
func (h *DiagnosticsHandler) Background(c *gin.Context) {
	tasks := []domain.BackgroundTask{}
	if h.queue != nil {
		tasks = append(tasks, h.queue.Tasks()...)
	}
	response.Quiet(c, http.StatusOK, tasks)
}

// BackgroundTask godoc
// @Summary      One background save
// @Description  Status of the task id returned with a 202 save.
// @Tags         diagnostics
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task id"
// @Success      200  {object}  response.Response{data=domain.BackgroundTask}
// @Failure      404  {object}  response.Response
// @Router       /diagnostics/background/{id} [get]
func (h *DiagnosticsHandler) BackgroundTask(c *gin.Context) {
	if h.queue == nil {
		c.Error(apperror.NotFound("Task not found"))
		return
	}
	task, ok := h.queue.Task(c.Param("id"))
	if !ok || task.OwnerID != c.GetString(string(domain.KeyUserID)) {
		c.Error(apperror.NotFound("Task not found"))
		return
	}
	response.Quiet(c, http.StatusOK, task)
}

// Audit godoc
// @Summary      Security audit trail
// @Tags         diagnostics
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Max events (1-200, default 50)"
// @Success      200    {object}  response.Response
// @Failure      502    {object}  response.Response
// @Router       /diagnostics/audit [get]
func (h *DiagnosticsHandler) Audit(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > 200 {
		c.Error(apperror.BadRequest("limit must be between 1 and 200"))
		return
	}

	events := []security.SecurityEvent{}
	if h.audit != nil {
		recent, err := h.audit.Recent(c.Request.Context(), limit)
		if err != nil {
			c.Error(apperror.ConnectionFailed(err))
			return
		}
		events = append(events, recent...)
	}
	response.Quiet(c, http.StatusOK, events)
}
