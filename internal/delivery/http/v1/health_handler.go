package v1

import (
	"net/http"

	"portfolio-admin-backend/internal/delivery/http/response"
	"portfolio-admin-backend/internal/usecase"

	"github.com/gin-gonic/gin"
)

// Health godoc
// @Summary      Health check
// @Description  Database, Redis and background worker status. 503 when degraded.
// @Tags         health
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      503  {object}  response.Response
// @Router       /health [get]
func healthHandler(healthUC usecase.HealthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		if healthUC == nil {
			response.Success(c, http.StatusOK, "System operational", gin.H{"status": "ok"})
			return
		}
		result := healthUC.Check(c.Request.Context())
		if result["status"] != "ok" {
			response.Quiet(c, http.StatusServiceUnavailable, result)
			return
		}
		response.Quiet(c, http.StatusOK, result)
	}
}
