package middleware

import (
	"strings"

	"portfolio-admin-backend/internal/delivery/http/response"
	"portfolio-admin-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// ConfigGate blocks every route except health and docs while the data backend
// is not configured, so the client can show its full-screen configuration error.
func ConfigGate(configErr *apperror.AppError) gin.HandlerFunc {
	return func(c *gin.Context) {
		if configErr == nil {
			c.Next()
			return
		}
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/v1/health") || strings.HasPrefix(path, "/v1/swagger") {
			c.Next()
			return
		}
		response.Error(c, configErr.Code, configErr.Message, response.ErrorBody{
			Kind:   string(configErr.Kind),
			Fields: configErr.Fields,
		})
		c.Abort()
	}
}
