package middleware

import (
	"context"
	"time"

	"portfolio-admin-backend/internal/domain"
	"portfolio-admin-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestIDMiddleware tags every request with an id and copies the id and
// client IP into the request context, where the usecases read them.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" || len(reqID) > 64 {
			reqID = uuid.NewString()
		}
		c.Set("RequestID", reqID)
		c.Header(RequestIDHeader, reqID)

		ctx := context.WithValue(c.Request.Context(), domain.KeyRequestID, reqID)
		ctx = context.WithValue(ctx, domain.KeyClientIP, c.ClientIP())
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		c.Next()

		logger.Log.Info("request",
			"request_id", reqID,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// ClientInfo collects the caller details recorded on login attempts.
func ClientInfo(c *gin.Context) domain.ClientInfo {
	return domain.ClientInfo{
		IP:        c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
		RequestID: c.GetString("RequestID"),
	}
}
