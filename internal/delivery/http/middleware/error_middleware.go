package middleware

import (
	"errors"

	"portfolio-admin-backend/internal/delivery/http/response"
	"portfolio-admin-backend/pkg/apperror"
	"portfolio-admin-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error a handler attached with c.Error as an
// error banner. Errors without a kind are reported as internal, keeping their text.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if !errors.As(err, &appErr) {
			appErr = apperror.Internal(err)
		}
		if appErr.Code >= 500 {
			logger.Log.Error("request failed",
				"request_id", c.GetString("RequestID"),
				"kind", appErr.Kind,
				"error", err,
			)
		}
		response.Error(c, appErr.Code, appErr.Message, response.ErrorBody{
			Kind:   string(appErr.Kind),
			Fields: appErr.Fields,
		})
	}
}
