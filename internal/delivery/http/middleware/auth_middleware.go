package middleware

import (
	"context"
	"net/http"
	"strings"

	"portfolio-admin-backend/internal/delivery/http/response"
	"portfolio-admin-backend/internal/domain"
	"portfolio-admin-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

// SessionCookieName carries the session token for browser clients.
const SessionCookieName = "admin_session"

// BearerToken reads the session token from the Authorization header, falling back to the cookie.
func BearerToken(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	if cookie, err := c.Cookie(SessionCookieName); err == nil {
		return cookie
	}
	return ""
}

// AuthMiddleware lets a request through only with a live session. The owner id
// is set on the gin context and the request context.
func AuthMiddleware(sessions domain.SessionProvider, audit *security.SecurityLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "Authorization header or admin_session cookie required", nil)
			c.Abort()
			return
		}

		session, err := sessions.GetSession(c.Request.Context(), token)
		if err != nil {
			response.Error(c, http.StatusServiceUnavailable, "Session check failed", nil)
			c.Abort()
			return
		}
		if session == nil {
			if audit != nil {
				audit.Log(c.Request.Context(), security.SecurityEvent{
					Event:     security.EventUnauthorizedAccess,
					IP:        c.ClientIP(),
					UserAgent: c.GetHeader("User-Agent"),
					RequestID: c.GetString("RequestID"),
					Details:   map[string]any{"path": c.FullPath()},
				})
			}
			response.Error(c, http.StatusUnauthorized, "Session expired. Please log in again.", nil)
			c.Abort()
			return
		}

		c.Set(string(domain.KeyUserID), session.User.ID)
		c.Set(string(domain.KeyUserEmail), session.User.Email)
		c.Set(string(domain.KeySessionToken), token)

		ctx := context.WithValue(c.Request.Context(), domain.KeyUserID, session.User.ID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
