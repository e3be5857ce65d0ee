package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// SecurityHeadersMiddleware sets the standard hardening headers. imageOrigins
// are added to img-src and connect-src so stored section images can load.
func SecurityHeadersMiddleware(imageOrigins ...string) gin.HandlerFunc {
	extra := strings.TrimSpace(strings.Join(imageOrigins, " "))
	if extra != "" {
		extra = " " + extra
	}
	csp := "default-src 'self'; " +
		"script-src 'self' 'unsafe-inline'; " + // swagger UI
		"style-src 'self' 'unsafe-inline'; " +
		"img-src 'self' data:" + extra + "; " +
		"connect-src 'self'" + extra + "; " +
		"frame-ancestors 'none'; " +
		"base-uri 'self'; " +
		"form-action 'self'"

	return func(c *gin.Context) {
		c.Header("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		// camera stays allowed for the capture flow
		c.Header("Permissions-Policy", "microphone=(), geolocation=(), payment=()")
		c.Header("Content-Security-Policy", csp)

		// Session-bearing responses must not be cached.
		if c.GetHeader("Authorization") != "" || hasCookie(c, SessionCookieName) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, private")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
		}

		c.Next()
	}
}

func hasCookie(c *gin.Context, name string) bool {
	v, err := c.Cookie(name)
	return err == nil && v != ""
}
