package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"time"

	"portfolio-admin-backend/internal/delivery/http/response"

	"github.com/gin-gonic/gin"
)

const (
	CSRFTokenCookieName = "csrf_token"
	CSRFTokenHeaderName = "X-CSRF-Token"
	// 32 bytes = 64 hex chars
	CSRFTokenLength = 32
	CSRFTokenExpiry = 24 * time.Hour
)

func generateCSRFToken() (string, error) {
	bytes := make([]byte, CSRFTokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// CSRFMiddleware implements the double-submit cookie pattern for requests
// authenticated by the admin_session cookie. Bearer-token requests, requests
// without a session cookie and the pre-session login routes are not checked,
// but still receive a csrf_token cookie for later use.
func CSRFMiddleware(secureCookie bool) gin.HandlerFunc {
	csrfExemptPaths := map[string]bool{
		"/v1/auth/login":      true,
		"/v1/auth/otp/verify": true,
		"/v1/auth/otp/resend": true,
		"/v1/health":          true,
	}

	ensureCookie := func(c *gin.Context) (string, error) {
		if token, err := c.Cookie(CSRFTokenCookieName); err == nil && token != "" {
			return token, nil
		}
		token, err := generateCSRFToken()
		if err != nil {
			return "", err
		}
		// SameSite=Lax keeps the cookie off cross-site subrequests.
		c.SetSameSite(http.SameSiteLaxMode)
		// HttpOnly is off so the panel can echo the value in the header.
		c.SetCookie(CSRFTokenCookieName, token, int(CSRFTokenExpiry.Seconds()), "/", "", secureCookie, false)
		return token, nil
	}

	return func(c *gin.Context) {
		cookieToken, err := ensureCookie(c)

		exempt := csrfExemptPaths[c.Request.URL.Path] ||
			c.GetHeader("Authorization") != "" ||
			!hasCookie(c, SessionCookieName)
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			exempt = true
		}
		if exempt {
			c.Next()
			return
		}

		if err != nil {
			response.Error(c, http.StatusInternalServerError, "Failed to generate security token", nil)
			c.Abort()
			return
		}

		headerToken := c.GetHeader(CSRFTokenHeaderName)
		if headerToken == "" {
			response.Error(c, http.StatusForbidden, "Missing CSRF token", nil)
			c.Abort()
			return
		}
		if subtle.ConstantTimeCompare([]byte(headerToken), []byte(cookieToken)) != 1 {
			response.Error(c, http.StatusForbidden, "Invalid CSRF token", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}
