package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"portfolio-admin-backend/internal/delivery/http/middleware"
	"portfolio-admin-backend/pkg/apperror"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func ok(c *gin.Context) { c.Status(http.StatusOK) }

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestIDMiddleware(), middleware.ErrorHandler())
	r.GET("/app", func(c *gin.Context) { c.Error(apperror.OtpExpired()) })
	r.GET("/plain", func(c *gin.Context) { c.Error(errors.New("disk on fire")) })

	t.Run("Should use the status and kind of an AppError", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/app", nil))

		assert.Equal(t, http.StatusGone, w.Code)
		assert.Contains(t, w.Body.String(), `"kind":"otp_expired"`)
		assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("Should surface unclassified errors with their text", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/plain", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "disk on fire")
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestIDMiddleware())
	r.GET("/", ok)

	t.Run("Should keep a caller supplied id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(middleware.RequestIDHeader, "req-42")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, "req-42", w.Header().Get(middleware.RequestIDHeader))
	})
}

func TestCSRFMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(middleware.CSRFMiddleware(false))
	r.POST("/v1/sections/skills", ok)
	r.POST("/v1/auth/login", ok)

	withSession := func(path string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "tok"})
		return req
	}

	t.Run("Should reject cookie-authenticated writes without a token", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, withSession("/v1/sections/skills"))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Should accept a matching header and cookie", func(t *testing.T) {
		req := withSession("/v1/sections/skills")
		req.AddCookie(&http.Cookie{Name: middleware.CSRFTokenCookieName, Value: "abc"})
		req.Header.Set(middleware.CSRFTokenHeaderName, "abc")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Should reject a mismatched token", func(t *testing.T) {
		req := withSession("/v1/sections/skills")
		req.AddCookie(&http.Cookie{Name: middleware.CSRFTokenCookieName, Value: "abc"})
		req.Header.Set(middleware.CSRFTokenHeaderName, "xyz")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Should not check bearer requests or the login route", func(t *testing.T) {
		req := withSession("/v1/sections/skills")
		req.Header.Set("Authorization", "Bearer tok")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		r.ServeHTTP(w, withSession("/v1/auth/login"))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRateLimiter(t *testing.T) {
	cfg := middleware.RateLimitConfig{
		Limit:     2,
		Window:    time.Minute,
		KeyPrefix: "rl:test:",
	}

	hit := func(r *gin.Engine) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		return w
	}

	t.Run("Should count in redis and reject over the limit", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
		defer client.Close()

		r := gin.New()
		r.Use(middleware.NewRateLimiter(client, nil).Middleware(cfg))
		r.GET("/", ok)

		assert.Equal(t, http.StatusOK, hit(r).Code)
		assert.Equal(t, http.StatusOK, hit(r).Code)
		w := hit(r)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.NotEmpty(t, w.Header().Get("Retry-After"))

		keys := mr.Keys()
		require.Len(t, keys, 1)
		assert.Contains(t, keys[0], "rl:test:")
	})

	t.Run("Should count in process without redis", func(t *testing.T) {
		r := gin.New()
		r.Use(middleware.NewRateLimiter(nil, nil).Middleware(cfg))
		r.GET("/", ok)

		hit(r)
		hit(r)
		assert.Equal(t, http.StatusTooManyRequests, hit(r).Code)
	})

	t.Run("Should fail closed on redis errors when configured", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
		defer client.Close()
		mr.Close()

		closed := cfg
		closed.FailClosed = true
		r := gin.New()
		r.Use(middleware.NewRateLimiter(client, nil).Middleware(closed))
		r.GET("/", ok)

		assert.Equal(t, http.StatusServiceUnavailable, hit(r).Code)
	})
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(middleware.SecurityHeadersMiddleware("https://abc.supabase.co"))
	r.GET("/", ok)

	t.Run("Should allow the image origin and mark session responses no-store", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer tok")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Contains(t, w.Header().Get("Content-Security-Policy"), "img-src 'self' data: https://abc.supabase.co")
		assert.Contains(t, w.Header().Get("Cache-Control"), "no-store")
	})
}
