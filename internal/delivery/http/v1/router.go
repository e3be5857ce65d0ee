package v1

import (
	"time"

	"portfolio-admin-backend/config"
	"portfolio-admin-backend/internal/delivery/http/middleware"
	"portfolio-admin-backend/internal/delivery/http/response"
	"portfolio-admin-backend/internal/domain"
	"portfolio-admin-backend/internal/usecase"
	"portfolio-admin-backend/pkg/apperror"
	"portfolio-admin-backend/pkg/security"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	AuthUC      domain.AuthUsecase
	SectionUC   domain.SectionUsecase
	DashboardUC domain.DashboardUsecase
	HealthUC    usecase.HealthUsecase
	Sessions    domain.SessionProvider
	Queue       domain.TaskQueue
	AuditReader AuditReader
	RateLimiter *middleware.RateLimiter
	Audit       *security.SecurityLogger
	// ConfigErr is set when the data backend is not configured; every
	// route except health and docs then answers with it.
	ConfigErr *apperror.AppError
	Config    *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	if cfg.BannerDuration > 0 {
		response.BannerDuration = cfg.BannerDuration
	}
	secureCookie := gin.Mode() == gin.ReleaseMode

	limiter := deps.RateLimiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(nil, deps.Audit)
	}
	loginLimit := limiter.Middleware(middleware.LoginRateLimitConfig(
		cfg.RateLimitLoginThreshold,
		time.Duration(cfg.RateLimitWindowSeconds)*time.Second,
	))

	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(cfg.FrontendURL)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.SecurityHeadersMiddleware(imageOrigins(cfg)...))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.ConfigGate(deps.ConfigErr))
	r.Use(middleware.CSRFMiddleware(secureCookie))
	r.Use(limiter.Middleware(middleware.DefaultRateLimitConfig()))

	v1 := r.Group("/v1")

	v1.GET("/health", healthHandler(deps.HealthUC))
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Public routes
	NewAuthHandler(v1, deps.AuthUC, loginLimit, secureCookie)
	NewSessionHandler(v1, deps.Sessions)

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Sessions, deps.Audit))
	{
		NewSectionHandler(protected, deps.SectionUC)
		NewDashboardHandler(protected, deps.DashboardUC)
		NewDiagnosticsHandler(protected, deps.Queue, deps.AuditReader)
	}

	return r
}

// imageOrigins are the hosts uploaded images are served from.
func imageOrigins(cfg *config.Config) []string {
	var origins []string
	if cfg.SupabaseURL != "" {
		origins = append(origins, cfg.SupabaseURL)
	}
	if cfg.S3PublicBaseURL != "" {
		origins = append(origins, cfg.S3PublicBaseURL)
	}
	return origins
}
