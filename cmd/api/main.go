package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfolio-admin-backend/config"
	_ "portfolio-admin-backend/docs" // Important for Swagger
	"portfolio-admin-backend/internal/background"
	"portfolio-admin-backend/internal/delivery/http/middleware"
	v1 "portfolio-admin-backend/internal/delivery/http/v1"
	"portfolio-admin-backend/internal/domain"
	"portfolio-admin-backend/internal/repository/memory"
	"portfolio-admin-backend/internal/repository/postgres"
	redisrepo "portfolio-admin-backend/internal/repository/redis"
	"portfolio-admin-backend/internal/session"
	"portfolio-admin-backend/internal/usecase"
	"portfolio-admin-backend/pkg/auth"
	"portfolio-admin-backend/pkg/database"
	"portfolio-admin-backend/pkg/email"
	"portfolio-admin-backend/pkg/logger"
	"portfolio-admin-backend/pkg/redis"
	"portfolio-admin-backend/pkg/security"
	"portfolio-admin-backend/pkg/storage"
	"portfolio-admin-backend/pkg/validation"

	"github.com/jackc/pgx/v5/pgxpool"
)

// @title           Portfolio Admin API
// @version         1.0
// @description     Admin backend for editing portfolio sections behind email + OTP login.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init(cfg.LogLevel)
	logger.Log.Info("Starting portfolio admin backend", "port", cfg.Port)

	audit := security.NewSecurityLogger("portfolio-admin", security.Environment())
	defer audit.Sync()

	ctx := context.Background()

	// 3. Setup Database. Without the data backend settings the server still
	// starts so the panel can show the configuration error.
	configErr := cfg.Validate()
	var dbPool *pgxpool.Pool
	if configErr != nil {
		logger.Log.Error("Data backend not configured", "missing", configErr.Fields)
	} else {
		if cfg.MigrateOnStart {
			if err := database.RunMigrations(ctx, cfg.DBUrl); err != nil {
				logger.Log.Error("Failed to run migrations", "error", err)
				os.Exit(1)
			}
		}
		dbPool, err = database.NewPostgresConnection(ctx, cfg.DBUrl)
		if err != nil {
			logger.Log.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer dbPool.Close()
	}

	var auditRepo *security.SecurityEventRepository
	if dbPool != nil {
		auditRepo = security.NewSecurityEventRepository(dbPool)
		audit.SetPersistFunc(auditRepo.CreatePersistFunc())
	}

	// 4. Setup Redis (optional)
	if cfg.RedisURL != "" {
		if err := redis.Initialize(ctx, redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
			logger.Log.Warn("Redis unavailable, falling back to in-memory stores", "error", err)
		}
	}
	redisClient := redis.Client()
	defer redis.Close()

	// 5. Setup Repositories
	credentialRepo := postgres.NewCredentialRepository(dbPool)
	sectionRepo := postgres.NewSectionRepository(dbPool)

	var challenges domain.ChallengeStore = memory.NewChallengeStore()
	var drafts domain.DraftStore = memory.NewDraftStore()
	revocations := session.RevocationList(session.NewMemoryRevocationList())
	if redisClient != nil {
		challenges = redisrepo.NewChallengeStore(redisClient)
		drafts = redisrepo.NewDraftStore(redisClient)
		revocations = session.NewRedisRevocationList(redisClient)
	}

	// 6. Setup Object Storage
	var objectStore storage.ObjectStorage
	switch cfg.StorageProvider {
	case config.StorageProviderS3:
		objectStore, err = storage.NewS3Storage(ctx, storage.S3Config{
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretKey,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			Endpoint:        cfg.S3Endpoint,
			PublicBaseURL:   cfg.S3PublicBaseURL,
		})
		if err != nil {
			logger.Log.Error("Failed to set up S3 storage", "error", err)
			os.Exit(1)
		}
	default:
		objectStore = storage.NewSupabaseStorage(cfg.SupabaseURL, cfg.StorageKey(), cfg.StorageBucket)
	}

	// 7. Setup Email Service. EmailJS first, SMTP as fallback.
	var mailers email.Chain
	if cfg.EmailJSConfigured() {
		mailers = append(mailers, email.NewEmailJSMailer(cfg.EmailJSPublicKey, cfg.EmailJSPrivateKey,
			cfg.EmailJSServiceID, cfg.EmailJSTemplateID, cfg.EmailJSEndpoint))
	}
	if cfg.SMTPConfigured() {
		mailers = append(mailers, email.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername,
			cfg.SMTPPassword, cfg.SMTPFromEmail))
	}
	if len(mailers) == 0 {
		logger.Log.Warn("No passcode mailer configured - codes can only be shown on screen")
	}

	// 8. Setup Sessions. Identity-provider tokens only when opted in, and
	// only for emails with a credentials row.
	sessionOpts := []session.Option{session.WithRevocationList(revocations)}
	if cfg.AcceptProviderTokens && cfg.SupabaseURL != "" && dbPool != nil {
		sessionOpts = append(sessionOpts, session.WithProviderTokens(
			auth.NewProvider(auth.SupabaseJWKSURL(cfg.SupabaseURL)),
			auth.SupabaseIssuer(cfg.SupabaseURL),
			credentialRepo,
		))
		logger.Log.Warn("Accepting identity-provider tokens for registered admins")
	}
	sessions := session.NewManager(cfg.SessionSecret, cfg.SessionTTL, sessionOpts...)

	// 9. Setup Security
	trackerCfg := security.DefaultLoginTrackerConfig()
	trackerCfg.MaxAttempts = cfg.FailedLoginMaxAttempts
	trackerCfg.BlockDuration = time.Duration(cfg.FailedLoginBlockMinutes) * time.Minute
	tracker := security.NewLoginTracker(trackerCfg, redisClient, audit)
	uploadLimiter := security.NewUploadLimiter(redisClient, cfg.UploadsPerMinute, cfg.UploadsPerDay)
	rateLimiter := middleware.NewRateLimiter(redisClient, audit)

	queue := background.NewQueue(background.Config{Workers: cfg.BackgroundWorkers, Timeout: 2 * time.Minute})
	var backgroundSections []domain.Section
	if cfg.ProjectSaveMode == config.ProjectSaveBackground {
		backgroundSections = append(backgroundSections, domain.SectionProjects)
	}

	// 10. Setup UseCases
	authUC := usecase.NewAuthUsecase(credentialRepo, challenges, mailers, sessions, tracker, audit, usecase.AuthConfig{
		ConfigErr:       configErr,
		OTPTTL:          cfg.OTPTTL,
		ScreenFallback:  cfg.OTPScreenFallback,
		BcryptPasswords: cfg.CredentialHashing == config.HashingBcrypt,
		RedirectDelay:   cfg.SuccessRedirectDelay,
	})
	authUC.OnLoginCompleted(func(s domain.Session) {
		logger.Log.Info("admin signed in", "user_id", s.User.ID, "expires_at", s.ExpiresAt)
	})
	mediaSvc := usecase.NewMediaService(objectStore, uploadLimiter, audit)
	sectionUC := usecase.NewSectionUsecase(sectionRepo, drafts, mediaSvc, queue, validation.Validator(), backgroundSections...)
	dashboardUC := usecase.NewDashboardUsecase(sectionRepo, audit)

	var dbProbe, redisProbe usecase.Probe
	if dbPool != nil {
		dbProbe = credentialRepo.Ping
	} else {
		dbProbe = func(context.Context) error { return configErr }
	}
	if redisClient != nil {
		redisProbe = redis.HealthCheck
	}
	healthUC := usecase.NewHealthUsecase(dbProbe, redisProbe, queue)

	// 11. Setup Router
	deps := v1.RouterDeps{
		AuthUC:      authUC,
		SectionUC:   sectionUC,
		DashboardUC: dashboardUC,
		HealthUC:    healthUC,
		Sessions:    sessions,
		Queue:       queue,
		RateLimiter: rateLimiter,
		Audit:       audit,
		ConfigErr:   configErr,
		Config:      cfg,
	}
	if auditRepo != nil {
		deps.AuditReader = auditRepo
	}
	router := v1.NewRouter(deps)

	// 12. Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}
	if err := queue.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Background saves did not finish", "error", err)
	}

	logger.Log.Info("Server exiting")
}
