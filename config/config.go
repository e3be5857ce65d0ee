package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"portfolio-admin-backend/pkg/apperror"

	"github.com/joho/godotenv"
)

const (
	StorageProviderSupabase = "supabase"
	StorageProviderS3       = "s3"

	HashingPlain  = "plain"
	HashingBcrypt = "bcrypt"

	ProjectSaveSync       = "sync"
	ProjectSaveBackground = "background"
)

type Config struct {
	Port        string
	LogLevel    string
	FrontendURL string
	// Data backend (Supabase)
	SupabaseURL            string
	SupabaseAnonKey        string
	SupabaseServiceRoleKey string
	DBUrl                  string
	MigrateOnStart         bool
	// Object storage
	StorageProvider  string
	StorageBucket    string
	S3AccessKeyID    string
	S3SecretKey      string
	S3Region         string
	S3Bucket         string
	S3Endpoint       string // S3-compatible endpoint, empty for AWS
	S3PublicBaseURL  string
	// EmailJS transactional email
	EmailJSPublicKey  string
	EmailJSPrivateKey string
	EmailJSServiceID  string
	EmailJSTemplateID string
	EmailJSEndpoint   string
	// SMTP fallback mailer (Brevo compatible)
	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string
	SMTPFromEmail string
	// Redis, optional
	RedisURL      string
	RedisPassword string
	// Session and OTP
	SessionSecret        string
	SessionTTL           time.Duration
	// AcceptProviderTokens lets Supabase user tokens stand in for admin
	// sessions when their email has a credentials row. Off by default.
	AcceptProviderTokens bool
	OTPTTL               time.Duration
	OTPScreenFallback    bool
	CredentialHashing    string
	SuccessRedirectDelay time.Duration
	BannerDuration       time.Duration
	// Section saving
	ProjectSaveMode   string
	BackgroundWorkers int
	// Rate limiting
	RateLimitWindowSeconds  int
	RateLimitLoginThreshold int
	FailedLoginBlockMinutes int
	FailedLoginMaxAttempts  int
	UploadsPerMinute        int
	UploadsPerDay           int
}

func LoadConfig() (*Config, error) {
	// .env only matters locally
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "debug"),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:5173"), "/"),

		SupabaseURL:            strings.TrimRight(getEnv("SUPABASE_URL", getEnv("VITE_SUPABASE_URL", "")), "/"),
		SupabaseAnonKey:        getEnv("SUPABASE_ANON_KEY", getEnv("VITE_SUPABASE_ANON_KEY", "")),
		SupabaseServiceRoleKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", getEnv("VITE_SUPABASE_SERVICE_ROLE_KEY", "")),
		DBUrl:                  getEnv("DATABASE_URL", ""),
		MigrateOnStart:         getEnvBool("MIGRATE_ON_START", true),

		StorageProvider: strings.ToLower(getEnv("STORAGE_PROVIDER", StorageProviderSupabase)),
		StorageBucket:   getEnv("STORAGE_BUCKET", "portfolio"),
		S3AccessKeyID:   getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretKey:     getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3Region:        getEnv("S3_REGION", "us-east-1"),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Endpoint:      strings.TrimRight(getEnv("S3_ENDPOINT", ""), "/"),
		S3PublicBaseURL: strings.TrimRight(getEnv("S3_PUBLIC_BASE_URL", ""), "/"),

		EmailJSPublicKey:  getEnv("EMAILJS_PUBLIC_KEY", getEnv("VITE_EMAILJS_PUBLIC_KEY", "")),
		EmailJSPrivateKey: getEnv("EMAILJS_PRIVATE_KEY", ""),
		EmailJSServiceID:  getEnv("EMAILJS_SERVICE_ID", getEnv("VITE_EMAILJS_SERVICE_ID", "")),
		EmailJSTemplateID: getEnv("EMAILJS_TEMPLATE_ID", getEnv("VITE_EMAILJS_TEMPLATE_ID", "")),
		EmailJSEndpoint:   getEnv("EMAILJS_ENDPOINT", "https://api.emailjs.com/api/v1.0/email/send"),

		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SMTPFromEmail: getEnv("SMTP_FROM_EMAIL", ""),

		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		SessionSecret:        getEnv("SESSION_SECRET", ""),
		SessionTTL:           getEnvDuration("SESSION_TTL", 12*time.Hour),
		AcceptProviderTokens: getEnvBool("ACCEPT_PROVIDER_TOKENS", false),
		OTPTTL:               getEnvDuration("OTP_TTL", 15*time.Minute),
		OTPScreenFallback:    getEnvBool("OTP_SCREEN_FALLBACK", true),
		CredentialHashing:    strings.ToLower(getEnv("CREDENTIAL_HASHING", HashingPlain)),
		SuccessRedirectDelay: getEnvDuration("SUCCESS_REDIRECT_DELAY", time.Second),
		BannerDuration:       getEnvDuration("BANNER_DURATION", 5*time.Second),

		ProjectSaveMode:   strings.ToLower(getEnv("PROJECT_SAVE_MODE", ProjectSaveSync)),
		BackgroundWorkers: getEnvInt("BACKGROUND_WORKERS", 2),

		RateLimitWindowSeconds:  getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitLoginThreshold: getEnvInt("RATE_LIMIT_LOGIN_THRESHOLD", 10),
		FailedLoginBlockMinutes: getEnvInt("FAILED_LOGIN_BLOCK_MINUTES", 15),
		FailedLoginMaxAttempts:  getEnvInt("FAILED_LOGIN_MAX_ATTEMPTS", 5),
		UploadsPerMinute:        getEnvInt("UPLOADS_PER_MINUTE", 10),
		UploadsPerDay:           getEnvInt("UPLOADS_PER_DAY", 200),
	}

	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. OTP challenges, drafts and rate limits stay in memory.")
	}
	if cfg.OTPScreenFallback {
		log.Println("WARNING: OTP_SCREEN_FALLBACK is on. A failed passcode email will show the code in the login response.")
	}

	return cfg, nil
}

// Validate reports the data-backend settings the panel cannot run without.
// A nil result means the login screen can be served.
func (c *Config) Validate() *apperror.AppError {
	var missing []string
	if c.SupabaseURL == "" {
		missing = append(missing, "SUPABASE_URL")
	}
	if c.SupabaseAnonKey == "" {
		missing = append(missing, "SUPABASE_ANON_KEY")
	}
	if c.DBUrl == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.SessionSecret == "" {
		missing = append(missing, "SESSION_SECRET")
	}
	if len(missing) > 0 {
		return apperror.ConfigMissing(missing)
	}
	return nil
}

// StorageKey prefers the service-role key, which bypasses row level security on upload.
func (c *Config) StorageKey() string {
	if c.SupabaseServiceRoleKey != "" {
		return c.SupabaseServiceRoleKey
	}
	return c.SupabaseAnonKey
}

func (c *Config) EmailJSConfigured() bool {
	return c.EmailJSPublicKey != "" && c.EmailJSServiceID != "" && c.EmailJSTemplateID != ""
}

func (c *Config) SMTPConfigured() bool {
	return c.SMTPHost != "" && c.SMTPUsername != "" && c.SMTPPassword != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration syntax ("15m", "1s").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
