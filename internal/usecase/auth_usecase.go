package usecase

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"portfolio-admin-backend/internal/domain"
	"portfolio-admin-backend/pkg/apperror"
	"portfolio-admin-backend/pkg/logger"
	"portfolio-admin-backend/pkg/security"
	"portfolio-admin-backend/pkg/validation"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	passcodeLength   = 6
	passcodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	passcodeTimeFmt  = "Jan 2, 2006, 03:04 PM"
	passcodeToName   = "Admin"
)

// AuthConfig holds the login knobs read from the environment.
type AuthConfig struct {
	// ConfigErr is returned by Login when the data backend is not configured.
	ConfigErr       *apperror.AppError
	OTPTTL          time.Duration
	ScreenFallback  bool
	BcryptPasswords bool
	RedirectDelay   time.Duration
}

type authUsecase struct {
	credentials domain.CredentialRepository
	challenges  domain.ChallengeStore
	mailer      domain.Mailer
	sessions    domain.SessionProvider
	tracker     *security.LoginTracker
	audit       *security.SecurityLogger
	cfg         AuthConfig

	now          func() time.Time
	generateCode func() (string, error)

	mu          sync.RWMutex
	onCompleted []func(domain.Session)
}

// AuthOption adjusts an auth usecase, mostly for tests.
type AuthOption func(*authUsecase)

func WithClock(now func() time.Time) AuthOption {
	return func(u *authUsecase) { u.now = now }
}

func WithCodeGenerator(gen func() (string, error)) AuthOption {
	return func(u *authUsecase) { u.generateCode = gen }
}

func NewAuthUsecase(
	credentials domain.CredentialRepository,
	challenges domain.ChallengeStore,
	mailer domain.Mailer,
	sessions domain.SessionProvider,
	tracker *security.LoginTracker,
	audit *security.SecurityLogger,
	cfg AuthConfig,
	opts ...AuthOption,
) domain.AuthUsecase {
	if cfg.OTPTTL <= 0 {
		cfg.OTPTTL = 15 * time.Minute
	}
	if audit == nil {
		audit = security.NopLogger()
	}
	if tracker == nil {
		tracker = security.NewLoginTracker(security.DefaultLoginTrackerConfig(), nil, audit)
	}
	u := &authUsecase{
		credentials:  credentials,
		challenges:   challenges,
		mailer:       mailer,
		sessions:     sessions,
		tracker:      tracker,
		audit:        audit,
		cfg:          cfg,
		now:          time.Now,
		generateCode: GeneratePasscode,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// OnLoginCompleted registers a callback that runs after every successful verification.
func (u *authUsecase) OnLoginCompleted(fn func(domain.Session)) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.onCompleted = append(u.onCompleted, fn)
}

// GeneratePasscode returns six characters drawn uniformly from [A-Z0-9].
func GeneratePasscode() (string, error) {
	alphabet := big.NewInt(int64(len(passcodeAlphabet)))
	code := make([]byte, passcodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, alphabet)
		if err != nil {
			return "", fmt.Errorf("generate passcode: %w", err)
		}
		code[i] = passcodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

func (u *authUsecase) Login(ctx context.Context, email, password string, client domain.ClientInfo) (*domain.LoginResult, error) {
	if u.cfg.ConfigErr != nil {
		return nil, u.cfg.ConfigErr
	}

	email = strings.TrimSpace(email)
	var missing []string
	if email == "" {
		missing = append(missing, "email")
	}
	if password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return nil, validation.Required(missing...)
	}

	blocked, err := u.tracker.IsBlocked(ctx, email, client.IP)
	if err != nil {
		logger.Log.Warn("login tracker unavailable", "error", err)
	}
	if blocked {
		u.audit.LogLoginBlocked(ctx, email, client.IP, client.UserAgent, client.RequestID)
		return nil, apperror.TooManyAttempts("Too many failed attempts. Please try again later.")
	}

	if err := u.credentials.Ping(ctx); err != nil {
		return nil, apperror.ConnectionFailed(err)
	}

	cred, err := u.credentials.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperror.New(http.StatusBadGateway, apperror.KindConnectionFailed, "Email check failed: "+err.Error(), err)
	}
	if cred == nil || !u.passwordMatches(cred.Password, password) {
		return nil, u.recordFailure(ctx, email, client, "invalid_credentials", apperror.InvalidCredentials())
	}

	code, err := u.generateCode()
	if err != nil {
		return nil, apperror.Internal(err)
	}
	now := u.now()
	challenge := &domain.OTPChallenge{
		ID:        uuid.NewString(),
		Email:     cred.Email,
		OwnerID:   cred.ID,
		Code:      code,
		ExpiresAt: now.Add(u.cfg.OTPTTL),
		CreatedAt: now,
	}
	if err := u.challenges.Save(ctx, challenge); err != nil {
		return nil, apperror.Internal(err)
	}

	delivered := u.sendPasscode(ctx, challenge, client)

	result := &domain.LoginResult{
		ChallengeID:    challenge.ID,
		State:          domain.StateOtpPending,
		Email:          challenge.Email,
		ExpiresAt:      challenge.ExpiresAt,
		EmailDelivered: delivered,
	}
	if !delivered && u.cfg.ScreenFallback {
		result.Message = fmt.Sprintf("Authentication code %s sent to %s. Please check your email and enter the code below.", code, challenge.Email)
		u.audit.LogEmailEvent(ctx, security.EventPasscodeDisplayed, challenge.Email, client.IP, client.UserAgent, client.RequestID, nil)
	} else {
		result.Message = fmt.Sprintf("Authentication code sent to %s. Please check your email and enter the code below.", challenge.Email)
	}
	return result, nil
}

func (u *authUsecase) VerifyOTP(ctx context.Context, challengeID, input string, client domain.ClientInfo) (*domain.VerifyResult, error) {
	input = strings.ToUpper(strings.TrimSpace(input))
	if input == "" {
		return nil, apperror.OtpMissing()
	}

	challenge, err := u.challenges.Get(ctx, challengeID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if challenge == nil {
		return nil, apperror.ChallengeNotFound()
	}

	if challenge.Expired(u.now()) {
		u.audit.LogEmailEvent(ctx, security.EventPasscodeExpired, challenge.Email, client.IP, client.UserAgent, client.RequestID, nil)
		return nil, apperror.OtpExpired()
	}

	if subtle.ConstantTimeCompare([]byte(input), []byte(challenge.Code)) != 1 {
		challenge.Input = input
		if err := u.challenges.Save(ctx, challenge); err != nil {
			logger.Log.Warn("failed to remember passcode input", "error", err)
		}
		u.audit.LogEmailEvent(ctx, security.EventPasscodeRejected, challenge.Email, client.IP, client.UserAgent, client.RequestID, nil)
		err := u.recordFailure(ctx, challenge.Email, client, "otp_mismatch", apperror.OtpMismatch())
		if apperror.Is(err, apperror.KindTooManyAttempts) {
			_ = u.challenges.Delete(ctx, challenge.ID)
		}
		return nil, err
	}

	if err := u.challenges.Delete(ctx, challenge.ID); err != nil {
		return nil, apperror.Internal(err)
	}

	session, err := u.sessions.IssueSession(ctx, domain.User{ID: challenge.OwnerID, Email: challenge.Email})
	if err != nil {
		return nil, apperror.Internal(err)
	}

	if err := u.tracker.ClearAttempts(ctx, challenge.Email, client.IP); err != nil {
		logger.Log.Warn("failed to clear login attempts", "error", err)
	}
	u.audit.LogUserEvent(ctx, security.EventLoginSuccess, challenge.OwnerID, client.RequestID, map[string]any{
		"email_masked": security.MaskEmail(challenge.Email),
	})

	u.mu.RLock()
	callbacks := append([]func(domain.Session){}, u.onCompleted...)
	u.mu.RUnlock()
	for _, fn := range callbacks {
		fn(*session)
	}

	return &domain.VerifyResult{
		State:           domain.StateAuthenticated,
		Session:         session,
		RedirectAfterMs: u.cfg.RedirectDelay.Milliseconds(),
		Message:         "OTP verified successfully! Logging you in...",
	}, nil
}

func (u *authUsecase) ResendOTP(ctx context.Context, challengeID string, client domain.ClientInfo) (*domain.LoginResult, error) {
	challenge, err := u.challenges.Get(ctx, challengeID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if challenge == nil {
		return nil, apperror.ChallengeNotFound()
	}

	code, err := u.generateCode()
	if err != nil {
		return nil, apperror.Internal(err)
	}
	expiresAt := u.now().Add(u.cfg.OTPTTL)
	if !expiresAt.After(challenge.ExpiresAt) {
		expiresAt = challenge.ExpiresAt.Add(time.Millisecond)
	}
	challenge.Code = code
	challenge.ExpiresAt = expiresAt
	challenge.Input = ""
	challenge.Resends++
	if err := u.challenges.Save(ctx, challenge); err != nil {
		return nil, apperror.Internal(err)
	}

	u.audit.LogEmailEvent(ctx, security.EventPasscodeResent, challenge.Email, client.IP, client.UserAgent, client.RequestID,
		map[string]any{"resends": challenge.Resends})

	delivered := u.sendPasscode(ctx, challenge, client)
	result := &domain.LoginResult{
		ChallengeID:    challenge.ID,
		State:          domain.StateOtpPending,
		Email:          challenge.Email,
		ExpiresAt:      challenge.ExpiresAt,
		EmailDelivered: delivered,
		Message:        "New authentication code sent! Please check your email.",
	}
	if !delivered && u.cfg.ScreenFallback {
		result.Message = fmt.Sprintf("New authentication code: %s. Please check your email.", code)
	}
	return result, nil
}

func (u *authUsecase) ChallengeStatus(ctx context.Context, challengeID string) (*domain.ChallengeStatus, error) {
	challenge, err := u.challenges.Get(ctx, challengeID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if challenge == nil {
		return nil, apperror.ChallengeNotFound()
	}

	remaining := challenge.ExpiresAt.Sub(u.now())
	minutes := 0
	if remaining > 0 {
		minutes = int((remaining + time.Minute - 1) / time.Minute)
	}
	return &domain.ChallengeStatus{
		ChallengeID:      challenge.ID,
		State:            domain.StateOtpPending,
		Email:            challenge.Email,
		ExpiresAt:        challenge.ExpiresAt,
		MinutesRemaining: minutes,
	}, nil
}

func (u *authUsecase) Logout(ctx context.Context, token string, client domain.ClientInfo) error {
	user, _ := u.sessions.GetUser(ctx, token)
	if err := u.sessions.Revoke(ctx, token); err != nil {
		return apperror.Internal(err)
	}
	if user != nil {
		u.audit.LogUserEvent(ctx, security.EventLogout, user.ID, client.RequestID, nil)
	}
	return nil
}

func (u *authUsecase) passwordMatches(stored, supplied string) bool {
	if u.cfg.BcryptPasswords {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}

// recordFailure counts the attempt and upgrades err to TooManyAttempts once the email is blocked.
func (u *authUsecase) recordFailure(ctx context.Context, email string, client domain.ClientInfo, reason string, err *apperror.AppError) error {
	blocked, _, trackErr := u.tracker.RecordFailedAttempt(ctx, email, client.IP, client.UserAgent, client.RequestID, reason)
	if trackErr != nil {
		logger.Log.Warn("failed to record login attempt", "error", trackErr)
	}
	if blocked {
		return apperror.TooManyAttempts("Too many failed attempts. Please try again later.")
	}
	return err
}

// sendPasscode reports whether the mailer accepted the passcode email.
func (u *authUsecase) sendPasscode(ctx context.Context, challenge *domain.OTPChallenge, client domain.ClientInfo) bool {
	if u.mailer == nil {
		return false
	}
	minutes := int(u.cfg.OTPTTL / time.Minute)
	msg := domain.PasscodeEmail{
		ToEmail:  challenge.Email,
		ToName:   passcodeToName,
		Passcode: challenge.Code,
		Time:     challenge.ExpiresAt.Format(passcodeTimeFmt),
		Message:  fmt.Sprintf("Your authentication code is: %s. This code will expire in %d minutes.", challenge.Code, minutes),
	}
	if err := u.mailer.SendPasscode(ctx, msg); err != nil {
		logger.Log.Error("passcode email failed", "email", security.MaskEmail(challenge.Email), "error", err)
		u.audit.LogEmailEvent(ctx, security.EventPasscodeDeliveryFail, challenge.Email, client.IP, client.UserAgent, client.RequestID,
			map[string]any{"error": err.Error()})
		return false
	}
	u.audit.LogEmailEvent(ctx, security.EventPasscodeSent, challenge.Email, client.IP, client.UserAgent, client.RequestID, nil)
	return true
}
