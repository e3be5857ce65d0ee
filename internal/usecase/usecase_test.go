package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"portfolio-admin-backend/internal/domain"
	"portfolio-admin-backend/internal/repository/memory"
	"portfolio-admin-backend/internal/session"
	"portfolio-admin-backend/internal/usecase"
	"portfolio-admin-backend/pkg/apperror"
	"portfolio-admin-backend/pkg/security"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// Mock Repositories
type MockCredentialRepo struct {
	mock.Mock
}

func (m *MockCredentialRepo) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockCredentialRepo) GetByEmail(ctx context.Context, email string) (*domain.Credential, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Credential), args.Error(1)
}

type MockChallengeStore struct {
	mock.Mock
}

func (m *MockChallengeStore) Save(ctx context.Context, c *domain.OTPChallenge) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockChallengeStore) Get(ctx context.Context, id string) (*domain.OTPChallenge, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OTPChallenge), args.Error(1)
}

func (m *MockChallengeStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendPasscode(ctx context.Context, email domain.PasscodeEmail) error {
	return m.Called(ctx, email).Error(0)
}

const (
	adminEmail    = "admin@example.com"
	adminPassword = "s3cret"
	adminID       = "7d7c3f3e-5a1f-4c55-9f0e-0d7c3a1b2c3d"
)

type authFixture struct {
	uc         domain.AuthUsecase
	creds      *MockCredentialRepo
	mailer     *MockMailer
	challenges *memory.ChallengeStore
	sessions   *session.Manager
	now        time.Time
	codes      []string
}

// newAuthFixture wires the auth usecase with a controllable clock and code sequence.
func newAuthFixture(t *testing.T, cfg usecase.AuthConfig, tracker *security.LoginTracker) *authFixture {
	t.Helper()
	f := &authFixture{
		creds:      new(MockCredentialRepo),
		mailer:     new(MockMailer),
		challenges: memory.NewChallengeStore(),
		now:        time.Now().Truncate(time.Second),
		codes:      []string{"AB12CD", "ZZ99ZZ", "QQ11QQ"},
	}
	f.sessions = session.NewManager("test-secret", time.Hour, session.WithClock(func() time.Time { return f.now }))
	if cfg.OTPTTL == 0 {
		cfg.OTPTTL = 15 * time.Minute
	}
	f.uc = usecase.NewAuthUsecase(f.creds, f.challenges, f.mailer, f.sessions, tracker, nil, cfg,
		usecase.WithClock(func() time.Time { return f.now }),
		usecase.WithCodeGenerator(func() (string, error) {
			code := f.codes[0]
			f.codes = f.codes[1:]
			return code, nil
		}),
	)
	return f
}

func (f *authFixture) expectValidAdmin() {
	f.creds.On("Ping", mock.Anything).Return(nil)
	f.creds.On("GetByEmail", mock.Anything, adminEmail).
		Return(&domain.Credential{ID: adminID, Email: adminEmail, Password: adminPassword}, nil)
}

func (f *authFixture) login(t *testing.T) *domain.LoginResult {
	t.Helper()
	res, err := f.uc.Login(context.Background(), adminEmail, adminPassword, domain.ClientInfo{IP: "10.0.0.1"})
	require.NoError(t, err)
	return res
}

func mustBcrypt(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestGeneratePasscode(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := usecase.GeneratePasscode()
		require.NoError(t, err)
		assert.Regexp(t, `^[A-Z0-9]{6}$`, code)
	}
}

func TestLogin(t *testing.T) {
	t.Run("Should create a challenge and email the code on exact password match", func(t *testing.T) {
		f := newAuthFixture(t, usecase.AuthConfig{}, nil)
		f.expectValidAdmin()
		var sent domain.PasscodeEmail
		f.mailer.On("SendPasscode", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
			sent = args.Get(1).(domain.PasscodeEmail)
		})

		res := f.login(t)

		assert.Equal(t, domain.StateOtpPending, res.State)
		assert.True(t, res.EmailDelivered)
		assert.Equal(t, f.now.Add(15*time.Minute), res.ExpiresAt)
		assert.Equal(t, "Authentication code sent to admin@example.com. Please check your email and enter the code below.", res.Message)
		assert.NotContains(t, res.Message, "AB12CD")

		assert.Equal(t, adminEmail, sent.ToEmail)
		assert.Equal(t, "Admin", sent.ToName)
		assert.Equal(t, "AB12CD", sent.Passcode)
		assert.Equal(t, res.ExpiresAt.Format("Jan 2, 2006, 03:04 PM"), sent.Time)
		assert.Equal(t, "Your authentication code is: AB12CD. This code will expire in 15 minutes.", sent.Message)

		stored, err := f.challenges.Get(context.Background(), res.ChallengeID)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, "AB12CD", stored.Code)
		assert.Equal(t, adminID, stored.OwnerID)
	})

	t.Run("Should reject a wrong password without creating a challenge", func(t *testing.T) {
		creds := new(MockCredentialRepo)
		store := new(MockChallengeStore)
		mailer := new(MockMailer)
		uc := usecase.NewAuthUsecase(creds, store, mailer, session.NewManager("s", time.Hour), nil, nil, usecase.AuthConfig{})
		creds.On("Ping", mock.Anything).Return(nil)
		creds.On("GetByEmail", mock.Anything, adminEmail).
			Return(&domain.Credential{ID: adminID, Email: adminEmail, Password: adminPassword}, nil)

		_, err := uc.Login(context.Background(), adminEmail, "S3CRET", domain.ClientInfo{})

		assert.True(t, apperror.Is(err, apperror.KindInvalidCredentials))
		assert.Equal(t, "Invalid email or password", err.Error())
		store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		mailer.AssertNotCalled(t, "SendPasscode", mock.Anything, mock.Anything)
	})

	t.Run("Should reject an unknown email", func(t *testing.T) {
		f := newAuthFixture(t, usecase.AuthConfig{}, nil)
		f.creds.On("Ping", mock.Anything).Return(nil)
		f.creds.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, nil)

		_, err := f.uc.Login(context.Background(), "nobody@example.com", "x", domain.ClientInfo{})
		assert.True(t, apperror.Is(err, apperror.KindInvalidCredentials))
	})

	t.Run("Should list missing credentials", func(t *testing.T) {
		f := newAuthFixture(t, usecase.AuthConfig{}, nil)
		_, err := f.uc.Login(context.Background(), "  ", "", domain.ClientInfo{})

		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, []string{"email", "password"}, appErr.Fields)
		f.creds.AssertNotCalled(t, "Ping", mock.Anything)
	})

	t.Run("Should report an unreachable credentials table", func(t *testing.T) {
		f := newAuthFixture(t, usecase.AuthConfig{}, nil)
		f.creds.On("Ping", mock.Anything).Return(errors.New("dial tcp: connection refused"))

		_, err := f.uc.Login(context.Background(), adminEmail, adminPassword, domain.ClientInfo{})
		assert.True(t, apperror.Is(err, apperror.KindConnectionFailed))
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("Should fail with the configuration error before touching the backend", func(t *testing.T) {
		f := newAuthFixture(t, usecase.AuthConfig{ConfigErr: apperror.ConfigMissing([]string{"SUPABASE_URL"})}, nil)

		_, err := f.uc.Login(context.Background(), adminEmail, adminPassword, domain.ClientInfo{})
		assert.True(t, apperror.Is(err, apperror.KindConfigMissing))
		f.creds.AssertNotCalled(t, "Ping", mock.Anything)
	})

	t.Run("Should show the code when the email fails and the screen fallback is on", func(t *testing.T) {
		f := newAuthFixture(t, usecase.AuthConfig{ScreenFallback: true}, nil)
		f.expectValidAdmin()
		f.mailer.On("SendPasscode", mock.Anything, mock.Anything).Return(errors.New("emailjs: status 400"))

		res := f.login(t)

		assert.Equal(t, domain.StateOtpPending, res.State)
		assert.False(t, res.EmailDelivered)
		assert.Equal(t, "Authentication code AB12CD sent to admin@example.com. Please check your email and enter the code below.", res.Message)
	})

	t.Run("Should keep the code off screen when the fallback is off", func(t *testing.T) {
		f := newAuthFixture(t, usecase.AuthConfig{}, nil)
		f.expectValidAdmin()
		f.mailer.On("SendPasscode", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

		res := f.login(t)

		assert.Equal(t, domain.StateOtpPending, res.State)
		assert.False(t, res.EmailDelivered)
		assert.NotContains(t, res.Message, "AB12CD")
	})

	t.Run("Should accept bcrypt hashes when configured", func(t *testing.T) {
		f := newAuthFixture(t, usecase.AuthConfig{BcryptPasswords: true}, nil)
		f.creds.On("Ping", mock.Anything).Return(nil)
		f.creds.On("GetByEmail", mock.Anything, adminEmail).Return(&domain.Credential{
			ID: adminID, Email: adminEmail, Password: mustBcrypt(t, adminPassword),
		}, nil)
		f.mailer.On("SendPasscode", mock.Anything, mock.Anything).Return(nil)

		res := f.login(t)
		assert.Equal(t, domain.StateOtpPending, res.State)
	})
}

func TestLoginBlocksAfterRepeatedFailures(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	tracker := security.NewLoginTracker(security.LoginTrackerConfig{
		MaxAttempts:   2,
		AttemptWindow: time.Minute,
		BlockDuration: time.Minute,
	}, client, nil)
	f := newAuthFixture(t, usecase.AuthConfig{}, tracker)
	f.expectValidAdmin()
	ctx := context.Background()

	_, err := f.uc.Login(ctx, adminEmail, "wrong", domain.ClientInfo{})
	assert.True(t, apperror.Is(err, apperror.KindInvalidCredentials))

	_, err = f.uc.Login(ctx, adminEmail, "wrong", domain.ClientInfo{})
	assert.True(t, apperror.Is(err, apperror.KindTooManyAttempts))

	_, err = f.uc.Login(ctx, adminEmail, adminPassword, domain.ClientInfo{})
	assert.True(t, apperror.Is(err, apperror.KindTooManyAttempts))
	f.mailer.AssertNotCalled(t, "SendPasscode", mock.Anything, mock.Anything)
}

func TestVerifyOTP(t *testing.T) {
	ctx := context.Background()

	t.Run("Should accept the code case-insensitively and issue a session", func(t *testing.T) {
		f := newAuthFixture(t, usecase.AuthConfig{RedirectDelay: time.Second}, nil)
		f.expectValidAdmin()
		f.mailer.On("SendPasscode", mock.Anything, mock.Anything).Return(nil)
		res := f.login(t)

		var completed []domain.Session
		f.uc.OnLoginCompleted(func(s domain.Session) { completed = append(completed, s) })
		var events []domain.AuthEvent
		sub := f.sessions.OnAuthStateChange(func(c domain.AuthStateChange) { events = append(events, c.Event) })
		defer sub.Unsubscribe()

		out, err := f.uc.VerifyOTP(ctx, res.ChallengeID, " ab12cd ", domain.ClientInfo{})
		require.NoError(t, err)

		assert.Equal(t, domain.StateAuthenticated, out.State)
		assert.Equal(t, "OTP verified successfully! Logging you in...", out.Message)
		assert.Equal(t, int64(1000), out.RedirectAfterMs)
		require.NotNil(t, out.Session)
		assert.Equal(t, adminID, out.Session.User.ID)
		assert.Len(t, completed, 1)
		assert.Equal(t, []domain.AuthEvent{domain.EventSignedIn}, events)

		got, err := f.sessions.GetSession(ctx, out.Session.Token)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, adminEmail, got.User.Email)

		// The challenge is single use.
		_, err = f.uc.VerifyOTP(ctx, res.ChallengeID, "AB12CD", domain.ClientInfo{})
		assert.True(t, apperror.Is(err, apperror.KindChallengeNotFound))
	})

	t.Run("Should fail an expired code even when it is correct", func(t *testing.T) {
		f := newAuthFixture(t, usecase.AuthConfig{}, nil)
		f.expectValidAdmin()
		f.mailer.On("SendPasscode", mock.Anything, mock.Anything).Return(nil)
		res := f.login(t)

		f.now = f.now.Add(15*time.Minute + time.Second)
		_, err := f.uc.VerifyOTP(ctx, res.ChallengeID, "AB12CD", domain.ClientInfo{})
		assert.True(t, apperror.Is(err, apperror.KindOtpExpired))
		assert.Equal(t, "OTP has expired. Please request a new one.", err.Error())
	})

	t.Run("Should still accept the code at the exact expiry instant", func(t *testing.T) {
		f := newAuthFixture(t, usecase.AuthConfig{}, nil)
		f.expectValidAdmin()
		f.mailer.On("SendPasscode", mock.Anything, mock.Anything).Return(nil)
		res := f.login(t)

		f.now = res.ExpiresAt
		_, err := f.uc.VerifyOTP(ctx, res.ChallengeID, "AB12CD", domain.ClientInfo{})
		assert.NoError(t, err)
	})

	t.Run("Should fail a wrong code that is still fresh and remember the input", func(t *testing.T) {
		f := newAuthFixture(t, usecase.AuthConfig{}, nil)
		f.expectValidAdmin()
		f.mailer.On("SendPasscode", mock.Anything, mock.Anything).Return(nil)
		res := f.login(t)

		_, err := f.uc.VerifyOTP(ctx, res.ChallengeID, "xx00xx", domain.ClientInfo{})
		assert.True(t, apperror.Is(err, apperror.KindOtpMismatch))

		stored, _ := f.challenges.Get(ctx, res.ChallengeID)
		require.NotNil(t, stored)
		assert.Equal(t, "XX00XX", stored.Input)
	})

	t.Run("Should require an input", func(t *testing.T) {
		f := newAuthFixture(t, usecase.AuthConfig{}, nil)
		_, err := f.uc.VerifyOTP(ctx, "any", "   ", domain.ClientInfo{})
		assert.True(t, apperror.Is(err, apperror.KindOtpMissing))
	})

	t.Run("Should report an unknown challenge", func(t *testing.T) {
		f := newAuthFixture(t, usecase.AuthConfig{}, nil)
		_, err := f.uc.VerifyOTP(ctx, "missing", "AB12CD", domain.ClientInfo{})
		assert.True(t, apperror.Is(err, apperror.KindChallengeNotFound))
	})
}

func TestResendOTP(t *testing.T) {
	ctx := context.Background()

	t.Run("Should replace the code, extend the expiry and clear the input", func(t *testing.T) {
		f := newAuthFixture(t, usecase.AuthConfig{}, nil)
		f.expectValidAdmin()
		f.mailer.On("SendPasscode", mock.Anything, mock.Anything).Return(nil)
		res := f.login(t)

		_, err := f.uc.VerifyOTP(ctx, res.ChallengeID, "WRONG1", domain.ClientInfo{})
		require.Error(t, err)

		f.now = f.now.Add(time.Minute)
		again, err := f.uc.ResendOTP(ctx, res.ChallengeID, domain.ClientInfo{})
		require.NoError(t, err)

		assert.Equal(t, domain.StateOtpPending, again.State)
		assert.Equal(t, "New authentication code sent! Please check your email.", again.Message)
		assert.True(t, again.ExpiresAt.After(res.ExpiresAt))

		stored, _ := f.challenges.Get(ctx, res.ChallengeID)
		require.NotNil(t, stored)
		assert.Equal(t, "ZZ99ZZ", stored.Code)
		assert.Empty(t, stored.Input)
		assert.Equal(t, 1, stored.Resends)

		_, err = f.uc.VerifyOTP(ctx, res.ChallengeID, "AB12CD", domain.ClientInfo{})
		assert.True(t, apperror.Is(err, apperror.KindOtpMismatch))
		_, err = f.uc.VerifyOTP(ctx, res.ChallengeID, "zz99zz", domain.ClientInfo{})
		assert.NoError(t, err)
	})

	t.Run("Should move the expiry forward even without clock progress", func(t *testing.T) {
		f := newAuthFixture(t, usecase.AuthConfig{}, nil)
		f.expectValidAdmin()
		f.mailer.On("SendPasscode", mock.Anything, mock.Anything).Return(nil)
		res := f.login(t)

		again, err := f.uc.ResendOTP(ctx, res.ChallengeID, domain.ClientInfo{})
		require.NoError(t, err)
		assert.True(t, again.ExpiresAt.After(res.ExpiresAt))
	})

	t.Run("Should show the new code when the email fails and the screen fallback is on", func(t *testing.T) {
		f := newAuthFixture(t, usecase.AuthConfig{ScreenFallback: true}, nil)
		f.expectValidAdmin()
		f.mailer.On("SendPasscode", mock.Anything, mock.Anything).Return(errors.New("down"))
		res := f.login(t)

		again, err := f.uc.ResendOTP(ctx, res.ChallengeID, domain.ClientInfo{})
		require.NoError(t, err)
		assert.Equal(t, "New authentication code: ZZ99ZZ. Please check your email.", again.Message)
	})
}

func TestChallengeStatus(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t, usecase.AuthConfig{}, nil)
	f.expectValidAdmin()
	f.mailer.On("SendPasscode", mock.Anything, mock.Anything).Return(nil)
	res := f.login(t)

	status, err := f.uc.ChallengeStatus(ctx, res.ChallengeID)
	require.NoError(t, err)
	assert.Equal(t, 15, status.MinutesRemaining)
	assert.Equal(t, adminEmail, status.Email)

	f.now = f.now.Add(14*time.Minute + 30*time.Second)
	status, err = f.uc.ChallengeStatus(ctx, res.ChallengeID)
	require.NoError(t, err)
	assert.Equal(t, 1, status.MinutesRemaining)

	f.now = f.now.Add(time.Hour)
	_, err = f.uc.ChallengeStatus(ctx, "unknown")
	assert.True(t, apperror.Is(err, apperror.KindChallengeNotFound))
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t, usecase.AuthConfig{}, nil)

	s, err := f.sessions.IssueSession(ctx, domain.User{ID: adminID, Email: adminEmail})
	require.NoError(t, err)

	var events []domain.AuthEvent
	sub := f.sessions.OnAuthStateChange(func(c domain.AuthStateChange) { events = append(events, c.Event) })
	defer sub.Unsubscribe()

	require.NoError(t, f.uc.Logout(ctx, s.Token, domain.ClientInfo{}))

	got, err := f.sessions.GetSession(ctx, s.Token)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, []domain.AuthEvent{domain.EventSignedOut}, events)
}
