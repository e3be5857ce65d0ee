package domain

import (
	"context"
	"time"
)

// LoginState is the stage of the two-step login.
type LoginState string

const (
	StateCredentialEntry LoginState = "credential_entry"
	StateOtpPending      LoginState = "otp_pending"
	StateAuthenticated   LoginState = "authenticated"
)

// OTPChallenge is the server-held second factor for one login attempt.
type OTPChallenge struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	OwnerID   string    `json:"owner_id"`
	Code      string    `json:"code"`
	Input     string    `json:"input,omitempty"` // last code the admin entered
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	Resends   int       `json:"resends"`
}

// Expired uses a strict comparison: a code is still good at exactly ExpiresAt.
func (c *OTPChallenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

type ChallengeStore interface {
	Save(ctx context.Context, challenge *OTPChallenge) error
	// Get returns nil, nil for unknown or evicted challenges.
	Get(ctx context.Context, id string) (*OTPChallenge, error)
	Delete(ctx context.Context, id string) error
}

// PasscodeEmail carries the template params of the passcode email.
type PasscodeEmail struct {
	ToEmail  string `json:"to_email"`
	ToName   string `json:"to_name"`
	Passcode string `json:"passcode"`
	Time     string `json:"time"`
	Message  string `json:"message"`
}

type Mailer interface {
	SendPasscode(ctx context.Context, email PasscodeEmail) error
}

// ClientInfo identifies the caller for attempt tracking and audit logs.
type ClientInfo struct {
	IP        string
	UserAgent string
	RequestID string
}

type LoginResult struct {
	ChallengeID    string     `json:"challenge_id"`
	State          LoginState `json:"state"`
	Email          string     `json:"email"`
	ExpiresAt      time.Time  `json:"expires_at"`
	EmailDelivered bool       `json:"email_delivered"`
	Message        string     `json:"-"`
}

type VerifyResult struct {
	State           LoginState `json:"state"`
	Session         *Session   `json:"session"`
	RedirectAfterMs int64      `json:"redirect_after_ms"`
	Message         string     `json:"-"`
}

type ChallengeStatus struct {
	ChallengeID      string     `json:"challenge_id"`
	State            LoginState `json:"state"`
	Email            string     `json:"email"`
	ExpiresAt        time.Time  `json:"expires_at"`
	MinutesRemaining int        `json:"minutes_remaining"`
}

type AuthUsecase interface {
	Login(ctx context.Context, email, password string, client ClientInfo) (*LoginResult, error)
	VerifyOTP(ctx context.Context, challengeID, input string, client ClientInfo) (*VerifyResult, error)
	ResendOTP(ctx context.Context, challengeID string, client ClientInfo) (*LoginResult, error)
	ChallengeStatus(ctx context.Context, challengeID string) (*ChallengeStatus, error)
	Logout(ctx context.Context, token string, client ClientInfo) error
	// OnLoginCompleted registers a callback run after each successful verification.
	OnLoginCompleted(fn func(Session))
}
