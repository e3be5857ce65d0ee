package domain

import (
	"context"
	"time"
)

type Session struct {
	Token     string    `json:"access_token"`
	User      User      `json:"user"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type AuthEvent string

const (
	EventInitialSession AuthEvent = "initial_session"
	EventSignedIn       AuthEvent = "signed_in"
	EventSignedOut      AuthEvent = "signed_out"
)

// AuthStateChange is delivered to OnAuthStateChange subscribers. Session is nil
// after sign-out.
type AuthStateChange struct {
	Event   AuthEvent `json:"event"`
	UserID  string    `json:"user_id"`
	Session *Session  `json:"session,omitempty"`
	At      time.Time `json:"at"`
}

type Subscription interface {
	Unsubscribe()
}

// SessionProvider is the identity provider seen by the session gate.
type SessionProvider interface {
	IssueSession(ctx context.Context, user User) (*Session, error)
	// GetSession returns nil, nil when the token carries no live session.
	GetSession(ctx context.Context, token string) (*Session, error)
	GetUser(ctx context.Context, token string) (*User, error)
	Revoke(ctx context.Context, token string) error
	OnAuthStateChange(callback func(AuthStateChange)) Subscription
}
