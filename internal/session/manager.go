package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"portfolio-admin-backend/internal/domain"
	"portfolio-admin-backend/pkg/auth"
	"portfolio-admin-backend/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	issuer = "portfolio-admin"
	// ProviderAudience is the audience the identity provider puts on
	// signed-in user tokens.
	ProviderAudience = "authenticated"
)

type Claims struct {
	Email string `json:"email"`
	// SessionID is set by the identity provider, which does not issue jti.
	SessionID string `json:"session_id,omitempty"`
	jwt.RegisteredClaims
}

// revocationID is the key a signed-out token is remembered under.
func (c *Claims) revocationID() string {
	if c.ID != "" {
		return c.ID
	}
	if c.SessionID != "" {
		return "sid:" + c.SessionID
	}
	return ""
}

// Manager issues HS256 admin sessions. With WithProviderTokens it also
// accepts identity-provider tokens for emails present in the credentials table.
type Manager struct {
	secret   []byte
	ttl      time.Duration
	provider *providerTokens
	revoked  RevocationList
	broker   *Broker
	now      func() time.Time
}

type providerTokens struct {
	jwks   *auth.Provider
	issuer string
	admins domain.CredentialRepository
}

type Option func(*Manager)

// WithProviderTokens accepts RS256 tokens signed by a key in jwks whose
// issuer is iss and whose email matches a row in admins. The session then
// belongs to that row.
func WithProviderTokens(jwks *auth.Provider, iss string, admins domain.CredentialRepository) Option {
	return func(m *Manager) {
		m.provider = &providerTokens{jwks: jwks, issuer: iss, admins: admins}
	}
}

func WithRevocationList(l RevocationList) Option {
	return func(m *Manager) { m.revoked = l }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(secret string, ttl time.Duration, opts ...Option) *Manager {
	m := &Manager{
		secret:  []byte(secret),
		ttl:     ttl,
		revoked: NewMemoryRevocationList(),
		broker:  NewBroker(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) IssueSession(_ context.Context, user domain.User) (*domain.Session, error) {
	now := m.now()
	expires := now.Add(m.ttl)

	claims := Claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session: %w", err)
	}

	session := &domain.Session{
		Token:     signed,
		User:      user,
		IssuedAt:  now.Truncate(time.Second),
		ExpiresAt: expires.Truncate(time.Second),
	}
	m.broker.Publish(domain.AuthStateChange{
		Event:   domain.EventSignedIn,
		UserID:  user.ID,
		Session: session,
		At:      now,
	})
	return session, nil
}

func (m *Manager) GetSession(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, nil
	}

	claims, fromProvider, err := m.parse(token)
	if err != nil {
		logger.Log.Debug("session token rejected", "error", err)
		return nil, nil
	}

	if id := claims.revocationID(); id != "" {
		revoked, err := m.revoked.IsRevoked(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to check revocation: %w", err)
		}
		if revoked {
			return nil, nil
		}
	}

	user := domain.User{ID: claims.Subject, Email: claims.Email}
	if fromProvider {
		cred, err := m.provider.admins.GetByEmail(ctx, claims.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to look up provider user: %w", err)
		}
		if cred == nil {
			logger.Log.Debug("provider token has no credentials row", "subject", claims.Subject)
			return nil, nil
		}
		user = domain.User{ID: cred.ID, Email: cred.Email}
	}

	session := &domain.Session{
		Token: token,
		User:  user,
	}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}

func (m *Manager) GetUser(ctx context.Context, token string) (*domain.User, error) {
	session, err := m.GetSession(ctx, token)
	if err != nil || session == nil {
		return nil, err
	}
	return &session.User, nil
}

// Revoke signs the token out. Unknown or already invalid tokens are a no-op.
func (m *Manager) Revoke(ctx context.Context, token string) error {
	claims, _, err := m.parse(token)
	if err != nil {
		return nil
	}

	if id := claims.revocationID(); id != "" && claims.ExpiresAt != nil {
		if err := m.revoked.Revoke(ctx, id, claims.ExpiresAt.Sub(m.now())); err != nil {
			return fmt.Errorf("failed to revoke session: %w", err)
		}
	}

	m.broker.Publish(domain.AuthStateChange{
		Event:  domain.EventSignedOut,
		UserID: claims.Subject,
		At:     m.now(),
	})
	return nil
}

func (m *Manager) OnAuthStateChange(callback func(domain.AuthStateChange)) domain.Subscription {
	return m.broker.Subscribe(callback)
}

// Subscribers reports live OnAuthStateChange subscriptions.
func (m *Manager) Subscribers() int {
	return m.broker.Len()
}

// parse verifies token and reports whether it came from the identity provider.
func (m *Manager) parse(token string) (*Claims, bool, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, m.keyFunc,
		jwt.WithTimeFunc(m.now),
		jwt.WithValidMethods([]string{"HS256", "RS256"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, false, err
	}
	if !parsed.Valid {
		return nil, false, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, false, errors.New("token has no subject")
	}

	_, fromProvider := parsed.Method.(*jwt.SigningMethodRSA)
	if fromProvider {
		if err := m.provider.check(claims); err != nil {
			return nil, false, err
		}
	} else if claims.Issuer != issuer {
		return nil, false, fmt.Errorf("unexpected issuer %q", claims.Issuer)
	}
	return claims, fromProvider, nil
}

func (p *providerTokens) check(claims *Claims) error {
	if claims.Issuer != p.issuer {
		return fmt.Errorf("unexpected issuer %q", claims.Issuer)
	}
	if !slices.Contains(claims.Audience, ProviderAudience) {
		return errors.New("token is not for signed-in users")
	}
	if claims.Email == "" {
		return errors.New("token has no email")
	}
	if claims.revocationID() == "" {
		return errors.New("token cannot be revoked")
	}
	return nil
}

func (m *Manager) keyFunc(token *jwt.Token) (interface{}, error) {
	switch token.Method.(type) {
	case *jwt.SigningMethodHMAC:
		return m.secret, nil
	case *jwt.SigningMethodRSA:
		if m.provider == nil {
			return nil, errors.New("identity provider tokens are not accepted")
		}
		return m.provider.jwks.KeyFunc(token)
	}
	return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
}
