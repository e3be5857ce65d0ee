package domain

import "context"

// Credential is a row of the login table ("auth"). The password is stored as
// the admin typed it unless bcrypt hashing is configured.
type Credential struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Password string `json:"-"`
}

type CredentialRepository interface {
	// Ping runs the cheap probe query the login screen uses to tell
	// "backend unreachable" apart from "wrong password".
	Ping(ctx context.Context) error
	// GetByEmail returns nil, nil when no row matches.
	GetByEmail(ctx context.Context, email string) (*Credential, error)
}
