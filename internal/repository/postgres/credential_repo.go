package postgres

import (
	"context"
	"errors"

	"portfolio-admin-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type credentialRepo struct {
	db *pgxpool.Pool
}

func NewCredentialRepository(db *pgxpool.Pool) domain.CredentialRepository {
	return &credentialRepo{db: db}
}

func (r *credentialRepo) Ping(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `SELECT 1 FROM auth LIMIT 1`)
	return err
}

func (r *credentialRepo) GetByEmail(ctx context.Context, email string) (*domain.Credential, error) {
	query := `SELECT id::text, email, pass FROM auth WHERE email = $1 LIMIT 1`
	var c domain.Credential
	err := r.db.QueryRow(ctx, query, email).Scan(&c.ID, &c.Email, &c.Password)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
