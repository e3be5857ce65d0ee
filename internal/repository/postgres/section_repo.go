package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"portfolio-admin-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type sectionRepo struct {
	db *pgxpool.Pool
}

func NewSectionRepository(db *pgxpool.Pool) domain.SectionRepository {
	return &sectionRepo{db: db}
}

// buildInsert renders a parameterised INSERT for row with quoted identifiers.
func buildInsert(row domain.SectionRow) string {
	columns := row.Columns()
	quoted := make([]string, len(columns))
	params := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = pq.QuoteIdentifier(col)
		params[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		pq.QuoteIdentifier(row.Table()), strings.Join(quoted, ", "), strings.Join(params, ", "))
}

func (r *sectionRepo) Insert(ctx context.Context, row domain.SectionRow) (int64, error) {
	var id int64
	if err := r.db.QueryRow(ctx, buildInsert(row), row.Values()...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert into %s: %w", row.Table(), err)
	}
	return id, nil
}

func (r *sectionRepo) List(ctx context.Context, section domain.Section, ownerID string) ([]map[string]any, error) {
	query := fmt.Sprintf(`SELECT * FROM %s WHERE user_id = $1 ORDER BY created_at DESC`, pq.QuoteIdentifier(section.Table()))
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToMap)
}

func (r *sectionRepo) Count(ctx context.Context, section domain.Section) (int64, error) {
	var n int64
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, pq.QuoteIdentifier(section.Table()))
	if err := r.db.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// LastUpdated is the newest created_at across every section table, nil when all are empty.
func (r *sectionRepo) LastUpdated(ctx context.Context) (*time.Time, error) {
	parts := make([]string, 0, len(domain.AllSections))
	for _, s := range domain.AllSections {
		parts = append(parts, fmt.Sprintf("SELECT MAX(created_at) AS at FROM %s", pq.QuoteIdentifier(s.Table())))
	}
	query := "SELECT MAX(at) FROM (" + strings.Join(parts, " UNION ALL ") + ") latest"

	var at *time.Time
	if err := r.db.QueryRow(ctx, query).Scan(&at); err != nil {
		return nil, err
	}
	return at, nil
}
