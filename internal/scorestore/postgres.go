package scorestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// querier is the subset of *pgxpool.Pool the store needs
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS quiz_best_score (
		key        TEXT PRIMARY KEY,
		score      INTEGER NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

// Postgres stores the score as one row keyed by name
type Postgres struct {
	db  querier
	key string
}

// NewPostgres returns a store on db. Call EnsureSchema once before use.
func NewPostgres(db querier, key string) *Postgres {
	return &Postgres{db: db, key: key}
}

// EnsureSchema creates the score table if missing
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create quiz_best_score: %w", err)
	}
	return nil
}

// Load implements contracts.ScoreStore
func (p *Postgres) Load(ctx context.Context) (int, bool, error) {
	var score int
	err := p.db.QueryRow(ctx, `SELECT score FROM quiz_best_score WHERE key = $1`, p.key).Scan(&score)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to load best score: %w", err)
	}
	return score, true, nil
}

// Save implements contracts.ScoreStore. The upsert only fires when the new
// score is higher; otherwise no row comes back and the stored value is read.
func (p *Postgres) Save(ctx context.Context, score int) (int, bool, error) {
	query := `
		INSERT INTO quiz_best_score (key, score, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE
		SET score = EXCLUDED.score, updated_at = EXCLUDED.updated_at
		WHERE quiz_best_score.score < EXCLUDED.score
		RETURNING score
	`
	var best int
	err := p.db.QueryRow(ctx, query, p.key, score).Scan(&best)
	if err == nil {
		return best, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, false, fmt.Errorf("failed to save best score: %w", err)
	}

	best, _, err = p.Load(ctx)
	if err != nil {
		return 0, false, err
	}
	return best, false, nil
}
