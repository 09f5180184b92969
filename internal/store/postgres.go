package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/solcash/backend/internal/models"
)

// Postgres persists record sequences in a single kv_records table, one jsonb
// value per key. Set replaces the whole sequence atomically.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ Store = (*Postgres)(nil)

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Migrate creates the backing table if it does not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS kv_records (
			key        text PRIMARY KEY,
			value      jsonb NOT NULL,
			updated_at timestamptz NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("create kv_records: %w", err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, key string) ([]models.TransactionRecord, error) {
	var raw []byte
	row := p.pool.QueryRow(ctx, `SELECT value FROM kv_records WHERE key = $1`, key)
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %q: %w", key, err)
	}
	var records []models.TransactionRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode records for %q: %w", key, err)
	}
	return records, nil
}

func (p *Postgres) Set(ctx context.Context, key string, records []models.TransactionRecord) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode records for %q: %w", key, err)
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO kv_records (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`, key, raw)
	if err != nil {
		return fmt.Errorf("write %q: %w", key, err)
	}
	return nil
}
