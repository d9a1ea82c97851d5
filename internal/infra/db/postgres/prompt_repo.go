package postgres

import (
	"context"
	"database/sql"
	"errors"

	domain "github.com/bryanwahyu/auspex/internal/domain/prompts"
)

type PromptRepository struct{ db *sql.DB }

func NewPromptRepository(db *sql.DB) *PromptRepository { return &PromptRepository{db: db} }

func (r *PromptRepository) EnsureSchema(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS prompts (
	id SERIAL PRIMARY KEY,
	key VARCHAR(50) UNIQUE NOT NULL,
	name VARCHAR(100) NOT NULL,
	content TEXT NOT NULL,
	is_default BOOLEAN DEFAULT TRUE,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);`
	_, err := r.db.ExecContext(ctx, q)
	return err
}

func (r *PromptRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM prompts;`).Scan(&n)
	return n, err
}

// Insert seeds a row; an existing key is left untouched.
func (r *PromptRepository) Insert(ctx context.Context, p *domain.Record) error {
	const q = `
INSERT INTO prompts (key, name, content, is_default)
VALUES ($1,$2,$3,$4)
ON CONFLICT (key) DO NOTHING;`
	_, err := r.db.ExecContext(ctx, q, string(p.Key), p.Name, p.Content, p.IsDefault)
	return err
}

func (r *PromptRepository) List(ctx context.Context) ([]*domain.Record, error) {
	const q = `
SELECT key, name, content, is_default, updated_at
FROM prompts
ORDER BY id;`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*domain.Record, 0, len(domain.Definitions))
	for rows.Next() {
		p, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PromptRepository) Get(ctx context.Context, key domain.Key) (*domain.Record, error) {
	const q = `
SELECT key, name, content, is_default, updated_at
FROM prompts
WHERE key=$1
LIMIT 1;`
	p, err := scanRecord(r.db.QueryRowContext(ctx, q, string(key)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *PromptRepository) SetContent(ctx context.Context, key domain.Key, content string, isDefault bool) (bool, error) {
	const q = `
UPDATE prompts
SET content=$1, is_default=$2, updated_at=CURRENT_TIMESTAMP
WHERE key=$3;`
	res, err := r.db.ExecContext(ctx, q, content, isDefault, string(key))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PromptRepository) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*domain.Record, error) {
	var (
		p       domain.Record
		key     string
		updated sql.NullTime
	)
	if err := s.Scan(&key, &p.Name, &p.Content, &p.IsDefault, &updated); err != nil {
		return nil, err
	}
	p.Key = domain.Key(key)
	if updated.Valid {
		t := updated.Time
		p.UpdatedAt = &t
	}
	return &p, nil
}
