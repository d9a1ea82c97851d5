package mysql

import (
	"context"
	"database/sql"
	"errors"

	domain "github.com/bryanwahyu/auspex/internal/domain/prompts"
)

// `key` is reserved in MySQL, so queries are plain strings with the column quoted.
const (
	createPrompts = "CREATE TABLE IF NOT EXISTS prompts (" +
		"id INT AUTO_INCREMENT PRIMARY KEY, " +
		"`key` VARCHAR(50) NOT NULL UNIQUE, " +
		"name VARCHAR(100) NOT NULL, " +
		"content TEXT NOT NULL, " +
		"is_default BOOLEAN DEFAULT TRUE, " +
		"created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP, " +
		"updated_at TIMESTAMP NULL DEFAULT CURRENT_TIMESTAMP" +
		") CHARACTER SET utf8mb4"
	insertPrompt = "INSERT IGNORE INTO prompts (`key`, name, content, is_default) VALUES (?,?,?,?)"
	selectPrompt = "SELECT `key`, name, content, is_default, updated_at FROM prompts"
	updatePrompt = "UPDATE prompts SET content=?, is_default=?, updated_at=CURRENT_TIMESTAMP WHERE `key`=?"
)

type PromptRepository struct{ db *sql.DB }

func NewPromptRepository(db *sql.DB) *PromptRepository { return &PromptRepository{db: db} }

func (r *PromptRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, createPrompts)
	return err
}

func (r *PromptRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM prompts").Scan(&n)
	return n, err
}

func (r *PromptRepository) Insert(ctx context.Context, p *domain.Record) error {
	_, err := r.db.ExecContext(ctx, insertPrompt, string(p.Key), p.Name, p.Content, p.IsDefault)
	return err
}

func (r *PromptRepository) List(ctx context.Context) ([]*domain.Record, error) {
	rows, err := r.db.QueryContext(ctx, selectPrompt+" ORDER BY id")
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
	p, err := scanRecord(r.db.QueryRowContext(ctx, selectPrompt+" WHERE `key`=? LIMIT 1", string(key)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *PromptRepository) SetContent(ctx context.Context, key domain.Key, content string, isDefault bool) (bool, error) {
	res, err := r.db.ExecContext(ctx, updatePrompt, content, isDefault, string(key))
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
