package prompts

import "context"

// Repository persists prompt records. Implementations live in infra/db.
type Repository interface {
	// EnsureSchema creates the prompts table if it does not exist.
	EnsureSchema(ctx context.Context) error
	Count(ctx context.Context) (int, error)
	Insert(ctx context.Context, r *Record) error
	List(ctx context.Context) ([]*Record, error)
	// Get returns (nil, nil) when no row exists for key.
	Get(ctx context.Context, key Key) (*Record, error)
	// SetContent overwrites content and the is_default flag and returns
	// whether a row was updated.
	SetContent(ctx context.Context, key Key, content string, isDefault bool) (bool, error)
	Ping(ctx context.Context) error
}

// Source reads default template text by file name.
type Source interface {
	Default(file string) (string, error)
}
