package prompts

import "errors"

var (
	// ErrInvalidKey is returned for keys outside Definitions.
	ErrInvalidKey = errors.New("invalid prompt key")
	// ErrNotFound means neither the database nor the template files hold text for the key.
	ErrNotFound = errors.New("prompt not found")
	// ErrReadOnly is returned by writes when no database is configured.
	ErrReadOnly = errors.New("prompt storage is read-only: no database configured")
	// ErrUpdateFailed is returned when a write touched no rows or had no default text.
	ErrUpdateFailed = errors.New("prompt update failed")
)
