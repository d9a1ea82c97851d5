package threatmodel

import "errors"

var (
	ErrInvalidProvider = errors.New("invalid provider")
	ErrInvalidTemplate = errors.New("invalid template")
	// ErrInvalidInput covers malformed request fields.
	ErrInvalidInput = errors.New("invalid input")
)
