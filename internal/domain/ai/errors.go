package ai

import "errors"

var (
	// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
	ErrQuotaExceeded = errors.New("ai quota exceeded")
	// ErrEmptyResponse means the provider answered without any text content.
	ErrEmptyResponse = errors.New("ai provider returned no content")
	// ErrNotConfigured means the provider is missing credentials.
	ErrNotConfigured = errors.New("ai provider not configured")
)
