package ai

import "context"

// Image is an inline picture attached to a completion request.
type Image struct {
	// Data is base64 encoded.
	Data      string
	MediaType string
}

// CompletionRequest is a single-turn user message: an optional image
// followed by the prompt text.
type CompletionRequest struct {
	Prompt    string
	Image     *Image
	MaxTokens int
	// Step labels the call in logs and metrics, e.g. "step-2a".
	Step string
}

// Completer performs one blocking model call and returns the reply text.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
