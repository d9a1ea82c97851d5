package httpserver

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bryanwahyu/auspex/internal/domain/prompts"
	"github.com/bryanwahyu/auspex/internal/middleware"
)

// GET /api/prompts
func (r *Router) handleListPrompts(w http.ResponseWriter, req *http.Request) error {
	list, err := r.prompts.List(req.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}

// GET /api/prompts/{key}
func (r *Router) handleGetPrompt(w http.ResponseWriter, req *http.Request) error {
	key, err := promptKey(req)
	if err != nil {
		return err
	}
	content, err := r.prompts.Get(req.Context(), key)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]string{"key": string(key), "content": content})
}

// PUT|POST /api/prompts/{key}
// Body: {"content": "..."}
func (r *Router) handleUpdatePrompt(w http.ResponseWriter, req *http.Request) error {
	key, err := promptKey(req)
	if err != nil {
		return err
	}
	var body struct {
		Content *string `json:"content"`
	}
	if err := decodeJSON(w, req, &body); err != nil {
		return err
	}
	if body.Content == nil {
		return &httpError{status: http.StatusBadRequest, msg: "content is required", err: errors.New("missing content")}
	}

	if err := r.prompts.Update(req.Context(), key, *body.Content); err != nil {
		if writeFailed(err) {
			return &httpError{status: http.StatusBadRequest, msg: "Failed to update prompt", err: err}
		}
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]string{"message": "Prompt updated successfully"})
}

// POST /api/prompts/{key}/reset
func (r *Router) handleResetPrompt(w http.ResponseWriter, req *http.Request) error {
	key, err := promptKey(req)
	if err != nil {
		return err
	}
	if err := r.prompts.Reset(req.Context(), key); err != nil {
		if writeFailed(err) {
			return &httpError{status: http.StatusBadRequest, msg: "Failed to reset prompt", err: err}
		}
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]string{"message": "Prompt reset to default"})
}

func promptKey(req *http.Request) (prompts.Key, error) {
	key := chi.URLParam(req, "key")
	if err := middleware.ValidatePromptKey(key); err != nil {
		return "", err
	}
	return prompts.Key(key), nil
}

func writeFailed(err error) bool {
	return errors.Is(err, prompts.ErrReadOnly) || errors.Is(err, prompts.ErrUpdateFailed)
}
