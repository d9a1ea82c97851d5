package httpserver

import (
	"encoding/json"
	"net/http"

	apptm "github.com/bryanwahyu/auspex/internal/application/threatmodel"
	"github.com/bryanwahyu/auspex/internal/middleware"
)

type imageRequest struct {
	Image     string `json:"image"`
	MediaType string `json:"media_type"`
	SessionID string `json:"session_id"`
	Provider  string `json:"provider"`
}

func (b imageRequest) validate() error {
	for _, err := range []error{
		middleware.ValidateProvider(b.Provider),
		middleware.ValidateMediaType(b.MediaType),
		middleware.ValidateSessionID(b.SessionID),
		middleware.ValidateImage(b.Image),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

func (b imageRequest) command() apptm.ImageCommand {
	return apptm.ImageCommand{
		Image:     b.Image,
		MediaType: b.MediaType,
		SessionID: b.SessionID,
		Provider:  b.Provider,
	}
}

func decodeImageRequest(w http.ResponseWriter, req *http.Request) (*imageRequest, error) {
	var body imageRequest
	if err := decodeJSON(w, req, &body); err != nil {
		return nil, err
	}
	if err := body.validate(); err != nil {
		return nil, err
	}
	return &body, nil
}

// POST /api/analyze-diagram
// Body: {"image": "<base64>", "media_type": "image/png", "session_id": "", "provider": "bedrock"}
func (r *Router) handleAnalyzeDiagram(w http.ResponseWriter, req *http.Request) error {
	body, err := decodeImageRequest(w, req)
	if err != nil {
		return err
	}
	res, err := r.threats.AnalyzeDiagram(req.Context(), body.command())
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, res)
}

// POST /api/extract-components
func (r *Router) handleExtractComponents(w http.ResponseWriter, req *http.Request) error {
	body, err := decodeImageRequest(w, req)
	if err != nil {
		return err
	}
	res, err := r.threats.ExtractComponents(req.Context(), body.command())
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, res)
}

// POST /api/generate-threats
// Body: {"application_description": "...", "in_scope_components": [...],
// "key_features": [...], "template": "baseline", "session_id": "", "provider": "bedrock"}
func (r *Router) handleGenerateThreats(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		ApplicationDescription string            `json:"application_description"`
		InScopeComponents      []json.RawMessage `json:"in_scope_components"`
		KeyFeatures            []json.RawMessage `json:"key_features"`
		Template               string            `json:"template"`
		SessionID              string            `json:"session_id"`
		Provider               string            `json:"provider"`
	}
	if err := decodeJSON(w, req, &body); err != nil {
		return err
	}
	for _, err := range []error{
		middleware.ValidateProvider(body.Provider),
		middleware.ValidateTemplate(body.Template),
		middleware.ValidateSessionID(body.SessionID),
	} {
		if err != nil {
			return err
		}
	}

	res, err := r.threats.GenerateThreats(req.Context(), apptm.GenerateThreatsCommand{
		ApplicationDescription: body.ApplicationDescription,
		InScopeComponents:      body.InScopeComponents,
		KeyFeatures:            body.KeyFeatures,
		Template:               body.Template,
		SessionID:              body.SessionID,
		Provider:               body.Provider,
	})
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, res)
}
