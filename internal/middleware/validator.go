package middleware

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/bryanwahyu/auspex/internal/domain/prompts"
	"github.com/bryanwahyu/auspex/internal/domain/threatmodel"
)

// Input validation and sanitization utilities

// MediaTypes lists the accepted diagram image types.
var MediaTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

var sessionIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]{1,64}$`)

// ValidateProvider checks the provider against the whitelist. Empty is allowed.
func ValidateProvider(provider string) error {
	if provider == "" || slices.Contains(threatmodel.Providers, provider) {
		return nil
	}
	return fmt.Errorf("%w: %s (allowed: %s)", threatmodel.ErrInvalidProvider,
		provider, strings.Join(threatmodel.Providers, ", "))
}

// ValidateTemplate checks the threat template. Empty is allowed.
func ValidateTemplate(template string) error {
	if template == "" || slices.Contains(threatmodel.Templates, template) {
		return nil
	}
	return fmt.Errorf("%w: %s (allowed: %s)", threatmodel.ErrInvalidTemplate,
		template, strings.Join(threatmodel.Templates, ", "))
}

// ValidateMediaType checks the image media type. Empty is allowed.
func ValidateMediaType(mediaType string) error {
	if mediaType == "" || slices.Contains(MediaTypes, mediaType) {
		return nil
	}
	return fmt.Errorf("%w: unsupported media_type %s", threatmodel.ErrInvalidInput, mediaType)
}

// ValidateImage requires non-empty standard base64.
func ValidateImage(data string) error {
	if strings.TrimSpace(data) == "" {
		return fmt.Errorf("%w: image is required", threatmodel.ErrInvalidInput)
	}
	if _, err := base64.StdEncoding.DecodeString(data); err != nil {
		return fmt.Errorf("%w: image is not valid base64", threatmodel.ErrInvalidInput)
	}
	return nil
}

// ValidateSessionID allows alphanumerics, dot, dash and underscore, max 64
// chars. Empty is allowed.
func ValidateSessionID(id string) error {
	if id == "" || sessionIDPattern.MatchString(id) {
		return nil
	}
	return fmt.Errorf("%w: invalid session_id format", threatmodel.ErrInvalidInput)
}

// ValidatePromptKey checks the key against the prompt definitions.
func ValidatePromptKey(key string) error {
	if prompts.Valid(prompts.Key(key)) {
		return nil
	}
	return fmt.Errorf("%w: %s", prompts.ErrInvalidKey, key)
}
