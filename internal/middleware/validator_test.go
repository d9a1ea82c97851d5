package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bryanwahyu/auspex/internal/domain/prompts"
	"github.com/bryanwahyu/auspex/internal/domain/threatmodel"
)

func TestValidateProvider(t *testing.T) {
	for _, p := range []string{"", "bedrock", "claude", "gemini", "openai"} {
		assert.NoError(t, ValidateProvider(p), p)
	}
	assert.ErrorIs(t, ValidateProvider("Gemini"), threatmodel.ErrInvalidProvider)
	assert.ErrorIs(t, ValidateProvider("mistral"), threatmodel.ErrInvalidProvider)
}

func TestValidateTemplate(t *testing.T) {
	for _, tpl := range []string{"", "baseline", "network", "aws"} {
		assert.NoError(t, ValidateTemplate(tpl), tpl)
	}
	assert.ErrorIs(t, ValidateTemplate("gcp"), threatmodel.ErrInvalidTemplate)
}

func TestValidateMediaType(t *testing.T) {
	for _, mt := range []string{"", "image/png", "image/jpeg", "image/gif", "image/webp"} {
		assert.NoError(t, ValidateMediaType(mt), mt)
	}
	assert.ErrorIs(t, ValidateMediaType("image/svg+xml"), threatmodel.ErrInvalidInput)
}

func TestValidateImage(t *testing.T) {
	assert.NoError(t, ValidateImage("iVBORw0KGgo="))
	assert.ErrorIs(t, ValidateImage(""), threatmodel.ErrInvalidInput)
	assert.ErrorIs(t, ValidateImage("   "), threatmodel.ErrInvalidInput)
	assert.ErrorIs(t, ValidateImage("not base64!"), threatmodel.ErrInvalidInput)
}

func TestValidateSessionID(t *testing.T) {
	assert.NoError(t, ValidateSessionID(""))
	assert.NoError(t, ValidateSessionID("20250114_093012"))
	assert.ErrorIs(t, ValidateSessionID("a/b"), threatmodel.ErrInvalidInput)
}

func TestValidatePromptKey(t *testing.T) {
	assert.NoError(t, ValidatePromptKey("step3_aws"))
	assert.ErrorIs(t, ValidatePromptKey("step4"), prompts.ErrInvalidKey)
}
