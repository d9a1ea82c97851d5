package prompt

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/bryanwahyu/auspex/internal/domain/threatmodel"
)

//go:embed templates/*.txt
var embedded embed.FS

// Placeholders substituted into step 3 templates.
const (
	PlaceholderDescription = "{application_description}"
	PlaceholderComponents  = "{in_scope_components}"
	PlaceholderFeatures    = "{key_features}"
)

// Templates serves the default prompt texts. Files found in the override
// directory win over the ones compiled into the binary.
type Templates struct {
	override fs.FS
	builtin  fs.FS
}

// NewTemplates returns the bundled templates, optionally overridden by dir.
func NewTemplates(dir string) *Templates {
	builtin, _ := fs.Sub(embedded, "templates")
	t := &Templates{builtin: builtin}
	if dir != "" {
		t.override = os.DirFS(dir)
	}
	return t
}

// NewTemplatesFS is NewTemplates over arbitrary file systems. override may be nil.
func NewTemplatesFS(builtin, override fs.FS) *Templates {
	return &Templates{builtin: builtin, override: override}
}

// Default returns the text of the named template file.
func (t *Templates) Default(file string) (string, error) {
	if t.override != nil {
		b, err := fs.ReadFile(t.override, file)
		if err == nil {
			return string(b), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("read prompt override %s: %w", file, err)
		}
	}
	b, err := fs.ReadFile(t.builtin, file)
	if err != nil {
		return "", fmt.Errorf("read prompt %s: %w", file, err)
	}
	return string(b), nil
}

// Render fills the step 3 placeholders. Components and features are
// substituted as JSON arrays, the description as raw text.
func Render(template string, in threatmodel.ThreatInput) string {
	return strings.NewReplacer(
		PlaceholderDescription, in.ApplicationDescription,
		PlaceholderComponents, jsonList(in.ComponentNames),
		PlaceholderFeatures, jsonList(in.KeyFeatures),
	).Replace(template)
}

func jsonList(items []string) string {
	if items == nil {
		items = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(items)
	return strings.TrimSuffix(buf.String(), "\n")
}
