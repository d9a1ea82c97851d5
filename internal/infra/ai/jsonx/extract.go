// Package jsonx recovers a JSON object from free-text model output.
//
// Models wrap their answers in code fences, prose, or emit almost-JSON with
// trailing commas and raw newlines inside strings. Extract tries a fixed
// sequence of increasingly lenient strategies and gives up with an excerpt
// of the offending text.
package jsonx

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrUnparseable is returned when no strategy produced valid JSON.
var ErrUnparseable = errors.New("could not extract JSON from response")

// ExcerptLen bounds the raw text quoted in ErrUnparseable errors.
const ExcerptLen = 500

var (
	fencePattern         = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")
	trailingCommaPattern = regexp.MustCompile(`,(\s*[}\]])`)
	controlCharPattern   = regexp.MustCompile(`[\x00-\x1f\x{7f}-\x{9f}]`)
)

// Extract returns the raw bytes of the JSON document embedded in text.
func Extract(text string) ([]byte, error) {
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		text = m[1]
	}

	if json.Valid([]byte(text)) {
		return []byte(text), nil
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		candidate := text[start : end+1]
		if json.Valid([]byte(candidate)) {
			return []byte(candidate), nil
		}
		fixed := Repair(candidate)
		if json.Valid([]byte(fixed)) {
			return []byte(fixed), nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrUnparseable, Excerpt(text, ExcerptLen))
}

// Decode extracts the JSON document from text and unmarshals it into v.
func Decode(text string, v any) error {
	raw, err := Extract(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v: %s", ErrUnparseable, err, Excerpt(string(raw), ExcerptLen))
	}
	return nil
}

// Repair applies the common fixups for model-produced JSON: trailing commas
// before a closing bracket are dropped, raw newlines, carriage returns and
// tabs inside string literals are escaped, and any remaining control
// characters are removed.
func Repair(s string) string {
	s = trailingCommaPattern.ReplaceAllString(s, "$1")
	s = escapeStringControls(s)
	return controlCharPattern.ReplaceAllString(s, "")
}

func escapeStringControls(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inString, escaped := false, false
	for _, r := range s {
		switch {
		case escaped:
			escaped = false
			b.WriteRune(r)
		case inString && r == '\\':
			escaped = true
			b.WriteRune(r)
		case r == '"':
			inString = !inString
			b.WriteRune(r)
		case inString && r == '\n':
			b.WriteString(`\n`)
		case inString && r == '\r':
			b.WriteString(`\r`)
		case inString && r == '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Excerpt returns at most n runes of s.
func Excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
