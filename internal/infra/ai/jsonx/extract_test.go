package jsonx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Strategies(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  map[string]any
	}{
		{"Plain", `{"a":1}`, map[string]any{"a": float64(1)}},
		{"FencedJSON", "```json\n{\"a\": \"b\"}\n```", map[string]any{"a": "b"}},
		{"FencedBare", "Here you go:\n```\n{\"a\": \"b\"}\n```\nThanks", map[string]any{"a": "b"}},
		{"Prose", "Sure! {\"a\": \"b\"} Let me know.", map[string]any{"a": "b"}},
		{"TrailingCommas", `{"a": [1, 2,], "b": "c",}`, map[string]any{"a": []any{float64(1), float64(2)}, "b": "c"}},
		{"BareNewline", "{\"a\": \"line1\nline2\"}", map[string]any{"a": "line1\nline2"}},
		{"BareTab", "{\"a\": \"x\ty\"}", map[string]any{"a": "x\ty"}},
		{"ControlChar", "{\"a\": \"x\x01y\"}", map[string]any{"a": "xy"}},
		{"EscapedQuoteInString", "{\"a\": \"say \\\"hi\\\"\nnow\",}", map[string]any{"a": "say \"hi\"\nnow"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got map[string]any
			require.NoError(t, Decode(tc.input, &got))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestExtract_Failure(t *testing.T) {
	_, err := Extract("I could not read the diagram.")
	require.ErrorIs(t, err, ErrUnparseable)
	assert.Contains(t, err.Error(), "I could not read the diagram.")
}

func TestExtract_FailureExcerptIsTruncated(t *testing.T) {
	text := "{" + strings.Repeat("x", 2*ExcerptLen)
	_, err := Extract(text)
	require.ErrorIs(t, err, ErrUnparseable)
	assert.Contains(t, err.Error(), strings.Repeat("x", ExcerptLen-1))
	assert.NotContains(t, err.Error(), strings.Repeat("x", ExcerptLen))
}

func TestExtract_UnbalancedBracesFail(t *testing.T) {
	_, err := Extract(`{"a": {"b": 1}`)
	assert.ErrorIs(t, err, ErrUnparseable)
}

func TestDecode_ShapeMismatch(t *testing.T) {
	var v struct {
		Threats []string `json:"threats"`
	}
	err := Decode(`{"threats": "none"}`, &v)
	assert.ErrorIs(t, err, ErrUnparseable)
}

func TestRepair(t *testing.T) {
	assert.Equal(t, `{"a":[1]}`, Repair(`{"a":[1,]}`))
	assert.Equal(t, "{\"a\":\"b\\nc\"}", Repair("{\"a\":\"b\nc\"}"))
	// Newlines between tokens are whitespace and may simply be dropped.
	assert.Equal(t, `{"a":1}`, Repair("{\n\"a\":1\n}"))
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "héllo", Excerpt("héllo", 10))
	assert.Equal(t, "hé", Excerpt("héllo", 2))
}

func FuzzExtract(f *testing.F) {
	f.Add(`{"a":1}`)
	f.Add("```json\n{\"a\":1,}\n```")
	f.Add("text {\"a\": \"b\nc\"} text")
	f.Fuzz(func(t *testing.T, input string) {
		raw, err := Extract(input)
		if err == nil && len(raw) == 0 {
			t.Fatalf("empty result without error for %q", input)
		}
	})
}
