package ai

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/bryanwahyu/auspex/internal/domain/threatmodel"
)

type threatWire struct {
	ID             json.RawMessage `json:"id"`
	Scenario       json.RawMessage `json:"scenario"`
	CIATriad       json.RawMessage `json:"cia_triad"`
	STRIDE         json.RawMessage `json:"stride"`
	MitreTactic    json.RawMessage `json:"mitre_tactic"`
	MitreTechnique json.RawMessage `json:"mitre_technique"`
	Mitigations    json.RawMessage `json:"mitigations"`
}

func (w threatWire) threat() threatmodel.Threat {
	return threatmodel.Threat{
		ID:             flatten(w.ID, ", "),
		Scenario:       flatten(w.Scenario, " "),
		CIATriad:       flatten(w.CIATriad, ", "),
		STRIDE:         flatten(w.STRIDE, ", "),
		MitreTactic:    flatten(w.MitreTactic, ", "),
		MitreTechnique: flatten(w.MitreTechnique, ", "),
		Mitigations:    flatten(w.Mitigations, " "),
	}
}

// flatten renders a JSON value as text: strings verbatim, arrays joined with
// sep, null as "", anything else as its compact JSON encoding.
func flatten(raw json.RawMessage, sep string) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if json.Unmarshal(raw, &s) == nil {
			return s
		}
	case '[':
		var items []json.RawMessage
		if json.Unmarshal(raw, &items) == nil {
			parts := make([]string, 0, len(items))
			for _, it := range items {
				if p := flatten(it, sep); p != "" {
					parts = append(parts, p)
				}
			}
			return strings.Join(parts, sep)
		}
	}
	var buf bytes.Buffer
	if json.Compact(&buf, raw) == nil {
		return buf.String()
	}
	return string(raw)
}

// NormalizeComponents accepts components as bare names or {name, category}
// objects and returns them all as objects. Bare names get the default category.
func NormalizeComponents(items []json.RawMessage) []threatmodel.Component {
	out := make([]threatmodel.Component, 0, len(items))
	for _, raw := range items {
		raw = bytes.TrimSpace(raw)
		if len(raw) > 0 && raw[0] == '{' {
			var obj struct {
				Name     json.RawMessage `json:"name"`
				Category json.RawMessage `json:"category"`
			}
			if json.Unmarshal(raw, &obj) == nil {
				c := threatmodel.Component{Name: flatten(obj.Name, " "), Category: flatten(obj.Category, ", ")}
				if c.Category == "" {
					c.Category = threatmodel.DefaultCategory
				}
				out = append(out, c)
				continue
			}
		}
		if name := flatten(raw, " "); name != "" {
			out = append(out, threatmodel.Component{Name: name, Category: threatmodel.DefaultCategory})
		}
	}
	return out
}

// ComponentNames accepts the same shapes as NormalizeComponents and returns
// only the names, in order.
func ComponentNames(items []json.RawMessage) []string {
	comps := NormalizeComponents(items)
	names := make([]string, 0, len(comps))
	for _, c := range comps {
		names = append(names, c.Name)
	}
	return names
}

// Texts flattens a list of arbitrary JSON values into non-empty strings.
func Texts(items []json.RawMessage) []string {
	out := make([]string, 0, len(items))
	for _, raw := range items {
		if s := flatten(raw, " "); s != "" {
			out = append(out, s)
		}
	}
	return out
}
