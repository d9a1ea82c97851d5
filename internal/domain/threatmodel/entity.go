package threatmodel

// Image is a base64-encoded diagram as received from the client.
type Image struct {
	Data      string
	MediaType string
}

// AnalysisResult is the step 1 output. Items are whatever the model returned
// (strings or objects); only the shape is enforced.
type AnalysisResult struct {
	EntryPoints        []any `json:"entry_points"`
	DataFlows          []any `json:"data_flows"`
	SecurityBoundaries []any `json:"security_boundaries"`
	PublicResources    []any `json:"public_resources"`
	PrivateResources   []any `json:"private_resources"`
}

// Normalize replaces nil lists with empty ones so they encode as [].
func (a *AnalysisResult) Normalize() {
	for _, l := range []*[]any{&a.EntryPoints, &a.DataFlows, &a.SecurityBoundaries, &a.PublicResources, &a.PrivateResources} {
		if *l == nil {
			*l = []any{}
		}
	}
}

// Component is an in-scope system component.
type Component struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// DefaultCategory is assigned to components the model listed by name only.
const DefaultCategory = "other"

// ComponentExtraction is the step 2 output.
type ComponentExtraction struct {
	ApplicationDescription string      `json:"application_description"`
	KeyFeatures            []string    `json:"key_features"`
	InScopeComponents      []Component `json:"in_scope_components"`
}

// ThreatInput carries the validated step 2 data into step 3.
type ThreatInput struct {
	ApplicationDescription string
	ComponentNames         []string
	KeyFeatures            []string
}

// Threat is one STRIDE scenario. Fields the model returns as lists are
// flattened to text.
type Threat struct {
	ID             string `json:"id"`
	Scenario       string `json:"scenario"`
	CIATriad       string `json:"cia_triad"`
	STRIDE         string `json:"stride"`
	MitreTactic    string `json:"mitre_tactic"`
	MitreTechnique string `json:"mitre_technique"`
	Mitigations    string `json:"mitigations"`
}

// ThreatReport is the step 3 output.
type ThreatReport struct {
	Threats []Threat `json:"threats"`
}

// ExtractionPrompts holds the three step 2 prompt texts. Empty fields fall
// back to the bundled defaults.
type ExtractionPrompts struct {
	AppDesc    string
	Features   string
	Components string
}
