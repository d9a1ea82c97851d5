package prompts

import "time"

// Key identifies an editable prompt.
type Key string

const (
	KeyAnalyze       Key = "step1_analyze"
	KeyAppDesc       Key = "step2_app_desc"
	KeyFeatures      Key = "step2_features"
	KeyComponents    Key = "step2_components"
	KeyThreatBase    Key = "step3_baseline"
	KeyThreatNetwork Key = "step3_network"
	KeyThreatAWS     Key = "step3_aws"
)

// Definition is a compiled-in prompt: stable key, display name and the
// template file holding its default text.
type Definition struct {
	Key  Key
	Name string
	File string
}

// Definitions is the fixed whitelist of prompts, in display order.
var Definitions = []Definition{
	{Key: KeyAnalyze, Name: "Step 1: Diagram Analysis", File: "step1_analyze.txt"},
	{Key: KeyAppDesc, Name: "Step 2A: Application Description", File: "step2_A_application_description.txt"},
	{Key: KeyFeatures, Name: "Step 2B: Key Features", File: "step2_B_key_features.txt"},
	{Key: KeyComponents, Name: "Step 2C: In-Scope Components", File: "step2_C_in_scope_components.txt"},
	{Key: KeyThreatBase, Name: "Step 3: STRIDE Baseline", File: "step3_baseline.txt"},
	{Key: KeyThreatNetwork, Name: "Step 3: Network Security", File: "step3_network.txt"},
	{Key: KeyThreatAWS, Name: "Step 3: AWS Cloud Security", File: "step3_aws.txt"},
}

// Lookup returns the definition for key.
func Lookup(key Key) (Definition, bool) {
	for _, d := range Definitions {
		if d.Key == key {
			return d, true
		}
	}
	return Definition{}, false
}

// Valid reports whether key is one of the compiled-in prompt keys.
func Valid(key Key) bool {
	_, ok := Lookup(key)
	return ok
}

// ThreatKey maps a step 3 template name (baseline, network, aws) to its prompt key.
func ThreatKey(template string) Key {
	return Key("step3_" + template)
}

// Record is the current state of a prompt as served to clients.
type Record struct {
	Key       Key        `json:"key"`
	Name      string     `json:"name"`
	Content   string     `json:"content"`
	IsDefault bool       `json:"is_default"`
	UpdatedAt *time.Time `json:"updated_at"`
}
