package threatmodel

import "context"

// Provider names accepted by the API.
const (
	ProviderBedrock = "bedrock"
	ProviderClaude  = "claude"
	ProviderGemini  = "gemini"
	ProviderOpenAI  = "openai"
)

// Providers lists every selectable provider.
var Providers = []string{ProviderBedrock, ProviderClaude, ProviderGemini, ProviderOpenAI}

// Threat templates accepted by step 3.
const (
	TemplateBaseline = "baseline"
	TemplateNetwork  = "network"
	TemplateAWS      = "aws"
)

var Templates = []string{TemplateBaseline, TemplateNetwork, TemplateAWS}

// Analyzer is the three-step contract every provider satisfies.
type Analyzer interface {
	Name() string
	AnalyzeDiagram(ctx context.Context, img Image, prompt string) (*AnalysisResult, error)
	ExtractComponents(ctx context.Context, img Image, prompts ExtractionPrompts) (*ComponentExtraction, error)
	GenerateThreats(ctx context.Context, in ThreatInput, template, prompt string) (*ThreatReport, error)
}

// Resolver hands out the analyzer for a provider name.
type Resolver interface {
	Get(provider string) (Analyzer, error)
}

// Archive stores step results for later inspection.
type Archive interface {
	Put(ctx context.Context, sessionID, step string, v any) error
}
