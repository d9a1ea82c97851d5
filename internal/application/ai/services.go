package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	domai "github.com/bryanwahyu/auspex/internal/domain/ai"
	"github.com/bryanwahyu/auspex/internal/domain/prompts"
	"github.com/bryanwahyu/auspex/internal/domain/threatmodel"
	"github.com/bryanwahyu/auspex/internal/infra/ai/jsonx"
	"github.com/bryanwahyu/auspex/internal/infra/ai/prompt"
)

// MaxTokens is the output budget of every pipeline call.
const MaxTokens = 8192

// rawExcerptLen bounds model output copied into debug logs.
const rawExcerptLen = 2000

// Observer is notified after every provider call.
type Observer interface {
	ObserveProviderCall(provider, step string, d time.Duration, err error)
}

type noopObserver struct{}

func (noopObserver) ObserveProviderCall(string, string, time.Duration, error) {}

// Service runs the three-step threat-modeling pipeline against one provider.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	name     string
	client   domai.Completer
	defaults prompts.Source
	log      *zap.Logger
	observer Observer
}

func NewService(name string, client domai.Completer, defaults prompts.Source, log *zap.Logger, obs Observer) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if obs == nil {
		obs = noopObserver{}
	}
	return &Service{
		name:     name,
		client:   client,
		defaults: defaults,
		log:      log.Named("pipeline").With(zap.String("provider", name)),
		observer: obs,
	}
}

func (s *Service) Name() string { return s.name }

// AnalyzeDiagram is step 1: entry points, data flows and trust boundaries.
func (s *Service) AnalyzeDiagram(ctx context.Context, img threatmodel.Image, text string) (*threatmodel.AnalysisResult, error) {
	s.log.Info("starting architecture diagram analysis",
		zap.String("media_type", img.MediaType), zap.Int("image_length", len(img.Data)))

	text, err := s.promptOr(text, prompts.KeyAnalyze)
	if err != nil {
		return nil, err
	}
	reply, err := s.complete(ctx, "step-1", text, &img)
	if err != nil {
		return nil, err
	}

	var res threatmodel.AnalysisResult
	if err := jsonx.Decode(reply, &res); err != nil {
		return nil, fmt.Errorf("step-1: %w", err)
	}
	res.Normalize()

	s.log.Info("architecture analysis complete",
		zap.Int("entry_points", len(res.EntryPoints)),
		zap.Int("data_flows", len(res.DataFlows)),
		zap.Int("security_boundaries", len(res.SecurityBoundaries)),
		zap.Int("public_resources", len(res.PublicResources)),
		zap.Int("private_resources", len(res.PrivateResources)))
	return &res, nil
}

// ExtractComponents is step 2: three sequential calls for the description,
// the key features and the in-scope components.
func (s *Service) ExtractComponents(ctx context.Context, img threatmodel.Image, in threatmodel.ExtractionPrompts) (*threatmodel.ComponentExtraction, error) {
	s.log.Info("starting component extraction",
		zap.String("media_type", img.MediaType), zap.Int("image_length", len(img.Data)))

	var out threatmodel.ComponentExtraction

	var desc struct {
		ApplicationDescription json.RawMessage `json:"application_description"`
	}
	if err := s.step(ctx, "step-2a", in.AppDesc, prompts.KeyAppDesc, &img, &desc); err != nil {
		return nil, err
	}
	out.ApplicationDescription = flatten(desc.ApplicationDescription, " ")

	var features struct {
		KeyFeatures []json.RawMessage `json:"key_features"`
	}
	if err := s.step(ctx, "step-2b", in.Features, prompts.KeyFeatures, &img, &features); err != nil {
		return nil, err
	}
	out.KeyFeatures = Texts(features.KeyFeatures)

	var components struct {
		InScopeComponents []json.RawMessage `json:"in_scope_components"`
	}
	if err := s.step(ctx, "step-2c", in.Components, prompts.KeyComponents, &img, &components); err != nil {
		return nil, err
	}
	out.InScopeComponents = NormalizeComponents(components.InScopeComponents)

	s.log.Info("component extraction complete",
		zap.Int("description_length", len(out.ApplicationDescription)),
		zap.Int("features", len(out.KeyFeatures)),
		zap.Int("components", len(out.InScopeComponents)))
	return &out, nil
}

// GenerateThreats is step 3. template selects the bundled default when text is empty.
func (s *Service) GenerateThreats(ctx context.Context, in threatmodel.ThreatInput, template, text string) (*threatmodel.ThreatReport, error) {
	s.log.Info("starting threat generation",
		zap.String("template", template),
		zap.Int("components", len(in.ComponentNames)),
		zap.Int("features", len(in.KeyFeatures)))

	text, err := s.promptOr(text, prompts.ThreatKey(template))
	if err != nil {
		return nil, err
	}
	rendered := prompt.Render(text, in)

	reply, err := s.complete(ctx, "step-3", rendered, nil)
	if err != nil {
		return nil, err
	}

	var wire struct {
		Threats []threatWire `json:"threats"`
	}
	if err := jsonx.Decode(reply, &wire); err != nil {
		return nil, fmt.Errorf("step-3: %w", err)
	}

	report := &threatmodel.ThreatReport{Threats: make([]threatmodel.Threat, 0, len(wire.Threats))}
	for _, w := range wire.Threats {
		report.Threats = append(report.Threats, w.threat())
	}

	s.log.Info("threat generation complete", zap.Int("threats", len(report.Threats)))
	return report, nil
}

func (s *Service) step(ctx context.Context, step, text string, key prompts.Key, img *threatmodel.Image, v any) error {
	text, err := s.promptOr(text, key)
	if err != nil {
		return err
	}
	reply, err := s.complete(ctx, step, text, img)
	if err != nil {
		return err
	}
	if err := jsonx.Decode(reply, v); err != nil {
		return fmt.Errorf("%s: %w", step, err)
	}
	return nil
}

func (s *Service) promptOr(text string, key prompts.Key) (string, error) {
	if strings.TrimSpace(text) != "" {
		return text, nil
	}
	def, ok := prompts.Lookup(key)
	if !ok {
		return "", fmt.Errorf("%w: %s", prompts.ErrInvalidKey, key)
	}
	return s.defaults.Default(def.File)
}

func (s *Service) complete(ctx context.Context, step, text string, img *threatmodel.Image) (string, error) {
	req := domai.CompletionRequest{Prompt: text, MaxTokens: MaxTokens, Step: step}
	if img != nil {
		req.Image = &domai.Image{Data: img.Data, MediaType: img.MediaType}
	}

	s.log.Info("sending request",
		zap.String("step", step), zap.Int("prompt_length", len(text)), zap.Bool("image", img != nil))

	start := time.Now()
	reply, err := s.client.Complete(ctx, req)
	s.observer.ObserveProviderCall(s.name, step, time.Since(start), err)
	if err != nil {
		s.log.Error("provider call failed", zap.String("step", step), zap.Error(err))
		return "", fmt.Errorf("%s %s: %w", s.name, step, err)
	}

	s.log.Info("received response", zap.String("step", step), zap.Int("response_length", len(reply)))
	s.log.Debug("raw response", zap.String("step", step), zap.String("excerpt", jsonx.Excerpt(reply, rawExcerptLen)))
	return reply, nil
}
