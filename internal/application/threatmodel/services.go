package threatmodel

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bryanwahyu/auspex/internal/application"
	appai "github.com/bryanwahyu/auspex/internal/application/ai"
	"github.com/bryanwahyu/auspex/internal/domain/prompts"
	domain "github.com/bryanwahyu/auspex/internal/domain/threatmodel"
)

// Defaults applied to omitted request fields.
const (
	DefaultProvider  = domain.ProviderBedrock
	DefaultTemplate  = domain.TemplateBaseline
	DefaultMediaType = "image/png"
)

// PromptReader returns the current prompt text for a key, or "" when the
// pipeline should use its bundled default.
type PromptReader interface {
	Text(ctx context.Context, key prompts.Key) (string, error)
}

// Service implements the three analysis use-cases on top of the provider
// pipelines. Archive is optional.
type Service struct {
	Providers domain.Resolver
	Prompts   PromptReader
	Archive   domain.Archive
	Clock     application.Clock
	Log       *zap.Logger
}

//
// ==== USE CASES ====
//

// ImageCommand is the input of steps 1 and 2.
type ImageCommand struct {
	Image     string
	MediaType string
	SessionID string
	Provider  string
}

type AnalyzeDiagramResult struct {
	SessionID string `json:"session_id"`
	domain.AnalysisResult
}

type ExtractComponentsResult struct {
	SessionID string `json:"session_id"`
	domain.ComponentExtraction
}

// GenerateThreatsCommand is the input of step 3. Components and features
// are accepted in whatever shape step 2 (or the client) produced them.
type GenerateThreatsCommand struct {
	ApplicationDescription string
	InScopeComponents      []json.RawMessage
	KeyFeatures            []json.RawMessage
	Template               string
	SessionID              string
	Provider               string
}

type GenerateThreatsResult struct {
	SessionID string          `json:"session_id"`
	Threats   []domain.Threat `json:"threats"`
}

// AnalyzeDiagram runs step 1.
func (s *Service) AnalyzeDiagram(ctx context.Context, cmd ImageCommand) (*AnalyzeDiagramResult, error) {
	analyzer, err := s.Providers.Get(orDefault(cmd.Provider, DefaultProvider))
	if err != nil {
		return nil, err
	}
	session := s.session(cmd.SessionID)

	text, err := s.Prompts.Text(ctx, prompts.KeyAnalyze)
	if err != nil {
		return nil, err
	}
	res, err := analyzer.AnalyzeDiagram(ctx, image(cmd), text)
	if err != nil {
		return nil, fmt.Errorf("analyze diagram: %w", err)
	}

	s.archive(ctx, session, "step1_analysis", res)
	return &AnalyzeDiagramResult{SessionID: session, AnalysisResult: *res}, nil
}

// ExtractComponents runs step 2.
func (s *Service) ExtractComponents(ctx context.Context, cmd ImageCommand) (*ExtractComponentsResult, error) {
	analyzer, err := s.Providers.Get(orDefault(cmd.Provider, DefaultProvider))
	if err != nil {
		return nil, err
	}
	session := s.session(cmd.SessionID)

	var p domain.ExtractionPrompts
	for key, dst := range map[prompts.Key]*string{
		prompts.KeyAppDesc:    &p.AppDesc,
		prompts.KeyFeatures:   &p.Features,
		prompts.KeyComponents: &p.Components,
	} {
		if *dst, err = s.Prompts.Text(ctx, key); err != nil {
			return nil, err
		}
	}

	res, err := analyzer.ExtractComponents(ctx, image(cmd), p)
	if err != nil {
		return nil, fmt.Errorf("extract components: %w", err)
	}

	s.archive(ctx, session, "step2_components", res)
	return &ExtractComponentsResult{SessionID: session, ComponentExtraction: *res}, nil
}

// GenerateThreats runs step 3.
func (s *Service) GenerateThreats(ctx context.Context, cmd GenerateThreatsCommand) (*GenerateThreatsResult, error) {
	template := orDefault(cmd.Template, DefaultTemplate)
	if !contains(domain.Templates, template) {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidTemplate, template)
	}
	analyzer, err := s.Providers.Get(orDefault(cmd.Provider, DefaultProvider))
	if err != nil {
		return nil, err
	}
	session := s.session(cmd.SessionID)

	text, err := s.Prompts.Text(ctx, prompts.ThreatKey(template))
	if err != nil {
		return nil, err
	}
	in := domain.ThreatInput{
		ApplicationDescription: cmd.ApplicationDescription,
		ComponentNames:         appai.ComponentNames(cmd.InScopeComponents),
		KeyFeatures:            appai.Texts(cmd.KeyFeatures),
	}
	report, err := analyzer.GenerateThreats(ctx, in, template, text)
	if err != nil {
		return nil, fmt.Errorf("generate threats: %w", err)
	}

	s.archive(ctx, session, "step3_threats_"+template, report)
	return &GenerateThreatsResult{SessionID: session, Threats: report.Threats}, nil
}

func (s *Service) session(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return application.NewSessionID(s.clock())
}

func (s *Service) clock() application.Clock {
	if s.Clock == nil {
		return application.SystemClock{}
	}
	return s.Clock
}

// archive stores a copy of a step result. Failures are logged only.
func (s *Service) archive(ctx context.Context, session, step string, v any) {
	if s.Archive == nil {
		return
	}
	if err := s.Archive.Put(ctx, session, step, v); err != nil && s.Log != nil {
		s.Log.Warn("archive step result failed",
			zap.String("session_id", session), zap.String("step", step), zap.Error(err))
	}
}

func image(cmd ImageCommand) domain.Image {
	return domain.Image{Data: cmd.Image, MediaType: orDefault(cmd.MediaType, DefaultMediaType)}
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
