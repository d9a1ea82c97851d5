package providers

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	aiapp "github.com/bryanwahyu/auspex/internal/application/ai"
	"github.com/bryanwahyu/auspex/internal/config"
	domai "github.com/bryanwahyu/auspex/internal/domain/ai"
	"github.com/bryanwahyu/auspex/internal/domain/prompts"
	"github.com/bryanwahyu/auspex/internal/domain/threatmodel"
	"github.com/bryanwahyu/auspex/internal/infra/ai/bedrock"
	"github.com/bryanwahyu/auspex/internal/infra/ai/claude"
	"github.com/bryanwahyu/auspex/internal/infra/ai/gemini"
	"github.com/bryanwahyu/auspex/internal/infra/ai/openai"
)

// Factory builds the completer for one provider.
type Factory func(ctx context.Context) (domai.Completer, error)

type entry struct {
	factory    Factory
	configured bool
}

// Registry lazily builds one pipeline per provider and keeps it for the
// process lifetime.
type Registry struct {
	mu       sync.Mutex
	entries  map[string]entry
	built    map[string]*aiapp.Service
	defaults prompts.Source
	timeout  time.Duration
	log      *zap.Logger
	observer aiapp.Observer
}

func New(defaults prompts.Source, timeout time.Duration, log *zap.Logger, obs aiapp.Observer) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		entries:  make(map[string]entry),
		built:    make(map[string]*aiapp.Service),
		defaults: defaults,
		timeout:  timeout,
		log:      log,
		observer: obs,
	}
}

// Register adds a provider. configured reports whether credentials are present
// and is surfaced by Available.
func (r *Registry) Register(name string, configured bool, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = entry{factory: f, configured: configured}
	delete(r.built, name)
}

// FromConfig registers the four built-in providers.
func FromConfig(cfg config.Providers, defaults prompts.Source, log *zap.Logger, obs aiapp.Observer) *Registry {
	r := New(defaults, cfg.Timeout(), log, obs)
	r.Register(threatmodel.ProviderBedrock, true, func(ctx context.Context) (domai.Completer, error) {
		return bedrock.NewClient(ctx, cfg.Bedrock.Region, cfg.Bedrock.ModelID, r.log)
	})
	r.Register(threatmodel.ProviderClaude, cfg.Claude.APIKey != "", func(context.Context) (domai.Completer, error) {
		return claude.NewClient(claude.Options{
			APIKey:  cfg.Claude.APIKey,
			Model:   cfg.Claude.Model,
			BaseURL: cfg.Claude.BaseURL,
		}, r.log)
	})
	r.Register(threatmodel.ProviderGemini, cfg.Gemini.APIKey != "", func(ctx context.Context) (domai.Completer, error) {
		return gemini.NewClient(ctx, gemini.Options{
			APIKey:      cfg.Gemini.APIKey,
			Model:       cfg.Gemini.Model,
			Temperature: cfg.Gemini.Temperature,
		}, r.log)
	})
	r.Register(threatmodel.ProviderOpenAI, cfg.OpenAI.APIKey != "", func(context.Context) (domai.Completer, error) {
		return openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model, http.DefaultClient, r.log)
	})
	return r
}

// Get returns the analyzer for name, constructing it on first use. A failed
// construction is not cached.
func (r *Registry) Get(name string) (threatmodel.Analyzer, error) {
	if !slices.Contains(threatmodel.Providers, name) {
		return nil, fmt.Errorf("%w: %q", threatmodel.ErrInvalidProvider, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if svc, ok := r.built[name]; ok {
		return svc, nil
	}
	e, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", threatmodel.ErrInvalidProvider, name)
	}

	client, err := e.factory(context.Background())
	if err != nil {
		return nil, fmt.Errorf("init %s provider: %w", name, err)
	}
	svc := aiapp.NewService(name, withTimeout(client, r.timeout), r.defaults, r.log, r.observer)
	r.built[name] = svc
	r.log.Info("provider initialized", zap.String("provider", name))
	return svc, nil
}

// Available reports, per provider, whether credentials are configured.
func (r *Registry) Available() map[string]bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]bool, len(r.entries))
	for name, e := range r.entries {
		out[name] = e.configured
	}
	return out
}

type deadline struct {
	next domai.Completer
	d    time.Duration
}

func withTimeout(c domai.Completer, d time.Duration) domai.Completer {
	if d <= 0 {
		return c
	}
	return deadline{next: c, d: d}
}

func (t deadline) Complete(ctx context.Context, req domai.CompletionRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.next.Complete(ctx, req)
}
