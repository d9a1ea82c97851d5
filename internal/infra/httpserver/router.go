package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	apptm "github.com/bryanwahyu/auspex/internal/application/threatmodel"
	domai "github.com/bryanwahyu/auspex/internal/domain/ai"
	"github.com/bryanwahyu/auspex/internal/domain/prompts"
	"github.com/bryanwahyu/auspex/internal/domain/threatmodel"
	"github.com/bryanwahyu/auspex/internal/middleware"
)

const (
	apiTitle   = "Auspex Threat Modeling API"
	apiVersion = "1.0.0"

	// maxBodyBytes bounds request bodies; diagrams arrive base64 encoded.
	maxBodyBytes = 32 << 20
)

// ThreatModeler runs the three analysis steps.
type ThreatModeler interface {
	AnalyzeDiagram(ctx context.Context, cmd apptm.ImageCommand) (*apptm.AnalyzeDiagramResult, error)
	ExtractComponents(ctx context.Context, cmd apptm.ImageCommand) (*apptm.ExtractComponentsResult, error)
	GenerateThreats(ctx context.Context, cmd apptm.GenerateThreatsCommand) (*apptm.GenerateThreatsResult, error)
}

// PromptStore manages the editable prompt texts.
type PromptStore interface {
	List(ctx context.Context) ([]*prompts.Record, error)
	Get(ctx context.Context, key prompts.Key) (string, error)
	Update(ctx context.Context, key prompts.Key, content string) error
	Reset(ctx context.Context, key prompts.Key) error
}

type Options struct {
	Log            *zap.Logger
	Metrics        *middleware.Metrics
	HealthCheckers map[string]middleware.HealthChecker

	// Providers reports per-provider availability for /health.
	Providers   func() map[string]bool
	APIKeys     map[string]string
	RateLimit   RateLimit
	CORSOrigins []string
}

type RateLimit struct {
	Capacity   int
	RefillRate int
}

type Router struct {
	threats ThreatModeler
	prompts PromptStore
	log     *zap.Logger
}

// NewRouter builds the API handler. Background work started for it, such as
// rate limiter cleanup, stops when ctx is done.
func NewRouter(ctx context.Context, threats ThreatModeler, store PromptStore, opts Options) http.Handler {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	r := &Router{threats: threats, prompts: store, log: opts.Log.Named("http")}
	mux := chi.NewRouter()

	mux.Use(middleware.RequestID)
	mux.Use(chimw.RealIP)
	mux.Use(middleware.Logging(opts.Log))
	if opts.Metrics != nil {
		mux.Use(opts.Metrics.Middleware)
	}
	mux.Use(chimw.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	mux.Get("/", r.wrap(r.handleRoot))
	mux.Get("/health", middleware.HealthHandler(opts.HealthCheckers, opts.Providers))
	mux.Get("/healthz", middleware.LivenessHandler)
	mux.Get("/readyz", middleware.ReadinessHandler)
	if opts.Metrics != nil {
		mux.Handle("/metrics", opts.Metrics.Handler())
	}

	mux.Route("/api", func(rt chi.Router) {
		rt.Use(middleware.APIKeyAuth(opts.APIKeys))
		rt.Use(middleware.RateLimitMiddleware(ctx, opts.RateLimit.Capacity, opts.RateLimit.RefillRate))

		rt.Get("/prompts", r.wrap(r.handleListPrompts))
		rt.Get("/prompts/{key}", r.wrap(r.handleGetPrompt))
		rt.Put("/prompts/{key}", r.wrap(r.handleUpdatePrompt))
		rt.Post("/prompts/{key}", r.wrap(r.handleUpdatePrompt))
		rt.Post("/prompts/{key}/reset", r.wrap(r.handleResetPrompt))

		rt.Post("/analyze-diagram", r.wrap(r.handleAnalyzeDiagram))
		rt.Post("/extract-components", r.wrap(r.handleExtractComponents))
		rt.Post("/generate-threats", r.wrap(r.handleGenerateThreats))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// httpError carries a handler-chosen status and message.
type httpError struct {
	status int
	msg    string
	err    error
}

func (e *httpError) Error() string { return fmt.Sprintf("%s: %v", e.msg, e.err) }
func (e *httpError) Unwrap() error { return e.err }

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			status, msg := statusFor(err)
			fields := []zap.Field{
				zap.String("path", req.URL.Path),
				zap.Int("status", status),
				zap.String("request_id", middleware.GetRequestID(req.Context())),
				zap.Error(err),
			}
			if status >= http.StatusInternalServerError {
				r.log.Error("request failed", fields...)
			} else {
				r.log.Warn("request rejected", fields...)
			}
			middleware.WriteDetail(w, status, msg)
		}
	}
}

func statusFor(err error) (int, string) {
	var he *httpError
	if errors.As(err, &he) {
		return he.status, he.msg
	}
	switch {
	case errors.Is(err, prompts.ErrInvalidKey):
		return http.StatusNotFound, "Invalid prompt key"
	case errors.Is(err, prompts.ErrNotFound):
		return http.StatusNotFound, "Prompt not found"
	case errors.Is(err, threatmodel.ErrInvalidProvider),
		errors.Is(err, threatmodel.ErrInvalidTemplate),
		errors.Is(err, threatmodel.ErrInvalidInput),
		errors.Is(err, prompts.ErrReadOnly),
		errors.Is(err, prompts.ErrUpdateFailed):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domai.ErrQuotaExceeded):
		return http.StatusTooManyRequests, err.Error()
	}
	return http.StatusInternalServerError, err.Error()
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, req *http.Request, v any) error {
	req.Body = http.MaxBytesReader(w, req.Body, maxBodyBytes)
	if err := json.NewDecoder(req.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed JSON body: %v", threatmodel.ErrInvalidInput, err)
	}
	return nil
}

// GET /
func (r *Router) handleRoot(w http.ResponseWriter, req *http.Request) error {
	return writeJSON(w, http.StatusOK, map[string]string{"message": apiTitle, "version": apiVersion})
}
