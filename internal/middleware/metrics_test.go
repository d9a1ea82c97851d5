package middleware

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domai "github.com/bryanwahyu/auspex/internal/domain/ai"
)

func TestMetricsMiddleware_RoutePattern(t *testing.T) {
	m := NewMetrics("test")
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/prompts/{key}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/prompts/step1_analyze", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/prompts/{key}", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.inFlight))
}

func TestObserveProviderCall(t *testing.T) {
	m := NewMetrics("test")
	m.ObserveProviderCall("gemini", "step-1", time.Second, nil)
	m.ObserveProviderCall("gemini", "step-1", time.Second, fmt.Errorf("x: %w", domai.ErrQuotaExceeded))
	m.ObserveProviderCall("gemini", "step-1", time.Second, errors.New("boom"))

	for _, outcome := range []string{"ok", "quota", "error"} {
		assert.Equal(t, 1.0, testutil.ToFloat64(m.providerCalls.WithLabelValues("gemini", "step-1", outcome)), outcome)
	}
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics("auspex")
	m.ObserveProviderCall("bedrock", "step-3", time.Second, nil)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()
	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.True(t, strings.Contains(string(body), `auspex_provider_calls_total{outcome="ok",provider="bedrock",step="step-3"} 1`))
}
