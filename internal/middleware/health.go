package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// HealthChecker defines interface for health checking
type HealthChecker interface {
	Check(ctx context.Context) error
}

// CheckerFunc adapts a function to HealthChecker.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Check(ctx context.Context) error { return f(ctx) }

// DatabaseCheck is the checker name reported as database_available.
const DatabaseCheck = "database"

// HealthStatus represents the health status
type HealthStatus struct {
	Status            string                 `json:"status"`
	DatabaseAvailable bool                   `json:"database_available"`
	GeminiAvailable   bool                   `json:"gemini_available"`
	Providers         map[string]bool        `json:"providers"`
	Timestamp         time.Time              `json:"timestamp"`
	Checks            map[string]CheckStatus `json:"checks"`
}

// CheckStatus represents individual check status
type CheckStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthHandler runs every checker. The service still answers when a
// dependency is down, so a failed check reports "degraded" with 200.
func HealthHandler(checkers map[string]HealthChecker, providers func() map[string]bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := HealthStatus{
			Status:    "healthy",
			Timestamp: time.Now(),
			Providers: map[string]bool{},
			Checks:    make(map[string]CheckStatus),
		}
		if providers != nil {
			health.Providers = providers()
		}
		health.GeminiAvailable = health.Providers["gemini"]

		for name, checker := range checkers {
			if err := checker.Check(ctx); err != nil {
				health.Status = "degraded"
				health.Checks[name] = CheckStatus{
					Status:  "unhealthy",
					Message: err.Error(),
				}
				continue
			}
			health.Checks[name] = CheckStatus{Status: "healthy"}
			if name == DatabaseCheck {
				health.DatabaseAvailable = true
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(health)
	}
}

// ReadinessHandler creates a readiness check handler (simpler than health)
func ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "ready",
		"timestamp": time.Now(),
	})
}

// LivenessHandler creates a liveness check handler (simplest check)
func LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
