package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/navgate/pkg/logger"
)

// Check probes one dependency.
type Check func(ctx context.Context) error

// HealthReport is the body of the health endpoints.
type HealthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Liveness answers 200 as long as the process serves requests.
func Liveness() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeReport(w, http.StatusOK, HealthReport{Status: "alive"})
	}
}

// Readiness runs all checks concurrently, each bounded by timeout, and
// answers 200 when every check passed or 503 otherwise.
func Readiness(log *slog.Logger, timeout time.Duration, checks map[string]Check) http.HandlerFunc {
	if log == nil {
		log = logger.Discard()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		var (
			mu     sync.Mutex
			report = HealthReport{Status: "ready", Checks: make(map[string]string, len(checks))}
			failed bool
		)
		var g errgroup.Group
		for name, check := range checks {
			g.Go(func() error {
				err := check(ctx)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					failed = true
					report.Checks[name] = err.Error()
					log.ErrorContext(ctx, "readiness check failed", slog.String("check", name), logger.Error(err))
					return nil
				}
				report.Checks[name] = "ok"
				return nil
			})
		}
		_ = g.Wait()

		status := http.StatusOK
		if failed {
			status = http.StatusServiceUnavailable
			report.Status = "not_ready"
		}
		writeReport(w, status, report)
	}
}

func writeReport(w http.ResponseWriter, status int, report HealthReport) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(report)
}
