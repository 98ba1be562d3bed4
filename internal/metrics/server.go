package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rickgao/gateway-presence/internal/stats"
)

// HealthPath is where the JSON health document is served.
const HealthPath = "/health"

// pingTimeout bounds the history readiness check.
const pingTimeout = 2 * time.Second

// Pinger is a dependency whose reachability is reported by /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves Prometheus metrics at path and a JSON health document at
// HealthPath. history may be nil when no database is configured.
func Handler(path string, gatherer prometheus.Gatherer, counters *stats.Counters, history Pinger) http.Handler {
	mux := http.NewServeMux()

	mux.Handle(path, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	mux.HandleFunc(HealthPath, func(w http.ResponseWriter, r *http.Request) {
		snap := counters.Snapshot()

		health := struct {
			Status   string `json:"status"`
			Online   int64  `json:"online"`
			Total    int64  `json:"total"`
			Ended    int64  `json:"ended"`
			Sessions int64  `json:"live_sessions"`
			History  string `json:"history,omitempty"`
		}{
			Status:   "healthy",
			Online:   snap.Online,
			Total:    snap.Total,
			Ended:    snap.Ended,
			Sessions: snap.Total - snap.Ended,
		}

		historyDown := false
		if history != nil {
			ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
			err := history.Ping(ctx)
			cancel()

			health.History = "ok"
			if err != nil {
				health.History = "unreachable"
				historyDown = true
			}
		}

		switch {
		case snap.Total > 0 && snap.Ended >= snap.Total:
			health.Status = "unhealthy"
		case snap.Online < snap.Total || historyDown:
			health.Status = "degraded"
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	return mux
}

// Listen binds the metrics port so a busy port fails at startup.
func Listen(port int) (net.Listener, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("listen on metrics port %d: %w", port, err)
	}
	return ln, nil
}

// Serve runs an HTTP server on ln until ctx is done. ln is closed on return.
func Serve(ctx context.Context, ln net.Listener, handler http.Handler, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting metrics server", "addr", ln.Addr().String())
		if err := server.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
