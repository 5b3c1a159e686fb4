// Package workercmd holds the startup/shutdown boilerplate shared by the
// three worker binaries: double-signal force-exit, and /healthz + /metrics
// HTTP endpoints, grounded in the teacher's cli/cmd/ariadne/main.go wiring.
package workercmd

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Baltic-RCC/RAO/internal/telemetry/metrics"
)

// WithSignalCancel returns a context cancelled on the first SIGINT/SIGTERM.
// A second signal forces os.Exit(1), matching the teacher's double-signal
// idiom for operators who need an immediate exit during a stuck shutdown.
func WithSignalCancel(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("signal received; initiating graceful shutdown...")
		cancel()
		<-sigCh
		log.Println("second signal received; forcing exit")
		os.Exit(1)
	}()
	return ctx, cancel
}

// HealthCheck reports whether the worker is ready to keep consuming.
type HealthCheck func() (ok bool, detail map[string]any)

// ServeHealthAndMetrics starts /healthz and /metrics listeners on their
// respective addresses (either may be empty to disable). Both servers shut
// down when ctx is cancelled.
func ServeHealthAndMetrics(ctx context.Context, healthAddr string, health HealthCheck, metricsAddr string, reg *prometheus.Registry) {
	if healthAddr != "" {
		mux := http.NewServeMux()
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			ok, detail := true, map[string]any{}
			if health != nil {
				ok, detail = health()
			}
			w.Header().Set("Content-Type", "application/json")
			if !ok {
				w.WriteHeader(http.StatusServiceUnavailable)
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": ok, "detail": detail})
		})
		serve(ctx, healthAddr, mux, "health")
	}

	if metricsAddr != "" && reg != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(reg))
		serve(ctx, metricsAddr, mux, "metrics")
	}
}

func serve(ctx context.Context, addr string, mux *http.ServeMux, name string) {
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()
	go func() {
		log.Printf("%s endpoint listening on %s", name, addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("%s server stopped: %v", name, err)
		}
	}()
}
