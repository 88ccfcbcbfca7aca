// Package adminserver implements the optional long-running admin HTTP
// surface exposed by `deltaglider serve` (SPEC_FULL.md §8.4): liveness,
// on-demand bucket stats, and Prometheus exposition. Grounded on the
// teacher's pkg/server/server.go router-plus-graceful-shutdown shape,
// generalized from its replication-job surface to DeltaGlider's stats and
// metrics surface.
package adminserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"deltaglider/pkg/helper/log"
	"deltaglider/pkg/stats"
)

// Server is the admin HTTP daemon.
type Server struct {
	logger         log.Logger
	router         *mux.Router
	httpServer     *http.Server
	aggregator     *stats.Aggregator
	registry       *prometheus.Registry
	cacheFootprint func() (entries int, bytes int64)
}

// Options configures Server construction.
type Options struct {
	Port       int
	Logger     log.Logger
	Aggregator *stats.Aggregator
	// Registry, when non-nil, is exposed at GET /metrics. A nil Registry
	// means the configured metrics sink doesn't support Prometheus
	// exposition (e.g. noop/logging/cloudwatch), and /metrics 404s.
	Registry *prometheus.Registry
	// CacheFootprint, when non-nil, is called on every GET /healthz to
	// report the reference cache's entry count and aggregate byte size.
	// Left nil for cache backends (filesystem) that don't track this
	// in-process.
	CacheFootprint func() (entries int, bytes int64)
}

// New builds a Server and registers its routes; it does not start
// listening until Start is called.
func New(opts Options) *Server {
	s := &Server{
		logger:         opts.Logger,
		router:         mux.NewRouter(),
		aggregator:     opts.Aggregator,
		registry:       opts.Registry,
		cacheFootprint: opts.CacheFootprint,
	}
	s.registerRoutes()
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	return s
}

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	s.router.HandleFunc("/stats/{bucket}", s.handleBucketStats).Methods(http.MethodGet)
	if s.registry != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{"status": "ok"}
	if s.cacheFootprint != nil {
		entries, bytes := s.cacheFootprint()
		body["cache"] = map[string]interface{}{"entries": entries, "bytes": bytes}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) handleBucketStats(w http.ResponseWriter, r *http.Request) {
	bucket := mux.Vars(r)["bucket"]
	prefix := r.URL.Query().Get("prefix")
	detailed := r.URL.Query().Get("detailed") == "true"

	result, err := s.aggregator.Compute(r.Context(), bucket, prefix, stats.Options{Detailed: detailed})
	if err != nil {
		s.logger.WithFields(map[string]interface{}{"bucket": bucket}).Error("bucket stats computation failed", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}

// Start begins serving and blocks until the process receives SIGINT or
// SIGTERM, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithFields(map[string]interface{}{"address": s.httpServer.Addr}).Info("admin server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case <-sigChan:
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}
