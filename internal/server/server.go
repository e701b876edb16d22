package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/parcelforge/shipping/internal/telemetry"
	"github.com/parcelforge/shipping/pkg/shipping"
)

// Server is the HTTP shell around the shipping core. It exposes health,
// metrics, the registered carriers, and the saved label artifacts; shipment
// operations are driven through the shipping package directly.
type Server struct {
	port     int
	labelDir string
	registry *shipping.Registry
	logger   *otelzap.Logger
	metrics  *telemetry.Metrics
}

// Config holds server configuration.
type Config struct {
	Port int
	// LabelDir, when set, is served under /labels/ so stored label
	// artifact URLs resolve.
	LabelDir string
}

// New creates a new server instance.
func New(cfg Config, registry *shipping.Registry, logger *otelzap.Logger) *Server {
	return &Server{
		port:     cfg.Port,
		labelDir: cfg.LabelDir,
		registry: registry,
		logger:   logger,
		metrics:  telemetry.NewMetrics(),
	}
}

// Run starts the HTTP server and blocks until context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.Int("port", s.port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// Handler builds the route table. Every route except the scrape endpoint is
// wrapped with request counting and duration recording.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/health", s.instrument("health", http.HandlerFunc(s.handleHealth)))
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/carriers", s.instrument("carriers", http.HandlerFunc(s.handleCarriers)))

	if s.labelDir != "" {
		mux.Handle("/labels/", s.instrument("labels", http.StripPrefix("/labels/",
			http.FileServer(http.Dir(s.labelDir)))))
	}

	return mux
}

func (s *Server) instrument(operation string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.metrics.RecordRequest(operation, "", strconv.Itoa(rec.status), time.Since(start).Seconds())
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleCarriers(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	types := s.registry.Types()
	carriers := make([]string, 0, len(types))
	for _, t := range types {
		carriers = append(carriers, string(t))
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"carriers": carriers})
}
