package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"energy-insights/internal/dashboard"
	"energy-insights/internal/query"
	"energy-insights/internal/render"
)

// Options configure the HTTP view API.
type Options struct {
	Address         string
	GracefulTimeout time.Duration
}

// Server exposes the composed dashboard, panel images and the query protocol.
type Server struct {
	opts     Options
	session  *dashboard.Session
	resolver *query.Resolver
	renderer *render.Renderer
	gatherer prometheus.Gatherer
	logger   zerolog.Logger
}

// New wires the server. gatherer may be nil to omit /metrics.
func New(opts Options, session *dashboard.Session, resolver *query.Resolver, renderer *render.Renderer, gatherer prometheus.Gatherer, logger zerolog.Logger) *Server {
	if opts.Address == "" {
		opts.Address = ":8080"
	}
	if opts.GracefulTimeout <= 0 {
		opts.GracefulTimeout = 10 * time.Second
	}
	return &Server{
		opts:     opts,
		session:  session,
		resolver: resolver,
		renderer: renderer,
		gatherer: gatherer,
		logger:   logger.With().Str("component", "server").Logger(),
	}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/panels", s.listPanels).Methods(http.MethodGet)
	api.HandleFunc("/panels/{id}.{format:png|svg}", s.panelImage).Methods(http.MethodGet)
	api.HandleFunc("/selection", s.getSelection).Methods(http.MethodGet)
	api.HandleFunc("/selection", s.applySelection).Methods(http.MethodPost)
	api.HandleFunc("/refresh", s.refresh).Methods(http.MethodPost)
	api.HandleFunc("/query", s.currentQuery).Methods(http.MethodGet)
	api.HandleFunc("/query", s.submitQuery).Methods(http.MethodPost)
	api.HandleFunc("/query", s.clearQuery).Methods(http.MethodDelete)
	api.HandleFunc("/query/chart.{format:png|svg}", s.queryImage).Methods(http.MethodGet)

	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	return r
}

// Handler wraps the router with access logging and panic recovery.
func (s *Server) Handler() http.Handler {
	access := s.logger.With().Str("stream", "access").Logger()
	logged := handlers.CombinedLoggingHandler(access, s.Router())
	return handlers.RecoveryHandler(handlers.PrintRecoveryStack(true), handlers.RecoveryLogger(recoveryLogger{s.logger}))(logged)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("address", s.opts.Address).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.GracefulTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info().Msg("http server stopped")
	return nil
}

type recoveryLogger struct {
	logger zerolog.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.logger.Error().Interface("panic", v).Msg("handler panic recovered")
}
