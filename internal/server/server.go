package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/phuslu/log"

	"marketpulse/internal/analyzer"
	"marketpulse/internal/logging"
	"marketpulse/internal/market"
	"marketpulse/internal/news"
)

type NewsFetcher interface {
	FetchNews(ctx context.Context, query string, limit int) []news.Item
}

type Analyzer interface {
	Analyze(ctx context.Context, item news.Item) *analyzer.Analysis
}

type Recommender interface {
	Recommend(ctx context.Context, themes []string, newsContext string, markets []market.Market) []analyzer.StockCandidate
}

type Snapshotter interface {
	Snapshot(ctx context.Context, ticker string, m market.Market) *market.Snapshot
}

// ChartRenderer writes a chart file and returns its path, or "" on failure.
type ChartRenderer interface {
	Render(ctx context.Context, ticker string, m market.Market) string
}

type Notifier interface {
	Send(ctx context.Context, text string) error
}

// Deps are the collaborators of the HTTP service. Charts and Notifier may
// be nil.
type Deps struct {
	News        NewsFetcher
	Analyzer    Analyzer
	Recommender Recommender
	Market      Snapshotter
	Charts      ChartRenderer
	Notifier    Notifier
	StaticDir   string
	Logger      *log.Logger
}

// Server manages the HTTP server and routes
type Server struct {
	deps     Deps
	addr     string
	router   *http.ServeMux
	server   *http.Server
	validate *validator.Validate
	logger   *log.Logger
}

func New(host string, port int, deps Deps) *Server {
	s := &Server{
		deps:     deps,
		addr:     fmt.Sprintf("%s:%d", host, port),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logging.Component(deps.Logger, "server"),
	}

	s.router = s.setupRoutes()

	// Analysis makes several model calls, so writes get a generous timeout.
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the routes wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return s.withMiddleware(s.router)
}

func (s *Server) Start() error {
	s.logger.Info().Str("address", s.addr).Msg("HTTP server starting")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down HTTP server...")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info().Msg("HTTP server stopped")
	return nil
}
