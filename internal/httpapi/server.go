// Package httpapi exposes the widget core over HTTP and websocket.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/athompson0066/Roofing-Estimator/internal/store"
	"github.com/athompson0066/Roofing-Estimator/pkg/estimate"
	"github.com/athompson0066/Roofing-Estimator/pkg/profile"
	"github.com/athompson0066/Roofing-Estimator/pkg/voice"
)

// Scanner builds a business profile from a seed URL.
type Scanner interface {
	Scan(ctx context.Context, seedURL, customInstruction string) (*profile.BusinessProfile, error)
}

// Estimator produces a cost estimate for a task against a profile.
type Estimator interface {
	Estimate(ctx context.Context, task estimate.Task, p *profile.BusinessProfile) (*estimate.Result, error)
}

// Config carries server tunables from internal/config.
type Config struct {
	MaxBodyBytes       int64
	CORSAllowedOrigins []string
	LiveModel          string
	LiveVoice          string
}

// Server routes widget API requests.
type Server struct {
	cfg       Config
	logger    *slog.Logger
	scanner   Scanner
	estimator Estimator
	store     store.Store
	dialer    voice.Dialer

	mux *http.ServeMux
}

func New(cfg Config, logger *slog.Logger, scanner Scanner, estimator Estimator, st store.Store, dialer voice.Dialer) *Server {
	s := &Server{
		cfg:       cfg,
		logger:    logger,
		scanner:   scanner,
		estimator: estimator,
		store:     st,
		dialer:    dialer,
		mux:       http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("POST /v1/scan", s.handleScan)
	s.mux.HandleFunc("POST /v1/estimate", s.handleEstimate)
	s.mux.HandleFunc("GET /v1/profiles/{id}", s.handleGetProfile)
	s.mux.HandleFunc("GET /v1/leads", s.handleListLeads)
	s.mux.HandleFunc("GET /v1/voice", s.handleVoice)
}

// Handler returns the full middleware chain.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = bodyLimitMiddleware(s.cfg.MaxBodyBytes, h)
	h = corsMiddleware(s.cfg.CORSAllowedOrigins, h)
	h = accessLogMiddleware(s.logger, h)
	h = recoverMiddleware(s.logger, h)
	return h
}
