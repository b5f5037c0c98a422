package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/weather-alert-feed/internal/domain"
	"github.com/couchcryptid/weather-alert-feed/internal/rotation"
)

// CycleSource returns the most recently accepted poll cycle.
type CycleSource interface {
	LastCycle() (domain.Cycle, bool)
}

// RotationSource returns the current rotation state.
type RotationSource interface {
	State() rotation.State
}

// Refresher starts a poll cycle on demand.
type Refresher interface {
	Refresh()
}

// API groups the collaborators behind the HTTP routes.
type API struct {
	Ready     sharedobs.ReadinessChecker
	Cycles    CycleSource
	Rotation  RotationSource
	Refresher Refresher
	// Lang is the default language for rendered display text.
	Lang string
}

// Server exposes health, readiness, metrics, and the alert API.
type Server struct {
	httpServer *http.Server
	api        API
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and the
// /api routes.
func NewServer(addr string, api API, logger *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		api:    api,
		logger: logger,
	}

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(api.Ready))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/alerts", s.handleAlerts)
		r.Get("/alerts/current", s.handleCurrent)
		r.Post("/refresh", s.handleRefresh)
	})

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type alertView struct {
	domain.Alert
	Display domain.DisplayText `json:"display"`
}

type alertsResponse struct {
	CycleID     string      `json:"cycle_id,omitempty"`
	CompletedAt time.Time   `json:"completed_at,omitzero"`
	Regions     int         `json:"regions"`
	Failed      int         `json:"failed"`
	Alerts      []alertView `json:"alerts"`
}

type currentResponse struct {
	Index             int       `json:"index"`
	Total             int       `json:"total"`
	TransitionEnabled bool      `json:"transition_enabled"`
	Alert             alertView `json:"alert"`
}

func (s *Server) lang(r *http.Request) string {
	if l := r.URL.Query().Get("lang"); l != "" {
		return l
	}
	return s.api.Lang
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	lang := s.lang(r)
	resp := alertsResponse{Alerts: []alertView{}}
	if cycle, ok := s.api.Cycles.LastCycle(); ok {
		resp.CycleID = cycle.ID
		resp.CompletedAt = cycle.CompletedAt
		resp.Regions = cycle.Regions
		resp.Failed = cycle.Failed
		for _, a := range cycle.Alerts {
			resp.Alerts = append(resp.Alerts, alertView{Alert: a, Display: a.Display(lang)})
		}
	}
	sharedobs.WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	state := s.api.Rotation.State()
	cur, ok := state.Current()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, currentResponse{
		Index:             state.Index,
		Total:             len(state.Alerts),
		TransitionEnabled: state.TransitionEnabled,
		Alert:             alertView{Alert: cur, Display: cur.Display(s.lang(r))},
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.api.Refresher.Refresh()
	s.logger.Info("manual refresh requested", "request_id", middleware.GetReqID(r.Context()))
	sharedobs.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "refresh scheduled"})
}
