// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/vcdash/internal/adapters/usageapi"
	service "github.com/okian/vcdash/internal/app"
	"github.com/okian/vcdash/internal/domain/usage"
	"github.com/okian/vcdash/internal/domain/weekly"
)

// Dependencies required by HTTP handlers. *service.Service implements it.
type Dependencies interface {
	Weekly(ctx context.Context) (weekly.Chart, error)
	Latest() (service.Snapshot, bool)
	Today(ctx context.Context) (usage.TodaySummary, error)
	Total(ctx context.Context) ([]usage.RankedUsage, error)
	Ranking(ctx context.Context) ([]usage.RankedUsage, error)
	Monthly(ctx context.Context, year, month int) (usage.MonthlyReport, error)
	CurrentMonth() (year, month int, err error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	usageHandler     *UsageHandler
	dashboardHandler *dashboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		usageHandler:     NewUsageHandler(deps),
		dashboardHandler: newDashboardHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("/api/v1/weekly-chart", s.route(s.usageHandler.HandleWeeklyChart, "weekly_chart"))
	mux.HandleFunc("/api/v1/today-usage", s.route(s.usageHandler.HandleToday, "today_usage"))
	mux.HandleFunc("/api/v1/total-usage", s.route(s.usageHandler.HandleTotal, "total_usage"))
	mux.HandleFunc("/api/v1/ranking", s.route(s.usageHandler.HandleRanking, "ranking"))
	mux.HandleFunc("/api/v1/monthly-report", s.route(s.usageHandler.HandleMonthly, "monthly_report"))
}

func (s *Server) route(h http.HandlerFunc, endpoint string) http.HandlerFunc {
	return RequestIDMiddleware(MetricsMiddleware(h, endpoint))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps service errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, usageapi.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, ErrNoSnapshot):
		writeError(w, http.StatusServiceUnavailable, "not_ready", err)
	case errors.Is(err, service.ErrUpstream):
		writeError(w, http.StatusBadGateway, "upstream_error", err)
	case errors.Is(err, weekly.ErrClockUnavailable):
		writeError(w, http.StatusInternalServerError, "clock_unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
