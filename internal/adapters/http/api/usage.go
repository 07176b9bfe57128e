package api

import (
	"fmt"
	"net/http"
	"strconv"
)

// UsageHandler serves the usage views.
type UsageHandler struct {
	deps Dependencies
}

// NewUsageHandler creates a new usage handler.
func NewUsageHandler(deps Dependencies) *UsageHandler {
	return &UsageHandler{deps: deps}
}

// HandleWeeklyChart handles GET /api/v1/weekly-chart.
// With ?cached=true the last background snapshot is served instead of
// fetching and pivoting again.
func (h *UsageHandler) HandleWeeklyChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	if cached, _ := strconv.ParseBool(r.URL.Query().Get("cached")); cached {
		snap, ok := h.deps.Latest()
		if !ok {
			writeServiceError(w, ErrNoSnapshot)
			return
		}
		w.Header().Set("Last-Modified", snap.At.UTC().Format(http.TimeFormat))
		writeJSON(w, http.StatusOK, snap.Chart)
		return
	}
	chart, err := h.deps.Weekly(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chart)
}

// HandleToday handles GET /api/v1/today-usage.
func (h *UsageHandler) HandleToday(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	today, err := h.deps.Today(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, today)
}

// HandleTotal handles GET /api/v1/total-usage.
func (h *UsageHandler) HandleTotal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	total, err := h.deps.Total(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, total)
}

// HandleRanking handles GET /api/v1/ranking.
func (h *UsageHandler) HandleRanking(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	ranking, err := h.deps.Ranking(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ranking)
}

// HandleMonthly handles GET /api/v1/monthly-report?year=YYYY&month=M.
// Missing parameters default to the current month in the configured zone.
func (h *UsageHandler) HandleMonthly(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	curYear, curMonth, err := h.deps.CurrentMonth()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	year, err := intParam(r, "year", curYear)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	month, err := intParam(r, "month", curMonth)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	report, err := h.deps.Monthly(r.Context(), year, month)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrBadRequest, name)
	}
	return n, nil
}
