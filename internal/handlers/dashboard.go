package handlers

import (
	"net/http"
	"time"

	"moodwall/internal/services"
)

type DashboardHandler struct {
	dashboard *services.DashboardService
	loc       *time.Location
}

func NewDashboardHandler(dashboard *services.DashboardService, loc *time.Location) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, loc: loc}
}

// Get aggregates the streak, today's status and recent check-ins.
// Accepts optional query param: tz=<IANA zone> to use as the user's calendar.
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	loc, ok := location(r, h.loc)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown tz")
		return
	}
	writeJSON(w, http.StatusOK, h.dashboard.Load(r.Context(), mustSession(r), loc))
}
