package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"moodwall/internal/services"
)

type AdminHandler struct {
	admin *services.AdminService
	loc   *time.Location
	log   *zap.Logger
}

func NewAdminHandler(admin *services.AdminService, loc *time.Location, log *zap.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, loc: loc, log: log}
}

// Overview godoc
// @Summary Get admin overview
// @Description Returns user, check-in and mood wall totals (admin only)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Overview
// @Failure 403 {object} map[string]string
// @Router /admin/overview [get]
func (h *AdminHandler) Overview(w http.ResponseWriter, r *http.Request) {
	o, err := h.admin.Overview(r.Context(), mustSession(r), h.loc)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
