package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"moodwall/internal/models"
	"moodwall/internal/mood"
	"moodwall/internal/services"
)

type CheckinHandler struct {
	checkins *services.CheckinService
	support  *services.SupportService
	loc      *time.Location
	log      *zap.Logger
}

func NewCheckinHandler(checkins *services.CheckinService, support *services.SupportService, loc *time.Location, log *zap.Logger) *CheckinHandler {
	return &CheckinHandler{checkins: checkins, support: support, loc: loc, log: log}
}

type checkinRequest struct {
	MoodValue   int        `json:"mood_value"`
	MoodID      string     `json:"mood_id,omitempty"`
	Emoji       string     `json:"emoji"`
	Notes       string     `json:"notes"`
	IsAnonymous bool       `json:"is_anonymous"`
	Timestamp   *time.Time `json:"timestamp,omitempty"`
}

type checkinResponse struct {
	Checkin *models.MoodCheckin   `json:"checkin"`
	Support services.SupportReply `json:"support"`
}

// Create records a check-in and answers with a support message for it.
func (h *CheckinHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body checkinRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	in := services.CheckinInput{
		MoodValue:   body.MoodValue,
		Emoji:       body.Emoji,
		Notes:       body.Notes,
		IsAnonymous: body.IsAnonymous,
	}
	if in.Emoji == "" && body.MoodID != "" {
		in.Emoji = mood.EmojiFor(body.MoodID)
	}
	if body.Timestamp != nil {
		in.Timestamp = *body.Timestamp
	}

	c, err := h.checkins.Record(r.Context(), mustSession(r), in)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, checkinResponse{
		Checkin: c,
		Support: h.support.Select(r.Context(), c.MoodValue, c.Emoji),
	})
}

func (h *CheckinHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.checkins.List(r.Context(), mustSession(r), queryInt(r, "limit", services.DefaultCheckinLimit))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	if rows == nil {
		rows = []models.MoodCheckin{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *CheckinHandler) Today(w http.ResponseWriter, r *http.Request) {
	loc, ok := location(r, h.loc)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown tz")
		return
	}
	done, err := h.checkins.CheckedInToday(r.Context(), mustSession(r), loc)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"checked_in_today": done})
}

func (h *CheckinHandler) Streak(w http.ResponseWriter, r *http.Request) {
	loc, ok := location(r, h.loc)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown tz")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"streak": h.checkins.Streak(r.Context(), mustSession(r), loc)})
}
