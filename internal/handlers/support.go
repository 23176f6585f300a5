package handlers

import (
	"net/http"
	"strconv"

	"moodwall/internal/mood"
	"moodwall/internal/services"
)

type SupportHandler struct {
	support *services.SupportService
}

func NewSupportHandler(support *services.SupportService) *SupportHandler {
	return &SupportHandler{support: support}
}

// Get answers ?mood_value=&emoji= with a supportive message. emoji defaults
// to one picked from the value's category.
func (h *SupportHandler) Get(w http.ResponseWriter, r *http.Request) {
	value, err := strconv.Atoi(r.URL.Query().Get("mood_value"))
	if err != nil || !mood.ValidValue(value) {
		writeError(w, http.StatusBadRequest, "mood_value must be between 1 and 10")
		return
	}
	emoji := r.URL.Query().Get("emoji")
	if emoji == "" {
		emoji = mood.EmojiForValue(value)
	}
	writeJSON(w, http.StatusOK, h.support.Select(r.Context(), value, emoji))
}

type moodsResponse struct {
	Moods      []mood.Mood     `json:"moods"`
	Categories []mood.Category `json:"categories"`
	Filters    []string        `json:"filters"`
}

// Moods lists the selectable moods and wall filters.
func Moods(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, moodsResponse{
		Moods:      mood.Moods,
		Categories: mood.Categories,
		Filters:    mood.FilterNames,
	})
}
