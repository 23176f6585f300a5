package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"moodwall/internal/mood"
	"moodwall/internal/services"
)

type WallHandler struct {
	wall *services.WallService
	log  *zap.Logger
}

func NewWallHandler(wall *services.WallService, log *zap.Logger) *WallHandler {
	return &WallHandler{wall: wall, log: log}
}

// List returns public mood wall posts newest first. ?filter= takes "all" or a
// mood name.
func (h *WallHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("filter")
	if filter == "" {
		filter = mood.FilterAll
	}
	posts, err := h.wall.ListPosts(r.Context(), filter, queryInt(r, "limit", services.DefaultWallLimit))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// Encourage sends support to a post once per user. A repeat answers 200 with
// already_sent set.
func (h *WallHandler) Encourage(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")
	if _, err := uuid.Parse(postID); err != nil {
		writeError(w, http.StatusNotFound, services.ErrPostNotFound.Error())
		return
	}
	var body struct {
		Message string `json:"message"`
	}
	if err := decodeJSON(r, &body); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	res, err := h.wall.SendEncouragement(r.Context(), mustSession(r), postID, body.Message)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	status := http.StatusCreated
	if res.AlreadySent {
		status = http.StatusOK
	}
	writeJSON(w, status, res)
}
