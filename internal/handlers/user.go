package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"moodwall/internal/models"
	"moodwall/internal/services"
)

type UserHandler struct {
	identity *services.IdentityService
	log      *zap.Logger
}

func NewUserHandler(identity *services.IdentityService, log *zap.Logger) *UserHandler {
	return &UserHandler{identity: identity, log: log}
}

// GetMe returns the current user's profile, with the email for registered users
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	u, err := h.identity.Profile(r.Context(), mustSession(r))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	email, err := h.identity.Email(r.Context(), u)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	dto := ToUserDTO(*u)
	dto.Email = email
	writeJSON(w, http.StatusOK, dto)
}

// UpdateMe updates provided fields on the current user's profile
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var body struct {
		DisplayName *string            `json:"display_name"`
		Preferences models.Preferences `json:"preferences"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	u, err := h.identity.UpdateProfile(r.Context(), mustSession(r), body.DisplayName, body.Preferences)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, ToUserDTO(*u))
}

// DeleteMe removes the account and all of its check-ins, posts and encouragements.
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	if err := h.identity.DeleteAccount(r.Context(), mustSession(r)); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
