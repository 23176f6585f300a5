package handlers

import (
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"moodwall/internal/services"
	"moodwall/internal/session"
)

type AuthHandler struct {
	identity *services.IdentityService
	tokens   *session.Issuer
	log      *zap.Logger
}

func NewAuthHandler(identity *services.IdentityService, tokens *session.Issuer, log *zap.Logger) *AuthHandler {
	return &AuthHandler{identity: identity, tokens: tokens, log: log}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username,omitempty"`
}

// Guest starts or resumes guest mode. The client keeps the returned
// guest_id and sends it back on the next visit.
func (h *AuthHandler) Guest(w http.ResponseWriter, r *http.Request) {
	var body struct {
		GuestID string `json:"guest_id"`
	}
	if err := decodeJSON(r, &body); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	u, err := h.identity.StartGuest(r.Context(), body.GuestID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	token, err := h.tokens.Issue(session.Session{UserID: u.ID, IsGuest: true})
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token, GuestID: u.ID, User: ToUserDTO(*u)})
}

// Signup registers an account. With a guest bearer token the guest's history
// moves to the new account.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := decodeJSON(r, &c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	var guest *session.Session
	if sess, ok := session.FromContext(r.Context()); ok && sess.IsGuest {
		guest = &sess
	}

	u, err := h.identity.SignUp(r.Context(), c.Email, c.Password, c.Username, guest)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	h.respondWithToken(w, http.StatusCreated, ToUserDTO(*u))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := decodeJSON(r, &c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if c.Email == "" || c.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password required")
		return
	}
	u, err := h.identity.SignIn(r.Context(), c.Email, c.Password)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	h.respondWithToken(w, http.StatusOK, ToUserDTO(*u))
}

// Signout is stateless; the client drops its token and guest id.
func (h *AuthHandler) Signout(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, status int, u UserDTO) {
	token, err := h.tokens.Issue(session.Session{UserID: u.ID, IsGuest: u.IsGuest})
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, status, tokenResponse{Token: token, User: u})
}
