package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"moodwall/internal/session"
)

// TokenParser verifies a bearer token and resolves its session.
type TokenParser interface {
	Parse(token string) (session.Session, error)
}

// SessionResolver checks a verified session against the stored user.
type SessionResolver interface {
	Resolve(ctx context.Context, sess session.Session) (session.Session, error)
}

type AuthMiddleware struct {
	tokens   TokenParser
	resolver SessionResolver
}

// NewAuthMiddleware builds the middleware. A nil resolver trusts the token
// claims as they are.
func NewAuthMiddleware(tokens TokenParser, resolver SessionResolver) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, resolver: resolver}
}

// RequireSession rejects requests without a valid bearer token.
func (m *AuthMiddleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr, ok := bearer(r)
		if !ok {
			unauthorized(w, "missing token")
			return
		}
		sess, err := m.session(r.Context(), tokenStr)
		switch {
		case errors.Is(err, session.ErrGuestConverted):
			unauthorized(w, err.Error())
			return
		case err != nil:
			m.reject(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), sess)))
	})
}

// OptionalSession attaches the session when a valid token is present and
// otherwise lets the request through unchanged. A bad token is rejected, and
// a guest token for an already registered user gets 409.
func (m *AuthMiddleware) OptionalSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr, ok := bearer(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		sess, err := m.session(r.Context(), tokenStr)
		switch {
		case errors.Is(err, session.ErrGuestConverted):
			writeErrorJSON(w, http.StatusConflict, err.Error())
			return
		case err != nil:
			m.reject(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), sess)))
	})
}

func (m *AuthMiddleware) session(ctx context.Context, tokenStr string) (session.Session, error) {
	sess, err := m.tokens.Parse(tokenStr)
	if err != nil {
		return session.Session{}, session.ErrInvalidToken
	}
	if m.resolver == nil {
		return sess, nil
	}
	return m.resolver.Resolve(ctx, sess)
}

func (m *AuthMiddleware) reject(w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrInvalidToken) {
		unauthorized(w, "invalid token")
		return
	}
	writeErrorJSON(w, http.StatusInternalServerError, "something went wrong, please try again")
}

func bearer(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	if !strings.HasPrefix(authz, "Bearer ") {
		return "", false
	}
	tok := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	return tok, tok != ""
}

func unauthorized(w http.ResponseWriter, msg string) {
	writeErrorJSON(w, http.StatusUnauthorized, msg)
}

func writeErrorJSON(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
