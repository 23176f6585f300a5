package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"moodwall/internal/session"
)

func echoSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		w.Write([]byte("anonymous"))
		return
	}
	if sess.IsGuest {
		w.Write([]byte("guest:" + sess.UserID))
		return
	}
	w.Write([]byte("user:" + sess.UserID))
}

func TestRequireSession(t *testing.T) {
	issuer := session.NewIssuer([]byte("test-secret"), time.Hour)
	h := NewAuthMiddleware(issuer, nil).RequireSession(http.HandlerFunc(echoSession))

	tok, err := issuer.Issue(session.Session{UserID: "u-1", IsGuest: true})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"valid guest token", "Bearer " + tok, http.StatusOK, "guest:u-1"},
		{"missing header", "", http.StatusUnauthorized, `{"error":"missing token"}`},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, `{"error":"missing token"}`},
		{"garbage token", "Bearer nope", http.StatusUnauthorized, `{"error":"invalid token"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.body)
		})
	}
}

func TestOptionalSession(t *testing.T) {
	issuer := session.NewIssuer([]byte("test-secret"), time.Hour)
	h := NewAuthMiddleware(issuer, nil).OptionalSession(http.HandlerFunc(echoSession))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/signup", nil))
	assert.Equal(t, "anonymous", rec.Body.String())

	tok, err := issuer.Issue(session.Session{UserID: "u-2"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "user:u-2", rec.Body.String())

	other := session.NewIssuer([]byte("other-secret"), time.Hour)
	bad, err := other.Issue(session.Session{UserID: "u-3"})
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodPost, "/api/auth/signup", nil)
	req.Header.Set("Authorization", "Bearer "+bad)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type resolverFunc func(ctx context.Context, sess session.Session) (session.Session, error)

func (f resolverFunc) Resolve(ctx context.Context, sess session.Session) (session.Session, error) {
	return f(ctx, sess)
}

func TestSessionResolution(t *testing.T) {
	issuer := session.NewIssuer([]byte("test-secret"), time.Hour)
	resolver := resolverFunc(func(_ context.Context, sess session.Session) (session.Session, error) {
		switch sess.UserID {
		case "converted":
			return session.Session{}, session.ErrGuestConverted
		case "broken":
			return session.Session{}, errors.New("connection reset")
		}
		return session.Session{UserID: sess.UserID}, nil
	})
	auth := NewAuthMiddleware(issuer, resolver)

	tests := []struct {
		name     string
		userID   string
		required int
		optional int
		body     string
	}{
		{"row decides guest flag", "u-1", http.StatusOK, http.StatusOK, "user:u-1"},
		{"converted guest token", "converted", http.StatusUnauthorized, http.StatusConflict, session.ErrGuestConverted.Error()},
		{"lookup failure", "broken", http.StatusInternalServerError, http.StatusInternalServerError, "something went wrong"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, err := issuer.Issue(session.Session{UserID: tt.userID, IsGuest: true})
			require.NoError(t, err)

			for _, c := range []struct {
				h      http.Handler
				status int
			}{
				{auth.RequireSession(http.HandlerFunc(echoSession)), tt.required},
				{auth.OptionalSession(http.HandlerFunc(echoSession)), tt.optional},
			} {
				req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
				req.Header.Set("Authorization", "Bearer "+tok)
				rec := httptest.NewRecorder()
				c.h.ServeHTTP(rec, req)
				assert.Equal(t, c.status, rec.Code)
				assert.Contains(t, rec.Body.String(), tt.body)
			}
		})
	}
}

func TestZapRequestLoggerLevels(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	status := http.StatusOK
	h := ZapRequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))

	for _, s := range []int{http.StatusOK, http.StatusNotFound, http.StatusInternalServerError} {
		status = s
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/wall", nil))
	}
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "request completed", entries[0].Message)
	assert.Equal(t, int64(404), entries[1].ContextMap()["status"])
}
