package session

import (
	"context"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueParse(t *testing.T) {
	iss := NewIssuer([]byte("secret"), time.Hour)

	for _, in := range []Session{{UserID: "u1"}, {UserID: "g1", IsGuest: true}} {
		tok, err := iss.Issue(in)
		require.NoError(t, err)
		got, err := iss.Parse(tok)
		require.NoError(t, err)
		assert.Equal(t, in, got)
	}
}

func TestParseRejects(t *testing.T) {
	iss := NewIssuer([]byte("secret"), time.Hour)

	t.Run("wrong secret", func(t *testing.T) {
		tok, err := NewIssuer([]byte("other"), time.Hour).Issue(Session{UserID: "u1"})
		require.NoError(t, err)
		_, err = iss.Parse(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		old := NewIssuer([]byte("secret"), time.Minute)
		old.now = func() time.Time { return time.Now().Add(-time.Hour) }
		tok, err := old.Issue(Session{UserID: "u1"})
		require.NoError(t, err)
		_, err = iss.Parse(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing subject", func(t *testing.T) {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		}).SignedString([]byte("secret"))
		require.NoError(t, err)
		_, err = iss.Parse(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := iss.Parse("abc.def")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := WithSession(context.Background(), Session{UserID: "u1", IsGuest: true})
	s, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "u1", s.UserID)
	assert.True(t, s.IsGuest)

	_, ok = FromContext(WithSession(context.Background(), Session{}))
	assert.False(t, ok, "empty sessions do not count")
}
