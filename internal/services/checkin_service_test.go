package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"moodwall/internal/models"
	"moodwall/internal/session"
	"moodwall/internal/store"
)

type checkinFaults struct {
	*store.Memory
	insertErr error
	wallErr   error
	countErr  error
	tsErr     error
}

func (f *checkinFaults) InsertCheckin(ctx context.Context, c *models.MoodCheckin) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	return f.Memory.InsertCheckin(ctx, c)
}

func (f *checkinFaults) InsertWallPost(ctx context.Context, p *models.MoodWallPost) error {
	if f.wallErr != nil {
		return f.wallErr
	}
	return f.Memory.InsertWallPost(ctx, p)
}

func (f *checkinFaults) CountCheckinsBetween(ctx context.Context, userID string, from, to time.Time) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.Memory.CountCheckinsBetween(ctx, userID, from, to)
}

func (f *checkinFaults) CheckinTimestamps(ctx context.Context, userID string) ([]time.Time, error) {
	if f.tsErr != nil {
		return nil, f.tsErr
	}
	return f.Memory.CheckinTimestamps(ctx, userID)
}

func wallPosts(t *testing.T, st *store.Memory) []models.MoodWallPost {
	t.Helper()
	posts, err := st.ListWallPosts(context.Background(), store.WallQuery{Limit: 100})
	require.NoError(t, err)
	return posts
}

func TestRecordPrivateCheckin(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	sess := guestSession(t, st)
	svc := NewCheckinService(st, testEncryption(t), zap.NewNop())

	c, err := svc.Record(ctx, sess, CheckinInput{MoodValue: 7, Emoji: "😊", Notes: "  good walk  "})
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.False(t, c.Timestamp.IsZero())
	require.NotNil(t, c.Notes)
	assert.Equal(t, "good walk", *c.Notes)
	assert.Empty(t, wallPosts(t, st))

	stored, err := st.ListCheckins(ctx, sess.UserID, 10)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.NotEqual(t, "good walk", *stored[0].Notes, "notes are encrypted at rest")

	listed, err := svc.List(ctx, sess, 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "good walk", *listed[0].Notes)
}

func TestRecordAnonymousMirrorsToWall(t *testing.T) {
	st := store.NewMemory()
	sess := guestSession(t, st)
	svc := NewCheckinService(st, testEncryption(t), zap.NewNop())

	_, err := svc.Record(context.Background(), sess, CheckinInput{MoodValue: 3, Emoji: "😔", Notes: "rough day", IsAnonymous: true})
	require.NoError(t, err)

	posts := wallPosts(t, st)
	require.Len(t, posts, 1)
	assert.Equal(t, 3, posts[0].MoodValue)
	assert.Equal(t, "😔", posts[0].Emoji)
	require.NotNil(t, posts[0].Message)
	assert.Equal(t, "rough day", *posts[0].Message)
}

func TestRecordTruncatesNotes(t *testing.T) {
	st := store.NewMemory()
	sess := guestSession(t, st)
	svc := NewCheckinService(st, testEncryption(t), zap.NewNop())

	c, err := svc.Record(context.Background(), sess, CheckinInput{MoodValue: 5, Emoji: "😐", Notes: strings.Repeat("é", 150)})
	require.NoError(t, err)
	assert.Equal(t, 100, len([]rune(*c.Notes)))
}

func TestRecordWallFailureKeepsCheckin(t *testing.T) {
	mem := store.NewMemory()
	sess := guestSession(t, mem)
	st := &checkinFaults{Memory: mem, wallErr: errors.New("wall is down")}
	svc := NewCheckinService(st, testEncryption(t), zap.NewNop())

	c, err := svc.Record(context.Background(), sess, CheckinInput{MoodValue: 8, Emoji: "😄", IsAnonymous: true})
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)

	rows, err := mem.ListCheckins(context.Background(), sess.UserID, 10)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Empty(t, wallPosts(t, mem))
}

func TestRecordErrors(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	sess := guestSession(t, mem)
	enc := testEncryption(t)

	t.Run("no session", func(t *testing.T) {
		_, err := NewCheckinService(mem, enc, nil).Record(ctx, session.Session{}, CheckinInput{MoodValue: 5, Emoji: "😐"})
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("out of range", func(t *testing.T) {
		svc := NewCheckinService(mem, enc, nil)
		for _, v := range []int{0, 11, -3} {
			_, err := svc.Record(ctx, sess, CheckinInput{MoodValue: v, Emoji: "😐"})
			assert.ErrorIs(t, err, ErrInvalidCheckin)
		}
	})

	t.Run("policy rejection", func(t *testing.T) {
		st := &checkinFaults{Memory: mem, insertErr: store.ErrForbidden}
		_, err := NewCheckinService(st, enc, nil).Record(ctx, sess, CheckinInput{MoodValue: 5, Emoji: "😐"})
		assert.ErrorIs(t, err, ErrPermissionDenied)
		assert.Equal(t, "permission denied: sign in or use guest mode", err.Error())
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := NewCheckinService(mem, enc, nil).Record(ctx, session.Session{UserID: "ghost"}, CheckinInput{MoodValue: 5, Emoji: "😐"})
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("transport failure", func(t *testing.T) {
		st := &checkinFaults{Memory: mem, insertErr: errors.New("connection refused")}
		_, err := NewCheckinService(st, enc, nil).Record(ctx, sess, CheckinInput{MoodValue: 5, Emoji: "😐"})
		assert.ErrorIs(t, err, ErrCheckinFailed)
		assert.NotErrorIs(t, err, ErrPermissionDenied)
	})
}

func TestCheckedInTodayAndStreak(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 10, 18, 0, 0, 0, time.UTC)
	mem := store.NewMemory()
	sess := guestSession(t, mem)
	svc := NewCheckinService(mem, testEncryption(t), nil)
	svc.now = func() time.Time { return now }

	ok, err := svc.CheckedInToday(ctx, sess, time.UTC)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, svc.Streak(ctx, sess, time.UTC))

	for _, ts := range []time.Time{now.Add(-2 * time.Hour), now.AddDate(0, 0, -1), now.AddDate(0, 0, -1).Add(time.Hour)} {
		_, err := svc.Record(ctx, sess, CheckinInput{MoodValue: 6, Emoji: "🙂", Timestamp: ts})
		require.NoError(t, err)
	}

	ok, err = svc.CheckedInToday(ctx, sess, time.UTC)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, svc.Streak(ctx, sess, time.UTC))

	failing := NewCheckinService(&checkinFaults{Memory: mem, countErr: errors.New("x"), tsErr: errors.New("y")}, testEncryption(t), nil)
	_, err = failing.CheckedInToday(ctx, sess, time.UTC)
	assert.Error(t, err)
	assert.Equal(t, 0, failing.Streak(ctx, sess, time.UTC))
}

func TestListClampsLimit(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	sess := guestSession(t, mem)
	svc := NewCheckinService(mem, testEncryption(t), nil)
	for i := 0; i < 35; i++ {
		_, err := svc.Record(ctx, sess, CheckinInput{MoodValue: 5, Emoji: "😐"})
		require.NoError(t, err)
	}

	rows, err := svc.List(ctx, sess, 0)
	require.NoError(t, err)
	assert.Len(t, rows, DefaultCheckinLimit)

	rows, err = svc.List(ctx, sess, 500)
	require.NoError(t, err)
	assert.Len(t, rows, 35)
}
