package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"moodwall/internal/models"
	"moodwall/internal/mood"
	"moodwall/internal/store"
)

type failingSupportStore struct {
	lookupErr    error
	incrementErr error
	msg          *models.SupportMessage
	increments   int
}

func (f *failingSupportStore) LeastUsedSupportMessage(context.Context, mood.Category, int) (*models.SupportMessage, error) {
	return f.msg, f.lookupErr
}

func (f *failingSupportStore) IncrementSupportUsage(context.Context, string) error {
	f.increments++
	return f.incrementErr
}

func TestSelectUsesLeastUsedCachedMessage(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	_, err := st.UpsertSupportMessages(ctx, []models.SupportMessage{
		{Category: "very_low", RangeStart: 1, RangeEnd: 1, Message: "first {emoji}"},
		{Category: "very_low", RangeStart: 1, RangeEnd: 1, Message: "second {emoji}"},
	})
	require.NoError(t, err)

	svc := NewSupportService(st, zap.NewNop())
	got := []string{
		svc.Select(ctx, 1, "😢").Message,
		svc.Select(ctx, 1, "😢").Message,
	}
	assert.ElementsMatch(t, []string{"first 😢", "second 😢"}, got)

	reply := svc.Select(ctx, 1, "😢")
	assert.True(t, reply.Cached)
	assert.Equal(t, mood.VeryLow, reply.Category)
}

func TestSelectFallsBackToTemplates(t *testing.T) {
	ctx := context.Background()

	t.Run("no cached message", func(t *testing.T) {
		svc := NewSupportService(store.NewMemory(), zap.NewNop())
		svc.pick = func(int) int { return 1 }

		reply := svc.Select(ctx, 9, "🤩")
		assert.False(t, reply.Cached)
		assert.Equal(t, mood.VeryPositive, reply.Category)
		assert.Equal(t, interpolate(fallbackMessages[mood.VeryPositive][1], "🤩"), reply.Message)
		assert.Contains(t, reply.Message, "🤩")
	})

	t.Run("store failure", func(t *testing.T) {
		svc := NewSupportService(&failingSupportStore{lookupErr: errors.New("connection reset")}, zap.NewNop())
		svc.pick = func(int) int { return 0 }

		reply := svc.Select(ctx, 5, "😐")
		assert.False(t, reply.Cached)
		assert.Equal(t, mood.Neutral, reply.Category)
		assert.NotContains(t, reply.Message, "{emoji}")
	})

	t.Run("blank cached message", func(t *testing.T) {
		svc := NewSupportService(&failingSupportStore{msg: &models.SupportMessage{ID: "x", Message: "  "}}, zap.NewNop())
		reply := svc.Select(ctx, 3, "😔")
		assert.False(t, reply.Cached)
	})
}

func TestSelectIgnoresIncrementFailure(t *testing.T) {
	st := &failingSupportStore{
		msg:          &models.SupportMessage{ID: "m1", Message: "hang in there {emoji}"},
		incrementErr: errors.New("timeout"),
	}
	reply := NewSupportService(st, zap.NewNop()).Select(context.Background(), 4, "😔")
	assert.True(t, reply.Cached)
	assert.Equal(t, "hang in there 😔", reply.Message)
	assert.Equal(t, 1, st.increments)
}

func TestFallbackMessagesCoverEveryCategory(t *testing.T) {
	for _, c := range mood.Categories {
		assert.NotEmpty(t, fallbackMessages[c], c)
	}
}
