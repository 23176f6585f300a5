package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"moodwall/internal/models"
	"moodwall/internal/store"
)

type listFaults struct {
	*store.Memory
}

func (listFaults) ListCheckins(context.Context, string, int) ([]models.MoodCheckin, error) {
	return nil, errors.New("list failed")
}

func TestDashboardLoad(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 10, 20, 0, 0, 0, time.UTC)
	mem := store.NewMemory()
	sess := guestSession(t, mem)
	checkins := NewCheckinService(mem, testEncryption(t), nil)
	checkins.now = func() time.Time { return now }

	for _, c := range []struct {
		at    time.Time
		value int
	}{
		{now.AddDate(0, 0, -1).Add(-2 * time.Hour), 3},
		{now.AddDate(0, 0, -1), 4},
		{now.Add(-time.Hour), 8},
		{now.AddDate(0, 0, -9), 2},
	} {
		_, err := checkins.Record(ctx, sess, CheckinInput{MoodValue: c.value, Emoji: "🙂", Timestamp: c.at})
		require.NoError(t, err)
	}

	d := NewDashboardService(checkins, zap.NewNop()).Load(ctx, sess, time.UTC)
	assert.Equal(t, 2, d.Streak)
	assert.Equal(t, 4, d.TotalCheckins)
	assert.True(t, d.CheckedInToday)
	assert.Len(t, d.Recent, 4)

	require.Len(t, d.Last7Days, 7)
	assert.Equal(t, "2026-05-04", d.Last7Days[0].Date)
	assert.Nil(t, d.Last7Days[0].Value)
	assert.Equal(t, "2026-05-09", d.Last7Days[5].Date)
	require.NotNil(t, d.Last7Days[5].Value)
	assert.Equal(t, 4, *d.Last7Days[5].Value, "latest check-in of the day wins")
	require.NotNil(t, d.Last7Days[6].Value)
	assert.Equal(t, 8, *d.Last7Days[6].Value)
}

func TestDashboardDegradesOnFailure(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 10, 20, 0, 0, 0, time.UTC)
	mem := store.NewMemory()
	sess := guestSession(t, mem)
	require.NoError(t, mem.InsertCheckin(ctx, &models.MoodCheckin{UserID: sess.UserID, MoodValue: 5, Emoji: "😐", Timestamp: now.Add(-time.Hour)}))

	checkins := NewCheckinService(listFaults{mem}, testEncryption(t), nil)
	checkins.now = func() time.Time { return now }

	d := NewDashboardService(checkins, nil).Load(ctx, sess, time.UTC)
	assert.Empty(t, d.Recent)
	assert.NotNil(t, d.Recent)
	assert.Equal(t, 0, d.TotalCheckins)
	assert.Equal(t, 1, d.Streak)
	assert.True(t, d.CheckedInToday)
	assert.Len(t, d.Last7Days, 7)
}
