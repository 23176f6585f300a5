package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreak(t *testing.T) {
	now := time.Date(2026, 5, 10, 15, 0, 0, 0, time.UTC)
	day := func(offset, hour int) time.Time {
		return time.Date(2026, 5, 10+offset, hour, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name string
		ts   []time.Time
		want int
	}{
		{"no check-ins", nil, 0},
		{"today only", []time.Time{day(0, 9)}, 1},
		{"yesterday but not today", []time.Time{day(-1, 9), day(-2, 9)}, 0},
		{"three consecutive days", []time.Time{day(0, 8), day(-1, 20), day(-2, 1)}, 3},
		{"gap breaks the run", []time.Time{day(0, 8), day(-1, 8), day(-3, 8)}, 2},
		{"several on one day count once", []time.Time{day(0, 8), day(0, 9), day(0, 10), day(-1, 8)}, 2},
		{"future days ignored", []time.Time{day(1, 8), day(0, 8)}, 1},
		{"unordered input", []time.Time{day(-2, 8), day(0, 8), day(-1, 8)}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Streak(tt.ts, now, time.UTC))
		})
	}
}

func TestStreakUsesLocalCalendarDays(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 2026-05-10 01:00 in Tokyo is still 2026-05-09 in UTC.
	now := time.Date(2026, 5, 9, 16, 0, 0, 0, time.UTC)
	ts := []time.Time{
		time.Date(2026, 5, 9, 16, 0, 0, 0, time.UTC),
		time.Date(2026, 5, 9, 10, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, 2, Streak(ts, now, tokyo))
	assert.Equal(t, 1, Streak(ts, now, time.UTC))
}

func TestStreakAcrossMonthBoundary(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ts := []time.Time{
		time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 28, 8, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 27, 8, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, 3, Streak(ts, now, time.UTC))
}
