package services

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"moodwall/internal/models"
	"moodwall/internal/session"
)

const (
	dashboardRecent = 30
	dashboardDays   = 7
)

type DayValue struct {
	Date  string `json:"date"`
	Value *int   `json:"value"`
}

type Dashboard struct {
	Streak         int                  `json:"streak"`
	TotalCheckins  int                  `json:"total_checkins"`
	CheckedInToday bool                 `json:"checked_in_today"`
	Recent         []models.MoodCheckin `json:"recent"`
	Last7Days      []DayValue           `json:"last7_days"`
}

type DashboardService struct {
	checkins *CheckinService
	log      *zap.Logger
}

func NewDashboardService(checkins *CheckinService, log *zap.Logger) *DashboardService {
	if log == nil {
		log = zap.NewNop()
	}
	return &DashboardService{checkins: checkins, log: log}
}

// Load runs the three dashboard reads concurrently. A failed read degrades to
// its zero value and never fails the whole dashboard.
func (s *DashboardService) Load(ctx context.Context, sess session.Session, loc *time.Location) Dashboard {
	var (
		recent []models.MoodCheckin
		streak int
		today  bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.checkins.List(gctx, sess, dashboardRecent)
		if err != nil {
			s.log.Error("dashboard recent check-ins failed", zap.String("user_id", sess.UserID), zap.Error(err))
			return nil
		}
		recent = rows
		return nil
	})
	g.Go(func() error {
		streak = s.checkins.Streak(gctx, sess, loc)
		return nil
	})
	g.Go(func() error {
		ok, err := s.checkins.CheckedInToday(gctx, sess, loc)
		if err != nil {
			s.log.Error("dashboard today lookup failed", zap.String("user_id", sess.UserID), zap.Error(err))
			return nil
		}
		today = ok
		return nil
	})
	_ = g.Wait()

	if recent == nil {
		recent = []models.MoodCheckin{}
	}
	return Dashboard{
		Streak:         streak,
		TotalCheckins:  len(recent),
		CheckedInToday: today,
		Recent:         recent,
		Last7Days:      lastDays(recent, s.checkins.now(), loc, dashboardDays),
	}
}

// lastDays maps each of the last n local days, oldest first, to the latest
// check-in value of that day. recent must be newest first.
func lastDays(recent []models.MoodCheckin, now time.Time, loc *time.Location, n int) []DayValue {
	latest := map[string]int{}
	for _, c := range recent {
		key := startOfDay(c.Timestamp, loc).Format(dayLayout)
		if _, seen := latest[key]; !seen {
			latest[key] = c.MoodValue
		}
	}

	today := startOfDay(now, loc)
	out := make([]DayValue, 0, n)
	for i := n - 1; i >= 0; i-- {
		day := time.Date(today.Year(), today.Month(), today.Day()-i, 0, 0, 0, 0, today.Location())
		dv := DayValue{Date: day.Format(dayLayout)}
		if v, ok := latest[dv.Date]; ok {
			dv.Value = &v
		}
		out = append(out, dv)
	}
	return out
}
