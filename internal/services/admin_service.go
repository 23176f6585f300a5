package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"moodwall/internal/models"
	"moodwall/internal/session"
	"moodwall/internal/store"
)

type AdminStore interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	Overview(ctx context.Context, since time.Time) (*models.Overview, error)
}

type AdminService struct {
	store AdminStore
	now   func() time.Time
}

func NewAdminService(st AdminStore) *AdminService {
	return &AdminService{store: st, now: time.Now}
}

// Overview reports app-wide totals. Only admins may read it.
func (s *AdminService) Overview(ctx context.Context, sess session.Session, loc *time.Location) (*models.Overview, error) {
	u, err := s.store.GetUser(ctx, sess.UserID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, ErrPermissionDenied
	case err != nil:
		return nil, fmt.Errorf("lookup user: %w", err)
	case !u.IsAdmin:
		return nil, ErrPermissionDenied
	}
	return s.store.Overview(ctx, startOfWeek(s.now(), loc))
}

// startOfWeek is the most recent local Monday midnight.
func startOfWeek(t time.Time, loc *time.Location) time.Time {
	d := startOfDay(t, loc)
	offset := (int(d.Weekday()) + 6) % 7
	return time.Date(d.Year(), d.Month(), d.Day()-offset, 0, 0, 0, 0, d.Location())
}
