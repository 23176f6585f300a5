package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"moodwall/internal/models"
	"moodwall/internal/mood"
	"moodwall/internal/session"
	"moodwall/internal/store"
)

const (
	DefaultCheckinLimit = 30
	MaxCheckinLimit     = 100
)

type CheckinStore interface {
	InsertCheckin(ctx context.Context, c *models.MoodCheckin) error
	InsertWallPost(ctx context.Context, p *models.MoodWallPost) error
	ListCheckins(ctx context.Context, userID string, limit int) ([]models.MoodCheckin, error)
	CheckinTimestamps(ctx context.Context, userID string) ([]time.Time, error)
	CountCheckinsBetween(ctx context.Context, userID string, from, to time.Time) (int, error)
}

type CheckinInput struct {
	MoodValue   int
	Emoji       string
	Notes       string
	IsAnonymous bool
	// Timestamp is server-assigned when zero.
	Timestamp time.Time
}

type CheckinService struct {
	store CheckinStore
	enc   *EncryptionService
	log   *zap.Logger
	now   func() time.Time
}

func NewCheckinService(st CheckinStore, enc *EncryptionService, log *zap.Logger) *CheckinService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CheckinService{store: st, enc: enc, log: log, now: time.Now}
}

// Record stores a check-in and, when it is anonymous, mirrors it onto the
// mood wall. The check-in is the source of truth: a failed wall insert is
// logged and the check-in is still returned.
func (s *CheckinService) Record(ctx context.Context, sess session.Session, in CheckinInput) (*models.MoodCheckin, error) {
	if !sess.Valid() {
		return nil, ErrPermissionDenied
	}
	if !mood.ValidValue(in.MoodValue) || in.Emoji == "" {
		return nil, ErrInvalidCheckin
	}

	var note *string
	if n := mood.TruncateNote(in.Notes); n != "" {
		note = &n
	}

	row := &models.MoodCheckin{
		UserID:      sess.UserID,
		MoodValue:   in.MoodValue,
		Emoji:       in.Emoji,
		Notes:       note,
		IsAnonymous: in.IsAnonymous,
		Timestamp:   in.Timestamp,
	}
	if err := s.enc.EncryptCheckin(row); err != nil {
		return nil, fmt.Errorf("%w: encrypt notes: %w", ErrCheckinFailed, err)
	}

	if err := s.store.InsertCheckin(ctx, row); err != nil {
		if errors.Is(err, store.ErrForbidden) || errors.Is(err, store.ErrMissingReference) {
			s.log.Info("check-in rejected", zap.String("user_id", sess.UserID), zap.Error(err))
			return nil, ErrPermissionDenied
		}
		s.log.Error("check-in insert failed", zap.String("user_id", sess.UserID), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrCheckinFailed, err)
	}
	row.Notes = note

	if in.IsAnonymous {
		post := &models.MoodWallPost{
			UserID:    sess.UserID,
			MoodValue: row.MoodValue,
			Emoji:     row.Emoji,
			Message:   note,
			Timestamp: row.Timestamp,
		}
		if err := s.store.InsertWallPost(ctx, post); err != nil {
			s.log.Warn("mood wall post insert failed", zap.String("checkin_id", row.ID), zap.Error(err))
		}
	}
	return row, nil
}

// List returns the user's latest check-ins, newest first.
func (s *CheckinService) List(ctx context.Context, sess session.Session, limit int) ([]models.MoodCheckin, error) {
	if limit <= 0 {
		limit = DefaultCheckinLimit
	}
	if limit > MaxCheckinLimit {
		limit = MaxCheckinLimit
	}
	rows, err := s.store.ListCheckins(ctx, sess.UserID, limit)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if err := s.enc.DecryptCheckin(&rows[i]); err != nil {
			s.log.Warn("could not decrypt check-in notes", zap.String("checkin_id", rows[i].ID), zap.Error(err))
			rows[i].Notes = nil
		}
	}
	return rows, nil
}

// Streak never fails; store errors count as no streak.
func (s *CheckinService) Streak(ctx context.Context, sess session.Session, loc *time.Location) int {
	ts, err := s.store.CheckinTimestamps(ctx, sess.UserID)
	if err != nil {
		s.log.Error("streak lookup failed", zap.String("user_id", sess.UserID), zap.Error(err))
		return 0
	}
	return Streak(ts, s.now(), loc)
}

func (s *CheckinService) CheckedInToday(ctx context.Context, sess session.Session, loc *time.Location) (bool, error) {
	start := startOfDay(s.now(), loc)
	n, err := s.store.CountCheckinsBetween(ctx, sess.UserID, start, start.AddDate(0, 0, 1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
