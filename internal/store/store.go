// Package store persists moodwall rows. Postgres is the production backend;
// Memory backs local runs without DATABASE_URL and the test suites.
package store

import (
	"context"
	"errors"
	"time"

	"moodwall/internal/models"
	"moodwall/internal/mood"
)

var (
	// ErrNotFound means a single-row lookup matched nothing.
	ErrNotFound = errors.New("store: not found")
	// ErrConflict is a uniqueness violation.
	ErrConflict = errors.New("store: conflict")
	// ErrMissingReference is a foreign key violation: the referenced row does not exist.
	ErrMissingReference = errors.New("store: missing reference")
	// ErrForbidden is a rejection by a database authorization policy.
	ErrForbidden = errors.New("store: forbidden")
)

// WallQuery selects mood wall posts newest first.
type WallQuery struct {
	Range *mood.Range
	Limit int
}

// UserUpdate carries the mutable profile fields. Nil fields are left alone.
type UserUpdate struct {
	DisplayName *string
	Preferences models.Preferences
}

func (u UserUpdate) Empty() bool { return u.DisplayName == nil && u.Preferences == nil }

type Store interface {
	CreateAuthAccount(ctx context.Context, a *models.AuthAccount) error
	GetAuthAccount(ctx context.Context, id string) (*models.AuthAccount, error)
	GetAuthAccountByBlindIndex(ctx context.Context, blindIndex string) (*models.AuthAccount, error)
	DeleteAuthAccount(ctx context.Context, id string) error

	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByAuthAccount(ctx context.Context, accountID string) (*models.User, error)
	UpdateUser(ctx context.Context, id string, upd UserUpdate) (*models.User, error)
	// LinkAuthAccount points a guest row at an auth account. ErrNotFound if the
	// row does not exist or is already linked.
	LinkAuthAccount(ctx context.Context, userID, accountID string) (*models.User, error)
	// DeleteUser removes the user and everything it owns.
	DeleteUser(ctx context.Context, id string) error

	InsertCheckin(ctx context.Context, c *models.MoodCheckin) error
	ListCheckins(ctx context.Context, userID string, limit int) ([]models.MoodCheckin, error)
	CheckinTimestamps(ctx context.Context, userID string) ([]time.Time, error)
	CountCheckinsBetween(ctx context.Context, userID string, from, to time.Time) (int, error)

	InsertWallPost(ctx context.Context, p *models.MoodWallPost) error
	ListWallPosts(ctx context.Context, q WallQuery) ([]models.MoodWallPost, error)
	InsertEncouragement(ctx context.Context, e *models.Encouragement) error

	LeastUsedSupportMessage(ctx context.Context, category mood.Category, value int) (*models.SupportMessage, error)
	IncrementSupportUsage(ctx context.Context, id string) error
	UpsertSupportMessages(ctx context.Context, msgs []models.SupportMessage) (int, error)

	Overview(ctx context.Context, since time.Time) (*models.Overview, error)
}
