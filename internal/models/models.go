package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

type AuthAccount struct {
	ID              string    `db:"id" json:"id"`
	Email           string    `db:"email" json:"email"`             // Encrypted in DB
	EmailBlindIndex string    `db:"email_blind_index" json:"-"`     // HMAC hash for searching
	PasswordHash    string    `db:"password_hash" json:"-"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// User is the profile row every check-in, post and encouragement points at.
// AuthAccountID is nil for guests.
type User struct {
	ID            string      `db:"id" json:"id"`
	AuthAccountID *string     `db:"auth_account_id" json:"auth_account_id,omitempty"`
	DisplayName   *string     `db:"display_name" json:"display_name,omitempty"`
	Preferences   Preferences `db:"preferences" json:"preferences"`
	IsAdmin       bool        `db:"is_admin" json:"is_admin"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
}

func (u User) IsGuest() bool { return u.AuthAccountID == nil }

type MoodCheckin struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	MoodValue   int       `db:"mood_value" json:"mood_value"`
	Emoji       string    `db:"emoji" json:"emoji"`
	Notes       *string   `db:"notes" json:"notes,omitempty"` // Encrypted in DB
	IsAnonymous bool      `db:"is_anonymous" json:"is_anonymous"`
	Timestamp   time.Time `db:"timestamp" json:"timestamp"`
}

type MoodWallPost struct {
	ID                 string    `db:"id" json:"id"`
	UserID             string    `db:"user_id" json:"-"`
	MoodValue          int       `db:"mood_value" json:"mood_value"`
	Emoji              string    `db:"emoji" json:"emoji"`
	Message            *string   `db:"message_optional" json:"message,omitempty"`
	Timestamp          time.Time `db:"timestamp" json:"timestamp"`
	EncouragementCount int       `db:"encouragement_count" json:"encouragement_count"`
}

type Encouragement struct {
	ID         string    `db:"id" json:"id"`
	FromUserID string    `db:"from_user_id" json:"from_user_id"`
	ToPostID   string    `db:"to_post_id" json:"to_post_id"`
	Message    *string   `db:"message" json:"message,omitempty"`
	Timestamp  time.Time `db:"timestamp" json:"timestamp"`
}

// SupportMessage is a pre-written cached reply for a category and value range.
type SupportMessage struct {
	ID         string `db:"id" json:"id" yaml:"-"`
	Category   string `db:"mood_category" json:"mood_category" yaml:"category"`
	RangeStart int    `db:"mood_range_start" json:"mood_range_start" yaml:"range_start"`
	RangeEnd   int    `db:"mood_range_end" json:"mood_range_end" yaml:"range_end"`
	Message    string `db:"message" json:"message" yaml:"message"`
	UsageCount int    `db:"usage_count" json:"usage_count" yaml:"-"`
}

type Overview struct {
	TotalUsers          int `db:"total_users" json:"total_users"`
	GuestUsers          int `db:"guest_users" json:"guest_users"`
	TotalCheckins       int `db:"total_checkins" json:"total_checkins"`
	TotalWallPosts      int `db:"total_wall_posts" json:"total_wall_posts"`
	TotalEncouragements int `db:"total_encouragements" json:"total_encouragements"`
	ActiveUsersThisWeek int `db:"active_users_this_week" json:"active_users_this_week"`
}

// Preferences is a free-form map persisted as jsonb.
type Preferences map[string]any

func (p Preferences) Value() (driver.Value, error) {
	if p == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p)
}

func (p *Preferences) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*p = Preferences{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("preferences: unsupported column type")
	}
	out := Preferences{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return err
		}
	}
	*p = out
	return nil
}

// Clone returns a shallow copy, never nil.
func (p Preferences) Clone() Preferences {
	out := make(Preferences, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
