package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"moodwall/internal/models"
	"moodwall/internal/mood"
)

// Postgres SQLSTATE codes the store classifies.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeInsufficientPriv    = "42501"
	codeInvalidText         = "22P02"
)

const userColumns = `id, auth_account_id, display_name, preferences, is_admin, created_at`
const checkinColumns = `id, user_id, mood_value, emoji, notes, is_anonymous, timestamp`
const wallColumns = `id, user_id, mood_value, emoji, message_optional, timestamp, encouragement_count`

type Postgres struct {
	db *sqlx.DB
}

var _ Store = (*Postgres)(nil)

func NewPostgres(db *sqlx.DB) *Postgres { return &Postgres{db: db} }

// classify maps driver errors onto the store sentinels, keeping the cause.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%w: %w", ErrConflict, err)
		case codeForeignKeyViolation:
			return fmt.Errorf("%w: %w", ErrMissingReference, err)
		case codeInsufficientPriv:
			return fmt.Errorf("%w: %w", ErrForbidden, err)
		case codeInvalidText:
			// A malformed uuid cannot name a row.
			return fmt.Errorf("%w: %w", ErrNotFound, err)
		}
	}
	// Row-level security rejections surface with this text on some poolers.
	if strings.Contains(err.Error(), "row-level security") {
		return fmt.Errorf("%w: %w", ErrForbidden, err)
	}
	return err
}

func (p *Postgres) CreateAuthAccount(ctx context.Context, a *models.AuthAccount) error {
	err := p.db.QueryRowxContext(ctx,
		`INSERT INTO auth_accounts (email, email_blind_index, password_hash) VALUES ($1, $2, $3) RETURNING id, created_at`,
		a.Email, a.EmailBlindIndex, a.PasswordHash).Scan(&a.ID, &a.CreatedAt)
	return classify(err)
}

func (p *Postgres) GetAuthAccount(ctx context.Context, id string) (*models.AuthAccount, error) {
	var a models.AuthAccount
	err := p.db.GetContext(ctx, &a,
		`SELECT id, email, email_blind_index, password_hash, created_at FROM auth_accounts WHERE id=$1`, id)
	if err != nil {
		return nil, classify(err)
	}
	return &a, nil
}

func (p *Postgres) GetAuthAccountByBlindIndex(ctx context.Context, blindIndex string) (*models.AuthAccount, error) {
	var a models.AuthAccount
	err := p.db.GetContext(ctx, &a,
		`SELECT id, email, email_blind_index, password_hash, created_at FROM auth_accounts WHERE email_blind_index=$1`, blindIndex)
	if err != nil {
		return nil, classify(err)
	}
	return &a, nil
}

func (p *Postgres) DeleteAuthAccount(ctx context.Context, id string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM auth_accounts WHERE id=$1`, id)
	return classify(err)
}

func (p *Postgres) CreateUser(ctx context.Context, u *models.User) error {
	if u.Preferences == nil {
		u.Preferences = models.Preferences{}
	}
	err := p.db.QueryRowxContext(ctx,
		`INSERT INTO users (auth_account_id, display_name, preferences) VALUES ($1, $2, $3::jsonb) RETURNING `+userColumns,
		u.AuthAccountID, u.DisplayName, u.Preferences).StructScan(u)
	return classify(err)
}

func (p *Postgres) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := p.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id=$1`, id); err != nil {
		return nil, classify(err)
	}
	return &u, nil
}

func (p *Postgres) GetUserByAuthAccount(ctx context.Context, accountID string) (*models.User, error) {
	var u models.User
	if err := p.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE auth_account_id=$1`, accountID); err != nil {
		return nil, classify(err)
	}
	return &u, nil
}

func (p *Postgres) UpdateUser(ctx context.Context, id string, upd UserUpdate) (*models.User, error) {
	if upd.Empty() {
		return p.GetUser(ctx, id)
	}
	setClauses := []string{}
	args := []interface{}{}
	if upd.DisplayName != nil {
		args = append(args, *upd.DisplayName)
		setClauses = append(setClauses, fmt.Sprintf("display_name=$%d", len(args)))
	}
	if upd.Preferences != nil {
		args = append(args, upd.Preferences)
		setClauses = append(setClauses, fmt.Sprintf("preferences=$%d::jsonb", len(args)))
	}
	args = append(args, id)
	query := "UPDATE users SET " + strings.Join(setClauses, ", ") + fmt.Sprintf(" WHERE id=$%d RETURNING ", len(args)) + userColumns

	var u models.User
	if err := p.db.QueryRowxContext(ctx, query, args...).StructScan(&u); err != nil {
		return nil, classify(err)
	}
	return &u, nil
}

func (p *Postgres) LinkAuthAccount(ctx context.Context, userID, accountID string) (*models.User, error) {
	var u models.User
	err := p.db.QueryRowxContext(ctx,
		`UPDATE users SET auth_account_id=$1 WHERE id=$2 AND auth_account_id IS NULL RETURNING `+userColumns,
		accountID, userID).StructScan(&u)
	if err != nil {
		return nil, classify(err)
	}
	return &u, nil
}

// DeleteUser relies on ON DELETE CASCADE for check-ins, wall posts and encouragements.
func (p *Postgres) DeleteUser(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return classify(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullableTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}

func (p *Postgres) InsertCheckin(ctx context.Context, c *models.MoodCheckin) error {
	err := p.db.QueryRowxContext(ctx,
		`INSERT INTO mood_checkins (user_id, mood_value, emoji, notes, is_anonymous, timestamp)
		 VALUES ($1, $2, $3, $4, $5, COALESCE($6::timestamptz, NOW()))
		 RETURNING id, timestamp`,
		c.UserID, c.MoodValue, c.Emoji, c.Notes, c.IsAnonymous, nullableTime(c.Timestamp)).Scan(&c.ID, &c.Timestamp)
	return classify(err)
}

func (p *Postgres) ListCheckins(ctx context.Context, userID string, limit int) ([]models.MoodCheckin, error) {
	out := []models.MoodCheckin{}
	err := p.db.SelectContext(ctx, &out,
		`SELECT `+checkinColumns+` FROM mood_checkins WHERE user_id=$1 ORDER BY timestamp DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, classify(err)
	}
	return out, nil
}

func (p *Postgres) CheckinTimestamps(ctx context.Context, userID string) ([]time.Time, error) {
	out := []time.Time{}
	err := p.db.SelectContext(ctx, &out,
		`SELECT timestamp FROM mood_checkins WHERE user_id=$1 ORDER BY timestamp DESC`, userID)
	if err != nil {
		return nil, classify(err)
	}
	return out, nil
}

func (p *Postgres) CountCheckinsBetween(ctx context.Context, userID string, from, to time.Time) (int, error) {
	var n int
	err := p.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM mood_checkins WHERE user_id=$1 AND timestamp >= $2 AND timestamp < $3`, userID, from, to)
	return n, classify(err)
}

func (p *Postgres) InsertWallPost(ctx context.Context, w *models.MoodWallPost) error {
	err := p.db.QueryRowxContext(ctx,
		`INSERT INTO mood_wall_posts (user_id, mood_value, emoji, message_optional, timestamp)
		 VALUES ($1, $2, $3, $4, COALESCE($5::timestamptz, NOW()))
		 RETURNING id, timestamp, encouragement_count`,
		w.UserID, w.MoodValue, w.Emoji, w.Message, nullableTime(w.Timestamp)).Scan(&w.ID, &w.Timestamp, &w.EncouragementCount)
	return classify(err)
}

func (p *Postgres) ListWallPosts(ctx context.Context, q WallQuery) ([]models.MoodWallPost, error) {
	query := `SELECT ` + wallColumns + ` FROM mood_wall_posts`
	args := []interface{}{}
	if q.Range != nil {
		args = append(args, q.Range.Min, q.Range.Max)
		query += " WHERE mood_value >= $1 AND mood_value <= $2"
	}
	args = append(args, q.Limit)
	query += fmt.Sprintf(" ORDER BY timestamp DESC LIMIT $%d", len(args))

	out := []models.MoodWallPost{}
	if err := p.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

// InsertEncouragement relies on the unique (from_user_id, to_post_id) constraint;
// the counter on the post is maintained by trigger.
func (p *Postgres) InsertEncouragement(ctx context.Context, e *models.Encouragement) error {
	err := p.db.QueryRowxContext(ctx,
		`INSERT INTO encouragements (from_user_id, to_post_id, message) VALUES ($1, $2, $3) RETURNING id, timestamp`,
		e.FromUserID, e.ToPostID, e.Message).Scan(&e.ID, &e.Timestamp)
	return classify(err)
}

func (p *Postgres) LeastUsedSupportMessage(ctx context.Context, category mood.Category, value int) (*models.SupportMessage, error) {
	var m models.SupportMessage
	err := p.db.GetContext(ctx, &m,
		`SELECT id, mood_category, mood_range_start, mood_range_end, message, usage_count
		 FROM support_messages
		 WHERE mood_category=$1 AND mood_range_start <= $2 AND mood_range_end >= $2
		 ORDER BY usage_count ASC, id ASC
		 LIMIT 1`, string(category), value)
	if err != nil {
		return nil, classify(err)
	}
	return &m, nil
}

func (p *Postgres) IncrementSupportUsage(ctx context.Context, id string) error {
	_, err := p.db.ExecContext(ctx, `UPDATE support_messages SET usage_count = usage_count + 1 WHERE id=$1`, id)
	return classify(err)
}

func (p *Postgres) UpsertSupportMessages(ctx context.Context, msgs []models.SupportMessage) (int, error) {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `INSERT INTO support_messages (mood_category, mood_range_start, mood_range_end, message)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (mood_category, message)
		DO UPDATE SET mood_range_start = EXCLUDED.mood_range_start, mood_range_end = EXCLUDED.mood_range_end`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, m := range msgs {
		if _, err := stmt.ExecContext(ctx, m.Category, m.RangeStart, m.RangeEnd, m.Message); err != nil {
			return 0, classify(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(msgs), nil
}

func (p *Postgres) Overview(ctx context.Context, since time.Time) (*models.Overview, error) {
	var o models.Overview
	err := p.db.GetContext(ctx, &o, `
		SELECT
			(SELECT COUNT(*) FROM users) AS total_users,
			(SELECT COUNT(*) FROM users WHERE auth_account_id IS NULL) AS guest_users,
			(SELECT COUNT(*) FROM mood_checkins) AS total_checkins,
			(SELECT COUNT(*) FROM mood_wall_posts) AS total_wall_posts,
			(SELECT COUNT(*) FROM encouragements) AS total_encouragements,
			(SELECT COUNT(DISTINCT user_id) FROM mood_checkins WHERE timestamp >= $1) AS active_users_this_week`, since)
	if err != nil {
		return nil, classify(err)
	}
	return &o, nil
}
