package db

import (
	"context"

	"github.com/jmoiron/sqlx"
)

func RunMigrations(ctx context.Context, db *sqlx.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS auth_accounts (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    email TEXT NOT NULL,
    email_blind_index TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    auth_account_id UUID UNIQUE REFERENCES auth_accounts(id) ON DELETE SET NULL,
    display_name TEXT,
    preferences JSONB NOT NULL DEFAULT '{}'::jsonb,
    is_admin BOOLEAN NOT NULL DEFAULT false,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS mood_checkins (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    mood_value INTEGER NOT NULL CHECK (mood_value BETWEEN 1 AND 10),
    emoji TEXT NOT NULL,
    notes TEXT,
    is_anonymous BOOLEAN NOT NULL DEFAULT false,
    timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS mood_checkins_user_ts_idx ON mood_checkins (user_id, timestamp DESC);

CREATE TABLE IF NOT EXISTS mood_wall_posts (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    mood_value INTEGER NOT NULL CHECK (mood_value BETWEEN 1 AND 10),
    emoji TEXT NOT NULL,
    message_optional TEXT,
    timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    encouragement_count INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS mood_wall_posts_ts_idx ON mood_wall_posts (timestamp DESC);

CREATE TABLE IF NOT EXISTS encouragements (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    from_user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    to_post_id UUID NOT NULL REFERENCES mood_wall_posts(id) ON DELETE CASCADE,
    message TEXT,
    timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE(from_user_id, to_post_id)
);

CREATE TABLE IF NOT EXISTS support_messages (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    mood_category TEXT NOT NULL,
    mood_range_start INTEGER NOT NULL,
    mood_range_end INTEGER NOT NULL,
    message TEXT NOT NULL,
    usage_count INTEGER NOT NULL DEFAULT 0,
    UNIQUE(mood_category, message)
);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return err
	}

	// encouragement_count follows inserts and deletes on encouragements.
	trigger := `
CREATE OR REPLACE FUNCTION bump_encouragement_count() RETURNS trigger AS $$
BEGIN
    IF TG_OP = 'INSERT' THEN
        UPDATE mood_wall_posts SET encouragement_count = encouragement_count + 1 WHERE id = NEW.to_post_id;
        RETURN NEW;
    END IF;
    UPDATE mood_wall_posts SET encouragement_count = GREATEST(encouragement_count - 1, 0) WHERE id = OLD.to_post_id;
    RETURN OLD;
END $$ LANGUAGE plpgsql;

DO $$ BEGIN
    IF NOT EXISTS (
        SELECT 1 FROM pg_trigger WHERE tgname = 'encouragements_count_trg'
    ) THEN
        CREATE TRIGGER encouragements_count_trg
        AFTER INSERT OR DELETE ON encouragements
        FOR EACH ROW EXECUTE FUNCTION bump_encouragement_count();
    END IF;
END $$;`
	_, err := db.ExecContext(ctx, trigger)
	return err
}
