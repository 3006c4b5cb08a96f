package database

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"

	"seller-dashboard/internal/repository"
)

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	name    string
	sql     string
}

// migrations must stay ordered; versions are sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		name:    "create notifications",
		sql: `
CREATE EXTENSION IF NOT EXISTS pgcrypto;

CREATE TABLE IF NOT EXISTS notifications (
	id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	user_id    UUID NOT NULL,
	type       TEXT NOT NULL CHECK (type IN ('order', 'product', 'customer', 'system')),
	title      TEXT NOT NULL,
	message    TEXT,
	link       TEXT,
	read       BOOLEAN NOT NULL DEFAULT false,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_notifications_user_created
	ON notifications (user_id, created_at DESC);
`,
	},
	{
		version: 2,
		name:    "notify on change",
		sql: `
CREATE OR REPLACE FUNCTION notifications_notify_change() RETURNS trigger AS $$
DECLARE
	row_data notifications%ROWTYPE;
BEGIN
	IF TG_OP = 'DELETE' THEN
		row_data := OLD;
	ELSE
		row_data := NEW;
	END IF;

	PERFORM pg_notify('` + ChangeChannel + `', json_build_object(
		'op', TG_OP,
		'id', row_data.id,
		'user_id', row_data.user_id,
		'at', NOW()
	)::text);

	RETURN row_data;
END;
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS notifications_change ON notifications;
CREATE TRIGGER notifications_change
	AFTER INSERT OR UPDATE OR DELETE ON notifications
	FOR EACH ROW EXECUTE FUNCTION notifications_notify_change();
`,
	},
	{
		version: 3,
		name:    "row level policies",
		sql: `
DROP POLICY IF EXISTS notifications_owner ON notifications;
CREATE POLICY notifications_owner ON notifications
	USING (user_id::text = current_setting('` + repository.ClaimSetting + `', true))
	WITH CHECK (user_id::text = current_setting('` + repository.ClaimSetting + `', true));
`,
	},
}

// ChangeChannel is the LISTEN/NOTIFY channel the change trigger publishes on.
const ChangeChannel = "notifications_changes"

// Migrate applies every migration newer than the recorded schema version.
func Migrate(ctx context.Context, db *sqlx.DB) (int, error) {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`); err != nil {
		return 0, fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	var current int
	if err := db.GetContext(ctx, &current, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}

	applied := 0
	for _, m := range pending(current) {
		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return applied, err
		}

		if _, err := tx.ExecContext(ctx, m.sql); err != nil {
			tx.Rollback()
			return applied, fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, m.version, m.name); err != nil {
			tx.Rollback()
			return applied, fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
		if err := tx.Commit(); err != nil {
			return applied, err
		}

		log.Printf("Applied migration %d: %s", m.version, m.name)
		applied++
	}

	return applied, nil
}

func pending(current int) []migration {
	var out []migration
	for _, m := range migrations {
		if m.version > current {
			out = append(out, m)
		}
	}
	return out
}

// SetRowLevelSecurity toggles row-level security on the notifications table.
// It is forced, so the table owner the server connects as is bound by the
// notifications_owner policy too.
func SetRowLevelSecurity(ctx context.Context, db *sqlx.DB, enabled bool) error {
	if _, err := db.ExecContext(ctx, rowLevelSecuritySQL(enabled)); err != nil {
		return fmt.Errorf("failed to toggle row level security: %w", err)
	}
	return nil
}

func rowLevelSecuritySQL(enabled bool) string {
	if enabled {
		return `ALTER TABLE notifications ENABLE ROW LEVEL SECURITY;
ALTER TABLE notifications FORCE ROW LEVEL SECURITY;`
	}
	return `ALTER TABLE notifications NO FORCE ROW LEVEL SECURITY;
ALTER TABLE notifications DISABLE ROW LEVEL SECURITY;`
}
