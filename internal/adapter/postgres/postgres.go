// Package postgres implements the domain repositories using PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// DB wraps a *sql.DB and implements domain repository interfaces.
type DB struct {
	sql *sql.DB
}

// Open connects to PostgreSQL, pings, and runs migrations.
func Open(connStr string) (*DB, error) {
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	d := &DB{sql: s}
	if err := d.migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		"CREATE TABLE IF NOT EXISTS users (id BIGSERIAL PRIMARY KEY, username TEXT UNIQUE NOT NULL, password_hash TEXT NOT NULL, created_at TIMESTAMPTZ NOT NULL);",
		"CREATE TABLE IF NOT EXISTS sessions (token TEXT PRIMARY KEY, user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE, user_agent TEXT NOT NULL DEFAULT '', expires_at TIMESTAMPTZ NOT NULL, created_at TIMESTAMPTZ NOT NULL);",
		"CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);",
		"CREATE TABLE IF NOT EXISTS medications (id UUID PRIMARY KEY, user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE, name TEXT NOT NULL, created_at TIMESTAMPTZ NOT NULL);",
		"CREATE INDEX IF NOT EXISTS idx_medications_user_id ON medications(user_id);",
		"CREATE TABLE IF NOT EXISTS dose_log (id BIGSERIAL PRIMARY KEY, user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE, medication_id UUID NOT NULL REFERENCES medications(id) ON DELETE CASCADE, day TEXT NOT NULL, created_at TIMESTAMPTZ NOT NULL, UNIQUE(user_id, medication_id, day));",
		"CREATE INDEX IF NOT EXISTS idx_dose_log_user_medication ON dose_log(user_id, medication_id);",
	}

	for _, stmt := range stmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	// Every insert into dose_log is broadcast so other sessions can merge
	// it into their local state without polling.
	triggerStmts := []string{
		`CREATE OR REPLACE FUNCTION notify_dose_log_insert() RETURNS trigger AS $$
BEGIN
	PERFORM pg_notify('dose_log_inserts', json_build_object(
		'user_id', NEW.user_id,
		'medication_id', NEW.medication_id,
		'day', NEW.day)::text);
	RETURN NEW;
END;
$$ LANGUAGE plpgsql;`,
		"DROP TRIGGER IF EXISTS dose_log_notify ON dose_log;",
		"CREATE TRIGGER dose_log_notify AFTER INSERT ON dose_log FOR EACH ROW EXECUTE FUNCTION notify_dose_log_insert();",
	}
	for _, stmt := range triggerStmts {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
