// Package store is the Postgres system of record: user profiles, managed
// groups, segments and scheduled broadcasts.
package store

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open connects to Postgres through the pgx stdlib driver
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// Ping verifies connectivity with a bounded timeout
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.db.PingContext(ctx)
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS wa_user_profiles (
		user_id TEXT PRIMARY KEY,
		gateway_token TEXT NOT NULL DEFAULT '',
		connection_status TEXT NOT NULL DEFAULT 'disconnected',
		phone TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS wa_groups (
		user_id TEXT NOT NULL,
		group_id TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		participants_count INTEGER NOT NULL DEFAULT 0,
		is_admin BOOLEAN NOT NULL DEFAULT FALSE,
		is_creator BOOLEAN NOT NULL DEFAULT FALSE,
		avatar_url TEXT NOT NULL DEFAULT '',
		last_synced_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id, group_id)
	)`,
	`CREATE TABLE IF NOT EXISTS wa_segments (
		id BIGSERIAL PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS wa_segment_groups (
		segment_id BIGINT NOT NULL REFERENCES wa_segments(id) ON DELETE CASCADE,
		group_id TEXT NOT NULL,
		PRIMARY KEY (segment_id, group_id)
	)`,
	`CREATE TABLE IF NOT EXISTS wa_scheduled_messages (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		segment_id BIGINT NOT NULL,
		body TEXT NOT NULL,
		send_at TIMESTAMPTZ NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

// EnsureSchema creates missing tables. Idempotent, runs at startup.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
