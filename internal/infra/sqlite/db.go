// Package sqlite provides SQLite-based persistent storage for Nova.
// Uses WAL mode for concurrent reads and crash-safe writes.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// DB wraps a SQLite connection with WAL mode and migrations.
// It implements the domain store interfaces.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at dir/state.db.
// Enables WAL mode, foreign keys, and 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "state.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// Connection pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		// Per-user gamification document. Level is stored but always
		// recomputed from nova_coins before a write.
		`CREATE TABLE IF NOT EXISTS users (
			user_id             TEXT PRIMARY KEY,
			created_at          INTEGER NOT NULL,
			nova_coins          INTEGER NOT NULL DEFAULT 0,
			level               INTEGER NOT NULL DEFAULT 1,
			streak_days         INTEGER NOT NULL DEFAULT 0,
			longest_streak_days INTEGER NOT NULL DEFAULT 0,
			last_streak_date    TEXT NOT NULL DEFAULT ''
		)`,

		// Unlocked badges, append-only. The primary key makes badge
		// grants idempotent per user.
		`CREATE TABLE IF NOT EXISTS badges (
			user_id     TEXT NOT NULL,
			name        TEXT NOT NULL,
			icon        TEXT NOT NULL DEFAULT '',
			unlocked_at INTEGER NOT NULL,
			PRIMARY KEY (user_id, name)
		)`,

		// One row per (user, quest); the primary key enforces the
		// at-most-once reward guarantee at the storage layer.
		`CREATE TABLE IF NOT EXISTS quests_completed (
			user_id      TEXT NOT NULL,
			quest_id     TEXT NOT NULL,
			completed_at INTEGER NOT NULL,
			PRIMARY KEY (user_id, quest_id)
		)`,

		// Admin-authored quest catalog. rowid preserves insertion order
		// for evaluation.
		`CREATE TABLE IF NOT EXISTS quests (
			id           TEXT PRIMARY KEY,
			title        TEXT NOT NULL,
			description  TEXT NOT NULL DEFAULT '',
			condition    TEXT NOT NULL,
			reward_coins INTEGER NOT NULL DEFAULT 0,
			badge_name   TEXT,
			badge_icon   TEXT,
			is_active    BOOLEAN NOT NULL DEFAULT 1,
			created_at   INTEGER NOT NULL
		)`,

		// Primary activity log.
		`CREATE TABLE IF NOT EXISTS activities (
			id        TEXT PRIMARY KEY,
			user_id   TEXT NOT NULL,
			type      TEXT NOT NULL,
			value     REAL NOT NULL DEFAULT 0,
			logged_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_user ON activities(user_id, logged_at)`,

		// Reward audit ledger with running balance per entry.
		`CREATE TABLE IF NOT EXISTS reward_ledger (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id     TEXT NOT NULL,
			timestamp   INTEGER NOT NULL,
			source      TEXT NOT NULL,
			reference   TEXT NOT NULL,
			amount      INTEGER NOT NULL,
			balance     INTEGER NOT NULL,
			description TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_user ON reward_ledger(user_id, timestamp)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
// modernc.org/sqlite does not export a sentinel for it.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
