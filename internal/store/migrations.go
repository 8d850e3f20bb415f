package store

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "stale_repos: repositories past the staleness threshold",
		SQL: `
CREATE TABLE stale_repos (
    id                TEXT PRIMARY KEY,
    name              TEXT NOT NULL,
    repo              TEXT NOT NULL,
    url               TEXT NOT NULL,
    description       TEXT,
    category          TEXT NOT NULL,
    tags              TEXT NOT NULL DEFAULT '[]',
    stars             INTEGER NOT NULL DEFAULT 0,
    pushed_at         TEXT NOT NULL,
    archived          INTEGER NOT NULL DEFAULT 0,
    fork              INTEGER NOT NULL DEFAULT 0,
    license           TEXT,
    topics            TEXT NOT NULL DEFAULT '[]',
    score             INTEGER NOT NULL DEFAULT 0,
    confidence        TEXT NOT NULL DEFAULT 'low',
    notes             TEXT,
    hidden            INTEGER NOT NULL DEFAULT 0,
    stale_detected_at TEXT NOT NULL,
    months_stale      INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX idx_stale_category ON stale_repos(category);
CREATE INDEX idx_stale_months   ON stale_repos(months_stale);
`,
	},
}

func (s *Store) migrate() error {
	// Create schema_versions table if it doesn't exist
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := s.db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (s *Store) SchemaVersion() (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	var version int
	err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}
