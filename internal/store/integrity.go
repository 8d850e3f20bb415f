package store

import (
	"encoding/json"
	"fmt"
)

// IntegrityReport is the outcome of a structural audit of the store. It is
// returned to the caller for inspection, never raised as an error.
type IntegrityReport struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// requiredColumns lists every column the persisted schema must carry.
var requiredColumns = []string{
	"id", "name", "repo", "url", "description", "category", "tags", "stars",
	"pushed_at", "archived", "fork", "license", "topics", "score",
	"confidence", "notes", "hidden", "stale_detected_at", "months_stale",
}

var requiredIndexes = []string{"idx_stale_category", "idx_stale_months"}

// ValidateIntegrity audits the store: SQLite's own integrity check, the
// presence of required columns and indexes, that serialized tag/topic lists
// parse for every row, and that no count or duration field is negative.
func (s *Store) ValidateIntegrity() (*IntegrityReport, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	report := &IntegrityReport{Valid: true}
	fail := func(format string, args ...any) {
		report.Valid = false
		report.Errors = append(report.Errors, fmt.Sprintf(format, args...))
	}

	// Native self-consistency check.
	var result string
	if err := s.db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		fail("integrity_check failed: %v", err)
	} else if result != "ok" {
		fail("integrity_check: %s", result)
	}

	// Required columns.
	present := make(map[string]bool)
	rows, err := s.db.Query("PRAGMA table_info(stale_repos)")
	if err != nil {
		return nil, fmt.Errorf("table_info: %w", err)
	}
	for rows.Next() {
		var cid, notnull, pk int
		var name, ctype string
		var dflt any
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan table_info: %w", err)
		}
		present[name] = true
	}
	rows.Close()
	for _, col := range requiredColumns {
		if !present[col] {
			fail("missing column: %s", col)
		}
	}

	// Required indexes.
	indexes := make(map[string]bool)
	rows, err = s.db.Query("SELECT name FROM sqlite_master WHERE type = 'index' AND tbl_name = 'stale_repos'")
	if err != nil {
		return nil, fmt.Errorf("list indexes: %w", err)
	}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan index name: %w", err)
		}
		indexes[name] = true
	}
	rows.Close()
	for _, idx := range requiredIndexes {
		if !indexes[idx] {
			fail("missing index: %s", idx)
		}
	}

	// Per-row checks: serialized lists must parse, numeric fields must not
	// be negative.
	rows, err = s.db.Query("SELECT id, tags, topics, stars, score, months_stale FROM stale_repos")
	if err != nil {
		return nil, fmt.Errorf("scan rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, tags, topics string
		var stars, score, months int
		if err := rows.Scan(&id, &tags, &topics, &stars, &score, &months); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		var list []string
		if err := json.Unmarshal([]byte(tags), &list); err != nil {
			fail("row %s: tags do not parse: %v", id, err)
		}
		if err := json.Unmarshal([]byte(topics), &list); err != nil {
			fail("row %s: topics do not parse: %v", id, err)
		}
		if stars < 0 {
			fail("row %s: negative stars (%d)", id, stars)
		}
		if score < 0 {
			fail("row %s: negative score (%d)", id, score)
		}
		if months < 0 {
			fail("row %s: negative months_stale (%d)", id, months)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return report, nil
}
