package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"

	"github.com/stalewatch/stalewatch/internal/record"
)

const repoColumns = `id, name, repo, url, description, category, tags, stars, pushed_at,
	archived, fork, license, topics, score, confidence, notes, hidden,
	stale_detected_at, months_stale`

// Upsert inserts or replaces a stale record by id. Idempotent: calling twice
// with the same record leaves one row holding the latest values. Each call
// is its own atomic unit, so an interrupted batch leaves earlier rows
// committed and consistent.
func (s *Store) Upsert(rec *record.StaleRecord) error {
	if err := s.ready(); err != nil {
		return err
	}

	tags, err := marshalList(rec.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags for %s: %w", rec.ID, err)
	}
	topics, err := marshalList(rec.Topics)
	if err != nil {
		return fmt.Errorf("marshal topics for %s: %w", rec.ID, err)
	}

	_, err = s.db.Exec(`
		INSERT INTO stale_repos (id, name, repo, url, description, category, tags, stars, pushed_at,
			archived, fork, license, topics, score, confidence, notes, hidden,
			stale_detected_at, months_stale)
		VALUES (?, ?, ?, ?, NULLIF(?, ''), ?, ?, ?, ?, ?, ?, NULLIF(?, ''), ?, ?, ?, NULLIF(?, ''), ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			repo = excluded.repo,
			url = excluded.url,
			description = excluded.description,
			category = excluded.category,
			tags = excluded.tags,
			stars = excluded.stars,
			pushed_at = excluded.pushed_at,
			archived = excluded.archived,
			fork = excluded.fork,
			license = excluded.license,
			topics = excluded.topics,
			score = excluded.score,
			confidence = excluded.confidence,
			notes = excluded.notes,
			hidden = excluded.hidden,
			stale_detected_at = excluded.stale_detected_at,
			months_stale = excluded.months_stale
	`, rec.ID, rec.Name, rec.Repo, rec.URL, rec.Description, rec.Category, tags, rec.Stars, rec.PushedAt,
		boolInt(rec.Archived), boolInt(rec.Fork), rec.License, topics, rec.Score, rec.Confidence,
		rec.Notes, boolInt(rec.Hidden), rec.StaleDetectedAt, rec.MonthsStale)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", rec.ID, err)
	}
	return nil
}

// Remove deletes a record by id. Removing an id that is not stored is a
// no-op, not an error.
func (s *Store) Remove(id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	_, err := s.db.Exec("DELETE FROM stale_repos WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("remove %s: %w", id, err)
	}
	return nil
}

// Get returns a stored record by id, or nil if not found.
func (s *Store) Get(id string) (*record.StaleRecord, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	row := s.db.QueryRow(`SELECT `+repoColumns+` FROM stale_repos WHERE id = ?`, id)
	rec, err := scanRepo(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", id, err)
	}
	return rec, nil
}

// GetAll returns every stored record ordered by category, then stars
// descending, for deterministic output.
func (s *Store) GetAll() ([]record.StaleRecord, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(`SELECT ` + repoColumns + ` FROM stale_repos ORDER BY category, stars DESC`)
	if err != nil {
		return nil, fmt.Errorf("get all: %w", err)
	}
	defer rows.Close()
	return scanRepos(rows)
}

// GetByCategory returns the stored records for one category, ordered by
// stars descending.
func (s *Store) GetByCategory(category string) ([]record.StaleRecord, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(`SELECT `+repoColumns+` FROM stale_repos WHERE category = ? ORDER BY stars DESC`, category)
	if err != nil {
		return nil, fmt.Errorf("get by category: %w", err)
	}
	defer rows.Close()
	return scanRepos(rows)
}

// Count returns the number of stored records.
func (s *Store) Count() (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM stale_repos").Scan(&count)
	return count, err
}

// Statistics is an aggregate view of the stored stale set.
type Statistics struct {
	TotalStale         int            `json:"totalStale"`
	ByCategory         map[string]int `json:"byCategory"`
	AverageMonthsStale float64        `json:"averageMonthsStale"`
}

// Statistics returns totals, per-category counts, and the average staleness
// duration rounded to one decimal place. An empty store yields zeros and an
// empty map.
func (s *Store) Statistics() (*Statistics, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	stats := &Statistics{ByCategory: make(map[string]int)}

	var avg float64
	err := s.db.QueryRow(
		"SELECT COUNT(*), COALESCE(AVG(months_stale), 0) FROM stale_repos",
	).Scan(&stats.TotalStale, &avg)
	if err != nil {
		return nil, fmt.Errorf("statistics totals: %w", err)
	}
	stats.AverageMonthsStale = math.Round(avg*10) / 10

	rows, err := s.db.Query("SELECT category, COUNT(*) FROM stale_repos GROUP BY category")
	if err != nil {
		return nil, fmt.Errorf("statistics by category: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cat string
		var count int
		if err := rows.Scan(&cat, &count); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		stats.ByCategory[cat] = count
	}
	return stats, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRepo(row scanner) (*record.StaleRecord, error) {
	var r record.StaleRecord
	var description, license, notes sql.NullString
	var tags, topics string
	var archived, fork, hidden int
	if err := row.Scan(&r.ID, &r.Name, &r.Repo, &r.URL, &description, &r.Category,
		&tags, &r.Stars, &r.PushedAt, &archived, &fork, &license, &topics,
		&r.Score, &r.Confidence, &notes, &hidden, &r.StaleDetectedAt, &r.MonthsStale); err != nil {
		return nil, err
	}
	r.Description = description.String
	r.License = license.String
	r.Notes = notes.String
	r.Archived = archived != 0
	r.Fork = fork != 0
	r.Hidden = hidden != 0
	if err := json.Unmarshal([]byte(tags), &r.Tags); err != nil {
		return nil, fmt.Errorf("parse tags for %s: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(topics), &r.Topics); err != nil {
		return nil, fmt.Errorf("parse topics for %s: %w", r.ID, err)
	}
	return &r, nil
}

func scanRepos(rows *sql.Rows) ([]record.StaleRecord, error) {
	var records []record.StaleRecord
	for rows.Next() {
		r, err := scanRepo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan repo: %w", err)
		}
		records = append(records, *r)
	}
	return records, rows.Err()
}

// marshalList serializes a tag/topic list, mapping nil to an empty JSON
// array so stored rows always parse.
func marshalList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
