package store

import (
	"testing"

	"github.com/stalewatch/stalewatch/internal/record"
)

func staleRec(id, category string, stars, months int) *record.StaleRecord {
	return &record.StaleRecord{
		SourceRecord: record.SourceRecord{
			ID:         id,
			Name:       id,
			Repo:       id,
			URL:        "https://github.com/" + id,
			Category:   category,
			Tags:       []string{"cli"},
			Stars:      stars,
			PushedAt:   "2023-06-01T00:00:00Z",
			Topics:     []string{"go"},
			Score:      42,
			Confidence: "high",
		},
		StaleDetectedAt: "2025-01-01T00:00:00Z",
		MonthsStale:     months,
	}
}

func TestUpsertAndGet(t *testing.T) {
	s := testStore(t)

	rec := staleRec("a/one", "Tools", 100, 14)
	rec.Description = "a tool"
	rec.License = "MIT"
	if err := s.Upsert(rec); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	found, err := s.Get("a/one")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if found == nil {
		t.Fatal("expected record, got nil")
	}
	if found.Stars != 100 {
		t.Errorf("stars = %d, want 100", found.Stars)
	}
	if found.Description != "a tool" {
		t.Errorf("description = %q, want %q", found.Description, "a tool")
	}
	if found.License != "MIT" {
		t.Errorf("license = %q, want MIT", found.License)
	}
	if len(found.Tags) != 1 || found.Tags[0] != "cli" {
		t.Errorf("tags = %v, want [cli]", found.Tags)
	}
	if found.StaleDetectedAt != "2025-01-01T00:00:00Z" {
		t.Errorf("staleDetectedAt = %q", found.StaleDetectedAt)
	}
}

func TestGetMissing(t *testing.T) {
	s := testStore(t)

	found, err := s.Get("does/not-exist")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if found != nil {
		t.Errorf("expected nil for missing id, got %+v", found)
	}
}

func TestUpsertIdempotent(t *testing.T) {
	s := testStore(t)

	first := staleRec("a/one", "Tools", 100, 14)
	if err := s.Upsert(first); err != nil {
		t.Fatalf("first Upsert: %v", err)
	}

	// Same identity, newer values: one row, latest values win.
	second := staleRec("a/one", "Tools", 250, 15)
	if err := s.Upsert(second); err != nil {
		t.Fatalf("second Upsert: %v", err)
	}

	count, err := s.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}

	found, _ := s.Get("a/one")
	if found.Stars != 250 {
		t.Errorf("stars = %d, want 250", found.Stars)
	}
	if found.MonthsStale != 15 {
		t.Errorf("monthsStale = %d, want 15", found.MonthsStale)
	}
}

func TestRemove(t *testing.T) {
	s := testStore(t)

	s.Upsert(staleRec("a/one", "Tools", 100, 14))
	if err := s.Remove("a/one"); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	found, _ := s.Get("a/one")
	if found != nil {
		t.Error("expected record gone after Remove")
	}

	// Removing a missing id is a no-op.
	if err := s.Remove("never/existed"); err != nil {
		t.Errorf("Remove missing id: %v", err)
	}
}

func TestGetAllOrdering(t *testing.T) {
	s := testStore(t)

	s.Upsert(staleRec("t/low", "Tools", 10, 12))
	s.Upsert(staleRec("t/high", "Tools", 500, 12))
	s.Upsert(staleRec("l/lib", "Libraries", 50, 12))

	all, err := s.GetAll()
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}

	// Ordered by category, then stars descending.
	want := []string{"l/lib", "t/high", "t/low"}
	for i, id := range want {
		if all[i].ID != id {
			t.Errorf("all[%d].ID = %q, want %q", i, all[i].ID, id)
		}
	}
}

func TestGetByCategory(t *testing.T) {
	s := testStore(t)

	s.Upsert(staleRec("t/low", "Tools", 10, 12))
	s.Upsert(staleRec("t/high", "Tools", 500, 12))
	s.Upsert(staleRec("l/lib", "Libraries", 50, 12))

	tools, err := s.GetByCategory("Tools")
	if err != nil {
		t.Fatalf("GetByCategory: %v", err)
	}
	if len(tools) != 2 {
		t.Fatalf("len = %d, want 2", len(tools))
	}
	if tools[0].ID != "t/high" || tools[1].ID != "t/low" {
		t.Errorf("order = [%s %s], want [t/high t/low]", tools[0].ID, tools[1].ID)
	}

	none, _ := s.GetByCategory("Nope")
	if len(none) != 0 {
		t.Errorf("expected empty result for unknown category, got %d", len(none))
	}
}

func TestStatistics(t *testing.T) {
	s := testStore(t)

	s.Upsert(staleRec("a/one", "Tools", 10, 12))
	s.Upsert(staleRec("b/two", "Tools", 20, 18))
	s.Upsert(staleRec("c/three", "Libraries", 30, 24))

	stats, err := s.Statistics()
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	if stats.TotalStale != 3 {
		t.Errorf("totalStale = %d, want 3", stats.TotalStale)
	}
	if stats.AverageMonthsStale != 18.0 {
		t.Errorf("averageMonthsStale = %v, want 18.0", stats.AverageMonthsStale)
	}
	if stats.ByCategory["Tools"] != 2 || stats.ByCategory["Libraries"] != 1 {
		t.Errorf("byCategory = %v", stats.ByCategory)
	}
}

func TestStatisticsRounding(t *testing.T) {
	s := testStore(t)

	s.Upsert(staleRec("a/one", "Tools", 10, 13))
	s.Upsert(staleRec("b/two", "Tools", 20, 14))
	s.Upsert(staleRec("c/three", "Tools", 30, 15))

	stats, err := s.Statistics()
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	if stats.AverageMonthsStale != 14.0 {
		t.Errorf("averageMonthsStale = %v, want 14.0", stats.AverageMonthsStale)
	}
}

func TestStatisticsEmpty(t *testing.T) {
	s := testStore(t)

	stats, err := s.Statistics()
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	if stats.TotalStale != 0 {
		t.Errorf("totalStale = %d, want 0", stats.TotalStale)
	}
	if stats.AverageMonthsStale != 0 {
		t.Errorf("averageMonthsStale = %v, want 0", stats.AverageMonthsStale)
	}
	if len(stats.ByCategory) != 0 {
		t.Errorf("byCategory = %v, want empty", stats.ByCategory)
	}
}

func TestUpsertNilLists(t *testing.T) {
	s := testStore(t)

	rec := staleRec("a/one", "Tools", 10, 12)
	rec.Tags = nil
	rec.Topics = nil
	if err := s.Upsert(rec); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	found, err := s.Get("a/one")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	// nil lists round-trip as empty, not as a parse failure.
	if len(found.Tags) != 0 || len(found.Topics) != 0 {
		t.Errorf("tags = %v, topics = %v, want empty", found.Tags, found.Topics)
	}
}
