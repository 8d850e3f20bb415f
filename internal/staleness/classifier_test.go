package staleness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stalewatch/stalewatch/internal/record"
)

var testNow = time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

func rec(category, pushedAt string) record.SourceRecord {
	return record.SourceRecord{ID: "owner/repo", Category: category, PushedAt: pushedAt}
}

func TestMonthsStale(t *testing.T) {
	tests := []struct {
		name     string
		pushedAt string
		want     int
	}{
		{"same month", "2025-03-01T00:00:00Z", 0},
		{"one month", "2025-02-28T23:59:59Z", 1},
		{"exactly a year", "2024-03-15T12:00:00Z", 12},
		{"thirteen months", "2024-02-15T12:00:00Z", 13},
		{"several years", "2021-06-01T00:00:00Z", 45},
		{"future date clamps to zero", "2025-09-01T00:00:00Z", 0},
		{"late in month vs early now", "2024-03-31T23:00:00Z", 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MonthsStale(tt.pushedAt, testNow)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMonthsStaleTimezoneInvariant(t *testing.T) {
	// The same instant in different offsets must normalize identically.
	utc, err := MonthsStale("2023-01-15T12:00:00Z", testNow)
	require.NoError(t, err)
	offset, err := MonthsStale("2023-01-15T17:00:00+05:00", testNow)
	require.NoError(t, err)
	assert.Equal(t, utc, offset)

	// An offset that crosses a month boundary once normalized to UTC.
	// 2024-03-01T01:00:00+02:00 is 2024-02-29T23:00:00Z.
	feb, err := MonthsStale("2024-03-01T01:00:00+02:00", testNow)
	require.NoError(t, err)
	assert.Equal(t, 13, feb)
}

func TestMonthsStaleMalformed(t *testing.T) {
	for _, bad := range []string{"", "not a date", "2024-13-45", "yesterday"} {
		_, err := MonthsStale(bad, testNow)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestIsStaleBoundaryExclusive(t *testing.T) {
	// Exactly at the threshold is active; one past it is stale.
	exact := testNow.AddDate(0, -12, 0).Format(time.RFC3339)
	over := testNow.AddDate(0, -13, 0).Format(time.RFC3339)

	stale, err := IsStale(rec("Tools", exact), 12, testNow)
	require.NoError(t, err)
	assert.False(t, stale, "record exactly threshold months old must be active")

	stale, err = IsStale(rec("Tools", over), 12, testNow)
	require.NoError(t, err)
	assert.True(t, stale)
}

func TestIsStaleOfficialExempt(t *testing.T) {
	for _, age := range []int{1, 13, 36, 120} {
		pushed := testNow.AddDate(0, -age, 0).Format(time.RFC3339)
		stale, err := IsStale(rec(CategoryOfficial, pushed), 12, testNow)
		require.NoError(t, err)
		assert.False(t, stale, "Official record %d months old must never be stale", age)
	}
}

func TestIsStaleZeroThreshold(t *testing.T) {
	// A non-positive threshold marks anything with elapsed months stale.
	oneMonth := testNow.AddDate(0, -1, 0).Format(time.RFC3339)
	thisMonth := testNow.Format(time.RFC3339)

	stale, err := IsStale(rec("Tools", oneMonth), 0, testNow)
	require.NoError(t, err)
	assert.True(t, stale)

	stale, err = IsStale(rec("Tools", thisMonth), 0, testNow)
	require.NoError(t, err)
	assert.False(t, stale, "zero elapsed months is not > 0")

	// Negative thresholds keep the raw comparison: 0 elapsed months > -5.
	stale, err = IsStale(rec("Tools", thisMonth), -5, testNow)
	require.NoError(t, err)
	assert.True(t, stale)
}

func TestIsStaleMalformed(t *testing.T) {
	_, err := IsStale(rec("Tools", "garbage"), 12, testNow)
	assert.Error(t, err)

	// Exemption short-circuits before the timestamp is parsed.
	stale, err := IsStale(rec(CategoryOfficial, "garbage"), 12, testNow)
	require.NoError(t, err)
	assert.False(t, stale)
}
