package staleness

import (
	"fmt"
	"time"

	"github.com/stalewatch/stalewatch/internal/record"
)

// CategoryOfficial marks first-party repositories. They are permanently
// exempt from staleness regardless of how old their last push is.
const CategoryOfficial = "Official"

// MonthsStale returns how many whole calendar months have elapsed between
// pushedAt and now. The arithmetic uses UTC year/month fields only, so the
// day of the month never shifts the result by more than one month and the
// same instant expressed with different timezone offsets always yields the
// same count. Future timestamps clamp to 0.
func MonthsStale(pushedAt string, now time.Time) (int, error) {
	t, err := time.Parse(time.RFC3339, pushedAt)
	if err != nil {
		return 0, fmt.Errorf("parse pushedAt %q: %w", pushedAt, err)
	}
	t = t.UTC()
	now = now.UTC()

	months := (now.Year()-t.Year())*12 + int(now.Month()) - int(t.Month())
	if months < 0 {
		months = 0
	}
	return months, nil
}

// IsStale reports whether rec has gone more than thresholdMonths calendar
// months without a push. The boundary is exclusive: a record exactly
// thresholdMonths old is still active. Official records are never stale.
func IsStale(rec record.SourceRecord, thresholdMonths int, now time.Time) (bool, error) {
	if rec.Category == CategoryOfficial {
		return false, nil
	}
	months, err := MonthsStale(rec.PushedAt, now)
	if err != nil {
		return false, err
	}
	return months > thresholdMonths, nil
}
