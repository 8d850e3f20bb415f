package engine

import (
	"fmt"
	"time"

	"github.com/stalewatch/stalewatch/internal/record"
	"github.com/stalewatch/stalewatch/internal/staleness"
	"github.com/stalewatch/stalewatch/internal/store"
)

// Reconciler runs staleness detection over one crawler batch and keeps the
// store in sync with the outcome. It holds no state between runs; counters
// live in the returned Result so repeated calls are independently correct.
type Reconciler struct {
	Store     *store.Store
	Threshold int

	// Now is the clock used for month arithmetic and detection timestamps.
	// Tests override it; New defaults it to time.Now.
	Now func() time.Time
}

// New creates a Reconciler against an initialized store. thresholdMonths is
// accepted as-is, including zero and negative values: a non-positive
// threshold marks everything with any elapsed months stale.
func New(st *store.Store, thresholdMonths int) *Reconciler {
	return &Reconciler{
		Store:     st,
		Threshold: thresholdMonths,
		Now:       time.Now,
	}
}

// RecordError attributes a classification failure to a single record.
type RecordError struct {
	ID  string
	Err error
}

func (e RecordError) Error() string {
	return fmt.Sprintf("record %s: %v", e.ID, e.Err)
}

func (e RecordError) Unwrap() error {
	return e.Err
}

// Stats summarizes one reconciliation run. NewlyStale counts only ids that
// had no prior row at all; continuing-stale updates are excluded.
// RemainingStale counts stored ids the batch never mentioned.
type Stats struct {
	TotalProcessed int `json:"totalProcessed"`
	ActiveCount    int `json:"activeCount"`
	NewlyStale     int `json:"newlyStale"`
	Reactivated    int `json:"reactivated"`
	RemainingStale int `json:"remainingStale"`
}

// Result partitions one batch. ActiveItems holds every active and
// reactivated record, StaleItems every newly-detected and continuing stale
// record, ReactivatedItems only the reactivated ones. The same id never
// appears in both ActiveItems and StaleItems. Errors holds per-record
// classification failures; those records appear in no partition.
type Result struct {
	ActiveItems      []record.SourceRecord `json:"activeItems"`
	StaleItems       []record.StaleRecord  `json:"staleItems"`
	ReactivatedItems []record.SourceRecord `json:"reactivatedItems"`
	Errors           []RecordError         `json:"-"`
	Stats            Stats                 `json:"stats"`
}

// Detect classifies every record in the batch against the store's prior
// snapshot and applies the per-id state machine:
//
//	stored? stale?  outcome       store action
//	no      no      active        none
//	no      yes     newly stale   upsert, staleDetectedAt = now
//	yes     yes     continuing    upsert, staleDetectedAt preserved
//	yes     no      reactivated   delete
//
// Stored ids absent from the batch are left untouched. A record whose
// pushedAt fails to parse is reported in Result.Errors and skipped; the
// rest of the batch proceeds. Store I/O failures abort the run.
func (r *Reconciler) Detect(records []record.SourceRecord) (*Result, error) {
	now := r.Now().UTC()

	prior, err := r.Store.GetAll()
	if err != nil {
		return nil, fmt.Errorf("load stored stale set: %w", err)
	}
	priorByID := make(map[string]record.StaleRecord, len(prior))
	for _, p := range prior {
		priorByID[p.ID] = p
	}

	res := &Result{}
	res.Stats.TotalProcessed = len(records)
	touched := make(map[string]bool)

	for _, rec := range records {
		stale, err := staleness.IsStale(rec, r.Threshold, now)
		if err != nil {
			res.Errors = append(res.Errors, RecordError{ID: rec.ID, Err: err})
			continue
		}

		prev, wasStored := priorByID[rec.ID]
		if wasStored {
			touched[rec.ID] = true
		}

		if !stale {
			res.ActiveItems = append(res.ActiveItems, rec)
			if wasStored {
				if err := r.Store.Remove(rec.ID); err != nil {
					return nil, fmt.Errorf("remove reactivated %s: %w", rec.ID, err)
				}
				res.ReactivatedItems = append(res.ReactivatedItems, rec)
				res.Stats.Reactivated++
			}
			continue
		}

		// monthsStale is recomputed every run; the stored value is never
		// authoritative.
		months, err := staleness.MonthsStale(rec.PushedAt, now)
		if err != nil {
			res.Errors = append(res.Errors, RecordError{ID: rec.ID, Err: err})
			continue
		}

		sr := record.StaleRecord{SourceRecord: rec, MonthsStale: months}
		if wasStored {
			sr.StaleDetectedAt = prev.StaleDetectedAt
		} else {
			sr.StaleDetectedAt = now.Format(time.RFC3339)
			res.Stats.NewlyStale++
		}

		if err := r.Store.Upsert(&sr); err != nil {
			return nil, fmt.Errorf("upsert stale %s: %w", rec.ID, err)
		}
		res.StaleItems = append(res.StaleItems, sr)
	}

	res.Stats.ActiveCount = len(res.ActiveItems)
	res.Stats.RemainingStale = len(prior) - len(touched)
	return res, nil
}
