package record

// SourceRecord is one repository row as produced by the crawler. The
// staleness engine only inspects Category and PushedAt; every other field is
// carried through untouched so the store round-trips whatever the crawler
// and classifier put there.
type SourceRecord struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Repo        string   `json:"repo"`
	URL         string   `json:"url"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags,omitempty"`
	Stars       int      `json:"stars"`
	PushedAt    string   `json:"pushedAt"`
	Archived    bool     `json:"archived"`
	Fork        bool     `json:"fork"`
	License     string   `json:"license,omitempty"`
	Topics      []string `json:"topics,omitempty"`
	Score       int      `json:"score"`
	Confidence  string   `json:"confidence"`
	Notes       string   `json:"notes,omitempty"`
	Hidden      bool     `json:"hidden"`
}

// StaleRecord is a SourceRecord plus the two fields the engine computes.
// StaleDetectedAt is set once on first detection and survives until the
// record is reactivated; MonthsStale is recomputed on every run and is never
// authoritative when read back from storage.
type StaleRecord struct {
	SourceRecord
	StaleDetectedAt string `json:"staleDetectedAt"`
	MonthsStale     int    `json:"monthsStale"`
}
