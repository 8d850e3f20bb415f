package record

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// batchEnvelope is the wrapped form the crawler emits when it includes run
// metadata alongside the records.
type batchEnvelope struct {
	Records []SourceRecord `json:"records"`
}

// LoadBatch reads a crawler batch from r. Accepts either a bare JSON array
// of records or a {"records": [...]} envelope.
func LoadBatch(r io.Reader) ([]SourceRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read batch: %w", err)
	}

	var records []SourceRecord
	if err := json.Unmarshal(data, &records); err == nil {
		return records, nil
	}

	var env batchEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parse batch: %w", err)
	}
	if env.Records == nil {
		return nil, fmt.Errorf("parse batch: no records array found")
	}
	return env.Records, nil
}

// LoadBatchFile reads a crawler batch from a JSON file on disk.
func LoadBatchFile(path string) ([]SourceRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open batch: %w", err)
	}
	defer f.Close()
	return LoadBatch(f)
}
