package record

import (
	"strings"
	"testing"
)

func TestLoadBatchArray(t *testing.T) {
	input := `[
		{"id":"a/one","category":"Tools","pushedAt":"2024-01-15T00:00:00Z","stars":10},
		{"id":"b/two","category":"Official","pushedAt":"2020-01-15T00:00:00Z","stars":5000}
	]`

	records, err := LoadBatch(strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadBatch: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len = %d, want 2", len(records))
	}
	if records[0].ID != "a/one" {
		t.Errorf("records[0].ID = %q, want a/one", records[0].ID)
	}
	if records[1].Category != "Official" {
		t.Errorf("records[1].Category = %q, want Official", records[1].Category)
	}
}

func TestLoadBatchEnvelope(t *testing.T) {
	input := `{"generatedAt":"2025-03-15T00:00:00Z","records":[
		{"id":"a/one","category":"Tools","pushedAt":"2024-01-15T00:00:00Z"}
	]}`

	records, err := LoadBatch(strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadBatch: %v", err)
	}
	if len(records) != 1 || records[0].ID != "a/one" {
		t.Errorf("records = %+v", records)
	}
}

func TestLoadBatchInvalid(t *testing.T) {
	for _, input := range []string{"", "not json", `{"foo": 1}`} {
		if _, err := LoadBatch(strings.NewReader(input)); err == nil {
			t.Errorf("expected error for input %q", input)
		}
	}
}

func TestLoadBatchPassthroughFields(t *testing.T) {
	input := `[{"id":"a/one","name":"one","repo":"a/one","url":"https://github.com/a/one",
		"description":"d","category":"Tools","tags":["cli","tui"],"stars":7,
		"pushedAt":"2024-01-15T00:00:00Z","archived":true,"fork":false,"license":"MIT",
		"topics":["go"],"score":12,"confidence":"high","notes":"n","hidden":true}]`

	records, err := LoadBatch(strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadBatch: %v", err)
	}
	r := records[0]
	if !r.Archived || r.Fork || !r.Hidden {
		t.Errorf("flags = archived:%v fork:%v hidden:%v", r.Archived, r.Fork, r.Hidden)
	}
	if len(r.Tags) != 2 || r.License != "MIT" || r.Score != 12 {
		t.Errorf("record = %+v", r)
	}
}
