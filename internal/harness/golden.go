package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot captures a scenario's rendered output for golden comparison.
type Snapshot struct {
	Name   string `json:"name"`
	SQL    string `json:"sql"`
	Values []any  `json:"values"`
}

// Snapshot builds and renders the scenario.
func (s *Scenario) Snapshot() (*Snapshot, error) {
	q, err := s.Build()
	if err != nil {
		return nil, err
	}
	placeholder := s.Placeholder
	if placeholder == "" {
		placeholder = "?"
	}
	sql, values, err := q.Render(placeholder)
	if err != nil {
		return nil, err
	}
	if values == nil {
		values = []any{}
	}
	return &Snapshot{Name: s.Name, SQL: sql, Values: values}, nil
}

// marshal encodes the snapshot as indented JSON without HTML escaping, so
// comparison operators stay readable in golden files.
func (s *Snapshot) marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// RunWithGolden renders a scenario and compares the snapshot against the
// golden file testdata/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if the scenario fails to build or render; test failure via
// goldie occurs when the snapshot does not match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	snap, err := scenario.Snapshot()
	if err != nil {
		return err
	}
	data, err := snap.marshal()
	if err != nil {
		return err
	}

	g := goldie.New(t)
	g.Assert(t, scenario.Name, data)
	return nil
}
