package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadScenario_MissingName(t *testing.T) {
	path := writeScenario(t, "stages:\n  - kind: table\n    table: people\n")
	_, err := LoadScenario(path)
	assert.ErrorContains(t, err, "missing name")
}

func TestLoadScenario_NoStages(t *testing.T) {
	path := writeScenario(t, "name: empty\n")
	_, err := LoadScenario(path)
	assert.ErrorContains(t, err, "no stages")
}

func TestBuild_UnknownStageKind(t *testing.T) {
	sc := &Scenario{
		Name:   "bad",
		Stages: []StageSpec{{Kind: "explode"}},
	}
	_, err := sc.Build()
	assert.ErrorContains(t, err, `unknown stage kind "explode"`)
}

func TestBuild_UnknownCombinator(t *testing.T) {
	sc := &Scenario{
		Name: "bad",
		Stages: []StageSpec{
			{Kind: "table", Table: "people"},
			{Kind: "filter", Combinator: "xor", Preds: []PredSpec{{LHS: "a", Op: "=", Value: 1}}},
		},
	}
	_, err := sc.Build()
	assert.ErrorContains(t, err, `unknown combinator "xor"`)
}

func TestBuild_UnknownDirection(t *testing.T) {
	sc := &Scenario{
		Name: "bad",
		Stages: []StageSpec{
			{Kind: "table", Table: "people"},
			{Kind: "order", OrderBy: []OrderSpec{{Path: "age", Dir: "sideways"}}},
		},
	}
	_, err := sc.Build()
	assert.ErrorContains(t, err, `unknown sort direction "sideways"`)
}

func TestBuild_StageErrorIncludesIndex(t *testing.T) {
	sc := &Scenario{
		Name: "bad",
		Stages: []StageSpec{
			{Kind: "table", Table: "people"},
			{Kind: "table", Table: `x"; DROP TABLE people; --`},
		},
	}
	_, err := sc.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stage 1 (table)")
}

func TestSnapshot_DefaultsPlaceholder(t *testing.T) {
	sc := &Scenario{
		Name: "defaults",
		Stages: []StageSpec{
			{Kind: "table", Table: "people"},
			{Kind: "filter", Preds: []PredSpec{{LHS: "age", Op: "<", Value: 30}}},
		},
	}
	snap, err := sc.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "people" WHERE ("age" < ?)`, snap.SQL)
	assert.Equal(t, []any{30}, snap.Values)
}

func TestSnapshot_EmptyValuesNotNil(t *testing.T) {
	sc := &Scenario{
		Name:   "novalues",
		Stages: []StageSpec{{Kind: "table", Table: "people"}},
	}
	snap, err := sc.Snapshot()
	require.NoError(t, err)
	assert.NotNil(t, snap.Values)
	assert.Empty(t, snap.Values)
}
