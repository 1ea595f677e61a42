// Package harness runs YAML query scenarios against golden files.
//
// A scenario file declares a stage pipeline in data form. The harness
// compiles it to a query.Query, renders it, and snapshots the SQL text and
// bound values for golden-file comparison. Scenarios double as executable
// documentation of the append-time combinator rules: join deduplication,
// distinct-count folding, and HAVING placement all have scenario coverage.
package harness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/IBM/firepit/query"
)

// Scenario defines one rendering case.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario demonstrates.
	Description string `yaml:"description,omitempty"`

	// Placeholder overrides the bound-value marker. Defaults to "?".
	Placeholder string `yaml:"placeholder,omitempty"`

	// Stages is the pipeline, in append order.
	Stages []StageSpec `yaml:"stages"`
}

// StageSpec declares one stage. Kind selects the stage type; the other
// fields apply per kind.
type StageSpec struct {
	// Kind is one of: table, filter, projection, group, aggregation,
	// order, limit, offset, count, unique, count_unique, join.
	Kind string `yaml:"kind"`

	// Table names the table for table and join stages.
	Table string `yaml:"table,omitempty"`

	// Combinator is "and" (default) or "or", for filter stages.
	Combinator string `yaml:"combinator,omitempty"`

	// Preds lists filter predicates.
	Preds []PredSpec `yaml:"preds,omitempty"`

	// Columns lists column specifiers for projection, group, and
	// count_unique stages.
	Columns []ColSpec `yaml:"columns,omitempty"`

	// Aggs lists aggregation entries.
	Aggs []AggSpec `yaml:"aggs,omitempty"`

	// OrderBy lists ordering entries.
	OrderBy []OrderSpec `yaml:"order_by,omitempty"`

	// N is the row count for limit and offset stages.
	N int `yaml:"n,omitempty"`

	// Join condition fields. Either the left/op/right triple or the on
	// predicate list, never both.
	Left     string     `yaml:"left,omitempty"`
	Op       string     `yaml:"op,omitempty"`
	Right    string     `yaml:"right,omitempty"`
	On       []PredSpec `yaml:"on,omitempty"`
	JoinKind string     `yaml:"join_kind,omitempty"`
	Alias    string     `yaml:"alias,omitempty"`
	LHS      string     `yaml:"lhs,omitempty"`
}

// PredSpec declares one predicate. A missing value means NULL; a sequence
// value is a membership list; a column reference beats both.
type PredSpec struct {
	LHS    string   `yaml:"lhs"`
	Op     string   `yaml:"op"`
	Value  any      `yaml:"value,omitempty"`
	Column *ColSpec `yaml:"column,omitempty"`
}

// ColSpec declares a column specifier: a bare name, a qualified or aliased
// column, or a coalesce over several sources.
type ColSpec struct {
	Name     string   `yaml:"name,omitempty"`
	Table    string   `yaml:"table,omitempty"`
	Alias    string   `yaml:"alias,omitempty"`
	Coalesce []string `yaml:"coalesce,omitempty"`
}

// AggSpec declares one aggregation entry.
type AggSpec struct {
	Func  string `yaml:"func"`
	Col   string `yaml:"col,omitempty"`
	Alias string `yaml:"alias,omitempty"`
}

// OrderSpec declares one ordering entry. Dir is "asc" (default) or "desc".
type OrderSpec struct {
	Path string `yaml:"path"`
	Dir  string `yaml:"dir,omitempty"`
}

// LoadScenario reads and parses a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("scenario %s: missing name", path)
	}
	if len(sc.Stages) == 0 {
		return nil, fmt.Errorf("scenario %s: no stages", path)
	}
	return &sc, nil
}

// Build compiles the scenario's stage pipeline into a query.
func (s *Scenario) Build() (*query.Query, error) {
	stages := make([]query.Stage, 0, len(s.Stages))
	for i, spec := range s.Stages {
		stage, err := buildStage(spec)
		if err != nil {
			return nil, fmt.Errorf("stage %d (%s): %w", i, spec.Kind, err)
		}
		stages = append(stages, stage)
	}
	return query.NewQueryStages(stages...)
}

func buildStage(spec StageSpec) (query.Stage, error) {
	switch spec.Kind {
	case "table":
		return query.NewTable(spec.Table)
	case "filter":
		comb, err := combinator(spec.Combinator)
		if err != nil {
			return nil, err
		}
		preds, err := buildPreds(spec.Preds)
		if err != nil {
			return nil, err
		}
		return query.NewFilter(comb, preds...)
	case "projection":
		cols, err := buildCols(spec.Columns)
		if err != nil {
			return nil, err
		}
		return query.NewProjection(cols...)
	case "group":
		cols, err := buildCols(spec.Columns)
		if err != nil {
			return nil, err
		}
		return query.NewGroup(cols...)
	case "aggregation":
		specs := make([]query.AggSpec, len(spec.Aggs))
		for i, a := range spec.Aggs {
			specs[i] = query.AggSpec{Func: a.Func, Col: a.Col, Alias: a.Alias}
		}
		return query.NewAggregation(specs...)
	case "order":
		specs := make([]query.OrderSpec, len(spec.OrderBy))
		for i, o := range spec.OrderBy {
			dir, err := direction(o.Dir)
			if err != nil {
				return nil, err
			}
			specs[i] = query.OrderSpec{Path: o.Path, Dir: dir}
		}
		return query.NewOrder(specs...)
	case "limit":
		return query.NewLimit(spec.N)
	case "offset":
		return query.NewOffset(spec.N)
	case "count":
		return query.NewCount(), nil
	case "unique":
		return query.NewUnique(), nil
	case "count_unique":
		cols, err := buildCols(spec.Columns)
		if err != nil {
			return nil, err
		}
		return query.NewCountUnique(cols...)
	case "join":
		preds, err := buildPreds(spec.On)
		if err != nil {
			return nil, err
		}
		return query.NewJoin(query.JoinSpec{
			Table:    spec.Table,
			LeftCol:  spec.Left,
			Op:       spec.Op,
			RightCol: spec.Right,
			Preds:    preds,
			Kind:     query.JoinKind(spec.JoinKind),
			Alias:    spec.Alias,
			LHS:      spec.LHS,
		})
	default:
		return nil, fmt.Errorf("unknown stage kind %q", spec.Kind)
	}
}

func combinator(s string) (query.Combinator, error) {
	switch s {
	case "", "and":
		return query.And, nil
	case "or":
		return query.Or, nil
	default:
		return "", fmt.Errorf("unknown combinator %q", s)
	}
}

func direction(s string) (query.Direction, error) {
	switch s {
	case "", "asc":
		return query.Asc, nil
	case "desc":
		return query.Desc, nil
	default:
		return "", fmt.Errorf("unknown sort direction %q", s)
	}
}

func buildPreds(specs []PredSpec) ([]query.Predicate, error) {
	preds := make([]query.Predicate, 0, len(specs))
	for _, ps := range specs {
		rhs, err := operand(ps)
		if err != nil {
			return nil, err
		}
		p, err := query.NewPredicate(ps.LHS, ps.Op, rhs)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	return preds, nil
}

func operand(ps PredSpec) (query.Operand, error) {
	if ps.Column != nil {
		c, err := query.NewColumn(ps.Column.Name, ps.Column.Table, ps.Column.Alias)
		if err != nil {
			return nil, err
		}
		return query.ColRef(c), nil
	}
	switch v := ps.Value.(type) {
	case nil:
		return query.Null(), nil
	case []any:
		return query.List(v...), nil
	default:
		return query.Lit(v), nil
	}
}

func buildCols(specs []ColSpec) ([]query.ColumnSpec, error) {
	cols := make([]query.ColumnSpec, 0, len(specs))
	for _, cs := range specs {
		switch {
		case len(cs.Coalesce) > 0:
			c, err := query.NewCoalescedColumn(cs.Coalesce, cs.Alias)
			if err != nil {
				return nil, err
			}
			cols = append(cols, c)
		case cs.Table != "" || cs.Alias != "":
			c, err := query.NewColumn(cs.Name, cs.Table, cs.Alias)
			if err != nil {
				return nil, err
			}
			cols = append(cols, c)
		default:
			cols = append(cols, query.ColumnName(cs.Name))
		}
	}
	return cols, nil
}
