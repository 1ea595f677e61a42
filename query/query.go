package query

import "strings"

// Query holds the ordered stage sequence and the table-name stack.
//
// A Query is mutated only by Append and Extend, which apply the combinator
// rules below before storing a stage. Render is read-only: it may be called
// any number of times and always produces the same output for the same
// finalized sequence and placeholder.
//
// A Query is a plain mutable value; concurrent mutation from multiple
// goroutines needs external synchronization. The intended pattern is one
// Query built and rendered per logical request.
type Query struct {
	stages []Stage
	tables []string
}

// NewQuery returns a query seeded with a Table stage for name.
func NewQuery(name string) (*Query, error) {
	q := &Query{}
	t, err := NewTable(name)
	if err != nil {
		return nil, err
	}
	if err := q.Append(t); err != nil {
		return nil, err
	}
	return q, nil
}

// NewQueryStages returns a query built by appending each stage in order.
func NewQueryStages(stages ...Stage) (*Query, error) {
	q := &Query{}
	if err := q.Extend(stages...); err != nil {
		return nil, err
	}
	return q, nil
}

func (q *Query) lastStage() Stage {
	if len(q.stages) == 0 {
		return nil
	}
	return q.stages[len(q.stages)-1]
}

func (q *Query) popStage() {
	q.stages = q.stages[:len(q.stages)-1]
}

// Append adds a stage, applying the combinator rules against the current
// sequence:
//
//   - Aggregation fails if any prior stage is a Projection, and inherits
//     grouping columns from an immediately preceding Group.
//   - Join resolves its left-hand table from the preceding Table or Join,
//     failing if neither precedes; a Join identical to the immediately
//     preceding one is silently dropped.
//   - Count preceded by Unique folds into a CountUnique, absorbing the
//     columns of a Projection preceding the Unique.
//   - CountUnique absorbs an immediately preceding Projection's columns.
//   - Table pushes its name onto the table stack.
//
// Errors are terminal for the query under construction.
func (q *Query) Append(stage Stage) error {
	if stage == nil {
		return errInvalidQuery("cannot append nil stage")
	}
	switch s := stage.(type) {
	case *Aggregation:
		for _, prev := range q.stages {
			if _, ok := prev.(*Projection); ok {
				return errInvalidQuery("cannot have Aggregation after Projection")
			}
		}
		if g, ok := q.lastStage().(*Group); ok {
			s.groupCols = g.cols
		}
	case *Join:
		last := q.lastStage()
		if lj, ok := last.(*Join); ok {
			// Compare with the lhs the incoming join would resolve to,
			// so a duplicate without an explicit lhs still matches.
			probe := *s
			if probe.lhs == "" {
				probe.lhs = lj.lhs
			}
			if lj.equal(&probe) {
				return nil // redundant
			}
		}
		switch lt := last.(type) {
		case *Table:
			if s.lhs == "" {
				s.lhs = lt.name
			}
		case *Join:
			if s.lhs == "" {
				s.lhs = lt.table
			}
		default:
			return errInvalidQuery("Join must follow Table or Join")
		}
	case *Count:
		if _, ok := q.lastStage().(*Unique); ok {
			q.popStage()
			var cols []ColumnSpec
			if p, ok := q.lastStage().(*Projection); ok {
				cols = p.cols
				q.popStage()
			}
			q.stages = append(q.stages, &CountUnique{cols: cols})
			return nil
		}
	case *CountUnique:
		if p, ok := q.lastStage().(*Projection); ok {
			q.popStage()
			s.cols = p.cols
		}
	case *Table:
		q.tables = append(q.tables, s.name)
	}
	q.stages = append(q.stages, stage)
	return nil
}

// Extend appends each stage in order, stopping at the first error.
func (q *Query) Extend(stages ...Stage) error {
	for _, s := range stages {
		if err := q.Append(s); err != nil {
			return err
		}
	}
	return nil
}

// Render lowers the stage sequence to SQL text and the ordered bound
// values, in a single left-to-right fold.
//
// placeholder is substituted verbatim at every bound-value position; the
// returned values match the placeholder occurrences in the text one to one,
// left to right. SELECT-producing stages prefix the accumulated text, so
// their emission position is fixed regardless of append order. A Filter
// renders as WHERE, AND after another Filter, or HAVING after an
// Aggregation.
func (q *Query) Render(placeholder string) (string, []any, error) {
	if len(q.tables) == 0 {
		return "", nil, errInvalidQuery("query has no Table stage")
	}
	var sql string
	var values []any
	var prev Stage
	for _, stage := range q.stages {
		text := stage.render(placeholder)
		switch s := stage.(type) {
		case *Table:
			sql = "FROM " + quote(text)
		case *Projection:
			sql = "SELECT " + text + " " + sql
		case *Filter:
			values = append(values, s.values()...)
			keyword := "WHERE"
			switch prev.(type) {
			case *Aggregation:
				keyword = "HAVING"
			case *Filter:
				keyword = "AND"
			}
			sql = sql + " " + keyword + " " + text
		case *Group:
			sql = sql + " GROUP BY " + text
		case *Aggregation:
			sql = "SELECT " + text + " " + sql
		case *Order:
			sql = sql + " ORDER BY " + text
		case *Limit:
			sql = sql + " LIMIT " + text
		case *Offset:
			sql = sql + " OFFSET " + text
		case *Count:
			if _, ok := prev.(*Unique); ok {
				// Append folds Unique then Count into a CountUnique, so
				// this only fires on a hand-assembled sequence. Wrap the
				// accumulated text as a named subquery and count it.
				sql = "SELECT " + text + " FROM (" + sql + ") AS tmp"
			} else {
				sql = "SELECT " + text + " " + sql
			}
		case *Unique:
			if strings.HasPrefix(sql, "SELECT ") {
				sql = "SELECT DISTINCT " + strings.TrimPrefix(sql, "SELECT ")
			} else {
				sql = "SELECT DISTINCT * " + sql
			}
		case *Join:
			values = append(values, s.values()...)
			sql = sql + " " + text
		case *CountUnique:
			if len(s.cols) > 0 {
				sql = "SELECT " + text + " " + sql
			} else {
				sql = "SELECT " + text + " FROM (SELECT DISTINCT * " + sql + ") AS tmp"
			}
		}
		prev = stage
	}
	if !strings.HasPrefix(sql, "SELECT") {
		sql = "SELECT * " + sql
	}
	return sql, values, nil
}
