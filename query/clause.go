package query

import (
	"strconv"
	"strings"

	"github.com/IBM/firepit/validate"
)

// Stage is one clause in a query pipeline. Together the appended stages
// form the ordered intermediate representation that Render lowers to SQL.
//
// This is a sealed interface - only the stage types in this package
// implement it. The marker method pattern prevents external implementations
// and keeps the type switches in Append and Render exhaustive: adding a
// stage kind is a change the compiler walks you through.
//
// Stage types: Table, Filter, Order, Projection, Group, Aggregation,
// Offset, Limit, Count, Unique, CountUnique, Join.
type Stage interface {
	stageNode() // Marker method - seals interface to this package

	// render produces the stage's clause text. How the text is spliced
	// into the accumulated SQL is the render fold's business, not the
	// stage's.
	render(placeholder string) string
}

// Table names the source table of the pipeline.
type Table struct {
	name string
}

// NewTable builds a table stage.
func NewTable(name string) (*Table, error) {
	if err := validate.Name(name); err != nil {
		return nil, err
	}
	return &Table{name: name}, nil
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

func (*Table) stageNode() {}

func (t *Table) render(string) string { return t.name }

// Combinator joins the predicates of a Filter.
type Combinator string

// Filter combinators. A Filter uses exactly one; AND and OR never mix
// within a single Filter.
const (
	And Combinator = "AND"
	Or  Combinator = "OR"
)

// Filter is a WHERE/HAVING clause: an ordered predicate sequence joined by
// a single boolean combinator.
type Filter struct {
	comb  Combinator
	preds []Predicate
}

// NewFilter builds a filter from one or more predicates.
func NewFilter(comb Combinator, preds ...Predicate) (*Filter, error) {
	switch comb {
	case And, Or:
	default:
		return nil, &BuildError{
			Code:    ErrCodeInvalidQuery,
			Message: "unknown filter combinator",
			Token:   string(comb),
		}
	}
	if len(preds) == 0 {
		return nil, errInvalidQuery("filter needs at least one predicate")
	}
	return &Filter{comb: comb, preds: append([]Predicate(nil), preds...)}, nil
}

func (*Filter) stageNode() {}

// render joins the child predicate texts. An OR group is parenthesized as a
// unit so it composes correctly when chained after other filters.
func (f *Filter) render(placeholder string) string {
	parts := make([]string, len(f.preds))
	for i, p := range f.preds {
		parts[i] = p.render(placeholder)
	}
	out := strings.Join(parts, " "+string(f.comb)+" ")
	if f.comb == Or {
		return "(" + out + ")"
	}
	return out
}

// values concatenates the child predicates' bound values in order.
func (f *Filter) values() []any {
	var out []any
	for _, p := range f.preds {
		out = append(out, p.Values()...)
	}
	return out
}

// Direction orders an ORDER BY entry.
type Direction string

// Sort directions.
const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// OrderSpec is one (path, direction) entry of an Order stage. An empty
// direction defaults to ascending.
type OrderSpec struct {
	Path string
	Dir  Direction
}

// OrderAsc returns an ascending order entry.
func OrderAsc(path string) OrderSpec { return OrderSpec{Path: path, Dir: Asc} }

// OrderDesc returns a descending order entry.
func OrderDesc(path string) OrderSpec { return OrderSpec{Path: path, Dir: Desc} }

// Order is an ORDER BY clause.
type Order struct {
	specs []OrderSpec
}

// NewOrder builds an order stage. Directions outside ASC/DESC fail; they
// would otherwise be interpolated as raw SQL text.
func NewOrder(specs ...OrderSpec) (*Order, error) {
	if len(specs) == 0 {
		return nil, errInvalidQuery("order needs at least one column")
	}
	out := make([]OrderSpec, len(specs))
	for i, s := range specs {
		if err := validate.Path(s.Path); err != nil {
			return nil, err
		}
		switch s.Dir {
		case "":
			s.Dir = Asc
		case Asc, Desc:
		default:
			return nil, &BuildError{
				Code:    ErrCodeInvalidQuery,
				Message: "unknown sort direction",
				Token:   string(s.Dir),
			}
		}
		out[i] = s
	}
	return &Order{specs: out}, nil
}

func (*Order) stageNode() {}

func (o *Order) render(string) string {
	parts := make([]string, len(o.specs))
	for i, s := range o.specs {
		parts[i] = quote(s.Path) + " " + string(s.Dir)
	}
	return strings.Join(parts, ", ")
}

// Projection picks the visible columns of the result.
type Projection struct {
	cols []ColumnSpec
}

// NewProjection builds a projection over the given column specifiers.
func NewProjection(cols ...ColumnSpec) (*Projection, error) {
	if len(cols) == 0 {
		return nil, errInvalidQuery("projection needs at least one column")
	}
	for _, c := range cols {
		if err := validateColumnSpec(c); err != nil {
			return nil, err
		}
	}
	return &Projection{cols: append([]ColumnSpec(nil), cols...)}, nil
}

func (*Projection) stageNode() {}

func (p *Projection) render(string) string {
	parts := make([]string, len(p.cols))
	for i, c := range p.cols {
		parts[i] = selectText(c)
	}
	return strings.Join(parts, ", ")
}

// Group is a GROUP BY clause.
type Group struct {
	cols []ColumnSpec
}

// NewGroup builds a grouping stage over the given column specifiers.
func NewGroup(cols ...ColumnSpec) (*Group, error) {
	if len(cols) == 0 {
		return nil, errInvalidQuery("group needs at least one column")
	}
	for _, c := range cols {
		if err := validateColumnSpec(c); err != nil {
			return nil, err
		}
	}
	return &Group{cols: append([]ColumnSpec(nil), cols...)}, nil
}

func (*Group) stageNode() {}

func (g *Group) render(string) string {
	parts := make([]string, len(g.cols))
	for i, c := range g.cols {
		parts[i] = groupText(c)
	}
	return strings.Join(parts, ", ")
}

// aggFuncs is the fixed aggregate-function set. NUNIQUE is a pseudo
// function that lowers to COUNT with a DISTINCT modifier.
var aggFuncs = map[string]bool{
	"COUNT":   true,
	"SUM":     true,
	"MIN":     true,
	"MAX":     true,
	"AVG":     true,
	"NUNIQUE": true,
}

// AggSpec is one (function, column, alias) entry of an Aggregation stage.
// An empty Col aggregates over the wildcard; an empty Alias defaults to the
// lower-cased function name.
type AggSpec struct {
	Func  string
	Col   string
	Alias string
}

// Aggregation aggregates rows. When it immediately follows a Group stage at
// append time, the grouping columns are copied in as leading select-list
// expressions, since SQL requires grouping columns to appear alongside the
// aggregates.
type Aggregation struct {
	aggs      []AggSpec
	groupCols []ColumnSpec // filled in by Query.Append
}

// NewAggregation builds an aggregation stage.
func NewAggregation(specs ...AggSpec) (*Aggregation, error) {
	if len(specs) == 0 {
		return nil, errInvalidQuery("aggregation needs at least one function")
	}
	out := make([]AggSpec, len(specs))
	for i, s := range specs {
		fn := strings.ToUpper(s.Func)
		if !aggFuncs[fn] {
			return nil, errUnsupportedAggregate(s.Func)
		}
		if s.Col != "" && s.Col != Wildcard {
			if err := validateColumnName(s.Col); err != nil {
				return nil, err
			}
		}
		if s.Alias != "" {
			if err := validate.Path(s.Alias); err != nil {
				return nil, err
			}
		}
		out[i] = AggSpec{Func: fn, Col: s.Col, Alias: s.Alias}
	}
	return &Aggregation{aggs: out}, nil
}

func (*Aggregation) stageNode() {}

func (a *Aggregation) render(string) string {
	exprs := make([]string, 0, len(a.groupCols)+len(a.aggs))
	for _, c := range a.groupCols {
		exprs = append(exprs, selectText(c))
	}
	for _, s := range a.aggs {
		fn, mod := s.Func, ""
		if fn == "NUNIQUE" {
			fn, mod = "COUNT", "DISTINCT "
		}
		col := s.Col
		if col == "" {
			col = Wildcard
		}
		var expr string
		if col == Wildcard {
			expr = fn + "(" + mod + col + ")"
		} else {
			expr = fn + "(" + mod + quote(col) + ")"
		}
		alias := s.Alias
		if alias == "" {
			alias = strings.ToLower(fn)
		}
		exprs = append(exprs, expr+" AS "+quote(alias))
	}
	return strings.Join(exprs, ", ")
}

// Offset skips a number of result rows.
type Offset struct {
	n int
}

// NewOffset builds an offset stage. n must be non-negative.
func NewOffset(n int) (*Offset, error) {
	if n < 0 {
		return nil, errInvalidQuery("offset cannot be negative")
	}
	return &Offset{n: n}, nil
}

func (*Offset) stageNode() {}

func (o *Offset) render(string) string { return strconv.Itoa(o.n) }

// Limit caps the number of result rows.
type Limit struct {
	n int
}

// NewLimit builds a limit stage. n must be non-negative.
func NewLimit(n int) (*Limit, error) {
	if n < 0 {
		return nil, errInvalidQuery("limit cannot be negative")
	}
	return &Limit{n: n}, nil
}

func (*Limit) stageNode() {}

func (l *Limit) render(string) string { return strconv.Itoa(l.n) }

// Count reduces the result to its row count.
type Count struct{}

// NewCount builds a count stage.
func NewCount() *Count { return &Count{} }

func (*Count) stageNode() {}

func (*Count) render(string) string { return `COUNT(*) AS "count"` }

// Unique reduces the result to distinct rows.
type Unique struct{}

// NewUnique builds a distinct-reduction stage.
func NewUnique() *Unique { return &Unique{} }

func (*Unique) stageNode() {}

func (*Unique) render(string) string { return "SELECT DISTINCT *" }

// CountUnique reduces the result to its distinct row count, optionally
// restricted to a column list. Appending Unique then Count, or a Projection
// then CountUnique, folds into this stage.
type CountUnique struct {
	cols []ColumnSpec
}

// NewCountUnique builds a distinct-row-count stage. With no columns it
// counts distinct whole rows.
func NewCountUnique(cols ...ColumnSpec) (*CountUnique, error) {
	for _, c := range cols {
		if err := validateColumnSpec(c); err != nil {
			return nil, err
		}
	}
	return &CountUnique{cols: append([]ColumnSpec(nil), cols...)}, nil
}

func (*CountUnique) stageNode() {}

func (c *CountUnique) render(string) string {
	if len(c.cols) == 0 {
		return `COUNT(*) AS "count"`
	}
	parts := make([]string, len(c.cols))
	for i, col := range c.cols {
		parts[i] = groupText(col)
	}
	return "COUNT(DISTINCT " + strings.Join(parts, ", ") + `) AS "count"`
}
