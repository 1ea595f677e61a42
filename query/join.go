package query

import (
	"reflect"
	"strings"

	"github.com/IBM/firepit/validate"
)

// JoinKind selects the SQL join type.
type JoinKind string

// The fixed join-type set.
const (
	InnerJoin     JoinKind = "INNER"
	OuterJoin     JoinKind = "OUTER"
	LeftOuterJoin JoinKind = "LEFT OUTER"
	CrossJoin     JoinKind = "CROSS"
)

var joinKinds = map[JoinKind]bool{
	InnerJoin:     true,
	OuterJoin:     true,
	LeftOuterJoin: true,
	CrossJoin:     true,
}

// JoinSpec is the construction input for a Join stage.
//
// Exactly one of the equality condition (LeftCol, Op, RightCol) or the
// predicate list (Preds) must be used. LHS names the left-hand table of the
// equality condition explicitly; when empty it is resolved from the
// preceding Table or Join stage at append time.
type JoinSpec struct {
	Table    string
	LeftCol  string
	Op       string
	RightCol string
	Preds    []Predicate
	Kind     JoinKind // empty defaults to InnerJoin
	Alias    string
	LHS      string
}

// Join combines the pipeline's current table with another table.
type Join struct {
	table    string
	leftCol  string
	op       string
	rightCol string
	preds    []Predicate
	kind     JoinKind
	alias    string
	lhs      string // resolved left-hand table
}

// NewJoin builds a join stage from spec.
func NewJoin(spec JoinSpec) (*Join, error) {
	if err := validate.Name(spec.Table); err != nil {
		return nil, err
	}
	kind := spec.Kind
	if kind == "" {
		kind = InnerJoin
	}
	kind = JoinKind(strings.ToUpper(string(kind)))
	if !joinKinds[kind] {
		return nil, errUnsupportedJoinKind(string(spec.Kind))
	}
	hasTriple := spec.LeftCol != "" || spec.Op != "" || spec.RightCol != ""
	if hasTriple {
		if spec.LeftCol == "" || spec.Op == "" || spec.RightCol == "" {
			return nil, errInvalidQuery("join equality condition needs left column, operator, and right column")
		}
		if len(spec.Preds) > 0 {
			return nil, errInvalidQuery("join takes either an equality condition or predicates, not both")
		}
		if !compOps[spec.Op] {
			return nil, errUnsupportedOperator(spec.Op)
		}
		if err := validateColumnName(spec.LeftCol); err != nil {
			return nil, err
		}
		if err := validateColumnName(spec.RightCol); err != nil {
			return nil, err
		}
	} else if len(spec.Preds) == 0 {
		return nil, errInvalidQuery("join needs an equality condition or predicates")
	}
	if spec.Alias != "" {
		if err := validate.Name(spec.Alias); err != nil {
			return nil, err
		}
	}
	if spec.LHS != "" {
		if err := validate.Name(spec.LHS); err != nil {
			return nil, err
		}
	}
	return &Join{
		table:    spec.Table,
		leftCol:  spec.LeftCol,
		op:       spec.Op,
		rightCol: spec.RightCol,
		preds:    append([]Predicate(nil), spec.Preds...),
		kind:     kind,
		alias:    spec.Alias,
		lhs:      spec.LHS,
	}, nil
}

// Table returns the join target table name.
func (j *Join) Table() string { return j.table }

// LHS returns the resolved left-hand table name, or "" before the join is
// appended to a query.
func (j *Join) LHS() string { return j.lhs }

func (*Join) stageNode() {}

// equal reports structural identity. Consecutive equal joins are
// deduplicated at append time.
func (j *Join) equal(o *Join) bool {
	return j.lhs == o.lhs &&
		j.table == o.table &&
		j.leftCol == o.leftCol &&
		j.op == o.op &&
		j.rightCol == o.rightCol &&
		j.kind == o.kind &&
		j.alias == o.alias &&
		reflect.DeepEqual(j.preds, o.preds)
}

// values returns the bound values contributed by ON predicates, in order.
// Equality-condition joins contribute none.
func (j *Join) values() []any {
	var out []any
	for _, p := range j.preds {
		out = append(out, p.Values()...)
	}
	return out
}

func (j *Join) render(placeholder string) string {
	target := quote(j.table)
	tableRef := target
	if j.alias != "" {
		target += " AS " + quote(j.alias)
		tableRef = quote(j.alias)
	}
	var cond string
	if j.leftCol != "" {
		cond = quote(j.lhs) + "." + quote(j.leftCol) + " " + j.op + " " + tableRef + "." + quote(j.rightCol)
	} else {
		parts := make([]string, len(j.preds))
		for i, p := range j.preds {
			parts[i] = p.render(placeholder)
		}
		cond = strings.Join(parts, " AND ")
	}
	return string(j.kind) + " JOIN " + target + " ON " + cond
}
