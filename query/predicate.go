package query

import (
	"fmt"
	"strings"

	"github.com/IBM/firepit/validate"
)

// multiValuedMarker suffixes a property path whose underlying column stores
// an encoded collection as a single string. Equality tests against such a
// column are rewritten to substring matches.
const multiValuedMarker = "[*]"

// compOps is the fixed comparison-operator set accepted by NewPredicate.
// NOT LIKE is not listed: it only arises from the multi-valued rewrite.
var compOps = map[string]bool{
	"=":      true,
	"<>":     true,
	"!=":     true,
	"<":      true,
	">":      true,
	"<=":     true,
	">=":     true,
	"LIKE":   true,
	"IN":     true,
	"IS":     true,
	"IS NOT": true,
}

// Predicate is a single row-value comparison: left-hand property path,
// comparison operator, right-hand operand. Predicates are immutable and
// fully validated at construction.
type Predicate struct {
	lhs string
	op  string
	rhs Operand
}

// NewPredicate builds a predicate.
//
// A nil rhs is treated as Null(). The NULL operand pairs only with =, !=,
// <>, IS, and IS NOT; IN pairs only with a LiteralList, and a LiteralList
// only with IN. Any other combination fails with an unsupported-operator
// error.
//
// When lhs carries the [*] multi-valued marker, the marker is stripped and,
// for a scalar literal rhs, the value is wrapped in SQL wildcards and the
// operator rewritten (= to LIKE, != to NOT LIKE). The underlying column
// stores the collection as one encoded string, so equality means substring
// containment.
func NewPredicate(lhs, op string, rhs Operand) (Predicate, error) {
	if !compOps[op] {
		return Predicate{}, errUnsupportedOperator(op)
	}
	if rhs == nil {
		rhs = NullValue{}
	}
	if strings.HasSuffix(lhs, multiValuedMarker) {
		lhs = strings.TrimSuffix(lhs, multiValuedMarker)
		if lit, ok := rhs.(Literal); ok {
			rhs = Literal{Value: fmt.Sprintf("%%%v%%", lit.Value)}
			switch op {
			case "=":
				op = "LIKE"
			case "!=":
				op = "NOT LIKE"
			}
		}
	}
	if err := validate.Path(lhs); err != nil {
		return Predicate{}, err
	}
	switch rhs.(type) {
	case NullValue:
		switch op {
		case "=", "!=", "<>", "IS", "IS NOT":
		default:
			return Predicate{}, errNullOperator(op)
		}
	case LiteralList:
		if op != "IN" {
			return Predicate{}, &BuildError{
				Code:    ErrCodeUnsupportedOperator,
				Message: "list value requires the IN operator",
				Token:   op,
			}
		}
	default:
		if op == "IN" {
			return Predicate{}, &BuildError{
				Code:    ErrCodeUnsupportedOperator,
				Message: "IN requires a list value",
				Token:   op,
			}
		}
	}
	return Predicate{lhs: lhs, op: op, rhs: rhs}, nil
}

// LHS returns the stored left-hand path, marker stripped.
func (p Predicate) LHS() string { return p.lhs }

// Op returns the stored operator, after any multi-valued rewrite.
func (p Predicate) Op() string { return p.op }

// RHS returns the right-hand operand.
func (p Predicate) RHS() Operand { return p.rhs }

// Values returns the bound values this predicate contributes, in placeholder
// order. NULL and column operands contribute none.
func (p Predicate) Values() []any {
	switch r := p.rhs.(type) {
	case Literal:
		return []any{r.Value}
	case LiteralList:
		return append([]any(nil), r...)
	default:
		return nil
	}
}

// render produces the parenthesized clause text. Values never appear in the
// text; every value position is the caller's placeholder token.
func (p Predicate) render(placeholder string) string {
	switch r := p.rhs.(type) {
	case NullValue:
		switch p.op {
		case "!=", "<>", "IS NOT":
			return "(" + quote(p.lhs) + " IS NOT NULL)"
		default:
			return "(" + quote(p.lhs) + " IS NULL)"
		}
	case ColumnRef:
		return "(" + quote(p.lhs) + " " + p.op + " " + r.Column.SQL() + ")"
	case LiteralList:
		phs := make([]string, len(r))
		for i := range phs {
			phs[i] = placeholder
		}
		return "(" + quote(p.lhs) + " " + p.op + " (" + strings.Join(phs, ", ") + "))"
	default:
		return "(" + quote(p.lhs) + " " + p.op + " " + placeholder + ")"
	}
}
