package query

// Operand represents a predicate right-hand side.
//
// This is a sealed interface: only NullValue, Literal, LiteralList, and
// ColumnRef implement it. The variant is decided once, at predicate
// construction, so rendering never has to sniff values for null markers or
// membership lists.
type Operand interface {
	operandNode() // Marker method - seals interface to this package
}

// NullValue is the SQL NULL marker. Predicates against it render as
// IS NULL / IS NOT NULL and contribute no bound values.
type NullValue struct{}

func (NullValue) operandNode() {}

// Literal is a single scalar compared through one placeholder and one bound
// value.
type Literal struct {
	Value any
}

func (Literal) operandNode() {}

// LiteralList is a membership-test value set for the IN operator. It renders
// one placeholder per element and binds the elements in order.
type LiteralList []any

func (LiteralList) operandNode() {}

// ColumnRef compares against another column. The comparison is rendered
// identifier-to-identifier and contributes no bound values.
type ColumnRef struct {
	Column Column
}

func (ColumnRef) operandNode() {}

// Null returns the NULL operand.
func Null() Operand {
	return NullValue{}
}

// Lit wraps a scalar value as a literal operand. A nil value is normalized
// to the NULL operand.
func Lit(v any) Operand {
	if v == nil {
		return NullValue{}
	}
	return Literal{Value: v}
}

// List wraps values as a membership-test operand for IN.
func List(vs ...any) Operand {
	return LiteralList(vs)
}

// ColRef wraps a column as a comparison operand.
func ColRef(c Column) Operand {
	return ColumnRef{Column: c}
}
