package query

import (
	"strings"

	"github.com/IBM/firepit/validate"
)

// Wildcard is the column wildcard. It is the only column name that bypasses
// path validation and is never quoted.
const Wildcard = "*"

// quote double-quotes an SQL identifier unless it is the wildcard.
// Identifiers reaching here have already passed validation, so the quoted
// form cannot contain quote characters.
func quote(s string) string {
	if s == Wildcard {
		return s
	}
	return `"` + s + `"`
}

// validateColumnName accepts the wildcard or any valid property path.
func validateColumnName(name string) error {
	if name == Wildcard {
		return nil
	}
	return validate.Path(name)
}

// Column is an SQL column reference with an optional owning table and an
// optional output alias. Columns are immutable; all identifiers are
// validated at construction.
type Column struct {
	name  string
	table string
	alias string
}

// NewColumn builds a column reference. table and alias may be empty.
func NewColumn(name, table, alias string) (Column, error) {
	if err := validateColumnName(name); err != nil {
		return Column{}, err
	}
	if table != "" {
		if err := validate.Name(table); err != nil {
			return Column{}, err
		}
	}
	if alias != "" {
		if err := validate.Path(alias); err != nil {
			return Column{}, err
		}
	}
	return Column{name: name, table: table, alias: alias}, nil
}

// Name returns the column name.
func (c Column) Name() string { return c.name }

// Table returns the owning table, or "" when unqualified.
func (c Column) Table() string { return c.table }

// Alias returns the output alias, or "" when none was given.
func (c Column) Alias() string { return c.alias }

// SQL returns the quoted select-list form of the column, including the
// table qualifier and alias when present.
func (c Column) SQL() string {
	var out string
	if c.table != "" {
		out = quote(c.table) + "." + quote(c.name)
	} else {
		out = quote(c.name)
	}
	if c.alias != "" {
		out += " AS " + quote(c.alias)
	}
	return out
}

// CoalescedColumn selects the first non-null of several source columns
// under a single alias. It is used after joins to merge same-named columns
// from different tables.
type CoalescedColumn struct {
	names []string
	alias string
}

// NewCoalescedColumn builds a coalesced column over the given sources.
func NewCoalescedColumn(names []string, alias string) (CoalescedColumn, error) {
	if len(names) == 0 {
		return CoalescedColumn{}, errInvalidQuery("coalesced column needs at least one source")
	}
	for _, name := range names {
		if err := validateColumnName(name); err != nil {
			return CoalescedColumn{}, err
		}
	}
	if err := validate.Path(alias); err != nil {
		return CoalescedColumn{}, err
	}
	return CoalescedColumn{names: append([]string(nil), names...), alias: alias}, nil
}

// SQL returns the COALESCE expression with its alias. Source names render
// unquoted; they are path-validated at construction.
func (c CoalescedColumn) SQL() string {
	return "COALESCE(" + strings.Join(c.names, ", ") + ") AS " + quote(c.alias)
}

// ColumnSpec identifies a column inside a Projection, Group, or CountUnique
// stage.
//
// This is a sealed variant: a bare ColumnName, a Column, or a
// CoalescedColumn. Rendering switches exhaustively over the three.
type ColumnSpec interface {
	columnSpecNode() // Marker method - seals interface to this package
}

// ColumnName is a bare column name or property path used as a ColumnSpec.
type ColumnName string

func (ColumnName) columnSpecNode() {}

func (Column) columnSpecNode() {}

func (CoalescedColumn) columnSpecNode() {}

// validateColumnSpec re-checks a spec's identifiers. Column and
// CoalescedColumn values built through their constructors always pass; the
// re-check rejects zero values assembled without one.
func validateColumnSpec(spec ColumnSpec) error {
	switch s := spec.(type) {
	case ColumnName:
		return validateColumnName(string(s))
	case Column:
		if err := validateColumnName(s.name); err != nil {
			return err
		}
		if s.table != "" {
			if err := validate.Name(s.table); err != nil {
				return err
			}
		}
		if s.alias != "" {
			return validate.Path(s.alias)
		}
		return nil
	case CoalescedColumn:
		if len(s.names) == 0 {
			return errInvalidQuery("coalesced column needs at least one source")
		}
		for _, name := range s.names {
			if err := validateColumnName(name); err != nil {
				return err
			}
		}
		return validate.Path(s.alias)
	}
	return errInvalidQuery("unknown column specifier")
}

// selectText renders a spec for select-list contexts, aliases included.
func selectText(spec ColumnSpec) string {
	switch s := spec.(type) {
	case ColumnName:
		return quote(string(s))
	case Column:
		return s.SQL()
	case CoalescedColumn:
		return s.SQL()
	}
	return ""
}

// groupText renders a spec for GROUP BY and COUNT(DISTINCT ...) contexts,
// where output aliases are not legal SQL and are dropped.
func groupText(spec ColumnSpec) string {
	switch s := spec.(type) {
	case ColumnName:
		return quote(string(s))
	case Column:
		if s.table != "" {
			return quote(s.table) + "." + quote(s.name)
		}
		return quote(s.name)
	case CoalescedColumn:
		return "COALESCE(" + strings.Join(s.names, ", ") + ")"
	}
	return ""
}
