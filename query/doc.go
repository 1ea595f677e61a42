// Package query builds parameterized SQL from an ordered sequence of clause
// stages, guaranteeing that untrusted data is never interpolated as SQL
// syntax.
//
// ARCHITECTURE:
//
// A Query is a staged intermediate representation. Callers construct
// immutable clause values (Table, Filter, Projection, Join, ...) and append
// them; append-time combinator rules reject, merge, or drop stages; a
// single left-to-right render fold lowers the finalized sequence to SQL
// text plus an ordered slice of bound values:
//
//	[clause values] -> [Append: combinator rules] -> [Render: fold] -> (sql, values)
//
// Stage append order is logical pipeline order, not SQL emission order: a
// Projection or Aggregation appended last still emits its SELECT list
// first, and a Filter appended after an Aggregation emits as HAVING.
//
// INJECTION BOUNDARY:
//
// Two rules, no exceptions:
//
//   - Identifiers and paths pass the validate package's allow-list grammar
//     exactly once, at construction, and are interpolated double-quoted.
//   - Values never appear in SQL text. Every value position renders the
//     caller-supplied placeholder token, and Render returns the values in
//     placeholder order for positional binding.
//
// SEALED INTERFACES:
//
// Stage, Operand, and ColumnSpec are sealed with marker methods. The append
// combinator and the render fold switch exhaustively over them, so a new
// stage kind is a compile-time-checked change, not a runtime surprise.
//
// Example:
//
//	q, err := query.NewQuery("people")
//	...
//	p, err := query.NewPredicate("age", ">", query.Lit(30))
//	...
//	f, err := query.NewFilter(query.And, p)
//	...
//	if err := q.Append(f); err != nil { ... }
//	sql, values, err := q.Render("?")
//	// sql    = `SELECT * FROM "people" WHERE ("age" > ?)`
//	// values = []any{30}
//
// All construction and append errors are terminal: discard the query and
// rebuild. Render is read-only and deterministic, which Fingerprint relies
// on for cache keys.
package query
