// Package validate gates every identifier and property path accepted by the
// query builder.
//
// The grammar is a strict allow-list: segments of letters, digits, and
// underscores, starting with a letter or underscore. Paths are one or more
// dot-separated segments with an optional trailing [*] marker for
// multi-valued properties. Anything outside the grammar is rejected,
// including quote characters, statement separators, comment markers, and
// whitespace.
//
// Render never re-validates. Every identifier interpolated into SQL text
// passes through exactly one of Name or Path before it is stored, so this
// package is the injection boundary for identifiers.
package validate

import (
	"fmt"
	"regexp"
)

var (
	namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	pathPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*(\[\*\])?$`)
)

// NameError reports a string rejected by the bare identifier grammar.
type NameError struct {
	Name string
}

// Error implements the error interface.
func (e *NameError) Error() string {
	return fmt.Sprintf("invalid identifier %q", e.Name)
}

// PathError reports a string rejected by the property path grammar.
type PathError struct {
	Path string
}

// Error implements the error interface.
func (e *PathError) Error() string {
	return fmt.Sprintf("invalid property path %q", e.Path)
}

// Name checks that s is a safe bare identifier: a single grammar segment
// with no dots and no multi-valued marker. Returns *NameError on rejection.
func Name(s string) error {
	if !namePattern.MatchString(s) {
		return &NameError{Name: s}
	}
	return nil
}

// Path checks that s is a safe property path: dot-separated grammar
// segments, optionally suffixed with the [*] multi-valued marker.
// Returns *PathError on rejection.
func Path(s string) error {
	if !pathPattern.MatchString(s) {
		return &PathError{Path: s}
	}
	return nil
}
