package query

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes query construction errors.
type ErrorCode string

const (
	// ErrCodeUnsupportedOperator indicates a comparison operator outside the
	// fixed set, or one that cannot be paired with the given right-hand side.
	ErrCodeUnsupportedOperator ErrorCode = "UNSUPPORTED_OPERATOR"

	// ErrCodeUnsupportedJoinKind indicates a join kind outside the fixed set.
	ErrCodeUnsupportedJoinKind ErrorCode = "UNSUPPORTED_JOIN_KIND"

	// ErrCodeUnsupportedAggregate indicates an aggregate function outside the
	// fixed set.
	ErrCodeUnsupportedAggregate ErrorCode = "UNSUPPORTED_AGGREGATE"

	// ErrCodeInvalidQuery indicates a structurally invalid stage sequence,
	// such as an Aggregation following a Projection or a render with no
	// Table stage.
	ErrCodeInvalidQuery ErrorCode = "INVALID_QUERY"
)

// BuildError is returned for any defect detected while constructing clauses
// or assembling a Query. Build errors are terminal: the query under
// construction must be discarded and rebuilt, never partially rendered.
//
// Identifier and path rejections are not BuildErrors; they propagate
// unchanged from the validate package.
type BuildError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Token is the offending operator, function, or join kind, when one
	// applies.
	Token string
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("%s: %s: %q", e.Code, e.Message, e.Token)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsUnsupportedOperator reports whether err is a comparison-operator error.
// Uses errors.As to handle wrapped errors.
func IsUnsupportedOperator(err error) bool {
	return hasCode(err, ErrCodeUnsupportedOperator)
}

// IsUnsupportedJoinKind reports whether err is a join-kind error.
func IsUnsupportedJoinKind(err error) bool {
	return hasCode(err, ErrCodeUnsupportedJoinKind)
}

// IsUnsupportedAggregate reports whether err is an aggregate-function error.
func IsUnsupportedAggregate(err error) bool {
	return hasCode(err, ErrCodeUnsupportedAggregate)
}

// IsInvalidQuery reports whether err is a structural query error.
func IsInvalidQuery(err error) bool {
	return hasCode(err, ErrCodeInvalidQuery)
}

func hasCode(err error, code ErrorCode) bool {
	var be *BuildError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

func errUnsupportedOperator(op string) *BuildError {
	return &BuildError{
		Code:    ErrCodeUnsupportedOperator,
		Message: "unsupported comparison operator",
		Token:   op,
	}
}

func errNullOperator(op string) *BuildError {
	return &BuildError{
		Code:    ErrCodeUnsupportedOperator,
		Message: "operator cannot compare against NULL",
		Token:   op,
	}
}

func errUnsupportedJoinKind(kind string) *BuildError {
	return &BuildError{
		Code:    ErrCodeUnsupportedJoinKind,
		Message: "unsupported join kind",
		Token:   kind,
	}
}

func errUnsupportedAggregate(fn string) *BuildError {
	return &BuildError{
		Code:    ErrCodeUnsupportedAggregate,
		Message: "unsupported aggregate function",
		Token:   fn,
	}
}

func errInvalidQuery(msg string) *BuildError {
	return &BuildError{
		Code:    ErrCodeInvalidQuery,
		Message: msg,
	}
}
