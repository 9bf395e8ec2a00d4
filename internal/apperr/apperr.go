package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure by how a pass must react to it.
type Kind string

const (
	// InvalidInput is a bad user-supplied date or day count; the caller re-prompts.
	InvalidInput Kind = "invalid_input"
	// Upstream is an unreachable feed or a payload that violates the feed schema; aborts the pass.
	Upstream Kind = "upstream"
	// DataIntegrity is an unparsable or out-of-order timestamp; aborts the pass.
	DataIntegrity Kind = "data_integrity"
	// MalformedValue is a single unparsable numeric cell; recovered per record.
	MalformedValue Kind = "malformed_value"
)

// NoRow marks an error that is not tied to a row of a feed.
const NoRow = -1

// Error carries the kind and, when known, the offending row index.
type Error struct {
	Kind    Kind
	Row     int
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Row != NoRow {
		msg += fmt.Sprintf(": row %d", e.Row)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an error without a cause.
func New(kind Kind, message string) error {
	return &Error{Kind: kind, Row: NoRow, Message: message}
}

// Newf builds an error with a formatted message.
func Newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Row: NoRow, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind to err. A nil err still yields an error.
func Wrap(kind Kind, message string, err error) error {
	return &Error{Kind: kind, Row: NoRow, Message: message, Err: err}
}

// AtRow builds a row-scoped error.
func AtRow(kind Kind, row int, message string, err error) error {
	return &Error{Kind: kind, Row: row, Message: message, Err: err}
}

// KindOf returns the kind of the outermost classified error in the chain, or "".
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// RowOf returns the row index recorded on err, or NoRow.
func RowOf(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Row
	}
	return NoRow
}
