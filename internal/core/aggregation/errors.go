package aggregation

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrShortRecord marks a record with fewer fields than the column index addresses.
	ErrShortRecord = errors.New("record has too few fields")
	// ErrInvalidAmount marks an Amount field that is not a number or does not fit in int64.
	ErrInvalidAmount = errors.New("amount is not a valid number")
	// ErrUnresolvedIndex is returned when accumulating with a ColumnIndex
	// that did not come from ResolveColumns.
	ErrUnresolvedIndex = errors.New("column index is not resolved")
)

// MissingColumnError reports a header that lacks one or more required columns.
type MissingColumnError struct {
	Missing []string
	Header  []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("header is missing required column(s) %s (got %q)",
		strings.Join(e.Missing, ", "), e.Header)
}

// MalformedRecordError reports a data record that could not be accumulated.
// Line is the source line number, or 0 when the source has none.
type MalformedRecordError struct {
	Line  int
	Field string
	Value string
	Err   error
}

func (e *MalformedRecordError) Error() string {
	var b strings.Builder
	b.WriteString("malformed record")
	if e.Line > 0 {
		fmt.Fprintf(&b, " at line %d", e.Line)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, ": field %s", e.Field)
		if e.Value != "" {
			fmt.Fprintf(&b, " = %q", e.Value)
		}
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}
