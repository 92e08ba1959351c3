package ingestion

import (
	"errors"
	"fmt"
)

// ErrUnterminatedQuote is returned when a field opened with a custom quote
// character is never closed.
var ErrUnterminatedQuote = errors.New("unterminated quoted field")

// SourceReadError wraps a failure reported by a RecordSource. The
// underlying error is left untouched and reachable through errors.Is/As.
type SourceReadError struct {
	Err error
}

func (e *SourceReadError) Error() string {
	return fmt.Sprintf("read record source: %v", e.Err)
}

func (e *SourceReadError) Unwrap() error {
	return e.Err
}
