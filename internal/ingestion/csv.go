package ingestion

import (
	"compress/gzip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aevon-lab/loan-aggregator/internal/core/aggregation"
)

// CSVOptions configures the delimited-text reader.
type CSVOptions struct {
	// Delimiter separates fields. Zero means ','.
	Delimiter rune
	// Comment starts a line that is skipped. Zero disables comments.
	Comment rune
	// Quote encloses fields that contain the delimiter, e.g. '|' for rows
	// like |Network 1|. A doubled quote inside such a field is a literal
	// quote. Zero means '"'.
	Quote rune
	// LazyQuotes tolerates bare double quotes inside fields. It only applies
	// when Quote is '"'.
	LazyQuotes bool
}

// CSVSource reads records from delimited text.
type CSVSource struct {
	reader  *csv.Reader
	closers []io.Closer
}

// NewCSVSource reads delimited records from r. The caller keeps ownership of r.
func NewCSVSource(r io.Reader, opts CSVOptions) *CSVSource {
	return &CSVSource{reader: newCSVReader(r, opts)}
}

// OpenCSV opens a CSV file, decompressing it when the name ends in ".gz".
func OpenCSV(path string, opts CSVOptions) (*CSVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	var r io.Reader = f
	closers := []io.Closer{f}

	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		gzr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		closers = append(closers, gzr)
		r = gzr
	}

	return &CSVSource{
		reader:  newCSVReader(r, opts),
		closers: closers,
	}, nil
}

func newCSVReader(r io.Reader, opts CSVOptions) *csv.Reader {
	delim := opts.Delimiter
	if delim == 0 {
		delim = ','
	}

	br := skipBOM(r)
	var in io.Reader = br
	if opts.Quote != 0 && opts.Quote != '"' {
		in = newQuoteTranslator(br, opts.Quote, delim, opts.Comment)
	}

	csvr := csv.NewReader(in)
	csvr.Comma = delim
	csvr.Comment = opts.Comment
	csvr.LazyQuotes = opts.LazyQuotes
	csvr.FieldsPerRecord = -1 // short rows are reported by the accumulator
	return csvr
}

// Next implements RecordSource.
func (s *CSVSource) Next() (aggregation.Record, error) {
	fields, err := s.reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return aggregation.Record{}, io.EOF
		}
		return aggregation.Record{}, fmt.Errorf("read CSV row: %w", err)
	}

	line, _ := s.reader.FieldPos(0)
	return aggregation.Record{Line: line, Fields: fields}, nil
}

// Close releases the file and any decompressor, innermost first.
func (s *CSVSource) Close() error {
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
