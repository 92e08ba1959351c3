package ingestion

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/aevon-lab/loan-aggregator/internal/core/aggregation"
)

// RecordSource yields records in file order. The first record of a source
// is its header. Next returns io.EOF once the source is exhausted.
type RecordSource interface {
	Next() (aggregation.Record, error)
}

// Source formats understood by Open.
const (
	FormatAuto    = "auto"
	FormatCSV     = "csv"
	FormatParquet = "parquet"
)

// SliceSource serves records from memory. Line numbers are assigned from 1
// in slice order.
type SliceSource struct {
	rows [][]string
	pos  int
}

// NewSliceSource returns a source over rows, header first.
func NewSliceSource(rows ...[]string) *SliceSource {
	return &SliceSource{rows: rows}
}

// Next implements RecordSource.
func (s *SliceSource) Next() (aggregation.Record, error) {
	if s.pos >= len(s.rows) {
		return aggregation.Record{}, io.EOF
	}
	s.pos++
	return aggregation.Record{Line: s.pos, Fields: s.rows[s.pos-1]}, nil
}

// FileSource is a RecordSource backed by an open file.
type FileSource interface {
	RecordSource
	io.Closer
}

// OpenOptions controls how Open picks and configures a source.
type OpenOptions struct {
	Format string
	CSV    CSVOptions
}

// Open opens path as a record source. With FormatAuto (or an empty format)
// a ".parquet" extension selects Parquet and anything else CSV; a ".gz"
// suffix is decompressed transparently for CSV.
func Open(path string, opts OpenOptions) (FileSource, error) {
	format := strings.ToLower(opts.Format)
	if format == "" || format == FormatAuto {
		format = detectFormat(path)
	}

	switch format {
	case FormatCSV:
		src, err := OpenCSV(path, opts.CSV)
		if err != nil {
			return nil, err
		}
		return src, nil
	case FormatParquet:
		src, err := OpenParquet(path)
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return nil, fmt.Errorf("unsupported input format %q", opts.Format)
	}
}

func detectFormat(path string) string {
	name := strings.ToLower(path)
	name = strings.TrimSuffix(name, ".gz")
	if filepath.Ext(name) == ".parquet" {
		return FormatParquet
	}
	return FormatCSV
}
