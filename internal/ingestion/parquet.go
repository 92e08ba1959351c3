package ingestion

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aevon-lab/loan-aggregator/internal/core/aggregation"
	"github.com/parquet-go/parquet-go"
)

// ParquetSource serves a flat Parquet file as records. The first record is
// synthesized from the schema's field names; data values are rendered as
// strings so they go through the same accumulation path as CSV text.
type ParquetSource struct {
	closer    io.Closer
	header    []string
	sentHdr   bool
	rowGroups []parquet.RowGroup
	rgIdx     int
	rows      parquet.Rows
	rowBuf    []parquet.Row
	bufIdx    int
	bufLen    int
	rowNum    int
}

// OpenParquet opens a Parquet file from disk.
func OpenParquet(path string) (*ParquetSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	src, err := NewParquetSource(f, info.Size())
	if err != nil {
		f.Close()
		return nil, err
	}
	src.closer = f
	return src, nil
}

// NewParquetSource reads Parquet data from r. The caller keeps ownership of r.
func NewParquetSource(r io.ReaderAt, size int64) (*ParquetSource, error) {
	file, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("open parquet file: %w", err)
	}

	fields := file.Schema().Fields()
	header := make([]string, len(fields))
	for i, field := range fields {
		if !field.Leaf() {
			return nil, fmt.Errorf("parquet column %q is nested; only flat schemas are supported", field.Name())
		}
		header[i] = field.Name()
	}

	return &ParquetSource{
		header:    header,
		rowGroups: file.RowGroups(),
		rgIdx:     -1,
		rowBuf:    make([]parquet.Row, 256),
	}, nil
}

// Next implements RecordSource. Line numbers count the header as line 1.
func (s *ParquetSource) Next() (aggregation.Record, error) {
	if !s.sentHdr {
		s.sentHdr = true
		s.rowNum = 1
		return aggregation.Record{Line: 1, Fields: append([]string(nil), s.header...)}, nil
	}

	for {
		if s.bufIdx < s.bufLen {
			row := s.rowBuf[s.bufIdx]
			s.bufIdx++
			s.rowNum++
			return aggregation.Record{Line: s.rowNum, Fields: s.rowFields(row)}, nil
		}

		if s.rows != nil {
			n, err := s.rows.ReadRows(s.rowBuf)
			if n > 0 {
				s.bufIdx = 0
				s.bufLen = n
				continue
			}
			if err != nil && !errors.Is(err, io.EOF) {
				return aggregation.Record{}, fmt.Errorf("read parquet rows: %w", err)
			}
			s.rows.Close()
			s.rows = nil
		}

		s.rgIdx++
		if s.rgIdx >= len(s.rowGroups) {
			return aggregation.Record{}, io.EOF
		}
		s.rows = s.rowGroups[s.rgIdx].Rows()
	}
}

func (s *ParquetSource) rowFields(row parquet.Row) []string {
	fields := make([]string, len(s.header))
	for _, val := range row {
		col := val.Column()
		if col < 0 || col >= len(fields) || val.IsNull() {
			continue
		}
		fields[col] = val.String()
	}
	return fields
}

// Close releases the row reader and, for OpenParquet, the file.
func (s *ParquetSource) Close() error {
	if s.rows != nil {
		s.rows.Close()
		s.rows = nil
	}
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
