package ingestion

import (
	"errors"
	"io"
	"log/slog"

	"github.com/aevon-lab/loan-aggregator/internal/core/aggregation"
	"github.com/google/uuid"
)

// State is the position of an Ingester in its header/data lifecycle.
type State int

const (
	StateUninitialized State = iota
	StateHeaderCaptured
	StateAccumulating
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateHeaderCaptured:
		return "header_captured"
	case StateAccumulating:
		return "accumulating"
	default:
		return "unknown"
	}
}

// MalformedHandler decides what happens to a record the accumulator
// rejected. Returning nil skips the record; returning an error aborts Ingest
// with that error.
type MalformedHandler func(err *aggregation.MalformedRecordError) error

// AbortOnMalformed stops ingestion at the first malformed record.
func AbortOnMalformed(err *aggregation.MalformedRecordError) error { return err }

// SkipMalformed logs the record and continues.
func SkipMalformed(err *aggregation.MalformedRecordError) error {
	slog.Warn("[Ingester] Skipping malformed record", "line", err.Line, "error", err)
	return nil
}

// Stats counts what happened to data records across every Ingest call.
type Stats struct {
	Runs        int
	Accumulated int64
	Skipped     int64
}

// Option configures an Ingester.
type Option func(*Ingester)

// WithMalformedHandler sets the policy for malformed data records.
func WithMalformedHandler(h MalformedHandler) Option {
	return func(i *Ingester) {
		if h != nil {
			i.onMalformed = h
		}
	}
}

// WithMonthExtractor swaps the grouping-key month derivation.
func WithMonthExtractor(m aggregation.MonthExtractor) Option {
	return func(i *Ingester) {
		if m != nil {
			i.acc.Month = m
		}
	}
}

// Ingester drives header capture and record accumulation for one store.
// It is single-writer: Ingest must not run concurrently with itself or
// with queries. Queries may run concurrently with each other.
type Ingester struct {
	store       *aggregation.Store
	acc         aggregation.Accumulator
	onMalformed MalformedHandler

	state  State
	header []string
	index  aggregation.ColumnIndex
	stats  Stats
}

// NewIngester returns an Ingester that owns a fresh, empty store.
func NewIngester(opts ...Option) *Ingester {
	i := &Ingester{
		store:       aggregation.NewStore(),
		acc:         aggregation.Accumulator{Month: aggregation.FixedOffsetMonth},
		onMalformed: AbortOnMalformed,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Ingest reads src to the end. Its first record is the header; every later
// record is accumulated. Calling Ingest again adds to the same store.
//
// Errors are *aggregation.MissingColumnError when the header lacks a
// required column, whatever the malformed handler returns for a rejected
// record, and *SourceReadError when src fails. Records accumulated before
// an error stay in the store.
func (i *Ingester) Ingest(src RecordSource) error {
	runID := uuid.New().String()
	log := slog.With("run_id", runID)
	i.stats.Runs++

	first := true
	var accumulated, skipped int64

	for {
		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Error("[Ingester] Record source failed", "error", err)
			return &SourceReadError{Err: err}
		}

		if first {
			first = false
			if err := i.captureHeader(rec); err != nil {
				log.Error("[Ingester] Header rejected", "line", rec.Line, "error", err)
				return err
			}
			if dups := i.index.Duplicates(); len(dups) > 0 {
				log.Warn("[Ingester] Duplicate header columns, last occurrence wins", "columns", dups)
			}
			log.Info("[Ingester] Header captured", "columns", len(i.header))
			continue
		}

		i.state = StateAccumulating
		if err := i.acc.Accumulate(i.store, i.index, rec); err != nil {
			var mre *aggregation.MalformedRecordError
			if !errors.As(err, &mre) {
				return err
			}
			if herr := i.onMalformed(mre); herr != nil {
				log.Error("[Ingester] Aborting on malformed record", "line", mre.Line, "error", herr)
				return herr
			}
			skipped++
			i.stats.Skipped++
			continue
		}
		accumulated++
		i.stats.Accumulated++
	}

	log.Info("[Ingester] Ingestion complete",
		"records", accumulated,
		"skipped", skipped,
		"buckets", i.store.Len(),
		"state", i.state.String(),
	)
	return nil
}

func (i *Ingester) captureHeader(rec aggregation.Record) error {
	index, err := aggregation.ResolveColumns(rec.Fields)
	if err != nil {
		return err
	}
	i.header = append([]string(nil), rec.Fields...)
	i.index = index
	i.state = StateHeaderCaptured
	return nil
}

// Count returns the number of records aggregated for the key, or 0.
func (i *Ingester) Count(network, product, month string) int64 {
	return i.store.Count(network, product, month)
}

// Total returns the summed whole-unit amount for the key, or 0.
func (i *Ingester) Total(network, product, month string) int64 {
	return i.store.Total(network, product, month)
}

// Entries returns an ordered snapshot of every bucket.
func (i *Ingester) Entries() []aggregation.Entry {
	return i.store.Entries()
}

// Len returns the number of buckets in the store.
func (i *Ingester) Len() int {
	return i.store.Len()
}

// State reports the lifecycle state reached by the latest Ingest call.
func (i *Ingester) State() State {
	return i.state
}

// Header returns a copy of the most recently captured header, or nil.
func (i *Ingester) Header() []string {
	if i.header == nil {
		return nil
	}
	return append([]string(nil), i.header...)
}

// Index returns the current column index. ok is false before any header
// has been captured.
func (i *Ingester) Index() (aggregation.ColumnIndex, bool) {
	return i.index, i.index.Resolved()
}

// Stats returns cumulative record counts.
func (i *Ingester) Stats() Stats {
	return i.stats
}
