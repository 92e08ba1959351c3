package aggregation

// Record is one data row as delivered by a record source.
// Line is the 1-based source line, or 0 when unknown.
type Record struct {
	Line   int
	Fields []string
}

// Accumulator folds data records into a Store.
type Accumulator struct {
	// Month derives the month key component from the Date field.
	// Nil means FixedOffsetMonth.
	Month MonthExtractor
}

var defaultAccumulator = Accumulator{Month: FixedOffsetMonth}

// Accumulate folds rec into store using the fixed-offset month convention.
func Accumulate(store *Store, index ColumnIndex, rec Record) error {
	return defaultAccumulator.Accumulate(store, index, rec)
}

// Accumulate derives the (network, product, month) key for rec, truncates
// its amount and adds it to the matching bucket. On error the store is
// left exactly as it was.
func (a Accumulator) Accumulate(store *Store, index ColumnIndex, rec Record) error {
	if !index.Resolved() {
		return &MalformedRecordError{Line: rec.Line, Err: ErrUnresolvedIndex}
	}
	if len(rec.Fields) < index.width() {
		return &MalformedRecordError{Line: rec.Line, Err: ErrShortRecord}
	}

	network := rec.Fields[index.positions[FieldNetwork]]
	product := rec.Fields[index.positions[FieldProduct]]
	date := rec.Fields[index.positions[FieldDate]]
	rawAmount := rec.Fields[index.positions[FieldAmount]]

	amount, err := ParseAmount(rawAmount)
	if err != nil {
		return &MalformedRecordError{
			Line:  rec.Line,
			Field: FieldAmount.String(),
			Value: rawAmount,
			Err:   err,
		}
	}

	month := a.Month
	if month == nil {
		month = FixedOffsetMonth
	}

	store.add(Key{Network: network, Product: product, Month: month(date)}, amount)
	return nil
}
