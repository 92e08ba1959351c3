package aggregation

import "fmt"

// Field is one of the logical columns a loan record must carry.
type Field int

const (
	FieldMSISDN Field = iota
	FieldNetwork
	FieldDate
	FieldProduct
	FieldAmount

	numFields
)

// Header names recognized by ResolveColumns. Matching is exact and case-sensitive.
var fieldNames = [numFields]string{
	FieldMSISDN:  "MSISDN",
	FieldNetwork: "Network",
	FieldDate:    "Date",
	FieldProduct: "Product",
	FieldAmount:  "Amount",
}

// Fields lists every logical field in header-name order.
func Fields() []Field {
	return []Field{FieldMSISDN, FieldNetwork, FieldDate, FieldProduct, FieldAmount}
}

func (f Field) String() string {
	if f < 0 || f >= numFields {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return fieldNames[f]
}

func fieldByName(name string) (Field, bool) {
	for f, n := range fieldNames {
		if n == name {
			return Field(f), true
		}
	}
	return 0, false
}

// ColumnIndex maps each logical field to its position in a data record.
// The zero value is unresolved; only ResolveColumns produces a usable index.
type ColumnIndex struct {
	positions  [numFields]int
	resolved   bool
	duplicates []Field
}

// Position returns the record position of f. ok is false when the index
// has not been resolved.
func (ci ColumnIndex) Position(f Field) (pos int, ok bool) {
	if !ci.resolved || f < 0 || f >= numFields {
		return 0, false
	}
	return ci.positions[f], true
}

// Resolved reports whether the index came out of a successful ResolveColumns.
func (ci ColumnIndex) Resolved() bool {
	return ci.resolved
}

// Duplicates returns the logical fields named more than once in the header.
// The last occurrence is the one the index points at.
func (ci ColumnIndex) Duplicates() []Field {
	return append([]Field(nil), ci.duplicates...)
}

// width is the minimum number of fields a record needs for every
// resolved position to be addressable.
func (ci ColumnIndex) width() int {
	w := 0
	for _, p := range ci.positions {
		if p+1 > w {
			w = p + 1
		}
	}
	return w
}

// ResolveColumns scans header once and locates the five required fields.
// Unknown names are ignored; a repeated name keeps its last position.
func ResolveColumns(header []string) (ColumnIndex, error) {
	found := make(map[Field]int, numFields)
	var dups []Field

	for pos, name := range header {
		f, ok := fieldByName(name)
		if !ok {
			continue
		}
		if _, seen := found[f]; seen && !containsField(dups, f) {
			dups = append(dups, f)
		}
		found[f] = pos
	}

	var missing []string
	for _, f := range Fields() {
		if _, ok := found[f]; !ok {
			missing = append(missing, f.String())
		}
	}
	if len(missing) > 0 {
		return ColumnIndex{}, &MissingColumnError{
			Missing: missing,
			Header:  append([]string(nil), header...),
		}
	}

	ci := ColumnIndex{resolved: true, duplicates: dups}
	for f, pos := range found {
		ci.positions[f] = pos
	}
	return ci, nil
}

func containsField(fields []Field, f Field) bool {
	for _, x := range fields {
		if x == f {
			return true
		}
	}
	return false
}
