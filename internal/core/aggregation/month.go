package aggregation

// MonthExtractor derives the month component of an aggregation key from
// the raw Date field. It must not fail: whatever it returns is used verbatim.
type MonthExtractor func(date string) string

const (
	monthOffset = 3
	monthWidth  = 3
)

// FixedOffsetMonth returns the three characters starting at offset 3,
// which is the month abbreviation in dates shaped like "01-Mar-2020".
// No calendar validation is done. Dates shorter than six characters yield
// whatever part of the range exists, possibly the empty string.
func FixedOffsetMonth(date string) string {
	runes := []rune(date)
	start, end := monthOffset, monthOffset+monthWidth
	if start > len(runes) {
		start = len(runes)
	}
	if end > len(runes) {
		end = len(runes)
	}
	return string(runes[start:end])
}
