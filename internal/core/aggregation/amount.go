package aggregation

import (
	"strings"

	"github.com/shopspring/decimal"
)

// maxInt64Digits is the number of decimal digits in math.MaxInt64.
const maxInt64Digits = 19

// ParseAmount parses a decimal amount such as "1000.00" and truncates it
// toward zero, so "500.75" is 500 and "-0.9" is 0. Underscores between
// digits ("1_000") are accepted as grouping.
func ParseAmount(raw string) (int64, error) {
	s, ok := stripDigitGrouping(strings.TrimSpace(raw))
	if !ok {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}

	if d.IsZero() {
		return 0, nil
	}

	// Decide by magnitude before BigInt, which materializes 10^|exp|.
	exp := int(d.Exponent())
	switch {
	case exp > 0 && exp+d.NumDigits() > maxInt64Digits:
		return 0, ErrInvalidAmount
	case exp < 0 && -exp >= d.NumDigits():
		return 0, nil
	}

	whole := d.BigInt()
	if !whole.IsInt64() {
		return 0, ErrInvalidAmount
	}
	return whole.Int64(), nil
}

// stripDigitGrouping removes '_' separators. Each one must sit between two
// ASCII digits.
func stripDigitGrouping(s string) (string, bool) {
	if !strings.Contains(s, "_") {
		return s, true
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '_' {
			b.WriteByte(s[i])
			continue
		}
		if i == 0 || i == len(s)-1 || !isDigit(s[i-1]) || !isDigit(s[i+1]) {
			return "", false
		}
	}
	return b.String(), true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
