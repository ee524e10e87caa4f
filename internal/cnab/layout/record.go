package layout

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Record maps field names to values. Encode accepts strings, integers,
// decimal.Decimal, time.Time and their pointer forms; Decode produces
// string, int64 and decimal.Decimal values.
type Record map[string]any

// String returns the field as text; numbers are formatted without padding.
func (r Record) String(name string) string {
	switch v := r[name].(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case decimal.Decimal:
		return v.String()
	}
	return ""
}

// Int returns the field as an integer, or 0 when it is absent or not numeric.
func (r Record) Int(name string) int64 {
	switch v := r[name].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}

// Decimal returns the field as a decimal, or zero when it is absent.
func (r Record) Decimal(name string) decimal.Decimal {
	switch v := r[name].(type) {
	case decimal.Decimal:
		return v
	case int64:
		return decimal.NewFromInt(v)
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero
		}
		return d
	}
	return decimal.Zero
}

// Has reports whether the record carries the field at all.
func (r Record) Has(name string) bool {
	_, ok := r[name]
	return ok
}
