package layout

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	dateLayout = "02012006"
	timeLayout = "150405"
)

// Encode packs a record into a single 240-position line, without terminator.
// Absent optional values are emitted as zeros (numeric) or spaces (alpha).
func Encode(s *Schema, rec Record) (string, error) {
	if err := checkUnknown(s, rec); err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(LineLength)
	for _, f := range s.Fields {
		out, err := formatField(f, rec[f.Name])
		if err != nil {
			return "", err
		}
		b.WriteString(out)
	}
	return b.String(), nil
}

// Validate runs every check Encode runs without producing the line.
func Validate(s *Schema, rec Record) error {
	_, err := Encode(s, rec)
	return err
}

// Decode unpacks a line into a record. Blank optional fields decode to their
// zero value; numeric fields that are not digits are kept as trimmed text
// unless the field is required. Date and time fields stay as raw digits.
func Decode(s *Schema, line string) (Record, error) {
	runes := []rune(line)
	if len(runes) != LineLength {
		return nil, &InvalidLine{Schema: s.Name, Length: len(runes)}
	}

	rec := make(Record, len(s.Fields))
	for _, f := range s.Fields {
		raw := string(runes[f.Start()-1 : f.End()])
		v, err := parseField(f, raw)
		if err != nil {
			return nil, err
		}
		rec[f.Name] = v
	}
	return rec, nil
}

func checkUnknown(s *Schema, rec Record) error {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !s.HasField(k) && !isEmpty(rec[k]) {
			return &UnknownField{Field: k, Schema: s.Name}
		}
	}
	return nil
}

func formatField(f Field, v any) (string, error) {
	if isEmpty(v) {
		switch {
		case f.Default != "":
			v = f.Default
		case f.Required:
			return "", &MissingField{Field: f.Name}
		case f.kind == Alpha:
			return strings.Repeat(" ", f.Len()), nil
		default:
			return strings.Repeat("0", f.Len()), nil
		}
	}

	switch f.kind {
	case Alpha:
		s, err := alphaText(f, v)
		if err != nil {
			return "", err
		}
		if len(s) > f.Len() {
			if !f.Truncate {
				return "", &FieldOverflow{Field: f.Name, Width: f.Len(), Value: s}
			}
			s = s[:f.Len()]
		}
		return s + strings.Repeat(" ", f.Len()-len(s)), nil

	case Money:
		digits, err := moneyDigits(f, v)
		if err != nil {
			return "", err
		}
		return padDigits(f, digits)

	default:
		var (
			digits string
			err    error
		)
		switch f.Type {
		case TypeDate:
			digits, err = temporalDigits(f, v, dateLayout)
		case TypeTime:
			digits, err = temporalDigits(f, v, timeLayout)
		default:
			digits, err = numericDigits(f, v)
		}
		if err != nil {
			return "", err
		}
		return padDigits(f, digits)
	}
}

func padDigits(f Field, digits string) (string, error) {
	if len(digits) > f.Len() {
		return "", &FieldOverflow{Field: f.Name, Width: f.Len(), Value: digits}
	}
	return strings.Repeat("0", f.Len()-len(digits)) + digits, nil
}

func alphaText(f Field, v any) (string, error) {
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case int:
		s = strconv.Itoa(x)
	case int64:
		s = strconv.FormatInt(x, 10)
	default:
		return "", &FieldTypeMismatch{Field: f.Name, Expected: Alpha.String(), Value: v}
	}
	for _, r := range s {
		if r < 0x20 || r > 0x7e {
			return "", &FieldTypeMismatch{Field: f.Name, Expected: "printable ASCII", Value: v}
		}
	}
	return s, nil
}

func numericDigits(f Field, v any) (string, error) {
	var n int64
	switch x := v.(type) {
	case int:
		n = int64(x)
	case int32:
		n = int64(x)
	case int64:
		n = x
	case string:
		s := strings.TrimSpace(x)
		if !isDigits(s) {
			return "", &FieldTypeMismatch{Field: f.Name, Expected: Numeric.String(), Value: v}
		}
		return s, nil
	default:
		return "", &FieldTypeMismatch{Field: f.Name, Expected: Numeric.String(), Value: v}
	}
	if n < 0 {
		return "", &FieldTypeMismatch{Field: f.Name, Expected: "non-negative " + Numeric.String(), Value: v}
	}
	return strconv.FormatInt(n, 10), nil
}

func temporalDigits(f Field, v any, layout string) (string, error) {
	switch x := v.(type) {
	case time.Time:
		return x.Format(layout), nil
	case *time.Time:
		return x.Format(layout), nil
	case int, int64:
		return numericDigits(f, v)
	case string:
		s := strings.TrimSpace(x)
		if !isDigits(s) || len(s) != len(layout) {
			return "", &FieldTypeMismatch{Field: f.Name, Expected: f.Type, Value: v}
		}
		if _, err := time.Parse(layout, s); err != nil && s != strings.Repeat("0", len(layout)) {
			return "", &FieldTypeMismatch{Field: f.Name, Expected: f.Type, Value: v}
		}
		return s, nil
	}
	return "", &FieldTypeMismatch{Field: f.Name, Expected: f.Type, Value: v}
}

func moneyDigits(f Field, v any) (string, error) {
	var d decimal.Decimal
	switch x := v.(type) {
	case decimal.Decimal:
		d = x
	case *decimal.Decimal:
		d = *x
	case int:
		d = decimal.NewFromInt(int64(x))
	case int64:
		d = decimal.NewFromInt(x)
	case float64:
		d = decimal.NewFromFloat(x)
	case string:
		parsed, err := decimal.NewFromString(strings.TrimSpace(x))
		if err != nil {
			return "", &FieldTypeMismatch{Field: f.Name, Expected: Money.String(), Value: v}
		}
		d = parsed
	default:
		return "", &FieldTypeMismatch{Field: f.Name, Expected: Money.String(), Value: v}
	}
	if d.IsNegative() {
		return "", &FieldTypeMismatch{Field: f.Name, Expected: "non-negative " + Money.String(), Value: v}
	}
	return d.Shift(int32(f.scale)).Round(0).String(), nil
}

func parseField(f Field, raw string) (any, error) {
	if f.kind == Alpha {
		return strings.TrimRight(raw, " "), nil
	}

	s := strings.TrimSpace(raw)
	if f.Type != "" {
		return s, nil
	}
	if s == "" {
		if f.kind == Money {
			return decimal.Zero, nil
		}
		return int64(0), nil
	}
	if !isDigits(s) {
		if f.Required {
			return nil, &FieldTypeMismatch{Field: f.Name, Expected: f.kind.String(), Value: raw}
		}
		if f.kind == Money {
			return decimal.Zero, nil
		}
		return s, nil
	}

	if f.kind == Money {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, &FieldTypeMismatch{Field: f.Name, Expected: Money.String(), Value: raw}
		}
		return d.Shift(-int32(f.scale)), nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", f.Name, err)
	}
	return n, nil
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case time.Time:
		return x.IsZero()
	case *time.Time:
		return x == nil
	case *decimal.Decimal:
		return x == nil
	}
	return false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
