package layout

import "fmt"

// FieldOverflow indicates a value wider than its slot.
type FieldOverflow struct {
	Field string
	Width int
	Value string
}

func (e *FieldOverflow) Error() string {
	return fmt.Sprintf("field %s: value %q exceeds %d positions", e.Field, e.Value, e.Width)
}

// FieldTypeMismatch indicates a value of the wrong semantic type for a typed slot.
type FieldTypeMismatch struct {
	Field    string
	Expected string
	Value    any
}

func (e *FieldTypeMismatch) Error() string {
	return fmt.Sprintf("field %s: expected %s, got %T(%v)", e.Field, e.Expected, e.Value, e.Value)
}

// MissingField indicates a required field with no value and no default.
type MissingField struct {
	Field string
}

func (e *MissingField) Error() string {
	return fmt.Sprintf("field %s: required", e.Field)
}

// UnknownField indicates a record value with no slot in the schema.
type UnknownField struct {
	Field  string
	Schema string
}

func (e *UnknownField) Error() string {
	return fmt.Sprintf("field %s: not part of %s", e.Field, e.Schema)
}

// InvalidLine indicates a line that is not exactly LineLength positions wide.
type InvalidLine struct {
	Schema string
	Length int
}

func (e *InvalidLine) Error() string {
	return fmt.Sprintf("%s: line has %d positions, expected %d", e.Schema, e.Length, LineLength)
}

// FieldName extracts the offending field name from a codec error, or "".
func FieldName(err error) string {
	switch e := err.(type) {
	case *FieldOverflow:
		return e.Field
	case *FieldTypeMismatch:
		return e.Field
	case *MissingField:
		return e.Field
	case *UnknownField:
		return e.Field
	}
	return ""
}
