// Package layout implements the CNAB240 fixed-width record codec.
//
// Layouts are declared in embedded YAML files: cnab240.yaml holds the
// FEBRABAN base layout and <bank code>.yaml files overlay bank-specific
// slots. Every schema covers positions 1..240 exactly once.
package layout

import (
	"fmt"
	"regexp"
	"strconv"
)

// LineLength is the width of every CNAB240 line, without terminator.
const LineLength = 240

// Kind is the semantic class of a field, derived from its picture.
type Kind int

const (
	Numeric Kind = iota // 9(n): right-aligned, zero-filled
	Alpha               // X(n): left-aligned, space-filled
	Money               // 9(n)V9(m): implied decimal, zero-filled
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Alpha:
		return "alphanumeric"
	case Money:
		return "money"
	}
	return "unknown"
}

// Field types refining a numeric picture.
const (
	TypeDate = "date" // ddmmyyyy
	TypeTime = "time" // hhmmss
)

var pictureRegex = regexp.MustCompile(`^(9|X)\((\d+)\)(?:V9\((\d+)\))?$`)

// Field is a single slot of a record layout.
type Field struct {
	Name     string `yaml:"name"`
	Pos      [2]int `yaml:"pos"`
	Picture  string `yaml:"picture"`
	Type     string `yaml:"type"`
	Default  string `yaml:"default"`
	Required bool   `yaml:"required"`
	Truncate bool   `yaml:"truncate"`

	kind  Kind
	scale int
}

// Start is the 1-based first position of the field.
func (f Field) Start() int { return f.Pos[0] }

// End is the 1-based last position of the field, inclusive.
func (f Field) End() int { return f.Pos[1] }

// Len is the width of the field.
func (f Field) Len() int { return f.Pos[1] - f.Pos[0] + 1 }

// Kind reports the field's semantic class.
func (f Field) Kind() Kind { return f.kind }

// Scale is the number of implied decimal places of a Money field.
func (f Field) Scale() int { return f.scale }

// compile parses the picture and checks it against the declared range.
func (f *Field) compile() error {
	m := pictureRegex.FindStringSubmatch(f.Picture)
	if m == nil {
		return fmt.Errorf("field %s: invalid picture %q", f.Name, f.Picture)
	}
	intDigits, _ := strconv.Atoi(m[2])
	width := intDigits

	switch {
	case m[1] == "X" && m[3] != "":
		return fmt.Errorf("field %s: alphanumeric picture cannot carry decimals", f.Name)
	case m[1] == "X":
		f.kind = Alpha
	case m[3] != "":
		f.kind = Money
		f.scale, _ = strconv.Atoi(m[3])
		width += f.scale
	default:
		f.kind = Numeric
	}

	if f.Pos[0] < 1 || f.Pos[1] < f.Pos[0] {
		return fmt.Errorf("field %s: invalid position %v", f.Name, f.Pos)
	}
	if width != f.Len() {
		return fmt.Errorf("field %s: picture %s is %d wide, position %v is %d", f.Name, f.Picture, width, f.Pos, f.Len())
	}
	if f.Type != "" && (f.kind != Numeric || (f.Type == TypeDate && width != 8) || (f.Type == TypeTime && width != 6)) {
		return fmt.Errorf("field %s: type %s does not fit picture %s", f.Name, f.Type, f.Picture)
	}
	if f.Type != "" && f.Type != TypeDate && f.Type != TypeTime {
		return fmt.Errorf("field %s: unknown type %s", f.Name, f.Type)
	}
	return nil
}

func (f Field) overlaps(o Field) bool {
	return f.Pos[0] <= o.Pos[1] && o.Pos[0] <= f.Pos[1]
}
