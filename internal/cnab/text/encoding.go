// Package text normalizes free text for CNAB fields and decodes the legacy
// single-byte encoding banks still use.
package text

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Encoding is a supported input text encoding.
type Encoding int

const (
	UTF8 Encoding = iota
	ISO88591
)

func (e Encoding) String() string {
	if e == ISO88591 {
		return "ISO-8859-1"
	}
	return "UTF-8"
}

// DetectEncoding reports UTF8 for valid UTF-8 input (plain ASCII included)
// and ISO88591 for anything else. Every byte sequence is valid ISO-8859-1,
// so detection never fails.
func DetectEncoding(b []byte) Encoding {
	if utf8.Valid(b) {
		return UTF8
	}
	return ISO88591
}

// ToUTF8 converts input to UTF-8, decoding it from ISO-8859-1 when it is not
// already valid UTF-8. It returns the detected source encoding.
func ToUTF8(b []byte) ([]byte, Encoding, error) {
	enc := DetectEncoding(b)
	if enc == UTF8 {
		return b, enc, nil
	}
	out, _, err := transform.Bytes(charmap.ISO8859_1.NewDecoder(), b)
	if err != nil {
		return nil, enc, fmt.Errorf("decode %s: %w", enc, err)
	}
	return out, enc, nil
}
