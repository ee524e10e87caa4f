package text

import (
	"html"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DocumentPunctuation is stripped from tax ids and similar document numbers.
const DocumentPunctuation = ".-/"

// accentClasses maps accented Latin letters to their ASCII base letter.
var accentClasses = map[rune]rune{}

func init() {
	classes := map[rune]string{
		'A': "ÀÁÂÃÄÅ", 'C': "Ç", 'E': "ÈÉÊË", 'I': "ÌÍÎÏ", 'O': "ÒÓÔÕÖØ", 'U': "ÙÚÛÜ",
		'a': "àáâãäå", 'c': "ç", 'e': "èéêë", 'i': "ìíîï", 'o': "òóôõöø", 'u': "ùúûü",
	}
	for base, accented := range classes {
		for _, r := range accented {
			accentClasses[r] = base
		}
	}
}

// Normalize prepares free text for an alphanumeric CNAB field: HTML entities
// decoded, surrounding whitespace trimmed, accents folded, upper-cased, and
// every rune of strip removed. Input that is not valid UTF-8 is read as
// ISO-8859-1 first, so both encodings give the same result.
func Normalize(s, strip string) string {
	if b, enc, err := ToUTF8([]byte(s)); err == nil && enc != UTF8 {
		s = string(b)
	}

	s = strings.TrimSpace(html.UnescapeString(s))
	s = FoldAccents(s)
	s = strings.ToUpper(s)
	if strip != "" {
		s = strings.Map(func(r rune) rune {
			if strings.ContainsRune(strip, r) {
				return -1
			}
			return r
		}, s)
	}
	return s
}

// FoldAccents replaces accented Latin letters with their base letter. Letters
// outside the explicit table are decomposed and stripped of combining marks.
func FoldAccents(s string) string {
	s = strings.Map(func(r rune) rune {
		if base, ok := accentClasses[r]; ok {
			return base
		}
		return r
	}, s)
	if isASCII(s) {
		return s
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Digits keeps only ASCII digits, e.g. for CEPs and tax ids.
func Digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
