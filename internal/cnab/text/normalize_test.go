package text_test

import (
	"testing"

	"github.com/boddenberg/pj-cnab-bfa-go/internal/cnab/text"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		strip string
		want  string
	}{
		{"accents", "  São João da Ação  ", "", "SAO JOAO DA ACAO"},
		{"all classes", "ÀÉÎÕÜ àéîõü Çç Øø", "", "AEIOU AEIOU CC OO"},
		{"html entities", "Caf&eacute; &amp; Cia", "", "CAFE & CIA"},
		{"strip document punctuation", "12.345.678/0001-99", text.DocumentPunctuation, "12345678000199"},
		{"letters outside table", "Ñandú", "", "NANDU"},
		{"plain ascii", "rua das flores", "", "RUA DAS FLORES"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := text.Normalize(tt.in, tt.strip); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_LegacyEncodingMatchesUTF8(t *testing.T) {
	utf := "Condomínio Ação"
	latin1 := string([]byte{'C', 'o', 'n', 'd', 'o', 'm', 0xED, 'n', 'i', 'o', ' ', 'A', 0xE7, 0xE3, 'o'})

	got, want := text.Normalize(latin1, ""), text.Normalize(utf, "")
	if got != want {
		t.Errorf("legacy input normalized to %q, UTF-8 to %q", got, want)
	}
	if want != "CONDOMINIO ACAO" {
		t.Errorf("unexpected result %q", want)
	}
}

func TestDetectEncoding(t *testing.T) {
	if enc := text.DetectEncoding([]byte("ação")); enc != text.UTF8 {
		t.Errorf("expected UTF-8, got %s", enc)
	}
	if enc := text.DetectEncoding([]byte("plain")); enc != text.UTF8 {
		t.Errorf("expected ASCII to detect as UTF-8, got %s", enc)
	}
	if enc := text.DetectEncoding([]byte{'a', 0xE7, 0xE3, 'o'}); enc != text.ISO88591 {
		t.Errorf("expected ISO-8859-1, got %s", enc)
	}
}

func TestToUTF8(t *testing.T) {
	out, enc, err := text.ToUTF8([]byte{'a', 0xE7, 0xE3, 'o'})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if enc != text.ISO88591 {
		t.Errorf("expected ISO-8859-1 source, got %s", enc)
	}
	if string(out) != "ação" {
		t.Errorf("expected ação, got %q", out)
	}
}

func TestDigits(t *testing.T) {
	if got := text.Digits("01.310-100"); got != "01310100" {
		t.Errorf("expected 01310100, got %q", got)
	}
}
