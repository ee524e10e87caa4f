package layout_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/boddenberg/pj-cnab-bfa-go/internal/cnab/layout"
)

func mustSet(t *testing.T, bank int) *layout.Set {
	t.Helper()
	set, err := layout.Load(bank)
	if err != nil {
		t.Fatalf("load layout %03d: %v", bank, err)
	}
	return set
}

func TestLoad_EveryBankCoversFullLine(t *testing.T) {
	kinds := []string{
		layout.HeaderArquivo, layout.HeaderLote,
		layout.SegmentoP, layout.SegmentoQ, layout.SegmentoR,
		layout.TrailerLote, layout.TrailerArquivo,
		layout.SegmentoT, layout.SegmentoU, layout.SegmentoW,
	}
	for _, bank := range []int{1, 33, 104, 237, 341, 756} {
		set := mustSet(t, bank)
		for _, kind := range kinds {
			sc, err := set.Schema(kind)
			if err != nil {
				t.Fatalf("bank %03d: %v", bank, err)
			}
			width := 0
			for _, f := range sc.Fields {
				width += f.Len()
			}
			if width != layout.LineLength {
				t.Errorf("bank %03d %s: width %d", bank, kind, width)
			}
		}
	}
}

func TestLoad_OverlayReplacesSlots(t *testing.T) {
	cef := mustSet(t, 104)
	p := cef.MustSchema(layout.SegmentoP)
	if !p.HasField("modalidade_carteira") {
		t.Error("expected CEF segment P to carry modalidade_carteira")
	}
	nn, _ := p.Field("nosso_numero")
	if nn.Start() != 40 || nn.Len() != 18 {
		t.Errorf("expected CEF nosso_numero at 40/18, got %d/%d", nn.Start(), nn.Len())
	}
	if cef.MustSchema(layout.SegmentoT).HasField("carteira") {
		t.Error("expected CEF segment T to have no carteira")
	}

	itau := mustSet(t, 341)
	if itau.MustSchema(layout.SegmentoP).HasField("modalidade_carteira") {
		t.Error("expected base segment P without modalidade_carteira")
	}
	if !itau.MustSchema(layout.SegmentoT).HasField("carteira") {
		t.Error("expected base segment T with carteira")
	}
}

func TestEncode_TrailerArquivo(t *testing.T) {
	sc := mustSet(t, 341).MustSchema(layout.TrailerArquivo)

	line, err := layout.Encode(sc, layout.Record{
		"codigo_banco":   341,
		"qtde_lotes":     1,
		"qtde_registros": 8,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(line) != layout.LineLength {
		t.Fatalf("expected %d positions, got %d", layout.LineLength, len(line))
	}
	want := "34199999         000001000008000000"
	if !strings.HasPrefix(line, want) {
		t.Errorf("expected prefix %q, got %q", want, line[:len(want)])
	}
	if strings.TrimRight(line[35:], " ") != "" {
		t.Errorf("expected blank filler, got %q", line[35:])
	}
}

func TestEncode_MoneyAndDates(t *testing.T) {
	sc := mustSet(t, 1).MustSchema(layout.SegmentoR)
	due := time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC)

	line, err := layout.Encode(sc, layout.Record{
		"codigo_banco":           1,
		"lote_servico":           1,
		"numero_sequencial_lote": 3,
		"codigo_ocorrencia":      1,
		"codigo_multa":           2,
		"data_multa":             &due,
		"valor_multa":            decimal.RequireFromString("12.34"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := line[66:74]; got != "25122024" {
		t.Errorf("expected data_multa 25122024, got %q", got)
	}
	if got := line[74:89]; got != "000000000001234" {
		t.Errorf("expected valor_multa cents, got %q", got)
	}
	if got := line[18:26]; got != "00000000" {
		t.Errorf("expected absent date to be zeros, got %q", got)
	}
}

func TestEncode_Errors(t *testing.T) {
	sc := mustSet(t, 341).MustSchema(layout.TrailerArquivo)

	tests := []struct {
		name  string
		rec   layout.Record
		check func(error) bool
		field string
	}{
		{
			name:  "overflow",
			rec:   layout.Record{"codigo_banco": 341, "qtde_lotes": 1234567, "qtde_registros": 1},
			check: func(err error) bool { var e *layout.FieldOverflow; return errors.As(err, &e) },
			field: "qtde_lotes",
		},
		{
			name:  "type mismatch",
			rec:   layout.Record{"codigo_banco": 341, "qtde_lotes": "abc", "qtde_registros": 1},
			check: func(err error) bool { var e *layout.FieldTypeMismatch; return errors.As(err, &e) },
			field: "qtde_lotes",
		},
		{
			name:  "negative",
			rec:   layout.Record{"codigo_banco": 341, "qtde_lotes": -1, "qtde_registros": 1},
			check: func(err error) bool { var e *layout.FieldTypeMismatch; return errors.As(err, &e) },
			field: "qtde_lotes",
		},
		{
			name:  "missing required",
			rec:   layout.Record{"codigo_banco": 341, "qtde_lotes": 1},
			check: func(err error) bool { var e *layout.MissingField; return errors.As(err, &e) },
			field: "qtde_registros",
		},
		{
			name:  "unknown field",
			rec:   layout.Record{"codigo_banco": 341, "qtde_lotes": 1, "qtde_registros": 1, "nao_existe": "x"},
			check: func(err error) bool { var e *layout.UnknownField; return errors.As(err, &e) },
			field: "nao_existe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := layout.Validate(sc, tt.rec)
			if err == nil {
				t.Fatal("expected error")
			}
			if !tt.check(err) {
				t.Errorf("unexpected error type %T: %v", err, err)
			}
			if got := layout.FieldName(err); got != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, got)
			}
		})
	}
}

func TestEncode_AlphaTruncatesOnlyWhenAllowed(t *testing.T) {
	sc := mustSet(t, 341).MustSchema(layout.HeaderArquivo)
	base := layout.Record{
		"codigo_banco":              341,
		"codigo_inscricao":          2,
		"numero_inscricao":          "12345678000199",
		"agencia":                   1234,
		"codigo_cedente":            56789,
		"nome_empresa":              strings.Repeat("A", 45),
		"nome_banco":                "BANCO ITAU SA",
		"codigo_remessa_retorno":    1,
		"data_geracao":              time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		"numero_sequencial_arquivo": 7,
	}

	line, err := layout.Encode(sc, base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := line[72:102]; got != strings.Repeat("A", 30) {
		t.Errorf("expected truncated name, got %q", got)
	}

	base["codigo_convenio"] = strings.Repeat("9", 21)
	if _, err := layout.Encode(sc, base); err == nil {
		t.Fatal("expected overflow on non-truncating field")
	}

	delete(base, "codigo_convenio")
	base["nome_banco"] = "BANCO ITAÚ"
	if _, err := layout.Encode(sc, base); err == nil {
		t.Fatal("expected non-ASCII text to be rejected")
	}
}

func TestDecode(t *testing.T) {
	set := mustSet(t, 341)
	sc := set.MustSchema(layout.SegmentoU)

	line, err := layout.Encode(sc, layout.Record{
		"codigo_banco":           341,
		"lote_servico":           1,
		"numero_sequencial_lote": 2,
		"codigo_movimento":       6,
		"valor_pago":             decimal.RequireFromString("150.75"),
		"data_ocorrencia":        "25122024",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec, err := layout.Decode(sc, line)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Int("codigo_movimento") != 6 {
		t.Errorf("expected movement 6, got %d", rec.Int("codigo_movimento"))
	}
	if !rec.Decimal("valor_pago").Equal(decimal.RequireFromString("150.75")) {
		t.Errorf("expected 150.75, got %s", rec.Decimal("valor_pago"))
	}
	if rec.String("data_ocorrencia") != "25122024" {
		t.Errorf("expected 25122024, got %s", rec.String("data_ocorrencia"))
	}
	if rec.Int("data_credito") != 0 {
		t.Errorf("expected zero credit date, got %d", rec.Int("data_credito"))
	}
	if rec.String("codigo_segmento") != "U" {
		t.Errorf("expected segment U, got %q", rec.String("codigo_segmento"))
	}

	if _, err := layout.Decode(sc, line[:200]); err == nil {
		t.Fatal("expected error for short line")
	}
}
