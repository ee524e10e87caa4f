package retorno

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/boddenberg/pj-cnab-bfa-go/internal/cnab/bank"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/cnab/layout"
)

const dateLayout = "02012006"

// Detail is one title reported by a retorno: segments T and U, and W when
// the bank sent one. Every query is a pure read of those segments.
type Detail struct {
	bank     int
	covenant string

	t, u, w layout.Record
	tSchema *layout.Schema
	uSchema *layout.Schema
	wSchema *layout.Schema
}

// T returns the raw segment T fields.
func (d *Detail) T() layout.Record { return d.t }

// U returns the raw segment U fields.
func (d *Detail) U() layout.Record { return d.u }

// W returns the raw segment W fields, or nil.
func (d *Detail) W() layout.Record { return d.w }

// SegmentCount is 2, or 3 when segment W is present.
func (d *Detail) SegmentCount() int {
	if d.w != nil {
		return 3
	}
	return 2
}

// Code is the movement code of the title.
func (d *Detail) Code() int { return int(d.t.Int("codigo_movimento")) }

// IsWriteOff reports a settlement or write-off (movements 6, 9, 17, 25).
func (d *Detail) IsWriteOff() bool { return IsWriteOffMovement(d.Code()) }

// IsWriteOffRejected reports a rejected entry or instruction (movements 3,
// 26, 30).
func (d *Detail) IsWriteOffRejected() bool { return IsWriteOffRejectedMovement(d.Code()) }

// ReceivedValue is the net amount credited to the assignor.
func (d *Detail) ReceivedValue() decimal.Decimal { return d.u.Decimal("valor_liquido") }

func (d *Detail) TitleValue() decimal.Decimal { return d.t.Decimal("valor_titulo") }
func (d *Detail) PaidValue() decimal.Decimal { return d.u.Decimal("valor_pago") }
func (d *Detail) TariffValue() decimal.Decimal { return d.t.Decimal("valor_tarifa") }
func (d *Detail) IOFValue() decimal.Decimal { return d.u.Decimal("valor_iof") }
func (d *Detail) DiscountValue() decimal.Decimal { return d.u.Decimal("valor_desconto") }
func (d *Detail) RebateValue() decimal.Decimal { return d.u.Decimal("valor_abatimento") }
func (d *Detail) OtherExpensesValue() decimal.Decimal { return d.u.Decimal("valor_outras_despesas") }
func (d *Detail) OtherCreditsValue() decimal.Decimal { return d.u.Decimal("valor_outros_creditos") }

// InterestAndFineValue is the interest plus fine charged on late payment.
func (d *Detail) InterestAndFineValue() decimal.Decimal { return d.u.Decimal("valor_acrescimos") }

// NossoNumero is the assignor's title reference. Banco do Brasil prefixes it
// with the covenant code, which is removed; Santander appends a check digit,
// which is dropped.
func (d *Detail) NossoNumero() string {
	return nossoNumero(d.bank, d.covenant, d.t.String("nosso_numero"))
}

func nossoNumero(bankCode int, covenant, raw string) string {
	switch bankCode {
	case bank.BancoDoBrasil:
		if covenant != "" {
			return strings.TrimPrefix(raw, covenant)
		}
	case bank.Santander:
		if raw != "" {
			return raw[:len(raw)-1]
		}
	}
	return raw
}

// DocumentNumber is the assignor's document number; false when the field is
// blank or all zeros.
func (d *Detail) DocumentNumber() (string, bool) {
	raw := d.t.String("numero_documento")
	if strings.Trim(strings.TrimSpace(raw), "0") == "" {
		return "", false
	}
	return raw, true
}

// Wallet is the collection wallet code. CEF never reports a meaningful one,
// and layouts without the field have none.
func (d *Detail) Wallet() (string, bool) {
	if d.bank == bank.CEF || !d.tSchema.HasField("carteira") {
		return "", false
	}
	return d.t.String("carteira"), true
}

func (d *Detail) Agency() int64 { return d.t.Int("agencia_mantenedora") }
func (d *Detail) AgencyDV() string { return d.t.String("agencia_dv") }
func (d *Detail) CollectingAgency() int64 { return d.t.Int("agencia_cobradora") }
func (d *Detail) CollectingAgencyDAC() string { return d.t.String("agencia_cobradora_dac") }
func (d *Detail) SequenceNumber() int { return int(d.t.Int("numero_sequencial_lote")) }
func (d *Detail) PayerName() string { return d.t.String("nome_sacado") }
func (d *Detail) DueDate() (time.Time, bool) { return DecodeDate(d.t["data_vencimento"]) }
func (d *Detail) CreditDate() (time.Time, bool) { return DecodeDate(d.u["data_credito"]) }

// OccurrenceDate is the day the movement happened, e.g. the payment date.
func (d *Detail) OccurrenceDate() (time.Time, bool) { return DecodeDate(d.u["data_ocorrencia"]) }

// PayerDocument is the payer's CPF or CNPJ, zero-padded to 11 or 14 digits
// according to the registration type.
func (d *Detail) PayerDocument() string {
	n := d.t.Int("documento_sacado")
	if n == 0 {
		return ""
	}
	switch d.t.Int("sacado_tipo_inscricao") {
	case 1:
		return fmt.Sprintf("%011d", n)
	case 2:
		return fmt.Sprintf("%014d", n)
	}
	return strconv.FormatInt(n, 10)
}

// ReasonCode is the occurrence reason with leading zeros removed.
func (d *Detail) ReasonCode() string {
	return strings.TrimLeft(strings.TrimSpace(d.t.String("motivo_ocorrencia")), "0")
}

// MovementName describes the movement code.
func (d *Detail) MovementName() string { return MovementName(d.Code()) }

// ReasonName describes the reason code; false when reasons do not apply to
// the movement.
func (d *Detail) ReasonName() (string, bool) { return ReasonName(d.Code(), d.ReasonCode()) }

// Dump lists every field of every segment, for troubleshooting.
func (d *Detail) Dump() string {
	var b strings.Builder
	dumpSegment(&b, "T", d.tSchema, d.t)
	dumpSegment(&b, "U", d.uSchema, d.u)
	if d.w != nil {
		dumpSegment(&b, "W", d.wSchema, d.w)
	}
	return b.String()
}

func dumpSegment(b *strings.Builder, name string, sc *layout.Schema, rec layout.Record) {
	fmt.Fprintf(b, "== SEGMENTO %s ==\n", name)
	for _, f := range sc.Fields {
		if strings.HasPrefix(f.Name, "filler_") {
			continue
		}
		fmt.Fprintf(b, "%s: %s\n", f.Name, rec.String(f.Name))
	}
}

// DecodeDate reads a ddmmyyyy field, given as digits or as an integer, into a
// date at midnight UTC. Zero, blank and impossible dates are no date.
func DecodeDate(v any) (time.Time, bool) {
	var raw string
	switch x := v.(type) {
	case string:
		raw = strings.TrimSpace(x)
	case int64:
		raw = fmt.Sprintf("%08d", x)
	case int:
		raw = fmt.Sprintf("%08d", x)
	default:
		return time.Time{}, false
	}
	if raw == "" || strings.Trim(raw, "0") == "" {
		return time.Time{}, false
	}
	if len(raw) < len(dateLayout) {
		raw = strings.Repeat("0", len(dateLayout)-len(raw)) + raw
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
