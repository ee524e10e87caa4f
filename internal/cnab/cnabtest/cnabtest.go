// Package cnabtest provides fixtures for tests of code built on the CNAB
// packages: well-formed retorno files and remessa requests.
package cnabtest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/boddenberg/pj-cnab-bfa-go/internal/cnab/layout"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/domain"

	"github.com/shopspring/decimal"
)

// Tariff is the fee charged on every title of a Retorno fixture.
var Tariff = decimal.RequireFromString("2.50")

// Title is one T/U group of a Retorno fixture. Paid is a decimal string;
// the received value is Paid minus Tariff, floored at zero.
type Title struct {
	Movement    int
	NossoNumero string
	Document    string
	Reason      string
	Paid        string
	Amount      string
}

// Retorno encodes a single-batch retorno file for bankCode with CRLF line
// breaks. The header carries covenant, generation date 15/03/2024 and file
// sequence 42.
func Retorno(tb testing.TB, bankCode int, covenant string, titles ...Title) []byte {
	tb.Helper()
	set, err := layout.Load(bankCode)
	if err != nil {
		tb.Fatalf("cnabtest: load layout %03d: %v", bankCode, err)
	}

	var lines []string
	add := func(kind string, rec layout.Record) {
		line, err := layout.Encode(set.MustSchema(kind), rec)
		if err != nil {
			tb.Fatalf("cnabtest: encode %s: %v", kind, err)
		}
		lines = append(lines, line)
	}

	add(layout.HeaderArquivo, layout.Record{
		"codigo_banco":              bankCode,
		"codigo_inscricao":          2,
		"numero_inscricao":          "12345678000199",
		"codigo_convenio":           covenant,
		"agencia":                   1234,
		"codigo_cedente":            654321,
		"nome_empresa":              "PADARIA PAO QUENTE",
		"nome_banco":                "BANCO",
		"codigo_remessa_retorno":    2,
		"data_geracao":              "15032024",
		"numero_sequencial_arquivo": 42,
	})
	add(layout.HeaderLote, layout.Record{
		"codigo_banco":              bankCode,
		"lote_servico":              1,
		"tipo_operacao":             "T",
		"tipo_servico":              1,
		"codigo_inscricao":          2,
		"numero_inscricao":          "12345678000199",
		"agencia":                   1234,
		"codigo_cedente":            654321,
		"nome_empresa":              "PADARIA PAO QUENTE",
		"numero_sequencial_arquivo": 42,
		"data_geracao":              "15032024",
	})

	seq := 1
	for _, t := range titles {
		amount := t.Amount
		if amount == "" {
			amount = "150.00"
		}
		paid := decimal.RequireFromString(t.Paid)
		net := paid.Sub(Tariff)
		if net.IsNegative() {
			net = decimal.Zero
		}

		seg := layout.Record{
			"codigo_banco":           bankCode,
			"lote_servico":           1,
			"numero_sequencial_lote": seq,
			"codigo_movimento":       t.Movement,
			"agencia_mantenedora":    1234,
			"agencia_dv":             "5",
			"nosso_numero":           t.NossoNumero,
			"numero_documento":       t.Document,
			"data_vencimento":        "25122024",
			"valor_titulo":           decimal.RequireFromString(amount),
			"agencia_cobradora":      4321,
			"agencia_cobradora_dac":  "9",
			"sacado_tipo_inscricao":  1,
			"documento_sacado":       "01234567890",
			"nome_sacado":            "JOAO DA SILVA",
			"valor_tarifa":           Tariff,
			"motivo_ocorrencia":      t.Reason,
		}
		if set.MustSchema(layout.SegmentoT).HasField("carteira") {
			seg["carteira"] = 1
		}
		add(layout.SegmentoT, seg)
		add(layout.SegmentoU, layout.Record{
			"codigo_banco":           bankCode,
			"lote_servico":           1,
			"numero_sequencial_lote": seq + 1,
			"codigo_movimento":       t.Movement,
			"valor_pago":             paid,
			"valor_liquido":          net,
			"data_ocorrencia":        "26122024",
			"data_credito":           "27122024",
		})
		seq += 2
	}

	add(layout.TrailerLote, layout.Record{
		"codigo_banco":       bankCode,
		"lote_servico":       1,
		"qtde_registro_lote": seq - 1 + 2,
	})
	add(layout.TrailerArquivo, layout.Record{
		"codigo_banco":   bankCode,
		"qtde_lotes":     1,
		"qtde_registros": len(lines) + 1,
	})
	return []byte(strings.Join(lines, "\r\n") + "\r\n")
}

// RemessaRequest returns a request for bankCode with every configuration key
// any bank requires and n registered titles of 100.00 each.
func RemessaRequest(bankCode int, n int) *domain.RemessaRequest {
	req := &domain.RemessaRequest{
		Bank: bankCode,
		Config: map[string]any{
			"data_geracao":              "2024-03-15",
			"data_gravacao":             "2024-03-15",
			"nome_fantasia":             "Padaria Pão Quente",
			"razao_social":              "Padaria Pão Quente LTDA",
			"tipo_inscricao":            float64(2),
			"cpf_cnpj":                  "12.345.678/0001-99",
			"logradouro":                "Av. Paulista",
			"numero":                    "1000",
			"bairro":                    "Bela Vista",
			"cidade":                    "São Paulo",
			"uf":                        "SP",
			"cep":                       "01310-100",
			"agencia":                   "1234",
			"agencia_dv":                "5",
			"codigo_cedente":            "654321",
			"codigo_cedente_dv":         "7",
			"agencia_mais_cedente_dv":   "8",
			"codigo_convenio":           "998877",
			"numero_sequencial_arquivo": float64(1),
		},
	}
	for i := 1; i <= n; i++ {
		req.Titles = append(req.Titles, domain.TitleRequest{
			NossoNumero:    fmt.Sprintf("%08d", i),
			Installment:    1,
			WalletModality: "09",
			Registered:     true,
			DocumentNumber: fmt.Sprintf("NF-%d", i),
			DueDate:        "2024-04-10",
			IssueDate:      "2024-03-15",
			Amount:         decimal.RequireFromString("100.00"),
			Species:        2,
			Acceptance:     "N",
			InterestCode:   1,
			InterestPerDay: decimal.RequireFromString("0.10"),
			WriteOffDays:   "30",
			Payer: domain.PayerRequest{
				Name:     "José da Silva",
				CPF:      "123.456.789-09",
				Street:   "Rua das Flores, 100",
				District: "Centro",
				ZipCode:  "01310-100",
				City:     "São Paulo",
				State:    "SP",
			},
		})
	}
	return req
}
