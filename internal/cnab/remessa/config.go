// Package remessa builds CNAB240 remessa files: configure once, insert one
// detail per title, then render the validated fixed-width text.
package remessa

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/boddenberg/pj-cnab-bfa-go/internal/cnab/bank"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/domain"
)

// Params is the raw configuration handed to Configure, keyed by the
// FEBRABAN-style names listed in bank.BaselineKeys and the bank's plan.
type Params map[string]any

// Configuration is the validated, immutable form of Params.
type Configuration struct {
	GeneratedAt time.Time
	RecordedAt  time.Time

	TradeName string
	LegalName string
	TaxIDType int
	TaxID     string

	Street   string
	Number   string
	District string
	City     string
	State    string
	ZipCode  string

	Agency           string
	AgencyDV         string
	AssignorCode     string
	AssignorDV       string
	AgencyAssignorDV string
	Covenant         string
	FileSequence     int
}

// parseConfiguration checks every key the plan requires, in order, and stops
// at the first one missing or mistyped. Keys outside the plan are read when
// present.
func parseConfiguration(plan bank.FieldPlan, params Params) (*Configuration, error) {
	for _, key := range plan.RequiredKeys {
		v, ok := params[key]
		if !ok || v == nil {
			return nil, &domain.ErrConfiguration{Key: key, Reason: domain.ReasonMissingConfigField}
		}
		if strings.HasPrefix(key, "data_") {
			if _, ok := v.(time.Time); !ok {
				return nil, &domain.ErrConfiguration{Key: key, Reason: domain.ReasonInvalidFieldType}
			}
		}
	}

	p := paramReader{params: params}
	cfg := &Configuration{
		GeneratedAt:      p.date("data_geracao"),
		RecordedAt:       p.date("data_gravacao"),
		TradeName:        p.text("nome_fantasia"),
		LegalName:        p.text("razao_social"),
		TaxIDType:        p.integer("tipo_inscricao"),
		TaxID:            p.text("cpf_cnpj"),
		Street:           p.text("logradouro"),
		Number:           p.text("numero"),
		District:         p.text("bairro"),
		City:             p.text("cidade"),
		State:            p.text("uf"),
		ZipCode:          p.text("cep"),
		Agency:           p.text("agencia"),
		AgencyDV:         p.text("agencia_dv"),
		AssignorCode:     p.text("codigo_cedente"),
		AssignorDV:       p.text("codigo_cedente_dv"),
		AgencyAssignorDV: p.text("agencia_mais_cedente_dv"),
		Covenant:         p.text("codigo_convenio"),
		FileSequence:     p.integer("numero_sequencial_arquivo"),
	}
	if p.err != nil {
		return nil, p.err
	}
	return cfg, nil
}

// paramReader converts loosely typed params, keeping the first type error.
type paramReader struct {
	params Params
	err    error
}

func (r *paramReader) fail(key string) {
	if r.err == nil {
		r.err = &domain.ErrConfiguration{Key: key, Reason: domain.ReasonInvalidFieldType}
	}
}

func (r *paramReader) date(key string) time.Time {
	t, _ := r.params[key].(time.Time)
	return t
}

func (r *paramReader) text(key string) string {
	switch v := r.params[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case int, int64, int32:
		return fmt.Sprint(v)
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
	}
	r.fail(key)
	return ""
}

func (r *paramReader) integer(key string) int {
	switch v := r.params[key].(type) {
	case nil:
		return 0
	case int:
		return v
	case int64:
		return int(v)
	case int32:
		return int(v)
	case float64:
		if v == float64(int64(v)) {
			return int(v)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	r.fail(key)
	return 0
}
