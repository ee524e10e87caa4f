// Package bank holds the static bank registry and the per-bank field plans
// that drive remessa generation.
package bank

import (
	"sort"

	"github.com/boddenberg/pj-cnab-bfa-go/internal/domain"
)

// FEBRABAN codes of the supported banks.
const (
	BancoDoBrasil = 1
	Santander     = 33
	CEF           = 104
	Bradesco      = 237
	Itau          = 341
	Sicoob        = 756
)

// Bank is a registry entry.
type Bank struct {
	Code int    `json:"code"`
	Name string `json:"name"`
}

var registry = map[int]Bank{
	BancoDoBrasil: {Code: BancoDoBrasil, Name: "BANCO DO BRASIL S.A."},
	Santander:     {Code: Santander, Name: "BANCO SANTANDER (BRASIL) S.A."},
	CEF:           {Code: CEF, Name: "CAIXA ECONOMICA FEDERAL"},
	Bradesco:      {Code: Bradesco, Name: "BANCO BRADESCO S.A."},
	Itau:          {Code: Itau, Name: "BANCO ITAU S.A."},
	Sicoob:        {Code: Sicoob, Name: "SICOOB"},
}

// Lookup returns the registry entry for a bank code.
func Lookup(code int) (Bank, error) {
	b, ok := registry[code]
	if !ok {
		return Bank{}, &domain.ErrUnknownBankVariant{Code: code}
	}
	return b, nil
}

// List returns every registered bank ordered by code.
func List() []Bank {
	out := make([]Bank, 0, len(registry))
	for _, b := range registry {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
