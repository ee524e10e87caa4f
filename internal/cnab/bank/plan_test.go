package bank_test

import (
	"errors"
	"testing"

	"github.com/boddenberg/pj-cnab-bfa-go/internal/cnab/bank"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/domain"
)

func TestLookup(t *testing.T) {
	b, err := bank.Lookup(bank.CEF)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Name != "CAIXA ECONOMICA FEDERAL" {
		t.Errorf("unexpected name %q", b.Name)
	}

	_, err = bank.Lookup(999)
	var unknown *domain.ErrUnknownBankVariant
	if !errors.As(err, &unknown) {
		t.Fatalf("expected ErrUnknownBankVariant, got %v", err)
	}
	if unknown.Code != 999 {
		t.Errorf("expected code 999, got %d", unknown.Code)
	}
}

func TestList_SortedByCode(t *testing.T) {
	banks := bank.List()
	if len(banks) != 6 {
		t.Fatalf("expected 6 banks, got %d", len(banks))
	}
	for i := 1; i < len(banks); i++ {
		if banks[i-1].Code >= banks[i].Code {
			t.Fatalf("banks not sorted: %v", banks)
		}
	}
}

func TestResolve_RequiredKeys(t *testing.T) {
	tests := []struct {
		code  int
		extra int
		has   string
		lacks string
	}{
		{bank.CEF, 7, "codigo_convenio", ""},
		{bank.Bradesco, 7, "agencia_mais_cedente_dv", ""},
		{bank.Sicoob, 6, "codigo_cedente_dv", "codigo_convenio"},
		{bank.Itau, 4, "numero_sequencial_arquivo", "codigo_cedente_dv"},
	}

	for _, tt := range tests {
		plan, err := bank.Resolve(tt.code, "")
		if err != nil {
			t.Fatalf("bank %03d: %v", tt.code, err)
		}
		if got := len(plan.RequiredKeys) - len(bank.BaselineKeys); got != tt.extra {
			t.Errorf("bank %03d: expected %d extra keys, got %d", tt.code, tt.extra, got)
		}
		if plan.RequiredKeys[0] != "data_geracao" {
			t.Errorf("bank %03d: baseline keys must come first", tt.code)
		}
		if !contains(plan.RequiredKeys, tt.has) {
			t.Errorf("bank %03d: expected key %s", tt.code, tt.has)
		}
		if tt.lacks != "" && contains(plan.RequiredKeys, tt.lacks) {
			t.Errorf("bank %03d: unexpected key %s", tt.code, tt.lacks)
		}
	}
}

func TestResolve_Overrides(t *testing.T) {
	sicoob, _ := bank.Resolve(bank.Sicoob, "")
	if sicoob.RegistrationCode(true) != 0 || sicoob.RegistrationCode(false) != 0 {
		t.Error("expected Sicoob registration code fixed to 0")
	}
	if got := sicoob.FormatNossoNumero("123", 1); got != "000000012301013     " {
		t.Errorf("unexpected Sicoob nosso-numero %q", got)
	}
	if !sicoob.ReconciliationAccountCounter {
		t.Error("expected Sicoob reconciliation counter")
	}

	itau, _ := bank.Resolve(bank.Itau, "")
	if itau.RegistrationCode(true) != 1 || itau.RegistrationCode(false) != 2 {
		t.Error("expected registration code 1/2")
	}
	if got := itau.FormatNossoNumero("123", 1); got != "123" {
		t.Errorf("expected passthrough, got %q", got)
	}
	if !itau.TotalsInLinkedBucket {
		t.Error("expected Itau totals in linked bucket")
	}

	cef, _ := bank.Resolve(bank.CEF, "")
	if cef.ServiceType(false) != 2 || cef.ServiceType(true) != 1 {
		t.Error("expected CEF service type 2 unless a title is registered")
	}
	if cef.TotalsInLinkedBucket {
		t.Error("expected CEF totals in simple bucket")
	}
	if cef.Wallet != bank.WalletNone {
		t.Error("expected no wallet modality without sigcb")
	}

	sigcb, err := bank.Resolve(bank.CEF, "SIGCB")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sigcb.Wallet != bank.WalletFixed || sigcb.FixedWalletModality != "14" {
		t.Error("expected sigcb wallet modality 14")
	}
}

func TestResolve_UnknownVariant(t *testing.T) {
	_, err := bank.Resolve(bank.Itau, "sigcb")
	var unknown *domain.ErrUnknownBankVariant
	if !errors.As(err, &unknown) {
		t.Fatalf("expected ErrUnknownBankVariant, got %v", err)
	}
	if unknown.Variant != "sigcb" {
		t.Errorf("expected variant sigcb, got %q", unknown.Variant)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestVariants(t *testing.T) {
	if v := bank.Variants(bank.CEF); len(v) != 1 || v[0] != bank.VariantSIGCB {
		t.Errorf("expected [sigcb] for CEF, got %v", v)
	}
	if v := bank.Variants(bank.Itau); len(v) != 0 {
		t.Errorf("expected no named variants for Itaú, got %v", v)
	}
}
