package remessa

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/boddenberg/pj-cnab-bfa-go/internal/cnab/bank"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/cnab/text"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/domain"
)

// Fixed instruction codes written on every title.
const (
	walletSimple       = 1 // cobrança simples
	protestDoNot       = 3
	writeOffAfterLimit = 1
	movementEntry      = 1 // entrada de títulos
	taxIDIndividual    = 1 // CPF
	taxIDCompany       = 2 // CNPJ
)

// Payer is the party obligated to pay a title. Exactly one of CompanyTaxID
// and IndividualTaxID identifies it; the company id wins when both are set.
type Payer struct {
	Name            string
	CompanyTaxID    string
	IndividualTaxID string
	Street          string
	District        string
	ZipCode         string
	City            string
	State           string
}

// Title is one collection instruction to insert into a remessa. Discount,
// Fine and LimitDate are nil when not granted.
type Title struct {
	NossoNumero    string
	Installment    int
	WalletModality string
	Registered     bool
	MovementCode   int
	DocumentNumber string
	DueDate        time.Time
	IssueDate      time.Time
	Amount         decimal.Decimal
	Species        int
	Acceptance     string
	InterestCode   int
	InterestPerDay decimal.Decimal
	Discount       *Discount
	Fine           *Fine
	LimitDate      *time.Time
	WriteOffDays   string
	Payer          Payer
	ThirdParty     bool
}

func (t Title) check() error {
	switch {
	case strings.TrimSpace(t.NossoNumero) == "":
		return &domain.ErrValidation{Field: "nosso_numero", Message: "required"}
	case t.DueDate.IsZero():
		return &domain.ErrValidation{Field: "due_date", Message: "required"}
	case t.IssueDate.IsZero():
		return &domain.ErrValidation{Field: "issue_date", Message: "required"}
	case t.Amount.IsNegative():
		return &domain.ErrValidation{Field: "amount", Message: "must not be negative"}
	case t.Payer.CompanyTaxID == "" && t.Payer.IndividualTaxID == "":
		return &domain.ErrValidation{Field: "payer", Message: "company or individual tax id required"}
	}
	return nil
}

var zipReplacer = strings.NewReplacer("-", "", ".", "")

// buildDetail derives segments P, Q and R from a title. Sequence numbers are
// left for Render.
func buildDetail(plan bank.FieldPlan, cfg *Configuration, fh FileHeader, batch int, t Title) *Detail {
	movement := t.MovementCode
	if movement == 0 {
		movement = movementEntry
	}

	p := SegmentP{
		BankCode:         fh.BankCode,
		Batch:            batch,
		MovementCode:     movement,
		Agency:           fh.Agency,
		AgencyDV:         fh.AgencyDV,
		AssignorCode:     fh.AssignorCode,
		NossoNumero:      plan.FormatNossoNumero(t.NossoNumero, t.Installment),
		Wallet:           walletSimple,
		RegistrationCode: plan.RegistrationCode(t.Registered),
		DocumentNumber:   t.DocumentNumber,
		DueDate:          t.DueDate,
		Amount:           t.Amount,
		Species:          t.Species,
		Acceptance:       t.Acceptance,
		IssueDate:        t.IssueDate,
		InterestCode:     t.InterestCode,
		InterestDate:     t.DueDate,
		InterestPerDay:   t.InterestPerDay,
		Rebate:           decimal.Zero,
		CompanyUse:       t.DocumentNumber,
		ProtestCode:      protestDoNot,
		ProtestDays:      0,
		WriteOffCode:     writeOffAfterLimit,
		WriteOffDays:     t.WriteOffDays,
	}
	if plan.DetailCheckDigits {
		p.AssignorDV = cfg.AssignorDV
		p.AgencyAssignorDV = cfg.AgencyAssignorDV
	}
	switch plan.Wallet {
	case bank.WalletFixed:
		p.WalletModality = plan.FixedWalletModality
	case bank.WalletFromTitle:
		p.WalletModality = t.WalletModality
	}
	if plan.DiscountFixedValue && t.Discount != nil && t.Discount.Amount.IsPositive() {
		d := *t.Discount
		p.Discount = &d
	}

	q := SegmentQ{
		BankCode:     fh.BankCode,
		Batch:        batch,
		MovementCode: movement,
		Payer:        payerParty(t.Payer),
		Street:       text.Normalize(t.Payer.Street, ""),
		District:     text.Normalize(t.Payer.District, ""),
		ZipCode:      zipReplacer.Replace(t.Payer.ZipCode),
		City:         text.Normalize(t.Payer.City, ""),
		State:        text.Normalize(t.Payer.State, ""),
		Drawer:       Party{RegistrationNumber: "0"},
	}
	if t.ThirdParty {
		q.Drawer = Party{
			RegistrationType:   fh.RegistrationType,
			RegistrationNumber: fh.RegistrationNumber,
			Name:               fh.CompanyName,
		}
	}

	r := SegmentR{
		BankCode:     fh.BankCode,
		Batch:        batch,
		MovementCode: movement,
	}
	if t.Fine != nil && t.Fine.Amount.IsPositive() {
		f := *t.Fine
		r.Fine = &f
	}
	if t.LimitDate != nil {
		d := *t.LimitDate
		r.LimitDate = &d
	}

	return &Detail{P: p, Q: q, R: r, registered: t.Registered}
}

func payerParty(p Payer) Party {
	party := Party{Name: text.Normalize(p.Name, "")}
	if p.CompanyTaxID != "" {
		party.RegistrationType = taxIDCompany
		party.RegistrationNumber = text.Normalize(p.CompanyTaxID, text.DocumentPunctuation)
	} else {
		party.RegistrationType = taxIDIndividual
		party.RegistrationNumber = text.Normalize(p.IndividualTaxID, text.DocumentPunctuation)
	}
	return party
}
