package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================
// Remessa API
// ============================================================

// RemessaRequest is the body of POST /v1/remessas and the input file of
// `cnabctl remessa`. Config values for keys starting with "data_" are dates
// in YYYY-MM-DD form.
type RemessaRequest struct {
	Bank    int            `json:"bank"`
	Variant string         `json:"variant,omitempty"`
	Config  map[string]any `json:"config"`
	Titles  []TitleRequest `json:"titles"`
}

// TitleRequest is one title of a remessa request.
type TitleRequest struct {
	NossoNumero    string           `json:"nosso_numero"`
	Installment    int              `json:"installment,omitempty"`
	WalletModality string           `json:"wallet_modality,omitempty"`
	Registered     bool             `json:"registered"`
	MovementCode   int              `json:"movement_code,omitempty"`
	DocumentNumber string           `json:"document_number"`
	DueDate        string           `json:"due_date"`
	IssueDate      string           `json:"issue_date"`
	Amount         decimal.Decimal  `json:"amount"`
	Species        int              `json:"species"`
	Acceptance     string           `json:"acceptance"`
	InterestCode   int              `json:"interest_code,omitempty"`
	InterestPerDay decimal.Decimal  `json:"interest_per_day"`
	Discount       *AmountOnRequest `json:"discount,omitempty"`
	Fine           *AmountOnRequest `json:"fine,omitempty"`
	LimitDate      string           `json:"limit_date,omitempty"`
	WriteOffDays   string           `json:"write_off_days,omitempty"`
	Payer          PayerRequest     `json:"payer"`
	ThirdParty     bool             `json:"third_party,omitempty"`
}

// AmountOnRequest is a dated amount: a discount granted until Date or a fine
// charged from Date.
type AmountOnRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Date   string          `json:"date"`
}

// PayerRequest identifies the payer of a title.
type PayerRequest struct {
	Name     string `json:"name"`
	CNPJ     string `json:"cnpj,omitempty"`
	CPF      string `json:"cpf,omitempty"`
	Street   string `json:"street"`
	District string `json:"district"`
	ZipCode  string `json:"zip_code"`
	City     string `json:"city"`
	State    string `json:"state"`
}

// RemessaResult is returned after a remessa was rendered and archived.
type RemessaResult struct {
	ID          string          `json:"id"`
	Bank        int             `json:"bank"`
	BankName    string          `json:"bank_name"`
	Variant     string          `json:"variant,omitempty"`
	Titles      int             `json:"titles"`
	Records     int             `json:"records"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CreatedAt   time.Time       `json:"created_at"`
	Content     string          `json:"-"`
}

// RemessaArchive is a rendered remessa as persisted by the archive port.
type RemessaArchive struct {
	ID          string          `json:"id"`
	Bank        int             `json:"bank"`
	Variant     string          `json:"variant,omitempty"`
	Titles      int             `json:"titles"`
	Records     int             `json:"records"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CreatedAt   time.Time       `json:"created_at"`
	Content     string          `json:"-"`
}

// ============================================================
// Retorno API
// ============================================================

// RetornoFile is one uploaded retorno file.
type RetornoFile struct {
	Name     string
	Data     []byte
	Covenant string
}

// RetornoResult is the decoded view of a retorno file.
type RetornoResult struct {
	Name         string              `json:"name,omitempty"`
	Bank         int                 `json:"bank"`
	BankName     string              `json:"bank_name"`
	Encoding     string              `json:"encoding"`
	Covenant     string              `json:"covenant,omitempty"`
	GeneratedAt  string              `json:"generated_at,omitempty"`
	FileSequence int                 `json:"file_sequence"`
	Batches      int                 `json:"batches"`
	Details      []RetornoDetailView `json:"details"`
	Totals       RetornoTotals       `json:"totals"`
}

// RetornoTotals sums the details of a retorno file.
type RetornoTotals struct {
	Details   int             `json:"details"`
	WriteOffs int             `json:"write_offs"`
	Rejected  int             `json:"rejected"`
	Title     decimal.Decimal `json:"title_amount"`
	Received  decimal.Decimal `json:"received_amount"`
	Tariffs   decimal.Decimal `json:"tariff_amount"`
}

// RetornoDetailView is one decoded T/U(/W) group.
type RetornoDetailView struct {
	Sequence           int             `json:"sequence"`
	Movement           int             `json:"movement"`
	MovementName       string          `json:"movement_name"`
	Reason             string          `json:"reason,omitempty"`
	ReasonName         string          `json:"reason_name,omitempty"`
	WriteOff           bool            `json:"write_off"`
	WriteOffRejected   bool            `json:"write_off_rejected"`
	NossoNumero        string          `json:"nosso_numero"`
	DocumentNumber     string          `json:"document_number,omitempty"`
	Wallet             string          `json:"wallet,omitempty"`
	PayerName          string          `json:"payer_name"`
	PayerDocument      string          `json:"payer_document"`
	DueDate            string          `json:"due_date,omitempty"`
	CreditDate         string          `json:"credit_date,omitempty"`
	OccurrenceDate     string          `json:"occurrence_date,omitempty"`
	TitleValue         decimal.Decimal `json:"title_value"`
	PaidValue          decimal.Decimal `json:"paid_value"`
	ReceivedValue      decimal.Decimal `json:"received_value"`
	TariffValue        decimal.Decimal `json:"tariff_value"`
	InterestAndFine    decimal.Decimal `json:"interest_and_fine_value"`
	DiscountValue      decimal.Decimal `json:"discount_value"`
	RebateValue        decimal.Decimal `json:"rebate_value"`
	IOFValue           decimal.Decimal `json:"iof_value"`
	OtherExpensesValue decimal.Decimal `json:"other_expenses_value"`
	OtherCreditsValue  decimal.Decimal `json:"other_credits_value"`
	Segments           int             `json:"segments"`
}

// RetornoBatchResult pairs a file name with its decoded result or error.
type RetornoBatchResult struct {
	Name   string         `json:"name"`
	Result *RetornoResult `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// BankView is one entry of GET /v1/banks.
type BankView struct {
	Code     int      `json:"code"`
	Name     string   `json:"name"`
	Variants []string `json:"variants,omitempty"`
}
