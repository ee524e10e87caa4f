package remessa

import (
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/boddenberg/pj-cnab-bfa-go/internal/cnab/bank"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/cnab/layout"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/cnab/text"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/domain"
)

// LineBreak terminates every line of a CNAB file.
const LineBreak = "\r\n"

const (
	batchNumber        = 1
	operationRemessa   = "R"
	batchEnvelopeLines = 2 // batch header + batch trailer
	fileEnvelopeLines  = 2 // file header + file trailer
)

// File is a remessa under construction. It is not safe for concurrent use:
// every detail must be inserted before Render runs.
type File struct {
	bank    bank.Bank
	plan    bank.FieldPlan
	layouts *layout.Set

	config       *Configuration
	header       FileHeader
	batchHeader  BatchHeader
	details      []*Detail
	batchTrailer BatchTrailer
	fileTrailer  FileTrailer
	rendered     bool
}

// New starts a remessa for a bank and optional layout variant (e.g. "sigcb"
// for CEF).
func New(bankCode int, variant string) (*File, error) {
	b, err := bank.Lookup(bankCode)
	if err != nil {
		return nil, err
	}
	plan, err := bank.Resolve(bankCode, variant)
	if err != nil {
		return nil, err
	}
	set, err := layout.Load(bankCode)
	if err != nil {
		return nil, err
	}
	return &File{bank: b, plan: plan, layouts: set}, nil
}

// Bank returns the bank the file is built for.
func (f *File) Bank() bank.Bank { return f.bank }

// Variant returns the layout variant fixed at construction.
func (f *File) Variant() string { return f.plan.Variant }

// Configure validates params against the bank's field plan and builds the
// header and trailer skeletons. It may run only once.
func (f *File) Configure(params Params) error {
	if f.config != nil {
		return &domain.ErrConfiguration{Reason: domain.ReasonAlreadyConfigured}
	}
	cfg, err := parseConfiguration(f.plan, params)
	if err != nil {
		return err
	}

	plan := f.plan
	fh := FileHeader{
		BankCode:           f.bank.Code,
		BankName:           f.bank.Name,
		RegistrationType:   cfg.TaxIDType,
		RegistrationNumber: text.Normalize(cfg.TaxID, text.DocumentPunctuation),
		Agency:             cfg.Agency,
		AgencyDV:           cfg.AgencyDV,
		AssignorCode:       cfg.AssignorCode,
		CompanyName:        text.Normalize(cfg.TradeName, ""),
		GeneratedAt:        cfg.GeneratedAt,
		FileSequence:       cfg.FileSequence,
		LayoutVersion:      plan.FileLayoutVersion,
	}
	if plan.FileHeaderAssignorDV {
		fh.AssignorDV = cfg.AssignorDV
	}
	if plan.FileHeaderAgencyAssignorDV {
		fh.AgencyAssignorDV = cfg.AgencyAssignorDV
	}
	if plan.FileHeaderCovenant {
		fh.Covenant = cfg.Covenant
	}

	bh := BatchHeader{
		BankCode:           fh.BankCode,
		Batch:              batchNumber,
		OperationType:      operationRemessa,
		ServiceType:        plan.ServiceType(false),
		LayoutVersion:      plan.BatchLayoutVersion,
		RegistrationType:   fh.RegistrationType,
		RegistrationNumber: fh.RegistrationNumber,
		Agency:             fh.Agency,
		AgencyDV:           fh.AgencyDV,
		AssignorCode:       fh.AssignorCode,
		CompanyName:        fh.CompanyName,
		FileSequence:       fh.FileSequence,
		GeneratedAt:        fh.GeneratedAt,
	}
	switch plan.BatchCovenant {
	case bank.CovenantFromAssignorCode:
		bh.Covenant = fh.AssignorCode
	case bank.CovenantFromConfig:
		bh.Covenant = cfg.Covenant
	}
	if plan.BatchAssignorDV {
		bh.AssignorDV = cfg.AssignorDV
	}
	if plan.BatchAgencyAssignorDV {
		bh.AgencyAssignorDV = cfg.AgencyAssignorDV
	}

	f.config = cfg
	f.header = fh
	f.batchHeader = bh
	f.batchTrailer = BatchTrailer{BankCode: fh.BankCode, Batch: bh.Batch}
	f.fileTrailer = FileTrailer{BankCode: fh.BankCode}
	return nil
}

// Configuration returns the validated configuration, or nil before Configure.
func (f *File) Configuration() *Configuration { return f.config }

// InsertDetail appends one title. The call is rejected as a whole when the
// title is incomplete; nothing is appended in that case.
func (f *File) InsertDetail(t Title) error {
	if f.config == nil {
		return &domain.ErrConfiguration{Reason: domain.ReasonNotConfigured}
	}
	if f.rendered {
		return &domain.ErrFinalized{Operation: "InsertDetail"}
	}
	if err := t.check(); err != nil {
		return err
	}
	f.details = append(f.details, buildDetail(f.plan, f.config, f.header, f.batchHeader.Batch, t))
	return nil
}

// Details returns a copy of the inserted details in insertion order.
func (f *File) Details() []Detail {
	out := make([]Detail, len(f.details))
	for i, d := range f.details {
		out[i] = *d
	}
	return out
}

// CountDetails returns the number of inserted details.
func (f *File) CountDetails() int { return len(f.details) }

// Render finalizes the file: it numbers every segment, computes the batch
// and file trailers, validates each record in file order and returns the
// CRLF-terminated text. The first invalid record aborts the render and no
// text is returned. Rendering again yields the same text.
func (f *File) Render() (string, error) {
	if f.config == nil {
		return "", &domain.ErrConfiguration{Reason: domain.ReasonNotConfigured}
	}

	bh := f.batchHeader
	bh.ServiceType = f.plan.ServiceType(f.anyRegistered())

	seq := 1
	lines := batchEnvelopeLines
	titles := Totals{Amount: decimal.Zero}
	for _, d := range f.details {
		seq = d.setSequence(seq)
		lines += len(d.Segments())
		titles.Count++
		titles.Amount = titles.Amount.Add(d.P.Amount)
	}

	bt := f.batchTrailer
	bt.LineCount = lines
	bt.Simple, bt.Linked = Totals{}, Totals{}
	bt.Secured, bt.Discounted = Totals{}, Totals{}
	if f.plan.TotalsInLinkedBucket {
		bt.Linked = titles
	} else {
		bt.Simple = titles
	}

	ft := f.fileTrailer
	ft.BatchCount = 1
	ft.RecordCount = bt.LineCount + fileEnvelopeLines
	if f.plan.ReconciliationAccountCounter {
		ft.ReconciliationAccounts = 1
	}

	records := make([]Segment, 0, lines+fileEnvelopeLines)
	records = append(records, f.header, bh)
	for _, d := range f.details {
		records = append(records, d.Segments()...)
	}
	records = append(records, bt, ft)

	var b strings.Builder
	b.Grow(len(records) * (layout.LineLength + len(LineBreak)))
	for _, r := range records {
		line, err := encode(f.layouts, r)
		if err != nil {
			return "", err
		}
		b.WriteString(line)
		b.WriteString(LineBreak)
	}

	f.batchHeader = bh
	f.batchTrailer = bt
	f.fileTrailer = ft
	f.rendered = true
	return b.String(), nil
}

// anyRegistered reports whether at least one inserted title is registered.
func (f *File) anyRegistered() bool {
	for _, d := range f.details {
		if d.registered {
			return true
		}
	}
	return false
}

// BatchTrailer returns the batch trailer as computed by the last Render.
func (f *File) BatchTrailer() BatchTrailer { return f.batchTrailer }

// FileTrailer returns the file trailer as computed by the last Render.
func (f *File) FileTrailer() FileTrailer { return f.fileTrailer }

// Save renders the file and writes exactly the rendered bytes to path.
func (f *File) Save(path string) (string, error) {
	out, err := f.Render()
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
