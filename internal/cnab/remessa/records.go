package remessa

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/boddenberg/pj-cnab-bfa-go/internal/cnab/layout"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/domain"
)

// Totals is one collection modality bucket of the batch trailer.
type Totals struct {
	Count  int
	Amount decimal.Decimal
}

// FileHeader is the first line of a remessa.
type FileHeader struct {
	BankCode           int
	BankName           string
	RegistrationType   int
	RegistrationNumber string
	Covenant           string
	Agency             string
	AgencyDV           string
	AssignorCode       string
	AssignorDV         string
	AgencyAssignorDV   string
	CompanyName        string
	GeneratedAt        time.Time
	FileSequence       int
	LayoutVersion      int
}

func (h FileHeader) kind() string { return layout.HeaderArquivo }

func (h FileHeader) values() layout.Record {
	return layout.Record{
		"codigo_banco":              h.BankCode,
		"codigo_inscricao":          h.RegistrationType,
		"numero_inscricao":          h.RegistrationNumber,
		"codigo_convenio":           h.Covenant,
		"agencia":                   h.Agency,
		"agencia_dv":                h.AgencyDV,
		"codigo_cedente":            h.AssignorCode,
		"codigo_cedente_dv":         h.AssignorDV,
		"agencia_mais_cedente_dv":   h.AgencyAssignorDV,
		"nome_empresa":              h.CompanyName,
		"nome_banco":                h.BankName,
		"codigo_remessa_retorno":    1,
		"data_geracao":              h.GeneratedAt,
		"hora_geracao":              h.GeneratedAt,
		"numero_sequencial_arquivo": h.FileSequence,
		"versao_layout_arquivo":     h.LayoutVersion,
	}
}

// Validate checks the header against the bank's layout.
func (h FileHeader) Validate(set *layout.Set) error { return validate(set, h) }

// BatchHeader opens the single batch of a remessa.
type BatchHeader struct {
	BankCode           int
	Batch              int
	OperationType      string
	ServiceType        int
	LayoutVersion      int
	RegistrationType   int
	RegistrationNumber string
	Covenant           string
	Agency             string
	AgencyDV           string
	AssignorCode       string
	AssignorDV         string
	AgencyAssignorDV   string
	CompanyName        string
	FileSequence       int
	GeneratedAt        time.Time
}

func (h BatchHeader) kind() string { return layout.HeaderLote }

func (h BatchHeader) values() layout.Record {
	return layout.Record{
		"codigo_banco":              h.BankCode,
		"lote_servico":              h.Batch,
		"tipo_operacao":             h.OperationType,
		"tipo_servico":              h.ServiceType,
		"versao_layout_lote":        h.LayoutVersion,
		"codigo_inscricao":          h.RegistrationType,
		"numero_inscricao":          h.RegistrationNumber,
		"codigo_convenio":           h.Covenant,
		"agencia":                   h.Agency,
		"agencia_dv":                h.AgencyDV,
		"codigo_cedente":            h.AssignorCode,
		"codigo_cedente_dv":         h.AssignorDV,
		"agencia_mais_cedente_dv":   h.AgencyAssignorDV,
		"nome_empresa":              h.CompanyName,
		"numero_sequencial_arquivo": h.FileSequence,
		"data_geracao":              h.GeneratedAt,
	}
}

// Validate checks the header against the bank's layout.
func (h BatchHeader) Validate(set *layout.Set) error { return validate(set, h) }

// Discount is a fixed-value discount granted until Date.
type Discount struct {
	Amount decimal.Decimal
	Date   time.Time
}

// Fine is a late-payment fine charged from Date.
type Fine struct {
	Amount decimal.Decimal
	Date   time.Time
}

// SegmentP carries the economic data of a title.
type SegmentP struct {
	BankCode         int
	Batch            int
	Sequence         int
	MovementCode     int
	Agency           string
	AgencyDV         string
	AssignorCode     string
	AssignorDV       string
	AgencyAssignorDV string
	WalletModality   string
	NossoNumero      string
	Wallet           int
	RegistrationCode int
	DocumentNumber   string
	DueDate          time.Time
	Amount           decimal.Decimal
	Species          int
	Acceptance       string
	IssueDate        time.Time
	InterestCode     int
	InterestDate     time.Time
	InterestPerDay   decimal.Decimal
	Discount         *Discount
	Rebate           decimal.Decimal
	CompanyUse       string
	ProtestCode      int
	ProtestDays      int
	WriteOffCode     int
	WriteOffDays     string
}

func (s SegmentP) kind() string { return layout.SegmentoP }

func (s SegmentP) values() layout.Record {
	r := layout.Record{
		"codigo_banco":            s.BankCode,
		"lote_servico":            s.Batch,
		"numero_sequencial_lote":  s.Sequence,
		"codigo_ocorrencia":       s.MovementCode,
		"agencia":                 s.Agency,
		"agencia_dv":              s.AgencyDV,
		"codigo_cedente":          s.AssignorCode,
		"codigo_cedente_dv":       s.AssignorDV,
		"agencia_mais_cedente_dv": s.AgencyAssignorDV,
		"modalidade_carteira":     s.WalletModality,
		"nosso_numero":            s.NossoNumero,
		"codigo_carteira":         s.Wallet,
		"forma_cadastramento":     s.RegistrationCode,
		"numero_documento":        s.DocumentNumber,
		"vencimento":              s.DueDate,
		"valor_titulo":            s.Amount,
		"especie":                 s.Species,
		"aceite":                  s.Acceptance,
		"data_emissao":            s.IssueDate,
		"codigo_juros_mora":       s.InterestCode,
		"data_juros_mora":         s.InterestDate,
		"valor_juros_mora":        s.InterestPerDay,
		"valor_abatimento":        s.Rebate,
		"uso_empresa":             s.CompanyUse,
		"codigo_protesto":         s.ProtestCode,
		"prazo_protesto":          s.ProtestDays,
		"codigo_baixa":            s.WriteOffCode,
		"prazo_baixa":             s.WriteOffDays,
	}
	if s.Discount != nil {
		r["codigo_desconto_1"] = 1
		r["data_desconto_1"] = s.Discount.Date
		r["valor_desconto_1"] = s.Discount.Amount
	} else {
		r["codigo_desconto_1"] = 0
		r["data_desconto_1"] = int64(0)
		r["valor_desconto_1"] = decimal.Zero
	}
	return r
}

// Validate checks the segment against the bank's layout.
func (s SegmentP) Validate(set *layout.Set) error { return validate(set, s) }

// Party identifies a payer or drawer by tax id type and number.
type Party struct {
	RegistrationType   int
	RegistrationNumber string
	Name               string
}

// SegmentQ carries payer identity and address, plus the optional drawer.
type SegmentQ struct {
	BankCode     int
	Batch        int
	Sequence     int
	MovementCode int
	Payer        Party
	Street       string
	District     string
	ZipCode      string
	City         string
	State        string
	Drawer       Party
}

func (s SegmentQ) kind() string { return layout.SegmentoQ }

func (s SegmentQ) values() layout.Record {
	return layout.Record{
		"codigo_banco":             s.BankCode,
		"lote_servico":             s.Batch,
		"numero_sequencial_lote":   s.Sequence,
		"codigo_ocorrencia":        s.MovementCode,
		"sacado_codigo_inscricao":  s.Payer.RegistrationType,
		"sacado_numero_inscricao":  s.Payer.RegistrationNumber,
		"nome":                     s.Payer.Name,
		"logradouro":               s.Street,
		"bairro":                   s.District,
		"cep":                      s.ZipCode,
		"cidade":                   s.City,
		"estado":                   s.State,
		"sacador_codigo_inscricao": s.Drawer.RegistrationType,
		"sacador_numero_inscricao": s.Drawer.RegistrationNumber,
		"sacador_nome":             s.Drawer.Name,
	}
}

// Validate checks the segment against the bank's layout.
func (s SegmentQ) Validate(set *layout.Set) error { return validate(set, s) }

// SegmentR carries the fine and the payment limit date.
type SegmentR struct {
	BankCode     int
	Batch        int
	Sequence     int
	MovementCode int
	Fine         *Fine
	LimitDate    *time.Time
}

func (s SegmentR) kind() string { return layout.SegmentoR }

func (s SegmentR) values() layout.Record {
	r := layout.Record{
		"codigo_banco":           s.BankCode,
		"lote_servico":           s.Batch,
		"numero_sequencial_lote": s.Sequence,
		"codigo_ocorrencia":      s.MovementCode,
		"data_limite":            s.LimitDate,
	}
	if s.Fine != nil {
		r["codigo_multa"] = 2
		r["data_multa"] = s.Fine.Date
		r["valor_multa"] = s.Fine.Amount
	} else {
		r["codigo_multa"] = 0
		r["data_multa"] = int64(0)
		r["valor_multa"] = decimal.Zero
	}
	return r
}

// Validate checks the segment against the bank's layout.
func (s SegmentR) Validate(set *layout.Set) error { return validate(set, s) }

// Detail is one title: segments P, Q and R, always together.
type Detail struct {
	P SegmentP
	Q SegmentQ
	R SegmentR

	registered bool
}

// Registered reports whether the title was inserted as registered.
func (d *Detail) Registered() bool { return d.registered }

// Segments returns the detail's records in file order.
func (d *Detail) Segments() []Segment {
	return []Segment{d.P, d.Q, d.R}
}

// Validate checks P, Q and R in that order.
func (d *Detail) Validate(set *layout.Set) error {
	for _, s := range d.Segments() {
		if err := validate(set, s); err != nil {
			return err
		}
	}
	return nil
}

func (d *Detail) setSequence(first int) int {
	d.P.Sequence = first
	d.Q.Sequence = first + 1
	d.R.Sequence = first + 2
	return first + 3
}

// BatchTrailer closes the batch with line counts and modality totals.
type BatchTrailer struct {
	BankCode   int
	Batch      int
	LineCount  int
	Simple     Totals
	Linked     Totals
	Secured    Totals
	Discounted Totals
}

func (t BatchTrailer) kind() string { return layout.TrailerLote }

func (t BatchTrailer) values() layout.Record {
	return layout.Record{
		"codigo_banco":                    t.BankCode,
		"lote_servico":                    t.Batch,
		"qtde_registro_lote":              t.LineCount,
		"qtde_titulo_cobranca_simples":    t.Simple.Count,
		"valor_total_titulo_simples":      t.Simple.Amount,
		"qtde_titulo_cobranca_vinculada":  t.Linked.Count,
		"valor_total_titulo_vinculada":    t.Linked.Amount,
		"qtde_titulo_cobranca_caucionada": t.Secured.Count,
		"valor_total_titulo_caucionada":   t.Secured.Amount,
		"qtde_titulo_cobranca_descontada": t.Discounted.Count,
		"valor_total_titulo_descontada":   t.Discounted.Amount,
	}
}

// Validate checks the trailer against the bank's layout.
func (t BatchTrailer) Validate(set *layout.Set) error { return validate(set, t) }

// FileTrailer is the last line of a remessa.
type FileTrailer struct {
	BankCode               int
	BatchCount             int
	RecordCount            int
	ReconciliationAccounts int
}

func (t FileTrailer) kind() string { return layout.TrailerArquivo }

func (t FileTrailer) values() layout.Record {
	return layout.Record{
		"codigo_banco":            t.BankCode,
		"qtde_lotes":              t.BatchCount,
		"qtde_registros":          t.RecordCount,
		"qtde_contas_conciliacao": t.ReconciliationAccounts,
	}
}

// Validate checks the trailer against the bank's layout.
func (t FileTrailer) Validate(set *layout.Set) error { return validate(set, t) }

// Segment is any remessa record that encodes to one line.
type Segment interface {
	kind() string
	values() layout.Record
}

func validate(set *layout.Set, s Segment) error {
	_, err := encode(set, s)
	return err
}

// encode renders one line, reporting codec failures as validation errors
// naming the record kind and field.
func encode(set *layout.Set, s Segment) (string, error) {
	sc, err := set.Schema(s.kind())
	if err != nil {
		return "", err
	}
	line, err := layout.Encode(sc, s.values())
	if err != nil {
		return "", &domain.ErrValidation{
			Record:  s.kind(),
			Field:   layout.FieldName(err),
			Message: err.Error(),
			Err:     err,
		}
	}
	return line, nil
}
