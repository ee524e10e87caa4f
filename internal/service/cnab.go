// Package service contains the application services behind the HTTP API and
// the command-line tool: remessa generation, retorno decoding and JWT auth.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/boddenberg/pj-cnab-bfa-go/internal/cnab/bank"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/cnab/remessa"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/cnab/retorno"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/domain"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/infra/observability"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/port"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("service/cnab")

const (
	requestDateLayout = "2006-01-02"
	retornoCacheName  = "retorno"
)

// CnabService generates remessa files and decodes retorno files.
type CnabService struct {
	archive  port.RemessaArchive
	retornos port.Cache[*domain.RetornoResult]
	bulkhead *resilience.Bulkhead
	metrics  *observability.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewCnabService creates the service. The bulkhead bounds how many retorno
// files DecodeRetornoBatch decodes at once.
func NewCnabService(
	archive port.RemessaArchive,
	retornos port.Cache[*domain.RetornoResult],
	bulkhead *resilience.Bulkhead,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *CnabService {
	return &CnabService{
		archive:  archive,
		retornos: retornos,
		bulkhead: bulkhead,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// ============================================================
// Remessa
// POST /v1/remessas
// ============================================================

// GenerateRemessa builds, renders and archives a remessa.
func (s *CnabService) GenerateRemessa(ctx context.Context, req *domain.RemessaRequest) (*domain.RemessaResult, error) {
	ctx, span := tracer.Start(ctx, "CnabService.GenerateRemessa")
	defer span.End()
	span.SetAttributes(
		attribute.Int("remessa.bank", req.Bank),
		attribute.Int("remessa.titles", len(req.Titles)),
	)

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("generate_remessa", time.Since(start))
	}()

	content, f, err := s.build(req)
	if err != nil {
		s.rejected(err, zap.Int("bank", req.Bank))
		return nil, err
	}

	bt := f.BatchTrailer()
	total := bt.Linked.Amount
	if bt.Simple.Count > 0 {
		total = bt.Simple.Amount
	}

	archive := &domain.RemessaArchive{
		ID:          uuid.NewString(),
		Bank:        f.Bank().Code,
		Variant:     f.Variant(),
		Titles:      f.CountDetails(),
		Records:     f.FileTrailer().RecordCount,
		TotalAmount: total,
		CreatedAt:   s.now().UTC(),
		Content:     content,
	}
	if err := s.archive.Store(ctx, archive); err != nil {
		s.metrics.IncrExternalError("archive")
		s.logger.Error("remessa archive failed", zap.String("id", archive.ID), zap.Error(err))
		return nil, err
	}

	bankLabel := fmt.Sprintf("%03d", archive.Bank)
	s.metrics.RecordRemessa(bankLabel, archive.Titles)
	s.logger.Info("remessa generated",
		zap.String("id", archive.ID),
		zap.String("bank", bankLabel),
		zap.Int("titles", archive.Titles),
		zap.Int("records", archive.Records),
	)

	return &domain.RemessaResult{
		ID:          archive.ID,
		Bank:        archive.Bank,
		BankName:    f.Bank().Name,
		Variant:     archive.Variant,
		Titles:      archive.Titles,
		Records:     archive.Records,
		TotalAmount: archive.TotalAmount,
		CreatedAt:   archive.CreatedAt,
		Content:     content,
	}, nil
}

// BuildRemessa configures a remessa file from a request and inserts every
// title, without rendering it.
func BuildRemessa(req *domain.RemessaRequest) (*remessa.File, error) {
	f, err := remessa.New(req.Bank, req.Variant)
	if err != nil {
		return nil, err
	}
	if err := f.Configure(configParams(req.Config)); err != nil {
		return nil, err
	}
	for i, tr := range req.Titles {
		t, err := titleFromRequest(tr)
		if err != nil {
			return nil, indexed(err, i)
		}
		if err := f.InsertDetail(t); err != nil {
			return nil, indexed(err, i)
		}
	}
	return f, nil
}

func (s *CnabService) build(req *domain.RemessaRequest) (string, *remessa.File, error) {
	f, err := BuildRemessa(req)
	if err != nil {
		return "", nil, err
	}
	content, err := f.Render()
	if err != nil {
		return "", nil, err
	}
	return content, f, nil
}

// GetRemessa returns an archived remessa.
func (s *CnabService) GetRemessa(ctx context.Context, id string) (*domain.RemessaArchive, error) {
	ctx, span := tracer.Start(ctx, "CnabService.GetRemessa")
	defer span.End()
	span.SetAttributes(attribute.String("remessa.id", id))

	a, err := s.archive.Get(ctx, id)
	if err != nil {
		var nf *domain.ErrNotFound
		if !errors.As(err, &nf) {
			s.metrics.IncrExternalError("archive")
		}
		return nil, err
	}
	return a, nil
}

// ============================================================
// Retorno
// POST /v1/retornos
// ============================================================

// DecodeRetorno decodes one retorno file. Results are cached by content
// hash and covenant override.
func (s *CnabService) DecodeRetorno(ctx context.Context, name string, data []byte, covenant string) (*domain.RetornoResult, error) {
	_, span := tracer.Start(ctx, "CnabService.DecodeRetorno")
	defer span.End()
	span.SetAttributes(attribute.String("retorno.name", name), attribute.Int("retorno.bytes", len(data)))

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("decode_retorno", time.Since(start))
	}()

	key := retornoKey(data, covenant)
	if cached, ok := s.retornos.Get(key); ok {
		s.metrics.IncrCacheHit(retornoCacheName)
		out := *cached
		out.Name = name
		return &out, nil
	}
	s.metrics.IncrCacheMiss(retornoCacheName)

	var opts []retorno.Option
	if covenant != "" {
		opts = append(opts, retorno.WithCovenantCode(covenant))
	}
	f, err := retorno.Parse(data, opts...)
	if err != nil {
		s.rejected(err, zap.String("name", name))
		return nil, err
	}

	result := RetornoView(f)
	s.retornos.Set(key, result)
	s.metrics.IncrRetorno(fmt.Sprintf("%03d", f.Bank.Code))
	s.logger.Info("retorno decoded",
		zap.String("name", name),
		zap.Int("bank", f.Bank.Code),
		zap.String("encoding", f.Encoding.String()),
		zap.Int("details", result.Totals.Details),
	)

	out := *result
	out.Name = name
	return &out, nil
}

// DecodeRetornoBatch decodes several files in parallel, bounded by the
// service bulkhead. A file that fails to decode yields an error entry; only
// cancellation fails the whole batch. Results keep the input order.
func (s *CnabService) DecodeRetornoBatch(ctx context.Context, files []domain.RetornoFile) ([]domain.RetornoBatchResult, error) {
	ctx, span := tracer.Start(ctx, "CnabService.DecodeRetornoBatch")
	defer span.End()
	span.SetAttributes(attribute.Int("retorno.files", len(files)))

	results := make([]domain.RetornoBatchResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := s.bulkhead.Acquire(gctx); err != nil {
				return err
			}
			defer s.bulkhead.Release()

			results[i].Name = file.Name
			r, err := s.DecodeRetorno(gctx, file.Name, file.Data, file.Covenant)
			if err != nil {
				results[i].Error = err.Error()
				return nil
			}
			results[i].Result = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// RetornoView maps a decoded retorno to its API view.
func RetornoView(f *retorno.File) *domain.RetornoResult {
	r := &domain.RetornoResult{
		Bank:         f.Bank.Code,
		BankName:     f.Bank.Name,
		Encoding:     f.Encoding.String(),
		Covenant:     f.CovenantCode(),
		GeneratedAt:  formatDate(f.GeneratedAt()),
		FileSequence: f.FileSequence(),
		Batches:      len(f.Batches),
		Details:      []domain.RetornoDetailView{},
		Totals: domain.RetornoTotals{
			Title:    decimal.Zero,
			Received: decimal.Zero,
			Tariffs:  decimal.Zero,
		},
	}

	for _, d := range f.Details() {
		v := domain.RetornoDetailView{
			Sequence:           d.SequenceNumber(),
			Movement:           d.Code(),
			MovementName:       d.MovementName(),
			WriteOff:           d.IsWriteOff(),
			WriteOffRejected:   d.IsWriteOffRejected(),
			NossoNumero:        d.NossoNumero(),
			PayerName:          d.PayerName(),
			PayerDocument:      d.PayerDocument(),
			DueDate:            formatDate(d.DueDate()),
			CreditDate:         formatDate(d.CreditDate()),
			OccurrenceDate:     formatDate(d.OccurrenceDate()),
			TitleValue:         d.TitleValue(),
			PaidValue:          d.PaidValue(),
			ReceivedValue:      d.ReceivedValue(),
			TariffValue:        d.TariffValue(),
			InterestAndFine:    d.InterestAndFineValue(),
			DiscountValue:      d.DiscountValue(),
			RebateValue:        d.RebateValue(),
			IOFValue:           d.IOFValue(),
			OtherExpensesValue: d.OtherExpensesValue(),
			OtherCreditsValue:  d.OtherCreditsValue(),
			Segments:           d.SegmentCount(),
		}
		if doc, ok := d.DocumentNumber(); ok {
			v.DocumentNumber = doc
		}
		if w, ok := d.Wallet(); ok {
			v.Wallet = w
		}
		if reason, ok := d.ReasonName(); ok {
			v.Reason = d.ReasonCode()
			v.ReasonName = reason
		}

		r.Details = append(r.Details, v)
		r.Totals.Details++
		if v.WriteOff {
			r.Totals.WriteOffs++
		}
		if v.WriteOffRejected {
			r.Totals.Rejected++
		}
		r.Totals.Title = r.Totals.Title.Add(v.TitleValue)
		r.Totals.Received = r.Totals.Received.Add(v.ReceivedValue)
		r.Totals.Tariffs = r.Totals.Tariffs.Add(v.TariffValue)
	}
	return r
}

// ============================================================
// Banks
// GET /v1/banks
// ============================================================

// Banks lists every supported bank with its named layout variants.
func (s *CnabService) Banks() []domain.BankView {
	banks := bank.List()
	out := make([]domain.BankView, 0, len(banks))
	for _, b := range banks {
		out = append(out, domain.BankView{Code: b.Code, Name: b.Name, Variants: bank.Variants(b.Code)})
	}
	return out
}

// ============================================================
// Internal helpers
// ============================================================

// rejected logs and counts an input rejected by the CNAB layer.
func (s *CnabService) rejected(err error, fields ...zap.Field) {
	var (
		validation *domain.ErrValidation
		config     *domain.ErrConfiguration
	)
	switch {
	case errors.As(err, &validation):
		s.metrics.IncrValidationFailure(validation.Record)
	case errors.As(err, &config):
		s.metrics.IncrValidationFailure("configuration")
	default:
		s.metrics.IncrValidationFailure("")
	}
	s.logger.Warn("cnab input rejected", append(fields, zap.Error(err))...)
}

// configParams converts dates given as text for data_* keys. Values that
// do not parse are passed through so Configure reports the type error.
func configParams(in map[string]any) remessa.Params {
	out := make(remessa.Params, len(in))
	for k, v := range in {
		out[k] = v
		if !strings.HasPrefix(k, "data_") {
			continue
		}
		if s, ok := v.(string); ok {
			if t, err := parseRequestDate(s); err == nil && !t.IsZero() {
				out[k] = t
			}
		}
	}
	return out
}

func titleFromRequest(r domain.TitleRequest) (remessa.Title, error) {
	t := remessa.Title{
		NossoNumero:    r.NossoNumero,
		Installment:    r.Installment,
		WalletModality: r.WalletModality,
		Registered:     r.Registered,
		MovementCode:   r.MovementCode,
		DocumentNumber: r.DocumentNumber,
		Amount:         r.Amount,
		Species:        r.Species,
		Acceptance:     r.Acceptance,
		InterestCode:   r.InterestCode,
		InterestPerDay: r.InterestPerDay,
		WriteOffDays:   r.WriteOffDays,
		ThirdParty:     r.ThirdParty,
		Payer: remessa.Payer{
			Name:            r.Payer.Name,
			CompanyTaxID:    r.Payer.CNPJ,
			IndividualTaxID: r.Payer.CPF,
			Street:          r.Payer.Street,
			District:        r.Payer.District,
			ZipCode:         r.Payer.ZipCode,
			City:            r.Payer.City,
			State:           r.Payer.State,
		},
	}

	var err error
	if t.DueDate, err = dateField("due_date", r.DueDate); err != nil {
		return t, err
	}
	if t.IssueDate, err = dateField("issue_date", r.IssueDate); err != nil {
		return t, err
	}
	if r.LimitDate != "" {
		d, err := dateField("limit_date", r.LimitDate)
		if err != nil {
			return t, err
		}
		t.LimitDate = &d
	}
	if r.Discount != nil {
		d, err := dateField("discount.date", r.Discount.Date)
		if err != nil {
			return t, err
		}
		t.Discount = &remessa.Discount{Amount: r.Discount.Amount, Date: d}
	}
	if r.Fine != nil {
		d, err := dateField("fine.date", r.Fine.Date)
		if err != nil {
			return t, err
		}
		t.Fine = &remessa.Fine{Amount: r.Fine.Amount, Date: d}
	}
	return t, nil
}

func dateField(field, value string) (time.Time, error) {
	t, err := parseRequestDate(value)
	if err != nil {
		return time.Time{}, &domain.ErrValidation{Field: field, Message: "expected date as YYYY-MM-DD", Err: err}
	}
	return t, nil
}

// parseRequestDate accepts YYYY-MM-DD or RFC 3339. Empty text is the zero time.
func parseRequestDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(requestDateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// indexed prefixes a request-level validation field with the title index.
func indexed(err error, i int) error {
	var v *domain.ErrValidation
	if errors.As(err, &v) && v.Record == "" {
		field := "titles[" + strconv.Itoa(i) + "]"
		if v.Field != "" {
			field += "." + v.Field
		}
		return &domain.ErrValidation{Field: field, Message: v.Message, Err: v.Err}
	}
	return err
}

func retornoKey(data []byte, covenant string) string {
	h := sha256.New()
	h.Write(data)
	h.Write([]byte{0})
	h.Write([]byte(covenant))
	return hex.EncodeToString(h.Sum(nil))
}

func formatDate(t time.Time, ok bool) string {
	if !ok {
		return ""
	}
	return t.Format(requestDateLayout)
}
