// Package retorno decodes CNAB240 retorno files sent back by the bank and
// exposes the business view of every reported title.
package retorno

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/boddenberg/pj-cnab-bfa-go/internal/cnab/bank"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/cnab/layout"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/cnab/text"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/domain"
)

// Record types, position 8 of every line.
const (
	recordFileHeader   = '0'
	recordBatchHeader  = '1'
	recordDetail       = '3'
	recordBatchTrailer = '5'
	recordFileTrailer  = '9'
)

// Batch is one lote of a retorno.
type Batch struct {
	Header  layout.Record
	Trailer layout.Record
	Details []*Detail

	segments int
}

// File is a decoded retorno.
type File struct {
	Bank     bank.Bank
	Encoding text.Encoding
	Header   layout.Record
	Trailer  layout.Record
	Batches  []*Batch

	covenant string
}

// Details returns every detail of every batch, in file order.
func (f *File) Details() []*Detail {
	var out []*Detail
	for _, b := range f.Batches {
		out = append(out, b.Details...)
	}
	return out
}

// CovenantCode is the covenant used to strip Banco do Brasil nosso-números.
func (f *File) CovenantCode() string { return f.covenant }

// GeneratedAt is the file generation date from the header.
func (f *File) GeneratedAt() (time.Time, bool) { return DecodeDate(f.Header["data_geracao"]) }

// FileSequence is the bank's sequential file number.
func (f *File) FileSequence() int { return int(f.Header.Int("numero_sequencial_arquivo")) }

type options struct {
	covenant    string
	hasCovenant bool
}

// Option customizes Parse.
type Option func(*options)

// WithCovenantCode overrides the covenant code read from the file header.
func WithCovenantCode(code string) Option {
	return func(o *options) {
		o.covenant = strings.TrimSpace(code)
		o.hasCovenant = true
	}
}

// Parse decodes a retorno. Input in ISO-8859-1 is converted to UTF-8 first.
// Lines may end in CRLF or LF; trailing blank lines are ignored. Parsing
// fails on the first malformed line, on sequence numbers that are not
// contiguous from 1 within a batch, and on trailer counts that disagree
// with the lines read.
func Parse(data []byte, opts ...Option) (*File, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	utf, enc, err := text.ToUTF8(data)
	if err != nil {
		return nil, err
	}
	lines := splitLines(string(utf))
	if len(lines) == 0 {
		return nil, &domain.ErrValidation{Field: "file", Message: "empty retorno"}
	}

	p := &parser{lines: lines}
	if err := p.start(); err != nil {
		return nil, err
	}
	f := &File{Bank: p.bank, Encoding: enc}
	if err := p.run(f, o); err != nil {
		return nil, err
	}
	return f, nil
}

func splitLines(s string) []string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

type parser struct {
	lines []string
	bank  bank.Bank
	set   *layout.Set
}

func (p *parser) start() error {
	first := p.lines[0]
	if len(first) < 3 {
		return lineError(1, layout.HeaderArquivo, "", "line too short")
	}
	code, err := strconv.Atoi(first[:3])
	if err != nil {
		return lineError(1, layout.HeaderArquivo, "codigo_banco", "not numeric")
	}
	b, err := bank.Lookup(code)
	if err != nil {
		return err
	}
	set, err := layout.Load(code)
	if err != nil {
		return err
	}
	p.bank, p.set = b, set
	return nil
}

func (p *parser) decode(n int, kind, line string) (layout.Record, error) {
	rec, err := layout.Decode(p.set.MustSchema(kind), line)
	if err != nil {
		return nil, &domain.ErrValidation{
			Record:  kind,
			Field:   layout.FieldName(err),
			Message: fmt.Sprintf("line %d: %v", n, err),
			Err:     err,
		}
	}
	return rec, nil
}

func (p *parser) run(f *File, o options) error {
	var (
		batch   *Batch
		current *Detail
		total   int
	)

	for i, line := range p.lines {
		n := i + 1
		if utf8.RuneCountInString(line) != layout.LineLength {
			return lineError(n, "", "", fmt.Sprintf("expected %d positions, got %d", layout.LineLength, utf8.RuneCountInString(line)))
		}
		if f.Trailer != nil {
			return lineError(n, layout.TrailerArquivo, "", "content after file trailer")
		}
		total++

		switch line[7] {
		case recordFileHeader:
			if n != 1 {
				return lineError(n, layout.HeaderArquivo, "", "file header out of place")
			}
			rec, err := p.decode(n, layout.HeaderArquivo, line)
			if err != nil {
				return err
			}
			f.Header = rec
			f.covenant = headerCovenant(p.bank.Code, rec.String("codigo_convenio"))
			if o.hasCovenant {
				f.covenant = o.covenant
			}

		case recordBatchHeader:
			if f.Header == nil || batch != nil {
				return lineError(n, layout.HeaderLote, "", "batch header out of place")
			}
			rec, err := p.decode(n, layout.HeaderLote, line)
			if err != nil {
				return err
			}
			batch = &Batch{Header: rec}
			current = nil

		case recordDetail:
			if batch == nil {
				return lineError(n, "", "", "detail outside a batch")
			}
			batch.segments++
			seq, err := strconv.Atoi(line[8:13])
			if err != nil || seq != batch.segments {
				return lineError(n, "", "numero_sequencial_lote", fmt.Sprintf("expected sequence %d, got %q", batch.segments, line[8:13]))
			}
			d, err := p.segment(n, line, batch, current, f.covenant)
			if err != nil {
				return err
			}
			current = d

		case recordBatchTrailer:
			if batch == nil {
				return lineError(n, layout.TrailerLote, "", "batch trailer without batch")
			}
			rec, err := p.decode(n, layout.TrailerLote, line)
			if err != nil {
				return err
			}
			if current != nil && current.u == nil {
				return lineError(n, layout.SegmentoU, "", "segment T without segment U")
			}
			if got, want := int(rec.Int("qtde_registro_lote")), batch.segments+2; got != want {
				return lineError(n, layout.TrailerLote, "qtde_registro_lote", fmt.Sprintf("reports %d lines, batch has %d", got, want))
			}
			batch.Trailer = rec
			f.Batches = append(f.Batches, batch)
			batch, current = nil, nil

		case recordFileTrailer:
			if batch != nil {
				return lineError(n, layout.TrailerArquivo, "", "file trailer inside an open batch")
			}
			rec, err := p.decode(n, layout.TrailerArquivo, line)
			if err != nil {
				return err
			}
			if got := int(rec.Int("qtde_lotes")); got != len(f.Batches) {
				return lineError(n, layout.TrailerArquivo, "qtde_lotes", fmt.Sprintf("reports %d batches, file has %d", got, len(f.Batches)))
			}
			if got := int(rec.Int("qtde_registros")); got != total {
				return lineError(n, layout.TrailerArquivo, "qtde_registros", fmt.Sprintf("reports %d records, file has %d", got, total))
			}
			f.Trailer = rec

		default:
			return lineError(n, "", "tipo_registro", fmt.Sprintf("unknown record type %q", line[7]))
		}
	}

	if f.Header == nil {
		return lineError(1, layout.HeaderArquivo, "", "missing file header")
	}
	if f.Trailer == nil {
		return lineError(len(p.lines), layout.TrailerArquivo, "", "missing file trailer")
	}
	return nil
}

// segment decodes one detail line and attaches it to the detail being
// assembled. T opens a detail, U completes it and W optionally follows U.
// Other segments are counted for sequencing and otherwise skipped.
func (p *parser) segment(n int, line string, batch *Batch, current *Detail, covenant string) (*Detail, error) {
	switch line[13] {
	case 'T':
		if current != nil && current.u == nil {
			return nil, lineError(n, layout.SegmentoT, "", "segment T without segment U")
		}
		rec, err := p.decode(n, layout.SegmentoT, line)
		if err != nil {
			return nil, err
		}
		d := &Detail{
			bank:     p.bank.Code,
			covenant: covenant,
			t:        rec,
			tSchema:  p.set.MustSchema(layout.SegmentoT),
			uSchema:  p.set.MustSchema(layout.SegmentoU),
			wSchema:  p.set.MustSchema(layout.SegmentoW),
		}
		batch.Details = append(batch.Details, d)
		return d, nil

	case 'U':
		if current == nil || current.u != nil {
			return nil, lineError(n, layout.SegmentoU, "", "segment U without segment T")
		}
		rec, err := p.decode(n, layout.SegmentoU, line)
		if err != nil {
			return nil, err
		}
		current.u = rec
		return current, nil

	case 'W':
		if current == nil || current.u == nil || current.w != nil {
			return nil, lineError(n, layout.SegmentoW, "", "segment W out of place")
		}
		rec, err := p.decode(n, layout.SegmentoW, line)
		if err != nil {
			return nil, err
		}
		current.w = rec
		return current, nil
	}

	if current != nil && current.u == nil {
		return nil, lineError(n, layout.SegmentoU, "", "segment T without segment U")
	}
	return current, nil
}

// headerCovenant extracts the covenant from the file header. Banco do Brasil
// packs the 9-digit covenant ahead of product and wallet codes in the same
// slot, and prefixes nosso-números with it without leading zeros.
func headerCovenant(bankCode int, raw string) string {
	raw = strings.TrimSpace(raw)
	if bankCode != bank.BancoDoBrasil {
		return raw
	}
	if len(raw) > 9 {
		raw = raw[:9]
	}
	return strings.TrimLeft(raw, "0")
}

func lineError(n int, record, field, msg string) error {
	if field == "" {
		field = "line"
	}
	return &domain.ErrValidation{Record: record, Field: field, Message: fmt.Sprintf("line %d: %s", n, msg)}
}
