package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/boddenberg/pj-cnab-bfa-go/internal/domain"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const remessasTable = "cnab_remessas"

// ============================================================
// Remessa archive (implements port.RemessaArchive)
// ============================================================

// remessaRow maps the cnab_remessas table columns.
type remessaRow struct {
	ID          string          `json:"id"`
	BankCode    int             `json:"bank_code"`
	Variant     string          `json:"variant"`
	Titles      int             `json:"titles"`
	Records     int             `json:"records"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Content     string          `json:"content"`
	CreatedAt   string          `json:"created_at"`
}

// Store inserts a rendered remessa.
func (c *Client) Store(ctx context.Context, a *domain.RemessaArchive) error {
	ctx, span := tracer.Start(ctx, "Supabase.StoreRemessa")
	defer span.End()
	span.SetAttributes(attribute.String("remessa.id", a.ID), attribute.Int("remessa.bank", a.Bank))

	row := remessaRow{
		ID:          a.ID,
		BankCode:    a.Bank,
		Variant:     a.Variant,
		Titles:      a.Titles,
		Records:     a.Records,
		TotalAmount: a.TotalAmount,
		Content:     a.Content,
		CreatedAt:   a.CreatedAt.UTC().Format(time.RFC3339),
	}

	err := c.execute(ctx, "supabase/remessas", func() error {
		_, err := c.doPost(ctx, remessasTable, row)
		return err
	})
	if err != nil {
		return err
	}

	c.logger.Info("remessa archived in supabase",
		zap.String("id", a.ID),
		zap.Int("bank", a.Bank),
	)
	return nil
}

// Get fetches an archived remessa by id.
func (c *Client) Get(ctx context.Context, id string) (*domain.RemessaArchive, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetRemessa")
	defer span.End()
	span.SetAttributes(attribute.String("remessa.id", id))

	var archive *domain.RemessaArchive

	err := c.execute(ctx, "supabase/remessas", func() error {
		path := fmt.Sprintf("%s?id=eq.%s&limit=1", remessasTable, url.QueryEscape(id))
		body, err := c.doRequest(ctx, http.MethodGet, path)
		if err != nil {
			return err
		}

		if body == nil || string(body) == "[]" {
			return nil
		}

		var rows []remessaRow
		if err := json.Unmarshal(body, &rows); err != nil {
			return fmt.Errorf("failed to decode remessa: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}

		r := rows[0]
		created, _ := time.Parse(time.RFC3339, r.CreatedAt)
		archive = &domain.RemessaArchive{
			ID:          r.ID,
			Bank:        r.BankCode,
			Variant:     r.Variant,
			Titles:      r.Titles,
			Records:     r.Records,
			TotalAmount: r.TotalAmount,
			CreatedAt:   created,
			Content:     r.Content,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if archive == nil {
		return nil, &domain.ErrNotFound{Resource: "remessa", ID: id}
	}
	return archive, nil
}
