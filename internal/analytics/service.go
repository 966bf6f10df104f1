// Package analytics serves back-office sales reports computed from orders.
package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hamperhouse/storefront-backend/internal/orders"
	pkgerrors "github.com/hamperhouse/storefront-backend/pkg/errors"
)

const (
	defaultWindow = 30 * 24 * time.Hour
	maxWindow     = 366 * 24 * time.Hour
)

// SalesQuery selects a brand and a half-open [From, To) window. Zero times
// default to the last 30 days.
type SalesQuery struct {
	Brand string
	From  time.Time
	To    time.Time
}

// SalesSummary is the revenue report for a brand and period.
type SalesSummary struct {
	Brand             string          `json:"brand"`
	From              time.Time       `json:"from"`
	To                time.Time       `json:"to"`
	OrderCount        int64           `json:"order_count"`
	GrossRevenue      decimal.Decimal `json:"gross_revenue"`
	DiscountGiven     decimal.Decimal `json:"discount_given"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	FreeGiftsGranted  int64           `json:"free_gifts_granted"`
}

type salesReader interface {
	SalesSummary(ctx context.Context, brand string, from, to time.Time) (orders.SalesSummaryRow, error)
}

// Service provides sales reports.
type Service interface {
	Sales(ctx context.Context, query SalesQuery) (*SalesSummary, error)
}

type service struct {
	reader salesReader
	now    func() time.Time
}

// NewService builds an analytics service backed by the order store.
func NewService(reader salesReader) (Service, error) {
	if reader == nil {
		return nil, fmt.Errorf("sales reader required")
	}
	return &service{reader: reader, now: time.Now}, nil
}

func (s *service) Sales(ctx context.Context, query SalesQuery) (*SalesSummary, error) {
	brand := strings.ToLower(strings.TrimSpace(query.Brand))
	if brand == "" {
		return nil, pkgerrors.NewValidation("brand is required", pkgerrors.FieldErrors{"brand": "is required"})
	}
	from, to, err := s.window(query.From, query.To)
	if err != nil {
		return nil, err
	}

	row, err := s.reader.SalesSummary(ctx, brand, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sales summary")
	}
	gross, err := decimal.NewFromString(row.Gross)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parse gross revenue")
	}
	discount, err := decimal.NewFromString(row.Discount)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parse discount")
	}

	aov := decimal.Zero
	if row.OrderCount > 0 {
		aov = gross.Div(decimal.NewFromInt(row.OrderCount)).Round(2)
	}
	return &SalesSummary{
		Brand:             brand,
		From:              from,
		To:                to,
		OrderCount:        row.OrderCount,
		GrossRevenue:      gross.Round(2),
		DiscountGiven:     discount.Round(2),
		AverageOrderValue: aov,
		FreeGiftsGranted:  row.FreeGifts,
	}, nil
}

func (s *service) window(from, to time.Time) (time.Time, time.Time, error) {
	if to.IsZero() {
		to = s.now()
	}
	if from.IsZero() {
		from = to.Add(-defaultWindow)
	}
	from, to = from.UTC(), to.UTC()
	if !from.Before(to) {
		return time.Time{}, time.Time{}, pkgerrors.NewValidation("invalid date range", pkgerrors.FieldErrors{"from": "must be before to"})
	}
	if to.Sub(from) > maxWindow {
		return time.Time{}, time.Time{}, pkgerrors.NewValidation("invalid date range", pkgerrors.FieldErrors{"to": "range must not exceed 366 days"})
	}
	return from, to, nil
}
