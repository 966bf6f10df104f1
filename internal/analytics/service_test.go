package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hamperhouse/storefront-backend/internal/orders"
	pkgerrors "github.com/hamperhouse/storefront-backend/pkg/errors"
)

type fakeSalesReader struct {
	brand    string
	from, to time.Time
	row      orders.SalesSummaryRow
	err      error
}

func (f *fakeSalesReader) SalesSummary(_ context.Context, brand string, from, to time.Time) (orders.SalesSummaryRow, error) {
	f.brand, f.from, f.to = brand, from, to
	return f.row, f.err
}

func TestSalesComputesAverageOrderValue(t *testing.T) {
	fake := &fakeSalesReader{row: orders.SalesSummaryRow{OrderCount: 3, Gross: "2500.00", Discount: "310.5", FreeGifts: 1}}
	srv := &service{reader: fake, now: time.Now}
	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	summary, err := srv.Sales(context.Background(), SalesQuery{Brand: " Roses ", From: from, To: to})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fake.brand != "roses" || !fake.from.Equal(from) || !fake.to.Equal(to) {
		t.Fatalf("unexpected query %s %v %v", fake.brand, fake.from, fake.to)
	}
	if !summary.AverageOrderValue.Equal(decimal.RequireFromString("833.33")) {
		t.Fatalf("unexpected aov %s", summary.AverageOrderValue)
	}
	if !summary.DiscountGiven.Equal(decimal.RequireFromString("310.50")) || summary.FreeGiftsGranted != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestSalesDefaultsToLastThirtyDays(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	fake := &fakeSalesReader{row: orders.SalesSummaryRow{Gross: "0", Discount: "0"}}
	srv := &service{reader: fake, now: func() time.Time { return now }}

	summary, err := srv.Sales(context.Background(), SalesQuery{Brand: "roses"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !fake.to.Equal(now) || !fake.from.Equal(now.Add(-defaultWindow)) {
		t.Fatalf("unexpected window %v - %v", fake.from, fake.to)
	}
	if !summary.AverageOrderValue.IsZero() {
		t.Fatalf("expected zero aov without orders, got %s", summary.AverageOrderValue)
	}
}

func TestSalesRejectsBadInput(t *testing.T) {
	srv := &service{reader: &fakeSalesReader{}, now: time.Now}
	now := time.Now()

	cases := []SalesQuery{
		{Brand: ""},
		{Brand: "roses", From: now, To: now.Add(-time.Hour)},
		{Brand: "roses", From: now.Add(-400 * 24 * time.Hour), To: now},
	}
	for _, q := range cases {
		if _, err := srv.Sales(context.Background(), q); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("expected validation error for %+v, got %v", q, err)
		}
	}
}

func TestSalesPropagatesReaderError(t *testing.T) {
	srv := &service{reader: &fakeSalesReader{err: errors.New("boom")}, now: time.Now}
	_, err := srv.Sales(context.Background(), SalesQuery{Brand: "roses"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}
