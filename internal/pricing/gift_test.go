package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestInjectFreeGiftWhenEligible(t *testing.T) {
	t.Parallel()

	gift := GiftProduct{ID: uuid.New(), Name: "Complimentary gift"}
	lines := []Line{line(600, 2, nil)}
	totals := Calculate(lines, testSettings())

	display := InjectFreeGift(lines, totals, gift)
	if len(display) != 2 {
		t.Fatalf("expected gift line appended, got %d lines", len(display))
	}
	last := display[1]
	if !last.IsFreeGift || last.ProductID != gift.ID || last.Quantity != 1 || !last.SellingPrice.IsZero() {
		t.Fatalf("unexpected gift line %+v", last)
	}
	if display[0].IsFreeGift {
		t.Fatal("original line must not be flagged as gift")
	}
}

func TestInjectFreeGiftWhenNotEligible(t *testing.T) {
	t.Parallel()

	lines := []Line{line(100, 1, nil)}
	totals := Calculate(lines, testSettings())

	display := InjectFreeGift(lines, totals, GiftProduct{ID: uuid.New()})
	if len(display) != 1 {
		t.Fatalf("expected list unchanged, got %d lines", len(display))
	}
}

func TestBillableLinesDropsGift(t *testing.T) {
	t.Parallel()

	lines := []Line{line(600, 2, nil)}
	totals := Calculate(lines, testSettings())
	display := InjectFreeGift(lines, totals, GiftProduct{ID: uuid.New()})

	billable := BillableLines(display)
	if len(billable) != 1 || billable[0].ProductID != lines[0].ProductID {
		t.Fatalf("expected only the original line, got %+v", billable)
	}

	recomputed := Calculate(billable, testSettings())
	if !recomputed.Subtotal.Equal(decimal.NewFromInt(1200)) {
		t.Fatalf("gift must not change subtotal, got %s", recomputed.Subtotal)
	}
}
