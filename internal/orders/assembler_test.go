package orders

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hamperhouse/storefront-backend/internal/pricing"
	pkgerrors "github.com/hamperhouse/storefront-backend/pkg/errors"
)

func TestAssembleRequiresAddress(t *testing.T) {
	lines := []pricing.DisplayLine{{Line: pricing.Line{ProductID: uuid.New(), Quantity: 1, SellingPrice: decimal.NewFromInt(100)}}}

	_, err := Assemble(lines, "  ", pricing.Totals{Subtotal: decimal.NewFromInt(100)})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := pkgerrors.As(err).Fields()["shippingAddressId"]; !ok {
		t.Fatalf("expected shippingAddressId field error, got %v", pkgerrors.As(err).Fields())
	}
}

func TestAssembleExcludesGiftAndSnapshotsPrice(t *testing.T) {
	productID := uuid.New()
	mrp := decimal.NewFromInt(800)
	lines := []pricing.DisplayLine{
		{Line: pricing.Line{ProductID: productID, Quantity: 2, SellingPrice: decimal.NewFromInt(550), MRP: &mrp, Size: "M", Color: "red"}},
		{Line: pricing.Line{ProductID: uuid.New(), Name: "Gift", Quantity: 1, SellingPrice: decimal.Zero}, IsFreeGift: true},
	}
	totals := pricing.Totals{Subtotal: decimal.NewFromInt(1100), IsFreeGiftIncluded: true}

	sub, err := Assemble(lines, "addr-1", totals)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sub.Items) != 1 {
		t.Fatalf("expected gift line to be dropped, got %d items", len(sub.Items))
	}
	item := sub.Items[0]
	if item.ProductID != productID || item.Quantity != 2 || item.Size != "M" || item.Color != "red" {
		t.Fatalf("unexpected item %+v", item)
	}
	if !item.Price.Equal(decimal.NewFromInt(550)) {
		t.Fatalf("expected selling price snapshot, got %s", item.Price)
	}
	if !sub.Subtotal.Equal(totals.Subtotal) || !sub.IsFreeGiftAdded || sub.ShippingAddressID != "addr-1" {
		t.Fatalf("unexpected submission %+v", sub)
	}
}
