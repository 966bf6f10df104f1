package checkout

import (
	"testing"

	"github.com/google/uuid"

	pkgerrors "github.com/hamperhouse/storefront-backend/pkg/errors"
)

func TestValidateStock_NoViolations(t *testing.T) {
	items := []StockValidationInput{
		{ProductID: uuid.New(), ProductName: "Exact Stock", Available: 2, Quantity: 2},
		{ProductID: uuid.New(), ProductName: "Plenty", Available: 10, Quantity: 1},
	}
	if err := ValidateStock(items); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidateStock_Violations(t *testing.T) {
	short := uuid.New()
	items := []StockValidationInput{
		{ProductID: short, ProductName: "Shortfall", Available: 3, Quantity: 5},
		{ProductID: uuid.New(), ProductName: "Fine", Available: 3, Quantity: 1},
	}
	err := ValidateStock(items)
	if err == nil {
		t.Fatal("expected error for stock violation")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details map, got %T", typed.Details())
	}
	violations, ok := details["violations"].([]StockViolationDetail)
	if !ok || len(violations) != 1 {
		t.Fatalf("expected one violation, got %#v", details["violations"])
	}
	if violations[0].ProductID != short || violations[0].RequestedQty != 5 {
		t.Fatalf("unexpected violation %+v", violations[0])
	}
}

func TestValidateStock_SumsVariantsOfSameProduct(t *testing.T) {
	id := uuid.New()
	items := []StockValidationInput{
		{ProductID: id, ProductName: "Scarf", Available: 3, Quantity: 2},
		{ProductID: id, ProductName: "Scarf", Available: 3, Quantity: 2},
	}
	err := ValidateStock(items)
	if err == nil {
		t.Fatal("expected combined quantity to exceed stock")
	}
	details := pkgerrors.As(err).Details().(map[string]any)
	violations := details["violations"].([]StockViolationDetail)
	if violations[0].RequestedQty != 4 {
		t.Fatalf("expected requested 4, got %d", violations[0].RequestedQty)
	}
}
