package checkout

import (
	"fmt"

	"github.com/google/uuid"

	pkgerrors "github.com/hamperhouse/storefront-backend/pkg/errors"
)

// StockValidationInput describes the data required to verify a line can be fulfilled.
type StockValidationInput struct {
	ProductID   uuid.UUID
	ProductName string
	Available   int
	Quantity    int
}

// StockViolationDetail exposes the data returned to callers when a validation fails.
type StockViolationDetail struct {
	ProductID    uuid.UUID `json:"product_id"`
	ProductName  string    `json:"product_name,omitempty"`
	AvailableQty int       `json:"available_qty"`
	RequestedQty int       `json:"requested_qty"`
}

// ValidateStock ensures every line's quantity is covered by stock. Lines for
// the same product are summed before comparing.
func ValidateStock(items []StockValidationInput) error {
	requested := map[uuid.UUID]int{}
	available := map[uuid.UUID]StockValidationInput{}
	order := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if _, seen := requested[item.ProductID]; !seen {
			order = append(order, item.ProductID)
			available[item.ProductID] = item
		}
		requested[item.ProductID] += item.Quantity
	}

	var violations []StockViolationDetail
	for _, id := range order {
		item := available[id]
		if requested[id] > item.Available {
			violations = append(violations, StockViolationDetail{
				ProductID:    id,
				ProductName:  item.ProductName,
				AvailableQty: item.Available,
				RequestedQty: requested[id],
			})
		}
	}
	if len(violations) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("insufficient stock for %d item(s)", len(violations))).WithDetails(map[string]any{
		"violations": violations,
	})
}
