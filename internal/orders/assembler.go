package orders

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hamperhouse/storefront-backend/internal/pricing"
	pkgerrors "github.com/hamperhouse/storefront-backend/pkg/errors"
)

// SubmissionItem is one billable line of an order request.
type SubmissionItem struct {
	ProductID uuid.UUID       `json:"productId" validate:"required"`
	Quantity  int             `json:"quantity" validate:"min=1"`
	Price     decimal.Decimal `json:"price"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
}

// Submission is the order-creation request body.
type Submission struct {
	Items             []SubmissionItem `json:"items" validate:"required,min=1,dive"`
	Subtotal          decimal.Decimal  `json:"subtotal"`
	ShippingAddressID string           `json:"shippingAddressId" validate:"required"`
	IsFreeGiftAdded   bool             `json:"isFreeGiftAdded"`
}

// Assemble turns the priced cart into a Submission. Synthetic gift lines are
// never billed and prices are taken from the lines as they are now. An empty
// address id fails before anything is sent.
func Assemble(lines []pricing.DisplayLine, addressID string, totals pricing.Totals) (Submission, error) {
	addressID = strings.TrimSpace(addressID)
	if addressID == "" {
		return Submission{}, pkgerrors.NewValidation("please select a shipping address", pkgerrors.FieldErrors{
			"shippingAddressId": "is required",
		})
	}

	billable := pricing.BillableLines(lines)
	items := make([]SubmissionItem, 0, len(billable))
	for _, line := range billable {
		items = append(items, SubmissionItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     line.SellingPrice,
			Size:      line.Size,
			Color:     line.Color,
		})
	}

	return Submission{
		Items:             items,
		Subtotal:          totals.Subtotal,
		ShippingAddressID: addressID,
		IsFreeGiftAdded:   totals.IsFreeGiftIncluded,
	}, nil
}
