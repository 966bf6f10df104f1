package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hamperhouse/storefront-backend/pkg/db/models"
	"github.com/hamperhouse/storefront-backend/pkg/enums"
	"github.com/hamperhouse/storefront-backend/pkg/types"
)

// PlaceOrderResult is returned to the shopper after a successful placement.
type PlaceOrderResult struct {
	OrderID uuid.UUID `json:"orderId"`
}

// OrderItemDTO is a sold line as shown in order history.
type OrderItemDTO struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
}

// OrderSummary is the list projection of an order.
type OrderSummary struct {
	ID              uuid.UUID         `json:"id"`
	Brand           string            `json:"brand"`
	Status          enums.OrderStatus `json:"status"`
	GrandTotal      decimal.Decimal   `json:"grand_total"`
	TotalItems      int               `json:"total_items"`
	IsFreeGiftAdded bool              `json:"is_free_gift_added"`
	CreatedAt       time.Time         `json:"created_at"`
}

// OrderList wraps a page of orders plus the next page cursor.
type OrderList struct {
	Orders     []OrderSummary `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// OrderDetail is the full order as frozen at placement.
type OrderDetail struct {
	OrderSummary
	ShippingAddress   types.ShippingAddress `json:"shipping_address"`
	Subtotal          decimal.Decimal       `json:"subtotal"`
	TotalDiscount     decimal.Decimal       `json:"total_discount"`
	MilestoneDiscount decimal.Decimal       `json:"milestone_discount"`
	Shipping          decimal.Decimal       `json:"shipping"`
	Items             []OrderItemDTO        `json:"items"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

func toSummary(order models.Order) OrderSummary {
	total := 0
	for _, item := range order.Items {
		total += item.Quantity
	}
	return OrderSummary{
		ID:              order.ID,
		Brand:           order.BrandSlug,
		Status:          order.Status,
		GrandTotal:      order.GrandTotal,
		TotalItems:      total,
		IsFreeGiftAdded: order.IsFreeGiftAdded,
		CreatedAt:       order.CreatedAt,
	}
}

func toDetail(order models.Order) *OrderDetail {
	items := make([]OrderItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemDTO{
			ProductID: item.ProductID,
			Name:      item.Name,
			Image:     item.Image,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Size:      item.SelectedSize,
			Color:     item.SelectedColor,
		})
	}
	return &OrderDetail{
		OrderSummary:      toSummary(order),
		ShippingAddress:   order.ShippingAddress,
		Subtotal:          order.Subtotal,
		TotalDiscount:     order.TotalDiscount,
		MilestoneDiscount: order.MilestoneDiscount,
		Shipping:          order.Shipping,
		Items:             items,
		UpdatedAt:         order.UpdatedAt,
	}
}
