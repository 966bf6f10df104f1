package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/hamperhouse/storefront-backend/pkg/enums"
	"github.com/hamperhouse/storefront-backend/pkg/types"
)

// Order is a placed checkout with totals frozen at submit time.
type Order struct {
	ID                uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID            uuid.UUID             `gorm:"column:user_id;type:uuid;not null;index:orders_user_id_idx"`
	BrandSlug         string                `gorm:"column:brand_slug;not null;index:orders_brand_slug_idx"`
	Status            enums.OrderStatus     `gorm:"column:status;not null;default:'placed'"`
	ShippingAddressID uuid.UUID             `gorm:"column:shipping_address_id;type:uuid;not null"`
	ShippingAddress   types.ShippingAddress `gorm:"column:shipping_address;type:jsonb;not null"`
	Subtotal          decimal.Decimal       `gorm:"column:subtotal;type:numeric(12,2);not null"`
	TotalDiscount     decimal.Decimal       `gorm:"column:total_discount;type:numeric(12,2);not null;default:0"`
	MilestoneDiscount decimal.Decimal       `gorm:"column:milestone_discount;type:numeric(12,2);not null;default:0"`
	Shipping          decimal.Decimal       `gorm:"column:shipping;type:numeric(12,2);not null;default:0"`
	GrandTotal        decimal.Decimal       `gorm:"column:grand_total;type:numeric(12,2);not null"`
	IsFreeGiftAdded   bool                  `gorm:"column:is_free_gift_added;not null;default:false"`
	Items             []OrderItem           `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}
