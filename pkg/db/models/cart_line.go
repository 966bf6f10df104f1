package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartLine is one persisted cart row. A user has one cart per brand; the
// selected size/color are part of the line identity.
type CartLine struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID `gorm:"column:user_id;type:uuid;not null;index:cart_lines_user_brand_idx"`
	BrandSlug     string    `gorm:"column:brand_slug;not null;index:cart_lines_user_brand_idx"`
	ProductID     uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Quantity      int       `gorm:"column:quantity;not null"`
	SelectedSize  string    `gorm:"column:selected_size;not null;default:''"`
	SelectedColor string    `gorm:"column:selected_color;not null;default:''"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *CartLine) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
