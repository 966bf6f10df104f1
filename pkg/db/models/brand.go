package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Brand is one storefront sharing the catalogue and checkout backend.
type Brand struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Slug         string    `gorm:"column:slug;not null;uniqueIndex:brands_slug_key"`
	Name         string    `gorm:"column:name;not null"`
	PrimaryColor string    `gorm:"column:primary_color;not null;default:'#000000'"`
	AccentColor  string    `gorm:"column:accent_color;not null;default:'#ffffff'"`
	LogoURL      *string   `gorm:"column:logo_url"`
	BannerURL    *string   `gorm:"column:banner_url"`
	IsActive     bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (b *Brand) BeforeCreate(*gorm.DB) error {
	ensureID(&b.ID)
	return nil
}
