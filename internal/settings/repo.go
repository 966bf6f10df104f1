package settings

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hamperhouse/storefront-backend/pkg/db/models"
)

// Repository persists pricing_settings rows.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Find loads the row of brand. The platform row uses an empty slug.
func (r *Repository) Find(ctx context.Context, brand string) (*models.PricingSetting, error) {
	var row models.PricingSetting
	if err := r.db.WithContext(ctx).Where("brand_slug = ?", brand).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Upsert inserts or replaces the row of row.BrandSlug.
func (r *Repository) Upsert(ctx context.Context, row *models.PricingSetting) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "brand_slug"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"free_shipping_threshold",
			"extra_discount_threshold",
			"extra_discount_percentage",
			"free_gift_threshold",
			"flat_shipping_cost",
			"updated_at",
		}),
	}).Create(row).Error
}
