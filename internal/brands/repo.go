package brands

import (
	"context"

	"gorm.io/gorm"

	"github.com/hamperhouse/storefront-backend/pkg/db/models"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Brand, error) {
	var brand models.Brand
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&brand).Error; err != nil {
		return nil, err
	}
	return &brand, nil
}

func (r *Repository) Create(ctx context.Context, brand *models.Brand) error {
	return r.db.WithContext(ctx).Create(brand).Error
}

func (r *Repository) UpdateTheme(ctx context.Context, slug string, updates map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Brand{}).Where("slug = ?", slug).Updates(updates)
	return res.RowsAffected, res.Error
}
