package coupons

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hamperhouse/storefront-backend/pkg/db/models"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListActive returns active, unexpired coupons of a brand ordered by code.
func (r *Repository) ListActive(ctx context.Context, brand string, now time.Time) ([]models.Coupon, error) {
	var coupons []models.Coupon
	err := r.db.WithContext(ctx).
		Where("brand_slug = ?", brand).
		Where("is_active = ?", true).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Order("code ASC").
		Find(&coupons).Error
	return coupons, err
}

func (r *Repository) Create(ctx context.Context, coupon *models.Coupon) error {
	return r.db.WithContext(ctx).Create(coupon).Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Coupon{})
	return res.RowsAffected, res.Error
}

// DeactivateExpired flips is_active off for coupons whose expiry has passed.
func (r *Repository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Coupon{}).
		Where("is_active = ?", true).
		Where("expires_at IS NOT NULL AND expires_at <= ?", now).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}
