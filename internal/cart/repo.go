package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hamperhouse/storefront-backend/pkg/db/models"
)

// Repository exposes persistence operations for cart lines.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// ListLines returns the lines of one brand cart in insertion order.
func (r *Repository) ListLines(ctx context.Context, userID uuid.UUID, brand string) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND brand_slug = ?", userID, brand).
		Order("created_at ASC").
		Order("id ASC").
		Find(&lines).Error
	return lines, err
}

func (r *Repository) scoped(ctx context.Context, key LineKey) *gorm.DB {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND brand_slug = ?", key.UserID, key.Brand).
		Where("product_id = ? AND selected_size = ? AND selected_color = ?", key.ProductID, key.Size, key.Color)
}

// FindLine loads a single line by its identity.
func (r *Repository) FindLine(ctx context.Context, key LineKey) (*models.CartLine, error) {
	var line models.CartLine
	if err := r.scoped(ctx, key).First(&line).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

// SaveLine inserts the line or updates its quantity when it already exists.
func (r *Repository) SaveLine(ctx context.Context, line *models.CartLine) error {
	return r.db.WithContext(ctx).Save(line).Error
}

// DeleteLine removes one line; deleting a missing line is not an error.
func (r *Repository) DeleteLine(ctx context.Context, key LineKey) error {
	return r.scoped(ctx, key).Delete(&models.CartLine{}).Error
}

// Clear removes every line of one brand cart.
func (r *Repository) Clear(ctx context.Context, userID uuid.UUID, brand string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND brand_slug = ?", userID, brand).
		Delete(&models.CartLine{}).Error
}

// PurgeUntouchedSince deletes cart lines not updated since cutoff.
func (r *Repository) PurgeUntouchedSince(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("updated_at < ?", cutoff).
		Delete(&models.CartLine{})
	return res.RowsAffected, res.Error
}
