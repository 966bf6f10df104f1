package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hamperhouse/storefront-backend/pkg/db/models"
)

// CartRepository defines the persistence surface required by the cart service.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	ListLines(ctx context.Context, userID uuid.UUID, brand string) ([]models.CartLine, error)
	FindLine(ctx context.Context, key LineKey) (*models.CartLine, error)
	SaveLine(ctx context.Context, line *models.CartLine) error
	DeleteLine(ctx context.Context, key LineKey) error
	Clear(ctx context.Context, userID uuid.UUID, brand string) error
}

// LineKey identifies one cart line. Size and color are part of the identity
// so the same product can appear once per variant.
type LineKey struct {
	UserID    uuid.UUID
	Brand     string
	ProductID uuid.UUID
	Size      string
	Color     string
}
