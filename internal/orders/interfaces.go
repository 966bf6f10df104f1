package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hamperhouse/storefront-backend/pkg/db/models"
	"github.com/hamperhouse/storefront-backend/pkg/enums"
	"github.com/hamperhouse/storefront-backend/pkg/pagination"
)

// Repository defines persistence operations for orders and their items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateItems(ctx context.Context, items []models.OrderItem) error
	FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindForUser(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
	ListForUser(ctx context.Context, userID uuid.UUID, brand string, params pagination.Params) ([]models.Order, string, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus) (bool, error)
	SalesSummary(ctx context.Context, brand string, from, to time.Time) (SalesSummaryRow, error)
}

// SalesSummaryRow is the raw aggregate read for the sales report.
type SalesSummaryRow struct {
	OrderCount int64
	Gross      string
	Discount   string
	FreeGifts  int64
}
