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

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Omit("Items").Create(order).Error
}

func (r *repository) CreateItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindForUser(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListForUser returns a cursor page of the shopper's orders, newest first.
// An empty brand lists orders across brands.
func (r *repository) ListForUser(ctx context.Context, userID uuid.UUID, brand string, params pagination.Params) ([]models.Order, string, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}

	qb := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID)
	if brand != "" {
		qb = qb.Where("brand_slug = ?", brand)
	}

	var records []models.Order
	if err := pagination.NewestFirst(qb, cursor).Limit(pagination.LimitWithBuffer(params.Limit)).Find(&records).Error; err != nil {
		return nil, "", err
	}

	records, next := pagination.Trim(records, params.Limit, func(o models.Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	})
	return records, next, nil
}

// UpdateStatus is a compare-and-set on the current status.
func (r *repository) UpdateStatus(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Updates(map[string]any{"status": to, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// SalesSummary aggregates non-cancelled orders of a brand placed in [from, to).
func (r *repository) SalesSummary(ctx context.Context, brand string, from, to time.Time) (SalesSummaryRow, error) {
	var row struct {
		OrderCount int64
		Gross      *string
		Discount   *string
		FreeGifts  int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select(`COUNT(*) AS order_count,
			CAST(COALESCE(SUM(grand_total), 0) AS TEXT) AS gross,
			CAST(COALESCE(SUM(total_discount + milestone_discount), 0) AS TEXT) AS discount,
			COALESCE(SUM(CASE WHEN is_free_gift_added THEN 1 ELSE 0 END), 0) AS free_gifts`).
		Where("brand_slug = ?", brand).
		Where("status <> ?", enums.OrderStatusCancelled).
		Where("created_at >= ? AND created_at < ?", from, to).
		Scan(&row).Error
	if err != nil {
		return SalesSummaryRow{}, err
	}
	out := SalesSummaryRow{OrderCount: row.OrderCount, FreeGifts: row.FreeGifts, Gross: "0", Discount: "0"}
	if row.Gross != nil {
		out.Gross = *row.Gross
	}
	if row.Discount != nil {
		out.Discount = *row.Discount
	}
	return out, nil
}
