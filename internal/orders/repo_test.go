package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/hamperhouse/storefront-backend/pkg/db/dbtest"
	"github.com/hamperhouse/storefront-backend/pkg/db/models"
	"github.com/hamperhouse/storefront-backend/pkg/enums"
	"github.com/hamperhouse/storefront-backend/pkg/types"
)

func seedOrder(t *testing.T, repo Repository, brand string, status enums.OrderStatus, grand, discount int64, gift bool) *models.Order {
	t.Helper()
	order := &models.Order{
		UserID:            uuid.New(),
		BrandSlug:         brand,
		Status:            status,
		ShippingAddressID: uuid.New(),
		ShippingAddress:   types.ShippingAddress{Line1: "1 Main St", City: "Pune", PostalCode: "411001"},
		Subtotal:          decimal.NewFromInt(grand),
		TotalDiscount:     decimal.NewFromInt(discount),
		MilestoneDiscount: decimal.Zero,
		Shipping:          decimal.Zero,
		GrandTotal:        decimal.NewFromInt(grand),
		IsFreeGiftAdded:   gift,
	}
	require.NoError(t, repo.CreateOrder(context.Background(), order))
	return order
}

func TestSalesSummaryAggregatesBrandOrders(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()

	seedOrder(t, repo, "roses", enums.OrderStatusPlaced, 1000, 100, true)
	seedOrder(t, repo, "roses", enums.OrderStatusDelivered, 500, 0, false)
	seedOrder(t, repo, "roses", enums.OrderStatusCancelled, 700, 50, true)
	seedOrder(t, repo, "tulips", enums.OrderStatusPlaced, 900, 0, false)

	now := time.Now()
	row, err := repo.SalesSummary(ctx, "roses", now.Add(-24*time.Hour), now.Add(24*time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(2), row.OrderCount)
	require.Equal(t, int64(1), row.FreeGifts)
	require.True(t, decimal.RequireFromString(row.Gross).Equal(decimal.NewFromInt(1500)))
	require.True(t, decimal.RequireFromString(row.Discount).Equal(decimal.NewFromInt(100)))

	empty, err := repo.SalesSummary(ctx, "lilies", now.Add(-24*time.Hour), now.Add(24*time.Hour))
	require.NoError(t, err)
	require.Zero(t, empty.OrderCount)
	require.True(t, decimal.RequireFromString(empty.Gross).IsZero())
}

func TestUpdateStatusCompareAndSet(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()
	order := seedOrder(t, repo, "roses", enums.OrderStatusPlaced, 300, 0, false)

	ok, err := repo.UpdateStatus(ctx, order.ID, enums.OrderStatusConfirmed, enums.OrderStatusShipped)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = repo.UpdateStatus(ctx, order.ID, enums.OrderStatusPlaced, enums.OrderStatusConfirmed)
	require.NoError(t, err)
	require.True(t, ok)

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusConfirmed, found.Status)
}
