package coupons

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/hamperhouse/storefront-backend/pkg/db/dbtest"
	"github.com/hamperhouse/storefront-backend/pkg/db/models"
	pkgerrors "github.com/hamperhouse/storefront-backend/pkg/errors"
)

func newCouponService(t *testing.T) *service {
	t.Helper()
	svc, err := NewService(NewRepository(dbtest.Open(t)))
	require.NoError(t, err)
	return svc.(*service)
}

func TestCreateAndListActiveCoupons(t *testing.T) {
	svc := newCouponService(t)
	ctx := context.Background()
	pct := decimal.RequireFromString("0.15")
	flat := decimal.NewFromInt(100)

	_, err := svc.Create(ctx, CreateCouponInput{Brand: "Roses", Code: "spring15", Percentage: &pct})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateCouponInput{Brand: "roses", Code: "flat100", FlatAmount: &flat, MinSubtotal: decimal.NewFromInt(999)})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateCouponInput{Brand: "lilies", Code: "other", FlatAmount: &flat})
	require.NoError(t, err)

	list, err := svc.ListActive(ctx, "roses")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "FLAT100", list[0].Code)
	require.Equal(t, "SPRING15", list[1].Code)
}

func TestListActiveHidesExpired(t *testing.T) {
	svc := newCouponService(t)
	ctx := context.Background()
	flat := decimal.NewFromInt(50)
	expires := time.Now().Add(time.Hour)
	_, err := svc.Create(ctx, CreateCouponInput{Brand: "roses", Code: "soon", FlatAmount: &flat, ExpiresAt: &expires})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	list, err := svc.ListActive(ctx, "roses")
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestCreateCouponValidation(t *testing.T) {
	svc := newCouponService(t)
	pct := decimal.RequireFromString("1.5")
	_, err := svc.Create(context.Background(), CreateCouponInput{Brand: "roses", Code: "x", Percentage: &pct})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Create(context.Background(), CreateCouponInput{Brand: "roses", Code: "neither"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDeleteCoupon(t *testing.T) {
	svc := newCouponService(t)
	flat := decimal.NewFromInt(20)
	created, err := svc.Create(context.Background(), CreateCouponInput{Brand: "roses", Code: "bye", FlatAmount: &flat})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	err = svc.Delete(context.Background(), uuid.New())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestDeactivateExpired(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	flat := decimal.NewFromInt(10)

	require.NoError(t, repo.Create(ctx, &models.Coupon{BrandSlug: "roses", Code: "OLD", FlatAmount: &flat, IsActive: true, ExpiresAt: &past}))
	require.NoError(t, repo.Create(ctx, &models.Coupon{BrandSlug: "roses", Code: "LIVE", FlatAmount: &flat, IsActive: true, ExpiresAt: &future}))
	require.NoError(t, repo.Create(ctx, &models.Coupon{BrandSlug: "roses", Code: "FOREVER", FlatAmount: &flat, IsActive: true}))

	rows, err := repo.DeactivateExpired(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, rows)

	var old models.Coupon
	require.NoError(t, conn.Where("code = ?", "OLD").First(&old).Error)
	require.False(t, old.IsActive)

	rows, err = repo.DeactivateExpired(ctx, now)
	require.NoError(t, err)
	require.Zero(t, rows)
}
