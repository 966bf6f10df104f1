package product

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/hamperhouse/storefront-backend/pkg/db/dbtest"
	"github.com/hamperhouse/storefront-backend/pkg/db/models"
	"github.com/hamperhouse/storefront-backend/pkg/enums"
	pkgerrors "github.com/hamperhouse/storefront-backend/pkg/errors"
	"github.com/hamperhouse/storefront-backend/pkg/events"
	"github.com/hamperhouse/storefront-backend/pkg/pagination"
)

type stubCounter struct {
	calls []string
	err   error
}

func (s *stubCounter) IncrProductEvent(_ context.Context, productID, event string) (int64, error) {
	s.calls = append(s.calls, productID+":"+event)
	return int64(len(s.calls)), s.err
}

type stubPublisher struct {
	envs []events.Envelope
	err  error
}

func (s *stubPublisher) Publish(_ context.Context, env events.Envelope) error {
	s.envs = append(s.envs, env)
	return s.err
}

func (s *stubPublisher) Close() error { return nil }

func seedProduct(t *testing.T, repo *Repository, brand, name string, price int64, kind enums.ComponentKind) *models.Product {
	t.Helper()
	mrp := decimal.NewFromInt(price * 2)
	p, err := repo.Create(context.Background(), &models.Product{
		BrandSlug:     brand,
		SKU:           "SKU-" + uuid.NewString()[:8],
		Name:          name,
		SellingPrice:  decimal.NewFromInt(price),
		MRP:           &mrp,
		Images:        pq.StringArray{"https://cdn.example.com/" + name + ".jpg"},
		Stock:         5,
		ComponentKind: kind,
		IsActive:      true,
	})
	require.NoError(t, err)
	return p
}

func newTestService(t *testing.T) (Service, *Repository, *stubCounter, *stubPublisher) {
	t.Helper()
	repo := NewRepository(dbtest.Open(t))
	counter := &stubCounter{}
	pub := &stubPublisher{}
	svc, err := NewService(repo, counter, pub)
	require.NoError(t, err)
	return svc, repo, counter, pub
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	if _, err := NewService(nil, &stubCounter{}, &stubPublisher{}); err == nil {
		t.Fatal("expected error for nil repo")
	}
	if _, err := NewService(&Repository{}, nil, &stubPublisher{}); err == nil {
		t.Fatal("expected error for nil counter")
	}
	if _, err := NewService(&Repository{}, &stubCounter{}, nil); err == nil {
		t.Fatal("expected error for nil publisher")
	}
}

func TestGetProductMapsDTO(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	created := seedProduct(t, repo, "roses", "Tulip Vase", 250, enums.ComponentKindItem)

	dto, err := svc.GetProduct(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, "Tulip Vase", dto.Name)
	require.True(t, dto.SellingPrice.Equal(decimal.NewFromInt(250)))
	require.NotNil(t, dto.DiscountPercent)
	require.Equal(t, 50, *dto.DiscountPercent)
	require.True(t, dto.InStock)
	require.Len(t, dto.Images, 1)
}

func TestGetProductNotFound(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	_, err := svc.GetProduct(context.Background(), uuid.New())
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListProductsFiltersAndPaginates(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		seedProduct(t, repo, "roses", "item", 100, enums.ComponentKindItem)
	}
	seedProduct(t, repo, "roses", "box", 100, enums.ComponentKindBox)
	seedProduct(t, repo, "lilies", "other", 100, enums.ComponentKindItem)

	page, err := svc.ListProducts(ctx, ListProductsInput{BrandSlug: "Roses", Pagination: pagination.Params{Limit: 3}})
	require.NoError(t, err)
	require.Len(t, page.Products, 3)
	require.NotEmpty(t, page.NextCursor)

	rest, err := svc.ListProducts(ctx, ListProductsInput{BrandSlug: "roses", Pagination: pagination.Params{Limit: 3, Cursor: page.NextCursor}})
	require.NoError(t, err)
	require.Len(t, rest.Products, 1)
	require.Empty(t, rest.NextCursor)

	box := enums.ComponentKindBox
	boxes, err := svc.ListProducts(ctx, ListProductsInput{BrandSlug: "roses", Kind: &box})
	require.NoError(t, err)
	require.Len(t, boxes.Products, 1)
	require.Equal(t, "box", boxes.Products[0].ComponentKind)
}

func TestListProductsRequiresBrand(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	_, err := svc.ListProducts(context.Background(), ListProductsInput{})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTrackIncrementsAndPublishes(t *testing.T) {
	svc, _, counter, pub := newTestService(t)
	id := uuid.New()
	require.NoError(t, svc.Track(context.Background(), id, enums.TrackEventView))
	require.Equal(t, []string{id.String() + ":view"}, counter.calls)
	require.Len(t, pub.envs, 1)
	require.Equal(t, enums.EventProductTracked, pub.envs[0].Type)
}

func TestTrackCombinesSinkFailures(t *testing.T) {
	svc, _, counter, pub := newTestService(t)
	counter.err = errors.New("redis down")
	pub.err = errors.New("bus down")
	err := svc.Track(context.Background(), uuid.New(), enums.TrackEventClick)
	require.Error(t, err)
	require.Contains(t, err.Error(), "redis down")
	require.Contains(t, err.Error(), "bus down")
	require.Len(t, pub.envs, 1, "publisher still attempted after counter failure")
}

func TestUpdateInventory(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	created := seedProduct(t, repo, "roses", "Mug", 120, enums.ComponentKindItem)

	dto, err := svc.UpdateInventory(context.Background(), created.ID, 0)
	require.NoError(t, err)
	require.Equal(t, 0, dto.Stock)
	require.False(t, dto.InStock)

	_, err = svc.UpdateInventory(context.Background(), created.ID, -1)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.UpdateInventory(context.Background(), uuid.New(), 3)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestDecrementStockRefusesOversell(t *testing.T) {
	_, repo, _, _ := newTestService(t)
	created := seedProduct(t, repo, "roses", "Candle", 80, enums.ComponentKindItem)
	ctx := context.Background()

	ok, err := repo.DecrementStock(ctx, created.ID, 3)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.DecrementStock(ctx, created.ID, 3)
	require.NoError(t, err)
	require.False(t, ok)

	reloaded, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, 2, reloaded.Stock)
}

type dropCounter struct{ events []string }

func (d *dropCounter) IncTelemetryDropped(event string) { d.events = append(d.events, event) }

func TestTrackRecordsDroppedEvents(t *testing.T) {
	conn := dbtest.Open(t)
	counter := &stubCounter{err: errors.New("redis down")}
	drops := &dropCounter{}
	svc, err := NewService(NewRepository(conn), counter, &stubPublisher{}, WithDropRecorder(drops))
	require.NoError(t, err)

	require.Error(t, svc.Track(context.Background(), uuid.New(), enums.TrackEventClick))
	require.Equal(t, []string{"click"}, drops.events)

	counter.err = nil
	require.NoError(t, svc.Track(context.Background(), uuid.New(), enums.TrackEventView))
	require.Len(t, drops.events, 1)
}
