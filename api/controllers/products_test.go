package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hamperhouse/storefront-backend/api/middleware"
	product "github.com/hamperhouse/storefront-backend/internal/products"
	"github.com/hamperhouse/storefront-backend/pkg/config"
	"github.com/hamperhouse/storefront-backend/pkg/enums"
)

type stubProductService struct {
	listInput product.ListProductsInput
	tracked   []enums.TrackEvent
	trackErr  error
}

func (s *stubProductService) GetProduct(ctx context.Context, id uuid.UUID) (*product.ProductDTO, error) {
	return &product.ProductDTO{ID: id}, nil
}

func (s *stubProductService) ListProducts(ctx context.Context, input product.ListProductsInput) (*product.ProductListResult, error) {
	s.listInput = input
	return &product.ProductListResult{Products: []product.ProductDTO{}}, nil
}

func (s *stubProductService) Track(ctx context.Context, id uuid.UUID, event enums.TrackEvent) error {
	s.tracked = append(s.tracked, event)
	return s.trackErr
}

func (s *stubProductService) UpdateInventory(ctx context.Context, id uuid.UUID, stock int) (*product.ProductDTO, error) {
	return &product.ProductDTO{ID: id, Stock: stock}, nil
}

func trackRouter(svc product.Service) http.Handler {
	r := chi.NewRouter()
	r.Patch("/api/v1/products/{productId}/track", ProductTrack(svc, nil))
	return r
}

func TestProductTrackAlwaysAccepted(t *testing.T) {
	cases := []struct {
		name    string
		path    string
		body    string
		tracked int
		err     error
	}{
		{name: "view", path: uuid.NewString(), body: `{"event":"view"}`, tracked: 1},
		{name: "sink failure", path: uuid.NewString(), body: `{"event":"click"}`, tracked: 1, err: errors.New("redis down")},
		{name: "unknown event", path: uuid.NewString(), body: `{"event":"hover"}`},
		{name: "bad id", path: "nope", body: `{"event":"view"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubProductService{trackErr: tc.err}
			req := httptest.NewRequest(http.MethodPatch, "/api/v1/products/"+tc.path+"/track", strings.NewReader(tc.body))
			resp := httptest.NewRecorder()
			trackRouter(svc).ServeHTTP(resp, req)
			if resp.Code != http.StatusAccepted {
				t.Fatalf("expected 202 got %d", resp.Code)
			}
			if len(svc.tracked) != tc.tracked {
				t.Fatalf("expected %d tracked events got %d", tc.tracked, len(svc.tracked))
			}
		})
	}
}

func TestProductListParsesKind(t *testing.T) {
	svc := &stubProductService{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?brand=giftbox&kind=box&limit=5", nil)
	req = req.WithContext(middleware.WithBrand(req.Context(), "giftbox"))
	resp := httptest.NewRecorder()
	ProductList(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.listInput.Kind == nil || *svc.listInput.Kind != enums.ComponentKindBox || svc.listInput.Pagination.Limit != 5 {
		t.Fatalf("unexpected input %+v", svc.listInput)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/products?brand=giftbox&kind=crate", nil)
	resp = httptest.NewRecorder()
	ProductList(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestHealthReadyReportsDependencies(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}

	resp := httptest.NewRecorder()
	HealthReady(cfg, nil, map[string]Pinger{"postgres": stubPinger{}, "redis": stubPinger{}})(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	HealthReady(cfg, nil, map[string]Pinger{"postgres": stubPinger{}, "mongo": stubPinger{err: errors.New("no primary")}})(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"mongo":"down"`) {
		t.Fatalf("expected mongo status in details: %s", resp.Body.String())
	}
}
