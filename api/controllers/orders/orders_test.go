package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hamperhouse/storefront-backend/api/middleware"
	ordersvc "github.com/hamperhouse/storefront-backend/internal/orders"
	"github.com/hamperhouse/storefront-backend/pkg/enums"
	pkgerrors "github.com/hamperhouse/storefront-backend/pkg/errors"
	"github.com/hamperhouse/storefront-backend/pkg/events"
	"github.com/hamperhouse/storefront-backend/pkg/pagination"
)

type stubOrderService struct {
	result     *ordersvc.PlaceOrderResult
	detail     *ordersvc.OrderDetail
	err        error
	submission ordersvc.Submission
	brand      string
	status     enums.OrderStatus
	actor      *events.Actor
}

func (s *stubOrderService) PlaceOrder(ctx context.Context, userID uuid.UUID, brand string, submission ordersvc.Submission) (*ordersvc.PlaceOrderResult, error) {
	s.brand = brand
	s.submission = submission
	return s.result, s.err
}

func (s *stubOrderService) List(ctx context.Context, userID uuid.UUID, brand string, params pagination.Params) (*ordersvc.OrderList, error) {
	return &ordersvc.OrderList{}, s.err
}

func (s *stubOrderService) Detail(ctx context.Context, userID, orderID uuid.UUID) (*ordersvc.OrderDetail, error) {
	return s.detail, s.err
}

func (s *stubOrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus, actor *events.Actor) (*ordersvc.OrderDetail, error) {
	s.status = status
	s.actor = actor
	return s.detail, s.err
}

func shopperRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	ctx := middleware.WithUserID(req.Context(), uuid.NewString())
	ctx = middleware.WithBrand(ctx, "giftbox")
	return req.WithContext(ctx)
}

func placeBody(productID uuid.UUID) string {
	return `{"items":[{"productId":"` + productID.String() + `","quantity":2,"price":"300"}],` +
		`"subtotal":"600","shippingAddressId":"` + uuid.NewString() + `","isFreeGiftAdded":false}`
}

func TestPlaceOrderCreated(t *testing.T) {
	orderID := uuid.New()
	svc := &stubOrderService{result: &ordersvc.PlaceOrderResult{OrderID: orderID}}
	productID := uuid.New()

	resp := httptest.NewRecorder()
	PlaceOrder(svc, nil).ServeHTTP(resp, shopperRequest(http.MethodPost, "/api/v1/orders/place", placeBody(productID)))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data struct {
			OrderID uuid.UUID `json:"orderId"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.OrderID != orderID {
		t.Fatalf("unexpected order id %s", envelope.Data.OrderID)
	}
	if svc.brand != "giftbox" || len(svc.submission.Items) != 1 || svc.submission.Items[0].ProductID != productID {
		t.Fatalf("unexpected submission %+v", svc.submission)
	}
}

func TestPlaceOrderSurfacesFieldErrors(t *testing.T) {
	svc := &stubOrderService{err: pkgerrors.NewValidation("your cart changed", pkgerrors.FieldErrors{"subtotal": "expected 1000.00"})}
	resp := httptest.NewRecorder()
	PlaceOrder(svc, nil).ServeHTTP(resp, shopperRequest(http.MethodPost, "/api/v1/orders/place", placeBody(uuid.New())))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	var envelope struct {
		Error struct {
			Code    string            `json:"code"`
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeValidation) || envelope.Error.Details["subtotal"] != "expected 1000.00" {
		t.Fatalf("unexpected error %+v", envelope.Error)
	}
}

func TestPlaceOrderRejectsEmptyItems(t *testing.T) {
	svc := &stubOrderService{}
	body := `{"items":[],"subtotal":"0","shippingAddressId":"x","isFreeGiftAdded":false}`
	resp := httptest.NewRecorder()
	PlaceOrder(svc, nil).ServeHTTP(resp, shopperRequest(http.MethodPost, "/api/v1/orders/place", body))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.brand != "" {
		t.Fatal("service should not be called")
	}
}

func TestAdminUpdateStatus(t *testing.T) {
	orderID := uuid.New()
	svc := &stubOrderService{detail: &ordersvc.OrderDetail{}}
	r := chi.NewRouter()
	r.Patch("/api/admin/v1/orders/{orderId}/status", AdminUpdateStatus(svc, nil))

	req := httptest.NewRequest(http.MethodPatch, "/api/admin/v1/orders/"+orderID.String()+"/status", strings.NewReader(`{"status":"shipped"}`))
	ctx := middleware.WithUserID(req.Context(), uuid.NewString())
	ctx = middleware.WithRole(ctx, string(enums.MemberRoleAdmin))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req.WithContext(ctx))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.status != enums.OrderStatusShipped || svc.actor == nil || svc.actor.Role != "admin" {
		t.Fatalf("unexpected call status=%s actor=%+v", svc.status, svc.actor)
	}

	req = httptest.NewRequest(http.MethodPatch, "/api/admin/v1/orders/"+orderID.String()+"/status", strings.NewReader(`{"status":"teleported"}`))
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req.WithContext(ctx))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
