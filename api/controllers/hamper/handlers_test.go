package hamper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/hamperhouse/storefront-backend/api/middleware"
	"github.com/hamperhouse/storefront-backend/internal/cart"
	hampersvc "github.com/hamperhouse/storefront-backend/internal/hamper"
	pkgerrors "github.com/hamperhouse/storefront-backend/pkg/errors"
)

type stubHamperService struct {
	saved      hampersvc.Payload
	brand      string
	err        error
	discards   int
	checkedOut hampersvc.Payload
}

func (s *stubHamperService) Get(ctx context.Context, userID uuid.UUID) (*hampersvc.StoredDraft, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &hampersvc.StoredDraft{Payload: s.saved}, nil
}

func (s *stubHamperService) Save(ctx context.Context, userID uuid.UUID, payload hampersvc.Payload) (*hampersvc.StoredDraft, error) {
	s.saved = payload
	return &hampersvc.StoredDraft{Payload: payload}, s.err
}

func (s *stubHamperService) Discard(ctx context.Context, userID uuid.UUID) error {
	s.discards++
	return s.err
}

func (s *stubHamperService) Checkout(ctx context.Context, userID uuid.UUID, brand string, payload hampersvc.Payload) (*cart.View, error) {
	s.brand = brand
	s.checkedOut = payload
	if s.err != nil {
		return nil, s.err
	}
	return &cart.View{Brand: brand}, nil
}

func shopperRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	ctx := middleware.WithUserID(req.Context(), uuid.NewString())
	ctx = middleware.WithBrand(ctx, "giftbox")
	return req.WithContext(ctx)
}

func TestDraftSaveDecodesPayload(t *testing.T) {
	svc := &stubHamperService{}
	body := `{"occasion":"birthday","productIds":[],"notesToCreator":"","notesToReceiver":"hi","addRose":true,"currentStep":1}`
	resp := httptest.NewRecorder()
	DraftSave(svc, nil).ServeHTTP(resp, shopperRequest(http.MethodPost, "/api/v1/hampers", body))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.saved.Occasion != "birthday" || !svc.saved.AddRose || svc.saved.CurrentStep != 1 {
		t.Fatalf("unexpected payload %+v", svc.saved)
	}
}

func TestDraftGetNotFound(t *testing.T) {
	svc := &stubHamperService{err: pkgerrors.New(pkgerrors.CodeNotFound, "no hamper draft")}
	resp := httptest.NewRecorder()
	DraftGet(svc, nil).ServeHTTP(resp, shopperRequest(http.MethodGet, "/api/v1/hampers", ""))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestDraftCheckoutSendsSubmittedDraft(t *testing.T) {
	svc := &stubHamperService{saved: hampersvc.Payload{Occasion: "stale"}}
	body := `{"occasion":"birthday","boxId":"` + uuid.NewString() + `","productIds":[],"notesToCreator":"","notesToReceiver":"","addRose":false,"currentStep":5}`
	resp := httptest.NewRecorder()
	DraftCheckout(svc, nil).ServeHTTP(resp, shopperRequest(http.MethodPost, "/api/v1/hampers/checkout?brand=giftbox", body))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.brand != "giftbox" {
		t.Fatalf("unexpected brand %q", svc.brand)
	}
	if svc.checkedOut.Occasion != "birthday" || svc.checkedOut.CurrentStep != 5 {
		t.Fatalf("expected the submitted draft, got %+v", svc.checkedOut)
	}
}

func TestDraftCheckoutRejectsMissingBody(t *testing.T) {
	svc := &stubHamperService{}
	resp := httptest.NewRecorder()
	DraftCheckout(svc, nil).ServeHTTP(resp, shopperRequest(http.MethodPost, "/api/v1/hampers/checkout?brand=giftbox", ""))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.brand != "" {
		t.Fatal("service must not be called without a draft")
	}
}

func TestDraftDiscard(t *testing.T) {
	svc := &stubHamperService{}
	resp := httptest.NewRecorder()
	DraftDiscard(svc, nil).ServeHTTP(resp, shopperRequest(http.MethodDelete, "/api/v1/hampers", ""))
	if resp.Code != http.StatusOK || svc.discards != 1 {
		t.Fatalf("expected discard, got %d (%d calls)", resp.Code, svc.discards)
	}
}
