package hamper

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/hamperhouse/storefront-backend/internal/cart"
	"github.com/hamperhouse/storefront-backend/pkg/enums"
	pkgerrors "github.com/hamperhouse/storefront-backend/pkg/errors"
	"github.com/hamperhouse/storefront-backend/pkg/events"
	"github.com/hamperhouse/storefront-backend/pkg/logger"
)

const maxNoteLength = 500

type cartAdder interface {
	AddItems(ctx context.Context, userID uuid.UUID, brand string, inputs []cart.ItemInput) (*cart.View, error)
}

// Service is the server side of the hamper builder.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*StoredDraft, error)
	Save(ctx context.Context, userID uuid.UUID, payload Payload) (*StoredDraft, error)
	Discard(ctx context.Context, userID uuid.UUID) error
	Checkout(ctx context.Context, userID uuid.UUID, brand string, payload Payload) (*cart.View, error)
}

// ServiceOptions carries optional behaviour.
type ServiceOptions struct {
	// RoseProductID is added to the cart when a draft asks for a rose.
	RoseProductID uuid.UUID
}

type service struct {
	store     DraftStore
	cart      cartAdder
	publisher events.Publisher
	logg      *logger.Logger
	rose      uuid.UUID
}

// NewService builds the hamper service.
func NewService(store DraftStore, cartSvc cartAdder, publisher events.Publisher, logg *logger.Logger, opts ServiceOptions) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("draft store required")
	}
	if cartSvc == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("event publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{store: store, cart: cartSvc, publisher: publisher, logg: logg, rose: opts.RoseProductID}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*StoredDraft, error) {
	draft, err := s.store.Find(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrDraftNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no hamper draft")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load hamper draft")
	}
	return draft, nil
}

// Save upserts the draft. A draft without an occasion is never persisted.
func (s *service) Save(ctx context.Context, userID uuid.UUID, payload Payload) (*StoredDraft, error) {
	draft, err := checkPayload(payload)
	if err != nil {
		return nil, err
	}
	stored, err := s.store.Upsert(ctx, userID, draft.Payload())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save hamper draft")
	}
	return stored, nil
}

func checkPayload(payload Payload) (Draft, error) {
	payload.Occasion = strings.TrimSpace(payload.Occasion)
	draft, err := DraftFromPayload(payload)
	if err != nil {
		return Draft{}, err
	}
	fields := pkgerrors.FieldErrors{}
	if !draft.HasOccasion() {
		fields["occasion"] = "is required"
	}
	if len(draft.NotesToCreator) > maxNoteLength {
		fields["notesToCreator"] = fmt.Sprintf("must be at most %d characters", maxNoteLength)
	}
	if len(draft.NotesToReceiver) > maxNoteLength {
		fields["notesToReceiver"] = fmt.Sprintf("must be at most %d characters", maxNoteLength)
	}
	if len(fields) > 0 {
		return Draft{}, pkgerrors.NewValidation("invalid hamper draft", fields)
	}
	return draft, nil
}

// Discard is idempotent: discarding a missing draft succeeds.
func (s *service) Discard(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.store.Delete(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "discard hamper draft")
	}
	return nil
}

// Checkout converts the submitted draft into cart lines and deletes the saved
// one. The submitted payload wins over whatever autosave stored last; it is
// persisted first so a failed conversion leaves the latest draft behind. The
// box and bag variants become the selected color of their lines and repeated
// products are merged into one line.
func (s *service) Checkout(ctx context.Context, userID uuid.UUID, brand string, payload Payload) (*cart.View, error) {
	draft, err := checkPayload(payload)
	if err != nil {
		return nil, err
	}
	if err := draft.CheckComplete(); err != nil {
		return nil, err
	}
	if _, err := s.store.Upsert(ctx, userID, draft.Payload()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save hamper draft")
	}

	view, err := s.cart.AddItems(ctx, userID, brand, s.cartInputs(draft))
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Delete(ctx, userID); err != nil {
		s.logg.WarnErr(ctx, "hamper draft not deleted after checkout", err)
	}
	s.publishCheckedOut(ctx, userID, brand, draft)
	return view, nil
}

func (s *service) cartInputs(draft Draft) []cart.ItemInput {
	inputs := []cart.ItemInput{
		{ProductID: draft.BoxID, Quantity: 1, Color: draft.BoxVariant},
		{ProductID: draft.BagID, Quantity: 1, Color: draft.BagVariant},
	}
	for _, id := range draft.ProductIDs {
		inputs = append(inputs, cart.ItemInput{ProductID: id, Quantity: 1})
	}
	if draft.AddRose && s.rose != uuid.Nil {
		inputs = append(inputs, cart.ItemInput{ProductID: s.rose, Quantity: 1})
	}
	return inputs
}

func (s *service) publishCheckedOut(ctx context.Context, userID uuid.UUID, brand string, draft Draft) {
	ids := append([]uuid.UUID{draft.BoxID, draft.BagID}, draft.ProductIDs...)
	env, err := events.NewEnvelope(enums.EventHamperCheckedOut, userID.String(), brand, &events.Actor{UserID: userID}, events.HamperCheckedOut{
		UserID:     userID,
		Occasion:   draft.Occasion,
		ProductIDs: ids,
	})
	if err == nil {
		err = s.publisher.Publish(ctx, env)
	}
	if err != nil {
		s.logg.WarnErr(ctx, "hamper checkout event not published", err)
	}
}
