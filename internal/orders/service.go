package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hamperhouse/storefront-backend/internal/address"
	"github.com/hamperhouse/storefront-backend/internal/cart"
	"github.com/hamperhouse/storefront-backend/internal/pricing"
	product "github.com/hamperhouse/storefront-backend/internal/products"
	"github.com/hamperhouse/storefront-backend/pkg/checkout"
	"github.com/hamperhouse/storefront-backend/pkg/db"
	"github.com/hamperhouse/storefront-backend/pkg/db/models"
	"github.com/hamperhouse/storefront-backend/pkg/enums"
	pkgerrors "github.com/hamperhouse/storefront-backend/pkg/errors"
	"github.com/hamperhouse/storefront-backend/pkg/events"
	"github.com/hamperhouse/storefront-backend/pkg/logger"
	"github.com/hamperhouse/storefront-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type settingsResolver interface {
	Resolve(ctx context.Context, brand string) (pricing.Settings, error)
}

type orderMetrics interface {
	IncOrderPlaced(brand string, freeGift bool)
	IncOrderFailure(code string)
}

// Service defines order placement, history and back-office status changes.
type Service interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, brand string, submission Submission) (*PlaceOrderResult, error)
	List(ctx context.Context, userID uuid.UUID, brand string, params pagination.Params) (*OrderList, error)
	Detail(ctx context.Context, userID, orderID uuid.UUID) (*OrderDetail, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus, actor *events.Actor) (*OrderDetail, error)
}

// Dependencies groups the collaborators of the order service.
type Dependencies struct {
	Tx        txRunner
	Orders    Repository
	Cart      cart.CartRepository
	Products  *product.Repository
	Addresses *address.Repository
	Settings  settingsResolver
	Publisher events.Publisher
	Metrics   orderMetrics
	Logger    *logger.Logger
}

type service struct {
	tx        txRunner
	repo      Repository
	cartRepo  cart.CartRepository
	products  *product.Repository
	addresses *address.Repository
	settings  settingsResolver
	publisher events.Publisher
	metrics   orderMetrics
	logg      *logger.Logger
}

// NewService builds the order service.
func NewService(deps Dependencies) (Service, error) {
	switch {
	case deps.Tx == nil:
		return nil, fmt.Errorf("tx runner required")
	case deps.Orders == nil:
		return nil, fmt.Errorf("orders repository required")
	case deps.Cart == nil:
		return nil, fmt.Errorf("cart repository required")
	case deps.Products == nil:
		return nil, fmt.Errorf("product repository required")
	case deps.Addresses == nil:
		return nil, fmt.Errorf("address repository required")
	case deps.Settings == nil:
		return nil, fmt.Errorf("settings resolver required")
	case deps.Publisher == nil:
		return nil, fmt.Errorf("event publisher required")
	case deps.Logger == nil:
		return nil, fmt.Errorf("logger required")
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &service{
		tx:        deps.Tx,
		repo:      deps.Orders,
		cartRepo:  deps.Cart,
		products:  deps.Products,
		addresses: deps.Addresses,
		settings:  deps.Settings,
		publisher: deps.Publisher,
		metrics:   metrics,
		logg:      deps.Logger,
	}, nil
}

// PlaceOrder re-resolves and re-prices the cart, checks the submission
// against it and writes the order in one transaction. The cart is cleared only
// when the order commits.
func (s *service) PlaceOrder(ctx context.Context, userID uuid.UUID, brand string, submission Submission) (*PlaceOrderResult, error) {
	result, err := s.placeOrder(ctx, userID, brand, submission)
	if err != nil {
		code := string(pkgerrors.CodeInternal)
		if typed := pkgerrors.As(err); typed != nil {
			code = string(typed.Code())
		}
		s.metrics.IncOrderFailure(code)
		return nil, err
	}
	return result, nil
}

func (s *service) placeOrder(ctx context.Context, userID uuid.UUID, brand string, submission Submission) (*PlaceOrderResult, error) {
	brand = strings.ToLower(strings.TrimSpace(brand))
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if brand == "" {
		return nil, pkgerrors.NewValidation("brand is required", pkgerrors.FieldErrors{"brand": "is required"})
	}
	addressID, err := uuid.Parse(strings.TrimSpace(submission.ShippingAddressID))
	if err != nil {
		return nil, pkgerrors.NewValidation("please select a shipping address", pkgerrors.FieldErrors{
			"shippingAddressId": "must be a valid id",
		})
	}

	settings, err := s.settings.Resolve(ctx, brand)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve pricing settings")
	}

	var placed *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		products := s.products.WithTx(tx)
		ordersRepo := s.repo.WithTx(tx)

		rows, err := cartRepo.ListLines(ctx, userID, brand)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		if len(rows) == 0 {
			return pkgerrors.NewValidation("cart is empty", pkgerrors.FieldErrors{"items": "cart is empty"})
		}

		resolver, err := cart.NewResolver(products)
		if err != nil {
			return err
		}
		resolution, err := resolver.Resolve(ctx, brand, rows)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve cart")
		}
		totals := pricing.Calculate(cart.PricingLines(resolution.Lines), settings)

		if err := compareSubmission(submission, resolution, totals); err != nil {
			return err
		}

		dest, err := address.FindForUser(ctx, s.addresses.WithTx(tx), userID, addressID)
		if err != nil {
			return err
		}

		if err := reserveStock(ctx, products, resolution.Lines); err != nil {
			return err
		}

		order := buildOrder(userID, brand, dest, totals.Settled())
		if err := ordersRepo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		order.Items = buildItems(order.ID, resolution.Lines)
		if err := ordersRepo.CreateItems(ctx, order.Items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order items")
		}
		if err := cartRepo.Clear(ctx, userID, brand); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}
		placed = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncOrderPlaced(brand, placed.IsFreeGiftAdded)
	s.publishPlaced(ctx, placed)
	return &PlaceOrderResult{OrderID: placed.ID}, nil
}

// compareSubmission rejects a submission that was priced against a stale
// view of the cart. Lines whose product no longer resolves are not part of
// the order and are not compared. Every disagreement is reported as a field
// error.
func compareSubmission(submission Submission, resolution cart.Resolution, totals pricing.Totals) error {
	fields := pkgerrors.FieldErrors{}
	if len(resolution.Lines) == 0 {
		fields["items"] = "cart is empty"
	} else if !sameItems(submission.Items, resolution.Lines) {
		fields["items"] = "do not match the current cart"
	}
	if !submission.Subtotal.Equal(totals.Subtotal) {
		fields["subtotal"] = fmt.Sprintf("expected %s", totals.Subtotal.StringFixed(2))
	}
	if submission.IsFreeGiftAdded != totals.IsFreeGiftIncluded {
		fields["isFreeGiftAdded"] = fmt.Sprintf("expected %t", totals.IsFreeGiftIncluded)
	}
	if len(fields) == 0 {
		return nil
	}
	return pkgerrors.NewValidation("your cart changed, please review it before placing the order", fields)
}

type itemKey struct {
	productID uuid.UUID
	size      string
	color     string
}

func sameItems(items []SubmissionItem, lines []cart.ResolvedLine) bool {
	want := map[itemKey]int{}
	for _, line := range lines {
		want[itemKey{line.ProductID, line.SelectedSize, line.SelectedColor}] += line.Quantity
	}
	got := map[itemKey]int{}
	for _, item := range items {
		got[itemKey{item.ProductID, item.Size, item.Color}] += item.Quantity
	}
	if len(want) != len(got) {
		return false
	}
	for key, qty := range want {
		if got[key] != qty {
			return false
		}
	}
	return true
}

func reserveStock(ctx context.Context, products *product.Repository, lines []cart.ResolvedLine) error {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	locked, err := products.LockByIDs(ctx, ids)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock products")
	}
	stock := make(map[uuid.UUID]int, len(locked))
	for _, p := range locked {
		stock[p.ID] = p.Stock
	}

	inputs := make([]checkout.StockValidationInput, 0, len(lines))
	for _, line := range lines {
		inputs = append(inputs, checkout.StockValidationInput{
			ProductID:   line.ProductID,
			ProductName: line.Name,
			Available:   stock[line.ProductID],
			Quantity:    line.Quantity,
		})
	}
	if err := checkout.ValidateStock(inputs); err != nil {
		return err
	}

	for _, line := range lines {
		ok, err := products.DecrementStock(ctx, line.ProductID, line.Quantity)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("insufficient stock for %s", line.Name))
		}
	}
	return nil
}

func buildOrder(userID uuid.UUID, brand string, dest *models.Address, totals pricing.Totals) *models.Order {
	return &models.Order{
		UserID:            userID,
		BrandSlug:         brand,
		Status:            enums.OrderStatusPlaced,
		ShippingAddressID: dest.ID,
		ShippingAddress:   dest.Snapshot(),
		Subtotal:          totals.Subtotal,
		TotalDiscount:     totals.TotalDiscount,
		MilestoneDiscount: totals.MilestoneDiscount,
		Shipping:          totals.Shipping,
		GrandTotal:        totals.GrandTotal,
		IsFreeGiftAdded:   totals.IsFreeGiftIncluded,
	}
}

func buildItems(orderID uuid.UUID, lines []cart.ResolvedLine) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		priced := line.PricingLine()
		items = append(items, models.OrderItem{
			OrderID:       orderID,
			ProductID:     line.ProductID,
			Name:          line.Name,
			Image:         priced.Image,
			Quantity:      line.Quantity,
			Price:         line.SellingPrice,
			SelectedSize:  line.SelectedSize,
			SelectedColor: line.SelectedColor,
		})
	}
	return items
}

func (s *service) publishPlaced(ctx context.Context, order *models.Order) {
	env, err := events.NewEnvelope(enums.EventOrderPlaced, order.ID.String(), order.BrandSlug, &events.Actor{UserID: order.UserID}, events.OrderPlaced{
		OrderID:         order.ID,
		UserID:          order.UserID,
		ItemCount:       len(order.Items),
		Subtotal:        order.Subtotal.StringFixed(2),
		GrandTotal:      order.GrandTotal.StringFixed(2),
		IsFreeGiftAdded: order.IsFreeGiftAdded,
	})
	if err == nil {
		err = s.publisher.Publish(ctx, env)
	}
	if err != nil {
		s.logg.WarnErr(s.logg.WithField(ctx, "order_id", order.ID.String()), "order placed event not published", err)
	}
}

func (s *service) List(ctx context.Context, userID uuid.UUID, brand string, params pagination.Params) (*OrderList, error) {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.NewValidation("invalid cursor", pkgerrors.FieldErrors{"cursor": "is invalid"})
	}
	rows, next, err := s.repo.ListForUser(ctx, userID, strings.ToLower(strings.TrimSpace(brand)), params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	out := &OrderList{Orders: make([]OrderSummary, 0, len(rows)), NextCursor: next}
	for _, row := range rows {
		out.Orders = append(out.Orders, toSummary(row))
	}
	return out, nil
}

func (s *service) Detail(ctx context.Context, userID, orderID uuid.UUID) (*OrderDetail, error) {
	order, err := s.repo.FindForUser(ctx, userID, orderID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return toDetail(*order), nil
}

// UpdateStatus moves an order one step along its lifecycle. Cancelling
// returns the sold quantities to stock.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus, actor *events.Actor) (*OrderDetail, error) {
	if !status.IsValid() {
		return nil, pkgerrors.NewValidation("invalid status", pkgerrors.FieldErrors{"status": "is invalid"})
	}

	var (
		updated *models.Order
		from    enums.OrderStatus
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		from = order.Status
		if !from.CanTransitionTo(status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("order cannot move from %s to %s", from, status))
		}
		ok, err := repo.UpdateStatus(ctx, order.ID, from, status)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed concurrently")
		}
		if status == enums.OrderStatusCancelled {
			products := s.products.WithTx(tx)
			for _, item := range order.Items {
				if err := products.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restock product")
				}
			}
		}
		order.Status = status
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	env, err := events.NewEnvelope(enums.EventOrderStatusChanged, updated.ID.String(), updated.BrandSlug, actor, events.OrderStatusChanged{
		OrderID: updated.ID,
		From:    from.String(),
		To:      status.String(),
	})
	if err == nil {
		err = s.publisher.Publish(ctx, env)
	}
	if err != nil {
		s.logg.WarnErr(ctx, "order status event not published", err)
	}
	return toDetail(*updated), nil
}

type noopMetrics struct{}

func (noopMetrics) IncOrderPlaced(string, bool) {}
func (noopMetrics) IncOrderFailure(string)      {}
