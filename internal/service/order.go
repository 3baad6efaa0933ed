package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/Skotchmaster/beauty_shop/internal/events"
	"github.com/Skotchmaster/beauty_shop/internal/models"
	"github.com/Skotchmaster/beauty_shop/internal/payment"
	"github.com/Skotchmaster/beauty_shop/internal/transport"
	"github.com/Skotchmaster/beauty_shop/pkg/logging"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const DefaultPurchaseOrderName = "Beauty Product Order"

type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindOrderByToken(ctx context.Context, token string) (*models.Order, error)
	UpdateOrderFields(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.Order, error)
	UpdateOrderFieldsIf(ctx context.Context, id uuid.UUID, cond, fields map[string]any) (bool, error)
	ListUserOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	ListOrders(ctx context.Context, status models.OrderStatus, offset, limit int) (int64, []models.Order, error)
}

type PaymentGateway interface {
	Initiate(ctx context.Context, req payment.InitiateRequest) (*payment.Session, error)
	Verify(ctx context.Context, pidx string) (payment.Outcome, error)
}

type CartClearer interface {
	ClearCart(ctx context.Context, userID uuid.UUID) error
}

// Notifier tells a user about their order. Failures never fail the order
// operation.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, title, message, typ string) error
}

// AddressBook resolves saved delivery addresses.
type AddressBook interface {
	SavedAddress(ctx context.Context, userID, addressID uuid.UUID) (models.Address, error)
}

type OrderConfig struct {
	FrontendURL       string
	PurchaseOrderName string
	DeliveryFee       decimal.Decimal
	// StrictTransitions rejects status changes the order lifecycle does
	// not allow. Off, any valid status overwrites the current one.
	StrictTransitions bool
}

type OrderService struct {
	Orders   OrderStore
	Products ProductReader
	Carts    CartClearer
	Gateway  PaymentGateway
	Events   events.Publisher
	Notifier Notifier
	Cfg      OrderConfig

	// Addresses is optional; without it addressId is ignored.
	Addresses AddressBook
}

type PaymentInit struct {
	Order      *models.Order
	PaymentURL string
}

// ValidateOrderData checks presence and shape only. It does not look at
// the catalog.
func ValidateOrderData(userID uuid.UUID, req transport.PlaceOrderRequest) error {
	if userID == uuid.Nil {
		return fmt.Errorf("%w: user id is missing", ErrValidation)
	}
	if req.Items == nil {
		return fmt.Errorf("%w: items are missing", ErrValidation)
	}
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: items must not be empty", ErrValidation)
	}
	if req.Amount == nil {
		return fmt.Errorf("%w: amount is missing", ErrValidation)
	}
	if !req.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be a positive number", ErrValidation)
	}
	if req.Address == nil || req.Address.IsZero() {
		return fmt.Errorf("%w: address is missing", ErrValidation)
	}
	for i, it := range req.Items {
		if it.ProductID == uuid.Nil {
			return fmt.Errorf("%w: item %d has no product id", ErrValidation, i+1)
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: item %d quantity must be > 0", ErrValidation, i+1)
		}
		if it.Image == "" {
			return fmt.Errorf("%w: item %d has no image", ErrValidation, i+1)
		}
	}
	return nil
}

// snapshot prices every line from the catalog as of now.
func (s *OrderService) snapshot(ctx context.Context, req []transport.OrderItemRequest) ([]models.OrderItem, error) {
	items := make([]models.OrderItem, 0, len(req))
	for _, it := range req {
		p, err := s.Products.GetProduct(ctx, it.ProductID)
		if err != nil {
			return nil, notFound(err, "product %s", it.ProductID)
		}
		shade := strings.TrimSpace(it.Shade)
		if shade != "" {
			if _, ok := p.FindShade(shade); !ok {
				return nil, fmt.Errorf("%w: shade %q of product %s", ErrNotFound, shade, p.ID)
			}
		}
		items = append(items, models.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Shade:     shade,
			Quantity:  it.Quantity,
			UnitPrice: p.Price,
			Image:     string(it.Image),
		})
	}
	return items, nil
}

func (s *OrderService) newOrder(ctx context.Context, userID uuid.UUID, req transport.PlaceOrderRequest) (*models.Order, error) {
	if (req.Address == nil || req.Address.IsZero()) && req.AddressID != nil && s.Addresses != nil && userID != uuid.Nil {
		addr, err := s.Addresses.SavedAddress(ctx, userID, *req.AddressID)
		if err != nil {
			return nil, err
		}
		req.Address = &addr
	}
	if err := ValidateOrderData(userID, req); err != nil {
		return nil, err
	}
	items, err := s.snapshot(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	order := &models.Order{
		UserID:  userID,
		Items:   items,
		Amount:  *req.Amount,
		Address: *req.Address,
	}

	if want := order.Subtotal().Add(s.Cfg.DeliveryFee); !want.Equal(order.Amount) {
		logging.FromContext(ctx).Warn("order_amount_mismatch",
			"user_id", userID,
			"amount", order.Amount.String(),
			"expected", want.String(),
		)
	}
	return order, nil
}

// PlaceOrder takes a cash-on-delivery order. The order and the cart clear
// are separate writes: if the clear fails the order stays and the error
// wraps ErrCartSync.
func (s *OrderService) PlaceOrder(ctx context.Context, userID uuid.UUID, req transport.PlaceOrderRequest) (*models.Order, error) {
	switch models.PaymentMethod(req.PaymentMethod) {
	case "", models.PaymentCOD:
	default:
		return nil, fmt.Errorf("%w: unsupported payment method %q", ErrValidation, req.PaymentMethod)
	}

	order, err := s.newOrder(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	order.PaymentMethod = models.PaymentCOD
	order.Payment = false
	order.Status = models.StatusProcessing

	order, err = s.Orders.CreateOrder(ctx, order)
	if err != nil {
		return nil, err
	}
	s.publishOrder(ctx, "order_placed", order)

	if err := s.clearCart(ctx, order); err != nil {
		return order, fmt.Errorf("%w: %w", ErrCartSync, err)
	}
	return order, nil
}

// InitiateKhaltiPayment stores a Pending order under a fresh correlation
// token, then opens a gateway session and replaces the token with the
// gateway's pidx. A gateway failure leaves the Pending order behind.
func (s *OrderService) InitiateKhaltiPayment(ctx context.Context, userID uuid.UUID, req transport.PlaceOrderRequest) (*PaymentInit, error) {
	order, err := s.newOrder(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	token := uuid.NewString()
	order.PaymentMethod = models.PaymentKhalti
	order.Payment = false
	order.Status = models.StatusPending
	order.Pidx = token

	order, err = s.Orders.CreateOrder(ctx, order)
	if err != nil {
		return nil, err
	}

	name := s.Cfg.PurchaseOrderName
	if name == "" {
		name = DefaultPurchaseOrderName
	}
	sess, err := s.Gateway.Initiate(ctx, payment.InitiateRequest{
		OrderID:           order.ID.String(),
		Token:             token,
		Amount:            order.Amount,
		ReturnURL:         s.returnURL(order.ID, token),
		WebsiteURL:        s.Cfg.FrontendURL,
		PurchaseOrderName: name,
		Customer: payment.Customer{
			Name:  strings.TrimSpace(order.Address.FirstName + " " + order.Address.LastName),
			Email: order.Address.Email,
			Phone: order.Address.Phone,
		},
	})
	if err != nil {
		logging.FromContext(ctx).Warn("payment_initiate_failed", "order_id", order.ID, "error", err)
		var perr *payment.ProviderError
		if errors.As(err, &perr) {
			return nil, perr
		}
		return nil, fmt.Errorf("%w: %w", ErrGateway, err)
	}

	order, err = s.Orders.UpdateOrderFields(ctx, order.ID, map[string]any{"pidx": sess.Pidx})
	if err != nil {
		return nil, err
	}
	s.publishOrder(ctx, "order_payment_initiated", order)
	return &PaymentInit{Order: order, PaymentURL: sess.PaymentURL}, nil
}

func (s *OrderService) returnURL(orderID uuid.UUID, token string) string {
	q := url.Values{}
	q.Set("orderId", orderID.String())
	q.Set("pidx", token)
	return strings.TrimRight(s.Cfg.FrontendURL, "/") + "/payment-success?" + q.Encode()
}

// NormalizeToken drops anything after a '?' that some redirects append.
func NormalizeToken(token string) string {
	token = strings.TrimSpace(token)
	if i := strings.IndexByte(token, '?'); i >= 0 {
		token = token[:i]
	}
	return token
}

// VerifyKhaltiPayment finalizes the order behind token once the gateway
// reports Completed. Repeating it is harmless.
func (s *OrderService) VerifyKhaltiPayment(ctx context.Context, token string) (*models.Order, error) {
	token = NormalizeToken(token)
	if token == "" {
		return nil, fmt.Errorf("%w: token is required", ErrValidation)
	}

	out, err := s.Gateway.Verify(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGateway, err)
	}
	switch out.State {
	case payment.Completed:
	case payment.ProviderFailure:
		if out.Err != nil {
			return nil, out.Err
		}
		return nil, &payment.ProviderError{Detail: "verification failed"}
	default:
		return nil, fmt.Errorf("%w: status %q", ErrPaymentNotCompleted, out.Status)
	}

	order, err := s.Orders.FindOrderByToken(ctx, token)
	if err != nil {
		return nil, notFound(err, "order for token %s", token)
	}

	if !order.Payment {
		fields := map[string]any{"payment": true}
		if order.Status == models.StatusPending {
			fields["status"] = models.StatusProcessing
		}
		changed, err := s.Orders.UpdateOrderFieldsIf(ctx, order.ID, map[string]any{"payment": false}, fields)
		if err != nil {
			return nil, err
		}
		if order, err = s.Orders.GetOrder(ctx, order.ID); err != nil {
			return nil, err
		}
		if changed {
			s.publishOrder(ctx, "order_paid", order)
		}
	}

	if err := s.clearCart(ctx, order); err != nil {
		return order, fmt.Errorf("%w: %w", ErrCartSync, err)
	}
	return order, nil
}

// clearCart empties the owner's cart once per order. The marker is claimed
// before clearing and released again if the clear fails so a retry can
// finish it.
func (s *OrderService) clearCart(ctx context.Context, order *models.Order) error {
	if order.CartCleared {
		return nil
	}
	claimed, err := s.Orders.UpdateOrderFieldsIf(ctx, order.ID,
		map[string]any{"cart_cleared": false},
		map[string]any{"cart_cleared": true},
	)
	if err != nil {
		return err
	}
	if !claimed {
		order.CartCleared = true
		return nil
	}

	if err := s.Carts.ClearCart(ctx, order.UserID); err != nil {
		if _, rerr := s.Orders.UpdateOrderFieldsIf(ctx, order.ID,
			map[string]any{"cart_cleared": true},
			map[string]any{"cart_cleared": false},
		); rerr != nil {
			logging.FromContext(ctx).Error("cart_clear_release_failed", "order_id", order.ID, "error", rerr)
		}
		return err
	}
	order.CartCleared = true
	return nil
}

// RetryCartClear finishes the cart clear of a finalized order.
func (s *OrderService) RetryCartClear(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.Orders.GetOrder(ctx, orderID)
	if err != nil {
		return notFound(err, "order %s", orderID)
	}
	if order.PaymentMethod != models.PaymentCOD && !order.Payment {
		return fmt.Errorf("%w: order %s is not paid", ErrConflict, orderID)
	}
	return s.clearCart(ctx, order)
}

func (s *OrderService) UserOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	return s.Orders.ListUserOrders(ctx, userID)
}

// GetUserOrder hides orders of other users behind ErrNotFound.
func (s *OrderService) GetUserOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.Orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, notFound(err, "order %s", orderID)
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
	}
	return order, nil
}

func (s *OrderService) AllOrders(ctx context.Context, status string, offset, limit int) (int64, []models.Order, error) {
	st := models.OrderStatus(status)
	if st != "" && !st.Valid() {
		return 0, nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	return s.Orders.ListOrders(ctx, st, offset, limit)
}

func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, fmt.Errorf("%w: order id is required", ErrValidation)
	}
	next := models.OrderStatus(status)
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	order, err := s.Orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, notFound(err, "order %s", orderID)
	}
	if s.Cfg.StrictTransitions && !order.Status.CanTransition(next) {
		return nil, fmt.Errorf("%w: cannot move order from %s to %s", ErrConflict, order.Status, next)
	}
	if order.Status == next {
		return order, nil
	}

	order, err = s.Orders.UpdateOrderFields(ctx, orderID, map[string]any{"status": next})
	if err != nil {
		return nil, notFound(err, "order %s", orderID)
	}
	s.publishOrder(ctx, "order_status_changed", order)
	s.notify(ctx, order.UserID, "Order "+string(order.Status),
		fmt.Sprintf("Your order %s is now %s.", order.ID, order.Status))
	return order, nil
}

func (s *OrderService) notify(ctx context.Context, userID uuid.UUID, title, message string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.Notify(ctx, userID, title, message, "order"); err != nil {
		logging.FromContext(ctx).Warn("order_notify_failed", "user_id", userID, "error", err)
	}
}

func (s *OrderService) publishOrder(ctx context.Context, typ string, o *models.Order) {
	publish(ctx, s.Events, events.TopicOrders, o.ID.String(), events.OrderEvent{
		Type:          typ,
		OrderID:       o.ID.String(),
		UserID:        o.UserID.String(),
		Status:        string(o.Status),
		PaymentMethod: string(o.PaymentMethod),
		Payment:       o.Payment,
		Amount:        o.Amount.String(),
	})
}
