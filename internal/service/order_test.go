package service

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/Skotchmaster/beauty_shop/internal/events"
	"github.com/Skotchmaster/beauty_shop/internal/models"
	"github.com/Skotchmaster/beauty_shop/internal/payment"
	"github.com/Skotchmaster/beauty_shop/internal/transport"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderRequest(p *models.Product, shade string, qty int, amount string) transport.PlaceOrderRequest {
	a := decimal.RequireFromString(amount)
	return transport.PlaceOrderRequest{
		Items: []transport.OrderItemRequest{
			{ProductID: p.ID, Name: "whatever the client says", Shade: shade, Quantity: qty, Image: "/uploads/x.png"},
		},
		Amount: &a,
		Address: &models.Address{
			FirstName: "Asha",
			LastName:  "Rai",
			Email:     "asha@example.com",
			City:      "Kathmandu",
			Phone:     "9800000000",
		},
	}
}

func TestValidateOrderData(t *testing.T) {
	t.Parallel()

	user := uuid.New()
	p := &models.Product{ID: uuid.New()}

	tests := []struct {
		name   string
		user   uuid.UUID
		mutate func(*transport.PlaceOrderRequest)
		ok     bool
	}{
		{name: "valid", user: user, mutate: func(*transport.PlaceOrderRequest) {}, ok: true},
		{name: "no user", user: uuid.Nil, mutate: func(*transport.PlaceOrderRequest) {}},
		{name: "items missing", user: user, mutate: func(r *transport.PlaceOrderRequest) { r.Items = nil }},
		{name: "items empty", user: user, mutate: func(r *transport.PlaceOrderRequest) { r.Items = []transport.OrderItemRequest{} }},
		{name: "amount missing", user: user, mutate: func(r *transport.PlaceOrderRequest) { r.Amount = nil }},
		{name: "amount zero", user: user, mutate: func(r *transport.PlaceOrderRequest) { z := decimal.Zero; r.Amount = &z }},
		{name: "address missing", user: user, mutate: func(r *transport.PlaceOrderRequest) { r.Address = nil }},
		{name: "address empty", user: user, mutate: func(r *transport.PlaceOrderRequest) { r.Address = &models.Address{} }},
		{name: "item without id", user: user, mutate: func(r *transport.PlaceOrderRequest) { r.Items[0].ProductID = uuid.Nil }},
		{name: "item zero quantity", user: user, mutate: func(r *transport.PlaceOrderRequest) { r.Items[0].Quantity = 0 }},
		{name: "item without image", user: user, mutate: func(r *transport.PlaceOrderRequest) { r.Items[0].Image = "" }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := orderRequest(p, "Ruby", 1, "100")
			tt.mutate(&req)
			err := ValidateOrderData(tt.user, req)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestOrderService_PlaceOrderClearsCart(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	user := uuid.New()
	p := seedProduct(t, f.repo, "Tint", "500", "Ruby")

	_, err := f.carts.AddToCart(ctx, user, p.ID, "Ruby", 2)
	require.NoError(t, err)

	order, err := f.orders.PlaceOrder(ctx, user, orderRequest(p, "Ruby", 2, "1050"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, order.Status)
	assert.Equal(t, models.PaymentCOD, order.PaymentMethod)
	assert.False(t, order.Payment)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Tint", order.Items[0].Name, "name comes from the catalog")
	assert.True(t, order.Items[0].UnitPrice.Equal(decimal.NewFromInt(500)))

	cart, err := f.carts.GetCart(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, cart)

	stored, err := f.repo.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, stored.CartCleared)
	assert.Equal(t, []string{"order_placed"}, f.rec.Types(events.TopicOrders))
}

func TestOrderService_PlaceOrderRejects(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	user := uuid.New()
	p := seedProduct(t, f.repo, "Tint", "500", "Ruby")

	req := orderRequest(p, "Ruby", 1, "550")
	req.PaymentMethod = "Bitcoin"
	_, err := f.orders.PlaceOrder(ctx, user, req)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.orders.PlaceOrder(ctx, user, orderRequest(&models.Product{ID: uuid.New()}, "Ruby", 1, "550"))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.orders.PlaceOrder(ctx, user, orderRequest(p, "Coral", 1, "550"))
	assert.ErrorIs(t, err, ErrNotFound)

	orders, err := f.orders.UserOrders(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, orders, "nothing is persisted for rejected orders")
}

func TestOrderService_PlaceOrderCartClearFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	user := uuid.New()
	p := seedProduct(t, f.repo, "Tint", "500", "Ruby")

	broken := &failingCarts{err: errors.New("cart store down")}
	f.orders.Carts = broken

	order, err := f.orders.PlaceOrder(ctx, user, orderRequest(p, "Ruby", 1, "550"))
	require.ErrorIs(t, err, ErrCartSync)
	require.NotNil(t, order, "the order is kept")

	stored, err := f.repo.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.False(t, stored.CartCleared, "the marker is released for a retry")

	broken.err = nil
	require.NoError(t, f.orders.RetryCartClear(ctx, order.ID))
	require.NoError(t, f.orders.RetryCartClear(ctx, order.ID))
	assert.Equal(t, 2, broken.calls, "a cleared order is not cleared again")
}

func TestOrderService_KhaltiFlow(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	user := uuid.New()
	p := seedProduct(t, f.repo, "Tint", "500", "Ruby")

	_, err := f.carts.AddToCart(ctx, user, p.ID, "Ruby", 2)
	require.NoError(t, err)

	started, err := f.orders.InitiateKhaltiPayment(ctx, user, orderRequest(p, "Ruby", 2, "1050"))
	require.NoError(t, err)
	assert.Equal(t, "https://pay.test/"+started.Order.ID.String(), started.PaymentURL)
	assert.Equal(t, models.StatusPending, started.Order.Status)
	assert.Equal(t, models.PaymentKhalti, started.Order.PaymentMethod)
	assert.Equal(t, "pidx-"+started.Order.ID.String(), started.Order.Pidx, "gateway pidx replaces the token")

	require.Len(t, f.gateway.initiated, 1)
	sent := f.gateway.initiated[0]
	assert.Equal(t, DefaultPurchaseOrderName, sent.PurchaseOrderName)
	assert.Equal(t, int64(105000), payment.MinorUnits(sent.Amount))
	ret, err := url.Parse(sent.ReturnURL)
	require.NoError(t, err)
	assert.Equal(t, "/payment-success", ret.Path)
	assert.Equal(t, started.Order.ID.String(), ret.Query().Get("orderId"))
	assert.Equal(t, sent.Token, ret.Query().Get("pidx"))

	cart, err := f.carts.GetCart(ctx, user)
	require.NoError(t, err)
	assert.NotEmpty(t, cart, "cart stays until the payment is verified")

	paid, err := f.orders.VerifyKhaltiPayment(ctx, started.Order.Pidx+"?foo=bar")
	require.NoError(t, err)
	assert.True(t, paid.Payment)
	assert.Equal(t, models.StatusProcessing, paid.Status)
	assert.Equal(t, started.Order.Pidx, f.gateway.verified[0], "query suffix is stripped")

	cart, err = f.carts.GetCart(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, cart)

	again, err := f.orders.VerifyKhaltiPayment(ctx, started.Order.Pidx)
	require.NoError(t, err)
	assert.True(t, again.Payment)
	assert.Equal(t, models.StatusProcessing, again.Status)

	assert.Equal(t, []string{"order_payment_initiated", "order_paid"}, f.rec.Types(events.TopicOrders))
}

func TestOrderService_VerifyOutcomes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		outcome payment.Outcome
		err     error
		token   string
		want    error
	}{
		{name: "empty token", token: " ?x=1", want: ErrValidation},
		{name: "not completed", token: "p", outcome: payment.Outcome{State: payment.NotCompleted, Status: "Pending"}, want: ErrPaymentNotCompleted},
		{name: "transport failure", token: "p", err: errors.New("timeout"), want: ErrGateway},
		{name: "unknown token", token: "nobody", outcome: payment.Outcome{State: payment.Completed, Status: "Completed"}, want: ErrNotFound},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			f.gateway.outcome = tt.outcome
			f.gateway.verifyErr = tt.err

			_, err := f.orders.VerifyKhaltiPayment(context.Background(), tt.token)
			assert.ErrorIs(t, err, tt.want)

			total, _, err := f.repo.ListOrders(context.Background(), "", 0, 10)
			require.NoError(t, err)
			assert.Zero(t, total, "verification never creates orders")
		})
	}

	t.Run("provider error", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		p := seedProduct(t, f.repo, "Tint", "500", "Ruby")
		started, err := f.orders.InitiateKhaltiPayment(context.Background(), uuid.New(), orderRequest(p, "Ruby", 1, "550"))
		require.NoError(t, err)

		f.gateway.outcome = payment.Outcome{
			State: payment.ProviderFailure,
			Err:   &payment.ProviderError{StatusCode: 400, Key: "validation_error", Detail: "Not found."},
		}
		_, err = f.orders.VerifyKhaltiPayment(context.Background(), started.Order.Pidx)
		var perr *payment.ProviderError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "Not found.", perr.Detail)

		stored, err := f.repo.GetOrder(context.Background(), started.Order.ID)
		require.NoError(t, err)
		assert.False(t, stored.Payment)
		assert.Equal(t, models.StatusPending, stored.Status)
	})
}

func TestOrderService_InitiateGatewayFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	user := uuid.New()
	p := seedProduct(t, f.repo, "Tint", "500", "Ruby")

	f.gateway.initErr = &payment.ProviderError{StatusCode: 401, Detail: "Invalid token."}
	_, err := f.orders.InitiateKhaltiPayment(ctx, user, orderRequest(p, "Ruby", 1, "550"))
	var perr *payment.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 401, perr.StatusCode)

	f.gateway.initErr = errors.New("connection refused")
	_, err = f.orders.InitiateKhaltiPayment(ctx, user, orderRequest(p, "Ruby", 1, "550"))
	assert.ErrorIs(t, err, ErrGateway)

	orders, err := f.orders.UserOrders(ctx, user)
	require.NoError(t, err)
	require.Len(t, orders, 2, "pending orders are left behind")
	for _, o := range orders {
		assert.Equal(t, models.StatusPending, o.Status)
	}
}

func TestOrderService_UpdateStatus(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	p := seedProduct(t, f.repo, "Tint", "500", "Ruby")
	order, err := f.orders.PlaceOrder(ctx, uuid.New(), orderRequest(p, "Ruby", 1, "550"))
	require.NoError(t, err)

	_, err = f.orders.UpdateStatus(ctx, order.ID, "Lost")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.orders.UpdateStatus(ctx, uuid.New(), "Shipped")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.orders.UpdateStatus(ctx, order.ID, "Delivered")
	assert.ErrorIs(t, err, ErrConflict, "cannot skip shipping")

	shipped, err := f.orders.UpdateStatus(ctx, order.ID, "Shipped")
	require.NoError(t, err)
	assert.Equal(t, models.StatusShipped, shipped.Status)

	_, err = f.orders.UpdateStatus(ctx, order.ID, "Processing")
	assert.ErrorIs(t, err, ErrConflict)

	f.orders.Cfg.StrictTransitions = false
	back, err := f.orders.UpdateStatus(ctx, order.ID, "Processing")
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, back.Status)

	assert.Equal(t, []string{"order_placed", "order_status_changed", "order_status_changed"}, f.rec.Types(events.TopicOrders))
}

func TestOrderService_Reads(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	owner, other := uuid.New(), uuid.New()
	p := seedProduct(t, f.repo, "Tint", "500", "Ruby")

	order, err := f.orders.PlaceOrder(ctx, owner, orderRequest(p, "Ruby", 1, "550"))
	require.NoError(t, err)

	got, err := f.orders.GetUserOrder(ctx, owner, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = f.orders.GetUserOrder(ctx, other, order.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	total, all, err := f.orders.AllOrders(ctx, "Processing", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, all, 1)

	_, _, err = f.orders.AllOrders(ctx, "Lost", 0, 10)
	assert.ErrorIs(t, err, ErrValidation)
}
