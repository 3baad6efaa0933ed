package httpserver

import (
	"errors"
	"net/http"

	"github.com/Skotchmaster/beauty_shop/internal/service"
	"github.com/Skotchmaster/beauty_shop/internal/transport"
	"github.com/Skotchmaster/beauty_shop/internal/util"
	"github.com/Skotchmaster/beauty_shop/pkg/logging"
	"github.com/labstack/echo/v4"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) PlaceOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.place")

	userID, err := GetID(c)
	if err != nil {
		return unauthorized(l, "place_order_error", err)
	}

	var req transport.PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "place_order_error", "invalid body", err)
	}

	order, err := h.Svc.PlaceOrder(ctx, userID, req)
	if errors.Is(err, service.ErrCartSync) && order != nil {
		l.Warn("place_order_cart_not_cleared", "order_id", order.ID, "error", err)
		return c.JSON(http.StatusOK, map[string]any{
			"success":     true,
			"message":     "Order Placed",
			"order":       order,
			"cartCleared": false,
		})
	}
	if err != nil {
		return fail(l, "place_order_error", err)
	}

	l.Info("place_order_success", "order_id", order.ID)
	return c.JSON(http.StatusOK, map[string]any{
		"success":     true,
		"message":     "Order Placed",
		"order":       order,
		"cartCleared": true,
	})
}

func (h *OrderHTTP) PlaceOrderKhalti(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.khalti")

	userID, err := GetID(c)
	if err != nil {
		return unauthorized(l, "khalti_initiate_error", err)
	}

	var req transport.PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "khalti_initiate_error", "invalid body", err)
	}

	started, err := h.Svc.InitiateKhaltiPayment(ctx, userID, req)
	if err != nil {
		return fail(l, "khalti_initiate_error", err)
	}

	l.Info("khalti_initiate_success", "order_id", started.Order.ID)
	return c.JSON(http.StatusOK, map[string]any{
		"success":    true,
		"paymentUrl": started.PaymentURL,
		"pidx":       started.Order.Pidx,
		"orderId":    started.Order.ID,
	})
}

func (h *OrderHTTP) VerifyKhalti(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.verify_khalti")

	var req transport.VerifyPaymentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "khalti_verify_error", "invalid body", err)
	}

	order, err := h.Svc.VerifyKhaltiPayment(ctx, req.PaymentToken())
	if errors.Is(err, service.ErrCartSync) && order != nil {
		l.Warn("khalti_verify_cart_not_cleared", "order_id", order.ID, "error", err)
		err = nil
	}
	if err != nil {
		return fail(l, "khalti_verify_error", err)
	}

	l.Info("khalti_verify_success", "order_id", order.ID)
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Payment verified",
		"order":   order,
	})
}

func (h *OrderHTTP) UserOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.user_orders")

	userID, err := GetID(c)
	if err != nil {
		return unauthorized(l, "user_orders_error", err)
	}

	orders, err := h.Svc.UserOrders(ctx, userID)
	if err != nil {
		return fail(l, "user_orders_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "orders": orders})
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	userID, err := GetID(c)
	if err != nil {
		return unauthorized(l, "get_order_error", err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "get_order_error", "order id is not a uuid", err)
	}

	order, err := h.Svc.GetUserOrder(ctx, userID, id)
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "order": order})
}

func (h *OrderHTTP) AllOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, orders, err := h.Svc.AllOrders(ctx, c.QueryParam("status"), offset, limit)
	if err != nil {
		return fail(l, "list_orders_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"orders":  orders,
		"meta":    transport.NewPageMeta(page, offset, limit, total),
	})
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.status")

	var req transport.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_status_error", "invalid body", err)
	}

	order, err := h.Svc.UpdateStatus(ctx, req.OrderID, req.Status)
	if err != nil {
		return fail(l, "update_status_error", err)
	}

	l.Info("update_status_success", "order_id", order.ID, "order_status", order.Status)
	return c.JSON(http.StatusOK, map[string]any{"success": true, "message": "Status Updated", "order": order})
}

// RetryCartClear clears the owner's cart for a placed order whose first
// clear failed.
func (h *OrderHTTP) RetryCartClear(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.clear_cart")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "clear_cart_error", "order id is not a uuid", err)
	}

	if err := h.Svc.RetryCartClear(ctx, id); err != nil {
		return fail(l, "clear_cart_error", err)
	}

	l.Info("clear_cart_success", "order_id", id)
	return c.JSON(http.StatusOK, map[string]any{"success": true, "cartCleared": true})
}
