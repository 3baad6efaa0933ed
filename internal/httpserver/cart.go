package httpserver

import (
	"net/http"

	"github.com/Skotchmaster/beauty_shop/internal/cart"
	"github.com/Skotchmaster/beauty_shop/internal/models"
	"github.com/Skotchmaster/beauty_shop/internal/service"
	"github.com/Skotchmaster/beauty_shop/internal/transport"
	"github.com/Skotchmaster/beauty_shop/pkg/logging"
	"github.com/labstack/echo/v4"
)

type CartHTTP struct {
	Svc      *service.CartService
	Currency string
}

func (h *CartHTTP) respond(c echo.Context, data models.CartData) error {
	return c.JSON(http.StatusOK, transport.CartResponse{
		Success:  true,
		CartData: data,
		Count:    cart.FromData(data).Count(),
		Currency: h.Currency,
	})
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	userID, err := GetID(c)
	if err != nil {
		return unauthorized(l, "get_cart_error", err)
	}

	data, err := h.Svc.GetCart(ctx, userID)
	if err != nil {
		return fail(l, "get_cart_error", err)
	}
	return h.respond(c, data)
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	userID, err := GetID(c)
	if err != nil {
		return unauthorized(l, "add_to_cart_error", err)
	}

	var req transport.CartItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "add_to_cart_error", "invalid body", err)
	}

	data, err := h.Svc.AddToCart(ctx, userID, req.ItemID, req.Shade, req.Quantity)
	if err != nil {
		return fail(l, "add_to_cart_error", err)
	}

	l.Info("add_to_cart_success", "product_id", req.ItemID, "shade", req.Shade)
	return h.respond(c, data)
}

func (h *CartHTTP) UpdateCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update")

	userID, err := GetID(c)
	if err != nil {
		return unauthorized(l, "update_cart_error", err)
	}

	var req transport.CartItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_cart_error", "invalid body", err)
	}

	data, err := h.Svc.UpdateCart(ctx, userID, req.ItemID, req.Shade, req.Quantity)
	if err != nil {
		return fail(l, "update_cart_error", err)
	}
	return h.respond(c, data)
}

func (h *CartHTTP) RemoveFromCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	userID, err := GetID(c)
	if err != nil {
		return unauthorized(l, "remove_from_cart_error", err)
	}

	var req transport.CartItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "remove_from_cart_error", "invalid body", err)
	}

	data, err := h.Svc.RemoveFromCart(ctx, userID, req.ItemID, req.Shade)
	if err != nil {
		return fail(l, "remove_from_cart_error", err)
	}
	return h.respond(c, data)
}

func (h *CartHTTP) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	userID, err := GetID(c)
	if err != nil {
		return unauthorized(l, "clear_cart_error", err)
	}

	if err := h.Svc.ClearCart(ctx, userID); err != nil {
		return fail(l, "clear_cart_error", err)
	}
	return h.respond(c, models.CartData{})
}
