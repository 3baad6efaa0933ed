package httpserver

import (
	"net/http"

	"github.com/Skotchmaster/beauty_shop/internal/service"
	"github.com/Skotchmaster/beauty_shop/internal/transport"
	"github.com/Skotchmaster/beauty_shop/pkg/logging"
	"github.com/labstack/echo/v4"
)

type ProfileHTTP struct {
	Svc *service.ProfileService
}

func (h *ProfileHTTP) GetProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "profile.get")

	userID, err := GetID(c)
	if err != nil {
		return unauthorized(l, "get_profile_error", err)
	}

	p, err := h.Svc.Get(ctx, userID)
	if err != nil {
		return fail(l, "get_profile_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "profile": p})
}

func (h *ProfileHTTP) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "profile.update")

	userID, err := GetID(c)
	if err != nil {
		return unauthorized(l, "update_profile_error", err)
	}

	var req transport.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_profile_error", "invalid body", err)
	}

	p, err := h.Svc.Update(ctx, userID, req)
	if err != nil {
		return fail(l, "update_profile_error", err)
	}

	l.Info("update_profile_success", "user_id", userID)
	return c.JSON(http.StatusOK, map[string]any{"success": true, "profile": p})
}

func (h *ProfileHTTP) AddAddress(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "profile.add_address")

	userID, err := GetID(c)
	if err != nil {
		return unauthorized(l, "add_address_error", err)
	}

	var req transport.AddressRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "add_address_error", "invalid body", err)
	}

	p, saved, err := h.Svc.AddAddress(ctx, userID, req)
	if err != nil {
		return fail(l, "add_address_error", err)
	}

	l.Info("add_address_success", "user_id", userID, "address_id", saved.ID)
	return c.JSON(http.StatusCreated, map[string]any{"success": true, "address": saved, "addresses": p.Addresses})
}

func (h *ProfileHTTP) UpdateAddress(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "profile.update_address")

	userID, err := GetID(c)
	if err != nil {
		return unauthorized(l, "update_address_error", err)
	}
	id, err := paramID(c, "addressId")
	if err != nil {
		return badRequest(l, "update_address_error", "address id is not a uuid", err)
	}

	var req transport.AddressRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_address_error", "invalid body", err)
	}

	p, err := h.Svc.UpdateAddress(ctx, userID, id, req)
	if err != nil {
		return fail(l, "update_address_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "addresses": p.Addresses})
}

func (h *ProfileHTTP) DeleteAddress(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "profile.delete_address")

	userID, err := GetID(c)
	if err != nil {
		return unauthorized(l, "delete_address_error", err)
	}
	id, err := paramID(c, "addressId")
	if err != nil {
		return badRequest(l, "delete_address_error", "address id is not a uuid", err)
	}

	p, err := h.Svc.DeleteAddress(ctx, userID, id)
	if err != nil {
		return fail(l, "delete_address_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "addresses": p.Addresses})
}
