package httpserver

import (
	"net/http"
	"strconv"

	"github.com/Skotchmaster/beauty_shop/internal/service"
	"github.com/Skotchmaster/beauty_shop/internal/transport"
	"github.com/Skotchmaster/beauty_shop/pkg/logging"
	"github.com/labstack/echo/v4"
)

type HeroHTTP struct {
	Svc *service.HeroService
}

func (h *HeroHTTP) ActiveHeroes(c echo.Context) error {
	return h.list(c, true)
}

func (h *HeroHTTP) AllHeroes(c echo.Context) error {
	return h.list(c, false)
}

func (h *HeroHTTP) list(c echo.Context, activeOnly bool) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "hero.list")

	heroes, err := h.Svc.List(ctx, activeOnly)
	if err != nil {
		return fail(l, "list_heroes_error", err)
	}
	return c.JSON(http.StatusOK, heroes)
}

// heroForm reads the text fields shared by create and update.
func heroForm(c echo.Context) (transport.PatchHeroRequest, *service.Upload, error) {
	var req transport.PatchHeroRequest
	form, err := c.MultipartForm()
	if err != nil {
		return req, nil, err
	}

	if v, ok := formValue(form, "title"); ok {
		req.Title = &v
	}
	if v, ok := formValue(form, "price"); ok {
		req.Price = &v
	}
	if v, ok := formValue(form, "buttonText"); ok {
		req.ButtonText = &v
	}
	if v, ok := formValue(form, "isActive"); ok {
		active := v == "true"
		req.IsActive = &active
	}
	if v, ok := formValue(form, "order"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return req, nil, err
		}
		req.Order = &n
	}

	var up *service.Upload
	if fh := formFile(form, "image"); fh != nil {
		u := fromFileHeader(fh)
		up = &u
	}
	return req, up, nil
}

func (h *HeroHTTP) CreateHero(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "hero.create")

	req, image, err := heroForm(c)
	if err != nil {
		return badRequest(l, "create_hero_error", "invalid form", err)
	}

	in := service.NewHero{IsActive: req.IsActive, Image: image}
	if req.Title != nil {
		in.Title = *req.Title
	}
	if req.Price != nil {
		in.Price = *req.Price
	}
	if req.ButtonText != nil {
		in.ButtonText = *req.ButtonText
	}
	if req.Order != nil {
		in.Order = *req.Order
	}

	hero, err := h.Svc.Create(ctx, in)
	if err != nil {
		return fail(l, "create_hero_error", err)
	}

	l.Info("create_hero_success", "hero_id", hero.ID)
	return c.JSON(http.StatusCreated, hero)
}

func (h *HeroHTTP) UpdateHero(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "hero.update")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "update_hero_error", "hero id is not a uuid", err)
	}
	req, image, err := heroForm(c)
	if err != nil {
		return badRequest(l, "update_hero_error", "invalid form", err)
	}

	hero, err := h.Svc.Update(ctx, id, req, image)
	if err != nil {
		return fail(l, "update_hero_error", err)
	}
	return c.JSON(http.StatusOK, hero)
}

func (h *HeroHTTP) DeleteHero(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "hero.delete")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "delete_hero_error", "hero id is not a uuid", err)
	}

	if err := h.Svc.Delete(ctx, id); err != nil {
		return fail(l, "delete_hero_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "message": "Hero image deleted successfully"})
}
