package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Skotchmaster/beauty_shop/internal/models"
	"github.com/Skotchmaster/beauty_shop/internal/repo"
	"github.com/Skotchmaster/beauty_shop/internal/service"
	"github.com/Skotchmaster/beauty_shop/internal/transport"
	"github.com/Skotchmaster/beauty_shop/internal/util"
	"github.com/Skotchmaster/beauty_shop/pkg/logging"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// maxShades bounds the shade{i}_image{n} fields read from a product form.
const maxShades = 10

type ProductHTTP struct {
	Svc *service.CatalogService
}

func (h *ProductHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "get_product_error", "product id is not a uuid", err)
	}

	product, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return fail(l, "get_product_error", err)
	}

	return c.JSON(http.StatusOK, map[string]any{"success": true, "product": product})
}

func (h *ProductHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.list")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	f := repo.ProductFilter{Category: models.Category(c.QueryParam("category"))}
	if v := c.QueryParam("bestseller"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return badRequest(l, "list_products_error", "bestseller must be true or false", err)
		}
		f.Bestseller = &b
	}

	total, items, err := h.Svc.GetProducts(ctx, f, offset, limit)
	if err != nil {
		return fail(l, "list_products_error", err)
	}

	l.Info("list_products_success", "total", total)
	return c.JSON(http.StatusOK, map[string]any{
		"success":  true,
		"products": items,
		"meta":     transport.NewPageMeta(page, offset, limit, total),
	})
}

func (h *ProductHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.SearchProducts(ctx, c.QueryParam("q"), offset, limit)
	if err != nil {
		return fail(l, "search_products_error", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success":  true,
		"products": items,
		"meta":     transport.NewPageMeta(page, offset, limit, total),
	})
}

// AddProduct reads the admin multipart form: image1..image4, shadeNames as
// a JSON array and shade{i}_image1..4 / shadeColor{i} per shade.
func (h *ProductHTTP) AddProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.add")

	form, err := c.MultipartForm()
	if err != nil {
		return badRequest(l, "add_product_error", "multipart form expected", err)
	}

	in, err := newProductFromForm(c)
	if err != nil {
		return badRequest(l, "add_product_error", err.Error(), err)
	}

	for i := 1; i <= models.MaxProductImages; i++ {
		if fh := formFile(form, fmt.Sprintf("image%d", i)); fh != nil {
			in.Images = append(in.Images, fromFileHeader(fh))
		}
	}

	var names []string
	if raw := strings.TrimSpace(c.FormValue("shadeNames")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &names); err != nil {
			return badRequest(l, "add_product_error", "invalid shade names format", err)
		}
	}
	if len(names) > maxShades {
		return badRequest(l, "add_product_error", fmt.Sprintf("at most %d shades", maxShades), nil)
	}
	for i, name := range names {
		sh := service.NewShade{Name: name, ColorCode: c.FormValue(fmt.Sprintf("shadeColor%d", i))}
		for n := 1; n <= models.MaxShadeImages; n++ {
			if fh := formFile(form, fmt.Sprintf("shade%d_image%d", i, n)); fh != nil {
				sh.Images = append(sh.Images, fromFileHeader(fh))
			}
		}
		in.Shades = append(in.Shades, sh)
	}

	product, err := h.Svc.CreateProduct(ctx, in)
	if err != nil {
		return fail(l, "add_product_error", err)
	}

	l.Info("add_product_success", "product_id", product.ID)
	return c.JSON(http.StatusCreated, map[string]any{
		"success":   true,
		"message":   "Product added successfully",
		"productId": product.ID,
		"product":   product,
	})
}

func newProductFromForm(c echo.Context) (service.NewProduct, error) {
	in := service.NewProduct{
		Name:        c.FormValue("name"),
		Description: c.FormValue("description"),
		Brand:       c.FormValue("brand"),
		Category:    models.Category(c.FormValue("category")),
		Bestseller:  c.FormValue("bestseller") == "true",
	}
	if in.Name == "" || in.Description == "" || in.Brand == "" || in.Category == "" {
		return in, errors.New("missing required fields")
	}
	price, err := decimal.NewFromString(strings.TrimSpace(c.FormValue("price")))
	if err != nil {
		return in, errors.New("price is not a number")
	}
	in.Price = price
	return in, nil
}

func (h *ProductHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.patch")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "patch_product_error", "product id is not a uuid", err)
	}

	var req transport.PatchProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "patch_product_error", "invalid body", err)
	}

	product, err := h.Svc.PatchProduct(ctx, id, req)
	if err != nil {
		return fail(l, "patch_product_error", err)
	}

	l.Info("patch_product_success", "product_id", id)
	return c.JSON(http.StatusOK, map[string]any{"success": true, "product": product})
}

func (h *ProductHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "delete_product_error", "product id is not a uuid", err)
	}

	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		return fail(l, "delete_product_error", err)
	}

	l.Info("delete_product_success", "product_id", id)
	return c.JSON(http.StatusOK, map[string]any{"success": true, "message": "Product removed"})
}
