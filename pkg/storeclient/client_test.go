package storeclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Skotchmaster/beauty_shop/internal/cart"
	"github.com/Skotchmaster/beauty_shop/internal/events"
	"github.com/Skotchmaster/beauty_shop/internal/httpserver"
	"github.com/Skotchmaster/beauty_shop/internal/models"
	"github.com/Skotchmaster/beauty_shop/internal/repo"
	"github.com/Skotchmaster/beauty_shop/internal/service"
	"github.com/Skotchmaster/beauty_shop/internal/testutil"
	"github.com/Skotchmaster/beauty_shop/pkg/tokens"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("client-secret")

func newStore(t *testing.T) (*httptest.Server, *repo.GormRepo) {
	t.Helper()
	r := &repo.GormRepo{DB: testutil.InitTestDB(t)}
	carts := &service.CartService{Store: r, Products: r, Events: events.Nop{}}

	e := echo.New()
	e.HTTPErrorHandler = httpserver.ErrorHandler
	httpserver.Register(e, &httpserver.Deps{
		ProductHandler: &httpserver.ProductHTTP{Svc: &service.CatalogService{Repo: r, Events: events.Nop{}}},
		CartHandler:    &httpserver.CartHTTP{Svc: carts, Currency: "Rs."},
		OrderHandler:   &httpserver.OrderHTTP{Svc: &service.OrderService{Orders: r, Products: r, Carts: carts}},
		HeroHandler:    &httpserver.HeroHTTP{Svc: &service.HeroService{Repo: r}},
		JWTSecret:      secret,
	})

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv, r
}

func seed(t *testing.T, r *repo.GormRepo, name, price string, shades ...string) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Category: models.CategoryFace,
		Images:   []string{"/uploads/" + name + ".png"},
	}
	for _, s := range shades {
		p.Shades = append(p.Shades, models.Shade{Name: s, ColorCode: "#FFEEDD", Images: []string{"/uploads/" + s + ".png"}})
	}
	created, err := r.CreateProduct(context.Background(), p)
	require.NoError(t, err)
	return created
}

func userToken(t *testing.T) string {
	t.Helper()
	tok, err := tokens.NewAccessToken(uuid.NewString(), "user", time.Now().Add(time.Hour), secret)
	require.NoError(t, err)
	return tok
}

func TestClient_Catalog(t *testing.T) {
	t.Parallel()
	srv, r := newStore(t)
	for i := 0; i < 3; i++ {
		seed(t, r, uuid.NewString()[:8], "100", "Ivory")
	}

	c := NewClient(srv.URL + "/")
	page, err := c.ListProducts(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Len(t, page.Products, 2)
	assert.True(t, page.Meta.HasNext)
	assert.EqualValues(t, 3, page.Meta.Total)

	idx, err := c.Catalog(context.Background())
	require.NoError(t, err)
	assert.Len(t, idx, 3)
}

func TestCartMirror_Errors(t *testing.T) {
	t.Parallel()
	srv, r := newStore(t)
	p := seed(t, r, "Concealer", "800", "Ivory")
	c := NewClient(srv.URL)

	err := c.CartMirror("garbage").AddToCart(context.Background(), p.ID, "Ivory", 1)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	err = c.CartMirror(userToken(t)).AddToCart(context.Background(), p.ID, "Sand", 1)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.NotEmpty(t, apiErr.Message)
}

func TestReconciler_LoginThroughAPI(t *testing.T) {
	t.Parallel()
	srv, r := newStore(t)
	ctx := context.Background()
	concealer := seed(t, r, "Concealer", "800", "Ivory", "Sand")
	blush := seed(t, r, "Blush", "450", "Peach")

	c := NewClient(srv.URL)
	idx, err := c.Catalog(ctx)
	require.NoError(t, err)
	mirror := c.CartMirror(userToken(t))

	require.NoError(t, mirror.AddToCart(ctx, concealer.ID, "Ivory", 1))

	rc := cart.NewReconciler(idx)
	require.NoError(t, rc.AddToCart(ctx, concealer.ID, "Ivory", 5))
	require.NoError(t, rc.AddToCart(ctx, blush.ID, "Peach", 2))

	require.NoError(t, rc.Login(ctx, mirror))
	assert.Equal(t, 3, rc.GetCartCount(), "server quantity wins, local-only entry is kept")

	server, err := mirror.LoadCart(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, server[concealer.ID.String()]["Ivory"].Quantity)
	assert.Equal(t, 2, server[blush.ID.String()]["Peach"].Quantity)

	require.NoError(t, rc.UpdateCart(ctx, concealer.ID, "Ivory", 0))
	server, err = mirror.LoadCart(ctx)
	require.NoError(t, err)
	_, ok := server[concealer.ID.String()]
	assert.False(t, ok)

	err = rc.AddToCart(ctx, concealer.ID, "Porcelain", 1)
	assert.ErrorIs(t, err, cart.ErrShadeNotFound)

	assert.True(t, rc.GetTotalCartAmount().Equal(decimal.NewFromInt(900)))
	require.NoError(t, rc.GetUserCart(ctx))
	assert.Equal(t, 2, rc.GetCartCount())
}
