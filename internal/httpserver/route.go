package httpserver

import (
	"context"
	"net/http"

	middleware "github.com/Skotchmaster/beauty_shop/pkg/middleware/auth"
	"github.com/labstack/echo/v4"
)

type Deps struct {
	ProductHandler *ProductHTTP
	CartHandler    *CartHTTP
	OrderHandler   *OrderHTTP
	HeroHandler    *HeroHTTP
	JWTSecret      []byte

	// Optional; nil leaves /api/notification and /api/profile unrouted.
	NotificationHandler *NotificationHTTP
	ProfileHandler      *ProfileHTTP

	// Ready backs /health/ready; nil means always ready.
	Ready func(ctx context.Context) error

	UploadDir      string
	PublicAssetURL string
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready")
			}
		}
		return c.NoContent(http.StatusOK)
	})

	if d.UploadDir != "" && d.PublicAssetURL != "" {
		e.Static(d.PublicAssetURL, d.UploadDir)
	}

	authMW := middleware.NewTokenAuth(d.JWTSecret)
	api := e.Group("/api")

	products := api.Group("/product")
	products.GET("/list", d.ProductHandler.ListProducts)
	products.GET("/search", d.ProductHandler.SearchProducts)
	products.GET("/:id", d.ProductHandler.GetProduct)
	products.POST("/add", d.ProductHandler.AddProduct, authMW.RequireAdmin)
	products.PATCH("/:id", d.ProductHandler.PatchProduct, authMW.RequireAdmin)
	products.DELETE("/:id", d.ProductHandler.DeleteProduct, authMW.RequireAdmin)

	hero := api.Group("/hero")
	hero.GET("", d.HeroHandler.ActiveHeroes)
	hero.GET("/all", d.HeroHandler.AllHeroes, authMW.RequireAdmin)
	hero.POST("", d.HeroHandler.CreateHero, authMW.RequireAdmin)
	hero.PATCH("/:id", d.HeroHandler.UpdateHero, authMW.RequireAdmin)
	hero.PUT("/:id", d.HeroHandler.UpdateHero, authMW.RequireAdmin)
	hero.DELETE("/:id", d.HeroHandler.DeleteHero, authMW.RequireAdmin)

	cart := api.Group("/cart", authMW.RequireAuth)
	cart.GET("/get", d.CartHandler.GetCart)
	cart.POST("/get", d.CartHandler.GetCart)
	cart.POST("/add", d.CartHandler.AddToCart)
	cart.POST("/update", d.CartHandler.UpdateCart)
	cart.POST("/remove", d.CartHandler.RemoveFromCart)
	cart.DELETE("", d.CartHandler.ClearCart)

	order := api.Group("/order")
	order.GET("/list", d.OrderHandler.AllOrders, authMW.RequireAdmin)
	order.POST("/list", d.OrderHandler.AllOrders, authMW.RequireAdmin)
	order.POST("/status", d.OrderHandler.UpdateStatus, authMW.RequireAdmin)
	order.POST("/:id/clear-cart", d.OrderHandler.RetryCartClear, authMW.RequireAdmin)

	user := order.Group("", authMW.RequireAuth)
	user.POST("/place", d.OrderHandler.PlaceOrder)
	user.POST("/khalti/initiate", d.OrderHandler.PlaceOrderKhalti)
	user.POST("/khalti/verify", d.OrderHandler.VerifyKhalti)
	user.POST("/khalti", d.OrderHandler.PlaceOrderKhalti)
	user.POST("/verifyKhalti", d.OrderHandler.VerifyKhalti)
	user.POST("/userorders", d.OrderHandler.UserOrders)
	user.GET("/:id", d.OrderHandler.GetOrder)

	if d.NotificationHandler != nil {
		notes := api.Group("/notification")
		notes.GET("/user/:userId", d.NotificationHandler.UserNotifications, authMW.RequireAuth)
		notes.GET("/unread-count/:userId", d.NotificationHandler.UnreadCount, authMW.RequireAuth)
		notes.PATCH("/mark-read/:notificationId", d.NotificationHandler.MarkRead, authMW.RequireAuth)
		notes.POST("/send", d.NotificationHandler.Send, authMW.RequireAdmin)
	}

	if d.ProfileHandler != nil {
		profile := api.Group("/profile", authMW.RequireAuth)
		profile.GET("", d.ProfileHandler.GetProfile)
		profile.PUT("", d.ProfileHandler.UpdateProfile)
		profile.POST("/address", d.ProfileHandler.AddAddress)
		profile.PUT("/address/:addressId", d.ProfileHandler.UpdateAddress)
		profile.DELETE("/address/:addressId", d.ProfileHandler.DeleteAddress)
	}
}
