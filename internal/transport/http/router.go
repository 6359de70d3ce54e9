package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/farmcom/farmcom/internal/handlers"
	"github.com/farmcom/farmcom/internal/models"
	"github.com/farmcom/farmcom/internal/service"
)

type Deps struct {
	DB             *gorm.DB
	AuthHandler    *handlers.AuthHandler
	ProductHandler *handlers.ProductHandler
	OrderHandler   *handlers.OrderHandler
	UploadHandler  *handlers.UploadHandler
	SearchHandler  *handlers.SearchHandler
	ContentHandler *handlers.ContentHandler
	TokenService   *service.TokenService
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	v1.POST("/auth/signup", d.AuthHandler.Signup)
	v1.POST("/auth/login", d.AuthHandler.Login)

	v1.GET("/products", d.ProductHandler.GetProducts)
	v1.GET("/products/:id", d.ProductHandler.GetProduct)

	sellers := d.TokenService.RequireRole(models.RoleSeller, models.RoleAdmin)
	v1.POST("/products", d.ProductHandler.CreateProduct, sellers)
	v1.DELETE("/products/:id", d.ProductHandler.DeleteProduct, sellers)
	v1.POST("/upload/image", d.UploadHandler.UploadImage, sellers)

	orders := v1.Group("/orders", d.TokenService.RequireAuth)
	orders.POST("", d.OrderHandler.CreateOrder)
	orders.GET("", d.OrderHandler.GetOrders)
	orders.PATCH("/:id/rate", d.OrderHandler.RateOrder)

	v1.GET("/orders/seller", d.OrderHandler.GetSellerOrders, d.TokenService.RequireRole(models.RoleSeller))
	v1.PATCH("/orders/:id/deliver", d.OrderHandler.MarkDelivered, sellers)

	v1.GET("/search", d.SearchHandler.Search)
	v1.GET("/content/:page", d.ContentHandler.GetPage)
}
