package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	cartapp "github.com/storefront-go/storefront/internal/cart/app"
	catalogapp "github.com/storefront-go/storefront/internal/catalog/app"
	checkoutapp "github.com/storefront-go/storefront/internal/checkout/app"
	discountapp "github.com/storefront-go/storefront/internal/discount/app"
	orderapp "github.com/storefront-go/storefront/internal/order/app"
)

// customerHeader carries the already-authenticated customer id; the
// session layer in front of this API owns authentication.
const customerHeader = "X-Customer-ID"

type Services struct {
	Catalog   *catalogapp.Service
	Cart      *cartapp.Service
	Discounts *discountapp.Ledger
	Orders    *orderapp.Service
	Checkout  *checkoutapp.Service
}

func NewRouter(s Services, log *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.Default())

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/readyz", func(c *gin.Context) { c.Status(http.StatusOK) })

	h := &handlers{services: s, log: log}

	api := r.Group("/api")
	{
		api.GET("/products", h.listProducts)
		api.GET("/products/search", h.searchProducts)
		api.GET("/products/featured", h.featuredProducts)
		api.GET("/products/:id", h.getProduct)
		api.GET("/products/:id/related", h.relatedProducts)
		api.POST("/products", h.createProduct)
		api.PUT("/products/:id", h.updateProduct)
		api.DELETE("/products/:id", h.deleteProduct)

		api.GET("/categories", h.listCategories)
		api.GET("/categories/:id", h.getCategory)
		api.GET("/categories/:id/products", h.productsByCategory)
		api.POST("/categories", h.createCategory)
		api.PUT("/categories/:id", h.updateCategory)
		api.DELETE("/categories/:id", h.deleteCategory)

		api.POST("/discounts", h.createDiscount)
		api.GET("/discounts", h.listDiscounts)
		api.POST("/discounts/validate", h.validateDiscount)
		api.DELETE("/discounts/:code", h.deactivateDiscount)

		withCustomer := api.Group("", h.requireCustomer)
		{
			withCustomer.GET("/cart", h.getCart)
			withCustomer.POST("/cart/items", h.addCartItem)
			withCustomer.PUT("/cart/items/:itemId", h.updateCartItem)
			withCustomer.DELETE("/cart/items/:itemId", h.removeCartItem)
			withCustomer.DELETE("/cart", h.clearCart)
			withCustomer.POST("/cart/validate", h.validateCart)

			withCustomer.POST("/checkout/quote", h.quote)
			withCustomer.POST("/checkout", h.processCheckout)

			withCustomer.GET("/orders", h.listOrders)
			withCustomer.GET("/orders/:id", h.getOrder)
			withCustomer.POST("/orders/:id/cancel", h.cancelOrder)
			withCustomer.PUT("/orders/:id/status", h.updateOrderStatus)
		}
	}

	return r
}

type handlers struct {
	services Services
	log      *slog.Logger
}

func (h *handlers) requireCustomer(c *gin.Context) {
	if c.GetHeader(customerHeader) == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, envelope{
			Success: false,
			Error:   &errorBody{Message: customerHeader + " header is required", Code: "INVALID_INPUT"},
		})
		return
	}
	c.Next()
}

func (h *handlers) customerID(c *gin.Context) string {
	return c.GetHeader(customerHeader)
}
