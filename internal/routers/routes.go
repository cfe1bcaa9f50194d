package routers

import (
	"khoomi-api-io/storefront/internal/container"
	"khoomi-api-io/storefront/internal/middleware"
	"khoomi-api-io/storefront/pkg/controllers"

	"github.com/gin-gonic/gin"
)

// InitRoute builds the storefront router on top of serviceContainer.
func InitRoute(serviceContainer *container.ServiceContainer, rateLimit uint) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), middleware.CorsMiddleware())

	api := router.Group("/v1", middleware.StorefrontRateLimiter(serviceContainer.Redis, rateLimit))
	{
		api.GET("/ping", controllers.Ping)

		productRoutes(api, serviceContainer)
		guestCartRoutes(api, serviceContainer)
		cartRoutes(api, serviceContainer)
		checkoutRoutes(api, serviceContainer)
	}

	return router
}

// productRoutes configures public product page endpoints
func productRoutes(api *gin.RouterGroup, serviceContainer *container.ServiceContainer) {
	products := api.Group("/products")
	products.GET("/:slug/selection", serviceContainer.SelectionController.Resolve())
}

// guestCartRoutes configures the add-to-cart endpoint open to signed-out shoppers
func guestCartRoutes(api *gin.RouterGroup, serviceContainer *container.ServiceContainer) {
	guest := api.Group("/guest").Use(middleware.OptionalAuth(serviceContainer.Authenticator))
	guest.POST("/carts", serviceContainer.PendingCartController.AddToCart())
}

// cartRoutes configures cart-related endpoints
func cartRoutes(api *gin.RouterGroup, serviceContainer *container.ServiceContainer) {
	cart := api.Group("/:userid/carts")
	cartController := serviceContainer.CartController
	{
		secured := cart.Group("").Use(middleware.Auth(serviceContainer.Authenticator))
		secured.GET("", cartController.GetCart())
		secured.POST("", cartController.AddItem())
		secured.PUT("/quantity", cartController.SetQuantity())
		secured.DELETE("/item", cartController.RemoveItem())
		secured.DELETE("/clear", cartController.Clear())

		// Checkout selection
		secured.PUT("/selected", cartController.ToggleSelected())
		secured.PUT("/selected/all", cartController.SelectAll())
		secured.DELETE("/selected", cartController.RemoveSelected())

		// Cart validation
		secured.GET("/validate", cartController.ValidateCart())

		// Add-to-cart parked before sign in
		secured.POST("/pending/replay", serviceContainer.PendingCartController.Replay())
	}
}

// checkoutRoutes configures checkout endpoints
func checkoutRoutes(api *gin.RouterGroup, serviceContainer *container.ServiceContainer) {
	checkout := api.Group("/:userid/checkout").Use(middleware.Auth(serviceContainer.Authenticator))
	checkout.POST("/quote", serviceContainer.CheckoutController.Quote())
	checkout.POST("/complete", serviceContainer.CheckoutController.Complete())
}
