package container

import (
	"khoomi-api-io/storefront/internal/auth"
	"khoomi-api-io/storefront/internal/config"
	"khoomi-api-io/storefront/internal/pubsub"
	"khoomi-api-io/storefront/pkg/controllers"
	"khoomi-api-io/storefront/pkg/services"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

type ServiceContainer struct {
	Authenticator *auth.Authenticator
	Redis         *redis.Client

	CartService         services.CartService
	CheckoutService     services.CheckoutService
	PendingCartService  services.PendingCartService
	SelectionService    services.SelectionService
	NotificationService services.NotificationService
	OrderPublisher      *services.KafkaOrderPublisher

	cartCache *services.CartServiceImpl

	CartController        *controllers.CartController
	PendingCartController *controllers.PendingCartController
	CheckoutController    *controllers.CheckoutController
	SelectionController   *controllers.SelectionController
}

func NewServiceContainer(cfg *config.Config, db *mongo.Database, client *redis.Client) *ServiceContainer {
	catalogStore := services.NewCatalogStore(db)
	couponStore := services.NewCouponStore(db)
	orderPublisher := services.NewKafkaOrderPublisher(cfg.KafkaBrokers, cfg.KafkaOrderTopic)

	notificationService := services.NewNotificationService(pubsub.NewPublisher(client))
	cartService := services.NewCartService(services.NewCartRepository(client, cfg.CartTTL), catalogStore).
		OnChange(services.InvalidateOnChange(notificationService))
	checkoutService := services.NewCheckoutService(cartService, catalogStore, couponStore, orderPublisher, cfg.RevalidationTimeout)
	pendingCartService := services.NewReconciler(services.NewPendingSlot(client, cfg.PendingCartTTL), catalogStore, cartService)
	selectionService := services.NewSelectionService(catalogStore)

	return &ServiceContainer{
		Authenticator: auth.NewAuthenticator(cfg.Secret, client),
		Redis:         client,

		CartService:         cartService,
		cartCache:           cartService,
		CheckoutService:     checkoutService,
		PendingCartService:  pendingCartService,
		SelectionService:    selectionService,
		NotificationService: notificationService,
		OrderPublisher:      orderPublisher,

		CartController:        controllers.InitCartController(cartService),
		PendingCartController: controllers.InitPendingCartController(pendingCartService, cartService, notificationService),
		CheckoutController:    controllers.InitCheckoutController(checkoutService, notificationService),
		SelectionController:   controllers.InitSelectionController(selectionService),
	}
}

// Close releases the order writer.
func (sc *ServiceContainer) Close() error {
	return sc.OrderPublisher.Close()
}

// HandleCacheMessage applies a message from the cache channel to this
// instance's caches.
func (sc *ServiceContainer) HandleCacheMessage(msg pubsub.CacheMessage) {
	sc.cartCache.HandleCacheMessage(msg)
}
