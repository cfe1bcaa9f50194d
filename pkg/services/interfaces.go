package services

import (
	"context"

	"khoomi-api-io/storefront/pkg/cart"
	"khoomi-api-io/storefront/pkg/catalog"
	"khoomi-api-io/storefront/pkg/discount"
	"khoomi-api-io/storefront/pkg/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CatalogStore reads products. Products are never written through it.
type CatalogStore interface {
	GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*models.Product, error)
}

// CouponStore looks coupons up by code. Coupon CRUD lives elsewhere.
type CouponStore interface {
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
}

// CartRepository persists one cart snapshot per user.
type CartRepository interface {
	Load(ctx context.Context, userID primitive.ObjectID) (models.Cart, error)
	Save(ctx context.Context, userID primitive.ObjectID, c models.Cart) error
}

// PendingSlot holds at most one deferred add per guest session. Take removes
// the entry it returns; an empty slot yields nil, nil.
type PendingSlot interface {
	Put(ctx context.Context, session string, entry models.PendingCartEntry) error
	Take(ctx context.Context, session string) (*models.PendingCartEntry, error)
}

// OrderPublisher hands a confirmed checkout to order creation.
type OrderPublisher interface {
	PublishOrder(ctx context.Context, summary models.CheckoutSummary) error
}

// SelectionService resolves a shopper's color and size picks on a product page.
type SelectionService interface {
	Resolve(ctx context.Context, slug string, sel catalog.Selection) (*SelectionResult, error)
}

// SelectionResult is the product page state for one selection.
type SelectionResult struct {
	Product    *models.Product    `json:"product"`
	Resolution catalog.Resolution `json:"resolution"`
}

// CartService defines the interface for cart-related operations
type CartService interface {
	GetCart(ctx context.Context, userID primitive.ObjectID) (models.Cart, error)
	CachedCart(ctx context.Context, userID primitive.ObjectID) (models.Cart, error)
	AddItem(ctx context.Context, userID primitive.ObjectID, req models.CartItemRequest) (*CartMutation, error)
	SetQuantity(ctx context.Context, userID primitive.ObjectID, req models.CartQuantityRequest) (*CartMutation, error)
	RemoveItem(ctx context.Context, userID primitive.ObjectID, key models.LineKey) (*CartMutation, error)
	ToggleSelected(ctx context.Context, userID primitive.ObjectID, key models.LineKey) (*CartMutation, error)
	SelectAll(ctx context.Context, userID primitive.ObjectID, selected bool) (*CartMutation, error)
	RemoveSelected(ctx context.Context, userID primitive.ObjectID) (*CartMutation, error)
	Clear(ctx context.Context, userID primitive.ObjectID) (*CartMutation, error)

	// AddProduct adds a variant of an already fetched product.
	AddProduct(ctx context.Context, userID primitive.ObjectID, p models.Product, color, size string, quantity int) (*CartMutation, error)

	ValidateCart(ctx context.Context, userID primitive.ObjectID) (*models.CartValidationResult, error)
}

// CartMutation is the cart after a change and what the change did.
type CartMutation struct {
	Cart    models.Cart  `json:"cart"`
	Outcome cart.Outcome `json:"outcome"`
}

// CheckoutService prices and confirms the selected cart lines.
type CheckoutService interface {
	Quote(ctx context.Context, userID primitive.ObjectID, req models.CheckoutRequest) (*discount.Quote, error)
	Complete(ctx context.Context, userID primitive.ObjectID, req models.CheckoutRequest) (*models.CheckoutSummary, error)
}

// PendingCartService is the deferred add-to-cart flow around login.
type PendingCartService interface {
	Stash(ctx context.Context, session string, req models.CartItemRequest) (*models.GuestCartResponse, error)
	Replay(ctx context.Context, session string, userID primitive.ObjectID) (*models.PendingReplay, error)
}

// NotificationService fans cart changes out to other instances.
type NotificationService interface {
	InvalidateCartCache(ctx context.Context, userID primitive.ObjectID) error
	PendingCartStashed(ctx context.Context, session string) error
	PendingCartReplayed(ctx context.Context, session string, userID primitive.ObjectID) error
	PendingCartDiscarded(ctx context.Context, session string, reason models.ErrorKind) error
	CheckoutCompleted(ctx context.Context, userID primitive.ObjectID) error
}
