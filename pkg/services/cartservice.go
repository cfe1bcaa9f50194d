package services

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"khoomi-api-io/storefront/internal/pubsub"
	"khoomi-api-io/storefront/pkg/cart"
	"khoomi-api-io/storefront/pkg/catalog"
	"khoomi-api-io/storefront/pkg/models"
	"khoomi-api-io/storefront/pkg/util"

	lru "github.com/hashicorp/golang-lru"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	cartLockStripes = 64
	cartCacheSize   = 4096
	cartCacheMaxAge = 30 * time.Second
)

// CartListener is told about every cart snapshot that was saved.
type CartListener func(userID primitive.ObjectID, c models.Cart)

// CartServiceImpl implements the CartService interface
type CartServiceImpl struct {
	carts     CartRepository
	catalog   CatalogStore
	now       func() time.Time
	listeners []CartListener

	locks  [cartLockStripes]sync.Mutex
	recent *lru.Cache
}

type cachedCart struct {
	cart     models.Cart
	loadedAt time.Time
}

// NewCartService creates a new instance of CartService
func NewCartService(carts CartRepository, catalog CatalogStore) *CartServiceImpl {
	recent, _ := lru.New(cartCacheSize)
	return &CartServiceImpl{carts: carts, catalog: catalog, now: time.Now, recent: recent}
}

// OnChange registers l for every saved cart. Register listeners before the
// service handles requests.
func (cs *CartServiceImpl) OnChange(l CartListener) *CartServiceImpl {
	cs.listeners = append(cs.listeners, l)
	return cs
}

// WithClock replaces the time source. Used by tests.
func (cs *CartServiceImpl) WithClock(now func() time.Time) *CartServiceImpl {
	cs.now = now
	return cs
}

// lock serializes mutations of one user's cart inside this process, so a
// user's actions apply in the order they arrive.
func (cs *CartServiceImpl) lock(userID primitive.ObjectID) func() {
	h := fnv.New32a()
	_, _ = h.Write(userID[:])
	mu := &cs.locks[h.Sum32()%cartLockStripes]
	mu.Lock()
	return mu.Unlock
}

// GetCart reads the stored cart. Checkout and validation go through here.
func (cs *CartServiceImpl) GetCart(ctx context.Context, userID primitive.ObjectID) (models.Cart, error) {
	return cs.carts.Load(ctx, userID)
}

// CachedCart serves the cart page. A snapshot read in the last
// cartCacheMaxAge is reused until a change on any instance evicts it.
func (cs *CartServiceImpl) CachedCart(ctx context.Context, userID primitive.ObjectID) (models.Cart, error) {
	if v, ok := cs.recent.Get(userID); ok {
		if entry := v.(cachedCart); time.Since(entry.loadedAt) < cartCacheMaxAge {
			return entry.cart, nil
		}
		cs.recent.Remove(userID)
	}

	c, err := cs.carts.Load(ctx, userID)
	if err != nil {
		return c, err
	}
	cs.recent.Add(userID, cachedCart{cart: c, loadedAt: time.Now()})
	return c, nil
}

// Forget evicts userID's cached snapshot.
func (cs *CartServiceImpl) Forget(userID primitive.ObjectID) {
	cs.recent.Remove(userID)
}

// HandleCacheMessage evicts the cart named by a cart.invalidate message from
// the cache channel. Other message types are ignored.
func (cs *CartServiceImpl) HandleCacheMessage(msg pubsub.CacheMessage) {
	if msg.Type != pubsub.CacheInvalidateCart {
		return
	}
	userID, err := primitive.ObjectIDFromHex(msg.Payload)
	if err != nil {
		util.LogWarning("ignoring cart invalidation with bad user id", zap.String("payload", msg.Payload))
		return
	}
	cs.Forget(userID)
}

// dispatch runs a through a cart.Store seeded from the repository. The store
// saves the next snapshot before adopting it, and only then are listeners told.
func (cs *CartServiceImpl) dispatch(ctx context.Context, userID primitive.ObjectID, a cart.Action) (*CartMutation, error) {
	defer cs.lock(userID)()

	current, err := cs.carts.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	store := cart.NewStore(current).WithClock(cs.now).WithCommit(func(next models.Cart) error {
		if err := cs.carts.Save(ctx, userID, next); err != nil {
			return err
		}
		cs.Forget(userID)
		return nil
	})
	for _, l := range cs.listeners {
		store.Subscribe(func(c models.Cart) { l(userID, c) })
	}

	next, outcome, err := store.Dispatch(a)
	if err != nil {
		return nil, err
	}
	return &CartMutation{Cart: next, Outcome: outcome}, nil
}

// AddItem fetches the live product so stock and price are sampled now, then
// merges the line into the cart.
func (cs *CartServiceImpl) AddItem(ctx context.Context, userID primitive.ObjectID, req models.CartItemRequest) (*CartMutation, error) {
	if req.ProductID.IsZero() {
		return nil, models.NewMissingProductData("product id is required")
	}
	product, err := cs.catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	return cs.AddProduct(ctx, userID, *product, req.Color, req.Size, req.Quantity)
}

func (cs *CartServiceImpl) AddProduct(ctx context.Context, userID primitive.ObjectID, p models.Product, color, size string, quantity int) (*CartMutation, error) {
	m, err := cs.dispatch(ctx, userID, cart.AddItem{Product: p, Color: color, Size: size, Quantity: quantity})
	if err != nil {
		return nil, err
	}
	if m.Outcome.Clamped {
		util.LogInfo("cart quantity clamped to stock",
			zap.String("user", userID.Hex()),
			zap.String("line", m.Outcome.Key.String()),
			zap.Int("requested", m.Outcome.Requested),
			zap.Int("quantity", m.Outcome.Quantity))
	}
	return m, nil
}

func (cs *CartServiceImpl) SetQuantity(ctx context.Context, userID primitive.ObjectID, req models.CartQuantityRequest) (*CartMutation, error) {
	return cs.dispatch(ctx, userID, cart.SetQuantity{Key: req.Key, Quantity: req.Quantity})
}

func (cs *CartServiceImpl) RemoveItem(ctx context.Context, userID primitive.ObjectID, key models.LineKey) (*CartMutation, error) {
	return cs.dispatch(ctx, userID, cart.RemoveItem{Key: key})
}

func (cs *CartServiceImpl) ToggleSelected(ctx context.Context, userID primitive.ObjectID, key models.LineKey) (*CartMutation, error) {
	return cs.dispatch(ctx, userID, cart.ToggleSelected{Key: key})
}

func (cs *CartServiceImpl) SelectAll(ctx context.Context, userID primitive.ObjectID, selected bool) (*CartMutation, error) {
	return cs.dispatch(ctx, userID, cart.SelectAll{Selected: selected})
}

func (cs *CartServiceImpl) RemoveSelected(ctx context.Context, userID primitive.ObjectID) (*CartMutation, error) {
	return cs.dispatch(ctx, userID, cart.RemoveSelected{})
}

func (cs *CartServiceImpl) Clear(ctx context.Context, userID primitive.ObjectID) (*CartMutation, error) {
	return cs.dispatch(ctx, userID, cart.Clear{})
}

// ValidateCart compares every line with the live catalog.
func (cs *CartServiceImpl) ValidateCart(ctx context.Context, userID primitive.ObjectID) (*models.CartValidationResult, error) {
	current, err := cs.carts.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return validateLines(ctx, cs.catalog, current.Items)
}

// validateLines fetches each distinct product once. Context errors abort the
// whole check; a product that is gone marks its lines unavailable.
func validateLines(ctx context.Context, store CatalogStore, items []models.CartLineItem) (*models.CartValidationResult, error) {
	result := &models.CartValidationResult{
		ValidItems:   []models.CartLineStatus{},
		InvalidItems: []models.CartLineStatus{},
		TotalItems:   len(items),
	}

	products := map[primitive.ObjectID]*models.Product{}
	for _, item := range items {
		p, seen := products[item.ProductID]
		if !seen {
			var err error
			p, err = store.GetProduct(ctx, item.ProductID)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, ctxErr
				}
				if !models.IsKind(err, models.KindNotFound) && !models.IsKind(err, models.KindInvalidData) {
					return nil, err
				}
				p = nil
			}
			products[item.ProductID] = p
		}

		status := compareLine(item, p)
		if status.Valid() {
			result.ValidItems = append(result.ValidItems, status)
		} else {
			result.InvalidItems = append(result.InvalidItems, status)
		}
	}

	result.TotalValid = len(result.ValidItems)
	result.TotalInvalid = len(result.InvalidItems)
	result.HasInvalidItems = result.TotalInvalid > 0
	return result, nil
}

func compareLine(item models.CartLineItem, p *models.Product) models.CartLineStatus {
	status := models.CartLineStatus{CartLineItem: item}
	if p == nil {
		return status
	}
	v, ok := catalog.NewIndex(p.Variants).Lookup(item.Color, item.Size)
	if !ok {
		return status
	}

	status.IsAvailable = v.InStock()
	status.CurrentStock = v.Stock
	status.CurrentPrice = catalog.UnitPrice(v).Discounted
	status.PriceChanged = status.CurrentPrice != item.UnitPrice
	status.InsufficientStock = item.Quantity > v.Stock
	return status
}
