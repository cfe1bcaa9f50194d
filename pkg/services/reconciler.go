package services

import (
	"context"
	"time"

	"khoomi-api-io/storefront/pkg/cart"
	"khoomi-api-io/storefront/pkg/catalog"
	"khoomi-api-io/storefront/pkg/models"
	"khoomi-api-io/storefront/pkg/util"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const pendingRestoreTimeout = 2 * time.Second

// Reconciler parks an add-to-cart made before login and replays it once the
// shopper is signed in. A session is Idle while its slot is empty and Pending
// while it holds an entry.
type Reconciler struct {
	slot    PendingSlot
	catalog CatalogStore
	carts   CartService
	now     func() time.Time
}

func NewReconciler(slot PendingSlot, catalog CatalogStore, carts CartService) *Reconciler {
	return &Reconciler{slot: slot, catalog: catalog, carts: carts, now: time.Now}
}

// Stash records the attempted add for session, replacing any earlier one.
// The add must pass the same checks a signed-in add would; a rejected add
// leaves the slot untouched. The product is snapshotted so the entry stays
// self-contained.
func (r *Reconciler) Stash(ctx context.Context, session string, req models.CartItemRequest) (*models.GuestCartResponse, error) {
	if req.ProductID.IsZero() {
		return nil, models.NewMissingProductData("product id is required")
	}
	product, err := r.catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	add := cart.AddItem{Product: *product, Color: req.Color, Size: req.Size, Quantity: req.Quantity}
	if _, _, err := cart.Reduce(models.Cart{}, add, r.now()); err != nil {
		return nil, err
	}

	entry := models.PendingCartEntry{
		Product:       *product,
		SelectedColor: req.Color,
		SelectedSize:  req.Size,
		Quantity:      req.Quantity,
		StoredAt:      r.now(),
	}
	if err := r.slot.Put(ctx, session, entry); err != nil {
		return nil, err
	}

	return &models.GuestCartResponse{
		LoginRequired: true,
		GuestSession:  session,
		ProductID:     product.ID,
	}, nil
}

// Replay consumes the session's entry and adds it to userID's cart. An entry
// the shopper can no longer have is discarded and never retried. When the
// catalog or cart store fails instead, the entry is put back for a later
// replay. An empty slot returns nil, nil.
func (r *Reconciler) Replay(ctx context.Context, session string, userID primitive.ObjectID) (*models.PendingReplay, error) {
	entry, err := r.slot.Take(ctx, session)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, nil
	}

	if err := entry.CheckShape(); err != nil {
		r.discarded(session, err)
		return nil, err
	}

	live, err := r.catalog.GetProduct(ctx, entry.Product.ID)
	if err != nil {
		return nil, r.failed(ctx, session, *entry, err)
	}

	res := catalog.ResolveProduct(live, catalog.Selection{Color: entry.SelectedColor, Size: entry.SelectedSize})
	variant, err := res.Require()
	if err != nil {
		r.discarded(session, err)
		return nil, err
	}
	if variant.Stock < entry.Quantity {
		err := models.NewInsufficientStock(variant.Stock, entry.Quantity)
		r.discarded(session, err)
		return nil, err
	}

	m, err := r.carts.AddProduct(ctx, userID, *live, entry.SelectedColor, entry.SelectedSize, entry.Quantity)
	if err != nil {
		return nil, r.failed(ctx, session, *entry, err)
	}

	return &models.PendingReplay{
		Key:      m.Outcome.Key,
		Quantity: m.Outcome.Quantity,
		Clamped:  m.Outcome.Clamped,
		Cart:     m.Cart,
	}, nil
}

// failed discards entry when err is a rejection and restores it otherwise.
func (r *Reconciler) failed(ctx context.Context, session string, entry models.PendingCartEntry, err error) error {
	if models.KindOf(err) != "" {
		r.discarded(session, err)
		return err
	}

	restoreCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pendingRestoreTimeout)
	defer cancel()
	if putErr := r.slot.Put(restoreCtx, session, entry); putErr != nil {
		util.LogError("failed to restore pending cart entry", putErr, zap.String("session", session))
	}
	return err
}

func (r *Reconciler) discarded(session string, err error) {
	util.LogWarning("discarding pending cart entry",
		zap.String("session", session),
		zap.String("kind", string(models.KindOf(err))),
		zap.String("reason", err.Error()))
}
