package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"khoomi-api-io/storefront/pkg/models"
	"khoomi-api-io/storefront/pkg/util"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func init() {
	util.SetLogger(zap.NewNop())
}

var testNow = time.Date(2026, 5, 20, 9, 30, 0, 0, time.UTC)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

type fakeCatalog struct {
	mu       sync.Mutex
	products map[primitive.ObjectID]models.Product
	delay    time.Duration
	calls    int
	err      error
}

func newFakeCatalog(products ...models.Product) *fakeCatalog {
	f := &fakeCatalog{products: map[primitive.ObjectID]models.Product{}}
	for _, p := range products {
		f.put(p)
	}
	return f
}

func (f *fakeCatalog) put(p models.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[p.ID] = p
}

func (f *fakeCatalog) setStock(id primitive.ObjectID, color, size string, stock int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.products[id]
	variants := append([]models.Variant(nil), p.Variants...)
	for i := range variants {
		if variants[i].Color == color && variants[i].Size == size {
			variants[i].Stock = stock
		}
	}
	p.Variants = variants
	f.products[id] = p
}

// fail makes every lookup return err until it is called with nil.
func (f *fakeCatalog) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeCatalog) setPrice(id primitive.ObjectID, color, size string, price models.Money) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.products[id]
	variants := append([]models.Variant(nil), p.Variants...)
	for i := range variants {
		if variants[i].Color == color && variants[i].Size == size {
			variants[i].Price = price
		}
	}
	p.Variants = variants
	f.products[id] = p
}

func (f *fakeCatalog) GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	f.mu.Lock()
	f.calls++
	delay := f.delay
	p, ok := f.products[id]
	failure := f.err
	f.mu.Unlock()

	if failure != nil {
		return nil, failure
	}

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if !ok {
		return nil, models.NewNotFound("product not found")
	}
	return &p, nil
}

func (f *fakeCatalog) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.Slug == NormalizeSlug(slug) {
			cp := p
			return &cp, nil
		}
	}
	return nil, models.NewNotFound("product not found")
}

type fakeCoupons struct {
	coupons map[string]models.Coupon
}

func (f *fakeCoupons) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	c, ok := f.coupons[models.NormalizeCouponCode(code)]
	if !ok {
		return nil, models.NewNotFound("coupon not found")
	}
	return &c, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	orders []models.CheckoutSummary
	err    error
}

func (f *fakePublisher) PublishOrder(ctx context.Context, summary models.CheckoutSummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.orders = append(f.orders, summary)
	return nil
}

func shirt() models.Product {
	return models.Product{
		ID:         primitive.NewObjectID(),
		Name:       "Linen shirt",
		Slug:       "linen-shirt",
		CategoryID: primitive.NewObjectID(),
		MainImage:  "https://cdn.example.com/shirt.jpg",
		Variants: []models.Variant{
			{Color: "Red", Size: "M", Stock: 2, Price: 100000, DiscountPercent: 10},
			{Color: "Red", Size: "L", Stock: 0, Price: 100000},
			{Color: "Black", Size: "M", Stock: 5, Price: 90000},
		},
	}
}

type harness struct {
	catalog   *fakeCatalog
	coupons   *fakeCoupons
	publisher *fakePublisher
	carts     *CartServiceImpl
	checkout  *CheckoutServiceImpl
	slot      PendingSlot
	recon     *Reconciler
	mr        *miniredis.Miniredis
}

func newHarness(t *testing.T, products ...models.Product) *harness {
	mr, client := setupTestRedis(t)
	h := &harness{
		catalog:   newFakeCatalog(products...),
		coupons:   &fakeCoupons{coupons: map[string]models.Coupon{}},
		publisher: &fakePublisher{},
		mr:        mr,
	}
	h.carts = NewCartService(NewCartRepository(client, time.Hour), h.catalog).WithClock(func() time.Time { return testNow })
	h.checkout = NewCheckoutService(h.carts, h.catalog, h.coupons, h.publisher, 200*time.Millisecond).WithClock(func() time.Time { return testNow })
	h.slot = NewPendingSlot(client, time.Hour)
	h.recon = NewReconciler(h.slot, h.catalog, h.carts)
	return h
}
