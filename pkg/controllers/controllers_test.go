package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"khoomi-api-io/storefront/internal/auth"
	"khoomi-api-io/storefront/internal/common"
	"khoomi-api-io/storefront/internal/middleware"
	"khoomi-api-io/storefront/pkg/models"
	"khoomi-api-io/storefront/pkg/services"
	"khoomi-api-io/storefront/pkg/util"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func init() {
	util.SetLogger(zap.NewNop())
	gin.SetMode(gin.TestMode)
}

type stubCatalog struct {
	mu       sync.Mutex
	products map[primitive.ObjectID]models.Product
}

func (s *stubCatalog) GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, models.NewNotFound("product not found")
	}
	return &p, nil
}

func (s *stubCatalog) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.Slug == services.NormalizeSlug(slug) {
			cp := p
			return &cp, nil
		}
	}
	return nil, models.NewNotFound("product not found")
}

func (s *stubCatalog) setStock(id primitive.ObjectID, color, size string, stock int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.products[id]
	variants := append([]models.Variant(nil), p.Variants...)
	for i := range variants {
		if variants[i].Color == color && variants[i].Size == size {
			variants[i].Stock = stock
		}
	}
	p.Variants = variants
	s.products[id] = p
}

type stubCoupons map[string]models.Coupon

func (s stubCoupons) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	c, ok := s[models.NormalizeCouponCode(code)]
	if !ok {
		return nil, models.NewNotFound("coupon not found")
	}
	return &c, nil
}

type stubOrders struct {
	mu     sync.Mutex
	orders []models.CheckoutSummary
}

func (s *stubOrders) PublishOrder(ctx context.Context, summary models.CheckoutSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = append(s.orders, summary)
	return nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) record(event string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func (n *recordingNotifier) has(event string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, e := range n.events {
		if e == event {
			return true
		}
	}
	return false
}

func (n *recordingNotifier) InvalidateCartCache(ctx context.Context, userID primitive.ObjectID) error {
	return n.record("invalidate")
}

func (n *recordingNotifier) PendingCartStashed(ctx context.Context, session string) error {
	return n.record("stashed")
}

func (n *recordingNotifier) PendingCartReplayed(ctx context.Context, session string, userID primitive.ObjectID) error {
	return n.record("replayed")
}

func (n *recordingNotifier) PendingCartDiscarded(ctx context.Context, session string, reason models.ErrorKind) error {
	return n.record("discarded:" + string(reason))
}

func (n *recordingNotifier) CheckoutCompleted(ctx context.Context, userID primitive.ObjectID) error {
	return n.record("checkout")
}

type testEnv struct {
	router  *gin.Engine
	catalog *stubCatalog
	coupons stubCoupons
	orders  *stubOrders
	notes   *recordingNotifier
	userID  primitive.ObjectID
	token   string
	product models.Product
}

func linenShirt() models.Product {
	return models.Product{
		ID:         primitive.NewObjectID(),
		Name:       "Linen shirt",
		Slug:       "linen-shirt",
		CategoryID: primitive.NewObjectID(),
		Variants: []models.Variant{
			{Color: "Red", Size: "M", Stock: 2, Price: 100000, DiscountPercent: 10},
			{Color: "Red", Size: "L", Stock: 0, Price: 100000},
			{Color: "Black", Size: "M", Stock: 5, Price: 90000},
		},
	}
}

func newTestEnv(t *testing.T) *testEnv {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	p := linenShirt()
	env := &testEnv{
		catalog: &stubCatalog{products: map[primitive.ObjectID]models.Product{p.ID: p}},
		coupons: stubCoupons{},
		orders:  &stubOrders{},
		notes:   &recordingNotifier{},
		userID:  primitive.NewObjectID(),
		product: p,
	}

	a := auth.NewAuthenticator("test-secret", client)
	env.token, _, err = a.GenerateJWT(env.userID.Hex(), "ada@example.com", "ada")
	require.NoError(t, err)

	carts := services.NewCartService(services.NewCartRepository(client, time.Hour), env.catalog).
		OnChange(services.InvalidateOnChange(env.notes))
	checkout := services.NewCheckoutService(carts, env.catalog, env.coupons, env.orders, time.Second)
	recon := services.NewReconciler(services.NewPendingSlot(client, time.Hour), env.catalog, carts)

	cartController := InitCartController(carts)
	pendingController := InitPendingCartController(recon, carts, env.notes)
	checkoutController := InitCheckoutController(checkout, env.notes)
	selectionController := InitSelectionController(services.NewSelectionService(env.catalog))

	r := gin.New()
	v1 := r.Group("/v1")
	v1.GET("/ping", Ping)
	v1.GET("/products/:slug/selection", selectionController.Resolve())
	v1.POST("/guest/carts", middleware.OptionalAuth(a), pendingController.AddToCart())

	secured := v1.Group("/:userid", middleware.Auth(a))
	secured.GET("/carts", cartController.GetCart())
	secured.POST("/carts", cartController.AddItem())
	secured.PUT("/carts/quantity", cartController.SetQuantity())
	secured.PUT("/carts/selected", cartController.ToggleSelected())
	secured.PUT("/carts/selected/all", cartController.SelectAll())
	secured.DELETE("/carts/item", cartController.RemoveItem())
	secured.DELETE("/carts/selected", cartController.RemoveSelected())
	secured.DELETE("/carts/clear", cartController.Clear())
	secured.GET("/carts/validate", cartController.ValidateCart())
	secured.POST("/carts/pending/replay", pendingController.Replay())
	secured.POST("/checkout/quote", checkoutController.Quote())
	secured.POST("/checkout/complete", checkoutController.Complete())

	env.router = r
	return env
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Meta    map[string]any  `json:"meta"`
	Message string          `json:"message"`
	Status  int             `json:"status"`

	Error  string                 `json:"error"`
	Kind   models.ErrorKind       `json:"kind"`
	Reason models.CouponRejection `json:"reason"`
}

type call struct {
	method  string
	path    string
	body    any
	token   string
	headers map[string]string
}

func (env *testEnv) do(t *testing.T, c call) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var body bytes.Buffer
	if c.body != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(c.body))
	}
	req := httptest.NewRequest(c.method, c.path, &body)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	var out envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return w, out
}

func (env *testEnv) userPath(suffix string) string {
	return "/v1/" + env.userID.Hex() + suffix
}

func (env *testEnv) addItem(color, size string, qty int) models.CartItemRequest {
	return models.CartItemRequest{ProductID: env.product.ID, Color: color, Size: size, Quantity: qty}
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

var guestHeader = common.GUEST_SESSION_HEADER
