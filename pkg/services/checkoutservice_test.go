package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"khoomi-api-io/storefront/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func springCoupon() models.Coupon {
	return models.Coupon{
		ID:             primitive.NewObjectID(),
		Code:           "SPRING20",
		DiscountType:   models.DiscountTypeFixed,
		DiscountValue:  20000,
		MinOrderAmount: 50000,
		StartDate:      testNow.AddDate(0, -1, 0),
		EndDate:        testNow.AddDate(0, 1, 0),
		UsageLimit:     10,
		IsActive:       true,
	}
}

func cartWithRedShirt(t *testing.T, h *harness, p models.Product) primitive.ObjectID {
	t.Helper()
	user := primitive.NewObjectID()
	_, err := h.carts.AddItem(context.Background(), user, models.CartItemRequest{ProductID: p.ID, Color: "Red", Size: "M", Quantity: 1})
	require.NoError(t, err)
	return user
}

func TestCheckout_QuoteWithFixedCoupon(t *testing.T) {
	p := shirt()
	h := newHarness(t, p)
	h.coupons.coupons["SPRING20"] = springCoupon()
	user := cartWithRedShirt(t, h, p)

	q, err := h.checkout.Quote(context.Background(), user, models.CheckoutRequest{CouponCode: " spring20 ", ShippingFee: 5000})
	require.NoError(t, err)
	assert.Equal(t, models.Money(90000), q.Subtotal)
	assert.Equal(t, models.Money(20000), q.DiscountAmount)
	assert.Equal(t, models.Money(75000), q.Total)
	assert.Equal(t, "SPRING20", q.CouponCode)
}

func TestCheckout_QuoteWithoutCoupon(t *testing.T) {
	p := shirt()
	h := newHarness(t, p)
	user := cartWithRedShirt(t, h, p)

	q, err := h.checkout.Quote(context.Background(), user, models.CheckoutRequest{ShippingFee: 1000})
	require.NoError(t, err)
	assert.Zero(t, q.DiscountAmount)
	assert.Equal(t, models.Money(91000), q.Total)
}

func TestCheckout_RejectedCouponStillQuotes(t *testing.T) {
	p := shirt()
	h := newHarness(t, p)
	c := springCoupon()
	c.UsedCount = c.UsageLimit
	h.coupons.coupons["SPRING20"] = c
	user := cartWithRedShirt(t, h, p)

	q, err := h.checkout.Quote(context.Background(), user, models.CheckoutRequest{CouponCode: "SPRING20"})
	require.Error(t, err)
	require.NotNil(t, q)
	e, ok := models.AsError(err)
	require.True(t, ok)
	assert.Equal(t, models.CouponUsageLimitReached, e.Reason)
	assert.Equal(t, models.Money(90000), q.Total)
}

func TestCheckout_ChangedSinceAdded(t *testing.T) {
	p := shirt()
	h := newHarness(t, p)
	user := cartWithRedShirt(t, h, p)

	h.catalog.setPrice(p.ID, "Red", "M", 120000)

	_, err := h.checkout.Quote(context.Background(), user, models.CheckoutRequest{})
	require.Error(t, err)
	e, ok := models.AsError(err)
	require.True(t, ok)
	assert.Equal(t, models.KindChangedSinceAdded, e.Kind)
	assert.Equal(t, []models.LineKey{{ProductID: p.ID, Color: "Red", Size: "M"}}, e.Keys)
}

func TestCheckout_SlowCatalogCannotConfirm(t *testing.T) {
	p := shirt()
	h := newHarness(t, p)
	user := cartWithRedShirt(t, h, p)
	h.catalog.delay = time.Second

	start := time.Now()
	_, err := h.checkout.Quote(context.Background(), user, models.CheckoutRequest{})
	assert.Equal(t, models.KindCannotConfirm, models.KindOf(err))
	assert.Less(t, time.Since(start), time.Second)
}

func TestCheckout_NothingSelected(t *testing.T) {
	p := shirt()
	h := newHarness(t, p)
	user := cartWithRedShirt(t, h, p)
	_, err := h.carts.SelectAll(context.Background(), user, false)
	require.NoError(t, err)

	_, err = h.checkout.Quote(context.Background(), user, models.CheckoutRequest{})
	assert.Equal(t, models.KindInvalidData, models.KindOf(err))
}

func TestCheckout_CompleteHandsOffAndRemovesSelected(t *testing.T) {
	p := shirt()
	h := newHarness(t, p)
	h.coupons.coupons["SPRING20"] = springCoupon()
	ctx := context.Background()
	user := cartWithRedShirt(t, h, p)

	m, err := h.carts.AddItem(ctx, user, models.CartItemRequest{ProductID: p.ID, Color: "Black", Size: "M", Quantity: 1})
	require.NoError(t, err)
	_, err = h.carts.ToggleSelected(ctx, user, m.Cart.Items[1].Key())
	require.NoError(t, err)

	summary, err := h.checkout.Complete(ctx, user, models.CheckoutRequest{CouponCode: "SPRING20", ShippingFee: 3000})
	require.NoError(t, err)
	assert.Equal(t, user, summary.UserID)
	assert.Equal(t, models.Money(73000), summary.Total)
	require.Len(t, summary.Lines, 1)
	assert.Equal(t, "Red", summary.Lines[0].Color)

	require.Len(t, h.publisher.orders, 1)
	assert.Equal(t, *summary, h.publisher.orders[0])

	left, err := h.carts.GetCart(ctx, user)
	require.NoError(t, err)
	require.Len(t, left.Items, 1)
	assert.Equal(t, "Black", left.Items[0].Color)
}

func TestCheckout_CompleteKeepsCartWhenHandOffFails(t *testing.T) {
	p := shirt()
	h := newHarness(t, p)
	h.publisher.err = errors.New("broker down")
	ctx := context.Background()
	user := cartWithRedShirt(t, h, p)

	_, err := h.checkout.Complete(ctx, user, models.CheckoutRequest{})
	require.Error(t, err)

	c, err := h.carts.GetCart(ctx, user)
	require.NoError(t, err)
	assert.Len(t, c.Items, 1)
}

func TestCheckout_CompleteStopsOnCouponRejection(t *testing.T) {
	p := shirt()
	h := newHarness(t, p)
	c := springCoupon()
	c.IsActive = false
	h.coupons.coupons["SPRING20"] = c
	user := cartWithRedShirt(t, h, p)

	_, err := h.checkout.Complete(context.Background(), user, models.CheckoutRequest{CouponCode: "SPRING20"})
	assert.Equal(t, models.KindCouponRejected, models.KindOf(err))
	assert.Empty(t, h.publisher.orders)
}

func TestCheckout_RejectsBadRequest(t *testing.T) {
	p := shirt()
	h := newHarness(t, p)
	user := cartWithRedShirt(t, h, p)

	_, err := h.checkout.Quote(context.Background(), user, models.CheckoutRequest{ShippingFee: -1})
	assert.Equal(t, models.KindInvalidData, models.KindOf(err))
	assert.Equal(t, "shipping fee cannot be negative", err.Error())

	_, err = h.checkout.Quote(context.Background(), user, models.CheckoutRequest{CouponCode: "50% OFF"})
	assert.Equal(t, models.KindInvalidData, models.KindOf(err))
	assert.Equal(t, "coupon code is not valid", err.Error())
}
