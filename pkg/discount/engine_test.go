package discount

import (
	"testing"
	"time"

	"khoomi-api-io/storefront/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	now      = time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)
	apparel  = primitive.NewObjectID()
	footwear = primitive.NewObjectID()
)

func line(category primitive.ObjectID, unit models.Money, qty int, selected bool) models.CartLineItem {
	return models.CartLineItem{
		ProductID:           primitive.NewObjectID(),
		CategoryID:          category,
		Color:               "Black",
		Size:                "M",
		Quantity:            qty,
		UnitPrice:           unit,
		StockAtAddTime:      qty,
		SelectedForCheckout: selected,
	}
}

func coupon(kind models.DiscountType, value float64) models.Coupon {
	return models.Coupon{
		Code:          "SPRING",
		DiscountType:  kind,
		DiscountValue: value,
		StartDate:     now.AddDate(0, -1, 0),
		EndDate:       now.AddDate(0, 1, 0),
		UsageLimit:    100,
		UsedCount:     3,
		IsActive:      true,
	}
}

func moneyPtr(m models.Money) *models.Money {
	return &m
}

func TestApply_FixedCouponScenario(t *testing.T) {
	items := []models.CartLineItem{line(apparel, 90000, 1, true)}
	c := coupon(models.DiscountTypeFixed, 20000)
	c.MinOrderAmount = 50000

	q, err := Apply(items, c, now, 15000)
	require.NoError(t, err)
	assert.Equal(t, models.Money(20000), q.DiscountAmount)
	assert.Equal(t, models.Money(70000+15000), q.Total)
	assert.Equal(t, []models.LineKey{items[0].Key()}, q.EligibleItemKeys)
}

func TestApply_PercentCouponIsCapped(t *testing.T) {
	items := []models.CartLineItem{line(apparel, 50000, 2, true)}
	c := coupon(models.DiscountTypePercent, 50)
	c.MaxDiscountAmount = moneyPtr(30000)

	q, err := Apply(items, c, now, 0)
	require.NoError(t, err)
	assert.Equal(t, models.Money(30000), q.DiscountAmount)
	assert.Equal(t, models.Money(70000), q.Total)
}

func TestApply_PercentWithoutCap(t *testing.T) {
	items := []models.CartLineItem{line(apparel, 33333, 1, true)}

	q, err := Apply(items, coupon(models.DiscountTypePercent, 15), now, 0)
	require.NoError(t, err)
	// 4999.95 rounds to 5000.
	assert.Equal(t, models.Money(5000), q.DiscountAmount)
}

func TestApply_FixedNeverExceedsEligibleSubtotal(t *testing.T) {
	items := []models.CartLineItem{
		line(apparel, 8000, 1, true),
		line(footwear, 40000, 1, true),
	}
	c := coupon(models.DiscountTypeFixed, 20000)
	c.ApplicableCategories = []primitive.ObjectID{apparel}

	q, err := Apply(items, c, now, 0)
	require.NoError(t, err)
	assert.Equal(t, models.Money(8000), q.EligibleSubtotal)
	assert.Equal(t, models.Money(8000), q.DiscountAmount)
	assert.Equal(t, models.Money(40000), q.Total)
}

func TestApply_CouponLevelRejections(t *testing.T) {
	items := []models.CartLineItem{line(apparel, 30000, 1, true)}

	cases := []struct {
		name   string
		mutate func(*models.Coupon)
		reason models.CouponRejection
	}{
		{"inactive", func(c *models.Coupon) { c.IsActive = false }, models.CouponInactive},
		{"not yet active", func(c *models.Coupon) { c.StartDate = now.Add(time.Hour) }, models.CouponNotYetActive},
		{"expired", func(c *models.Coupon) { c.EndDate = now.Add(-time.Second) }, models.CouponExpired},
		{"usage limit", func(c *models.Coupon) { c.UsedCount = c.UsageLimit }, models.CouponUsageLimitReached},
		{"minimum order", func(c *models.Coupon) { c.MinOrderAmount = 30001 }, models.CouponMinOrderNotMet},
		{"no eligible items", func(c *models.Coupon) { c.ApplicableCategories = []primitive.ObjectID{footwear} }, models.CouponNoEligibleItems},
	}

	messages := map[string]bool{}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := coupon(models.DiscountTypeFixed, 5000)
			tc.mutate(&c)

			q, err := Apply(items, c, now, 2000)
			require.Error(t, err)
			e, ok := models.AsError(err)
			require.True(t, ok)
			assert.Equal(t, models.KindCouponRejected, e.Kind)
			assert.Equal(t, tc.reason, e.Reason)
			assert.Equal(t, tc.reason, q.Rejection)
			assert.Zero(t, q.DiscountAmount)
			assert.Equal(t, models.Money(32000), q.Total)
			messages[e.Message] = true
		})
	}
	assert.Len(t, messages, len(cases))
}

func TestApply_WindowIsInclusive(t *testing.T) {
	items := []models.CartLineItem{line(apparel, 30000, 1, true)}
	c := coupon(models.DiscountTypeFixed, 1000)
	c.StartDate = now
	c.EndDate = now

	q, err := Apply(items, c, now, 0)
	require.NoError(t, err)
	assert.Equal(t, models.Money(1000), q.DiscountAmount)

	q, err = Apply(items, c, now.Add(time.Nanosecond), 0)
	require.Error(t, err)
	assert.Zero(t, q.DiscountAmount)
}

func TestApply_UnselectedItemsAreExcluded(t *testing.T) {
	items := []models.CartLineItem{
		line(apparel, 60000, 1, true),
		line(apparel, 90000, 1, false),
	}
	c := coupon(models.DiscountTypePercent, 10)
	c.MinOrderAmount = 100000

	q, err := Apply(items, c, now, 0)
	assert.Equal(t, models.CouponMinOrderNotMet, q.Rejection)
	require.Error(t, err)
	assert.Equal(t, models.Money(60000), q.Subtotal)
	assert.Len(t, q.Lines, 1)
}

func TestApply_ProductRestriction(t *testing.T) {
	items := []models.CartLineItem{
		line(apparel, 10000, 1, true),
		line(apparel, 20000, 1, true),
	}
	c := coupon(models.DiscountTypePercent, 50)
	c.ApplicableProducts = []primitive.ObjectID{items[1].ProductID}

	q, err := Apply(items, c, now, 0)
	require.NoError(t, err)
	assert.Equal(t, []models.LineKey{items[1].Key()}, q.EligibleItemKeys)
	assert.Equal(t, models.Money(10000), q.DiscountAmount)
}

func TestApply_IsPure(t *testing.T) {
	items := []models.CartLineItem{
		line(apparel, 12345, 3, true),
		line(footwear, 6789, 2, true),
	}
	c := coupon(models.DiscountTypePercent, 17)

	first, err1 := Apply(items, c, now, 500)
	second, err2 := Apply(items, c, now, 500)
	assert.Equal(t, first, second)
	assert.Equal(t, err1, err2)
}

func TestApply_DiscountPerItemSumsToAggregate(t *testing.T) {
	items := []models.CartLineItem{
		line(apparel, 3333, 1, true),
		line(apparel, 3333, 1, true),
		line(apparel, 3334, 1, true),
		line(footwear, 101, 7, true),
	}
	for _, value := range []float64{1000, 999, 1, 7} {
		q, err := Apply(items, coupon(models.DiscountTypeFixed, value), now, 0)
		require.NoError(t, err)

		var sum models.Money
		for i, share := range q.DiscountPerItem {
			sum += share.Amount
			assert.LessOrEqual(t, share.Amount, items[i].LineSubtotal())
			assert.GreaterOrEqual(t, share.Amount, models.Money(0))
		}
		assert.Equal(t, q.DiscountAmount, sum)
		assert.LessOrEqual(t, sum, q.EligibleSubtotal)
	}
}

func TestDistribute_ProportionalWithinOneUnit(t *testing.T) {
	items := []models.CartLineItem{
		line(apparel, 100, 1, true),
		line(apparel, 200, 1, true),
		line(apparel, 700, 1, true),
	}
	shares := distribute(items, 101, 1000)

	expected := []float64{10.1, 20.2, 70.7}
	for i, share := range shares {
		assert.InDelta(t, expected[i], float64(share.Amount), 1)
	}
}

func TestEvaluateAndSummary(t *testing.T) {
	items := []models.CartLineItem{
		line(apparel, 25000, 2, true),
		line(footwear, 99000, 1, false),
	}

	q := Evaluate(items, 3000)
	assert.Equal(t, models.Money(50000), q.Subtotal)
	assert.Equal(t, models.Money(53000), q.Total)

	s := q.Summary()
	require.Len(t, s.Lines, 1)
	assert.Equal(t, 2, s.Lines[0].Quantity)
	assert.Equal(t, models.Money(25000), s.Lines[0].UnitPrice)
	assert.Equal(t, models.Money(53000), s.Total)
}
