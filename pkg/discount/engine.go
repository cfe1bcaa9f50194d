// Package discount prices a checkout: subtotal of the selected lines, coupon
// discount, per-line display shares, and the order total.
package discount

import (
	"sort"
	"time"

	"khoomi-api-io/storefront/pkg/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Quote is the priced checkout. Lines holds only the selected cart lines.
type Quote struct {
	Lines            []models.CartLineItem  `json:"lines"`
	Subtotal         models.Money           `json:"subtotal"`
	EligibleItemKeys []models.LineKey       `json:"eligibleItemKeys"`
	EligibleSubtotal models.Money           `json:"eligibleSubtotal"`
	DiscountAmount   models.Money           `json:"discountAmount"`
	DiscountPerItem  []models.ItemDiscount  `json:"discountPerItem"`
	ShippingFee      models.Money           `json:"shippingFee"`
	Total            models.Money           `json:"total"`
	CouponCode       string                 `json:"couponCode,omitempty"`
	Rejection        models.CouponRejection `json:"rejection,omitempty"`
}

// Evaluate prices the selected lines without a coupon.
func Evaluate(items []models.CartLineItem, shippingFee models.Money) Quote {
	q := Quote{
		Lines:            selected(items),
		EligibleItemKeys: []models.LineKey{},
		DiscountPerItem:  []models.ItemDiscount{},
		ShippingFee:      shippingFee,
	}
	for _, item := range q.Lines {
		q.Subtotal += item.LineSubtotal()
	}
	q.Total = q.Subtotal + shippingFee
	return q
}

// Apply prices the selected lines with coupon at time now. A coupon that does
// not apply still yields a usable Quote with zero discount, alongside a
// coupon-rejected error naming the reason.
func Apply(items []models.CartLineItem, coupon models.Coupon, now time.Time, shippingFee models.Money) (Quote, error) {
	q := Evaluate(items, shippingFee)

	if reason, ok := checkCoupon(&coupon, now, q.Subtotal); !ok {
		q.Rejection = reason
		return q, models.NewCouponRejected(reason)
	}

	categories := coupon.CategoryRule()
	products := coupon.ProductRule()
	var eligible []models.CartLineItem
	for _, item := range q.Lines {
		if categories.Allows(item.CategoryID) && products.Allows(item.ProductID) {
			eligible = append(eligible, item)
			q.EligibleItemKeys = append(q.EligibleItemKeys, item.Key())
			q.EligibleSubtotal += item.LineSubtotal()
		}
	}
	if len(eligible) == 0 {
		q.Rejection = models.CouponNoEligibleItems
		return q, models.NewCouponRejected(models.CouponNoEligibleItems)
	}

	q.CouponCode = coupon.Code
	q.DiscountAmount = amount(&coupon, q.EligibleSubtotal)
	q.DiscountPerItem = distribute(eligible, q.DiscountAmount, q.EligibleSubtotal)
	q.Total = q.Subtotal - q.DiscountAmount + shippingFee
	return q, nil
}

func checkCoupon(c *models.Coupon, now time.Time, subtotal models.Money) (models.CouponRejection, bool) {
	switch {
	case !c.IsActive:
		return models.CouponInactive, false
	case now.Before(c.StartDate):
		return models.CouponNotYetActive, false
	case now.After(c.EndDate):
		return models.CouponExpired, false
	case c.UsedCount >= c.UsageLimit:
		return models.CouponUsageLimitReached, false
	case subtotal < c.MinOrderAmount:
		return models.CouponMinOrderNotMet, false
	}
	return "", true
}

func amount(c *models.Coupon, eligibleSubtotal models.Money) models.Money {
	value := decimal.NewFromFloat(c.DiscountValue)

	switch c.DiscountType {
	case models.DiscountTypeFixed:
		return min(value.Round(0).IntPart(), eligibleSubtotal)
	case models.DiscountTypePercent:
		raw := decimal.NewFromInt(eligibleSubtotal).Mul(value).Div(hundred).Round(0).IntPart()
		raw = min(raw, eligibleSubtotal)
		if c.MaxDiscountAmount != nil {
			raw = min(raw, *c.MaxDiscountAmount)
		}
		return raw
	}
	return 0
}

// distribute splits total across lines in proportion to their subtotals using
// largest remainders, so the shares add up to total exactly.
func distribute(lines []models.CartLineItem, total, base models.Money) []models.ItemDiscount {
	shares := make([]models.ItemDiscount, len(lines))
	if base <= 0 || total <= 0 {
		for i, line := range lines {
			shares[i] = models.ItemDiscount{Key: line.Key()}
		}
		return shares
	}

	type remainder struct {
		index int
		rest  decimal.Decimal
	}
	rests := make([]remainder, len(lines))
	dTotal := decimal.NewFromInt(total)
	dBase := decimal.NewFromInt(base)

	var assigned models.Money
	for i, line := range lines {
		exact := dTotal.Mul(decimal.NewFromInt(line.LineSubtotal())).Div(dBase)
		floor := exact.Floor()
		shares[i] = models.ItemDiscount{Key: line.Key(), Amount: floor.IntPart()}
		rests[i] = remainder{index: i, rest: exact.Sub(floor)}
		assigned += floor.IntPart()
	}

	sort.SliceStable(rests, func(a, b int) bool {
		return rests[a].rest.GreaterThan(rests[b].rest)
	})
	for left, k := total-assigned, 0; left > 0 && k < len(rests); left, k = left-1, k+1 {
		shares[rests[k].index].Amount++
	}
	return shares
}

// Summary builds the payload handed to order creation.
func (q Quote) Summary() models.CheckoutSummary {
	lines := make([]models.OrderLine, 0, len(q.Lines))
	for _, item := range q.Lines {
		lines = append(lines, models.OrderLine{
			ProductID: item.ProductID,
			Color:     item.Color,
			Size:      item.Size,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return models.CheckoutSummary{
		Lines:           lines,
		Subtotal:        q.Subtotal,
		DiscountAmount:  q.DiscountAmount,
		ShippingFee:     q.ShippingFee,
		Total:           q.Total,
		CouponCode:      q.CouponCode,
		DiscountPerItem: q.DiscountPerItem,
	}
}

func selected(items []models.CartLineItem) []models.CartLineItem {
	out := make([]models.CartLineItem, 0, len(items))
	for _, item := range items {
		if item.SelectedForCheckout {
			out = append(out, item)
		}
	}
	return out
}
