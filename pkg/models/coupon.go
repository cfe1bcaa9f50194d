package models

import (
	"fmt"
	"strings"
	"time"

	"khoomi-api-io/storefront/internal/common"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DiscountType string

const (
	DiscountTypeFixed   DiscountType = "fixed"
	DiscountTypePercent DiscountType = "percent"
)

type Coupon struct {
	ID                   primitive.ObjectID   `bson:"_id" json:"_id"`
	Code                 string               `bson:"code" json:"code" validate:"required"`
	DiscountType         DiscountType         `bson:"discount_type" json:"discountType" validate:"oneof=fixed percent"`
	DiscountValue        float64              `bson:"discount_value" json:"discountValue" validate:"gt=0"`
	MinOrderAmount       Money                `bson:"min_order_amount" json:"minOrderAmount" validate:"gte=0"`
	MaxDiscountAmount    *Money               `bson:"max_discount_amount,omitempty" json:"maxDiscountAmount,omitempty"`
	StartDate            time.Time            `bson:"start_date" json:"startDate" validate:"required"`
	EndDate              time.Time            `bson:"end_date" json:"endDate" validate:"required"`
	UsageLimit           int                  `bson:"usage_limit" json:"usageLimit" validate:"gte=0"`
	UsedCount            int                  `bson:"used_count" json:"usedCount" validate:"gte=0"`
	ApplicableCategories []primitive.ObjectID `bson:"applicable_categories" json:"applicableCategories"`
	ApplicableProducts   []primitive.ObjectID `bson:"applicable_products" json:"applicableProducts"`
	IsActive             bool                 `bson:"is_active" json:"isActive"`
}

// Validate checks the record shape. Whether the coupon applies right now is the
// discount engine's call, not this one.
func (c *Coupon) Validate() error {
	if err := common.Validate.Struct(c); err != nil {
		return NewInvalidData(fmt.Sprintf("coupon %s is malformed: %v", c.Code, err))
	}
	if c.DiscountType == DiscountTypePercent && c.DiscountValue > 100 {
		return NewInvalidData(fmt.Sprintf("coupon %s has a percent discount above 100", c.Code))
	}
	if c.MaxDiscountAmount != nil && *c.MaxDiscountAmount < 0 {
		return NewInvalidData(fmt.Sprintf("coupon %s has a negative discount cap", c.Code))
	}
	if c.EndDate.Before(c.StartDate) {
		return NewInvalidData(fmt.Sprintf("coupon %s ends before it starts", c.Code))
	}
	return nil
}

// CategoryRule converts the stored category list into an explicit rule.
// An empty list means the coupon is not restricted by category.
func (c *Coupon) CategoryRule() Restriction {
	return restrictionFromList(c.ApplicableCategories)
}

// ProductRule converts the stored product list into an explicit rule.
func (c *Coupon) ProductRule() Restriction {
	return restrictionFromList(c.ApplicableProducts)
}

func restrictionFromList(ids []primitive.ObjectID) Restriction {
	if len(ids) == 0 {
		return Unrestricted()
	}
	return RestrictedTo(ids...)
}

// NormalizeCouponCode is the canonical form used for lookups.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Restriction is either Unrestricted or RestrictedTo a set of ids. A
// RestrictedTo rule with no ids allows nothing.
type Restriction struct {
	restricted bool
	ids        map[primitive.ObjectID]struct{}
}

func Unrestricted() Restriction {
	return Restriction{}
}

func RestrictedTo(ids ...primitive.ObjectID) Restriction {
	set := make(map[primitive.ObjectID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return Restriction{restricted: true, ids: set}
}

func (r Restriction) IsRestricted() bool {
	return r.restricted
}

func (r Restriction) Allows(id primitive.ObjectID) bool {
	if !r.restricted {
		return true
	}
	_, ok := r.ids[id]
	return ok
}
