package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderLine struct {
	ProductID primitive.ObjectID `json:"productId"`
	Color     string             `json:"color"`
	Size      string             `json:"size"`
	Quantity  int                `json:"quantity"`
	UnitPrice Money              `json:"unitPrice"`
}

// ItemDiscount is the display share of a discount for one eligible line.
type ItemDiscount struct {
	Key    LineKey `json:"key"`
	Amount Money   `json:"amount"`
}

// CheckoutSummary is what order creation consumes. Order creation owns stock
// decrement and coupon usage; nothing here writes either.
type CheckoutSummary struct {
	UserID          primitive.ObjectID `json:"userId"`
	Lines           []OrderLine        `json:"lines"`
	Subtotal        Money              `json:"subtotal"`
	DiscountAmount  Money              `json:"discountAmount"`
	ShippingFee     Money              `json:"shippingFee"`
	Total           Money              `json:"total"`
	CouponCode      string             `json:"couponCode,omitempty"`
	DiscountPerItem []ItemDiscount     `json:"discountPerItem,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
}

type CheckoutRequest struct {
	CouponCode  string `json:"couponCode" validate:"couponcode"`
	ShippingFee Money  `json:"shippingFee" validate:"gte=0"`
}
