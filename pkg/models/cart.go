package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CartLineItem struct {
	ProductID           primitive.ObjectID `bson:"product_id" json:"productId"`
	CategoryID          primitive.ObjectID `bson:"category_id" json:"categoryId"`
	Name                string             `bson:"name" json:"name"`
	Thumbnail           string             `bson:"thumbnail" json:"thumbnail"`
	Color               string             `bson:"color" json:"color"`
	Size                string             `bson:"size" json:"size"`
	Quantity            int                `bson:"quantity" json:"quantity"`
	UnitPrice           Money              `bson:"unit_price" json:"unitPrice"`
	UnitOriginalPrice   Money              `bson:"unit_original_price" json:"unitOriginalPrice"`
	DiscountPercent     int                `bson:"discount_percent" json:"discountPercent"`
	StockAtAddTime      int                `bson:"stock_at_add_time" json:"stockAtAddTime"`
	SelectedForCheckout bool               `bson:"selected_for_checkout" json:"selectedForCheckout"`

	AddedAt    time.Time `bson:"added_at" json:"addedAt"`
	ModifiedAt time.Time `bson:"modified_at" json:"modifiedAt"`
}

func (i CartLineItem) Key() LineKey {
	return LineKey{ProductID: i.ProductID, Color: i.Color, Size: i.Size}
}

// LineSubtotal is unit price times quantity. Unit prices are already rounded.
func (i CartLineItem) LineSubtotal() Money {
	return i.UnitPrice * Money(i.Quantity)
}

// Cart is an immutable snapshot. Transitions build a new Cart instead of
// editing Items in place, so readers never need a lock.
type Cart struct {
	Items     []CartLineItem `bson:"items" json:"items"`
	Version   int64          `bson:"version" json:"version"`
	UpdatedAt time.Time      `bson:"updated_at" json:"updatedAt"`
}

// Find returns the index of the line with key k, or -1.
func (c Cart) Find(k LineKey) int {
	for i := range c.Items {
		if c.Items[i].Key() == k {
			return i
		}
	}
	return -1
}

// Selected returns the lines marked for checkout, in cart order.
func (c Cart) Selected() []CartLineItem {
	selected := make([]CartLineItem, 0, len(c.Items))
	for _, item := range c.Items {
		if item.SelectedForCheckout {
			selected = append(selected, item)
		}
	}
	return selected
}

// Subtotal sums every line, selected or not.
func (c Cart) Subtotal() Money {
	var total Money
	for _, item := range c.Items {
		total += item.LineSubtotal()
	}
	return total
}

func (c Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// CartItemRequest is the add-to-cart body shared by the guest and user routes.
type CartItemRequest struct {
	ProductID primitive.ObjectID `json:"productId"`
	Color     string             `json:"color"`
	Size      string             `json:"size"`
	Quantity  int                `json:"quantity"`
}

type CartQuantityRequest struct {
	Key      LineKey `json:"key"`
	Quantity int     `json:"quantity"`
}

type CartKeyRequest struct {
	Key LineKey `json:"key"`
}

type CartSelectAllRequest struct {
	Selected bool `json:"selected"`
}

// CartLineStatus is one line compared against the live catalog.
type CartLineStatus struct {
	CartLineItem
	IsAvailable       bool  `json:"isAvailable"`
	PriceChanged      bool  `json:"priceChanged"`
	CurrentPrice      Money `json:"currentPrice"`
	InsufficientStock bool  `json:"insufficientStock"`
	CurrentStock      int   `json:"currentStock"`
}

func (s CartLineStatus) Valid() bool {
	return s.IsAvailable && !s.PriceChanged && !s.InsufficientStock
}

// CartValidationResult splits a cart into lines that still match the catalog
// and lines that changed since they were added.
type CartValidationResult struct {
	ValidItems      []CartLineStatus `json:"validItems"`
	InvalidItems    []CartLineStatus `json:"invalidItems"`
	TotalItems      int              `json:"totalItems"`
	TotalValid      int              `json:"totalValid"`
	TotalInvalid    int              `json:"totalInvalid"`
	HasInvalidItems bool             `json:"hasInvalidItems"`
}

// InvalidKeys lists the keys of lines that need re-confirmation.
func (r *CartValidationResult) InvalidKeys() []LineKey {
	keys := make([]LineKey, 0, len(r.InvalidItems))
	for _, item := range r.InvalidItems {
		keys = append(keys, item.Key())
	}
	return keys
}
