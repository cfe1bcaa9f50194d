package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PendingCartEntry is an add-to-cart attempted before login. One entry is kept
// per guest session; a newer attempt replaces the older one.
type PendingCartEntry struct {
	Product       Product   `json:"product"`
	SelectedColor string    `json:"selectedColor"`
	SelectedSize  string    `json:"selectedSize"`
	Quantity      int       `json:"quantity"`
	StoredAt      time.Time `json:"storedAt"`
}

// CheckShape verifies the fields a replay needs, without touching stock.
func (e *PendingCartEntry) CheckShape() error {
	switch {
	case e.Product.ID.IsZero():
		return NewMalformedPendingEntry("saved cart item is missing its product")
	case e.Product.CategoryID.IsZero():
		return NewMalformedPendingEntry("saved cart item is missing its category")
	case e.SelectedColor == "":
		return NewMalformedPendingEntry("saved cart item is missing a color")
	case e.SelectedSize == "":
		return NewMalformedPendingEntry("saved cart item is missing a size")
	case e.Quantity < 1:
		return NewMalformedPendingEntry("saved cart item has no quantity")
	}
	return nil
}

// PendingReplay reports what happened to a replayed entry.
type PendingReplay struct {
	Key      LineKey `json:"key"`
	Quantity int     `json:"quantity"`
	Clamped  bool    `json:"clamped"`
	Cart     Cart    `json:"cart"`
}

// GuestCartResponse is returned when an add-to-cart needs a login first.
type GuestCartResponse struct {
	LoginRequired bool               `json:"loginRequired"`
	GuestSession  string             `json:"guestSession"`
	ProductID     primitive.ObjectID `json:"productId"`
}
