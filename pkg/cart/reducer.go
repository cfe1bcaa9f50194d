// Package cart holds the cart transition function and the per-session state
// container built on it.
package cart

import (
	"time"

	"khoomi-api-io/storefront/pkg/catalog"
	"khoomi-api-io/storefront/pkg/models"
)

// Action is a cart transition request.
type Action interface {
	isAction()
}

// AddItem adds a variant of Product. Product must be the freshest snapshot the
// caller has: stock and price are sampled from it, not from the cart.
type AddItem struct {
	Product  models.Product
	Color    string
	Size     string
	Quantity int
}

type SetQuantity struct {
	Key      models.LineKey
	Quantity int
}

type RemoveItem struct {
	Key models.LineKey
}

type ToggleSelected struct {
	Key models.LineKey
}

type SelectAll struct {
	Selected bool
}

// RemoveSelected drops every line marked for checkout.
type RemoveSelected struct{}

type Clear struct{}

func (AddItem) isAction()        {}
func (SetQuantity) isAction()    {}
func (RemoveItem) isAction()     {}
func (ToggleSelected) isAction() {}
func (SelectAll) isAction()      {}
func (RemoveSelected) isAction() {}
func (Clear) isAction()          {}

// Outcome describes the line an action touched.
type Outcome struct {
	Key       models.LineKey `json:"key"`
	Requested int            `json:"requested"`
	Quantity  int            `json:"quantity"`
	Clamped   bool           `json:"clamped"`
	Removed   int            `json:"removed,omitempty"`
}

// Reduce applies a to c and returns the next snapshot. c is never modified; on
// error the returned cart is c itself.
func Reduce(c models.Cart, a Action, now time.Time) (models.Cart, Outcome, error) {
	switch a := a.(type) {
	case AddItem:
		return addItem(c, a, now)
	case SetQuantity:
		return setQuantity(c, a, now)
	case RemoveItem:
		return removeWhere(c, now, func(item models.CartLineItem) bool { return item.Key() == a.Key })
	case RemoveSelected:
		return removeWhere(c, now, func(item models.CartLineItem) bool { return item.SelectedForCheckout })
	case ToggleSelected:
		return toggleSelected(c, a, now)
	case SelectAll:
		next := clone(c, now)
		for i := range next.Items {
			next.Items[i].SelectedForCheckout = a.Selected
		}
		return next, Outcome{}, nil
	case Clear:
		next := clone(c, now)
		next.Items = []models.CartLineItem{}
		return next, Outcome{Removed: len(c.Items)}, nil
	}
	return c, Outcome{}, models.NewInvalidData("unknown cart action")
}

func addItem(c models.Cart, a AddItem, now time.Time) (models.Cart, Outcome, error) {
	key := models.LineKey{ProductID: a.Product.ID, Color: a.Color, Size: a.Size}
	out := Outcome{Key: key, Requested: a.Quantity}

	if a.Product.ID.IsZero() {
		return c, out, models.NewMissingProductData("this product cannot be added: it has no id")
	}
	if a.Product.CategoryID.IsZero() {
		return c, out, models.NewMissingProductData("this product cannot be added: it has no category")
	}

	res := catalog.ResolveProduct(&a.Product, catalog.Selection{Color: a.Color, Size: a.Size})
	variant, err := res.Require()
	if err != nil {
		return c, out, err
	}
	if a.Quantity < 1 {
		return c, out, models.NewInvalidQuantity(a.Quantity)
	}
	if !variant.InStock() {
		return c, out, models.NewInsufficientStock(0, a.Quantity)
	}

	price := catalog.UnitPrice(variant)
	next := clone(c, now)

	if i := next.Find(key); i >= 0 {
		line := &next.Items[i]
		combined := line.Quantity + a.Quantity
		line.Quantity = min(combined, variant.Stock)
		line.StockAtAddTime = variant.Stock
		line.UnitPrice = price.Discounted
		line.UnitOriginalPrice = price.Original
		line.DiscountPercent = variant.DiscountPercent
		line.ModifiedAt = now
		out.Quantity = line.Quantity
		out.Clamped = line.Quantity < combined
		return next, out, nil
	}

	qty := min(a.Quantity, variant.Stock)
	next.Items = append(next.Items, models.CartLineItem{
		ProductID:           a.Product.ID,
		CategoryID:          a.Product.CategoryID,
		Name:                a.Product.Name,
		Thumbnail:           a.Product.Thumbnail(),
		Color:               a.Color,
		Size:                a.Size,
		Quantity:            qty,
		UnitPrice:           price.Discounted,
		UnitOriginalPrice:   price.Original,
		DiscountPercent:     variant.DiscountPercent,
		StockAtAddTime:      variant.Stock,
		SelectedForCheckout: true,
		AddedAt:             now,
		ModifiedAt:          now,
	})
	out.Quantity = qty
	out.Clamped = qty < a.Quantity
	return next, out, nil
}

// setQuantity checks against the stock known from the last add. It does not
// refetch; checkout revalidation catches drift.
func setQuantity(c models.Cart, a SetQuantity, now time.Time) (models.Cart, Outcome, error) {
	out := Outcome{Key: a.Key, Requested: a.Quantity}

	i := c.Find(a.Key)
	if i < 0 {
		return c, out, models.NewNotFound("cart item not found")
	}
	if a.Quantity < 1 {
		return c, out, models.NewInvalidQuantity(a.Quantity)
	}
	if stock := c.Items[i].StockAtAddTime; a.Quantity > stock {
		return c, out, models.NewInsufficientStock(stock, a.Quantity)
	}

	next := clone(c, now)
	next.Items[i].Quantity = a.Quantity
	next.Items[i].ModifiedAt = now
	out.Quantity = a.Quantity
	return next, out, nil
}

func toggleSelected(c models.Cart, a ToggleSelected, now time.Time) (models.Cart, Outcome, error) {
	i := c.Find(a.Key)
	if i < 0 {
		return c, Outcome{Key: a.Key}, models.NewNotFound("cart item not found")
	}

	next := clone(c, now)
	next.Items[i].SelectedForCheckout = !next.Items[i].SelectedForCheckout
	return next, Outcome{Key: a.Key, Quantity: next.Items[i].Quantity}, nil
}

func removeWhere(c models.Cart, now time.Time, drop func(models.CartLineItem) bool) (models.Cart, Outcome, error) {
	next := clone(c, now)
	kept := next.Items[:0]
	for _, item := range next.Items {
		if !drop(item) {
			kept = append(kept, item)
		}
	}
	next.Items = kept
	return next, Outcome{Removed: len(c.Items) - len(kept)}, nil
}

func clone(c models.Cart, now time.Time) models.Cart {
	items := make([]models.CartLineItem, len(c.Items))
	copy(items, c.Items)
	return models.Cart{
		Items:     items,
		Version:   c.Version + 1,
		UpdatedAt: now,
	}
}
