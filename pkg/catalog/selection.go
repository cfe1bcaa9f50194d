package catalog

import (
	"fmt"

	"khoomi-api-io/storefront/pkg/models"
)

// Selection is the shopper's current pick on a product page.
type Selection struct {
	Color string `json:"color"`
	Size  string `json:"size"`
}

// PickColor selects a color. If the current size has no stock in the new
// color the size is cleared and must be picked again.
func (s Selection) PickColor(idx *Index, color string) Selection {
	next := Selection{Color: color, Size: s.Size}
	if next.Size != "" && !contains(idx.SizesForColor(color), next.Size) {
		next.Size = ""
	}
	return next
}

// PickSize selects a size.
func (s Selection) PickSize(size string) Selection {
	return Selection{Color: s.Color, Size: size}
}

type Resolution struct {
	Selection       Selection       `json:"selection"`
	AvailableColors []string        `json:"availableColors"`
	AvailableSizes  []string        `json:"availableSizes"`
	Matched         *models.Variant `json:"matched,omitempty"`
	MaxQuantity     int             `json:"maxQuantity"`
	Price           *Price          `json:"price,omitempty"`
}

// Resolve computes the selection state. A missing match is a valid,
// incomplete state; callers use Require before acting on it.
func Resolve(idx *Index, sel Selection) Resolution {
	res := Resolution{
		Selection:       sel,
		AvailableColors: idx.Colors(),
		AvailableSizes:  idx.SizesForColor(sel.Color),
	}

	if sel.Color == "" || sel.Size == "" {
		return res
	}
	if v, ok := idx.Lookup(sel.Color, sel.Size); ok {
		res.Matched = &v
		res.MaxQuantity = v.Stock
		price := UnitPrice(v)
		res.Price = &price
	}
	return res
}

// Require returns the matched variant or an incomplete-selection error that
// says what is missing.
func (r Resolution) Require() (models.Variant, error) {
	switch {
	case r.Selection.Color == "":
		return models.Variant{}, models.NewIncompleteSelection("please select a color")
	case r.Selection.Size == "":
		return models.Variant{}, models.NewIncompleteSelection("please select a size")
	case r.Matched == nil:
		return models.Variant{}, models.NewIncompleteSelection(
			fmt.Sprintf("%s in size %s is not available", r.Selection.Color, r.Selection.Size))
	}
	return *r.Matched, nil
}

// ResolveProduct indexes p and resolves sel in one call.
func ResolveProduct(p *models.Product, sel Selection) Resolution {
	return Resolve(NewIndex(p.Variants), sel)
}
