package catalog

import (
	"khoomi-api-io/storefront/pkg/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type Price struct {
	Original   models.Money `json:"original"`
	Discounted models.Money `json:"discounted"`
}

// UnitPrice applies the variant discount to one unit and rounds half away from
// zero to a whole minor unit. Line totals multiply this rounded value; they
// never round again. DiscountPercent is assumed to be in [0, 100].
func UnitPrice(v models.Variant) Price {
	original := decimal.NewFromInt(v.Price)
	keep := decimal.NewFromInt(int64(100 - v.DiscountPercent))
	discounted := original.Mul(keep).Div(hundred).Round(0).IntPart()
	return Price{Original: v.Price, Discounted: discounted}
}
