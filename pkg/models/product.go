package models

import (
	"fmt"
	"strings"

	"khoomi-api-io/storefront/internal/common"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Money is an amount in the currency's smallest display denomination.
type Money = int64

type Variant struct {
	Color           string `bson:"color" json:"color" validate:"required"`
	Size            string `bson:"size" json:"size" validate:"required"`
	Stock           int    `bson:"stock" json:"stock" validate:"gte=0"`
	Price           Money  `bson:"price" json:"price" validate:"gte=0"`
	DiscountPercent int    `bson:"discount_percent" json:"discountPercent" validate:"gte=0,lte=100"`
}

// InStock reports whether at least one unit can be ordered.
func (v Variant) InStock() bool {
	return v.Stock > 0
}

type Product struct {
	ID         primitive.ObjectID `bson:"_id" json:"_id"`
	Name       string             `bson:"name" json:"name"`
	Slug       string             `bson:"slug" json:"slug"`
	CategoryID primitive.ObjectID `bson:"category_id" json:"categoryId"`
	MainImage  string             `bson:"main_image" json:"mainImage"`
	Images     []string           `bson:"images" json:"images"`
	Variants   []Variant          `bson:"variants" json:"variants" validate:"required,min=1,dive"`
}

// Validate rejects catalog records the engine cannot reason about: bad variant
// fields and duplicate (color, size) pairs.
func (p *Product) Validate() error {
	if err := common.Validate.Struct(p); err != nil {
		return NewInvalidData(fmt.Sprintf("product %s has invalid variant data: %v", p.ID.Hex(), err))
	}

	seen := make(map[string]struct{}, len(p.Variants))
	for _, v := range p.Variants {
		pair := v.Color + "\x00" + v.Size
		if _, dup := seen[pair]; dup {
			return NewInvalidData(fmt.Sprintf("product %s lists variant %s/%s more than once", p.ID.Hex(), v.Color, v.Size))
		}
		seen[pair] = struct{}{}
	}
	return nil
}

// Thumbnail returns the image shown next to a cart line.
func (p *Product) Thumbnail() string {
	if p.MainImage != "" {
		return p.MainImage
	}
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return common.DEFAULT_THUMBNAIL
}

// LineKey identifies a variant of a product inside a cart.
type LineKey struct {
	ProductID primitive.ObjectID `bson:"product_id" json:"productId"`
	Color     string             `bson:"color" json:"color"`
	Size      string             `bson:"size" json:"size"`
}

func (k LineKey) String() string {
	return strings.Join([]string{k.ProductID.Hex(), k.Color, k.Size}, "/")
}
