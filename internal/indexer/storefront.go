package indexer

import (
	"khoomi-api-io/storefront/internal/common"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// StorefrontIndexes covers the catalog and coupon lookups: product by slug,
// products by category, and coupon by normalized code.
func StorefrontIndexes() []IndexDefinition {
	return []IndexDefinition{
		{
			Collection: common.ProductCollection,
			Index: mongo.IndexModel{
				Keys:    bson.D{{Key: "slug", Value: 1}},
				Options: options.Index().SetName("product_slug_unique").SetUnique(true),
			},
		},
		{
			Collection: common.ProductCollection,
			Index: mongo.IndexModel{
				Keys:    bson.D{{Key: "category_id", Value: 1}},
				Options: options.Index().SetName("product_category"),
			},
		},
		{
			Collection: common.ProductCollection,
			Index: mongo.IndexModel{
				Keys:    bson.D{{Key: "variants.color", Value: 1}, {Key: "variants.size", Value: 1}},
				Options: options.Index().SetName("product_variant_pair"),
			},
		},
		{
			Collection: common.CouponCollection,
			Index: mongo.IndexModel{
				Keys:    bson.D{{Key: "code", Value: 1}},
				Options: options.Index().SetName("coupon_code_unique").SetUnique(true),
			},
		},
		{
			Collection: common.CouponCollection,
			Index: mongo.IndexModel{
				Keys:    bson.D{{Key: "is_active", Value: 1}, {Key: "end_date", Value: 1}},
				Options: options.Index().SetName("coupon_active_window"),
			},
		},
	}
}

// NewStorefrontManager returns a Manager loaded with StorefrontIndexes.
func NewStorefrontManager(db *mongo.Database, opts ...*Options) *Manager {
	return NewManager(db, opts...).LoadFromDefinitions(StorefrontIndexes())
}
