package services

import (
	"context"

	"khoomi-api-io/storefront/internal/common"
	"khoomi-api-io/storefront/pkg/models"

	"github.com/gosimple/slug"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CatalogStoreImpl reads products from MongoDB.
type CatalogStoreImpl struct {
	productCollection *mongo.Collection
}

func NewCatalogStore(db *mongo.Database) CatalogStore {
	return &CatalogStoreImpl{
		productCollection: db.Collection(common.ProductCollection),
	}
}

// GetProduct fetches the live product record by id.
func (cs *CatalogStoreImpl) GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	if id.IsZero() {
		return nil, models.NewMissingProductData("product id is required")
	}
	return cs.findOne(ctx, bson.M{"_id": id})
}

// GetProductBySlug accepts any spelling of a slug ("Linen Shirt", "linen-shirt").
func (cs *CatalogStoreImpl) GetProductBySlug(ctx context.Context, s string) (*models.Product, error) {
	normalized := NormalizeSlug(s)
	if normalized == "" {
		return nil, models.NewNotFound("product not found")
	}
	return cs.findOne(ctx, bson.M{"slug": normalized})
}

func (cs *CatalogStoreImpl) findOne(ctx context.Context, filter bson.M) (*models.Product, error) {
	var product models.Product
	err := cs.productCollection.FindOne(ctx, filter).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.NewNotFound("product not found")
		}
		return nil, errors.Wrap(err, "find product")
	}

	if err := product.Validate(); err != nil {
		return nil, err
	}
	return &product, nil
}

// NormalizeSlug maps user input onto the stored slug form.
func NormalizeSlug(s string) string {
	return slug.Make(s)
}
