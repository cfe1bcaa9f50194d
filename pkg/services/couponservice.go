package services

import (
	"context"

	"khoomi-api-io/storefront/internal/common"
	"khoomi-api-io/storefront/pkg/models"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CouponStoreImpl reads coupons from MongoDB.
type CouponStoreImpl struct {
	couponCollection *mongo.Collection
}

func NewCouponStore(db *mongo.Database) CouponStore {
	return &CouponStoreImpl{
		couponCollection: db.Collection(common.CouponCollection),
	}
}

// FindByCode looks up a coupon by its normalized code.
func (cs *CouponStoreImpl) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	normalized := models.NormalizeCouponCode(code)
	if normalized == "" {
		return nil, models.NewInvalidData("coupon code is required")
	}

	var coupon models.Coupon
	err := cs.couponCollection.FindOne(ctx, bson.M{"code": normalized}).Decode(&coupon)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.NewNotFound("coupon not found")
		}
		return nil, errors.Wrap(err, "find coupon")
	}

	if err := coupon.Validate(); err != nil {
		return nil, err
	}
	return &coupon, nil
}
