package services

import (
	"context"

	"khoomi-api-io/storefront/internal/pubsub"
	"khoomi-api-io/storefront/pkg/models"
	"khoomi-api-io/storefront/pkg/util"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationServiceImpl struct {
	publisher *pubsub.Publisher
}

func NewNotificationService(publisher *pubsub.Publisher) NotificationService {
	return &NotificationServiceImpl{publisher: publisher}
}

// InvalidateCartCache invalidates cart-related cache entries
func (ns *NotificationServiceImpl) InvalidateCartCache(ctx context.Context, userID primitive.ObjectID) error {
	return ns.publisher.PublishCacheMessage(ctx, pubsub.CacheInvalidateCart, userID.Hex())
}

func (ns *NotificationServiceImpl) PendingCartStashed(ctx context.Context, session string) error {
	return ns.publisher.PublishCacheMessage(ctx, pubsub.CachePendingStashed, session)
}

func (ns *NotificationServiceImpl) PendingCartReplayed(ctx context.Context, session string, userID primitive.ObjectID) error {
	return ns.publisher.PublishCacheMessage(ctx, pubsub.CachePendingReplayed, session+":"+userID.Hex())
}

func (ns *NotificationServiceImpl) PendingCartDiscarded(ctx context.Context, session string, reason models.ErrorKind) error {
	return ns.publisher.PublishCacheMessage(ctx, pubsub.CachePendingDiscarded, session+":"+string(reason))
}

func (ns *NotificationServiceImpl) CheckoutCompleted(ctx context.Context, userID primitive.ObjectID) error {
	return ns.publisher.PublishCacheMessage(ctx, pubsub.CacheCheckoutCompleted, userID.Hex())
}

// InvalidateOnChange announces every saved cart on the cache channel so other
// instances drop their copy.
func InvalidateOnChange(ns NotificationService) CartListener {
	return func(userID primitive.ObjectID, _ models.Cart) {
		go func() {
			if err := ns.InvalidateCartCache(context.Background(), userID); err != nil {
				util.LogError("Failed to invalidate cart cache", err)
			}
		}()
	}
}
