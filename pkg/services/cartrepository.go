package services

import (
	"context"
	"encoding/json"
	"time"

	"khoomi-api-io/storefront/internal/common"
	"khoomi-api-io/storefront/pkg/models"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RedisCartRepository keeps each user's cart as one JSON snapshot. Two tabs
// saving at once is last write wins.
type RedisCartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCartRepository(client *redis.Client, ttl time.Duration) CartRepository {
	if ttl <= 0 {
		ttl = common.CART_ITEM_EXPIRATION_TIME
	}
	return &RedisCartRepository{client: client, ttl: ttl}
}

func cartKey(userID primitive.ObjectID) string {
	return common.CART_KEY_PREFIX + userID.Hex()
}

// Load returns the stored cart, or an empty one when nothing is stored.
func (r *RedisCartRepository) Load(ctx context.Context, userID primitive.ObjectID) (models.Cart, error) {
	raw, err := r.client.Get(ctx, cartKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Cart{Items: []models.CartLineItem{}}, nil
	}
	if err != nil {
		return models.Cart{}, errors.Wrap(err, "load cart")
	}

	var c models.Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		return models.Cart{}, errors.Wrap(err, "decode cart")
	}
	if c.Items == nil {
		c.Items = []models.CartLineItem{}
	}
	return c, nil
}

// Save stores c and restarts the expiry clock.
func (r *RedisCartRepository) Save(ctx context.Context, userID primitive.ObjectID, c models.Cart) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "encode cart")
	}
	if err := r.client.Set(ctx, cartKey(userID), raw, r.ttl).Err(); err != nil {
		return errors.Wrap(err, "save cart")
	}
	return nil
}
