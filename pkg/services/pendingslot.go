package services

import (
	"context"
	"encoding/json"
	"time"

	"khoomi-api-io/storefront/internal/common"
	"khoomi-api-io/storefront/pkg/models"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisPendingSlot stores one deferred add per guest session.
type RedisPendingSlot struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPendingSlot(client *redis.Client, ttl time.Duration) PendingSlot {
	if ttl <= 0 {
		ttl = common.PENDING_CART_TTL
	}
	return &RedisPendingSlot{client: client, ttl: ttl}
}

func pendingKey(session string) string {
	return common.PENDING_KEY_PREFIX + session
}

// Put overwrites whatever the session had stashed before.
func (s *RedisPendingSlot) Put(ctx context.Context, session string, entry models.PendingCartEntry) error {
	if common.IsEmptyString(session) {
		return models.NewInvalidData("guest session is required")
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrap(err, "encode pending entry")
	}
	if err := s.client.Set(ctx, pendingKey(session), raw, s.ttl).Err(); err != nil {
		return errors.Wrap(err, "store pending entry")
	}
	return nil
}

// Take reads and deletes the entry in one step, so two concurrent logins
// cannot both replay it. A stored value that does not decode is consumed and
// reported as malformed.
func (s *RedisPendingSlot) Take(ctx context.Context, session string) (*models.PendingCartEntry, error) {
	if common.IsEmptyString(session) {
		return nil, nil
	}
	raw, err := s.client.GetDel(ctx, pendingKey(session)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "take pending entry")
	}

	var entry models.PendingCartEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, models.NewMalformedPendingEntry("saved cart item could not be read")
	}
	return &entry, nil
}
