// Package pubsub announces cart changes on Redis so other instances and open
// tabs can drop what they cached.
package pubsub

import (
	"context"
	"encoding/json"
	"time"

	"khoomi-api-io/storefront/pkg/util"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var CHANNEL_GLOBAL_CACHE = "GLOBAL_CACHE"

type CacheMessageType string

const (
	CacheInvalidateCart    CacheMessageType = "cart.invalidate"
	CachePendingStashed    CacheMessageType = "cart.pending.stashed"
	CachePendingReplayed   CacheMessageType = "cart.pending.replayed"
	CachePendingDiscarded  CacheMessageType = "cart.pending.discarded"
	CacheCheckoutCompleted CacheMessageType = "checkout.completed"
)

type CacheMessage struct {
	Type      CacheMessageType `json:"type"`
	Payload   string           `json:"payload"`
	Timestamp int64            `json:"timestamp"`
}

type Publisher struct {
	client  *redis.Client
	channel string
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client, channel: CHANNEL_GLOBAL_CACHE}
}

// PublishCacheMessage publishes a cache invalidation message to Redis pub/sub as JSON
func (p *Publisher) PublishCacheMessage(ctx context.Context, messageType CacheMessageType, payload string) error {
	messageJSON, err := json.Marshal(CacheMessage{
		Type:      messageType,
		Payload:   payload,
		Timestamp: time.Now().Unix(),
	})
	if err != nil {
		return errors.Wrap(err, "marshal cache message")
	}

	if err := p.client.Publish(ctx, p.channel, messageJSON).Err(); err != nil {
		util.LogError("failed to publish cache message", err, zap.String("type", string(messageType)))
		return errors.Wrap(err, "publish cache message")
	}
	return nil
}

// Subscribe calls handle for every message on the channel until ctx ends.
// Undecodable messages are logged and skipped.
func (p *Publisher) Subscribe(ctx context.Context, handle func(CacheMessage)) error {
	sub := p.client.Subscribe(ctx, p.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return errors.Wrap(err, "subscribe")
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var m CacheMessage
			if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
				util.LogWarning("dropping malformed cache message", zap.String("payload", msg.Payload))
				continue
			}
			handle(m)
		}
	}
}
