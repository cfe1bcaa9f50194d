package services

import (
	"context"
	"encoding/json"

	"khoomi-api-io/storefront/pkg/models"
	"khoomi-api-io/storefront/pkg/util"

	"github.com/pkg/errors"
	kafkaGo "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkaGo.Message) error
	Close() error
}

// KafkaOrderPublisher writes checkout summaries to the order topic, keyed by
// user so one user's orders stay on one partition.
type KafkaOrderPublisher struct {
	writer messageWriter
}

func NewKafkaOrderPublisher(brokers []string, topic string) *KafkaOrderPublisher {
	return &KafkaOrderPublisher{
		writer: &kafkaGo.Writer{
			Addr:                   kafkaGo.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafkaGo.Hash{},
			RequiredAcks:           kafkaGo.RequireAll,
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *KafkaOrderPublisher) PublishOrder(ctx context.Context, summary models.CheckoutSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return errors.Wrap(err, "failed to marshal order")
	}

	err = p.writer.WriteMessages(ctx, kafkaGo.Message{
		Key:   []byte(summary.UserID.Hex()),
		Value: payload,
		Headers: []kafkaGo.Header{
			{Key: "type", Value: []byte("checkout.completed")},
		},
	})
	if err != nil {
		return errors.Wrap(err, "failed to publish order")
	}

	util.LogInfo("order handed off", zap.String("user", summary.UserID.Hex()), zap.Int64("total", summary.Total))
	return nil
}

func (p *KafkaOrderPublisher) Close() error {
	return p.writer.Close()
}
