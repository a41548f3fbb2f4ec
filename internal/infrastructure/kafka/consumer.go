package kafka

import (
	"context"
	"fmt"

	"github.com/example/storefront/internal/domain/activity"
	"github.com/example/storefront/internal/logger"
	"github.com/segmentio/kafka-go"
)

type EventHandler func(ctx context.Context, event activity.Event) error

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Consumer reads activity events from a topic. With an empty group id it reads
// the partition from the start without committing offsets.
type Consumer struct {
	reader messageReader
	log    *logger.Logger
}

func NewConsumer(brokers []string, topic, groupID string, log *logger.Logger) *Consumer {
	cfg := kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	}
	return &Consumer{reader: kafka.NewReader(cfg), log: log.Component("kafka-consumer")}
}

// Consume calls handler for every event until ctx is done. Undecodable messages
// and handler errors are logged and skipped.
func (c *Consumer) Consume(ctx context.Context, handler EventHandler) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Error(ctx, "reading message", err)
			continue
		}

		event, err := activity.Decode(msg.Value)
		if err != nil {
			c.log.Error(ctx, fmt.Sprintf("skipping message at offset %d", msg.Offset), err)
			continue
		}
		if err := handler(ctx, event); err != nil {
			c.log.Error(ctx, "handling activity event", err)
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
