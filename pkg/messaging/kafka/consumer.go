package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/erain9/tickbook/pkg/messaging"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Consumer reads done messages back off Kafka for downstream processing
type Consumer struct {
	reader *kafka.Reader
	logger zerolog.Logger
}

// NewConsumer creates a consumer on the given broker, topic and group
func NewConsumer(brokerAddr, topic, groupID string, logger zerolog.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{brokerAddr},
		Topic:   topic,
		GroupID: groupID,
	})

	return &Consumer{
		reader: reader,
		logger: logger,
	}
}

// ConsumeDoneMessages blocks, delivering each decoded message to handler
// until the context is canceled or the reader is closed.
func (c *Consumer) ConsumeDoneMessages(ctx context.Context, handler func(*messaging.DoneMessage) error) error {
	for {
		raw, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		var msg messaging.DoneMessage
		if err := json.Unmarshal(raw.Value, &msg); err != nil {
			c.logger.Warn().Err(err).Msg("Skipping undecodable done message")
			continue
		}

		if err := handler(&msg); err != nil {
			c.logger.Error().
				Err(err).
				Uint64("order_id", msg.OrderID).
				Msg("Done message handler failed")
		}
	}
}

// Close closes the underlying reader
func (c *Consumer) Close() error {
	return c.reader.Close()
}
