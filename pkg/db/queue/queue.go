package queue

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/IBM/sarama"
	"github.com/erain9/tickbook/pkg/messaging"
)

var (
	brokerList = "localhost:9092"
	topic      = "tickbook-done-messages"
)

const maxRetry = 5

// SetBrokerList overrides the Kafka broker address, typically from config.
func SetBrokerList(brokers string) {
	brokerList = brokers
}

// SetTopic overrides the Kafka topic, typically from config.
func SetTopic(t string) {
	topic = t
}

// QueueMessageSender implements the MessageSender interface
// for sending messages to Kafka
type QueueMessageSender struct {
	producer sarama.SyncProducer
}

// NewQueueMessageSender creates a sender with its own Kafka connection
func NewQueueMessageSender() (*QueueMessageSender, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.Retry.Max = maxRetry

	producer, err := sarama.NewSyncProducer([]string{brokerList}, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &QueueMessageSender{producer: producer}, nil
}

// newQueueMessageSenderWithProducer is used by tests to inject a mock
func newQueueMessageSenderWithProducer(producer sarama.SyncProducer) *QueueMessageSender {
	return &QueueMessageSender{producer: producer}
}

// SendDoneMessage sends the DoneMessage to the Kafka queue
func (q *QueueMessageSender) SendDoneMessage(done *messaging.DoneMessage) error {
	data, err := json.Marshal(done)
	if err != nil {
		return fmt.Errorf("failed to marshal done message: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(strconv.FormatUint(done.OrderID, 10)),
		Value: sarama.ByteEncoder(data),
	}

	if _, _, err := q.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	return nil
}

// Close closes the underlying producer
func (q *QueueMessageSender) Close() error {
	return q.producer.Close()
}

// Ensure QueueMessageSender implements MessageSender
var _ messaging.MessageSender = (*QueueMessageSender)(nil)
