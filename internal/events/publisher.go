package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"ledger-api/internal/models"
	"ledger-api/internal/money"
)

// TypeTransactionCreated is the event header value for new ledger entries.
const TypeTransactionCreated = "transaction.created"

// TransactionCreated is published after a transaction is stored.
type TransactionCreated struct {
	TransactionID int64                  `json:"transaction_id"`
	UserID        int64                  `json:"user_id"`
	Value         money.Cents            `json:"value"`
	Reason        string                 `json:"reason"`
	PaymentMethod string                 `json:"payment_method"`
	Type          models.TransactionType `json:"type"`
	DateCreated   time.Time              `json:"date_created"`
}

// NewTransactionCreated builds the event for t.
func NewTransactionCreated(t *models.Transaction) TransactionCreated {
	return TransactionCreated{
		TransactionID: t.ID,
		UserID:        t.UserID,
		Value:         t.Value,
		Reason:        t.Reason,
		PaymentMethod: t.PaymentMethod,
		Type:          t.Type,
		DateCreated:   t.DateCreated,
	}
}

// Publisher delivers ledger events to interested consumers.
type Publisher interface {
	Publish(ctx context.Context, e TransactionCreated) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

// Publish discards the event.
func (Nop) Publish(context.Context, TransactionCreated) error { return nil }

// Close does nothing.
func (Nop) Close() error { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events to a Kafka topic, keyed by user so that a
// user's events stay ordered within one partition.
type KafkaPublisher struct {
	writer messageWriter
}

// NewKafkaPublisher creates an asynchronous Kafka publisher. Delivery
// failures are reported to logger since the request has already completed.
func NewKafkaPublisher(brokers []string, topic string, logger zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
			Async:                  true,
			Completion: func(messages []kafka.Message, err error) {
				if err != nil {
					logger.Error().Err(err).Int("messages", len(messages)).Msg("kafka delivery failed")
				}
			},
		},
	}
}

// Publish encodes e and hands it to the writer.
func (p *KafkaPublisher) Publish(ctx context.Context, e TransactionCreated) error {
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(e.UserID, 10)),
		Value: body,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(TypeTransactionCreated)},
		},
	})
}

// Close flushes pending messages and releases the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
