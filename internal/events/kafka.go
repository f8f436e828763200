package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nikolayk812/checkout-demo/internal/domain"
	"github.com/segmentio/kafka-go"
)

// KafkaPublisher writes outbox messages to the topic stored on each message,
// keyed by order id so events of one order keep their order.
type KafkaPublisher struct {
	brokers []string
	writer  *kafka.Writer
}

func ParseBrokers(brokersCSV string) []string {
	brokers := []string{}
	for _, b := range strings.Split(brokersCSV, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func NewKafkaPublisher(brokers []string, writeTimeout time.Duration) *KafkaPublisher {
	return &KafkaPublisher{
		brokers: brokers,
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			WriteTimeout:           writeTimeout,
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *KafkaPublisher) Enabled() bool {
	return len(p.brokers) > 0
}

func (p *KafkaPublisher) Publish(ctx context.Context, messages []domain.OutboxMessage) error {
	if len(messages) == 0 {
		return nil
	}

	if err := p.writer.WriteMessages(ctx, toKafkaMessages(messages)...); err != nil {
		return fmt.Errorf("writer.WriteMessages: %w", err)
	}

	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func toKafkaMessages(messages []domain.OutboxMessage) []kafka.Message {
	result := make([]kafka.Message, 0, len(messages))

	for _, m := range messages {
		result = append(result, kafka.Message{
			Topic: m.Topic,
			Key:   []byte(m.Key),
			Value: m.Payload,
			Headers: []kafka.Header{
				{Key: "event_id", Value: []byte(m.EventID.String())},
			},
			Time: m.CreatedAt.UTC(),
		})
	}

	return result
}
