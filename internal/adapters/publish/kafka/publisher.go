package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"petrack/internal/domain/notifications"
)

// producer es lo que usamos de *kgo.Client.
type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

type message struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	PetID     string    `json:"pet_id,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Publisher escribe cada notificación como un record JSON con key = user_id,
// así un mismo usuario cae siempre en la misma partición.
type Publisher struct {
	client producer
	topic  string
}

func New(brokers []string, topic string) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	if topic == "" {
		return nil, errors.New("kafka: topic is required")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchMaxBytes(1<<20),
		kgo.RecordRetries(3),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	return &Publisher{client: client, topic: topic}, nil
}

func (p *Publisher) Publish(ctx context.Context, ns []notifications.Notification) error {
	if len(ns) == 0 {
		return nil
	}

	records := make([]*kgo.Record, 0, len(ns))
	for _, n := range ns {
		body, err := json.Marshal(message{
			ID:        n.ID,
			UserID:    n.UserID,
			PetID:     n.PetID,
			Message:   n.Message,
			CreatedAt: n.CreatedAt,
		})
		if err != nil {
			return fmt.Errorf("encode notification %s: %w", n.ID, err)
		}
		records = append(records, &kgo.Record{
			Topic: p.topic,
			Key:   []byte(n.UserID),
			Value: body,
		})
	}

	if err := p.client.ProduceSync(ctx, records...).FirstErr(); err != nil {
		return fmt.Errorf("produce notifications: %w", err)
	}
	return nil
}

func (p *Publisher) Close() {
	p.client.Close()
}
