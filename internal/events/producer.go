package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// MessageSent is published after a message has been persisted and
// fanned out, for downstream consumers (notifications, analytics).
type MessageSent struct {
	MessageID        string    `json:"message_id"`
	RoomID           string    `json:"room_id"`
	SenderID         string    `json:"sender_id"`
	OriginalLanguage string    `json:"original_language"`
	Type             string    `json:"type"`
	CreatedAt        time.Time `json:"created_at"`
}

// Publisher is what the gateway needs; the kafka producer implements it.
type Publisher interface {
	PublishMessageSent(ctx context.Context, ev MessageSent) error
}

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	w := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  brokers,
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	})
	return &Producer{writer: w}
}

func (p *Producer) PublishMessageSent(ctx context.Context, ev MessageSent) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	msg := kafka.Message{Key: []byte(ev.RoomID), Value: value, Time: time.Now()}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Producer) Close() error { return p.writer.Close() }
