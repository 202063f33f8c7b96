package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lab-inventory/pkg/logger"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
)

const DefaultTopic = "lab-inventory-events"

// Event types broadcast to websocket clients and the event topic.
const (
	TypeStockUpdate      = "stock_update"
	TypeUserStatusUpdate = "user_status_update"
	TypeSupplierUpdate   = "supplier_update"
	TypeIncidentReported = "incident_reported"
)

// Actor is who caused an event.
type Actor struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Event is the JSON envelope shared by the websocket hub and kafka.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Action    string      `json:"action"`
	Key       string      `json:"key,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	User      *Actor      `json:"user,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// New stamps an event with an id and the current time.
func New(eventType, action, key string, data interface{}, actor *Actor) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Action:    action,
		Key:       key,
		Data:      data,
		User:      actor,
		Timestamp: time.Now(),
	}
}

func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// KafkaPublisher writes events to a single topic, keyed by Event.Key so
// every movement of one material lands on the same partition.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Retry.Max = 3
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Compression = sarama.CompressionSnappy

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	return newKafkaPublisher(producer, brokers, topic), nil
}

func newKafkaPublisher(producer sarama.SyncProducer, brokers []string, topic string) *KafkaPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	logger.Logger.Info().
		Strs("brokers", brokers).
		Str("topic", topic).
		Msg("Kafka publisher initialized")
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	body, err := event.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Value: sarama.ByteEncoder(body),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(event.Type)},
			{Key: []byte("event_id"), Value: []byte(event.ID)},
		},
	}
	if event.Key != "" {
		msg.Key = sarama.StringEncoder(event.Key)
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		logger.Error(ctx).Err(err).Str("topic", p.topic).Str("event_id", event.ID).Msg("Failed to publish event")
		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	logger.Debug(ctx).
		Str("event_id", event.ID).
		Str("event_type", event.Type).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("Event published")
	return nil
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NoopPublisher is used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
func (NoopPublisher) Close() error                         { return nil }
