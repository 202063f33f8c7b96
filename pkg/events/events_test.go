package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
)

func TestKafkaPublisherSendsKeyedMessage(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var ev Event
		if err := json.Unmarshal(val, &ev); err != nil {
			return err
		}
		if ev.Type != TypeStockUpdate {
			t.Errorf("Expected type %s, got %s", TypeStockUpdate, ev.Type)
		}
		return nil
	})

	p := newKafkaPublisher(producer, []string{"localhost:9092"}, "")
	if p.topic != DefaultTopic {
		t.Errorf("Expected default topic %s, got %s", DefaultTopic, p.topic)
	}

	ev := New(TypeStockUpdate, "borrow", "material-1", map[string]int{"quantityAvailable": 4}, &Actor{ID: "u1"})
	if err := p.Publish(context.Background(), ev); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Expected clean close, got %v", err)
	}
}

func TestKafkaPublisherReturnsSendError(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := newKafkaPublisher(producer, nil, "events")
	if err := p.Publish(context.Background(), New(TypeStockUpdate, "dispose", "", nil, nil)); err == nil {
		t.Error("Expected error when the broker rejects the message")
	}
	p.Close()
}

func TestNewStampsEvent(t *testing.T) {
	ev := New(TypeUserStatusUpdate, "online", "", nil, nil)
	if ev.ID == "" {
		t.Error("Expected event id to be set")
	}
	if ev.Timestamp.IsZero() {
		t.Error("Expected timestamp to be set")
	}
}
