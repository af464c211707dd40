package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/pizzadrive/orderbot/internal/flow"
	kafkax "github.com/pizzadrive/orderbot/internal/kafka"
)

// KafkaPublisher emits lifecycle events onto their topics. It satisfies
// flow.Publisher.
type KafkaPublisher struct {
	Placed  *kafkax.Producer
	Paid    *kafkax.Producer
	Service string
}

func (p *KafkaPublisher) OrderPlaced(ctx context.Context, o flow.PlacedOrder) error {
	payload := OrderPlacedPayload{
		SessionID:  o.SessionID,
		TotalMinor: o.TotalMinor,
		Tier:       o.Tier,
		Courier:    o.Courier,
		User:       o.User,
		Items:      o.Items,
	}
	p.publish(p.Placed, o.SessionID, EventOrderPlaced, kafkax.MustMarshal(payload))
	return nil
}

func (p *KafkaPublisher) OrderPaid(ctx context.Context, sessionID string, totalMinor int) error {
	payload := OrderPaidPayload{SessionID: sessionID, TotalMinor: totalMinor}
	p.publish(p.Paid, sessionID, EventOrderPaid, kafkax.MustMarshal(payload))
	return nil
}

func (p *KafkaPublisher) publish(prod *kafkax.Producer, sessionID, eventType string, payload []byte) {
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      p.Service,
		CorrelationID: sessionID,
		Payload:       payload,
	}
	prod.Publish(PartitionKey(sessionID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
