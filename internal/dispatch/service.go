// Package dispatch turns order.placed events into courier-desk
// notifications.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/pizzadrive/orderbot/internal/events"
	"github.com/pizzadrive/orderbot/internal/geo"
	kafkax "github.com/pizzadrive/orderbot/internal/kafka"
)

// Notifier delivers the dispatcher message; the telegram transport
// implements it. A non-nil pin is sent as a location message alongside the
// text so the desk can route the courier.
type Notifier interface {
	NotifyDispatcher(ctx context.Context, text string, pin *geo.Point) error
}

// Deduper marks event ids as seen. *redisx.Deduper satisfies it.
type Deduper interface {
	Seen(ctx context.Context, eventID string) (bool, error)
}

type Service struct {
	Notifier Notifier
	Dedup    Deduper
}

// HandleOrderPlaced is wired as the consumer handler for order.placed.
func (s *Service) HandleOrderPlaced(ctx context.Context, m kafkago.Message) error {
	var env events.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != events.EventOrderPlaced {
		return nil
	}

	if seen, err := s.Dedup.Seen(ctx, env.EventID); err == nil && seen {
		return nil
	}

	p, err := kafkax.UnwrapPayload[events.OrderPlacedPayload](env.Payload)
	if err != nil {
		return err
	}

	mode := "self pickup"
	var pin *geo.Point
	if p.Courier {
		mode = "courier delivery"
		u := p.User
		pin = &u
	}
	text := fmt.Sprintf("New order!\nSession: %s\nItems: %s\nTotal: %d.%02d RUB\nTier: %s\nFulfillment: %s",
		p.SessionID, strings.Join(p.Items, ", "), p.TotalMinor/100, p.TotalMinor%100, p.Tier, mode)
	return s.Notifier.NotifyDispatcher(ctx, text, pin)
}
