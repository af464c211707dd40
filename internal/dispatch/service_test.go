package dispatch

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pizzadrive/orderbot/internal/events"
	"github.com/pizzadrive/orderbot/internal/geo"
)

type recordedNotifier struct {
	texts []string
	pins  []*geo.Point
	err   error
}

func (n *recordedNotifier) NotifyDispatcher(ctx context.Context, text string, pin *geo.Point) error {
	if n.err != nil {
		return n.err
	}
	n.texts = append(n.texts, text)
	n.pins = append(n.pins, pin)
	return nil
}

type memDedup struct {
	seen map[string]bool
	err  error
}

func (d *memDedup) Seen(ctx context.Context, eventID string) (bool, error) {
	if d.err != nil {
		return false, d.err
	}
	was := d.seen[eventID]
	d.seen[eventID] = true
	return was, nil
}

func placedMessage(t *testing.T, eventID string, p events.OrderPlacedPayload) kafkago.Message {
	t.Helper()
	payload, err := json.Marshal(p)
	require.NoError(t, err)
	env := events.Envelope{
		EventID:      eventID,
		EventType:    events.EventOrderPlaced,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     "orderbot-test",
		Payload:      payload,
	}
	value, err := json.Marshal(env)
	require.NoError(t, err)
	return kafkago.Message{Topic: events.TopicOrderPlaced, Value: value}
}

func TestHandleOrderPlacedNotifiesWithPin(t *testing.T) {
	n := &recordedNotifier{}
	svc := &Service{Notifier: n, Dedup: &memDedup{seen: map[string]bool{}}}

	user := geo.Point{Lon: 37.6173, Lat: 55.7558}
	m := placedMessage(t, "ev1", events.OrderPlacedPayload{
		SessionID: "chat42", TotalMinor: 1000, Tier: "LOW_FEE", Courier: true,
		User: user, Items: []string{"Margherita", "Pepperoni"},
	})
	require.NoError(t, svc.HandleOrderPlaced(context.Background(), m))

	require.Len(t, n.texts, 1)
	assert.Contains(t, n.texts[0], "chat42")
	assert.Contains(t, n.texts[0], "Margherita, Pepperoni")
	assert.Contains(t, n.texts[0], "10.00 RUB")
	assert.Contains(t, n.texts[0], "courier delivery")
	require.Len(t, n.pins, 1)
	require.NotNil(t, n.pins[0], "courier orders carry the customer pin")
	assert.Equal(t, user, *n.pins[0])
}

func TestHandleOrderPlacedDeduplicates(t *testing.T) {
	n := &recordedNotifier{}
	svc := &Service{Notifier: n, Dedup: &memDedup{seen: map[string]bool{}}}

	m := placedMessage(t, "ev1", events.OrderPlacedPayload{SessionID: "chat1", TotalMinor: 500})
	require.NoError(t, svc.HandleOrderPlaced(context.Background(), m))
	require.NoError(t, svc.HandleOrderPlaced(context.Background(), m))

	assert.Len(t, n.texts, 1, "duplicate event must not notify twice")
}

func TestHandleOrderPlacedIgnoresOtherEventTypes(t *testing.T) {
	n := &recordedNotifier{}
	svc := &Service{Notifier: n, Dedup: &memDedup{seen: map[string]bool{}}}

	env := events.Envelope{EventID: "ev2", EventType: events.EventOrderPaid, Payload: []byte(`{}`)}
	value, err := json.Marshal(env)
	require.NoError(t, err)

	require.NoError(t, svc.HandleOrderPlaced(context.Background(), kafkago.Message{Value: value}))
	assert.Empty(t, n.texts)
}

func TestHandleOrderPlacedRejectsMalformedValue(t *testing.T) {
	svc := &Service{Notifier: &recordedNotifier{}, Dedup: &memDedup{seen: map[string]bool{}}}
	err := svc.HandleOrderPlaced(context.Background(), kafkago.Message{Value: []byte("not json")})
	assert.Error(t, err, "malformed messages surface to the consumer for retry accounting")
}

func TestHandleOrderPlacedSelfPickupSendsNoPin(t *testing.T) {
	n := &recordedNotifier{}
	svc := &Service{Notifier: n, Dedup: &memDedup{seen: map[string]bool{}}}

	m := placedMessage(t, "ev3", events.OrderPlacedPayload{
		SessionID: "chat2", TotalMinor: 650, Courier: false,
		User: geo.Point{Lon: 37.6, Lat: 55.7}, Items: []string{"Diavola"},
	})
	require.NoError(t, svc.HandleOrderPlaced(context.Background(), m))

	require.Len(t, n.texts, 1)
	assert.Contains(t, n.texts[0], "self pickup")
	assert.Contains(t, n.texts[0], "Diavola")
	assert.Contains(t, n.texts[0], "6.50 RUB")
	require.Len(t, n.pins, 1)
	assert.Nil(t, n.pins[0], "pickup orders need no routing pin")
}
