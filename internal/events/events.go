// Package events defines the order lifecycle events this service emits.
package events

import (
	"encoding/json"
	"time"

	"github.com/pizzadrive/orderbot/internal/geo"
)

const (
	EventOrderPlaced = "OrderPlaced"
	EventOrderPaid   = "OrderPaid"
)

const (
	TopicOrderPlaced = "order.placed"
	TopicOrderPaid   = "order.paid"
)

// Partition key = session id, so all events of one conversation keep their
// order.
func PartitionKey(sessionID string) []byte { return []byte(sessionID) }

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"` // session id
	Payload       json.RawMessage `json:"payload"`
}

type OrderPlacedPayload struct {
	SessionID  string    `json:"session_id"`
	TotalMinor int       `json:"total_minor"`
	Tier       string    `json:"tier"`
	Courier    bool      `json:"courier"`
	User       geo.Point `json:"user"` // where the courier is headed
	Items      []string  `json:"items,omitempty"`
}

type OrderPaidPayload struct {
	SessionID  string `json:"session_id"`
	TotalMinor int    `json:"total_minor"`
}
