package flow

import (
	"context"

	"github.com/pizzadrive/orderbot/internal/delivery"
)

// Session is the accumulated context of one ordering conversation. It is
// read, transformed, and written back as one step per inbound event.
type Session struct {
	State     State              `json:"state"`
	Page      int                `json:"page"`
	ProductID string             `json:"product_id,omitempty"` // product on the detail card
	Decision  *delivery.Decision `json:"decision,omitempty"`
	// TotalMinor and Items are the last cart snapshot read from the
	// backend, kept for lifecycle events and the order archive. Never a
	// substitute for a fresh read.
	TotalMinor int      `json:"total_minor,omitempty"`
	Items      []string `json:"items,omitempty"`
	Email      string   `json:"email,omitempty"`
	Phone      string   `json:"phone,omitempty"`
}

func NewSession() *Session {
	return &Session{State: StateStart}
}

// Store persists sessions between events. Get returns (nil, nil) for an
// unknown id; that absence is the new-session signal.
type Store interface {
	Get(ctx context.Context, sessionID string) (*Session, error)
	Set(ctx context.Context, sessionID string, s *Session) error
	Delete(ctx context.Context, sessionID string) error
}
