// Package cart orchestrates cart mutations against the commerce backend.
// The backend owns all cart state; every read re-fetches.
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/pizzadrive/orderbot/internal/commerce"
)

var ErrInvalidQuantity = errors.New("quantity must be positive")

type Orchestrator struct {
	Backend *commerce.Client
}

func New(backend *commerce.Client) *Orchestrator {
	return &Orchestrator{Backend: backend}
}

// AddItem adds quantity units of a product to the session's cart. Calls are
// not idempotent: repeating the call increments the line quantity at the
// backend.
func (o *Orchestrator) AddItem(ctx context.Context, sessionID, productID string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("add item: %w (got %d)", ErrInvalidQuantity, quantity)
	}
	return o.Backend.AddCartItem(ctx, sessionID, productID, quantity)
}

// RemoveItem deletes a cart line. Removing an item that is already gone
// returns commerce.ErrNotFound, which callers treat as already satisfied.
func (o *Orchestrator) RemoveItem(ctx context.Context, sessionID, itemID string) error {
	return o.Backend.RemoveCartItem(ctx, sessionID, itemID)
}

// ReadCart fetches the authoritative cart: its lines and the grand total in
// minor currency units.
func (o *Orchestrator) ReadCart(ctx context.Context, sessionID string) ([]commerce.CartItem, int, error) {
	items, err := o.Backend.CartItems(ctx, sessionID)
	if err != nil {
		return nil, 0, err
	}
	total, err := o.Backend.CartTotal(ctx, sessionID)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ReadTotals is the total-only projection of ReadCart.
func (o *Orchestrator) ReadTotals(ctx context.Context, sessionID string) (int, error) {
	return o.Backend.CartTotal(ctx, sessionID)
}
