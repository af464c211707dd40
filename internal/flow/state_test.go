package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to State
		want     bool
	}{
		{StateStart, StateBrowsing, true},
		{StateBrowsing, StateProductDetail, true},
		{StateProductDetail, StateBrowsing, true},
		{StateProductDetail, StateCartView, true},
		{StateCartView, StateAwaitingLocation, true},
		{StateAwaitingLocation, StateRoutingDecision, true},
		{StateRoutingDecision, StateSelfPickup, true},
		{StateRoutingDecision, StateAwaitingCourier, true},
		{StateSelfPickup, StatePaymentHandoff, true},
		{StateAwaitingCourier, StatePaymentHandoff, true},
		{StatePaymentHandoff, StateEnd, true},

		// Self-loops are always legal.
		{StateBrowsing, StateBrowsing, true},
		{StateAwaitingLocation, StateAwaitingLocation, true},

		// The end command may leave any live state.
		{StateBrowsing, StateEnd, true},
		{StateAwaitingCourier, StateEnd, true},

		// No skipping ahead or walking back through checkout.
		{StateBrowsing, StateAwaitingLocation, false},
		{StateCartView, StateRoutingDecision, false},
		{StateAwaitingLocation, StateSelfPickup, false},
		{StateRoutingDecision, StatePaymentHandoff, false},
		{StatePaymentHandoff, StateBrowsing, false},
		{StateEnd, StateBrowsing, false},
		{StateEnd, StateEnd, true},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTerminal(t *testing.T) {
	assert.True(t, StateEnd.Terminal())
	assert.False(t, StateBrowsing.Terminal())
	assert.False(t, StatePaymentHandoff.Terminal())
}
