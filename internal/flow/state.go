package flow

// State is the conversation position of one ordering session.
type State string

const (
	StateStart            State = "START"
	StateBrowsing         State = "BROWSING"
	StateProductDetail    State = "PRODUCT_DETAIL"
	StateCartView         State = "CART_VIEW"
	StateAwaitingLocation State = "AWAITING_LOCATION"
	StateRoutingDecision  State = "ROUTING_DECISION"
	StateSelfPickup       State = "SELF_PICKUP"
	StateAwaitingCourier  State = "AWAITING_COURIER"
	StatePaymentHandoff   State = "PAYMENT_HANDOFF"
	StateEnd              State = "END"
)

// validNext holds the legal transitions. Self-loops (paging while browsing,
// removing items in the cart view, reprompting for an address) are legal
// everywhere and not listed.
var validNext = map[State]map[State]bool{
	StateStart:            {StateBrowsing: true},
	StateBrowsing:         {StateProductDetail: true, StateCartView: true},
	StateProductDetail:    {StateBrowsing: true, StateCartView: true},
	StateCartView:         {StateBrowsing: true, StateAwaitingLocation: true},
	StateAwaitingLocation: {StateRoutingDecision: true},
	StateRoutingDecision:  {StateSelfPickup: true, StateAwaitingCourier: true},
	StateSelfPickup:       {StatePaymentHandoff: true},
	StateAwaitingCourier:  {StatePaymentHandoff: true},
	StatePaymentHandoff:   {StateEnd: true},
	StateEnd:              {},
}

// CanTransition reports whether moving from one state to another is legal.
// The explicit end command may leave any state; staying put is always legal.
func CanTransition(from, to State) bool {
	if from == to {
		return true
	}
	if to == StateEnd {
		return from != StateEnd
	}
	return validNext[from][to]
}

func (s State) Terminal() bool { return s == StateEnd }
