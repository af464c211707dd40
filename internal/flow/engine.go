// Package flow is the order-flow controller: a finite-state conversation
// machine that turns inbound chat events into state transitions and render
// instructions.
package flow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/pizzadrive/orderbot/internal/cart"
	"github.com/pizzadrive/orderbot/internal/commerce"
	"github.com/pizzadrive/orderbot/internal/delivery"
	"github.com/pizzadrive/orderbot/internal/geo"
)

// Catalog is the slice of the commerce backend the flow reads from.
// *commerce.Client satisfies it.
type Catalog interface {
	ListProducts(ctx context.Context) ([]commerce.Product, error)
	Product(ctx context.Context, id string) (commerce.Product, error)
	ImageURL(ctx context.Context, fileID string) (string, error)
	Locations(ctx context.Context, flowSlug string) ([]commerce.Location, error)
}

// Carts is the cart orchestration surface. *cart.Orchestrator satisfies it.
type Carts interface {
	AddItem(ctx context.Context, sessionID, productID string, quantity int) error
	RemoveItem(ctx context.Context, sessionID, itemID string) error
	ReadCart(ctx context.Context, sessionID string) ([]commerce.CartItem, int, error)
	ReadTotals(ctx context.Context, sessionID string) (int, error)
}

type Geocoder interface {
	Resolve(ctx context.Context, address string) (geo.Point, bool, error)
}

type Reminders interface {
	Arm(sessionID string, d time.Duration)
	Cancel(sessionID string)
}

// PlacedOrder is what the publisher gets when a session commits to
// fulfillment: enough for the courier desk to route the order without a
// backend round trip.
type PlacedOrder struct {
	SessionID  string
	TotalMinor int
	Tier       string
	Courier    bool
	User       geo.Point
	Items      []string
}

// Publisher emits order lifecycle events downstream. Optional.
type Publisher interface {
	OrderPlaced(ctx context.Context, o PlacedOrder) error
	OrderPaid(ctx context.Context, sessionID string, totalMinor int) error
}

// OrderRecord is what the archive keeps about a finished order.
type OrderRecord struct {
	SessionID  string
	TotalMinor int
	Tier       string
	DistanceKm float64
	Courier    bool
}

// Archiver persists finished orders for reporting. Optional.
type Archiver interface {
	Record(ctx context.Context, rec OrderRecord) error
}

// Engine drives one storefront conversation per session. Events for the
// same session are processed one at a time; distinct sessions run
// concurrently.
type Engine struct {
	Sessions  Store
	Catalog   Catalog
	Carts     Carts
	Geocoder  Geocoder
	Reminders Reminders
	Publisher Publisher
	Archiver  Archiver

	LocationsFlow string
	ReminderDelay time.Duration

	locks sync.Map // session id -> *sync.Mutex
}

func (e *Engine) lock(sessionID string) func() {
	v, _ := e.locks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Handle processes one inbound event to completion. The returned render is
// always safe to send; a non-nil error is for logging only and means the
// event could not advance the session (the session keeps its last durably
// persisted state).
func (e *Engine) Handle(ctx context.Context, sessionID string, ev Event) (Render, error) {
	defer e.lock(sessionID)()

	prev, err := e.Sessions.Get(ctx, sessionID)
	if err != nil {
		// Persistence unreachable or context malformed: drop the event.
		return noticeView(msgTransient), fmt.Errorf("session load: %w", err)
	}
	if prev == nil {
		prev = NewSession()
	}

	switch ev.Kind {
	case EventEnd:
		return e.finish(ctx, sessionID)
	case EventStart:
		// /start resets the conversation (the backend cart survives); a
		// reminder armed for the abandoned order must not fire.
		e.Reminders.Cancel(sessionID)
		prev = NewSession()
	default:
		if prev.State.Terminal() {
			e.locks.Delete(sessionID)
			return noticeView(msgConversationOver), nil
		}
	}

	next := *prev
	r, err := e.dispatch(ctx, sessionID, &next, ev)
	if err != nil {
		// No transition on failure: re-render with a notice, keep persisted state.
		return e.failureView(err), err
	}
	if !CanTransition(prev.State, next.State) {
		return noticeView(msgUnexpected), fmt.Errorf("illegal transition %s -> %s", prev.State, next.State)
	}

	if err := e.Sessions.Set(ctx, sessionID, &next); err != nil {
		return noticeView(msgTransient), fmt.Errorf("session persist: %w", err)
	}
	e.applyEffects(ctx, sessionID, prev.State, &next)
	if next.State.Terminal() {
		// No further events are expected; drop the lock entry so ended
		// sessions do not accumulate. A late event mints a fresh one.
		e.locks.Delete(sessionID)
	}
	return r, nil
}

func (e *Engine) dispatch(ctx context.Context, id string, s *Session, ev Event) (Render, error) {
	switch s.State {
	case StateStart:
		return e.showMenu(ctx, s)

	case StateBrowsing:
		switch ev.Kind {
		case EventPageNext, EventPageBack:
			if ev.Page >= 0 {
				s.Page = ev.Page
			}
			return e.showMenu(ctx, s)
		case EventSelectProduct:
			return e.showProduct(ctx, s, ev.ProductID)
		case EventViewCart:
			return e.showCart(ctx, id, s, "")
		}

	case StateProductDetail:
		switch ev.Kind {
		case EventAddToCart:
			if err := e.Carts.AddItem(ctx, id, ev.ProductID, ev.Quantity); err != nil {
				return Render{}, err
			}
			s.State = StateBrowsing
			r, err := e.showMenu(ctx, s)
			if err != nil {
				return Render{}, err
			}
			r.Text = msgItemAdded + "\n" + r.Text
			return r, nil
		case EventPageNext, EventPageBack:
			if ev.Page >= 0 {
				s.Page = ev.Page
			}
			s.State = StateBrowsing
			return e.showMenu(ctx, s)
		case EventViewCart:
			return e.showCart(ctx, id, s, "")
		}

	case StateCartView:
		switch ev.Kind {
		case EventRemoveItem:
			notice := ""
			if err := e.Carts.RemoveItem(ctx, id, ev.ItemID); err != nil {
				if !errors.Is(err, commerce.ErrNotFound) {
					return Render{}, err
				}
				notice = msgItemGone
			}
			return e.showCart(ctx, id, s, notice)
		case EventViewCart:
			return e.showCart(ctx, id, s, "")
		case EventPageNext, EventPageBack:
			if ev.Page >= 0 {
				s.Page = ev.Page
			}
			s.State = StateBrowsing
			return e.showMenu(ctx, s)
		case EventPay:
			items, total, err := e.Carts.ReadCart(ctx, id)
			if err != nil {
				return Render{}, err
			}
			if len(items) == 0 {
				// Empty-cart guard: never leaves CART_VIEW.
				return cartView(items, total, ""), nil
			}
			s.TotalMinor = total
			s.State = StateAwaitingLocation
			return noticeView(msgAskAddress), nil
		}

	case StateAwaitingLocation:
		if ev.Kind == EventSubmitAddress {
			return e.routeOrder(ctx, s, ev.Address)
		}

	case StateRoutingDecision:
		switch ev.Kind {
		case EventChoosePickup:
			if s.Decision == nil {
				return noticeView(msgUnexpected), nil
			}
			items, total, err := e.Carts.ReadCart(ctx, id)
			if err != nil {
				return Render{}, err
			}
			s.TotalMinor = total
			s.Items = itemNames(items)
			s.State = StateSelfPickup
			return pickupView(*s.Decision, total), nil
		case EventChooseDelivery:
			if s.Decision == nil {
				return noticeView(msgUnexpected), nil
			}
			if s.Decision.Tier == delivery.TierOutOfRange {
				// Delivery is not offered out of range; re-render the choice.
				return routingView(*s.Decision), nil
			}
			items, total, err := e.Carts.ReadCart(ctx, id)
			if err != nil {
				return Render{}, err
			}
			s.TotalMinor = total
			s.Items = itemNames(items)
			s.State = StateAwaitingCourier
			return courierView(items, total, *s.Decision), nil
		}

	case StateSelfPickup, StateAwaitingCourier:
		if ev.Kind == EventPayOrder {
			total, err := e.Carts.ReadTotals(ctx, id)
			if err != nil {
				return Render{}, err
			}
			s.TotalMinor = total
			s.State = StatePaymentHandoff
			return invoiceView(total), nil
		}

	case StatePaymentHandoff:
		if ev.Kind == EventConfirmPayment {
			if ev.Email != "" {
				s.Email = ev.Email
			}
			if ev.Phone != "" {
				s.Phone = ev.Phone
			}
			s.State = StateEnd
			return noticeView(msgFarewell), nil
		}
	}

	return noticeView(msgUnexpected), nil
}

func (e *Engine) showMenu(ctx context.Context, s *Session) (Render, error) {
	products, err := e.Catalog.ListProducts(ctx)
	if err != nil {
		return Render{}, err
	}
	s.State = StateBrowsing
	s.ProductID = ""
	return menuView(products, s.Page), nil
}

func (e *Engine) showProduct(ctx context.Context, s *Session, productID string) (Render, error) {
	p, err := e.Catalog.Product(ctx, productID)
	if err != nil {
		return Render{}, err
	}
	photo := ""
	if p.ImageID != "" {
		// A missing image must not block the detail card.
		if href, err := e.Catalog.ImageURL(ctx, p.ImageID); err == nil {
			photo = href
		}
	}
	s.State = StateProductDetail
	s.ProductID = p.ID
	return productView(p, photo), nil
}

func (e *Engine) showCart(ctx context.Context, id string, s *Session, notice string) (Render, error) {
	items, total, err := e.Carts.ReadCart(ctx, id)
	if err != nil {
		return Render{}, err
	}
	s.TotalMinor = total
	s.State = StateCartView
	return cartView(items, total, notice), nil
}

func (e *Engine) routeOrder(ctx context.Context, s *Session, address string) (Render, error) {
	// A shared pin arrives as a bare "lon lat" pair and skips the geocoder.
	point, found := geo.ParsePair(address)
	if !found {
		var err error
		point, found, err = e.Geocoder.Resolve(ctx, address)
		if err != nil {
			return Render{}, err
		}
	}
	if !found {
		// Unresolvable address: reprompt, session context unchanged.
		return noticeView(msgAddressNotFound), nil
	}
	locs, err := e.Catalog.Locations(ctx, e.LocationsFlow)
	if err != nil {
		return Render{}, err
	}
	decision, err := delivery.Nearest(point, locs)
	if err != nil {
		return Render{}, err
	}
	s.Decision = &decision
	s.State = StateRoutingDecision
	return routingView(decision), nil
}

// finish handles the explicit end command: the session is destroyed and any
// pending reminder cancelled.
func (e *Engine) finish(ctx context.Context, sessionID string) (Render, error) {
	e.Reminders.Cancel(sessionID)
	if err := e.Sessions.Delete(ctx, sessionID); err != nil {
		return noticeView(msgTransient), fmt.Errorf("session delete: %w", err)
	}
	e.locks.Delete(sessionID)
	return noticeView(msgConversationOver), nil
}

// applyEffects runs the side effects tied to entering a state. They happen
// after the transition is durably persisted and never fail the event.
func (e *Engine) applyEffects(ctx context.Context, sessionID string, from State, s *Session) {
	entered := func(st State) bool { return from != st && s.State == st }

	if entered(StateAwaitingCourier) {
		e.Reminders.Arm(sessionID, e.ReminderDelay)
	}
	if entered(StatePaymentHandoff) || entered(StateEnd) {
		e.Reminders.Cancel(sessionID)
	}

	if e.Publisher != nil && s.Decision != nil {
		if entered(StateAwaitingCourier) || entered(StateSelfPickup) {
			o := PlacedOrder{
				SessionID:  sessionID,
				TotalMinor: s.TotalMinor,
				Tier:       string(s.Decision.Tier),
				Courier:    s.State == StateAwaitingCourier,
				User:       s.Decision.User,
				Items:      s.Items,
			}
			if err := e.Publisher.OrderPlaced(ctx, o); err != nil {
				log.Printf("publish order placed: %v", err)
			}
		}
		if entered(StateEnd) {
			if err := e.Publisher.OrderPaid(ctx, sessionID, s.TotalMinor); err != nil {
				log.Printf("publish order paid: %v", err)
			}
		}
	}

	if entered(StateEnd) {
		if e.Archiver != nil && s.Decision != nil {
			rec := OrderRecord{
				SessionID:  sessionID,
				TotalMinor: s.TotalMinor,
				Tier:       string(s.Decision.Tier),
				DistanceKm: s.Decision.DistanceKm,
				Courier:    from == StateAwaitingCourier || from == StatePaymentHandoff,
			}
			if err := e.Archiver.Record(ctx, rec); err != nil {
				log.Printf("archive order: %v", err)
			}
		}
		e.registerCustomer(ctx, sessionID, s)
	}
}

// registerCustomer creates the customer at the backend when the session
// carries contact details. Best effort only.
func (e *Engine) registerCustomer(ctx context.Context, sessionID string, s *Session) {
	if s.Email == "" && s.Phone == "" {
		return
	}
	reg, ok := e.Catalog.(interface {
		CreateCustomer(ctx context.Context, name, email, password string) error
	})
	if !ok {
		return
	}
	name := s.Phone
	if name == "" {
		name = sessionID
	}
	if err := reg.CreateCustomer(ctx, name, s.Email, sessionID); err != nil {
		log.Printf("register customer: %v", err)
	}
}

func itemNames(items []commerce.CartItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}

func (e *Engine) failureView(err error) Render {
	// Validation failures carry their own corrective text.
	var msg string
	switch {
	case errors.Is(err, commerce.ErrNotFound):
		msg = msgItemGone
	case errors.Is(err, cart.ErrInvalidQuantity):
		msg = "Quantity must be at least 1."
	default:
		msg = msgTransient
	}
	return noticeView(msg)
}
