package flow

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pizzadrive/orderbot/internal/geo"
)

// RenderKind selects the transport primitive for a render instruction.
type RenderKind string

const (
	RenderText    RenderKind = "text"
	RenderPhoto   RenderKind = "photo"
	RenderInvoice RenderKind = "invoice"
)

type Button struct {
	Label string
	Data  string // callback payload, round-tripped through ParseCallback
}

// Render is the instruction handed to the transport after a transition.
// Pin, when set, is sent as a location message alongside the text.
type Render struct {
	Kind       RenderKind
	Text       string
	PhotoURL   string
	Buttons    [][]Button
	Pin        *geo.Point
	TotalMinor int // invoice amount
}

// Callback payload vocabulary. The transport round-trips these strings
// through inline keyboards; ParseCallback maps them back onto events.
const (
	cbCart     = "cart"
	cbBack     = "back"
	cbPay      = "pay"
	cbPickup   = "pickup"
	cbDelivery = "delivery"
	cbPayOrder = "payorder"
)

func cbPage(next bool, page int) string {
	if next {
		return fmt.Sprintf("pagenext#%d", page)
	}
	return fmt.Sprintf("pageback#%d", page)
}

func cbProduct(id string) string { return "prod#" + id }

func cbAdd(id string, qty int) string { return fmt.Sprintf("add#%s#%d", id, qty) }

func cbRemove(itemID string) string { return "rm#" + itemID }

// ParseCallback maps a button payload back onto an event. The second result
// is false for payloads this flow never produced.
func ParseCallback(data string) (Event, bool) {
	switch data {
	case cbCart:
		return Event{Kind: EventViewCart}, true
	case cbBack:
		// Return to the menu at the page stored in the session.
		return Event{Kind: EventPageBack, Page: -1}, true
	case cbPay:
		return Event{Kind: EventPay}, true
	case cbPickup:
		return Event{Kind: EventChoosePickup}, true
	case cbDelivery:
		return Event{Kind: EventChooseDelivery}, true
	case cbPayOrder:
		return Event{Kind: EventPayOrder}, true
	}

	parts := strings.Split(data, "#")
	switch parts[0] {
	case "pagenext", "pageback":
		if len(parts) != 2 {
			return Event{}, false
		}
		page, err := strconv.Atoi(parts[1])
		if err != nil {
			return Event{}, false
		}
		kind := EventPageNext
		if parts[0] == "pageback" {
			kind = EventPageBack
		}
		return Event{Kind: kind, Page: page}, true
	case "prod":
		if len(parts) != 2 || parts[1] == "" {
			return Event{}, false
		}
		return Event{Kind: EventSelectProduct, ProductID: parts[1]}, true
	case "add":
		if len(parts) != 3 {
			return Event{}, false
		}
		qty, err := strconv.Atoi(parts[2])
		if err != nil {
			return Event{}, false
		}
		return Event{Kind: EventAddToCart, ProductID: parts[1], Quantity: qty}, true
	case "rm":
		if len(parts) != 2 || parts[1] == "" {
			return Event{}, false
		}
		return Event{Kind: EventRemoveItem, ItemID: parts[1]}, true
	}
	return Event{}, false
}
