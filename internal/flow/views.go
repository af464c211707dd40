package flow

import (
	"fmt"
	"strings"

	"github.com/pizzadrive/orderbot/internal/commerce"
	"github.com/pizzadrive/orderbot/internal/delivery"
)

const productsPerPage = 5

const (
	msgMenu             = "Please pick a pizza:"
	msgAskAddress       = "Please send the address or a pin so we can route your order."
	msgAddressNotFound  = "Sorry, we could not find that address. Please try again."
	msgCartEmpty        = "Your cart is empty. Add something from the menu first."
	msgItemAdded        = "Added to your cart."
	msgItemGone         = "That item is no longer in your cart."
	msgCourierOnWay     = "Your order is being prepared. The courier is on the way."
	msgFarewell         = "Thank you for your payment! Enjoy your pizza."
	msgConversationOver = "This order is finished. Send /start to begin a new one."
	msgTransient        = "The service is temporarily unavailable. Please try again in a moment."
	msgUnexpected       = "Sorry, I did not expect that here. Use the buttons above or send /start."
)

// DelayNotice is the text the reminder scheduler sends when a courier order
// is taking too long.
const DelayNotice = "Bon appetit! If your order has not arrived yet, the next one is on us."

func money(minor int) string {
	return fmt.Sprintf("%d.%02d RUB", minor/100, minor%100)
}

func menuView(products []commerce.Product, page int) Render {
	if page < 0 {
		page = 0
	}
	start := page * productsPerPage
	if start >= len(products) && page > 0 {
		page = (len(products) - 1) / productsPerPage
		start = page * productsPerPage
	}
	end := start + productsPerPage
	if end > len(products) {
		end = len(products)
	}

	var rows [][]Button
	for _, p := range products[start:end] {
		rows = append(rows, []Button{{Label: p.Name, Data: cbProduct(p.ID)}})
	}

	var nav []Button
	if page > 0 {
		nav = append(nav, Button{Label: "« Back", Data: cbPage(false, page-1)})
	}
	if end < len(products) {
		nav = append(nav, Button{Label: "Next »", Data: cbPage(true, page+1)})
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}
	rows = append(rows, []Button{{Label: "Cart", Data: cbCart}})

	return Render{Kind: RenderText, Text: msgMenu, Buttons: rows}
}

func productView(p commerce.Product, photoURL string) Render {
	text := fmt.Sprintf("%s\n%s\n\n%s", p.Name, money(p.PriceMinor), p.Description)
	r := Render{
		Kind: RenderText,
		Text: text,
		Buttons: [][]Button{
			{
				{Label: "Add 1 to cart", Data: cbAdd(p.ID, 1)},
				{Label: "Add 2 to cart", Data: cbAdd(p.ID, 2)},
			},
			{{Label: "Cart", Data: cbCart}},
			{{Label: "Back", Data: cbBack}},
		},
	}
	if photoURL != "" {
		r.Kind = RenderPhoto
		r.PhotoURL = photoURL
	}
	return r
}

func cartView(items []commerce.CartItem, totalMinor int, notice string) Render {
	var b strings.Builder
	if notice != "" {
		b.WriteString(notice + "\n\n")
	}
	var rows [][]Button
	for _, it := range items {
		fmt.Fprintf(&b, "%s\n%s each\n%d in cart for %s\n\n",
			it.Name, money(it.UnitPriceMinor), it.Quantity, money(it.LineTotalMinor))
		rows = append(rows, []Button{{Label: "Remove " + it.Name, Data: cbRemove(it.ID)}})
	}
	if len(items) == 0 {
		b.WriteString(msgCartEmpty + "\n")
	}
	fmt.Fprintf(&b, "Total: %s", money(totalMinor))

	rows = append(rows, []Button{{Label: "Back to menu", Data: cbBack}})
	if len(items) > 0 {
		rows = append(rows, []Button{{Label: "Checkout", Data: cbPay}})
	}
	return Render{Kind: RenderText, Text: b.String(), Buttons: rows}
}

func routingView(d delivery.Decision) Render {
	var text string
	buttons := [][]Button{{
		{Label: "Self pickup", Data: cbPickup},
		{Label: "Delivery", Data: cbDelivery},
	}}
	switch d.Tier {
	case delivery.TierFree:
		text = fmt.Sprintf(
			"You are only %.2f km from our pizzeria at %s — delivery is free, or drop by and pick it up while it's hot.",
			d.DistanceKm, d.LocationAddress)
	case delivery.TierLowFee:
		text = fmt.Sprintf(
			"The nearest pizzeria is %.2f km away at %s. Delivery costs %s, or you can pick the order up yourself.",
			d.DistanceKm, d.LocationAddress, money(delivery.FeeLowMinor))
	case delivery.TierHighFee:
		text = fmt.Sprintf(
			"The nearest pizzeria is %.2f km away at %s. Delivery that far costs %s, or you can pick the order up yourself.",
			d.DistanceKm, d.LocationAddress, money(delivery.FeeHighMinor))
	default:
		text = fmt.Sprintf(
			"Sorry, you are out of our delivery range: the nearest pizzeria is %.2f km away at %s. Self pickup only.",
			d.DistanceKm, d.LocationAddress)
		buttons = [][]Button{{{Label: "Self pickup", Data: cbPickup}}}
	}
	return Render{Kind: RenderText, Text: text, Buttons: buttons}
}

func pickupView(d delivery.Decision, totalMinor int) Render {
	loc := d.Location
	return Render{
		Kind: RenderText,
		Text: fmt.Sprintf(
			"Great! We will be waiting for you at %s. Your order comes to %s.",
			d.LocationAddress, money(totalMinor)),
		Pin:     &loc,
		Buttons: [][]Button{{{Label: "Pay order", Data: cbPayOrder}}},
	}
}

func courierView(items []commerce.CartItem, totalMinor int, d delivery.Decision) Render {
	names := make([]string, 0, len(items))
	qty := 0
	for _, it := range items {
		names = append(names, it.Name)
		qty += it.Quantity
	}
	user := d.User
	text := fmt.Sprintf("%s\n%d items for %s\n\n%s",
		strings.Join(names, ", "), qty, money(totalMinor), msgCourierOnWay)
	return Render{
		Kind:    RenderText,
		Text:    text,
		Pin:     &user,
		Buttons: [][]Button{{{Label: "Pay order", Data: cbPayOrder}}},
	}
}

func invoiceView(totalMinor int) Render {
	return Render{Kind: RenderInvoice, Text: "Your pizza order", TotalMinor: totalMinor}
}

func noticeView(text string) Render {
	return Render{Kind: RenderText, Text: text}
}
