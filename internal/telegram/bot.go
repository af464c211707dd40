// Package telegram adapts the order flow to the Telegram Bot API: inbound
// updates become flow events, render instructions become messages,
// keyboards, pins and invoices.
package telegram

import (
	"context"
	"log"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/pizzadrive/orderbot/internal/flow"
	"github.com/pizzadrive/orderbot/internal/geo"
)

const invoicePayload = "pizza-order"

type Bot struct {
	API          *tgbotapi.BotAPI
	Engine       *flow.Engine
	PaymentToken string
}

func New(token string, engine *flow.Engine, paymentToken string) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Bot{API: api, Engine: engine, PaymentToken: paymentToken}, nil
}

// Run polls for updates until ctx is cancelled. Updates are handled
// concurrently; the engine serializes per session.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.API.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.API.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	// Payment pre-checkout is answered directly; it carries no session
	// transition.
	if update.PreCheckoutQuery != nil {
		b.answerPreCheckout(update.PreCheckoutQuery)
		return
	}

	chatID, ev, ok := b.toEvent(update)
	if !ok {
		return
	}
	sessionID := strconv.FormatInt(chatID, 10)

	render, err := b.Engine.Handle(ctx, sessionID, ev)
	if err != nil {
		log.Printf("handle %s for %s: %v", ev.Kind, sessionID, err)
	}
	if update.CallbackQuery != nil {
		callback := tgbotapi.NewCallback(update.CallbackQuery.ID, "")
		if _, err := b.API.Request(callback); err != nil {
			log.Printf("answer callback: %v", err)
		}
	}
	b.send(chatID, render)
}

func (b *Bot) toEvent(update tgbotapi.Update) (int64, flow.Event, bool) {
	switch {
	case update.CallbackQuery != nil:
		cq := update.CallbackQuery
		if cq.Message == nil {
			return 0, flow.Event{}, false
		}
		ev, ok := flow.ParseCallback(cq.Data)
		if !ok {
			log.Printf("unknown callback payload %q", cq.Data)
			return 0, flow.Event{}, false
		}
		return cq.Message.Chat.ID, ev, true

	case update.Message != nil:
		m := update.Message
		switch {
		case m.SuccessfulPayment != nil:
			ev := flow.Event{Kind: flow.EventConfirmPayment}
			if info := m.SuccessfulPayment.OrderInfo; info != nil {
				ev.Email = info.Email
				ev.Phone = info.PhoneNumber
			}
			return m.Chat.ID, ev, true
		case m.IsCommand() && m.Command() == "start":
			return m.Chat.ID, flow.Event{Kind: flow.EventStart}, true
		case m.IsCommand() && m.Command() == "end":
			return m.Chat.ID, flow.Event{Kind: flow.EventEnd}, true
		case m.Location != nil:
			// A shared pin arrives as "lon lat" text for the geocoder-free path.
			coords := strconv.FormatFloat(m.Location.Longitude, 'f', -1, 64) +
				" " + strconv.FormatFloat(m.Location.Latitude, 'f', -1, 64)
			return m.Chat.ID, flow.Event{Kind: flow.EventSubmitAddress, Address: coords}, true
		case m.Text != "":
			return m.Chat.ID, flow.Event{Kind: flow.EventSubmitAddress, Address: m.Text}, true
		}
	}
	return 0, flow.Event{}, false
}

func (b *Bot) send(chatID int64, r flow.Render) {
	if r.Pin != nil {
		loc := tgbotapi.NewLocation(chatID, r.Pin.Lat, r.Pin.Lon)
		if _, err := b.API.Send(loc); err != nil {
			log.Printf("send location: %v", err)
		}
	}

	switch r.Kind {
	case flow.RenderPhoto:
		msg := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(r.PhotoURL))
		msg.Caption = r.Text
		if kb, ok := keyboard(r); ok {
			msg.ReplyMarkup = kb
		}
		if _, err := b.API.Send(msg); err != nil {
			log.Printf("send photo: %v", err)
		}

	case flow.RenderInvoice:
		inv := tgbotapi.NewInvoice(chatID, "Pizza order", r.Text, invoicePayload,
			b.PaymentToken, "", "RUB",
			[]tgbotapi.LabeledPrice{{Label: "Order total", Amount: r.TotalMinor}})
		inv.NeedEmail = true
		inv.NeedPhoneNumber = true
		if _, err := b.API.Send(inv); err != nil {
			log.Printf("send invoice: %v", err)
		}

	default:
		if r.Text == "" {
			return
		}
		msg := tgbotapi.NewMessage(chatID, r.Text)
		if kb, ok := keyboard(r); ok {
			msg.ReplyMarkup = kb
		}
		if _, err := b.API.Send(msg); err != nil {
			log.Printf("send message: %v", err)
		}
	}
}

func keyboard(r flow.Render) (tgbotapi.InlineKeyboardMarkup, bool) {
	if len(r.Buttons) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(r.Buttons))
	for _, row := range r.Buttons {
		btns := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			btns = append(btns, tgbotapi.NewInlineKeyboardButtonData(btn.Label, btn.Data))
		}
		rows = append(rows, btns)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...), true
}

func (b *Bot) answerPreCheckout(q *tgbotapi.PreCheckoutQuery) {
	cfg := tgbotapi.PreCheckoutConfig{
		PreCheckoutQueryID: q.ID,
		OK:                 q.InvoicePayload == invoicePayload,
	}
	if !cfg.OK {
		cfg.ErrorMessage = "Something went wrong with this invoice."
	}
	if _, err := b.API.Request(cfg); err != nil {
		log.Printf("answer pre-checkout: %v", err)
	}
}

// NotifyDelay lets the bot serve as the reminder scheduler's notifier.
func (b *Bot) NotifyDelay(sessionID string) {
	chatID, err := strconv.ParseInt(sessionID, 10, 64)
	if err != nil {
		log.Printf("delay notice: bad session id %q", sessionID)
		return
	}
	if _, err := b.API.Send(tgbotapi.NewMessage(chatID, flow.DelayNotice)); err != nil {
		log.Printf("delay notice: %v", err)
	}
}

// DispatcherNotifier notifies the courier desk chat; it satisfies
// dispatch.Notifier.
type DispatcherNotifier struct {
	API    *tgbotapi.BotAPI
	ChatID int64
}

func (n *DispatcherNotifier) NotifyDispatcher(ctx context.Context, text string, pin *geo.Point) error {
	if pin != nil {
		if _, err := n.API.Send(tgbotapi.NewLocation(n.ChatID, pin.Lat, pin.Lon)); err != nil {
			return err
		}
	}
	_, err := n.API.Send(tgbotapi.NewMessage(n.ChatID, text))
	return err
}
