package flow

// EventKind tags an inbound chat event. The transport maps raw updates
// (commands, button presses, free text) onto this union.
type EventKind string

const (
	EventStart          EventKind = "start"           // /start command
	EventPageNext       EventKind = "page_next"       // menu paging forward
	EventPageBack       EventKind = "page_back"       // menu paging backward
	EventSelectProduct  EventKind = "select_product"  // catalog item pressed
	EventAddToCart      EventKind = "add_to_cart"     // add button on product detail
	EventViewCart       EventKind = "view_cart"       // cart button
	EventRemoveItem     EventKind = "remove_item"     // per-line remove button
	EventPay            EventKind = "pay"             // pay button in the cart view
	EventSubmitAddress  EventKind = "submit_address"  // free-text address
	EventChoosePickup   EventKind = "choose_pickup"   // routing choice: self pickup
	EventChooseDelivery EventKind = "choose_delivery" // routing choice: courier
	EventPayOrder       EventKind = "pay_order"       // pay button after routing
	EventConfirmPayment EventKind = "confirm_payment" // provider confirmation
	EventEnd            EventKind = "end"             // /end command
)

// Event is one inbound chat event. Only the fields relevant to its kind are
// set.
type Event struct {
	Kind      EventKind
	ProductID string // SelectProduct, AddToCart
	ItemID    string // RemoveItem
	Quantity  int    // AddToCart
	Address   string // SubmitAddress
	Page      int    // PageNext, PageBack
	Email     string // ConfirmPayment, from the payment order info
	Phone     string // ConfirmPayment
}
