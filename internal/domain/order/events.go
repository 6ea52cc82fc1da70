package order

type EventKind string

const (
	EventOrderPaid        EventKind = "OrderPaid"
	EventPaymentConfirmed EventKind = "PaymentConfirmed"
	EventOrderPacked      EventKind = "OrderPacked"
	EventItemPacked       EventKind = "ItemPacked"
	EventPackingEmail     EventKind = "PackingEmailRequested"
)

// Event is a side effect produced by a state transition. Transitions only
// return events; they are executed after the transition has been committed.
type Event struct {
	Kind        EventKind
	OrderID     int64
	UserID      int64
	VendorID    int64
	ItemID      int64
	ProductName string
	Lines       []Line
}

// Line summarises an order item for notification texts
type Line struct {
	ProductName string
	Quantity    int
}
