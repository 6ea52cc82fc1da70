package order

import (
	"fmt"
	"slices"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusCompleted Status = "COMPLETED"
	// StatusCancelled is never persisted: cancelling an order deletes it.
	StatusCancelled Status = "CANCELLED"
)

// validTransitions defines allowed status changes. Checkout (COMPLETED) does
// not require payment.
var validTransitions = map[Status][]Status{
	StatusPending:   {StatusPaid, StatusCompleted},
	StatusPaid:      {StatusCompleted},
	StatusCompleted: {}, // terminal state
}

// Item is a line of an order. UnitPrice is captured when the order is built
// and never re-read from the catalog. ProductName and VendorID are derived
// from the catalog on every load and are not stored.
type Item struct {
	ID          int64           `json:"id"`
	OrderID     int64           `json:"orderId"`
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName,omitempty"`
	VendorID    int64           `json:"vendorId,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"price"`
	Packed      bool            `json:"packed"`
}

// LineTotal returns unit price times quantity
func (i Item) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is the aggregate root. Its items are owned by it and only reachable
// through it.
type Order struct {
	ID             int64           `json:"id"`
	UserID         int64           `json:"userId"`
	Status         Status          `json:"status"`
	Packed         bool            `json:"packed"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	GatewayOrderID *string         `json:"razorpayOrderId"`
	PaymentID      *string         `json:"paymentId"`
	Items          []Item          `json:"orderItems"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// CanTransitionTo checks if the order can transition to the target status
func (o *Order) CanTransitionTo(target Status) bool {
	return slices.Contains(validTransitions[o.Status], target)
}

// transitionError returns an appropriate error for an invalid transition
func (o *Order) transitionError(target Status) error {
	switch {
	case o.Status == StatusCompleted:
		return ErrOrderCompleted
	case o.Status == StatusPaid && target == StatusPaid:
		return ErrAlreadyPaid
	default:
		return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidState, o.Status, target)
	}
}

// IsPaid reports whether a payment has been recorded for the order.
func (o *Order) IsPaid() bool {
	return o.Status == StatusPaid || (o.Status == StatusCompleted && o.PaymentID != nil)
}

// VendorIDs returns the distinct vendors across the order's items, ascending.
// Items whose vendor could not be derived are skipped.
func (o *Order) VendorIDs() []int64 {
	ids := lo.Uniq(lo.FilterMap(o.Items, func(it Item, _ int) (int64, bool) {
		return it.VendorID, it.VendorID != 0
	}))
	slices.Sort(ids)
	return ids
}

// ComputeTotal sums the line totals of all items
func (o *Order) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// MatchesMinorAmount reports whether amount, given in minor currency units
// (paise, cents), equals the order total.
func (o *Order) MatchesMinorAmount(amount int64) bool {
	return decimal.NewFromInt(amount).Shift(-2).Equal(o.TotalAmount)
}

// AttachGatewayOrder records the remote payment-gateway order id. It can be
// set once, while the order is still pending.
func (o *Order) AttachGatewayOrder(gatewayOrderID string) error {
	if o.GatewayOrderID != nil {
		return ErrGatewayOrderAlreadySet
	}
	if o.Status != StatusPending {
		return ErrOrderNotPending
	}
	o.GatewayOrderID = &gatewayOrderID
	return nil
}

// Pay moves a pending order to PAID and returns the notifications to send:
// one per distinct vendor and one for the buyer. Paying an already paid order
// returns ErrAlreadyPaid and leaves it untouched.
func (o *Order) Pay(paymentID string) ([]Event, error) {
	if paymentID == "" {
		return nil, ErrMissingPayment
	}
	if !o.CanTransitionTo(StatusPaid) {
		return nil, o.transitionError(StatusPaid)
	}

	o.Status = StatusPaid
	o.PaymentID = &paymentID

	lines := o.lines()
	var events []Event
	for _, vendorID := range o.VendorIDs() {
		events = append(events, Event{
			Kind:     EventOrderPaid,
			OrderID:  o.ID,
			UserID:   o.UserID,
			VendorID: vendorID,
			Lines:    lines,
		})
	}
	events = append(events, Event{
		Kind:    EventPaymentConfirmed,
		OrderID: o.ID,
		UserID:  o.UserID,
	})
	return events, nil
}

// Complete marks the order as checked out. It is independent of payment.
func (o *Order) Complete() error {
	if !o.CanTransitionTo(StatusCompleted) {
		return o.transitionError(StatusCompleted)
	}
	o.Status = StatusCompleted
	return nil
}

// Pack sets the order-level packed flag and requests the packing email and
// the buyer notification.
func (o *Order) Pack() ([]Event, error) {
	if !o.IsPaid() {
		return nil, ErrOrderNotPaid
	}
	if o.Packed {
		return nil, ErrOrderAlreadyPacked
	}
	o.Packed = true

	return []Event{
		{Kind: EventPackingEmail, OrderID: o.ID, UserID: o.UserID},
		{Kind: EventOrderPacked, OrderID: o.ID, UserID: o.UserID},
	}, nil
}

// PackItem sets the packed flag of one item and notifies the item's vendor.
func (o *Order) PackItem(itemID int64) ([]Event, error) {
	idx := slices.IndexFunc(o.Items, func(it Item) bool { return it.ID == itemID })
	if idx < 0 {
		return nil, ErrItemNotFound
	}
	if !o.IsPaid() {
		return nil, ErrOrderNotPaid
	}
	item := &o.Items[idx]
	if item.Packed {
		return nil, ErrItemAlreadyPacked
	}
	item.Packed = true

	return []Event{{
		Kind:        EventItemPacked,
		OrderID:     o.ID,
		UserID:      o.UserID,
		VendorID:    item.VendorID,
		ItemID:      item.ID,
		ProductName: item.ProductName,
	}}, nil
}

func (o *Order) lines() []Line {
	return lo.Map(o.Items, func(it Item, _ int) Line {
		return Line{ProductName: it.ProductName, Quantity: it.Quantity}
	})
}
