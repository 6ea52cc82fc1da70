package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(status Status) *Order {
	return &Order{
		ID:     42,
		UserID: 7,
		Status: status,
		Items: []Item{
			{ID: 1, ProductID: 100, ProductName: "Tomatoes", VendorID: 10, Quantity: 2, UnitPrice: decimal.NewFromInt(50)},
			{ID: 2, ProductID: 101, ProductName: "Onions", VendorID: 11, Quantity: 1, UnitPrice: decimal.NewFromInt(30)},
			{ID: 3, ProductID: 102, ProductName: "Garlic", VendorID: 10, Quantity: 3, UnitPrice: decimal.RequireFromString("12.50")},
		},
	}
}

func paidTestOrder() *Order {
	o := newTestOrder(StatusPaid)
	paymentID := "pay_1"
	o.PaymentID = &paymentID
	return o
}

// ============================================
// Pay Tests
// ============================================

func TestOrder_Pay_FromPending_Success(t *testing.T) {
	o := newTestOrder(StatusPending)

	events, err := o.Pay("pay_123")

	require.NoError(t, err)
	assert.Equal(t, StatusPaid, o.Status)
	require.NotNil(t, o.PaymentID)
	assert.Equal(t, "pay_123", *o.PaymentID)

	// one per distinct vendor, then the buyer
	require.Len(t, events, 3)
	assert.Equal(t, EventOrderPaid, events[0].Kind)
	assert.Equal(t, int64(10), events[0].VendorID)
	assert.Equal(t, EventOrderPaid, events[1].Kind)
	assert.Equal(t, int64(11), events[1].VendorID)
	assert.Equal(t, EventPaymentConfirmed, events[2].Kind)
	assert.Equal(t, int64(7), events[2].UserID)
	assert.Len(t, events[0].Lines, 3)
}

func TestOrder_Pay_AlreadyPaid(t *testing.T) {
	o := paidTestOrder()

	events, err := o.Pay("pay_other")

	assert.ErrorIs(t, err, ErrAlreadyPaid)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Nil(t, events)
	assert.Equal(t, "pay_1", *o.PaymentID)
}

func TestOrder_Pay_Completed(t *testing.T) {
	o := newTestOrder(StatusCompleted)

	_, err := o.Pay("pay_123")

	assert.ErrorIs(t, err, ErrOrderCompleted)
	assert.Equal(t, StatusCompleted, o.Status)
	assert.Nil(t, o.PaymentID)
}

func TestOrder_Pay_MissingPaymentID(t *testing.T) {
	o := newTestOrder(StatusPending)

	_, err := o.Pay("")

	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, StatusPending, o.Status)
}

func TestOrder_Pay_NoDerivedVendors(t *testing.T) {
	o := &Order{ID: 1, UserID: 2, Status: StatusPending}

	events, err := o.Pay("pay_1")

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, EventPaymentConfirmed, events[0].Kind)
}

// ============================================
// Complete (checkout) Tests
// ============================================

func TestOrder_Complete(t *testing.T) {
	tests := []struct {
		name    string
		status  Status
		wantErr error
	}{
		{name: "pending", status: StatusPending},
		{name: "paid", status: StatusPaid},
		{name: "completed", status: StatusCompleted, wantErr: ErrOrderCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newTestOrder(tt.status)

			err := o.Complete()

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.status, o.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StatusCompleted, o.Status)
		})
	}
}

// ============================================
// Pack Tests
// ============================================

func TestOrder_Pack_Success(t *testing.T) {
	o := paidTestOrder()

	events, err := o.Pack()

	require.NoError(t, err)
	assert.True(t, o.Packed)
	require.Len(t, events, 2)
	assert.Equal(t, EventPackingEmail, events[0].Kind)
	assert.Equal(t, EventOrderPacked, events[1].Kind)
	assert.Equal(t, int64(7), events[1].UserID)
}

func TestOrder_Pack_CompletedAfterPayment(t *testing.T) {
	o := paidTestOrder()
	require.NoError(t, o.Complete())

	_, err := o.Pack()

	require.NoError(t, err)
	assert.True(t, o.Packed)
}

func TestOrder_Pack_NotPaid(t *testing.T) {
	for _, status := range []Status{StatusPending, StatusCompleted} {
		o := newTestOrder(status)

		_, err := o.Pack()

		assert.ErrorIs(t, err, ErrOrderNotPaid, status)
		assert.False(t, o.Packed)
	}
}

func TestOrder_Pack_Twice(t *testing.T) {
	o := paidTestOrder()
	_, err := o.Pack()
	require.NoError(t, err)

	events, err := o.Pack()

	assert.ErrorIs(t, err, ErrOrderAlreadyPacked)
	assert.Nil(t, events)
}

func TestOrder_PackItem_Success(t *testing.T) {
	o := paidTestOrder()

	events, err := o.PackItem(2)

	require.NoError(t, err)
	assert.True(t, o.Items[1].Packed)
	assert.False(t, o.Items[0].Packed)
	require.Len(t, events, 1)
	assert.Equal(t, EventItemPacked, events[0].Kind)
	assert.Equal(t, int64(11), events[0].VendorID)
	assert.Equal(t, "Onions", events[0].ProductName)
}

func TestOrder_PackItem_Twice(t *testing.T) {
	o := paidTestOrder()
	_, err := o.PackItem(1)
	require.NoError(t, err)

	events, err := o.PackItem(1)

	assert.ErrorIs(t, err, ErrItemAlreadyPacked)
	assert.Nil(t, events)
	assert.True(t, o.Items[0].Packed)
	assert.False(t, o.Items[1].Packed)
	assert.False(t, o.Packed)
}

func TestOrder_PackItem_ForeignItem(t *testing.T) {
	o := paidTestOrder()

	_, err := o.PackItem(999)

	assert.ErrorIs(t, err, ErrItemNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOrder_PackItem_NotPaid(t *testing.T) {
	o := newTestOrder(StatusPending)

	_, err := o.PackItem(1)

	assert.ErrorIs(t, err, ErrOrderNotPaid)
	assert.False(t, o.Items[0].Packed)
}

// ============================================
// Gateway Order Tests
// ============================================

func TestOrder_AttachGatewayOrder(t *testing.T) {
	o := newTestOrder(StatusPending)

	require.NoError(t, o.AttachGatewayOrder("order_abc"))
	assert.Equal(t, "order_abc", *o.GatewayOrderID)

	err := o.AttachGatewayOrder("order_def")
	assert.ErrorIs(t, err, ErrGatewayOrderAlreadySet)
	assert.Equal(t, "order_abc", *o.GatewayOrderID)
}

func TestOrder_AttachGatewayOrder_NotPending(t *testing.T) {
	o := newTestOrder(StatusCompleted)

	err := o.AttachGatewayOrder("order_abc")

	assert.ErrorIs(t, err, ErrOrderNotPending)
	assert.Nil(t, o.GatewayOrderID)
}

// ============================================
// Derived Values Tests
// ============================================

func TestOrder_VendorIDs_Distinct(t *testing.T) {
	o := newTestOrder(StatusPending)
	o.Items = append(o.Items, Item{ID: 4, ProductID: 103}) // vendor unknown

	assert.Equal(t, []int64{10, 11}, o.VendorIDs())
}

func TestOrder_ComputeTotal(t *testing.T) {
	o := newTestOrder(StatusPending)

	// 2*50 + 1*30 + 3*12.50
	assert.True(t, decimal.RequireFromString("167.50").Equal(o.ComputeTotal()))
}

func TestOrder_MatchesMinorAmount(t *testing.T) {
	o := &Order{TotalAmount: decimal.NewFromInt(130)}

	assert.True(t, o.MatchesMinorAmount(13000))
	assert.False(t, o.MatchesMinorAmount(130))
	assert.False(t, o.MatchesMinorAmount(13001))
}

// ============================================
// State Transition Matrix Tests
// ============================================

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from   Status
		to     Status
		expect bool
	}{
		{StatusPending, StatusPaid, true},
		{StatusPending, StatusCompleted, true},
		{StatusPaid, StatusCompleted, true},
		{StatusPaid, StatusPending, false},
		{StatusPaid, StatusPaid, false},
		{StatusCompleted, StatusPaid, false},
		{StatusCompleted, StatusPending, false},
		{StatusCompleted, StatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			o := &Order{Status: tt.from}
			assert.Equal(t, tt.expect, o.CanTransitionTo(tt.to))
		})
	}
}
