package command

import "github.com/example/marketplace-orders/internal/domain/order"

// Order Commands
type PlaceOrder struct {
	UserID int64               `json:"userId"`
	Lines  []order.LineRequest `json:"items"`
}

type MarkPaid struct {
	OrderID   int64  `json:"orderId"`
	PaymentID string `json:"paymentId"`
}

type PackItem struct {
	OrderID int64 `json:"orderId"`
	ItemID  int64 `json:"itemId"`
}

// Payment Commands
type CreatePayment struct {
	UserID int64 `json:"userId"`
	// Amount is in minor currency units
	Amount int64 `json:"amount"`
	// OrderID optionally names the placed order the payment is for
	OrderID *int64 `json:"orderId,omitempty"`
}

type VerifyPayment struct {
	GatewayOrderID string `json:"razorpay_order_id"`
	PaymentID      string `json:"razorpay_payment_id"`
	Signature      string `json:"razorpay_signature"`
}

// PaymentOrder is returned to the client to open the gateway checkout
type PaymentOrder struct {
	ID           string `json:"id"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Receipt      string `json:"receipt,omitempty"`
	Status       string `json:"status"`
	LocalOrderID int64  `json:"localOrderId"`
}

type VerifyResult string

const (
	VerifySuccess         VerifyResult = "success"
	VerifyAlreadyVerified VerifyResult = "already_verified"
)
