package payment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifier_SignAndVerify(t *testing.T) {
	v := NewVerifier("secret")

	sig := v.Sign("order_1", "pay_1")

	assert.Len(t, sig, 64)
	assert.Equal(t, strings.ToLower(sig), sig)
	assert.True(t, v.Verify("order_1", "pay_1", sig))
}

func TestVerifier_Rejects(t *testing.T) {
	v := NewVerifier("secret")
	valid := v.Sign("order_1", "pay_1")

	tampered := []byte(valid)
	if tampered[0] == 'a' {
		tampered[0] = 'b'
	} else {
		tampered[0] = 'a'
	}

	tests := []struct {
		name      string
		orderID   string
		paymentID string
		signature string
	}{
		{name: "tampered signature", orderID: "order_1", paymentID: "pay_1", signature: string(tampered)},
		{name: "other payment", orderID: "order_1", paymentID: "pay_2", signature: valid},
		{name: "other order", orderID: "order_2", paymentID: "pay_1", signature: valid},
		{name: "not hex", orderID: "order_1", paymentID: "pay_1", signature: "zz" + valid[2:]},
		{name: "truncated", orderID: "order_1", paymentID: "pay_1", signature: valid[:32]},
		{name: "empty", orderID: "order_1", paymentID: "pay_1", signature: ""},
		{name: "uppercase hex", orderID: "order_1", paymentID: "pay_1", signature: strings.ToUpper(valid)},
		{name: "surrounding whitespace", orderID: "order_1", paymentID: "pay_1", signature: " " + valid + " "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, v.Verify(tt.orderID, tt.paymentID, tt.signature))
		})
	}
}

func TestVerifier_DifferentSecret(t *testing.T) {
	sig := NewVerifier("secret").Sign("order_1", "pay_1")

	assert.False(t, NewVerifier("other").Verify("order_1", "pay_1", sig))
}

func TestNewReceipt(t *testing.T) {
	a := NewReceipt()
	b := NewReceipt()

	assert.True(t, strings.HasPrefix(a, "rcpt_"))
	assert.Len(t, a, len("rcpt_")+32)
	assert.LessOrEqual(t, len(a), 40)
	assert.NotEqual(t, a, b)
}
