package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Verifier authenticates payment confirmations sent back by the gateway.
// The signature is the lowercase hex HMAC-SHA256 of "orderId|paymentId"
// keyed with the gateway key secret.
type Verifier struct {
	secret []byte
}

func NewVerifier(keySecret string) *Verifier {
	return &Verifier{secret: []byte(keySecret)}
}

// Sign returns the signature the gateway produces for the pair
func (v *Verifier) Sign(gatewayOrderID, paymentID string) string {
	return hex.EncodeToString(v.mac(gatewayOrderID, paymentID))
}

// Verify reports whether signature is authentic. Only the exact lowercase
// hex form is accepted and the comparison runs in constant time.
func (v *Verifier) Verify(gatewayOrderID, paymentID, signature string) bool {
	return hmac.Equal([]byte(signature), []byte(v.Sign(gatewayOrderID, paymentID)))
}

func (v *Verifier) mac(gatewayOrderID, paymentID string) []byte {
	h := hmac.New(sha256.New, v.secret)
	h.Write([]byte(gatewayOrderID + "|" + paymentID))
	return h.Sum(nil)
}
