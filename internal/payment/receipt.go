package payment

import (
	"strings"

	"github.com/google/uuid"
)

const (
	receiptPrefix   = "rcpt_"
	receiptTokenLen = 32
)

// NewReceipt returns a receipt id unique per gateway attempt. The gateway caps
// receipts at 40 characters.
func NewReceipt() string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	return receiptPrefix + token[:receiptTokenLen]
}
