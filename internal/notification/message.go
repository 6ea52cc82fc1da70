package notification

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/marketplace-orders/internal/domain/order"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Message is the payload delivered on a topic
type Message struct {
	ID      string    `json:"id"`
	Topic   string    `json:"topic"`
	OrderID int64     `json:"orderId"`
	Message string    `json:"message"`
	SentAt  time.Time `json:"sentAt"`
}

func newMessage(topic string, orderID int64, text string) Message {
	return Message{
		ID:      uuid.NewString(),
		Topic:   topic,
		OrderID: orderID,
		Message: text,
		SentAt:  time.Now().UTC(),
	}
}

func orderPaidText(orderID int64, buyerFirstName string, lines []order.Line) string {
	summary := strings.Join(lo.Map(lines, func(l order.Line, _ int) string {
		return fmt.Sprintf("%s x%d", l.ProductName, l.Quantity)
	}), ", ")
	return fmt.Sprintf("💰 New order #%d paid by %s for: %s", orderID, buyerFirstName, summary)
}

func paymentConfirmedText(orderID int64) string {
	return fmt.Sprintf("🎉 Your payment for order #%d was successful!", orderID)
}

func orderPackedText(orderID int64) string {
	return fmt.Sprintf("🎉 Your order #%d has been packed!", orderID)
}

func itemPackedText(productName string) string {
	return "📦 Item packed: " + productName
}
