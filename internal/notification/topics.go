package notification

import (
	"fmt"
	"strings"
)

// Subscribers key off these exact topic strings.
const topicPrefix = "/topic/"

func OrderPaidTopic(vendorID int64) string {
	return fmt.Sprintf("%sorder-paid/%d", topicPrefix, vendorID)
}

func OrderConfirmedTopic(userID int64) string {
	return fmt.Sprintf("%sorder-confirmed/%d", topicPrefix, userID)
}

// OrderPackedTopic is shared by buyers (whole order packed) and vendors
// (one of their items packed).
func OrderPackedTopic(id int64) string {
	return fmt.Sprintf("%sorder-packed/%d", topicPrefix, id)
}

// IsTopic reports whether s is a subscriber topic
func IsTopic(s string) bool {
	return strings.HasPrefix(s, topicPrefix) && len(s) > len(topicPrefix)
}
