package email

import (
	"fmt"
	"html"
)

// BuildPackingBody builds the HTML body of the packing notification
func BuildPackingBody(firstName string, orderID int64) string {
	name := firstName
	if name == "" {
		name = "there"
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: linear-gradient(135deg, #43a047 0%%, #1b5e20 100%%); padding: 30px; border-radius: 10px 10px 0 0;">
		<h1 style="color: white; margin: 0; font-size: 24px;">Your order has been packed!</h1>
	</div>

	<div style="background: #fff; padding: 30px; border: 1px solid #eee; border-top: none; border-radius: 0 0 10px 10px;">
		<p style="margin-top: 0;">Hi %s,</p>
		<p>Your order #%d has been packed and is on its way.</p>

		<div style="background: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0;">
			<p style="margin: 0; font-size: 14px; color: #666;">Order number</p>
			<p style="margin: 5px 0 0 0; font-size: 18px; font-weight: bold; font-family: monospace;">#%d</p>
		</div>

		<p style="color: #666; font-size: 14px; margin-bottom: 0;">Thank you for shopping with us.</p>
	</div>

	<div style="text-align: center; padding: 20px; color: #999; font-size: 12px;">
		<p style="margin: 0;">This email was sent automatically. Please do not reply.</p>
	</div>
</body>
</html>`, html.EscapeString(name), orderID, orderID)
}
