package payment

import (
	"errors"
	"fmt"
)

var (
	// ErrGatewayTimeout means the gateway did not answer within the configured
	// timeout. No local state has changed and the call can be retried.
	ErrGatewayTimeout   = errors.New("payment gateway timed out")
	ErrInvalidSignature = errors.New("invalid payment signature")
)

// GatewayError is a non-2xx answer from the payment gateway
type GatewayError struct {
	StatusCode int
	Body       string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway returned %d: %s", e.StatusCode, e.Body)
}
