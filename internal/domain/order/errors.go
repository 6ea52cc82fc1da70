package order

import (
	"errors"
	"fmt"
)

// Error classes. Every concrete error below wraps exactly one of them so the
// HTTP edge can classify with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
)

var (
	ErrInvalidQuantity = fmt.Errorf("%w: quantity must be greater than zero", ErrValidation)
	ErrEmptyOrder      = fmt.Errorf("%w: order must have at least one item", ErrValidation)
	ErrMissingPayment  = fmt.Errorf("%w: payment id is required", ErrValidation)
	ErrInvalidAmount   = fmt.Errorf("%w: amount must be greater than zero", ErrValidation)
	ErrAmountMismatch  = fmt.Errorf("%w: amount does not match order total", ErrValidation)
	ErrForeignOrder    = fmt.Errorf("%w: order belongs to another user", ErrValidation)

	ErrOrderNotFound   = fmt.Errorf("order %w", ErrNotFound)
	ErrItemNotFound    = fmt.Errorf("order item %w", ErrNotFound)
	ErrProductNotFound = fmt.Errorf("product %w", ErrNotFound)
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)

	ErrAlreadyPaid            = fmt.Errorf("%w: order is already paid", ErrInvalidState)
	ErrOrderCompleted         = fmt.Errorf("%w: order is completed", ErrInvalidState)
	ErrOrderNotPaid           = fmt.Errorf("%w: order must be paid before packing", ErrInvalidState)
	ErrOrderNotPending        = fmt.Errorf("%w: order is not pending", ErrInvalidState)
	ErrOrderAlreadyPacked     = fmt.Errorf("%w: order is already packed", ErrInvalidState)
	ErrItemAlreadyPacked      = fmt.Errorf("%w: item is already packed", ErrInvalidState)
	ErrGatewayOrderAlreadySet = fmt.Errorf("%w: gateway order id is already set", ErrInvalidState)
)
