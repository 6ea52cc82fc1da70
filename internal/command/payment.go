package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/marketplace-orders/internal/domain/order"
	"github.com/example/marketplace-orders/internal/payment"
	"github.com/example/marketplace-orders/internal/payment/attemptlog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrInvalidUser         = fmt.Errorf("%w: invalid userId", order.ErrValidation)
	ErrMissingVerification = fmt.Errorf("%w: missing payment verification fields", order.ErrValidation)
)

const createdStatus = "created"

// CreatePayment opens a gateway order for a local order. Without an order id
// a bare PENDING order is created for the amount. The gateway is called with
// no transaction open and the returned id is attached in a second transaction.
func (h *Handler) CreatePayment(ctx context.Context, cmd CreatePayment) (*PaymentOrder, error) {
	if cmd.UserID <= 0 {
		return nil, ErrInvalidUser
	}
	if cmd.Amount <= 0 {
		return nil, order.ErrInvalidAmount
	}
	if _, err := h.catalog.User(ctx, cmd.UserID); err != nil {
		if errors.Is(err, order.ErrUserNotFound) {
			return nil, ErrInvalidUser
		}
		return nil, err
	}

	local, err := h.payableOrder(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if local.GatewayOrderID != nil {
		return &PaymentOrder{
			ID:           *local.GatewayOrderID,
			Amount:       cmd.Amount,
			Currency:     h.currency,
			Status:       createdStatus,
			LocalOrderID: local.ID,
		}, nil
	}

	receipt := payment.NewReceipt()
	attempt := &attemptlog.Attempt{
		Receipt:      receipt,
		LocalOrderID: local.ID,
		Amount:       cmd.Amount,
		Currency:     h.currency,
		TraceID:      traceID(ctx),
	}

	remote, err := h.gateway.CreateOrder(ctx, cmd.Amount, h.currency, receipt)
	if err != nil {
		attempt.Outcome = failureOutcome(err)
		attempt.Error = err.Error()
		h.recordAttempt(ctx, attempt)
		return nil, err
	}
	attempt.GatewayOrderID = remote.ID

	_, err = h.orders.Update(ctx, local.ID, func(o *order.Order) error {
		return o.AttachGatewayOrder(remote.ID)
	})
	if err != nil {
		attempt.Outcome = attemptlog.OutcomeOrphaned
		attempt.Error = err.Error()
		h.recordAttempt(ctx, attempt)
		slog.WarnContext(ctx, "gateway order could not be attached",
			"component", "Payment",
			"order_id", local.ID,
			"gateway_order_id", remote.ID,
			"error", err,
		)
		if errors.Is(err, order.ErrGatewayOrderAlreadySet) {
			return h.existingPayment(ctx, local.ID, cmd.Amount)
		}
		return nil, err
	}

	attempt.Outcome = attemptlog.OutcomeCreated
	h.recordAttempt(ctx, attempt)
	slog.InfoContext(ctx, "payment order created",
		"component", "Payment",
		"order_id", local.ID,
		"gateway_order_id", remote.ID,
		"amount", cmd.Amount,
	)

	currency := remote.Currency
	if currency == "" {
		currency = h.currency
	}
	status := remote.Status
	if status == "" {
		status = createdStatus
	}
	return &PaymentOrder{
		ID:           remote.ID,
		Amount:       cmd.Amount,
		Currency:     currency,
		Receipt:      receipt,
		Status:       status,
		LocalOrderID: local.ID,
	}, nil
}

// VerifyPayment checks the gateway signature and marks the order PAID. A
// confirmation for an order that is already paid is reported as
// VerifyAlreadyVerified and triggers no notifications.
func (h *Handler) VerifyPayment(ctx context.Context, cmd VerifyPayment) (VerifyResult, error) {
	if cmd.GatewayOrderID == "" || cmd.PaymentID == "" || cmd.Signature == "" {
		h.metrics.Verifications.WithLabelValues("invalid_request").Inc()
		return "", ErrMissingVerification
	}

	if !h.verifier.Verify(cmd.GatewayOrderID, cmd.PaymentID, cmd.Signature) {
		h.metrics.Verifications.WithLabelValues("invalid_signature").Inc()
		slog.WarnContext(ctx, "payment signature mismatch",
			"component", "Payment",
			"gateway_order_id", cmd.GatewayOrderID,
			"payment_id", cmd.PaymentID,
		)
		return "", payment.ErrInvalidSignature
	}

	var events []order.Event
	o, err := h.orders.UpdateByGatewayOrderID(ctx, cmd.GatewayOrderID, func(o *order.Order) error {
		var err error
		events, err = h.pay(ctx, o, cmd.PaymentID)
		return err
	})
	if errors.Is(err, order.ErrAlreadyPaid) {
		h.metrics.Verifications.WithLabelValues("already_verified").Inc()
		slog.InfoContext(ctx, "payment already verified",
			"component", "Payment", "gateway_order_id", cmd.GatewayOrderID)
		return VerifyAlreadyVerified, nil
	}
	if err != nil {
		h.metrics.Verifications.WithLabelValues("error").Inc()
		return "", err
	}

	h.metrics.Verifications.WithLabelValues("success").Inc()
	slog.InfoContext(ctx, "payment verified",
		"component", "Payment",
		"order_id", o.ID,
		"gateway_order_id", cmd.GatewayOrderID,
		"payment_id", cmd.PaymentID,
	)

	h.dispatcher.Dispatch(ctx, events)
	return VerifySuccess, nil
}

// payableOrder loads the referenced order and checks it can be paid for the
// requested amount, or creates a bare order when none is referenced.
func (h *Handler) payableOrder(ctx context.Context, cmd CreatePayment) (*order.Order, error) {
	if cmd.OrderID == nil {
		return h.orders.Create(ctx, &order.Order{
			UserID:      cmd.UserID,
			Status:      order.StatusPending,
			TotalAmount: decimal.NewFromInt(cmd.Amount).Shift(-2),
		})
	}

	o, err := h.orders.Get(ctx, *cmd.OrderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != cmd.UserID {
		return nil, order.ErrForeignOrder
	}
	if o.Status != order.StatusPending {
		return nil, order.ErrOrderNotPending
	}
	if !o.MatchesMinorAmount(cmd.Amount) {
		return nil, order.ErrAmountMismatch
	}
	return o, nil
}

// existingPayment answers with the gateway order a concurrent request attached
func (h *Handler) existingPayment(ctx context.Context, orderID, amount int64) (*PaymentOrder, error) {
	o, err := h.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.GatewayOrderID == nil {
		return nil, order.ErrGatewayOrderAlreadySet
	}
	return &PaymentOrder{
		ID:           *o.GatewayOrderID,
		Amount:       amount,
		Currency:     h.currency,
		Status:       createdStatus,
		LocalOrderID: o.ID,
	}, nil
}

func (h *Handler) recordAttempt(ctx context.Context, a *attemptlog.Attempt) {
	a.CreatedAt = time.Now().UTC()
	if err := h.attempts.Save(ctx, a); err != nil {
		slog.ErrorContext(ctx, "failed to record payment attempt",
			"component", "Payment",
			"receipt", a.Receipt,
			"outcome", a.Outcome,
			"error", err,
		)
	}
}

func failureOutcome(err error) attemptlog.Outcome {
	var gwErr *payment.GatewayError
	switch {
	case errors.Is(err, payment.ErrGatewayTimeout):
		return attemptlog.OutcomeTimeout
	case errors.As(err, &gwErr):
		return attemptlog.OutcomeRejected
	default:
		return attemptlog.OutcomeFailed
	}
}

func traceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
