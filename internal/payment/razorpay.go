package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/example/marketplace-orders/internal/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const maxResponseBody = 1 << 20

// ClientConfig holds the gateway credentials and endpoint
type ClientConfig struct {
	KeyID     string
	KeySecret string
	BaseURL   string
	Timeout   time.Duration
}

// RemoteOrder is the order object the gateway creates
type RemoteOrder struct {
	ID        string `json:"id"`
	Entity    string `json:"entity"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Receipt   string `json:"receipt"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
}

type createOrderRequest struct {
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Receipt        string `json:"receipt"`
	PaymentCapture int    `json:"payment_capture"`
}

// Client talks to the Razorpay orders API
type Client struct {
	httpClient *http.Client
	baseURL    string
	keyID      string
	keySecret  string
	timeout    time.Duration
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

func NewClient(cfg ClientConfig, m *metrics.Metrics) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		keyID:      cfg.KeyID,
		keySecret:  cfg.KeySecret,
		timeout:    cfg.Timeout,
		metrics:    m,
		tracer:     otel.Tracer("marketplace/payment"),
	}
}

// CreateOrder creates a remote order for amount minor units. A non-2xx answer
// is returned as *GatewayError and a timeout as ErrGatewayTimeout.
func (c *Client) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (_ *RemoteOrder, err error) {
	ctx, span := c.tracer.Start(ctx, "razorpay.CreateOrder", trace.WithAttributes(
		attribute.Int64("payment.amount", amount),
		attribute.String("payment.currency", currency),
		attribute.String("payment.receipt", receipt),
	))
	start := time.Now()
	defer func() {
		outcome := outcomeOf(err)
		c.metrics.GatewayCalls.WithLabelValues(outcome).Inc()
		c.metrics.GatewayLatency.WithLabelValues(outcome).Observe(float64(time.Since(start).Milliseconds()))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
		span.End()
	}()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := json.Marshal(createOrderRequest{
		Amount:         amount,
		Currency:       currency,
		Receipt:        receipt,
		PaymentCapture: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %w", ErrGatewayTimeout, err)
		}
		return nil, fmt.Errorf("c.httpClient.Do: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %w", ErrGatewayTimeout, err)
		}
		return nil, fmt.Errorf("io.ReadAll: %w", err)
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.WarnContext(ctx, "payment gateway rejected order creation",
			"component", "Razorpay",
			"status", resp.StatusCode,
			"receipt", receipt,
		)
		return nil, &GatewayError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var remote RemoteOrder
	if err := json.Unmarshal(raw, &remote); err != nil {
		return nil, fmt.Errorf("json.Unmarshal: %w", err)
	}
	if remote.ID == "" {
		return nil, &GatewayError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	span.SetAttributes(attribute.String("payment.gateway_order_id", remote.ID))
	return &remote, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func outcomeOf(err error) string {
	var gwErr *GatewayError
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrGatewayTimeout):
		return "timeout"
	case errors.As(err, &gwErr):
		return "rejected"
	default:
		return "error"
	}
}
