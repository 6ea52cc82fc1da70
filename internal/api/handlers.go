package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/example/marketplace-orders/internal/command"
	"github.com/example/marketplace-orders/internal/domain/order"
	"github.com/example/marketplace-orders/internal/payment"
	"github.com/example/marketplace-orders/internal/query"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	cmdHandler   *command.Handler
	queryHandler *query.Handler
	health       Pinger
}

func NewHandlers(cmdHandler *command.Handler, queryHandler *query.Handler, health Pinger) *Handlers {
	return &Handlers{
		cmdHandler:   cmdHandler,
		queryHandler: queryHandler,
		health:       health,
	}
}

// Order Handlers

func (h *Handlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	var lines []order.LineRequest
	if !decodeBody(w, r, &lines) {
		return
	}

	o, err := h.cmdHandler.PlaceOrder(r.Context(), command.PlaceOrder{UserID: userID, Lines: lines})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, query.NewOrderView(o, nil))
}

func (h *Handlers) GetOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.queryHandler.ListOrders(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	o, err := h.queryHandler.GetOrder(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *Handlers) GetUserOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	orders, err := h.queryHandler.ListOrdersByUser(r.Context(), userID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handlers) GetVendorPaidOrders(w http.ResponseWriter, r *http.Request) {
	vendorID, ok := pathID(w, r, "vendorId")
	if !ok {
		return
	}

	orders, err := h.queryHandler.ListPaidByVendor(r.Context(), vendorID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

// Checkout answers 400 for any rejected checkout and 500 only for
// unexpected failures.
func (h *Handlers) Checkout(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	err := h.cmdHandler.Checkout(r.Context(), id)
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, map[string]string{"message": "Checkout successful"})
	case errors.Is(err, order.ErrValidation), errors.Is(err, order.ErrNotFound), errors.Is(err, order.ErrInvalidState):
		respondError(w, http.StatusBadRequest, "checkout_failed", "Checkout failed: "+err.Error())
	default:
		respondDomainError(w, r, err)
	}
}

func (h *Handlers) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	cmd := command.MarkPaid{OrderID: id, PaymentID: r.URL.Query().Get("paymentId")}
	if err := h.cmdHandler.MarkPaid(r.Context(), cmd); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Order marked as PAID"})
}

func (h *Handlers) PackOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.cmdHandler.PackOrder(r.Context(), id); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Order marked as packed"})
}

func (h *Handlers) PackItem(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(w, r, "itemId")
	if !ok {
		return
	}

	if err := h.cmdHandler.PackItem(r.Context(), command.PackItem{OrderID: orderID, ItemID: itemID}); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Item marked as packed"})
}

func (h *Handlers) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.cmdHandler.DeleteOrder(r.Context(), id); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Payment Handlers

func (h *Handlers) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var cmd command.CreatePayment
	if !decodeBody(w, r, &cmd) {
		return
	}

	po, err := h.cmdHandler.CreatePayment(r.Context(), cmd)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, po)
}

func (h *Handlers) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var cmd command.VerifyPayment
	if !decodeBody(w, r, &cmd) {
		return
	}

	result, err := h.cmdHandler.VerifyPayment(r.Context(), cmd)
	if errors.Is(err, payment.ErrInvalidSignature) {
		respondJSON(w, http.StatusBadRequest, map[string]string{"status": "invalid_signature"})
		return
	}
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": string(result)})
}

// Operational

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.health.Ping(r.Context()); err != nil {
		slog.WarnContext(r.Context(), "health check failed", "component", "API", "error", err)
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Helper functions

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_id", fmt.Sprintf("%s must be a positive integer, got %q", name, raw))
		return 0, false
	}
	return id, true
}
