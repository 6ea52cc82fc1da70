package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/example/marketplace-orders/internal/domain/order"
	"github.com/example/marketplace-orders/internal/payment"
)

type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
	// Gateway fields carry the provider's answer on a 502
	GatewayStatus int    `json:"gatewayStatus,omitempty"`
	GatewayBody   string `json:"gatewayBody,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: code, Message: message})
}

// respondDomainError classifies err by the error taxonomy
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var gwErr *payment.GatewayError
	switch {
	case errors.Is(err, order.ErrValidation):
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, order.ErrNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, order.ErrInvalidState):
		respondError(w, http.StatusConflict, "invalid_state", err.Error())
	case errors.Is(err, payment.ErrGatewayTimeout):
		respondJSON(w, http.StatusGatewayTimeout, ErrorResponse{
			Error:     "gateway_timeout",
			Message:   "payment gateway did not answer in time",
			Retryable: true,
		})
	case errors.As(err, &gwErr):
		respondJSON(w, http.StatusBadGateway, ErrorResponse{
			Error:         "gateway_error",
			Message:       "payment gateway rejected the request",
			Retryable:     true,
			GatewayStatus: gwErr.StatusCode,
			GatewayBody:   gwErr.Body,
		})
	default:
		slog.ErrorContext(r.Context(), "request failed",
			"component", "API",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
