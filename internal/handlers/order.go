package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/redvale-rp/deaddrop/internal/vendor"
	"github.com/redvale-rp/deaddrop/pkg/market"
)

// OrderRequest is the inbound purchase request. Either Item (single
// order) or Items (cart) is set. Prices are never accepted from the
// client; the catalog reprices everything.
type OrderRequest struct {
	Actor string             `json:"actor"`
	Item  string             `json:"item,omitempty"`
	Items []market.OrderLine `json:"items,omitempty"`
}

// OrderRejectedResponse carries the rejection taxonomy to the client.
type OrderRejectedResponse struct {
	Error        string `json:"error"`
	Reason       string `json:"reason"`
	Failure      string `json:"failure,omitempty"`
	RetrySeconds int    `json:"retry_seconds,omitempty"`
}

// OrderHandler handles purchase requests.
// POST /v1/orders
type OrderHandler struct {
	processor *vendor.OrderProcessor
	logger    *slog.Logger
}

func NewOrderHandler(processor *vendor.OrderProcessor, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		processor: processor,
		logger:    logger,
	}
}

func (h *OrderHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		h.logger.Warn("Method not allowed for orders endpoint", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		h.encode(w, ErrorResponse{Error: "Method not allowed. Only POST is supported."})
		return
	}

	var req OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		h.encode(w, ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Actor == "" {
		w.WriteHeader(http.StatusBadRequest)
		h.encode(w, ErrorResponse{Error: "actor is required"})
		return
	}
	if req.Item == "" && len(req.Items) == 0 {
		w.WriteHeader(http.StatusBadRequest)
		h.encode(w, ErrorResponse{Error: "item or items is required"})
		return
	}

	var receipt *market.Receipt
	var err error
	if req.Item != "" {
		receipt, err = h.processor.PlaceSingleOrder(r.Context(), req.Actor, req.Item)
	} else {
		receipt, err = h.processor.PlaceCartOrder(r.Context(), req.Actor, req.Items)
	}

	if err != nil {
		var rejection *market.Rejection
		if errors.As(err, &rejection) {
			h.writeRejection(w, req.Actor, rejection)
			return
		}
		h.logger.Error("Order processing failed", "actor", req.Actor, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		h.encode(w, ErrorResponse{Error: "Failed to process order"})
		return
	}

	w.WriteHeader(http.StatusCreated)
	h.encode(w, receipt)
}

func (h *OrderHandler) writeRejection(w http.ResponseWriter, actor string, rejection *market.Rejection) {
	h.logger.Info("Order rejected",
		"actor", actor,
		"reason", rejection.Reason,
		"failure", rejection.Payment)

	status := http.StatusBadRequest
	switch rejection.Reason {
	case market.RejectRateLimited:
		status = http.StatusTooManyRequests
	case market.RejectPaymentFailed:
		status = http.StatusPaymentRequired
	}

	w.WriteHeader(status)
	h.encode(w, OrderRejectedResponse{
		Error:        rejection.Error(),
		Reason:       string(rejection.Reason),
		Failure:      string(rejection.Payment),
		RetrySeconds: int(rejection.Retry.Round(time.Second).Seconds()),
	})
}

func (h *OrderHandler) encode(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}
