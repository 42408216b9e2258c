package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/redvale-rp/deaddrop/internal/vendor"
)

// UnlockRequest is a code submission against the actor's drop.
type UnlockRequest struct {
	Actor string `json:"actor"`
	Code  int    `json:"code"`
}

// UnlockResponse returns the delivered manifest on success.
type UnlockResponse struct {
	Items []string `json:"items"`
}

// UnlockHandler handles drop unlock attempts.
// POST /v1/drops/unlock
type UnlockHandler struct {
	processor *vendor.OrderProcessor
	logger    *slog.Logger
}

func NewUnlockHandler(processor *vendor.OrderProcessor, logger *slog.Logger) *UnlockHandler {
	return &UnlockHandler{
		processor: processor,
		logger:    logger,
	}
}

func (h *UnlockHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		h.logger.Warn("Method not allowed for unlock endpoint", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		h.encode(w, ErrorResponse{Error: "Method not allowed. Only POST is supported."})
		return
	}

	var req UnlockRequest
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

	items, err := h.processor.AttemptUnlock(r.Context(), req.Actor, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, vendor.ErrNoActiveDrop):
			w.WriteHeader(http.StatusNotFound)
			h.encode(w, ErrorResponse{Error: "No active drop", Reason: "no_active_drop"})
		case errors.Is(err, vendor.ErrWrongCode):
			w.WriteHeader(http.StatusForbidden)
			h.encode(w, ErrorResponse{Error: "Wrong lock code", Reason: "wrong_code"})
		default:
			h.logger.Error("Unlock attempt failed", "actor", req.Actor, "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			h.encode(w, ErrorResponse{Error: "Failed to process unlock"})
		}
		return
	}

	h.encode(w, UnlockResponse{Items: items})
}

func (h *UnlockHandler) encode(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}
