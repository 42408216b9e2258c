package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/redvale-rp/deaddrop/internal/vendor"
	"github.com/redvale-rp/deaddrop/pkg/market"
)

// PositionHandler records actor positions reported by the host.
// POST /v1/actors/{actor}/position
type PositionHandler struct {
	processor *vendor.OrderProcessor
	logger    *slog.Logger
}

func NewPositionHandler(processor *vendor.OrderProcessor, logger *slog.Logger) *PositionHandler {
	return &PositionHandler{
		processor: processor,
		logger:    logger,
	}
}

func (h *PositionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		h.encode(w, ErrorResponse{Error: "Method not allowed. Only POST is supported."})
		return
	}

	// Expected: /v1/actors/{actor}/position
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 4 || parts[0] != "v1" || parts[1] != "actors" || parts[3] != "position" || parts[2] == "" {
		w.WriteHeader(http.StatusBadRequest)
		h.encode(w, ErrorResponse{Error: "Invalid path. Expected /v1/actors/{actor}/position"})
		return
	}
	actor := parts[2]

	var pos market.Vec3
	if err := json.NewDecoder(r.Body).Decode(&pos); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		h.encode(w, ErrorResponse{Error: "Invalid request body"})
		return
	}

	if err := h.processor.ReportPosition(r.Context(), actor, pos); err != nil {
		h.logger.Error("Failed to record position", "actor", actor, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		h.encode(w, ErrorResponse{Error: "Failed to record position"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *PositionHandler) encode(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}
