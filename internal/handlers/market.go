package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/redvale-rp/deaddrop/pkg/market"
)

// MarketSection is a catalog section shaped for menu rendering.
type MarketSection struct {
	Key   string         `json:"key"`
	Label string         `json:"label"`
	Items map[string]int `json:"items"`
}

// MarketResponse is what the presentation layer needs to spawn the
// vendor and draw its menu. Drop zones and phone items stay private.
type MarketResponse struct {
	Vendor   market.Vendor   `json:"vendor"`
	Sections []MarketSection `json:"sections"`
}

// MarketHandler serves the vendor and catalog.
// GET /v1/market
type MarketHandler struct {
	market *market.Market
	logger *slog.Logger
}

func NewMarketHandler(m *market.Market, logger *slog.Logger) *MarketHandler {
	return &MarketHandler{
		market: m,
		logger: logger,
	}
}

func (h *MarketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		if err := json.NewEncoder(w).Encode(ErrorResponse{Error: "Method not allowed. Only GET is supported."}); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	sections := make([]MarketSection, 0, len(h.market.Catalog.Sections))
	for _, s := range h.market.Catalog.Sections {
		sections = append(sections, MarketSection{
			Key:   s.Key,
			Label: s.DisplayLabel(),
			Items: s.Items,
		})
	}

	response := MarketResponse{
		Vendor:   h.market.Vendor,
		Sections: sections,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Failed to encode market response", "error", err)
	}
}
