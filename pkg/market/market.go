package market

import "fmt"

// Vendor is the NPC the presentation layer spawns for this market.
// The engine only serves this block to clients; movement and
// rendering are host concerns.
type Vendor struct {
	Name     string  `json:"name"`
	Model    string  `json:"model,omitempty"` // host-side ped/character model id
	Location Vec3    `json:"location"`
	Heading  float64 `json:"heading,omitempty"`
}

// Market is the static configuration for one vendor: who sells, what
// it costs, where drops can land, and which held items count as a
// phone for the bank payment precondition. Loaded once at startup
// from a JSON file and treated as immutable.
type Market struct {
	Vendor     Vendor     `json:"vendor"`
	Catalog    Catalog    `json:"catalog"`
	DropZones  []DropZone `json:"drop_zones"`
	PhoneItems []string   `json:"phone_items,omitempty"`
}

// Validate checks the market for fatal configuration errors. An
// invalid market must prevent the service from accepting orders at
// all, so this runs at startup and in cmd/validate.
func (m *Market) Validate() error {
	if m.Vendor.Name == "" {
		return fmt.Errorf("market vendor has no name")
	}
	if err := m.Catalog.Validate(); err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}
	if len(m.DropZones) == 0 {
		return fmt.Errorf("market has no drop zones")
	}
	return nil
}
