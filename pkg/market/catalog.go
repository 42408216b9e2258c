package market

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Section groups sellable items under a named menu heading.
type Section struct {
	Key   string         `json:"key"`             // e.g. "weapons", "ammo"
	Label string         `json:"label,omitempty"` // display label; derived from Key when empty
	Items map[string]int `json:"items"`           // item id -> price
}

// Catalog is the authoritative price list for a vendor. It is loaded once
// from the market file and never mutated at runtime. Section order is
// display order and also lookup order: the first section containing an
// item wins.
type Catalog struct {
	Sections []Section `json:"sections"`
}

var titleCaser = cases.Title(language.English)

// DisplayLabel returns the section label, deriving one from the key
// when the market file doesn't set it.
func (s Section) DisplayLabel() string {
	if s.Label != "" {
		return s.Label
	}
	return ItemLabel(s.Key)
}

// ItemLabel converts a snake_case item id to a display label,
// e.g. "assault_rifle" -> "Assault Rifle".
func ItemLabel(itemID string) string {
	return titleCaser.String(strings.ReplaceAll(itemID, "_", " "))
}

// PriceOf returns the price for an item id. Sections are scanned in
// order and the first match wins. The second return value is false
// when the item is not sold anywhere in the catalog.
func (c *Catalog) PriceOf(itemID string) (int, bool) {
	for _, s := range c.Sections {
		if price, ok := s.Items[itemID]; ok {
			return price, true
		}
	}
	return 0, false
}

// SortedItems returns the item ids of a section in stable order,
// for menu rendering.
func (s Section) SortedItems() []string {
	items := make([]string, 0, len(s.Items))
	for id := range s.Items {
		items = append(items, id)
	}
	sort.Strings(items)
	return items
}

// Validate checks the catalog for configuration defects: empty catalogs,
// non-positive prices, and item ids that appear in more than one section.
// Duplicates are rejected outright rather than silently resolved, even
// though PriceOf would pick the first match.
func (c *Catalog) Validate() error {
	if len(c.Sections) == 0 {
		return fmt.Errorf("catalog has no sections")
	}

	seen := make(map[string]string) // item id -> section key
	for _, s := range c.Sections {
		if s.Key == "" {
			return fmt.Errorf("catalog section has empty key")
		}
		if len(s.Items) == 0 {
			return fmt.Errorf("catalog section %q has no items", s.Key)
		}
		for id, price := range s.Items {
			if id == "" {
				return fmt.Errorf("catalog section %q has an empty item id", s.Key)
			}
			if price <= 0 {
				return fmt.Errorf("item %q in section %q has non-positive price %d", id, s.Key, price)
			}
			if prev, dup := seen[id]; dup {
				return fmt.Errorf("item %q appears in sections %q and %q", id, prev, s.Key)
			}
			seen[id] = s.Key
		}
	}
	return nil
}
