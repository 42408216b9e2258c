package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testCatalog() Catalog {
	return Catalog{
		Sections: []Section{
			{Key: "weapons", Items: map[string]int{"pistol": 500, "smg": 1500}},
			{Key: "ammo", Label: "Ammunition", Items: map[string]int{"pistol_ammo": 40}},
		},
	}
}

func TestPriceOf(t *testing.T) {
	c := testCatalog()

	price, ok := c.PriceOf("pistol")
	assert.True(t, ok)
	assert.Equal(t, 500, price)

	price, ok = c.PriceOf("pistol_ammo")
	assert.True(t, ok)
	assert.Equal(t, 40, price)

	_, ok = c.PriceOf("rocket_launcher")
	assert.False(t, ok)
}

func TestPriceOfFirstMatchWins(t *testing.T) {
	// Duplicate ids are rejected by Validate, but PriceOf itself must
	// resolve deterministically to the first section.
	c := Catalog{
		Sections: []Section{
			{Key: "specials", Items: map[string]int{"pistol": 400}},
			{Key: "weapons", Items: map[string]int{"pistol": 500}},
		},
	}
	price, ok := c.PriceOf("pistol")
	assert.True(t, ok)
	assert.Equal(t, 400, price)
}

func TestCatalogValidate(t *testing.T) {
	tests := []struct {
		name    string
		catalog Catalog
		wantErr bool
	}{
		{
			name:    "valid catalog",
			catalog: testCatalog(),
		},
		{
			name:    "no sections",
			catalog: Catalog{},
			wantErr: true,
		},
		{
			name: "empty section key",
			catalog: Catalog{Sections: []Section{
				{Key: "", Items: map[string]int{"pistol": 500}},
			}},
			wantErr: true,
		},
		{
			name: "section with no items",
			catalog: Catalog{Sections: []Section{
				{Key: "weapons", Items: map[string]int{}},
			}},
			wantErr: true,
		},
		{
			name: "zero price",
			catalog: Catalog{Sections: []Section{
				{Key: "weapons", Items: map[string]int{"pistol": 0}},
			}},
			wantErr: true,
		},
		{
			name: "negative price",
			catalog: Catalog{Sections: []Section{
				{Key: "weapons", Items: map[string]int{"pistol": -5}},
			}},
			wantErr: true,
		},
		{
			name: "duplicate item across sections",
			catalog: Catalog{Sections: []Section{
				{Key: "weapons", Items: map[string]int{"pistol": 500}},
				{Key: "specials", Items: map[string]int{"pistol": 400}},
			}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.catalog.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDisplayLabel(t *testing.T) {
	c := testCatalog()
	assert.Equal(t, "Weapons", c.Sections[0].DisplayLabel())
	assert.Equal(t, "Ammunition", c.Sections[1].DisplayLabel())
}

func TestItemLabel(t *testing.T) {
	assert.Equal(t, "Assault Rifle", ItemLabel("assault_rifle"))
	assert.Equal(t, "Pistol", ItemLabel("pistol"))
}

func TestSortedItems(t *testing.T) {
	s := Section{Key: "weapons", Items: map[string]int{"smg": 1500, "pistol": 500, "axe": 90}}
	assert.Equal(t, []string{"axe", "pistol", "smg"}, s.SortedItems())
}
