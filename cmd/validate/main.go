package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/redvale-rp/deaddrop/pkg/market"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <market.json>\n", os.Args[0])
		os.Exit(1)
	}

	filename := os.Args[1]
	validator := &MarketValidator{}

	if err := validator.validateFile(filename); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Market file is valid!")
}

type MarketValidator struct {
	errors []string
}

func (v *MarketValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	// Validate filename format
	baseName := filepath.Base(filename)
	if !strings.HasSuffix(baseName, ".json") {
		return fmt.Errorf("market file must have .json extension: %s", baseName)
	}

	nameWithoutExt := strings.TrimSuffix(baseName, ".json")
	if !isValidMarketFilename(nameWithoutExt) {
		return fmt.Errorf("market filename '%s' must be lowercase snake_case (e.g., blackmarket.json, not BlackMarket.json)", baseName)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	v.errors = nil

	if !json.Valid(data) {
		return fmt.Errorf("file %s contains invalid JSON", filename)
	}

	var m market.Market
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&m); err != nil {
		return fmt.Errorf("file %s failed strict JSON unmarshaling: %w", filename, err)
	}

	v.validateMarket(&m)

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}

	return nil
}

func (v *MarketValidator) validateMarket(m *market.Market) {
	if err := m.Validate(); err != nil {
		v.errors = append(v.errors, fmt.Sprintf("  - %v", err))
	}

	for _, section := range m.Catalog.Sections {
		v.validateIDFormat("section key", section.Key)
		for itemID := range section.Items {
			v.validateIDFormat("item ID", itemID)
		}
	}

	for i, zone := range m.DropZones {
		if zone.Name == "" {
			v.errors = append(v.errors, fmt.Sprintf("  - drop zone %d has no name", i))
			continue
		}
		v.validateIDFormat("drop zone name", zone.Name)
	}

	for _, item := range m.PhoneItems {
		v.validateIDFormat("phone item ID", item)
	}
}

func (v *MarketValidator) validateIDFormat(kind, id string) {
	if !isValidIDFormat(id) {
		v.errors = append(v.errors, fmt.Sprintf("  - %s '%s' must be lowercase snake_case", kind, id))
	}
}

var idPattern = regexp.MustCompile(`^[a-z0-9]+(_[a-z0-9]+)*$`)

func isValidIDFormat(id string) bool {
	return idPattern.MatchString(id)
}

func isValidMarketFilename(name string) bool {
	return idPattern.MatchString(name)
}
