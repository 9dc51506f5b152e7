// Package forecast computes per-component sales velocity from historical
// order lines and projects stock runway, reorder points and suggested order
// quantities from it.
package forecast

import (
	"github.com/opsdash/backend-go/internal/domain"
	"github.com/opsdash/backend-go/internal/sku"
)

// BOMIndex maps a canonical product SKU to the components consumed per unit
// sold.
type BOMIndex map[string][]domain.BOMEntry

// NewBOMIndex builds a BOMIndex keyed by normalized product SKU.
func NewBOMIndex(entries []domain.BOMEntry) BOMIndex {
	index := make(BOMIndex)
	for _, e := range entries {
		key := sku.Normalize(e.ProductSKU)
		if key == "" {
			continue
		}
		index[key] = append(index[key], e)
	}
	return index
}

// ComputeVelocity derives units-per-day consumption for every component
// reachable from the given order lines through the SKU mapping table and
// the BOM index. Lines with an empty SKU or without BOM entries contribute
// nothing. Components absent from the result have velocity zero.
func ComputeVelocity(lines []domain.OrderLineItem, bom BOMIndex, mappings sku.MappingTable, windowDays int) (map[int64]float64, error) {
	if windowDays <= 0 {
		return nil, domain.NewValidationError("window_days", "must be greater than zero, got %d", windowDays)
	}

	totals := make(map[int64]float64)
	for _, line := range lines {
		if line.SKU == "" || line.Quantity <= 0 {
			continue
		}

		resolved := sku.ResolveLegacy(line.SKU, mappings)
		entries, ok := bom[resolved]
		if !ok {
			// Personalization variants share the BOM of their base SKU.
			entries, ok = bom[sku.ResolveToBaseSKU(resolved)]
		}
		if !ok {
			continue
		}

		for _, entry := range entries {
			totals[entry.ComponentID] += float64(line.Quantity) * entry.QuantityPerUnit
		}
	}

	velocities := make(map[int64]float64, len(totals))
	for componentID, total := range totals {
		velocities[componentID] = total / float64(windowDays)
	}
	return velocities, nil
}
