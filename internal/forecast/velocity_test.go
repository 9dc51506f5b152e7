package forecast

import (
	"testing"
	"time"

	"github.com/opsdash/backend-go/internal/domain"
	"github.com/opsdash/backend-go/internal/sku"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeVelocity(t *testing.T) {
	bom := NewBOMIndex([]domain.BOMEntry{
		{ProductSKU: "WIDGET-01", ComponentID: 1, QuantityPerUnit: 3},
		{ProductSKU: "WIDGET-01", ComponentID: 2, QuantityPerUnit: 1},
		{ProductSKU: "GADGET-02", ComponentID: 2, QuantityPerUnit: 0.5},
	})
	mappings := sku.NewMappingTable([]domain.SKUMapping{
		{OldSKU: "OLD123", CurrentSKU: "WIDGET-01"},
	})
	orderDate := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)

	t.Run("units per day over the window", func(t *testing.T) {
		lines := []domain.OrderLineItem{
			{SKU: "WIDGET-01", Quantity: 2, OrderDate: orderDate},
		}

		velocities, err := ComputeVelocity(lines, bom, mappings, 30)
		require.NoError(t, err)

		// 2 units sold, 3 components each, over 30 days.
		assert.InDelta(t, 0.2, velocities[1], 1e-9)
		assert.InDelta(t, 2.0/30.0, velocities[2], 1e-9)
	})

	t.Run("legacy sku resolves before bom lookup", func(t *testing.T) {
		lines := []domain.OrderLineItem{
			{SKU: "old123", Quantity: 10, OrderDate: orderDate},
		}

		velocities, err := ComputeVelocity(lines, bom, mappings, 30)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, velocities[1], 1e-9)
	})

	t.Run("variant falls back to base bom", func(t *testing.T) {
		lines := []domain.OrderLineItem{
			{SKU: "WIDGET-01-PERS", Quantity: 30, OrderDate: orderDate},
		}

		velocities, err := ComputeVelocity(lines, bom, mappings, 30)
		require.NoError(t, err)
		assert.InDelta(t, 3.0, velocities[1], 1e-9)
		assert.InDelta(t, 1.0, velocities[2], 1e-9)
	})

	t.Run("multiple products accumulate per component", func(t *testing.T) {
		lines := []domain.OrderLineItem{
			{SKU: "WIDGET-01", Quantity: 30, OrderDate: orderDate},
			{SKU: "GADGET-02", Quantity: 60, OrderDate: orderDate},
		}

		velocities, err := ComputeVelocity(lines, bom, mappings, 30)
		require.NoError(t, err)
		// Component 2: 30*1 + 60*0.5 = 60 units over 30 days.
		assert.InDelta(t, 2.0, velocities[2], 1e-9)
	})

	t.Run("unmapped and invalid lines contribute nothing", func(t *testing.T) {
		lines := []domain.OrderLineItem{
			{SKU: "", Quantity: 5, OrderDate: orderDate},
			{SKU: "WIDGET-01", Quantity: 0, OrderDate: orderDate},
			{SKU: "WIDGET-01", Quantity: -2, OrderDate: orderDate},
			{SKU: "NO-BOM-SKU", Quantity: 5, OrderDate: orderDate},
		}

		velocities, err := ComputeVelocity(lines, bom, mappings, 30)
		require.NoError(t, err)
		assert.Empty(t, velocities)
	})

	t.Run("invalid window rejected", func(t *testing.T) {
		_, err := ComputeVelocity(nil, bom, mappings, 0)
		var validationErr *domain.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "window_days", validationErr.Field)
	})
}

func TestNewBOMIndexNormalizesKeys(t *testing.T) {
	index := NewBOMIndex([]domain.BOMEntry{
		{ProductSKU: " widget-01 ", ComponentID: 1, QuantityPerUnit: 2},
		{ProductSKU: "", ComponentID: 9, QuantityPerUnit: 1},
	})

	entries, ok := index["WIDGET-01"]
	require.True(t, ok)
	assert.Len(t, entries, 1)
	assert.NotContains(t, index, "")
}
