package service

import (
	"context"
	"testing"

	"github.com/opsdash/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func widgetComponent() *domain.Component {
	return &domain.Component{ID: 1, SKU: "WIDGET-01", Name: "Widget", IsActive: true}
}

func TestStockServiceAdjustCount(t *testing.T) {
	stock := newFakeStockRepo()
	svc := NewStockService(stock, newFakeComponentRepo(widgetComponent()), nil)

	result, err := svc.Adjust(context.Background(), AdjustRequest{
		ComponentID: 1,
		Type:        AdjustCount,
		Quantity:    42,
		Notes:       "quarterly recount",
	})
	require.NoError(t, err)

	assert.Equal(t, 42, result.NewOnHand)
	require.Len(t, stock.adjustments, 1)
	assert.Equal(t, domain.TransactionCount, stock.adjustments[0].Type)
	assert.Equal(t, 42, stock.adjustments[0].Quantity)
}

func TestStockServiceAdjustCountRequiresNotes(t *testing.T) {
	stock := newFakeStockRepo()
	svc := NewStockService(stock, newFakeComponentRepo(widgetComponent()), nil)

	_, err := svc.Adjust(context.Background(), AdjustRequest{
		ComponentID: 1,
		Type:        AdjustCount,
		Quantity:    42,
	})

	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "notes", validationErr.Field)
	assert.Empty(t, stock.adjustments, "nothing may be written when validation fails")
}

func TestStockServiceAdjustAddAndRemove(t *testing.T) {
	stock := newFakeStockRepo()
	svc := NewStockService(stock, newFakeComponentRepo(widgetComponent()), nil)

	_, err := svc.Adjust(context.Background(), AdjustRequest{
		ComponentID: 1, Type: AdjustAdd, Quantity: 10,
	})
	require.NoError(t, err)

	result, err := svc.Adjust(context.Background(), AdjustRequest{
		ComponentID: 1, Type: AdjustRemove, Quantity: 4, Notes: "damaged in transit",
	})
	require.NoError(t, err)
	assert.Equal(t, 6, result.NewOnHand)

	// Remove maps to a negative adjust delta in the ledger.
	require.Len(t, stock.adjustments, 2)
	assert.Equal(t, domain.TransactionAdjust, stock.adjustments[1].Type)
	assert.Equal(t, -4, stock.adjustments[1].Quantity)
}

func TestStockServiceAdjustRejectsNegativeResult(t *testing.T) {
	stock := newFakeStockRepo()
	svc := NewStockService(stock, newFakeComponentRepo(widgetComponent()), nil)

	_, err := svc.Adjust(context.Background(), AdjustRequest{
		ComponentID: 1, Type: AdjustAdd, Quantity: 3,
	})
	require.NoError(t, err)

	_, err = svc.Adjust(context.Background(), AdjustRequest{
		ComponentID: 1, Type: AdjustRemove, Quantity: 5,
	})

	var negativeErr *domain.NegativeStockError
	require.ErrorAs(t, err, &negativeErr)
	assert.Equal(t, 3, negativeErr.Current)

	level, err := svc.GetStock(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 3, level.StockLevel.OnHand, "failed removal must not change on_hand")
}

func TestStockServiceAdjustValidation(t *testing.T) {
	tests := []struct {
		name  string
		req   AdjustRequest
		field string
	}{
		{"missing component", AdjustRequest{Type: AdjustAdd, Quantity: 1}, "component_id"},
		{"zero add quantity", AdjustRequest{ComponentID: 1, Type: AdjustAdd, Quantity: 0}, "quantity"},
		{"negative remove quantity", AdjustRequest{ComponentID: 1, Type: AdjustRemove, Quantity: -2}, "quantity"},
		{"negative count", AdjustRequest{ComponentID: 1, Type: AdjustCount, Quantity: -1, Notes: "x"}, "quantity"},
		{"unknown type", AdjustRequest{ComponentID: 1, Type: "transfer", Quantity: 5}, "type"},
	}

	svc := NewStockService(newFakeStockRepo(), newFakeComponentRepo(widgetComponent()), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Adjust(context.Background(), tt.req)
			var validationErr *domain.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.field, validationErr.Field)
		})
	}
}

func TestStockServiceAdjustUnknownComponent(t *testing.T) {
	svc := NewStockService(newFakeStockRepo(), newFakeComponentRepo(), nil)

	_, err := svc.Adjust(context.Background(), AdjustRequest{
		ComponentID: 99, Type: AdjustAdd, Quantity: 1,
	})

	var notFoundErr *domain.NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
}

func TestStockServiceAdjustInvalidatesForecastCache(t *testing.T) {
	cache := newCountingCache()
	svc := NewStockService(newFakeStockRepo(), newFakeComponentRepo(widgetComponent()), cache)

	_, err := svc.Adjust(context.Background(), AdjustRequest{
		ComponentID: 1, Type: AdjustAdd, Quantity: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.invalidations)
}

func TestStockServiceGetStockZeroBaseline(t *testing.T) {
	svc := NewStockService(newFakeStockRepo(), newFakeComponentRepo(widgetComponent()), nil)

	view, err := svc.GetStock(context.Background(), 1)
	require.NoError(t, err)

	// A component with no movements yet reports an implicit zero level.
	assert.Equal(t, int64(1), view.StockLevel.ComponentID)
	assert.Equal(t, 0, view.StockLevel.OnHand)
	assert.Equal(t, 0, view.StockLevel.OnOrder)
}
