package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestForecastCritical(t *testing.T) {
	result := Forecast(Input{
		Available:       5,
		Velocity:        1,
		LeadTimeDays:    14,
		SafetyStockDays: 7,
	}, now)

	require.NotNil(t, result.DaysRemaining)
	assert.Equal(t, 5, *result.DaysRemaining)
	assert.Equal(t, StatusCritical, result.Status)
	assert.Equal(t, 21, result.ReorderPoint)

	// 5 days of runway against a 21 day threshold: reorder immediately.
	require.NotNil(t, result.ReorderDate)
	assert.Equal(t, now, *result.ReorderDate)
}

func TestForecastStatusBoundaries(t *testing.T) {
	tests := []struct {
		name      string
		available int
		velocity  float64
		want      StockStatus
	}{
		{"zero available is out of stock", 0, 2, StatusOutOfStock},
		{"negative available is out of stock", -3, 0, StatusOutOfStock},
		{"at threshold is critical", 21, 1, StatusCritical},
		{"just past threshold is warning", 22, 1, StatusWarning},
		{"at warning edge is warning", 28, 1, StatusWarning},
		{"past warning buffer is ok", 29, 1, StatusOK},
		{"no velocity with stock is ok", 50, 0, StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Forecast(Input{
				Available:       tt.available,
				Velocity:        tt.velocity,
				LeadTimeDays:    14,
				SafetyStockDays: 7,
			}, now)
			assert.Equal(t, tt.want, result.Status)
		})
	}
}

func TestForecastNoVelocity(t *testing.T) {
	result := Forecast(Input{Available: 10, Velocity: 0, LeadTimeDays: 14, SafetyStockDays: 7}, now)

	assert.Nil(t, result.DaysRemaining)
	assert.Nil(t, result.ReorderDate)
	assert.Equal(t, 0, result.ReorderPoint)
	assert.Equal(t, StatusOK, result.Status)
}

func TestForecastZeroAvailableWithVelocity(t *testing.T) {
	result := Forecast(Input{Available: 0, Velocity: 2, LeadTimeDays: 7, SafetyStockDays: 3}, now)

	require.NotNil(t, result.DaysRemaining)
	assert.Equal(t, 0, *result.DaysRemaining)
	assert.Equal(t, StatusOutOfStock, result.Status)
	require.NotNil(t, result.ReorderDate)
	assert.Equal(t, now, *result.ReorderDate)
}

func TestForecastReorderDateMonotonic(t *testing.T) {
	// More stock never moves the reorder date earlier.
	prev := now
	for available := 1; available <= 120; available += 7 {
		result := Forecast(Input{
			Available:       available,
			Velocity:        1.5,
			LeadTimeDays:    10,
			SafetyStockDays: 5,
		}, now)
		require.NotNil(t, result.ReorderDate)
		assert.False(t, result.ReorderDate.Before(prev), "available=%d", available)
		prev = *result.ReorderDate
	}
}

func TestSuggestedOrderQuantity(t *testing.T) {
	tests := []struct {
		name        string
		velocity    float64
		available   int
		onOrder     int
		minOrderQty int
		targetDays  int
		want        int
	}{
		{"no velocity means nothing to order", 0, 5, 0, 10, 60, 0},
		{"covered by available stock", 1, 100, 0, 0, 60, 0},
		{"on order counts toward cover", 1, 30, 30, 0, 60, 0},
		{"plain shortfall", 1, 10, 0, 0, 60, 50},
		{"rounded up to moq multiple", 1, 10, 0, 24, 60, 72},
		{"exact moq multiple not rounded further", 1, 12, 0, 24, 60, 48},
		{"fractional velocity rounds target up", 0.5, 0, 0, 0, 61, 31},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SuggestedOrderQuantity(tt.velocity, tt.available, tt.onOrder, tt.minOrderQty, tt.targetDays)
			assert.Equal(t, tt.want, got)
		})
	}
}
