package forecast

import (
	"math"
	"time"
)

// StockStatus classifies how urgently a component needs reordering
type StockStatus string

const (
	StatusOutOfStock StockStatus = "out_of_stock"
	StatusCritical   StockStatus = "critical"
	StatusWarning    StockStatus = "warning"
	StatusOK         StockStatus = "ok"
)

// warningBufferDays is the extra runway beyond the reorder threshold that
// still warrants a warning.
const warningBufferDays = 7

// DefaultTargetCoverDays is the stock cover a suggested order should reach
// when the caller does not override it.
const DefaultTargetCoverDays = 60

// Input is one component's forecast input
type Input struct {
	Available       int
	Velocity        float64
	LeadTimeDays    int
	SafetyStockDays int
}

// Result is the projection for one component. DaysRemaining and ReorderDate
// are nil when there is no sales signal to project from.
type Result struct {
	DaysRemaining *int        `json:"days_remaining"`
	ReorderPoint  int         `json:"reorder_point"`
	ReorderDate   *time.Time  `json:"reorder_date"`
	Status        StockStatus `json:"status"`
	StatusReason  string      `json:"status_reason"`
}

// Forecast projects stock runway for a single component as of now.
func Forecast(in Input, now time.Time) Result {
	result := Result{
		ReorderPoint: reorderPoint(in.Velocity, in.LeadTimeDays, in.SafetyStockDays),
	}

	threshold := in.LeadTimeDays + in.SafetyStockDays

	if in.Velocity > 0 {
		days := 0
		if in.Available > 0 {
			days = int(math.Floor(float64(in.Available) / in.Velocity))
		}
		result.DaysRemaining = &days

		// Overdue reorders return "now" rather than a past date. This is
		// intentional signaling: the answer to "when should I reorder" is
		// immediately.
		reorderIn := days - threshold
		reorderDate := now
		if reorderIn > 0 {
			reorderDate = now.AddDate(0, 0, reorderIn)
		}
		result.ReorderDate = &reorderDate
	}

	switch {
	case in.Available <= 0:
		result.Status = StatusOutOfStock
		result.StatusReason = "no available stock"
	case result.DaysRemaining == nil:
		result.Status = StatusOK
		result.StatusReason = "no sales velocity data"
	case *result.DaysRemaining <= threshold:
		result.Status = StatusCritical
		result.StatusReason = "stock runs out within lead time plus safety buffer"
	case *result.DaysRemaining <= threshold+warningBufferDays:
		result.Status = StatusWarning
		result.StatusReason = "stock approaches the reorder threshold"
	default:
		result.Status = StatusOK
		result.StatusReason = "stock cover is sufficient"
	}

	return result
}

// SuggestedOrderQuantity computes how many units to order to reach
// targetDays of cover, counting stock already available or on order, rounded
// up to the component's minimum order quantity.
func SuggestedOrderQuantity(velocity float64, available, onOrder, minOrderQty, targetDays int) int {
	if velocity <= 0 || targetDays <= 0 {
		return 0
	}

	target := int(math.Ceil(velocity * float64(targetDays)))
	needed := target - (available + onOrder)
	if needed <= 0 {
		return 0
	}

	if minOrderQty > 1 {
		multiples := (needed + minOrderQty - 1) / minOrderQty
		return multiples * minOrderQty
	}
	return needed
}

func reorderPoint(velocity float64, leadTimeDays, safetyStockDays int) int {
	if velocity <= 0 {
		return 0
	}
	return int(math.Ceil(velocity * float64(leadTimeDays+safetyStockDays)))
}
