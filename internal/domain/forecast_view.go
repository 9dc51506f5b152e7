package domain

import "time"

// ComponentForecast is one row of a forecast sweep: a component's stock
// position, velocity and projection.
type ComponentForecast struct {
	ComponentID            int64      `json:"component_id"`
	SKU                    string     `json:"sku"`
	Name                   string     `json:"name"`
	OnHand                 int        `json:"on_hand"`
	Reserved               int        `json:"reserved"`
	OnOrder                int        `json:"on_order"`
	Available              int        `json:"available"`
	Velocity               float64    `json:"velocity"`
	LeadTimeDays           int        `json:"lead_time_days"`
	SafetyDays             int        `json:"safety_days"`
	DaysRemaining          *int       `json:"days_remaining"`
	ReorderPoint           int        `json:"reorder_point"`
	ReorderDate            *time.Time `json:"reorder_date"`
	Status                 string     `json:"status"`
	StatusReason           string     `json:"status_reason"`
	SuggestedOrderQuantity int        `json:"suggested_order_quantity"`
}

// LowStockReport groups a sweep's at-risk components by severity. Each
// group is sorted ascending by days remaining, unknown runway last.
type LowStockReport struct {
	GeneratedAt time.Time           `json:"generated_at"`
	OutOfStock  []ComponentForecast `json:"out_of_stock"`
	Critical    []ComponentForecast `json:"critical"`
	Warning     []ComponentForecast `json:"warning"`
}

// Total is the number of components needing attention.
func (r *LowStockReport) Total() int {
	return len(r.OutOfStock) + len(r.Critical) + len(r.Warning)
}
