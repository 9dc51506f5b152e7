// internal/domain/models.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Supplier represents a vendor that components are purchased from
type Supplier struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Phone     string    `json:"phone" db:"phone"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Component represents a purchasable raw material or part. Components are
// never hard-deleted; they are deactivated via IsActive.
type Component struct {
	ID              int64     `json:"id" db:"id"`
	SKU             string    `json:"sku" db:"sku"`
	Name            string    `json:"name" db:"name"`
	Category        string    `json:"category" db:"category"`
	SupplierID      *int64    `json:"supplier_id" db:"supplier_id"`
	LeadTimeDays    int       `json:"lead_time_days" db:"lead_time_days"`
	SafetyDays      int       `json:"safety_days" db:"safety_days"`
	MinimumOrderQty int       `json:"minimum_order_quantity" db:"minimum_order_quantity"`
	IsActive        bool      `json:"is_active" db:"is_active"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// StockLevel tracks physical and committed inventory for a component.
// Exactly one row per component, created lazily on first movement.
type StockLevel struct {
	ID             int64      `json:"id" db:"id"`
	ComponentID    int64      `json:"component_id" db:"component_id"`
	OnHand         int        `json:"on_hand" db:"on_hand"`
	Reserved       int        `json:"reserved" db:"reserved"`
	OnOrder        int        `json:"on_order" db:"on_order"`
	LastMovementAt *time.Time `json:"last_movement_at" db:"last_movement_at"`
	LastCountDate  *time.Time `json:"last_count_date" db:"last_count_date"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// Available is on-hand stock minus reservations.
func (s *StockLevel) Available() int {
	return s.OnHand - s.Reserved
}

// StockTransactionType classifies a stock ledger entry
type StockTransactionType string

const (
	TransactionCount   StockTransactionType = "count"
	TransactionAdjust  StockTransactionType = "adjust"
	TransactionReceive StockTransactionType = "receive"
)

// IsValid reports whether t is a known transaction type.
func (t StockTransactionType) IsValid() bool {
	switch t {
	case TransactionCount, TransactionAdjust, TransactionReceive:
		return true
	}
	return false
}

// StockTransaction is an immutable ledger entry recording a single change
// to a component's on-hand quantity. Rows are append-only.
type StockTransaction struct {
	ID              int64                `json:"id" db:"id"`
	ComponentID     int64                `json:"component_id" db:"component_id"`
	TransactionType StockTransactionType `json:"transaction_type" db:"transaction_type"`
	Quantity        int                  `json:"quantity" db:"quantity"`
	QuantityBefore  int                  `json:"quantity_before" db:"quantity_before"`
	QuantityAfter   int                  `json:"quantity_after" db:"quantity_after"`
	ReferenceType   string               `json:"reference_type" db:"reference_type"`
	ReferenceID     *int64               `json:"reference_id" db:"reference_id"`
	Notes           string               `json:"notes" db:"notes"`
	CreatedAt       time.Time            `json:"created_at" db:"created_at"`
}

// BOMEntry maps a sellable product SKU to one component it consumes
type BOMEntry struct {
	ID              int64     `json:"id" db:"id"`
	ProductSKU      string    `json:"product_sku" db:"product_sku"`
	ComponentID     int64     `json:"component_id" db:"component_id"`
	QuantityPerUnit float64   `json:"quantity_per_unit" db:"quantity_per_unit"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// SKUMapping resolves a legacy SKU string to its current canonical SKU.
// Resolution is single-hop: a current SKU must never appear as an old SKU
// of another mapping.
type SKUMapping struct {
	ID         int64     `json:"id" db:"id"`
	OldSKU     string    `json:"old_sku" db:"old_sku"`
	CurrentSKU string    `json:"current_sku" db:"current_sku"`
	BrandID    *int64    `json:"brand_id" db:"brand_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// OrderLineItem is a historical sales line supplied by the order history
// store. Read-only input to the velocity estimator.
type OrderLineItem struct {
	SKU       string    `json:"sku" db:"sku"`
	Quantity  int       `json:"quantity" db:"quantity"`
	OrderDate time.Time `json:"order_date" db:"order_date"`
}

// PurchaseOrder is the header of a purchase order. Lifecycle is governed
// by the transition table in status.go.
type PurchaseOrder struct {
	ID              int64               `json:"id" db:"id"`
	PONumber        string              `json:"po_number" db:"po_number"`
	SupplierID      int64               `json:"supplier_id" db:"supplier_id"`
	SupplierName    string              `json:"supplier_name,omitempty" db:"supplier_name"`
	BrandID         *int64              `json:"brand_id" db:"brand_id"`
	Status          POStatus            `json:"status" db:"status"`
	OrderedDate     *time.Time          `json:"ordered_date" db:"ordered_date"`
	ExpectedDate    *time.Time          `json:"expected_date" db:"expected_date"`
	ReceivedDate    *time.Time          `json:"received_date" db:"received_date"`
	Subtotal        decimal.Decimal     `json:"subtotal" db:"subtotal"`
	ShippingCost    decimal.Decimal     `json:"shipping_cost" db:"shipping_cost"`
	Tax             decimal.Decimal     `json:"tax" db:"tax"`
	Total           decimal.Decimal     `json:"total" db:"total"`
	ShippingAddress string              `json:"shipping_address" db:"shipping_address"`
	Notes           string              `json:"notes" db:"notes"`
	CreatedAt       time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at" db:"updated_at"`
	Items           []PurchaseOrderItem `json:"items,omitempty" db:"-"`
}

// RecalculateTotals recomputes subtotal and total from line items and the
// current shipping/tax figures.
func (po *PurchaseOrder) RecalculateTotals() {
	subtotal := decimal.Zero
	for i := range po.Items {
		subtotal = subtotal.Add(po.Items[i].LineTotal)
	}
	po.Subtotal = subtotal
	po.Total = subtotal.Add(po.ShippingCost).Add(po.Tax)
}

// CommitsStock reports whether the order's current status means its open
// quantities are already counted in on_order.
func (po *PurchaseOrder) CommitsStock() bool {
	switch po.Status {
	case StatusSent, StatusConfirmed, StatusPartial, StatusReceived:
		return true
	}
	return false
}

// PurchaseOrderItem is a single line of a purchase order
type PurchaseOrderItem struct {
	ID               int64           `json:"id" db:"id"`
	PurchaseOrderID  int64           `json:"purchase_order_id" db:"purchase_order_id"`
	ComponentID      int64           `json:"component_id" db:"component_id"`
	ComponentSKU     string          `json:"component_sku,omitempty" db:"component_sku"`
	QuantityOrdered  int             `json:"quantity_ordered" db:"quantity_ordered"`
	QuantityReceived int             `json:"quantity_received" db:"quantity_received"`
	UnitPrice        decimal.Decimal `json:"unit_price" db:"unit_price"`
	LineTotal        decimal.Decimal `json:"line_total" db:"line_total"`
}

// IsComplete reports whether the line has been fully received.
func (i *PurchaseOrderItem) IsComplete() bool {
	return i.QuantityReceived >= i.QuantityOrdered
}

// Remaining is the quantity still outstanding on the line, never negative.
func (i *PurchaseOrderItem) Remaining() int {
	if r := i.QuantityOrdered - i.QuantityReceived; r > 0 {
		return r
	}
	return 0
}

// StockDelta describes a pending change to a component's stock level.
// Deltas are applied with atomic per-row increments, on_order floored at 0.
type StockDelta struct {
	ComponentID int64
	OnHand      int
	OnOrder     int
}
