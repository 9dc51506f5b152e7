// internal/repository/po_repository.go
package repository

import (
	"context"

	"github.com/opsdash/backend-go/internal/domain"
)

// POFilter narrows purchase order listings.
type POFilter struct {
	Status     domain.POStatus
	SupplierID int64
	Page       int
	PageSize   int
}

// ReceiptLine records units received against a single purchase order item.
type ReceiptLine struct {
	ItemID   int64 `json:"item_id"`
	Quantity int   `json:"quantity"`
}

// PORepository persists purchase orders. Mutating methods run as a single
// database transaction: status side effects on stock levels, ledger
// appends and the header update commit together or not at all.
type PORepository interface {
	Create(ctx context.Context, po *domain.PurchaseOrder) error
	GetByID(ctx context.Context, id int64) (*domain.PurchaseOrder, error)
	List(ctx context.Context, filter POFilter) ([]*domain.PurchaseOrder, int, error)
	TransitionStatus(ctx context.Context, id int64, target domain.POStatus) (*domain.PurchaseOrder, error)
	ReceiveItems(ctx context.Context, id int64, receipts []ReceiptLine) (*domain.PurchaseOrder, error)
	Delete(ctx context.Context, id int64) error
	ListSuppliers(ctx context.Context) ([]*domain.Supplier, error)
}
