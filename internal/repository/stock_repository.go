// internal/repository/stock_repository.go
package repository

import (
	"context"

	"github.com/opsdash/backend-go/internal/domain"
)

// Adjustment describes one manual stock mutation. Type semantics:
// count sets on_hand to exactly Quantity, adjust applies the signed
// Quantity as a delta.
type Adjustment struct {
	ComponentID int64
	Type        domain.StockTransactionType
	Quantity    int
	Notes       string
}

// AdjustmentResult is the before/after snapshot of a successful adjustment.
type AdjustmentResult struct {
	ComponentID    int64 `json:"component_id"`
	PreviousOnHand int   `json:"previous_on_hand"`
	NewOnHand      int   `json:"new_on_hand"`
	Delta          int   `json:"delta"`
}

// StockRepository mutates stock levels under a per-component row lock and
// appends to the immutable stock transaction ledger in the same database
// transaction.
type StockRepository interface {
	GetByComponent(ctx context.Context, componentID int64) (*domain.StockLevel, error)
	ListAll(ctx context.Context) (map[int64]*domain.StockLevel, error)
	Adjust(ctx context.Context, adj Adjustment) (*AdjustmentResult, error)
	ListTransactions(ctx context.Context, componentID int64, limit, offset int) ([]*domain.StockTransaction, error)
}
