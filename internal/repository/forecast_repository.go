// internal/repository/forecast_repository.go
package repository

import (
	"context"
	"time"

	"github.com/opsdash/backend-go/internal/domain"
)

// OrderHistoryRepository is the read-only order history provider consumed
// by the velocity estimator. Excluded orders are filtered out upstream.
type OrderHistoryRepository interface {
	ListLineItems(ctx context.Context, from, to time.Time, brandID *int64) ([]domain.OrderLineItem, error)
}

// BOMRepository loads the bill-of-materials and SKU mapping tables
// wholesale; both are small reference datasets refreshed per evaluation.
type BOMRepository interface {
	ListBOMEntries(ctx context.Context) ([]domain.BOMEntry, error)
	ListSKUMappings(ctx context.Context) ([]domain.SKUMapping, error)
}
