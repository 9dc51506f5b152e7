// internal/repository/postgres/forecast_repository.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/opsdash/backend-go/internal/domain"
	"github.com/opsdash/backend-go/internal/repository"
)

type orderHistoryRepository struct {
	db *DB
}

func NewOrderHistoryRepository(db *DB) repository.OrderHistoryRepository {
	return &orderHistoryRepository{db: db}
}

// ListLineItems returns sales lines inside the window, skipping orders
// flagged excluded (test orders, fraud, replacements).
func (r *orderHistoryRepository) ListLineItems(ctx context.Context, from, to time.Time, brandID *int64) ([]domain.OrderLineItem, error) {
	query := `
		SELECT sku, quantity, order_date
		FROM order_line_items
		WHERE order_date >= $1 AND order_date < $2
		  AND NOT is_excluded
		  AND ($3::bigint IS NULL OR brand_id = $3)
		ORDER BY order_date
	`

	var lines []domain.OrderLineItem
	if err := sqlx.SelectContext(ctx, r.db, &lines, query, from, to, brandID); err != nil {
		return nil, fmt.Errorf("failed to list order line items: %w", err)
	}

	return lines, nil
}

type bomRepository struct {
	db *DB
}

func NewBOMRepository(db *DB) repository.BOMRepository {
	return &bomRepository{db: db}
}

func (r *bomRepository) ListBOMEntries(ctx context.Context) ([]domain.BOMEntry, error) {
	query := `
		SELECT id, product_sku, component_id, quantity_per_unit, created_at
		FROM bom_entries
		ORDER BY product_sku, component_id
	`

	var entries []domain.BOMEntry
	if err := sqlx.SelectContext(ctx, r.db, &entries, query); err != nil {
		return nil, fmt.Errorf("failed to list bom entries: %w", err)
	}

	return entries, nil
}

func (r *bomRepository) ListSKUMappings(ctx context.Context) ([]domain.SKUMapping, error) {
	query := `
		SELECT id, old_sku, current_sku, brand_id, created_at
		FROM sku_mappings
		ORDER BY old_sku
	`

	var mappings []domain.SKUMapping
	if err := sqlx.SelectContext(ctx, r.db, &mappings, query); err != nil {
		return nil, fmt.Errorf("failed to list sku mappings: %w", err)
	}

	return mappings, nil
}
