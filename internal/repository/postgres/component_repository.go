// internal/repository/postgres/component_repository.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/opsdash/backend-go/internal/domain"
	"github.com/opsdash/backend-go/internal/repository"
)

type componentRepository struct {
	db *DB
}

func NewComponentRepository(db *DB) repository.ComponentRepository {
	return &componentRepository{db: db}
}

const componentColumns = `
	id, sku, name, category, supplier_id, lead_time_days, safety_days,
	minimum_order_quantity, is_active, created_at, updated_at`

func (r *componentRepository) Create(ctx context.Context, component *domain.Component) error {
	query := `
		INSERT INTO components (
			sku, name, category, supplier_id, lead_time_days, safety_days,
			minimum_order_quantity, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		component.SKU,
		component.Name,
		component.Category,
		component.SupplierID,
		component.LeadTimeDays,
		component.SafetyDays,
		component.MinimumOrderQty,
		component.IsActive,
	).Scan(&component.ID, &component.CreatedAt, &component.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert component: %w", err)
	}

	return nil
}

func (r *componentRepository) Update(ctx context.Context, component *domain.Component) error {
	query := `
		UPDATE components SET
			sku = $2, name = $3, category = $4, supplier_id = $5,
			lead_time_days = $6, safety_days = $7, minimum_order_quantity = $8,
			is_active = $9, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		component.ID,
		component.SKU,
		component.Name,
		component.Category,
		component.SupplierID,
		component.LeadTimeDays,
		component.SafetyDays,
		component.MinimumOrderQty,
		component.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to update component: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		return domain.NewNotFoundError("component", component.ID)
	}

	return nil
}

func (r *componentRepository) GetByID(ctx context.Context, id int64) (*domain.Component, error) {
	query := `SELECT` + componentColumns + ` FROM components WHERE id = $1`

	var component domain.Component
	if err := sqlx.GetContext(ctx, r.db, &component, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("component", id)
		}
		return nil, fmt.Errorf("failed to get component: %w", err)
	}

	return &component, nil
}

func (r *componentRepository) GetBySKU(ctx context.Context, skuCode string) (*domain.Component, error) {
	query := `SELECT` + componentColumns + ` FROM components WHERE sku = $1`

	var component domain.Component
	if err := sqlx.GetContext(ctx, r.db, &component, query, skuCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "component"}
		}
		return nil, fmt.Errorf("failed to get component by sku: %w", err)
	}

	return &component, nil
}

func (r *componentRepository) List(ctx context.Context, filter repository.ComponentFilter) ([]*domain.Component, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT` + componentColumns + `
		FROM components
		WHERE ($1 = '' OR sku ILIKE '%' || $1 || '%' OR name ILIKE '%' || $1 || '%')
		  AND ($2 OR is_active)
		ORDER BY sku ASC
		LIMIT $3 OFFSET $4
	`

	var components []*domain.Component
	if err := sqlx.SelectContext(ctx, r.db, &components, query, filter.Search, filter.IncludeInactive, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list components: %w", err)
	}

	return components, nil
}

func (r *componentRepository) ListActive(ctx context.Context) ([]*domain.Component, error) {
	query := `SELECT` + componentColumns + ` FROM components WHERE is_active ORDER BY sku ASC`

	var components []*domain.Component
	if err := sqlx.SelectContext(ctx, r.db, &components, query); err != nil {
		return nil, fmt.Errorf("failed to list active components: %w", err)
	}

	return components, nil
}

func (r *componentRepository) Deactivate(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE components SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate component: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		return domain.NewNotFoundError("component", id)
	}

	return nil
}
