// internal/repository/postgres/stock_repository.go
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

type stockRepository struct {
	db *DB
}

func NewStockRepository(db *DB) repository.StockRepository {
	return &stockRepository{db: db}
}

func (r *stockRepository) GetByComponent(ctx context.Context, componentID int64) (*domain.StockLevel, error) {
	query := `
		SELECT id, component_id, on_hand, reserved, on_order,
		       last_movement_at, last_count_date, updated_at
		FROM stock_levels
		WHERE component_id = $1
	`

	var level domain.StockLevel
	if err := sqlx.GetContext(ctx, r.db, &level, query, componentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("stock level for component", componentID)
		}
		return nil, fmt.Errorf("failed to get stock level: %w", err)
	}

	return &level, nil
}

func (r *stockRepository) ListAll(ctx context.Context) (map[int64]*domain.StockLevel, error) {
	query := `
		SELECT id, component_id, on_hand, reserved, on_order,
		       last_movement_at, last_count_date, updated_at
		FROM stock_levels
	`

	var levels []*domain.StockLevel
	if err := sqlx.SelectContext(ctx, r.db, &levels, query); err != nil {
		return nil, fmt.Errorf("failed to list stock levels: %w", err)
	}

	byComponent := make(map[int64]*domain.StockLevel, len(levels))
	for _, level := range levels {
		byComponent[level.ComponentID] = level
	}
	return byComponent, nil
}

// Adjust applies a count or adjust mutation and appends the matching ledger
// row in one transaction. The stock row is locked for the duration so
// concurrent adjustments against the same component serialize.
func (r *stockRepository) Adjust(ctx context.Context, adj repository.Adjustment) (*repository.AdjustmentResult, error) {
	var result repository.AdjustmentResult

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := ensureStockLevel(ctx, tx, adj.ComponentID); err != nil {
			return err
		}

		current, err := lockOnHand(ctx, tx, adj.ComponentID)
		if err != nil {
			return err
		}

		var newOnHand int
		switch adj.Type {
		case domain.TransactionCount:
			newOnHand = adj.Quantity
		default:
			newOnHand = current + adj.Quantity
		}

		if newOnHand < 0 {
			return &domain.NegativeStockError{
				ComponentID: adj.ComponentID,
				Current:     current,
				Requested:   -adj.Quantity,
			}
		}

		update := `
			UPDATE stock_levels
			SET on_hand = $2, last_movement_at = NOW(), updated_at = NOW()
			WHERE component_id = $1
		`
		if adj.Type == domain.TransactionCount {
			update = `
				UPDATE stock_levels
				SET on_hand = $2, last_movement_at = NOW(), last_count_date = NOW(), updated_at = NOW()
				WHERE component_id = $1
			`
		}
		if _, err := tx.ExecContext(ctx, update, adj.ComponentID, newOnHand); err != nil {
			return fmt.Errorf("failed to update stock level: %w", err)
		}

		if err := insertStockTransaction(ctx, tx, domain.StockTransaction{
			ComponentID:     adj.ComponentID,
			TransactionType: adj.Type,
			Quantity:        newOnHand - current,
			QuantityBefore:  current,
			QuantityAfter:   newOnHand,
			ReferenceType:   "manual",
			Notes:           adj.Notes,
		}); err != nil {
			return err
		}

		result = repository.AdjustmentResult{
			ComponentID:    adj.ComponentID,
			PreviousOnHand: current,
			NewOnHand:      newOnHand,
			Delta:          newOnHand - current,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *stockRepository) ListTransactions(ctx context.Context, componentID int64, limit, offset int) ([]*domain.StockTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, component_id, transaction_type, quantity, quantity_before,
		       quantity_after, reference_type, reference_id, notes, created_at
		FROM stock_transactions
		WHERE component_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	var transactions []*domain.StockTransaction
	if err := sqlx.SelectContext(ctx, r.db, &transactions, query, componentID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list stock transactions: %w", err)
	}

	return transactions, nil
}

// ensureStockLevel lazily creates the zero-baseline stock row on first
// movement.
func ensureStockLevel(ctx context.Context, tx *sql.Tx, componentID int64) error {
	query := `
		INSERT INTO stock_levels (component_id, on_hand, reserved, on_order, updated_at)
		VALUES ($1, 0, 0, 0, NOW())
		ON CONFLICT (component_id) DO NOTHING
	`
	if _, err := tx.ExecContext(ctx, query, componentID); err != nil {
		return fmt.Errorf("failed to ensure stock level: %w", err)
	}
	return nil
}

func lockOnHand(ctx context.Context, tx *sql.Tx, componentID int64) (int, error) {
	var onHand int
	err := tx.QueryRowContext(ctx,
		`SELECT on_hand FROM stock_levels WHERE component_id = $1 FOR UPDATE`,
		componentID,
	).Scan(&onHand)
	if err != nil {
		return 0, fmt.Errorf("failed to lock stock level: %w", err)
	}
	return onHand, nil
}

// applyOnOrderDelta adjusts on_order atomically, floored at zero.
func applyOnOrderDelta(ctx context.Context, tx *sql.Tx, componentID int64, delta int) error {
	query := `
		UPDATE stock_levels
		SET on_order = GREATEST(on_order + $2, 0), updated_at = NOW()
		WHERE component_id = $1
	`
	if _, err := tx.ExecContext(ctx, query, componentID, delta); err != nil {
		return fmt.Errorf("failed to apply on_order delta: %w", err)
	}
	return nil
}

func insertStockTransaction(ctx context.Context, tx *sql.Tx, txn domain.StockTransaction) error {
	query := `
		INSERT INTO stock_transactions (
			component_id, transaction_type, quantity, quantity_before,
			quantity_after, reference_type, reference_id, notes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`
	_, err := tx.ExecContext(ctx, query,
		txn.ComponentID,
		txn.TransactionType,
		txn.Quantity,
		txn.QuantityBefore,
		txn.QuantityAfter,
		txn.ReferenceType,
		txn.ReferenceID,
		txn.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to insert stock transaction: %w", err)
	}
	return nil
}
