// internal/repository/postgres/po_repository.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/opsdash/backend-go/internal/domain"
	"github.com/opsdash/backend-go/internal/repository"
)

type poRepository struct {
	db *DB
}

func NewPORepository(db *DB) repository.PORepository {
	return &poRepository{db: db}
}

// Create inserts the header and line items as one transaction. The PO
// number sequence is serialized per calendar month with an advisory lock so
// concurrent creations never collide.
func (r *poRepository) Create(ctx context.Context, po *domain.PurchaseOrder) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		number, err := allocatePONumber(ctx, tx, time.Now())
		if err != nil {
			return err
		}
		po.PONumber = number
		if po.Status == "" {
			po.Status = domain.StatusDraft
		}
		po.RecalculateTotals()

		header := `
			INSERT INTO purchase_orders (
				po_number, supplier_id, brand_id, status, ordered_date,
				expected_date, subtotal, shipping_cost, tax, total,
				shipping_address, notes, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
			RETURNING id, created_at, updated_at
		`
		err = tx.QueryRowContext(ctx, header,
			po.PONumber,
			po.SupplierID,
			po.BrandID,
			po.Status,
			po.OrderedDate,
			po.ExpectedDate,
			po.Subtotal,
			po.ShippingCost,
			po.Tax,
			po.Total,
			po.ShippingAddress,
			po.Notes,
		).Scan(&po.ID, &po.CreatedAt, &po.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert purchase order: %w", err)
		}

		itemQuery := `
			INSERT INTO purchase_order_items (
				purchase_order_id, component_id, quantity_ordered,
				quantity_received, unit_price, line_total
			) VALUES ($1, $2, $3, 0, $4, $5)
			RETURNING id
		`
		stmt, err := tx.PrepareContext(ctx, itemQuery)
		if err != nil {
			return fmt.Errorf("failed to prepare item statement: %w", err)
		}
		defer stmt.Close()

		for i := range po.Items {
			item := &po.Items[i]
			item.PurchaseOrderID = po.ID
			err := stmt.QueryRowContext(ctx,
				po.ID,
				item.ComponentID,
				item.QuantityOrdered,
				item.UnitPrice,
				item.LineTotal,
			).Scan(&item.ID)
			if err != nil {
				return fmt.Errorf("failed to insert purchase order item: %w", err)
			}
		}

		return nil
	})
}

// allocatePONumber returns the next PO-YYYYMM#### number for the month of
// now. An advisory transaction lock on the month prefix serializes
// concurrent allocations.
func allocatePONumber(ctx context.Context, tx *sql.Tx, now time.Time) (string, error) {
	prefix := "PO-" + now.Format("200601")

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, prefix); err != nil {
		return "", fmt.Errorf("failed to lock po number sequence: %w", err)
	}

	var maxSeq int
	err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(SUBSTRING(po_number FROM 10)::int), 0)
		FROM purchase_orders
		WHERE po_number LIKE $1 || '%'
	`, prefix).Scan(&maxSeq)
	if err != nil {
		return "", fmt.Errorf("failed to read po number sequence: %w", err)
	}

	return fmt.Sprintf("%s%04d", prefix, maxSeq+1), nil
}

func (r *poRepository) GetByID(ctx context.Context, id int64) (*domain.PurchaseOrder, error) {
	query := `
		SELECT p.id, p.po_number, p.supplier_id, s.name AS supplier_name,
		       p.brand_id, p.status, p.ordered_date, p.expected_date,
		       p.received_date, p.subtotal, p.shipping_cost, p.tax, p.total,
		       p.shipping_address, p.notes, p.created_at, p.updated_at
		FROM purchase_orders p
		JOIN suppliers s ON p.supplier_id = s.id
		WHERE p.id = $1
	`

	var po domain.PurchaseOrder
	if err := sqlx.GetContext(ctx, r.db, &po, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("purchase order", id)
		}
		return nil, fmt.Errorf("failed to get purchase order: %w", err)
	}

	items, err := r.listItems(ctx, id)
	if err != nil {
		return nil, err
	}
	po.Items = items

	return &po, nil
}

func (r *poRepository) listItems(ctx context.Context, poID int64) ([]domain.PurchaseOrderItem, error) {
	query := `
		SELECT i.id, i.purchase_order_id, i.component_id, c.sku AS component_sku,
		       i.quantity_ordered, i.quantity_received, i.unit_price, i.line_total
		FROM purchase_order_items i
		JOIN components c ON i.component_id = c.id
		WHERE i.purchase_order_id = $1
		ORDER BY i.id
	`

	var items []domain.PurchaseOrderItem
	if err := sqlx.SelectContext(ctx, r.db, &items, query, poID); err != nil {
		return nil, fmt.Errorf("failed to list purchase order items: %w", err)
	}
	return items, nil
}

func (r *poRepository) List(ctx context.Context, filter repository.POFilter) ([]*domain.PurchaseOrder, int, error) {
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	where := `WHERE ($1 = '' OR p.status = $1) AND ($2 = 0 OR p.supplier_id = $2)`

	var total int
	countQuery := `SELECT COUNT(*) FROM purchase_orders p ` + where
	if err := r.db.QueryRowContext(ctx, countQuery, string(filter.Status), filter.SupplierID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count purchase orders: %w", err)
	}

	query := `
		SELECT p.id, p.po_number, p.supplier_id, s.name AS supplier_name,
		       p.brand_id, p.status, p.ordered_date, p.expected_date,
		       p.received_date, p.subtotal, p.shipping_cost, p.tax, p.total,
		       p.shipping_address, p.notes, p.created_at, p.updated_at
		FROM purchase_orders p
		JOIN suppliers s ON p.supplier_id = s.id
	` + where + `
		ORDER BY p.po_number DESC
		LIMIT $3 OFFSET $4
	`

	var orders []*domain.PurchaseOrder
	err := sqlx.SelectContext(ctx, r.db, &orders, query,
		string(filter.Status), filter.SupplierID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list purchase orders: %w", err)
	}

	return orders, total, nil
}

// TransitionStatus validates the requested move against the state machine
// and applies the on_order side effects in the same transaction. The header
// row is locked first so concurrent transitions serialize per order.
func (r *poRepository) TransitionStatus(ctx context.Context, id int64, target domain.POStatus) (*domain.PurchaseOrder, error) {
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		po, err := lockPurchaseOrder(ctx, tx, id)
		if err != nil {
			return err
		}

		if !po.Status.CanTransitionTo(target) {
			return &domain.StateTransitionError{From: po.Status, To: target}
		}

		for _, delta := range domain.OnOrderDeltasForTransition(po, target) {
			if err := ensureStockLevel(ctx, tx, delta.ComponentID); err != nil {
				return err
			}
			if err := applyOnOrderDelta(ctx, tx, delta.ComponentID, delta.OnOrder); err != nil {
				return err
			}
		}

		update := `UPDATE purchase_orders SET status = $2, updated_at = NOW()`
		switch target {
		case domain.StatusSent:
			update += `, ordered_date = COALESCE(ordered_date, NOW())`
		case domain.StatusReceived:
			update += `, received_date = NOW()`
		case domain.StatusDraft:
			// Re-opening a cancelled order resets its dates.
			update += `, ordered_date = NULL, received_date = NULL`
		}
		update += ` WHERE id = $1`

		if _, err := tx.ExecContext(ctx, update, id, target); err != nil {
			return fmt.Errorf("failed to update purchase order status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, id)
}

// ReceiveItems applies a receiving batch: item quantities, stock levels and
// ledger rows move together, then the order auto-transitions to partial or
// received based on line completeness.
func (r *poRepository) ReceiveItems(ctx context.Context, id int64, receipts []repository.ReceiptLine) (*domain.PurchaseOrder, error) {
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		po, err := lockPurchaseOrder(ctx, tx, id)
		if err != nil {
			return err
		}
		if !po.Status.AllowsReceiving() {
			return domain.NewValidationError("status", "cannot receive items on a %s purchase order", po.Status)
		}

		items := po.Items
		byID := make(map[int64]*domain.PurchaseOrderItem, len(items))
		for i := range items {
			byID[items[i].ID] = &items[i]
		}

		for _, receipt := range receipts {
			item, ok := byID[receipt.ItemID]
			if !ok {
				return domain.NewNotFoundError("purchase order item", receipt.ItemID)
			}
			if receipt.Quantity <= 0 {
				return domain.NewValidationError("quantity", "received quantity must be positive, got %d", receipt.Quantity)
			}

			item.QuantityReceived += receipt.Quantity
			if _, err := tx.ExecContext(ctx,
				`UPDATE purchase_order_items SET quantity_received = $2 WHERE id = $1`,
				item.ID, item.QuantityReceived,
			); err != nil {
				return fmt.Errorf("failed to update item received quantity: %w", err)
			}

			if err := ensureStockLevel(ctx, tx, item.ComponentID); err != nil {
				return err
			}
			before, err := lockOnHand(ctx, tx, item.ComponentID)
			if err != nil {
				return err
			}
			after := before + receipt.Quantity

			receiveUpdate := `
				UPDATE stock_levels
				SET on_hand = $2,
				    on_order = GREATEST(on_order - $3, 0),
				    last_movement_at = NOW(),
				    updated_at = NOW()
				WHERE component_id = $1
			`
			if _, err := tx.ExecContext(ctx, receiveUpdate, item.ComponentID, after, receipt.Quantity); err != nil {
				return fmt.Errorf("failed to apply receipt to stock level: %w", err)
			}

			poID := id
			if err := insertStockTransaction(ctx, tx, domain.StockTransaction{
				ComponentID:     item.ComponentID,
				TransactionType: domain.TransactionReceive,
				Quantity:        receipt.Quantity,
				QuantityBefore:  before,
				QuantityAfter:   after,
				ReferenceType:   "purchase_order",
				ReferenceID:     &poID,
			}); err != nil {
				return err
			}
		}

		derived := domain.DeriveReceivingStatus(items)
		switch {
		case derived == domain.StatusReceived && po.Status != domain.StatusReceived:
			if _, err := tx.ExecContext(ctx,
				`UPDATE purchase_orders SET status = $2, received_date = NOW(), updated_at = NOW() WHERE id = $1`,
				id, domain.StatusReceived,
			); err != nil {
				return fmt.Errorf("failed to complete purchase order: %w", err)
			}
		case derived == domain.StatusPartial && po.Status != domain.StatusPartial && po.Status != domain.StatusReceived:
			if _, err := tx.ExecContext(ctx,
				`UPDATE purchase_orders SET status = $2, updated_at = NOW() WHERE id = $1`,
				id, domain.StatusPartial,
			); err != nil {
				return fmt.Errorf("failed to mark purchase order partial: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, id)
}

// Delete removes the line items and then the header atomically. Only draft
// and cancelled orders may be deleted; the service validates status first,
// and the check is repeated here under the row lock.
func (r *poRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		po, err := lockPurchaseOrder(ctx, tx, id)
		if err != nil {
			return err
		}
		if !po.Status.AllowsDeletion() {
			return domain.NewValidationError("status", "cannot delete a %s purchase order", po.Status)
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM purchase_order_items WHERE purchase_order_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete purchase order items: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM purchase_orders WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete purchase order: %w", err)
		}
		return nil
	})
}

func (r *poRepository) ListSuppliers(ctx context.Context) ([]*domain.Supplier, error) {
	query := `
		SELECT id, name, COALESCE(email, '') AS email, COALESCE(phone, '') AS phone,
		       created_at, updated_at
		FROM suppliers
		ORDER BY name
	`

	var suppliers []*domain.Supplier
	if err := sqlx.SelectContext(ctx, r.db, &suppliers, query); err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}

	return suppliers, nil
}

// lockPurchaseOrder loads the header with its items under FOR UPDATE.
func lockPurchaseOrder(ctx context.Context, tx *sql.Tx, id int64) (*domain.PurchaseOrder, error) {
	var po domain.PurchaseOrder
	err := tx.QueryRowContext(ctx, `
		SELECT id, po_number, supplier_id, status
		FROM purchase_orders
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&po.ID, &po.PONumber, &po.SupplierID, &po.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("purchase order", id)
		}
		return nil, fmt.Errorf("failed to lock purchase order: %w", err)
	}

	items, err := lockItems(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	po.Items = items

	return &po, nil
}

func lockItems(ctx context.Context, tx *sql.Tx, poID int64) ([]domain.PurchaseOrderItem, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, purchase_order_id, component_id, quantity_ordered, quantity_received
		FROM purchase_order_items
		WHERE purchase_order_id = $1
		ORDER BY id
		FOR UPDATE
	`, poID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock purchase order items: %w", err)
	}
	defer rows.Close()

	var items []domain.PurchaseOrderItem
	for rows.Next() {
		var item domain.PurchaseOrderItem
		if err := rows.Scan(&item.ID, &item.PurchaseOrderID, &item.ComponentID,
			&item.QuantityOrdered, &item.QuantityReceived); err != nil {
			return nil, fmt.Errorf("failed to scan purchase order item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
