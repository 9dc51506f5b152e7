package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// seedSuppliers upserts suppliers keyed by name.
func seedSuppliers(ctx context.Context, tx *sql.Tx, dataDir string) error {
	const query = `
		INSERT INTO suppliers (name, email, phone, address, notes)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO UPDATE SET
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			address = EXCLUDED.address,
			notes = EXCLUDED.notes,
			updated_at = NOW()
	`
	return forEachRecord(ctx, tx, filepath.Join(dataDir, "suppliers.csv"), "suppliers", query,
		func(record map[string]string) ([]interface{}, error) {
			return []interface{}{
				record["name"],
				nullIfEmpty(record["email"]),
				nullIfEmpty(record["phone"]),
				nullIfEmpty(record["address"]),
				nullIfEmpty(record["notes"]),
			}, nil
		})
}

// seedComponents upserts components keyed by SKU, resolving supplier by name.
func seedComponents(ctx context.Context, tx *sql.Tx, dataDir string) error {
	supplierIDs, err := loadNameIDMap(ctx, tx, "suppliers")
	if err != nil {
		return err
	}

	const query = `
		INSERT INTO components (
			sku, name, category, supplier_id, lead_time_days,
			safety_days, minimum_order_quantity, is_active
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)
		ON CONFLICT (sku) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			supplier_id = EXCLUDED.supplier_id,
			lead_time_days = EXCLUDED.lead_time_days,
			safety_days = EXCLUDED.safety_days,
			minimum_order_quantity = EXCLUDED.minimum_order_quantity,
			updated_at = NOW()
	`
	return forEachRecord(ctx, tx, filepath.Join(dataDir, "components.csv"), "components", query,
		func(record map[string]string) ([]interface{}, error) {
			var supplierID sql.NullInt64
			if name := strings.TrimSpace(record["supplier_name"]); name != "" {
				id, ok := supplierIDs[name]
				if !ok {
					return nil, fmt.Errorf("supplier %q not found", name)
				}
				supplierID = sql.NullInt64{Int64: id, Valid: true}
			}

			leadTime, err := parseIntDefault(record["lead_time_days"], 14)
			if err != nil {
				return nil, err
			}
			safetyDays, err := parseIntDefault(record["safety_days"], 7)
			if err != nil {
				return nil, err
			}
			minOrderQty, err := parseIntDefault(record["minimum_order_quantity"], 0)
			if err != nil {
				return nil, err
			}

			return []interface{}{
				strings.ToUpper(strings.TrimSpace(record["sku"])),
				record["name"],
				record["category"],
				supplierID,
				leadTime,
				safetyDays,
				minOrderQty,
			}, nil
		})
}

// seedBOMEntries upserts product-to-component mappings, resolving components
// by SKU.
func seedBOMEntries(ctx context.Context, tx *sql.Tx, dataDir string) error {
	componentIDs, err := loadComponentSKUMap(ctx, tx)
	if err != nil {
		return err
	}

	const query = `
		INSERT INTO bom_entries (product_sku, component_id, quantity_per_unit)
		VALUES ($1, $2, $3)
		ON CONFLICT (product_sku, component_id) DO UPDATE SET
			quantity_per_unit = EXCLUDED.quantity_per_unit,
			updated_at = NOW()
	`
	return forEachRecord(ctx, tx, filepath.Join(dataDir, "bom_entries.csv"), "bom_entries", query,
		func(record map[string]string) ([]interface{}, error) {
			componentSKU := strings.ToUpper(strings.TrimSpace(record["component_sku"]))
			componentID, ok := componentIDs[componentSKU]
			if !ok {
				return nil, fmt.Errorf("component %q not found", componentSKU)
			}

			qty, err := strconv.ParseFloat(strings.TrimSpace(record["quantity_per_unit"]), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid quantity_per_unit: %w", err)
			}

			return []interface{}{
				strings.ToUpper(strings.TrimSpace(record["product_sku"])),
				componentID,
				qty,
			}, nil
		})
}

// seedSKUMappings upserts legacy-to-current SKU aliases.
func seedSKUMappings(ctx context.Context, tx *sql.Tx, dataDir string) error {
	const query = `
		INSERT INTO sku_mappings (old_sku, current_sku, brand_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (old_sku) DO UPDATE SET
			current_sku = EXCLUDED.current_sku,
			brand_id = EXCLUDED.brand_id
	`
	return forEachRecord(ctx, tx, filepath.Join(dataDir, "sku_mappings.csv"), "sku_mappings", query,
		func(record map[string]string) ([]interface{}, error) {
			var brandID sql.NullInt64
			if raw := strings.TrimSpace(record["brand_id"]); raw != "" {
				id, err := strconv.ParseInt(raw, 10, 64)
				if err != nil {
					return nil, fmt.Errorf("invalid brand_id: %w", err)
				}
				brandID = sql.NullInt64{Int64: id, Valid: true}
			}

			return []interface{}{
				strings.ToUpper(strings.TrimSpace(record["old_sku"])),
				strings.ToUpper(strings.TrimSpace(record["current_sku"])),
				brandID,
			}, nil
		})
}

// seedOrderLineItems loads historical order lines used for velocity
// estimation.
func seedOrderLineItems(ctx context.Context, tx *sql.Tx, dataDir string) error {
	const query = `
		INSERT INTO order_line_items (order_reference, sku, quantity, brand_id, order_date, is_excluded)
		VALUES ($1, $2, $3, $4, $5, FALSE)
		ON CONFLICT DO NOTHING
	`
	return forEachRecord(ctx, tx, filepath.Join(dataDir, "order_line_items.csv"), "order_line_items", query,
		func(record map[string]string) ([]interface{}, error) {
			qty, err := strconv.Atoi(strings.TrimSpace(record["quantity"]))
			if err != nil {
				return nil, fmt.Errorf("invalid quantity: %w", err)
			}

			var brandID sql.NullInt64
			if raw := strings.TrimSpace(record["brand_id"]); raw != "" {
				id, err := strconv.ParseInt(raw, 10, 64)
				if err != nil {
					return nil, fmt.Errorf("invalid brand_id: %w", err)
				}
				brandID = sql.NullInt64{Int64: id, Valid: true}
			}

			return []interface{}{
				record["order_reference"],
				strings.ToUpper(strings.TrimSpace(record["sku"])),
				qty,
				brandID,
				record["order_date"],
			}, nil
		})
}

// forEachRecord streams a CSV file through a prepared statement. Records are
// addressed by header name so column order in the file does not matter.
func forEachRecord(ctx context.Context, tx *sql.Tx, filePath, tableName, query string,
	buildArgs func(record map[string]string) ([]interface{}, error)) error {
	log.Printf("Seeding %s from %s\n", tableName, filePath)

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare %s statement: %w", tableName, err)
	}
	defer stmt.Close()

	rowCount := 0
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("failed to read CSV record: %w", err)
		}

		named := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				named[col] = record[i]
			}
		}

		args, err := buildArgs(named)
		if err != nil {
			return fmt.Errorf("row %d: %w", rowCount+2, err)
		}

		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", tableName, err)
		}

		rowCount++
		if rowCount%5000 == 0 {
			log.Printf("Seeded %d %s rows...", rowCount, tableName)
		}
	}

	log.Printf("Successfully seeded %s (%d records)\n", tableName, rowCount)
	return nil
}

func parseIntDefault(value string, fallback int) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value %q: %w", value, err)
	}
	return n, nil
}

func loadNameIDMap(ctx context.Context, tx *sql.Tx, tableName string) (map[string]int64, error) {
	query := fmt.Sprintf("SELECT name, id FROM %s", tableName)
	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s names: %w", tableName, err)
	}
	defer rows.Close()

	result := make(map[string]int64)
	for rows.Next() {
		var (
			name string
			id   int64
		)
		if err := rows.Scan(&name, &id); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", tableName, err)
		}
		result[name] = id
	}
	return result, rows.Err()
}

func loadComponentSKUMap(ctx context.Context, tx *sql.Tx) (map[string]int64, error) {
	rows, err := tx.QueryContext(ctx, "SELECT sku, id FROM components")
	if err != nil {
		return nil, fmt.Errorf("failed to load component SKUs: %w", err)
	}
	defer rows.Close()

	result := make(map[string]int64)
	for rows.Next() {
		var (
			sku string
			id  int64
		)
		if err := rows.Scan(&sku, &id); err != nil {
			return nil, fmt.Errorf("failed to scan component row: %w", err)
		}
		result[sku] = id
	}
	return result, rows.Err()
}
