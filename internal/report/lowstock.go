// Package report renders forecast output for human consumption and
// archives it to object storage.
package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/opsdash/backend-go/internal/domain"
	"github.com/rs/zerolog/log"
)

// Archiver renders low-stock reports to CSV and uploads them.
type Archiver struct {
	storage ObjectStorage
}

func NewArchiver(storage ObjectStorage) *Archiver {
	return &Archiver{storage: storage}
}

// Archive renders the report and uploads it under a timestamped key.
// Returns the object key.
func (a *Archiver) Archive(ctx context.Context, report *domain.LowStockReport) (string, error) {
	data, err := RenderCSV(report)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("low-stock/%s.csv", report.GeneratedAt.UTC().Format("2006-01-02T15-04-05"))
	if err := a.storage.Upload(ctx, key, data, "text/csv"); err != nil {
		return "", err
	}

	log.Info().Str("key", key).Int("components", report.Total()).Msg("low stock report archived")
	return key, nil
}

// RenderCSV writes the report rows in severity order: out of stock first,
// then critical, then warning.
func RenderCSV(report *domain.LowStockReport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{
		"Severity", "SKU", "Name", "Available", "On Order", "Velocity",
		"Days Remaining", "Reorder Point", "Reorder Date", "Suggested Order Qty",
	}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write report header: %w", err)
	}

	groups := []struct {
		severity string
		rows     []domain.ComponentForecast
	}{
		{"out_of_stock", report.OutOfStock},
		{"critical", report.Critical},
		{"warning", report.Warning},
	}

	for _, group := range groups {
		for _, row := range group.rows {
			record := []string{
				group.severity,
				row.SKU,
				row.Name,
				strconv.Itoa(row.Available),
				strconv.Itoa(row.OnOrder),
				fmt.Sprintf("%.2f", row.Velocity),
				formatDays(row.DaysRemaining),
				strconv.Itoa(row.ReorderPoint),
				formatDate(row.ReorderDate),
				strconv.Itoa(row.SuggestedOrderQuantity),
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write report row: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush report: %w", err)
	}
	return buf.Bytes(), nil
}

func formatDays(days *int) string {
	if days == nil {
		return ""
	}
	return strconv.Itoa(*days)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
