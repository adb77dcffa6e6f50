package db

import (
	"context"
	"fmt"
)

// MetadataKeyLastExport records when the export command last completed.
const MetadataKeyLastExport = "last_export"

// ExportRecord represents a transaction written to a Beancount file.
type ExportRecord struct {
	TransactionID string
	BeancountFile string
}

// ExportHistory manages export history records.
type ExportHistory struct {
	q Querier
}

// NewExportHistory creates a new ExportHistory instance.
func NewExportHistory(q Querier) *ExportHistory {
	return &ExportHistory{q: q}
}

// RecordExport records a successful export.
func (h *ExportHistory) RecordExport(ctx context.Context, record ExportRecord) error {
	_, err := h.q.ExecContext(ctx, `
		INSERT INTO export_history (transaction_id, beancount_file, exported_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
	`, record.TransactionID, record.BeancountFile)
	if err != nil {
		return fmt.Errorf("failed to record export: %w", err)
	}

	return nil
}

// GetExportedIDs retrieves all exported transaction ids.
func (h *ExportHistory) GetExportedIDs(ctx context.Context) (map[string]bool, error) {
	rows, err := h.q.QueryContext(ctx, `SELECT transaction_id FROM export_history`)
	if err != nil {
		return nil, fmt.Errorf("failed to query exported IDs: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan exported ID: %w", err)
		}
		ids[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate exported IDs: %w", err)
	}

	return ids, nil
}

// Count returns the number of exported transactions.
func (h *ExportHistory) Count(ctx context.Context) (int, error) {
	var count int
	if err := h.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM export_history`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count exports: %w", err)
	}
	return count, nil
}
