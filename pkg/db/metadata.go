package db

import (
	"context"
	"database/sql"
	"fmt"
)

// MetadataKeyLastSeed records when the seed command last completed.
const MetadataKeyLastSeed = "last_seed"

// Stats represents ledger row counts.
type Stats struct {
	TotalTags         int
	TotalAccounts     int
	TotalTransactions int
	LastSeed          sql.NullString
}

// GetStats retrieves ledger statistics.
func GetStats(ctx context.Context, q Querier) (*Stats, error) {
	var stats Stats

	counts := []struct {
		table string
		dest  *int
	}{
		{"tags", &stats.TotalTags},
		{"accounts", &stats.TotalAccounts},
		{"transactions", &stats.TotalTransactions},
	}
	for _, c := range counts {
		if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+c.table).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("failed to get %s count: %w", c.table, err)
		}
	}

	err := q.QueryRowContext(ctx, `SELECT value FROM ledger_metadata WHERE key = ?`, MetadataKeyLastSeed).Scan(&stats.LastSeed)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get last seed time: %w", err)
	}

	return &stats, nil
}

// GetMetadata retrieves a metadata value.
// A missing key yields an empty string.
func GetMetadata(ctx context.Context, q Querier, key string) (string, error) {
	var value string
	err := q.QueryRowContext(ctx, `SELECT value FROM ledger_metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get metadata: %w", err)
	}

	return value, nil
}

// SetMetadata sets a metadata value.
func SetMetadata(ctx context.Context, q Querier, key, value string) error {
	query := `
		INSERT INTO ledger_metadata (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`

	if _, err := q.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set metadata: %w", err)
	}

	return nil
}
