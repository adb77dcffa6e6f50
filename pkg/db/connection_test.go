package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *Connection {
	t.Helper()

	conn, err := Open(filepath.Join(t.TempDir(), "nested", "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestTransactionCommits(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)

	err := conn.Transaction(ctx, func(q Querier) error {
		return SetMetadata(ctx, q, "k", "v")
	})
	require.NoError(t, err)

	value, err := GetMetadata(ctx, conn, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", value)
}

func TestTransactionRollsBackAndKeepsError(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)
	sentinel := errors.New("second statement failed")

	err := conn.Transaction(ctx, func(q Querier) error {
		if err := SetMetadata(ctx, q, "k", "v"); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	value, err := GetMetadata(ctx, conn, "k")
	require.NoError(t, err)
	assert.Empty(t, value, "rolled back write must not be visible")
}

func TestTransactionRollsBackOnPanic(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)

	assert.Panics(t, func() {
		_ = conn.Transaction(ctx, func(q Querier) error {
			_ = SetMetadata(ctx, q, "k", "v")
			panic("boom")
		})
	})

	value, err := GetMetadata(ctx, conn, "k")
	require.NoError(t, err)
	assert.Empty(t, value)
}

func TestGetStatsEmpty(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)

	stats, err := GetStats(ctx, conn)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalTags)
	assert.Zero(t, stats.TotalAccounts)
	assert.Zero(t, stats.TotalTransactions)
	assert.False(t, stats.LastSeed.Valid)

	require.NoError(t, SetMetadata(ctx, conn, MetadataKeyLastSeed, "2024-01-01T00:00:00Z"))
	stats, err = GetStats(ctx, conn)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01T00:00:00Z", stats.LastSeed.String)
}

func TestForeignKeysEnforced(t *testing.T) {
	ctx := context.Background()
	conn := openTestDB(t)

	_, err := conn.ExecContext(ctx, `INSERT INTO account_tags (account_id, tag_id) VALUES ('missing', 'missing')`)
	assert.Error(t, err)
}
