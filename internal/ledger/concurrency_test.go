package ledger

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shunichi-ikebuchi/tag-ledger/internal/models"
)

func TestConcurrentTransactionCreates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	groceries := f.tag(t, "groceries")
	a := f.account(t, "A", "bank")
	b := f.account(t, "B", "cash")

	const workers = 32
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.ledger.Transactions.Create(ctx, models.CreateTransactionRequest{
				Kind:            models.KindTransfer,
				Amount:          decimal.NewFromInt(int64(i + 1)),
				FromAccountID:   ptr(a.ID),
				ToAccountID:     ptr(b.ID),
				TransactionDate: day("2024-06-01"),
				TagIDs:          []string{groceries.ID},
			})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "worker %d", i)
	}
	assert.Equal(t, workers, f.count(t, "transactions"))
	assert.Equal(t, workers, f.count(t, "transaction_tags"))

	views, err := f.ledger.Transactions.List(ctx, models.TransactionFilter{AccountID: a.ID})
	require.NoError(t, err)
	assert.Len(t, views, workers)
}

func TestConcurrentTagCreatesSameName(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	const workers = 16
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.ledger.Tags.Create(ctx, models.CreateTagRequest{Name: "rent"})
		}(i)
	}
	wg.Wait()

	created := 0
	for i, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.ErrorIs(t, err, ErrConflict, "worker %d", i)
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, f.count(t, "tags"))
}

func TestIsUniqueViolation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.tag(t, "utilities")

	_, err := f.conn.ExecContext(ctx,
		`INSERT INTO tags (id, name, color, created_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)`,
		"dup", "utilities", "#000000",
	)
	require.Error(t, err)
	assert.True(t, isUniqueViolation(err))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert tag: %w", err)))

	_, err = f.conn.ExecContext(ctx,
		`INSERT INTO account_tags (account_id, tag_id) VALUES (?, ?)`, "missing", "missing",
	)
	require.Error(t, err)
	assert.False(t, isUniqueViolation(err))
	assert.False(t, isUniqueViolation(assert.AnError))
	assert.False(t, isUniqueViolation(nil))
}
