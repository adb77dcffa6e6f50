package seed

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shunichi-ikebuchi/tag-ledger/internal/ledger"
	"github.com/shunichi-ikebuchi/tag-ledger/internal/models"
	"github.com/shunichi-ikebuchi/tag-ledger/pkg/db"
)

const sampleFixture = `
tags:
  - name: groceries
    color: "#10B981"
  - name: savings
accounts:
  - name: Checking
    type: bank
    currency: usd
    balance: "1500.00"
    tags: [savings]
  - name: Wallet
    type: cash
transactions:
  - type: deposit
    amount: "2000"
    to: Checking
    date: 2024-05-01
    description: salary
  - type: transfer
    amount: "40.50"
    from: Checking
    to: Wallet
    date: "2024-05-02T09:00:00"
  - type: expense
    amount: "12.30"
    from: Wallet
    date: 2024-05-03
    tags: [groceries]
`

func newLoader(t *testing.T) (*Loader, *ledger.Ledger) {
	t.Helper()

	conn, err := db.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	l := ledger.New(conn, ledger.Options{Timeout: 2 * time.Second, Logger: logger})
	return NewLoader(l, logger), l
}

func TestParse(t *testing.T) {
	fx, err := Parse([]byte(sampleFixture))
	require.NoError(t, err)

	require.Len(t, fx.Tags, 2)
	assert.Equal(t, "#10B981", fx.Tags[0].Color)
	require.Len(t, fx.Accounts, 2)
	assert.Equal(t, []string{"savings"}, fx.Accounts[0].Tags)
	require.Len(t, fx.Transactions, 3)
	assert.Equal(t, "2024-05-01", fx.Transactions[0].Date)
	assert.Equal(t, "Wallet", fx.Transactions[2].From)

	_, err = Parse([]byte("tags: [unclosed"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleFixture), 0o644))

	fx, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, fx.Accounts, 2)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	loader, l := newLoader(t)

	fx, err := Parse([]byte(sampleFixture))
	require.NoError(t, err)

	result, err := loader.Apply(ctx, fx)
	require.NoError(t, err)
	assert.Equal(t, &Result{Tags: 2, Accounts: 2, Transactions: 3}, result)

	accounts, err := l.Accounts.List(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	byName := map[string]models.Account{}
	for _, a := range accounts {
		byName[a.Name] = a
	}
	assert.Equal(t, "USD", byName["Checking"].Currency)
	assert.Equal(t, "1500", byName["Checking"].Balance.String())
	require.Len(t, byName["Checking"].Tags, 1)
	assert.Equal(t, "savings", byName["Checking"].Tags[0].Name)

	views, err := l.Transactions.List(ctx, models.TransactionFilter{AccountID: byName["Wallet"].ID})
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, models.KindExpense, views[0].Kind)
	require.Len(t, views[0].Tags, 1)
	assert.Equal(t, "groceries", views[0].Tags[0].Name)
	assert.Equal(t, models.KindTransfer, views[1].Kind)

	// Tags are reused on a second run; accounts are not deduplicated.
	again, err := loader.Apply(ctx, &Fixture{Tags: fx.Tags})
	require.NoError(t, err)
	assert.Equal(t, 2, again.TagsReused)
	assert.Zero(t, again.Tags)
}

func TestApplyUnknownReferences(t *testing.T) {
	tests := []struct {
		name string
		fx   Fixture
	}{
		{"unknown account tag", Fixture{
			Accounts: []AccountFixture{{Name: "A", Type: "bank", Tags: []string{"missing"}}},
		}},
		{"unknown transaction account", Fixture{
			Transactions: []TransactionFixture{{Type: "deposit", Amount: "1", To: "missing", Date: "2024-01-01"}},
		}},
		{"bad amount", Fixture{
			Accounts:     []AccountFixture{{Name: "A", Type: "bank"}},
			Transactions: []TransactionFixture{{Type: "deposit", Amount: "lots", To: "A", Date: "2024-01-01"}},
		}},
		{"ledger rejects", Fixture{
			Accounts:     []AccountFixture{{Name: "A", Type: "bank"}},
			Transactions: []TransactionFixture{{Type: "expense", Amount: "1", To: "A", Date: "2024-01-01"}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader, l := newLoader(t)

			_, err := loader.Apply(context.Background(), &tt.fx)
			require.Error(t, err)

			views, err := l.Transactions.List(context.Background(), models.TransactionFilter{})
			require.NoError(t, err)
			assert.Empty(t, views)
		})
	}
}

func TestApplyLedgerErrorKindSurvives(t *testing.T) {
	loader, _ := newLoader(t)

	_, err := loader.Apply(context.Background(), &Fixture{
		Accounts: []AccountFixture{{Name: "A", Type: "bank", Currency: "NOPE"}},
	})
	assert.ErrorIs(t, err, ledger.ErrValidation)
}
