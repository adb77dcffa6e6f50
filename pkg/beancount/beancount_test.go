package beancount

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shunichi-ikebuchi/tag-ledger/pkg/pathutil"
)

func TestFormatTransaction(t *testing.T) {
	txn := Transaction{
		Date:      "2024-06-01",
		Narration: `Weekly "move"`,
		Payee:     "Checking",
		Tags:      []string{"groceries", "food"},
		Metadata:  map[string]string{"ledger-id": "abc", "kind": "transfer"},
		Postings: []Posting{
			{Account: "Assets:Bank:Savings", Amount: decimal.RequireFromString("125.50"), Currency: "USD"},
			{Account: "Assets:Bank:Checking", Amount: decimal.RequireFromString("-125.50"), Currency: "USD", Comment: "out"},
		},
	}

	got := FormatTransaction(txn)
	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, `2024-06-01 * "Checking" "Weekly \"move\"" #groceries #food`, lines[0])
	assert.Equal(t, `  kind: "transfer"`, lines[1])
	assert.Equal(t, `  ledger-id: "abc"`, lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "  Assets:Bank:Savings "))
	assert.True(t, strings.HasSuffix(lines[3], " 125.5 USD"))
	assert.Equal(t, 2+amountColumn, strings.Index(lines[3], "125.5"))
	assert.True(t, strings.HasSuffix(lines[4], "-125.5 USD ; out"))
}

func TestFormatOpen(t *testing.T) {
	assert.Equal(t, "2024-01-01 open Assets:Cash:Wallet USD\n",
		FormatOpen(Open{Date: "2024-01-01", Account: "Assets:Cash:Wallet", Currencies: []string{"USD"}}))
	assert.Equal(t, "2024-01-01 open Income:Uncategorized\n",
		FormatOpen(Open{Date: "2024-01-01", Account: "Income:Uncategorized"}))
}

func newTestRepository(t *testing.T) (*FileSystemRepository, *pathutil.PathResolver) {
	t.Helper()

	paths := pathutil.New(pathutil.Config{DataDir: t.TempDir()})
	repo := NewFileSystemRepository(paths)
	repo.now = func() time.Time { return time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC) }
	return repo, paths
}

func TestRepositoryAppendTransaction(t *testing.T) {
	repo, paths := newTestRepository(t)

	path, err := paths.GetMonthFilePath("2024-03")
	require.NoError(t, err)
	assert.NoFileExists(t, path)

	require.NoError(t, repo.AppendTransaction("2024-03", "2024-03-02 * \"a\"\n", "first"))
	require.NoError(t, repo.AppendTransaction("2024-03", "2024-03-05 * \"b\""))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"; Beancount file for 2024-03\n; Generated at 2024-07-01T12:00:00Z\n\n"+
			"; first\n2024-03-02 * \"a\"\n\n"+
			"2024-03-05 * \"b\"\n\n",
		string(data))

	assert.Error(t, repo.AppendTransaction("March", "x"))
}

func TestRepositoryEnsureMonthFileKeepsContent(t *testing.T) {
	repo, paths := newTestRepository(t)

	require.NoError(t, repo.AppendTransaction("2024-11", "2024-11-01 * \"kept\""))
	require.NoError(t, repo.EnsureMonthFile("2024-11"))

	path, err := paths.GetMonthFilePath("2024-11")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "kept")
}

func TestRepositoryWriteAccounts(t *testing.T) {
	repo, paths := newTestRepository(t)

	require.NoError(t, repo.WriteAccounts([]Open{
		{Date: "2024-01-01", Account: "Assets:Bank:Checking", Currencies: []string{"USD"}},
	}))
	require.NoError(t, repo.WriteAccounts([]Open{
		{Date: "2024-01-01", Account: "Assets:Cash:Wallet", Currencies: []string{"EUR"}},
	}))

	data, err := os.ReadFile(paths.GetAccountsFilePath())
	require.NoError(t, err)
	assert.Contains(t, string(data), "open Assets:Cash:Wallet EUR")
	assert.NotContains(t, string(data), "Checking", "accounts file is replaced, not appended")
}
