package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/tag-ledger/internal/models"
	"github.com/shunichi-ikebuchi/tag-ledger/pkg/db"
)

// statsCmd represents the stats command.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Display ledger statistics",
	Long: `Display statistics about the ledger.

Shows:
- Total number of tags, accounts and transactions
- Balance of every account in its currency
- Last seed and export timestamps

Example:
  ledger stats`,
	Run: runStats,
}

func runStats(cmd *cobra.Command, args []string) {
	a, err := openApp()
	exitOnError(err, "failed to open ledger")
	defer a.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	exitOnError(writeStats(ctx, os.Stdout, a), "failed to get statistics")
	slog.Info("Statistics displayed successfully")
}

func writeStats(ctx context.Context, w io.Writer, a *app) error {
	stats, err := db.GetStats(ctx, a.conn)
	if err != nil {
		return err
	}
	accounts, err := a.ledger.Accounts.List(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "\n=== Ledger Statistics ===")
	fmt.Fprintf(w, "Total tags:         %d\n", stats.TotalTags)
	fmt.Fprintf(w, "Total accounts:     %d\n", stats.TotalAccounts)
	fmt.Fprintf(w, "Total transactions: %d\n", stats.TotalTransactions)

	if stats.LastSeed.Valid {
		fmt.Fprintf(w, "Last seed:          %s\n", stats.LastSeed.String)
	} else {
		fmt.Fprintf(w, "Last seed:          (never)\n")
	}

	exported, err := db.NewExportHistory(a.conn).Count(ctx)
	if err != nil {
		return err
	}
	lastExport, err := db.GetMetadata(ctx, a.conn, db.MetadataKeyLastExport)
	if err != nil {
		return err
	}
	if lastExport == "" {
		lastExport = "(never)"
	}
	fmt.Fprintf(w, "Exported:           %d\n", exported)
	fmt.Fprintf(w, "Last export:        %s\n", lastExport)

	if len(accounts) > 0 {
		fmt.Fprintln(w, "\n=== Balances ===")
		for _, account := range accounts {
			fmt.Fprintf(w, "%-24s %-8s %s\n", account.Name, account.Type, formatBalance(account))
		}
	}

	fmt.Fprintln(w)
	return nil
}

// formatBalance renders the balance with the currency's symbol and minor
// units. Digits beyond the currency's precision are rounded.
func formatBalance(account models.Account) string {
	currency := money.GetCurrency(account.Currency)
	if currency == nil {
		return account.Balance.String() + " " + account.Currency
	}

	minor := account.Balance.Shift(int32(currency.Fraction)).Round(0)
	if !minor.Equal(decimal.NewFromInt(minor.IntPart())) {
		return account.Balance.String() + " " + account.Currency
	}
	return money.New(minor.IntPart(), account.Currency).Display()
}
