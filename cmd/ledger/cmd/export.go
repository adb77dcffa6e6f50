package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/tag-ledger/internal/models"
	"github.com/shunichi-ikebuchi/tag-ledger/pkg/beancount"
	"github.com/shunichi-ikebuchi/tag-ledger/pkg/converter"
	"github.com/shunichi-ikebuchi/tag-ledger/pkg/db"
)

var (
	mappingFile string
	dryRun      bool
)

// exportCmd represents the export command.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export ledger transactions to Beancount",
	Long: `Export ledger transactions to monthly Beancount files.

This command:
1. Lists every transaction in the ledger
2. Filters out already exported transactions
3. Converts them to Beancount format
4. Appends them to {LEDGER_EXPORT_DIR}/YYYY/YYYY-MM.beancount
5. Rewrites accounts.beancount and records export history

Example:
  ledger export
  ledger export --mapping ./config/beancount-mapping.yaml
  ledger export --dry-run`,
	Run: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&mappingFile, "mapping", "", "YAML file mapping ledger accounts and tags to Beancount accounts")
	exportCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Dry run mode (no file writes)")
}

func runExport(cmd *cobra.Command, args []string) {
	a, err := openApp()
	exitOnError(err, "failed to open ledger")
	defer a.Close()

	mapper, err := converter.NewMapper(mappingFile)
	exitOnError(err, "failed to load account mapping")

	result, err := exportLedger(cmd.Context(), a, mapper, exportOptions{DryRun: dryRun, Out: os.Stdout})
	exitOnError(err, "failed to export ledger")

	if result.Exported == 0 {
		fmt.Println("No new transactions to export")
		return
	}
	if !dryRun {
		fmt.Printf("Exported %d transactions to %d files (%d skipped, %d unconvertible)\n",
			result.Exported, len(result.Files), result.Skipped, result.Unconvertible)
	}
}

type exportOptions struct {
	DryRun bool
	// Out receives the formatted entries in dry run mode.
	Out io.Writer
}

type exportResult struct {
	Exported int
	Skipped  int
	// Unconvertible counts transactions left unexported, such as transfers
	// across currencies. They are retried on the next run.
	Unconvertible int
	Files         []string
}

// exportEntry pairs a ledger transaction with its Beancount form.
type exportEntry struct {
	view models.TransactionView
	txn  beancount.Transaction
}

// exportLedger appends every transaction not yet exported to its month file
// and rewrites the accounts file from every convertible transaction.
func exportLedger(ctx context.Context, a *app, mapper *converter.Mapper, opts exportOptions) (*exportResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}

	accounts, err := a.ledger.Accounts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	views, err := a.ledger.Transactions.List(ctx, models.TransactionFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	history := db.NewExportHistory(a.conn)
	exported, err := history.GetExportedIDs(ctx)
	if err != nil {
		return nil, err
	}

	cvtr := converter.NewConverter(mapper, accounts)
	repo := beancount.NewFileSystemRepository(a.paths)

	result := &exportResult{}
	var all []beancount.Transaction
	var pending []exportEntry
	for _, view := range views {
		txn, err := cvtr.ConvertTransaction(view)
		if errors.Is(err, converter.ErrCurrencyMismatch) {
			a.logger.Warn("Skipping transaction", "transaction_id", view.ID, "error", err)
			result.Unconvertible++
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to convert transaction %s: %w", view.ID, err)
		}

		all = append(all, txn)
		if exported[view.ID] {
			result.Skipped++
			continue
		}
		pending = append(pending, exportEntry{view: view, txn: txn})
	}

	a.logger.Info("New transactions to export",
		"new", len(pending),
		"skipped", result.Skipped,
		"unconvertible", result.Unconvertible,
	)
	if len(pending) == 0 {
		return result, nil
	}

	byMonth := groupEntriesByMonth(pending)
	months := make([]string, 0, len(byMonth))
	for month := range byMonth {
		months = append(months, month)
	}
	sort.Strings(months)

	for _, month := range months {
		filePath, err := a.paths.GetMonthFilePath(month)
		if err != nil {
			return result, fmt.Errorf("failed to get month file path: %w", err)
		}
		if opts.DryRun {
			fmt.Fprintf(opts.Out, "[DRY RUN] Would append to %s\n", filePath)
		}

		for _, entry := range byMonth[month] {
			formatted := beancount.FormatTransaction(entry.txn)

			if opts.DryRun {
				fmt.Fprintln(opts.Out, formatted)
				result.Exported++
				continue
			}

			if err := repo.AppendTransaction(month, formatted); err != nil {
				return result, fmt.Errorf("failed to append transaction %s: %w", entry.view.ID, err)
			}
			if err := history.RecordExport(ctx, db.ExportRecord{
				TransactionID: entry.view.ID,
				BeancountFile: filePath,
			}); err != nil {
				return result, err
			}
			result.Exported++
		}

		if !opts.DryRun {
			result.Files = append(result.Files, filePath)
			a.logger.Info("Updated file", "path", filePath, "transactions", len(byMonth[month]))
		}
	}

	if opts.DryRun {
		return result, nil
	}

	if err := repo.WriteAccounts(cvtr.OpenDirectives(all)); err != nil {
		return result, err
	}
	if err := db.SetMetadata(ctx, a.conn, db.MetadataKeyLastExport, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return result, err
	}

	a.logger.Info("Export completed", "exported", result.Exported, "files_written", len(result.Files))
	return result, nil
}

// groupEntriesByMonth groups entries by YYYY-MM, oldest first within a month.
func groupEntriesByMonth(entries []exportEntry) map[string][]exportEntry {
	groups := make(map[string][]exportEntry)
	for _, entry := range entries {
		month := entry.view.TransactionDate.UTC().Format("2006-01")
		groups[month] = append(groups[month], entry)
	}
	for _, group := range groups {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].view.TransactionDate.Before(group[j].view.TransactionDate)
		})
	}
	return groups
}
