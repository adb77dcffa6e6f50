package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/tag-ledger/internal/seed"
	"github.com/shunichi-ikebuchi/tag-ledger/pkg/db"
)

var seedFile string

// seedCmd represents the seed command.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a YAML fixture into the ledger",
	Long: `Load tags, accounts and transactions from a YAML fixture.

Accounts refer to tags by name and transactions refer to accounts by
name. Tags that already exist are reused. The file defaults to
LEDGER_SEED_FILE or {LEDGER_DATA_DIR}/seed.yaml.

Example:
  ledger seed
  ledger seed --file ./fixtures/demo.yaml`,
	Run: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "", "YAML fixture path (overrides LEDGER_SEED_FILE)")
}

func runSeed(cmd *cobra.Command, args []string) {
	a, err := openApp()
	exitOnError(err, "failed to open ledger")
	defer a.Close()

	path := seedFile
	if path == "" {
		path = a.paths.GetSeedFile()
	}

	result, err := seedLedger(cmd.Context(), a, path)
	exitOnError(err, "failed to seed ledger")

	fmt.Printf("Seeded %d tags (%d reused), %d accounts, %d transactions from %s\n",
		result.Tags, result.TagsReused, result.Accounts, result.Transactions, path)
}

// seedLedger applies the fixture at path and records the completion time.
func seedLedger(ctx context.Context, a *app, path string) (*seed.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !a.paths.FileExists(path) {
		return nil, fmt.Errorf("seed file not found: %s", path)
	}

	fx, err := seed.LoadFile(path)
	if err != nil {
		return nil, err
	}

	slog.Info("Applying seed fixture", "path", path)
	result, err := seed.NewLoader(a.ledger, a.logger).Apply(ctx, fx)
	if err != nil {
		return result, err
	}

	if err := db.SetMetadata(ctx, a.conn, db.MetadataKeyLastSeed, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return result, err
	}
	return result, nil
}
