package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shunichi-ikebuchi/tag-ledger/internal/ledger"
	"github.com/shunichi-ikebuchi/tag-ledger/pkg/config"
	"github.com/shunichi-ikebuchi/tag-ledger/pkg/db"
	"github.com/shunichi-ikebuchi/tag-ledger/pkg/pathutil"
)

// app holds what every command needs once configuration is loaded.
type app struct {
	cfg    *config.Config
	paths  *pathutil.PathResolver
	conn   *db.Connection
	ledger *ledger.Ledger
	logger *slog.Logger
}

// openApp loads configuration and opens the ledger database.
func openApp() (*app, error) {
	cfg, err := config.Load(getConfigFile())
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return newApp(cfg)
}

func newApp(cfg *config.Config) (*app, error) {
	if err := cfg.Validate(
		[]string{"storage", "dataDir"},
		[]string{"storage", "timeout"},
	); err != nil {
		return nil, err
	}

	logger := slog.Default()
	if cfg.Debug && !debug {
		logger = newLogger(true)
		slog.SetDefault(logger)
	}

	paths := pathutil.New(pathutil.Config{
		DataDir:      cfg.Storage.DataDir,
		DatabasePath: cfg.Storage.DBPath,
		SeedFile:     cfg.Storage.SeedFile,
		ExportDir:    cfg.Storage.ExportDir,
	})

	dbPath := paths.GetDatabasePath()
	logger.Debug("Opening database", "path", dbPath)

	conn, err := db.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &app{
		cfg:   cfg,
		paths: paths,
		conn:  conn,
		ledger: ledger.New(conn, ledger.Options{
			Timeout: cfg.Storage.Timeout,
			Logger:  logger,
		}),
		logger: logger,
	}, nil
}

func (a *app) Close() error {
	return a.conn.Close()
}
