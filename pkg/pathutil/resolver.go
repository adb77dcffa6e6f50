// Package pathutil provides centralized path management for the ledger data files.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// PathResolver manages paths for the database, the seed fixture and the
// Beancount export tree.
type PathResolver struct {
	dataDir      string
	databasePath string
	seedFile     string
	exportDir    string
}

// Config represents the configuration for PathResolver.
type Config struct {
	// DataDir is the root directory for all ledger data (e.g., ~/.local/share/ledger)
	DataDir string
	// DatabasePath is the path to the SQLite database file
	DatabasePath string
	// SeedFile is the YAML fixture consumed by the seed command
	SeedFile string
	// ExportDir is the root of the Beancount export tree
	ExportDir string
}

// New creates a new PathResolver with the given configuration.
// If DatabasePath is empty, it defaults to {DataDir}/ledger.db
// If SeedFile is empty, it defaults to {DataDir}/seed.yaml
// If ExportDir is empty, it defaults to {DataDir}/beancount
func New(config Config) *PathResolver {
	dbPath := config.DatabasePath
	if dbPath == "" {
		dbPath = filepath.Join(config.DataDir, "ledger.db")
	}

	seedFile := config.SeedFile
	if seedFile == "" {
		seedFile = filepath.Join(config.DataDir, "seed.yaml")
	}

	exportDir := config.ExportDir
	if exportDir == "" {
		exportDir = filepath.Join(config.DataDir, "beancount")
	}

	return &PathResolver{
		dataDir:      config.DataDir,
		databasePath: dbPath,
		seedFile:     seedFile,
		exportDir:    exportDir,
	}
}

// GetDataDir returns the data root directory.
func (p *PathResolver) GetDataDir() string {
	return p.dataDir
}

// GetDatabasePath returns the database file path.
func (p *PathResolver) GetDatabasePath() string {
	return p.databasePath
}

// GetSeedFile returns the seed fixture path.
func (p *PathResolver) GetSeedFile() string {
	return p.seedFile
}

// GetExportDir returns the Beancount export root.
func (p *PathResolver) GetExportDir() string {
	return p.exportDir
}

// GetYearDir returns the export directory for a specific year.
// Format: {ExportDir}/{YYYY}
func (p *PathResolver) GetYearDir(year string) string {
	return filepath.Join(p.exportDir, year)
}

// GetMonthFilePath returns the path to a monthly Beancount file.
// yearMonth should be in format "YYYY-MM" (e.g., "2024-01").
// Format: {ExportDir}/{YYYY}/{YYYY-MM}.beancount
func (p *PathResolver) GetMonthFilePath(yearMonth string) (string, error) {
	if _, err := time.Parse("2006-01", yearMonth); err != nil {
		return "", fmt.Errorf("invalid year-month format %q: %w", yearMonth, err)
	}
	return filepath.Join(p.GetYearDir(yearMonth[:4]), yearMonth+".beancount"), nil
}

// GetAccountsFilePath returns the file holding account open directives.
func (p *PathResolver) GetAccountsFilePath() string {
	return filepath.Join(p.exportDir, "accounts.beancount")
}

// EnsureParentDir creates the parent directory of a file path if it doesn't exist.
func (p *PathResolver) EnsureParentDir(filePath string) error {
	return p.EnsureDir(filepath.Dir(filePath))
}

// EnsureDir creates a directory if it doesn't exist.
// It creates all parent directories as needed (like mkdir -p).
func (p *PathResolver) EnsureDir(dirPath string) error {
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dirPath, err)
	}
	return nil
}

// FileExists checks if a file exists.
func (p *PathResolver) FileExists(filePath string) bool {
	info, err := os.Stat(filePath)
	return err == nil && !info.IsDir()
}
