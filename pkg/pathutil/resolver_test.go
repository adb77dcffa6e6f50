package pathutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewDefaults(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		wantDB   string
		wantSeed string
	}{
		{
			name:     "derived from data dir",
			config:   Config{DataDir: "/srv/ledger"},
			wantDB:   filepath.Join("/srv/ledger", "ledger.db"),
			wantSeed: filepath.Join("/srv/ledger", "seed.yaml"),
		},
		{
			name:     "explicit paths win",
			config:   Config{DataDir: "/srv/ledger", DatabasePath: "/tmp/x.db", SeedFile: "/tmp/seed.yml"},
			wantDB:   "/tmp/x.db",
			wantSeed: "/tmp/seed.yml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.config)
			if got := p.GetDatabasePath(); got != tt.wantDB {
				t.Errorf("GetDatabasePath() = %q, want %q", got, tt.wantDB)
			}
			if got := p.GetSeedFile(); got != tt.wantSeed {
				t.Errorf("GetSeedFile() = %q, want %q", got, tt.wantSeed)
			}
			if got := p.GetDataDir(); got != tt.config.DataDir {
				t.Errorf("GetDataDir() = %q, want %q", got, tt.config.DataDir)
			}
		})
	}
}

func TestEnsureDirAndFileExists(t *testing.T) {
	root := t.TempDir()
	p := New(Config{DataDir: root})

	dir := filepath.Join(root, "a", "b")
	if err := p.EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}
	if p.FileExists(dir) {
		t.Errorf("FileExists() should be false for a directory")
	}

	file := filepath.Join(dir, "seed.yaml")
	if err := os.WriteFile(file, []byte("tags: []\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if !p.FileExists(file) {
		t.Errorf("FileExists() should be true for %s", file)
	}
}

func TestExportPaths(t *testing.T) {
	p := New(Config{DataDir: "/srv/ledger"})

	if got, want := p.GetExportDir(), filepath.Join("/srv/ledger", "beancount"); got != want {
		t.Errorf("GetExportDir() = %q, want %q", got, want)
	}
	if got, want := p.GetAccountsFilePath(), filepath.Join("/srv/ledger", "beancount", "accounts.beancount"); got != want {
		t.Errorf("GetAccountsFilePath() = %q, want %q", got, want)
	}

	got, err := p.GetMonthFilePath("2024-03")
	if err != nil {
		t.Fatalf("GetMonthFilePath() error = %v", err)
	}
	if want := filepath.Join("/srv/ledger", "beancount", "2024", "2024-03.beancount"); got != want {
		t.Errorf("GetMonthFilePath() = %q, want %q", got, want)
	}

	for _, bad := range []string{"2024-13", "2024", "03-2024", ""} {
		if _, err := p.GetMonthFilePath(bad); err == nil {
			t.Errorf("GetMonthFilePath(%q) should fail", bad)
		}
	}

	custom := New(Config{DataDir: "/srv/ledger", ExportDir: "/books"})
	if got := custom.GetYearDir("2025"); got != filepath.Join("/books", "2025") {
		t.Errorf("GetYearDir() = %q", got)
	}
}

func TestEnsureParentDir(t *testing.T) {
	root := t.TempDir()
	p := New(Config{DataDir: root})

	file := filepath.Join(root, "x", "y", "2024-01.beancount")
	if err := p.EnsureParentDir(file); err != nil {
		t.Fatalf("EnsureParentDir() error = %v", err)
	}
	info, err := os.Stat(filepath.Dir(file))
	if err != nil || !info.IsDir() {
		t.Errorf("parent directory was not created: %v", err)
	}
}
