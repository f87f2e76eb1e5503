package backend

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"smartfinance/internal/config"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Fatal("expected error for unsupported backend")
	}
	cfg, err := FromAppConfig(&config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db", DataDir: "d"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Type != SQLiteBackend || cfg.SQLiteDBPath != "x.db" || cfg.DataDirectory != "d" {
		t.Fatalf("unexpected backend config %+v", cfg)
	}
}

func TestCreateBackend(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(nil)

	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "memory", config: Config{Type: MemoryBackend, DataDirectory: t.TempDir()}},
		{name: "sqlite", config: Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "f.db")}},
		{name: "sqlite without path", config: Config{Type: SQLiteBackend}, wantErr: true},
		{name: "unknown", config: Config{Type: "postgres"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.CreateBackend(ctx, tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CreateBackend() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if res.Cleanup != nil {
				defer res.Cleanup()
			}
			if res.Ping != nil {
				if err := res.Ping(ctx); err != nil {
					t.Fatalf("ping: %v", err)
				}
			}
			cats, err := res.Repositories.Categories.List(ctx)
			if err != nil {
				t.Fatalf("list categories: %v", err)
			}
			if len(cats) != 8 {
				t.Fatalf("expected default categories, got %d", len(cats))
			}
		})
	}
}

func TestSQLiteReadinessRejectsDirtySchema(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ready.db")
	res, err := NewFactory(nil).CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: path})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	defer res.Cleanup()

	if err := res.Ping(ctx); err != nil {
		t.Fatalf("fresh database should be ready: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if _, err := db.ExecContext(ctx, "UPDATE schema_migrations SET dirty = 1"); err != nil {
		t.Fatalf("mark dirty: %v", err)
	}

	if err := res.Ping(ctx); err == nil || !strings.Contains(err.Error(), "dirty") {
		t.Fatalf("Ping() error = %v, want dirty schema", err)
	}
}
