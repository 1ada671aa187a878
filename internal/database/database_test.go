package database

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/habibGamal/preparation-system/internal/config"
)

func openTestFileDB(t *testing.T) (*DB, string, string) {
	t.Helper()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "prepsys.db")
	backupDir := filepath.Join(dir, "backups")
	if err := os.MkdirAll(backupDir, 0750); err != nil {
		t.Fatalf("creating backup dir: %v", err)
	}

	db, err := Open(dbPath, &config.DatabaseConfig{Path: dbPath, BusyTimeoutMS: 1000}, backupDir)
	if err != nil {
		t.Fatalf("Open() = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := Migrate(context.Background(), db.DB); err != nil {
		t.Fatalf("Migrate() = %v", err)
	}

	return db, dbPath, backupDir
}

func TestMigrateCreatesSchema(t *testing.T) {
	db, err := NewInMemory()
	if err != nil {
		t.Fatalf("NewInMemory() = %v", err)
	}
	defer db.Close()

	tables := []string{
		"products", "inventories", "manufacturing_orders", "manufacturing_order_items",
		"manufacturing_recipes", "manufacturing_recipe_items", "stock_documents",
		"stock_document_items", "settings",
	}
	for _, table := range tables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}

	version, err := db.SchemaVersion(context.Background())
	if err != nil {
		t.Fatalf("SchemaVersion() = %v", err)
	}
	if version != 4 {
		t.Errorf("SchemaVersion() = %d, want 4", version)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db, err := NewInMemory()
	if err != nil {
		t.Fatalf("NewInMemory() = %v", err)
	}
	defer db.Close()

	m, err := NewMigrator(db.DB)
	if err != nil {
		t.Fatalf("NewMigrator() = %v", err)
	}
	res, err := m.MigrateUp(context.Background())
	if err != nil {
		t.Fatalf("second MigrateUp() = %v", err)
	}
	if len(res.Applied) != 0 {
		t.Errorf("second run applied %v, want nothing", res.Applied)
	}
	pending, err := m.HasPending(context.Background())
	if err != nil || pending {
		t.Errorf("HasPending() = %v, %v", pending, err)
	}
}

func TestWithTx(t *testing.T) {
	db, _, _ := openTestFileDB(t)
	ctx := context.Background()

	insert := func(tx *sql.Tx, key string) error {
		_, err := tx.ExecContext(ctx, "INSERT INTO settings (key, value, updated_at) VALUES (?, '1', 'now')", key)
		return err
	}

	t.Run("commits on success", func(t *testing.T) {
		err := WithTx(ctx, db.DB, func(tx *sql.Tx) error {
			return insert(tx, "committed")
		})
		if err != nil {
			t.Fatalf("WithTx() = %v", err)
		}
		var n int
		db.QueryRow("SELECT COUNT(*) FROM settings WHERE key = 'committed'").Scan(&n)
		if n != 1 {
			t.Errorf("row count = %d, want 1", n)
		}
	})

	t.Run("rolls back on error", func(t *testing.T) {
		sentinel := errors.New("boom")
		err := WithTx(ctx, db.DB, func(tx *sql.Tx) error {
			if err := insert(tx, "rolled_back"); err != nil {
				return err
			}
			return sentinel
		})
		if !errors.Is(err, sentinel) {
			t.Fatalf("WithTx() = %v, want sentinel", err)
		}
		var n int
		db.QueryRow("SELECT COUNT(*) FROM settings WHERE key = 'rolled_back'").Scan(&n)
		if n != 0 {
			t.Errorf("row count = %d, want 0", n)
		}
	})

	t.Run("rolls back on panic", func(t *testing.T) {
		func() {
			defer func() { recover() }()
			WithTx(ctx, db.DB, func(tx *sql.Tx) error {
				insert(tx, "panicked")
				panic("boom")
			})
		}()
		var n int
		db.QueryRow("SELECT COUNT(*) FROM settings WHERE key = 'panicked'").Scan(&n)
		if n != 0 {
			t.Errorf("row count = %d, want 0", n)
		}
	})

	t.Run("failed rollback keeps the original error", func(t *testing.T) {
		sentinel := errors.New("boom")
		err := WithTx(ctx, db.DB, func(tx *sql.Tx) error {
			// Ending the transaction early makes the deferred rollback fail.
			if err := tx.Rollback(); err != nil {
				return err
			}
			return sentinel
		})
		if !errors.Is(err, sentinel) {
			t.Errorf("WithTx() = %v, want sentinel", err)
		}
		if !errors.Is(err, sql.ErrTxDone) {
			t.Errorf("WithTx() = %v, want rollback error too", err)
		}
	})
}

func TestGetStats(t *testing.T) {
	db, dbPath, _ := openTestFileDB(t)

	stats, err := db.GetStats(context.Background())
	if err != nil {
		t.Fatalf("GetStats() = %v", err)
	}
	if stats.Path != dbPath || db.Path() != dbPath {
		t.Errorf("Path = %q, want %q", stats.Path, dbPath)
	}
	if stats.PageSize <= 0 || stats.PageCount <= 0 || stats.SizeBytes+stats.WALSizeBytes <= 0 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.SchemaVersion <= 0 {
		t.Errorf("SchemaVersion = %d, want migrated schema", stats.SchemaVersion)
	}
	if stats.JournalMode != "wal" {
		t.Errorf("JournalMode = %q, want wal", stats.JournalMode)
	}
}

func TestHealthCheckAndClose(t *testing.T) {
	db, _, _ := openTestFileDB(t)
	ctx := context.Background()

	if err := db.HealthCheck(ctx); err != nil {
		t.Fatalf("HealthCheck() = %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}
	if !db.IsClosed() {
		t.Error("IsClosed() should be true")
	}
	if err := db.HealthCheck(ctx); err == nil {
		t.Error("HealthCheck() on closed db should fail")
	}
	if _, err := db.BeginTx(ctx, nil); err == nil {
		t.Error("BeginTx() on closed db should fail")
	}
}

func TestBackupAndRecover(t *testing.T) {
	db, dbPath, backupDir := openTestFileDB(t)
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, "INSERT INTO settings (key, value, updated_at) VALUES ('k', 'v', 'now')"); err != nil {
		t.Fatalf("insert: %v", err)
	}

	backupPath, err := db.Backup(ctx)
	if err != nil {
		t.Fatalf("Backup() = %v", err)
	}
	if _, err := os.Stat(backupPath); err != nil {
		t.Fatalf("backup file missing: %v", err)
	}

	report, err := Recover(ctx, dbPath, backupDir)
	if err != nil {
		t.Fatalf("Recover() on healthy db = %v", err)
	}
	if report.Outcome != RecoveryHealthy {
		t.Errorf("Outcome = %s, want healthy", report.Outcome)
	}

	db.Close()
	os.Remove(dbPath + "-wal")
	os.Remove(dbPath + "-shm")
	if err := os.WriteFile(dbPath, []byte("this is not a sqlite database at all, not even close"), 0640); err != nil {
		t.Fatalf("corrupting db: %v", err)
	}

	report, err = Recover(ctx, dbPath, backupDir)
	if err != nil {
		t.Fatalf("Recover() = %v (steps %v)", err, report.Steps)
	}
	if report.Outcome != RecoveryFromBackup {
		t.Fatalf("Outcome = %s, want restored_from_backup", report.Outcome)
	}

	restored, err := Open(dbPath, &config.DatabaseConfig{Path: dbPath}, backupDir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer restored.Close()

	var value string
	if err := restored.QueryRow("SELECT value FROM settings WHERE key = 'k'").Scan(&value); err != nil {
		t.Fatalf("reading restored row: %v", err)
	}
	if value != "v" {
		t.Errorf("restored value = %q", value)
	}
}

func TestRecoverMissingFile(t *testing.T) {
	report, err := Recover(context.Background(), filepath.Join(t.TempDir(), "absent.db"), "")
	if err != nil {
		t.Fatalf("Recover() = %v", err)
	}
	if report.Outcome != RecoveryHealthy {
		t.Errorf("Outcome = %s", report.Outcome)
	}
}
