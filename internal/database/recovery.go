package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// RecoveryOutcome indicates how a startup recovery attempt ended.
type RecoveryOutcome string

const (
	RecoveryHealthy     RecoveryOutcome = "healthy"
	RecoveryWALReplayed RecoveryOutcome = "wal_replayed"
	RecoveryFromBackup  RecoveryOutcome = "restored_from_backup"
	RecoveryFailed      RecoveryOutcome = "failed"
)

// RecoveryReport describes what Recover did.
type RecoveryReport struct {
	Outcome    RecoveryOutcome
	Path       string
	BackupUsed string
	Steps      []string
}

func (r *RecoveryReport) step(format string, args ...any) {
	r.Steps = append(r.Steps, fmt.Sprintf(format, args...))
}

// Recover makes sure the file at dbPath is usable before it is opened.
// It checks integrity, then tries a WAL checkpoint, then the newest backup
// in backupDir that passes its own integrity check. A missing file is healthy.
func Recover(ctx context.Context, dbPath, backupDir string) (*RecoveryReport, error) {
	report := &RecoveryReport{Path: dbPath}

	if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
		report.Outcome = RecoveryHealthy
		report.step("database does not exist yet")
		return report, nil
	}

	if err := checkFileIntegrity(ctx, dbPath); err == nil {
		report.Outcome = RecoveryHealthy
		report.step("integrity check passed")
		return report, nil
	} else {
		slog.Warn("database integrity check failed", "path", dbPath, "error", err)
		report.step("integrity check failed: %v", err)
	}

	if _, err := os.Stat(dbPath + "-wal"); err == nil {
		if err := checkpointFile(ctx, dbPath); err != nil {
			report.step("WAL checkpoint failed: %v", err)
		} else if err := checkFileIntegrity(ctx, dbPath); err == nil {
			report.Outcome = RecoveryWALReplayed
			report.step("recovered by WAL checkpoint")
			slog.Info("database recovered via WAL checkpoint", "path", dbPath)
			return report, nil
		}
	}

	if backupDir != "" {
		used, err := restoreNewestBackup(ctx, dbPath, backupDir)
		if err == nil {
			report.Outcome = RecoveryFromBackup
			report.BackupUsed = used
			report.step("restored %s", used)
			slog.Info("database restored from backup", "path", dbPath, "backup", used)
			return report, nil
		}
		report.step("backup restore failed: %v", err)
	}

	report.Outcome = RecoveryFailed
	slog.Error("database recovery failed", "path", dbPath, "steps", len(report.Steps))
	return report, errors.New("all recovery attempts failed")
}

func openReadOnly(path string) (*sql.DB, error) {
	return sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro", path))
}

func checkFileIntegrity(ctx context.Context, path string) error {
	sqlDB, err := openReadOnly(path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer sqlDB.Close()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	return checkIntegrity(ctx, sqlDB)
}

func checkpointFile(ctx context.Context, path string) error {
	sqlDB, err := sql.Open("sqlite", fmt.Sprintf("file:%s", path))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer sqlDB.Close()

	if _, err := sqlDB.ExecContext(ctx, "PRAGMA wal_checkpoint(RESTART)"); err != nil {
		return fmt.Errorf("WAL checkpoint: %w", err)
	}
	return nil
}

func restoreNewestBackup(ctx context.Context, dbPath, backupDir string) (string, error) {
	entries, err := os.ReadDir(backupDir)
	if err != nil {
		return "", fmt.Errorf("reading backup directory: %w", err)
	}

	type candidate struct {
		path    string
		modTime time.Time
	}
	var candidates []candidate
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".db") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		candidates = append(candidates, candidate{filepath.Join(backupDir, entry.Name()), info.ModTime()})
	}
	if len(candidates) == 0 {
		return "", errors.New("no backup files found")
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].modTime.After(candidates[j].modTime)
	})

	for _, c := range candidates {
		if err := checkFileIntegrity(ctx, c.path); err != nil {
			slog.Debug("skipping damaged backup", "path", c.path, "error", err)
			continue
		}

		quarantine := dbPath + ".corrupted." + time.Now().Format("20060102-150405")
		if err := os.Rename(dbPath, quarantine); err != nil {
			slog.Warn("failed to preserve corrupted database", "path", dbPath, "error", err)
		}
		os.Remove(dbPath + "-wal")
		os.Remove(dbPath + "-shm")

		if err := copyFile(c.path, dbPath); err != nil {
			return "", fmt.Errorf("copying backup: %w", err)
		}
		return c.path, nil
	}

	return "", errors.New("no valid backup found")
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0640)
	if err != nil {
		return fmt.Errorf("creating destination: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return out.Sync()
}
