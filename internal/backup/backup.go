// Package backup snapshots the SQLite reminder database before destructive
// operations and restores it on request.
package backup

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/medremind/internal/constants"
	"github.com/julianstephens/medremind/internal/logger"
)

const (
	// MaxBackups is the number of backups kept by rotation
	MaxBackups = 10
	// BackupDirName is the backup directory, next to the database
	BackupDirName    = "backups"
	BackupFilePrefix = constants.AppName + "-"
	BackupFileSuffix = ".db"

	timestampLayout = "20060102-150405"
)

var (
	ErrNoDatabase    = errors.New("database does not exist")
	ErrInvalidBackup = errors.New("not a medremind database")
)

// Info describes one backup file.
type Info struct {
	Path      string
	Timestamp time.Time
	Size      int64
}

// Manager handles backups of one database file.
type Manager struct {
	dbPath    string
	backupDir string
	now       func() time.Time
}

func NewManager(dbPath string) *Manager {
	return &Manager{
		dbPath:    dbPath,
		backupDir: filepath.Join(filepath.Dir(dbPath), BackupDirName),
		now:       time.Now,
	}
}

func (m *Manager) Dir() string {
	return m.backupDir
}

// Create writes a new backup and rotates old ones.
func (m *Manager) Create() (string, error) {
	path, err := m.create()
	if err != nil {
		return "", err
	}
	if err := m.rotate(); err != nil {
		logger.Warn("Failed to rotate old backups", "err", err)
	}
	return path, nil
}

// CreateQuietly is Create for automatic backups: a missing database is
// skipped and failures are only logged.
func (m *Manager) CreateQuietly(reason string) {
	path, err := m.Create()
	switch {
	case errors.Is(err, ErrNoDatabase):
	case err != nil:
		logger.Warn("Automatic backup failed", "reason", reason, "err", err)
	default:
		logger.Info("Automatic backup created", "reason", reason, "path", path)
	}
}

func (m *Manager) create() (string, error) {
	if _, err := os.Stat(m.dbPath); errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrNoDatabase, m.dbPath)
	}
	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	stamp := m.now().Format(timestampLayout)
	path := filepath.Join(m.backupDir, BackupFilePrefix+stamp+BackupFileSuffix)
	for n := 1; fileExists(path); n++ {
		if n > 100 {
			return "", fmt.Errorf("failed to generate unique backup filename")
		}
		path = filepath.Join(m.backupDir, fmt.Sprintf("%s%s-%d%s", BackupFilePrefix, stamp, n, BackupFileSuffix))
	}

	src, err := sql.Open("sqlite", m.dbPath+"?mode=ro")
	if err != nil {
		return "", fmt.Errorf("failed to open database: %w", err)
	}
	defer src.Close()

	if _, err := src.Exec("VACUUM INTO ?", path); err != nil {
		return "", fmt.Errorf("failed to backup database: %w", err)
	}
	return path, nil
}

// List returns the backups, newest first. Files that do not follow the
// naming scheme are ignored.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.backupDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []Info
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, BackupFilePrefix) || !strings.HasSuffix(name, BackupFileSuffix) {
			continue
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(name, BackupFilePrefix), BackupFileSuffix)
		if len(stamp) > len(timestampLayout) {
			// counter suffix, e.g. 20240101-120000-2
			stamp = stamp[:len(timestampLayout)]
		}
		ts, err := time.ParseInLocation(timestampLayout, stamp, time.Local)
		if err != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, Info{Path: filepath.Join(m.backupDir, name), Timestamp: ts, Size: info.Size()})
	}

	sort.SliceStable(backups, func(i, j int) bool {
		if backups[i].Timestamp.Equal(backups[j].Timestamp) {
			return backups[i].Path > backups[j].Path
		}
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

func (m *Manager) rotate() error {
	backups, err := m.List()
	if err != nil {
		return err
	}
	for i := MaxBackups; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
	}
	return nil
}

// Restore replaces the database with backupPath. The current database is
// backed up first. The caller must have closed its connection.
func (m *Manager) Restore(backupPath string) error {
	if err := verify(backupPath); err != nil {
		return err
	}

	if fileExists(m.dbPath) {
		current, err := m.create()
		if err != nil {
			return fmt.Errorf("failed to backup current database before restore: %w", err)
		}
		logger.Info("Backed up current database before restore", "path", current)
	}

	tmp := m.dbPath + ".restore.tmp"
	if err := copyFile(backupPath, tmp); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to copy backup: %w", err)
	}
	// stale WAL files would be replayed over the restored database
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(m.dbPath + suffix); err != nil && !errors.Is(err, fs.ErrNotExist) {
			os.Remove(tmp)
			return fmt.Errorf("failed to remove %s file: %w", suffix, err)
		}
	}
	if err := os.Rename(tmp, m.dbPath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to restore database: %w", err)
	}
	return nil
}

// verify checks that path is a SQLite database with a reminders table.
func verify(path string) error {
	if !fileExists(path) {
		return fmt.Errorf("backup file does not exist: %s", path)
	}
	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return err
	}
	defer db.Close()

	var n int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'reminders'").Scan(&n)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	if n != 1 {
		return fmt.Errorf("%w: %s has no reminders table", ErrInvalidBackup, path)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.ReadFrom(in); err != nil {
		return err
	}
	return out.Sync()
}
