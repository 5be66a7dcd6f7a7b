package store

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// migrationLock serializes schema migrations between a running `coinwatch
// watch` and CLI commands opening the same database file.
type migrationLock struct {
	f *os.File
}

// migrationLockPath is the lock file kept next to the database,
// e.g. coinwatch.db.migrate.lock.
func migrationLockPath(dbPath string) string {
	return dbPath + ".migrate.lock"
}

// acquireMigrationLock blocks until this process holds the exclusive flock on
// the database's migration lock file.
func acquireMigrationLock(dbPath string) (*migrationLock, error) {
	path := migrationLockPath(dbPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock dir for %s: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644) //nolint:gosec // G304: path derived from the configured database path
	if err != nil {
		return nil, fmt.Errorf("open migration lock %s: %w", path, err)
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("acquire migration lock %s: %w", path, err)
	}
	return &migrationLock{f: f}, nil
}

// Release unlocks and closes the lock file. Safe on a nil lock.
func (l *migrationLock) Release() {
	if l == nil || l.f == nil {
		return
	}
	_ = syscall.Flock(int(l.f.Fd()), syscall.LOCK_UN)
	_ = l.f.Close()
	l.f = nil
}
