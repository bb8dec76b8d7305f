package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	synerr "github.com/Aman-CERP/synmap/internal/errors"
)

// lockRetryDelay is how often LockContext polls a held lock.
const lockRetryDelay = 50 * time.Millisecond

// FileLock provides cross-process file locking using gofrs/flock.
// It guards writes to an edge store from concurrent synmap processes.
type FileLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// NewFileLock creates a lock for the database at dbPath.
// The lock file is <dbPath>.lock.
func NewFileLock(dbPath string) *FileLock {
	lockPath := dbPath + ".lock"
	return &FileLock{
		path:  lockPath,
		flock: flock.New(lockPath),
	}
}

// Lock acquires an exclusive lock, blocking until it is available.
func (l *FileLock) Lock() error {
	if err := l.ensureDir(); err != nil {
		return err
	}
	if err := l.flock.Lock(); err != nil {
		return lockError("failed to acquire lock", l.path, err)
	}
	l.locked = true
	return nil
}

// LockContext acquires an exclusive lock, polling until it is available or
// ctx is done.
func (l *FileLock) LockContext(ctx context.Context) error {
	if err := l.ensureDir(); err != nil {
		return err
	}
	acquired, err := l.flock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return lockError("failed to acquire lock", l.path, err)
	}
	if !acquired {
		return lockError("lock is held by another process", l.path, ctx.Err())
	}
	l.locked = true
	return nil
}

// TryLock attempts to acquire the lock without blocking.
// Returns true if the lock was acquired, false if another process holds it.
func (l *FileLock) TryLock() (bool, error) {
	if err := l.ensureDir(); err != nil {
		return false, err
	}
	acquired, err := l.flock.TryLock()
	if err != nil {
		return false, lockError("failed to acquire lock", l.path, err)
	}
	if acquired {
		l.locked = true
	}
	return acquired, nil
}

// Unlock releases the lock. It is safe to call on an unlocked FileLock.
func (l *FileLock) Unlock() error {
	if !l.locked {
		return nil
	}
	l.locked = false
	if err := l.flock.Unlock(); err != nil {
		return lockError("failed to release lock", l.path, err)
	}
	return nil
}

// Path returns the lock file path.
func (l *FileLock) Path() string {
	return l.path
}

// IsLocked reports whether this FileLock holds the lock.
func (l *FileLock) IsLocked() bool {
	return l.locked
}

func (l *FileLock) ensureDir() error {
	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return lockError("failed to create lock directory", dir, err)
	}
	return nil
}

func lockError(msg, path string, cause error) error {
	return synerr.New(synerr.ErrCodeLockFailed, fmt.Sprintf("%s: %s", msg, path), cause).
		WithDetail("path", path)
}
