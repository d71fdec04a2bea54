// Package runlock serializes minify runs per archive across processes.
//
// Two invocations naming the same archive would otherwise race on the
// replace step. Each archive maps to a lock file under the state directory;
// the lock is advisory and released when the holder exits.
package runlock

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked reports that another process is already minifying the archive.
var ErrLocked = errors.New("archive is being processed by another run")

// Lock is a held archive lock.
type Lock struct {
	path    string
	archive string
	lock    *flock.Flock
}

// PathFor returns the lock file used for archivePath.
func PathFor(lockDir, archivePath string) string {
	abs, err := filepath.Abs(archivePath)
	if err != nil {
		abs = filepath.Clean(archivePath)
	}
	sum := sha256.Sum256([]byte(abs))
	return filepath.Join(lockDir, hex.EncodeToString(sum[:8])+".lock")
}

// Acquire takes the lock for archivePath without blocking.
func Acquire(lockDir, archivePath string) (*Lock, error) {
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure lock directory: %w", err)
	}
	path := PathFor(lockDir, archivePath)
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, archivePath)
	}
	return &Lock{path: path, archive: archivePath, lock: fl}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Release drops the lock. The lock file is left in place.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock for %s: %w", l.archive, err)
	}
	return nil
}
