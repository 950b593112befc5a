package workflow

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"scenepack/internal/services"
)

// LockFileName is the advisory lock taken on a stage's output root.
const LockFileName = ".scenepack.lock"

// ErrOutputLocked reports that another process holds the output root lock.
var ErrOutputLocked = errors.New("output root is locked by another scenepack process")

// lockOutput creates root if needed and acquires its lock without blocking.
func lockOutput(root string) (*flock.Flock, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, services.Wrap(services.ErrIOFailure, "", "create output root", root, err)
	}
	lock := flock.New(filepath.Join(root, LockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOutputLocked, root)
	}
	return lock, nil
}
