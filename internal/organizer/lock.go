package organizer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"

	"recsort/internal/config"
	"recsort/internal/services"
)

// destinationLock guards a destination against concurrent runs. The lock file
// lives in the state directory so it never shows up in the sorted tree.
type destinationLock struct {
	path string
	lock *flock.Flock
}

func lockPathFor(cfg *config.Config, destination string) string {
	abs, err := filepath.Abs(destination)
	if err != nil {
		abs = destination
	}
	sum := sha256.Sum256([]byte(filepath.Clean(abs)))
	return filepath.Join(cfg.LockDir(), hex.EncodeToString(sum[:8])+".lock")
}

func acquireDestinationLock(cfg *config.Config, destination string) (*destinationLock, error) {
	path := lockPathFor(cfg, destination)
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "lock", "acquire lock", path, err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrLocked, "lock", "acquire lock",
			fmt.Sprintf("another run is writing to %s", destination), nil)
	}
	return &destinationLock{path: path, lock: lock}, nil
}

func (l *destinationLock) release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
