package writer

import (
	"fmt"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/maksimkurb/hostsfilter/internal/errors"
)

// targetLock is an exclusive flock on the target file's directory. The
// backup-then-replace sequence must not interleave with another hostsfilter
// process applying to the same target.
type targetLock struct {
	fd int
}

// lockTarget acquires an exclusive lock for the given target path. Blocks
// until the lock is available.
func lockTarget(targetPath string) (*targetLock, error) {
	dir := filepath.Dir(targetPath)

	fd, err := unix.Open(dir, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, errors.NewWriteError(fmt.Sprintf("failed to open directory %s for locking", dir), err)
	}

	if err := unix.Flock(fd, unix.LOCK_EX); err != nil {
		_ = unix.Close(fd)
		return nil, errors.NewWriteError(fmt.Sprintf("failed to lock directory %s", dir), err)
	}

	return &targetLock{fd: fd}, nil
}

func (l *targetLock) release() {
	_ = unix.Flock(l.fd, unix.LOCK_UN)
	_ = unix.Close(l.fd)
}

// CheckWritable reports whether the current process may write the target
// path, so the privilege problem surfaces before any work is done instead
// of after the lists are fetched.
func CheckWritable(targetPath string) error {
	if err := unix.Access(targetPath, unix.W_OK); err != nil {
		if err == unix.ENOENT {
			// Target does not exist yet; check the directory instead.
			if dirErr := unix.Access(filepath.Dir(targetPath), unix.W_OK); dirErr == nil {
				return nil
			}
		}
		return errors.NewPermissionError(
			fmt.Sprintf("no write access to %s, re-run with elevated privileges (e.g. sudo)", targetPath), err)
	}
	return nil
}
