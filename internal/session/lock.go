package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/medremind/internal/constants"
	"github.com/julianstephens/medremind/internal/logger"
)

var ErrLocked = errors.New("another medremind editor is running")

var findProcessFunc = ps.FindProcess

// Lock is the single-editor lockfile <configDir>/medremind.lock holding the
// owner's pid.
type Lock struct {
	path string
	pid  int
}

// AcquireLock takes the editor lock. A lock whose owner is no longer a
// running medremind process is stale and gets replaced.
func AcquireLock(configDir string) (*Lock, error) {
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}
	l := &Lock{path: filepath.Join(configDir, constants.LockfileName), pid: os.Getpid()}

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
		if err == nil {
			_, werr := f.WriteString(strconv.Itoa(l.pid) + "\n")
			cerr := f.Close()
			if werr != nil || cerr != nil {
				os.Remove(l.path)
				return nil, fmt.Errorf("failed to write lockfile: %w", errors.Join(werr, cerr))
			}
			return l, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("failed to create lockfile: %w", err)
		}

		if owner, alive := lockOwner(l.path); alive {
			return nil, fmt.Errorf("%w (pid %d)", ErrLocked, owner)
		}
		logger.Warn("Removing stale lockfile", "path", l.path)
		if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to remove stale lockfile: %w", err)
		}
	}
	return nil, ErrLocked
}

// Release removes the lockfile if this process still owns it.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	data, err := os.ReadFile(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if pid, err := strconv.Atoi(strings.TrimSpace(string(data))); err != nil || pid != l.pid {
		return nil
	}
	return os.Remove(l.path)
}

// LockStatus reports the pid holding the lock in configDir, if it is alive.
func LockStatus(configDir string) (int, bool) {
	return lockOwner(filepath.Join(configDir, constants.LockfileName))
}

func lockOwner(path string) (int, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}

	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return pid, false
	}
	if !strings.HasPrefix(process.Executable(), constants.AppName) {
		return pid, false
	}
	return pid, true
}
