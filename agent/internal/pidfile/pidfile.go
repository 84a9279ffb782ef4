// Package pidfile records the running agent's process id at the path named
// by the pid_file config key.
package pidfile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"syscall"
)

// ErrRunning is returned by Write when the file names another live process.
var ErrRunning = errors.New("pidfile: another agent is running")

// Write records the current pid at path, replacing a stale file.
// The file is written to a temp name and renamed into place.
func Write(path string) error {
	if pid, err := Read(path); err == nil && pid != os.Getpid() && alive(pid) {
		return fmt.Errorf("%w (pid %d in %s)", ErrRunning, pid, path)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("pidfile: create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("pidfile: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := fmt.Fprintf(tmp, "%d\n", os.Getpid()); err != nil {
		tmp.Close()
		return fmt.Errorf("pidfile: write: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("pidfile: chmod: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("pidfile: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("pidfile: rename into place: %w", err)
	}
	return nil
}

// Read returns the pid stored at path.
func Read(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(string(bytes.TrimSpace(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("pidfile: %s does not contain a pid", path)
	}
	return pid, nil
}

// Remove deletes path if it still holds this process's pid. A missing file
// is not an error.
func Remove(path string) error {
	pid, err := Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if pid != os.Getpid() {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("pidfile: remove: %w", err)
	}
	return nil
}

func alive(pid int) bool {
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = p.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, os.ErrPermission)
}
