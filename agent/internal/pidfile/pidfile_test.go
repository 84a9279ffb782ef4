package pidfile

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// deadPID is above every platform's pid_max.
const deadPID = 2147483646

func TestWrite_RecordsPID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run", "snitch.pid")
	require.NoError(t, Write(path))

	pid, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestWrite_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snitch.pid")
	require.NoError(t, Write(path))
	require.NoError(t, Write(path))
}

func TestWrite_ReplacesStale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snitch.pid")
	require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(deadPID)+"\n"), 0o644))

	require.NoError(t, Write(path))
	pid, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
}

func TestWrite_ReplacesGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snitch.pid")
	require.NoError(t, os.WriteFile(path, []byte("not a pid"), 0o644))
	require.NoError(t, Write(path))
}

func TestWrite_RefusesLiveProcess(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("liveness probe uses signal 0")
	}
	path := filepath.Join(t.TempDir(), "snitch.pid")
	require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(os.Getppid())), 0o644))

	err := Write(path)
	assert.ErrorIs(t, err, ErrRunning)
}

func TestRemove_OwnPID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snitch.pid")
	require.NoError(t, Write(path))
	require.NoError(t, Remove(path))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestRemove_LeavesForeignPID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snitch.pid")
	require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(deadPID)), 0o644))
	require.NoError(t, Remove(path))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestRemove_Missing(t *testing.T) {
	assert.NoError(t, Remove(filepath.Join(t.TempDir(), "missing.pid")))
}
