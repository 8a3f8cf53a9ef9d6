package logwrite

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ozzus/logroute/internal/domain"
	"ozzus/logroute/internal/sink"
)

func lastLine(t *testing.T, path string) string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err, "open log file")
	defer f.Close()

	var last string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		last = sc.Text()
	}
	require.NoError(t, sc.Err())
	return last
}

func TestWrite_FileSystem(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := os.Stat(DefaultFileName)
	require.True(t, os.IsNotExist(err), "log file must not exist before the first write")

	require.NoError(t, Write(domain.LogTargetFileSystem, domain.LogLevelInfo, "Test log message"))
	assert.Equal(t, "[INFO] Test log message", lastLine(t, DefaultFileName))
}

func TestWrite_FileSystemAppendsOneLinePerCall(t *testing.T) {
	t.Chdir(t.TempDir())

	levels := []domain.LogLevel{domain.LogLevelInfo, domain.LogLevelError, domain.LogLevelWarn, domain.LogLevelDebug}
	for _, lvl := range levels {
		require.NoError(t, Write(domain.LogTargetFileSystem, lvl, "msg "+lvl.String()))
		assert.Equal(t, "["+lvl.String()+"] msg "+lvl.String(), lastLine(t, DefaultFileName))
	}

	data, err := os.ReadFile(DefaultFileName)
	require.NoError(t, err)
	assert.Equal(t, "[INFO] msg INFO\n[ERROR] msg ERROR\n[WARN] msg WARN\n[DEBUG] msg DEBUG\n", string(data))
}

type label string

func TestWrite_AcceptsStringLikeValues(t *testing.T) {
	t.Chdir(t.TempDir())

	owned := "owned"
	require.NoError(t, Write(domain.LogTargetFileSystem, domain.LogLevelInfo, owned))
	require.NoError(t, Write(domain.LogTargetFileSystem, domain.LogLevelInfo, []byte("bytes")))
	require.NoError(t, Write(domain.LogTargetFileSystem, domain.LogLevelInfo, label("named")))

	data, err := os.ReadFile(DefaultFileName)
	require.NoError(t, err)
	assert.Equal(t, "[INFO] owned\n[INFO] bytes\n[INFO] named\n", string(data))
}

func TestWrite_FileOpenError(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	// a directory where the file should be makes the open fail
	require.NoError(t, os.Mkdir(filepath.Join(dir, DefaultFileName), 0o755))

	err := Write(domain.LogTargetFileSystem, domain.LogLevelError, "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, sink.ErrFileOpen)

	var openErr *sink.FileOpenError
	require.ErrorAs(t, err, &openErr)
	assert.NotEmpty(t, openErr.Reason)
}

func TestWrite_FileWriteError(t *testing.T) {
	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("/dev/full not available")
	}
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.Symlink("/dev/full", filepath.Join(dir, DefaultFileName)))

	err := Write(domain.LogTargetFileSystem, domain.LogLevelError, "disk full")
	require.Error(t, err)
	assert.ErrorIs(t, err, sink.ErrFileWrite)

	var writeErr *sink.FileWriteError
	require.ErrorAs(t, err, &writeErr)
	assert.NotEmpty(t, writeErr.Reason)
}

func TestWrite_ConsoleNeverFails(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	stdout := os.Stdout
	os.Stdout = w
	t.Cleanup(func() { os.Stdout = stdout })

	require.NoError(t, Write(domain.LogTargetConsole, domain.LogLevelDebug, "x"))
	require.NoError(t, w.Close())
	os.Stdout = stdout

	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "[DEBUG] x\n", string(out))
}

func TestWrite_ConsoleIgnoresClosedStdout(t *testing.T) {
	_, w, err := os.Pipe()
	require.NoError(t, err)
	require.NoError(t, w.Close())
	stdout := os.Stdout
	os.Stdout = w
	t.Cleanup(func() { os.Stdout = stdout })

	assert.NoError(t, Write(domain.LogTargetConsole, domain.LogLevelInfo, "dropped"))
}

func TestWrite_NetworkIsNotImplemented(t *testing.T) {
	assert.PanicsWithValue(t, sink.ErrNotImplemented, func() {
		_ = Write(domain.LogTargetNetwork, domain.LogLevelInfo, "x")
	})
}
