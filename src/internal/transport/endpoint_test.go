// FILE: ziplog/src/internal/transport/endpoint_test.go
package transport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zipscene/ziplog/src/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDescriptor = "ziplog-test.marker"

func TestFindRoot(t *testing.T) {
	root := t.TempDir()
	deep := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(deep, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a", testDescriptor), nil, 0o644))

	found, ok := FindRoot(deep, testDescriptor)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "a"), found)

	found, ok = FindRoot(filepath.Join(root, "a"), testDescriptor)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "a"), found)

	_, ok = FindRoot(root, testDescriptor)
	assert.False(t, ok)
}

func TestFindRoot_IgnoresDirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, testDescriptor), 0o755))

	_, ok := FindRoot(root, testDescriptor)
	assert.False(t, ok)
}

func TestResolveSocketDir(t *testing.T) {
	t.Run("explicit directory", func(t *testing.T) {
		dir := t.TempDir()
		resolved, err := ResolveSocketDir(dir, "")
		require.NoError(t, err)
		assert.Equal(t, dir, resolved)
	})

	t.Run("descriptor ancestor", func(t *testing.T) {
		wd, err := os.Getwd()
		require.NoError(t, err)
		root, ok := FindRoot(wd, core.DefaultDescriptorFile)
		require.True(t, ok, "tests run inside the module")

		resolved, err := ResolveSocketDir("", "")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, core.SocketSubdir), resolved)
	})

	t.Run("no ancestor", func(t *testing.T) {
		_, err := ResolveSocketDir("", "no-such-descriptor-7f3a.marker")
		assert.ErrorIs(t, err, core.ErrConfiguration)
	})
}

func TestClientSocketPath(t *testing.T) {
	dir := t.TempDir()

	path, err := ClientSocketPath(ClientConfig{Endpoint: "/tmp/custom.sock"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.sock", path)

	path, err = ClientSocketPath(ClientConfig{SocketDir: dir, ServerPID: 4242})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "logger-4242"), path)

	path, err = ClientSocketPath(ClientConfig{SocketDir: dir})
	require.NoError(t, err)
	assert.Equal(t, SocketPath(dir, os.Getppid()), path)
}

func TestCheckSocketPath(t *testing.T) {
	assert.NoError(t, CheckSocketPath("/tmp/ziplog-socket/logger-1"))

	long := "/" + strings.Repeat("x", maxSocketPath)
	err := CheckSocketPath(long)
	assert.ErrorIs(t, err, core.ErrConfiguration)

	_, err = ClientSocketPath(ClientConfig{Endpoint: long})
	assert.ErrorIs(t, err, core.ErrConfiguration)
}
