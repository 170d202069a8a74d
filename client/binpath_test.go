package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "bin", "x"), expandTilde("~/bin/x"))
	assert.Equal(t, "/abs/path", expandTilde("/abs/path"))
	assert.Equal(t, home, expandTilde("~"))
}

func TestIsExplicitPath(t *testing.T) {
	assert.True(t, isExplicitPath("./relative"))
	assert.True(t, isExplicitPath("/absolute"))
	assert.True(t, isExplicitPath("~/home-relative"))
	assert.False(t, isExplicitPath("bare-name"))
	assert.False(t, isExplicitPath(""))
}

func TestResolveBinaryExplicitMissingFails(t *testing.T) {
	_, _, err := resolveBinary("/definitely/does/not/exist/agent-relay-broker")
	assert.Error(t, err)
}

func TestResolveBinaryExplicitExisting(t *testing.T) {
	dir := t.TempDir()
	binPath := filepath.Join(dir, "agent-relay-broker")
	require.NoError(t, os.WriteFile(binPath, []byte("#!/bin/sh\n"), 0o755))

	resolved, explicitDir, err := resolveBinary(binPath)
	require.NoError(t, err)
	assert.Equal(t, explicitDir, filepath.Dir(resolved))
	assert.FileExists(t, resolved)
}

func TestPathWithDirPrependsOnlyOnce(t *testing.T) {
	env := []string{"PATH=/usr/bin"}
	once := pathWithDir(env, "/extra")
	assert.Equal(t, "PATH=/extra"+string(os.PathListSeparator)+"/usr/bin", once[0])

	twice := pathWithDir(once, "/extra")
	assert.Equal(t, once, twice)
}

func TestPathWithDirEmptyDirNoop(t *testing.T) {
	env := []string{"PATH=/usr/bin"}
	assert.Equal(t, env, pathWithDir(env, ""))
}
