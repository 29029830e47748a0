package config

import (
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExpandDBPath(t *testing.T) {
	require.Equal(t, "/home/user/.etf-cli/db", ExpandDBPath("/home/user/.etf-cli", "db"))
	require.Equal(t, "/var/lib/terms", ExpandDBPath("/home/user/.etf-cli", "/var/lib/terms"))
}

func TestHomeDirExists(t *testing.T) {
	dir := t.TempDir()

	exists, err := HomeDirExists(dir)
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = HomeDirExists(path.Join(dir, "nope"))
	require.NoError(t, err)
	require.False(t, exists)

	filePath := path.Join(dir, "file")
	require.NoError(t, os.WriteFile(filePath, []byte("x"), 0644))
	_, err = HomeDirExists(filePath)
	require.Error(t, err)
}

func TestInitHomeDir(t *testing.T) {
	homeDir := path.Join(t.TempDir(), "home")
	require.Error(t, EnsureHomeDir(homeDir))

	require.NoError(t, InitHomeDir(homeDir))
	require.NoError(t, EnsureHomeDir(homeDir))

	cfg, err := ReadConfigFile(homeDir)
	require.NoError(t, err)
	require.Equal(t, DefaultConfig, *cfg)

	stat, err := os.Stat(path.Join(homeDir, DBPath))
	require.NoError(t, err)
	require.True(t, stat.IsDir())
}
