package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew_EnvOverridesFileAndDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName+".yaml"), []byte("port: \"9000\"\nnotify_from: file@example.com\n"), 0o600))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("NOTIFY_FROM", "env@example.com")

	v, err := New(map[string]any{"port": "8080", "watch_list_interval": "5s"})
	require.NoError(t, err)
	require.Equal(t, "9000", String(v, "port"))
	require.Equal(t, "env@example.com", String(v, "notify_from"))
	require.Equal(t, 5*time.Second, v.GetDuration("watch_list_interval"))
}

func TestNew_MissingFileIsFine(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	v, err := New(map[string]any{"database_driver": "memory"})
	require.NoError(t, err)
	require.Equal(t, "memory", String(v, "database_driver"))
}
