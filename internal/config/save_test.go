package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDefaultConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)
	require.NoError(t, WriteDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "tab_width = 4")
	assert.Contains(t, string(data), "[theme]")

	cfg, err := Load(path)
	require.NoError(t, err)
	want := Defaults()
	assert.Equal(t, want.TabWidth, cfg.TabWidth)
	assert.Equal(t, want.IgnoredDirs, cfg.IgnoredDirs)
	assert.Equal(t, want.Palette, cfg.Palette)
	assert.Len(t, cfg.Definitions(), len(want.Definitions()))
	_, errs := cfg.Registry()
	assert.Empty(t, errs)
}

func TestStore_ReloadKeepsPreviousOnError(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "tab_width = 2")
	s, err := NewStore(path)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Config().TabWidth)

	require.NoError(t, os.WriteFile(path, []byte("tab_width = 99"), 0o600))
	cfg, err := s.Reload()
	require.Error(t, err)
	assert.Equal(t, 2, cfg.TabWidth)
	assert.Equal(t, 2, s.Config().TabWidth)

	require.NoError(t, os.WriteFile(path, []byte("tab_width = 8"), 0o600))
	cfg, err = s.Reload()
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.TabWidth)
}

func TestNewStore_FallsBackToDefaults(t *testing.T) {
	s, err := NewStore(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	assert.Equal(t, Defaults().TabWidth, s.Config().TabWidth)
}
