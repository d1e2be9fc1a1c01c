package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/scribe/internal/config"
	"github.com/zjrosen/scribe/internal/editor"
	"github.com/zjrosen/scribe/internal/tui"
)

func TestWorkspaceUsesDirectoryArgument(t *testing.T) {
	dir := t.TempDir()
	got, err := workspace([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	wd, err := os.Getwd()
	require.NoError(t, err)
	file := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(file, []byte("a"), 0o644))
	got, err = workspace([]string{file})
	require.NoError(t, err)
	assert.Equal(t, wd, got, "files keep the working directory")

	got, err = workspace([]string{file, dir})
	require.NoError(t, err)
	assert.Equal(t, dir, got, "a directory roots the workspace beside files")
}

func TestOpenArgsExploresOnlyWithoutFiles(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(file, []byte("a"), 0o644))

	tests := []struct {
		name        string
		args        []string
		wantBuffers int
		wantPrompt  bool
	}{
		{name: "no args opens an untitled document", wantBuffers: 1},
		{name: "directory alone explores", args: []string{dir}, wantPrompt: true},
		{name: "files win over directories", args: []string{dir, file}, wantBuffers: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := editor.New(context.Background(), config.Defaults(), editor.Options{Root: dir})
			t.Cleanup(e.Close)
			openArgs(e, &tui.Dialog{}, tt.args)
			assert.Equal(t, tt.wantBuffers, e.BufferCount())
			_, _, _, _, prompting := e.PromptLines()
			assert.Equal(t, tt.wantPrompt, prompting)
		})
	}
}

func TestConfigPathIsAbsolute(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("tab_width = 2\n"), 0o644))

	old := cfgFile
	t.Cleanup(func() { cfgFile = old })
	cfgFile = path
	assert.Equal(t, path, configPath())
}

func TestInitWritesLoadableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scribe.toml")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"init", path})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "wrote "+path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Defaults().TabWidth, cfg.TabWidth)

	rootCmd.SetArgs([]string{"init", path})
	assert.Error(t, rootCmd.Execute(), "existing files are kept")
}
