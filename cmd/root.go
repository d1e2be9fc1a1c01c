package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/scribe/internal/config"
	"github.com/zjrosen/scribe/internal/editor"
	"github.com/zjrosen/scribe/internal/log"
	"github.com/zjrosen/scribe/internal/lsp"
	"github.com/zjrosen/scribe/internal/platform"
	"github.com/zjrosen/scribe/internal/terminal"
	"github.com/zjrosen/scribe/internal/tui"
	"github.com/zjrosen/scribe/internal/watcher"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in the document.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

var (
	version = "dev"
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "scribe [path...]",
	Short: "A terminal text editor",
	Long: `A text editor with multiple cursors, split panes, an embedded terminal
and language server support. Paths are opened as tabs; a directory opens
the file explorer.`,
	Version: version,
	RunE:    runApp,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: scribe.toml beside the binary or in the working directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "write a debug log and enable the log overlay (f12)")
	rootCmd.PersistentFlags().String("log-file", "scribe.log", "debug log path")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("log_file", rootCmd.PersistentFlags().Lookup("log-file"))
	viper.SetEnvPrefix("scribe")
	viper.AutomaticEnv()
}

// setupLogging opens the debug log when --debug or SCRIBE_DEBUG is set.
func setupLogging() (func(), error) {
	if !viper.GetBool("debug") {
		return func() {}, nil
	}
	cleanup, err := log.Init(viper.GetString("log_file"))
	if err != nil {
		return nil, err
	}
	log.Info(log.CatConfig, "scribe starting", "version", version)
	return cleanup, nil
}

// configPath resolves the config file to an absolute path so watcher
// events can be matched against it.
func configPath() string {
	path := config.Discover(cfgFile)
	if path == "" {
		return ""
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// workspace picks the editor root from the arguments: the first directory
// argument becomes the root, otherwise the working directory is used.
func workspace(args []string) (string, error) {
	for _, arg := range args {
		if info, err := os.Stat(arg); err == nil && info.IsDir() {
			return filepath.Abs(arg)
		}
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	return wd, nil
}

// openArgs opens each file path as a tab. When no file opens, the first
// directory is explored; with no paths an untitled document is shown.
func openArgs(e *editor.Editor, dlg platform.Dialog, args []string) {
	if len(args) == 0 {
		e.NewDocument()
		return
	}
	opened := false
	dir := ""
	for _, arg := range args {
		if info, err := os.Stat(arg); err == nil && info.IsDir() {
			if dir == "" {
				dir = arg
			}
			continue
		}
		if err := e.Open(arg); err != nil {
			dlg.Error("Open failed", err.Error())
			continue
		}
		opened = true
	}
	if !opened && dir != "" {
		e.Explore(dir)
	}
}

func runApp(cmd *cobra.Command, args []string) error {
	cleanup, err := setupLogging()
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	defer cleanup()

	root, err := workspace(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	dlg := &tui.Dialog{}
	store, cfgErr := config.NewStore(configPath())
	if cfgErr != nil {
		dlg.Error("Config error", cfgErr.Error())
	}

	files, err := watcher.New(watcher.DefaultConfig())
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	files.Start()
	defer func() { _ = files.Stop() }()
	if store.Path() != "" {
		if err := files.Add(store.Path()); err != nil {
			log.ErrorErr(log.CatWatcher, "watching config failed", err, "path", store.Path())
		}
	}

	// model is assigned before anything can spawn a shell or a server.
	var model *tui.Model
	spawn := func(ctx context.Context, dir string, cols, rows int) (terminal.Process, error) {
		shell := strings.Fields(store.Config().Shell)
		if len(shell) == 0 {
			shell = []string{config.DefaultShell()}
		}
		p, err := terminal.StartPTY(ctx, dir, cols, rows, shell[0], shell[1:]...)
		if err != nil {
			return nil, err
		}
		model.Wake(p.Wake())
		model.Wake(p.Done())
		return p, nil
	}
	startServer := func(ctx context.Context, dir string, command []string) (lsp.Transport, error) {
		t, err := lsp.StartServer(ctx, dir, command)
		if err != nil {
			return nil, err
		}
		model.Wake(t.Wake())
		return t, nil
	}

	e := editor.New(ctx, store.Config(), editor.Options{
		Root:        root,
		Dialog:      dlg,
		Spawn:       spawn,
		StartServer: startServer,
		Watcher:     files,
	})
	model = tui.New(ctx, tui.Options{
		Editor: e,
		Dialog: dlg,
		Store:  store,
		Files:  files,
		Logs:   viper.GetBool("debug"),
	})
	openArgs(e, dlg, args)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err = p.Run()

	e.Close()
	model.Close()
	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
