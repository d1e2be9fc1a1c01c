// Package config provides configuration types, defaults, and loading for scribe.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/zjrosen/scribe/internal/log"
	"github.com/zjrosen/scribe/internal/syntax"
)

// FileName is the config file looked up beside the executable and in the
// working directory.
const FileName = "scribe.toml"

// Config holds all configuration options for scribe.
type Config struct {
	Font                   string              `mapstructure:"font" toml:"font"`
	FontSize               float64             `mapstructure:"font_size" toml:"font_size"`
	TabWidth               int                 `mapstructure:"tab_width" toml:"tab_width"`
	IndentWithTabs         bool                `mapstructure:"indent_with_tabs" toml:"indent_with_tabs"`
	TrimTrailingWhitespace bool                `mapstructure:"trim_trailing_whitespace" toml:"trim_trailing_whitespace"`
	FormatOnSave           bool                `mapstructure:"format_on_save" toml:"format_on_save"`
	TerminalHeight         float64             `mapstructure:"terminal_height" toml:"terminal_height"`
	IgnoredDirs            []string            `mapstructure:"ignored_dirs" toml:"ignored_dirs"`
	ScrollBorder           float64             `mapstructure:"scroll_border" toml:"scroll_border"`
	Scrollback             int                 `mapstructure:"scrollback" toml:"scrollback"`
	Shell                  string              `mapstructure:"shell" toml:"shell"`
	LSPPositionEncoding    string              `mapstructure:"lsp_position_encoding" toml:"lsp_position_encoding"`
	Theme                  ThemeConfig         `mapstructure:"theme" toml:"-"`
	Languages              []syntax.Definition `mapstructure:"languages" toml:"languages,omitempty"`

	// Palette is Theme resolved against theme files and chroma styles.
	Palette Theme `mapstructure:"-" toml:"-"`
}

// ThemeConfig is the theme key: either a theme name or a table of colors,
// optionally naming a base theme with name.
type ThemeConfig struct {
	Name   string         `mapstructure:"name"`
	Colors map[string]any `mapstructure:",remain"`
}

// FlattenedColors returns the Colors map flattened to dot-notation keys, so
// a [theme.terminal] table yields "terminal.black" and so on.
func (t ThemeConfig) FlattenedColors() map[string]string {
	result := make(map[string]string)
	flattenColors("", t.Colors, result)
	return result
}

// flattenColors recursively flattens a nested map into dot-notation keys.
func flattenColors(prefix string, m map[string]any, result map[string]string) {
	for k, v := range m {
		key := strings.ToLower(k)
		if prefix != "" {
			key = prefix + "." + key
		}
		switch val := v.(type) {
		case string:
			result[key] = val
		case map[string]any:
			flattenColors(key, val, result)
		}
	}
}

// IndentUnit is the text one Indent inserts.
func (c Config) IndentUnit() string {
	if c.IndentWithTabs {
		return "\t"
	}
	return strings.Repeat(" ", c.TabWidth)
}

// Definitions returns the built-in languages overlaid with the configured
// ones; a configured language replaces a built-in of the same name.
func (c Config) Definitions() []syntax.Definition {
	defs := syntax.Builtin()
	index := make(map[string]int, len(defs))
	for i, d := range defs {
		index[strings.ToLower(d.Name)] = i
	}
	for _, d := range c.Languages {
		if i, ok := index[strings.ToLower(d.Name)]; ok {
			defs[i] = d
			continue
		}
		index[strings.ToLower(d.Name)] = len(defs)
		defs = append(defs, d)
	}
	return defs
}

// Registry compiles Definitions. Languages whose patterns fail are skipped
// and reported.
func (c Config) Registry() (*syntax.Registry, []error) {
	return syntax.NewRegistry(c.Definitions())
}

// DefaultIgnoredDirs are skipped by directory walks.
func DefaultIgnoredDirs() []string {
	return []string{".git", ".hg", ".svn", "node_modules", "target", "vendor", "zig-cache", "zig-out"}
}

// DefaultShell returns $SHELL or /bin/sh.
func DefaultShell() string {
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh
	}
	return "/bin/sh"
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Font:                   "monospace",
		FontSize:               14,
		TabWidth:               4,
		TrimTrailingWhitespace: true,
		TerminalHeight:         12,
		IgnoredDirs:            DefaultIgnoredDirs(),
		ScrollBorder:           3,
		Scrollback:             10000,
		Shell:                  DefaultShell(),
		LSPPositionEncoding:    "utf-16",
		Palette:                DefaultTheme(),
	}
}

// ValidationError reports one invalid option.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks option ranges. Color values are checked when the palette
// is resolved.
func Validate(c Config) error {
	var errs []error
	if c.TabWidth < 1 || c.TabWidth > 16 {
		errs = append(errs, &ValidationError{Field: "tab_width", Message: fmt.Sprintf("must be between 1 and 16, got %d", c.TabWidth)})
	}
	if c.FontSize <= 0 {
		errs = append(errs, &ValidationError{Field: "font_size", Message: "must be positive"})
	}
	if c.TerminalHeight < 0 {
		errs = append(errs, &ValidationError{Field: "terminal_height", Message: "must not be negative"})
	}
	if c.ScrollBorder < 0 {
		errs = append(errs, &ValidationError{Field: "scroll_border", Message: "must not be negative"})
	}
	if c.Scrollback < 0 {
		errs = append(errs, &ValidationError{Field: "scrollback", Message: "must not be negative"})
	}
	switch c.LSPPositionEncoding {
	case "utf-8", "utf-16", "utf-32":
	default:
		errs = append(errs, &ValidationError{Field: "lsp_position_encoding", Message: fmt.Sprintf("must be utf-8, utf-16 or utf-32, got %q", c.LSPPositionEncoding)})
	}
	for i, l := range c.Languages {
		if l.Name == "" {
			errs = append(errs, &ValidationError{Field: fmt.Sprintf("languages[%d].name", i), Message: "is required"})
		}
	}
	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("font", d.Font)
	v.SetDefault("font_size", d.FontSize)
	v.SetDefault("tab_width", d.TabWidth)
	v.SetDefault("indent_with_tabs", d.IndentWithTabs)
	v.SetDefault("trim_trailing_whitespace", d.TrimTrailingWhitespace)
	v.SetDefault("format_on_save", d.FormatOnSave)
	v.SetDefault("terminal_height", d.TerminalHeight)
	v.SetDefault("ignored_dirs", d.IgnoredDirs)
	v.SetDefault("scroll_border", d.ScrollBorder)
	v.SetDefault("scrollback", d.Scrollback)
	v.SetDefault("shell", d.Shell)
	v.SetDefault("lsp_position_encoding", d.LSPPositionEncoding)
}

// themeNameHook lets `theme = "name"` decode into ThemeConfig.
func themeNameHook(from, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(ThemeConfig{}) || from.Kind() != reflect.String {
		return data, nil
	}
	return map[string]any{"name": data}, nil
}

// Load reads path, applies defaults, validates and resolves the palette.
// An empty path yields the defaults.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigType("toml")
	setDefaults(v)
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		themeNameHook,
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return Config{}, fmt.Errorf("decoding config %s: %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}

	dir := ""
	if path != "" {
		dir = filepath.Dir(path)
	}
	palette, err := ResolveTheme(cfg.Theme, dir)
	if err != nil {
		return Config{}, err
	}
	cfg.Palette = palette
	log.Debug(log.CatConfig, "loaded config", "path", path, "languages", len(cfg.Languages))
	return cfg, nil
}

// Discover returns the config file to use: flagPath when set, else
// scribe.toml beside the executable, else in the working directory. It
// returns "" when none exists.
func Discover(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	var candidates []string
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), FileName))
	}
	if wd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(wd, FileName))
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c
		}
	}
	return ""
}
