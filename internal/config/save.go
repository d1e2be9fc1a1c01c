package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/zjrosen/scribe/internal/log"
)

// themeTable renders t in the [theme] layout Load reads back.
func themeTable(t Theme) map[string]any {
	table := make(map[string]any)
	for _, key := range []string{
		"normal", "comment", "keyword", "function", "number", "symbol", "string", "meta",
		"selection", "line_number", "border", "background", "subtle", "error", "warning",
	} {
		table[key] = t.slot(key).Hex()
	}
	term := make(map[string]any, len(ansiNames))
	for i, name := range ansiNames {
		term[name] = t.Terminal[i].Hex()
	}
	table["terminal"] = term
	return table
}

// Marshal renders c as TOML, including its palette and the built-in
// languages when c configures none.
func Marshal(c Config) ([]byte, error) {
	if len(c.Languages) == 0 {
		c.Languages = c.Definitions()
	}
	var buf bytes.Buffer
	buf.WriteString("# scribe configuration\n\n")
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	buf.WriteString("\n")
	if err := enc.Encode(map[string]any{"theme": themeTable(c.Palette)}); err != nil {
		return nil, fmt.Errorf("encoding theme: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteDefaultConfig creates a config file at the given path with default
// settings. Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	data, err := Marshal(Defaults())
	if err != nil {
		return err
	}
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}
	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
