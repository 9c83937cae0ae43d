// Package config provides configuration types and defaults for cmdhl.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zjrosen/cmdhl/internal/highlight"
	"github.com/zjrosen/cmdhl/internal/log"
	"github.com/zjrosen/cmdhl/internal/styles"
	"github.com/zjrosen/cmdhl/internal/tracing"
	"github.com/zjrosen/cmdhl/internal/watcher"
)

// Config holds all configuration options for cmdhl.
type Config struct {
	// RulesFile is a YAML rule file replacing the built-in rules. Empty uses
	// the built-in rules.
	RulesFile string          `mapstructure:"rules_file"`
	Highlight HighlightConfig `mapstructure:"highlight"`
	Parser    ParserConfig    `mapstructure:"parser"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Watch     WatchConfig     `mapstructure:"watch"`
	Tracing   tracing.Config  `mapstructure:"tracing"`
	Theme     ThemeConfig     `mapstructure:"theme"`
}

// HighlightConfig tunes the engine.
type HighlightConfig struct {
	// NestedPriority decides whether spans from nested token lists paint
	// over their parents ("inner", default) or under them ("outer").
	NestedPriority string `mapstructure:"nested_priority"`

	// Reuse keeps the previous result when only whitespace was appended to a
	// complete command.
	Reuse bool `mapstructure:"reuse"`
}

// ParserConfig tunes the shell tokenizer.
type ParserConfig struct {
	Comments bool `mapstructure:"comments"` // treat # as a comment start
}

// CacheConfig controls the recent-buffer result cache.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// WatchConfig controls rules file hot reload in the editor.
type WatchConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// ThemeConfig selects the styles rule highlights resolve to.
type ThemeConfig struct {
	// Preset loads a built-in theme as the base.
	// Valid values: "default", "catppuccin-mocha", "high-contrast", "plain"
	Preset string `mapstructure:"preset"`

	// Styles overrides or adds individual named styles on top of the preset.
	// Example YAML:
	//   styles:
	//     command: {fg: "#A6E3A1", bold: true}
	Styles map[string]styles.Style `mapstructure:"styles"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	tc := tracing.DefaultConfig()
	tc.FilePath = DefaultTracesFilePath()
	return Config{
		Highlight: HighlightConfig{
			NestedPriority: string(highlight.NestedInner),
			Reuse:          true,
		},
		Cache: CacheConfig{
			Enabled: false,
			TTL:     2 * time.Minute,
		},
		Watch: WatchConfig{
			Enabled:  true,
			Debounce: watcher.DefaultDebounce,
		},
		Tracing: tc,
		Theme: ThemeConfig{
			Preset: "default",
		},
	}
}

// DefaultConfigDir returns ~/.config/cmdhl, or .cmdhl when the home
// directory is unknown.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cmdhl"
	}
	return filepath.Join(home, ".config", "cmdhl")
}

// DefaultTracesFilePath returns the default JSONL trace output.
func DefaultTracesFilePath() string {
	return filepath.Join(DefaultConfigDir(), "traces", "traces.jsonl")
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// RulesPath returns the configured rules file with ~ expanded, or "" for
// the built-in rules.
func (c Config) RulesPath() string {
	if c.RulesFile == "" {
		return ""
	}
	return ExpandHome(c.RulesFile)
}

// Nested returns the parsed highlight.nested_priority.
func (c HighlightConfig) Nested() (highlight.NestedPriority, error) {
	return highlight.ParseNestedPriority(c.NestedPriority)
}

// Registry builds the style registry from the theme preset and overrides.
func (c ThemeConfig) Registry() (*styles.Registry, error) {
	reg, err := styles.FromPreset(c.Preset)
	if err != nil {
		return nil, fmt.Errorf("theme.preset: %w", err)
	}
	for _, name := range sortedKeys(c.Styles) {
		if err := reg.Set(name, c.Styles[name]); err != nil {
			return nil, fmt.Errorf("theme.styles: %w", err)
		}
	}
	return reg, nil
}

// Validate checks the configuration for errors. Zero values that have a
// default are accepted.
func Validate(c Config) error {
	if _, err := c.Highlight.Nested(); err != nil {
		return fmt.Errorf("highlight.nested_priority: %w", err)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got %s", c.Cache.TTL)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce)
	}
	if c.Watch.Enabled && c.RulesFile != "" {
		if info, err := os.Stat(c.RulesPath()); err == nil && info.IsDir() {
			return fmt.Errorf("rules_file %q is a directory", c.RulesFile)
		}
	}
	if _, err := c.Theme.Registry(); err != nil {
		return err
	}
	if err := c.Tracing.Validate(); err != nil {
		return err
	}
	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# cmdhl configuration

# Rule file replacing the built-in highlight rules.
# Run 'cmdhl rules dump > rules.yaml' for a starting point.
# rules_file: ~/.config/cmdhl/rules.yaml

highlight:
  nested_priority: inner   # "inner": nested tokens paint over their parents, "outer": under
  reuse: true              # keep highlights when only whitespace is appended to a complete command

parser:
  comments: false          # treat an unquoted # as the start of a comment

# Remember highlight results for recently typed buffers
cache:
  enabled: false
  ttl: 2m

# Reload rules_file in the editor when it changes
watch:
  enabled: true
  debounce: 200ms

theme:
  preset: default          # default, catppuccin-mocha, high-contrast, plain
  # Override or add named styles used by rules:
  # styles:
  #   command: {fg: "#A6E3A1", bold: true}
  #   error: {fg: red, underline: true}

# Distributed tracing of engine updates
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/cmdhl/traces/traces.jsonl
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
