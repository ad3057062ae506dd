// Package config manages the parakeet configuration file at
// ~/.parakeet/config.yaml. Missing keys fall back to defaults, so a partial
// (or absent) config file is always valid.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ErrNotCreatable indicates the data directory could not be created.
// This is the one fatal configuration error: without a writable data
// directory there is nowhere to persist tracking state.
var ErrNotCreatable = errors.New("data directory not creatable")

// Config holds all parakeet settings.
type Config struct {
	WatchPaths            []string `mapstructure:"watch_paths" yaml:"watch_paths" json:"watch_paths"`
	DataDir               string   `mapstructure:"data_dir" yaml:"data_dir" json:"data_dir"`
	ScanIntervalSec       int      `mapstructure:"scan_interval" yaml:"scan_interval" json:"scan_interval"`
	BreadcrumbThreshold   int      `mapstructure:"breadcrumb_threshold" yaml:"breadcrumb_threshold" json:"breadcrumb_threshold"`
	VelocityWindowDays    int      `mapstructure:"velocity_window" yaml:"velocity_window" json:"velocity_window"`
	ExcludePatterns       []string `mapstructure:"exclude_patterns" yaml:"exclude_patterns" json:"exclude_patterns"`
	DashboardPort         int      `mapstructure:"dashboard_port" yaml:"dashboard_port" json:"dashboard_port"`
	GitMaintenanceEnabled bool     `mapstructure:"git_maintenance_enabled" yaml:"git_maintenance_enabled" json:"git_maintenance_enabled"`
	AutoCommitMaxFiles    int      `mapstructure:"auto_commit_max_files" yaml:"auto_commit_max_files" json:"auto_commit_max_files"`
	ScanMaxDepth          int      `mapstructure:"scan_max_depth" yaml:"scan_max_depth" json:"scan_max_depth"`
	ScanRecursive         bool     `mapstructure:"scan_recursive" yaml:"scan_recursive" json:"scan_recursive"`
	EmbedGitNotes         bool     `mapstructure:"embed_git_notes" yaml:"embed_git_notes" json:"embed_git_notes"`

	path string
}

func defaultExcludes() []string {
	return []string{
		"node_modules",
		".git",
		"__pycache__",
		"venv",
		".env",
		"dist",
		"build",
		".pytest_cache",
		".tox",
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("watch_paths", []string{"~/coding"})
	v.SetDefault("data_dir", "~/.parakeet")
	v.SetDefault("scan_interval", 300)
	v.SetDefault("breadcrumb_threshold", 7)
	v.SetDefault("velocity_window", 30)
	v.SetDefault("exclude_patterns", defaultExcludes())
	v.SetDefault("dashboard_port", 5000)
	v.SetDefault("git_maintenance_enabled", true)
	v.SetDefault("auto_commit_max_files", 10)
	v.SetDefault("scan_max_depth", 3)
	v.SetDefault("scan_recursive", true)
	v.SetDefault("embed_git_notes", false)
}

// DefaultPath returns the config file location. The PARAKEET_CONFIG env var
// overrides the default of ~/.parakeet/config.yaml.
func DefaultPath() string {
	if p := os.Getenv("PARAKEET_CONFIG"); p != "" {
		return ExpandHome(p)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".parakeet", "config.yaml")
}

// Load reads the config at path, merging file values over defaults.
// An empty path means DefaultPath(). A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine (defaults apply); a present but broken
		// file is a fatal configuration error.
		if _, statErr := os.Stat(path); statErr == nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.path = path
	return &cfg, nil
}

// Save writes the config back as YAML with mode 0600.
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Set updates a single key and persists the change. Value types are
// coerced through viper's cast rules, so "true" and "10" work from the CLI.
func (c *Config) Set(key, value string) error {
	v := viper.New()
	setDefaults(v)

	raw := map[string]any{}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}
	for k, val := range raw {
		v.Set(k, val)
	}

	// Comma-separated values become lists for the slice-typed keys.
	if key == "watch_paths" || key == "exclude_patterns" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		v.Set(key, parts)
	} else {
		v.Set(key, value)
	}

	var updated Config
	if err := v.Unmarshal(&updated); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	updated.path = c.path
	*c = updated
	return c.Save()
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, strings.TrimPrefix(strings.TrimPrefix(p, "~"), "/"))
	}
	return p
}

// ExpandedWatchPaths returns watch paths with ~ expanded.
func (c *Config) ExpandedWatchPaths() []string {
	out := make([]string, 0, len(c.WatchPaths))
	for _, p := range c.WatchPaths {
		out = append(out, ExpandHome(p))
	}
	return out
}

// EnsureDataDir expands and creates the data directory, returning its path.
// Returns ErrNotCreatable when the directory cannot be created.
func (c *Config) EnsureDataDir() (string, error) {
	dir := ExpandHome(c.DataDir)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrNotCreatable, dir, err)
	}
	return dir, nil
}
