package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/jamesainslie/shelve/pkg/shelve/types"
	"github.com/spf13/viper"
)

// SortConfig configures classification.
type SortConfig struct {
	// Mode is the default sort mode: extension, size, mtime, or ctime.
	Mode string `mapstructure:"mode"`

	// Granularity is the date bucket granularity: year, month, or day.
	Granularity string `mapstructure:"granularity"`

	// SizeBreakpoints are the size bucket boundaries as size strings.
	SizeBreakpoints []string `mapstructure:"size_breakpoints"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

// Config represents the application configuration.
type Config struct {
	Sort    SortConfig    `mapstructure:"sort"`
	Exclude []string      `mapstructure:"exclude"`
	Output  string        `mapstructure:"output"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// Breakpoints parses the configured size breakpoints into byte counts.
func (c *Config) Breakpoints() ([]int64, error) {
	bps := make([]int64, 0, len(c.Sort.SizeBreakpoints))
	for _, s := range c.Sort.SizeBreakpoints {
		n, err := types.ParseSize(s)
		if err != nil {
			return nil, fmt.Errorf("size breakpoint %q: %w", s, err)
		}
		bps = append(bps, n)
	}
	return bps, nil
}

// Load loads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/shelve/config.yaml
//   - $HOME/.config/shelve/config.yaml
//
// Environment variables are prefixed with SHELVE_ (e.g., SHELVE_SORT_MODE).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		v.AddConfigPath(filepath.Join(xdgConfigHome, "shelve"))
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	v.AddConfigPath(filepath.Join(homeDir, ".config", "shelve"))

	v.SetEnvPrefix("SHELVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is acceptable; we use defaults.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers the default values on a viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("sort.mode", DefaultMode)
	v.SetDefault("sort.granularity", DefaultGranularity)
	v.SetDefault("sort.size_breakpoints", DefaultSizeBreakpoints)
	v.SetDefault("exclude", []string{})
	v.SetDefault("output", DefaultOutputFormat)
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.path", "")
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "shelve"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "shelve"), nil
}

// StateDir returns $XDG_STATE_HOME/shelve/ for log files.
func StateDir() string {
	return filepath.Join(xdg.StateHome, "shelve")
}

// EnsureConfigDir creates the configuration directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return nil
}

// WriteDefault writes a commented default config file if none exists.
// Returns nil if a config file already exists.
func WriteDefault() error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}

	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	path := filepath.Join(dir, "config.yaml")

	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	content := fmt.Sprintf(`# Shelve configuration

sort:
  # Sort mode: extension, size, mtime, or ctime
  mode: %s

  # Date bucket granularity for the time modes: year, month, or day
  granularity: %s

  # Size bucket boundaries, low to high
  size_breakpoints:
    - %s

# Glob patterns to skip while scanning
exclude: []

# Summary format: pretty, plain, table, json, or yaml
output: %s

logging:
  # File log level: debug, info, warn, or error
  level: %s

  # Log file path; empty uses the default, "off" disables file logging
  path: ""
`, DefaultMode, DefaultGranularity,
		strings.Join(DefaultSizeBreakpoints, "\n    - "),
		DefaultOutputFormat, DefaultLogLevel)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ExpandPath expands ~ in a path to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, path[1:]), nil
}
