package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/jamesainslie/shelve/pkg/shelve/config"
	"github.com/jamesainslie/shelve/pkg/shelve/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage shelve configuration settings.

Configuration is loaded from:
  1. $XDG_CONFIG_HOME/shelve/config.yaml (if set)
  2. ~/.config/shelve/config.yaml

Environment variables can override config file settings using the SHELVE_ prefix:
  SHELVE_SORT_MODE=size
  SHELVE_OUTPUT=json
  SHELVE_LOGGING_LEVEL=debug`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration settings from all sources.`,
	RunE:  runConfigShow,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long: `Open the configuration file in your default editor.

The editor is determined by:
  1. $VISUAL environment variable
  2. $EDITOR environment variable
  3. Falls back to 'vi'

If the config file doesn't exist, a default one will be created first.`,
	RunE: runConfigEdit,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	Long:  `Create a default configuration file if one doesn't exist.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Long:  `Display the path to the configuration file.`,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// runConfigShow displays the current configuration.
func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	out := cmd.OutOrStdout()

	if configFile := viper.ConfigFileUsed(); configFile != "" {
		fmt.Fprintf(out, "Config file: %s\n\n", configFile)
	} else {
		fmt.Fprintln(out, "Config file: (using defaults, no file found)")
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, "Current Configuration:")
	fmt.Fprintln(out, "----------------------")
	fmt.Fprintf(out, "sort.mode:             %s\n", cfg.Sort.Mode)
	fmt.Fprintf(out, "sort.granularity:      %s\n", cfg.Sort.Granularity)
	fmt.Fprintf(out, "sort.size_breakpoints: %s\n", formatBreakpoints(cfg))
	fmt.Fprintf(out, "exclude:               %v\n", cfg.Exclude)
	fmt.Fprintf(out, "output:                %s\n", cfg.Output)
	fmt.Fprintf(out, "logging.level:         %s\n", cfg.Logging.Level)
	fmt.Fprintf(out, "logging.path:          %s\n", logPathDisplay(cfg))
	fmt.Fprintf(out, "state dir:             %s\n", config.StateDir())

	fmt.Fprintln(out, "\nEnvironment Overrides:")
	fmt.Fprintln(out, "----------------------")
	envVars := []string{
		"SHELVE_SORT_MODE",
		"SHELVE_SORT_GRANULARITY",
		"SHELVE_EXCLUDE",
		"SHELVE_OUTPUT",
		"SHELVE_LOGGING_LEVEL",
		"SHELVE_LOGGING_PATH",
	}

	anyOverrides := false
	for _, name := range envVars {
		if val := os.Getenv(name); val != "" {
			fmt.Fprintf(out, "%s=%s\n", name, val)
			anyOverrides = true
		}
	}
	if !anyOverrides {
		fmt.Fprintln(out, "(none)")
	}

	return nil
}

// formatBreakpoints renders the configured breakpoints as parsed byte
// counts, so a bad size string shows up here rather than mid-run.
func formatBreakpoints(cfg *config.Config) string {
	bps, err := cfg.Breakpoints()
	if err != nil {
		return fmt.Sprintf("%v (invalid: %v)", cfg.Sort.SizeBreakpoints, err)
	}

	labels := make([]string, 0, len(bps))
	for _, bp := range bps {
		labels = append(labels, types.FormatSize(bp))
	}
	return strings.Join(labels, ", ")
}

// logPathDisplay shows the effective log file path.
func logPathDisplay(cfg *config.Config) string {
	if cfg.Logging.Path != "" {
		return cfg.Logging.Path
	}
	return filepath.Join(config.StateDir(), "shelve.log") + " (default)"
}

// runConfigEdit opens the config file in an editor.
func runConfigEdit(cmd *cobra.Command, args []string) error {
	if err := config.WriteDefault(); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	configDir, err := config.ConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}
	configPath := filepath.Join(configDir, "config.yaml")

	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}

	editorCmd := exec.Command(editor, configPath)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("editor command failed: %w", err)
	}

	return nil
}

// runConfigInit creates a default config file.
func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir, err := config.ConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}
	configPath := filepath.Join(configDir, "config.yaml")

	if _, err := os.Stat(configPath); err == nil {
		printInfo("Config file already exists: %s", configPath)
		printInfo("Use 'shelve config edit' to modify it.")
		return nil
	}

	if err := config.WriteDefault(); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	printInfo("Created default config file: %s", configPath)
	return nil
}

// runConfigPath shows the config file path.
func runConfigPath(cmd *cobra.Command, args []string) error {
	configDir, err := config.ConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), filepath.Join(configDir, "config.yaml"))
	return nil
}
