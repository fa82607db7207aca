package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jamesainslie/shelve/pkg/shelve/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "shelve [flags] DIRECTORY",
		Short: "Sort files into folders by extension, size, or date",
		Long: `Shelve organizes the files in a directory into subfolders based on a
chosen criterion: file extension, size bucket, or modification/creation
date. Files are moved by default; use --copy to duplicate instead.

Nothing is overwritten unless you ask for it: conflicting files are
skipped by default, prompted for with --interactive, renamed with
--rename, or overwritten with --force.

Examples:
  shelve ~/Downloads                 # Sort by extension
  shelve -b size ~/Downloads         # Sort into size buckets
  shelve -b mtime -r ~/photos        # Sort subtree by modification month
  shelve -c -d .                     # Preview a copy run, change nothing
  shelve -u ~/Downloads              # List distinct extensions and exit
  shelve version                     # Show version information`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runSort,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/shelve/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log every per-file decision and action")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "errors and summary only")

	rootCmd.Flags().StringP("by", "b", "", "sort mode: extension, size, mtime, or ctime")
	rootCmd.Flags().BoolP("copy", "c", false, "copy files instead of moving")
	rootCmd.Flags().BoolP("dry-run", "d", false, "simulate actions, change nothing")
	rootCmd.Flags().BoolP("force", "f", false, "overwrite conflicts and clean up without prompting")
	rootCmd.Flags().BoolP("interactive", "i", false, "prompt before each conflict and placement")
	rootCmd.Flags().BoolP("recursive", "r", false, "sort subdirectories as well")
	rootCmd.Flags().BoolP("unique", "u", false, "list distinct extensions and exit")
	rootCmd.Flags().Bool("rename", false, "rename with a numeric suffix on conflict instead of skipping")
	rootCmd.Flags().StringSliceP("exclude", "e", nil, "glob patterns to skip (can be specified multiple times)")
	rootCmd.Flags().String("granularity", "", "date bucket granularity: year, month, or day")
	rootCmd.Flags().StringP("output", "o", "", "summary format: pretty, plain, table, json, or yaml")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("sort.mode", rootCmd.Flags().Lookup("by"))
	_ = viper.BindPFlag("copy", rootCmd.Flags().Lookup("copy"))
	_ = viper.BindPFlag("dry_run", rootCmd.Flags().Lookup("dry-run"))
	_ = viper.BindPFlag("force", rootCmd.Flags().Lookup("force"))
	_ = viper.BindPFlag("interactive", rootCmd.Flags().Lookup("interactive"))
	_ = viper.BindPFlag("recursive", rootCmd.Flags().Lookup("recursive"))
	_ = viper.BindPFlag("unique", rootCmd.Flags().Lookup("unique"))
	_ = viper.BindPFlag("rename", rootCmd.Flags().Lookup("rename"))
	_ = viper.BindPFlag("exclude", rootCmd.Flags().Lookup("exclude"))
	_ = viper.BindPFlag("sort.granularity", rootCmd.Flags().Lookup("granularity"))
	_ = viper.BindPFlag("output", rootCmd.Flags().Lookup("output"))
}

// initConfig reads in config file and environment variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			viper.AddConfigPath(filepath.Join(xdgConfigHome, "shelve"))
		}

		homeDir, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(homeDir, ".config", "shelve"))
		}
	}

	viper.SetEnvPrefix("SHELVE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("sort.mode", config.DefaultMode)
	viper.SetDefault("sort.granularity", config.DefaultGranularity)
	viper.SetDefault("sort.size_breakpoints", config.DefaultSizeBreakpoints)
	viper.SetDefault("output", config.DefaultOutputFormat)
	viper.SetDefault("logging.level", config.DefaultLogLevel)
	viper.SetDefault("logging.path", "")

	// Read config file (ignore if not found).
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		return err
	}
	return nil
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
