package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jamesainslie/shelve/pkg/shelve/classify"
	"github.com/jamesainslie/shelve/pkg/shelve/config"
	"github.com/jamesainslie/shelve/pkg/shelve/logging"
	"github.com/jamesainslie/shelve/pkg/shelve/output"
	"github.com/jamesainslie/shelve/pkg/shelve/resolve"
	"github.com/jamesainslie/shelve/pkg/shelve/sorter"
	"github.com/jamesainslie/shelve/pkg/shelve/types"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runSort is the main command handler.
func runSort(_ *cobra.Command, args []string) error {
	target, err := config.ExpandPath(args[0])
	if err != nil {
		return fmt.Errorf("failed to expand path: %w", err)
	}

	// Verify the target before doing anything else.
	info, err := os.Stat(target)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", target)
		}
		return fmt.Errorf("cannot access directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", target)
	}

	if err := initLogging(); err != nil {
		return err
	}
	defer func() { _ = logging.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Listing unique extensions replaces sorting entirely.
	if viper.GetBool("unique") {
		return runUnique(ctx, target)
	}

	opts, err := buildOptions(target)
	if err != nil {
		return err
	}

	summary, err := sorter.Run(ctx, opts)
	if summary != nil {
		if printErr := printSummary(summary); printErr != nil {
			return printErr
		}
	}
	if err != nil {
		if errors.Is(err, resolve.ErrCancelled) {
			return fmt.Errorf("cancelled: %d of %d files processed", summary.Processed(), summary.Found)
		}
		return err
	}
	return nil
}

// buildOptions assembles the pipeline options from flags and config.
// Invalid flag values are configuration errors and fail here, before any
// file is touched.
func buildOptions(target string) (sorter.Options, error) {
	mode, err := classify.ParseMode(viper.GetString("sort.mode"))
	if err != nil {
		return sorter.Options{}, err
	}

	granularity, err := classify.ParseGranularity(viper.GetString("sort.granularity"))
	if err != nil {
		return sorter.Options{}, err
	}

	breakpoints, err := parseBreakpoints(viper.GetStringSlice("sort.size_breakpoints"))
	if err != nil {
		return sorter.Options{}, err
	}

	return sorter.Options{
		Root:        target,
		Mode:        mode,
		Granularity: granularity,
		Breakpoints: breakpoints,
		Copy:        viper.GetBool("copy"),
		DryRun:      viper.GetBool("dry_run"),
		Force:       viper.GetBool("force"),
		Interactive: viper.GetBool("interactive"),
		Rename:      viper.GetBool("rename"),
		Recursive:   viper.GetBool("recursive"),
		Exclude:     viper.GetStringSlice("exclude"),
		Provider:    resolve.NewTerminalProvider(os.Stdin, os.Stderr),
	}, nil
}

// parseBreakpoints converts configured size strings to byte counts.
func parseBreakpoints(raw []string) ([]int64, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	bps := make([]int64, 0, len(raw))
	for _, s := range raw {
		n, err := types.ParseSize(s)
		if err != nil {
			return nil, fmt.Errorf("size breakpoint %q: %w", s, err)
		}
		bps = append(bps, n)
	}
	return bps, nil
}

// runUnique lists the distinct extensions under the target and exits.
func runUnique(ctx context.Context, target string) error {
	exts, err := sorter.UniqueExtensions(ctx, target, viper.GetBool("recursive"))
	if err != nil {
		return err
	}

	printInfo("Unique extensions: %d", len(exts))
	for _, ext := range exts {
		fmt.Printf(" - %s\n", ext)
	}
	return nil
}

// printSummary renders the run summary with the selected formatter.
// The pretty format degrades to plain when stdout is not a terminal.
func printSummary(summary *types.RunSummary) error {
	format := viper.GetString("output")
	if format == "" {
		format = config.DefaultOutputFormat
	}
	if format == "pretty" && !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		format = "plain"
	}

	formatter, err := output.Get(format)
	if err != nil {
		return fmt.Errorf("unknown output format %q: available formats are %v", format, output.Available())
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, summary); err != nil {
		return fmt.Errorf("failed to format summary: %w", err)
	}
	fmt.Print(buf.String())
	return nil
}

// initLogging configures the logging system from flags and config.
// Non-verbose runs echo only errors to the console; verbose echoes every
// per-file decision.
func initLogging() error {
	consoleLevel := "error"
	if getVerbose() && !getQuiet() {
		consoleLevel = "debug"
	}

	return logging.Init(logging.Config{
		Level:        viper.GetString("logging.level"),
		Path:         viper.GetString("logging.path"),
		ConsoleLevel: consoleLevel,
	})
}
