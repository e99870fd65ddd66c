// Package cli provides the command-line interface for benchaudit.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/benchaudit/benchaudit/internal/config"
)

var (
	cfgFile        string
	exclusionsFile string
	verbose        bool
	cfg            *config.Config
	logger         *slog.Logger
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "benchaudit",
	Short: "Reproduce benchmark task exclusions and their statistics",
	Long: `benchaudit is a research-transparency tool. It documents and reproduces
the exclusion of tasks from a benchmark run: it joins a run-results table
against the benchmark's task definitions, applies a manually curated
exclusion list (invalid environment vs invalid answer), and writes a
detailed record-level audit report plus summary statistics over the
retained evaluation set.

The classification is editorial input, not computation: the curated list
ships with the tool and is applied as a lookup, never re-derived.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for help
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		// Setup logger
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		}))

		// Load config
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./benchaudit.toml)")
	rootCmd.PersistentFlags().StringVar(&exclusionsFile, "exclusions", "", "external curated exclusion list (default: embedded)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}

// Version information (set by build flags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("benchaudit version %s\n", Version)
		fmt.Printf("  commit: %s\n", Commit)
		fmt.Printf("  built:  %s\n", BuildDate)
	},
}
