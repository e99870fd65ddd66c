package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/benchaudit/benchaudit/exclusions"
	"github.com/benchaudit/benchaudit/internal/analysis"
	"github.com/benchaudit/benchaudit/internal/dataset"
	"github.com/benchaudit/benchaudit/internal/exclusion"
	"github.com/benchaudit/benchaudit/internal/report"
)

var (
	analyzeRuns        string
	analyzeDefinitions string
	analyzeOutput      string
	analyzeWatch       bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the exclusion analysis and write the audit reports",
	Long: `Joins the run-results table against the task definitions, applies the
curated exclusion list, and writes the audit artifacts:

  exclusions_analysis.json  detailed record-level report
  exclusions_summary.json   aggregate statistics
  report.md                 human-readable report
  attestation.json          BLAKE3 hashes of inputs and outputs

With no flags it reads latest_runs.csv and webarena_tests.json from the
working directory and writes the reports next to them, overwriting any
previous output. Any missing input, malformed record, or task id that
fails to resolve across the inputs aborts the run; no partial statistics
are reported.

Examples:
  benchaudit analyze
  benchaudit analyze --runs results/latest_runs.csv --output audit/
  benchaudit analyze --watch`,
	RunE: func(cmd *cobra.Command, args []string) error {
		runsFile := cfg.Inputs.RunsFile
		if analyzeRuns != "" {
			runsFile = analyzeRuns
		}
		definitionsFile := cfg.Inputs.DefinitionsFile
		if analyzeDefinitions != "" {
			definitionsFile = analyzeDefinitions
		}
		outDir := cfg.Output.Dir
		if analyzeOutput != "" {
			outDir = analyzeOutput
		}
		externalList := cfg.Inputs.ExclusionsFile
		if exclusionsFile != "" {
			externalList = exclusionsFile
		}

		loader := exclusion.NewLoader(exclusions.FS, exclusions.ListPath, externalList)

		if !analyzeWatch {
			return runAnalysis(runsFile, definitionsFile, outDir, loader)
		}

		// Watch mode: run once, then re-run whenever an input changes.
		if err := runAnalysis(runsFile, definitionsFile, outDir, loader); err != nil {
			logger.Error("analysis failed", "error", err)
		}

		watched := []string{runsFile, definitionsFile}
		if externalList != "" {
			watched = append(watched, externalList)
		}

		debounce := time.Duration(cfg.Watch.DebounceMS) * time.Millisecond
		watcher := analysis.NewWatcher(watched, debounce, func() {
			if err := runAnalysis(runsFile, definitionsFile, outDir, loader); err != nil {
				logger.Error("analysis failed", "error", err)
			}
		}, logger)

		fmt.Println(" Watching inputs for changes... (Ctrl+C to stop)")

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := watcher.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

// runAnalysis performs one load → join → classify → aggregate → write pass.
func runAnalysis(runsFile, definitionsFile, outDir string, loader *exclusion.Loader) error {
	runs, err := dataset.LoadRuns(runsFile)
	if err != nil {
		return err
	}
	logger.Debug("loaded run results", "file", runsFile, "records", len(runs))

	defs, err := dataset.LoadDefinitions(definitionsFile)
	if err != nil {
		return err
	}
	logger.Debug("loaded task definitions", "file", definitionsFile, "records", defs.Len())

	list, err := loader.Load()
	if err != nil {
		return err
	}
	logger.Debug("loaded exclusion list", "source", loader.Source(), "entries", list.Len())

	a, err := analysis.Run(analysis.Input{
		Runs:            runs,
		Definitions:     defs,
		Exclusions:      list,
		RunsFile:        runsFile,
		DefinitionsFile: definitionsFile,
		ExclusionSource: loader.Source(),
	})
	if err != nil {
		return err
	}

	raw, err := loader.RawBytes()
	if err != nil {
		return fmt.Errorf("reading exclusion list for attestation: %w", err)
	}

	writer := &report.Writer{
		OutDir:        outDir,
		Version:       Version,
		ExclusionList: raw,
	}
	if err := writer.Write(a); err != nil {
		return err
	}

	fmt.Print(report.FormatTerminal(a))
	fmt.Printf(" Reports written to: %s\n\n", outDir)

	return nil
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeRuns, "runs", "", "run-results CSV (default from config)")
	analyzeCmd.Flags().StringVar(&analyzeDefinitions, "definitions", "", "task-definitions JSON (default from config)")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "output directory for reports")
	analyzeCmd.Flags().BoolVar(&analyzeWatch, "watch", false, "re-run the analysis whenever an input changes")
}
