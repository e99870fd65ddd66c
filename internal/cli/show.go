package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/benchaudit/benchaudit/internal/exclusion"
	"github.com/benchaudit/benchaudit/internal/report"
)

var (
	showJSON     bool
	showDetailed bool
)

var showCmd = &cobra.Command{
	Use:   "show [audit-dir]",
	Short: "Display a previously written audit report",
	Long: `Shows the results of a previous analysis from its output directory
(default: the current directory).

Example:
  benchaudit show
  benchaudit show audit/ --detailed
  benchaudit show audit/ --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}

		if showDetailed {
			data, err := os.ReadFile(filepath.Join(dir, report.AnalysisFilename))
			if err != nil {
				return fmt.Errorf("reading analysis: %w", err)
			}
			var a report.Analysis
			if err := json.Unmarshal(data, &a); err != nil {
				return fmt.Errorf("parsing analysis: %w", err)
			}
			if showJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(a)
			}
			fmt.Print(report.FormatTerminal(&a))
			return nil
		}

		summary, err := loadSummaryFromDir(dir)
		if err != nil {
			return err
		}

		if showJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		}

		displaySummary(dir, summary)
		return nil
	},
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "output as JSON")
	showCmd.Flags().BoolVar(&showDetailed, "detailed", false, "show the detailed report instead of the summary")
}

// loadSummaryFromDir loads the summary artifact from an audit directory.
func loadSummaryFromDir(dir string) (*report.SummaryFile, error) {
	data, err := os.ReadFile(filepath.Join(dir, report.SummaryFilename))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", report.SummaryFilename, err)
	}
	var s report.SummaryFile
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", report.SummaryFilename, err)
	}
	return &s, nil
}

func displaySummary(dir string, s *report.SummaryFile) {
	fmt.Println()
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf(" AUDIT SUMMARY: %s\n", dir)
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()

	fmt.Printf(" Generated:      %s\n", s.GeneratedAt)
	fmt.Printf(" Total tasks:    %d\n", s.TotalTasks)
	fmt.Printf(" Excluded:       %d (%.1f%%)\n", s.ExcludedCount, s.ExclusionRate)
	for _, c := range exclusion.Categories {
		fmt.Printf("   %-20s %d\n", c.String()+":", s.ExcludedByCategory[string(c)])
	}
	fmt.Printf(" Final eval set: %d\n", s.FinalEvalCount)
	fmt.Println()
	fmt.Printf(" Passed:         %d (%.1f%%)\n", s.PassedCount, s.SuccessRate)
	fmt.Printf(" Failed:         %d (%.1f%%)\n", s.FailedCount, s.FailureRate)
	fmt.Println()

	fmt.Println(" ─────────────────────────────────────────────────────────")
	fmt.Println(" FILES")
	fmt.Println(" ─────────────────────────────────────────────────────────")
	fmt.Printf(" Detailed: %s\n", filepath.Join(dir, report.AnalysisFilename))
	fmt.Printf(" Summary:  %s\n", filepath.Join(dir, report.SummaryFilename))
	fmt.Printf(" Report:   %s\n", filepath.Join(dir, report.MarkdownFilename))
	fmt.Println()
}
