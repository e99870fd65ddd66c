package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/benchaudit/benchaudit/internal/exclusion"
	"github.com/benchaudit/benchaudit/internal/report"
)

var compareCmd = &cobra.Command{
	Use:   "compare <audit-dir> <audit-dir> [audit-dir...]",
	Short: "Compare multiple audit results side-by-side",
	Long: `Compare two or more audit output directories and show exclusion counts
and pass rates over the retained evaluation set side-by-side.

Example:
  benchaudit compare audit-jan audit-feb
  benchaudit compare runs/*/`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		type row struct {
			dir     string
			summary *report.SummaryFile
		}

		var rows []row
		for _, dir := range args {
			s, err := loadSummaryFromDir(dir)
			if err != nil {
				return fmt.Errorf("loading summary from %s: %w", dir, err)
			}
			rows = append(rows, row{dir: filepath.Clean(dir), summary: s})
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "AUDIT\tTOTAL\tEXCLUDED\tENV\tANSWER\tFINAL\tPASSED\tPASS RATE")
		fmt.Fprintln(w, "-----\t-----\t--------\t---\t------\t-----\t------\t---------")
		for _, r := range rows {
			s := r.summary
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%.1f%%\n",
				r.dir,
				s.TotalTasks,
				s.ExcludedCount,
				s.ExcludedByCategory[string(exclusion.InvalidEnvironment)],
				s.ExcludedByCategory[string(exclusion.InvalidAnswer)],
				s.FinalEvalCount,
				s.PassedCount,
				s.SuccessRate,
			)
		}
		return w.Flush()
	},
}
