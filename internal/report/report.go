// Package report provides the derived audit artifacts: the detailed
// exclusion report, the summary statistics, and their output formats.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/benchaudit/benchaudit/internal/dataset"
	"github.com/benchaudit/benchaudit/internal/exclusion"
)

// Metadata records where an analysis came from.
type Metadata struct {
	GeneratedAt     string `json:"generated_at"`
	RunsFile        string `json:"runs_file"`
	DefinitionsFile string `json:"definitions_file"`
	ExclusionSource string `json:"exclusion_source"`
	ToolVersion     string `json:"tool_version,omitempty"`
	Purpose         string `json:"purpose"`
}

// Purpose is the fixed statement of intent recorded in every report.
const Purpose = "Exclude tasks that cannot be completed due to environment breakage or incorrect expected outcomes, and compute pass/fail statistics over the remaining tasks only."

// Summary is the aggregate statistics block, recomputed on every run.
// Rates are percentages.
type Summary struct {
	TotalTasks         int            `json:"total_tasks"`
	ExcludedCount      int            `json:"excluded_count"`
	ExcludedByCategory map[string]int `json:"excluded_by_category"`
	FinalEvalCount     int            `json:"final_eval_count"`
	PassedCount        int            `json:"passed_count"`
	FailedCount        int            `json:"failed_count"`
	SuccessRate        float64        `json:"success_rate"`
	FailureRate        float64        `json:"failure_rate"`
	ExclusionRate      float64        `json:"exclusion_rate"`
	ResultBreakdown    map[string]int `json:"result_breakdown"`
}

// TaskRecord is one task in the detailed report: the run row joined with
// its original definition, plus the curated category and rationale for
// excluded tasks.
type TaskRecord struct {
	TaskID         string             `json:"task_id"`
	Category       exclusion.Category `json:"category,omitempty"`
	Rationale      string             `json:"rationale,omitempty"`
	Result         string             `json:"result"`
	Passed         bool               `json:"passed"`
	Site           string             `json:"site,omitempty"`
	Sites          []string           `json:"sites,omitempty"`
	Intent         string             `json:"intent,omitempty"`
	CreatedAt      string             `json:"created_at,omitempty"`
	RunID          string             `json:"run_id,omitempty"`
	OverrideReason string             `json:"result_override_reason,omitempty"`
	ExpectedAnswer *dataset.Eval      `json:"expected_answer"`
}

// Analysis is the full detailed report: metadata, summary statistics,
// and the record-level audit trail for both excluded and retained tasks.
type Analysis struct {
	Metadata      Metadata     `json:"analysis_metadata"`
	Summary       Summary      `json:"summary_statistics"`
	ExcludedTasks []TaskRecord `json:"excluded_tasks"`
	IncludedTasks []TaskRecord `json:"included_tasks"`
}

// SummaryFile is the standalone quick-reference summary artifact.
type SummaryFile struct {
	GeneratedAt string `json:"generated_at"`
	Summary
}

// Sort orders the record arrays by task id so output is stable across runs.
func (a *Analysis) Sort() {
	sort.Slice(a.ExcludedTasks, func(i, j int) bool {
		return a.ExcludedTasks[i].TaskID < a.ExcludedTasks[j].TaskID
	})
	sort.Slice(a.IncludedTasks, func(i, j int) bool {
		return a.IncludedTasks[i].TaskID < a.IncludedTasks[j].TaskID
	})
}

// GenerateMarkdown generates a human-readable markdown report.
func (a *Analysis) GenerateMarkdown() string {
	var sb strings.Builder

	sb.WriteString("# Exclusion Audit Report\n\n")
	fmt.Fprintf(&sb, "**Generated:** %s\n\n", a.Metadata.GeneratedAt)
	fmt.Fprintf(&sb, "**Runs:** %s\n\n", a.Metadata.RunsFile)
	fmt.Fprintf(&sb, "**Definitions:** %s\n\n", a.Metadata.DefinitionsFile)
	fmt.Fprintf(&sb, "**Exclusion list:** %s\n\n", a.Metadata.ExclusionSource)

	sb.WriteString("---\n\n")
	sb.WriteString("## Summary\n\n")
	fmt.Fprintf(&sb, "- **Total tasks:** %d\n", a.Summary.TotalTasks)
	fmt.Fprintf(&sb, "- **Excluded:** %d (%.1f%%)\n", a.Summary.ExcludedCount, a.Summary.ExclusionRate)
	fmt.Fprintf(&sb, "- **Final evaluation set:** %d\n", a.Summary.FinalEvalCount)
	fmt.Fprintf(&sb, "- **Passed:** %d (%.1f%%)\n", a.Summary.PassedCount, a.Summary.SuccessRate)
	fmt.Fprintf(&sb, "- **Failed:** %d (%.1f%%)\n\n", a.Summary.FailedCount, a.Summary.FailureRate)

	sb.WriteString("## Exclusions by Category\n\n")
	sb.WriteString("| Category | Count |\n")
	sb.WriteString("|---|---|\n")
	for _, c := range exclusion.Categories {
		fmt.Fprintf(&sb, "| %s | %d |\n", c, a.Summary.ExcludedByCategory[string(c)])
	}
	sb.WriteString("\n")

	sb.WriteString("## Excluded Tasks\n\n")
	for _, rec := range a.ExcludedTasks {
		fmt.Fprintf(&sb, "### %s (%s)\n\n", rec.TaskID, rec.Category)
		fmt.Fprintf(&sb, "- **Rationale:** %s\n", rec.Rationale)
		if rec.Site != "" {
			fmt.Fprintf(&sb, "- **Site:** %s\n", rec.Site)
		}
		if rec.Intent != "" {
			fmt.Fprintf(&sb, "- **Intent:** %s\n", rec.Intent)
		}
		fmt.Fprintf(&sb, "- **Recorded verdict:** %s\n", rec.Result)
		if rec.OverrideReason != "" {
			fmt.Fprintf(&sb, "- **Override reason:** %s\n", rec.OverrideReason)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// FormatTerminal returns the end-of-run terminal summary, including a few
// sample excluded tasks for a quick sanity check.
func FormatTerminal(a *Analysis) string {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	sb.WriteString(" EXCLUSION AUDIT\n")
	sb.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	sb.WriteString("\n")

	fmt.Fprintf(&sb, " Total tasks:      %d\n", a.Summary.TotalTasks)
	fmt.Fprintf(&sb, " Excluded:         %d (%.1f%%)\n", a.Summary.ExcludedCount, a.Summary.ExclusionRate)
	for _, c := range exclusion.Categories {
		fmt.Fprintf(&sb, "   %-20s %d\n", c.String()+":", a.Summary.ExcludedByCategory[string(c)])
	}
	fmt.Fprintf(&sb, " Final eval set:   %d\n", a.Summary.FinalEvalCount)
	sb.WriteString("\n")
	fmt.Fprintf(&sb, " Passed:           %d (%.1f%%)\n", a.Summary.PassedCount, a.Summary.SuccessRate)
	fmt.Fprintf(&sb, " Failed:           %d (%.1f%%)\n", a.Summary.FailedCount, a.Summary.FailureRate)
	sb.WriteString("\n")

	if len(a.ExcludedTasks) > 0 {
		sb.WriteString(" ─────────────────────────────────────────────────────────\n")
		sb.WriteString(" Sample excluded tasks:\n")
		for i, rec := range a.ExcludedTasks {
			if i >= 3 {
				break
			}
			fmt.Fprintf(&sb, "   • %s [%s]\n", rec.TaskID, rec.Category)
			fmt.Fprintf(&sb, "     %s\n", truncate(rec.Rationale, 70))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
