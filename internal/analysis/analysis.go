// Package analysis implements the exclusion analyzer: join run results
// against task definitions, apply the curated exclusion list, and
// aggregate summary statistics over the retained set.
package analysis

import (
	"errors"
	"fmt"

	"github.com/benchaudit/benchaudit/internal/dataset"
	"github.com/benchaudit/benchaudit/internal/exclusion"
	"github.com/benchaudit/benchaudit/internal/report"
)

// ErrUnmatchedTaskID reports a task id that one input references but
// another does not. Unmatched records are a data error, never dropped.
var ErrUnmatchedTaskID = errors.New("unmatched task id")

// Input is everything a single analysis consumes.
type Input struct {
	Runs        []dataset.TaskRun
	Definitions *dataset.Definitions
	Exclusions  *exclusion.List

	// Recorded in report metadata.
	RunsFile        string
	DefinitionsFile string
	ExclusionSource string
}

// Run performs the join, classification, and aggregation. Classification
// is a pure lookup against the curated list; nothing is inferred from the
// run data itself.
func Run(in Input) (*report.Analysis, error) {
	if err := crossCheck(in); err != nil {
		return nil, err
	}

	summary := report.Summary{
		ExcludedByCategory: make(map[string]int, len(exclusion.Categories)),
		ResultBreakdown:    make(map[string]int),
	}
	for _, c := range exclusion.Categories {
		summary.ExcludedByCategory[string(c)] = 0
	}

	a := &report.Analysis{
		Metadata: report.Metadata{
			RunsFile:        in.RunsFile,
			DefinitionsFile: in.DefinitionsFile,
			ExclusionSource: in.ExclusionSource,
			Purpose:         report.Purpose,
		},
	}

	for i := range in.Runs {
		run := &in.Runs[i]
		def, _ := in.Definitions.Lookup(run.TaskID) // presence checked in crossCheck
		rec := joinRecord(run, def)

		if entry, excluded := in.Exclusions.Lookup(run.TaskID); excluded {
			rec.Category = entry.Category
			rec.Rationale = entry.Rationale
			rec.Passed = false // excluded tasks never count toward tallies
			a.ExcludedTasks = append(a.ExcludedTasks, rec)

			summary.ExcludedCount++
			summary.ExcludedByCategory[string(entry.Category)]++
			continue
		}

		a.IncludedTasks = append(a.IncludedTasks, rec)
		summary.FinalEvalCount++
		summary.ResultBreakdown[run.Result]++
		if run.Passed() {
			summary.PassedCount++
		} else {
			summary.FailedCount++
		}
	}

	summary.TotalTasks = summary.ExcludedCount + summary.FinalEvalCount
	if summary.TotalTasks > 0 {
		summary.ExclusionRate = percent(summary.ExcludedCount, summary.TotalTasks)
	}
	if summary.FinalEvalCount > 0 {
		summary.SuccessRate = percent(summary.PassedCount, summary.FinalEvalCount)
		summary.FailureRate = percent(summary.FailedCount, summary.FinalEvalCount)
	}

	a.Summary = summary
	return a, nil
}

// crossCheck enforces the referential invariants before any aggregation:
// every run has a definition, every curated id resolves against both
// inputs, and curator verdicts in the results table agree with the list.
func crossCheck(in Input) error {
	runsByID := make(map[string]*dataset.TaskRun, len(in.Runs))
	for i := range in.Runs {
		run := &in.Runs[i]
		if _, ok := in.Definitions.Lookup(run.TaskID); !ok {
			return fmt.Errorf("%w: run %s has no task definition", ErrUnmatchedTaskID, run.TaskID)
		}
		runsByID[run.TaskID] = run
	}

	for _, e := range in.Exclusions.Entries {
		if _, ok := in.Definitions.Lookup(e.TaskID); !ok {
			return fmt.Errorf("%w: excluded task %s has no task definition", ErrUnmatchedTaskID, e.TaskID)
		}
		if _, ok := runsByID[e.TaskID]; !ok {
			return fmt.Errorf("%w: excluded task %s has no run record", ErrUnmatchedTaskID, e.TaskID)
		}
	}

	for i := range in.Runs {
		run := &in.Runs[i]
		if !run.ExcludeMarked() {
			continue
		}
		if _, ok := in.Exclusions.Lookup(run.TaskID); !ok {
			return fmt.Errorf("%w: %s: task %s carries verdict %q but is not in the curated exclusion list",
				dataset.ErrMalformedInput, in.RunsFile, run.TaskID, run.Result)
		}
	}

	return nil
}

// joinRecord merges a run row with its definition into one audit record.
func joinRecord(run *dataset.TaskRun, def *dataset.TaskDefinition) report.TaskRecord {
	rec := report.TaskRecord{
		TaskID:         run.TaskID,
		Result:         run.Result,
		Passed:         run.Passed(),
		Site:           run.Site,
		Intent:         run.Intent,
		CreatedAt:      run.CreatedAt,
		RunID:          run.RunID,
		OverrideReason: run.OverrideReason,
	}
	if def != nil {
		rec.Sites = def.Sites
		rec.ExpectedAnswer = def.ExpectedAnswer()
		if rec.Intent == "" {
			rec.Intent = def.Intent
		}
	}
	return rec
}

func percent(n, total int) float64 {
	return float64(n) / float64(total) * 100
}
