package analysis

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/benchaudit/benchaudit/exclusions"
	"github.com/benchaudit/benchaudit/internal/dataset"
	"github.com/benchaudit/benchaudit/internal/exclusion"
	"github.com/benchaudit/benchaudit/internal/report"
)

func loadCurated(t *testing.T) *exclusion.List {
	t.Helper()
	list, err := exclusion.NewLoader(exclusions.FS, exclusions.ListPath, "").Load()
	if err != nil {
		t.Fatalf("loading curated list: %v", err)
	}
	return list
}

// fullFixture builds the 812-task dataset around the embedded curated
// list: one run per curated entry (verdict matching its category) plus
// 651 retained tasks with 473 passes and 178 fails.
func fullFixture(t *testing.T, list *exclusion.List) Input {
	t.Helper()

	var runs []dataset.TaskRun
	var defs []dataset.TaskDefinition

	for _, e := range list.Entries {
		verdict := dataset.VerdictExcludeInvalidEnvironment
		if e.Category == exclusion.InvalidAnswer {
			verdict = dataset.VerdictExcludeInvalidAnswer
		}
		site := strings.SplitN(e.TaskID, "_", 2)[0]
		runs = append(runs, dataset.TaskRun{
			TaskID: e.TaskID,
			Result: verdict,
			Site:   site,
			RunID:  "run-fixture",
		})
		defs = append(defs, dataset.TaskDefinition{
			TaskID: e.TaskID,
			Sites:  []string{site},
			Intent: "curated task " + e.TaskID,
		})
	}

	for i := 0; i < 651; i++ {
		id := fmt.Sprintf("retained_%03d", i)
		verdict := dataset.VerdictPass
		if i >= 473 {
			verdict = "FAIL"
		}
		runs = append(runs, dataset.TaskRun{
			TaskID: id,
			Result: verdict,
			Site:   "shopping",
			RunID:  "run-fixture",
		})
		defs = append(defs, dataset.TaskDefinition{
			TaskID: id,
			Sites:  []string{"shopping"},
			Eval: &dataset.Eval{
				EvalTypes: []string{"string_match"},
			},
		})
	}

	return Input{
		Runs:            runs,
		Definitions:     indexDefs(t, defs),
		Exclusions:      list,
		RunsFile:        "latest_runs.csv",
		DefinitionsFile: "webarena_tests.json",
		ExclusionSource: "embedded",
	}
}

// indexDefs builds a Definitions index without going through a file.
func indexDefs(t *testing.T, defs []dataset.TaskDefinition) *dataset.Definitions {
	t.Helper()
	d, err := dataset.NewDefinitions(defs)
	if err != nil {
		t.Fatalf("indexing definitions: %v", err)
	}
	return d
}

func TestRunFixedDatasetStatistics(t *testing.T) {
	t.Parallel()

	list := loadCurated(t)
	a, err := Run(fullFixture(t, list))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	s := a.Summary
	if s.TotalTasks != 812 {
		t.Errorf("TotalTasks = %d, want 812", s.TotalTasks)
	}
	if s.ExcludedCount != 161 {
		t.Errorf("ExcludedCount = %d, want 161", s.ExcludedCount)
	}
	if got := s.ExcludedByCategory["invalid_environment"]; got != 128 {
		t.Errorf("invalid_environment = %d, want 128", got)
	}
	if got := s.ExcludedByCategory["invalid_answer"]; got != 33 {
		t.Errorf("invalid_answer = %d, want 33", got)
	}
	if s.FinalEvalCount != 651 {
		t.Errorf("FinalEvalCount = %d, want 651", s.FinalEvalCount)
	}
	if s.PassedCount != 473 {
		t.Errorf("PassedCount = %d, want 473", s.PassedCount)
	}
	if s.FailedCount != 178 {
		t.Errorf("FailedCount = %d, want 178", s.FailedCount)
	}

	// Invariants from the data model.
	if s.ExcludedCount+s.FinalEvalCount != s.TotalTasks {
		t.Error("excluded + final != total")
	}
	if s.PassedCount+s.FailedCount != s.FinalEvalCount {
		t.Error("passed + failed != final")
	}

	if got := fmt.Sprintf("%.1f", s.SuccessRate); got != "72.7" {
		t.Errorf("SuccessRate formats to %s%%, want 72.7%%", got)
	}
	if got := s.ResultBreakdown["PASS"]; got != 473 {
		t.Errorf("ResultBreakdown[PASS] = %d, want 473", got)
	}
}

func TestRunPartitionsTasks(t *testing.T) {
	t.Parallel()

	list := loadCurated(t)
	a, err := Run(fullFixture(t, list))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(a.ExcludedTasks) != 161 {
		t.Errorf("excluded records = %d, want 161", len(a.ExcludedTasks))
	}
	if len(a.IncludedTasks) != 651 {
		t.Errorf("included records = %d, want 651", len(a.IncludedTasks))
	}

	excluded := make(map[string]bool)
	for _, rec := range a.ExcludedTasks {
		excluded[rec.TaskID] = true
		if rec.Category == "" || rec.Rationale == "" {
			t.Errorf("excluded %s missing category or rationale", rec.TaskID)
		}
		if rec.Passed {
			t.Errorf("excluded %s counted as passed", rec.TaskID)
		}
	}
	for _, rec := range a.IncludedTasks {
		if excluded[rec.TaskID] {
			t.Errorf("%s appears in both excluded and included sets", rec.TaskID)
		}
		if rec.Category != "" {
			t.Errorf("included %s carries category %q", rec.TaskID, rec.Category)
		}
		if rec.ExpectedAnswer == nil {
			t.Errorf("included %s has no expected answer block", rec.TaskID)
		}
	}
}

func TestRunBrokenMapScenario(t *testing.T) {
	t.Parallel()

	list := loadCurated(t)
	a, err := Run(fullFixture(t, list))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var rec *report.TaskRecord
	for i := range a.ExcludedTasks {
		if a.ExcludedTasks[i].TaskID == "map_042" {
			rec = &a.ExcludedTasks[i]
			break
		}
	}
	if rec == nil {
		t.Fatal("map_042 not in detailed report")
	}
	if rec.Category != exclusion.InvalidEnvironment {
		t.Errorf("map_042 category = %q, want invalid_environment", rec.Category)
	}
	if !strings.Contains(strings.ToLower(rec.Rationale), "tile") {
		t.Errorf("map_042 rationale = %q, want a reference to the broken tile service", rec.Rationale)
	}
	if rec.Passed {
		t.Error("map_042 must not count toward the pass tally")
	}
}

func smallList(t *testing.T) *exclusion.List {
	t.Helper()
	return listFromEntries(t, []exclusion.Exclusion{
		{TaskID: "map_001", Category: exclusion.InvalidEnvironment, Rationale: "tiles broken"},
	})
}

func listFromEntries(t *testing.T, entries []exclusion.Exclusion) *exclusion.List {
	t.Helper()
	list, err := exclusion.NewList(entries)
	if err != nil {
		t.Fatalf("building list: %v", err)
	}
	return list
}

func TestRunUnmatchedTaskIDs(t *testing.T) {
	t.Parallel()

	baseRuns := []dataset.TaskRun{
		{TaskID: "map_001", Result: dataset.VerdictExcludeInvalidEnvironment},
		{TaskID: "shopping_001", Result: "PASS"},
	}
	baseDefs := []dataset.TaskDefinition{
		{TaskID: "map_001"},
		{TaskID: "shopping_001"},
	}

	tests := []struct {
		name string
		in   func(t *testing.T) Input
	}{
		{
			"run without definition",
			func(t *testing.T) Input {
				return Input{
					Runs:        baseRuns,
					Definitions: indexDefs(t, baseDefs[:1]),
					Exclusions:  smallList(t),
				}
			},
		},
		{
			"curated id without run",
			func(t *testing.T) Input {
				return Input{
					Runs:        baseRuns[1:],
					Definitions: indexDefs(t, baseDefs),
					Exclusions:  smallList(t),
				}
			},
		},
		{
			"curated id without definition",
			func(t *testing.T) Input {
				return Input{
					Runs:        baseRuns,
					Definitions: indexDefs(t, baseDefs),
					Exclusions: listFromEntries(t, []exclusion.Exclusion{
						{TaskID: "gitlab_999", Category: exclusion.InvalidAnswer, Rationale: "stale"},
					}),
				}
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Run(tt.in(t))
			if !errors.Is(err, ErrUnmatchedTaskID) {
				t.Errorf("error = %v, want ErrUnmatchedTaskID", err)
			}
		})
	}
}

func TestRunRejectsUncuratedExcludeVerdict(t *testing.T) {
	t.Parallel()

	in := Input{
		Runs: []dataset.TaskRun{
			{TaskID: "map_001", Result: dataset.VerdictExcludeInvalidEnvironment},
			{TaskID: "reddit_009", Result: dataset.VerdictExcludeInvalidAnswer},
		},
		Definitions: indexDefs(t, []dataset.TaskDefinition{
			{TaskID: "map_001"},
			{TaskID: "reddit_009"},
		}),
		Exclusions: smallList(t),
		RunsFile:   "latest_runs.csv",
	}

	_, err := Run(in)
	if !errors.Is(err, dataset.ErrMalformedInput) {
		t.Fatalf("error = %v, want ErrMalformedInput", err)
	}
	if !strings.Contains(err.Error(), "reddit_009") {
		t.Errorf("error = %v, want mention of reddit_009", err)
	}
}
