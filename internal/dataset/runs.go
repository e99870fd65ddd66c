// Package dataset loads the immutable source records for an audit run:
// the run-results table and the benchmark task definitions.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Error taxonomy for input loading. Everything here is fatal: the analyzer
// never drops bad records silently.
var (
	ErrMissingInput   = errors.New("input file missing")
	ErrMalformedInput = errors.New("malformed input")
)

// VerdictPass is the run verdict that counts as a pass. Every other
// verdict counts as a fail.
const VerdictPass = "PASS"

// Verdicts an upstream results table may carry for rows the curators
// decided to exclude. They must agree with the curated list; the analyzer
// never classifies from them.
const (
	VerdictExcludeInvalidAnswer      = "Exclude - Invalid Answer"
	VerdictExcludeInvalidEnvironment = "Exclude - Invalid Environment"
)

// TaskRun is one row of the run-results table. One per executed task.
type TaskRun struct {
	TaskID         string `json:"task_id"`
	Result         string `json:"result"`
	Site           string `json:"site,omitempty"`
	Intent         string `json:"intent,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
	RunID          string `json:"run_id,omitempty"`
	OverrideReason string `json:"result_override_reason,omitempty"`
}

// Passed reports whether the run counts as a pass.
func (r *TaskRun) Passed() bool {
	return r.Result == VerdictPass
}

// ExcludeMarked reports whether the results table itself carries a
// curator exclusion verdict for this row.
func (r *TaskRun) ExcludeMarked() bool {
	return r.Result == VerdictExcludeInvalidAnswer || r.Result == VerdictExcludeInvalidEnvironment
}

// requiredRunColumns are the columns a run-results table must provide.
// The remaining columns (site, intent, created_at, run_id,
// result_override_reason) are optional and carried through to the report.
var requiredRunColumns = []string{"task_id", "result"}

// LoadRuns reads the run-results CSV. The first row must be a header
// naming at least task_id and result. Duplicate task ids and rows with a
// blank task id are malformed input.
func LoadRuns(path string) ([]TaskRun, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingInput, path)
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: reading header: %v", ErrMalformedInput, path, err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredRunColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: %s: missing column %q", ErrMalformedInput, path, name)
		}
	}

	field := func(record []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	issues := NewIssues(0)
	seen := make(map[string]bool)
	var runs []TaskRun

	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			issues.Addf("line %d: %v", line, err)
			continue
		}

		run := TaskRun{
			TaskID:         field(record, "task_id"),
			Result:         field(record, "result"),
			Site:           field(record, "site"),
			Intent:         field(record, "intent"),
			CreatedAt:      field(record, "created_at"),
			RunID:          field(record, "run_id"),
			OverrideReason: field(record, "result_override_reason"),
		}

		if run.TaskID == "" {
			issues.Addf("line %d: blank task_id", line)
			continue
		}
		if run.Result == "" {
			issues.Addf("line %d: blank result for task %s", line, run.TaskID)
			continue
		}
		if seen[run.TaskID] {
			issues.Addf("duplicate task_id %s", run.TaskID)
			continue
		}
		seen[run.TaskID] = true

		runs = append(runs, run)
	}

	if err := issues.Err(path); err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("%w: %s: no run records", ErrMalformedInput, path)
	}

	return runs, nil
}
