package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Eval captures a task's evaluation criteria as annotated by the
// benchmark authors. ReferenceAnswers is kept opaque: the analyzer
// preserves it for the audit trail but never interprets it.
type Eval struct {
	EvalTypes        []string        `json:"eval_types"`
	ReferenceAnswers json.RawMessage `json:"reference_answers,omitempty"`
	Note             string          `json:"note,omitempty"`
}

// NoEvalData is the placeholder recorded when a definition carries no
// evaluation block.
var NoEvalData = &Eval{EvalTypes: []string{}, Note: "No eval data"}

// TaskDefinition is one original benchmark task. One per task id.
type TaskDefinition struct {
	TaskID string   `json:"task_id"`
	Sites  []string `json:"sites,omitempty"`
	Intent string   `json:"intent,omitempty"`
	Eval   *Eval    `json:"eval,omitempty"`
}

// ExpectedAnswer returns the evaluation block for the audit report,
// substituting the NoEvalData placeholder when the definition has none.
func (d *TaskDefinition) ExpectedAnswer() *Eval {
	if d.Eval == nil {
		return NoEvalData
	}
	return d.Eval
}

// Definitions indexes task definitions by task id.
type Definitions struct {
	All  []TaskDefinition
	byID map[string]*TaskDefinition
}

// Lookup returns the definition for a task id, if any.
func (d *Definitions) Lookup(taskID string) (*TaskDefinition, bool) {
	def, ok := d.byID[taskID]
	return def, ok
}

// Len returns the number of definitions.
func (d *Definitions) Len() int {
	return len(d.All)
}

// LoadDefinitions reads the task-definitions JSON: an array of task
// objects. Duplicate task ids and entries with a blank task id are
// malformed input.
func LoadDefinitions(path string) (*Definitions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingInput, path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var all []TaskDefinition
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedInput, path, err)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("%w: %s: no task definitions", ErrMalformedInput, path)
	}

	defs, err := NewDefinitions(all)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedInput, path, err)
	}
	return defs, nil
}

// NewDefinitions indexes a set of task definitions, enforcing that every
// entry has a task id and that ids are unique.
func NewDefinitions(all []TaskDefinition) (*Definitions, error) {
	defs := &Definitions{
		All:  all,
		byID: make(map[string]*TaskDefinition, len(all)),
	}
	for i := range all {
		def := &all[i]
		if def.TaskID == "" {
			return nil, fmt.Errorf("entry %d: blank task_id", i)
		}
		if _, dup := defs.byID[def.TaskID]; dup {
			return nil, fmt.Errorf("duplicate task_id %s", def.TaskID)
		}
		defs.byID[def.TaskID] = def
	}
	return defs, nil
}
