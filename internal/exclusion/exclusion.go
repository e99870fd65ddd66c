// Package exclusion provides the curated exclusion list and its loading.
package exclusion

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// Category classifies why a task is excluded from the final evaluation set.
type Category string

const (
	// InvalidEnvironment marks tasks whose hosted environment makes
	// completion structurally impossible (e.g. a broken map tile service).
	InvalidEnvironment Category = "invalid_environment"

	// InvalidAnswer marks tasks whose annotated expected outcome is wrong
	// or inconsistent with the hosted environment.
	InvalidAnswer Category = "invalid_answer"
)

// Categories lists all valid categories in stable order.
var Categories = []Category{InvalidEnvironment, InvalidAnswer}

// ParseCategory converts a string to a Category.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "invalid_environment":
		return InvalidEnvironment, nil
	case "invalid_answer":
		return InvalidAnswer, nil
	default:
		return "", fmt.Errorf("unknown exclusion category: %s", s)
	}
}

// String returns the string representation of a Category.
func (c Category) String() string {
	return string(c)
}

// Exclusion is one curated entry: a task identifier, the category it was
// assigned, and the editorial rationale for the assignment.
type Exclusion struct {
	TaskID    string   `json:"task_id"   toml:"task_id"`
	Category  Category `json:"category"  toml:"category"`
	Rationale string   `json:"rationale" toml:"rationale"`
}

// Validate checks that required entry fields are present and well-formed.
func (e *Exclusion) Validate() error {
	if e.TaskID == "" {
		return errors.New("exclusion task_id is required")
	}
	if _, err := ParseCategory(string(e.Category)); err != nil {
		return fmt.Errorf("exclusion %s: %w", e.TaskID, err)
	}
	if e.Rationale == "" {
		return fmt.Errorf("exclusion %s has no rationale", e.TaskID)
	}
	return nil
}

// List is a loaded curated exclusion list. Entries keep file order; the
// index is built once at load time.
type List struct {
	SchemaVersion int         `toml:"schema_version"`
	Entries       []Exclusion `toml:"exclusion"`

	byID map[string]*Exclusion
}

// Len returns the number of curated entries.
func (l *List) Len() int {
	return len(l.Entries)
}

// Lookup returns the curated entry for a task id, if any.
func (l *List) Lookup(taskID string) (*Exclusion, bool) {
	e, ok := l.byID[taskID]
	return e, ok
}

// ByCategory returns the entries assigned to the given category.
func (l *List) ByCategory(c Category) []Exclusion {
	var out []Exclusion
	for _, e := range l.Entries {
		if e.Category == c {
			out = append(out, e)
		}
	}
	return out
}

// CountByCategory returns per-category entry counts.
func (l *List) CountByCategory() map[Category]int {
	counts := make(map[Category]int, len(Categories))
	for _, e := range l.Entries {
		counts[e.Category]++
	}
	return counts
}

// TaskIDs returns all curated task ids, sorted.
func (l *List) TaskIDs() []string {
	ids := make([]string, 0, len(l.Entries))
	for _, e := range l.Entries {
		ids = append(ids, e.TaskID)
	}
	sort.Strings(ids)
	return ids
}

// validate checks every entry and enforces the partition invariant: each
// task id appears exactly once, in exactly one category.
func (l *List) validate() error {
	if len(l.Entries) == 0 {
		return errors.New("exclusion list has no entries")
	}

	l.byID = make(map[string]*Exclusion, len(l.Entries))
	for i := range l.Entries {
		e := &l.Entries[i]
		if err := e.Validate(); err != nil {
			return err
		}
		if _, dup := l.byID[e.TaskID]; dup {
			return fmt.Errorf("exclusion %s appears more than once", e.TaskID)
		}
		l.byID[e.TaskID] = e
	}
	return nil
}

// NewList builds a validated List from in-memory entries.
func NewList(entries []Exclusion) (*List, error) {
	list := &List{Entries: entries}
	if err := list.validate(); err != nil {
		return nil, err
	}
	return list, nil
}

// Loader handles loading the curated list from embedded or external sources.
type Loader struct {
	embeddedFS   embed.FS
	embeddedPath string
	externalPath string
}

// NewLoader creates a curated-list loader.
// If externalPath is provided, it takes precedence over the embedded list.
func NewLoader(embeddedFS embed.FS, embeddedPath, externalPath string) *Loader {
	return &Loader{
		embeddedFS:   embeddedFS,
		embeddedPath: embeddedPath,
		externalPath: externalPath,
	}
}

// Source describes where the list comes from, for report metadata.
func (l *Loader) Source() string {
	if l.externalPath != "" {
		return l.externalPath
	}
	return "embedded"
}

// Load reads and validates the curated exclusion list.
func (l *Loader) Load() (*List, error) {
	var list List

	if l.externalPath != "" {
		if _, err := toml.DecodeFile(l.externalPath, &list); err != nil {
			return nil, fmt.Errorf("parsing exclusion list %s: %w", l.externalPath, err)
		}
	} else {
		data, err := l.embeddedFS.ReadFile(l.embeddedPath)
		if err != nil {
			return nil, fmt.Errorf("reading embedded exclusion list: %w", err)
		}
		if err := toml.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("parsing embedded exclusion list: %w", err)
		}
	}

	if err := list.validate(); err != nil {
		return nil, fmt.Errorf("invalid exclusion list: %w", err)
	}

	return &list, nil
}

// RawBytes returns the raw list content, for integrity hashing.
func (l *Loader) RawBytes() ([]byte, error) {
	if l.externalPath != "" {
		return os.ReadFile(l.externalPath)
	}
	return l.embeddedFS.ReadFile(l.embeddedPath)
}
