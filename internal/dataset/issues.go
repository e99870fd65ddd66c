package dataset

import (
	"fmt"
	"strings"
)

// Issues collects row-level problems found while decoding a source file,
// so a malformed input reports everything wrong with it in one pass
// instead of failing on the first bad row.
type Issues struct {
	limit int
	seen  map[string]bool
	msgs  []string
	total int
}

// NewIssues creates an issue collector that keeps at most limit distinct
// messages. A limit of 0 uses a sensible default.
func NewIssues(limit int) *Issues {
	if limit <= 0 {
		limit = 10
	}
	return &Issues{
		limit: limit,
		seen:  make(map[string]bool),
	}
}

// Addf records a formatted issue.
func (i *Issues) Addf(format string, args ...any) {
	i.total++
	msg := fmt.Sprintf(format, args...)
	if i.seen[msg] || len(i.msgs) >= i.limit {
		return
	}
	i.seen[msg] = true
	i.msgs = append(i.msgs, msg)
}

// Empty reports whether no issues were recorded.
func (i *Issues) Empty() bool {
	return i.total == 0
}

// Count returns the total number of recorded issues, including duplicates
// and those beyond the display limit.
func (i *Issues) Count() int {
	return i.total
}

// Summary returns the distinct messages kept, plus an overflow line when
// more issues were recorded than kept.
func (i *Issues) Summary() []string {
	out := make([]string, len(i.msgs))
	copy(out, i.msgs)
	if extra := i.total - len(i.msgs); extra > 0 {
		out = append(out, fmt.Sprintf("... and %d more", extra))
	}
	return out
}

// Err returns nil if no issues were recorded; otherwise a MalformedInput
// error carrying the summarized messages.
func (i *Issues) Err(path string) error {
	if i.Empty() {
		return nil
	}
	return fmt.Errorf("%w: %s: %s", ErrMalformedInput, path, strings.Join(i.Summary(), "; "))
}
