package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Well-known output filenames, written to the output directory and
// overwritten on every run.
const (
	AnalysisFilename    = "exclusions_analysis.json"
	SummaryFilename     = "exclusions_summary.json"
	MarkdownFilename    = "report.md"
	AttestationFilename = "attestation.json"
)

// Writer writes the audit artifacts to an output directory.
type Writer struct {
	OutDir  string
	Version string

	// ExclusionList is the raw curated list content; when set it is
	// hashed into the attestation alongside the two input files.
	ExclusionList []byte

	// Now stamps generated_at; nil uses time.Now. Injected for
	// deterministic output in tests.
	Now func() time.Time
}

// Write stamps and writes the detailed report, the summary, the markdown
// report, and the attestation. Existing files are overwritten.
func (w *Writer) Write(a *Analysis) error {
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	a.Metadata.GeneratedAt = now().UTC().Format(time.RFC3339)
	a.Metadata.ToolVersion = w.Version
	a.Sort()

	if err := os.MkdirAll(w.OutDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	if err := w.writeJSON(AnalysisFilename, a); err != nil {
		return err
	}

	summary := SummaryFile{
		GeneratedAt: a.Metadata.GeneratedAt,
		Summary:     a.Summary,
	}
	if err := w.writeJSON(SummaryFilename, summary); err != nil {
		return err
	}

	markdown := a.GenerateMarkdown()
	mdPath := filepath.Join(w.OutDir, MarkdownFilename)
	if err := os.WriteFile(mdPath, []byte(markdown), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", MarkdownFilename, err)
	}

	attestation, err := w.buildAttestation(a)
	if err != nil {
		return fmt.Errorf("building attestation: %w", err)
	}
	return w.writeJSON(AttestationFilename, attestation)
}

// writeJSON marshals v with indentation and writes it under OutDir.
func (w *Writer) writeJSON(filename string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filename, err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(filepath.Join(w.OutDir, filename), data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", filename, err)
	}
	return nil
}
