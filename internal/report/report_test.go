package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/benchaudit/benchaudit/internal/dataset"
	"github.com/benchaudit/benchaudit/internal/exclusion"
)

func sampleAnalysis(runsFile, definitionsFile string) *Analysis {
	return &Analysis{
		Metadata: Metadata{
			RunsFile:        runsFile,
			DefinitionsFile: definitionsFile,
			ExclusionSource: "embedded",
			Purpose:         Purpose,
		},
		Summary: Summary{
			TotalTasks:    4,
			ExcludedCount: 2,
			ExcludedByCategory: map[string]int{
				"invalid_environment": 1,
				"invalid_answer":      1,
			},
			FinalEvalCount:  2,
			PassedCount:     1,
			FailedCount:     1,
			SuccessRate:     50,
			FailureRate:     50,
			ExclusionRate:   50,
			ResultBreakdown: map[string]int{"PASS": 1, "FAIL": 1},
		},
		ExcludedTasks: []TaskRecord{
			{
				TaskID:         "map_042",
				Category:       exclusion.InvalidEnvironment,
				Rationale:      "tile service broken",
				Result:         "Exclude - Invalid Environment",
				Site:           "map",
				Intent:         "Find the route",
				ExpectedAnswer: dataset.NoEvalData,
			},
			{
				TaskID:         "shopping_003",
				Category:       exclusion.InvalidAnswer,
				Rationale:      "stale price in reference answer",
				Result:         "Exclude - Invalid Answer",
				Site:           "shopping",
				ExpectedAnswer: dataset.NoEvalData,
			},
		},
		IncludedTasks: []TaskRecord{
			{TaskID: "gitlab_001", Result: "PASS", Passed: true, ExpectedAnswer: dataset.NoEvalData},
			{TaskID: "reddit_002", Result: "FAIL", ExpectedAnswer: dataset.NoEvalData},
		},
	}
}

func writeInputs(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	runs := filepath.Join(dir, "latest_runs.csv")
	defs := filepath.Join(dir, "webarena_tests.json")
	if err := os.WriteFile(runs, []byte("task_id,result\na,PASS\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(defs, []byte(`[{"task_id":"a"}]`), 0644); err != nil {
		t.Fatal(err)
	}
	return runs, defs
}

func fixedClock() time.Time {
	return time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)
}

func TestWriterWritesAllArtifacts(t *testing.T) {
	t.Parallel()

	runs, defs := writeInputs(t)
	outDir := t.TempDir()

	w := &Writer{
		OutDir:        outDir,
		Version:       "test",
		ExclusionList: []byte("fake list"),
		Now:           fixedClock,
	}
	if err := w.Write(sampleAnalysis(runs, defs)); err != nil {
		t.Fatalf("Write: %v", err)
	}

	for _, filename := range []string{AnalysisFilename, SummaryFilename, MarkdownFilename, AttestationFilename} {
		if _, err := os.Stat(filepath.Join(outDir, filename)); err != nil {
			t.Errorf("%s not written: %v", filename, err)
		}
	}

	// Summary artifact carries the stamp and the statistics.
	data, err := os.ReadFile(filepath.Join(outDir, SummaryFilename))
	if err != nil {
		t.Fatal(err)
	}
	var s SummaryFile
	if err := json.Unmarshal(data, &s); err != nil {
		t.Fatalf("parsing summary: %v", err)
	}
	if s.GeneratedAt != "2026-02-14T12:00:00Z" {
		t.Errorf("GeneratedAt = %q", s.GeneratedAt)
	}
	if s.TotalTasks != 4 || s.ExcludedCount != 2 || s.FinalEvalCount != 2 {
		t.Errorf("summary = %+v", s.Summary)
	}
}

func TestWriterOutputIsIdempotent(t *testing.T) {
	t.Parallel()

	runs, defs := writeInputs(t)
	dirA := t.TempDir()
	dirB := t.TempDir()

	for _, dir := range []string{dirA, dirB} {
		w := &Writer{OutDir: dir, Version: "test", ExclusionList: []byte("list"), Now: fixedClock}
		if err := w.Write(sampleAnalysis(runs, defs)); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	for _, filename := range []string{AnalysisFilename, SummaryFilename, MarkdownFilename, AttestationFilename} {
		a, err := os.ReadFile(filepath.Join(dirA, filename))
		if err != nil {
			t.Fatal(err)
		}
		b, err := os.ReadFile(filepath.Join(dirB, filename))
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(a, b) {
			t.Errorf("%s differs between identical runs", filename)
		}
	}
}

func TestWriterAttestationRoundTrip(t *testing.T) {
	t.Parallel()

	runs, defs := writeInputs(t)
	outDir := t.TempDir()
	list := []byte("curated list content")

	w := &Writer{OutDir: outDir, Version: "test", ExclusionList: list, Now: fixedClock}
	if err := w.Write(sampleAnalysis(runs, defs)); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(outDir, AttestationFilename))
	if err != nil {
		t.Fatal(err)
	}
	var att Attestation
	if err := json.Unmarshal(data, &att); err != nil {
		t.Fatalf("parsing attestation: %v", err)
	}

	if att.Inputs[ExclusionListKey] != HashBytes(list) {
		t.Error("exclusion list hash does not round-trip")
	}
	runsHash, err := HashFile(runs)
	if err != nil {
		t.Fatal(err)
	}
	if att.Inputs["runs_file"] != runsHash {
		t.Error("runs file hash does not round-trip")
	}

	for _, filename := range []string{AnalysisFilename, SummaryFilename, MarkdownFilename} {
		got, err := HashFile(filepath.Join(outDir, filename))
		if err != nil {
			t.Fatal(err)
		}
		if att.Outputs[filename] != got {
			t.Errorf("%s hash mismatch", filename)
		}
	}

	if !strings.HasPrefix(att.Outputs[AnalysisFilename], "blake3:") {
		t.Errorf("hash = %q, want blake3 prefix", att.Outputs[AnalysisFilename])
	}
}

func TestWriterFailsOnMissingInput(t *testing.T) {
	t.Parallel()

	a := sampleAnalysis(filepath.Join(t.TempDir(), "absent.csv"), filepath.Join(t.TempDir(), "absent.json"))
	w := &Writer{OutDir: t.TempDir(), Now: fixedClock}
	if err := w.Write(a); err == nil {
		t.Fatal("expected error when attestation inputs are unreadable")
	}
}

func TestGenerateMarkdown(t *testing.T) {
	t.Parallel()

	a := sampleAnalysis("runs.csv", "tests.json")
	a.Metadata.GeneratedAt = "2026-02-14T12:00:00Z"
	md := a.GenerateMarkdown()

	for _, want := range []string{
		"# Exclusion Audit Report",
		"| invalid_environment | 1 |",
		"| invalid_answer | 1 |",
		"### map_042 (invalid_environment)",
		"tile service broken",
		"**Final evaluation set:** 2",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestFormatTerminal(t *testing.T) {
	t.Parallel()

	out := FormatTerminal(sampleAnalysis("runs.csv", "tests.json"))

	for _, want := range []string{
		"EXCLUSION AUDIT",
		"Total tasks:      4",
		"map_042 [invalid_environment]",
		"Sample excluded tasks:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("terminal output missing %q", want)
		}
	}
}

func TestAnalysisSortIsStable(t *testing.T) {
	t.Parallel()

	a := &Analysis{
		ExcludedTasks: []TaskRecord{{TaskID: "b"}, {TaskID: "a"}},
		IncludedTasks: []TaskRecord{{TaskID: "z"}, {TaskID: "c"}},
	}
	a.Sort()

	if a.ExcludedTasks[0].TaskID != "a" {
		t.Errorf("excluded[0] = %s, want a", a.ExcludedTasks[0].TaskID)
	}
	if a.IncludedTasks[0].TaskID != "c" {
		t.Errorf("included[0] = %s, want c", a.IncludedTasks[0].TaskID)
	}
}
