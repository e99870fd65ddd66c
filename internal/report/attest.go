package report

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"
)

// Attestation records integrity hashes of the inputs an analysis read and
// the artifacts it wrote, so a published audit can be checked for
// after-the-fact modification.
type Attestation struct {
	GeneratedAt string            `json:"generated_at"`
	ToolVersion string            `json:"tool_version,omitempty"`
	Inputs      map[string]string `json:"inputs"`
	Outputs     map[string]string `json:"outputs"`
}

// ExclusionListKey is the Inputs key for the curated exclusion list.
const ExclusionListKey = "exclusion_list"

// HashBytes returns the BLAKE3 hash of data as a prefixed hex string.
func HashBytes(data []byte) string {
	h := blake3.Sum256(data)
	return "blake3:" + hex.EncodeToString(h[:])
}

// HashFile returns the BLAKE3 hash of a file's content.
func HashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return HashBytes(data), nil
}

// buildAttestation hashes the analysis inputs and the already-written
// output files.
func (w *Writer) buildAttestation(a *Analysis) (*Attestation, error) {
	att := &Attestation{
		GeneratedAt: a.Metadata.GeneratedAt,
		ToolVersion: w.Version,
		Inputs:      make(map[string]string),
		Outputs:     make(map[string]string),
	}

	for key, path := range map[string]string{
		"runs_file":        a.Metadata.RunsFile,
		"definitions_file": a.Metadata.DefinitionsFile,
	} {
		hash, err := HashFile(path)
		if err != nil {
			return nil, fmt.Errorf("hashing %s: %w", path, err)
		}
		att.Inputs[key] = hash
	}
	if len(w.ExclusionList) > 0 {
		att.Inputs[ExclusionListKey] = HashBytes(w.ExclusionList)
	}

	for _, filename := range []string{AnalysisFilename, SummaryFilename, MarkdownFilename} {
		hash, err := HashFile(filepath.Join(w.OutDir, filename))
		if err != nil {
			return nil, fmt.Errorf("hashing %s: %w", filename, err)
		}
		att.Outputs[filename] = hash
	}

	return att, nil
}
