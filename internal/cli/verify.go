package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/benchaudit/benchaudit/exclusions"
	"github.com/benchaudit/benchaudit/internal/exclusion"
	"github.com/benchaudit/benchaudit/internal/report"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <audit-dir>",
	Short: "Verify integrity of a published audit",
	Long: `Verifies the integrity of an audit directory by checking the BLAKE3
hashes recorded in attestation.json.

This command checks:
  1. Output hashes - the report files were not modified after generation
  2. Exclusion list hash - the audit used this tool's curated list

The analysis is not re-run; this only validates hash integrity.

Examples:
  benchaudit verify ./audit
  benchaudit verify /path/to/published-audit`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		auditDir := args[0]

		// Load attestation.json
		attestationPath := filepath.Join(auditDir, report.AttestationFilename)
		attestationData, err := os.ReadFile(attestationPath)
		if err != nil {
			return fmt.Errorf("reading %s: %w", report.AttestationFilename, err)
		}

		var attestation report.Attestation
		if err := json.Unmarshal(attestationData, &attestation); err != nil {
			return fmt.Errorf("parsing %s: %w", report.AttestationFilename, err)
		}

		// Print header
		fmt.Println()
		fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		fmt.Println(" BENCHAUDIT - Audit Verification")
		fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		fmt.Println()
		fmt.Printf(" Generated: %s\n", attestation.GeneratedAt)
		fmt.Printf(" Tool:      %s\n", attestation.ToolVersion)
		fmt.Println()

		passed := 0
		failed := 0
		warnings := 0

		// 1. Verify output hashes
		fmt.Println("─────────────────────────────────────────────────────────────")
		fmt.Println(" Verifying Output Integrity")
		fmt.Println("─────────────────────────────────────────────────────────────")

		for _, filename := range []string{report.AnalysisFilename, report.SummaryFilename, report.MarkdownFilename} {
			recorded, ok := attestation.Outputs[filename]
			if !ok {
				fmt.Printf(" ? %s - no hash recorded\n", filename)
				warnings++
				continue
			}
			computed, err := report.HashFile(filepath.Join(auditDir, filename))
			if err != nil {
				fmt.Printf(" ✗ %s - unreadable: %v\n", filename, err)
				failed++
				continue
			}
			if computed == recorded {
				fmt.Printf(" ✓ %s is unmodified\n", filename)
				passed++
			} else {
				fmt.Printf(" ✗ %s hash MISMATCH - file may have been modified\n", filename)
				fmt.Printf("   Expected: %s\n", recorded)
				fmt.Printf("   Got:      %s\n", computed)
				failed++
			}
		}
		fmt.Println()

		// 2. Verify the curated list hash against our embedded copy
		fmt.Println("─────────────────────────────────────────────────────────────")
		fmt.Println(" Verifying Exclusion List")
		fmt.Println("─────────────────────────────────────────────────────────────")

		if recorded, ok := attestation.Inputs[report.ExclusionListKey]; ok {
			loader := exclusion.NewLoader(exclusions.FS, exclusions.ListPath, "")
			raw, err := loader.RawBytes()
			if err != nil {
				return fmt.Errorf("reading embedded exclusion list: %w", err)
			}
			ours := report.HashBytes(raw)
			if ours == recorded {
				fmt.Println(" ✓ Exclusion list matches this tool's curated list")
				passed++
			} else {
				fmt.Println(" ! Exclusion list differs from this tool's curated list")
				fmt.Printf("   theirs: %s\n", recorded)
				fmt.Printf("   ours:   %s\n", ours)
				fmt.Println("   The audit may have used an external or older list version")
				warnings++
			}
		} else {
			fmt.Println(" ? No exclusion list hash recorded")
			warnings++
		}
		fmt.Println()

		// 3. Version check
		if attestation.ToolVersion != Version {
			fmt.Printf(" ! Tool version differs (theirs: %s, yours: %s)\n\n", attestation.ToolVersion, Version)
			warnings++
		}

		// Summary
		fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		fmt.Println(" VERIFICATION SUMMARY")
		fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		fmt.Println()

		if failed == 0 {
			fmt.Printf(" ✓ PASSED: %d checks passed", passed)
			if warnings > 0 {
				fmt.Printf(", %d warnings", warnings)
			}
			fmt.Println()
			fmt.Println()
			fmt.Println(" The audit appears to be authentic and unmodified.")
			return nil
		}

		fmt.Printf(" ✗ FAILED: %d checks failed, %d passed", failed, passed)
		if warnings > 0 {
			fmt.Printf(", %d warnings", warnings)
		}
		fmt.Println()
		fmt.Println()
		fmt.Println(" The audit may have been modified after it was generated.")
		return fmt.Errorf("%d integrity checks failed", failed)
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
