package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/benchaudit/benchaudit/internal/report"
)

var cleanForce bool

var cleanCmd = &cobra.Command{
	Use:   "clean [audit-dir]",
	Short: "Remove generated audit artifacts",
	Long: `Removes the report files written by 'benchaudit analyze' from an audit
directory (default: the current directory).

By default, shows what would be deleted and asks for confirmation.
Use --force to skip confirmation.

Examples:
  benchaudit clean
  benchaudit clean audit/ --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}

		var toDelete []string
		for _, filename := range []string{
			report.AnalysisFilename,
			report.SummaryFilename,
			report.MarkdownFilename,
			report.AttestationFilename,
		} {
			path := filepath.Join(dir, filename)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				toDelete = append(toDelete, path)
			}
		}

		if len(toDelete) == 0 {
			fmt.Println("Nothing to clean.")
			return nil
		}

		fmt.Println("The following files will be deleted:")
		fmt.Println()
		for _, path := range toDelete {
			fmt.Printf("  %s\n", path)
		}
		fmt.Println()

		if !cleanForce {
			fmt.Print("Delete these files? [y/N] ")
			reader := bufio.NewReader(os.Stdin)
			response, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("reading response: %w", err)
			}
			response = strings.TrimSpace(strings.ToLower(response))
			if response != "y" && response != "yes" {
				fmt.Println("Cancelled.")
				return nil
			}
		}

		deleted := 0
		for _, path := range toDelete {
			if err := os.Remove(path); err != nil {
				fmt.Printf("  Failed to delete %s: %v\n", path, err)
			} else {
				fmt.Printf("  Deleted %s\n", path)
				deleted++
			}
		}

		fmt.Printf("\nCleaned up %d files.\n", deleted)
		return nil
	},
}

func init() {
	cleanCmd.Flags().BoolVar(&cleanForce, "force", false, "skip confirmation prompt")
}
