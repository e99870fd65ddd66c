package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var initForce bool

const starterConfig = `# benchaudit configuration

[inputs]
runs_file = "latest_runs.csv"
definitions_file = "webarena_tests.json"
# exclusions_file = "impossible_tasks.toml"  # default: embedded curated list

[output]
dir = "."

[watch]
debounce_ms = 300
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter benchaudit.toml",
	Long: `Creates a benchaudit.toml in the current directory with the default
input and output settings, ready to edit.

Example:
  benchaudit init`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		const path = "benchaudit.toml"

		if _, err := os.Stat(path); err == nil && !initForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}

		if err := os.WriteFile(path, []byte(starterConfig), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}

		fmt.Printf("Wrote %s\n", path)
		fmt.Println("\nNext steps:")
		fmt.Println("  1. Place latest_runs.csv and webarena_tests.json in this directory")
		fmt.Println("  2. Run: benchaudit analyze")

		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config")
}
