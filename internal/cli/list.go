package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/benchaudit/benchaudit/exclusions"
	"github.com/benchaudit/benchaudit/internal/exclusion"
)

var (
	listCategory string
	listJSON     bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the curated exclusion entries",
	Long:  `Lists the curated exclusion list, optionally filtered by category.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		externalList := cfg.Inputs.ExclusionsFile
		if exclusionsFile != "" {
			externalList = exclusionsFile
		}

		loader := exclusion.NewLoader(exclusions.FS, exclusions.ListPath, externalList)
		list, err := loader.Load()
		if err != nil {
			return err
		}

		entries := list.Entries
		if listCategory != "" {
			c, err := exclusion.ParseCategory(listCategory)
			if err != nil {
				return err
			}
			entries = list.ByCategory(c)
		}

		if listJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}

		return outputExclusionTable(list, entries)
	},
}

func init() {
	listCmd.Flags().StringVarP(&listCategory, "category", "c", "", "filter by category (invalid_environment, invalid_answer)")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
}

func outputExclusionTable(list *exclusion.List, entries []exclusion.Exclusion) error {
	if len(entries) == 0 {
		fmt.Println("No exclusions found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TASK\tCATEGORY\tRATIONALE")
	fmt.Fprintln(w, "----\t--------\t---------")

	for _, e := range entries {
		rationale := e.Rationale
		if len(rationale) > 60 {
			rationale = rationale[:57] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.TaskID, e.Category, rationale)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	counts := list.CountByCategory()
	var parts []string
	for _, c := range exclusion.Categories {
		parts = append(parts, fmt.Sprintf("%s: %d", c, counts[c]))
	}
	fmt.Printf("\n%d shown of %d total (%s)\n", len(entries), list.Len(), strings.Join(parts, ", "))

	return nil
}
