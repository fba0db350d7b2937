package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/droidcli/droidcli/internal/output"
	"github.com/droidcli/droidcli/internal/ui"
)

var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Find elements in the current UI",
	Long:  "Capture a fresh snapshot and return the elements matching the given criteria, in document order.",
	RunE:  runFind,
}

func init() {
	rootCmd.AddCommand(findCmd)
	registerCriteriaFlags(findCmd)
	findCmd.Flags().Int("limit", 0, "Max matches to return (0 = unlimited)")
	findCmd.Flags().Bool("all", false, "Search invisible elements too")
}

func runFind(cmd *cobra.Command, args []string) error {
	criteria := criteriaFromFlags(cmd)
	if err := requireCriteria(criteria); err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")
	all, _ := cmd.Flags().GetBool("all")

	mgr := newManager()
	snap, err := ui.NewInspector(mgr).Snapshot(context.Background(), ui.ParseOptions{IncludeInvisible: all})
	if err != nil {
		return err
	}

	matches, err := ui.Find(snap, criteria)
	if err != nil {
		return err
	}
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return output.Print(output.FindResult{
		Device:   mgr.Serial(),
		Query:    criteria.String(),
		Count:    len(matches),
		Elements: matches,
	})
}
