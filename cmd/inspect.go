package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/droidcli/droidcli/internal/output"
	"github.com/droidcli/droidcli/internal/ui"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Dump the current UI hierarchy",
	Long:  "Capture a fresh uiautomator snapshot of the foreground UI and print its elements with bounds, centers, and interaction flags.",
	RunE:  runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().Bool("all", false, "Include invisible elements")
	inspectCmd.Flags().Bool("clickable", false, "Only clickable elements")
	inspectCmd.Flags().Int("limit", 0, "Max elements in output (0 = unlimited)")
}

func runInspect(cmd *cobra.Command, args []string) error {
	all, _ := cmd.Flags().GetBool("all")
	clickableOnly, _ := cmd.Flags().GetBool("clickable")
	limit, _ := cmd.Flags().GetInt("limit")

	ctx := context.Background()
	mgr := newManager()
	snap, err := ui.NewInspector(mgr).Snapshot(ctx, ui.ParseOptions{IncludeInvisible: all})
	if err != nil {
		return err
	}

	elements := snap.Elements
	if clickableOnly {
		filtered := make([]ui.Element, 0, len(elements))
		for _, el := range elements {
			if el.Clickable {
				filtered = append(filtered, el)
			}
		}
		elements = filtered
	}
	if limit > 0 && len(elements) > limit {
		elements = elements[:limit]
	}

	res := output.InspectResult{
		Device:   mgr.Serial(),
		TS:       time.Now().Unix(),
		Stats:    snap.Stats(),
		Elements: elements,
	}
	if pkg, activity, err := mgr.ForegroundApp(ctx); err == nil {
		res.App = pkg
		res.Activity = activity
	}
	return output.Print(res)
}
