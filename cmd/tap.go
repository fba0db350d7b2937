package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/droidcli/droidcli/internal/adb"
	"github.com/droidcli/droidcli/internal/output"
	"github.com/droidcli/droidcli/internal/ui"
)

var tapCmd = &cobra.Command{
	Use:   "tap",
	Short: "Tap an element or a coordinate",
	Long:  "Tap the center of an element matched by criteria, or an absolute screen coordinate. Element resolution always uses a fresh snapshot.",
	RunE:  runTap,
}

func init() {
	rootCmd.AddCommand(tapCmd)
	registerCriteriaFlags(tapCmd)
	tapCmd.Flags().Int("x", -1, "Tap at absolute X coordinate")
	tapCmd.Flags().Int("y", -1, "Tap at absolute Y coordinate")
	tapCmd.Flags().Int("index", 0, "Which match to tap when several elements match (0-based, document order)")
	tapCmd.Flags().Duration("long", 0, "Long-press with the given hold duration (e.g. 800ms)")
}

func runTap(cmd *cobra.Command, args []string) error {
	x, _ := cmd.Flags().GetInt("x")
	y, _ := cmd.Flags().GetInt("y")
	index, _ := cmd.Flags().GetInt("index")
	long, _ := cmd.Flags().GetDuration("long")
	criteria := criteriaFromFlags(cmd)

	ctx := context.Background()
	mgr := newManager()

	action := "tap"
	if long > 0 {
		action = "long_press"
	}
	res := output.ActionResult{Device: mgr.Serial(), Action: action}

	if criteria.Empty() {
		if x < 0 || y < 0 {
			return fmt.Errorf("provide element criteria (--text, --id, --desc, --class) or both --x and --y")
		}
		res.X, res.Y = x, y
	} else {
		snap, err := ui.NewInspector(mgr).Snapshot(ctx, ui.ParseOptions{})
		if err != nil {
			return err
		}
		el, err := ui.Resolve(snap, criteria, index)
		if err != nil {
			return err
		}
		res.Target = &el
		res.X, res.Y = el.Center.X, el.Center.Y
	}

	var result adb.Result
	var err error
	if long > 0 {
		result, err = mgr.LongPress(ctx, res.X, res.Y, long)
	} else {
		result, err = mgr.Tap(ctx, res.X, res.Y)
	}
	if err != nil {
		return err
	}
	res.OK = result.OK
	if !result.OK {
		res.Error = strings.TrimSpace(result.Stderr)
	}
	return output.Print(res)
}
