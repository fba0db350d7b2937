package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/droidcli/droidcli/internal/output"
	"github.com/droidcli/droidcli/internal/ui"
)

var typeCmd = &cobra.Command{
	Use:   "type <text>",
	Short: "Type text into the focused field",
	Long:  "Type text via the input service. Optionally tap an element first with the matching criteria, then type into it.",
	Args:  cobra.ExactArgs(1),
	RunE:  runType,
}

func init() {
	rootCmd.AddCommand(typeCmd)
	registerCriteriaFlags(typeCmd)
	typeCmd.Flags().Int("index", 0, "Which match to focus when several elements match")
}

func runType(cmd *cobra.Command, args []string) error {
	text := args[0]
	index, _ := cmd.Flags().GetInt("index")
	criteria := criteriaFromFlags(cmd)

	ctx := context.Background()
	mgr := newManager()
	res := output.ActionResult{Device: mgr.Serial(), Action: "type"}

	if !criteria.Empty() {
		snap, err := ui.NewInspector(mgr).Snapshot(ctx, ui.ParseOptions{})
		if err != nil {
			return err
		}
		el, err := ui.Resolve(snap, criteria, index)
		if err != nil {
			return err
		}
		if tap, err := mgr.Tap(ctx, el.Center.X, el.Center.Y); err != nil {
			return err
		} else if !tap.OK {
			res.Error = strings.TrimSpace(tap.Stderr)
			return output.Print(res)
		}
		res.Target = &el
	}

	result, err := mgr.InputText(ctx, text)
	if err != nil {
		return err
	}
	res.OK = result.OK
	if !result.OK {
		res.Error = strings.TrimSpace(result.Stderr)
	}
	return output.Print(res)
}
