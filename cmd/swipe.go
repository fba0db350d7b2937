package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/droidcli/droidcli/internal/adb"
	"github.com/droidcli/droidcli/internal/output"
)

var swipeCmd = &cobra.Command{
	Use:   "swipe",
	Short: "Swipe between coordinates or in a direction",
	Long:  "Swipe between explicit coordinates, or in a named direction (up, down, left, right) across the middle of the screen.",
	RunE:  runSwipe,
}

func init() {
	rootCmd.AddCommand(swipeCmd)
	swipeCmd.Flags().Int("from-x", -1, "Start X coordinate")
	swipeCmd.Flags().Int("from-y", -1, "Start Y coordinate")
	swipeCmd.Flags().Int("to-x", -1, "End X coordinate")
	swipeCmd.Flags().Int("to-y", -1, "End Y coordinate")
	swipeCmd.Flags().String("direction", "", "Named swipe: up, down, left, right")
	swipeCmd.Flags().Duration("duration", 300*time.Millisecond, "Swipe duration")
}

// directionSwipe maps a named direction onto screen coordinates,
// swiping across the middle 60% of the axis.
func directionSwipe(size adb.Size, dir string) (x1, y1, x2, y2 int, err error) {
	cx, cy := size.Width/2, size.Height/2
	dx, dy := size.Width*3/10, size.Height*3/10
	switch dir {
	case "up":
		return cx, cy + dy, cx, cy - dy, nil
	case "down":
		return cx, cy - dy, cx, cy + dy, nil
	case "left":
		return cx + dx, cy, cx - dx, cy, nil
	case "right":
		return cx - dx, cy, cx + dx, cy, nil
	}
	return 0, 0, 0, 0, fmt.Errorf("unknown direction %q (use up, down, left, right)", dir)
}

func runSwipe(cmd *cobra.Command, args []string) error {
	fromX, _ := cmd.Flags().GetInt("from-x")
	fromY, _ := cmd.Flags().GetInt("from-y")
	toX, _ := cmd.Flags().GetInt("to-x")
	toY, _ := cmd.Flags().GetInt("to-y")
	dir, _ := cmd.Flags().GetString("direction")
	duration, _ := cmd.Flags().GetDuration("duration")

	ctx := context.Background()
	mgr := newManager()

	if dir != "" {
		size, err := mgr.ScreenSize(ctx)
		if err != nil {
			return err
		}
		fromX, fromY, toX, toY, err = directionSwipe(size, dir)
		if err != nil {
			return err
		}
	} else if fromX < 0 || fromY < 0 || toX < 0 || toY < 0 {
		return fmt.Errorf("provide --direction or all of --from-x, --from-y, --to-x, --to-y")
	}

	result, err := mgr.Swipe(ctx, fromX, fromY, toX, toY, duration)
	if err != nil {
		return err
	}
	res := output.ActionResult{
		Device: mgr.Serial(),
		Action: "swipe",
		OK:     result.OK,
		X:      toX,
		Y:      toY,
	}
	if !result.OK {
		res.Error = strings.TrimSpace(result.Stderr)
	}
	return output.Print(res)
}
