package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/droidcli/droidcli/internal/output"
)

var keyCmd = &cobra.Command{
	Use:   "key <name>",
	Short: "Press a key",
	Long:  "Press a key by friendly name (home, back, enter, ...), KEYCODE_* constant, or raw keycode number.",
	Args:  cobra.ExactArgs(1),
	RunE:  runKey,
}

func init() {
	rootCmd.AddCommand(keyCmd)
}

func runKey(cmd *cobra.Command, args []string) error {
	mgr := newManager()
	result, err := mgr.PressKey(context.Background(), args[0])
	if err != nil {
		return err
	}
	res := output.ActionResult{
		Device: mgr.Serial(),
		Action: "key",
		OK:     result.OK,
	}
	if !result.OK {
		res.Error = strings.TrimSpace(result.Stderr)
	}
	return output.Print(res)
}
