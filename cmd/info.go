package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/droidcli/droidcli/internal/adb"
	"github.com/droidcli/droidcli/internal/output"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show details about the selected device",
	Long:  "Show model, Android version, screen size, and the foreground app of the selected device.",
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

type infoResult struct {
	Device   adb.DeviceInfo `yaml:"device"             json:"device"`
	Screen   adb.Size       `yaml:"screen"             json:"screen"`
	App      string         `yaml:"app,omitempty"      json:"app,omitempty"`
	Activity string         `yaml:"activity,omitempty" json:"activity,omitempty"`
}

func runInfo(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	mgr := newManager()

	info, err := mgr.Info(ctx)
	if err != nil {
		return err
	}
	res := infoResult{Device: info}

	if size, err := mgr.ScreenSize(ctx); err == nil {
		res.Screen = size
	}
	if pkg, activity, err := mgr.ForegroundApp(ctx); err == nil {
		res.App = pkg
		res.Activity = activity
	}
	return output.Print(res)
}
