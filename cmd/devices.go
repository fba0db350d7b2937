package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/droidcli/droidcli/internal/adb"
	"github.com/droidcli/droidcli/internal/output"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List connected devices",
	Long:  "List devices known to the adb server, with connection state and transport properties.",
	RunE:  runDevices,
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}

type devicesResult struct {
	Count   int          `yaml:"count"   json:"count"`
	Devices []adb.Device `yaml:"devices" json:"devices"`
}

func runDevices(cmd *cobra.Command, args []string) error {
	mgr := newManager()
	devices, err := mgr.Devices(context.Background())
	if err != nil {
		return err
	}
	return output.Print(devicesResult{Count: len(devices), Devices: devices})
}
