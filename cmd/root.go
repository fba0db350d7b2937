package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/droidcli/droidcli/internal/config"
	"github.com/droidcli/droidcli/internal/logging"
	"github.com/droidcli/droidcli/internal/output"
	"github.com/droidcli/droidcli/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "droidcli",
	Short: "Inspect and drive Android devices over adb",
	Long:  "A CLI tool that lets AI agents inspect Android UI hierarchies, drive input, capture media, and monitor logs over adb.",
}

// cfg holds the persistent defaults loaded in PersistentPreRunE.
var cfg config.Config

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	rootCmd.PersistentFlags().String("format", "", "Output format: yaml, json")
	rootCmd.PersistentFlags().Bool("pretty", false, "Pretty-print JSON output")
	rootCmd.PersistentFlags().StringP("device", "s", "", "Device serial (defaults to config, then auto-select)")
	rootCmd.PersistentFlags().String("adb", "", "Path to the adb binary")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging on stderr")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		verbose, _ := rootCmd.PersistentFlags().GetBool("verbose")
		logging.SetVerbose(verbose)

		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded

		format, _ := rootCmd.PersistentFlags().GetString("format")
		if format == "" {
			format = "yaml"
		}
		switch format {
		case "yaml":
			output.OutputFormat = output.FormatYAML
		case "json":
			output.OutputFormat = output.FormatJSON
		default:
			return fmt.Errorf("unsupported format: %s (use yaml or json)", format)
		}
		if pretty, _ := rootCmd.PersistentFlags().GetBool("pretty"); pretty {
			output.PrettyOutput = true
		}
		return nil
	}
}
