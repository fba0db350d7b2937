package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/droidcli/droidcli/internal/logcat"
	"github.com/droidcli/droidcli/internal/output"
)

var logcatCmd = &cobra.Command{
	Use:   "logcat",
	Short: "Dump the device log buffer",
	Long:  "Read the device log buffer once, parse the entries, and print them. With --search, only entries whose message or tag contains the query are returned.",
	RunE:  runLogcat,
}

func init() {
	rootCmd.AddCommand(logcatCmd)
	logcatCmd.Flags().String("tag", "", "Only include this tag")
	logcatCmd.Flags().String("priority", "V", "Minimum priority: V, D, I, W, E, F")
	logcatCmd.Flags().Int("lines", 0, "Only the most recent N lines (0 = whole buffer)")
	logcatCmd.Flags().String("since", "", "Start at a device timestamp (MM-DD HH:MM:SS.mmm)")
	logcatCmd.Flags().Bool("clear", false, "Clear the device buffer after the dump")
	logcatCmd.Flags().String("search", "", "Filter entries by substring on message or tag")
}

type logcatResult struct {
	Device  string         `yaml:"device,omitempty" json:"device,omitempty"`
	Count   int            `yaml:"count"            json:"count"`
	Entries []logcat.Entry `yaml:"entries"          json:"entries"`
}

func runLogcat(cmd *cobra.Command, args []string) error {
	tag, _ := cmd.Flags().GetString("tag")
	priority, _ := cmd.Flags().GetString("priority")
	lines, _ := cmd.Flags().GetInt("lines")
	since, _ := cmd.Flags().GetString("since")
	clear, _ := cmd.Flags().GetBool("clear")
	search, _ := cmd.Flags().GetString("search")

	ctx := context.Background()
	mgr := newManager()
	opts := logcat.DumpOptions{
		Tag:         tag,
		MinPriority: priority,
		Lines:       lines,
		Since:       since,
		Clear:       clear,
	}

	var entries []logcat.Entry
	var err error
	if search != "" {
		entries, err = logcat.Search(ctx, mgr, search, opts)
	} else {
		entries, err = logcat.Dump(ctx, mgr, opts)
	}
	if err != nil {
		return err
	}
	return output.Print(logcatResult{
		Device:  mgr.Serial(),
		Count:   len(entries),
		Entries: entries,
	})
}
