package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/droidcli/droidcli/internal/logcat"
	"github.com/droidcli/droidcli/internal/output"
	"github.com/droidcli/droidcli/internal/session"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Stream device logs to a file",
	Long: `Stream logcat into a local log file, printing entries as they
arrive. Runs until the duration elapses or Ctrl-C is pressed.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().String("tag", "", "Only capture this tag")
	monitorCmd.Flags().String("priority", "V", "Minimum priority: V, D, I, W, E, F")
	monitorCmd.Flags().Bool("clear", false, "Clear the device log buffer before streaming")
	monitorCmd.Flags().Duration("duration", 0, "Stop after this long (0 = run until stopped)")
	monitorCmd.Flags().String("out", "", "Local directory for the log file (default: log dir, then cwd)")
	monitorCmd.Flags().Bool("db", false, "Also store parsed entries in a SQLite database")
	monitorCmd.Flags().Bool("quiet", false, "Do not echo entries while streaming")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	tag, _ := cmd.Flags().GetString("tag")
	priority, _ := cmd.Flags().GetString("priority")
	clear, _ := cmd.Flags().GetBool("clear")
	duration, _ := cmd.Flags().GetDuration("duration")
	out, _ := cmd.Flags().GetString("out")
	db, _ := cmd.Flags().GetBool("db")
	quiet, _ := cmd.Flags().GetBool("quiet")
	if out == "" {
		out = cfg.LogDir
	}

	ctx := context.Background()
	mgr := newManager()
	if _, err := mgr.AutoSelect(ctx); err != nil {
		return err
	}

	monCfg := logcat.MonitorConfig{
		Tag:         tag,
		MinPriority: priority,
		Clear:       clear,
		BufferSize:  cfg.LogBufferSize,
		Dir:         out,
		Database:    db,
	}
	mon := logcat.NewMonitor(mgr, monCfg)
	reg := session.NewRegistry(session.Options{StopGrace: cfg.StopGrace.Std(), Retention: cfg.Retention.Std()})

	id, err := reg.Start(ctx, session.KindLogMonitor, mon, session.Config{
		TimeLimit: duration,
		Detail:    monCfg,
	})
	if err != nil {
		return err
	}

	if !quiet {
		subID, entries := mon.Subscribe(256)
		defer mon.Unsubscribe(subID)
		go func() {
			for e := range entries {
				fmt.Fprintln(os.Stderr, e.Raw)
			}
		}()
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	res, err := reg.Wait(sigCtx, id)
	if errors.Is(err, context.Canceled) {
		res, err = reg.Stop(ctx, id)
	}
	if err != nil {
		return err
	}
	return output.Print(res)
}
