package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/droidcli/droidcli/internal/media"
	"github.com/droidcli/droidcli/internal/output"
	"github.com/droidcli/droidcli/internal/session"
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record the screen",
	Long: `Record the screen with screenrecord and pull the video when done.
Runs until the time limit elapses or Ctrl-C is pressed. screenrecord
caps a single recording at 3 minutes.`,
	RunE: runRecord,
}

func init() {
	rootCmd.AddCommand(recordCmd)
	recordCmd.Flags().Duration("time-limit", 0, "Stop after this long (max 3m, 0 = record until stopped)")
	recordCmd.Flags().Int("bit-rate", 0, "Video bit rate in bits per second (0 = device default)")
	recordCmd.Flags().String("size", "", "Video size WxH, e.g. 1280x720 (default: display resolution)")
	recordCmd.Flags().String("out", "", "Local directory for the video (default: media dir, then cwd)")
}

func runRecord(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetDuration("time-limit")
	bitRate, _ := cmd.Flags().GetInt("bit-rate")
	size, _ := cmd.Flags().GetString("size")
	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = cfg.MediaDir
	}

	ctx := context.Background()
	mgr := newManager()
	dev, err := mgr.AutoSelect(ctx)
	if err != nil {
		return err
	}

	recCfg := media.RecordingConfig{TimeLimit: limit, BitRate: bitRate, Size: size, Dir: out}
	reg := session.NewRegistry(session.Options{StopGrace: cfg.StopGrace.Std(), Retention: cfg.Retention.Std()})

	sessionCfg := session.Config{
		ConflictKey: media.ConflictKey(dev.Serial),
		Detail:      recCfg,
	}
	if limit > 0 {
		// Backstop in case screenrecord ignores its own limit.
		sessionCfg.TimeLimit = limit + 10*time.Second
	}

	id, err := reg.Start(ctx, session.KindRecording, media.NewRecording(mgr, recCfg), sessionCfg)
	if err != nil {
		return err
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
