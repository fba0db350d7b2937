package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/droidcli/droidcli/internal/media"
	"github.com/droidcli/droidcli/internal/output"
	"github.com/droidcli/droidcli/internal/ui"
)

var screenshotCmd = &cobra.Command{
	Use:   "screenshot",
	Short: "Capture a screenshot",
	Long:  "Capture the screen with screencap and pull the PNG locally. With matching criteria, matched elements are outlined and numbered on an annotated copy.",
	RunE:  runScreenshot,
}

func init() {
	rootCmd.AddCommand(screenshotCmd)
	registerCriteriaFlags(screenshotCmd)
	screenshotCmd.Flags().String("out", "", "Local output path (default: timestamped name in the media dir)")
}

type screenshotResult struct {
	media.ScreenshotResult `yaml:",inline" json:",inline"`

	Annotated string `yaml:"annotated,omitempty" json:"annotated,omitempty"`
	Matches   int    `yaml:"matches,omitempty"   json:"matches,omitempty"`
}

func runScreenshot(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")
	criteria := criteriaFromFlags(cmd)

	if out == "" && cfg.MediaDir != "" {
		out = filepath.Join(cfg.MediaDir, fmt.Sprintf("screenshot_%s.png", time.Now().Format("20060102_150405")))
	}

	ctx := context.Background()
	mgr := newManager()
	shot, err := media.Screenshot(ctx, mgr, out)
	if err != nil {
		return err
	}
	res := screenshotResult{ScreenshotResult: shot}

	if !criteria.Empty() {
		snap, err := ui.NewInspector(mgr).Snapshot(ctx, ui.ParseOptions{})
		if err != nil {
			return err
		}
		matches, err := ui.Find(snap, criteria)
		if err != nil {
			return err
		}
		res.Matches = len(matches)
		if len(matches) > 0 {
			annotated := annotatedPath(shot.Path)
			if err := media.Annotate(shot.Path, annotated, matches); err != nil {
				return err
			}
			res.Annotated = annotated
		}
	}
	return output.Print(res)
}

func annotatedPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_annotated" + ext
}
