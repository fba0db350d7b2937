package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/droidcli/droidcli/internal/output"
	"github.com/droidcli/droidcli/internal/ui"
)

var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait for an element to appear",
	Long:  "Poll fresh snapshots until an element matching the criteria appears, or the timeout elapses.",
	RunE:  runWait,
}

func init() {
	rootCmd.AddCommand(waitCmd)
	registerCriteriaFlags(waitCmd)
	waitCmd.Flags().Duration("timeout", 10*time.Second, "Give up after this long")
	waitCmd.Flags().Duration("interval", 500*time.Millisecond, "Delay between snapshots")
	waitCmd.Flags().Bool("gone", false, "Wait for the element to disappear instead")
}

type waitResult struct {
	Device  string        `yaml:"device,omitempty" json:"device,omitempty"`
	Query   string        `yaml:"query"            json:"query"`
	Found   bool          `yaml:"found"            json:"found"`
	Waited  time.Duration `yaml:"waited"           json:"waited"`
	Element *ui.Element   `yaml:"element,omitempty" json:"element,omitempty"`
}

func runWait(cmd *cobra.Command, args []string) error {
	criteria := criteriaFromFlags(cmd)
	if err := requireCriteria(criteria); err != nil {
		return err
	}
	timeout, _ := cmd.Flags().GetDuration("timeout")
	interval, _ := cmd.Flags().GetDuration("interval")
	gone, _ := cmd.Flags().GetBool("gone")

	mgr := newManager()
	inspector := ui.NewInspector(mgr)
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	res := waitResult{Device: mgr.Serial(), Query: criteria.String()}

	for {
		snap, err := inspector.Snapshot(ctx, ui.ParseOptions{})
		if err == nil {
			matches, ferr := ui.Find(snap, criteria)
			if ferr != nil {
				return ferr
			}
			if gone && len(matches) == 0 {
				res.Found = true
			}
			if !gone && len(matches) > 0 {
				res.Found = true
				res.Element = &matches[0]
			}
			if res.Found {
				res.Waited = time.Since(start).Round(time.Millisecond)
				return output.Print(res)
			}
		} else if ctx.Err() != nil {
			break
		}

		select {
		case <-ctx.Done():
			res.Waited = time.Since(start).Round(time.Millisecond)
			return output.Print(res)
		case <-time.After(interval):
		}
	}

	res.Waited = time.Since(start).Round(time.Millisecond)
	return output.Print(res)
}
