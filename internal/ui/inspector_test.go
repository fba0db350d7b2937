package ui

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/droidcli/droidcli/internal/adb"
)

// scriptRunner returns canned results per joined argument list, with
// an ordered failure budget for the dump command.
type scriptRunner struct {
	dumpContent string
	failDumps   int
	calls       []string
}

func (r *scriptRunner) Run(ctx context.Context, timeout time.Duration, args ...string) (adb.Result, error) {
	key := strings.Join(args, " ")
	r.calls = append(r.calls, key)
	switch {
	case strings.Contains(key, "uiautomator dump"):
		if r.failDumps > 0 {
			r.failDumps--
			return adb.Result{OK: false, ExitCode: 1, Stderr: "ERROR: null root node returned"}, nil
		}
		return adb.Result{OK: true, Stdout: "UI hierchary dumped to: /sdcard/window_dump.xml"}, nil
	case strings.Contains(key, "cat /sdcard/window_dump.xml"):
		return adb.Result{OK: true, Stdout: r.dumpContent}, nil
	case strings.Contains(key, "wm size"):
		return adb.Result{OK: true, Stdout: "Physical size: 1080x2340\n"}, nil
	}
	return adb.Result{OK: true}, nil
}

func (r *scriptRunner) Start(args ...string) (adb.Process, error) { return nil, nil }

func (r *scriptRunner) count(substr string) int {
	n := 0
	for _, c := range r.calls {
		if strings.Contains(c, substr) {
			n++
		}
	}
	return n
}

func TestInspector_Snapshot(t *testing.T) {
	runner := &scriptRunner{dumpContent: loginDump}
	mgr := adb.NewManager(runner, "emulator-5554")

	snap, err := NewInspector(mgr).Snapshot(context.Background(), ParseOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Elements) != 5 {
		t.Errorf("elements: got %d, want 5", len(snap.Elements))
	}
	if snap.ScreenSize != (adb.Size{Width: 1080, Height: 2340}) {
		t.Errorf("screen size: %+v", snap.ScreenSize)
	}
}

func TestInspector_RetriesWithCompressed(t *testing.T) {
	runner := &scriptRunner{dumpContent: loginDump, failDumps: 1}
	mgr := adb.NewManager(runner, "emulator-5554")

	if _, err := NewInspector(mgr).Snapshot(context.Background(), ParseOptions{}); err != nil {
		t.Fatal(err)
	}
	if got := runner.count("uiautomator dump"); got != 2 {
		t.Errorf("dump attempts: got %d, want 2", got)
	}
	if got := runner.count("--compressed"); got != 1 {
		t.Errorf("retry should switch to --compressed: got %d", got)
	}
}

func TestInspector_FailsAfterRetries(t *testing.T) {
	runner := &scriptRunner{dumpContent: loginDump, failDumps: 99}
	mgr := adb.NewManager(runner, "emulator-5554")

	ins := NewInspector(mgr)
	ins.Retries = 2
	_, err := ins.Snapshot(context.Background(), ParseOptions{})
	if err == nil {
		t.Fatal("want error after retry budget")
	}
	if got := runner.count("uiautomator dump"); got != 2 {
		t.Errorf("dump attempts: got %d, want 2", got)
	}
}
