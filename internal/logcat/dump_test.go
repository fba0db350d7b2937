package logcat

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/droidcli/droidcli/internal/adb"
)

const dumpOutput = `--------- beginning of main
03-15 14:23:45.678  1234  5678 I ActivityManager: Start proc 9999
03-15 14:23:45.700  1234  5678 W AudioFlinger: write blocked for 120 ms
03-15 14:23:45.800  2222  2222 E MyApp: request failed: timeout
`

// dumpRunner returns a canned logcat dump and records each call.
type dumpRunner struct {
	out   string
	calls []string
}

func (r *dumpRunner) Run(ctx context.Context, timeout time.Duration, args ...string) (adb.Result, error) {
	r.calls = append(r.calls, strings.Join(args, " "))
	return adb.Result{OK: true, Stdout: r.out}, nil
}

func (r *dumpRunner) Start(args ...string) (adb.Process, error) { return nil, nil }

func TestDump(t *testing.T) {
	runner := &dumpRunner{out: dumpOutput}
	mgr := adb.NewManager(runner, "emulator-5554")

	entries, err := Dump(context.Background(), mgr, DumpOptions{Tag: "MyApp", MinPriority: "W", Lines: 100})
	if err != nil {
		t.Fatal(err)
	}

	joined := strings.Join(runner.calls, " | ")
	for _, want := range []string{"logcat -d -v threadtime", "-t 100", "MyApp:W *:S"} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q: %q", want, joined)
		}
	}

	// The separator banner is dropped; real lines come back parsed.
	if len(entries) != 3 {
		t.Fatalf("entries: got %d, want 3", len(entries))
	}
	if entries[0].Tag != "ActivityManager" || entries[0].Priority != PriorityInfo {
		t.Errorf("first entry: %+v", entries[0])
	}
}

func TestDump_RejectsBadPriority(t *testing.T) {
	mgr := adb.NewManager(&dumpRunner{}, "emulator-5554")
	if _, err := Dump(context.Background(), mgr, DumpOptions{MinPriority: "Q"}); err == nil {
		t.Fatal("unknown priority should fail")
	}
}

func TestDump_ClearRunsAfter(t *testing.T) {
	runner := &dumpRunner{out: dumpOutput}
	mgr := adb.NewManager(runner, "emulator-5554")

	if _, err := Dump(context.Background(), mgr, DumpOptions{Clear: true}); err != nil {
		t.Fatal(err)
	}
	if len(runner.calls) != 2 {
		t.Fatalf("calls: %v", runner.calls)
	}
	if !strings.Contains(runner.calls[0], "logcat -d") {
		t.Errorf("dump should come first: %q", runner.calls[0])
	}
	if !strings.Contains(runner.calls[1], "logcat -c") {
		t.Errorf("clear should come after the dump: %q", runner.calls[1])
	}
}

func TestSearch(t *testing.T) {
	runner := &dumpRunner{out: dumpOutput}
	mgr := adb.NewManager(runner, "emulator-5554")

	entries, err := Search(context.Background(), mgr, "TIMEOUT", DumpOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Tag != "MyApp" {
		t.Fatalf("search: %+v", entries)
	}

	// Tag text is searched too.
	entries, err = Search(context.Background(), mgr, "audioflinger", DumpOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Tag != "AudioFlinger" {
		t.Fatalf("tag search: %+v", entries)
	}
}
