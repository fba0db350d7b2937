package logcat

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/droidcli/droidcli/internal/adb"
	"github.com/droidcli/droidcli/internal/session"
)

// fakeProc feeds scripted stdout to the monitor's read loop.
type fakeProc struct {
	r *io.PipeReader
	w *io.PipeWriter

	mu   sync.Mutex
	done chan struct{}
}

func newFakeProc() *fakeProc {
	r, w := io.Pipe()
	return &fakeProc{r: r, w: w, done: make(chan struct{})}
}

func (p *fakeProc) Stdout() io.Reader { return p.r }
func (p *fakeProc) PID() int          { return 4242 }

func (p *fakeProc) Stop() error {
	p.exit()
	return nil
}

func (p *fakeProc) Kill() error {
	p.exit()
	return nil
}

func (p *fakeProc) Wait() error {
	<-p.done
	return nil
}

func (p *fakeProc) exit() {
	p.mu.Lock()
	defer p.mu.Unlock()
	select {
	case <-p.done:
	default:
		p.w.Close()
		close(p.done)
	}
}

func (p *fakeProc) emit(line string) {
	p.w.Write([]byte(line + "\n"))
}

// procRunner hands out one fake process and succeeds every Run call.
type procRunner struct {
	proc      *fakeProc
	startArgs []string
	runCalls  []string
}

func (r *procRunner) Run(ctx context.Context, timeout time.Duration, args ...string) (adb.Result, error) {
	r.runCalls = append(r.runCalls, strings.Join(args, " "))
	return adb.Result{OK: true}, nil
}

func (r *procRunner) Start(args ...string) (adb.Process, error) {
	r.startArgs = args
	return r.proc, nil
}

func TestMonitor_Lifecycle(t *testing.T) {
	dir := t.TempDir()
	runner := &procRunner{proc: newFakeProc()}
	mgr := adb.NewManager(runner, "emulator-5554")

	mon := NewMonitor(mgr, MonitorConfig{Tag: "MyApp", MinPriority: "W", Clear: true, Dir: dir})
	if err := mon.Start(context.Background(), "sess1"); err != nil {
		t.Fatal(err)
	}

	joined := strings.Join(runner.startArgs, " ")
	if !strings.Contains(joined, "logcat -v threadtime MyApp:W *:S") {
		t.Errorf("logcat args: %q", joined)
	}
	if len(runner.runCalls) == 0 || !strings.Contains(runner.runCalls[0], "logcat -c") {
		t.Errorf("clear should run first: %v", runner.runCalls)
	}

	runner.proc.emit("03-15 14:23:45.678  100  200 W MyApp: first")
	runner.proc.emit("03-15 14:23:45.679  100  200 E MyApp: second")

	// The read loop is asynchronous; wait for both entries to land.
	deadline := time.Now().Add(2 * time.Second)
	for mon.Progress().Entries < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("entries never arrived: %d", mon.Progress().Entries)
		}
		time.Sleep(5 * time.Millisecond)
	}

	recent := mon.Recent(10)
	if len(recent) != 2 || recent[0].Message != "first" || recent[1].Message != "second" {
		t.Fatalf("recent: %+v", recent)
	}

	if err := mon.Stop(); err != nil {
		t.Fatal(err)
	}
	if err := mon.Wait(); err != nil {
		t.Fatal(err)
	}

	var res session.Result
	mon.Finalize(context.Background(), &res)
	if res.Entries != 2 {
		t.Errorf("entries: got %d, want 2", res.Entries)
	}

	wantArtifact := filepath.Join(dir, "logmon_sess1.log")
	if res.Artifact != wantArtifact {
		t.Errorf("artifact: got %q, want %q", res.Artifact, wantArtifact)
	}
	content, err := os.ReadFile(wantArtifact)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "first") || !strings.Contains(string(content), "second") {
		t.Errorf("log file content:\n%s", content)
	}
}

func TestMonitor_RejectsBadPriority(t *testing.T) {
	runner := &procRunner{proc: newFakeProc()}
	mgr := adb.NewManager(runner, "emulator-5554")
	mon := NewMonitor(mgr, MonitorConfig{MinPriority: "X"})
	if err := mon.Start(context.Background(), "sess2"); err == nil {
		t.Fatal("unknown priority should fail fast")
	}
}
