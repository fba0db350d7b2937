package media

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/droidcli/droidcli/internal/adb"
	"github.com/droidcli/droidcli/internal/session"
)

type stubProc struct {
	done    chan struct{}
	stopped bool
	killed  bool
}

func newStubProc() *stubProc { return &stubProc{done: make(chan struct{})} }

func (p *stubProc) Stdout() io.Reader { return strings.NewReader("") }

func (p *stubProc) PID() int { return 99 }

func (p *stubProc) Stop() error {
	p.stopped = true
	select {
	case <-p.done:
	default:
		close(p.done)
	}
	return nil
}

func (p *stubProc) Kill() error {
	p.killed = true
	return nil
}

func (p *stubProc) Wait() error {
	<-p.done
	return nil
}

type recordRunner struct {
	proc      *stubProc
	startArgs []string
	runCalls  []string
}

func (r *recordRunner) Run(ctx context.Context, timeout time.Duration, args ...string) (adb.Result, error) {
	r.runCalls = append(r.runCalls, strings.Join(args, " "))
	return adb.Result{OK: true}, nil
}

func (r *recordRunner) Start(args ...string) (adb.Process, error) {
	r.startArgs = args
	return r.proc, nil
}

func TestRecording_StartArgs(t *testing.T) {
	runner := &recordRunner{proc: newStubProc()}
	mgr := adb.NewManager(runner, "abc123")

	rec := NewRecording(mgr, RecordingConfig{
		TimeLimit: 30 * time.Second,
		BitRate:   4000000,
		Size:      "1280x720",
		Dir:       t.TempDir(),
	})
	if err := rec.Start(context.Background(), "sess9"); err != nil {
		t.Fatal(err)
	}

	joined := strings.Join(runner.startArgs, " ")
	for _, want := range []string{
		"shell screenrecord",
		"--time-limit 30",
		"--bit-rate 4000000",
		"--size 1280x720",
		"/sdcard/recording_sess9.mp4",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q: %q", want, joined)
		}
	}
}

func TestRecording_LimitClamped(t *testing.T) {
	runner := &recordRunner{proc: newStubProc()}
	mgr := adb.NewManager(runner, "abc123")

	rec := NewRecording(mgr, RecordingConfig{TimeLimit: 10 * time.Minute})
	if err := rec.Start(context.Background(), "s"); err != nil {
		t.Fatal(err)
	}
	joined := strings.Join(runner.startArgs, " ")
	if !strings.Contains(joined, "--time-limit 180") {
		t.Errorf("limit should clamp to 180: %q", joined)
	}

	// Zero limit also records up to the encoder maximum.
	runner2 := &recordRunner{proc: newStubProc()}
	rec2 := NewRecording(adb.NewManager(runner2, "abc123"), RecordingConfig{})
	if err := rec2.Start(context.Background(), "s2"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(strings.Join(runner2.startArgs, " "), "--time-limit 180") {
		t.Errorf("zero limit should use the maximum: %q", runner2.startArgs)
	}
}

func TestRecording_StopSignalsRemote(t *testing.T) {
	runner := &recordRunner{proc: newStubProc()}
	mgr := adb.NewManager(runner, "abc123")

	rec := NewRecording(mgr, RecordingConfig{Dir: t.TempDir()})
	if err := rec.Start(context.Background(), "sess"); err != nil {
		t.Fatal(err)
	}
	if err := rec.Stop(); err != nil {
		t.Fatal(err)
	}

	var sawPkill bool
	for _, call := range runner.runCalls {
		if strings.Contains(call, "pkill -l2 screenrecord") {
			sawPkill = true
		}
	}
	if !sawPkill {
		t.Errorf("stop should interrupt the device-side recorder: %v", runner.runCalls)
	}
	if !runner.proc.stopped {
		t.Error("local adb process should be stopped too")
	}
}

func TestRecording_FinalizePulls(t *testing.T) {
	runner := &recordRunner{proc: newStubProc()}
	mgr := adb.NewManager(runner, "abc123")
	dir := t.TempDir()

	rec := NewRecording(mgr, RecordingConfig{Dir: dir})
	if err := rec.Start(context.Background(), "sessF"); err != nil {
		t.Fatal(err)
	}

	var res session.Result
	rec.Finalize(context.Background(), &res)

	if res.Artifact == "" || !strings.HasSuffix(res.Artifact, "recording_sessF.mp4") {
		t.Errorf("artifact: %q", res.Artifact)
	}

	var sawPull, sawRemove bool
	for _, call := range runner.runCalls {
		if strings.HasPrefix(call, "-s abc123 pull /sdcard/recording_sessF.mp4") {
			sawPull = true
		}
		if strings.Contains(call, "rm -f /sdcard/recording_sessF.mp4") {
			sawRemove = true
		}
	}
	if !sawPull {
		t.Errorf("finalize should pull the video: %v", runner.runCalls)
	}
	if !sawRemove {
		t.Errorf("finalize should remove the device copy: %v", runner.runCalls)
	}
}

func TestConflictKey(t *testing.T) {
	if ConflictKey("abc") == ConflictKey("xyz") {
		t.Error("different devices must have different keys")
	}
	if ConflictKey("abc") != ConflictKey("abc") {
		t.Error("same device must collide")
	}
}
