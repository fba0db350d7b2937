package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/droidcli/droidcli/internal/adb"
	"github.com/droidcli/droidcli/internal/session"
)

// screenrecord refuses limits above three minutes.
const maxRecordLimit = 180 * time.Second

// RecordingConfig fixes a screen recording's parameters at start time.
type RecordingConfig struct {
	// TimeLimit bounds the recording. Capped at screenrecord's
	// 180 second maximum; zero records until stopped (up to the cap).
	TimeLimit time.Duration `yaml:"time_limit,omitempty" json:"time_limit,omitempty"`

	// BitRate in bits per second; zero uses the device default.
	BitRate int `yaml:"bit_rate,omitempty"   json:"bit_rate,omitempty"`

	// Size is an explicit WxH, e.g. "1280x720"; empty uses the
	// display resolution.
	Size string `yaml:"size,omitempty"       json:"size,omitempty"`

	// Dir receives the pulled video file.
	Dir string `yaml:"dir,omitempty"        json:"dir,omitempty"`
}

// Recording runs screenrecord on a device and pulls the video when it
// ends. It implements session.Operation.
type Recording struct {
	mgr *adb.Manager
	cfg RecordingConfig

	mu         sync.Mutex
	process    adb.Process
	devicePath string
	artifact   string
}

// NewRecording returns an unstarted recording.
func NewRecording(mgr *adb.Manager, cfg RecordingConfig) *Recording {
	return &Recording{mgr: mgr, cfg: cfg}
}

// ConflictKey names the exclusive resource a recording holds: a
// device has a single screenrecord encoder.
func ConflictKey(serial string) string {
	return "screenrecord:" + serial
}

// Start launches screenrecord against the device.
func (r *Recording) Start(ctx context.Context, id string) error {
	limit := r.cfg.TimeLimit
	if limit <= 0 || limit > maxRecordLimit {
		limit = maxRecordLimit
	}

	devicePath := "/sdcard/recording_" + id + ".mp4"
	args := []string{"shell", "screenrecord",
		"--time-limit", strconv.Itoa(int(limit / time.Second))}
	if r.cfg.BitRate > 0 {
		args = append(args, "--bit-rate", strconv.Itoa(r.cfg.BitRate))
	}
	if r.cfg.Size != "" {
		args = append(args, "--size", r.cfg.Size)
	}
	args = append(args, devicePath)

	p, err := r.mgr.Start(ctx, args...)
	if err != nil {
		return err
	}

	dir := r.cfg.Dir
	if dir == "" {
		dir = "."
	}
	r.mu.Lock()
	r.process = p
	r.devicePath = devicePath
	r.artifact = filepath.Join(dir, "recording_"+id+".mp4")
	r.mu.Unlock()
	return nil
}

// Wait blocks until screenrecord exits, normally when its time limit
// elapses or a stop is delivered.
func (r *Recording) Wait() error { return r.process.Wait() }

// Stop asks screenrecord to finish. The interrupt goes to the remote
// process directly; signalling only the local adb client would leave
// the device-side recorder running with an unfinalized file.
func (r *Recording) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := r.mgr.Shell(ctx, 10*time.Second, "pkill", "-l2", "screenrecord"); err != nil {
		return err
	}
	return r.process.Stop()
}

// Kill force-terminates both sides of the recording.
func (r *Recording) Kill() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	r.mgr.Shell(ctx, 10*time.Second, "pkill", "-9", "screenrecord")
	return r.process.Kill()
}

// Finalize pulls the video off the device and removes the device-side
// copy. A failed pull is recorded on the result rather than silently
// dropped.
func (r *Recording) Finalize(ctx context.Context, res *session.Result) {
	r.mu.Lock()
	devicePath, artifact := r.devicePath, r.artifact
	r.mu.Unlock()
	if devicePath == "" {
		return
	}

	// The container index is written as the recorder exits; pulling
	// immediately can capture a truncated file.
	time.Sleep(500 * time.Millisecond)

	if dir := filepath.Dir(artifact); dir != "." {
		os.MkdirAll(dir, 0o755)
	}
	pull, err := r.mgr.Pull(ctx, devicePath, artifact)
	switch {
	case err != nil:
		res.Error = joinErr(res.Error, fmt.Sprintf("pull recording: %v", err))
	case !pull.OK:
		res.Error = joinErr(res.Error, fmt.Sprintf("pull recording: %s", strings.TrimSpace(pull.Stderr)))
	default:
		res.Artifact = artifact
	}
	r.mgr.RemoveFile(ctx, devicePath)
}

// Progress reports the eventual artifact path for session listings.
func (r *Recording) Progress() session.Progress {
	r.mu.Lock()
	defer r.mu.Unlock()
	return session.Progress{Artifact: r.artifact}
}

func joinErr(existing, msg string) string {
	if existing == "" {
		return msg
	}
	return existing + "; " + msg
}
