package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/droidcli/droidcli/internal/adb"
	"github.com/droidcli/droidcli/internal/logging"
)

// dumpPath is where uiautomator writes the hierarchy on the device.
const dumpPath = "/sdcard/window_dump.xml"

// Inspector captures fresh UI snapshots from a device. Every call runs
// a new uiautomator dump; snapshots are never reused across calls.
type Inspector struct {
	mgr *adb.Manager

	// DumpTimeout bounds the uiautomator dump command. Heavy apps can
	// take tens of seconds; the default matches adb.DefaultTimeout.
	DumpTimeout time.Duration
	// Retries is how many times a failed dump or pull is retried.
	Retries int
}

// NewInspector returns an Inspector with default retry behavior.
func NewInspector(mgr *adb.Manager) *Inspector {
	return &Inspector{mgr: mgr, DumpTimeout: adb.DefaultTimeout, Retries: 3}
}

// Snapshot runs uiautomator dump, reads the dump file back, and parses
// it. Retries alternate between plain and --compressed dumps, which
// works around apps whose trees only dump in one mode.
func (i *Inspector) Snapshot(ctx context.Context, opts ParseOptions) (*Snapshot, error) {
	attempts := i.Retries
	if attempts < 1 {
		attempts = 1
	}

	compressed := false
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			compressed = !compressed
			time.Sleep(500 * time.Millisecond)
		}

		raw, err := i.dump(ctx, compressed)
		if err != nil {
			lastErr = err
			logging.Debugf("ui dump attempt %d failed: %v", attempt+1, err)
			continue
		}

		snap, err := Parse(raw, opts)
		if err != nil {
			lastErr = err
			logging.Debugf("ui parse attempt %d failed: %v", attempt+1, err)
			continue
		}

		// Screen size is advisory; a failed query leaves it zero.
		if size, err := i.mgr.ScreenSize(ctx); err == nil {
			snap.ScreenSize = size
		}
		return snap, nil
	}
	return nil, fmt.Errorf("ui snapshot failed after %d attempt(s): %w", attempts, lastErr)
}

// dump runs the dump command and reads the resulting file.
func (i *Inspector) dump(ctx context.Context, compressed bool) (string, error) {
	args := []string{"uiautomator", "dump"}
	if compressed {
		args = append(args, "--compressed")
	}
	args = append(args, dumpPath)

	res, err := i.mgr.Shell(ctx, i.DumpTimeout, args...)
	if err != nil {
		return "", err
	}
	if !res.OK {
		return "", fmt.Errorf("uiautomator dump failed: %s", dumpFailureHint(res.Stderr))
	}

	content, err := i.mgr.ReadFile(ctx, dumpPath, i.DumpTimeout)
	if err != nil {
		return "", err
	}
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "<") {
		return "", fmt.Errorf("dump file content is not XML: %.60q", content)
	}
	return content, nil
}

// dumpFailureHint maps known uiautomator failure modes to actionable
// messages.
func dumpFailureHint(stderr string) string {
	lower := strings.ToLower(stderr)
	switch {
	case strings.Contains(lower, "not found"):
		return "uiautomator service not available; enable developer options and USB debugging"
	case strings.Contains(lower, "permission denied"):
		return "permission denied; check adb permissions and USB debugging authorization"
	case strings.Contains(lower, "device offline"):
		return "device offline; reconnect the device"
	default:
		return strings.TrimSpace(stderr)
	}
}
