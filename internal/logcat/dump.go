package logcat

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/droidcli/droidcli/internal/adb"
)

// DumpOptions shapes a one-shot logcat read.
type DumpOptions struct {
	// Tag restricts the dump to one tag; empty means all tags.
	Tag string

	// MinPriority is the lowest priority to include. Defaults to V.
	MinPriority string

	// Lines caps the dump to the most recent N lines. Zero dumps the
	// whole buffer.
	Lines int

	// Since starts the dump at a device timestamp
	// ("MM-DD HH:MM:SS.mmm"). Empty dumps from the buffer start.
	Since string

	// Clear empties the device buffer after the dump, so the next
	// dump starts fresh.
	Clear bool
}

// Dump reads the device log buffer once and returns the parsed
// entries. Buffer separator banners are dropped.
func Dump(ctx context.Context, mgr *adb.Manager, opts DumpOptions) ([]Entry, error) {
	if opts.MinPriority != "" && !ValidPriority(opts.MinPriority) {
		return nil, fmt.Errorf("unknown log priority %q", opts.MinPriority)
	}

	args := []string{"logcat", "-d", "-v", "threadtime"}
	if opts.Lines > 0 {
		args = append(args, "-t", strconv.Itoa(opts.Lines))
	}
	if opts.Since != "" {
		args = append(args, "-T", opts.Since)
	}
	cfg := MonitorConfig{Tag: opts.Tag, MinPriority: opts.MinPriority}
	args = append(args, cfg.filterspec()...)

	res, err := mgr.Shell(ctx, adb.DefaultTimeout, args...)
	if err != nil {
		return nil, err
	}
	if !res.OK {
		return nil, fmt.Errorf("logcat dump failed: %s", strings.TrimSpace(res.Stderr))
	}

	var entries []Entry
	for _, line := range strings.Split(res.Stdout, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || separator(line) {
			continue
		}
		entries = append(entries, ParseLine(line))
	}

	if opts.Clear {
		if _, err := mgr.Shell(ctx, adb.DefaultTimeout, "logcat", "-c"); err != nil {
			return entries, err
		}
	}
	return entries, nil
}

// Search dumps the log buffer and returns entries whose message or
// tag contains query, case-insensitively.
func Search(ctx context.Context, mgr *adb.Manager, query string, opts DumpOptions) ([]Entry, error) {
	entries, err := Dump(ctx, mgr, opts)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	var out []Entry
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Message), q) ||
			strings.Contains(strings.ToLower(e.Tag), q) {
			out = append(out, e)
		}
	}
	return out, nil
}
