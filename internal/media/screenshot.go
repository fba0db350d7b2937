// Package media captures screenshots and screen recordings from a
// device and post-processes them locally.
package media

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/droidcli/droidcli/internal/adb"
)

// ScreenshotResult describes a captured screenshot.
type ScreenshotResult struct {
	Path   string `yaml:"path"             json:"path"`
	Width  int    `yaml:"width,omitempty"  json:"width,omitempty"`
	Height int    `yaml:"height,omitempty" json:"height,omitempty"`
	Bytes  int64  `yaml:"bytes"            json:"bytes"`
}

// Screenshot captures the screen with screencap, pulls the PNG to
// localPath, and removes the device-side copy. An empty localPath
// picks a timestamped name in the current directory.
func Screenshot(ctx context.Context, mgr *adb.Manager, localPath string) (ScreenshotResult, error) {
	if localPath == "" {
		localPath = fmt.Sprintf("screenshot_%s.png", time.Now().Format("20060102_150405"))
	}
	if dir := filepath.Dir(localPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return ScreenshotResult{}, fmt.Errorf("create screenshot dir: %w", err)
		}
	}

	devicePath := fmt.Sprintf("/sdcard/screenshot_%d.png", time.Now().UnixNano())
	res, err := mgr.Shell(ctx, adb.DefaultTimeout, "screencap", "-p", devicePath)
	if err != nil {
		return ScreenshotResult{}, err
	}
	if !res.OK {
		return ScreenshotResult{}, fmt.Errorf("screencap failed: %s", strings.TrimSpace(res.Stderr))
	}
	defer mgr.RemoveFile(context.WithoutCancel(ctx), devicePath)

	pull, err := mgr.Pull(ctx, devicePath, localPath)
	if err != nil {
		return ScreenshotResult{}, err
	}
	if !pull.OK {
		return ScreenshotResult{}, fmt.Errorf("pull screenshot: %s", strings.TrimSpace(pull.Stderr))
	}

	out := ScreenshotResult{Path: localPath}
	if st, err := os.Stat(localPath); err == nil {
		out.Bytes = st.Size()
	}
	if f, err := os.Open(localPath); err == nil {
		if cfg, err := png.DecodeConfig(f); err == nil {
			out.Width = cfg.Width
			out.Height = cfg.Height
		}
		f.Close()
	}
	return out, nil
}
