package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".droidcli.yaml")
	content := `device: emulator-5554
adb_path: /opt/sdk/adb
media_dir: /tmp/media
log_buffer_size: 500
stop_grace: 3s
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Device != "emulator-5554" {
		t.Errorf("device: %q", cfg.Device)
	}
	if cfg.ADBPath != "/opt/sdk/adb" {
		t.Errorf("adb_path: %q", cfg.ADBPath)
	}
	if cfg.LogBufferSize != 500 {
		t.Errorf("log_buffer_size: %d", cfg.LogBufferSize)
	}
	if cfg.StopGrace.Std() != 3*time.Second {
		t.Errorf("stop_grace: %s", cfg.StopGrace.Std())
	}
}

func TestLoadFile_Missing(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg != (Config{}) {
		t.Errorf("missing file should yield zero config: %+v", cfg)
	}
}

func TestLoadFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("\tdevice: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("malformed yaml should error")
	}
}
