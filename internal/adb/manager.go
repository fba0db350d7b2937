package adb

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Device is one entry from `adb devices -l`.
type Device struct {
	Serial string            `yaml:"serial"            json:"serial"`
	Status string            `yaml:"status"            json:"status"`
	Props  map[string]string `yaml:"props,omitempty"   json:"props,omitempty"`
}

// Emulator reports whether the device is an emulator instance.
func (d Device) Emulator() bool {
	return strings.HasPrefix(d.Serial, "emulator")
}

// DeviceInfo summarizes getprop output for a device.
type DeviceInfo struct {
	Serial         string `yaml:"serial"          json:"serial"`
	Model          string `yaml:"model"           json:"model"`
	Manufacturer   string `yaml:"manufacturer"    json:"manufacturer"`
	AndroidVersion string `yaml:"android_version" json:"android_version"`
	APILevel       string `yaml:"api_level"       json:"api_level"`
}

// Size is a screen dimension in pixels.
type Size struct {
	Width  int `yaml:"width"  json:"width"`
	Height int `yaml:"height" json:"height"`
}

// Manager targets adb commands at one selected device. Selection is
// sticky: once a serial is chosen it is reused until the device
// disappears from the device list.
type Manager struct {
	runner Runner

	mu     sync.Mutex
	serial string
}

// NewManager wraps a Runner. serial may be empty; the first device
// command then auto-selects one.
func NewManager(runner Runner, serial string) *Manager {
	return &Manager{runner: runner, serial: serial}
}

// Serial returns the currently selected device serial, if any.
func (m *Manager) Serial() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.serial
}

// SetSerial pins the selected device.
func (m *Manager) SetSerial(serial string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.serial = serial
}

// Devices lists connected devices.
func (m *Manager) Devices(ctx context.Context) ([]Device, error) {
	res, err := m.runner.Run(ctx, 10*time.Second, "devices", "-l")
	if err != nil {
		return nil, err
	}
	if !res.OK {
		return nil, fmt.Errorf("adb devices failed: %s", strings.TrimSpace(res.Stderr))
	}
	return parseDeviceList(res.Stdout), nil
}

func parseDeviceList(out string) []Device {
	var devices []Device
	lines := strings.Split(strings.TrimSpace(out), "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if i == 0 && strings.HasPrefix(line, "List of devices") {
			continue
		}
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		d := Device{Serial: fields[0], Status: fields[1]}
		for _, f := range fields[2:] {
			if k, v, ok := strings.Cut(f, ":"); ok {
				if d.Props == nil {
					d.Props = make(map[string]string)
				}
				d.Props[k] = v
			}
		}
		devices = append(devices, d)
	}
	return devices
}

// AutoSelect picks a device when none is pinned. Priority: the
// previously selected device if still connected, then the first
// physical device, then the first emulator.
func (m *Manager) AutoSelect(ctx context.Context) (Device, error) {
	devices, err := m.Devices(ctx)
	if err != nil {
		return Device{}, err
	}
	if len(devices) == 0 {
		return Device{}, fmt.Errorf("no Android devices connected")
	}

	m.mu.Lock()
	prev := m.serial
	m.mu.Unlock()

	if prev != "" {
		for _, d := range devices {
			if d.Serial == prev && d.Status == "device" {
				return d, nil
			}
		}
	}
	for _, d := range devices {
		if d.Status == "device" && !d.Emulator() {
			m.SetSerial(d.Serial)
			return d, nil
		}
	}
	for _, d := range devices {
		if d.Status == "device" && d.Emulator() {
			m.SetSerial(d.Serial)
			return d, nil
		}
	}
	return Device{}, fmt.Errorf("no devices in 'device' status (%d connected)", len(devices))
}

// ensureDevice resolves the target serial, auto-selecting if needed.
func (m *Manager) ensureDevice(ctx context.Context) (string, error) {
	m.mu.Lock()
	serial := m.serial
	m.mu.Unlock()
	if serial != "" {
		return serial, nil
	}
	d, err := m.AutoSelect(ctx)
	if err != nil {
		return "", err
	}
	return d.Serial, nil
}

// Run executes "adb -s <serial> args..." against the selected device.
func (m *Manager) Run(ctx context.Context, timeout time.Duration, args ...string) (Result, error) {
	serial, err := m.ensureDevice(ctx)
	if err != nil {
		return Result{}, err
	}
	full := append([]string{"-s", serial}, args...)
	return m.runner.Run(ctx, timeout, full...)
}

// Shell executes "adb -s <serial> shell args...".
func (m *Manager) Shell(ctx context.Context, timeout time.Duration, args ...string) (Result, error) {
	return m.Run(ctx, timeout, append([]string{"shell"}, args...)...)
}

// Start launches a long-lived adb process against the selected device.
func (m *Manager) Start(ctx context.Context, args ...string) (Process, error) {
	serial, err := m.ensureDevice(ctx)
	if err != nil {
		return nil, err
	}
	full := append([]string{"-s", serial}, args...)
	return m.runner.Start(full...)
}

// Info fetches device properties via getprop.
func (m *Manager) Info(ctx context.Context) (DeviceInfo, error) {
	serial, err := m.ensureDevice(ctx)
	if err != nil {
		return DeviceInfo{}, err
	}
	res, err := m.Shell(ctx, 0, "getprop")
	if err != nil {
		return DeviceInfo{}, err
	}
	if !res.OK {
		return DeviceInfo{}, fmt.Errorf("getprop failed: %s", strings.TrimSpace(res.Stderr))
	}
	props := parseProps(res.Stdout)
	return DeviceInfo{
		Serial:         serial,
		Model:          props["ro.product.model"],
		Manufacturer:   props["ro.product.manufacturer"],
		AndroidVersion: props["ro.build.version.release"],
		APILevel:       props["ro.build.version.sdk"],
	}, nil
}

// parseProps parses getprop's "[key]: [value]" lines.
func parseProps(out string) map[string]string {
	props := make(map[string]string)
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "[") {
			continue
		}
		key, rest, ok := strings.Cut(line[1:], "]: [")
		if !ok {
			continue
		}
		value := strings.TrimSuffix(rest, "]")
		props[key] = value
	}
	return props
}

// ScreenSize queries the device screen dimensions via `wm size`.
func (m *Manager) ScreenSize(ctx context.Context) (Size, error) {
	res, err := m.Shell(ctx, 10*time.Second, "wm", "size")
	if err != nil {
		return Size{}, err
	}
	if !res.OK {
		return Size{}, fmt.Errorf("wm size failed: %s", strings.TrimSpace(res.Stderr))
	}
	return parseScreenSize(res.Stdout)
}

// parseScreenSize parses "Physical size: 1080x2340". When an override
// is present it wins, matching what the device actually renders.
func parseScreenSize(out string) (Size, error) {
	var size Size
	var found bool
	for _, line := range strings.Split(out, "\n") {
		_, rest, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		w, h, ok := strings.Cut(strings.TrimSpace(rest), "x")
		if !ok {
			continue
		}
		wi, errW := strconv.Atoi(strings.TrimSpace(w))
		hi, errH := strconv.Atoi(strings.TrimSpace(h))
		if errW != nil || errH != nil {
			continue
		}
		size = Size{Width: wi, Height: hi}
		found = true
	}
	if !found {
		return Size{}, fmt.Errorf("could not parse screen size from %q", strings.TrimSpace(out))
	}
	return size, nil
}

var focusPattern = regexp.MustCompile(`([a-zA-Z0-9_.]+)/([a-zA-Z0-9_.$]+)`)

// ForegroundApp detects the package and activity currently in the
// foreground, trying several dumpsys sources.
func (m *Manager) ForegroundApp(ctx context.Context) (pkg, activity string, err error) {
	sources := [][]string{
		{"dumpsys", "window"},
		{"dumpsys", "activity", "activities"},
	}
	for _, src := range sources {
		res, runErr := m.Shell(ctx, 10*time.Second, src...)
		if runErr != nil {
			return "", "", runErr
		}
		if !res.OK {
			continue
		}
		for _, line := range strings.Split(res.Stdout, "\n") {
			if !strings.Contains(line, "mCurrentFocus") &&
				!strings.Contains(line, "mFocusedApp") &&
				!strings.Contains(line, "mResumedActivity") {
				continue
			}
			if match := focusPattern.FindStringSubmatch(line); match != nil {
				return match[1], match[2], nil
			}
		}
	}
	return "", "", fmt.Errorf("unable to detect foreground app")
}

// Pull copies a file from the device to the local path.
func (m *Manager) Pull(ctx context.Context, devicePath, localPath string) (Result, error) {
	return m.Run(ctx, 60*time.Second, "pull", devicePath, localPath)
}

// RemoveFile deletes a file on the device. Best-effort cleanup; the
// result is returned for callers that care.
func (m *Manager) RemoveFile(ctx context.Context, devicePath string) (Result, error) {
	return m.Shell(ctx, 10*time.Second, "rm", "-f", devicePath)
}

// ReadFile reads a device file's content via `shell cat`.
func (m *Manager) ReadFile(ctx context.Context, devicePath string, timeout time.Duration) (string, error) {
	res, err := m.Shell(ctx, timeout, "cat", devicePath)
	if err != nil {
		return "", err
	}
	if !res.OK {
		return "", fmt.Errorf("cat %s failed: %s", devicePath, strings.TrimSpace(res.Stderr))
	}
	return res.Stdout, nil
}
