package adb

import (
	"context"
	"strings"
	"testing"
	"time"
)

// fakeRunner returns canned results keyed by the joined argument list.
// Unmatched commands succeed with empty output.
type fakeRunner struct {
	responses map[string]Result
	calls     []string
}

func (f *fakeRunner) Run(ctx context.Context, timeout time.Duration, args ...string) (Result, error) {
	key := strings.Join(args, " ")
	f.calls = append(f.calls, key)
	if res, ok := f.responses[key]; ok {
		return res, nil
	}
	return Result{OK: true}, nil
}

func (f *fakeRunner) Start(args ...string) (Process, error) {
	f.calls = append(f.calls, strings.Join(args, " "))
	return nil, nil
}

func newFake(responses map[string]Result) *fakeRunner {
	return &fakeRunner{responses: responses}
}

const deviceListOutput = `List of devices attached
R5CT11XXXX             device usb:1-1 product:a54 model:SM_A546B device:a54x transport_id:1
emulator-5554          device product:sdk_gphone64_x86_64 model:sdk_gphone64_x86_64 transport_id:2
192.168.1.20:5555      offline transport_id:3
`

func TestParseDeviceList(t *testing.T) {
	devices := parseDeviceList(deviceListOutput)
	if len(devices) != 3 {
		t.Fatalf("devices: got %d, want 3", len(devices))
	}
	if devices[0].Serial != "R5CT11XXXX" || devices[0].Status != "device" {
		t.Errorf("first device: %+v", devices[0])
	}
	if devices[0].Props["model"] != "SM_A546B" {
		t.Errorf("props: %+v", devices[0].Props)
	}
	if !devices[1].Emulator() {
		t.Error("emulator-5554 should be detected as emulator")
	}
	if devices[2].Status != "offline" {
		t.Errorf("third device status: %q", devices[2].Status)
	}
}

func TestParseDeviceList_Empty(t *testing.T) {
	if devices := parseDeviceList("List of devices attached\n\n"); len(devices) != 0 {
		t.Errorf("got %d devices, want 0", len(devices))
	}
}

func TestAutoSelect_PrefersPhysical(t *testing.T) {
	fake := newFake(map[string]Result{
		"devices -l": {OK: true, Stdout: deviceListOutput},
	})
	mgr := NewManager(fake, "")
	dev, err := mgr.AutoSelect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if dev.Serial != "R5CT11XXXX" {
		t.Errorf("selected %q, want the physical device", dev.Serial)
	}
	if mgr.Serial() != "R5CT11XXXX" {
		t.Errorf("selection should stick: %q", mgr.Serial())
	}
}

func TestAutoSelect_KeepsPrevious(t *testing.T) {
	fake := newFake(map[string]Result{
		"devices -l": {OK: true, Stdout: deviceListOutput},
	})
	mgr := NewManager(fake, "emulator-5554")
	dev, err := mgr.AutoSelect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if dev.Serial != "emulator-5554" {
		t.Errorf("previous selection should win: got %q", dev.Serial)
	}
}

func TestAutoSelect_EmulatorFallback(t *testing.T) {
	fake := newFake(map[string]Result{
		"devices -l": {OK: true, Stdout: "List of devices attached\nemulator-5554 device\n"},
	})
	mgr := NewManager(fake, "")
	dev, err := mgr.AutoSelect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if dev.Serial != "emulator-5554" {
		t.Errorf("got %q", dev.Serial)
	}
}

func TestAutoSelect_NoDevices(t *testing.T) {
	fake := newFake(map[string]Result{
		"devices -l": {OK: true, Stdout: "List of devices attached\n"},
	})
	if _, err := NewManager(fake, "").AutoSelect(context.Background()); err == nil {
		t.Fatal("want error when no devices are connected")
	}
}

func TestRun_PrependsSerial(t *testing.T) {
	fake := newFake(map[string]Result{
		"devices -l": {OK: true, Stdout: "List of devices attached\nabc123 device\n"},
	})
	mgr := NewManager(fake, "")
	if _, err := mgr.Shell(context.Background(), 0, "input", "tap", "1", "2"); err != nil {
		t.Fatal(err)
	}
	last := fake.calls[len(fake.calls)-1]
	if last != "-s abc123 shell input tap 1 2" {
		t.Errorf("got %q", last)
	}
}

func TestParseProps(t *testing.T) {
	out := `[ro.product.model]: [Pixel 7]
[ro.product.manufacturer]: [Google]
[ro.build.version.release]: [14]
[ro.build.version.sdk]: [34]
garbage line
[unterminated]: [value`
	props := parseProps(out)
	if props["ro.product.model"] != "Pixel 7" {
		t.Errorf("model: %q", props["ro.product.model"])
	}
	if props["ro.build.version.sdk"] != "34" {
		t.Errorf("sdk: %q", props["ro.build.version.sdk"])
	}
}

func TestParseScreenSize(t *testing.T) {
	tests := []struct {
		name string
		out  string
		want Size
		err  bool
	}{
		{"physical", "Physical size: 1080x2340\n", Size{1080, 2340}, false},
		{"override wins", "Physical size: 1080x2340\nOverride size: 720x1560\n", Size{720, 1560}, false},
		{"garbage", "no size here\n", Size{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseScreenSize(tt.out)
			if tt.err {
				if err == nil {
					t.Fatal("want error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}
