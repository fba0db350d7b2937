package logcat

import "testing"

func TestParseLine(t *testing.T) {
	e := ParseLine("03-15 14:23:45.678  1234  5678 E ActivityManager: ANR in com.example.app")
	if e.Unparsed {
		t.Fatal("line should parse")
	}
	if e.Timestamp != "03-15 14:23:45.678" {
		t.Errorf("timestamp: %q", e.Timestamp)
	}
	if e.PID != 1234 || e.TID != 5678 {
		t.Errorf("pid/tid: %d/%d", e.PID, e.TID)
	}
	if e.Priority != PriorityError {
		t.Errorf("priority: %q", e.Priority)
	}
	if e.Tag != "ActivityManager" {
		t.Errorf("tag: %q", e.Tag)
	}
	if e.Message != "ANR in com.example.app" {
		t.Errorf("message: %q", e.Message)
	}
}

func TestParseLine_EmptyMessage(t *testing.T) {
	e := ParseLine("03-15 14:23:45.678  1234  5678 D MyTag: ")
	if e.Unparsed {
		t.Fatal("line should parse")
	}
	if e.Tag != "MyTag" || e.Message != "" {
		t.Errorf("got tag=%q message=%q", e.Tag, e.Message)
	}
}

func TestParseLine_Unparsed(t *testing.T) {
	lines := []string{
		"some kernel spew without structure",
		"partial w",
		"",
	}
	for _, line := range lines {
		e := ParseLine(line)
		if !e.Unparsed {
			t.Errorf("%q should be unparsed", line)
		}
		if e.Message != line {
			t.Errorf("unparsed line should be preserved: %q", e.Message)
		}
	}
}

func TestParseLine_EachLineIndependent(t *testing.T) {
	// A multi-line stack trace arrives as separate lines; continuation
	// lines still carry the threadtime prefix and parse on their own.
	first := ParseLine("03-15 14:23:45.678  1234  5678 E AndroidRuntime: FATAL EXCEPTION: main")
	second := ParseLine("03-15 14:23:45.679  1234  5678 E AndroidRuntime: java.lang.NullPointerException")
	if first.Unparsed || second.Unparsed {
		t.Fatal("both lines should parse")
	}
	if first.Tag != second.Tag {
		t.Errorf("tags differ: %q vs %q", first.Tag, second.Tag)
	}
}

func TestSeparator(t *testing.T) {
	if !separator("--------- beginning of main") {
		t.Error("buffer banner should be a separator")
	}
	if separator("03-15 14:23:45.678  1234  5678 I Tag: msg") {
		t.Error("log line is not a separator")
	}
}

func TestAtLeast(t *testing.T) {
	tests := []struct {
		p, min string
		want   bool
	}{
		{"E", "W", true},
		{"W", "W", true},
		{"I", "W", false},
		{"V", "V", true},
		{"?", "V", false},
		{"E", "?", false},
	}
	for _, tt := range tests {
		if got := AtLeast(tt.p, tt.min); got != tt.want {
			t.Errorf("AtLeast(%q, %q) = %v, want %v", tt.p, tt.min, got, tt.want)
		}
	}
}
