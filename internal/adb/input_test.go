package adb

import "testing"

func TestEscapeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"hello", "hello"},
		{"hello world", "hello%sworld"},
		{"a b c", "a%sb%sc"},
		{`it's`, `it\'s`},
		{`say "hi"`, `say%s\"hi\"`},
		{"a&b|c", `a\&b\|c`},
		{"price: $5 (sale)", `price:%s\$5%s\(sale\)`},
		{"", ""},
	}
	for _, tt := range tests {
		if got := EscapeText(tt.in); got != tt.want {
			t.Errorf("EscapeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestKeycode(t *testing.T) {
	tests := []struct {
		in   string
		want string
		err  bool
	}{
		{"back", "KEYCODE_BACK", false},
		{"BACK", "KEYCODE_BACK", false},
		{"volume-up", "KEYCODE_VOLUME_UP", false},
		{"KEYCODE_CUSTOM", "KEYCODE_CUSTOM", false},
		{"66", "66", false},
		{"", "", true},
		{"not-a-key", "", true},
	}
	for _, tt := range tests {
		got, err := Keycode(tt.in)
		if tt.err {
			if err == nil {
				t.Errorf("Keycode(%q): want error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("Keycode(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Keycode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
