package adb

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// keycodes maps friendly key names to Android keycode constants.
// Numeric strings are passed through unchanged by PressKey.
var keycodes = map[string]string{
	"home":        "KEYCODE_HOME",
	"back":        "KEYCODE_BACK",
	"menu":        "KEYCODE_MENU",
	"enter":       "KEYCODE_ENTER",
	"tab":         "KEYCODE_TAB",
	"delete":      "KEYCODE_DEL",
	"escape":      "KEYCODE_ESCAPE",
	"space":       "KEYCODE_SPACE",
	"up":          "KEYCODE_DPAD_UP",
	"down":        "KEYCODE_DPAD_DOWN",
	"left":        "KEYCODE_DPAD_LEFT",
	"right":       "KEYCODE_DPAD_RIGHT",
	"power":       "KEYCODE_POWER",
	"volume-up":   "KEYCODE_VOLUME_UP",
	"volume-down": "KEYCODE_VOLUME_DOWN",
	"app-switch":  "KEYCODE_APP_SWITCH",
	"search":      "KEYCODE_SEARCH",
	"camera":      "KEYCODE_CAMERA",
}

// Tap injects a tap at the given screen coordinates.
func (m *Manager) Tap(ctx context.Context, x, y int) (Result, error) {
	return m.Shell(ctx, 10*time.Second, "input", "tap", strconv.Itoa(x), strconv.Itoa(y))
}

// LongPress injects a long press by swiping in place for the given
// duration.
func (m *Manager) LongPress(ctx context.Context, x, y int, duration time.Duration) (Result, error) {
	ms := strconv.Itoa(int(duration.Milliseconds()))
	sx, sy := strconv.Itoa(x), strconv.Itoa(y)
	return m.Shell(ctx, 10*time.Second, "input", "swipe", sx, sy, sx, sy, ms)
}

// Swipe injects a swipe gesture between two points.
func (m *Manager) Swipe(ctx context.Context, x1, y1, x2, y2 int, duration time.Duration) (Result, error) {
	return m.Shell(ctx, 10*time.Second, "input", "swipe",
		strconv.Itoa(x1), strconv.Itoa(y1),
		strconv.Itoa(x2), strconv.Itoa(y2),
		strconv.Itoa(int(duration.Milliseconds())))
}

// InputText types text into the focused field. The text is escaped for
// `input text`, which treats %s as a space and chokes on unquoted shell
// metacharacters.
func (m *Manager) InputText(ctx context.Context, text string) (Result, error) {
	return m.Shell(ctx, 15*time.Second, "input", "text", EscapeText(text))
}

// EscapeText converts text to the form `input text` expects.
func EscapeText(text string) string {
	var b strings.Builder
	for _, r := range text {
		switch r {
		case ' ':
			b.WriteString("%s")
		case '\'', '"', '`', '\\', '$', '&', '|', ';', '<', '>', '(', ')':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PressKey injects a key event. key may be a friendly name ("back"), a
// raw keycode constant ("KEYCODE_BACK"), or a numeric code.
func (m *Manager) PressKey(ctx context.Context, key string) (Result, error) {
	code, err := Keycode(key)
	if err != nil {
		return Result{}, err
	}
	return m.Shell(ctx, 10*time.Second, "input", "keyevent", code)
}

// Keycode resolves a key name to the keycode argument for `input keyevent`.
func Keycode(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("key is required")
	}
	if code, ok := keycodes[strings.ToLower(key)]; ok {
		return code, nil
	}
	if strings.HasPrefix(key, "KEYCODE_") {
		return key, nil
	}
	if _, err := strconv.Atoi(key); err == nil {
		return key, nil
	}
	return "", fmt.Errorf("unknown key %q (use a name like back/home/enter, a KEYCODE_ constant, or a numeric code)", key)
}
