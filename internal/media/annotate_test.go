package media

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/droidcli/droidcli/internal/ui"
)

func writeTestPNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestAnnotate(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "shot.png")
	dst := filepath.Join(dir, "shot_annotated.png")
	writeTestPNG(t, src, 200, 100)

	elements := []ui.Element{
		{Bounds: ui.Bounds{Left: 20, Top: 20, Right: 120, Bottom: 80}},
	}
	if err := Annotate(src, dst, elements); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(dst)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}

	// The box edge should be drawn in the annotation color.
	r, g, b, _ := img.At(20, 20).RGBA()
	if r>>8 != 0xE5 || g>>8 != 0x39 || b>>8 != 0x35 {
		t.Errorf("box edge pixel not annotated: got %d,%d,%d", r>>8, g>>8, b>>8)
	}

	// The box interior stays untouched.
	r, g, b, _ = img.At(70, 50).RGBA()
	if r>>8 != 0xFF || g>>8 != 0xFF || b>>8 != 0xFF {
		t.Errorf("interior pixel should stay white: got %d,%d,%d", r>>8, g>>8, b>>8)
	}
}

func TestAnnotate_OutOfBoundsElement(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "shot.png")
	dst := filepath.Join(dir, "out.png")
	writeTestPNG(t, src, 50, 50)

	// A box partially off-screen must not panic.
	elements := []ui.Element{
		{Bounds: ui.Bounds{Left: -10, Top: -10, Right: 200, Bottom: 200}},
		{Bounds: ui.Bounds{Left: 300, Top: 300, Right: 400, Bottom: 400}},
	}
	if err := Annotate(src, dst, elements); err != nil {
		t.Fatal(err)
	}
}

func TestAnnotate_MissingSource(t *testing.T) {
	if err := Annotate("/nonexistent/shot.png", "/tmp/out.png", nil); err == nil {
		t.Error("missing source should error")
	}
}
