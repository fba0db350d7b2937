package media

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/droidcli/droidcli/internal/ui"
)

var annotateColor = color.RGBA{R: 0xE5, G: 0x39, B: 0x35, A: 0xFF}

// Annotate draws a numbered box around each element onto the
// screenshot at srcPath and writes the result to dstPath. Numbers are
// 1-based in slice order, matching how match lists are presented.
func Annotate(srcPath, dstPath string, elements []ui.Element) error {
	f, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open screenshot: %w", err)
	}
	src, err := png.Decode(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("decode screenshot: %w", err)
	}

	img := image.NewRGBA(src.Bounds())
	draw.Draw(img, img.Bounds(), src, src.Bounds().Min, draw.Src)

	for i, el := range elements {
		drawBox(img, el.Bounds)
		drawLabel(img, el.Bounds, fmt.Sprintf("%d", i+1))
	}

	out, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("create annotated screenshot: %w", err)
	}
	if err := png.Encode(out, img); err != nil {
		out.Close()
		return fmt.Errorf("encode annotated screenshot: %w", err)
	}
	return out.Close()
}

const boxThickness = 3

func drawBox(img *image.RGBA, b ui.Bounds) {
	r := image.Rect(b.Left, b.Top, b.Right, b.Bottom).Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	for t := 0; t < boxThickness; t++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			setPixel(img, x, r.Min.Y+t)
			setPixel(img, x, r.Max.Y-1-t)
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			setPixel(img, r.Min.X+t, y)
			setPixel(img, r.Max.X-1-t, y)
		}
	}
}

func setPixel(img *image.RGBA, x, y int) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetRGBA(x, y, annotateColor)
	}
}

func drawLabel(img *image.RGBA, b ui.Bounds, text string) {
	face := basicfont.Face7x13
	// Sit the label just above the box, or inside it when the box
	// touches the top edge.
	x := b.Left + boxThickness
	y := b.Top - 4
	if y-face.Ascent < img.Bounds().Min.Y {
		y = b.Top + face.Ascent + boxThickness + 1
	}
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(annotateColor),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
