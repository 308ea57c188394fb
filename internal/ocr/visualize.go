package ocr

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/anime-shed/sharpness-inspector-go/internal/imagebuf"
)

var (
	colorHigh   = color.RGBA{0, 255, 0, 255}
	colorMedium = color.RGBA{255, 255, 0, 255}
	colorLow    = color.RGBA{255, 0, 0, 255}
	colorWhite  = color.RGBA{255, 255, 255, 255}
)

// confidenceColor maps a word confidence to green (>=80), yellow (>=60) or red
func confidenceColor(conf float64) color.RGBA {
	switch {
	case conf >= 80:
		return colorHigh
	case conf >= 60:
		return colorMedium
	default:
		return colorLow
	}
}

// Visualize draws the attempt's word boxes over the original image. When no
// text was found the black-text extraction is shown instead.
func Visualize(img image.Image, attempt Attempt) (*image.NRGBA, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("cannot visualize an empty image")
	}

	if !attempt.TextFound {
		canvas := imaging.Clone(ExtractBlackText(img))
		drawLabel(canvas, image.Pt(50, 50), "No black text detected", colorLow)
		return canvas, nil
	}

	canvas := imaging.Clone(img)
	for _, w := range attempt.Words {
		c := confidenceColor(w.Confidence)
		strokeRect(canvas, w.Box, 2, c)
		drawLabel(canvas, image.Pt(w.Box.Min.X, w.Box.Min.Y-10), fmt.Sprintf("%d%%", int(w.Confidence)), c)
	}
	drawLabel(canvas, image.Pt(10, 30), "Black Text Detection", colorWhite)
	drawLabel(canvas, image.Pt(10, 60), "Green ID Card Background", colorWhite)
	return canvas, nil
}

func encode(img image.Image, quality int) ([]byte, error) {
	if quality <= 0 {
		quality = imagebuf.DefaultJPEGQuality
	}
	return imagebuf.EncodeJPEG(img, quality)
}

// strokeRect outlines r with the given line thickness, clipped to dst
func strokeRect(dst draw.Image, r image.Rectangle, thickness int, c color.Color) {
	src := image.NewUniform(c)
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+thickness),
		image.Rect(r.Min.X, r.Max.Y-thickness, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+thickness, r.Max.Y),
		image.Rect(r.Max.X-thickness, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(dst, e.Intersect(dst.Bounds()), src, image.Point{}, draw.Src)
	}
}

// drawLabel writes text with its baseline at pt
func drawLabel(dst draw.Image, pt image.Point, text string, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(pt.X, pt.Y),
	}
	d.DrawString(text)
}
