package ocr

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
)

// Pixels whose HSV value is at or below this level are treated as ink
const blackValueMax = 50

// Variant is one preprocessing pipeline fed to the OCR engine
type Variant struct {
	Name    string
	Prepare func(img image.Image) image.Image
}

// Variants returns the preprocessing pipelines in the order they are attempted
func Variants() []Variant {
	return []Variant{
		{Name: "black_text", Prepare: func(img image.Image) image.Image { return ExtractBlackText(img) }},
		{Name: "enhanced", Prepare: enhanceBlackText},
		{Name: "denoised", Prepare: denoiseBlackText},
		{Name: "sharpened", Prepare: sharpenBlackText},
	}
}

// ExtractBlackText keeps dark pixels as black ink on a white page. The mask is
// closed and then opened with a 2x2 structuring element to drop speckle.
func ExtractBlackText(img image.Image) *image.Gray {
	b := img.Bounds()
	value := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			value.Pix[y*value.Stride+x] = max(c.R, c.G, c.B)
		}
	}

	// White where the value is above the ink level
	page := segment.Threshold(value, blackValueMax+1)

	// Ink is black, so closing the ink mask erodes the page first
	closed := effect.Dilate(effect.Erode(page, 0.5), 0.5)
	opened := effect.Erode(effect.Dilate(closed, 0.5), 0.5)

	return segment.Threshold(opened, 128)
}

// enhanceBlackText binarises against a Gaussian-weighted local mean (block 11,
// offset 2) and inverts the result
func enhanceBlackText(img image.Image) image.Image {
	gray := ExtractBlackText(img)
	local := blur.Gaussian(gray, 5)

	b := gray.Bounds()
	out := image.NewGray(b)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			src := float64(gray.Pix[y*gray.Stride+x])
			mean := float64(local.Pix[y*local.Stride+x*4])
			if src > mean-2 {
				out.Pix[y*out.Stride+x] = 255
			}
		}
	}
	return effect.Invert(out)
}

func denoiseBlackText(img image.Image) image.Image {
	return effect.Median(ExtractBlackText(img), 1)
}

func sharpenBlackText(img image.Image) image.Image {
	// bild scales the blur radius by 5, so 0.2 gives a radius 1 mask
	return effect.UnsharpMask(ExtractBlackText(img), 0.2, 2.0)
}
