// Package imagebuf holds the immutable single-channel intensity buffer that every
// blur estimator reads from.
package imagebuf

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// CanonicalSize is the longest side, in pixels, used by the classified workflow.
const CanonicalSize = 1024

var (
	// ErrDecode indicates the input bytes are not a supported image
	ErrDecode = errors.New("image could not be decoded")

	// ErrEmptyImage indicates a decoded image without pixels
	ErrEmptyImage = errors.New("image has zero width or height")
)

// DecodeError wraps the decoder failure
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%v: %v", ErrDecode, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// EmptyImageError reports the offending dimensions
type EmptyImageError struct {
	Width, Height int
}

func (e *EmptyImageError) Error() string {
	return fmt.Sprintf("%v (%dx%d)", ErrEmptyImage, e.Width, e.Height)
}

func (e *EmptyImageError) Is(target error) bool { return target == ErrEmptyImage }

// Buffer is a grayscale intensity grid, row-major, one byte per pixel.
// It is never mutated after construction and may be shared across goroutines.
type Buffer struct {
	Width  int
	Height int
	Pix    []uint8
}

// Decode turns encoded image bytes into a Buffer. EXIF orientation is applied
// before the grayscale conversion.
func Decode(data []byte) (*Buffer, error) {
	img, err := DecodeImage(data)
	if err != nil {
		return nil, err
	}
	return FromImage(img)
}

// DecodeImage decodes to a colour image with EXIF orientation applied. It
// fails with the same errors as Decode.
func DecodeImage(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, &DecodeError{Err: errors.New("empty input")}
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, &EmptyImageError{Width: b.Dx(), Height: b.Dy()}
	}
	return img, nil
}

// FromImage converts an already decoded image using the standard luminance
// weights. Colour channels are read without alpha premultiplication, so a
// transparent pixel keeps the intensity of its stored colour.
func FromImage(img image.Image) (*Buffer, error) {
	if img == nil {
		return nil, &DecodeError{Err: errors.New("nil image")}
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, &EmptyImageError{Width: width, Height: height}
	}

	pix := make([]uint8, width*height)
	if g, ok := img.(*image.Gray); ok {
		for y := 0; y < height; y++ {
			start := g.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(pix[y*width:(y+1)*width], g.Pix[start:start+width])
		}
		return &Buffer{Width: width, Height: height, Pix: pix}, nil
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b := straightRGB(img.At(bounds.Min.X+x, bounds.Min.Y+y))
			// same weights and rounding as color.GrayModel
			pix[y*width+x] = uint8((19595*r + 38470*g + 7471*b + 1<<15) >> 24)
		}
	}

	return &Buffer{Width: width, Height: height, Pix: pix}, nil
}

// straightRGB returns 16-bit colour channels with alpha divided out.
func straightRGB(c color.Color) (r, g, b uint32) {
	switch v := c.(type) {
	case color.NRGBA:
		return uint32(v.R) * 0x101, uint32(v.G) * 0x101, uint32(v.B) * 0x101
	case color.NRGBA64:
		return uint32(v.R), uint32(v.G), uint32(v.B)
	}

	r, g, b, a := c.RGBA()
	switch a {
	case 0xffff:
		return r, g, b
	case 0:
		return 0, 0, 0
	}
	return r * 0xffff / a, g * 0xffff / a, b * 0xffff / a
}

// New wraps raw intensities. The slice is owned by the Buffer afterwards.
func New(width, height int, pix []uint8) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, &EmptyImageError{Width: width, Height: height}
	}
	if len(pix) != width*height {
		return nil, fmt.Errorf("pixel count %d does not match %dx%d", len(pix), width, height)
	}
	return &Buffer{Width: width, Height: height, Pix: pix}, nil
}

// At returns the intensity at column x, row y.
func (b *Buffer) At(x, y int) uint8 {
	return b.Pix[y*b.Width+x]
}

// Gray exposes the buffer as an *image.Gray sharing the same pixels.
// Callers must treat the result as read-only.
func (b *Buffer) Gray() *image.Gray {
	return &image.Gray{
		Pix:    b.Pix,
		Stride: b.Width,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// ResizeLongest scales the buffer so that its longer side equals n, keeping
// the aspect ratio. Both upscaling and downscaling are applied.
func (b *Buffer) ResizeLongest(n int) *Buffer {
	if n <= 0 {
		return b
	}

	longest := b.Width
	if b.Height > longest {
		longest = b.Height
	}
	if longest == n {
		return b
	}

	scale := float64(n) / float64(longest)
	width := scaledSide(b.Width, scale)
	height := scaledSide(b.Height, scale)

	dst := image.NewGray(image.Rect(0, 0, width, height))
	src := b.Gray()
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)

	return &Buffer{Width: width, Height: height, Pix: dst.Pix}
}

func scaledSide(side int, scale float64) int {
	v := int(math.Round(float64(side) * scale))
	if v < 1 {
		return 1
	}
	return v
}
