package imagebuf

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
)

// DefaultJPEGQuality matches the quality used for every rendered visualization.
const DefaultJPEGQuality = 90

// EncodeJPEG encodes img as JPEG. Quality outside 1..100 falls back to the default.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	if quality < 1 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
