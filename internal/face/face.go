// Package face reports whether people appear in an image.
package face

import (
	"context"
	"fmt"
	"image"
	"math"
)

// Detection is the raw output of a Detector
type Detection struct {
	Faces         []image.Rectangle
	Width         int
	Height        int
	Visualization []byte
}

// Detector finds faces in encoded image bytes and returns an annotated JPEG
type Detector interface {
	Detect(ctx context.Context, data []byte) (*Detection, error)
}

// Report is the human detection workflow result
type Report struct {
	HumanDetected   bool
	Confidence      float64
	FaceCount       int
	TotalDetections int
	Visualization   []byte
	Details         string
}

// NewReport scores a detection
func NewReport(d *Detection) *Report {
	conf := Confidence(d.Faces, d.Width, d.Height)
	return &Report{
		HumanDetected:   len(d.Faces) > 0,
		Confidence:      conf,
		FaceCount:       len(d.Faces),
		TotalDetections: len(d.Faces),
		Visualization:   d.Visualization,
		Details:         Details(len(d.Faces), conf),
	}
}

// Confidence sums each face's share of the frame as a percentage, each term
// and the total capped at 100
func Confidence(faces []image.Rectangle, width, height int) float64 {
	total := float64(width * height)
	if total <= 0 {
		return 0
	}
	var conf float64
	for _, f := range faces {
		ratio := float64(f.Dx()*f.Dy()) / total
		conf += math.Min(100, ratio*100)
	}
	return math.Min(100, conf)
}

func Details(faceCount int, confidence float64) string {
	if faceCount > 0 {
		return fmt.Sprintf("Detected %d face(s). Human presence confirmed (%.1f%%).", faceCount, confidence)
	}
	return fmt.Sprintf("No human features detected in the image (%.1f%% confidence).", confidence)
}
