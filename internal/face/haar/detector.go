// Package haar implements face.Detector with an OpenCV Haar cascade.
package haar

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"github.com/anime-shed/sharpness-inspector-go/internal/face"
	"github.com/anime-shed/sharpness-inspector-go/internal/logger"
)

const (
	scaleFactor  = 1.1
	minNeighbors = 5
	minFaceSize  = 20
)

var green = color.RGBA{R: 0, G: 255, B: 0, A: 0}

// Detector holds one loaded cascade. OpenCV classifiers are not safe for
// concurrent use, so detection is serialised.
type Detector struct {
	mu      sync.Mutex
	cascade gocv.CascadeClassifier
}

// NewDetector loads the cascade XML at path
func NewDetector(path string) (*Detector, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("cascade file not found: %s", path)
	}

	cascade := gocv.NewCascadeClassifier()
	if !cascade.Load(path) {
		cascade.Close()
		return nil, fmt.Errorf("failed to load face cascade classifier from %s", path)
	}

	logger.WithField("cascade", path).Info("Face cascade loaded")
	return &Detector{cascade: cascade}, nil
}

func (d *Detector) Detect(ctx context.Context, data []byte) (*face.Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %v", err)
	}
	defer mat.Close()
	if mat.Empty() {
		return nil, fmt.Errorf("failed to decode image: empty matrix")
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if err := gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray); err != nil {
		return nil, fmt.Errorf("failed to convert to grayscale: %v", err)
	}

	d.mu.Lock()
	faces := d.cascade.DetectMultiScaleWithParams(gray, scaleFactor, minNeighbors, 0,
		image.Pt(minFaceSize, minFaceSize), image.Pt(0, 0))
	d.mu.Unlock()

	for _, r := range faces {
		if err := gocv.Rectangle(&mat, r, green, 2); err != nil {
			return nil, fmt.Errorf("failed to draw rectangle: %v", err)
		}
		if err := gocv.PutText(&mat, "Face", image.Pt(r.Min.X, r.Min.Y-10), gocv.FontHersheySimplex, 0.7, green, 2); err != nil {
			return nil, fmt.Errorf("failed to draw text: %v", err)
		}
	}

	buf, err := gocv.IMEncode(".jpg", mat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode visualization: %v", err)
	}
	defer buf.Close()
	vis := make([]byte, len(buf.GetBytes()))
	copy(vis, buf.GetBytes())

	return &face.Detection{
		Faces:         faces,
		Width:         mat.Cols(),
		Height:        mat.Rows(),
		Visualization: vis,
	}, nil
}

// Close releases the cascade
func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cascade.Close()
}
