package analyzer

import (
	"math"
	"time"

	"github.com/anime-shed/sharpness-inspector-go/internal/blur"
)

// Result is the outcome of one blur analysis. Scores are unrounded; use
// Round2 when presenting them.
type Result struct {
	Overall   float64
	PerMethod map[blur.Method]float64

	// Set only by the classified call shape
	Threshold *float64
	IsBlurry  *bool

	BlurMap     *blur.Map
	BlurMapJPEG []byte

	// Dimensions of the buffer that was scored
	Width  int
	Height int

	Details        string
	ProcessingTime time.Duration
}

// Classified reports whether the result carries a threshold decision
func (r *Result) Classified() bool {
	return r.Threshold != nil && r.IsBlurry != nil
}

// Round2 rounds half away from zero to two decimals
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
