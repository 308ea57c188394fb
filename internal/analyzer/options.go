package analyzer

import (
	"github.com/anime-shed/sharpness-inspector-go/internal/blur"
	"github.com/anime-shed/sharpness-inspector-go/internal/imagebuf"
)

// AnalysisOptions selects the call shape and tuning for a single analysis
type AnalysisOptions struct {
	// Classification
	Classify  bool
	Threshold float64

	// Resize the longest side to this many pixels; 0 keeps the source size
	CanonicalSize int

	// Blur map rendering
	SkipBlurMap    bool
	MapJPEGQuality int

	// Nil uses blur.DefaultWeights
	Weights blur.Weights
}

// DefaultOptions returns the multi-method breakdown: no resize, no classification
func DefaultOptions() AnalysisOptions {
	return AnalysisOptions{
		MapJPEGQuality: imagebuf.DefaultJPEGQuality,
	}
}

// ClassifyOptions returns the canonical-size, thresholded call shape
func ClassifyOptions(threshold float64) AnalysisOptions {
	opts := DefaultOptions()
	opts.Classify = true
	opts.Threshold = threshold
	opts.CanonicalSize = imagebuf.CanonicalSize
	return opts
}

// WithCanonicalSize overrides the resize target
func (opts AnalysisOptions) WithCanonicalSize(n int) AnalysisOptions {
	opts.CanonicalSize = n
	return opts
}

// WithoutBlurMap skips the blur map branch entirely
func (opts AnalysisOptions) WithoutBlurMap() AnalysisOptions {
	opts.SkipBlurMap = true
	return opts
}

// WithMapQuality sets the JPEG quality of the rendered blur map
func (opts AnalysisOptions) WithMapQuality(quality int) AnalysisOptions {
	opts.MapJPEGQuality = quality
	return opts
}

// WithWeights replaces the estimator weights
func (opts AnalysisOptions) WithWeights(w blur.Weights) AnalysisOptions {
	opts.Weights = w
	return opts
}

func (opts AnalysisOptions) weights() blur.Weights {
	if opts.Weights == nil {
		return blur.DefaultWeights()
	}
	return opts.Weights
}
