package analyzer

import (
	"context"

	"github.com/anime-shed/sharpness-inspector-go/internal/imagebuf"
)

// BlurAnalyzer defines the blur detection entry points
type BlurAnalyzer interface {
	// Analyze decodes, resizes to the canonical size and classifies against threshold
	Analyze(ctx context.Context, data []byte, threshold float64) (*Result, error)

	// AnalyzeMulti decodes and reports the per-method breakdown without classification
	AnalyzeMulti(ctx context.Context, data []byte) (*Result, error)

	// AnalyzeBuffer runs the pipeline on an already decoded buffer
	AnalyzeBuffer(ctx context.Context, buf *imagebuf.Buffer, opts AnalysisOptions) (*Result, error)

	// Stats exposes the worker pool counters
	Stats() PoolStats

	// Lifecycle management
	Close() error
}
