package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/anime-shed/sharpness-inspector-go/internal/blur"
	"github.com/anime-shed/sharpness-inspector-go/internal/imagebuf"
	"github.com/anime-shed/sharpness-inspector-go/internal/logger"
)

// Config tunes a BlurAnalyzer
type Config struct {
	Workers        int
	CanonicalSize  int
	MapJPEGQuality int
	Weights        blur.Weights
}

// coreAnalyzer implements BlurAnalyzer on top of a shared worker pool
type coreAnalyzer struct {
	workerPool     *WorkerPool
	canonicalSize  int
	mapJPEGQuality int
	weights        blur.Weights
}

// NewBlurAnalyzer creates a blur analyzer and starts its worker pool
func NewBlurAnalyzer(cfg Config) (BlurAnalyzer, error) {
	weights := cfg.Weights
	if weights == nil {
		weights = blur.DefaultWeights()
	}
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("invalid estimator weights: %w", err)
	}

	canonical := cfg.CanonicalSize
	if canonical <= 0 {
		canonical = imagebuf.CanonicalSize
	}
	quality := cfg.MapJPEGQuality
	if quality <= 0 {
		quality = imagebuf.DefaultJPEGQuality
	}

	workerPool := NewWorkerPool(cfg.Workers)
	workerPool.Start()

	return &coreAnalyzer{
		workerPool:     workerPool,
		canonicalSize:  canonical,
		mapJPEGQuality: quality,
		weights:        weights,
	}, nil
}

// Analyze performs the classified, canonical-size analysis
func (ca *coreAnalyzer) Analyze(ctx context.Context, data []byte, threshold float64) (*Result, error) {
	if err := blur.ValidateThreshold(threshold); err != nil {
		return nil, err
	}

	buf, err := imagebuf.Decode(data)
	if err != nil {
		return nil, err
	}

	opts := ClassifyOptions(threshold).
		WithCanonicalSize(ca.canonicalSize).
		WithMapQuality(ca.mapJPEGQuality).
		WithWeights(ca.weights)
	return ca.AnalyzeBuffer(ctx, buf, opts)
}

// AnalyzeMulti performs the multi-method breakdown at source resolution
func (ca *coreAnalyzer) AnalyzeMulti(ctx context.Context, data []byte) (*Result, error) {
	buf, err := imagebuf.Decode(data)
	if err != nil {
		return nil, err
	}

	opts := DefaultOptions().
		WithMapQuality(ca.mapJPEGQuality).
		WithWeights(ca.weights)
	return ca.AnalyzeBuffer(ctx, buf, opts)
}

// AnalyzeBuffer fans the estimators and the blur map out on the worker pool and
// waits for all of them before assembling the result
func (ca *coreAnalyzer) AnalyzeBuffer(ctx context.Context, buf *imagebuf.Buffer, opts AnalysisOptions) (*Result, error) {
	start := time.Now()

	if buf == nil || buf.Width <= 0 || buf.Height <= 0 {
		w, h := 0, 0
		if buf != nil {
			w, h = buf.Width, buf.Height
		}
		return nil, &imagebuf.EmptyImageError{Width: w, Height: h}
	}
	if opts.Classify {
		if err := blur.ValidateThreshold(opts.Threshold); err != nil {
			return nil, err
		}
	}
	weights := opts.weights()
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("invalid estimator weights: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if opts.CanonicalSize > 0 {
		buf = buf.ResizeLongest(opts.CanonicalSize)
	}

	estimators := blur.Estimators()
	results := make([]blur.EstimatorResult, len(estimators))
	var blurMap *blur.Map

	barrier := newBarrier(ca.workerPool)
	for i, e := range estimators {
		i, e := i, e
		barrier.Go(ctx, func() {
			results[i] = blur.EstimatorResult{Method: e.Method, Score: e.Estimate(buf)}
		})
	}
	if !opts.SkipBlurMap {
		barrier.Go(ctx, func() {
			blurMap = blur.BuildMap(buf)
		})
	}
	if err := barrier.Wait(ctx); err != nil {
		return nil, err
	}

	result := &Result{
		Width:  buf.Width,
		Height: buf.Height,
	}

	if opts.Classify {
		agg, err := blur.Classify(results, weights, opts.Threshold)
		if err != nil {
			return nil, err
		}
		threshold, blurry := agg.Threshold, agg.IsBlurry
		result.Overall = agg.Overall
		result.PerMethod = agg.PerMethod
		result.Threshold = &threshold
		result.IsBlurry = &blurry
		result.Details = classifiedDetails(agg)
	} else {
		agg := blur.Aggregate(results, weights)
		result.Overall = agg.Overall
		result.PerMethod = agg.PerMethod
		result.Details = multiDetails(agg.PerMethod)
	}

	if blurMap != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		encoded, err := imagebuf.EncodeJPEG(blur.Colorize(blurMap), opts.MapJPEGQuality)
		if err != nil {
			return nil, fmt.Errorf("failed to encode blur map: %w", err)
		}
		result.BlurMap = blurMap
		result.BlurMapJPEG = encoded
	}

	result.ProcessingTime = time.Since(start)

	logger.WithFields(logrus.Fields{
		"width":              result.Width,
		"height":             result.Height,
		"overall":            Round2(result.Overall),
		"classified":         opts.Classify,
		"processing_time_ms": result.ProcessingTime.Milliseconds(),
	}).Debug("Blur analysis finished")

	return result, nil
}

// Stats returns the worker pool counters
func (ca *coreAnalyzer) Stats() PoolStats {
	return ca.workerPool.GetStats()
}

// Close releases the worker pool
func (ca *coreAnalyzer) Close() error {
	ca.workerPool.Close()
	return nil
}

func multiDetails(per map[blur.Method]float64) string {
	return fmt.Sprintf("Multi-method blur analysis: Laplacian=%.1f, Sobel=%.1f, FFT=%.1f",
		per[blur.MethodLaplacian], per[blur.MethodSobel], per[blur.MethodFFT])
}

func classifiedDetails(agg blur.AggregateResult) string {
	if agg.IsBlurry {
		return fmt.Sprintf("Image is blurry: overall score %.2f is below threshold %.2f", agg.Overall, agg.Threshold)
	}
	return fmt.Sprintf("Image is sharp: overall score %.2f meets threshold %.2f", agg.Overall, agg.Threshold)
}
