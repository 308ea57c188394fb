// Package blur implements the sharpness estimators, their weighted aggregation
// and the spatial blur map.
package blur

import (
	"gonum.org/v1/gonum/stat"

	"github.com/anime-shed/sharpness-inspector-go/internal/imagebuf"
)

// Method names one of the five estimators.
type Method string

const (
	MethodLaplacian   Method = "laplacian"
	MethodSobel       Method = "sobel"
	MethodFFT         Method = "fft"
	MethodGradient    Method = "gradient"
	MethodEdgeDensity Method = "edge_density"
)

// Methods lists every estimator in its fixed evaluation order.
var Methods = []Method{
	MethodLaplacian,
	MethodSobel,
	MethodFFT,
	MethodGradient,
	MethodEdgeDensity,
}

// Scale factors mapping raw measurements to the 0-100 score range.
const (
	laplacianDivisor = 10.0
	sobelDivisor     = 2.0
	fftMultiplier    = 2.0
	gradientDivisor  = 3.0
	edgeMultiplier   = 1000.0

	cannyLow  = 50.0
	cannyHigh = 150.0
)

// EstimateFunc scores a buffer in [0, 100]; higher means sharper.
type EstimateFunc func(buf *imagebuf.Buffer) float64

// Estimator pairs a method with its scoring function.
type Estimator struct {
	Method   Method
	Estimate EstimateFunc
}

// EstimatorResult is one estimator's output for one image.
type EstimatorResult struct {
	Method Method  `json:"method"`
	Score  float64 `json:"score"`
}

// Estimators returns the estimator table in evaluation order.
func Estimators() []Estimator {
	return []Estimator{
		{Method: MethodLaplacian, Estimate: LaplacianScore},
		{Method: MethodSobel, Estimate: SobelScore},
		{Method: MethodFFT, Estimate: FFTScore},
		{Method: MethodGradient, Estimate: GradientScore},
		{Method: MethodEdgeDensity, Estimate: EdgeDensityScore},
	}
}

// LaplacianVariance is the population variance of the Laplacian response.
func LaplacianVariance(buf *imagebuf.Buffer) float64 {
	return stat.PopVariance(laplacian(buf), nil)
}

func LaplacianScore(buf *imagebuf.Buffer) float64 {
	return clampScore(LaplacianVariance(buf) / laplacianDivisor)
}

func SobelScore(buf *imagebuf.Buffer) float64 {
	return clampScore(stat.Mean(sobelMagnitude(buf), nil) / sobelDivisor)
}

// GradientScore uses the same Sobel magnitudes with a wider normalisation.
func GradientScore(buf *imagebuf.Buffer) float64 {
	return clampScore(stat.Mean(sobelMagnitude(buf), nil) / gradientDivisor)
}

func FFTScore(buf *imagebuf.Buffer) float64 {
	return clampScore(spectrumWindowMean(buf) * fftMultiplier)
}

// EdgeDensityScore is the fraction of Canny edge pixels, scaled by 1000.
func EdgeDensityScore(buf *imagebuf.Buffer) float64 {
	edges := Canny(buf, cannyLow, cannyHigh)
	count := 0
	for _, v := range edges {
		if v != 0 {
			count++
		}
	}
	density := float64(count) / float64(buf.Width*buf.Height)
	return clampScore(density * edgeMultiplier)
}
