package blur

import (
	"math"

	"github.com/anime-shed/sharpness-inspector-go/internal/imagebuf"
)

// borderFunc maps an out-of-range index onto [0, n).
type borderFunc func(i, n int) int

// reflect101 mirrors around the edge pixel without repeating it: -1 -> 1, n -> n-2.
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*n - 2 - i
		}
	}
	return i
}

// replicate repeats the edge pixel.
func replicate(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

type kernel3 [3][3]float64

var (
	laplacianKernel = kernel3{
		{0, 1, 0},
		{1, -4, 1},
		{0, 1, 0},
	}
	sobelXKernel = kernel3{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelYKernel = kernel3{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}
)

// convolve3 applies a 3x3 kernel to the sub-rectangle [x0,x0+w) x [y0,y0+h) of buf,
// resolving neighbours outside that rectangle with border. The result has w*h entries.
func convolve3(buf *imagebuf.Buffer, k kernel3, x0, y0, w, h int, border borderFunc) []float64 {
	out := make([]float64, w*h)
	for y := 0; y < h; y++ {
		var rows [3]int
		for dy := -1; dy <= 1; dy++ {
			rows[dy+1] = (y0 + border(y+dy, h)) * buf.Width
		}
		for x := 0; x < w; x++ {
			var cols [3]int
			for dx := -1; dx <= 1; dx++ {
				cols[dx+1] = x0 + border(x+dx, w)
			}

			var sum float64
			for ky := 0; ky < 3; ky++ {
				for kx := 0; kx < 3; kx++ {
					if c := k[ky][kx]; c != 0 {
						sum += c * float64(buf.Pix[rows[ky]+cols[kx]])
					}
				}
			}
			out[y*w+x] = sum
		}
	}
	return out
}

func laplacian(buf *imagebuf.Buffer) []float64 {
	return convolve3(buf, laplacianKernel, 0, 0, buf.Width, buf.Height, reflect101)
}

// sobelMagnitude returns the per-pixel Euclidean gradient magnitude.
func sobelMagnitude(buf *imagebuf.Buffer) []float64 {
	gx := convolve3(buf, sobelXKernel, 0, 0, buf.Width, buf.Height, reflect101)
	gy := convolve3(buf, sobelYKernel, 0, 0, buf.Width, buf.Height, reflect101)
	mag := make([]float64, len(gx))
	for i := range gx {
		mag[i] = math.Hypot(gx[i], gy[i])
	}
	return mag
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampScore bounds an estimator output to the [0, 100] score range.
func clampScore(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return clamp(v, 0, 100)
}
