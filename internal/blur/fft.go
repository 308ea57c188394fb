package blur

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"

	"github.com/anime-shed/sharpness-inspector-go/internal/imagebuf"
)

// spectrumHalfWindow is half the side of the square window sampled from the
// shifted log-magnitude spectrum.
const spectrumHalfWindow = 30

// spectrumWindowMean computes log(|F|+1) of the centred 2D DFT and averages it
// over the window around the spectrum centre, clipped to the image. Only the
// bins inside the window are evaluated.
func spectrumWindowMean(buf *imagebuf.Buffer) float64 {
	h, w := buf.Height, buf.Width

	r0, r1 := clampWindow(h/2, h)
	c0, c1 := clampWindow(w/2, w)

	colBins := make([]int, 0, c1-c0)
	for c := c0; c < c1; c++ {
		colBins = append(colBins, unshift(c, w))
	}
	rowBins := make([]int, 0, r1-r0)
	for r := r0; r < r1; r++ {
		rowBins = append(rowBins, unshift(r, h))
	}
	if len(colBins) == 0 || len(rowBins) == 0 {
		return 0
	}

	rowDFT := newBinTransform(w, colBins)
	rows := make([][]complex128, h)
	line := make([]complex128, w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			line[x] = complex(float64(buf.Pix[y*w+x]), 0)
		}
		rows[y] = rowDFT(line)
	}

	colDFT := newBinTransform(h, rowBins)
	column := make([]complex128, h)
	values := make([]float64, 0, len(rowBins)*len(colBins))
	for j := range colBins {
		for y := 0; y < h; y++ {
			column[y] = rows[y][j]
		}
		for _, v := range colDFT(column) {
			values = append(values, math.Log(cmplx.Abs(v)+1))
		}
	}

	return stat.Mean(values, nil)
}

// newBinTransform returns a forward DFT of length n reporting only the given
// bins, in order. A full FFT is used when n factors into small radices;
// otherwise the bins are summed directly, which keeps prime lengths linear.
func newBinTransform(n int, bins []int) func([]complex128) []complex128 {
	if n > 1 && radixCost(n) <= len(bins) {
		fft := fourier.NewCmplxFFT(n)
		coeffs := make([]complex128, n)
		return func(seq []complex128) []complex128 {
			fft.Coefficients(coeffs, seq)
			out := make([]complex128, len(bins))
			for i, k := range bins {
				out[i] = coeffs[k]
			}
			return out
		}
	}
	return directDFT(n, bins)
}

// directDFT evaluates X[k] = Σ x[t]·exp(-2πi·k·t/n) for each requested k
func directDFT(n int, bins []int) func([]complex128) []complex128 {
	twiddles := make([][]complex128, len(bins))
	for i, k := range bins {
		tw := make([]complex128, n)
		for t := 0; t < n; t++ {
			// reduce k·t first so large sides keep full phase precision
			phase := -2 * math.Pi * float64((k*t)%n) / float64(n)
			tw[t] = complex(math.Cos(phase), math.Sin(phase))
		}
		twiddles[i] = tw
	}
	return func(seq []complex128) []complex128 {
		out := make([]complex128, len(bins))
		for i, tw := range twiddles {
			var sum complex128
			for t, v := range seq {
				sum += v * tw[t]
			}
			out[i] = sum
		}
		return out
	}
}

// radixCost approximates the per-sample work of a mixed-radix FFT of length n
// as the sum of its prime factors.
func radixCost(n int) int {
	cost := 0
	for p := 2; p*p <= n; p++ {
		for n%p == 0 {
			cost += p
			n /= p
		}
	}
	if n > 1 {
		cost += n
	}
	return cost
}

func clampWindow(centre, n int) (int, int) {
	lo := centre - spectrumHalfWindow
	hi := centre + spectrumHalfWindow
	// sides under 60 px clip to the image instead of wrapping like a negative slice start
	if lo < 0 {
		lo = 0
	}
	if hi > n {
		hi = n
	}
	return lo, hi
}

// unshift maps an index of the zero-centred spectrum back to the raw DFT index.
func unshift(k, n int) int {
	return (k - n/2 + n) % n
}
