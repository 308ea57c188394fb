package blur

import (
	"math"

	"github.com/anime-shed/sharpness-inspector-go/internal/imagebuf"
)

var (
	tan22 = math.Tan(22.5 * math.Pi / 180)
	tan67 = math.Tan(67.5 * math.Pi / 180)
)

// pixel states during hysteresis
const (
	cannyNone uint8 = iota
	cannyCandidate
	cannyEdge
)

// Canny returns an edge map (255 = edge, 0 = background) using 3x3 Sobel
// gradients with replicated borders, L1 magnitude, non-maximum suppression
// and 8-connected hysteresis between low and high.
func Canny(buf *imagebuf.Buffer, low, high float64) []uint8 {
	w, h := buf.Width, buf.Height
	gx := convolve3(buf, sobelXKernel, 0, 0, w, h, replicate)
	gy := convolve3(buf, sobelYKernel, 0, 0, w, h, replicate)

	mag := make([]float64, w*h)
	for i := range mag {
		mag[i] = math.Abs(gx[i]) + math.Abs(gy[i])
	}
	at := func(x, y int) float64 {
		if x < 0 || y < 0 || x >= w || y >= h {
			return 0
		}
		return mag[y*w+x]
	}

	state := make([]uint8, w*h)
	stack := make([]int, 0, 256)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			m := mag[i]
			if m <= low {
				continue
			}

			dx, dy := gx[i], gy[i]
			ax, ay := math.Abs(dx), math.Abs(dy)

			var isMax bool
			switch {
			case ay < ax*tan22:
				isMax = m > at(x-1, y) && m >= at(x+1, y)
			case ay > ax*tan67:
				isMax = m > at(x, y-1) && m >= at(x, y+1)
			default:
				s := 1
				if (dx < 0) != (dy < 0) {
					s = -1
				}
				isMax = m > at(x-s, y-1) && m > at(x+s, y+1)
			}
			if !isMax {
				continue
			}

			if m > high {
				state[i] = cannyEdge
				stack = append(stack, i)
			} else {
				state[i] = cannyCandidate
			}
		}
	}

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%w, i/w
		for ny := y - 1; ny <= y+1; ny++ {
			if ny < 0 || ny >= h {
				continue
			}
			for nx := x - 1; nx <= x+1; nx++ {
				if nx < 0 || nx >= w {
					continue
				}
				j := ny*w + nx
				if state[j] == cannyCandidate {
					state[j] = cannyEdge
					stack = append(stack, j)
				}
			}
		}
	}

	edges := make([]uint8, w*h)
	for i, s := range state {
		if s == cannyEdge {
			edges[i] = 255
		}
	}
	return edges
}
