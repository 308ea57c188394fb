package blur

import (
	"gonum.org/v1/gonum/stat"

	"github.com/anime-shed/sharpness-inspector-go/internal/imagebuf"
)

const (
	MapWindow = 15
	MapStride = 7
)

// Map is a per-pixel blur intensity grid with the dimensions of its source
// buffer. Higher values mean blurrier.
type Map struct {
	Width  int
	Height int
	Pix    []uint8
}

// BuildMap slides a 15x15 window with stride 7 over the buffer and paints each
// window with 255 - variance/2 of its Laplacian. Overlapping windows are
// resolved last-write-wins in raster order; the uncovered bottom and right
// margins stay 0.
func BuildMap(buf *imagebuf.Buffer) *Map {
	m := &Map{
		Width:  buf.Width,
		Height: buf.Height,
		Pix:    make([]uint8, buf.Width*buf.Height),
	}

	for i := 0; i < buf.Height-MapWindow; i += MapStride {
		for j := 0; j < buf.Width-MapWindow; j += MapStride {
			resp := convolve3(buf, laplacianKernel, j, i, MapWindow, MapWindow, reflect101)
			intensity := uint8(clamp(255-stat.PopVariance(resp, nil)/2, 0, 255))

			for y := i; y < i+MapWindow; y++ {
				row := m.Pix[y*m.Width+j : y*m.Width+j+MapWindow]
				for x := range row {
					row[x] = intensity
				}
			}
		}
	}
	return m
}

// At returns the blur intensity at column x, row y.
func (m *Map) At(x, y int) uint8 {
	return m.Pix[y*m.Width+x]
}
