package blur

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anime-shed/sharpness-inspector-go/internal/imagebuf"
)

func TestBuildMap_Dimensions(t *testing.T) {
	sizes := [][2]int{{1, 1}, {15, 15}, {16, 40}, {100, 37}, {64, 64}}
	for _, s := range sizes {
		buf := noiseBuffer(t, s[0], s[1], 5)
		m := BuildMap(buf)
		assert.Equal(t, s[0], m.Width)
		assert.Equal(t, s[1], m.Height)
		assert.Len(t, m.Pix, s[0]*s[1])
	}
}

func TestBuildMap_SmallImageAllZero(t *testing.T) {
	m := BuildMap(noiseBuffer(t, 15, 40, 9))
	for _, v := range m.Pix {
		require.Zero(t, v)
	}
}

func TestBuildMap_FlatImageCoverage(t *testing.T) {
	// Windows start at 0, 7 and 14, so coverage ends at index 28.
	m := BuildMap(flatBuffer(t, 30, 30, 60))

	for y := 0; y < 30; y++ {
		for x := 0; x < 30; x++ {
			want := uint8(255)
			if x == 29 || y == 29 {
				want = 0
			}
			require.Equal(t, want, m.At(x, y), "pixel (%d,%d)", x, y)
		}
	}
}

func TestBuildMap_SharpRegionIsDarker(t *testing.T) {
	board, err := imagebuf.FromImage(checkerboard(64, 4))
	require.NoError(t, err)

	m := BuildMap(board)
	// Laplacian variance of a 4px checkerboard saturates the intensity at 0.
	assert.Equal(t, uint8(0), m.At(10, 10))

	flat := BuildMap(flatBuffer(t, 64, 64, 128))
	assert.Equal(t, uint8(255), flat.At(10, 10))
}

func TestColorize(t *testing.T) {
	m := &Map{Width: 3, Height: 1, Pix: []uint8{0, 128, 255}}
	img := Colorize(m)

	require.Equal(t, 3, img.Bounds().Dx())
	require.Equal(t, 1, img.Bounds().Dy())

	low := img.RGBAAt(0, 0)
	assert.Equal(t, [4]uint8{0, 0, 128, 255}, [4]uint8{low.R, low.G, low.B, low.A})

	high := img.RGBAAt(2, 0)
	assert.Equal(t, [4]uint8{128, 0, 0, 255}, [4]uint8{high.R, high.G, high.B, high.A})

	mid := img.RGBAAt(1, 0)
	assert.Greater(t, mid.G, uint8(200), "middle of the ramp is green dominated")
}

func TestColorize_Deterministic(t *testing.T) {
	m := BuildMap(noiseBuffer(t, 40, 40, 21))
	a := Colorize(m)
	b := Colorize(m)
	assert.Equal(t, a.Pix, b.Pix)
}
