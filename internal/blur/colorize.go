package blur

import (
	"image"
	"math"
)

// jetLUT maps 0..255 onto the jet ramp: blue, cyan, yellow, red.
var jetLUT = buildJetLUT()

func buildJetLUT() [256][3]uint8 {
	var lut [256][3]uint8
	for i := range lut {
		v := float64(i) / 255
		lut[i] = [3]uint8{
			jetChannel(1.5 - math.Abs(4*v-3)),
			jetChannel(1.5 - math.Abs(4*v-2)),
			jetChannel(1.5 - math.Abs(4*v-1)),
		}
	}
	return lut
}

func jetChannel(v float64) uint8 {
	return uint8(math.Round(clamp(v, 0, 1) * 255))
}

// Colorize renders the map through the jet colormap.
func Colorize(m *Map) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			c := jetLUT[m.Pix[y*m.Width+x]]
			o := img.PixOffset(x, y)
			img.Pix[o+0] = c[0]
			img.Pix[o+1] = c[1]
			img.Pix[o+2] = c[2]
			img.Pix[o+3] = 0xff
		}
	}
	return img
}
