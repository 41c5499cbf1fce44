package quantize

import (
	"image"
	"math"
)

// centerFloor is the diffusion weight at the frame corners when diffusion is
// center focused; the center always gets full strength.
const centerFloor = 0.25

// diffuse maps img onto the mapper's palette with Floyd-Steinberg error
// diffusion scaled by strength.
func diffuse(img *image.RGBA, m *mapper, strength float64, centered bool) *image.Paletted {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewPaletted(image.Rect(0, 0, w, h), m.pal)

	// Error rows are padded by one pixel on each side.
	cur := make([]float32, (w+2)*3)
	next := make([]float32, (w+2)*3)

	cx, cy := float64(w-1)/2, float64(h-1)/2
	maxDist := math.Hypot(cx, cy)

	for y := 0; y < h; y++ {
		src := img.Pix[y*img.Stride:]
		row := dst.Pix[y*dst.Stride:]
		for x := 0; x < w; x++ {
			weight := float32(strength)
			if centered && maxDist > 0 {
				d := math.Hypot(float64(x)-cx, float64(y)-cy) / maxDist
				weight *= float32(1 - (1-centerFloor)*d)
			}

			e := (x + 1) * 3
			r := float32(src[x*4]) + cur[e]
			g := float32(src[x*4+1]) + cur[e+1]
			bl := float32(src[x*4+2]) + cur[e+2]

			idx := m.index(clampF(r), clampF(g), clampF(bl))
			row[x] = idx

			pc := m.colors[idx]
			er := (r - float32(pc.r)) * weight
			eg := (g - float32(pc.g)) * weight
			eb := (bl - float32(pc.b)) * weight

			spread(cur, e+3, er, eg, eb, 7.0/16)
			spread(next, e-3, er, eg, eb, 3.0/16)
			spread(next, e, er, eg, eb, 5.0/16)
			spread(next, e+3, er, eg, eb, 1.0/16)
		}
		cur, next = next, cur
		for i := range next {
			next[i] = 0
		}
	}
	return dst
}

func spread(buf []float32, i int, r, g, b, f float32) {
	buf[i] += r * f
	buf[i+1] += g * f
	buf[i+2] += b * f
}

func clampF(v float32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
