package quantize

import (
	"image"
	"image/color"
	"math"
)

// entry is one populated histogram cell: the mean color of the pixels that
// fell into it and their count.
type entry struct {
	r, g, b float64
	n       float64
}

func (e entry) channel(c int) float64 {
	switch c {
	case 0:
		return e.r
	case 1:
		return e.g
	default:
		return e.b
	}
}

// histogram buckets every stride-th pixel into 5-bit-per-channel cells and
// returns the populated cells. Alpha is ignored.
func histogram(img *image.RGBA, stride int) []entry {
	if stride < 1 {
		stride = 1
	}
	type cell struct{ r, g, b, n uint64 }
	var cells [1 << 15]cell

	b := img.Bounds()
	w := b.Dx()
	total := w * b.Dy()
	for i := 0; i < total; i += stride {
		x, y := i%w, i/w
		off := y*img.Stride + x*4
		r, g, bl := img.Pix[off], img.Pix[off+1], img.Pix[off+2]
		c := &cells[key15(r, g, bl)]
		c.r += uint64(r)
		c.g += uint64(g)
		c.b += uint64(bl)
		c.n++
	}

	var out []entry
	for _, c := range cells {
		if c.n == 0 {
			continue
		}
		n := float64(c.n)
		out = append(out, entry{r: float64(c.r) / n, g: float64(c.g) / n, b: float64(c.b) / n, n: n})
	}
	return out
}

func key15(r, g, b uint8) int {
	return int(r>>3)<<10 | int(g>>3)<<5 | int(b>>3)
}

func toColor(r, g, b float64) color.RGBA {
	return color.RGBA{R: clamp8(r), G: clamp8(g), B: clamp8(b), A: 255}
}

func clamp8(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
