package quantize

import (
	"image"
	"image/color"
)

type rgb struct{ r, g, b int32 }

// mapper finds the nearest palette entry for a color. Lookups are cached per
// 5-bit-per-channel cell.
type mapper struct {
	pal    color.Palette
	colors []rgb
	cache  [1 << 15]int16
}

func newMapper(pal color.Palette) *mapper {
	m := &mapper{pal: pal, colors: make([]rgb, len(pal))}
	for i, c := range pal {
		r, g, b, _ := c.RGBA()
		m.colors[i] = rgb{int32(r >> 8), int32(g >> 8), int32(b >> 8)}
	}
	for i := range m.cache {
		m.cache[i] = -1
	}
	return m
}

func (m *mapper) index(r, g, b uint8) uint8 {
	k := key15(r, g, b)
	if v := m.cache[k]; v >= 0 {
		return uint8(v)
	}
	best, bestDist := 0, int32(-1)
	for i, c := range m.colors {
		dr, dg, db := c.r-int32(r), c.g-int32(g), c.b-int32(b)
		d := dr*dr + dg*dg + db*db
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	m.cache[k] = int16(best)
	return uint8(best)
}

func (m *mapper) mapImage(img *image.RGBA) *image.Paletted {
	b := img.Bounds()
	dst := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), m.pal)
	for y := 0; y < b.Dy(); y++ {
		src := img.Pix[y*img.Stride:]
		row := dst.Pix[y*dst.Stride:]
		for x := 0; x < b.Dx(); x++ {
			row[x] = m.index(src[x*4], src[x*4+1], src[x*4+2])
		}
	}
	return dst
}
