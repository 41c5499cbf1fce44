package quantize

import (
	"image"
	"image/color"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// exactPalette collects the distinct opaque colors of img. It gives up as soon
// as more than limit colors are found.
func exactPalette(img *image.RGBA, limit int) (color.Palette, map[uint32]uint8, bool) {
	seen := mapset.NewThreadUnsafeSet[uint32]()
	b := img.Bounds()
	for y := 0; y < b.Dy(); y++ {
		src := img.Pix[y*img.Stride:]
		for x := 0; x < b.Dx(); x++ {
			if seen.Add(packRGB(src[x*4], src[x*4+1], src[x*4+2])) && seen.Cardinality() > limit {
				return nil, nil, false
			}
		}
	}

	keys := seen.ToSlice()
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	pal := make(color.Palette, len(keys))
	index := make(map[uint32]uint8, len(keys))
	for i, k := range keys {
		pal[i] = color.RGBA{R: uint8(k >> 16), G: uint8(k >> 8), B: uint8(k), A: 255}
		index[k] = uint8(i)
	}
	return pal, index, true
}

func mapExact(img *image.RGBA, pal color.Palette, index map[uint32]uint8) *image.Paletted {
	b := img.Bounds()
	dst := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), pal)
	for y := 0; y < b.Dy(); y++ {
		src := img.Pix[y*img.Stride:]
		row := dst.Pix[y*dst.Stride:]
		for x := 0; x < b.Dx(); x++ {
			row[x] = index[packRGB(src[x*4], src[x*4+1], src[x*4+2])]
		}
	}
	return dst
}

func packRGB(r, g, b uint8) uint32 {
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}
