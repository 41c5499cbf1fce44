package quantize

import (
	"image"
	"image/color"
)

// KMeans refines a median cut palette with a fixed number of Lloyd
// iterations over the color histogram. Seeding is deterministic.
type KMeans struct {
	Stride     int
	Iterations int
}

// Build implements PaletteBuilder.
func (k *KMeans) Build(img *image.RGBA, maxColors int) color.Palette {
	entries := histogram(img, k.Stride)
	seed := medianCut(entries, maxColors)
	if len(entries) <= len(seed) {
		return seed
	}

	centers := make([]entry, len(seed))
	for i, c := range seed {
		rgba := c.(color.RGBA)
		centers[i] = entry{r: float64(rgba.R), g: float64(rgba.G), b: float64(rgba.B)}
	}

	sums := make([]entry, len(centers))
	for iter := 0; iter < k.Iterations; iter++ {
		for i := range sums {
			sums[i] = entry{}
		}
		for _, e := range entries {
			i := nearestEntry(centers, e)
			sums[i].r += e.r * e.n
			sums[i].g += e.g * e.n
			sums[i].b += e.b * e.n
			sums[i].n += e.n
		}
		moved := false
		for i, s := range sums {
			if s.n == 0 {
				continue
			}
			next := entry{r: s.r / s.n, g: s.g / s.n, b: s.b / s.n}
			if next != centers[i] {
				moved = true
			}
			centers[i] = next
		}
		if !moved {
			break
		}
	}

	pal := make(color.Palette, len(centers))
	for i, c := range centers {
		pal[i] = toColor(c.r, c.g, c.b)
	}
	return pal
}

func nearestEntry(centers []entry, e entry) int {
	best, bestDist := 0, -1.0
	for i, c := range centers {
		dr, dg, db := c.r-e.r, c.g-e.g, c.b-e.b
		d := dr*dr + dg*dg + db*db
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
