package quantize

import (
	"image"
	"image/color"
	"sort"
)

// MedianCut splits the color histogram at the weighted median of its widest
// channel until the palette is full.
type MedianCut struct {
	Stride int
}

// Build implements PaletteBuilder.
func (m *MedianCut) Build(img *image.RGBA, maxColors int) color.Palette {
	return medianCut(histogram(img, m.Stride), maxColors)
}

type cutBox struct {
	entries []entry
	channel int
	span    float64
}

func newCutBox(entries []entry) cutBox {
	b := cutBox{entries: entries}
	for c := 0; c < 3; c++ {
		lo, hi := 255.0, 0.0
		for _, e := range entries {
			v := e.channel(c)
			lo = min(lo, v)
			hi = max(hi, v)
		}
		if hi-lo > b.span {
			b.span = hi - lo
			b.channel = c
		}
	}
	return b
}

func medianCut(entries []entry, maxColors int) color.Palette {
	if len(entries) == 0 {
		return color.Palette{color.RGBA{A: 255}}
	}
	boxes := []cutBox{newCutBox(entries)}

	for len(boxes) < maxColors {
		best := -1
		for i, b := range boxes {
			if len(b.entries) > 1 && b.span > 0 && (best < 0 || b.span > boxes[best].span) {
				best = i
			}
		}
		if best < 0 {
			break
		}

		b := boxes[best]
		c := b.channel
		sort.Slice(b.entries, func(i, j int) bool { return b.entries[i].channel(c) < b.entries[j].channel(c) })

		var total float64
		for _, e := range b.entries {
			total += e.n
		}
		k, acc := 1, 0.0
		for i, e := range b.entries[:len(b.entries)-1] {
			acc += e.n
			k = i + 1
			if acc >= total/2 {
				break
			}
		}

		boxes[best] = newCutBox(b.entries[:k])
		boxes = append(boxes, newCutBox(b.entries[k:]))
	}

	pal := make(color.Palette, len(boxes))
	for i, b := range boxes {
		pal[i] = meanColor(b.entries)
	}
	return pal
}

func meanColor(entries []entry) color.RGBA {
	var r, g, b, n float64
	for _, e := range entries {
		r += e.r * e.n
		g += e.g * e.n
		b += e.b * e.n
		n += e.n
	}
	if n == 0 {
		return color.RGBA{A: 255}
	}
	return toColor(r/n, g/n, b/n)
}
