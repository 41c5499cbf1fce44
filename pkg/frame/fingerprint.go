package frame

import (
	"image"

	"github.com/cespare/xxhash/v2"
)

// SamplePoints returns the fixed sparse sample set for a w x h bitmap:
// the four quarter/three-quarter crossings and the center.
func SamplePoints(w, h int) []image.Point {
	if w <= 0 || h <= 0 {
		return nil
	}
	qx, hx, tx := w/4, w/2, w*3/4
	qy, hy, ty := h/4, h/2, h*3/4
	return []image.Point{
		{qx, qy}, {tx, qy},
		{hx, hy},
		{qx, ty}, {tx, ty},
	}
}

// Fingerprint hashes the RGBA values at the sample points together with the
// bitmap size. Equal fingerprints mean the sampled pixels are identical.
func Fingerprint(img *image.RGBA) uint64 {
	b := img.Bounds()
	pts := SamplePoints(b.Dx(), b.Dy())
	buf := make([]byte, 0, 8+4*len(pts))
	buf = append(buf,
		byte(b.Dx()>>8), byte(b.Dx()),
		byte(b.Dy()>>8), byte(b.Dy()))
	for _, p := range pts {
		i := img.PixOffset(b.Min.X+p.X, b.Min.Y+p.Y)
		buf = append(buf, img.Pix[i:i+4]...)
	}
	return xxhash.Sum64(buf)
}

// SampleDifference returns the mean absolute channel difference (0-255)
// between a and b over the sample points. Bitmaps of different sizes are
// maximally different.
func SampleDifference(a, b *image.RGBA) float64 {
	ab, bb := a.Bounds(), b.Bounds()
	if ab.Dx() != bb.Dx() || ab.Dy() != bb.Dy() {
		return 255
	}
	pts := SamplePoints(ab.Dx(), ab.Dy())
	if len(pts) == 0 {
		return 0
	}
	var sum int
	for _, p := range pts {
		i := a.PixOffset(ab.Min.X+p.X, ab.Min.Y+p.Y)
		j := b.PixOffset(bb.Min.X+p.X, bb.Min.Y+p.Y)
		for c := 0; c < 4; c++ {
			d := int(a.Pix[i+c]) - int(b.Pix[j+c])
			if d < 0 {
				d = -d
			}
			sum += d
		}
	}
	return float64(sum) / float64(len(pts)*4)
}
