package frame

import (
	"image"
	stddraw "image/draw"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// Downscale shrinks img by an integer factor with Catmull-Rom resampling.
func Downscale(img *image.RGBA, factor int) *image.RGBA {
	if factor <= 1 {
		return img
	}
	b := img.Bounds()
	w, h := max(1, b.Dx()/factor), max(1, b.Dy()/factor)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// FitWidth scales img down to maxWidth keeping the aspect ratio.
// A zero maxWidth or an image already narrow enough is returned as is.
func FitWidth(img *image.RGBA, maxWidth int) *image.RGBA {
	if maxWidth <= 0 || img.Bounds().Dx() <= maxWidth {
		return img
	}
	resized := imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	return Clone(resized)
}

// FitFramesWidth applies FitWidth to every frame.
func FitFramesWidth(frames []Frame, maxWidth int) []Frame {
	if maxWidth <= 0 {
		return frames
	}
	out := make([]Frame, len(frames))
	for i, f := range frames {
		out[i] = Frame{Image: FitWidth(f.Image, maxWidth), Duration: f.Duration}
	}
	return out
}

// Crop copies the part of img inside r into a new bitmap.
func Crop(img *image.RGBA, r image.Rectangle) *image.RGBA {
	r = r.Intersect(img.Bounds())
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	stddraw.Draw(dst, dst.Bounds(), img, r.Min, stddraw.Src)
	return dst
}
