// Package frame holds the bitmap frame model shared by capture, editing and
// encoding, together with the sparse-sample fingerprint used for
// deduplication and the scaling helpers used by the memory policy and the
// encoder backends.
package frame

import (
	"image"
	"image/draw"
	"time"
)

const (
	// MinDuration is the shortest display duration a frame may carry.
	// It matches the GIF delay resolution of one centisecond.
	MinDuration = 10 * time.Millisecond

	// MaxSampleGap caps the duration derived from the gap between two
	// kept capture samples.
	MaxSampleGap = time.Second
)

// Frame is one bitmap of an animation together with its display duration.
// The bitmap is never written after the frame is built, so frames may share it.
type Frame struct {
	Image    *image.RGBA
	Duration time.Duration
}

// New creates a frame with the duration clamped to MinDuration.
func New(img *image.RGBA, d time.Duration) Frame {
	return Frame{Image: img, Duration: ClampDuration(d)}
}

// ClampDuration raises d to MinDuration when it is shorter.
func ClampDuration(d time.Duration) time.Duration {
	if d < MinDuration {
		return MinDuration
	}
	return d
}

// Width returns the bitmap width in pixels.
func (f Frame) Width() int {
	return f.Image.Bounds().Dx()
}

// Height returns the bitmap height in pixels.
func (f Frame) Height() int {
	return f.Image.Bounds().Dy()
}

// WithDuration returns a copy of f with a new, clamped duration.
func (f Frame) WithDuration(d time.Duration) Frame {
	return Frame{Image: f.Image, Duration: ClampDuration(d)}
}

// ByteSize returns the memory held by the bitmap pixels.
func (f Frame) ByteSize() int64 {
	return int64(len(f.Image.Pix))
}

// TotalDuration sums the durations of frames.
func TotalDuration(frames []Frame) time.Duration {
	var total time.Duration
	for _, f := range frames {
		total += f.Duration
	}
	return total
}

// Clone copies img into a new RGBA bitmap whose bounds start at the origin.
func Clone(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// Copy duplicates a frame list. Bitmaps are shared.
func Copy(frames []Frame) []Frame {
	if frames == nil {
		return nil
	}
	out := make([]Frame, len(frames))
	copy(out, frames)
	return out
}
