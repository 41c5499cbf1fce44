package ports

import (
	"context"
	"image"
	"time"

	"github.com/user/gifcap/pkg/frame"
)

// FrameSample is one raw bitmap delivered by a capture stream.
type FrameSample struct {
	Image *image.RGBA
	// Timestamp is the offset from the start of the stream.
	Timestamp time.Duration
}

// CaptureStream produces bitmaps of a screen region at a target rate.
type CaptureStream interface {
	// Start begins capturing region at fps samples per second.
	// The returned channel is closed when the stream ends.
	Start(ctx context.Context, region frame.Rect, fps float64) (<-chan FrameSample, error)

	// Stop halts the stream. Calling Stop on a stopped stream is a no-op.
	Stop() error
}

// RegionPicker lets the user choose a capture region interactively.
type RegionPicker interface {
	// PickRegion returns the chosen rectangle or ErrRegionCancelled.
	PickRegion(ctx context.Context) (frame.Rect, error)
}

// RegionPickerFunc adapts a function to RegionPicker.
type RegionPickerFunc func(ctx context.Context) (frame.Rect, error)

// PickRegion implements RegionPicker.
func (f RegionPickerFunc) PickRegion(ctx context.Context) (frame.Rect, error) {
	return f(ctx)
}
