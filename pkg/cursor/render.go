package cursor

import (
	"image/color"
	"sort"
	"time"

	"github.com/user/gifcap/pkg/frame"
	"github.com/user/gifcap/pkg/ports"
)

// Render returns a new frame list with cursor effects drawn in.
//
// Frame i covers [origin+sum(d0..di-1), origin+sum(d0..di)). The highlight is
// drawn at the last position known before the window ends; a left or right
// click inside the window switches the circle to the click color and adds a
// ring. Region coordinates are scaled to bitmap pixels per frame, so frames
// captured at a higher pixel density than the region get larger circles.
// Input frames are never modified; frames without a known position are
// passed through.
func Render(renderer ports.Renderer, frames []frame.Frame, events []ports.CursorEvent, region frame.Rect, origin time.Duration, opts Options) []frame.Frame {
	out := make([]frame.Frame, len(frames))
	if len(events) == 0 || region.Empty() {
		copy(out, frames)
		return out
	}

	sorted := make([]ports.CursorEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Timestamp < sorted[j].Timestamp })

	var (
		next   int
		hasPos bool
		x, y   float64
		start  = origin
	)

	for i, f := range frames {
		end := start + f.Duration
		click := ports.CursorMove

		for next < len(sorted) && sorted[next].Timestamp < end {
			ev := sorted[next]
			x, y, hasPos = ev.X, ev.Y, true
			if ev.Kind != ports.CursorMove && ev.Timestamp >= start {
				click = ev.Kind
			}
			next++
		}

		if !hasPos {
			out[i] = f
			start = end
			continue
		}

		sx := float64(f.Width()) / float64(region.Width)
		sy := float64(f.Height()) / float64(region.Height)
		px, py := (x-float64(region.X))*sx, (y-float64(region.Y))*sy
		r := opts.Radius * sx

		canvas := renderer.CreateCanvas(f.Image)
		switch click {
		case ports.CursorLeftDown:
			drawClick(canvas, px, py, r, opts.LeftClickColor, opts.RingWidth*sx)
		case ports.CursorRightDown:
			drawClick(canvas, px, py, r, opts.RightClickColor, opts.RingWidth*sx)
		default:
			canvas.FillCircle(px, py, r, opts.HighlightColor)
		}
		out[i] = frame.Frame{Image: canvas.ToRGBA(), Duration: f.Duration}
		start = end
	}
	return out
}

func drawClick(canvas ports.Canvas, x, y, r float64, c color.Color, ring float64) {
	canvas.FillCircle(x, y, r, c)
	canvas.StrokeCircle(x, y, r*1.4, c, ring)
}
