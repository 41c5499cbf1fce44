// Package cursor records pointer activity during a capture session and burns
// highlight and click effects onto the finished frames.
package cursor

import (
	"context"
	"image/color"
	"sync"
	"time"

	"github.com/user/gifcap/pkg/frame"
	"github.com/user/gifcap/pkg/ports"
)

// Options configures recording cadence and the drawn effects.
type Options struct {
	// SampleInterval is the minimum spacing between recorded move events.
	SampleInterval time.Duration
	// Radius of the highlight circle in region coordinates.
	Radius float64

	HighlightColor  color.Color
	LeftClickColor  color.Color
	RightClickColor color.Color
	RingWidth       float64
}

// DefaultOptions returns a translucent yellow highlight with red/blue clicks.
func DefaultOptions() Options {
	return Options{
		SampleInterval:  50 * time.Millisecond,
		Radius:          18,
		HighlightColor:  color.NRGBA{R: 255, G: 221, B: 0, A: 96},
		LeftClickColor:  color.NRGBA{R: 255, G: 64, B: 64, A: 128},
		RightClickColor: color.NRGBA{R: 64, G: 128, B: 255, A: 128},
		RingWidth:       2,
	}
}

// Compositor records cursor events for one session.
type Compositor struct {
	renderer ports.Renderer
	opts     Options
	logger   ports.Logger

	mu       sync.Mutex
	events   []ports.CursorEvent
	paused   bool
	lastMove time.Duration
	hasMove  bool

	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a Compositor.
func New(renderer ports.Renderer, opts Options, logger ports.Logger) *Compositor {
	if opts.SampleInterval <= 0 {
		opts.SampleInterval = DefaultOptions().SampleInterval
	}
	return &Compositor{
		renderer: renderer,
		opts:     opts,
		logger:   logger.WithComponent("cursor"),
	}
}

// Start begins recording events from tracker until Stop or ctx ends.
func (c *Compositor) Start(ctx context.Context, tracker ports.CursorTracker, region frame.Rect) error {
	c.mu.Lock()
	if c.cancel != nil {
		c.mu.Unlock()
		return nil
	}
	trackCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	c.events = nil
	c.hasMove = false
	c.paused = false
	c.mu.Unlock()

	events, err := tracker.Track(trackCtx, region)
	if err != nil {
		cancel()
		c.mu.Lock()
		c.cancel = nil
		close(c.done)
		c.mu.Unlock()
		return err
	}

	go func() {
		defer close(c.done)
		for {
			select {
			case <-trackCtx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				c.Record(ev)
			}
		}
	}()

	c.logger.Debug("Tracking cursor in %s", region)
	return nil
}

// Record stores ev unless recording is paused or it is a move event closer
// than SampleInterval to the previous recorded move.
func (c *Compositor) Record(ev ports.CursorEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.paused {
		return
	}
	if ev.Kind == ports.CursorMove {
		if c.hasMove && ev.Timestamp-c.lastMove < c.opts.SampleInterval {
			return
		}
		c.lastMove = ev.Timestamp
		c.hasMove = true
	}
	c.events = append(c.events, ev)
}

// EventCount returns the number of events recorded so far.
func (c *Compositor) EventCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

// Pause drops events until Resume.
func (c *Compositor) Pause() {
	c.mu.Lock()
	c.paused = true
	c.mu.Unlock()
}

// Resume re-enables recording.
func (c *Compositor) Resume() {
	c.mu.Lock()
	c.paused = false
	c.mu.Unlock()
}

// Stop ends recording and returns the recorded events in arrival order.
func (c *Compositor) Stop() []ports.CursorEvent {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	events := c.events
	c.events = nil
	c.logger.Debug("Recorded %d cursor events", len(events))
	return events
}

// Render burns events onto frames using the compositor's renderer and options.
func (c *Compositor) Render(frames []frame.Frame, events []ports.CursorEvent, region frame.Rect, origin time.Duration) []frame.Frame {
	return Render(c.renderer, frames, events, region, origin, c.opts)
}
