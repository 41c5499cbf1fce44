// Package chromecapture records a web page through the Chrome DevTools
// screencast and crops every frame to the capture region.
package chromecapture

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/user/gifcap/pkg/frame"
	"github.com/user/gifcap/pkg/metrics"
	"github.com/user/gifcap/pkg/ports"
)

// ErrChromeNotFound is returned when no browser executable can be located.
var ErrChromeNotFound = errors.New("chromecapture: chrome not found: install Chrome/Chromium, set CHROME_PATH or pass --chrome-path")

// refreshRate is the compositor rate the screencast is sampled from.
const refreshRate = 60.0

// Options configures the browser.
type Options struct {
	URL        string
	ChromePath string
	Headless   bool
	// Quality is the JPEG quality of screencast frames (1..100).
	Quality int
}

// Stream implements ports.CaptureStream and ports.CursorTracker for a page.
type Stream struct {
	opts     Options
	renderer ports.Renderer
	logger   ports.Logger

	mu          sync.Mutex
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc
	frames      chan ports.FrameSample
	active      bool
	started     time.Time
	region      frame.Rect
	cursors     []chan ports.CursorEvent
}

// New creates a stream for opts.URL. Screencast frames are decoded with
// renderer.
func New(opts Options, renderer ports.Renderer, logger ports.Logger) *Stream {
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = 90
	}
	return &Stream{
		opts:     opts,
		renderer: renderer,
		logger:   logger.WithComponent("chromecapture"),
	}
}

// Start launches the browser sized to contain region, loads the page and
// starts the screencast.
func (s *Stream) Start(ctx context.Context, region frame.Rect, fps float64) (<-chan ports.FrameSample, error) {
	if region.Empty() || region.X < 0 || region.Y < 0 {
		return nil, ports.ErrInvalidCropRegion
	}
	if s.opts.URL == "" {
		return nil, fmt.Errorf("%w: no URL to record", ports.ErrNoDisplayFound)
	}
	chromePath := ResolveChromePath(s.opts.ChromePath)
	if chromePath == "" {
		return nil, ErrChromeNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return nil, fmt.Errorf("chromecapture: stream already running")
	}

	width, height := region.X+region.Width, region.Y+region.Height
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocatorOptions(chromePath, s.opts.Headless, width, height)...)
	browserCtx, cancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(browserCtx,
		emulation.SetDeviceMetricsOverride(int64(width), int64(height), 1, false),
		chromedp.Navigate(s.opts.URL),
	); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("open %s: %w", s.opts.URL, err)
	}

	s.allocCancel = allocCancel
	s.ctx = browserCtx
	s.cancel = cancel
	s.frames = make(chan ports.FrameSample, 8)
	s.region = region
	s.started = time.Now()
	s.active = true

	chromedp.ListenTarget(browserCtx, func(ev interface{}) {
		switch e := ev.(type) {
		case *page.EventScreencastFrame:
			s.onScreencastFrame(browserCtx, e)
		default:
			s.onTargetEvent(ev)
		}
	})

	if err := chromedp.Run(browserCtx,
		page.StartScreencast().
			WithFormat(page.ScreencastFormatJpeg).
			WithQuality(int64(s.opts.Quality)).
			WithEveryNthFrame(everyNth(fps)),
	); err != nil {
		s.teardown()
		return nil, fmt.Errorf("start screencast: %w", err)
	}

	s.logger.Debug("Screencast started: url=%s region=%s fps=%.1f", s.opts.URL, region, fps)
	return s.frames, nil
}

// Stop ends the screencast, closes the browser and every open channel.
func (s *Stream) Stop() error {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return nil
	}
	s.active = false
	browserCtx := s.ctx
	s.mu.Unlock()

	stopCtx, cancel := context.WithTimeout(browserCtx, 5*time.Second)
	if err := chromedp.Run(stopCtx, page.StopScreencast()); err != nil {
		s.logger.Debug("stop screencast: %v", err)
	}
	cancel()

	s.mu.Lock()
	s.teardown()
	s.mu.Unlock()
	s.logger.Debug("Screencast stopped")
	return nil
}

// teardown requires s.mu.
func (s *Stream) teardown() {
	s.active = false
	close(s.frames)
	for _, ch := range s.cursors {
		close(ch)
	}
	s.cursors = nil
	s.cancel()
	s.allocCancel()
}

func (s *Stream) onScreencastFrame(ctx context.Context, e *page.EventScreencastFrame) {
	go chromedp.Run(ctx, page.ScreencastFrameAck(e.SessionID))

	data, err := base64.StdEncoding.DecodeString(e.Data)
	if err != nil {
		s.logger.Debug("bad screencast payload: %v", err)
		return
	}
	img, err := decodeFrame(s.renderer, data, s.region)
	if err != nil {
		s.logger.Debug("screencast frame dropped: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	sample := ports.FrameSample{Image: img, Timestamp: time.Since(s.started)}
	select {
	case s.frames <- sample:
	default:
		metrics.CaptureSamplesTotal.WithLabelValues("backpressure").Inc()
	}
}

// decodeFrame decodes a screencast JPEG and crops it to region.
func decodeFrame(r ports.Renderer, data []byte, region frame.Rect) (*image.RGBA, error) {
	src, err := r.DecodeImage(data, ports.FormatJPEG)
	if err != nil {
		return nil, fmt.Errorf("decode jpeg: %w", err)
	}
	crop := region.Bounds().Intersect(src.Bounds())
	if crop.Empty() {
		return nil, ports.ErrInvalidCropRegion
	}
	return frame.Crop(frame.Clone(src), crop), nil
}

// everyNth converts a target rate into the screencast frame skip.
func everyNth(fps float64) int64 {
	if fps <= 0 || fps >= refreshRate {
		return 1
	}
	return int64(refreshRate/fps + 0.5)
}

func allocatorOptions(chromePath string, headless bool, width, height int) []chromedp.ExecAllocatorOption {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.ExecPath(chromePath),
		chromedp.WindowSize(width, height),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("disable-gpu", true),
	}
	if headless {
		opts = append(opts, chromedp.Flag("headless", "new"))
	}
	return opts
}

var _ ports.CaptureStream = (*Stream)(nil)
