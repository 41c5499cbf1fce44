// Package gstcapture captures a screen region on X11 through a GStreamer
// ximagesrc pipeline.
package gstcapture

import (
	"context"
	"fmt"
	"image"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"

	"github.com/user/gifcap/pkg/frame"
	"github.com/user/gifcap/pkg/metrics"
	"github.com/user/gifcap/pkg/ports"
)

// Stream implements ports.CaptureStream.
type Stream struct {
	display string
	logger  ports.Logger

	mu       sync.Mutex
	elements *elements
	frames   chan ports.FrameSample
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	running  bool
	started  time.Time
	region   frame.Rect

	received atomic.Uint64
	dropped  atomic.Uint64
}

// New creates a stream for display. An empty display uses $DISPLAY.
func New(display string, logger ports.Logger) *Stream {
	return &Stream{
		display: display,
		logger:  logger.WithComponent("gstcapture"),
	}
}

// Start builds the pipeline and begins delivering samples.
func (s *Stream) Start(ctx context.Context, region frame.Rect, fps float64) (<-chan ports.FrameSample, error) {
	if region.Empty() {
		return nil, ports.ErrInvalidCropRegion
	}
	if fps <= 0 {
		return nil, fmt.Errorf("gstcapture: fps must be positive, got %v", fps)
	}
	if s.display == "" && os.Getenv("DISPLAY") == "" {
		return nil, ports.ErrNoDisplayFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil, fmt.Errorf("gstcapture: stream already running")
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	els, err := newPipeline(s.display, region, fps)
	if err != nil {
		if sentinel := classify(err.Error()); sentinel != nil {
			return nil, fmt.Errorf("%w: %v", sentinel, err)
		}
		return nil, err
	}

	s.elements = els
	s.frames = make(chan ports.FrameSample, 8)
	s.region = region
	s.received.Store(0)
	s.dropped.Store(0)

	els.sink.SetCallbacks(&app.SinkCallbacks{
		NewSampleFunc: s.onNewSample,
	})

	s.started = time.Now()
	s.running = true

	if err := els.pipeline.SetState(gst.StatePlaying); err != nil {
		s.running = false
		close(s.frames)
		return nil, fmt.Errorf("start pipeline: %w", err)
	}

	monitorCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.wg.Add(1)
	go s.monitor(monitorCtx, els.pipeline)

	s.logger.Debug("X11 capture started: region=%s fps=%.1f", region, fps)
	return s.frames, nil
}

// Stop halts the pipeline and closes the sample channel.
func (s *Stream) Stop() error {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	s.wg.Wait()
	return nil
}

// Dropped returns the samples discarded because the consumer was behind.
func (s *Stream) Dropped() uint64 {
	return s.dropped.Load()
}

// monitor watches the bus until ctx is cancelled or the pipeline ends,
// then tears the pipeline down.
func (s *Stream) monitor(ctx context.Context, pipeline *gst.Pipeline) {
	defer s.wg.Done()
	defer s.shutdown(pipeline)

	bus := pipeline.GetPipelineBus()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msg := bus.TimedPop(50 * time.Millisecond)
		if msg == nil {
			continue
		}

		switch msg.Type() {
		case gst.MessageEOS:
			s.logger.Debug("X11 capture reached end of stream")
			return
		case gst.MessageError:
			gerr := msg.ParseError()
			var err error = gerr
			if sentinel := classify(gerr.Error()); sentinel != nil {
				err = sentinel
			}
			s.logger.Error("X11 capture failed: %v", err)
			s.logger.Debug("pipeline debug: %s", gerr.DebugString())
			return
		}
	}
}

func (s *Stream) shutdown(pipeline *gst.Pipeline) {
	if err := pipeline.SetState(gst.StateNull); err != nil {
		s.logger.Warn("Failed to stop capture pipeline: %v", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.running = false
		close(s.frames)
	}
	s.elements = nil

	s.logger.Debug("X11 capture stopped: received=%d dropped=%d",
		s.received.Load(), s.dropped.Load())
}

// onNewSample copies the mapped buffer, since GStreamer reuses it, and
// sends it without blocking the streaming thread.
func (s *Stream) onNewSample(sink *app.Sink) gst.FlowReturn {
	sample := sink.PullSample()
	if sample == nil {
		return gst.FlowOK
	}
	buffer := sample.GetBuffer()
	if buffer == nil {
		return gst.FlowOK
	}

	mapInfo := buffer.Map(gst.MapRead)
	data := mapInfo.Bytes()
	img := toImage(data, s.region.Width, s.region.Height)
	buffer.Unmap()
	if img == nil {
		s.logger.Debug("short buffer: %d bytes", len(data))
		return gst.FlowOK
	}

	s.received.Add(1)
	out := ports.FrameSample{
		Image:     img,
		Timestamp: time.Since(s.started),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return gst.FlowEOS
	}
	select {
	case s.frames <- out:
	default:
		s.dropped.Add(1)
		metrics.CaptureSamplesTotal.WithLabelValues("backpressure").Inc()
	}
	return gst.FlowOK
}

// toImage copies packed RGBA rows into a new bitmap. It returns nil when
// data is shorter than one full frame.
func toImage(data []byte, width, height int) *image.RGBA {
	stride := width * 4
	if width <= 0 || height <= 0 || len(data) < stride*height {
		return nil
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	copy(img.Pix, data[:stride*height])
	return img
}

var _ ports.CaptureStream = (*Stream)(nil)
