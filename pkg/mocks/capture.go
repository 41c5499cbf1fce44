package mocks

import (
	"context"
	"sync"

	"github.com/user/gifcap/pkg/frame"
	"github.com/user/gifcap/pkg/ports"
)

// CaptureStream is a mock implementation of ports.CaptureStream.
// Tests push samples with Send after Start.
type CaptureStream struct {
	StartFunc func(ctx context.Context, region frame.Rect, fps float64) error

	mu          sync.Mutex
	ch          chan ports.FrameSample
	StartCalled bool
	StopCalled  bool
	Region      frame.Rect
	FPS         float64
}

func (m *CaptureStream) Start(ctx context.Context, region frame.Rect, fps float64) (<-chan ports.FrameSample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StartCalled = true
	m.Region = region
	m.FPS = fps
	if m.StartFunc != nil {
		if err := m.StartFunc(ctx, region, fps); err != nil {
			return nil, err
		}
	}
	m.ch = make(chan ports.FrameSample, 64)
	return m.ch, nil
}

func (m *CaptureStream) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StopCalled = true
	if m.ch != nil {
		close(m.ch)
		m.ch = nil
	}
	return nil
}

// Send delivers a sample. It returns false when the stream is not running.
func (m *CaptureStream) Send(sample ports.FrameSample) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ch == nil {
		return false
	}
	m.ch <- sample
	return true
}

var _ ports.CaptureStream = (*CaptureStream)(nil)

// CursorTracker is a mock implementation of ports.CursorTracker that replays
// a fixed event list.
type CursorTracker struct {
	Events []ports.CursorEvent
	Err    error
}

func (m *CursorTracker) Track(ctx context.Context, region frame.Rect) (<-chan ports.CursorEvent, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	ch := make(chan ports.CursorEvent, len(m.Events))
	for _, ev := range m.Events {
		ch <- ev
	}
	close(ch)
	return ch, nil
}

var _ ports.CursorTracker = (*CursorTracker)(nil)
