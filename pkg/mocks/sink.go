package mocks

import (
	"image"
	"sync"

	"github.com/user/gifcap/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	SessionJSON    []byte
	AttemptsJSON   []byte
	CapturedFrames map[int]image.Image
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{
		enabled:        enabled,
		CapturedFrames: make(map[int]image.Image),
	}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveSessionJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SessionJSON = data
	return nil
}

func (m *DebugSink) SaveCapturedFrame(index int, img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CapturedFrames[index] = img
	return nil
}

func (m *DebugSink) SaveAttemptsJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AttemptsJSON = data
	return nil
}

// FrameCount returns the number of captured frames saved.
func (m *DebugSink) FrameCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.CapturedFrames)
}

var _ ports.DebugSink = (*DebugSink)(nil)
