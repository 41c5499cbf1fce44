package mocks

import (
	"context"
	"sync"

	"github.com/user/gifcap/pkg/frame"
	"github.com/user/gifcap/pkg/ports"
)

// Encoder is a mock implementation of ports.Encoder.
type Encoder struct {
	FormatValue ports.Format
	EncodeFunc  func(ctx context.Context, frames []frame.Frame, opts ports.EncodeOptions, progress ports.ProgressFunc) ([]byte, error)

	mu    sync.Mutex
	Calls []EncodeCall
}

// EncodeCall records a call to Encode.
type EncodeCall struct {
	FrameCount int
	Options    ports.EncodeOptions
}

func (m *Encoder) Format() ports.Format {
	if m.FormatValue == "" {
		return ports.FormatGIF
	}
	return m.FormatValue
}

func (m *Encoder) Encode(ctx context.Context, frames []frame.Frame, opts ports.EncodeOptions, progress ports.ProgressFunc) ([]byte, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, EncodeCall{FrameCount: len(frames), Options: opts})
	m.mu.Unlock()

	if m.EncodeFunc != nil {
		return m.EncodeFunc(ctx, frames, opts, progress)
	}
	if progress != nil {
		progress(1)
	}
	// GIF89a header
	return []byte("GIF89a"), nil
}

// CallCount returns the number of Encode calls.
func (m *Encoder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastOptions returns the options of the most recent call.
func (m *Encoder) LastOptions() ports.EncodeOptions {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return ports.EncodeOptions{}
	}
	return m.Calls[len(m.Calls)-1].Options
}

var _ ports.Encoder = (*Encoder)(nil)
