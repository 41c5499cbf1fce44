// Package capture turns a live stream of screen samples into frames.
//
// FrameSource deduplicates and buffers samples under hard limits; Session is
// the state machine that drives a stream, a FrameSource and the optional
// cursor compositor through one recording.
package capture

import (
	"sync"
	"time"

	"github.com/user/gifcap/pkg/frame"
	"github.com/user/gifcap/pkg/metrics"
	"github.com/user/gifcap/pkg/ports"
)

// SourceConfig configures a FrameSource.
type SourceConfig struct {
	FPS         float64       // Target rate; sets the first frame's duration
	Dedupe      bool          // Drop samples whose fingerprint repeats
	MaxFrames   int           // 0 = unlimited
	MaxDuration time.Duration // Ceiling on active elapsed sample time, 0 = unlimited
}

// SourceStats counts what happened to ingested samples.
type SourceStats struct {
	Kept          int
	Duplicates    int
	DroppedPaused int
	DroppedLimit  int
	Duration      time.Duration // Summed kept frame durations
	Elapsed       time.Duration // Sample time seen while not paused
}

// FrameSource buffers deduplicated frames from a capture stream.
// Ingest runs on the producer goroutine, Harvest on the control path.
type FrameSource struct {
	cfg SourceConfig

	mu        sync.Mutex
	frames    []frame.Frame
	paused    bool
	harvested bool
	limitHit  bool

	hasLast         bool
	lastFingerprint uint64
	lastTimestamp   time.Duration
	origin          time.Duration
	stats           SourceStats

	// Elapsed tracking covers duplicates too and restarts after a pause.
	seenValid bool
	lastSeen  time.Duration

	limit     chan struct{}
	limitOnce sync.Once
}

// NewFrameSource creates a FrameSource.
func NewFrameSource(cfg SourceConfig) *FrameSource {
	if cfg.FPS <= 0 {
		cfg.FPS = 10
	}
	return &FrameSource{
		cfg:   cfg,
		limit: make(chan struct{}),
	}
}

// Ingest consumes one sample and takes ownership of its bitmap.
func (s *FrameSource) Ingest(sample ports.FrameSample) {
	if sample.Image == nil {
		return
	}

	var fp uint64
	if s.cfg.Dedupe {
		fp = frame.Fingerprint(sample.Image)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.harvested:
		return
	case s.paused:
		s.stats.DroppedPaused++
		metrics.CaptureSamplesTotal.WithLabelValues("paused").Inc()
		return
	case s.limitHit:
		s.stats.DroppedLimit++
		metrics.CaptureSamplesTotal.WithLabelValues("limit").Inc()
		return
	}

	if s.seenValid && sample.Timestamp > s.lastSeen {
		s.stats.Elapsed += sample.Timestamp - s.lastSeen
	}
	s.seenValid = true
	s.lastSeen = sample.Timestamp

	// Samples at or past the duration ceiling fall outside the recording.
	if s.cfg.MaxDuration > 0 && s.stats.Elapsed >= s.cfg.MaxDuration {
		s.stats.DroppedLimit++
		metrics.CaptureSamplesTotal.WithLabelValues("limit").Inc()
		s.hitLimitLocked()
		return
	}

	if s.cfg.Dedupe && s.hasLast && fp == s.lastFingerprint {
		s.stats.Duplicates++
		metrics.CaptureSamplesTotal.WithLabelValues("duplicate").Inc()
		return
	}

	var d time.Duration
	if !s.hasLast {
		d = time.Duration(float64(time.Second) / s.cfg.FPS)
		s.origin = sample.Timestamp
	} else {
		d = sample.Timestamp - s.lastTimestamp
		if d > frame.MaxSampleGap {
			d = frame.MaxSampleGap
		}
	}

	f := frame.New(sample.Image, d)
	s.frames = append(s.frames, f)
	s.hasLast = true
	s.lastFingerprint = fp
	s.lastTimestamp = sample.Timestamp
	s.stats.Kept++
	s.stats.Duration += f.Duration
	metrics.CaptureSamplesTotal.WithLabelValues("kept").Inc()
	metrics.CaptureFramesBuffered.Set(float64(len(s.frames)))

	if s.cfg.MaxFrames > 0 && len(s.frames) >= s.cfg.MaxFrames {
		s.hitLimitLocked()
	}
}

func (s *FrameSource) hitLimitLocked() {
	s.limitHit = true
	s.limitOnce.Do(func() { close(s.limit) })
}

// SetPaused toggles discarding of incoming samples. Fingerprint and
// timestamp state are left untouched; the paused span does not count toward
// the duration ceiling.
func (s *FrameSource) SetPaused(paused bool) {
	s.mu.Lock()
	s.paused = paused
	if !paused {
		s.seenValid = false
	}
	s.mu.Unlock()
}

// LimitReached is closed once the frame or duration ceiling is hit.
func (s *FrameSource) LimitReached() <-chan struct{} {
	return s.limit
}

// LimitHit reports whether a ceiling has been reached.
func (s *FrameSource) LimitHit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.limitHit
}

// Harvest moves the buffered frames out. Later calls return nil and later
// samples are ignored.
func (s *FrameSource) Harvest() []frame.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	frames := s.frames
	s.frames = nil
	s.harvested = true
	metrics.CaptureFramesBuffered.Set(0)
	return frames
}

// Origin returns the timestamp of the first kept sample.
func (s *FrameSource) Origin() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.origin
}

// Stats returns a snapshot of the counters.
func (s *FrameSource) Stats() SourceStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}
