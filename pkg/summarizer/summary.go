// Package summarizer provides summary generation for capture and export runs.
package summarizer

import (
	"time"

	"github.com/user/gifcap/pkg/budget"
)

// Summary contains all data collected during one run.
type Summary struct {
	// Metadata
	GeneratedAt time.Time

	// Where the frames came from
	Source SourceInfo

	// Capture statistics (empty for imports)
	Capture CaptureInfo

	// Applied edit script
	Edits EditInfo

	// Encode settings and outcome
	Output OutputInfo

	// Size budget attempts
	Attempts []budget.Attempt

	// Container inspection (MP4 only)
	Video *VideoInfo
}

// SourceInfo describes the input.
type SourceInfo struct {
	Kind      string // "x11", "url" or "file"
	Input     string // URL or input path
	Region    string
	SessionID string
}

// CaptureInfo contains capture counters.
type CaptureInfo struct {
	Frames     int
	Duplicates int
	Dropped    int
	Elapsed    time.Duration
	AutoStop   bool
}

// EditInfo describes the edits applied before export.
type EditInfo struct {
	Script       string
	FramesBefore int
	FramesAfter  int
}

// OutputInfo describes the artifact.
type OutputInfo struct {
	Path            string
	Format          string
	RequestedFormat string
	Backend         string
	FallbackUsed    bool

	FrameCount int
	Duration   time.Duration
	FileSize   int64
	MaxSizeKB  int
	Fits       bool

	Colors    int
	Method    string
	Dither    bool
	LoopCount int
	Elapsed   time.Duration
}

// VideoInfo contains what an MP4 container reports about itself.
type VideoInfo struct {
	Codec     string
	Width     int
	Height    int
	Samples   int
	Keyframes int
	Duration  time.Duration
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithSource sets source information.
func (b *Builder) WithSource(source SourceInfo) *Builder {
	b.summary.Source = source
	return b
}

// WithCapture sets capture counters.
func (b *Builder) WithCapture(capture CaptureInfo) *Builder {
	b.summary.Capture = capture
	return b
}

// WithEdits records the applied edit script.
func (b *Builder) WithEdits(script string, before, after int) *Builder {
	b.summary.Edits = EditInfo{
		Script:       script,
		FramesBefore: before,
		FramesAfter:  after,
	}
	return b
}

// WithOutput sets output information.
func (b *Builder) WithOutput(output OutputInfo) *Builder {
	b.summary.Output = output
	return b
}

// WithAttempts sets the size budget attempts.
func (b *Builder) WithAttempts(attempts []budget.Attempt) *Builder {
	b.summary.Attempts = attempts
	return b
}

// WithVideo sets container inspection results.
func (b *Builder) WithVideo(video VideoInfo) *Builder {
	b.summary.Video = &video
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
