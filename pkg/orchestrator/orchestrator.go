// Package orchestrator coordinates capture, editing and export.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/user/gifcap/pkg/budget"
	"github.com/user/gifcap/pkg/capture"
	"github.com/user/gifcap/pkg/frame"
	"github.com/user/gifcap/pkg/job"
	"github.com/user/gifcap/pkg/pipeline"
	"github.com/user/gifcap/pkg/ports"
	"github.com/user/gifcap/pkg/sequence"
)

// Orchestrator hands captures to the editor or straight to an export.
type Orchestrator struct {
	encodeStage pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeResult]
	fs          ports.FileSystem
	sink        ports.DebugSink
	logger      ports.Logger
}

// New creates a new Orchestrator.
func New(
	encodeStage pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeResult],
	fs ports.FileSystem,
	sink ports.DebugSink,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		encodeStage: encodeStage,
		fs:          fs,
		sink:        sink,
		logger:      logger,
	}
}

// ExportResult describes a written or buffered artifact.
type ExportResult struct {
	// Path is where the artifact was written; empty for buffers.
	Path string
	Data []byte

	Format          ports.Format
	RequestedFormat ports.Format
	Backend         string
	FallbackUsed    bool

	Bytes    int
	Fits     bool
	Options  ports.EncodeOptions
	Attempts []budget.Attempt

	FrameCount int
	Duration   time.Duration
	Elapsed    time.Duration
}

// Record runs session over region until stop is closed, ctx is done or the
// session stops itself at a capture limit.
func (o *Orchestrator) Record(ctx context.Context, session *capture.Session, region frame.Rect, stop <-chan struct{}) (capture.Capture, error) {
	if err := session.Start(ctx, region); err != nil {
		return capture.Capture{}, fmt.Errorf("record: %w", err)
	}

	var (
		result capture.Capture
		err    error
	)
	select {
	case out := <-session.AutoStopped():
		o.logger.Info("Capture limit reached, recording stopped")
		result, err = out.Capture, out.Err
	case <-stop:
		result, err = stopSession(session)
	case <-ctx.Done():
		result, err = stopSession(session)
	}
	if err != nil {
		return capture.Capture{}, fmt.Errorf("record: %w", err)
	}

	o.saveDebugCapture(result)
	return result, nil
}

// stopSession stops session. When a tick already stopped it at a limit, the
// queued automatic result is returned instead.
func stopSession(session *capture.Session) (capture.Capture, error) {
	result, err := session.Stop(context.Background())
	if errors.Is(err, capture.ErrInvalidTransition) {
		select {
		case out := <-session.AutoStopped():
			return out.Capture, out.Err
		default:
		}
	}
	return result, err
}

func (o *Orchestrator) saveDebugCapture(c capture.Capture) {
	if !o.sink.Enabled() {
		return
	}
	meta := struct {
		SessionID string              `json:"sessionId"`
		Region    frame.Rect          `json:"region"`
		Frames    int                 `json:"frames"`
		ElapsedMs int64               `json:"elapsedMs"`
		AutoStop  bool                `json:"autoStop"`
		Stats     capture.SourceStats `json:"stats"`
	}{c.SessionID, c.Region, len(c.Frames), c.Elapsed.Milliseconds(), c.AutoStop, c.Stats}
	if data, err := json.MarshalIndent(meta, "", "  "); err == nil {
		if err := o.sink.SaveSessionJSON(data); err != nil {
			o.logger.Warn("Failed to save debug output: %v", err)
		}
	}
	for i, f := range c.Frames {
		if err := o.sink.SaveCapturedFrame(i, f.Image); err != nil {
			o.logger.Warn("Failed to save debug output: %v", err)
			return
		}
	}
}

// OpenEditor applies the editor memory policy to a capture and wraps the
// frames in an editable sequence.
func (o *Orchestrator) OpenEditor(c capture.Capture) (*sequence.Sequence, error) {
	frames, report := capture.DefaultMemoryPolicy().Apply(c.Frames)
	if report.Downscaled > 0 {
		o.logger.Info("Downscaled %d frames to fit the editor memory limit", report.Downscaled)
	}
	seq, err := sequence.New(frames)
	if err != nil {
		return nil, fmt.Errorf("open editor: %w", err)
	}
	return seq, nil
}

// DirectSave encodes a capture without editing and writes it to path.
func (o *Orchestrator) DirectSave(ctx context.Context, c capture.Capture, opts ports.EncodeOptions, path string, progress ports.ProgressFunc) (ExportResult, error) {
	if len(c.Frames) == 0 {
		return ExportResult{}, ports.ErrEmptyCapture
	}
	return o.Export(ctx, c.Frames, opts, path, progress)
}

// ExportAsync starts an export job. frames must not be modified while the
// job runs; pass Sequence.Snapshot.
func (o *Orchestrator) ExportAsync(ctx context.Context, frames []frame.Frame, opts ports.EncodeOptions, path string) *job.Job[ExportResult] {
	return job.Start(ctx, func(ctx context.Context, progress ports.ProgressFunc) (ExportResult, error) {
		return o.Export(ctx, frames, opts, path, progress)
	})
}

// Export encodes frames and writes the artifact. After a backend fallback
// the file extension follows the produced format.
func (o *Orchestrator) Export(ctx context.Context, frames []frame.Frame, opts ports.EncodeOptions, path string, progress ports.ProgressFunc) (ExportResult, error) {
	result, err := o.encode(ctx, frames, opts, progress)
	if err != nil {
		return result, err
	}

	result.Path = OutputPath(path, result.Format)
	if result.Path != path {
		o.logger.Info("Saving as %s instead of %s", result.Path, path)
	}
	if err := o.fs.WriteFile(result.Path, result.Data); err != nil {
		o.logger.Error("Failed to write output: %s", err)
		return result, fmt.Errorf("write output: %w", err)
	}

	o.logger.Info("Saved %s (%d KB)", result.Path, (result.Bytes+1023)/1024)
	return result, nil
}

// ExportToBuffer encodes frames as GIF in memory, for clipboard-style
// consumers that expect a GIF regardless of the configured format.
func (o *Orchestrator) ExportToBuffer(ctx context.Context, frames []frame.Frame, opts ports.EncodeOptions, progress ports.ProgressFunc) (ExportResult, error) {
	opts.Format = ports.FormatGIF
	return o.encode(ctx, frames, opts, progress)
}

func (o *Orchestrator) encode(ctx context.Context, frames []frame.Frame, opts ports.EncodeOptions, progress ports.ProgressFunc) (ExportResult, error) {
	o.logger.Info("Encoding %d frames as %s", len(frames), opts.Format)

	encoded, err := o.encodeStage.Execute(ctx, pipeline.EncodeInput{
		Frames:   frames,
		Options:  opts,
		Progress: progress,
	})
	if err != nil {
		o.logger.Error("Failed to encode: %s", err)
		return ExportResult{}, fmt.Errorf("encode stage: %w", err)
	}
	if encoded.FallbackUsed {
		o.logger.Warn("%s output is not available, saved as %s", encoded.RequestedFormat, encoded.Format)
	}

	return ExportResult{
		Data:            encoded.Data,
		Format:          encoded.Format,
		RequestedFormat: encoded.RequestedFormat,
		Backend:         encoded.Backend,
		FallbackUsed:    encoded.FallbackUsed,
		Bytes:           len(encoded.Data),
		Fits:            encoded.Fits,
		Options:         encoded.Options,
		Attempts:        encoded.Attempts,
		FrameCount:      len(frames),
		Duration:        frame.TotalDuration(frames),
		Elapsed:         encoded.Elapsed,
	}, nil
}

// OutputPath returns path with the extension of format. A path without an
// extension gets one appended; ".png" and ".apng" both count as APNG.
func OutputPath(path string, format ports.Format) string {
	ext := filepath.Ext(path)
	want := format.Extension()
	if strings.EqualFold(ext, want) || (format == ports.FormatAPNG && strings.EqualFold(ext, ".apng")) {
		return path
	}
	if ext == "" {
		return path + want
	}
	return strings.TrimSuffix(path, ext) + want
}
