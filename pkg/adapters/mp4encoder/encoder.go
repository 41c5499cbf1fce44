// Package mp4encoder encodes frame sequences as H.264 MP4 files.
//
// ffmpeg (libx264) produces a baseline Annex B elementary stream with access
// unit delimiters; the stream is split per picture and muxed with mp4ff into a
// fragmented MP4 that keeps every frame's own duration.
package mp4encoder

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"time"

	"github.com/user/gifcap/pkg/adapters/ffmpeg"
	"github.com/user/gifcap/pkg/frame"
	"github.com/user/gifcap/pkg/ports"
)

// Encoder implements ports.Encoder for MP4.
type Encoder struct {
	ffmpegPath string
	logger     ports.Logger
}

// New creates an MP4 encoder. ffmpegPath may be empty to search for ffmpeg.
func New(ffmpegPath string, logger ports.Logger) *Encoder {
	return &Encoder{ffmpegPath: ffmpegPath, logger: logger.WithComponent("mp4")}
}

// Format implements ports.Encoder.
func (e *Encoder) Format() ports.Format {
	return ports.FormatMP4
}

// Encode implements ports.Encoder.
func (e *Encoder) Encode(ctx context.Context, frames []frame.Frame, opts ports.EncodeOptions, progress ports.ProgressFunc) ([]byte, error) {
	if len(frames) == 0 {
		return nil, ports.NewEncodeError(ports.FormatMP4, ErrNoFrames)
	}
	path, err := ffmpeg.Find(e.ffmpegPath)
	if err != nil {
		return nil, ports.NewEncodeError(ports.FormatMP4, err)
	}
	report(progress, 0)

	frames = frame.FitFramesWidth(frames, opts.MaxWidth)
	// yuv420p needs even dimensions.
	w := (frames[0].Width() + 1) &^ 1
	h := (frames[0].Height() + 1) &^ 1

	args := []string{
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", w, h),
		"-r", fmt.Sprintf("%.3f", nominalFPS(frames)),
		"-i", "pipe:0",
		"-c:v", "libx264",
		"-preset", "medium",
		"-profile:v", "baseline",
		"-pix_fmt", "yuv420p",
		"-crf", fmt.Sprintf("%d", crf(opts.VideoQuality)),
		"-x264-params", "aud=1",
		"-f", "h264",
		"pipe:1",
	}

	reader := &frameReader{frames: frames, width: w, height: h, progress: func(done int) {
		report(progress, 0.8*float64(done)/float64(len(frames)))
	}}

	e.logger.Debug("Encoding %d frames at %dx%d, crf %d", len(frames), w, h, crf(opts.VideoQuality))
	stream, err := ffmpeg.Run(ctx, path, args, reader)
	if err != nil {
		return nil, ports.NewEncodeError(ports.FormatMP4, err)
	}

	units := splitAccessUnits(stream)
	if len(units) != len(frames) {
		return nil, ports.NewEncodeError(ports.FormatMP4,
			fmt.Errorf("%w: %d frames, %d access units", ErrFrameCountMismatch, len(frames), len(units)))
	}

	durations := make([]time.Duration, len(frames))
	for i, f := range frames {
		durations[i] = f.Duration
	}
	data, err := mux(units, durations, w, h)
	if err != nil {
		return nil, ports.NewEncodeError(ports.FormatMP4, err)
	}
	report(progress, 1)
	return data, nil
}

// crf maps a 0-100 quality knob onto x264's CRF range 51 (worst) to 18.
func crf(quality int) int {
	quality = max(0, min(100, quality))
	return 51 - quality*33/100
}

// nominalFPS is the input rate declared to ffmpeg. It only steers rate
// control; the muxer writes the real per-frame durations.
func nominalFPS(frames []frame.Frame) float64 {
	total := frame.TotalDuration(frames)
	if total <= 0 {
		return 10
	}
	return float64(len(frames)) / total.Seconds()
}

func report(progress ports.ProgressFunc, v float64) {
	if progress != nil {
		progress(v)
	}
}

// frameReader streams frames as raw RGBA padded to width x height.
type frameReader struct {
	frames        []frame.Frame
	width, height int
	next          int
	buf           []byte
	progress      func(done int)
}

func (r *frameReader) Read(p []byte) (int, error) {
	for len(r.buf) == 0 {
		if r.next >= len(r.frames) {
			return 0, io.EOF
		}
		r.buf = r.pixels(r.frames[r.next].Image)
		r.next++
		r.progress(r.next)
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}

func (r *frameReader) pixels(img *image.RGBA) []byte {
	b := img.Bounds()
	if b.Min == (image.Point{}) && b.Dx() == r.width && b.Dy() == r.height && img.Stride == 4*r.width {
		return img.Pix
	}
	canvas := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	draw.Draw(canvas, canvas.Bounds(), img, b.Min, draw.Src)
	return canvas.Pix
}

var _ ports.Encoder = (*Encoder)(nil)
