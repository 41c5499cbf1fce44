// Package webpencoder encodes frame sequences as animated WebP through
// libvips (govips).
//
// Frames are stacked into one tall image whose page height and per-page
// delays tell libvips how to split it into animation frames.
package webpencoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"

	"github.com/davidbyttow/govips/v2/vips"

	"github.com/user/gifcap/pkg/frame"
	"github.com/user/gifcap/pkg/ports"
)

var (
	// ErrNoFrames is returned when there is nothing to encode.
	ErrNoFrames = errors.New("webpencoder: no frames to encode")

	// ErrUnavailable is returned when libvips cannot write WebP.
	ErrUnavailable = errors.New("webpencoder: libvips has no WebP support")
)

// Encoder implements ports.Encoder for WebP.
type Encoder struct {
	logger ports.Logger
}

// New creates a WebP encoder.
func New(logger ports.Logger) *Encoder {
	return &Encoder{logger: logger.WithComponent("webp")}
}

// Format implements ports.Encoder.
func (e *Encoder) Format() ports.Format {
	return ports.FormatWebP
}

// Encode implements ports.Encoder.
func (e *Encoder) Encode(ctx context.Context, frames []frame.Frame, opts ports.EncodeOptions, progress ports.ProgressFunc) ([]byte, error) {
	if len(frames) == 0 {
		return nil, ports.NewEncodeError(ports.FormatWebP, ErrNoFrames)
	}
	if !Available(e.logger) {
		return nil, ports.NewEncodeError(ports.FormatWebP, ErrUnavailable)
	}
	report(progress, 0)

	frames = frame.FitFramesWidth(frames, opts.MaxWidth)
	sheet := Stack(frames)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := (&png.Encoder{CompressionLevel: png.NoCompression}).Encode(&buf, sheet); err != nil {
		return nil, ports.NewEncodeError(ports.FormatWebP, fmt.Errorf("stack frames: %w", err))
	}
	report(progress, 0.3)

	ref, err := vips.NewImageFromBuffer(buf.Bytes())
	if err != nil {
		return nil, ports.NewEncodeError(ports.FormatWebP, fmt.Errorf("load frames into vips: %w", err))
	}
	defer ref.Close()

	pageHeight := frames[0].Height()
	if err := ref.SetPageHeight(pageHeight); err != nil {
		return nil, ports.NewEncodeError(ports.FormatWebP, fmt.Errorf("set page height: %w", err))
	}
	if err := ref.SetPageDelay(Delays(frames)); err != nil {
		return nil, ports.NewEncodeError(ports.FormatWebP, fmt.Errorf("set page delay: %w", err))
	}
	if err := ref.SetLoop(max(0, opts.LoopCount)); err != nil {
		return nil, ports.NewEncodeError(ports.FormatWebP, fmt.Errorf("set loop: %w", err))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	report(progress, 0.5)

	params := vips.NewWebpExportParams()
	params.Quality = max(1, min(100, opts.WebPQuality))
	params.Lossless = opts.WebPLossless
	params.StripMetadata = true
	data, _, err := ref.ExportWebp(params)
	if err != nil {
		return nil, ports.NewEncodeError(ports.FormatWebP, fmt.Errorf("export webp: %w", err))
	}
	report(progress, 1)
	return data, nil
}

// Stack draws frames top to bottom on one sheet. Every page has the size of
// the first frame.
func Stack(frames []frame.Frame) *image.RGBA {
	w, h := frames[0].Width(), frames[0].Height()
	sheet := image.NewRGBA(image.Rect(0, 0, w, h*len(frames)))
	for i, f := range frames {
		page := image.Rect(0, i*h, w, (i+1)*h)
		draw.Draw(sheet, page, f.Image, f.Image.Bounds().Min, draw.Src)
	}
	return sheet
}

// Delays returns the frame durations in milliseconds.
func Delays(frames []frame.Frame) []int {
	delays := make([]int, len(frames))
	for i, f := range frames {
		delays[i] = int(f.Duration.Milliseconds())
	}
	return delays
}

func report(progress ports.ProgressFunc, v float64) {
	if progress != nil {
		progress(v)
	}
}

var _ ports.Encoder = (*Encoder)(nil)
