// Package ffgifencoder encodes GIFs through ffmpeg's palettegen and
// paletteuse filters, which build one palette from the statistics of every
// frame instead of quantizing each frame on its own.
package ffgifencoder

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/user/gifcap/pkg/adapters/ffmpeg"
	"github.com/user/gifcap/pkg/adapters/gifencoder"
	"github.com/user/gifcap/pkg/frame"
	"github.com/user/gifcap/pkg/ports"
	"github.com/user/gifcap/pkg/quantize"
)

// ErrNoFrames is returned when there is nothing to encode.
var ErrNoFrames = errors.New("ffgifencoder: no frames to encode")

// Encoder implements ports.Encoder for GIF using ffmpeg.
type Encoder struct {
	ffmpegPath string
	logger     ports.Logger
}

// New creates an enhanced GIF encoder. ffmpegPath may be empty to search for
// ffmpeg.
func New(ffmpegPath string, logger ports.Logger) *Encoder {
	return &Encoder{ffmpegPath: ffmpegPath, logger: logger.WithComponent("ffgif")}
}

// Format implements ports.Encoder.
func (e *Encoder) Format() ports.Format {
	return ports.FormatGIF
}

// Encode implements ports.Encoder.
func (e *Encoder) Encode(ctx context.Context, frames []frame.Frame, opts ports.EncodeOptions, progress ports.ProgressFunc) ([]byte, error) {
	if len(frames) == 0 {
		return nil, ports.NewEncodeError(ports.FormatGIF, ErrNoFrames)
	}
	path, err := ffmpeg.Find(e.ffmpegPath)
	if err != nil {
		return nil, ports.NewEncodeError(ports.FormatGIF, err)
	}
	report(progress, 0)

	dir, err := os.MkdirTemp("", "gifcap_ffgif_*")
	if err != nil {
		return nil, ports.NewEncodeError(ports.FormatGIF, fmt.Errorf("create temp dir: %w", err))
	}
	defer os.RemoveAll(dir)

	frames = frame.FitFramesWidth(frames, opts.MaxWidth)
	list, err := writeFrames(ctx, dir, frames, func(done int) {
		report(progress, 0.5*float64(done)/float64(len(frames)))
	})
	if err != nil {
		return nil, ports.NewEncodeError(ports.FormatGIF, err)
	}

	args := []string{
		"-f", "concat",
		"-safe", "0",
		"-i", list,
		"-filter_complex", Filter(opts),
		"-fps_mode", "vfr",
		"-loop", fmt.Sprintf("%d", gifencoder.LoopCount(opts.LoopCount)),
		"-f", "gif",
		"pipe:1",
	}
	e.logger.Debug("Running ffmpeg palette pass over %d frames", len(frames))
	data, err := ffmpeg.Run(ctx, path, args, nil)
	if err != nil {
		return nil, ports.NewEncodeError(ports.FormatGIF, err)
	}
	report(progress, 1)
	return data, nil
}

// Filter returns the palettegen/paletteuse filter graph for opts.
func Filter(opts ports.EncodeOptions) string {
	colors := quantize.FromEncodeOptions(opts).EffectiveColors()
	dither := "none"
	if opts.Dither && opts.DitherStrength > 0 {
		dither = "floyd_steinberg"
	}
	return fmt.Sprintf(
		"[0:v]split[a][b];[a]palettegen=stats_mode=full:max_colors=%d[p];[b][p]paletteuse=dither=%s:diff_mode=rectangle",
		colors, dither)
}

// writeFrames writes every frame as PNG plus a concat demuxer script that
// carries the per-frame durations, and returns the script path.
func writeFrames(ctx context.Context, dir string, frames []frame.Frame, onDone func(int)) (string, error) {
	var script strings.Builder
	script.WriteString("ffconcat version 1.0\n")

	var last string
	for i, f := range frames {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		name := fmt.Sprintf("frame_%05d.png", i)
		if err := writePNG(filepath.Join(dir, name), f); err != nil {
			return "", err
		}
		fmt.Fprintf(&script, "file '%s'\nduration %.3f\n", name, f.Duration.Seconds())
		last = name
		onDone(i + 1)
	}
	// The concat demuxer ignores the duration of the final entry unless the
	// file is listed again.
	fmt.Fprintf(&script, "file '%s'\n", last)

	list := filepath.Join(dir, "frames.txt")
	if err := os.WriteFile(list, []byte(script.String()), 0o644); err != nil {
		return "", fmt.Errorf("write concat script: %w", err)
	}
	return list, nil
}

func writePNG(path string, f frame.Frame) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create frame file: %w", err)
	}
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(out, f.Image); err != nil {
		out.Close()
		return fmt.Errorf("encode frame png: %w", err)
	}
	return out.Close()
}

func report(progress ports.ProgressFunc, v float64) {
	if progress != nil {
		progress(v)
	}
}

var _ ports.Encoder = (*Encoder)(nil)
