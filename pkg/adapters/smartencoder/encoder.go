// Package smartencoder selects the encoder backend for a requested format,
// falling back to the baseline GIF encoder when an optional backend is
// missing.
package smartencoder

import (
	"context"

	"github.com/user/gifcap/pkg/adapters/apngencoder"
	"github.com/user/gifcap/pkg/adapters/ffgifencoder"
	"github.com/user/gifcap/pkg/adapters/ffmpeg"
	"github.com/user/gifcap/pkg/adapters/gifencoder"
	"github.com/user/gifcap/pkg/adapters/mp4encoder"
	"github.com/user/gifcap/pkg/adapters/webpencoder"
	"github.com/user/gifcap/pkg/metrics"
	"github.com/user/gifcap/pkg/ports"
	"github.com/user/gifcap/pkg/quantize"
)

// Backend represents the encoding backend used.
type Backend string

const (
	// BackendGIF is the in-process quantizing GIF encoder.
	BackendGIF Backend = "gif"
	// BackendFFmpegGIF is the ffmpeg palettegen/paletteuse GIF encoder.
	BackendFFmpegGIF Backend = "ffmpeg-gif"
	// BackendVips is libvips WebP encoding.
	BackendVips Backend = "vips"
	// BackendAPNG is the in-process APNG writer.
	BackendAPNG Backend = "apng"
	// BackendFFmpegX264 is ffmpeg libx264 with mp4ff muxing.
	BackendFFmpegX264 Backend = "ffmpeg-libx264"
)

// Capabilities records which optional backends the host supports.
// It is computed once by Probe and passed to NewSelector.
type Capabilities struct {
	// FFmpegPath is the resolved ffmpeg binary, empty when not found.
	FFmpegPath string
	// LibX264 is true when ffmpeg was built with libx264.
	LibX264 bool
	// WebP is true when libvips can write WebP.
	WebP bool
}

// FFmpeg reports whether an ffmpeg binary was found.
func (c Capabilities) FFmpeg() bool {
	return c.FFmpegPath != ""
}

// Probe detects the optional backends. ffmpegPath may be empty to search
// the usual locations.
func Probe(ctx context.Context, ffmpegPath string, logger ports.Logger) Capabilities {
	log := logger.WithComponent("probe")
	var caps Capabilities

	if path, err := ffmpeg.Find(ffmpegPath); err == nil {
		caps.FFmpegPath = path
		caps.LibX264 = ffmpeg.HasEncoder(ctx, path, "libx264")
	} else {
		log.Debug("ffmpeg not found: %v", err)
	}
	caps.WebP = webpencoder.Available(logger)

	log.Debug("Capabilities: ffmpeg=%q libx264=%v webp=%v", caps.FFmpegPath, caps.LibX264, caps.WebP)
	return caps
}

// Info contains information about the selected encoder.
type Info struct {
	// Format is the format the encoder actually produces.
	Format ports.Format
	// Backend is the encoding backend being used.
	Backend Backend
	// RequestedFormat is the format that was originally requested.
	RequestedFormat ports.Format
	// FallbackUsed indicates whether a fallback occurred.
	FallbackUsed bool
}

// Options configures the selector.
type Options struct {
	// Engine quantizes frames for the baseline GIF encoder. nil uses the
	// default engine.
	Engine *quantize.Engine
	// Workers bounds parallel frame quantization. 0 uses all CPUs.
	Workers int
	// Logger is used to log fallback warnings.
	Logger ports.Logger
}

// Selector maps encode options to an encoder.
type Selector struct {
	caps   Capabilities
	opts   Options
	logger ports.Logger
}

// NewSelector creates a selector over probed capabilities.
func NewSelector(caps Capabilities, opts Options) *Selector {
	if opts.Engine == nil {
		opts.Engine = quantize.NewEngine()
	}
	return &Selector{caps: caps, opts: opts, logger: opts.Logger}
}

// Capabilities returns the capabilities the selector was built with.
func (s *Selector) Capabilities() Capabilities {
	return s.caps
}

// Select returns the encoder for opts.Format.
//
// The selection flow:
//  1. GIF: ffmpeg palettegen when Enhanced is set and ffmpeg is present,
//     the in-process encoder otherwise.
//  2. WebP: libvips, or baseline GIF when libvips has no WebP support.
//  3. APNG: always in-process.
//  4. MP4: ffmpeg with libx264. There is no fallback; a missing ffmpeg is
//     an encode error.
func (s *Selector) Select(opts ports.EncodeOptions) (ports.Encoder, Info, error) {
	info := Info{RequestedFormat: opts.Format}

	switch opts.Format {
	case ports.FormatWebP:
		if s.caps.WebP {
			return webpencoder.New(s.logger), s.info(info, ports.FormatWebP, BackendVips), nil
		}
		return s.fallback(info, "libvips WebP support not available")

	case ports.FormatAPNG:
		return apngencoder.New(s.logger), s.info(info, ports.FormatAPNG, BackendAPNG), nil

	case ports.FormatMP4:
		if !s.caps.FFmpeg() {
			return nil, Info{}, ports.NewEncodeError(ports.FormatMP4, ffmpeg.ErrFFmpegNotFound)
		}
		if !s.caps.LibX264 {
			s.logger.Warn("ffmpeg at %s may lack libx264", s.caps.FFmpegPath)
		}
		return mp4encoder.New(s.caps.FFmpegPath, s.logger), s.info(info, ports.FormatMP4, BackendFFmpegX264), nil

	default:
		info.RequestedFormat = ports.FormatGIF
		if opts.Enhanced {
			if s.caps.FFmpeg() {
				return ffgifencoder.New(s.caps.FFmpegPath, s.logger), s.info(info, ports.FormatGIF, BackendFFmpegGIF), nil
			}
			s.logger.Warn("Enhanced GIF needs ffmpeg, using the built-in encoder")
			metrics.EncodeFallbacksTotal.WithLabelValues(string(BackendFFmpegGIF), string(BackendGIF)).Inc()
		}
		return s.baseline(), s.info(info, ports.FormatGIF, BackendGIF), nil
	}
}

// baseline returns the in-process GIF encoder.
func (s *Selector) baseline() ports.Encoder {
	return gifencoder.New(s.opts.Engine, s.logger, s.opts.Workers)
}

func (s *Selector) fallback(info Info, reason string) (ports.Encoder, Info, error) {
	s.logger.Warn("%s format not available (%s), falling back to GIF", info.RequestedFormat, reason)
	metrics.EncodeFallbacksTotal.WithLabelValues(string(info.RequestedFormat), string(ports.FormatGIF)).Inc()

	info.Format = ports.FormatGIF
	info.Backend = BackendGIF
	info.FallbackUsed = true
	return s.baseline(), info, nil
}

func (s *Selector) info(info Info, format ports.Format, backend Backend) Info {
	info.Format = format
	info.Backend = backend
	return info
}
