package ports

import (
	"context"
	"fmt"
	"strings"

	"github.com/user/gifcap/pkg/frame"
)

// Format identifies an output container.
type Format string

const (
	FormatGIF  Format = "gif"
	FormatWebP Format = "webp"
	FormatAPNG Format = "apng"
	FormatMP4  Format = "mp4"
)

// Extension returns the file extension used for the format, with the dot.
func (f Format) Extension() string {
	switch f {
	case FormatWebP:
		return ".webp"
	case FormatAPNG:
		return ".png"
	case FormatMP4:
		return ".mp4"
	default:
		return ".gif"
	}
}

// ParseFormat parses a format name or file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(s), ".") {
	case "gif":
		return FormatGIF, nil
	case "webp":
		return FormatWebP, nil
	case "apng", "png":
		return FormatAPNG, nil
	case "mp4":
		return FormatMP4, nil
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// QuantizeMethod selects the palette construction algorithm.
type QuantizeMethod string

const (
	MethodAdaptive QuantizeMethod = "adaptive"
	MethodLearned  QuantizeMethod = "learned-palette"
	MethodOctree   QuantizeMethod = "octree"
)

// ParseQuantizeMethod parses a method name; "neuquant" and "kmeans" are
// accepted for the learned palette.
func ParseQuantizeMethod(s string) (QuantizeMethod, error) {
	switch strings.ToLower(s) {
	case "adaptive", "mediancut", "median-cut":
		return MethodAdaptive, nil
	case "learned-palette", "learned", "neuquant", "kmeans":
		return MethodLearned, nil
	case "octree":
		return MethodOctree, nil
	}
	return "", fmt.Errorf("unknown quantization method %q", s)
}

// MaxPaletteSize is the largest palette an indexed format supports.
const MaxPaletteSize = 256

// EncodeOptions is the immutable configuration of one encode job.
type EncodeOptions struct {
	Format Format

	// Quantization (GIF)
	MaxColors      int            // 2-256
	Dither         bool           // Error diffusion on/off
	DitherStrength float64        // 0-1
	CenterFocused  bool           // Bias diffusion toward the frame center
	Method         QuantizeMethod // Palette construction algorithm
	Speed          int            // 1-10, higher is faster and coarser
	Quality        int            // 0-100
	SkipQuantize   bool           // Pass exact colors through when MaxColors is 256
	Enhanced       bool           // Prefer the cross-frame GIF backend when available

	// Geometry and size
	MaxWidth  int // 0 = no limit
	MaxSizeKB int // 0 = unlimited

	// Playback
	LoopCount int // 0 = forever, n = play n times

	// Per-format knobs
	WebPQuality  int  // 0-100 (lossy)
	WebPLossless bool
	VideoQuality int  // 0-100
}

// DefaultEncodeOptions returns options for a full-palette dithered GIF.
func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{
		Format:         FormatGIF,
		MaxColors:      256,
		Dither:         true,
		DitherStrength: 1.0,
		Method:         MethodAdaptive,
		Speed:          3,
		Quality:        100,
		WebPQuality:    80,
		VideoQuality:   70,
	}
}

// ProgressFunc receives encode progress in [0,1].
type ProgressFunc func(progress float64)

// Encoder turns a frame list into the bytes of one output format.
type Encoder interface {
	// Format returns the container the encoder produces.
	Format() Format

	// Encode encodes frames. progress may be nil; when set it receives
	// non-decreasing values in [0,1]. Cancelling ctx aborts the encode.
	Encode(ctx context.Context, frames []frame.Frame, opts EncodeOptions, progress ProgressFunc) ([]byte, error)
}
