// Package gifcap provides a high-level API for building export options.
package gifcap

import (
	"github.com/user/gifcap/pkg/ports"
)

// QualityPreset represents an export quality preset name.
type QualityPreset string

const (
	QualityLow    QualityPreset = "low"
	QualityMedium QualityPreset = "medium"
	QualityHigh   QualityPreset = "high"
)

// ParseQualityPreset returns the preset for name, or false.
func ParseQualityPreset(name string) (QualityPreset, bool) {
	switch p := QualityPreset(name); p {
	case QualityLow, QualityMedium, QualityHigh:
		return p, true
	}
	return "", false
}

// QualitySettings contains the knobs a preset controls.
type QualitySettings struct {
	MaxColors      int
	Dither         bool
	DitherStrength float64
	Speed          int // 1-10, higher is faster
	Quality        int // 0-100
	WebPQuality    int // 0-100
	VideoQuality   int // 0-100
}

// GetQualitySettings returns quality settings for the given preset.
func GetQualitySettings(preset QualityPreset) QualitySettings {
	switch preset {
	case QualityLow:
		return QualitySettings{
			MaxColors:    64,
			Speed:        8,
			Quality:      60,
			WebPQuality:  55,
			VideoQuality: 45,
		}
	case QualityHigh:
		return QualitySettings{
			MaxColors:      256,
			Dither:         true,
			DitherStrength: 1.0,
			Speed:          1,
			Quality:        100,
			WebPQuality:    90,
			VideoQuality:   85,
		}
	default: // medium
		return QualitySettings{
			MaxColors:      128,
			Dither:         true,
			DitherStrength: 0.8,
			Speed:          4,
			Quality:        85,
			WebPQuality:    75,
			VideoQuality:   65,
		}
	}
}

// OptionsBuilder provides a fluent interface for building EncodeOptions.
type OptionsBuilder struct {
	opts ports.EncodeOptions
}

// NewOptionsBuilder creates a builder starting from ports.DefaultEncodeOptions.
func NewOptionsBuilder() *OptionsBuilder {
	return &OptionsBuilder{opts: ports.DefaultEncodeOptions()}
}

// FromOptions creates a builder starting from opts.
func FromOptions(opts ports.EncodeOptions) *OptionsBuilder {
	return &OptionsBuilder{opts: opts}
}

// Build returns the final options with every knob clamped into range.
func (b *OptionsBuilder) Build() ports.EncodeOptions {
	o := b.opts

	if o.Format == "" {
		o.Format = ports.FormatGIF
	}
	if o.Method == "" {
		o.Method = ports.MethodAdaptive
	}
	o.MaxColors = clamp(o.MaxColors, 2, ports.MaxPaletteSize)
	o.DitherStrength = min(max(o.DitherStrength, 0), 1)
	o.Speed = clamp(o.Speed, 1, 10)
	o.Quality = clamp(o.Quality, 0, 100)
	o.WebPQuality = clamp(o.WebPQuality, 0, 100)
	o.VideoQuality = clamp(o.VideoQuality, 0, 100)
	o.MaxWidth = max(o.MaxWidth, 0)
	o.MaxSizeKB = max(o.MaxSizeKB, 0)
	o.LoopCount = max(o.LoopCount, 0)

	return o
}

// WithFormat sets the output format.
func (b *OptionsBuilder) WithFormat(f ports.Format) *OptionsBuilder {
	b.opts.Format = f
	return b
}

// WithQualityPreset applies a quality preset (low, medium, high).
func (b *OptionsBuilder) WithQualityPreset(preset QualityPreset) *OptionsBuilder {
	s := GetQualitySettings(preset)
	b.opts.MaxColors = s.MaxColors
	b.opts.Dither = s.Dither
	b.opts.DitherStrength = s.DitherStrength
	b.opts.Speed = s.Speed
	b.opts.Quality = s.Quality
	b.opts.WebPQuality = s.WebPQuality
	b.opts.VideoQuality = s.VideoQuality
	return b
}

// WithColors sets the palette size ceiling (2-256).
func (b *OptionsBuilder) WithColors(n int) *OptionsBuilder {
	b.opts.MaxColors = n
	return b
}

// WithMethod sets the quantization method.
func (b *OptionsBuilder) WithMethod(m ports.QuantizeMethod) *OptionsBuilder {
	b.opts.Method = m
	return b
}

// WithDither enables error diffusion at the given strength (0-1).
// A strength of 0 disables dithering.
func (b *OptionsBuilder) WithDither(strength float64) *OptionsBuilder {
	b.opts.Dither = strength > 0
	b.opts.DitherStrength = strength
	return b
}

// WithCenterFocusedDither biases diffusion toward the frame center.
func (b *OptionsBuilder) WithCenterFocusedDither(on bool) *OptionsBuilder {
	b.opts.CenterFocused = on
	return b
}

// WithSpeed sets the quantizer speed (1-10, higher is faster).
func (b *OptionsBuilder) WithSpeed(speed int) *OptionsBuilder {
	b.opts.Speed = speed
	return b
}

// WithQuality sets the quantizer quality (0-100).
func (b *OptionsBuilder) WithQuality(q int) *OptionsBuilder {
	b.opts.Quality = q
	return b
}

// WithSkipQuantize passes exact colors through when the palette is full.
func (b *OptionsBuilder) WithSkipQuantize(on bool) *OptionsBuilder {
	b.opts.SkipQuantize = on
	return b
}

// WithEnhanced prefers the ffmpeg GIF backend when it is available.
func (b *OptionsBuilder) WithEnhanced(on bool) *OptionsBuilder {
	b.opts.Enhanced = on
	return b
}

// WithMaxWidth caps the output width. Use 0 for no limit.
func (b *OptionsBuilder) WithMaxWidth(w int) *OptionsBuilder {
	b.opts.MaxWidth = w
	return b
}

// WithMaxSizeKB sets the size budget. Use 0 for unlimited.
func (b *OptionsBuilder) WithMaxSizeKB(kb int) *OptionsBuilder {
	b.opts.MaxSizeKB = kb
	return b
}

// WithLoopCount sets how often the animation plays. 0 loops forever.
func (b *OptionsBuilder) WithLoopCount(n int) *OptionsBuilder {
	b.opts.LoopCount = n
	return b
}

// WithWebP sets the WebP quality and lossless flag.
func (b *OptionsBuilder) WithWebP(quality int, lossless bool) *OptionsBuilder {
	b.opts.WebPQuality = quality
	b.opts.WebPLossless = lossless
	return b
}

// WithVideoQuality sets the MP4 quality (0-100).
func (b *OptionsBuilder) WithVideoQuality(q int) *OptionsBuilder {
	b.opts.VideoQuality = q
	return b
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
