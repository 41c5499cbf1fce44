// Package config provides configuration loading and management.
package config

import (
	"image/color"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/user/gifcap/pkg/capture"
	"github.com/user/gifcap/pkg/cursor"
	"github.com/user/gifcap/pkg/ports"
)

// EnvLogLevel overrides the configured log level.
const EnvLogLevel = "GIFCAP_LOG_LEVEL"

// Config represents the full configuration for gifcap.
type Config struct {
	Capture CaptureConfig `yaml:"capture"`
	Encode  EncodeConfig  `yaml:"encode"`
	Tools   ToolsConfig   `yaml:"tools"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Quantization worker count (0 = all CPUs)
	Workers int `yaml:"workers"`

	// Debug
	Debug    bool   `yaml:"debug"`
	DebugDir string `yaml:"debug_dir"`
}

// CaptureConfig represents capture session settings.
type CaptureConfig struct {
	FPS            float64      `yaml:"fps"`
	Dedupe         bool         `yaml:"dedupe"`
	MaxFrames      int          `yaml:"max_frames"`
	MaxDurationSec float64      `yaml:"max_duration_sec"`
	TickMs         int          `yaml:"tick_ms"`
	Cursor         bool         `yaml:"cursor"`
	CursorTheme    CursorConfig `yaml:"cursor_theme"`
}

// CursorConfig represents cursor effect styling.
type CursorConfig struct {
	Radius          float64 `yaml:"radius"`
	SampleMs        int     `yaml:"sample_ms"`
	HighlightColor  string  `yaml:"highlight_color"`
	LeftClickColor  string  `yaml:"left_click_color"`
	RightClickColor string  `yaml:"right_click_color"`
}

// EncodeConfig mirrors ports.EncodeOptions.
type EncodeConfig struct {
	Format         string  `yaml:"format"`
	Colors         int     `yaml:"colors"`
	Method         string  `yaml:"method"`
	Dither         bool    `yaml:"dither"`
	DitherStrength float64 `yaml:"dither_strength"`
	CenterDither   bool    `yaml:"center_dither"`
	Speed          int     `yaml:"speed"`
	Quality        int     `yaml:"quality"`
	SkipQuantize   bool    `yaml:"skip_quantize"`
	Enhanced       bool    `yaml:"enhanced"`
	MaxWidth       int     `yaml:"max_width"`
	MaxSizeKB      int     `yaml:"max_size_kb"`
	Loop           int     `yaml:"loop"`
	WebPQuality    int     `yaml:"webp_quality"`
	Lossless       bool    `yaml:"lossless"`
	VideoQuality   int     `yaml:"video_quality"`
}

// ToolsConfig locates external programs.
type ToolsConfig struct {
	FFmpegPath string `yaml:"ffmpeg_path"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	session := capture.DefaultSessionConfig()
	enc := ports.DefaultEncodeOptions()

	return Config{
		Capture: CaptureConfig{
			FPS:            session.FPS,
			Dedupe:         session.Dedupe,
			MaxFrames:      session.MaxFrames,
			MaxDurationSec: session.MaxDuration.Seconds(),
			TickMs:         int(session.TickInterval.Milliseconds()),
			CursorTheme: CursorConfig{
				Radius:          18,
				SampleMs:        50,
				HighlightColor:  "#ffdd0060",
				LeftClickColor:  "#ff404080",
				RightClickColor: "#4080ff80",
			},
		},
		Encode: EncodeConfig{
			Format:         string(enc.Format),
			Colors:         enc.MaxColors,
			Method:         string(enc.Method),
			Dither:         enc.Dither,
			DitherStrength: enc.DitherStrength,
			Speed:          enc.Speed,
			Quality:        enc.Quality,
			WebPQuality:    enc.WebPQuality,
			VideoQuality:   enc.VideoQuality,
		},
		LogLevel: "info",
		DebugDir: "./debug",
	}
}

// LoadFromFile loads configuration from a YAML file on top of Defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// ApplyEnv applies environment overrides.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
}

// ParseColor parses "#rrggbb" or "#rrggbbaa". Invalid input yields black.
func ParseColor(hex string) color.Color {
	if len(hex) > 0 && hex[0] == '#' {
		hex = hex[1:]
	}
	if len(hex) != 6 && len(hex) != 8 {
		return color.Black
	}

	v := make([]uint8, len(hex)/2)
	for i := range v {
		v[i] = hexValue(hex[2*i])<<4 | hexValue(hex[2*i+1])
	}
	if len(v) == 3 {
		return color.RGBA{R: v[0], G: v[1], B: v[2], A: 255}
	}
	return color.NRGBA{R: v[0], G: v[1], B: v[2], A: v[3]}
}

func hexValue(c byte) uint8 {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return 0
	}
}

// ToEncodeOptions converts the encode section. Unknown format or method
// names keep the defaults.
func (c Config) ToEncodeOptions() ports.EncodeOptions {
	opts := ports.DefaultEncodeOptions()
	e := c.Encode

	if f, err := ports.ParseFormat(e.Format); err == nil {
		opts.Format = f
	}
	if m, err := ports.ParseQuantizeMethod(e.Method); err == nil {
		opts.Method = m
	}
	opts.MaxColors = e.Colors
	opts.Dither = e.Dither
	opts.DitherStrength = e.DitherStrength
	opts.CenterFocused = e.CenterDither
	opts.Speed = e.Speed
	opts.Quality = e.Quality
	opts.SkipQuantize = e.SkipQuantize
	opts.Enhanced = e.Enhanced
	opts.MaxWidth = e.MaxWidth
	opts.MaxSizeKB = e.MaxSizeKB
	opts.LoopCount = e.Loop
	opts.WebPQuality = e.WebPQuality
	opts.WebPLossless = e.Lossless
	opts.VideoQuality = e.VideoQuality
	return opts
}

// ToSessionConfig converts the capture section.
func (c Config) ToSessionConfig() capture.SessionConfig {
	return capture.SessionConfig{
		FPS:          c.Capture.FPS,
		Dedupe:       c.Capture.Dedupe,
		MaxFrames:    c.Capture.MaxFrames,
		MaxDuration:  time.Duration(c.Capture.MaxDurationSec * float64(time.Second)),
		TickInterval: time.Duration(c.Capture.TickMs) * time.Millisecond,
		Cursor:       c.Capture.Cursor,
	}
}

// ToCursorOptions converts the cursor theme.
func (c Config) ToCursorOptions() cursor.Options {
	opts := cursor.DefaultOptions()
	t := c.Capture.CursorTheme
	if t.Radius > 0 {
		opts.Radius = t.Radius
	}
	if t.SampleMs > 0 {
		opts.SampleInterval = time.Duration(t.SampleMs) * time.Millisecond
	}
	if t.HighlightColor != "" {
		opts.HighlightColor = ParseColor(t.HighlightColor)
	}
	if t.LeftClickColor != "" {
		opts.LeftClickColor = ParseColor(t.LeftClickColor)
	}
	if t.RightClickColor != "" {
		opts.RightClickColor = ParseColor(t.RightClickColor)
	}
	return opts
}
