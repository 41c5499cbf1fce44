package main

import (
	"fmt"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/gifcap/pkg/config"
	"github.com/user/gifcap/pkg/gifcap"
	"github.com/user/gifcap/pkg/ports"
)

// Flag categories
const (
	categoryOutput  = "Output"
	categoryCapture = "Capture"
	categoryEncode  = "Encoding"
	categoryBrowser = "Browser"
	categoryDebug   = "Debug"
	categoryLogging = "Logging"
)

// flagValues is the subset of *cli.Context the option builders read.
type flagValues interface {
	IsSet(name string) bool
	String(name string) string
	Int(name string) int
	Float64(name string) float64
	Bool(name string) bool
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: l10n.T("YAML configuration file"), Category: l10n.T(categoryOutput)},
		&cli.StringFlag{Name: "summary", Usage: l10n.T("Output execution summary to file (Markdown format)"), Category: l10n.T(categoryOutput)},
		&cli.StringFlag{Name: "metrics-file", Usage: l10n.T("Write metrics in Prometheus text format to file"), Category: l10n.T(categoryOutput)},
		&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: l10n.T("Enable debug output"), Category: l10n.T(categoryDebug)},
		&cli.StringFlag{Name: "debug-dir", Usage: l10n.T("Directory for debug output"), Category: l10n.T(categoryDebug)},
		&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Usage: l10n.T("Log level (debug, info, warn, error)"), Category: l10n.T(categoryLogging)},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"Q"}, Usage: l10n.T("Suppress all log output"), Category: l10n.T(categoryLogging)},
	}
}

func encodeFlags() []cli.Flag {
	cat := l10n.T(categoryEncode)
	return []cli.Flag{
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Required: true, Usage: l10n.T("Output file path (required)"), Category: l10n.T(categoryOutput)},
		&cli.StringFlag{Name: "edit", Usage: l10n.T("Edit script applied before encoding, e.g. trim:0:40,speed:1.5,yoyo"), Category: cat},
		&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: l10n.T("Output format (gif, webp, apng, mp4)"), Category: cat},
		&cli.StringFlag{Name: "preset", Aliases: []string{"p"}, Usage: l10n.T("Quality preset (low, medium, high)"), Category: cat},
		&cli.IntFlag{Name: "colors", Usage: l10n.T("Palette size (2-256)"), Category: cat},
		&cli.StringFlag{Name: "method", Usage: l10n.T("Quantizer (adaptive, learned-palette, octree)"), Category: cat},
		&cli.BoolFlag{Name: "dither", Usage: l10n.T("Enable error diffusion dithering"), Category: cat},
		&cli.Float64Flag{Name: "dither-strength", Usage: l10n.T("Dithering strength (0-1)"), Category: cat},
		&cli.BoolFlag{Name: "center-dither", Usage: l10n.T("Concentrate dithering toward the frame center"), Category: cat},
		&cli.IntFlag{Name: "speed", Usage: l10n.T("Quantizer speed (1-10, higher is faster)"), Category: cat},
		&cli.IntFlag{Name: "quality", Aliases: []string{"q"}, Usage: l10n.T("GIF quality (0-100)"), Category: cat},
		&cli.BoolFlag{Name: "skip-quantize", Usage: l10n.T("Keep exact colors when the frames fit in 256 colors"), Category: cat},
		&cli.BoolFlag{Name: "enhanced", Usage: l10n.T("Use the ffmpeg palette encoder for GIF when available"), Category: cat},
		&cli.IntFlag{Name: "max-width", Usage: l10n.T("Maximum output width in pixels (0 = original)"), Category: cat},
		&cli.IntFlag{Name: "max-size-kb", Usage: l10n.T("Target maximum file size in KB (0 = unlimited)"), Category: cat},
		&cli.IntFlag{Name: "loop", Usage: l10n.T("Play count (0 = forever)"), Category: cat},
		&cli.IntFlag{Name: "webp-quality", Usage: l10n.T("WebP quality (0-100)"), Category: cat},
		&cli.BoolFlag{Name: "lossless", Usage: l10n.T("Encode WebP losslessly"), Category: cat},
		&cli.IntFlag{Name: "video-quality", Usage: l10n.T("MP4 quality (0-100)"), Category: cat},
		&cli.StringFlag{Name: "ffmpeg-path", Usage: l10n.T("Path to ffmpeg executable"), Category: cat},
	}
}

func recordFlags() []cli.Flag {
	cat := l10n.T(categoryCapture)
	return []cli.Flag{
		&cli.StringFlag{Name: "source", Value: "x11", Usage: l10n.T("Capture source (x11, url)"), Category: cat},
		&cli.StringFlag{Name: "region", Aliases: []string{"r"}, Usage: l10n.T("Capture region as x,y,width,height"), Category: cat},
		&cli.BoolFlag{Name: "last-region", Usage: l10n.T("Reuse the region of the previous recording"), Category: cat},
		&cli.Float64Flag{Name: "fps", Usage: l10n.T("Capture rate in frames per second"), Category: cat},
		&cli.DurationFlag{Name: "duration", Usage: l10n.T("Stop recording after this long (0 = until Ctrl+C)"), Category: cat},
		&cli.IntFlag{Name: "max-frames", Usage: l10n.T("Stop automatically after this many frames"), Category: cat},
		&cli.Float64Flag{Name: "max-duration", Usage: l10n.T("Stop automatically after this many seconds of animation"), Category: cat},
		&cli.BoolFlag{Name: "no-dedupe", Usage: l10n.T("Keep consecutive identical frames"), Category: cat},
		&cli.BoolFlag{Name: "cursor", Usage: l10n.T("Highlight the cursor and clicks"), Category: cat},
		&cli.BoolFlag{Name: "direct", Usage: l10n.T("Save without opening the editor"), Category: cat},
		&cli.StringFlag{Name: "display", Usage: l10n.T("X11 display name (default: $DISPLAY)"), Category: cat},
		&cli.StringFlag{Name: "url", Usage: l10n.T("Page to record with --source url"), Category: l10n.T(categoryBrowser)},
		&cli.StringFlag{Name: "chrome-path", Usage: l10n.T("Path to Chrome executable"), Category: l10n.T(categoryBrowser)},
		&cli.BoolFlag{Name: "no-headless", Usage: l10n.T("Run browser in non-headless mode"), Category: l10n.T(categoryBrowser)},
	}
}

// loadConfig reads --config on top of the defaults, then applies the
// environment and the common flags.
func loadConfig(c flagValues) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}
		cfg = loaded
	}
	cfg.ApplyEnv()

	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("debug") {
		cfg.Debug = c.Bool("debug")
	}
	if c.IsSet("debug-dir") {
		cfg.DebugDir = c.String("debug-dir")
	}
	if c.IsSet("ffmpeg-path") {
		cfg.Tools.FFmpegPath = c.String("ffmpeg-path")
	}
	return cfg, nil
}

// applyCaptureFlags overrides the capture section.
func applyCaptureFlags(c flagValues, cfg *config.Config) {
	if c.IsSet("fps") {
		cfg.Capture.FPS = c.Float64("fps")
	}
	if c.IsSet("max-frames") {
		cfg.Capture.MaxFrames = c.Int("max-frames")
	}
	if c.IsSet("max-duration") {
		cfg.Capture.MaxDurationSec = c.Float64("max-duration")
	}
	if c.IsSet("no-dedupe") {
		cfg.Capture.Dedupe = !c.Bool("no-dedupe")
	}
	if c.IsSet("cursor") {
		cfg.Capture.Cursor = c.Bool("cursor")
	}
}

// buildEncodeOptions layers the preset and explicit flags over the
// configured options.
func buildEncodeOptions(c flagValues, cfg config.Config) (ports.EncodeOptions, error) {
	b := gifcap.FromOptions(cfg.ToEncodeOptions())

	if c.IsSet("format") {
		f, err := ports.ParseFormat(c.String("format"))
		if err != nil {
			return ports.EncodeOptions{}, err
		}
		b.WithFormat(f)
	}
	if c.IsSet("preset") {
		p, ok := gifcap.ParseQualityPreset(c.String("preset"))
		if !ok {
			return ports.EncodeOptions{}, fmt.Errorf("unknown preset %q", c.String("preset"))
		}
		b.WithQualityPreset(p)
	}
	if c.IsSet("colors") {
		b.WithColors(c.Int("colors"))
	}
	if c.IsSet("method") {
		m, err := ports.ParseQuantizeMethod(c.String("method"))
		if err != nil {
			return ports.EncodeOptions{}, err
		}
		b.WithMethod(m)
	}
	switch {
	case c.IsSet("dither-strength"):
		b.WithDither(c.Float64("dither-strength"))
	case c.IsSet("dither") && !c.Bool("dither"):
		b.WithDither(0)
	case c.IsSet("dither"):
		b.WithDither(1)
	}
	if c.IsSet("center-dither") {
		b.WithCenterFocusedDither(c.Bool("center-dither"))
	}
	if c.IsSet("speed") {
		b.WithSpeed(c.Int("speed"))
	}
	if c.IsSet("quality") {
		b.WithQuality(c.Int("quality"))
	}
	if c.IsSet("skip-quantize") {
		b.WithSkipQuantize(c.Bool("skip-quantize"))
	}
	if c.IsSet("enhanced") {
		b.WithEnhanced(c.Bool("enhanced"))
	}
	if c.IsSet("max-width") {
		b.WithMaxWidth(c.Int("max-width"))
	}
	if c.IsSet("max-size-kb") {
		b.WithMaxSizeKB(c.Int("max-size-kb"))
	}
	if c.IsSet("loop") {
		b.WithLoopCount(c.Int("loop"))
	}
	if c.IsSet("webp-quality") || c.IsSet("lossless") {
		opts := b.Build()
		q, lossless := opts.WebPQuality, opts.WebPLossless
		if c.IsSet("webp-quality") {
			q = c.Int("webp-quality")
		}
		if c.IsSet("lossless") {
			lossless = c.Bool("lossless")
		}
		b.WithWebP(q, lossless)
	}
	if c.IsSet("video-quality") {
		b.WithVideoQuality(c.Int("video-quality"))
	}

	return b.Build(), nil
}
