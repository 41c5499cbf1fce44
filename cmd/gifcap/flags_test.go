package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/user/gifcap/pkg/config"
	"github.com/user/gifcap/pkg/ports"
)

// fakeFlags implements flagValues over a map of explicitly set values.
type fakeFlags map[string]interface{}

func (f fakeFlags) IsSet(name string) bool {
	_, ok := f[name]
	return ok
}

func (f fakeFlags) String(name string) string {
	v, _ := f[name].(string)
	return v
}

func (f fakeFlags) Int(name string) int {
	v, _ := f[name].(int)
	return v
}

func (f fakeFlags) Float64(name string) float64 {
	v, _ := f[name].(float64)
	return v
}

func (f fakeFlags) Bool(name string) bool {
	v, _ := f[name].(bool)
	return v
}

func TestBuildEncodeOptions_Defaults(t *testing.T) {
	opts, err := buildEncodeOptions(fakeFlags{}, config.Defaults())
	if err != nil {
		t.Fatalf("buildEncodeOptions failed: %v", err)
	}
	want := ports.DefaultEncodeOptions()
	if opts.Format != want.Format || opts.MaxColors != want.MaxColors || opts.Quality != want.Quality {
		t.Errorf("got %+v, want defaults %+v", opts, want)
	}
}

func TestBuildEncodeOptions_PresetThenOverride(t *testing.T) {
	opts, err := buildEncodeOptions(fakeFlags{
		"format":      "webp",
		"preset":      "low",
		"colors":      100,
		"max-size-kb": 512,
		"lossless":    true,
	}, config.Defaults())
	if err != nil {
		t.Fatalf("buildEncodeOptions failed: %v", err)
	}

	if opts.Format != ports.FormatWebP {
		t.Errorf("Format = %s", opts.Format)
	}
	if opts.MaxColors != 100 {
		t.Errorf("MaxColors = %d, explicit flag should win over the preset", opts.MaxColors)
	}
	if opts.Speed != 8 {
		t.Errorf("Speed = %d, want the low preset value 8", opts.Speed)
	}
	if opts.MaxSizeKB != 512 || !opts.WebPLossless {
		t.Errorf("budget/lossless not applied: %+v", opts)
	}
	if opts.WebPQuality != 55 {
		t.Errorf("WebPQuality = %d, lossless alone should keep the preset quality", opts.WebPQuality)
	}
}

func TestBuildEncodeOptions_Dither(t *testing.T) {
	tests := []struct {
		name     string
		flags    fakeFlags
		dither   bool
		strength float64
	}{
		{"off", fakeFlags{"dither": false}, false, 0},
		{"on", fakeFlags{"dither": true}, true, 1},
		{"strength", fakeFlags{"dither-strength": 0.4}, true, 0.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := buildEncodeOptions(tt.flags, config.Defaults())
			if err != nil {
				t.Fatal(err)
			}
			if opts.Dither != tt.dither || opts.DitherStrength != tt.strength {
				t.Errorf("dither = %v/%v, want %v/%v", opts.Dither, opts.DitherStrength, tt.dither, tt.strength)
			}
		})
	}
}

func TestBuildEncodeOptions_Invalid(t *testing.T) {
	for _, flags := range []fakeFlags{
		{"format": "avi"},
		{"preset": "ultra"},
		{"method": "random"},
	} {
		if _, err := buildEncodeOptions(flags, config.Defaults()); err == nil {
			t.Errorf("expected an error for %v", flags)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gifcap.yaml")
	if err := os.WriteFile(path, []byte("log_level: warn\ncapture:\n  fps: 24\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(config.EnvLogLevel, "")

	cfg, err := loadConfig(fakeFlags{"config": path, "debug": true, "ffmpeg-path": "/opt/ffmpeg"})
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.LogLevel != "warn" || cfg.Capture.FPS != 24 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if !cfg.Debug || cfg.Tools.FFmpegPath != "/opt/ffmpeg" {
		t.Errorf("flag values not applied: %+v", cfg)
	}

	cfg, err = loadConfig(fakeFlags{"config": path, "log-level": "debug"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, flag should win over the file", cfg.LogLevel)
	}

	if _, err := loadConfig(fakeFlags{"config": filepath.Join(t.TempDir(), "missing.yaml")}); err == nil {
		t.Error("expected an error for a missing config file")
	}
}

func TestApplyCaptureFlags(t *testing.T) {
	cfg := config.Defaults()
	applyCaptureFlags(fakeFlags{"fps": 30.0, "no-dedupe": true, "max-frames": 10}, &cfg)

	if cfg.Capture.FPS != 30 || cfg.Capture.Dedupe || cfg.Capture.MaxFrames != 10 {
		t.Errorf("capture flags not applied: %+v", cfg.Capture)
	}
}

func TestTerminalPicker(t *testing.T) {
	var out strings.Builder

	r, err := terminalPicker(strings.NewReader("10,20,300,200\n"), &out).PickRegion(context.Background())
	if err != nil {
		t.Fatalf("PickRegion failed: %v", err)
	}
	if r.X != 10 || r.Width != 300 {
		t.Errorf("region = %+v", r)
	}
	if out.Len() == 0 {
		t.Error("expected a prompt")
	}

	_, err = terminalPicker(strings.NewReader("\n"), &out).PickRegion(context.Background())
	if !errors.Is(err, ports.ErrRegionCancelled) {
		t.Errorf("empty line: got %v", err)
	}
}

func TestWithTimeout(t *testing.T) {
	stop := make(chan struct{})
	select {
	case <-withTimeout(stop, 10*time.Millisecond):
	case <-time.After(time.Second):
		t.Fatal("timeout did not close the channel")
	}

	early := make(chan struct{})
	out := withTimeout(early, time.Hour)
	close(early)
	select {
	case <-out:
	case <-time.After(time.Second):
		t.Fatal("stop did not close the channel")
	}
}

func TestNewApp_Commands(t *testing.T) {
	app := newApp()
	for _, name := range []string{"record", "convert", "version"} {
		if app.Command(name) == nil {
			t.Errorf("missing command %s", name)
		}
	}
}
