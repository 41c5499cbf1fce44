package gifcap

import (
	"testing"

	"github.com/user/gifcap/pkg/ports"
)

func TestOptionsBuilder_Defaults(t *testing.T) {
	got := NewOptionsBuilder().Build()
	if got != ports.DefaultEncodeOptions() {
		t.Errorf("Build() = %+v, want defaults", got)
	}
}

func TestOptionsBuilder_Clamps(t *testing.T) {
	opts := NewOptionsBuilder().
		WithColors(1000).
		WithSpeed(0).
		WithQuality(150).
		WithDither(3).
		WithMaxWidth(-5).
		WithLoopCount(-1).
		WithWebP(-10, false).
		Build()

	if opts.MaxColors != 256 {
		t.Errorf("MaxColors = %d, want 256", opts.MaxColors)
	}
	if opts.Speed != 1 {
		t.Errorf("Speed = %d, want 1", opts.Speed)
	}
	if opts.Quality != 100 {
		t.Errorf("Quality = %d, want 100", opts.Quality)
	}
	if !opts.Dither || opts.DitherStrength != 1 {
		t.Errorf("dither = %v/%v", opts.Dither, opts.DitherStrength)
	}
	if opts.MaxWidth != 0 || opts.LoopCount != 0 || opts.WebPQuality != 0 {
		t.Errorf("negative values not clamped: %+v", opts)
	}
}

func TestOptionsBuilder_Presets(t *testing.T) {
	tests := []struct {
		preset QualityPreset
		colors int
		dither bool
	}{
		{QualityLow, 64, false},
		{QualityMedium, 128, true},
		{QualityHigh, 256, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.preset), func(t *testing.T) {
			opts := NewOptionsBuilder().WithQualityPreset(tt.preset).Build()
			if opts.MaxColors != tt.colors {
				t.Errorf("MaxColors = %d, want %d", opts.MaxColors, tt.colors)
			}
			if opts.Dither != tt.dither {
				t.Errorf("Dither = %v, want %v", opts.Dither, tt.dither)
			}
		})
	}
}

func TestOptionsBuilder_OverrideAfterPreset(t *testing.T) {
	opts := NewOptionsBuilder().
		WithFormat(ports.FormatMP4).
		WithQualityPreset(QualityLow).
		WithVideoQuality(90).
		Build()

	if opts.Format != ports.FormatMP4 || opts.VideoQuality != 90 {
		t.Errorf("opts = %+v", opts)
	}
}

func TestParseQualityPreset(t *testing.T) {
	if p, ok := ParseQualityPreset("high"); !ok || p != QualityHigh {
		t.Errorf("ParseQualityPreset(high) = %v, %v", p, ok)
	}
	if _, ok := ParseQualityPreset("ultra"); ok {
		t.Error("unknown preset accepted")
	}
}
