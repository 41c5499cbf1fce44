package gifencoder

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"testing"
	"time"

	"github.com/user/gifcap/pkg/adapters/logger"
	"github.com/user/gifcap/pkg/frame"
	"github.com/user/gifcap/pkg/ports"
)

func testFrames(n, w, h int, d time.Duration) []frame.Frame {
	frames := make([]frame.Frame, n)
	for i := range frames {
		img := image.NewRGBA(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				img.SetRGBA(x, y, color.RGBA{R: uint8(i * 50), G: uint8(x * 8), B: uint8(y * 8), A: 255})
			}
		}
		frames[i] = frame.New(img, d)
	}
	return frames
}

func TestEncode(t *testing.T) {
	enc := New(nil, logger.NewNoop(), 2)
	frames := testFrames(3, 16, 12, 100*time.Millisecond)

	var seen []float64
	data, err := enc.Encode(context.Background(), frames, ports.DefaultEncodeOptions(), func(p float64) {
		seen = append(seen, p)
	})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a GIF: %v", err)
	}
	if len(g.Image) != 3 {
		t.Errorf("got %d frames, want 3", len(g.Image))
	}
	for i, d := range g.Delay {
		if d != 10 {
			t.Errorf("frame %d delay = %d, want 10", i, d)
		}
	}
	if g.LoopCount != 0 {
		t.Errorf("LoopCount = %d, want 0", g.LoopCount)
	}

	for i := 1; i < len(seen); i++ {
		if seen[i] < seen[i-1] {
			t.Fatalf("progress not monotonic: %v", seen)
		}
	}
	if seen[len(seen)-1] != 1 {
		t.Errorf("final progress = %v", seen[len(seen)-1])
	}
}

func TestEncode_MaxWidthAndPalette(t *testing.T) {
	enc := New(nil, logger.NewNoop(), 0)
	opts := ports.DefaultEncodeOptions()
	opts.MaxWidth = 8
	opts.MaxColors = 4
	opts.LoopCount = 1

	data, err := enc.Encode(context.Background(), testFrames(2, 16, 16, 50*time.Millisecond), opts, nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if g.Config.Width != 8 {
		t.Errorf("width = %d, want 8", g.Config.Width)
	}
	for i, img := range g.Image {
		if len(img.Palette) > 4 {
			t.Errorf("frame %d palette has %d colors", i, len(img.Palette))
		}
	}
	if g.LoopCount != -1 {
		t.Errorf("LoopCount = %d, want -1 for a single play", g.LoopCount)
	}
}

func TestEncode_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	enc := New(nil, logger.NewNoop(), 1)
	_, err := enc.Encode(ctx, testFrames(4, 8, 8, 100*time.Millisecond), ports.DefaultEncodeOptions(), nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestEncode_NoFrames(t *testing.T) {
	enc := New(nil, logger.NewNoop(), 1)
	_, err := enc.Encode(context.Background(), nil, ports.DefaultEncodeOptions(), nil)
	if !errors.Is(err, ErrNoFrames) || !errors.Is(err, ports.ErrEncodeFailure) {
		t.Errorf("unexpected error %v", err)
	}
}

func TestDelays_CarriesRounding(t *testing.T) {
	frames := testFrames(3, 1, 1, 33*time.Millisecond)
	delays := Delays(frames)
	total := 0
	for _, d := range delays {
		total += d
	}
	if total != 10 {
		t.Errorf("total delay %d cs for 99ms, want 10", total)
	}
}

func TestLoopCount(t *testing.T) {
	tests := []struct{ plays, want int }{
		{0, 0},
		{1, -1},
		{2, 1},
		{5, 4},
	}
	for _, tt := range tests {
		if got := LoopCount(tt.plays); got != tt.want {
			t.Errorf("LoopCount(%d) = %d, want %d", tt.plays, got, tt.want)
		}
	}
}
