package capture

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/user/gifcap/pkg/ports"
)

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func sample(c color.RGBA, ts time.Duration) ports.FrameSample {
	return ports.FrameSample{Image: solidImage(8, 8, c), Timestamp: ts}
}

var (
	red  = color.RGBA{255, 0, 0, 255}
	blue = color.RGBA{0, 0, 255, 255}
)

func TestFrameSource_DedupeIdentical(t *testing.T) {
	src := NewFrameSource(SourceConfig{FPS: 10, Dedupe: true})
	src.Ingest(sample(red, 0))
	src.Ingest(sample(red, 100*time.Millisecond))
	src.Ingest(sample(red, 200*time.Millisecond))

	frames := src.Harvest()
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	if got := src.Stats().Duplicates; got != 2 {
		t.Errorf("expected 2 duplicates, got %d", got)
	}
}

func TestFrameSource_NoDedupeKeepsAll(t *testing.T) {
	src := NewFrameSource(SourceConfig{FPS: 10})
	src.Ingest(sample(red, 0))
	src.Ingest(sample(red, 100*time.Millisecond))

	if frames := src.Harvest(); len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
}

func TestFrameSource_Durations(t *testing.T) {
	src := NewFrameSource(SourceConfig{FPS: 20, Dedupe: true})
	src.Ingest(sample(red, 500*time.Millisecond))
	src.Ingest(sample(blue, 500*time.Millisecond+2*time.Millisecond))
	src.Ingest(sample(red, 5*time.Second))

	frames := src.Harvest()
	if len(frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(frames))
	}
	if frames[0].Duration != 50*time.Millisecond {
		t.Errorf("first frame duration = %v, want 50ms", frames[0].Duration)
	}
	if frames[1].Duration != 10*time.Millisecond {
		t.Errorf("short gap not clamped to minimum: %v", frames[1].Duration)
	}
	if frames[2].Duration != time.Second {
		t.Errorf("long gap not capped: %v", frames[2].Duration)
	}
	if src.Origin() != 500*time.Millisecond {
		t.Errorf("origin = %v", src.Origin())
	}
}

func TestFrameSource_MaxFrames(t *testing.T) {
	src := NewFrameSource(SourceConfig{FPS: 10, MaxFrames: 2})
	src.Ingest(sample(red, 0))

	select {
	case <-src.LimitReached():
		t.Fatal("limit reached too early")
	default:
	}

	src.Ingest(sample(blue, 100*time.Millisecond))
	src.Ingest(sample(red, 200*time.Millisecond))

	select {
	case <-src.LimitReached():
	default:
		t.Fatal("limit channel not closed")
	}
	if !src.LimitHit() {
		t.Error("LimitHit() = false")
	}
	stats := src.Stats()
	if stats.Kept != 2 || stats.DroppedLimit != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestFrameSource_MaxDuration(t *testing.T) {
	src := NewFrameSource(SourceConfig{FPS: 10, MaxDuration: 250 * time.Millisecond})
	for i := 0; i < 5; i++ {
		c := red
		if i%2 == 1 {
			c = blue
		}
		src.Ingest(sample(c, time.Duration(i)*100*time.Millisecond))
	}
	if got := len(src.Harvest()); got != 3 {
		t.Errorf("expected 3 frames before the duration ceiling, got %d", got)
	}
}

func TestFrameSource_MaxDurationStaticScreen(t *testing.T) {
	src := NewFrameSource(SourceConfig{FPS: 10, Dedupe: true, MaxDuration: 2 * time.Second})
	for i := 0; i <= 100; i++ {
		src.Ingest(sample(red, time.Duration(i)*100*time.Millisecond))
	}

	select {
	case <-src.LimitReached():
	default:
		t.Fatal("duration ceiling not reached on a static screen")
	}
	stats := src.Stats()
	if stats.Kept != 1 {
		t.Errorf("Kept = %d, want 1", stats.Kept)
	}
	if stats.Duplicates != 19 {
		t.Errorf("Duplicates = %d, want 19", stats.Duplicates)
	}
	if stats.Elapsed != 2*time.Second {
		t.Errorf("Elapsed = %v, want 2s", stats.Elapsed)
	}
}

func TestFrameSource_MaxDurationLongGap(t *testing.T) {
	src := NewFrameSource(SourceConfig{FPS: 10, Dedupe: true, MaxDuration: 2 * time.Second})
	src.Ingest(sample(red, 0))
	src.Ingest(sample(blue, 5*time.Second))

	if !src.LimitHit() {
		t.Fatal("a 5s gap should pass a 2s ceiling")
	}
	stats := src.Stats()
	if stats.Kept != 1 || stats.DroppedLimit != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestFrameSource_MaxDurationSkipsPausedSpan(t *testing.T) {
	src := NewFrameSource(SourceConfig{FPS: 10, MaxDuration: 2 * time.Second})
	src.Ingest(sample(red, 0))
	src.Ingest(sample(blue, time.Second))
	src.SetPaused(true)
	src.Ingest(sample(red, 3*time.Second))
	src.SetPaused(false)
	src.Ingest(sample(blue, 10*time.Second))
	src.Ingest(sample(red, 10*time.Second+500*time.Millisecond))

	if src.LimitHit() {
		t.Fatalf("paused span counted toward the ceiling: elapsed %v", src.Stats().Elapsed)
	}
	if got := src.Stats().Elapsed; got != 1500*time.Millisecond {
		t.Errorf("Elapsed = %v, want 1.5s", got)
	}
}

func TestFrameSource_Paused(t *testing.T) {
	src := NewFrameSource(SourceConfig{FPS: 10, Dedupe: true})
	src.Ingest(sample(red, 0))
	src.SetPaused(true)
	src.Ingest(sample(blue, 100*time.Millisecond))
	src.SetPaused(false)
	src.Ingest(sample(blue, 200*time.Millisecond))

	frames := src.Harvest()
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	if got := src.Stats().DroppedPaused; got != 1 {
		t.Errorf("expected 1 paused drop, got %d", got)
	}
}

func TestFrameSource_HarvestOnce(t *testing.T) {
	src := NewFrameSource(SourceConfig{FPS: 10})
	src.Ingest(sample(red, 0))

	if got := len(src.Harvest()); got != 1 {
		t.Fatalf("first harvest returned %d frames", got)
	}
	src.Ingest(sample(blue, 100*time.Millisecond))
	if got := src.Harvest(); got != nil {
		t.Errorf("second harvest returned %d frames", len(got))
	}
}

func TestFrameSource_NilImageIgnored(t *testing.T) {
	src := NewFrameSource(SourceConfig{})
	src.Ingest(ports.FrameSample{})
	if got := src.Stats().Kept; got != 0 {
		t.Errorf("Kept = %d", got)
	}
}
