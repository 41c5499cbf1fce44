package capture

import (
	"testing"
	"time"

	"github.com/user/gifcap/pkg/frame"
)

func TestMemoryPolicy_UnderCeiling(t *testing.T) {
	frames := []frame.Frame{frame.New(solidImage(100, 50, red), 100*time.Millisecond)}
	out, report := DefaultMemoryPolicy().Apply(frames)

	if report.Downscaled != 0 || report.DownscaledAll {
		t.Errorf("unexpected downscale: %+v", report)
	}
	if out[0].Image != frames[0].Image {
		t.Error("frame under the policy should be passed through")
	}
}

func TestMemoryPolicy_CeilingDownscalesAll(t *testing.T) {
	frames := []frame.Frame{
		frame.New(solidImage(100, 50, red), 100*time.Millisecond),
		frame.New(solidImage(100, 50, blue), 100*time.Millisecond),
	}
	policy := MemoryPolicy{Ceiling: 100 * 50 * 4, Factor: 2}
	out, report := policy.Apply(frames)

	if !report.DownscaledAll || report.Downscaled != 2 {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.ProjectedBytes != 2*100*50*4 {
		t.Errorf("ProjectedBytes = %d", report.ProjectedBytes)
	}
	for i, f := range out {
		if f.Width() != 50 || f.Height() != 25 {
			t.Errorf("frame %d size %dx%d", i, f.Width(), f.Height())
		}
		if f.Duration != 100*time.Millisecond {
			t.Errorf("frame %d duration changed", i)
		}
	}
	if frames[0].Width() != 100 {
		t.Error("input list was modified")
	}
}

func TestMemoryPolicy_WideFrame(t *testing.T) {
	frames := []frame.Frame{frame.New(solidImage(40, 10, red), 100*time.Millisecond)}
	policy := MemoryPolicy{WidthThreshold: 32, Factor: 2}
	out, report := policy.Apply(frames)

	if report.DownscaledAll {
		t.Error("ceiling should not apply")
	}
	if out[0].Width() != 20 {
		t.Errorf("width = %d, want 20", out[0].Width())
	}
}
