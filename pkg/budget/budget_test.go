package budget

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/user/gifcap/pkg/adapters/logger"
	"github.com/user/gifcap/pkg/frame"
	"github.com/user/gifcap/pkg/mocks"
	"github.com/user/gifcap/pkg/ports"
)

func testFrames(n, w int) []frame.Frame {
	frames := make([]frame.Frame, n)
	for i := range frames {
		frames[i] = frame.New(image.NewRGBA(image.Rect(0, 0, w, w/2)), 100*time.Millisecond)
	}
	return frames
}

// sizedEncoder produces an artifact whose size follows the options.
func sizedEncoder(format ports.Format, size func(ports.EncodeOptions) int) *mocks.Encoder {
	return &mocks.Encoder{
		FormatValue: format,
		EncodeFunc: func(ctx context.Context, frames []frame.Frame, opts ports.EncodeOptions, progress ports.ProgressFunc) ([]byte, error) {
			if progress != nil {
				progress(0.5)
				progress(1)
			}
			return make([]byte, size(opts)), nil
		},
	}
}

func TestRun_Unlimited(t *testing.T) {
	enc := sizedEncoder(ports.FormatGIF, func(ports.EncodeOptions) int { return 1 << 20 })
	c := New(logger.NewNoop())

	res, err := c.Run(context.Background(), enc, testFrames(2, 200), ports.DefaultEncodeOptions(), nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if enc.CallCount() != 1 {
		t.Errorf("calls = %d, want 1", enc.CallCount())
	}
	if !res.Fits || len(res.Attempts) != 1 {
		t.Errorf("result = fits %v, %d attempts", res.Fits, len(res.Attempts))
	}
}

func TestRun_StepsUntilFit(t *testing.T) {
	// Size is proportional to width x colors.
	enc := sizedEncoder(ports.FormatGIF, func(o ports.EncodeOptions) int {
		w := o.MaxWidth
		if w == 0 {
			w = 200
		}
		return w * o.MaxColors
	})
	opts := ports.DefaultEncodeOptions()
	opts.MaxSizeKB = 20 // 20480 bytes; 200*256 = 51200 initially

	res, err := New(logger.NewNoop()).Run(context.Background(), enc, testFrames(2, 200), opts, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !res.Fits {
		t.Fatalf("expected the budget to be met, attempts: %+v", res.Attempts)
	}

	steps := []Step{}
	for _, a := range res.Attempts {
		steps = append(steps, a.Step)
	}
	want := []Step{StepNone, StepWidth, StepPalette}
	if len(steps) != len(want) {
		t.Fatalf("steps = %v, want %v", steps, want)
	}
	for i := range want {
		if steps[i] != want[i] {
			t.Fatalf("steps = %v, want %v", steps, want)
		}
	}
	if res.Options.MaxWidth != 160 || res.Options.MaxColors != 128 {
		t.Errorf("final options width=%d colors=%d", res.Options.MaxWidth, res.Options.MaxColors)
	}
	if len(res.Data) > 20*1024 {
		t.Errorf("artifact %d bytes exceeds budget", len(res.Data))
	}
}

func TestRun_TerminatesAndKeepsSmallest(t *testing.T) {
	sizes := []int{5000, 3000, 4000, 3500, 3900, 4100, 100}
	call := 0
	enc := sizedEncoder(ports.FormatGIF, func(ports.EncodeOptions) int {
		n := sizes[call]
		call++
		return n
	})
	opts := ports.DefaultEncodeOptions()
	opts.MaxSizeKB = 1

	c := New(logger.NewNoop())
	res, err := c.Run(context.Background(), enc, testFrames(1, 400), opts, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if enc.CallCount() != DefaultMaxAttempts {
		t.Errorf("calls = %d, want %d", enc.CallCount(), DefaultMaxAttempts)
	}
	if res.Fits {
		t.Error("result should not fit")
	}
	if len(res.Data) != 3000 {
		t.Errorf("kept %d bytes, want the smallest (3000)", len(res.Data))
	}
}

func TestRun_StopsWhenNothingApplies(t *testing.T) {
	// APNG has no palette or quality knob; width bottoms out quickly.
	enc := sizedEncoder(ports.FormatAPNG, func(ports.EncodeOptions) int { return 4096 })
	opts := ports.DefaultEncodeOptions()
	opts.Format = ports.FormatAPNG
	opts.MaxSizeKB = 1

	res, err := New(logger.NewNoop()).Run(context.Background(), enc, testFrames(1, 40), opts, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	// 40 -> 32 -> (25 < 32, stop)
	if len(res.Attempts) != 2 {
		t.Errorf("attempts = %d, want 2", len(res.Attempts))
	}
}

func TestRun_ProgressMonotonic(t *testing.T) {
	enc := sizedEncoder(ports.FormatGIF, func(o ports.EncodeOptions) int { return o.MaxColors * 100 })
	opts := ports.DefaultEncodeOptions()
	opts.MaxSizeKB = 2

	var last float64
	_, err := New(logger.NewNoop()).Run(context.Background(), enc, testFrames(1, 200), opts, func(p float64) {
		if p < last || p > 1 {
			t.Errorf("progress %v after %v", p, last)
		}
		last = p
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if last != 1 {
		t.Errorf("final progress = %v, want 1", last)
	}
}

func TestRun_EncodeError(t *testing.T) {
	boom := errors.New("boom")
	enc := &mocks.Encoder{
		EncodeFunc: func(context.Context, []frame.Frame, ports.EncodeOptions, ports.ProgressFunc) ([]byte, error) {
			return nil, boom
		},
	}
	opts := ports.DefaultEncodeOptions()
	opts.MaxSizeKB = 1
	_, err := New(logger.NewNoop()).Run(context.Background(), enc, testFrames(1, 100), opts, nil)
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
	if enc.CallCount() != 1 {
		t.Errorf("encode errors must not be retried, calls = %d", enc.CallCount())
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	enc := &mocks.Encoder{}
	_, err := New(logger.NewNoop()).Run(ctx, enc, testFrames(1, 100), ports.DefaultEncodeOptions(), nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestApply_QualityPerFormat(t *testing.T) {
	frames := testFrames(1, 100)

	webp := ports.DefaultEncodeOptions()
	webp.Format = ports.FormatWebP
	webp.WebPLossless = true
	out, ok := apply(StepQuality, webp, frames)
	if !ok || out.WebPLossless {
		t.Errorf("lossless WebP should switch to lossy first")
	}
	out, _ = apply(StepQuality, out, frames)
	if out.WebPQuality != webp.WebPQuality-webpStep {
		t.Errorf("WebP quality = %d", out.WebPQuality)
	}

	mp4 := ports.DefaultEncodeOptions()
	mp4.Format = ports.FormatMP4
	if _, ok := apply(StepPalette, mp4, frames); ok {
		t.Error("palette step must not apply to MP4")
	}
	out, ok = apply(StepQuality, mp4, frames)
	if !ok || out.VideoQuality != mp4.VideoQuality-videoStep {
		t.Errorf("video quality = %d", out.VideoQuality)
	}
}
