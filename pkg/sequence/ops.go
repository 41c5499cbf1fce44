package sequence

import (
	"fmt"
	"time"

	"github.com/user/gifcap/pkg/frame"
	"github.com/user/gifcap/pkg/ports"
)

// The functions below never modify their input slice. Bitmaps are shared
// unless the operation produces new pixels.

func checkIndex(frames []frame.Frame, i int) error {
	if i < 0 || i >= len(frames) {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrIndexOutOfRange, i, len(frames))
	}
	return nil
}

func deleteAt(frames []frame.Frame, i int) ([]frame.Frame, error) {
	if err := checkIndex(frames, i); err != nil {
		return nil, err
	}
	if len(frames) == 1 {
		return nil, ErrWouldEmpty
	}
	out := make([]frame.Frame, 0, len(frames)-1)
	out = append(out, frames[:i]...)
	return append(out, frames[i+1:]...), nil
}

func cropAll(frames []frame.Frame, r frame.Rect) ([]frame.Frame, error) {
	clamped := r.ClampTo(frames[0].Image.Bounds())
	if clamped.Empty() {
		return nil, fmt.Errorf("%w: %s", ports.ErrInvalidCropRegion, r)
	}
	out := make([]frame.Frame, len(frames))
	for i, f := range frames {
		out[i] = frame.Frame{Image: frame.Crop(f.Image, clamped.Bounds()), Duration: f.Duration}
	}
	return out, nil
}

func trim(frames []frame.Frame, start, end int) ([]frame.Frame, error) {
	if err := checkIndex(frames, start); err != nil {
		return nil, err
	}
	if err := checkIndex(frames, end); err != nil {
		return nil, err
	}
	if start > end {
		return nil, fmt.Errorf("%w: start %d after end %d", ErrIndexOutOfRange, start, end)
	}
	return frame.Copy(frames[start : end+1]), nil
}

func speed(frames []frame.Frame, m float64) ([]frame.Frame, error) {
	if m <= 0 {
		return nil, fmt.Errorf("%w: speed multiplier %g", ErrInvalidArgument, m)
	}
	out := make([]frame.Frame, len(frames))
	for i, f := range frames {
		out[i] = f.WithDuration(time.Duration(float64(f.Duration) / m))
	}
	return out, nil
}

func setAllDuration(frames []frame.Frame, d time.Duration) ([]frame.Frame, error) {
	if d <= 0 {
		return nil, fmt.Errorf("%w: duration %s", ErrInvalidArgument, d)
	}
	out := make([]frame.Frame, len(frames))
	for i, f := range frames {
		out[i] = f.WithDuration(d)
	}
	return out, nil
}

func setOneDuration(frames []frame.Frame, i int, d time.Duration) ([]frame.Frame, error) {
	if err := checkIndex(frames, i); err != nil {
		return nil, err
	}
	if d <= 0 {
		return nil, fmt.Errorf("%w: duration %s", ErrInvalidArgument, d)
	}
	out := frame.Copy(frames)
	out[i] = out[i].WithDuration(d)
	return out, nil
}

func reverse(frames []frame.Frame) []frame.Frame {
	out := make([]frame.Frame, len(frames))
	for i, f := range frames {
		out[len(frames)-1-i] = f
	}
	return out
}

// yoyo appends the sequence played backwards without repeating the last frame:
// [A B C] becomes [A B C B A].
func yoyo(frames []frame.Frame) []frame.Frame {
	if len(frames) < 2 {
		return frame.Copy(frames)
	}
	out := make([]frame.Frame, 0, 2*len(frames)-1)
	out = append(out, frames...)
	for i := len(frames) - 2; i >= 0; i-- {
		out = append(out, frames[i])
	}
	return out
}

// keepParity keeps frames whose zero-based index has the given parity.
func keepParity(frames []frame.Frame, parity int) ([]frame.Frame, error) {
	out := make([]frame.Frame, 0, (len(frames)+1)/2)
	for i, f := range frames {
		if i%2 == parity {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return nil, ErrWouldEmpty
	}
	return out, nil
}

// removeEveryNth drops frames whose one-based position is a multiple of n.
func removeEveryNth(frames []frame.Frame, n int) ([]frame.Frame, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: n must be at least 2, got %d", ErrInvalidArgument, n)
	}
	out := make([]frame.Frame, 0, len(frames))
	for i, f := range frames {
		if (i+1)%n != 0 {
			out = append(out, f)
		}
	}
	return out, nil
}

// removeSimilar drops frames whose sampled difference to the last kept frame
// is below threshold and adds their durations to that frame.
func removeSimilar(frames []frame.Frame, threshold float64) ([]frame.Frame, error) {
	if threshold < 0 {
		return nil, fmt.Errorf("%w: threshold %g", ErrInvalidArgument, threshold)
	}
	out := make([]frame.Frame, 0, len(frames))
	out = append(out, frames[0])
	for _, f := range frames[1:] {
		last := &out[len(out)-1]
		if frame.SampleDifference(last.Image, f.Image) < threshold {
			last.Duration += f.Duration
			continue
		}
		out = append(out, f)
	}
	return out, nil
}
