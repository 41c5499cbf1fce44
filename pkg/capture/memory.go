package capture

import (
	"github.com/user/gifcap/pkg/frame"
	"github.com/user/gifcap/pkg/metrics"
)

// MemoryPolicy bounds the memory a capture may occupy once it enters the editor.
type MemoryPolicy struct {
	// Ceiling is the projected footprint above which every frame is downscaled.
	Ceiling int64
	// WidthThreshold is the width above which a single frame is downscaled.
	WidthThreshold int
	// Factor is the integer downscale factor.
	Factor int
}

// DefaultMemoryPolicy returns a 4 GiB ceiling, a 2560 px width threshold and
// a 2x factor.
func DefaultMemoryPolicy() MemoryPolicy {
	return MemoryPolicy{
		Ceiling:        4 << 30,
		WidthThreshold: 2560,
		Factor:         2,
	}
}

// MemoryReport describes what Apply did.
type MemoryReport struct {
	ProjectedBytes int64
	DownscaledAll  bool
	Downscaled     int
}

// Apply returns frames that fit the policy. The input list is not modified.
func (p MemoryPolicy) Apply(frames []frame.Frame) ([]frame.Frame, MemoryReport) {
	var report MemoryReport
	if len(frames) == 0 {
		return frames, report
	}

	// Projection uses the first frame; all frames of a capture share a size.
	report.ProjectedBytes = frames[0].ByteSize() * int64(len(frames))
	report.DownscaledAll = p.Ceiling > 0 && report.ProjectedBytes > p.Ceiling

	out := make([]frame.Frame, len(frames))
	for i, f := range frames {
		if report.DownscaledAll || (p.WidthThreshold > 0 && f.Width() > p.WidthThreshold) {
			out[i] = frame.Frame{Image: frame.Downscale(f.Image, p.Factor), Duration: f.Duration}
			report.Downscaled++
			continue
		}
		out[i] = f
	}
	metrics.EditorDownscaledFramesTotal.Add(float64(report.Downscaled))
	return out, report
}

// PrepareForEditor applies the default memory policy.
func PrepareForEditor(frames []frame.Frame) []frame.Frame {
	out, _ := DefaultMemoryPolicy().Apply(frames)
	return out
}
