// Package budget negotiates encode parameters until an artifact fits a size
// ceiling.
package budget

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/user/gifcap/pkg/frame"
	"github.com/user/gifcap/pkg/metrics"
	"github.com/user/gifcap/pkg/ports"
)

// DefaultMaxAttempts bounds the number of encodes per job.
const DefaultMaxAttempts = 6

// Step size limits.
const (
	widthFactor   = 0.8
	minWidth      = 32
	minColors     = 16
	qualityStep   = 20
	minQuality    = 10
	webpStep      = 15
	videoStep     = 15
	minVideoLevel = 5
)

// ErrNoFrames is returned when there is nothing to encode.
var ErrNoFrames = errors.New("budget: no frames to encode")

// Step names one parameter reduction.
type Step string

const (
	StepNone    Step = ""
	StepWidth   Step = "width"
	StepPalette Step = "palette"
	StepQuality Step = "quality"
)

// order is the round-robin reduction sequence.
var order = []Step{StepWidth, StepPalette, StepQuality}

// Attempt records one encode.
type Attempt struct {
	Number   int           `json:"number"`
	Step     Step          `json:"step,omitempty"`
	MaxWidth int           `json:"maxWidth"`
	Colors   int           `json:"colors"`
	Quality  int           `json:"quality"`
	Bytes    int           `json:"bytes"`
	Fits     bool          `json:"fits"`
	Duration time.Duration `json:"duration"`
}

// Result is the outcome of a budgeted encode.
type Result struct {
	// Data is the smallest artifact produced.
	Data []byte
	// Options are the parameters that produced Data.
	Options ports.EncodeOptions
	// Fits is false when no attempt met the ceiling.
	Fits     bool
	Attempts []Attempt
}

// Controller runs encode attempts against a size ceiling.
type Controller struct {
	MaxAttempts int
	logger      ports.Logger
}

// New creates a controller with DefaultMaxAttempts.
func New(logger ports.Logger) *Controller {
	return &Controller{MaxAttempts: DefaultMaxAttempts, logger: logger.WithComponent("budget")}
}

// Run encodes frames with enc. With opts.MaxSizeKB <= 0 it encodes once.
// Otherwise every oversize artifact triggers the next applicable reduction
// until the artifact fits, no reduction applies, or MaxAttempts is reached.
// The smallest artifact is returned even when none fits.
func (c *Controller) Run(ctx context.Context, enc ports.Encoder, frames []frame.Frame, opts ports.EncodeOptions, progress ports.ProgressFunc) (Result, error) {
	if len(frames) == 0 {
		return Result{}, ErrNoFrames
	}

	limit := opts.MaxSizeKB * 1024
	attempts := 1
	if limit > 0 {
		attempts = max(1, c.MaxAttempts)
	}

	var (
		result Result
		next   int
		step   = StepNone
		done   float64
	)
	// The encoder's format decides which knobs matter, not the request.
	opts.Format = enc.Format()

	for n := 1; n <= attempts; n++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		base := done
		span := 1 / float64(attempts)
		started := time.Now()
		data, err := enc.Encode(ctx, frames, opts, func(p float64) {
			if progress != nil {
				progress(base + span*p)
			}
		})
		elapsed := time.Since(started)
		done += span
		format := string(opts.Format)
		metrics.EncodeDuration.WithLabelValues(format).Observe(elapsed.Seconds())
		if err != nil {
			metrics.EncodeAttemptsTotal.WithLabelValues(format, "error").Inc()
			return result, fmt.Errorf("attempt %d: %w", n, err)
		}

		fits := limit <= 0 || len(data) <= limit
		attempt := Attempt{
			Number:   n,
			Step:     step,
			MaxWidth: opts.MaxWidth,
			Colors:   opts.MaxColors,
			Quality:  qualityOf(opts),
			Bytes:    len(data),
			Fits:     fits,
			Duration: elapsed,
		}
		result.Attempts = append(result.Attempts, attempt)
		c.logger.Debug("Attempt %d (%s): %d bytes, fits=%v", n, stepName(step), len(data), fits)

		if result.Data == nil || len(data) < len(result.Data) {
			result.Data = data
			result.Options = opts
		}
		if fits {
			metrics.EncodeAttemptsTotal.WithLabelValues(format, "ok").Inc()
			metrics.EncodeOutputBytes.WithLabelValues(format).Observe(float64(len(data)))
			result.Data = data
			result.Options = opts
			result.Fits = true
			if progress != nil {
				progress(1)
			}
			return result, nil
		}
		metrics.EncodeAttemptsTotal.WithLabelValues(format, "oversize").Inc()

		var reduced bool
		opts, step, next, reduced = reduce(opts, frames, next)
		if !reduced {
			c.logger.Debug("No further reduction applies")
			break
		}
	}

	metrics.EncodeOutputBytes.WithLabelValues(string(result.Options.Format)).Observe(float64(len(result.Data)))
	c.logger.Warn("Output is %d KB, over the %d KB limit after %d attempts", kb(len(result.Data)), opts.MaxSizeKB, len(result.Attempts))
	if progress != nil {
		progress(1)
	}
	return result, nil
}

// reduce applies the first applicable step starting at order[next] and
// returns the new options, the step taken and the next round-robin position.
func reduce(opts ports.EncodeOptions, frames []frame.Frame, next int) (ports.EncodeOptions, Step, int, bool) {
	for i := range order {
		pos := (next + i) % len(order)
		if out, ok := apply(order[pos], opts, frames); ok {
			return out, order[pos], (pos + 1) % len(order), true
		}
	}
	return opts, StepNone, next, false
}

// apply performs one step. It reports false when the step cannot shrink
// the output any further for the options' format.
func apply(step Step, opts ports.EncodeOptions, frames []frame.Frame) (ports.EncodeOptions, bool) {
	switch step {
	case StepWidth:
		w := opts.MaxWidth
		if w <= 0 || w > widest(frames) {
			w = widest(frames)
		}
		nw := int(float64(w) * widthFactor)
		if nw < minWidth {
			return opts, false
		}
		opts.MaxWidth = nw
		return opts, true

	case StepPalette:
		if opts.Format != ports.FormatGIF || opts.MaxColors <= minColors {
			return opts, false
		}
		opts.MaxColors = max(minColors, opts.MaxColors/2)
		opts.SkipQuantize = false
		return opts, true

	case StepQuality:
		switch opts.Format {
		case ports.FormatGIF:
			if opts.Quality <= minQuality {
				return opts, false
			}
			opts.Quality = max(minQuality, opts.Quality-qualityStep)
			opts.SkipQuantize = false
			return opts, true
		case ports.FormatWebP:
			if opts.WebPLossless {
				opts.WebPLossless = false
				return opts, true
			}
			if opts.WebPQuality <= minQuality {
				return opts, false
			}
			opts.WebPQuality = max(minQuality, opts.WebPQuality-webpStep)
			return opts, true
		case ports.FormatMP4:
			if opts.VideoQuality <= minVideoLevel {
				return opts, false
			}
			opts.VideoQuality = max(minVideoLevel, opts.VideoQuality-videoStep)
			return opts, true
		}
	}
	return opts, false
}

func qualityOf(opts ports.EncodeOptions) int {
	switch opts.Format {
	case ports.FormatWebP:
		return opts.WebPQuality
	case ports.FormatMP4:
		return opts.VideoQuality
	default:
		return opts.Quality
	}
}

func widest(frames []frame.Frame) int {
	w := 0
	for _, f := range frames {
		w = max(w, f.Width())
	}
	return w
}

func stepName(s Step) string {
	if s == StepNone {
		return "initial"
	}
	return string(s)
}

func kb(n int) int {
	return (n + 1023) / 1024
}
