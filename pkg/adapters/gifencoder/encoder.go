// Package gifencoder encodes frame sequences as animated GIFs with the
// standard library GIF writer and per-frame palettes from pkg/quantize.
package gifencoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"runtime"
	"sync"
	"time"

	"github.com/user/gifcap/pkg/frame"
	"github.com/user/gifcap/pkg/ports"
	"github.com/user/gifcap/pkg/quantize"
)

// ErrNoFrames is returned when there is nothing to encode.
var ErrNoFrames = errors.New("gifencoder: no frames to encode")

// delayUnit is the GIF frame delay resolution.
const delayUnit = 10 * time.Millisecond

// Encoder implements ports.Encoder for GIF.
type Encoder struct {
	engine     *quantize.Engine
	logger     ports.Logger
	numWorkers int
}

// New creates a GIF encoder. numWorkers <= 0 uses one worker per CPU.
func New(engine *quantize.Engine, logger ports.Logger, numWorkers int) *Encoder {
	if engine == nil {
		engine = quantize.NewEngine()
	}
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &Encoder{
		engine:     engine,
		logger:     logger.WithComponent("gif"),
		numWorkers: numWorkers,
	}
}

// Format implements ports.Encoder.
func (e *Encoder) Format() ports.Format {
	return ports.FormatGIF
}

// Encode implements ports.Encoder.
func (e *Encoder) Encode(ctx context.Context, frames []frame.Frame, opts ports.EncodeOptions, progress ports.ProgressFunc) ([]byte, error) {
	if len(frames) == 0 {
		return nil, ports.NewEncodeError(ports.FormatGIF, ErrNoFrames)
	}
	report(progress, 0)

	frames = frame.FitFramesWidth(frames, opts.MaxWidth)
	qopts := quantize.FromEncodeOptions(opts)
	e.logger.Debug("Quantizing %d frames (%s, %d colors) with %d workers",
		len(frames), qopts.Method, qopts.EffectiveColors(), e.numWorkers)

	images, err := e.quantizeAll(ctx, frames, qopts, func(done int) {
		report(progress, 0.9*float64(done)/float64(len(frames)))
	})
	if err != nil {
		return nil, ports.NewEncodeError(ports.FormatGIF, err)
	}

	g := &gif.GIF{
		Image:     images,
		Delay:     Delays(frames),
		Disposal:  make([]byte, len(images)),
		LoopCount: LoopCount(opts.LoopCount),
	}
	for i := range g.Disposal {
		g.Disposal[i] = gif.DisposalNone
	}
	for _, img := range images {
		b := img.Bounds()
		g.Config.Width = max(g.Config.Width, b.Dx())
		g.Config.Height = max(g.Config.Height, b.Dy())
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		return nil, ports.NewEncodeError(ports.FormatGIF, fmt.Errorf("write gif: %w", err))
	}
	report(progress, 1)
	return buf.Bytes(), nil
}

// indexedImage holds a quantized frame with its original index.
type indexedImage struct {
	index int
	img   *image.Paletted
}

// quantizeAll quantizes frames with a worker pool. onDone is called from the
// calling goroutine with the number of finished frames.
func (e *Encoder) quantizeAll(ctx context.Context, frames []frame.Frame, opts quantize.Options, onDone func(int)) ([]*image.Paletted, error) {
	jobs := make(chan int, len(frames))
	results := make(chan indexedImage, len(frames))

	var wg sync.WaitGroup
	for w := 0; w < min(e.numWorkers, len(frames)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if ctx.Err() != nil {
					return
				}
				results <- indexedImage{index: idx, img: e.engine.Quantize(frames[idx].Image, opts)}
			}
		}()
	}

	for i := range frames {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	images := make([]*image.Paletted, len(frames))
	done := 0
	for r := range results {
		images[r.index] = r.img
		done++
		onDone(done)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return images, nil
}

// Delays converts frame durations to GIF delays in hundredths of a second.
// Rounding error is carried to the next frame so the total stays close to
// the summed durations.
func Delays(frames []frame.Frame) []int {
	delays := make([]int, len(frames))
	var carry time.Duration
	for i, f := range frames {
		d := f.Duration + carry
		cs := int((d + delayUnit/2) / delayUnit)
		if cs < 1 {
			cs = 1
		}
		carry = d - time.Duration(cs)*delayUnit
		delays[i] = cs
	}
	return delays
}

// LoopCount maps a play count (0 = forever, n = play n times) to the GIF
// loop extension value (0 = forever, -1 = no extension, n = repeat n times).
func LoopCount(plays int) int {
	switch {
	case plays <= 0:
		return 0
	case plays == 1:
		return -1
	default:
		return plays - 1
	}
}

func report(progress ports.ProgressFunc, v float64) {
	if progress != nil {
		progress(v)
	}
}

var _ ports.Encoder = (*Encoder)(nil)
