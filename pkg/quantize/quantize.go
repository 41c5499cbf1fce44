// Package quantize reduces true-color frames to indexed images for GIF
// encoding.
//
// Palette construction is pluggable through PaletteBuilder: median cut
// (adaptive), k-means (learned palette) and octree. Pixels are then mapped
// onto the palette, optionally with Floyd-Steinberg error diffusion.
package quantize

import (
	"image"
	"image/color"

	"github.com/user/gifcap/pkg/ports"
)

// Options controls one quantization.
type Options struct {
	MaxColors      int
	Method         ports.QuantizeMethod
	Speed          int // 1-10, pixel sampling stride
	Quality        int // 0-100, scales the palette size
	Dither         bool
	DitherStrength float64
	CenterFocused  bool
	SkipQuantize   bool
}

// FromEncodeOptions extracts the quantization settings of an encode job.
func FromEncodeOptions(o ports.EncodeOptions) Options {
	return Options{
		MaxColors:      o.MaxColors,
		Method:         o.Method,
		Speed:          o.Speed,
		Quality:        o.Quality,
		Dither:         o.Dither,
		DitherStrength: o.DitherStrength,
		CenterFocused:  o.CenterFocused,
		SkipQuantize:   o.SkipQuantize,
	}
}

func (o Options) normalized() Options {
	o.MaxColors = clampInt(o.MaxColors, 2, ports.MaxPaletteSize)
	o.Speed = clampInt(o.Speed, 1, 10)
	o.Quality = clampInt(o.Quality, 0, 100)
	if o.DitherStrength < 0 {
		o.DitherStrength = 0
	}
	if o.DitherStrength > 1 {
		o.DitherStrength = 1
	}
	if o.Method == "" {
		o.Method = ports.MethodAdaptive
	}
	return o
}

// EffectiveColors returns the palette size after the quality scaling:
// max(2, MaxColors * Quality / 100).
func (o Options) EffectiveColors() int {
	o = o.normalized()
	return max(2, o.MaxColors*o.Quality/100)
}

// PaletteBuilder builds a palette of at most maxColors entries for img.
type PaletteBuilder interface {
	Build(img *image.RGBA, maxColors int) color.Palette
}

// Engine quantizes frames.
type Engine struct {
	// KMeansIterations is the fixed iteration count of the learned palette.
	KMeansIterations int
	// OctreeDepth is the maximum depth of the octree.
	OctreeDepth int
}

// NewEngine returns an engine with default tuning.
func NewEngine() *Engine {
	return &Engine{KMeansIterations: 8, OctreeDepth: 6}
}

// Builder returns the palette builder for opts.
func (e *Engine) Builder(opts Options) PaletteBuilder {
	opts = opts.normalized()
	switch opts.Method {
	case ports.MethodLearned:
		return &KMeans{Stride: opts.Speed, Iterations: e.KMeansIterations}
	case ports.MethodOctree:
		return &Octree{Stride: opts.Speed, Depth: e.OctreeDepth}
	default:
		return &MedianCut{Stride: opts.Speed}
	}
}

// Quantize converts img into a paletted image.
//
// Frames whose distinct colors fit the effective color count are mapped
// exactly, whatever the method. With SkipQuantize and a 256 color ceiling,
// frames that already have at most 256 distinct colors are mapped exactly;
// frames with more colors go through the configured method without
// dithering.
func (e *Engine) Quantize(img *image.RGBA, opts Options) *image.Paletted {
	opts = opts.normalized()

	if opts.SkipQuantize && opts.MaxColors == ports.MaxPaletteSize {
		if pal, index, ok := exactPalette(img, ports.MaxPaletteSize); ok {
			return mapExact(img, pal, index)
		}
		opts.Dither = false
	} else if pal, index, ok := exactPalette(img, opts.EffectiveColors()); ok {
		return mapExact(img, pal, index)
	}

	pal := e.Builder(opts).Build(img, opts.EffectiveColors())
	m := newMapper(pal)
	if opts.Dither && opts.DitherStrength > 0 {
		return diffuse(img, m, opts.DitherStrength, opts.CenterFocused)
	}
	return m.mapImage(img)
}

var defaultEngine = NewEngine()

// Quantize converts img with the default engine.
func Quantize(img *image.RGBA, opts Options) *image.Paletted {
	return defaultEngine.Quantize(img, opts)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
