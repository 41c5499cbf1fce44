// Package importer decodes existing media files into frames for editing.
package importer

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	_ "image/jpeg"
	_ "image/png"
	"time"

	_ "golang.org/x/image/webp"

	"github.com/user/gifcap/pkg/frame"
	"github.com/user/gifcap/pkg/ports"
)

// StillDuration is the display duration given to single-image inputs.
const StillDuration = time.Second

// defaultGIFDelay replaces zero GIF delays, as browsers do.
const defaultGIFDelay = 100 * time.Millisecond

// Result holds the decoded frames.
type Result struct {
	Frames []frame.Frame
	// Format is the detected container: "gif", "png", "jpeg" or "webp".
	Format string
	// LoopCount uses EncodeOptions semantics: 0 loops forever.
	LoopCount int
}

// Decode detects the format of data and decodes it.
func Decode(data []byte) (Result, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ports.ErrUnsupportedInputFormat, err)
	}

	if format == "gif" {
		return decodeGIF(data)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Result{}, fmt.Errorf("decode %s: %w", format, err)
	}
	return Result{
		Frames: []frame.Frame{frame.New(frame.Clone(img), StillDuration)},
		Format: format,
	}, nil
}

// decodeGIF renders every frame onto a full canvas, honoring disposal.
func decodeGIF(data []byte) (Result, error) {
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return Result{}, fmt.Errorf("decode gif: %w", err)
	}
	if len(g.Image) == 0 {
		return Result{}, fmt.Errorf("%w: gif has no frames", ports.ErrUnsupportedInputFormat)
	}

	bounds := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if bounds.Empty() {
		bounds = g.Image[0].Bounds()
	}
	canvas := image.NewRGBA(bounds)

	frames := make([]frame.Frame, 0, len(g.Image))
	for i, img := range g.Image {
		var disposal byte
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		var previous *image.RGBA
		if disposal == gif.DisposalPrevious {
			previous = frame.Clone(canvas)
		}

		draw.Draw(canvas, img.Bounds(), img, img.Bounds().Min, draw.Over)

		delay := defaultGIFDelay
		if i < len(g.Delay) && g.Delay[i] > 0 {
			delay = time.Duration(g.Delay[i]) * 10 * time.Millisecond
		}
		frames = append(frames, frame.New(frame.Clone(canvas), delay))

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, img.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			canvas = previous
		}
	}

	return Result{Frames: frames, Format: "gif", LoopCount: loopCount(g.LoopCount)}, nil
}

// loopCount maps a GIF NETSCAPE loop value to play count semantics.
func loopCount(n int) int {
	switch {
	case n == 0:
		return 0
	case n < 0:
		return 1
	default:
		return n + 1
	}
}
