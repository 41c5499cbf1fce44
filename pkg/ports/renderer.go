package ports

import (
	"image"
	"image/color"
)

// Renderer abstracts image drawing and still-image codecs.
type Renderer interface {
	// CreateCanvas returns a canvas holding a private copy of base.
	CreateCanvas(base image.Image) Canvas

	// DecodeImage decodes image data into an image.Image.
	DecodeImage(data []byte, format ImageFormat) (image.Image, error)

	// EncodeImage encodes an image to the specified format.
	EncodeImage(img image.Image, format ImageFormat, quality int) ([]byte, error)
}

// Canvas provides the drawing operations used for cursor effects.
type Canvas interface {
	// FillCircle draws a filled circle centered at (x, y).
	FillCircle(x, y, radius float64, c color.Color)

	// StrokeCircle draws a circle outline centered at (x, y).
	StrokeCircle(x, y, radius float64, c color.Color, width float64)

	// ToRGBA returns the canvas pixels.
	ToRGBA() *image.RGBA
}

// ImageFormat specifies a still-image encoding.
type ImageFormat int

const (
	FormatJPEG ImageFormat = iota
	FormatPNG
)
