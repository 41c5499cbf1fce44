// Package ggrenderer provides a renderer implementation using the gg library.
package ggrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"

	"github.com/fogleman/gg"

	"github.com/user/gifcap/pkg/frame"
	"github.com/user/gifcap/pkg/ports"
)

// Renderer implements ports.Renderer using the gg library.
type Renderer struct{}

// New creates a new Renderer.
func New() *Renderer {
	return &Renderer{}
}

// CreateCanvas creates a canvas holding a copy of base.
func (r *Renderer) CreateCanvas(base image.Image) ports.Canvas {
	b := base.Bounds()
	dc := gg.NewContext(b.Dx(), b.Dy())
	dc.DrawImage(base, -b.Min.X, -b.Min.Y)
	return &Canvas{dc: dc}
}

// DecodeImage decodes image data into an image.Image.
func (r *Renderer) DecodeImage(data []byte, format ports.ImageFormat) (image.Image, error) {
	reader := bytes.NewReader(data)

	switch format {
	case ports.FormatJPEG:
		return jpeg.Decode(reader)
	case ports.FormatPNG:
		return png.Decode(reader)
	default:
		img, _, err := image.Decode(reader)
		return img, err
	}
}

// EncodeImage encodes an image to the specified format.
func (r *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case ports.FormatJPEG:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encode JPEG: %w", err)
		}
	case ports.FormatPNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode PNG: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format: %d", format)
	}

	return buf.Bytes(), nil
}

var _ ports.Renderer = (*Renderer)(nil)

// Canvas implements ports.Canvas using gg.Context.
type Canvas struct {
	dc *gg.Context
}

// FillCircle draws a filled circle.
func (c *Canvas) FillCircle(x, y, radius float64, col color.Color) {
	c.dc.SetColor(col)
	c.dc.DrawCircle(x, y, radius)
	c.dc.Fill()
}

// StrokeCircle draws a circle outline.
func (c *Canvas) StrokeCircle(x, y, radius float64, col color.Color, width float64) {
	c.dc.SetColor(col)
	c.dc.SetLineWidth(width)
	c.dc.DrawCircle(x, y, radius)
	c.dc.Stroke()
}

// ToRGBA returns the canvas pixels.
func (c *Canvas) ToRGBA() *image.RGBA {
	img := c.dc.Image()
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	return frame.Clone(img)
}

var _ ports.Canvas = (*Canvas)(nil)
