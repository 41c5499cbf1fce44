package mocks

import (
	"image"
	"image/color"
	"sync"

	"github.com/user/gifcap/pkg/frame"
	"github.com/user/gifcap/pkg/ports"
)

// Renderer is a mock implementation of ports.Renderer.
type Renderer struct {
	DecodeImageFunc func(data []byte, format ports.ImageFormat) (image.Image, error)
	EncodeImageFunc func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error)

	mu       sync.Mutex
	Canvases []*Canvas
}

func (m *Renderer) CreateCanvas(base image.Image) ports.Canvas {
	c := &Canvas{img: frame.Clone(base)}
	m.mu.Lock()
	m.Canvases = append(m.Canvases, c)
	m.mu.Unlock()
	return c
}

func (m *Renderer) DecodeImage(data []byte, format ports.ImageFormat) (image.Image, error) {
	if m.DecodeImageFunc != nil {
		return m.DecodeImageFunc(data, format)
	}
	return image.NewRGBA(image.Rect(0, 0, 100, 100)), nil
}

func (m *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	if m.EncodeImageFunc != nil {
		return m.EncodeImageFunc(img, format, quality)
	}
	return []byte{}, nil
}

var _ ports.Renderer = (*Renderer)(nil)

// Canvas is a mock implementation of ports.Canvas recording draw calls.
type Canvas struct {
	img     *image.RGBA
	Circles []Circle
}

// Circle records a FillCircle or StrokeCircle call.
type Circle struct {
	X, Y, Radius float64
	Color        color.Color
	Stroke       bool
}

func (m *Canvas) FillCircle(x, y, radius float64, c color.Color) {
	m.Circles = append(m.Circles, Circle{X: x, Y: y, Radius: radius, Color: c})
}

func (m *Canvas) StrokeCircle(x, y, radius float64, c color.Color, width float64) {
	m.Circles = append(m.Circles, Circle{X: x, Y: y, Radius: radius, Color: c, Stroke: true})
}

func (m *Canvas) ToRGBA() *image.RGBA {
	return m.img
}

var _ ports.Canvas = (*Canvas)(nil)
