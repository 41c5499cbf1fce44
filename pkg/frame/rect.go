package frame

import (
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"
)

// ErrInvalidRect is returned when a rectangle string cannot be parsed.
var ErrInvalidRect = errors.New("frame: invalid rectangle")

// Rect is a rectangle in screen or bitmap coordinates.
type Rect struct {
	X      int `yaml:"x" json:"x"`
	Y      int `yaml:"y" json:"y"`
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// RectFrom converts an image.Rectangle.
func RectFrom(r image.Rectangle) Rect {
	return Rect{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Bounds converts r to an image.Rectangle.
func (r Rect) Bounds() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// ClampTo intersects r with bounds.
func (r Rect) ClampTo(bounds image.Rectangle) Rect {
	return RectFrom(r.Bounds().Intersect(bounds))
}

// String formats the rectangle as "x,y,w,h", the form ParseRect accepts.
func (r Rect) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", r.X, r.Y, r.Width, r.Height)
}

// ParseRect parses "x,y,w,h".
func ParseRect(s string) (Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Rect{}, fmt.Errorf("%w: %q", ErrInvalidRect, s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Rect{}, fmt.Errorf("%w: %q", ErrInvalidRect, s)
		}
		v[i] = n
	}
	r := Rect{X: v[0], Y: v[1], Width: v[2], Height: v[3]}
	if r.Empty() {
		return Rect{}, fmt.Errorf("%w: %q has no area", ErrInvalidRect, s)
	}
	return r, nil
}
