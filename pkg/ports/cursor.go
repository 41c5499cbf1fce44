package ports

import (
	"context"
	"time"

	"github.com/user/gifcap/pkg/frame"
)

// CursorKind is the transition a cursor event records.
type CursorKind int

const (
	CursorMove CursorKind = iota
	CursorLeftDown
	CursorRightDown
)

// String returns the name of the kind.
func (k CursorKind) String() string {
	switch k {
	case CursorMove:
		return "move"
	case CursorLeftDown:
		return "left-down"
	case CursorRightDown:
		return "right-down"
	default:
		return "unknown"
	}
}

// CursorEvent is a pointer observation in screen coordinates.
type CursorEvent struct {
	// Timestamp is the offset from the start of the capture session.
	Timestamp time.Duration
	X, Y      float64
	Kind      CursorKind
}

// CursorTracker streams pointer events until ctx is cancelled.
type CursorTracker interface {
	Track(ctx context.Context, region frame.Rect) (<-chan CursorEvent, error)
}
