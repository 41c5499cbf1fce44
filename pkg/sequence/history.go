package sequence

import "github.com/user/gifcap/pkg/frame"

// history is a bounded undo stack with a redo stack that is cleared by every
// new push. Stored frame slices are never modified after they are pushed.
type history struct {
	capacity int
	undos    [][]frame.Frame
	redos    [][]frame.Frame
}

func newHistory(capacity int) *history {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &history{capacity: capacity}
}

func (h *history) push(frames []frame.Frame) {
	if len(h.undos) == h.capacity {
		h.undos = append(h.undos[:0:0], h.undos[1:]...)
	}
	h.undos = append(h.undos, frames)
	h.redos = nil
}

func (h *history) canUndo() bool { return len(h.undos) > 0 }
func (h *history) canRedo() bool { return len(h.redos) > 0 }

func (h *history) undo(current []frame.Frame) ([]frame.Frame, error) {
	if len(h.undos) == 0 {
		return nil, ErrNothingToUndo
	}
	prev := h.undos[len(h.undos)-1]
	h.undos = h.undos[:len(h.undos)-1]
	h.redos = append(h.redos, current)
	return prev, nil
}

func (h *history) redo(current []frame.Frame) ([]frame.Frame, error) {
	if len(h.redos) == 0 {
		return nil, ErrNothingToRedo
	}
	next := h.redos[len(h.redos)-1]
	h.redos = h.redos[:len(h.redos)-1]
	h.undos = append(h.undos, current)
	return next, nil
}
