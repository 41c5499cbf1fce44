// Package sequence holds the editable frame list of a recording together with
// its undo and redo history.
package sequence

import (
	"sync"
	"time"

	"github.com/user/gifcap/pkg/frame"
)

// DefaultHistoryCapacity is the undo depth used by New.
const DefaultHistoryCapacity = 20

// Change describes a completed mutation.
type Change struct {
	Op       string
	Len      int
	Selected int
}

// Sequence is an ordered, never empty list of frames with a selected index.
// It is safe for concurrent use; observers run after the lock is released.
type Sequence struct {
	mu       sync.Mutex
	frames   []frame.Frame
	selected int
	history  *history

	observers []func(Change)
}

// New creates a sequence from frames. The slice is copied.
func New(frames []frame.Frame) (*Sequence, error) {
	return NewWithCapacity(frames, DefaultHistoryCapacity)
}

// NewWithCapacity creates a sequence with a custom undo depth.
func NewWithCapacity(frames []frame.Frame, capacity int) (*Sequence, error) {
	if len(frames) == 0 {
		return nil, ErrWouldEmpty
	}
	return &Sequence{
		frames:  frame.Copy(frames),
		history: newHistory(capacity),
	}, nil
}

// OnChange registers an observer called after every mutation, undo and redo.
func (s *Sequence) OnChange(fn func(Change)) {
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

// Len returns the number of frames.
func (s *Sequence) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

// Frame returns the frame at i.
func (s *Sequence) Frame(i int) (frame.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := checkIndex(s.frames, i); err != nil {
		return frame.Frame{}, err
	}
	return s.frames[i], nil
}

// Snapshot returns a copy of the frame list for read-only use by encoders.
func (s *Sequence) Snapshot() []frame.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return frame.Copy(s.frames)
}

// TotalDuration returns the summed display time.
func (s *Sequence) TotalDuration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return frame.TotalDuration(s.frames)
}

// Selected returns the selected index.
func (s *Sequence) Selected() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Select changes the selected index. It is not recorded in the history.
func (s *Sequence) Select(i int) error {
	s.mu.Lock()
	if err := checkIndex(s.frames, i); err != nil {
		s.mu.Unlock()
		return err
	}
	s.selected = i
	change := s.changeLocked("select")
	observers := s.observers
	s.mu.Unlock()

	notify(observers, change)
	return nil
}

// CanUndo reports whether Undo has an entry to restore.
func (s *Sequence) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.canUndo()
}

// CanRedo reports whether Redo has an entry to restore.
func (s *Sequence) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.canRedo()
}

// Undo restores the frames before the last mutation. The selection is kept,
// clamped to the restored length.
func (s *Sequence) Undo() error {
	return s.travel("undo", s.history.undo)
}

// Redo re-applies the last undone mutation.
func (s *Sequence) Redo() error {
	return s.travel("redo", s.history.redo)
}

func (s *Sequence) travel(op string, step func(current []frame.Frame) ([]frame.Frame, error)) error {
	s.mu.Lock()
	next, err := step(s.frames)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.frames = next
	s.selected = clampIndex(s.selected, len(next))
	change := s.changeLocked(op)
	observers := s.observers
	s.mu.Unlock()

	notify(observers, change)
	return nil
}

// mutate replaces the frame list with the result of fn, recording the
// previous state for undo. fn must not modify its argument.
func (s *Sequence) mutate(op string, fn func([]frame.Frame) ([]frame.Frame, error)) error {
	s.mu.Lock()
	next, err := fn(s.frames)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if len(next) == 0 {
		s.mu.Unlock()
		return ErrWouldEmpty
	}
	s.history.push(s.frames)
	s.frames = next
	s.selected = clampIndex(s.selected, len(next))
	change := s.changeLocked(op)
	observers := s.observers
	s.mu.Unlock()

	notify(observers, change)
	return nil
}

func (s *Sequence) changeLocked(op string) Change {
	return Change{Op: op, Len: len(s.frames), Selected: s.selected}
}

func notify(observers []func(Change), c Change) {
	for _, fn := range observers {
		fn(c)
	}
}

func clampIndex(i, n int) int {
	if i >= n {
		return n - 1
	}
	if i < 0 {
		return 0
	}
	return i
}

// Delete removes the frame at i. The last remaining frame cannot be deleted.
func (s *Sequence) Delete(i int) error {
	return s.mutate("delete", func(f []frame.Frame) ([]frame.Frame, error) { return deleteAt(f, i) })
}

// Crop cuts every frame to r, clamped to the first frame's bounds.
func (s *Sequence) Crop(r frame.Rect) error {
	return s.mutate("crop", func(f []frame.Frame) ([]frame.Frame, error) { return cropAll(f, r) })
}

// Trim keeps the inclusive range [start, end].
func (s *Sequence) Trim(start, end int) error {
	return s.mutate("trim", func(f []frame.Frame) ([]frame.Frame, error) { return trim(f, start, end) })
}

// SpeedAdjust divides every duration by m.
func (s *Sequence) SpeedAdjust(m float64) error {
	return s.mutate("speed", func(f []frame.Frame) ([]frame.Frame, error) { return speed(f, m) })
}

// SetAllDuration gives every frame the duration d.
func (s *Sequence) SetAllDuration(d time.Duration) error {
	return s.mutate("duration", func(f []frame.Frame) ([]frame.Frame, error) { return setAllDuration(f, d) })
}

// SetOneDuration changes the duration of frame i.
func (s *Sequence) SetOneDuration(i int, d time.Duration) error {
	return s.mutate("frame-duration", func(f []frame.Frame) ([]frame.Frame, error) { return setOneDuration(f, i, d) })
}

// Reverse reverses the frame order.
func (s *Sequence) Reverse() error {
	return s.mutate("reverse", func(f []frame.Frame) ([]frame.Frame, error) { return reverse(f), nil })
}

// Yoyo appends the frames in reverse order without repeating the last one.
// A single frame sequence is left unchanged.
func (s *Sequence) Yoyo() error {
	return s.mutate("yoyo", func(f []frame.Frame) ([]frame.Frame, error) { return yoyo(f), nil })
}

// RemoveEven keeps the frames at even zero-based indices.
func (s *Sequence) RemoveEven() error {
	return s.mutate("remove-even", func(f []frame.Frame) ([]frame.Frame, error) { return keepParity(f, 0) })
}

// RemoveOdd keeps the frames at odd zero-based indices.
func (s *Sequence) RemoveOdd() error {
	return s.mutate("remove-odd", func(f []frame.Frame) ([]frame.Frame, error) { return keepParity(f, 1) })
}

// RemoveEveryNth drops every nth frame, counting from one.
func (s *Sequence) RemoveEveryNth(n int) error {
	return s.mutate("remove-nth", func(f []frame.Frame) ([]frame.Frame, error) { return removeEveryNth(f, n) })
}

// RemoveSimilar merges runs of frames whose sampled difference to the last kept
// frame is below threshold (0-255). Total duration is preserved.
func (s *Sequence) RemoveSimilar(threshold float64) error {
	return s.mutate("remove-similar", func(f []frame.Frame) ([]frame.Frame, error) { return removeSimilar(f, threshold) })
}
