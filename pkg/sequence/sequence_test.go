package sequence

import (
	"errors"
	"image"
	"testing"
	"time"

	"github.com/user/gifcap/pkg/frame"
	"github.com/user/gifcap/pkg/ports"
)

// labelled builds n 4x4 frames whose red channel encodes the index.
func labelled(n int) []frame.Frame {
	frames := make([]frame.Frame, n)
	for i := range frames {
		img := image.NewRGBA(image.Rect(0, 0, 4, 4))
		for p := 0; p < len(img.Pix); p += 4 {
			img.Pix[p] = uint8(i * 10)
			img.Pix[p+3] = 255
		}
		frames[i] = frame.New(img, 100*time.Millisecond)
	}
	return frames
}

func labelOf(f frame.Frame) int {
	return int(f.Image.Pix[0]) / 10
}

func labels(s *Sequence) []int {
	snap := s.Snapshot()
	out := make([]int, len(snap))
	for i, f := range snap {
		out[i] = labelOf(f)
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func mustNew(t *testing.T, n int) *Sequence {
	t.Helper()
	s, err := New(labelled(n))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s
}

func TestNew_Empty(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrWouldEmpty) {
		t.Errorf("expected ErrWouldEmpty, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	s := mustNew(t, 3)
	if err := s.Delete(1); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if got := labels(s); !equalInts(got, []int{0, 2}) {
		t.Errorf("labels = %v", got)
	}
	if err := s.Delete(5); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestDelete_LastFrameRejected(t *testing.T) {
	s := mustNew(t, 1)
	if err := s.Delete(0); !errors.Is(err, ErrWouldEmpty) {
		t.Fatalf("expected ErrWouldEmpty, got %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d", s.Len())
	}
	if s.CanUndo() {
		t.Error("rejected edit was recorded in history")
	}
}

func TestTrim(t *testing.T) {
	s := mustNew(t, 10)
	if err := s.Trim(2, 5); err != nil {
		t.Fatalf("Trim failed: %v", err)
	}
	if got := labels(s); !equalInts(got, []int{2, 3, 4, 5}) {
		t.Errorf("labels = %v", got)
	}

	tests := []struct {
		name       string
		start, end int
	}{
		{"start after end", 3, 1},
		{"negative start", -1, 2},
		{"end past length", 0, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Trim(tt.start, tt.end); !errors.Is(err, ErrIndexOutOfRange) {
				t.Errorf("expected ErrIndexOutOfRange, got %v", err)
			}
		})
	}
}

func TestCrop(t *testing.T) {
	s := mustNew(t, 2)
	if err := s.Crop(frame.Rect{X: 1, Y: 1, Width: 10, Height: 2}); err != nil {
		t.Fatalf("Crop failed: %v", err)
	}
	f, _ := s.Frame(1)
	if f.Width() != 3 || f.Height() != 2 {
		t.Errorf("cropped to %dx%d, want 3x2", f.Width(), f.Height())
	}
	if labelOf(f) != 1 {
		t.Errorf("crop lost pixel data")
	}

	if err := s.Crop(frame.Rect{X: 50, Y: 50, Width: 2, Height: 2}); !errors.Is(err, ports.ErrInvalidCropRegion) {
		t.Errorf("expected ErrInvalidCropRegion, got %v", err)
	}
}

func TestSpeedAdjust(t *testing.T) {
	s := mustNew(t, 2)
	if err := s.SpeedAdjust(2); err != nil {
		t.Fatalf("SpeedAdjust failed: %v", err)
	}
	f, _ := s.Frame(0)
	if f.Duration != 50*time.Millisecond {
		t.Errorf("duration = %v", f.Duration)
	}

	if err := s.SpeedAdjust(100); err != nil {
		t.Fatalf("SpeedAdjust failed: %v", err)
	}
	f, _ = s.Frame(0)
	if f.Duration != frame.MinDuration {
		t.Errorf("duration not floored: %v", f.Duration)
	}

	if err := s.SpeedAdjust(0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestSetDurations(t *testing.T) {
	s := mustNew(t, 3)
	if err := s.SetAllDuration(40 * time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if err := s.SetOneDuration(1, time.Millisecond); err != nil {
		t.Fatal(err)
	}
	want := []time.Duration{40 * time.Millisecond, frame.MinDuration, 40 * time.Millisecond}
	for i, f := range s.Snapshot() {
		if f.Duration != want[i] {
			t.Errorf("frame %d duration = %v, want %v", i, f.Duration, want[i])
		}
	}
}

func TestReverse(t *testing.T) {
	s := mustNew(t, 3)
	if err := s.Reverse(); err != nil {
		t.Fatal(err)
	}
	if got := labels(s); !equalInts(got, []int{2, 1, 0}) {
		t.Errorf("labels = %v", got)
	}
}

func TestYoyo(t *testing.T) {
	s := mustNew(t, 3)
	if err := s.Yoyo(); err != nil {
		t.Fatal(err)
	}
	if got := labels(s); !equalInts(got, []int{0, 1, 2, 1, 0}) {
		t.Errorf("labels = %v", got)
	}

	for n := 2; n <= 6; n++ {
		s := mustNew(t, n)
		s.Yoyo()
		if s.Len() != 2*n-1 {
			t.Errorf("yoyo of %d frames has %d, want %d", n, s.Len(), 2*n-1)
		}
	}

	one := mustNew(t, 1)
	one.Yoyo()
	if one.Len() != 1 {
		t.Errorf("yoyo of one frame has %d", one.Len())
	}
}

func TestRemoveEvenOdd(t *testing.T) {
	for n := 1; n <= 7; n++ {
		s := mustNew(t, n)
		if err := s.RemoveEven(); err != nil {
			t.Fatalf("RemoveEven(%d) failed: %v", n, err)
		}
		if want := (n + 1) / 2; s.Len() != want {
			t.Errorf("RemoveEven on %d kept %d, want %d", n, s.Len(), want)
		}
	}

	s := mustNew(t, 5)
	if err := s.RemoveOdd(); err != nil {
		t.Fatal(err)
	}
	if got := labels(s); !equalInts(got, []int{1, 3}) {
		t.Errorf("labels = %v", got)
	}

	one := mustNew(t, 1)
	if err := one.RemoveOdd(); !errors.Is(err, ErrWouldEmpty) {
		t.Errorf("expected ErrWouldEmpty, got %v", err)
	}
}

func TestRemoveEveryNth(t *testing.T) {
	s := mustNew(t, 10)
	if err := s.RemoveEveryNth(3); err != nil {
		t.Fatal(err)
	}
	if got := labels(s); !equalInts(got, []int{0, 1, 3, 4, 6, 7, 9}) {
		t.Errorf("labels = %v", got)
	}
	if err := s.RemoveEveryNth(1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestRemoveSimilar_PreservesDuration(t *testing.T) {
	frames := labelled(2)
	frames = append(frames, frames[1], frames[1], labelled(4)[3])
	s, err := New(frames)
	if err != nil {
		t.Fatal(err)
	}
	before := s.TotalDuration()

	if err := s.RemoveSimilar(1); err != nil {
		t.Fatal(err)
	}
	if got := labels(s); !equalInts(got, []int{0, 1, 3}) {
		t.Errorf("labels = %v", got)
	}
	if s.TotalDuration() != before {
		t.Errorf("total duration %v, want %v", s.TotalDuration(), before)
	}
	f, _ := s.Frame(1)
	if f.Duration != 300*time.Millisecond {
		t.Errorf("merged duration = %v", f.Duration)
	}
}

func TestRemoveSimilar_Threshold(t *testing.T) {
	// Adjacent labels differ by 10 on one of four channels: a difference of 2.5.
	tests := []struct {
		name      string
		frames    []frame.Frame
		threshold float64
		want      []int
	}{
		{"equal to threshold is kept", labelled(3), 2.5, []int{0, 1, 2}},
		{"below threshold is merged", labelled(3), 2.6, []int{0, 2}},
		{"zero keeps identical frames", append(labelled(1), labelled(1)...), 0, []int{0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.frames)
			if err != nil {
				t.Fatal(err)
			}
			if err := s.RemoveSimilar(tt.threshold); err != nil {
				t.Fatal(err)
			}
			if got := labels(s); !equalInts(got, tt.want) {
				t.Errorf("labels = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUndoRedo(t *testing.T) {
	s := mustNew(t, 5)
	original := labels(s)

	if err := s.Reverse(); err != nil {
		t.Fatal(err)
	}
	reversed := labels(s)

	if err := s.Undo(); err != nil {
		t.Fatalf("Undo failed: %v", err)
	}
	if got := labels(s); !equalInts(got, original) {
		t.Errorf("after undo %v, want %v", got, original)
	}
	if err := s.Redo(); err != nil {
		t.Fatalf("Redo failed: %v", err)
	}
	if got := labels(s); !equalInts(got, reversed) {
		t.Errorf("after redo %v, want %v", got, reversed)
	}
	if err := s.Redo(); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("expected ErrNothingToRedo, got %v", err)
	}
}

func TestUndo_ClampsSelection(t *testing.T) {
	s := mustNew(t, 5)
	s.Select(4)
	s.Trim(0, 1)
	if got := s.Selected(); got != 1 {
		t.Errorf("Selected after trim = %d, want 1", got)
	}
	s.Undo()
	s.Select(4)
	if err := s.Redo(); err != nil {
		t.Fatal(err)
	}
	if got := s.Selected(); got != 1 {
		t.Errorf("Selected = %d, want 1", got)
	}
}

func TestHistory_Capacity(t *testing.T) {
	s, err := NewWithCapacity(labelled(3), 2)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		s.Reverse()
	}
	undone := 0
	for s.Undo() == nil {
		undone++
	}
	if undone != 2 {
		t.Errorf("undid %d steps, want 2", undone)
	}
}

func TestHistory_MutationClearsRedo(t *testing.T) {
	s := mustNew(t, 3)
	s.Reverse()
	s.Undo()
	if !s.CanRedo() {
		t.Fatal("expected redo entry")
	}
	s.Yoyo()
	if s.CanRedo() {
		t.Error("mutation did not clear redo")
	}
}

func TestOnChange(t *testing.T) {
	s := mustNew(t, 3)
	var ops []string
	s.OnChange(func(c Change) { ops = append(ops, c.Op) })

	s.Reverse()
	s.Delete(9)
	s.Undo()
	s.Redo()

	want := []string{"reverse", "undo", "redo"}
	if len(ops) != len(want) {
		t.Fatalf("ops = %v, want %v", ops, want)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Errorf("ops[%d] = %s, want %s", i, ops[i], want[i])
		}
	}
}

func TestSnapshot_Isolated(t *testing.T) {
	s := mustNew(t, 3)
	snap := s.Snapshot()
	s.Reverse()
	if labelOf(snap[0]) != 0 {
		t.Error("snapshot changed after edit")
	}
	snap[0] = frame.New(image.NewRGBA(image.Rect(0, 0, 1, 1)), time.Second)
	if f, _ := s.Frame(0); f.Width() != 4 {
		t.Error("sequence changed through snapshot")
	}
}
