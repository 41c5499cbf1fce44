package sequence

import "errors"

var (
	// ErrWouldEmpty rejects an edit that would leave no frames.
	ErrWouldEmpty = errors.New("sequence: edit would remove every frame")

	// ErrIndexOutOfRange is returned for frame indices outside the sequence.
	ErrIndexOutOfRange = errors.New("sequence: index out of range")

	// ErrInvalidArgument is returned for non-positive multipliers, counts and
	// thresholds.
	ErrInvalidArgument = errors.New("sequence: invalid argument")

	// ErrNothingToUndo and ErrNothingToRedo are returned by Undo and Redo on
	// an empty history.
	ErrNothingToUndo = errors.New("sequence: nothing to undo")
	ErrNothingToRedo = errors.New("sequence: nothing to redo")

	// ErrInvalidScript is returned by ParseScript.
	ErrInvalidScript = errors.New("sequence: invalid edit script")
)
