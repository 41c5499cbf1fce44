package ports

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNoDisplayFound is returned when the capture target cannot be resolved.
	ErrNoDisplayFound = errors.New("no display found for the capture region")

	// ErrPermissionDenied is returned when the platform refuses screen capture.
	ErrPermissionDenied = errors.New("screen capture permission denied: grant screen recording access to this program and start the recording again")

	// ErrEmptyCapture is returned when a session stops without any frame.
	ErrEmptyCapture = errors.New("capture produced no frames")

	// ErrInvalidCropRegion is returned for a crop rectangle without area.
	ErrInvalidCropRegion = errors.New("crop region is empty")

	// ErrUnsupportedInputFormat is returned when an imported file cannot be decoded.
	ErrUnsupportedInputFormat = errors.New("unsupported input format")

	// ErrEncodeFailure marks a backend failure; see EncodeError.
	ErrEncodeFailure = errors.New("encode failed")

	// ErrFileSystemFailure is returned when an artifact cannot be written or read.
	ErrFileSystemFailure = errors.New("file system operation failed")

	// ErrRegionCancelled is returned by a RegionPicker when the user cancels.
	ErrRegionCancelled = errors.New("region selection cancelled")
)

// EncodeError wraps a backend failure with the format that failed.
type EncodeError struct {
	Format Format
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: %v", e.Format, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrEncodeFailure) match.
func (e *EncodeError) Is(target error) bool {
	return target == ErrEncodeFailure
}

// NewEncodeError wraps err unless it already is an EncodeError or a
// context error.
func NewEncodeError(format Format, err error) error {
	if err == nil {
		return nil
	}
	var ee *EncodeError
	if errors.As(err, &ee) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &EncodeError{Format: format, Err: err}
}
