package mp4encoder

import "errors"

var (
	// ErrNoFrames is returned when trying to build an MP4 with no frames.
	ErrNoFrames = errors.New("mp4encoder: no frames to encode")

	// ErrFrameCountMismatch is returned when ffmpeg produced a different number
	// of access units than frames were written.
	ErrFrameCountMismatch = errors.New("mp4encoder: access unit count does not match frame count")

	// ErrNoVideoTrack is returned by Inspect for files without a video track.
	ErrNoVideoTrack = errors.New("mp4encoder: no video track found")
)
