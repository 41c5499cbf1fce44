package ports

import (
	"image"
)

// DebugSink receives intermediate results for troubleshooting.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveSessionJSON saves the capture session metadata.
	SaveSessionJSON(data []byte) error

	// SaveCapturedFrame saves a harvested frame before editing.
	SaveCapturedFrame(index int, img image.Image) error

	// SaveAttemptsJSON saves the size budget attempt log.
	SaveAttemptsJSON(data []byte) error
}
