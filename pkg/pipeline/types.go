package pipeline

import (
	"time"

	"github.com/user/gifcap/pkg/budget"
	"github.com/user/gifcap/pkg/frame"
	"github.com/user/gifcap/pkg/ports"
)

// EncodeInput contains the frames and options of one export.
type EncodeInput struct {
	// Frames is a snapshot owned by the stage for the duration of the call.
	Frames  []frame.Frame
	Options ports.EncodeOptions
	// Progress may be nil.
	Progress ports.ProgressFunc
}

// EncodeResult contains the produced artifact and how it was made.
type EncodeResult struct {
	Data []byte

	// Format is the format of Data, which differs from the requested one
	// after a fallback.
	Format          ports.Format
	RequestedFormat ports.Format
	Backend         string
	FallbackUsed    bool

	// Options are the parameters of the kept attempt.
	Options  ports.EncodeOptions
	Fits     bool
	Attempts []budget.Attempt
	Elapsed  time.Duration
}
