package capture

import "errors"

var (
	// ErrInvalidTransition is returned when a control call does not fit the current state.
	ErrInvalidTransition = errors.New("capture: invalid state transition")

	// ErrInvalidRegion is returned when a session is started with an empty region.
	ErrInvalidRegion = errors.New("capture: region has no area")
)
