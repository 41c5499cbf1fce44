package capture

import "time"

// State is a capture session state.
type State int

const (
	StateIdle State = iota
	StateAwaitingRegion
	StateRecording
	StatePaused
	StateStopping
)

// String returns the name of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingRegion:
		return "awaiting-region"
	case StateRecording:
		return "recording"
	case StatePaused:
		return "paused"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

var transitions = map[State][]State{
	StateIdle:           {StateAwaitingRegion, StateRecording},
	StateAwaitingRegion: {StateIdle, StateRecording},
	StateRecording:      {StatePaused, StateStopping},
	StatePaused:         {StateRecording, StateStopping},
	StateStopping:       {StateIdle},
}

// CanTransition reports whether the state machine allows from -> to.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// StateChange is delivered to observers after every transition.
type StateChange struct {
	From State
	To   State
	At   time.Time
}
