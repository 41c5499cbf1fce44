package capture

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to State
		want     bool
	}{
		{StateIdle, StateAwaitingRegion, true},
		{StateIdle, StateRecording, true},
		{StateIdle, StatePaused, false},
		{StateAwaitingRegion, StateIdle, true},
		{StateAwaitingRegion, StateRecording, true},
		{StateRecording, StatePaused, true},
		{StateRecording, StateStopping, true},
		{StateRecording, StateIdle, false},
		{StatePaused, StateRecording, true},
		{StatePaused, StateStopping, true},
		{StateStopping, StateIdle, true},
		{StateStopping, StateRecording, false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestState_String(t *testing.T) {
	if StateAwaitingRegion.String() != "awaiting-region" {
		t.Errorf("unexpected name %q", StateAwaitingRegion.String())
	}
	if State(99).String() != "unknown" {
		t.Errorf("unexpected name for unknown state")
	}
}
