package sequence

import (
	"errors"
	"testing"
	"time"
)

func TestParseScript(t *testing.T) {
	script, err := ParseScript("trim:2:40, speed:1.5,remove-similar:4,YOYO")
	if err != nil {
		t.Fatalf("ParseScript failed: %v", err)
	}
	if len(script) != 4 {
		t.Fatalf("got %d edits", len(script))
	}
	if script[0].Name != "trim" || script[0].Args[1] != 40 {
		t.Errorf("unexpected first edit %+v", script[0])
	}
	if script[3].Name != "yoyo" {
		t.Errorf("name not normalized: %q", script[3].Name)
	}
	if got := script.String(); got != "trim:2:40,speed:1.5,remove-similar:4,yoyo" {
		t.Errorf("String() = %q", got)
	}
}

func TestParseScript_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unknown edit", "explode"},
		{"missing argument", "trim:1"},
		{"extra argument", "reverse:1"},
		{"not a number", "speed:fast"},
		{"fractional index", "delete:1.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseScript(tt.input); !errors.Is(err, ErrInvalidScript) {
				t.Errorf("expected ErrInvalidScript, got %v", err)
			}
		})
	}
}

func TestApply(t *testing.T) {
	s := mustNew(t, 6)
	script, err := ParseScript("trim:1:3,reverse,duration:50")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Apply(script); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if got := labels(s); !equalInts(got, []int{3, 2, 1}) {
		t.Errorf("labels = %v", got)
	}
	if d := s.TotalDuration(); d != 150*time.Millisecond {
		t.Errorf("total duration = %v", d)
	}

	if err := s.Undo(); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 6 {
		t.Errorf("script was not undone as one step, Len = %d", s.Len())
	}
}

func TestApply_FailureLeavesSequence(t *testing.T) {
	s := mustNew(t, 4)
	script, err := ParseScript("reverse,delete:10")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Apply(script); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	if got := labels(s); !equalInts(got, []int{0, 1, 2, 3}) {
		t.Errorf("labels = %v", got)
	}
	if s.CanUndo() {
		t.Error("failed script recorded in history")
	}
}
