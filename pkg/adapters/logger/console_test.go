package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/user/gifcap/pkg/ports"
)

func TestConsoleLogger_Levels(t *testing.T) {
	var out, errOut bytes.Buffer
	log := NewConsoleWriter(ports.LevelInfo, &out, &errOut)

	log.Debug("hidden %d", 1)
	log.Info("kept %d frames", 3)
	log.Warn("fell back to %s", "gif")
	log.Error("boom")

	if strings.Contains(out.String(), "hidden") {
		t.Error("debug message should be filtered at info level")
	}
	if !strings.Contains(out.String(), "kept 3 frames") {
		t.Errorf("expected info on stdout, got %q", out.String())
	}
	if !strings.Contains(errOut.String(), "fell back to gif") || !strings.Contains(errOut.String(), "boom") {
		t.Errorf("expected warn and error on stderr, got %q", errOut.String())
	}
}

func TestConsoleLogger_WithComponent(t *testing.T) {
	var out bytes.Buffer
	log := NewConsoleWriter(ports.LevelDebug, &out, &out)

	log.WithComponent("encode").WithComponent("budget").Debug("attempt %d", 2)

	if got := out.String(); got != "[encode/budget] attempt 2\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestConsoleLogger_Quiet(t *testing.T) {
	var out bytes.Buffer
	log := NewConsoleWriter(ports.LevelQuiet, &out, &out)
	log.Error("nothing")
	if out.Len() != 0 {
		t.Errorf("quiet level should suppress everything, got %q", out.String())
	}
}
