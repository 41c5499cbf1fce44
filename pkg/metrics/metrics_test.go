package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"CaptureSamplesTotal", CaptureSamplesTotal},
		{"CaptureSessionsTotal", CaptureSessionsTotal},
		{"CaptureFramesBuffered", CaptureFramesBuffered},
		{"EditorDownscaledFramesTotal", EditorDownscaledFramesTotal},
		{"EncodeAttemptsTotal", EncodeAttemptsTotal},
		{"EncodeFallbacksTotal", EncodeFallbacksTotal},
		{"EncodeDuration", EncodeDuration},
		{"EncodeOutputBytes", EncodeOutputBytes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestCounterIncrements(t *testing.T) {
	c := EncodeFallbacksTotal.WithLabelValues("webp", "gif")
	before := testutil.ToFloat64(c)
	c.Inc()
	if got := testutil.ToFloat64(c); got != before+1 {
		t.Errorf("expected %f, got %f", before+1, got)
	}
}

func TestWriteTextfile(t *testing.T) {
	CaptureSessionsTotal.WithLabelValues("completed").Inc()

	path := filepath.Join(t.TempDir(), "gifcap.prom")
	if err := WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "gifcap_capture_sessions_total") {
		t.Error("expected session counter in textfile")
	}
}
