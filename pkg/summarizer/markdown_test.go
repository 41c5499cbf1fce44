package summarizer

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/user/gifcap/pkg/budget"
	"github.com/user/gifcap/pkg/mocks"
)

func baseSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		Source: SourceInfo{
			Kind:      "x11",
			Region:    "10,20,640,480",
			SessionID: "0b5c",
		},
		Capture: CaptureInfo{
			Frames:     120,
			Duplicates: 30,
			Elapsed:    8 * time.Second,
		},
		Output: OutputInfo{
			Path:       "out.gif",
			Format:     "gif",
			Backend:    "gif",
			FrameCount: 120,
			Duration:   8 * time.Second,
			FileSize:   1024 * 1024,
			Colors:     256,
			Method:     "adaptive",
			Dither:     true,
		},
	}
}

func TestMarkdownFormatter_Format_Basic(t *testing.T) {
	result := NewMarkdownFormatter().Format(baseSummary())

	checks := []string{
		"# Capture Summary",
		"2024-01-15T10:30:00Z",
		"10,20,640,480",
		"| Frames | 120 |",
		"| Duplicates skipped | 30 |",
		"8.00 s",
		"1.00 MB",
		"adaptive",
		"| Loop | forever |",
	}
	for _, check := range checks {
		if !strings.Contains(result, check) {
			t.Errorf("expected output to contain %q", check)
		}
	}
	if strings.Contains(result, "## Video") {
		t.Error("video section should be omitted without inspection data")
	}
}

func TestMarkdownFormatter_Format_Fallback(t *testing.T) {
	s := baseSummary()
	s.Output.RequestedFormat = "webp"
	s.Output.FallbackUsed = true

	result := NewMarkdownFormatter().Format(s)
	if !strings.Contains(result, "gif (fallback from webp)") {
		t.Error("expected the fallback to be reported")
	}
}

func TestMarkdownFormatter_Format_Budget(t *testing.T) {
	tests := []struct {
		name string
		fits bool
		want string
	}{
		{"met", true, "512 KB (met)"},
		{"exceeded", false, "512 KB (exceeded)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := baseSummary()
			s.Output.MaxSizeKB = 512
			s.Output.Fits = tt.fits
			s.Attempts = []budget.Attempt{
				{Number: 1, Colors: 256, Quality: 100, Bytes: 900 * 1024},
				{Number: 2, Step: budget.StepWidth, MaxWidth: 512, Colors: 256, Quality: 100, Bytes: 500 * 1024, Fits: tt.fits},
			}

			result := NewMarkdownFormatter().Format(s)
			if !strings.Contains(result, tt.want) {
				t.Errorf("expected output to contain %q", tt.want)
			}
			if !strings.Contains(result, "| 2 | width | 512 |") {
				t.Error("expected the attempts table")
			}
		})
	}
}

func TestMarkdownFormatter_Format_Video(t *testing.T) {
	s := baseSummary()
	s.Output.Format = "mp4"
	s.Video = &VideoInfo{Codec: "avc1.42c01e", Width: 640, Height: 480, Samples: 120, Keyframes: 1}

	result := NewMarkdownFormatter().Format(s)
	for _, check := range []string{"## Video", "avc1.42c01e", "640x480"} {
		if !strings.Contains(result, check) {
			t.Errorf("expected output to contain %q", check)
		}
	}
	if strings.Contains(result, "Quantizer") {
		t.Error("quantizer rows are GIF only")
	}
}

func TestWriter_Write(t *testing.T) {
	fs := mocks.NewFileSystem()
	w := NewWriter(FormatFunc(func(*Summary) string { return "# hi\n" }), fs)

	path := filepath.Join("reports", "summary.md")
	if err := w.Write(path, NewSummary()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if data, ok := fs.GetFile(path); !ok || string(data) != "# hi\n" {
		t.Errorf("written = %q", data)
	}
}
