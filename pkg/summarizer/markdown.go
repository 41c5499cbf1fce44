package summarizer

import (
	"fmt"
	"strings"
	"time"
)

// MarkdownFormatter renders a Summary as Markdown tables.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	var b strings.Builder

	b.WriteString("# Capture Summary\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", s.GeneratedAt.Format(time.RFC3339))

	b.WriteString("## Source\n\n")
	b.WriteString("| Item | Value |\n|------|-------|\n")
	row(&b, "Kind", s.Source.Kind)
	if s.Source.Input != "" {
		row(&b, "Input", s.Source.Input)
	}
	if s.Source.Region != "" {
		row(&b, "Region", s.Source.Region)
	}
	if s.Source.SessionID != "" {
		row(&b, "Session", s.Source.SessionID)
	}
	b.WriteString("\n")

	if s.Capture.Frames > 0 {
		b.WriteString("## Capture\n\n")
		b.WriteString("| Item | Value |\n|------|-------|\n")
		row(&b, "Frames", fmt.Sprint(s.Capture.Frames))
		row(&b, "Duplicates skipped", fmt.Sprint(s.Capture.Duplicates))
		row(&b, "Samples dropped", fmt.Sprint(s.Capture.Dropped))
		row(&b, "Elapsed", formatDuration(s.Capture.Elapsed))
		if s.Capture.AutoStop {
			row(&b, "Stopped", "Capture limit reached")
		}
		b.WriteString("\n")
	}

	if s.Edits.Script != "" {
		b.WriteString("## Edits\n\n")
		fmt.Fprintf(&b, "`%s`: %d → %d frames\n\n", s.Edits.Script, s.Edits.FramesBefore, s.Edits.FramesAfter)
	}

	o := s.Output
	b.WriteString("## Output\n\n")
	b.WriteString("| Item | Value |\n|------|-------|\n")
	row(&b, "File", o.Path)
	if o.FallbackUsed {
		row(&b, "Format", fmt.Sprintf("%s (fallback from %s)", o.Format, o.RequestedFormat))
	} else {
		row(&b, "Format", o.Format)
	}
	row(&b, "Backend", o.Backend)
	row(&b, "Frames", fmt.Sprint(o.FrameCount))
	row(&b, "Duration", formatDuration(o.Duration))
	row(&b, "Size", formatBytes(o.FileSize))
	if o.MaxSizeKB > 0 {
		status := "met"
		if !o.Fits {
			status = "exceeded"
		}
		row(&b, "Size budget", fmt.Sprintf("%d KB (%s)", o.MaxSizeKB, status))
	}
	if o.Format == "gif" {
		row(&b, "Colors", fmt.Sprint(o.Colors))
		row(&b, "Quantizer", o.Method)
		row(&b, "Dither", fmt.Sprint(o.Dither))
	}
	row(&b, "Loop", formatLoop(o.LoopCount))
	row(&b, "Encode time", formatDuration(o.Elapsed))
	b.WriteString("\n")

	if len(s.Attempts) > 1 {
		b.WriteString("## Size Budget Attempts\n\n")
		b.WriteString("| # | Step | Width | Colors | Quality | Size | Fits |\n")
		b.WriteString("|---|------|-------|--------|---------|------|------|\n")
		for _, a := range s.Attempts {
			step := string(a.Step)
			if step == "" {
				step = "-"
			}
			width := "original"
			if a.MaxWidth > 0 {
				width = fmt.Sprint(a.MaxWidth)
			}
			fmt.Fprintf(&b, "| %d | %s | %s | %d | %d | %s | %v |\n",
				a.Number, step, width, a.Colors, a.Quality, formatBytes(int64(a.Bytes)), a.Fits)
		}
		b.WriteString("\n")
	}

	if v := s.Video; v != nil {
		b.WriteString("## Video\n\n")
		b.WriteString("| Item | Value |\n|------|-------|\n")
		row(&b, "Codec", v.Codec)
		row(&b, "Size", fmt.Sprintf("%dx%d", v.Width, v.Height))
		row(&b, "Samples", fmt.Sprint(v.Samples))
		row(&b, "Keyframes", fmt.Sprint(v.Keyframes))
		row(&b, "Duration", formatDuration(v.Duration))
		b.WriteString("\n")
	}

	return b.String()
}

func row(b *strings.Builder, key, value string) {
	fmt.Fprintf(b, "| %s | %s |\n", key, value)
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%d ms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2f s", d.Seconds())
}

func formatBytes(n int64) string {
	switch {
	case n >= 1024*1024:
		return fmt.Sprintf("%.2f MB", float64(n)/(1024*1024))
	case n >= 1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func formatLoop(n int) string {
	switch n {
	case 0:
		return "forever"
	case 1:
		return "once"
	default:
		return fmt.Sprintf("%d times", n)
	}
}

var _ Formatter = (*MarkdownFormatter)(nil)
