package gstcapture

import (
	"fmt"
	"strings"

	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"

	"github.com/user/gifcap/pkg/frame"
	"github.com/user/gifcap/pkg/ports"
)

// elements holds the parts of the pipeline the stream needs after creation.
type elements struct {
	pipeline *gst.Pipeline
	sink     *app.Sink
}

// newPipeline builds
//
//	ximagesrc → videoconvert → videorate → capsfilter → appsink
//
// The pipeline is created in the NULL state.
func newPipeline(display string, region frame.Rect, fps float64) (*elements, error) {
	gst.Init(nil)

	pipeline, err := gst.NewPipeline("")
	if err != nil {
		return nil, fmt.Errorf("create pipeline: %w", err)
	}

	src, err := gst.NewElement("ximagesrc")
	if err != nil {
		return nil, fmt.Errorf("create ximagesrc: %w", err)
	}
	if display != "" {
		if err := src.SetProperty("display-name", display); err != nil {
			return nil, fmt.Errorf("set display: %w", err)
		}
	}
	props := map[string]interface{}{
		"startx":       uint(region.X),
		"starty":       uint(region.Y),
		"endx":         uint(region.X + region.Width - 1),
		"endy":         uint(region.Y + region.Height - 1),
		"use-damage":   false,
		"show-pointer": false,
	}
	for name, value := range props {
		if err := src.SetProperty(name, value); err != nil {
			return nil, fmt.Errorf("set ximagesrc %s: %w", name, err)
		}
	}

	convert, err := gst.NewElement("videoconvert")
	if err != nil {
		return nil, fmt.Errorf("create videoconvert: %w", err)
	}

	rate, err := gst.NewElement("videorate")
	if err != nil {
		return nil, fmt.Errorf("create videorate: %w", err)
	}

	filter, err := gst.NewElement("capsfilter")
	if err != nil {
		return nil, fmt.Errorf("create capsfilter: %w", err)
	}
	if err := filter.SetProperty("caps", gst.NewCapsFromString(buildCaps(fps))); err != nil {
		return nil, fmt.Errorf("set caps: %w", err)
	}

	sink, err := app.NewAppSink()
	if err != nil {
		return nil, fmt.Errorf("create appsink: %w", err)
	}
	sink.SetProperty("sync", false)
	sink.SetProperty("max-buffers", uint(2))
	sink.SetProperty("drop", true)

	if err := pipeline.AddMany(src, convert, rate, filter, sink.Element); err != nil {
		return nil, fmt.Errorf("add elements: %w", err)
	}
	if err := gst.ElementLinkMany(src, convert, rate, filter, sink.Element); err != nil {
		return nil, fmt.Errorf("link elements: %w", err)
	}

	return &elements{pipeline: pipeline, sink: sink}, nil
}

// buildCaps returns the appsink caps for fps, expressing rates below one
// frame per second as 1/N.
func buildCaps(fps float64) string {
	num, den := 1, 1
	if fps < 1 {
		den = int(1/fps + 0.5)
	} else {
		num = int(fps + 0.5)
	}
	return fmt.Sprintf("video/x-raw,format=RGBA,framerate=%d/%d", num, den)
}

// classify maps a GStreamer error message onto the capture sentinels.
func classify(msg string) error {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "could not open x display"),
		strings.Contains(lower, "cannot open display"):
		return ports.ErrNoDisplayFound
	case strings.Contains(lower, "permission"),
		strings.Contains(lower, "not authorized"),
		strings.Contains(lower, "authorization required"):
		return ports.ErrPermissionDenied
	default:
		return nil
	}
}
