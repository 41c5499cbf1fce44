package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Capture metrics
var (
	CaptureSamplesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gifcap_capture_samples_total",
			Help: "Capture samples received, by outcome",
		},
		[]string{"result"}, // kept, duplicate, paused, limit, backpressure
	)

	CaptureSessionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gifcap_capture_sessions_total",
			Help: "Capture sessions finished, by outcome",
		},
		[]string{"outcome"}, // completed, empty, auto_stopped, failed
	)

	CaptureFramesBuffered = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gifcap_capture_frames_buffered",
			Help: "Frames held by the active capture session",
		},
	)

	EditorDownscaledFramesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gifcap_editor_downscaled_frames_total",
			Help: "Frames downscaled by the memory policy on editor entry",
		},
	)
)

// Encode metrics
var (
	EncodeAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gifcap_encode_attempts_total",
			Help: "Encode attempts, by format and result",
		},
		[]string{"format", "result"}, // result: ok, oversize, error
	)

	EncodeFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gifcap_encode_fallbacks_total",
			Help: "Backend fallbacks, by requested and actual backend",
		},
		[]string{"requested", "actual"},
	)

	EncodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gifcap_encode_duration_seconds",
			Help:    "Time spent in one encode attempt",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"format"},
	)

	EncodeOutputBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gifcap_encode_output_bytes",
			Help:    "Size of produced artifacts",
			Buckets: prometheus.ExponentialBuckets(16*1024, 4, 8),
		},
		[]string{"format"},
	)
)

// WriteTextfile writes every registered metric to path in the text
// exposition format.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
