// Package encode implements the export stage: backend selection followed by
// size-budgeted encoding.
package encode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/user/gifcap/pkg/adapters/smartencoder"
	"github.com/user/gifcap/pkg/budget"
	"github.com/user/gifcap/pkg/pipeline"
	"github.com/user/gifcap/pkg/ports"
)

// ErrNoFrames is returned when the input holds no frames.
var ErrNoFrames = errors.New("encode: no frames to encode")

// Selector picks the encoder for a set of options.
type Selector interface {
	Select(opts ports.EncodeOptions) (ports.Encoder, smartencoder.Info, error)
}

// Stage encodes frames into the requested format.
type Stage struct {
	selector   Selector
	controller *budget.Controller
	sink       ports.DebugSink
	logger     ports.Logger
}

// NewStage creates a new encode stage.
func NewStage(selector Selector, controller *budget.Controller, sink ports.DebugSink, logger ports.Logger) *Stage {
	return &Stage{
		selector:   selector,
		controller: controller,
		sink:       sink,
		logger:     logger.WithComponent("encode"),
	}
}

// Execute selects a backend and runs the budget loop with it.
func (s *Stage) Execute(ctx context.Context, input pipeline.EncodeInput) (pipeline.EncodeResult, error) {
	result := pipeline.EncodeResult{RequestedFormat: input.Options.Format}

	if len(input.Frames) == 0 {
		return result, ErrNoFrames
	}

	enc, info, err := s.selector.Select(input.Options)
	if err != nil {
		return result, fmt.Errorf("select encoder: %w", err)
	}
	s.logger.Debug("Encoder: format=%s backend=%s fallback=%v", info.Format, info.Backend, info.FallbackUsed)

	started := time.Now()
	out, err := s.controller.Run(ctx, enc, input.Frames, input.Options, input.Progress)
	if err != nil {
		return result, fmt.Errorf("encode %s: %w", info.Format, err)
	}

	result.Data = out.Data
	result.Format = enc.Format()
	result.Backend = string(info.Backend)
	result.FallbackUsed = info.FallbackUsed
	result.Options = out.Options
	result.Fits = out.Fits
	result.Attempts = out.Attempts
	result.Elapsed = time.Since(started)

	if s.sink.Enabled() {
		if data, err := json.MarshalIndent(out.Attempts, "", "  "); err == nil {
			if err := s.sink.SaveAttemptsJSON(data); err != nil {
				s.logger.Warn("Failed to save debug output: %v", err)
			}
		}
	}

	return result, nil
}

var _ pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeResult] = (*Stage)(nil)
