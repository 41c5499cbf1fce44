package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/user/gifcap/pkg/cursor"
	"github.com/user/gifcap/pkg/frame"
	"github.com/user/gifcap/pkg/metrics"
	"github.com/user/gifcap/pkg/ports"
)

// SessionConfig configures a capture session.
type SessionConfig struct {
	FPS         float64
	Dedupe      bool
	MaxFrames   int
	MaxDuration time.Duration

	// TickInterval drives the session-owned ticker; zero disables it and the
	// caller calls Tick.
	TickInterval time.Duration

	// Cursor enables cursor recording and compositing.
	Cursor bool
}

// DefaultSessionConfig returns 15 fps with deduplication, a 3000 frame and
// 5 minute ceiling and a 200 ms tick.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		FPS:          15,
		Dedupe:       true,
		MaxFrames:    3000,
		MaxDuration:  5 * time.Minute,
		TickInterval: 200 * time.Millisecond,
	}
}

// Stats is published on every tick.
type Stats struct {
	State        State
	Elapsed      time.Duration
	Frames       int
	Duplicates   int
	Dropped      int
	CursorEvents int
}

// Capture is the result of a stopped session.
type Capture struct {
	SessionID string
	Region    frame.Rect
	Frames    []frame.Frame
	Elapsed   time.Duration
	Stats     SourceStats
	AutoStop  bool
}

// Outcome carries the result of an automatic stop.
type Outcome struct {
	Capture Capture
	Err     error
}

// Session drives one capture stream through the recording state machine.
// Control calls (Start, Pause, Resume, Stop, Tick) are serialized.
// Observers registered with OnStateChange run on the goroutine that made the
// transition and must not call back into the session.
type Session struct {
	cfg        SessionConfig
	stream     ports.CaptureStream
	tracker    ports.CursorTracker
	compositor *cursor.Compositor
	logger     ports.Logger
	now        func() time.Time

	ctrlMu sync.Mutex

	stateMu sync.RWMutex
	state   State

	observers []func(StateChange)
	onTick    func(Stats)

	id           string
	region       frame.Rect
	source       *FrameSource
	cursorActive bool
	startedAt    time.Time
	pausedAt     time.Time
	pausedTotal  time.Duration
	cancel       context.CancelFunc
	consumerDone chan struct{}

	autoStopped chan Outcome
}

// NewSession creates a session. tracker and compositor may be nil when
// cursor effects are not wanted.
func NewSession(cfg SessionConfig, stream ports.CaptureStream, tracker ports.CursorTracker, compositor *cursor.Compositor, logger ports.Logger) *Session {
	return &Session{
		cfg:         cfg,
		stream:      stream,
		tracker:     tracker,
		compositor:  compositor,
		logger:      logger.WithComponent("capture"),
		now:         time.Now,
		state:       StateIdle,
		autoStopped: make(chan Outcome, 1),
	}
}

// OnStateChange registers an observer for state transitions.
func (s *Session) OnStateChange(fn func(StateChange)) {
	s.ctrlMu.Lock()
	defer s.ctrlMu.Unlock()
	s.observers = append(s.observers, fn)
}

// OnTick registers the receiver of periodic stats.
func (s *Session) OnTick(fn func(Stats)) {
	s.ctrlMu.Lock()
	defer s.ctrlMu.Unlock()
	s.onTick = fn
}

// Changes returns a channel receiving every later state change. Changes are
// dropped when the channel buffer is full.
func (s *Session) Changes() <-chan StateChange {
	ch := make(chan StateChange, 16)
	s.OnStateChange(func(c StateChange) {
		select {
		case ch <- c:
		default:
		}
	})
	return ch
}

// AutoStopped delivers the capture when a ceiling stopped the session.
func (s *Session) AutoStopped() <-chan Outcome {
	return s.autoStopped
}

// State returns the current state.
func (s *Session) State() State {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

// ID returns the identifier of the current or last recording.
func (s *Session) ID() string {
	s.ctrlMu.Lock()
	defer s.ctrlMu.Unlock()
	return s.id
}

func (s *Session) setState(to State) error {
	s.stateMu.Lock()
	from := s.state
	if !CanTransition(from, to) {
		s.stateMu.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	s.state = to
	s.stateMu.Unlock()

	change := StateChange{From: from, To: to, At: s.now()}
	for _, fn := range s.observers {
		fn(change)
	}
	return nil
}

// SelectRegion asks picker for a region. The session returns to Idle either
// way; on success the picked region is remembered and returned.
func (s *Session) SelectRegion(ctx context.Context, picker ports.RegionPicker) (frame.Rect, error) {
	s.ctrlMu.Lock()
	defer s.ctrlMu.Unlock()

	if err := s.setState(StateAwaitingRegion); err != nil {
		return frame.Rect{}, err
	}
	region, err := picker.PickRegion(ctx)
	if err == nil && region.Empty() {
		err = ErrInvalidRegion
	}
	s.setState(StateIdle)
	if err != nil {
		return frame.Rect{}, err
	}
	s.region = region
	return region, nil
}

// Region returns the last selected or recorded region.
func (s *Session) Region() frame.Rect {
	s.ctrlMu.Lock()
	defer s.ctrlMu.Unlock()
	return s.region
}

// Start begins recording region.
func (s *Session) Start(ctx context.Context, region frame.Rect) error {
	s.ctrlMu.Lock()
	defer s.ctrlMu.Unlock()

	state := s.State()
	if state != StateIdle && state != StateAwaitingRegion {
		return fmt.Errorf("%w: start while %s", ErrInvalidTransition, state)
	}
	if region.Empty() {
		return ErrInvalidRegion
	}

	source := NewFrameSource(SourceConfig{
		FPS:         s.cfg.FPS,
		Dedupe:      s.cfg.Dedupe,
		MaxFrames:   s.cfg.MaxFrames,
		MaxDuration: s.cfg.MaxDuration,
	})

	streamCtx, cancel := context.WithCancel(ctx)
	samples, err := s.stream.Start(streamCtx, region, s.cfg.FPS)
	if err != nil {
		cancel()
		if state == StateAwaitingRegion {
			s.setState(StateIdle)
		}
		metrics.CaptureSessionsTotal.WithLabelValues("failed").Inc()
		s.logger.Error("Failed to start capture: %s", err)
		return fmt.Errorf("start capture stream: %w", err)
	}

	s.id = uuid.NewString()
	s.region = region
	s.source = source
	s.cancel = cancel
	s.pausedTotal = 0
	s.startedAt = s.now()
	s.consumerDone = make(chan struct{})
	// Drain a stale auto-stop outcome from a previous recording.
	select {
	case <-s.autoStopped:
	default:
	}

	s.cursorActive = false
	if s.cfg.Cursor && s.tracker != nil && s.compositor != nil {
		if err := s.compositor.Start(streamCtx, s.tracker, region); err != nil {
			s.logger.Warn("Cursor tracking unavailable: %s", err)
		} else {
			s.cursorActive = true
		}
	}

	go s.consume(streamCtx, samples, source, s.consumerDone)

	if err := s.setState(StateRecording); err != nil {
		return err
	}
	if s.cfg.TickInterval > 0 {
		go s.tickLoop(streamCtx, s.cfg.TickInterval)
	}

	s.logger.Info("Recording %s at %.0f fps (session %s)", region, s.cfg.FPS, s.id)
	return nil
}

func (s *Session) consume(ctx context.Context, samples <-chan ports.FrameSample, source *FrameSource, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case sample, ok := <-samples:
			if !ok {
				return
			}
			source.Ingest(sample)
		}
	}
}

func (s *Session) tickLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Pause stops accepting samples without stopping the stream.
func (s *Session) Pause() error {
	s.ctrlMu.Lock()
	defer s.ctrlMu.Unlock()

	if s.State() != StateRecording {
		return fmt.Errorf("%w: pause while %s", ErrInvalidTransition, s.State())
	}
	s.source.SetPaused(true)
	if s.cursorActive {
		s.compositor.Pause()
	}
	s.pausedAt = s.now()
	return s.setState(StatePaused)
}

// Resume re-enables ingestion after Pause.
func (s *Session) Resume() error {
	s.ctrlMu.Lock()
	defer s.ctrlMu.Unlock()

	if s.State() != StatePaused {
		return fmt.Errorf("%w: resume while %s", ErrInvalidTransition, s.State())
	}
	s.pausedTotal += s.now().Sub(s.pausedAt)
	s.source.SetPaused(false)
	if s.cursorActive {
		s.compositor.Resume()
	}
	return s.setState(StateRecording)
}

// Tick publishes stats and stops the session when a ceiling was reached.
// The automatic stop result is delivered on AutoStopped.
func (s *Session) Tick() Stats {
	s.ctrlMu.Lock()
	defer s.ctrlMu.Unlock()

	state := s.State()
	if state != StateRecording && state != StatePaused {
		return Stats{State: state}
	}

	stats := s.statsLocked(state)
	if s.onTick != nil {
		s.onTick(stats)
	}

	// The elapsed check covers an idle screen that yields no new frames.
	if s.source.LimitHit() || (s.cfg.MaxDuration > 0 && stats.Elapsed >= s.cfg.MaxDuration) {
		s.logger.Info("Capture limit reached after %d frames", stats.Frames)
		capture, err := s.stopLocked()
		capture.AutoStop = true
		if err == nil {
			metrics.CaptureSessionsTotal.WithLabelValues("auto_stopped").Inc()
		}
		select {
		case s.autoStopped <- Outcome{Capture: capture, Err: err}:
		default:
		}
		stats.State = s.State()
	}
	return stats
}

// Stats returns the current counters without side effects.
func (s *Session) Stats() Stats {
	s.ctrlMu.Lock()
	defer s.ctrlMu.Unlock()
	state := s.State()
	if s.source == nil || (state != StateRecording && state != StatePaused) {
		return Stats{State: state}
	}
	return s.statsLocked(state)
}

func (s *Session) statsLocked(state State) Stats {
	src := s.source.Stats()
	stats := Stats{
		State:      state,
		Elapsed:    s.elapsedLocked(),
		Frames:     src.Kept,
		Duplicates: src.Duplicates,
		Dropped:    src.DroppedLimit + src.DroppedPaused,
	}
	if s.cursorActive {
		stats.CursorEvents = s.compositor.EventCount()
	}
	return stats
}

func (s *Session) elapsedLocked() time.Duration {
	now := s.now()
	elapsed := now.Sub(s.startedAt) - s.pausedTotal
	if s.State() == StatePaused {
		elapsed -= now.Sub(s.pausedAt)
	}
	return elapsed
}

// Stop ends the recording and returns the captured frames.
// A recording without frames returns ports.ErrEmptyCapture.
func (s *Session) Stop(ctx context.Context) (Capture, error) {
	s.ctrlMu.Lock()
	defer s.ctrlMu.Unlock()

	state := s.State()
	if state != StateRecording && state != StatePaused {
		return Capture{}, fmt.Errorf("%w: stop while %s", ErrInvalidTransition, state)
	}
	if err := ctx.Err(); err != nil {
		return Capture{}, err
	}
	capture, err := s.stopLocked()
	if err == nil {
		metrics.CaptureSessionsTotal.WithLabelValues("completed").Inc()
	}
	return capture, err
}

func (s *Session) stopLocked() (Capture, error) {
	elapsed := s.elapsedLocked()
	if err := s.setState(StateStopping); err != nil {
		return Capture{}, err
	}

	if err := s.stream.Stop(); err != nil {
		s.logger.Warn("Capture stream did not stop cleanly: %s", err)
	}
	s.cancel()
	<-s.consumerDone

	var events []ports.CursorEvent
	if s.cursorActive {
		events = s.compositor.Stop()
		s.cursorActive = false
	}

	frames := s.source.Harvest()
	stats := s.source.Stats()
	s.setState(StateIdle)

	if len(frames) == 0 {
		metrics.CaptureSessionsTotal.WithLabelValues("empty").Inc()
		s.logger.Warn("Recording stopped without frames")
		return Capture{}, ports.ErrEmptyCapture
	}

	if len(events) > 0 {
		frames = s.compositor.Render(frames, events, s.region, s.source.Origin())
	}

	s.logger.Info("Captured %d frames in %s", len(frames), elapsed.Round(time.Millisecond))
	return Capture{
		SessionID: s.id,
		Region:    s.region,
		Frames:    frames,
		Elapsed:   elapsed,
		Stats:     stats,
	}, nil
}

// IsCaptureUnavailable reports whether err means the platform cannot capture
// at all, as opposed to a failure of this particular session.
func IsCaptureUnavailable(err error) bool {
	return errors.Is(err, ports.ErrNoDisplayFound) || errors.Is(err, ports.ErrPermissionDenied)
}
