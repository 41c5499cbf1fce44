package chromecapture

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/user/gifcap/pkg/frame"
	"github.com/user/gifcap/pkg/ports"
)

const bindingName = "__gifcapCursor"

// cursorScript reports pointer moves and presses in viewport coordinates.
const cursorScript = `(() => {
	if (window.__gifcapCursorInstalled) return;
	window.__gifcapCursorInstalled = true;
	const send = (kind, e) => window.__gifcapCursor(JSON.stringify({kind, x: e.clientX, y: e.clientY}));
	document.addEventListener('mousemove', e => send('move', e), true);
	document.addEventListener('mousedown', e => send(e.button === 2 ? 'right' : 'left', e), true);
})()`

type cursorPayload struct {
	Kind string  `json:"kind"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Track installs a page listener that reports pointer activity. The stream
// must be started first. The channel closes with ctx or Stop.
func (s *Stream) Track(ctx context.Context, region frame.Rect) (<-chan ports.CursorEvent, error) {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return nil, fmt.Errorf("chromecapture: track cursor: stream not started")
	}
	browserCtx := s.ctx
	ch := make(chan ports.CursorEvent, 64)
	s.cursors = append(s.cursors, ch)
	s.mu.Unlock()

	if err := chromedp.Run(browserCtx,
		runtime.AddBinding(bindingName),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(cursorScript).Do(ctx)
			return err
		}),
		chromedp.Evaluate(cursorScript, nil),
	); err != nil {
		s.closeCursor(ch)
		return nil, fmt.Errorf("install cursor listener: %w", err)
	}

	go func() {
		select {
		case <-ctx.Done():
		case <-browserCtx.Done():
		}
		s.closeCursor(ch)
	}()

	s.logger.Debug("Cursor listener installed")
	return ch, nil
}

func (s *Stream) closeCursor(ch chan ports.CursorEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.cursors {
		if c == ch {
			close(c)
			s.cursors = append(s.cursors[:i], s.cursors[i+1:]...)
			return
		}
	}
}

func (s *Stream) onTargetEvent(ev interface{}) {
	called, ok := ev.(*runtime.EventBindingCalled)
	if !ok || called.Name != bindingName {
		return
	}
	event, ok := parseCursor(called.Payload, time.Since(s.started))
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.cursors {
		select {
		case ch <- event:
		default:
		}
	}
}

// parseCursor decodes one binding payload.
func parseCursor(payload string, ts time.Duration) (ports.CursorEvent, bool) {
	var p cursorPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return ports.CursorEvent{}, false
	}
	ev := ports.CursorEvent{Timestamp: ts, X: p.X, Y: p.Y}
	switch p.Kind {
	case "move":
		ev.Kind = ports.CursorMove
	case "left":
		ev.Kind = ports.CursorLeftDown
	case "right":
		ev.Kind = ports.CursorRightDown
	default:
		return ports.CursorEvent{}, false
	}
	return ev, true
}

var _ ports.CursorTracker = (*Stream)(nil)
