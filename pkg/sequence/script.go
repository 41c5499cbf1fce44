package sequence

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/user/gifcap/pkg/frame"
)

// Edit is one step of an edit script.
type Edit struct {
	Name string
	Args []float64
}

// String formats the edit the way ParseScript reads it.
func (e Edit) String() string {
	parts := []string{e.Name}
	for _, a := range e.Args {
		parts = append(parts, strconv.FormatFloat(a, 'g', -1, 64))
	}
	return strings.Join(parts, ":")
}

// Script is an ordered list of edits.
type Script []Edit

// String formats the script the way ParseScript reads it.
func (s Script) String() string {
	parts := make([]string, len(s))
	for i, e := range s {
		parts[i] = e.String()
	}
	return strings.Join(parts, ",")
}

type editSpec struct {
	args    int
	integer bool
	apply   func(frames []frame.Frame, args []float64) ([]frame.Frame, error)
}

func ms(v float64) time.Duration { return time.Duration(v * float64(time.Millisecond)) }

var edits = map[string]editSpec{
	"delete": {1, true, func(f []frame.Frame, a []float64) ([]frame.Frame, error) {
		return deleteAt(f, int(a[0]))
	}},
	"trim": {2, true, func(f []frame.Frame, a []float64) ([]frame.Frame, error) {
		return trim(f, int(a[0]), int(a[1]))
	}},
	"crop": {4, true, func(f []frame.Frame, a []float64) ([]frame.Frame, error) {
		return cropAll(f, frame.Rect{X: int(a[0]), Y: int(a[1]), Width: int(a[2]), Height: int(a[3])})
	}},
	"speed": {1, false, func(f []frame.Frame, a []float64) ([]frame.Frame, error) {
		return speed(f, a[0])
	}},
	"duration": {1, false, func(f []frame.Frame, a []float64) ([]frame.Frame, error) {
		return setAllDuration(f, ms(a[0]))
	}},
	"frame-duration": {2, false, func(f []frame.Frame, a []float64) ([]frame.Frame, error) {
		return setOneDuration(f, int(a[0]), ms(a[1]))
	}},
	"reverse": {0, false, func(f []frame.Frame, a []float64) ([]frame.Frame, error) {
		return reverse(f), nil
	}},
	"yoyo": {0, false, func(f []frame.Frame, a []float64) ([]frame.Frame, error) {
		return yoyo(f), nil
	}},
	"remove-even": {0, false, func(f []frame.Frame, a []float64) ([]frame.Frame, error) {
		return keepParity(f, 0)
	}},
	"remove-odd": {0, false, func(f []frame.Frame, a []float64) ([]frame.Frame, error) {
		return keepParity(f, 1)
	}},
	"remove-nth": {1, true, func(f []frame.Frame, a []float64) ([]frame.Frame, error) {
		return removeEveryNth(f, int(a[0]))
	}},
	"remove-similar": {1, false, func(f []frame.Frame, a []float64) ([]frame.Frame, error) {
		return removeSimilar(f, a[0])
	}},
}

// ParseScript parses a comma separated edit script such as
// "trim:2:40,speed:1.5,remove-similar:4,yoyo". Arguments are colon separated;
// durations are milliseconds.
func ParseScript(text string) (Script, error) {
	var script Script
	for _, raw := range strings.Split(text, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		fields := strings.Split(raw, ":")
		name := strings.ToLower(fields[0])
		spec, ok := edits[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown edit %q", ErrInvalidScript, name)
		}
		if len(fields)-1 != spec.args {
			return nil, fmt.Errorf("%w: %s takes %d arguments, got %d", ErrInvalidScript, name, spec.args, len(fields)-1)
		}
		args := make([]float64, spec.args)
		for i, f := range fields[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: %s argument %q", ErrInvalidScript, name, f)
			}
			if spec.integer && v != math.Trunc(v) {
				return nil, fmt.Errorf("%w: %s argument %q must be an integer", ErrInvalidScript, name, f)
			}
			args[i] = v
		}
		script = append(script, Edit{Name: name, Args: args})
	}
	return script, nil
}

// Apply runs every edit of script as one undoable step. If any edit fails
// the sequence is left unchanged.
func (s *Sequence) Apply(script Script) error {
	if len(script) == 0 {
		return nil
	}
	return s.mutate("script", func(frames []frame.Frame) ([]frame.Frame, error) {
		for _, e := range script {
			spec, ok := edits[e.Name]
			if !ok || len(e.Args) != spec.args {
				return nil, fmt.Errorf("%w: %s", ErrInvalidScript, e)
			}
			next, err := spec.apply(frames, e.Args)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", e.Name, err)
			}
			frames = next
		}
		return frames, nil
	})
}
