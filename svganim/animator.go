package svganim

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/benoitkugler/svgdom/svgpath"
	"github.com/tdewolff/parse/v2/strconv"
)

// CalcMode specifies the interpolation mode for the animation.
type CalcMode uint8

const (
	CalcLinear CalcMode = iota // default, except for animateMotion
	CalcDiscrete
	CalcPaced
	CalcSpline
)

func (c CalcMode) String() string {
	switch c {
	case CalcLinear:
		return "linear"
	case CalcDiscrete:
		return "discrete"
	case CalcPaced:
		return "paced"
	case CalcSpline:
		return "spline"
	default:
		return fmt.Sprintf("<unknown CalcMode %d>", c)
	}
}

// ParseCalcMode parses the calcMode attribute.
func ParseCalcMode(s string) (CalcMode, error) {
	switch strings.TrimSpace(s) {
	case "linear":
		return CalcLinear, nil
	case "discrete":
		return CalcDiscrete, nil
	case "paced":
		return CalcPaced, nil
	case "spline":
		return CalcSpline, nil
	default:
		return CalcLinear, fmt.Errorf("invalid calcMode %q", s)
	}
}

// ParseKeyTimes parses a ';' separated list of
// increasing values in [0,1].
func ParseKeyTimes(s string) ([]float64, error) {
	var out []float64
	for _, chunk := range strings.Split(s, ";") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		f, n := strconv.ParseFloat([]byte(chunk))
		if n != len(chunk) || f < 0 || f > 1 {
			return nil, fmt.Errorf("invalid key time %q", chunk)
		}
		if len(out) != 0 && f < out[len(out)-1] {
			return nil, fmt.Errorf("key times must be increasing: %q", s)
		}
		out = append(out, f)
	}
	return out, nil
}

// ParseKeySplines parses a ';' separated list of
// control points x1 y1 x2 y2, in [0,1].
func ParseKeySplines(s string) ([][4]float64, error) {
	var out [][4]float64
	for _, chunk := range strings.Split(s, ";") {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		pts, err := svgpath.ParsePoints(chunk)
		if err != nil {
			return nil, err
		}
		if len(pts) != 4 {
			return nil, fmt.Errorf("invalid key spline %q", chunk)
		}
		var spline [4]float64
		for i, v := range pts {
			if v < 0 || v > 1 {
				return nil, fmt.Errorf("invalid key spline %q", chunk)
			}
			spline[i] = v
		}
		out = append(out, spline)
	}
	return out, nil
}

// State is the phase of an animation at a given time.
type State uint8

const (
	Idle    State = iota // not yet started, or invalid
	Active               // running
	Frozen               // ended, with the final value kept
	Removed              // ended, the original value must be restored
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Active:
		return "active"
	case Frozen:
		return "frozen"
	case Removed:
		return "removed"
	default:
		return fmt.Sprintf("<unknown State %d>", s)
	}
}

// Animator maps a document time to a position in a
// list of keyframes.
type Animator struct {
	Timing     Timing
	CalcMode   CalcMode
	KeyTimes   []float64    // optional, one per frame
	KeySplines [][4]float64 // required for CalcSpline, one per interval

	// Frames is the number of keyframes.
	Frames int

	// Distances between consecutive frames, used
	// by CalcPaced. Optional.
	Distances []float64
}

// Sample returns the keyframe position at time `t` (measured
// from the document begin), in [0, Frames-1]. The integer part
// is the index of the starting frame, and the fractional part
// the interpolation factor towards the next one.
func (a *Animator) Sample(t time.Duration) (float64, State) {
	if a.Frames < 1 || a.Timing.Dur <= 0 || t < a.Timing.Begin {
		return 0, Idle
	}
	local := t - a.Timing.Begin
	active := a.Timing.ActiveDuration()
	if active >= 0 && local >= active {
		if a.Timing.Fill != FillFreeze {
			return 0, Removed
		}
		// value at the end of the active duration
		fraction := 1.
		if iter := float64(active) / float64(a.Timing.Dur); iter != math.Trunc(iter) {
			fraction = iter - math.Trunc(iter)
		}
		return a.position(fraction), Frozen
	}
	fraction := float64(local%a.Timing.Dur) / float64(a.Timing.Dur)
	return a.position(fraction), Active
}

// position applies the calc mode to the simple time fraction f in [0,1]
func (a *Animator) position(f float64) float64 {
	n := a.Frames
	if n <= 1 {
		return 0
	}
	last := float64(n - 1)
	keyTimes := a.KeyTimes
	if len(keyTimes) != n {
		keyTimes = nil
	}
	switch a.CalcMode {
	case CalcDiscrete:
		if keyTimes == nil {
			return math.Min(math.Floor(f*float64(n)), last)
		}
		i := 0
		for i+1 < n && keyTimes[i+1] <= f {
			i++
		}
		return float64(i)
	case CalcPaced:
		if len(a.Distances) == n-1 {
			return a.pacedPosition(f)
		}
	}
	if f >= 1 {
		return last
	}
	if keyTimes == nil {
		return a.ease(f*last, int(f*last))
	}
	i := 0
	for i+2 < n && keyTimes[i+1] <= f {
		i++
	}
	span := keyTimes[i+1] - keyTimes[i]
	if span <= 0 {
		return float64(i + 1)
	}
	return a.ease(float64(i)+(f-keyTimes[i])/span, i)
}

// ease applies the key spline of the interval i, if any
func (a *Animator) ease(pos float64, i int) float64 {
	if a.CalcMode != CalcSpline || i >= len(a.KeySplines) {
		return pos
	}
	local := pos - float64(i)
	sp := a.KeySplines[i]
	return float64(i) + SplineEase(sp[0], sp[1], sp[2], sp[3], local)
}

func (a *Animator) pacedPosition(f float64) float64 {
	total := 0.
	for _, d := range a.Distances {
		total += d
	}
	if total <= 0 {
		return f * float64(a.Frames-1)
	}
	target := f * total
	for i, d := range a.Distances {
		if target <= d || i == len(a.Distances)-1 {
			if d <= 0 {
				return float64(i + 1)
			}
			return float64(i) + math.Min(target/d, 1)
		}
		target -= d
	}
	return float64(a.Frames - 1)
}

// SplineEase evaluates the timing function defined by the
// cubic bezier (0,0) (x1,y1) (x2,y2) (1,1) at x in [0,1].
func SplineEase(x1, y1, x2, y2, x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	// the x coordinate is monotonic since x1, x2 are in [0,1]:
	// use bisection to invert it
	lo, hi := 0., 1.
	t := x
	for i := 0; i < 50; i++ {
		bx := svgpath.BezierSpline(0, x1, x2, 1, t)
		if math.Abs(bx-x) < 1e-9 {
			break
		}
		if bx < x {
			lo = t
		} else {
			hi = t
		}
		t = (lo + hi) / 2
	}
	return svgpath.BezierSpline(0, y1, y2, 1, t)
}
