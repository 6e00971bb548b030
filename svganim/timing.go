// Package svganim implements the timing model of SVG (SMIL)
// animations: clock values, repetition, fill modes and
// the calcMode interpolations between keyframes.
//
// It has no knowledge of the animated values: an Animator
// only maps a document time to a (fractional) keyframe index.
package svganim

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tdewolff/parse/v2/strconv"
)

// Indefinite is used for repeatCount="indefinite"
var Indefinite = math.Inf(1)

var errIndefinite = errors.New("indefinite clock value")

// FillMode specifies the state of the animation after its active duration.
type FillMode uint8

const (
	FillRemove FillMode = iota // default
	FillFreeze
)

// Timing stores the temporal attributes of an animation element.
type Timing struct {
	Begin       time.Duration
	Dur         time.Duration // a non positive value disables the animation
	End         time.Duration
	HasEnd      bool
	RepeatCount float64 // 1 by default, may be Indefinite
	Fill        FillMode
}

// NewTiming returns the default timing: begin at 0, played once.
func NewTiming() Timing { return Timing{RepeatCount: 1} }

// ActiveDuration returns the duration of the whole animation,
// taking into account repetitions and the end attribute.
// It returns a negative value for an infinite duration.
func (t Timing) ActiveDuration() time.Duration {
	if t.Dur <= 0 {
		return 0
	}
	var active time.Duration = -1
	if !math.IsInf(t.RepeatCount, 1) {
		active = time.Duration(float64(t.Dur) * t.RepeatCount)
	}
	if t.HasEnd {
		fromBegin := t.End - t.Begin
		if fromBegin < 0 {
			fromBegin = 0
		}
		if active < 0 || fromBegin < active {
			active = fromBegin
		}
	}
	return active
}

// ParseClock parses a SMIL clock value, such as
// "02:30:03", "00:02.5", "3.2h", "45min", "5s", "500ms" or "12"
// (seconds).
func ParseClock(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty clock value")
	}
	if s == "indefinite" {
		return 0, errIndefinite
	}
	if strings.Contains(s, ":") {
		return parseFullClock(s)
	}
	b := []byte(s)
	f, n := strconv.ParseFloat(b)
	if n == 0 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	var unit time.Duration
	switch string(b[n:]) {
	case "h":
		unit = time.Hour
	case "min":
		unit = time.Minute
	case "s", "":
		unit = time.Second
	case "ms":
		unit = time.Millisecond
	default:
		return 0, fmt.Errorf("invalid clock unit in %q", s)
	}
	return time.Duration(f * float64(unit)), nil
}

// hh:mm:ss(.frac) or mm:ss(.frac)
func parseFullClock(s string) (time.Duration, error) {
	chunks := strings.Split(s, ":")
	if len(chunks) > 3 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	units := [3]time.Duration{time.Second, time.Minute, time.Hour}
	var out time.Duration
	for i := range chunks {
		chunk := []byte(chunks[len(chunks)-1-i])
		f, n := strconv.ParseFloat(chunk)
		if n == 0 || n != len(chunk) || f < 0 {
			return 0, fmt.Errorf("invalid clock value %q", s)
		}
		out += time.Duration(f * float64(units[i]))
	}
	return out, nil
}

// ParseBegin parses the begin attribute, which may be a list
// of values separated by ';'. Only offset values are supported:
// the first one is returned.
func ParseBegin(s string) (time.Duration, error) {
	var firstErr error
	for _, chunk := range strings.Split(s, ";") {
		d, err := ParseClock(chunk)
		if err == nil {
			return d, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return 0, firstErr
}

// ParseRepeatCount parses a positive number or "indefinite".
func ParseRepeatCount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "indefinite" {
		return Indefinite, nil
	}
	f, n := strconv.ParseFloat([]byte(s))
	if n == 0 || n != len(s) || f <= 0 {
		return 0, fmt.Errorf("invalid repeatCount %q", s)
	}
	return f, nil
}

// ParseFill parses the fill attribute of animation elements.
func ParseFill(s string) (FillMode, error) {
	switch strings.TrimSpace(s) {
	case "freeze":
		return FillFreeze, nil
	case "remove", "":
		return FillRemove, nil
	default:
		return FillRemove, fmt.Errorf("invalid fill mode %q", s)
	}
}
