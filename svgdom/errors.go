package svgdom

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/benoitkugler/svgdom/svgpath"
)

var (
	// ErrParamMismatch is returned when an attribute is given
	// the wrong number of values.
	ErrParamMismatch = svgpath.ErrParamMismatch
	// ErrInvalidDocument is returned when the input has no <svg> root.
	ErrInvalidDocument = errors.New("invalid svg document")
	// ErrUnknownUnit is returned for an unsupported dimension unit.
	ErrUnknownUnit = errors.New("unknown unit")

	errUnknownAttr = errors.New("unsupported attribute")
)

// ErrorMode is the for setting how the parser reacts to unparsed elements
type ErrorMode uint8

const (
	// IgnoreErrorMode skips unparsed SVG elements
	IgnoreErrorMode ErrorMode = iota
	// WarnErrorMode outputs a warning when an unparsed SVG element is found
	WarnErrorMode
	// StrictErrorMode causes an error when an unparsed SVG element is found
	StrictErrorMode
)

// Options configures how a document is read and animated.
type Options struct {
	ErrorMode ErrorMode
	// Logger defaults to slog.Default()
	Logger *slog.Logger

	// Viewport is used to resolve percentages when the
	// root element has no explicit size.
	Viewport svgpath.Rect

	// OnFlush, if not nil, is called at the end of each Tick
	// which modified at least one node.
	OnFlush func(elapsed time.Duration)
}

func (opts Options) logger() *slog.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return slog.Default()
}

// warnf reports a recoverable problem, according to the error mode.
// Only StrictErrorMode returns a non nil error.
func (doc *Document) warnf(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	switch doc.opts.ErrorMode {
	case StrictErrorMode:
		return errors.New(msg)
	case WarnErrorMode:
		doc.logger.Warn(msg)
	}
	return nil
}

// warnErr is the same as warnf, but keeps the underlying error wrapped.
func (doc *Document) warnErr(err error, context string) error {
	switch doc.opts.ErrorMode {
	case StrictErrorMode:
		return fmt.Errorf("%s: %w", context, err)
	case WarnErrorMode:
		doc.logger.Warn(context, "error", err)
	}
	return nil
}

// logf reports a problem found after parsing (style resolution,
// animation or drawing), which never aborts.
func (doc *Document) logf(format string, args ...interface{}) {
	if doc.opts.ErrorMode == IgnoreErrorMode {
		return
	}
	doc.logger.Warn(fmt.Sprintf(format, args...))
}
