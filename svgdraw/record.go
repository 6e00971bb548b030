package svgdraw

import (
	"fmt"
	"strings"

	"github.com/benoitkugler/svgdom/svgpath"
	"golang.org/x/image/math/fixed"
)

var _ Driver = (*Recorder)(nil) // assert interface conformance

// Recorder is a Driver storing a textual trace of
// the operations it receives, one line per operation.
// It is mainly usefull to debug and test drawing sequences.
type Recorder struct {
	Ops []string
}

func (r *Recorder) printf(format string, args ...interface{}) {
	r.Ops = append(r.Ops, fmt.Sprintf(format, args...))
}

// String returns the trace, one operation per line.
func (r *Recorder) String() string { return strings.Join(r.Ops, "\n") }

// Reset clears the trace.
func (r *Recorder) Reset() { r.Ops = r.Ops[:0] }

func (r *Recorder) Save()    { r.printf("save") }
func (r *Recorder) Restore() { r.printf("restore") }

func (r *Recorder) SaveLayer(l Layer) {
	if l.Filter != nil {
		names := make([]string, len(l.Filter.Primitives))
		for i, p := range l.Filter.Primitives {
			names[i] = fmt.Sprintf("%T", p.Effect)
		}
		r.printf("layer %s %g filter[%s]", l.Blend, l.Opacity, strings.Join(names, " "))
		return
	}
	r.printf("layer %s %g", l.Blend, l.Opacity)
}

func (r *Recorder) Clip(path svgpath.Path, useNonZeroWinding bool) {
	r.printf("clip %s", path)
}

func (r *Recorder) SetupDrawers(willFill, willStroke bool) (Filler, Stroker) {
	var (
		f Filler
		s Stroker
	)
	if willFill {
		f = &recordDrawer{r: r, kind: "fill"}
	}
	if willStroke {
		s = &recordDrawer{r: r, kind: "stroke"}
	}
	return f, s
}

type recordDrawer struct {
	r     *Recorder
	kind  string
	path  svgpath.Path
	color Pattern
	alpha float64
}

func (d *recordDrawer) Clear()                             { d.path.Clear() }
func (d *recordDrawer) Start(a fixed.Point26_6)            { d.path.Start(a) }
func (d *recordDrawer) Line(b fixed.Point26_6)             { d.path.Line(b) }
func (d *recordDrawer) QuadBezier(b, c fixed.Point26_6)    { d.path.QuadBezier(b, c) }
func (d *recordDrawer) CubeBezier(b, c, e fixed.Point26_6) { d.path.CubeBezier(b, c, e) }
func (d *recordDrawer) Stop(closeLoop bool)                { d.path.Stop(closeLoop) }
func (d *recordDrawer) SetWinding(bool)                    {}
func (d *recordDrawer) SetStrokeOptions(StrokeOptions)     {}

func (d *recordDrawer) SetColor(color Pattern, opacity float64) {
	d.color, d.alpha = color, opacity
}

func (d *recordDrawer) Draw() {
	var col string
	switch c := d.color.(type) {
	case PlainColor:
		col = fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	case Gradient:
		if c.Direction.isRadial() {
			col = "radial"
		} else {
			col = "linear"
		}
	}
	d.r.printf("%s %s %s %g", d.kind, d.path, col, d.alpha)
}
