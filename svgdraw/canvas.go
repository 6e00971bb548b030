package svgdraw

import (
	"math"

	"github.com/benoitkugler/svgdom/svgpath"
	"golang.org/x/image/math/fixed"
)

// PathStyle binds a path to its paint, in user space.
type PathStyle struct {
	Fill, Stroke  Pattern // nil disable filling or stroking
	FillOpacity   float64
	StrokeOpacity float64

	UseNonZeroWinding bool

	LineWidth  float64
	MiterLimit float64
	Join       JoinMode
	Cap        CapMode
	Dash       DashOptions
}

// DefaultStyle fills black, with the non-zero winding rule,
// full opacity, no stroke, butt caps and miter joins.
var DefaultStyle = PathStyle{
	Fill:              NewPlainColor(0, 0, 0, 0xff),
	FillOpacity:       1,
	StrokeOpacity:     1,
	UseNonZeroWinding: true,
	LineWidth:         1,
	MiterLimit:        4,
	Join:              Miter,
	Cap:               ButtCap,
}

// Canvas tracks the current transformation matrix
// and forwards the transformed drawing operations to
// a Driver.
type Canvas struct {
	driver Driver
	ctm    svgpath.Matrix2D
	stack  []svgpath.Matrix2D
}

// NewCanvas returns a canvas drawing on `driver`, with
// an initial user to device transform `base`.
func NewCanvas(driver Driver, base svgpath.Matrix2D) *Canvas {
	return &Canvas{driver: driver, ctm: base}
}

// Matrix returns the current user to device transform.
func (c *Canvas) Matrix() svgpath.Matrix2D { return c.ctm }

// Depth returns the number of pending Save and SaveLayer.
func (c *Canvas) Depth() int { return len(c.stack) }

// Save pushes the current transform and clip.
func (c *Canvas) Save() {
	c.stack = append(c.stack, c.ctm)
	c.driver.Save()
}

// SaveLayer pushes the current state and starts a new layer.
// Filter distances are converted from user to device space.
func (c *Canvas) SaveLayer(layer Layer) {
	c.stack = append(c.stack, c.ctm)
	if layer.Filter != nil {
		layer.Filter = c.deviceFilter(layer.Filter)
	}
	c.driver.SaveLayer(layer)
}

// Restore pops the last Save or SaveLayer.
// It is a no-op on an empty stack.
func (c *Canvas) Restore() {
	if len(c.stack) == 0 {
		return
	}
	c.ctm = c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	c.driver.Restore()
}

// RestoreTo pops states until Depth() == depth.
func (c *Canvas) RestoreTo(depth int) {
	for len(c.stack) > depth {
		c.Restore()
	}
}

// Concat applies m before the current transform.
func (c *Canvas) Concat(m svgpath.Matrix2D) {
	c.ctm = c.ctm.Mult(m)
}

// ClipPath intersects the clip with p, given in user space.
func (c *Canvas) ClipPath(p svgpath.Path, useNonZeroWinding bool) {
	c.driver.Clip(p.Transform(c.ctm), useNonZeroWinding)
}

// scale returns the mean scale factor of the current transform.
func (c *Canvas) scale() float64 {
	return math.Sqrt(math.Abs(c.ctm.A*c.ctm.D - c.ctm.B*c.ctm.C))
}

func (c *Canvas) deviceFilter(chain *FilterChain) *FilterChain {
	out := &FilterChain{Primitives: make([]FilterPrimitive, len(chain.Primitives))}
	sx := math.Hypot(c.ctm.A, c.ctm.B)
	sy := math.Hypot(c.ctm.C, c.ctm.D)
	for i, prim := range chain.Primitives {
		switch effect := prim.Effect.(type) {
		case Blur:
			effect.StdDevX *= sx
			effect.StdDevY *= sy
			prim.Effect = effect
		case Offset:
			effect.Dx, effect.Dy = c.ctm.TransformVector(effect.Dx, effect.Dy)
			prim.Effect = effect
		}
		out.Primitives[i] = prim
	}
	return out
}

func (c *Canvas) pattern(p Pattern, bbox svgpath.Rect) Pattern {
	if g, ok := p.(Gradient); ok {
		return g.resolveUnits(bbox, c.ctm)
	}
	return p
}

// DrawPath fills then strokes the path p, given in user space.
func (c *Canvas) DrawPath(p svgpath.Path, style PathStyle) {
	if len(p) == 0 {
		return
	}
	var bbox svgpath.Rect
	_, fillGrad := style.Fill.(Gradient)
	_, strokeGrad := style.Stroke.(Gradient)
	if fillGrad || strokeGrad {
		bbox = p.Bounds()
	}

	filler, stroker := c.driver.SetupDrawers(style.Fill != nil, style.Stroke != nil)
	if filler != nil { // nil color disable filling
		filler.Clear()
		filler.SetWinding(style.UseNonZeroWinding)
		p.AddTo(filler, c.ctm)
		filler.SetColor(c.pattern(style.Fill, bbox), style.FillOpacity)
		filler.Draw()
		filler.SetWinding(true) // default is true
	}

	if stroker != nil && style.LineWidth > 0 { // nil color disable lining
		stroker.Clear()
		s := c.scale()
		var dash DashOptions
		if len(style.Dash.Dash) != 0 {
			dash.Dash = make([]float64, len(style.Dash.Dash))
			for i, d := range style.Dash.Dash {
				dash.Dash[i] = d * s
			}
			dash.DashOffset = style.Dash.DashOffset * s
		}
		capMode := style.Cap
		if capMode == NilCap {
			capMode = ButtCap
		}
		stroker.SetStrokeOptions(StrokeOptions{
			LineWidth: fixed.Int26_6(style.LineWidth * s * 64),
			Join: JoinOptions{
				MiterLimit:   fixed.Int26_6(style.MiterLimit * 64),
				LineJoin:     style.Join,
				TrailLineCap: capMode,
				LeadLineCap:  capMode,
				LineGap:      FlatGap,
			},
			Dash: dash,
		})
		p.AddTo(stroker, c.ctm)
		stroker.SetColor(c.pattern(style.Stroke, bbox), style.StrokeOpacity)
		stroker.Draw()
	}
}
