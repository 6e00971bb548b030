package svgdom

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/benoitkugler/svgdom/svgpath"
	tparse "github.com/tdewolff/parse/v2"
	pstrconv "github.com/tdewolff/parse/v2/strconv"
)

// Unit is the unit of a Dimension.
type Unit uint8

const (
	UnitPx Unit = iota
	UnitPercent
	UnitVp // virtual pixel
	UnitFp // font pixel
	UnitPt
	UnitPc
	UnitIn
	UnitCm
	UnitMm
	UnitEm
)

var unitNames = [...]string{
	UnitPx:      "px",
	UnitPercent: "%",
	UnitVp:      "vp",
	UnitFp:      "fp",
	UnitPt:      "pt",
	UnitPc:      "pc",
	UnitIn:      "in",
	UnitCm:      "cm",
	UnitMm:      "mm",
	UnitEm:      "em",
}

func (u Unit) String() string {
	if int(u) < len(unitNames) {
		return unitNames[u]
	}
	return fmt.Sprintf("<unknown Unit %d>", u)
}

func parseUnit(s string) (Unit, error) {
	for i, name := range unitNames {
		if strings.EqualFold(s, name) {
			return Unit(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, s)
}

// defaultFontSize is used to resolve em units
const defaultFontSize = 16

// Dimension is a length with its unit.
type Dimension struct {
	Value float64
	Unit  Unit
}

// Px returns a Dimension in pixels.
func Px(v float64) Dimension { return Dimension{Value: v, Unit: UnitPx} }

// ConvertToPx returns the length in pixels (user units).
// Percentages are resolved against `reference`.
func (d Dimension) ConvertToPx(reference float64) float64 {
	switch d.Unit {
	case UnitPercent:
		return d.Value * reference / 100
	case UnitPt:
		return d.Value * 96 / 72
	case UnitPc:
		return d.Value * 96 / 6
	case UnitIn:
		return d.Value * 96
	case UnitCm:
		return d.Value * 96 / 2.54
	case UnitMm:
		return d.Value * 96 / 25.4
	case UnitEm:
		return d.Value * defaultFontSize
	default: // px, vp, fp
		return d.Value
	}
}

// fraction interprets d in an objectBoundingBox context:
// percentages are divided by 100, numbers are kept.
func (d Dimension) fraction() float64 {
	if d.Unit == UnitPercent {
		return d.Value / 100
	}
	return d.Value
}

// String returns the textual form of d, such as "12.5px".
// The unit is always written.
func (d Dimension) String() string {
	return strconv.FormatFloat(d.Value, 'g', -1, 64) + d.Unit.String()
}

// ParseDimension parses a number followed by an optional unit.
// `defaultUnit` is used when no unit is given.
func ParseDimension(s string, defaultUnit Unit) (Dimension, error) {
	b := []byte(strings.TrimSpace(s))
	nn, nu := tparse.Dimension(b)
	if nn == 0 {
		return Dimension{}, fmt.Errorf("invalid dimension %q", s)
	}
	if nn+nu != len(b) {
		return Dimension{}, fmt.Errorf("invalid dimension %q", s)
	}
	v, n := pstrconv.ParseFloat(b[:nn])
	if n != nn {
		return Dimension{}, fmt.Errorf("invalid dimension %q", s)
	}
	out := Dimension{Value: v, Unit: defaultUnit}
	if nu != 0 {
		u, err := parseUnit(string(b[nn:]))
		if err != nil {
			return Dimension{}, err
		}
		out.Unit = u
	}
	return out, nil
}

// ParseDouble parses a locale invariant decimal number.
func ParseDouble(s string) (float64, error) {
	b := []byte(strings.TrimSpace(s))
	f, n := pstrconv.ParseFloat(b)
	if n == 0 || n != len(b) {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return f, nil
}

func formatDouble(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

// Kind is the type of an animatable attribute.
type Kind uint8

const (
	KindColor Kind = iota
	KindDimension
	KindDouble
	KindTransform
)

func (k Kind) String() string {
	switch k {
	case KindColor:
		return "color"
	case KindDimension:
		return "dimension"
	case KindDouble:
		return "double"
	case KindTransform:
		return "transform"
	default:
		return fmt.Sprintf("<unknown Kind %d>", k)
	}
}

// Value is a typed attribute value. Only the field
// matching Kind is meaningful.
type Value struct {
	Kind      Kind
	Color     color.NRGBA
	Dimension Dimension
	Double    float64
	Transform svgpath.Transform
}

// ParseValue converts the textual attribute value `s`.
// Dimensions without unit are in pixels.
func ParseValue(kind Kind, s string) (Value, error) {
	out := Value{Kind: kind}
	var err error
	switch kind {
	case KindColor:
		out.Color, err = ParseColor(s)
	case KindDimension:
		out.Dimension, err = ParseDimension(s, UnitPx)
	case KindDouble:
		out.Double, err = ParseDouble(s)
	case KindTransform:
		out.Transform, err = svgpath.ParseTransform(s)
	default:
		err = fmt.Errorf("invalid kind %d", kind)
	}
	return out, err
}

// String returns the textual form of the value,
// which may be parsed back by ParseValue.
func (v Value) String() string {
	switch v.Kind {
	case KindColor:
		return FormatColor(v.Color)
	case KindDimension:
		return v.Dimension.String()
	case KindDouble:
		return formatDouble(v.Double)
	case KindTransform:
		return v.Transform.String()
	default:
		return ""
	}
}

func lerp(a, b, t float64) float64 { return a + t*(b-a) }

// Interpolate returns the value at `t` in [0,1] between a and b,
// which must have the same Kind.
// Dimensions with different units are converted to pixels,
// resolving percentages against `reference`.
// Transforms are interpolated parameter by parameter, and
// must have the same structure; otherwise a is returned for t < 1.
func Interpolate(a, b Value, t float64, reference float64) Value {
	if t <= 0 || a.Kind != b.Kind {
		return a
	}
	if t >= 1 {
		return b
	}
	out := Value{Kind: a.Kind}
	switch a.Kind {
	case KindColor:
		out.Color = interpolateColor(a.Color, b.Color, t)
	case KindDimension:
		da, db := a.Dimension, b.Dimension
		if da.Unit != db.Unit {
			da, db = Px(da.ConvertToPx(reference)), Px(db.ConvertToPx(reference))
		}
		out.Dimension = Dimension{Value: lerp(da.Value, db.Value, t), Unit: da.Unit}
	case KindDouble:
		out.Double = lerp(a.Double, b.Double, t)
	case KindTransform:
		tr, ok := interpolateTransform(a.Transform, b.Transform, t)
		if !ok {
			return a
		}
		out.Transform = tr
	}
	return out
}

func interpolateTransform(a, b svgpath.Transform, t float64) (svgpath.Transform, bool) {
	if len(a) != len(b) {
		return nil, false
	}
	out := make(svgpath.Transform, len(a))
	for i := range a {
		opA, opB := a[i].Normalize(), b[i].Normalize()
		if opA.Type != opB.Type || len(opA.Params) != len(opB.Params) {
			return nil, false
		}
		params := make([]float64, len(opA.Params))
		for j := range params {
			params[j] = lerp(opA.Params[j], opB.Params[j], t)
		}
		out[i] = svgpath.TransformOp{Type: opA.Type, Params: params}
	}
	return out, true
}

// InterpolateFrames returns the value at the keyframe position `p`:
// the integer part of `p` selects the frame pair, the fractional part
// is the interpolation factor. Positions outside [0, len(frames)-1]
// are clamped, so that the last frame is never extrapolated.
func InterpolateFrames(frames []Value, p float64, reference float64) Value {
	if len(frames) == 0 {
		return Value{}
	}
	if p <= 0 || math.IsNaN(p) {
		return frames[0]
	}
	i := int(math.Floor(p))
	if i >= len(frames)-1 {
		return frames[len(frames)-1]
	}
	frac := p - float64(i)
	if frac == 0 {
		return frames[i]
	}
	return Interpolate(frames[i], frames[i+1], frac, reference)
}

// attrInfo binds an attribute name to its kind and typed getter.
type attrInfo struct {
	kind Kind
	get  func(n *Node) Value
	// the property is inherited by children
	inherited bool
}

func colorGetter(f func(n *Node) color.NRGBA) func(n *Node) Value {
	return func(n *Node) Value { return Value{Kind: KindColor, Color: f(n)} }
}

func dimGetter(f func(n *Node) Dimension) func(n *Node) Value {
	return func(n *Node) Value { return Value{Kind: KindDimension, Dimension: f(n)} }
}

func doubleGetter(f func(n *Node) float64) func(n *Node) Value {
	return func(n *Node) Value { return Value{Kind: KindDouble, Double: f(n)} }
}

// attributeTable is the static list of animatable attributes
var attributeTable = map[string]attrInfo{
	"fill":   {kind: KindColor, inherited: true, get: colorGetter(func(n *Node) color.NRGBA { return n.Decl.paintColor(n.Decl.Fill) })},
	"stroke": {kind: KindColor, inherited: true, get: colorGetter(func(n *Node) color.NRGBA { return n.Decl.paintColor(n.Decl.Stroke) })},
	"color":  {kind: KindColor, inherited: true, get: colorGetter(func(n *Node) color.NRGBA { return n.Decl.Color })},
	"stop-color": {kind: KindColor, get: colorGetter(func(n *Node) color.NRGBA {
		if n.Stop == nil {
			return color.NRGBA{}
		}
		return n.Stop.Color
	})},

	"opacity":           {kind: KindDouble, get: doubleGetter(func(n *Node) float64 { return n.Decl.Opacity })},
	"fill-opacity":      {kind: KindDouble, inherited: true, get: doubleGetter(func(n *Node) float64 { return n.Decl.FillOpacity })},
	"stroke-opacity":    {kind: KindDouble, inherited: true, get: doubleGetter(func(n *Node) float64 { return n.Decl.StrokeOpacity })},
	"stroke-miterlimit": {kind: KindDouble, inherited: true, get: doubleGetter(func(n *Node) float64 { return n.Decl.MiterLimit })},
	"stop-opacity": {kind: KindDouble, get: doubleGetter(func(n *Node) float64 {
		if n.Stop == nil {
			return 0
		}
		return n.Stop.Opacity
	})},
	"stdDeviation": {kind: KindDouble, get: doubleGetter(func(n *Node) float64 {
		if n.Prim == nil {
			return 0
		}
		return n.Prim.StdDevX
	})},
	"dx": {kind: KindDouble, get: doubleGetter(func(n *Node) float64 {
		if n.Prim == nil {
			return 0
		}
		return n.Prim.Dx
	})},
	"dy": {kind: KindDouble, get: doubleGetter(func(n *Node) float64 {
		if n.Prim == nil {
			return 0
		}
		return n.Prim.Dy
	})},

	"stroke-width":      {kind: KindDimension, inherited: true, get: dimGetter(func(n *Node) Dimension { return n.Decl.StrokeWidth })},
	"stroke-dashoffset": {kind: KindDimension, inherited: true, get: dimGetter(func(n *Node) Dimension { return n.Decl.DashOffset })},
	"font-size":         {kind: KindDimension, inherited: true, get: dimGetter(func(n *Node) Dimension { return n.Decl.FontSize })},
	"x":                 {kind: KindDimension, get: dimGetter(func(n *Node) Dimension { return n.Geom.X })},
	"y":                 {kind: KindDimension, get: dimGetter(func(n *Node) Dimension { return n.Geom.Y })},
	"width":             {kind: KindDimension, get: dimGetter(func(n *Node) Dimension { return n.Geom.Width })},
	"height":            {kind: KindDimension, get: dimGetter(func(n *Node) Dimension { return n.Geom.Height })},
	"rx":                {kind: KindDimension, get: dimGetter(func(n *Node) Dimension { return n.Geom.Rx })},
	"ry":                {kind: KindDimension, get: dimGetter(func(n *Node) Dimension { return n.Geom.Ry })},
	"cx":                {kind: KindDimension, get: dimGetter(func(n *Node) Dimension { return n.Geom.Cx })},
	"cy":                {kind: KindDimension, get: dimGetter(func(n *Node) Dimension { return n.Geom.Cy })},
	"r":                 {kind: KindDimension, get: dimGetter(func(n *Node) Dimension { return n.Geom.R })},
	"x1":                {kind: KindDimension, get: dimGetter(func(n *Node) Dimension { return n.Geom.X1 })},
	"y1":                {kind: KindDimension, get: dimGetter(func(n *Node) Dimension { return n.Geom.Y1 })},
	"x2":                {kind: KindDimension, get: dimGetter(func(n *Node) Dimension { return n.Geom.X2 })},
	"y2":                {kind: KindDimension, get: dimGetter(func(n *Node) Dimension { return n.Geom.Y2 })},
	"fx":                {kind: KindDimension, get: dimGetter(func(n *Node) Dimension { return n.Geom.Fx })},
	"fy":                {kind: KindDimension, get: dimGetter(func(n *Node) Dimension { return n.Geom.Fy })},

	"transform": {kind: KindTransform, get: func(n *Node) Value {
		return Value{Kind: KindTransform, Transform: n.transform}
	}},
}

// Classify returns the kind of the animatable attribute `name`,
// or false if it is not supported.
func Classify(name string) (Kind, bool) {
	info, ok := attributeTable[name]
	return info.kind, ok
}

// GetOriginalValue returns the current value of the attribute `name` of `n`.
// If `kind` does not match the attribute, the zero value of `kind` is returned.
func GetOriginalValue(n *Node, name string, kind Kind) Value {
	info, ok := attributeTable[name]
	if !ok || info.kind != kind {
		return Value{Kind: kind}
	}
	return info.get(n)
}

// isInherited returns true for the animatable properties
// inherited by children.
func isInherited(name string) bool { return attributeTable[name].inherited }
