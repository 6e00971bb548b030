package svgdom

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/benoitkugler/svgdom/svgdraw"
)

// PaintKind is the type of a fill or stroke paint.
type PaintKind uint8

const (
	PaintNone PaintKind = iota
	PaintColor
	PaintCurrentColor
	PaintURL // gradient or pattern
)

// Paint is the value of the fill and stroke properties.
type Paint struct {
	Kind  PaintKind
	Color color.NRGBA // for PaintColor
	URL   string      // referenced id, for PaintURL

	// Gradient is resolved from URL during style initialization.
	// It is nil for patterns and invalid references.
	Gradient *Gradient
}

// ParsePaint parses "none", "currentColor", "url(#id)" (with an optional
// fallback, which is ignored) or a color.
func ParsePaint(s string) (Paint, error) {
	v := strings.TrimSpace(s)
	switch {
	case v == "none":
		return Paint{Kind: PaintNone}, nil
	case strings.EqualFold(v, "currentColor"):
		return Paint{Kind: PaintCurrentColor}, nil
	case strings.HasPrefix(v, "url("):
		id := idFromRef(v)
		if id == "" {
			return Paint{}, fmt.Errorf("invalid paint %q", s)
		}
		return Paint{Kind: PaintURL, URL: id}, nil
	}
	c, err := ParseColor(v)
	if err != nil {
		return Paint{}, err
	}
	return Paint{Kind: PaintColor, Color: c}, nil
}

// property is a bit mask of the properties locally set on a node
type property uint32

const (
	propColor property = 1 << iota
	propFill
	propFillOpacity
	propFillRule
	propStroke
	propStrokeOpacity
	propStrokeWidth
	propLineCap
	propLineJoin
	propMiterLimit
	propDashArray
	propDashOffset
	propFontSize
	propFontFamily
	propClipRule
	propVisibility
	propColorInterpolationFilters

	// not inherited

	propOpacity
	propTransform
	propClipPath
	propMask
	propFilter
	propDisplay
)

const inheritedProps = propOpacity - 1

var propertyNames = map[string]property{
	"color":                       propColor,
	"fill":                        propFill,
	"fill-opacity":                propFillOpacity,
	"fill-rule":                   propFillRule,
	"stroke":                      propStroke,
	"stroke-opacity":              propStrokeOpacity,
	"stroke-width":                propStrokeWidth,
	"stroke-linecap":              propLineCap,
	"stroke-linejoin":             propLineJoin,
	"stroke-miterlimit":           propMiterLimit,
	"stroke-dasharray":            propDashArray,
	"stroke-dashoffset":           propDashOffset,
	"font-size":                   propFontSize,
	"font-family":                 propFontFamily,
	"clip-rule":                   propClipRule,
	"visibility":                  propVisibility,
	"color-interpolation-filters": propColorInterpolationFilters,
	"opacity":                     propOpacity,
	"transform":                   propTransform,
	"clip-path":                   propClipPath,
	"mask":                        propMask,
	"filter":                      propFilter,
	"display":                     propDisplay,
}

// Declaration is the style of a node: the inherited
// properties, and the local rendering overrides.
type Declaration struct {
	Color         color.NRGBA // currentColor
	Fill, Stroke  Paint
	FillOpacity   float64
	StrokeOpacity float64
	FillEvenOdd   bool // fill-rule
	ClipEvenOdd   bool // clip-rule
	StrokeWidth   Dimension
	LineCap       svgdraw.CapMode
	LineJoin      svgdraw.JoinMode
	MiterLimit    float64
	DashArray     []Dimension
	DashOffset    Dimension
	FontSize      Dimension
	FontFamily    string
	Hidden        bool // visibility
	// ColorInterpolationFilters is the color space of filter primitives.
	ColorInterpolationFilters svgdraw.ColorInterpolation

	Opacity   float64
	Transform string // as declared, see Node.Transform for the parsed value
	ClipPath  string // referenced id
	Mask      string // referenced id
	Filter    string // referenced id
	NoDisplay bool   // display="none"

	set property
}

// DefaultDeclaration returns the initial values of the properties.
func DefaultDeclaration() Declaration {
	return Declaration{
		Color:                     color.NRGBA{A: 0xff},
		Fill:                      Paint{Kind: PaintColor, Color: color.NRGBA{A: 0xff}},
		FillOpacity:               1,
		StrokeOpacity:             1,
		StrokeWidth:               Px(1),
		LineCap:                   svgdraw.ButtCap,
		LineJoin:                  svgdraw.Miter,
		MiterLimit:                4,
		FontSize:                  Px(defaultFontSize),
		ColorInterpolationFilters: svgdraw.LinearRGB,
		Opacity:                   1,
	}
}

// IsSet returns true if the property `name` has been locally specified.
func (d *Declaration) IsSet(name string) bool {
	p, ok := propertyNames[name]
	return ok && d.set&p != 0
}

// inherit copies the inherited properties of `parent`
// not locally specified.
func (d *Declaration) inherit(parent *Declaration) {
	copyIf := func(p property, f func()) {
		if d.set&p == 0 {
			f()
		}
	}
	copyIf(propColor, func() { d.Color = parent.Color })
	copyIf(propFill, func() { d.Fill = parent.Fill })
	copyIf(propFillOpacity, func() { d.FillOpacity = parent.FillOpacity })
	copyIf(propFillRule, func() { d.FillEvenOdd = parent.FillEvenOdd })
	copyIf(propStroke, func() { d.Stroke = parent.Stroke })
	copyIf(propStrokeOpacity, func() { d.StrokeOpacity = parent.StrokeOpacity })
	copyIf(propStrokeWidth, func() { d.StrokeWidth = parent.StrokeWidth })
	copyIf(propLineCap, func() { d.LineCap = parent.LineCap })
	copyIf(propLineJoin, func() { d.LineJoin = parent.LineJoin })
	copyIf(propMiterLimit, func() { d.MiterLimit = parent.MiterLimit })
	copyIf(propDashArray, func() { d.DashArray = parent.DashArray })
	copyIf(propDashOffset, func() { d.DashOffset = parent.DashOffset })
	copyIf(propFontSize, func() { d.FontSize = parent.FontSize })
	copyIf(propFontFamily, func() { d.FontFamily = parent.FontFamily })
	copyIf(propClipRule, func() { d.ClipEvenOdd = parent.ClipEvenOdd })
	copyIf(propVisibility, func() { d.Hidden = parent.Hidden })
	copyIf(propColorInterpolationFilters, func() { d.ColorInterpolationFilters = parent.ColorInterpolationFilters })
}

// resetRender drops the local rendering overrides
func (d *Declaration) resetRender() {
	def := DefaultDeclaration()
	d.Opacity, d.Transform = def.Opacity, ""
	d.ClipPath, d.Mask, d.Filter = "", "", ""
	d.set &^= propOpacity | propTransform | propClipPath | propMask | propFilter
}

// paintColor returns the color of a plain paint, resolving currentColor
func (d *Declaration) paintColor(p Paint) color.NRGBA {
	switch p.Kind {
	case PaintColor:
		return p.Color
	case PaintCurrentColor:
		return d.Color
	default:
		return color.NRGBA{}
	}
}

// setProperty parses and stores the presentation attribute `name`.
// It returns false if `name` is not a property.
// The special value "inherit" removes the local value.
func (d *Declaration) setProperty(name, value string) (bool, error) {
	p, ok := propertyNames[name]
	if !ok {
		return false, nil
	}
	value = strings.TrimSpace(value)
	if value == "inherit" {
		d.set &^= p
		return true, nil
	}
	prev := *d
	var err error
	switch p {
	case propColor:
		d.Color, err = ParseColor(value)
	case propFill:
		d.Fill, err = ParsePaint(value)
	case propStroke:
		d.Stroke, err = ParsePaint(value)
	case propFillOpacity:
		d.FillOpacity, err = parseOpacity(value)
	case propStrokeOpacity:
		d.StrokeOpacity, err = parseOpacity(value)
	case propOpacity:
		d.Opacity, err = parseOpacity(value)
	case propFillRule:
		d.FillEvenOdd, err = parseRule(value)
	case propClipRule:
		d.ClipEvenOdd, err = parseRule(value)
	case propStrokeWidth:
		d.StrokeWidth, err = ParseDimension(value, UnitPx)
	case propDashOffset:
		d.DashOffset, err = ParseDimension(value, UnitPx)
	case propFontSize:
		d.FontSize, err = ParseDimension(value, UnitPx)
	case propFontFamily:
		d.FontFamily = value
	case propLineCap:
		d.LineCap, err = parseLineCap(value)
	case propLineJoin:
		d.LineJoin, err = parseLineJoin(value)
	case propMiterLimit:
		d.MiterLimit, err = ParseDouble(value)
		if err == nil && d.MiterLimit < 1 {
			err = fmt.Errorf("invalid stroke-miterlimit %q", value)
		}
	case propDashArray:
		d.DashArray, err = parseDashArray(value)
	case propVisibility:
		switch value {
		case "visible":
			d.Hidden = false
		case "hidden", "collapse":
			d.Hidden = true
		default:
			err = fmt.Errorf("invalid visibility %q", value)
		}
	case propColorInterpolationFilters:
		switch value {
		case "sRGB":
			d.ColorInterpolationFilters = svgdraw.SRGB
		case "linearRGB", "auto":
			d.ColorInterpolationFilters = svgdraw.LinearRGB
		default:
			err = fmt.Errorf("invalid color-interpolation-filters %q", value)
		}
	case propTransform:
		d.Transform = value
	case propClipPath:
		d.ClipPath = refOrNone(value)
	case propMask:
		d.Mask = refOrNone(value)
	case propFilter:
		d.Filter = refOrNone(value)
	case propDisplay:
		d.NoDisplay = value == "none"
	}
	if err != nil {
		*d = prev
		return true, err
	}
	d.set |= p
	return true, nil
}

func refOrNone(v string) string {
	if v == "none" {
		return ""
	}
	return idFromRef(v)
}

// parseOpacity accepts numbers and percentages, clamped to [0,1]
func parseOpacity(v string) (float64, error) {
	if strings.HasSuffix(v, "%") {
		f, err := ParseDouble(v[:len(v)-1])
		return clamp01(f / 100), err
	}
	f, err := ParseDouble(v)
	return clamp01(f), err
}

func parseRule(v string) (evenOdd bool, err error) {
	switch v {
	case "nonzero":
		return false, nil
	case "evenodd":
		return true, nil
	default:
		return false, fmt.Errorf("invalid fill rule %q", v)
	}
}

func parseLineCap(v string) (svgdraw.CapMode, error) {
	switch v {
	case "butt":
		return svgdraw.ButtCap, nil
	case "round":
		return svgdraw.RoundCap, nil
	case "square":
		return svgdraw.SquareCap, nil
	case "cubic":
		return svgdraw.CubicCap, nil
	case "quadratic":
		return svgdraw.QuadraticCap, nil
	default:
		return svgdraw.ButtCap, fmt.Errorf("invalid stroke-linecap %q", v)
	}
}

func parseLineJoin(v string) (svgdraw.JoinMode, error) {
	switch v {
	case "miter":
		return svgdraw.Miter, nil
	case "miter-clip":
		return svgdraw.MiterClip, nil
	case "arc-clip":
		return svgdraw.ArcClip, nil
	case "round":
		return svgdraw.Round, nil
	case "arc":
		return svgdraw.Arc, nil
	case "bevel":
		return svgdraw.Bevel, nil
	default:
		return svgdraw.Miter, fmt.Errorf("invalid stroke-linejoin %q", v)
	}
}

func parseDashArray(v string) ([]Dimension, error) {
	if v == "none" {
		return nil, nil
	}
	dashes := strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' })
	out := make([]Dimension, len(dashes))
	for i, dash := range dashes {
		d, err := ParseDimension(dash, UnitPx)
		if err != nil {
			return nil, err
		}
		if d.Value < 0 {
			return nil, fmt.Errorf("negative dash in %q", v)
		}
		out[i] = d
	}
	return out, nil
}

// dashes converts the dash array in user units, repeating
// odd lists. It returns nil when the dashes are all zero.
func (d *Declaration) dashes(reference float64) []float64 {
	if len(d.DashArray) == 0 {
		return nil
	}
	out := make([]float64, 0, 2*len(d.DashArray))
	sum := 0.
	for _, dash := range d.DashArray {
		v := dash.ConvertToPx(reference)
		sum += v
		out = append(out, v)
	}
	if sum <= 0 {
		return nil
	}
	if len(out)%2 == 1 {
		out = append(out, out...)
	}
	return out
}
