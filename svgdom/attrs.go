package svgdom

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/aymerick/douceur/parser"
	"github.com/benoitkugler/svgdom/svgdraw"
	"github.com/benoitkugler/svgdom/svgpath"
)

// StopAttrs are the attributes of a gradient stop.
type StopAttrs struct {
	Offset    Dimension // percentage, in [0, 100]
	HasOffset bool
	Color     color.NRGBA
	Opacity   float64
}

// PrimitiveAttrs are the attributes of filter primitives.
type PrimitiveAttrs struct {
	In, In2, Result string

	// feGaussianBlur
	StdDevX, StdDevY float64
	EdgeMode         svgdraw.EdgeMode

	// feOffset
	Dx, Dy float64

	// feColorMatrix, resolved during style initialization
	Type   string
	Values []float64
	Matrix [20]float64

	// feComposite
	Operator       svgdraw.CompositeOperator
	K1, K2, K3, K4 float64
}

// AnimationAttrs are the attributes of animation elements,
// as declared. They are parsed during style initialization.
type AnimationAttrs struct {
	AttributeName string
	Begin, Dur    string
	End           string
	RepeatCount   string
	Fill          string
	CalcMode      string
	Values        string
	KeyTimes      string
	KeySplines    string
	From, To, By  string

	// animateMotion
	KeyPoints string
	Path      string
	Rotate    string

	// animateTransform
	Type string
}

// field returns the dimension attribute `name`, or nil
func (g *Geometry) field(name string) *Dimension {
	switch name {
	case "x":
		return &g.X
	case "y":
		return &g.Y
	case "width":
		return &g.Width
	case "height":
		return &g.Height
	case "rx":
		return &g.Rx
	case "ry":
		return &g.Ry
	case "cx":
		return &g.Cx
	case "cy":
		return &g.Cy
	case "r":
		return &g.R
	case "x1":
		return &g.X1
	case "y1":
		return &g.Y1
	case "x2":
		return &g.X2
	case "y2":
		return &g.Y2
	case "fx":
		return &g.Fx
	case "fy":
		return &g.Fy
	case "fr":
		return &g.Fr
	}
	return nil
}

// dim returns the dimension `name` if declared, or `def`
func (n *Node) dim(name string, def Dimension) Dimension {
	if _, ok := n.raw[name]; !ok {
		return def
	}
	if f := n.Geom.field(name); f != nil {
		return *f
	}
	return def
}

// applyInlineStyle applies the declarations of a style attribute.
// The first error is returned, after all the valid declarations
// have been applied.
func (n *Node) applyInlineStyle(style string) error {
	style = strings.TrimSpace(style)
	if style == "" {
		return nil
	}
	if !strings.HasSuffix(style, ";") {
		style += ";"
	}
	decls, err := parser.ParseDeclarations(style)
	if err != nil {
		return err
	}
	var firstErr error
	for _, decl := range decls {
		if err := n.SetAttr(decl.Property, decl.Value); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func setNoAttr(*Node, string, string) error { return errUnknownAttr }

func setGeometryAttr(n *Node, name, value string) error {
	switch name {
	case "points":
		pts, err := svgpath.ParsePoints(value)
		if len(pts)%2 != 0 {
			pts = pts[:len(pts)-1]
			if err == nil {
				err = fmt.Errorf("odd number of coordinates")
			}
		}
		n.Geom.Points = pts
		return err
	case "d":
		var err error
		n.path, err = svgpath.ParsePathData(value)
		return err
	}
	f := n.Geom.field(name)
	if f == nil {
		return errUnknownAttr
	}
	d, err := ParseDimension(value, UnitPx)
	if err != nil {
		return err
	}
	switch name {
	case "width", "height", "r", "rx", "ry":
		if d.Value < 0 {
			return fmt.Errorf("negative length")
		}
	}
	*f = d
	return nil
}

func setViewportAttr(n *Node, name, value string) error {
	if name == "viewBox" {
		n.viewBoxAttr = value
		return nil
	}
	return setGeometryAttr(n, name, value)
}

// setUnitsAttr handles the attributes of clipPath, mask, pattern and filter
func setUnitsAttr(n *Node, name, value string) error {
	switch name {
	case "clipPathUnits", "maskUnits", "maskContentUnits", "patternUnits",
		"patternContentUnits", "filterUnits", "primitiveUnits":
		_, err := parseUnits(value)
		return err // parsed again during style initialization
	case "patternTransform":
		var err error
		n.paintTransform, err = svgpath.ParseTransform(value)
		return err
	}
	return setViewportAttr(n, name, value)
}

func parseUnits(v string) (svgdraw.GradientUnits, error) {
	switch strings.TrimSpace(v) {
	case "objectBoundingBox":
		return svgdraw.ObjectBoundingBox, nil
	case "userSpaceOnUse":
		return svgdraw.UserSpaceOnUse, nil
	default:
		return 0, fmt.Errorf("invalid units %q", v)
	}
}

// unitsAttr returns the units declared by `name`, or `def`
func (n *Node) unitsAttr(name string, def svgdraw.GradientUnits) svgdraw.GradientUnits {
	v, ok := n.raw[name]
	if !ok {
		return def
	}
	u, err := parseUnits(v)
	if err != nil {
		return def
	}
	return u
}

func setGradientAttr(n *Node, name, value string) error {
	switch name {
	case "gradientUnits":
		_, err := parseUnits(value)
		return err
	case "spreadMethod":
		_, err := parseSpread(value)
		return err
	case "gradientTransform":
		var err error
		n.paintTransform, err = svgpath.ParseTransform(value)
		return err
	case "points", "d":
		return errUnknownAttr
	}
	return setGeometryAttr(n, name, value)
}

func parseSpread(v string) (svgdraw.SpreadMethod, error) {
	switch strings.TrimSpace(v) {
	case "pad":
		return svgdraw.PadSpread, nil
	case "reflect":
		return svgdraw.ReflectSpread, nil
	case "repeat":
		return svgdraw.RepeatSpread, nil
	default:
		return 0, fmt.Errorf("invalid spreadMethod %q", v)
	}
}

func setStopAttr(n *Node, name, value string) error {
	var err error
	switch name {
	case "offset":
		n.Stop.Offset, err = parseOffset(value)
		n.Stop.HasOffset = err == nil
	case "stop-color":
		var c color.NRGBA
		c, err = ParseColor(value)
		if err == nil {
			n.Stop.Color = c
		}
	case "stop-opacity":
		var op float64
		op, err = parseOpacity(strings.TrimSpace(value))
		if err == nil {
			n.Stop.Opacity = op
		}
	default:
		return errUnknownAttr
	}
	return err
}

// parseOffset reads a number or a percentage, clamps it to [0, 1]
// and returns it as a percentage.
func parseOffset(v string) (Dimension, error) {
	d, err := ParseDimension(v, UnitPx)
	if err != nil {
		return Dimension{}, err
	}
	if d.Unit != UnitPx && d.Unit != UnitPercent {
		return Dimension{}, fmt.Errorf("invalid offset %q", v)
	}
	f := clamp01(d.fraction())
	return Dimension{Value: f * 100, Unit: UnitPercent}, nil
}

func setPrimitiveAttr(n *Node, name, value string) error {
	p := n.Prim
	var err error
	switch name {
	case "in":
		p.In = strings.TrimSpace(value)
	case "in2":
		p.In2 = strings.TrimSpace(value)
	case "result":
		p.Result = strings.TrimSpace(value)
	case "stdDeviation":
		var pts []float64
		pts, err = svgpath.ParsePoints(value)
		if err != nil {
			break
		}
		switch len(pts) {
		case 1:
			p.StdDevX, p.StdDevY = pts[0], pts[0]
		case 2:
			p.StdDevX, p.StdDevY = pts[0], pts[1]
		default:
			err = ErrParamMismatch
		}
		if p.StdDevX < 0 || p.StdDevY < 0 {
			err = fmt.Errorf("negative standard deviation")
		}
	case "edgeMode":
		switch strings.TrimSpace(value) {
		case "duplicate":
			p.EdgeMode = svgdraw.EdgeDuplicate
		case "wrap":
			p.EdgeMode = svgdraw.EdgeWrap
		case "none":
			p.EdgeMode = svgdraw.EdgeNone
		default:
			err = fmt.Errorf("invalid edgeMode %q", value)
		}
	case "dx":
		p.Dx, err = ParseDouble(value)
	case "dy":
		p.Dy, err = ParseDouble(value)
	case "type":
		p.Type = strings.TrimSpace(value)
	case "values":
		p.Values, err = svgpath.ParsePoints(value)
	case "operator":
		p.Operator, err = parseCompositeOperator(value)
	case "k1":
		p.K1, err = ParseDouble(value)
	case "k2":
		p.K2, err = ParseDouble(value)
	case "k3":
		p.K3, err = ParseDouble(value)
	case "k4":
		p.K4, err = ParseDouble(value)
	case "x", "y", "width", "height": // primitive subregion, not supported
		_, err = ParseDimension(value, UnitPx)
	default:
		return errUnknownAttr
	}
	return err
}

func parseCompositeOperator(v string) (svgdraw.CompositeOperator, error) {
	switch strings.TrimSpace(v) {
	case "over":
		return svgdraw.CompositeOver, nil
	case "in":
		return svgdraw.CompositeIn, nil
	case "out":
		return svgdraw.CompositeOut, nil
	case "atop":
		return svgdraw.CompositeAtop, nil
	case "xor":
		return svgdraw.CompositeXor, nil
	case "arithmetic":
		return svgdraw.CompositeArithmetic, nil
	default:
		return 0, fmt.Errorf("invalid operator %q", v)
	}
}

func setAnimationAttr(n *Node, name, value string) error {
	a := n.Anim
	value = strings.TrimSpace(value)
	switch name {
	case "attributeName":
		a.AttributeName = value
	case "attributeType", "additive", "accumulate", "restart":
		// ignored
	case "begin":
		a.Begin = value
	case "dur":
		a.Dur = value
	case "end":
		a.End = value
	case "repeatCount":
		a.RepeatCount = value
	case "fill":
		a.Fill = value
	case "calcMode":
		a.CalcMode = value
	case "values":
		a.Values = value
	case "keyTimes":
		a.KeyTimes = value
	case "keySplines":
		a.KeySplines = value
	case "from":
		a.From = value
	case "to":
		a.To = value
	case "by":
		a.By = value
	case "keyPoints":
		a.KeyPoints = value
	case "path":
		a.Path = value
	case "rotate":
		a.Rotate = value
	case "type":
		a.Type = value
	default:
		return errUnknownAttr
	}
	return nil
}

func setStyleAttr(n *Node, name, value string) error {
	switch name {
	case "type", "media", "title":
		return nil
	default:
		return errUnknownAttr
	}
}
