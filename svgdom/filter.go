package svgdom

import (
	"fmt"
	"math"

	"github.com/benoitkugler/svgdom/svgdraw"
	"github.com/benoitkugler/svgdom/svgpath"
)

func initFilter(doc *Document, ctx *StyleContext, n *Node) {
	n.units = n.unitsAttr("filterUnits", svgdraw.ObjectBoundingBox)
	n.contentUnits = n.unitsAttr("primitiveUnits", svgdraw.UserSpaceOnUse)
}

var identityColorMatrix = [20]float64{
	1, 0, 0, 0, 0,
	0, 1, 0, 0, 0,
	0, 0, 1, 0, 0,
	0, 0, 0, 1, 0,
}

// initColorMatrix computes the 4x5 matrix of feColorMatrix
func initColorMatrix(doc *Document, ctx *StyleContext, n *Node) {
	p := n.Prim
	p.Matrix = identityColorMatrix
	switch p.Type {
	case "matrix", "":
		if len(p.Values) == 0 {
			return
		}
		if len(p.Values) != 20 {
			doc.logf("feColorMatrix: expected 20 values, got %d", len(p.Values))
			return
		}
		copy(p.Matrix[:], p.Values)
	case "saturate":
		s := 1.
		if len(p.Values) != 0 {
			s = p.Values[0]
		}
		p.Matrix = saturateMatrix(s)
	case "hueRotate":
		a := 0.
		if len(p.Values) != 0 {
			a = p.Values[0]
		}
		p.Matrix = hueRotateMatrix(a)
	case "luminanceToAlpha":
		p.Matrix = [20]float64{
			0, 0, 0, 0, 0,
			0, 0, 0, 0, 0,
			0, 0, 0, 0, 0,
			0.2125, 0.7154, 0.0721, 0, 0,
		}
	default:
		doc.logf("feColorMatrix: unsupported type %q", p.Type)
	}
}

func saturateMatrix(s float64) [20]float64 {
	return [20]float64{
		0.213 + 0.787*s, 0.715 - 0.715*s, 0.072 - 0.072*s, 0, 0,
		0.213 - 0.213*s, 0.715 + 0.285*s, 0.072 - 0.072*s, 0, 0,
		0.213 - 0.213*s, 0.715 - 0.715*s, 0.072 + 0.928*s, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// hueRotateMatrix expects an angle in degrees
func hueRotateMatrix(angle float64) [20]float64 {
	sin, cos := math.Sincos(angle * math.Pi / 180)
	return [20]float64{
		0.213 + cos*0.787 - sin*0.213, 0.715 - cos*0.715 - sin*0.715, 0.072 - cos*0.072 + sin*0.928, 0, 0,
		0.213 - cos*0.213 + sin*0.143, 0.715 + cos*0.285 + sin*0.140, 0.072 - cos*0.072 - sin*0.283, 0, 0,
		0.213 - cos*0.213 - sin*0.787, 0.715 - cos*0.715 + sin*0.715, 0.072 + cos*0.928 + sin*0.072, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// filterChain builds the primitives of the filter element `filter`,
// applied on an object with bounding box `bbox`.
// Each primitive works in its color-interpolation-filters space:
// conversions are inserted when an input is in another space, and
// the output is always converted back to sRGB.
// It returns nil for an empty filter.
func (doc *Document) filterChain(filter *Node, bbox svgpath.Rect) *svgdraw.FilterChain {
	chain := &svgdraw.FilterChain{}
	spaces := map[string]svgdraw.ColorInterpolation{
		svgdraw.SourceGraphic: svgdraw.SRGB,
		svgdraw.SourceAlpha:   svgdraw.SRGB,
	}
	last := svgdraw.SourceGraphic
	generated := 0
	newName := func() string {
		generated++
		return fmt.Sprintf("_result%d", generated)
	}
	// convert returns the name of `in`, expressed in `space`
	convert := func(in string, space svgdraw.ColorInterpolation) string {
		if spaces[in] == space {
			return in
		}
		name := newName()
		chain.Primitives = append(chain.Primitives, svgdraw.FilterPrimitive{
			In: in, Result: name,
			Effect: svgdraw.ColorSpace{From: spaces[in], To: space},
		})
		spaces[name] = space
		return name
	}
	input := func(in string) string {
		if in == "" {
			return last
		}
		if _, ok := spaces[in]; !ok {
			doc.logf("unknown filter input %q", in)
			return last
		}
		return in
	}

	sx, sy := 1., 1.
	if filter.contentUnits == svgdraw.ObjectBoundingBox {
		sx, sy = bbox.W, bbox.H
	}
	for _, c := range filter.children {
		prim := doc.Node(c)
		if prim == nil || prim.Prim == nil {
			continue
		}
		p := prim.Prim
		space := svgdraw.LinearRGB
		if prim.Decl.IsSet("color-interpolation-filters") {
			space = prim.Decl.ColorInterpolationFilters
		} else if filter.Decl.IsSet("color-interpolation-filters") {
			space = filter.Decl.ColorInterpolationFilters
		}

		fp := svgdraw.FilterPrimitive{In: convert(input(p.In), space)}
		switch prim.Tag {
		case TagFeGaussianBlur:
			fp.Effect = svgdraw.Blur{StdDevX: p.StdDevX * sx, StdDevY: p.StdDevY * sy, Edge: p.EdgeMode}
		case TagFeOffset:
			fp.Effect = svgdraw.Offset{Dx: p.Dx * sx, Dy: p.Dy * sy}
		case TagFeColorMatrix:
			fp.Effect = svgdraw.ColorMatrix{Matrix: p.Matrix}
		case TagFeComposite:
			fp.In2 = convert(input(p.In2), space)
			fp.Effect = svgdraw.Composite{Operator: p.Operator, K1: p.K1, K2: p.K2, K3: p.K3, K4: p.K4}
		default:
			continue
		}
		fp.Result = p.Result
		if fp.Result == "" {
			fp.Result = newName()
		}
		chain.Primitives = append(chain.Primitives, fp)
		spaces[fp.Result] = space
		last = fp.Result
	}
	if len(chain.Primitives) == 0 {
		return nil
	}
	if spaces[last] != svgdraw.SRGB {
		chain.Primitives = append(chain.Primitives, svgdraw.FilterPrimitive{
			In: last, Result: newName(),
			Effect: svgdraw.ColorSpace{From: spaces[last], To: svgdraw.SRGB},
		})
	}
	return chain
}
