package svgdom

import (
	"image/color"
	"math"

	"github.com/benoitkugler/svgdom/svgdraw"
	"github.com/benoitkugler/svgdom/svgpath"
)

// GradientColor is a resolved gradient stop.
type GradientColor struct {
	Color     color.NRGBA
	Opacity   float64
	Offset    Dimension // percentage
	HasOffset bool
}

// Gradient is a linear or radial gradient, with its
// href chain resolved.
type Gradient struct {
	Radial bool

	X1, Y1, X2, Y2 Dimension // linear
	Cx, Cy, R      Dimension // radial
	Fx, Fy, Fr     Dimension // radial

	Units     svgdraw.GradientUnits
	Spread    svgdraw.SpreadMethod
	Transform svgpath.Matrix2D
	Colors    []GradientColor
}

// Gradient returns the resolved gradient of a linearGradient
// or radialGradient node, or nil.
func (doc *Document) Gradient(id NodeID) *Gradient {
	n := doc.Node(id)
	if n == nil || (n.Tag != TagLinearGradient && n.Tag != TagRadialGradient) {
		return nil
	}
	if n.gradient == nil {
		n.gradient = doc.buildGradient(doc.ctx, n)
	}
	return n.gradient
}

func initGradient(doc *Document, ctx *StyleContext, n *Node) {
	if n.gradient == nil {
		n.gradient = doc.buildGradient(ctx, n)
	}
}

// gradientChain follows the href attributes, stopping
// on cycles and non gradient elements.
func (doc *Document) gradientChain(ctx *StyleContext, n *Node) []*Node {
	chain := []*Node{n}
	seen := map[*Node]bool{n: true}
	for cur := n; cur.Href != ""; {
		_, next := doc.resolve(ctx, cur.Href)
		if next == nil {
			doc.logf("unknown gradient reference %q", cur.Href)
			break
		}
		if next.Tag != TagLinearGradient && next.Tag != TagRadialGradient {
			doc.logf("invalid gradient reference <%s> %q", next.Tag, cur.Href)
			break
		}
		if seen[next] {
			doc.logf("cyclic gradient reference %q", cur.Href)
			break
		}
		seen[next] = true
		chain = append(chain, next)
		cur = next
	}
	return chain
}

// buildGradient resolves the attributes of `n`: an attribute missing
// on `n` is taken from the first referenced gradient declaring it,
// and the stops from the first gradient having some.
func (doc *Document) buildGradient(ctx *StyleContext, n *Node) *Gradient {
	chain := doc.gradientChain(ctx, n)
	declaring := func(name string) *Node {
		for _, node := range chain {
			if _, ok := node.raw[name]; ok {
				return node
			}
		}
		return nil
	}
	dim := func(name string, def Dimension) Dimension {
		if node := declaring(name); node != nil {
			return *node.Geom.field(name)
		}
		return def
	}
	percent := func(v float64) Dimension { return Dimension{Value: v, Unit: UnitPercent} }

	g := &Gradient{Radial: n.Tag == TagRadialGradient, Transform: svgpath.Identity}
	g.Units = svgdraw.ObjectBoundingBox
	if node := declaring("gradientUnits"); node != nil {
		g.Units = node.unitsAttr("gradientUnits", svgdraw.ObjectBoundingBox)
	}
	if node := declaring("spreadMethod"); node != nil {
		g.Spread, _ = parseSpread(node.raw["spreadMethod"])
	}
	if node := declaring("gradientTransform"); node != nil {
		g.Transform = node.paintTransform.Matrix()
	}
	if g.Radial {
		g.Cx = dim("cx", percent(50))
		g.Cy = dim("cy", percent(50))
		g.R = dim("r", percent(50))
		g.Fx = dim("fx", g.Cx)
		g.Fy = dim("fy", g.Cy)
		g.Fr = dim("fr", percent(0))
	} else {
		g.X1 = dim("x1", percent(0))
		g.Y1 = dim("y1", percent(0))
		g.X2 = dim("x2", percent(100))
		g.Y2 = dim("y2", percent(0))
	}
	for _, node := range chain {
		if colors := doc.gradientStops(node); len(colors) != 0 {
			g.Colors = colors
			break
		}
	}
	return g
}

func (doc *Document) gradientStops(n *Node) []GradientColor {
	var out []GradientColor
	for _, c := range n.children {
		stop := doc.Node(c)
		if stop == nil || stop.Tag != TagStop {
			continue
		}
		out = append(out, GradientColor{
			Color:     stop.Stop.Color,
			Opacity:   stop.Stop.Opacity,
			Offset:    stop.Stop.Offset,
			HasOffset: stop.Stop.HasOffset,
		})
	}
	return out
}

// toPattern converts the gradient for the drawing backends.
// Missing or decreasing offsets repeat the previous one.
func (g *Gradient) toPattern(width, height float64) svgdraw.Gradient {
	out := svgdraw.Gradient{
		Units:  g.Units,
		Spread: g.Spread,
		Matrix: g.Transform,
		Stops:  make([]svgdraw.GradStop, len(g.Colors)),
	}
	offset := 0.
	for i, c := range g.Colors {
		if c.HasOffset {
			offset = math.Max(offset, c.Offset.fraction())
		}
		out.Stops[i] = svgdraw.GradStop{StopColor: c.Color, Offset: offset, Opacity: c.Opacity}
	}

	diag := math.Hypot(width, height) / math.Sqrt2
	x := func(d Dimension) float64 { return g.length(d, width) }
	y := func(d Dimension) float64 { return g.length(d, height) }
	r := func(d Dimension) float64 { return g.length(d, diag) }
	if g.Radial {
		out.Direction = svgdraw.Radial{x(g.Cx), y(g.Cy), x(g.Fx), y(g.Fy), r(g.R), r(g.Fr)}
	} else {
		out.Direction = svgdraw.Linear{x(g.X1), y(g.Y1), x(g.X2), y(g.Y2)}
	}
	return out
}

// length resolves a gradient coordinate: bounding box units
// are fractions, user space ones are resolved against the viewport.
func (g *Gradient) length(d Dimension, reference float64) float64 {
	if g.Units == svgdraw.ObjectBoundingBox {
		return d.fraction()
	}
	return d.ConvertToPx(reference)
}
