package svgdom

import (
	"math"

	"github.com/benoitkugler/svgdom/svgdraw"
	"github.com/benoitkugler/svgdom/svgpath"
)

// maxPatternTiles bounds the number of tiles drawn
// to fill one shape
const maxPatternTiles = 10000

// px resolves the geometry attribute `name`
func (doc *Document) px(d Dimension, name string) float64 {
	return d.ConvertToPx(doc.referenceLength(name))
}

func rectPath(doc *Document, n *Node) svgpath.Path {
	g := &n.Geom
	x, y := doc.px(g.X, "x"), doc.px(g.Y, "y")
	w, h := doc.px(g.Width, "width"), doc.px(g.Height, "height")
	if w <= 0 || h <= 0 {
		return nil
	}
	_, hasRx := n.raw["rx"]
	_, hasRy := n.raw["ry"]
	rx, ry := doc.px(g.Rx, "rx"), doc.px(g.Ry, "ry")
	if hasRx && !hasRy {
		ry = rx
	} else if hasRy && !hasRx {
		rx = ry
	}
	rx, ry = math.Min(rx, w/2), math.Min(ry, h/2)
	var p svgpath.Path
	if rx <= 0 || ry <= 0 {
		p.AddRect(x, y, x+w, y+h, 0)
	} else {
		p.AddRoundRect(x, y, x+w, y+h, rx, ry, 0)
	}
	return p
}

func circlePath(doc *Document, n *Node) svgpath.Path {
	r := doc.px(n.Geom.R, "r")
	if r <= 0 {
		return nil
	}
	var p svgpath.Path
	p.AddCircle(doc.px(n.Geom.Cx, "cx"), doc.px(n.Geom.Cy, "cy"), r)
	return p
}

func ellipsePath(doc *Document, n *Node) svgpath.Path {
	rx, ry := doc.px(n.Geom.Rx, "rx"), doc.px(n.Geom.Ry, "ry")
	if _, ok := n.raw["ry"]; !ok {
		ry = rx
	} else if _, ok := n.raw["rx"]; !ok {
		rx = ry
	}
	if rx <= 0 || ry <= 0 {
		return nil
	}
	var p svgpath.Path
	p.AddEllipse(doc.px(n.Geom.Cx, "cx"), doc.px(n.Geom.Cy, "cy"), rx, ry, 0)
	return p
}

func linePath(doc *Document, n *Node) svgpath.Path {
	g := &n.Geom
	var p svgpath.Path
	p.AddLine(doc.px(g.X1, "x1"), doc.px(g.Y1, "y1"), doc.px(g.X2, "x2"), doc.px(g.Y2, "y2"))
	return p
}

func polygonPath(doc *Document, n *Node) svgpath.Path {
	if len(n.Geom.Points) < 4 {
		return nil
	}
	var p svgpath.Path
	p.AddPolyline(n.Geom.Points, true)
	return p
}

func polylinePath(doc *Document, n *Node) svgpath.Path {
	if len(n.Geom.Points) < 4 {
		return nil
	}
	var p svgpath.Path
	p.AddPolyline(n.Geom.Points, false)
	return p
}

func pathPath(doc *Document, n *Node) svgpath.Path { return n.path }

// pattern converts a fill or stroke paint, returning nil
// for none, patterns and invalid references
func (doc *Document) pattern(decl *Declaration, p Paint) svgdraw.Pattern {
	switch p.Kind {
	case PaintColor, PaintCurrentColor:
		return svgdraw.PlainColor{NRGBA: decl.paintColor(p)}
	case PaintURL:
		g := p.Gradient
		if g == nil {
			return nil
		}
		switch len(g.Colors) {
		case 0:
			return nil
		case 1:
			c := g.Colors[0].Color
			c.A = uint8(float64(c.A)*clamp01(g.Colors[0].Opacity) + 0.5)
			return svgdraw.PlainColor{NRGBA: c}
		}
		return g.toPattern(doc.userSize())
	}
	return nil
}

// pathStyle resolves the stroke attributes of decl
func (doc *Document) pathStyle(decl *Declaration) svgdraw.PathStyle {
	diag := doc.diagonal()
	style := svgdraw.PathStyle{
		Fill:              doc.pattern(decl, decl.Fill),
		Stroke:            doc.pattern(decl, decl.Stroke),
		FillOpacity:       decl.FillOpacity,
		StrokeOpacity:     decl.StrokeOpacity,
		UseNonZeroWinding: !decl.FillEvenOdd,
		LineWidth:         decl.StrokeWidth.ConvertToPx(diag),
		MiterLimit:        decl.MiterLimit,
		Join:              decl.LineJoin,
		Cap:               decl.LineCap,
	}
	if dashes := decl.dashes(diag); dashes != nil {
		style.Dash = svgdraw.DashOptions{Dash: dashes, DashOffset: decl.DashOffset.ConvertToPx(diag)}
	}
	return style
}

// paintGraphic fills then strokes the shape
func paintGraphic(doc *Document, ctx *StyleContext, c *svgdraw.Canvas, n *Node, decl *Declaration) {
	if decl.Hidden {
		return
	}
	path := tagTable[n.Tag].asPath(doc, n)
	if len(path) == 0 {
		return
	}
	style := doc.pathStyle(decl)
	if decl.Fill.Kind == PaintURL && decl.Fill.Gradient == nil {
		doc.paintPattern(ctx, c, path, decl.Fill.URL, decl.FillOpacity, style.UseNonZeroWinding)
	}
	if decl.Stroke.Kind == PaintURL && decl.Stroke.Gradient == nil {
		doc.logf("pattern strokes are not supported (%q)", decl.Stroke.URL)
	}
	c.DrawPath(path, style)
}

// paintPattern fills `path` with the tiles of the pattern `ref`
func (doc *Document) paintPattern(ctx *StyleContext, c *svgdraw.Canvas, path svgpath.Path, ref string, opacity float64, nonZero bool) {
	id, pat := doc.resolve(ctx, ref)
	if pat == nil || pat.Tag != TagPattern {
		doc.logf("invalid pattern reference %q", ref)
		return
	}
	if doc.usesInProgress[id] {
		doc.logf("recursive pattern %q", ref)
		return
	}
	doc.usesInProgress[id] = true
	defer delete(doc.usesInProgress, id)

	bbox := path.Bounds()
	tile := doc.region(pat, bbox, pat.units, [4]Dimension{})
	if tile.IsEmpty() {
		return
	}

	depth := c.Depth()
	defer c.RestoreTo(depth)
	c.Save()
	c.ClipPath(path, nonZero)
	if opacity < 1 {
		c.SaveLayer(svgdraw.Layer{Opacity: opacity})
	}
	patternMatrix := pat.paintTransform.Matrix()
	c.Concat(patternMatrix)

	// the area to cover, in pattern space
	covered := transformRect(patternMatrix.Invert(), bbox)
	i0 := math.Floor((covered.X - tile.X) / tile.W)
	i1 := math.Ceil((covered.X + covered.W - tile.X) / tile.W)
	j0 := math.Floor((covered.Y - tile.Y) / tile.H)
	j1 := math.Ceil((covered.Y + covered.H - tile.Y) / tile.H)
	if (i1-i0)*(j1-j0) > maxPatternTiles {
		doc.logf("too many pattern tiles for %q", ref)
		return
	}

	content := svgpath.Identity
	if vb := pat.Geom.ViewBox; vb != nil {
		content = viewBoxMatrix(*vb, svgpath.Rect{W: tile.W, H: tile.H})
	} else if pat.contentUnits == svgdraw.ObjectBoundingBox {
		content = content.Scale(bbox.W, bbox.H)
	}
	var clip svgpath.Path
	clip.AddRect(0, 0, tile.W, tile.H, 0)
	for i := i0; i < i1; i++ {
		for j := j0; j < j1; j++ {
			c.Save()
			c.Concat(svgpath.Identity.Translate(tile.X+i*tile.W, tile.Y+j*tile.H))
			c.ClipPath(clip, true)
			c.Concat(content)
			for _, child := range pat.children {
				if ch := doc.Node(child); ch != nil && ch.has(drawTraversed) {
					doc.drawNode(ctx, c, child, nil)
				}
			}
			c.Restore()
		}
	}
}

// paintUse draws the referenced element, translated by x and y,
// with the style of the use element
func paintUse(doc *Document, ctx *StyleContext, c *svgdraw.Canvas, n *Node, decl *Declaration) {
	id, ref := doc.resolve(ctx, n.Href)
	if ref == nil {
		doc.logf("invalid use reference %q", n.Href)
		return
	}
	if doc.usesInProgress[id] {
		doc.logf("recursive use reference %q", n.Href)
		return
	}
	doc.usesInProgress[id] = true
	defer delete(doc.usesInProgress, id)

	c.Save()
	c.Concat(svgpath.Identity.Translate(doc.px(n.Geom.X, "x"), doc.px(n.Geom.Y, "y")))
	doc.drawNode(ctx, c, id, decl)
	c.Restore()
}

// paintSvg maps the viewBox to the viewport, for the
// children of the svg element
func paintSvg(doc *Document, ctx *StyleContext, c *svgdraw.Canvas, n *Node, decl *Declaration) {
	var viewport svgpath.Rect
	if n.parent == NoNode {
		viewport = svgpath.Rect{W: doc.Width, H: doc.Height}
	} else {
		viewport = svgpath.Rect{
			X: doc.px(n.Geom.X, "x"),
			Y: doc.px(n.Geom.Y, "y"),
			W: doc.px(n.dim("width", Dimension{Value: 100, Unit: UnitPercent}), "width"),
			H: doc.px(n.dim("height", Dimension{Value: 100, Unit: UnitPercent}), "height"),
		}
	}
	if vb := n.Geom.ViewBox; vb != nil {
		c.Concat(viewBoxMatrix(*vb, viewport))
	} else {
		c.Concat(svgpath.Identity.Translate(viewport.X, viewport.Y))
	}
}

// viewBoxMatrix maps vb into viewport, centered and
// preserving the aspect ratio (xMidYMid meet)
func viewBoxMatrix(vb, viewport svgpath.Rect) svgpath.Matrix2D {
	if vb.IsEmpty() {
		return svgpath.Identity
	}
	s := math.Min(viewport.W/vb.W, viewport.H/vb.H)
	tx := viewport.X + (viewport.W-vb.W*s)/2
	ty := viewport.Y + (viewport.H-vb.H*s)/2
	return svgpath.Identity.Translate(tx, ty).Scale(s, s).Translate(-vb.X, -vb.Y)
}

// parseViewBox reads the viewBox attribute, logging invalid values
func (doc *Document) parseViewBox(n *Node) {
	n.Geom.ViewBox = nil
	if n.viewBoxAttr == "" {
		return
	}
	v, err := svgpath.ParsePoints(n.viewBoxAttr)
	if err == nil && len(v) != 4 {
		err = ErrParamMismatch
	}
	if err != nil {
		doc.logf("invalid viewBox %q: %s", n.viewBoxAttr, err)
		return
	}
	if v[2] <= 0 || v[3] <= 0 {
		doc.logf("empty viewBox %q", n.viewBoxAttr)
		return
	}
	n.Geom.ViewBox = &svgpath.Rect{X: v[0], Y: v[1], W: v[2], H: v[3]}
}

// initSvg resolves the viewBox, and the size of the document
// for the root element.
func initSvg(doc *Document, ctx *StyleContext, n *Node) {
	doc.parseViewBox(n)
	if n.parent != NoNode {
		return
	}
	doc.viewBox = n.Geom.ViewBox
	vp := doc.opts.Viewport
	if vp.IsEmpty() {
		vp = svgpath.Rect{W: 100, H: 100}
		if doc.viewBox != nil {
			vp = svgpath.Rect{W: doc.viewBox.W, H: doc.viewBox.H}
		}
	}
	doc.Width, doc.Height = vp.W, vp.H
	if _, ok := n.raw["width"]; ok {
		doc.Width = n.Geom.Width.ConvertToPx(vp.W)
	}
	if _, ok := n.raw["height"]; ok {
		doc.Height = n.Geom.Height.ConvertToPx(vp.H)
	}
}

func initClipPath(doc *Document, ctx *StyleContext, n *Node) {
	n.contentUnits = n.unitsAttr("clipPathUnits", svgdraw.UserSpaceOnUse)
}

func initMask(doc *Document, ctx *StyleContext, n *Node) {
	n.units = n.unitsAttr("maskUnits", svgdraw.ObjectBoundingBox)
	n.contentUnits = n.unitsAttr("maskContentUnits", svgdraw.UserSpaceOnUse)
}

func initPattern(doc *Document, ctx *StyleContext, n *Node) {
	n.units = n.unitsAttr("patternUnits", svgdraw.ObjectBoundingBox)
	n.contentUnits = n.unitsAttr("patternContentUnits", svgdraw.UserSpaceOnUse)
	doc.parseViewBox(n)
}
