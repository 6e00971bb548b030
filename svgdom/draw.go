package svgdom

import (
	"math"

	"github.com/benoitkugler/svgdom/svgdraw"
	"github.com/benoitkugler/svgdom/svgpath"
)

// TargetMatrix returns the transform mapping the document
// (of size Width x Height) to the rectangle (x, y, w, h), in device space.
func (doc *Document) TargetMatrix(x, y, w, h float64) svgpath.Matrix2D {
	m := svgpath.Identity.Translate(x, y)
	if doc.Width > 0 && doc.Height > 0 {
		m = m.Scale(w/doc.Width, h/doc.Height)
	}
	return m
}

// Draw paints the document on `c`. The current matrix of `c`
// maps the viewport of the root element to the device.
func (doc *Document) Draw(c *svgdraw.Canvas) {
	doc.DrawNode(c, doc.root)
}

// DrawNode paints the subtree rooted at `id`.
func (doc *Document) DrawNode(c *svgdraw.Canvas, id NodeID) {
	doc.drawNode(doc.ctx, c, id, nil)
}

// drawNode applies, in order, the clip path, the transform, the mask,
// the filter and the group opacity of the node, then paints it and
// its children. Every state pushed on `c` is popped before returning.
// When `parent` is not nil, the inherited properties are taken
// from it instead of the tree parent (see `use`).
func (doc *Document) drawNode(ctx *StyleContext, c *svgdraw.Canvas, id NodeID, parent *Declaration) {
	n := doc.Node(id)
	if c == nil || n == nil {
		return
	}
	decl := &n.Decl
	if parent != nil && n.has(inheritStyle) {
		d := n.Decl
		d.inherit(parent)
		decl = &d
	}
	if decl.NoDisplay {
		return
	}

	depth := c.Depth()
	defer c.RestoreTo(depth)
	c.Save()

	var (
		bbox     svgpath.Rect
		bboxDone bool
	)
	bounds := func() svgpath.Rect {
		if !bboxDone {
			bbox, bboxDone = doc.bounds(n, 0), true
		}
		return bbox
	}

	m := n.matrix()
	if decl.ClipPath != "" {
		doc.applyClip(ctx, c, decl.ClipPath, m, bounds)
	}
	c.Concat(m)
	if decl.Mask != "" {
		doc.applyMask(ctx, c, decl.Mask, bounds)
	}
	if decl.Filter != "" {
		doc.applyFilter(ctx, c, decl.Filter, bounds)
	}
	if decl.Opacity < 1 {
		if n.Tag.IsGraphic() && !(decl.Fill.Kind != PaintNone && decl.Stroke.Kind != PaintNone) {
			// no overlap: the opacity is applied to the paint
			d := *decl
			d.FillOpacity *= d.Opacity
			d.StrokeOpacity *= d.Opacity
			decl = &d
		} else {
			c.SaveLayer(svgdraw.Layer{Opacity: decl.Opacity})
		}
	}

	if paint := tagTable[n.Tag].paint; paint != nil {
		paint(doc, ctx, c, n, decl)
	}

	var childParent *Declaration
	if parent != nil {
		childParent = decl
	}
	for _, child := range n.children {
		if ch := doc.Node(child); ch != nil && ch.has(drawTraversed) {
			doc.drawNode(ctx, c, child, childParent)
		}
	}
}

// applyClip intersects the clip with the children of the clipPath `ref`.
// It is called before the node transform `m` is applied.
func (doc *Document) applyClip(ctx *StyleContext, c *svgdraw.Canvas, ref string, m svgpath.Matrix2D, bounds func() svgpath.Rect) {
	_, clip := doc.resolve(ctx, ref)
	if clip == nil || clip.Tag != TagClipPath {
		doc.logf("invalid clip-path reference %q", ref)
		return
	}
	base := m
	if clip.contentUnits == svgdraw.ObjectBoundingBox {
		b := bounds()
		if b.IsEmpty() {
			doc.logf("empty bounding box for clip-path %q", ref)
			return
		}
		base = base.Mult(svgpath.Identity.Translate(b.X, b.Y).Scale(b.W, b.H))
	}
	var (
		path    svgpath.Path
		evenOdd bool
	)
	for _, id := range clip.children {
		child := doc.Node(id)
		if child == nil || !child.Tag.IsGraphic() || child.Decl.NoDisplay || child.Decl.Hidden {
			continue
		}
		p := tagTable[child.Tag].asPath(doc, child)
		path = append(path, p.Transform(base.Mult(child.matrix()))...)
		evenOdd = child.Decl.ClipEvenOdd
	}
	if len(path) == 0 {
		doc.logf("empty clip-path %q", ref)
		return
	}
	c.ClipPath(path, !evenOdd)
}

var defaultMaskRegion = [4]Dimension{
	{Value: -10, Unit: UnitPercent},
	{Value: -10, Unit: UnitPercent},
	{Value: 120, Unit: UnitPercent},
	{Value: 120, Unit: UnitPercent},
}

// applyMask draws the mask content in a first layer, and opens a
// second one, composited on the first with BlendSrcIn when restored.
func (doc *Document) applyMask(ctx *StyleContext, c *svgdraw.Canvas, ref string, bounds func() svgpath.Rect) {
	id, mask := doc.resolve(ctx, ref)
	if mask == nil || mask.Tag != TagMask {
		doc.logf("invalid mask reference %q", ref)
		return
	}
	if doc.usesInProgress[id] {
		doc.logf("recursive mask %q", ref)
		return
	}
	doc.usesInProgress[id] = true
	defer delete(doc.usesInProgress, id)

	b := bounds()
	region := doc.region(mask, b, mask.units, defaultMaskRegion)

	c.SaveLayer(svgdraw.Layer{Opacity: 1})
	c.Save()
	var clip svgpath.Path
	clip.AddRect(region.X, region.Y, region.X+region.W, region.Y+region.H, 0)
	c.ClipPath(clip, true)
	if mask.contentUnits == svgdraw.ObjectBoundingBox {
		c.Concat(svgpath.Identity.Translate(b.X, b.Y).Scale(b.W, b.H))
	}
	for _, child := range mask.children {
		if ch := doc.Node(child); ch != nil && ch.has(drawTraversed) {
			doc.drawNode(ctx, c, child, nil)
		}
	}
	c.Restore()
	c.SaveLayer(svgdraw.Layer{Blend: svgdraw.BlendSrcIn, Opacity: 1})
}

// applyFilter opens a layer processed by the filter `ref`
func (doc *Document) applyFilter(ctx *StyleContext, c *svgdraw.Canvas, ref string, bounds func() svgpath.Rect) {
	_, filter := doc.resolve(ctx, ref)
	if filter == nil || filter.Tag != TagFilter {
		doc.logf("invalid filter reference %q", ref)
		return
	}
	chain := doc.filterChain(filter, bounds())
	if chain == nil {
		doc.logf("empty filter %q", ref)
		return
	}
	c.SaveLayer(svgdraw.Layer{Opacity: 1, Filter: chain})
}

// region resolves the x, y, width and height attributes of
// a mask or pattern, using `def` for the missing ones.
func (doc *Document) region(n *Node, bbox svgpath.Rect, units svgdraw.GradientUnits, def [4]Dimension) svgpath.Rect {
	x, y := n.dim("x", def[0]), n.dim("y", def[1])
	w, h := n.dim("width", def[2]), n.dim("height", def[3])
	if units == svgdraw.ObjectBoundingBox {
		return svgpath.Rect{
			X: bbox.X + x.fraction()*bbox.W,
			Y: bbox.Y + y.fraction()*bbox.H,
			W: w.fraction() * bbox.W,
			H: h.fraction() * bbox.H,
		}
	}
	return svgpath.Rect{X: doc.px(x, "x"), Y: doc.px(y, "y"), W: doc.px(w, "width"), H: doc.px(h, "height")}
}

// maxBoundsDepth protects against cyclic use elements
const maxBoundsDepth = 64

// bounds returns the bounding box of the node geometry,
// in its user space (that is, before its own transform).
func (doc *Document) bounds(n *Node, depth int) svgpath.Rect {
	if depth > maxBoundsDepth {
		return svgpath.Rect{}
	}
	if asPath := tagTable[n.Tag].asPath; asPath != nil {
		p := asPath(doc, n)
		if len(p) == 0 {
			return svgpath.Rect{}
		}
		return p.Bounds()
	}
	var (
		out svgpath.Rect
		has bool
	)
	union := func(r svgpath.Rect) {
		if !has {
			out, has = r, true
			return
		}
		x0, y0 := math.Min(out.X, r.X), math.Min(out.Y, r.Y)
		x1, y1 := math.Max(out.X+out.W, r.X+r.W), math.Max(out.Y+out.H, r.Y+r.H)
		out = svgpath.Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
	}
	if n.Tag == TagUse {
		if _, ref := doc.resolve(doc.ctx, n.Href); ref != nil {
			if r := doc.bounds(ref, depth+1); r != (svgpath.Rect{}) {
				r = transformRect(ref.matrix(), r)
				r.X += doc.px(n.Geom.X, "x")
				r.Y += doc.px(n.Geom.Y, "y")
				union(r)
			}
		}
	}
	for _, id := range n.children {
		child := doc.Node(id)
		if child == nil || !child.has(drawTraversed) || child.Decl.NoDisplay {
			continue
		}
		if r := doc.bounds(child, depth+1); r != (svgpath.Rect{}) {
			union(transformRect(child.matrix(), r))
		}
	}
	return out
}

// transformRect returns the bounding box of the image of r by m
func transformRect(m svgpath.Matrix2D, r svgpath.Rect) svgpath.Rect {
	xs, ys := [4]float64{}, [4]float64{}
	xs[0], ys[0] = m.Transform(r.X, r.Y)
	xs[1], ys[1] = m.Transform(r.X+r.W, r.Y)
	xs[2], ys[2] = m.Transform(r.X, r.Y+r.H)
	xs[3], ys[3] = m.Transform(r.X+r.W, r.Y+r.H)
	minX, maxX, minY, maxY := xs[0], xs[0], ys[0], ys[0]
	for i := 1; i < 4; i++ {
		minX, maxX = math.Min(minX, xs[i]), math.Max(maxX, xs[i])
		minY, maxY = math.Min(minY, ys[i]), math.Max(maxY, ys[i])
	}
	return svgpath.Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}
