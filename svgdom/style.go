package svgdom

// initStyle resolves the declaration of the subtree rooted at `id`:
// inheritance from `parent` (nil for the default declaration),
// paint servers, tag specific attributes and animations.
// Animations of a node are wired after its children have been styled,
// so that they capture the fully resolved original values. Animations
// with an href are queued for wirePendingAnimations.
func (doc *Document) initStyle(ctx *StyleContext, id NodeID, parent *Declaration) {
	n := doc.Node(id)
	if n == nil {
		return
	}

	if parent != nil && n.has(inheritStyle) {
		n.Decl.inherit(parent)
	}
	if n.has(hrefFill) {
		doc.resolvePaint(ctx, &n.Decl.Fill)
		doc.resolvePaint(ctx, &n.Decl.Stroke)
	}
	n.state = Inherited

	if !n.has(hrefRender) {
		n.Decl.resetRender()
		n.transform = nil
	}
	if hook := tagTable[n.Tag].onInitStyle; hook != nil {
		hook(doc, ctx, n)
	}
	n.state = LocallyOverridden

	if n.has(passStyle) {
		for _, c := range n.children {
			child := doc.Node(c)
			if child == nil || child.Tag.IsAnimation() {
				continue
			}
			if child.has(inheritStyle) {
				doc.initStyle(ctx, c, &n.Decl)
			} else {
				doc.initStyle(ctx, c, nil)
			}
		}
	}

	for _, c := range n.children {
		child := doc.Node(c)
		if child == nil || !child.Tag.IsAnimation() {
			continue
		}
		if child.Href != "" {
			// the target may not be styled yet
			doc.pendingAnimations = append(doc.pendingAnimations, [2]NodeID{id, c})
			continue
		}
		doc.wireAnimation(ctx, id, c)
	}
	n.state = AnimationWired
}

// wirePendingAnimations binds the animations targeting
// another element, once the whole tree is styled.
func (doc *Document) wirePendingAnimations(ctx *StyleContext) {
	for _, p := range doc.pendingAnimations {
		doc.wireAnimation(ctx, p[0], p[1])
	}
	doc.pendingAnimations = nil
}

// resolvePaint binds a url() paint to its gradient.
// Patterns are resolved when drawing.
func (doc *Document) resolvePaint(ctx *StyleContext, p *Paint) {
	if p.Kind != PaintURL || p.Gradient != nil {
		return
	}
	_, ref := doc.resolve(ctx, p.URL)
	if ref == nil {
		doc.logf("unknown paint server %q", p.URL)
		return
	}
	switch ref.Tag {
	case TagLinearGradient, TagRadialGradient:
		if ref.gradient == nil {
			ref.gradient = doc.buildGradient(ctx, ref)
		}
		p.Gradient = ref.gradient
	case TagPattern:
	default:
		doc.logf("invalid paint server <%s> %q", ref.Tag, p.URL)
	}
}

// propagate updates the inherited properties of the
// descendants of `id`, after a change of its declaration.
func (doc *Document) propagate(id NodeID) {
	n := doc.Node(id)
	if n == nil || !n.has(passStyle) {
		return
	}
	for _, c := range n.children {
		child := doc.Node(c)
		if child == nil || child.Tag.IsAnimation() || !child.has(inheritStyle) {
			continue
		}
		child.Decl.inherit(&n.Decl)
		if child.has(hrefFill) {
			doc.resolvePaint(doc.ctx, &child.Decl.Fill)
			doc.resolvePaint(doc.ctx, &child.Decl.Stroke)
		}
		doc.propagate(c)
	}
}

// refreshGradients rebuilds the gradients, after an animation
// modified one of their attributes or stops.
func (doc *Document) refreshGradients() {
	for _, n := range doc.nodes {
		if n.Tag == TagLinearGradient || n.Tag == TagRadialGradient {
			n.gradient = nil
		}
	}
	for _, n := range doc.nodes {
		if n.detached || !n.has(hrefFill) {
			continue
		}
		for _, p := range [2]*Paint{&n.Decl.Fill, &n.Decl.Stroke} {
			if p.Kind == PaintURL {
				p.Gradient = nil
				doc.resolvePaint(doc.ctx, p)
			}
		}
	}
}
