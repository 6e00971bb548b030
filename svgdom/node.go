package svgdom

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/benoitkugler/svgdom/svgdraw"
	"github.com/benoitkugler/svgdom/svgpath"
)

// NodeID is the handle of a node in its Document.
type NodeID int32

// NoNode is the invalid handle.
const NoNode NodeID = -1

// Tag is the kind of an SVG element.
type Tag uint8

const (
	TagSvg Tag = iota
	TagG
	TagDefs
	TagClipPath
	TagMask
	TagPattern
	TagFilter
	TagLinearGradient
	TagRadialGradient
	TagStop
	TagRect
	TagCircle
	TagEllipse
	TagLine
	TagPolygon
	TagPolyline
	TagPath
	TagUse
	TagStyle
	TagAnimate
	TagAnimateMotion
	TagAnimateTransform
	TagFeColorMatrix
	TagFeComposite
	TagFeGaussianBlur
	TagFeOffset

	tagCount
)

func (t Tag) String() string {
	if t < tagCount {
		return tagTable[t].name
	}
	return fmt.Sprintf("<unknown Tag %d>", t)
}

// IsAnimation returns true for animate, animateMotion and animateTransform.
func (t Tag) IsAnimation() bool {
	return t == TagAnimate || t == TagAnimateMotion || t == TagAnimateTransform
}

// IsGraphic returns true for the basic shapes and paths.
func (t Tag) IsGraphic() bool { return tagTable[t].asPath != nil }

// capability flags are fixed per tag
type capability uint8

const (
	hrefFill      capability = 1 << iota // fill and stroke may reference a paint server
	hrefRender                           // clip-path, transform, opacity, mask and filter are used
	passStyle                            // children are styled
	inheritStyle                         // the declaration is inherited from the parent
	drawTraversed                        // the node is visited by the draw traversal
)

const (
	capsContainer = hrefFill | hrefRender | passStyle | inheritStyle | drawTraversed
	capsGraphic   = hrefFill | hrefRender | inheritStyle | drawTraversed
	capsResource  = passStyle
)

// tagInfo defines the behavior of a Tag
type tagInfo struct {
	name string
	caps capability
	// setAttr handles the attributes specific to the tag,
	// and returns errUnknownAttr for the others.
	setAttr func(n *Node, name, value string) error
	// onInitStyle is called during style initialization, after
	// the declaration has been resolved.
	onInitStyle func(doc *Document, ctx *StyleContext, n *Node)
	// asPath is defined for graphic elements
	asPath func(doc *Document, n *Node) svgpath.Path
	// paint draws the node itself, after the rendering
	// state has been setup, and before the children.
	paint func(doc *Document, ctx *StyleContext, c *svgdraw.Canvas, n *Node, decl *Declaration)
}

var tagTable [tagCount]tagInfo

var tagByName = map[string]Tag{}

func init() {
	// avoids cyclical static declaration :
	// the paint functions recurse through drawNode
	tagTable = [tagCount]tagInfo{
		TagSvg:              {name: "svg", caps: capsContainer, setAttr: setViewportAttr, onInitStyle: initSvg, paint: paintSvg},
		TagG:                {name: "g", caps: capsContainer, setAttr: setNoAttr},
		TagDefs:             {name: "defs", caps: capsResource, setAttr: setNoAttr},
		TagClipPath:         {name: "clipPath", caps: capsResource, setAttr: setUnitsAttr, onInitStyle: initClipPath},
		TagMask:             {name: "mask", caps: capsResource, setAttr: setUnitsAttr, onInitStyle: initMask},
		TagPattern:          {name: "pattern", caps: capsResource, setAttr: setUnitsAttr, onInitStyle: initPattern},
		TagFilter:           {name: "filter", caps: capsResource, setAttr: setUnitsAttr, onInitStyle: initFilter},
		TagLinearGradient:   {name: "linearGradient", caps: capsResource, setAttr: setGradientAttr, onInitStyle: initGradient},
		TagRadialGradient:   {name: "radialGradient", caps: capsResource, setAttr: setGradientAttr, onInitStyle: initGradient},
		TagStop:             {name: "stop", setAttr: setStopAttr},
		TagRect:             {name: "rect", caps: capsGraphic, setAttr: setGeometryAttr, asPath: rectPath, paint: paintGraphic},
		TagCircle:           {name: "circle", caps: capsGraphic, setAttr: setGeometryAttr, asPath: circlePath, paint: paintGraphic},
		TagEllipse:          {name: "ellipse", caps: capsGraphic, setAttr: setGeometryAttr, asPath: ellipsePath, paint: paintGraphic},
		TagLine:             {name: "line", caps: capsGraphic, setAttr: setGeometryAttr, asPath: linePath, paint: paintGraphic},
		TagPolygon:          {name: "polygon", caps: capsGraphic, setAttr: setGeometryAttr, asPath: polygonPath, paint: paintGraphic},
		TagPolyline:         {name: "polyline", caps: capsGraphic, setAttr: setGeometryAttr, asPath: polylinePath, paint: paintGraphic},
		TagPath:             {name: "path", caps: capsGraphic, setAttr: setGeometryAttr, asPath: pathPath, paint: paintGraphic},
		TagUse:              {name: "use", caps: capsContainer, setAttr: setGeometryAttr, paint: paintUse},
		TagStyle:            {name: "style", setAttr: setStyleAttr},
		TagAnimate:          {name: "animate", setAttr: setAnimationAttr},
		TagAnimateMotion:    {name: "animateMotion", setAttr: setAnimationAttr},
		TagAnimateTransform: {name: "animateTransform", setAttr: setAnimationAttr},
		TagFeColorMatrix:    {name: "feColorMatrix", setAttr: setPrimitiveAttr, onInitStyle: initColorMatrix},
		TagFeComposite:      {name: "feComposite", setAttr: setPrimitiveAttr},
		TagFeGaussianBlur:   {name: "feGaussianBlur", setAttr: setPrimitiveAttr},
		TagFeOffset:         {name: "feOffset", setAttr: setPrimitiveAttr},
	}
	for i, info := range tagTable {
		tagByName[info.name] = Tag(i)
	}
}

// NodeState is the progress of the style initialization of a node.
type NodeState uint8

const (
	Unstyled NodeState = iota
	Inherited
	LocallyOverridden
	AnimationWired
)

func (s NodeState) String() string {
	switch s {
	case Unstyled:
		return "unstyled"
	case Inherited:
		return "inherited"
	case LocallyOverridden:
		return "locally-overridden"
	case AnimationWired:
		return "animation-wired"
	default:
		return fmt.Sprintf("<unknown NodeState %d>", s)
	}
}

// Geometry stores the positional attributes.
// Their meaning depends on the tag.
type Geometry struct {
	X, Y, Width, Height Dimension
	Rx, Ry              Dimension
	Cx, Cy, R           Dimension
	X1, Y1, X2, Y2      Dimension
	Fx, Fy, Fr          Dimension

	Points  []float64     // polygon and polyline
	ViewBox *svgpath.Rect // svg and pattern
}

// Node is an element of the document tree.
type Node struct {
	ID    string
	Tag   Tag
	Class []string
	Href  string // target of xlink:href
	Decl  Declaration
	Geom  Geometry

	Stop *StopAttrs      // stop elements only
	Prim *PrimitiveAttrs // filter primitives only
	Anim *AnimationAttrs // animation elements only

	Text string // content of style elements

	parent   NodeID
	children []NodeID
	state    NodeState
	detached bool

	raw         map[string]string // attributes as declared
	inlineStyle string

	path           svgpath.Path      // d attribute
	transform      svgpath.Transform // transform attribute
	paintTransform svgpath.Transform // gradientTransform and patternTransform

	// resolved in onInitStyle
	units, contentUnits svgdraw.GradientUnits
	viewBoxAttr         string
	gradient            *Gradient

	animated animatedTransform
}

// Parent returns the handle of the parent node, or NoNode for the root.
func (n *Node) Parent() NodeID { return n.parent }

// Children returns the handles of the children, in document order.
func (n *Node) Children() []NodeID { return n.children }

// State returns the style initialization state.
func (n *Node) State() NodeState { return n.state }

// Attr returns the attribute `name` as declared, or as last set.
func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.raw[name]
	return v, ok
}

// Transform returns the parsed transform attribute.
func (n *Node) Transform() svgpath.Transform { return n.transform }

func (n *Node) has(c capability) bool { return tagTable[n.Tag].caps&c != 0 }

// SetAttr parses and assigns the attribute `name`.
// Presentation attributes update the declaration.
// An error is returned for unsupported attributes and
// invalid values; in the latter case the previous value is kept.
func (n *Node) SetAttr(name, value string) error {
	if i := strings.IndexByte(name, ':'); i != -1 { // xlink:href, xml:space
		name = name[i+1:]
	}
	var err error
	switch name {
	case "id":
		n.ID = value
	case "class":
		n.Class = strings.Fields(value)
	case "style":
		n.inlineStyle = value
		err = n.applyInlineStyle(value)
	case "href":
		n.Href = strings.TrimSpace(value)
	case "space", "lang", "version", "baseProfile", "xmlns", "preserveAspectRatio":
		// ignored
	default:
		err = tagTable[n.Tag].setAttr(n, name, value)
		if err == errUnknownAttr {
			var ok bool
			ok, err = n.Decl.setProperty(name, value)
			if !ok {
				return fmt.Errorf("%w %s on <%s>", errUnknownAttr, name, n.Tag)
			}
			if err == nil && name == "transform" {
				n.transform, err = svgpath.ParseTransform(value)
			}
		}
	}
	if err != nil {
		return fmt.Errorf("invalid attribute %s=%q on <%s>: %w", name, value, n.Tag, err)
	}
	if n.raw == nil {
		n.raw = make(map[string]string)
	}
	n.raw[name] = value
	return nil
}

// Document is a parsed SVG document, owning its nodes.
type Document struct {
	nodes []*Node
	root  NodeID
	ctx   *StyleContext

	opts   Options
	logger *slog.Logger

	// Width and Height are the size of the root element,
	// in user units.
	Width, Height float64
	viewBox       *svgpath.Rect

	bindings          []*AnimationBinding
	pendingAnimations [][2]NodeID // (parent, animation) with an href target
	flush             bool
	elapsed           time.Duration

	usesInProgress map[NodeID]bool
}

func newDocument(opts Options) *Document {
	return &Document{
		root:           NoNode,
		ctx:            NewStyleContext(),
		opts:           opts,
		logger:         opts.logger(),
		usesInProgress: make(map[NodeID]bool),
	}
}

// Root returns the handle of the <svg> root.
func (doc *Document) Root() NodeID { return doc.root }

// Context returns the style context of the document.
func (doc *Document) Context() *StyleContext { return doc.ctx }

// Node returns the node with handle `id`, or nil if it is invalid
// or has been detached.
func (doc *Document) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(doc.nodes) {
		return nil
	}
	n := doc.nodes[id]
	if n.detached {
		return nil
	}
	return n
}

// Lookup returns the node registered with the given reference
// (see StyleContext.ResolveHref), or NoNode.
func (doc *Document) Lookup(ref string) NodeID {
	id, _ := doc.resolve(doc.ctx, ref)
	return id
}

// resolve looks up `ref` in `ctx`, ignoring detached nodes
func (doc *Document) resolve(ctx *StyleContext, ref string) (NodeID, *Node) {
	id, ok := ctx.ResolveHref(ref)
	if !ok {
		return NoNode, nil
	}
	n := doc.Node(id)
	if n == nil {
		return NoNode, nil
	}
	return id, n
}

// newNode adds a node to the arena, as last child of `parent`
func (doc *Document) newNode(tag Tag, parent NodeID) NodeID {
	id := NodeID(len(doc.nodes))
	n := &Node{Tag: tag, parent: parent, Decl: DefaultDeclaration()}
	switch tag {
	case TagStop:
		n.Stop = &StopAttrs{Color: DefaultDeclaration().Color, Opacity: 1}
	case TagFeColorMatrix, TagFeComposite, TagFeGaussianBlur, TagFeOffset:
		n.Prim = &PrimitiveAttrs{}
	case TagAnimate, TagAnimateMotion, TagAnimateTransform:
		n.Anim = &AnimationAttrs{}
	}
	doc.nodes = append(doc.nodes, n)
	if p := doc.Node(parent); p != nil {
		p.children = append(p.children, id)
	}
	return id
}

// Detach removes the subtree rooted at `id` from the document,
// dropping the animations targeting or defined in it.
func (doc *Document) Detach(id NodeID) {
	n := doc.Node(id)
	if n == nil {
		return
	}
	if p := doc.Node(n.parent); p != nil {
		for i, c := range p.children {
			if c == id {
				p.children = append(p.children[:i:i], p.children[i+1:]...)
				break
			}
		}
	}
	removed := make(map[NodeID]bool)
	var mark func(id NodeID)
	mark = func(id NodeID) {
		node := doc.nodes[id]
		node.detached = true
		removed[id] = true
		for _, c := range node.children {
			mark(c)
		}
	}
	mark(id)

	kept := doc.bindings[:0]
	for _, b := range doc.bindings {
		if !removed[b.Target] && !removed[b.source] {
			kept = append(kept, b)
		}
	}
	for i := len(kept); i < len(doc.bindings); i++ {
		doc.bindings[i] = nil
	}
	doc.bindings = kept
	if id == doc.root {
		doc.root = NoNode
	}
}

// userSize is the size of the user space of the root element:
// its viewBox if any, or its viewport
func (doc *Document) userSize() (w, h float64) {
	if doc.viewBox != nil {
		return doc.viewBox.W, doc.viewBox.H
	}
	return doc.Width, doc.Height
}

// referenceLength returns the length used to resolve
// percentages of the attribute `name`
func (doc *Document) referenceLength(name string) float64 {
	w, h := doc.userSize()
	switch name {
	case "x", "cx", "x1", "x2", "fx", "width", "rx", "dx":
		return w
	case "y", "cy", "y1", "y2", "fy", "height", "ry", "dy":
		return h
	default:
		return doc.diagonal()
	}
}

// diagonal is the reference for non directional lengths
func (doc *Document) diagonal() float64 {
	w, h := doc.userSize()
	return math.Hypot(w, h) / math.Sqrt2
}
