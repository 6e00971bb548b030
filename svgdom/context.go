package svgdom

import "strings"

// StyleContext is the document scoped registry of
// element ids and CSS rules.
// It is built during parsing, and consulted when
// resolving styles and when drawing.
type StyleContext struct {
	ids    map[string]NodeID
	styles map[string]map[string]string // selector -> attribute -> value
}

// NewStyleContext returns an empty context.
func NewStyleContext() *StyleContext {
	return &StyleContext{
		ids:    make(map[string]NodeID),
		styles: make(map[string]map[string]string),
	}
}

// Push registers `node` under `id`, overwriting
// any previous registration.
func (ctx *StyleContext) Push(id string, node NodeID) {
	if id == "" {
		return
	}
	ctx.ids[id] = node
}

// Resolve returns the node registered with `id`.
func (ctx *StyleContext) Resolve(id string) (NodeID, bool) {
	node, ok := ctx.ids[id]
	return node, ok
}

// ResolveHref accepts a reference in one of the forms
// "#id", "url(#id)", "url('#id')" or "id".
func (ctx *StyleContext) ResolveHref(ref string) (NodeID, bool) {
	id := idFromRef(ref)
	if id == "" {
		return NoNode, false
	}
	return ctx.Resolve(id)
}

// idFromRef extracts the id of a reference
func idFromRef(ref string) string {
	ref = strings.TrimSpace(ref)
	if strings.HasPrefix(ref, "url(") {
		end := strings.IndexByte(ref, ')')
		if end == -1 {
			return ""
		}
		ref = strings.TrimSpace(ref[4:end])
		ref = strings.Trim(ref, `'"`)
	}
	return strings.TrimPrefix(ref, "#")
}

// PushStyle registers the declaration attrName:attrValue
// for the class `className`. The last value wins.
func (ctx *StyleContext) PushStyle(className, attrName, attrValue string) {
	ctx.pushSelectorStyle("."+className, attrName, attrValue)
}

// ClassStyle returns the attributes registered for `className`.
// The returned map must not be modified.
func (ctx *StyleContext) ClassStyle(className string) map[string]string {
	return ctx.styles["."+className]
}

// pushSelectorStyle accepts a simple selector: .class, #id or tag
func (ctx *StyleContext) pushSelectorStyle(selector, attrName, attrValue string) {
	m := ctx.styles[selector]
	if m == nil {
		m = make(map[string]string)
		ctx.styles[selector] = m
	}
	m[attrName] = attrValue
}

func (ctx *StyleContext) selectorStyle(selector string) map[string]string {
	return ctx.styles[selector]
}
