package svgdom

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/benoitkugler/svgdom/svganim"
)

// AnimationBinding connects an animation element to the
// attribute it animates. Bindings are created during style
// initialization and sampled by Document.Tick.
type AnimationBinding struct {
	Attr     string // animated attribute
	Kind     Kind
	Original Value   // value of the attribute when the animation was wired
	Frames   []Value // keyframes
	Target   NodeID
	Animator *svganim.Animator

	source    NodeID // the animation element
	reference float64

	originalText    string // declared attribute, restored on removal
	hasOriginalText bool
	applied         string // last text applied, empty when not applied

	transformType string // animateTransform only
	motion        *motionPath
}

// Source returns the animation element defining the binding.
func (b *AnimationBinding) Source() NodeID { return b.source }

// ValueAt returns the interpolated value at the keyframe position `pos`,
// as returned by Animator.Sample.
func (b *AnimationBinding) ValueAt(pos float64) Value {
	return InterpolateFrames(b.Frames, pos, b.reference)
}

// Bindings returns the active animation bindings.
func (doc *Document) Bindings() []*AnimationBinding { return doc.bindings }

// UpdateAttr parses the timing and interpolation attributes of
// the animation element `id`. The frame count and distances are
// filled by PrepareAnimation.
// Invalid attributes are logged and replaced by their default.
func (doc *Document) UpdateAttr(id NodeID) (*svganim.Animator, error) {
	n := doc.Node(id)
	if n == nil || n.Anim == nil {
		return nil, errors.New("not an animation element")
	}
	a := n.Anim
	anim := &svganim.Animator{Timing: svganim.NewTiming()}
	var err error

	if a.Begin != "" {
		if anim.Timing.Begin, err = svganim.ParseBegin(a.Begin); err != nil {
			doc.logf("<%s> begin: %s", n.Tag, err)
			anim.Timing.Begin = 0
		}
	}
	if anim.Timing.Dur, err = svganim.ParseClock(a.Dur); err != nil {
		return nil, err // the animation has no effect
	}
	if a.End != "" {
		if anim.Timing.End, err = svganim.ParseBegin(a.End); err != nil {
			doc.logf("<%s> end: %s", n.Tag, err)
		} else {
			anim.Timing.HasEnd = true
		}
	}
	if a.RepeatCount != "" {
		if anim.Timing.RepeatCount, err = svganim.ParseRepeatCount(a.RepeatCount); err != nil {
			doc.logf("<%s> repeatCount: %s", n.Tag, err)
			anim.Timing.RepeatCount = 1
		}
	}
	if anim.Timing.Fill, err = svganim.ParseFill(a.Fill); err != nil {
		doc.logf("<%s> fill: %s", n.Tag, err)
	}

	if n.Tag == TagAnimateMotion {
		anim.CalcMode = svganim.CalcPaced
	}
	if a.CalcMode != "" {
		if anim.CalcMode, err = svganim.ParseCalcMode(a.CalcMode); err != nil {
			doc.logf("<%s> calcMode: %s", n.Tag, err)
		}
	}
	if a.KeyTimes != "" {
		if anim.KeyTimes, err = svganim.ParseKeyTimes(a.KeyTimes); err != nil {
			doc.logf("<%s> keyTimes: %s", n.Tag, err)
		}
	}
	if a.KeySplines != "" {
		if anim.KeySplines, err = svganim.ParseKeySplines(a.KeySplines); err != nil {
			doc.logf("<%s> keySplines: %s", n.Tag, err)
		}
	}
	return anim, nil
}

// wireAnimation binds the animation `anim`, child of `parent`.
// An href attribute on the animation element overrides the target.
func (doc *Document) wireAnimation(ctx *StyleContext, parent, anim NodeID) {
	target := parent
	if n := doc.Node(anim); n.Href != "" {
		id, ref := doc.resolve(ctx, n.Href)
		if ref == nil {
			doc.logf("unknown animation target %q", n.Href)
			return
		}
		target = id
	}
	if b := doc.PrepareAnimation(ctx, target, anim); b != nil {
		doc.bindings = append(doc.bindings, b)
	}
}

// PrepareAnimation builds the binding of the animation element `anim`
// on the node `target`, capturing the current value of the animated attribute.
// It returns nil (after logging) if the animation is invalid.
func (doc *Document) PrepareAnimation(ctx *StyleContext, target, anim NodeID) *AnimationBinding {
	n, t := doc.Node(anim), doc.Node(target)
	if n == nil || t == nil || n.Anim == nil {
		return nil
	}
	animator, err := doc.UpdateAttr(anim)
	if err != nil {
		doc.logf("invalid <%s> duration: %s", n.Tag, err)
		return nil
	}
	b := &AnimationBinding{Target: target, Animator: animator, source: anim}

	switch n.Tag {
	case TagAnimateMotion:
		err = doc.animateMotion(b, n.Anim)
	case TagAnimateTransform:
		err = doc.animateTransform(b, n.Anim, t)
	default:
		err = doc.animateAttribute(b, n.Anim, t)
	}
	if err != nil {
		doc.logf("invalid <%s>: %s", n.Tag, err)
		return nil
	}
	if animator.Frames == 0 {
		animator.Frames = len(b.Frames)
	}
	return b
}

func (doc *Document) animateAttribute(b *AnimationBinding, a *AnimationAttrs, target *Node) error {
	kind, ok := Classify(a.AttributeName)
	if !ok {
		return errors.New("unsupported attributeName " + a.AttributeName)
	}
	b.Attr, b.Kind = a.AttributeName, kind
	b.Original = GetOriginalValue(target, b.Attr, kind)
	b.originalText, b.hasOriginalText = target.raw[b.Attr]
	b.reference = doc.referenceLength(b.Attr)

	frames, err := keyframes(a, b.Original, kind, b.reference)
	if err != nil {
		return err
	}
	b.Frames = frames
	if b.Animator.CalcMode == svganim.CalcPaced {
		b.Animator.Distances = make([]float64, len(frames)-1)
		for i := range b.Animator.Distances {
			b.Animator.Distances[i] = distance(frames[i], frames[i+1], b.reference)
		}
	}
	return nil
}

// keyframes resolves values, or from/to/by
func keyframes(a *AnimationAttrs, original Value, kind Kind, reference float64) ([]Value, error) {
	if a.Values != "" {
		var frames []Value
		for _, chunk := range splitValues(a.Values) {
			v, err := ParseValue(kind, chunk)
			if err != nil {
				return nil, err
			}
			frames = append(frames, v)
		}
		if len(frames) == 0 {
			return nil, errors.New("empty values")
		}
		return frames, nil
	}
	from := original
	if a.From != "" {
		var err error
		if from, err = ParseValue(kind, a.From); err != nil {
			return nil, err
		}
	}
	switch {
	case a.To != "":
		to, err := ParseValue(kind, a.To)
		if err != nil {
			return nil, err
		}
		return []Value{from, to}, nil
	case a.By != "":
		by, err := ParseValue(kind, a.By)
		if err != nil {
			return nil, err
		}
		return []Value{from, add(from, by, reference)}, nil
	}
	return nil, errors.New("missing values, to or by")
}

// splitValues splits a ';' separated list, ignoring empty items
func splitValues(s string) []string {
	var out []string
	for _, chunk := range strings.Split(s, ";") {
		if chunk = strings.TrimSpace(chunk); chunk != "" {
			out = append(out, chunk)
		}
	}
	return out
}

// add returns a + b, for by animations
func add(a, b Value, reference float64) Value {
	out := a
	switch a.Kind {
	case KindColor:
		sum := func(x, y uint8) uint8 { return uint8(math.Min(float64(x)+float64(y), 0xff)) }
		out.Color.R = sum(a.Color.R, b.Color.R)
		out.Color.G = sum(a.Color.G, b.Color.G)
		out.Color.B = sum(a.Color.B, b.Color.B)
		out.Color.A = sum(a.Color.A, b.Color.A)
	case KindDimension:
		if a.Dimension.Unit == b.Dimension.Unit {
			out.Dimension.Value += b.Dimension.Value
		} else {
			out.Dimension = Px(a.Dimension.ConvertToPx(reference) + b.Dimension.ConvertToPx(reference))
		}
	case KindDouble:
		out.Double += b.Double
	}
	return out
}

// distance is used by the paced calc mode
func distance(a, b Value, reference float64) float64 {
	switch a.Kind {
	case KindColor:
		dr := float64(a.Color.R) - float64(b.Color.R)
		dg := float64(a.Color.G) - float64(b.Color.G)
		db := float64(a.Color.B) - float64(b.Color.B)
		return math.Sqrt(dr*dr + dg*dg + db*db)
	case KindDimension:
		return math.Abs(a.Dimension.ConvertToPx(reference) - b.Dimension.ConvertToPx(reference))
	case KindDouble:
		return math.Abs(a.Double - b.Double)
	case KindTransform:
		if len(a.Transform) != 1 || len(b.Transform) != 1 {
			return 0
		}
		pa, pb := a.Transform[0].Params, b.Transform[0].Params
		if len(pa) != len(pb) {
			return 0
		}
		s := 0.
		for i := range pa {
			s += (pa[i] - pb[i]) * (pa[i] - pb[i])
		}
		return math.Sqrt(s)
	}
	return 0
}

// Tick samples every animation at the document time `elapsed`
// and updates the animated nodes. At most one flush is raised,
// whatever the number of updated attributes.
func (doc *Document) Tick(elapsed time.Duration) {
	doc.elapsed = elapsed
	changed, gradients := false, false
	for _, b := range doc.bindings {
		target := doc.Node(b.Target)
		if target == nil {
			continue
		}
		pos, state := b.Animator.Sample(elapsed)
		var updated bool
		switch state {
		case svganim.Active, svganim.Frozen:
			updated = doc.applyBinding(b, target, pos)
		case svganim.Removed:
			updated = doc.restoreBinding(b, target)
		}
		if !updated {
			continue
		}
		changed = true
		switch target.Tag {
		case TagLinearGradient, TagRadialGradient, TagStop:
			gradients = true
		}
	}
	if gradients {
		doc.refreshGradients()
	}
	if changed {
		doc.flush = true
		if doc.opts.OnFlush != nil {
			doc.opts.OnFlush(elapsed)
		}
	}
}

// ConsumeFlush returns true if a Tick modified the document
// since the last call, and resets the signal.
func (doc *Document) ConsumeFlush() bool {
	out := doc.flush
	doc.flush = false
	return out
}

// applyBinding sets the interpolated value at `pos`,
// returning true if the target changed.
func (doc *Document) applyBinding(b *AnimationBinding, target *Node, pos float64) bool {
	switch {
	case b.motion != nil:
		return b.applyMotion(target, pos)
	case b.transformType != "":
		return b.applyTransform(target, pos)
	}
	text := b.ValueAt(pos).String()
	if text == b.applied {
		return false
	}
	if err := target.SetAttr(b.Attr, text); err != nil {
		doc.logf("animation of %s: %s", b.Attr, err)
		return false
	}
	b.applied = text
	doc.resolveOwnPaint(target, b.Attr)
	if isInherited(b.Attr) {
		doc.propagate(b.Target)
	}
	return true
}

// restoreBinding restores the value of the attribute before
// the animation, returning true if the target changed.
func (doc *Document) restoreBinding(b *AnimationBinding, target *Node) bool {
	if b.applied == "" {
		return false
	}
	b.applied = ""
	switch {
	case b.motion != nil:
		target.animated.motion = nil
		return true
	case b.transformType != "":
		target.animated.remove(b.transformType)
		return true
	}

	var err error
	switch {
	case b.hasOriginalText:
		err = target.SetAttr(b.Attr, b.originalText)
	case isInherited(b.Attr):
		// no declared value: inherited again
		_, err = target.Decl.setProperty(b.Attr, "inherit")
		delete(target.raw, b.Attr)
		parent := DefaultDeclaration()
		if p := doc.Node(target.parent); p != nil && target.has(inheritStyle) {
			parent = p.Decl
		}
		target.Decl.inherit(&parent)
	default:
		err = target.SetAttr(b.Attr, b.Original.String())
		delete(target.raw, b.Attr)
	}
	if err != nil {
		doc.logf("restoring %s: %s", b.Attr, err)
	}
	doc.resolveOwnPaint(target, b.Attr)
	if isInherited(b.Attr) {
		doc.propagate(b.Target)
	}
	return true
}

// resolveOwnPaint binds the gradient of a fill or stroke
// set on `target` by an animation.
func (doc *Document) resolveOwnPaint(target *Node, attr string) {
	if !target.has(hrefFill) || (attr != "fill" && attr != "stroke") {
		return
	}
	doc.resolvePaint(doc.ctx, &target.Decl.Fill)
	doc.resolvePaint(doc.ctx, &target.Decl.Stroke)
}
