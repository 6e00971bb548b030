package svgdom

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/benoitkugler/svgdom/svganim"
	"github.com/benoitkugler/svgdom/svgpath"
)

// animatedTransform is the side table filled by
// animateTransform and animateMotion
type animatedTransform struct {
	params map[string][]float64 // transform type -> params
	order  []string             // insertion order of the types
	motion *svgpath.Matrix2D
}

func (at *animatedTransform) isEmpty() bool {
	return len(at.params) == 0 && at.motion == nil
}

func (at *animatedTransform) set(kind string, params []float64) {
	if at.params == nil {
		at.params = make(map[string][]float64)
	}
	if _, ok := at.params[kind]; !ok {
		at.order = append(at.order, kind)
	}
	at.params[kind] = params
}

func (at *animatedTransform) remove(kind string) {
	if _, ok := at.params[kind]; !ok {
		return
	}
	delete(at.params, kind)
	for i, k := range at.order {
		if k == kind {
			at.order = append(at.order[:i:i], at.order[i+1:]...)
			break
		}
	}
}

// merge combines the static transform with the animated entries:
// a static operation whose type is animated takes the animated
// parameters, and the animated types absent from the static list
// are appended.
func (at *animatedTransform) merge(static svgpath.Transform) svgpath.Transform {
	if len(at.params) == 0 {
		return static
	}
	out := make(svgpath.Transform, 0, len(static)+len(at.order))
	used := make(map[string]bool)
	for _, op := range static {
		if params, ok := at.params[op.Type]; ok {
			op = svgpath.TransformOp{Type: op.Type, Params: params}
			used[op.Type] = true
		}
		out = append(out, op)
	}
	for _, kind := range at.order {
		if !used[kind] {
			out = append(out, svgpath.TransformOp{Type: kind, Params: at.params[kind]})
		}
	}
	return out
}

// matrix returns the user space transform of the node:
// the motion first, then the static and animated transforms.
func (n *Node) matrix() svgpath.Matrix2D {
	m := svgpath.Identity
	if n.animated.motion != nil {
		m = *n.animated.motion
	}
	return m.Mult(n.animated.merge(n.transform).Matrix())
}

// identityParams are the default from values of animateTransform
func identityParams(kind string) ([]float64, error) {
	switch kind {
	case "translate":
		return []float64{0, 0}, nil
	case "scale":
		return []float64{1, 1}, nil
	case "rotate":
		return []float64{0, 0, 0}, nil
	case "skewx", "skewy":
		return []float64{0}, nil
	default:
		return nil, fmt.Errorf("unsupported transform type %q", kind)
	}
}

func transformFrame(kind string, params []float64) (Value, error) {
	op := svgpath.TransformOp{Type: kind, Params: params}.Normalize()
	if _, err := op.Apply(svgpath.Identity); err != nil {
		return Value{}, err
	}
	return Value{Kind: KindTransform, Transform: svgpath.Transform{op}}, nil
}

// animateTransform dispatches to the keyframes or from/to variants
func (doc *Document) animateTransform(b *AnimationBinding, a *AnimationAttrs, target *Node) error {
	name := a.AttributeName
	if name == "" {
		name = "transform"
	}
	if name != "transform" {
		return fmt.Errorf("unsupported transform attribute %q", name)
	}
	kind := strings.ToLower(a.Type)
	if kind == "" {
		kind = "translate"
	}
	if _, err := identityParams(kind); err != nil {
		return err
	}
	b.Attr, b.Kind, b.transformType = name, KindTransform, kind
	b.Original = Value{Kind: KindTransform, Transform: target.transform}

	var err error
	if values := splitValues(a.Values); len(values) != 0 {
		b.Frames, err = frameTransform(kind, values)
	} else {
		b.Frames, err = valueTransform(kind, a)
	}
	if err != nil {
		return err
	}
	if b.Animator.CalcMode == svganim.CalcPaced {
		b.Animator.Distances = make([]float64, len(b.Frames)-1)
		for i := range b.Animator.Distances {
			b.Animator.Distances[i] = distance(b.Frames[i], b.Frames[i+1], 0)
		}
	}
	return nil
}

// frameTransform parses the keyframes of a values list
func frameTransform(kind string, values []string) ([]Value, error) {
	frames := make([]Value, len(values))
	for i, v := range values {
		params, err := svgpath.ParsePoints(v)
		if err != nil {
			return nil, err
		}
		if frames[i], err = transformFrame(kind, params); err != nil {
			return nil, fmt.Errorf("invalid %s keyframe %q: %w", kind, v, err)
		}
	}
	for _, f := range frames[1:] {
		if len(f.Transform[0].Params) != len(frames[0].Transform[0].Params) {
			return nil, ErrParamMismatch
		}
	}
	return frames, nil
}

// valueTransform builds the from -> to (or from -> from + by) frames
func valueTransform(kind string, a *AnimationAttrs) ([]Value, error) {
	fromParams, _ := identityParams(kind)
	if a.From != "" {
		var err error
		if fromParams, err = svgpath.ParsePoints(a.From); err != nil {
			return nil, err
		}
	}
	from, err := transformFrame(kind, fromParams)
	if err != nil {
		return nil, err
	}
	var to Value
	switch {
	case a.To != "":
		params, err := svgpath.ParsePoints(a.To)
		if err != nil {
			return nil, err
		}
		if to, err = transformFrame(kind, params); err != nil {
			return nil, err
		}
	case a.By != "":
		params, err := svgpath.ParsePoints(a.By)
		if err != nil {
			return nil, err
		}
		by, err := transformFrame(kind, params)
		if err != nil {
			return nil, err
		}
		fp, bp := from.Transform[0].Params, by.Transform[0].Params
		if len(fp) != len(bp) {
			return nil, ErrParamMismatch
		}
		sum := make([]float64, len(fp))
		for i := range fp {
			sum[i] = fp[i] + bp[i]
		}
		to = Value{Kind: KindTransform, Transform: svgpath.Transform{{Type: kind, Params: sum}}}
	default:
		return nil, errors.New("missing values, to or by")
	}
	if len(to.Transform[0].Params) != len(from.Transform[0].Params) {
		return nil, ErrParamMismatch
	}
	return []Value{from, to}, nil
}

func (b *AnimationBinding) applyTransform(target *Node, pos float64) bool {
	v := b.ValueAt(pos)
	if len(v.Transform) != 1 {
		return false
	}
	text := v.String()
	if text == b.applied {
		return false
	}
	target.animated.set(b.transformType, v.Transform[0].Params)
	b.applied = text
	return true
}

// motionPath is the geometry sampled by animateMotion
type motionPath struct {
	measure *svgpath.Measure
	rotate  string // auto, auto-reverse or an angle
	angle   float64
}

func (doc *Document) animateMotion(b *AnimationBinding, a *AnimationAttrs) error {
	b.Attr, b.Kind, b.reference = "transform", KindDouble, 0
	var (
		path     svgpath.Path
		vertices []float64 // distances of the values along the path
		err      error
	)
	switch {
	case a.Path != "":
		if path, err = svgpath.ParsePathData(a.Path); err != nil {
			return err
		}
	case a.Values != "":
		var pts []float64
		for _, v := range splitValues(a.Values) {
			p, err := svgpath.ParsePoints(v)
			if err != nil {
				return err
			}
			if len(p) != 2 {
				return ErrParamMismatch
			}
			pts = append(pts, p...)
		}
		path.AddPolyline(pts, false)
		vertices = polylineDistances(pts)
	case a.To != "" || a.By != "":
		from := []float64{0, 0}
		if a.From != "" {
			if from, err = svgpath.ParsePoints(a.From); err != nil {
				return err
			}
		}
		var to []float64
		if a.To != "" {
			to, err = svgpath.ParsePoints(a.To)
		} else {
			to, err = svgpath.ParsePoints(a.By)
		}
		if err != nil {
			return err
		}
		if len(from) != 2 || len(to) != 2 {
			return ErrParamMismatch
		}
		if a.To == "" {
			to[0], to[1] = from[0]+to[0], from[1]+to[1]
		}
		path.AddLine(from[0], from[1], to[0], to[1])
	default:
		return errors.New("missing path, values, to or by")
	}

	m := &motionPath{measure: svgpath.NewMeasure(path), rotate: strings.TrimSpace(a.Rotate)}
	switch m.rotate {
	case "", "auto", "auto-reverse":
	default:
		if m.angle, err = ParseDouble(m.rotate); err != nil {
			return err
		}
	}
	b.motion = m
	length := m.measure.Length()

	switch {
	case a.KeyPoints != "":
		for _, chunk := range splitValues(a.KeyPoints) {
			f, err := ParseDouble(chunk)
			if err != nil {
				return err
			}
			b.Frames = append(b.Frames, Value{Kind: KindDouble, Double: clamp01(f) * length})
		}
		if kt := b.Animator.KeyTimes; len(kt) != 0 && len(kt) != len(b.Frames) {
			return errors.New("keyPoints and keyTimes lengths differ")
		}
	case vertices != nil:
		for _, d := range vertices {
			b.Frames = append(b.Frames, Value{Kind: KindDouble, Double: d})
		}
	default:
		b.Frames = []Value{{Kind: KindDouble}, {Kind: KindDouble, Double: length}}
	}
	if len(b.Frames) == 0 {
		return errors.New("empty motion")
	}
	b.Animator.Distances = make([]float64, len(b.Frames)-1)
	for i := range b.Animator.Distances {
		b.Animator.Distances[i] = math.Abs(b.Frames[i+1].Double - b.Frames[i].Double)
	}
	return nil
}

// polylineDistances returns the cumulated distance of each vertex
func polylineDistances(pts []float64) []float64 {
	out := make([]float64, len(pts)/2)
	for i := 1; i < len(out); i++ {
		dx, dy := pts[2*i]-pts[2*i-2], pts[2*i+1]-pts[2*i-1]
		out[i] = out[i-1] + math.Hypot(dx, dy)
	}
	return out
}

func (b *AnimationBinding) applyMotion(target *Node, pos float64) bool {
	dist := b.ValueAt(pos).Double
	pt, tangent := b.motion.measure.PointAt(dist)
	m := svgpath.Identity.Translate(pt.X, pt.Y)
	switch b.motion.rotate {
	case "auto":
		m = m.Rotate(tangent * math.Pi / 180)
	case "auto-reverse":
		m = m.Rotate((tangent + 180) * math.Pi / 180)
	case "":
	default:
		m = m.Rotate(b.motion.angle * math.Pi / 180)
	}
	text := fmt.Sprintf("%g %g %g %g %g %g", m.A, m.B, m.C, m.D, m.E, m.F)
	if text == b.applied {
		return false
	}
	target.animated.motion = &m
	b.applied = text
	return true
}
