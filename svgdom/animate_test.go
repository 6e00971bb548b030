package svgdom

import (
	"image/color"
	"testing"
	"time"

	"github.com/benoitkugler/svgdom/svganim"
	"github.com/benoitkugler/svgdom/svgdraw"
	"github.com/benoitkugler/svgdom/svgpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red    = color.NRGBA{0xff, 0, 0, 0xff}
	blue   = color.NRGBA{0, 0, 0xff, 0xff}
	purple = color.NRGBA{0x80, 0, 0x80, 0xff}
)

func TestAnimationWiring(t *testing.T) {
	doc := parse(t, `<svg width="100" height="100">
	<rect id="r" width="10" height="10" fill="red">
		<animate attributeName="fill" from="red" to="blue" dur="2s"/>
		<animate attributeName="width" by="5" begin="1s" dur="1s" fill="freeze"/>
	</rect>
	<animate id="a" href="#r" attributeName="opacity" values="1;0.5;0" dur="2s" calcMode="discrete"/>
	<animate attributeName="unknown" to="1" dur="1s"/>
	<animate attributeName="opacity" to="1"/>
	</svg>`)

	r := lookup(t, doc, "r")
	bindings := doc.Bindings()
	require.Len(t, bindings, 3)

	fill := bindings[0]
	assert.Equal(t, "fill", fill.Attr)
	assert.Equal(t, KindColor, fill.Kind)
	assert.Equal(t, GetOriginalValue(r, "fill", KindColor), fill.Original)
	assert.Equal(t, doc.Lookup("#r"), fill.Target)
	assert.Equal(t, 2, fill.Animator.Frames)
	assert.Equal(t, 2*time.Second, fill.Animator.Timing.Dur)

	width := bindings[1]
	assert.Equal(t, Px(10), width.Original.Dimension)
	require.Len(t, width.Frames, 2)
	assert.Equal(t, Px(15), width.Frames[1].Dimension)
	assert.Equal(t, time.Second, width.Animator.Timing.Begin)
	assert.Equal(t, svganim.FillFreeze, width.Animator.Timing.Fill)

	// the href target overrides the parent
	opacity := bindings[2]
	assert.Equal(t, doc.Lookup("#r"), opacity.Target)
	assert.Equal(t, doc.Lookup("#a"), opacity.Source())
	assert.Equal(t, 3, opacity.Animator.Frames)
	assert.Equal(t, svganim.CalcDiscrete, opacity.Animator.CalcMode)
}

func TestUpdateAttr(t *testing.T) {
	doc := parseWith(t, `<svg>
		<rect><animate id="a" attributeName="x" to="1" dur="00:01.5" begin="bad" repeatCount="indefinite" keyTimes="0;1"/></rect>
		<rect><animate id="b" attributeName="x" to="1" dur="indefinite"/></rect>
		<animateMotion id="m" path="M0 0 L1 1" dur="1s"/>
	</svg>`, Options{})

	anim, err := doc.UpdateAttr(doc.Lookup("a"))
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, anim.Timing.Dur)
	assert.Equal(t, time.Duration(0), anim.Timing.Begin)
	assert.Equal(t, svganim.Indefinite, anim.Timing.RepeatCount)
	assert.Equal(t, []float64{0, 1}, anim.KeyTimes)

	_, err = doc.UpdateAttr(doc.Lookup("b"))
	assert.Error(t, err)

	anim, err = doc.UpdateAttr(doc.Lookup("m"))
	require.NoError(t, err)
	assert.Equal(t, svganim.CalcPaced, anim.CalcMode)

	_, err = doc.UpdateAttr(doc.Root())
	assert.Error(t, err)
}

func TestTickAndRestore(t *testing.T) {
	var flushes []time.Duration
	doc := parseWith(t, `<svg width="100" height="100">
	<rect id="r" width="10" height="10" fill="red">
		<animate attributeName="fill" from="red" to="blue" dur="2s"/>
		<animate attributeName="opacity" from="1" to="0" dur="2s"/>
	</rect>
	</svg>`, Options{ErrorMode: StrictErrorMode, OnFlush: func(d time.Duration) { flushes = append(flushes, d) }})
	r := lookup(t, doc, "r")

	assert.False(t, doc.ConsumeFlush())
	doc.Tick(time.Second)
	assert.Equal(t, purple, r.Decl.Fill.Color)
	assert.Equal(t, 0.5, r.Decl.Opacity)
	// two attributes, one flush
	assert.Equal(t, []time.Duration{time.Second}, flushes)
	assert.True(t, doc.ConsumeFlush())
	assert.False(t, doc.ConsumeFlush())

	// nothing changed
	doc.Tick(time.Second)
	assert.False(t, doc.ConsumeFlush())
	assert.Len(t, flushes, 1)

	// removed: back to the declared value
	doc.Tick(3 * time.Second)
	assert.Equal(t, red, r.Decl.Fill.Color)
	assert.Equal(t, 1., r.Decl.Opacity)
	v, _ := r.Attr("fill")
	assert.Equal(t, "red", v)
	_, has := r.Attr("opacity")
	assert.False(t, has)
	assert.True(t, doc.ConsumeFlush())

	doc.Tick(4 * time.Second)
	assert.False(t, doc.ConsumeFlush())
}

func TestFreeze(t *testing.T) {
	doc := parse(t, `<svg>
	<rect id="r" width="10" height="10" fill="red">
		<animate attributeName="fill" to="blue" dur="1s" fill="freeze"/>
		<animate attributeName="x" values="0;10;30" dur="1s" repeatCount="1.5" fill="freeze"/>
	</rect>
	</svg>`)
	r := lookup(t, doc, "r")
	doc.Tick(10 * time.Second)
	assert.Equal(t, blue, r.Decl.Fill.Color)
	// frozen in the middle of the second iteration
	assert.Equal(t, Px(10), r.Geom.X)
}

func TestInheritedAnimation(t *testing.T) {
	doc := parse(t, `<svg>
	<g id="g" fill="red">
		<animate attributeName="fill" to="blue" dur="1s"/>
		<rect id="r" width="10" height="10"/>
	</g>
	<g id="g2">
		<rect id="r2" width="10" height="10">
			<animate attributeName="fill" to="blue" dur="1s"/>
		</rect>
	</g>
	</svg>`)
	r, r2 := lookup(t, doc, "r"), lookup(t, doc, "r2")

	doc.Tick(500 * time.Millisecond)
	assert.Equal(t, purple, lookup(t, doc, "g").Decl.Fill.Color)
	assert.Equal(t, purple, r.Decl.Fill.Color)
	assert.True(t, r2.Decl.IsSet("fill"))

	doc.Tick(2 * time.Second)
	assert.Equal(t, red, r.Decl.Fill.Color)
	// no declared value: inherited again
	assert.False(t, r2.Decl.IsSet("fill"))
	assert.Equal(t, color.NRGBA{A: 0xff}, r2.Decl.Fill.Color)
}

func TestRestoreGradientPaint(t *testing.T) {
	doc := parse(t, `<svg>
	<linearGradient id="g"><stop offset="0" stop-color="red"/><stop offset="1" stop-color="blue"/></linearGradient>
	<rect id="r" width="10" height="10" fill="url(#g)">
		<animate attributeName="fill" to="green" dur="1s"/>
	</rect>
	</svg>`)
	r := lookup(t, doc, "r")
	g := doc.Gradient(doc.Lookup("g"))
	require.NotNil(t, g)

	doc.Tick(500 * time.Millisecond)
	assert.Equal(t, PaintColor, r.Decl.Fill.Kind)

	doc.Tick(2 * time.Second)
	assert.Equal(t, PaintURL, r.Decl.Fill.Kind)
	assert.Same(t, g, r.Decl.Fill.Gradient)
	_, isGradient := doc.pattern(&r.Decl, r.Decl.Fill).(svgdraw.Gradient)
	assert.True(t, isGradient)
}

func TestHrefAnimationDocumentOrder(t *testing.T) {
	for _, src := range []string{
		`<svg>
			<g><animate href="#r" attributeName="fill" to="blue" dur="2s"/></g>
			<g fill="red"><rect id="r" width="1" height="1"/></g>
		</svg>`,
		`<svg>
			<g fill="red"><rect id="r" width="1" height="1"/></g>
			<g><animate href="#r" attributeName="fill" to="blue" dur="2s"/></g>
		</svg>`,
	} {
		doc := parse(t, src)
		require.Len(t, doc.Bindings(), 1)
		// the target is styled before the animation is wired
		assert.Equal(t, red, doc.Bindings()[0].Original.Color)

		doc.Tick(time.Second)
		assert.Equal(t, purple, lookup(t, doc, "r").Decl.Fill.Color)
	}
}

func TestAnimateTransform(t *testing.T) {
	doc := parse(t, `<svg>
	<rect id="r" width="10" height="10" transform="translate(1 2) rotate(10)">
		<animateTransform attributeName="transform" type="rotate" values="0 5 5; 90 5 5; 180 5 5" dur="3s"/>
		<animateTransform attributeName="transform" type="scale" from="1" to="3" dur="1s" begin="1s"/>
	</rect>
	</svg>`)
	r := lookup(t, doc, "r")
	require.Len(t, doc.Bindings(), 2)
	b := doc.Bindings()[0]
	assert.Equal(t, KindTransform, b.Kind)
	assert.Equal(t, r.Transform(), b.Original.Transform)

	// keyframes are exact at integer positions
	assert.Equal(t, []float64{90, 5, 5}, b.ValueAt(1).Transform[0].Params)
	assert.Equal(t, []float64{180, 5, 5}, b.ValueAt(2).Transform[0].Params)
	assert.Equal(t, []float64{180, 5, 5}, b.ValueAt(7).Transform[0].Params)
	assert.Equal(t, []float64{45, 5, 5}, b.ValueAt(0.5).Transform[0].Params)

	scale := doc.Bindings()[1]
	assert.Equal(t, []float64{1, 1}, scale.Frames[0].Transform[0].Params)
	assert.Equal(t, []float64{3, 3}, scale.Frames[1].Transform[0].Params)

	doc.Tick(1500 * time.Millisecond)
	expected := svgpath.Transform{
		{Type: "translate", Params: []float64{1, 2}},
		{Type: "rotate", Params: []float64{90, 5, 5}},
		{Type: "scale", Params: []float64{2, 2}},
	}.Matrix()
	assertMatrix(t, expected, r.matrix())
	// the static transform is kept
	assert.Equal(t, "translate(1 2) rotate(10)", r.Transform().String())

	doc.Tick(10 * time.Second)
	assertMatrix(t, r.Transform().Matrix(), r.matrix())
}

func TestAnimateTransformErrors(t *testing.T) {
	doc := parseWith(t, `<svg><rect>
		<animateTransform type="skewX" values="1; 2 3" dur="1s"/>
		<animateTransform type="skewX" from="1 2" to="3" dur="1s"/>
		<animateTransform type="matrix" to="1 0 0 1 0 0" dur="1s"/>
		<animateTransform attributeName="gradientTransform" to="1" dur="1s"/>
		<animateTransform type="translate" by="10" dur="1s"/>
	</rect></svg>`, Options{})
	require.Len(t, doc.Bindings(), 1)
	b := doc.Bindings()[0]
	assert.Equal(t, []float64{10, 0}, b.Frames[1].Transform[0].Params)
}

func TestAnimateMotion(t *testing.T) {
	doc := parse(t, `<svg>
	<rect id="r" width="10" height="10">
		<animateMotion path="M0,0 L100,0 L100,100" dur="2s" rotate="auto"/>
	</rect>
	<rect id="r2" width="10" height="10">
		<animateMotion values="0,0; 30,40; 30,0" dur="2s" calcMode="linear"/>
	</rect>
	</svg>`)
	r, r2 := lookup(t, doc, "r"), lookup(t, doc, "r2")
	require.Len(t, doc.Bindings(), 2)
	assert.InDelta(t, 200, doc.Bindings()[0].Frames[1].Double, 1e-9)

	doc.Tick(1500 * time.Millisecond)
	m := r.matrix()
	// paced: 150 along the path, on the vertical segment
	assert.InDelta(t, 100, m.E, 1e-3)
	assert.InDelta(t, 50, m.F, 1e-3)
	// rotated by 90°
	assert.InDelta(t, 0, m.A, 1e-9)
	assert.InDelta(t, 1, m.B, 1e-9)

	// linear: one segment per half duration
	m = r2.matrix()
	assert.InDelta(t, 30, m.E, 1e-3)
	assert.InDelta(t, 20, m.F, 1e-3)

	doc.Tick(3 * time.Second)
	assert.Equal(t, svgpath.Identity, r.matrix())
}

func TestDetachBindings(t *testing.T) {
	doc := parse(t, `<svg>
	<rect id="r" width="10" height="10"><animate attributeName="x" to="5" dur="1s"/></rect>
	<rect id="r2" width="10" height="10"/>
	<g id="g"><animate href="#r2" attributeName="x" to="5" dur="1s"/></g>
	</svg>`)
	require.Len(t, doc.Bindings(), 2)
	doc.Detach(doc.Lookup("r"))
	require.Len(t, doc.Bindings(), 1)
	// the animation element itself is removed
	doc.Detach(doc.Lookup("g"))
	assert.Empty(t, doc.Bindings())
	doc.Tick(time.Second)
	assert.False(t, doc.ConsumeFlush())
}

func TestGradientAnimation(t *testing.T) {
	doc := parse(t, `<svg>
	<linearGradient id="g">
		<stop offset="0" stop-color="red"/>
		<stop offset="1" stop-color="red">
			<animate attributeName="stop-color" to="blue" dur="1s" fill="freeze"/>
		</stop>
	</linearGradient>
	<rect id="r" width="10" height="10" fill="url(#g)"/>
	</svg>`)
	r := lookup(t, doc, "r")
	require.Len(t, doc.Bindings(), 1)

	doc.Tick(2 * time.Second)
	g := r.Decl.Fill.Gradient
	require.NotNil(t, g)
	assert.Same(t, doc.Gradient(doc.Lookup("g")), g)
	assert.Equal(t, blue, g.Colors[1].Color)
	assert.Equal(t, red, g.Colors[0].Color)
}

func assertMatrix(t *testing.T, expected, got svgpath.Matrix2D) {
	t.Helper()
	assert.InDeltaSlice(t,
		[]float64{expected.A, expected.B, expected.C, expected.D, expected.E, expected.F},
		[]float64{got.A, got.B, got.C, got.D, got.E, got.F}, 1e-9)
}
