package svgdom

import (
	"errors"
	"image/color"
	"testing"

	"github.com/benoitkugler/svgdom/svgpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDimension(t *testing.T) {
	for s, expected := range map[string]Dimension{
		"12":     {Value: 12, Unit: UnitPx},
		" 12px ": {Value: 12, Unit: UnitPx},
		"50%":    {Value: 50, Unit: UnitPercent},
		"1.5em":  {Value: 1.5, Unit: UnitEm},
		"-3mm":   {Value: -3, Unit: UnitMm},
		"2IN":    {Value: 2, Unit: UnitIn},
		".5pt":   {Value: 0.5, Unit: UnitPt},
		"4vp":    {Value: 4, Unit: UnitVp},
	} {
		got, err := ParseDimension(s, UnitPx)
		require.NoError(t, err, s)
		assert.Equal(t, expected, got, s)
	}

	for _, s := range []string{"", "px", "12 px", "1,5", "abc"} {
		_, err := ParseDimension(s, UnitPx)
		assert.Error(t, err, s)
	}
	_, err := ParseDimension("12qq", UnitPx)
	assert.True(t, errors.Is(err, ErrUnknownUnit))
}

func TestConvertToPx(t *testing.T) {
	for _, test := range []struct {
		d        Dimension
		expected float64
	}{
		{Px(3), 3},
		{Dimension{Value: 50, Unit: UnitPercent}, 100},
		{Dimension{Value: 72, Unit: UnitPt}, 96},
		{Dimension{Value: 1, Unit: UnitIn}, 96},
		{Dimension{Value: 2.54, Unit: UnitCm}, 96},
		{Dimension{Value: 25.4, Unit: UnitMm}, 96},
		{Dimension{Value: 1, Unit: UnitPc}, 16},
		{Dimension{Value: 2, Unit: UnitEm}, 32},
		{Dimension{Value: 7, Unit: UnitFp}, 7},
	} {
		assert.InDelta(t, test.expected, test.d.ConvertToPx(200), 1e-9, test.d.String())
	}
}

func TestParseColor(t *testing.T) {
	for s, expected := range map[string]color.NRGBA{
		"#f00":                   {0xff, 0, 0, 0xff},
		"#00ff7f":                {0, 0xff, 0x7f, 0xff},
		"red":                    {0xff, 0, 0, 0xff},
		"transparent":            {},
		"rgb(0, 128, 255)":       {0, 128, 255, 0xff},
		"rgb(100%, 0%, 50%)":     {0xff, 0, 128, 0xff},
		"rgba(10, 20, 30, 0.5)":  {10, 20, 30, 128},
		"rgba(10, 20, 30, 1.5)":  {10, 20, 30, 0xff},
		" rgba(0,0,0,0) ":        {},
		"cornflowerblue":         {100, 149, 237, 0xff},
	} {
		got, err := ParseColor(s)
		require.NoError(t, err, s)
		assert.Equal(t, expected, got, s)
	}

	for _, s := range []string{"", "#12", "#ggg", "rgb(1,2)", "notacolor", "rgb(a,b,c)"} {
		_, err := ParseColor(s)
		assert.Error(t, err, s)
	}
}

func TestFormatColor(t *testing.T) {
	assert.Equal(t, "#ff8000", FormatColor(color.NRGBA{0xff, 0x80, 0, 0xff}))

	for _, c := range []color.NRGBA{
		{0xff, 0x80, 0, 0xff},
		{1, 2, 3, 0},
		{10, 20, 30, 128},
		{0xff, 0xff, 0xff, 1},
	} {
		back, err := ParseColor(FormatColor(c))
		require.NoError(t, err)
		assert.Equal(t, c, back)
	}
}

func TestClassify(t *testing.T) {
	for name, expected := range map[string]Kind{
		"fill":         KindColor,
		"stop-color":   KindColor,
		"opacity":      KindDouble,
		"stdDeviation": KindDouble,
		"stroke-width": KindDimension,
		"cx":           KindDimension,
		"transform":    KindTransform,
	} {
		kind, ok := Classify(name)
		assert.True(t, ok, name)
		assert.Equal(t, expected, kind, name)
	}
	_, ok := Classify("d")
	assert.False(t, ok)
}

func TestInterpolate(t *testing.T) {
	a := Value{Kind: KindDouble, Double: 1}
	b := Value{Kind: KindDouble, Double: 3}
	assert.Equal(t, 2., Interpolate(a, b, 0.5, 0).Double)
	assert.Equal(t, a, Interpolate(a, b, -1, 0))
	assert.Equal(t, b, Interpolate(a, b, 2, 0))

	// mixed units are resolved in pixels
	da := Value{Kind: KindDimension, Dimension: Dimension{Value: 10, Unit: UnitPercent}}
	db := Value{Kind: KindDimension, Dimension: Px(30)}
	got := Interpolate(da, db, 0.5, 200)
	assert.Equal(t, UnitPx, got.Dimension.Unit)
	assert.InDelta(t, 25, got.Dimension.Value, 1e-9)

	ca := Value{Kind: KindColor, Color: color.NRGBA{0, 0, 0, 0xff}}
	cb := Value{Kind: KindColor, Color: color.NRGBA{0xff, 0xff, 0xff, 0}}
	mid := Interpolate(ca, cb, 0.5, 0).Color
	assert.InDelta(t, 128, int(mid.R), 1)
	assert.InDelta(t, 128, int(mid.A), 1)

	ta := Value{Kind: KindTransform, Transform: svgpath.Transform{{Type: "rotate", Params: []float64{0}}}}
	tb := Value{Kind: KindTransform, Transform: svgpath.Transform{{Type: "rotate", Params: []float64{90, 10, 10}}}}
	tr := Interpolate(ta, tb, 0.5, 0).Transform
	require.Len(t, tr, 1)
	assert.Equal(t, []float64{45, 5, 5}, tr[0].Params)

	// incompatible transforms are not interpolated
	tc := Value{Kind: KindTransform, Transform: svgpath.Transform{{Type: "scale", Params: []float64{2}}}}
	assert.Equal(t, ta, Interpolate(ta, tc, 0.5, 0))
}

func TestInterpolateFrames(t *testing.T) {
	frames := []Value{
		{Kind: KindDouble, Double: 0},
		{Kind: KindDouble, Double: 10},
		{Kind: KindDouble, Double: 30},
	}
	assert.Equal(t, 0., InterpolateFrames(frames, -2, 0).Double)
	assert.Equal(t, 10., InterpolateFrames(frames, 1, 0).Double)
	assert.Equal(t, 20., InterpolateFrames(frames, 1.5, 0).Double)
	assert.Equal(t, 30., InterpolateFrames(frames, 2, 0).Double)
	assert.Equal(t, 30., InterpolateFrames(frames, 7.5, 0).Double)
	assert.Equal(t, Value{}, InterpolateFrames(nil, 1, 0))
}

// re-encoding an interpolated value, then parsing it back
// must not drift
func TestValueTextRoundTrip(t *testing.T) {
	values := []Value{
		Interpolate(Value{Kind: KindDouble, Double: 0.1}, Value{Kind: KindDouble, Double: 0.7}, 1./3, 0),
		Interpolate(Value{Kind: KindDimension, Dimension: Px(1)}, Value{Kind: KindDimension, Dimension: Px(2)}, 0.123456789, 0),
		Interpolate(Value{Kind: KindDimension, Dimension: Dimension{Value: 10, Unit: UnitPercent}},
			Value{Kind: KindDimension, Dimension: Dimension{Value: 20, Unit: UnitPercent}}, 0.3, 0),
		{Kind: KindColor, Color: color.NRGBA{12, 34, 56, 78}},
		{Kind: KindTransform, Transform: svgpath.Transform{{Type: "translate", Params: []float64{1.0 / 3, -2.5}}}},
	}
	for _, v := range values {
		back, err := ParseValue(v.Kind, v.String())
		require.NoError(t, err, v.String())
		switch v.Kind {
		case KindDouble:
			assert.InDelta(t, v.Double, back.Double, 1e-12)
		case KindDimension:
			assert.Equal(t, v.Dimension.Unit, back.Dimension.Unit)
			assert.InDelta(t, v.Dimension.Value, back.Dimension.Value, 1e-12)
		case KindColor:
			assert.Equal(t, v.Color, back.Color)
		case KindTransform:
			require.Len(t, back.Transform, 1)
			assert.Equal(t, v.Transform[0].Type, back.Transform[0].Type)
			assert.InDeltaSlice(t, v.Transform[0].Params, back.Transform[0].Params, 1e-12)
		}
	}
}

func TestGetOriginalValueMismatch(t *testing.T) {
	doc := newDocument(Options{})
	id := doc.newNode(TagRect, NoNode)
	n := doc.Node(id)
	require.NoError(t, n.SetAttr("fill", "#00ff00"))

	v := GetOriginalValue(n, "fill", KindColor)
	assert.Equal(t, color.NRGBA{0, 0xff, 0, 0xff}, v.Color)

	v = GetOriginalValue(n, "fill", KindDouble)
	assert.Equal(t, Value{Kind: KindDouble}, v)
	v = GetOriginalValue(n, "unknown", KindDouble)
	assert.Equal(t, Value{Kind: KindDouble}, v)
}
