package svgdraw

import (
	"testing"

	"github.com/benoitkugler/svgdom/svgpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanvasTransform(t *testing.T) {
	var rec Recorder
	c := NewCanvas(&rec, svgpath.Identity)

	var p svgpath.Path
	p.AddLine(0, 0, 10, 0)

	c.Save()
	c.Concat(svgpath.Identity.Translate(5, 5))
	c.DrawPath(p, PathStyle{Fill: NewPlainColor(0xff, 0, 0, 0xff), FillOpacity: 0.5})
	c.Restore()
	c.DrawPath(p, PathStyle{Stroke: NewPlainColor(0, 0, 0xff, 0xff), StrokeOpacity: 1, LineWidth: 1})

	require.Len(t, rec.Ops, 4)
	assert.Equal(t, []string{
		"save",
		"fill M5.000,5.000 L15.000,5.000 #ff0000 0.5",
		"restore",
		"stroke M0.000,0.000 L10.000,0.000 #0000ff 1",
	}, rec.Ops)
	assert.Equal(t, svgpath.Identity, c.Matrix())
}

func TestCanvasRestoreTo(t *testing.T) {
	var rec Recorder
	c := NewCanvas(&rec, svgpath.Identity)
	c.Save()
	c.SaveLayer(Layer{Blend: BlendSrcIn, Opacity: 1})
	c.Save()
	assert.Equal(t, 3, c.Depth())
	c.RestoreTo(1)
	assert.Equal(t, 1, c.Depth())
	c.RestoreTo(0)
	c.Restore() // no-op
	assert.Equal(t, []string{"save", "layer SrcIn 1", "save", "restore", "restore", "restore"}, rec.Ops)
}

func TestCanvasClip(t *testing.T) {
	var rec Recorder
	c := NewCanvas(&rec, svgpath.Identity.Scale(2, 2))
	var p svgpath.Path
	p.AddRect(0, 0, 5, 5, 0)
	c.ClipPath(p, true)
	assert.Equal(t, "clip M0.000,0.000 L10.000,0.000 L10.000,10.000 L0.000,10.000 Z", rec.String())
}

func TestFilterDeviceSpace(t *testing.T) {
	var rec Recorder
	c := NewCanvas(&rec, svgpath.Identity.Scale(2, 3))
	chain := &FilterChain{Primitives: []FilterPrimitive{
		{Effect: Blur{StdDevX: 1, StdDevY: 1}},
		{Effect: Offset{Dx: 1, Dy: 1}},
	}}
	dev := c.deviceFilter(chain)
	assert.Equal(t, Blur{StdDevX: 2, StdDevY: 3}, dev.Primitives[0].Effect)
	assert.Equal(t, Offset{Dx: 2, Dy: 3}, dev.Primitives[1].Effect)
	// the input is not modified
	assert.Equal(t, Blur{StdDevX: 1, StdDevY: 1}, chain.Primitives[0].Effect)

	c.SaveLayer(Layer{Opacity: 1, Filter: chain})
	assert.Equal(t, "layer SrcOver 1 filter[svgdraw.Blur svgdraw.Offset]", rec.String())
}

func TestGradientUnits(t *testing.T) {
	g := Gradient{
		Direction: Linear{0, 0, 1, 0},
		Matrix:    svgpath.Identity,
		Units:     ObjectBoundingBox,
	}
	bbox := svgpath.Rect{X: 10, Y: 20, W: 100, H: 50}
	ctm := svgpath.Identity.Translate(1, 1)
	out := g.resolveUnits(bbox, ctm)
	assert.Equal(t, UserSpaceOnUse, out.Units)
	x, y := out.Matrix.Transform(1, 1)
	assert.InDelta(t, 111, x, 1e-9)
	assert.InDelta(t, 71, y, 1e-9)

	g.Units = UserSpaceOnUse
	out = g.resolveUnits(bbox, ctm)
	x, y = out.Matrix.Transform(1, 1)
	assert.InDelta(t, 2, x, 1e-9)
	assert.InDelta(t, 2, y, 1e-9)
}
