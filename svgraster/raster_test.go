package svgraster

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/benoitkugler/svgdom/svgdom"
	"github.com/benoitkugler/svgdom/svgdraw"
	"github.com/benoitkugler/svgdom/svgpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red         = color.RGBA{0xff, 0, 0, 0xff}
	transparent = color.RGBA{}
)

func render(t *testing.T, src string) *image.RGBA {
	t.Helper()
	img, err := RasterSVGToImage(strings.NewReader(src), svgdom.Options{ErrorMode: svgdom.StrictErrorMode})
	require.NoError(t, err)
	return img
}

func assertColor(t *testing.T, expected, got color.RGBA, msgAndArgs ...interface{}) {
	t.Helper()
	assert.InDelta(t, expected.R, got.R, 2, msgAndArgs...)
	assert.InDelta(t, expected.G, got.G, 2, msgAndArgs...)
	assert.InDelta(t, expected.B, got.B, 2, msgAndArgs...)
	assert.InDelta(t, expected.A, got.A, 2, msgAndArgs...)
}

func TestRasterSize(t *testing.T) {
	img := render(t, `<svg width="30.5" height="12"></svg>`)
	assert.Equal(t, image.Rect(0, 0, 31, 12), img.Bounds())

	_, err := RasterSVGToImage(strings.NewReader(`<html/>`), svgdom.Options{})
	assert.Error(t, err)
}

func TestRasterFill(t *testing.T) {
	img := render(t, `<svg width="20" height="20"><rect x="5" y="5" width="10" height="10" fill="red"/></svg>`)
	assert.Equal(t, red, img.RGBAAt(10, 10))
	assert.Equal(t, transparent, img.RGBAAt(2, 2))
	assert.Equal(t, transparent, img.RGBAAt(17, 17))
}

func TestRasterStroke(t *testing.T) {
	img := render(t, `<svg width="20" height="20"><line x1="0" y1="10" x2="20" y2="10" stroke="blue" stroke-width="4"/></svg>`)
	assert.Equal(t, color.RGBA{0, 0, 0xff, 0xff}, img.RGBAAt(10, 10))
	assert.Equal(t, transparent, img.RGBAAt(10, 2))
}

func TestRasterClip(t *testing.T) {
	img := render(t, `<svg width="20" height="20">
		<clipPath id="c"><rect width="10" height="10"/></clipPath>
		<rect width="20" height="20" fill="red" clip-path="url(#c)"/>
	</svg>`)
	assert.Equal(t, red, img.RGBAAt(5, 5))
	assert.Equal(t, transparent, img.RGBAAt(15, 15))
	assert.Equal(t, transparent, img.RGBAAt(5, 15))
}

func TestRasterOpacity(t *testing.T) {
	half := color.RGBA{0x80, 0, 0, 0x80}

	// group opacity, composited from a layer
	img := render(t, `<svg width="20" height="20"><g opacity="0.5"><rect width="20" height="20" fill="red"/></g></svg>`)
	assertColor(t, half, img.RGBAAt(10, 10))

	// folded in the fill color
	img = render(t, `<svg width="20" height="20"><rect width="20" height="20" fill="red" opacity="0.5"/></svg>`)
	assertColor(t, half, img.RGBAAt(10, 10))
}

func TestRasterMask(t *testing.T) {
	img := render(t, `<svg width="20" height="20">
		<mask id="m"><rect width="10" height="10" fill="white"/></mask>
		<rect width="20" height="20" fill="red" mask="url(#m)"/>
	</svg>`)
	assertColor(t, red, img.RGBAAt(5, 5))
	assert.Equal(t, transparent, img.RGBAAt(15, 15))
}

func TestRasterBlurFilter(t *testing.T) {
	img := render(t, `<svg width="60" height="60">
		<filter id="b"><feGaussianBlur stdDeviation="2"/></filter>
		<rect x="20" y="20" width="20" height="20" fill="red" filter="url(#b)"/>
	</svg>`)
	center := img.RGBAAt(30, 30)
	assert.GreaterOrEqual(t, center.A, uint8(250))
	assert.GreaterOrEqual(t, center.R, uint8(250))

	// the blur spreads out of the shape
	assert.Greater(t, img.RGBAAt(17, 30).A, uint8(0))
	assert.Less(t, img.RGBAAt(21, 30).A, uint8(0xff))
	assert.Equal(t, transparent, img.RGBAAt(50, 30))
}

func TestRasterOffsetFilter(t *testing.T) {
	img := render(t, `<svg width="30" height="30">
		<filter id="o"><feOffset dx="5" dy="5"/></filter>
		<rect width="10" height="10" fill="red" filter="url(#o)"/>
	</svg>`)
	assertColor(t, red, img.RGBAAt(12, 12))
	assert.Equal(t, transparent, img.RGBAAt(2, 2))
}

func TestRasterGradient(t *testing.T) {
	img := render(t, `<svg width="100" height="10">
		<linearGradient id="g"><stop offset="0" stop-color="red"/><stop offset="1" stop-color="blue"/></linearGradient>
		<rect width="100" height="10" fill="url(#g)"/>
	</svg>`)
	left, right := img.RGBAAt(1, 5), img.RGBAAt(98, 5)
	assert.Greater(t, left.R, uint8(240))
	assert.Less(t, left.B, uint8(15))
	assert.Greater(t, right.B, uint8(240))
	assert.Less(t, right.R, uint8(15))

	mid := img.RGBAAt(50, 5)
	assert.InDelta(t, 128, int(mid.R), 4)
	assert.InDelta(t, 128, int(mid.B), 4)
}

func rectPath(minX, minY, maxX, maxY float64) svgpath.Path {
	var p svgpath.Path
	p.AddRect(minX, minY, maxX, maxY, 0)
	return p
}

func TestRendererLayers(t *testing.T) {
	rd := NewRenderer(10, 10)
	c := svgdraw.NewCanvas(rd, svgpath.Identity)
	style := svgdraw.DefaultStyle
	style.Fill = svgdraw.NewPlainColor(0xff, 0, 0, 0xff)

	c.SaveLayer(svgdraw.Layer{Opacity: 1})
	c.DrawPath(rectPath(0, 0, 5, 10), style)
	c.SaveLayer(svgdraw.Layer{Blend: svgdraw.BlendSrcIn, Opacity: 1})
	style.Fill = svgdraw.NewPlainColor(0, 0xff, 0, 0xff)
	c.DrawPath(rectPath(0, 0, 10, 10), style)
	c.RestoreTo(0)

	// the second layer only shows where the first one is painted
	assert.Equal(t, color.RGBA{0, 0xff, 0, 0xff}, rd.Image().RGBAAt(2, 5))
	assert.Equal(t, transparent, rd.Image().RGBAAt(7, 5))

	// unbalanced restore is ignored
	rd.Restore()
}

func TestBlurEdgeModes(t *testing.T) {
	opaque := image.NewRGBA(image.Rect(0, 0, 20, 20))
	for i := range opaque.Pix {
		opaque.Pix[i] = 0xff
	}

	dup := blurImage(opaque, svgdraw.Blur{StdDevX: 2, StdDevY: 2, Edge: svgdraw.EdgeDuplicate})
	assert.GreaterOrEqual(t, dup.RGBAAt(0, 0).A, uint8(0xfe))

	none := blurImage(opaque, svgdraw.Blur{StdDevX: 2, StdDevY: 2, Edge: svgdraw.EdgeNone})
	assert.Equal(t, opaque.Bounds(), none.Bounds().Sub(none.Bounds().Min))
	assert.Less(t, none.RGBAAt(none.Bounds().Min.X, none.Bounds().Min.Y).A, uint8(0xff))

	// a null deviation disables the blur
	assert.Same(t, opaque, blurImage(opaque, svgdraw.Blur{}))
}

func TestColorHelpers(t *testing.T) {
	c := color.RGBA{0x40, 0x20, 0x10, 0x80}
	identity := [20]float64{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 1, 0,
	}
	assertColor(t, c, colorMatrix(identity)(c))

	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.SetRGBA(0, 0, color.RGBA{0xc0, 0x60, 0x80, 0xff})
	linear := convertColorSpace(img, svgdraw.ColorSpace{From: svgdraw.SRGB, To: svgdraw.LinearRGB})
	assert.Less(t, linear.RGBAAt(0, 0).G, uint8(0x60))
	back := convertColorSpace(linear, svgdraw.ColorSpace{From: svgdraw.LinearRGB, To: svgdraw.SRGB})
	assertColor(t, img.RGBAAt(0, 0), back.RGBAAt(0, 0))
}

func TestCompositeOperators(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	dst := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.SetRGBA(0, 0, red)
	src.SetRGBA(1, 0, red)
	dst.SetRGBA(0, 0, color.RGBA{0, 0, 0xff, 0xff}) // only the first pixel

	in := compositeImages(src, dst, svgdraw.Composite{Operator: svgdraw.CompositeIn})
	assert.Equal(t, red, in.RGBAAt(0, 0))
	assert.Equal(t, transparent, in.RGBAAt(1, 0))

	out := compositeImages(src, dst, svgdraw.Composite{Operator: svgdraw.CompositeOut})
	assert.Equal(t, transparent, out.RGBAAt(0, 0))
	assert.Equal(t, red, out.RGBAAt(1, 0))

	sum := compositeImages(src, dst, svgdraw.Composite{Operator: svgdraw.CompositeArithmetic, K2: 1, K3: 1})
	assert.Equal(t, color.RGBA{0xff, 0, 0xff, 0xff}, sum.RGBAAt(0, 0))
}
