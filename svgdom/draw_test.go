package svgdom

import (
	"strings"
	"testing"

	"github.com/benoitkugler/svgdom/svgdraw"
	"github.com/benoitkugler/svgdom/svgpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(t *testing.T, src string) []string {
	t.Helper()
	doc := parse(t, src)
	var rec svgdraw.Recorder
	doc.Draw(svgdraw.NewCanvas(&rec, svgpath.Identity))
	return rec.Ops
}

func TestDrawShape(t *testing.T) {
	ops := record(t, `<svg width="100" height="100"><rect width="10" height="10" fill="red"/></svg>`)
	assert.Equal(t, []string{
		"save",
		"save",
		"fill M0.000,0.000 L10.000,0.000 L10.000,10.000 L0.000,10.000 Z #ff0000 1",
		"restore",
		"restore",
	}, ops)
}

func TestDrawClipAndOpacity(t *testing.T) {
	ops := record(t, `<svg width="100" height="100">
		<defs><clipPath id="c"><rect width="5" height="5"/></clipPath></defs>
		<g clip-path="url(#c)" opacity="0.5"><rect width="10" height="10" fill="red"/></g>
	</svg>`)
	assert.Equal(t, []string{
		"save",
		"save",
		"clip M0.000,0.000 L5.000,0.000 L5.000,5.000 L0.000,5.000 Z",
		"layer SrcOver 0.5",
		"save",
		"fill M0.000,0.000 L10.000,0.000 L10.000,10.000 L0.000,10.000 Z #ff0000 1",
		"restore",
		"restore",
		"restore",
		"restore",
	}, ops)
}

func TestDrawClipBeforeTransform(t *testing.T) {
	ops := record(t, `<svg width="100" height="100">
		<clipPath id="c"><rect width="5" height="5"/></clipPath>
		<rect width="10" height="10" transform="translate(20 0)" clip-path="url(#c)"/>
	</svg>`)
	require.Len(t, ops, 6)
	// the clip is in the user space of the element
	assert.Equal(t, "clip M20.000,0.000 L25.000,0.000 L25.000,5.000 L20.000,5.000 Z", ops[2])
	assert.Equal(t, "fill M20.000,0.000 L30.000,0.000 L30.000,10.000 L20.000,10.000 Z #000000 1", ops[3])
}

func TestDrawOpacityFolding(t *testing.T) {
	ops := record(t, `<svg><rect width="10" height="10" fill="red" opacity="0.5"/></svg>`)
	assert.Equal(t, "fill M0.000,0.000 L10.000,0.000 L10.000,10.000 L0.000,10.000 Z #ff0000 0.5", ops[2])

	// fill and stroke overlap: a layer is required
	ops = record(t, `<svg><rect width="10" height="10" fill="red" stroke="blue" opacity="0.5"/></svg>`)
	assert.Equal(t, "layer SrcOver 0.5", ops[2])
	assert.True(t, strings.HasPrefix(ops[3], "fill "))
	assert.True(t, strings.HasPrefix(ops[4], "stroke "))
	assert.True(t, strings.HasSuffix(ops[4], "#0000ff 1"))
}

func TestDrawMask(t *testing.T) {
	ops := record(t, `<svg width="100" height="100">
		<mask id="m"><rect width="5" height="5" fill="white"/></mask>
		<rect width="10" height="10" fill="red" mask="url(#m)"/>
	</svg>`)
	assert.Equal(t, []string{
		"save",
		"save",
		"layer SrcOver 1",
		"save",
		"clip M-1.000,-1.000 L11.000,-1.000 L11.000,11.000 L-1.000,11.000 Z",
		"save",
		"fill M0.000,0.000 L5.000,0.000 L5.000,5.000 L0.000,5.000 Z #ffffff 1",
		"restore",
		"restore",
		"layer SrcIn 1",
		"fill M0.000,0.000 L10.000,0.000 L10.000,10.000 L0.000,10.000 Z #ff0000 1",
		"restore",
		"restore",
		"restore",
		"restore",
	}, ops)
}

func TestDrawFilter(t *testing.T) {
	ops := record(t, `<svg width="100" height="100">
		<defs>
			<filter id="blurMe"><feGaussianBlur in="SourceGraphic" stdDeviation="5"/></filter>
			<filter id="empty"/>
		</defs>
		<circle cx="50" cy="50" r="20" fill="green" filter="url(#blurMe)"/>
		<circle cx="50" cy="50" r="20" fill="green" filter="url(#empty)"/>
	</svg>`)
	assert.Equal(t, "layer SrcOver 1 filter[svgdraw.ColorSpace svgdraw.Blur svgdraw.ColorSpace]", ops[2])
	layers := 0
	for _, op := range ops {
		if strings.HasPrefix(op, "layer") {
			layers++
		}
	}
	// the empty filter is skipped
	assert.Equal(t, 1, layers)
}

func TestDrawUse(t *testing.T) {
	ops := record(t, `<svg width="100" height="100">
		<defs><rect id="a" width="1" height="1"/></defs>
		<use href="#a" x="5" y="5" fill="green"/>
		<use id="self" href="#self"/>
	</svg>`)
	assert.Equal(t, []string{
		"save",
		"save",
		"save",
		"save",
		"fill M5.000,5.000 L6.000,5.000 L6.000,6.000 L5.000,6.000 Z #008000 1",
		"restore",
		"restore",
		"restore",
		// recursive use
		"save",
		"save",
		"save",
		"restore",
		"restore",
		"restore",
		"restore",
	}, ops)
}

func TestDrawViewBox(t *testing.T) {
	doc := parse(t, `<svg width="200" height="100" viewBox="0 0 10 10"><rect width="10" height="10"/></svg>`)
	var rec svgdraw.Recorder
	doc.Draw(svgdraw.NewCanvas(&rec, svgpath.Identity))
	assert.Equal(t, "fill M50.000,0.000 L150.000,0.000 L150.000,100.000 L50.000,100.000 Z #000000 1", rec.Ops[2])

	m := doc.TargetMatrix(10, 0, 400, 200)
	assert.Equal(t, svgpath.Identity.Translate(10, 0).Scale(2, 2), m)
}

func TestDrawHidden(t *testing.T) {
	ops := record(t, `<svg>
		<g display="none"><rect width="10" height="10"/></g>
		<rect width="10" height="10" visibility="hidden"/>
	</svg>`)
	assert.Equal(t, []string{"save", "save", "restore", "restore"}, ops)
}

func TestDrawPattern(t *testing.T) {
	ops := record(t, `<svg width="100" height="100">
		<pattern id="p" width="5" height="5" patternUnits="userSpaceOnUse">
			<rect width="2" height="2" fill="blue"/>
		</pattern>
		<rect width="10" height="10" fill="url(#p)"/>
	</svg>`)
	var fills []string
	for _, op := range ops {
		if strings.HasPrefix(op, "fill") {
			fills = append(fills, op)
		}
	}
	assert.Equal(t, []string{
		"fill M0.000,0.000 L2.000,0.000 L2.000,2.000 L0.000,2.000 Z #0000ff 1",
		"fill M0.000,5.000 L2.000,5.000 L2.000,7.000 L0.000,7.000 Z #0000ff 1",
		"fill M5.000,0.000 L7.000,0.000 L7.000,2.000 L5.000,2.000 Z #0000ff 1",
		"fill M5.000,5.000 L7.000,5.000 L7.000,7.000 L5.000,7.000 Z #0000ff 1",
	}, fills)
	assert.Equal(t, "clip M0.000,0.000 L10.000,0.000 L10.000,10.000 L0.000,10.000 Z", ops[3])
}

func TestBounds(t *testing.T) {
	doc := parse(t, `<svg>
		<g id="g" transform="translate(100 0)">
			<rect x="1" y="2" width="3" height="4"/>
			<rect width="1" height="1" transform="translate(10 10)"/>
			<animate attributeName="x" to="1" dur="1s"/>
		</g>
		<use id="u" href="#g" x="1"/>
	</svg>`)
	assert.Equal(t, svgpath.Rect{X: 1, Y: 2, W: 10, H: 9}, doc.bounds(lookup(t, doc, "g"), 0))
	assert.Equal(t, svgpath.Rect{X: 102, Y: 2, W: 10, H: 9}, doc.bounds(lookup(t, doc, "u"), 0))
}
