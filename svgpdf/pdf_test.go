package svgpdf

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"codeberg.org/go-pdf/fpdf"
	"github.com/benoitkugler/svgdom/svgdom"
	"github.com/benoitkugler/svgdom/svgdraw"
	"github.com/benoitkugler/svgdom/svgpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/math/fixed"
)

// render returns the uncompressed PDF file
func render(t *testing.T, src string) string {
	t.Helper()
	doc, err := svgdom.ReadDocumentStream(strings.NewReader(src), svgdom.Options{ErrorMode: svgdom.StrictErrorMode})
	require.NoError(t, err)

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetCompression(false)
	pdf.AddPage()
	Draw(pdf, doc, 0, 0, doc.Width, doc.Height)

	var out bytes.Buffer
	require.NoError(t, pdf.Output(&out))
	return out.String()
}

func TestRenderSVGToPDF(t *testing.T) {
	var out bytes.Buffer
	err := RenderSVGToPDF(strings.NewReader(`<svg width="40" height="20"><rect width="10" height="10" fill="red"/></svg>`), &out, svgdom.Options{})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out.Bytes(), []byte("%PDF-")))

	err = RenderSVGToPDF(strings.NewReader(`<svg`), &out, svgdom.Options{})
	assert.Error(t, err)
}

func TestFill(t *testing.T) {
	content := render(t, `<svg width="100" height="100"><rect width="10" height="10" fill="red"/></svg>`)
	assert.Contains(t, content, "1.000 0.000 0.000 rg")
	assert.Contains(t, content, "h\nf\n")

	content = render(t, `<svg width="100" height="100"><path d="M0 0 L10 0 L10 10 Z" fill-rule="evenodd"/></svg>`)
	assert.Contains(t, content, "h\nf*\n")
}

func TestStroke(t *testing.T) {
	content := render(t, `<svg width="100" height="100">
		<line x1="0" y1="0" x2="10" y2="10" stroke="blue" stroke-width="3" stroke-linecap="round"
			stroke-dasharray="2 1"/>
	</svg>`)
	assert.Contains(t, content, "0.000 0.000 1.000 RG")
	assert.Contains(t, content, "3.00 w")
	assert.Contains(t, content, "1 J")
	assert.Contains(t, content, "[2.00 1.00] 0.00 d")
	assert.Contains(t, content, "\nS\n")
}

func TestClip(t *testing.T) {
	content := render(t, `<svg width="100" height="100">
		<clipPath id="c"><rect width="5" height="5"/></clipPath>
		<rect width="10" height="10" fill="red" clip-path="url(#c)"/>
	</svg>`)
	clip := strings.Index(content, "W n")
	fill := strings.Index(content, "h\nf\n")
	require.True(t, clip > 0 && fill > 0)
	assert.Less(t, clip, fill)
}

func TestGroupOpacity(t *testing.T) {
	content := render(t, `<svg width="100" height="100">
		<g opacity="0.5"><rect width="10" height="10" fill="red" fill-opacity="0.5"/></g>
	</svg>`)
	// opacities are multiplied
	assert.Contains(t, content, "/ca 0.250")
}

func TestMaskDegraded(t *testing.T) {
	content := render(t, `<svg width="100" height="100">
		<mask id="m"><rect width="5" height="5" fill="white"/></mask>
		<rect width="10" height="10" fill="red" mask="url(#m)"/>
	</svg>`)
	// the mask content is not drawn, the masked one is
	assert.NotContains(t, content, "1.000 g")
	assert.Contains(t, content, "1.000 0.000 0.000 rg")
}

func TestGradient(t *testing.T) {
	content := render(t, `<svg width="100" height="100">
		<linearGradient id="g"><stop offset="0" stop-color="red"/><stop offset="1" stop-color="blue"/></linearGradient>
		<radialGradient id="r"><stop offset="0" stop-color="red"/><stop offset="1" stop-color="blue"/></radialGradient>
		<rect width="10" height="10" fill="url(#g)"/>
		<rect width="10" height="10" fill="url(#r)"/>
	</svg>`)
	assert.Len(t, regexp.MustCompile(`/Sh\d+ sh`).FindAllString(content, -1), 2)
	assert.Contains(t, content, "/ShadingType 2")
	assert.Contains(t, content, "/ShadingType 3")
}

func TestBalancedStates(t *testing.T) {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.AddPage()
	rd := NewRenderer(pdf)
	c := svgdraw.NewCanvas(rd, svgpath.Identity)

	var p svgpath.Path
	p.AddRect(0, 0, 10, 10, 0)
	c.Save()
	c.SaveLayer(svgdraw.Layer{Opacity: 0.5})
	c.ClipPath(p, true)
	c.DrawPath(p, svgdraw.DefaultStyle)
	c.RestoreTo(0)
	rd.Restore() // ignored
	assert.Empty(t, rd.layers)

	var out bytes.Buffer
	assert.NoError(t, pdf.Output(&out))
}

func TestQuadraticAsCubic(t *testing.T) {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetCompression(false)
	pdf.AddPage()
	_, h := pdf.GetPageSize()

	pather := &pdfPather{pdf: pdf}
	pather.Start(fixed.Point26_6{})
	pather.QuadBezier(fixed.P(3, 3), fixed.P(6, 0))
	pather.Stop(false)
	pdf.DrawPath("S")

	var out bytes.Buffer
	require.NoError(t, pdf.Output(&out))
	ff := func(v float64) string { return strconv.FormatFloat(v, 'f', 5, 64) }
	// control points at 2/3 of the way to the quadratic one
	expected := strings.Join([]string{ff(2), ff(h - 2), ff(4), ff(h - 2), ff(6), ff(h), "c"}, " ")
	assert.Contains(t, out.String(), expected)
}
