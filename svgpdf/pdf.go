// Implements a PDF backend to render SVG images,
// by wrapping codeberg.org/go-pdf/fpdf.
//
// fpdf has no offscreen surfaces: the content of a layer is buffered
// and replayed when the layer is restored, with the group opacity
// folded into the paint alpha. Masks and filters are not rendered.
package svgpdf

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"math"

	"codeberg.org/go-pdf/fpdf"
	"github.com/benoitkugler/svgdom/svgdom"
	"github.com/benoitkugler/svgdom/svgdraw"
	"github.com/benoitkugler/svgdom/svgpath"
	"golang.org/x/image/math/fixed"
)

// assert interface conformance
var (
	_ svgdraw.Driver  = (*Renderer)(nil)
	_ svgdraw.Filler  = (*filler)(nil)
	_ svgdraw.Stroker = (*stroker)(nil)
)

// pxToPt converts CSS pixels to PDF points.
const pxToPt = 0.75

var errEmptySize = errors.New("svgpdf: document has no size")

// op is a drawing operation, executed with the
// opacity of the enclosing layers.
type op func(pdf *fpdf.Fpdf, alpha float64)

type layer struct {
	params svgdraw.Layer
	ops    []op
}

type Renderer struct {
	// Logger defaults to slog.Default()
	Logger *slog.Logger

	pdf    *fpdf.Fpdf
	saves  []bool // true for SaveLayer
	layers []*layer

	filler  filler
	stroker stroker
}

// NewRenderer return a renderer which will
// write to the current page of `pdf`, whose unit
// should be the point.
func NewRenderer(pdf *fpdf.Fpdf) *Renderer {
	rd := &Renderer{pdf: pdf}
	rd.filler.rd = rd
	rd.stroker.rd = rd
	return rd
}

func (rd *Renderer) logger() *slog.Logger {
	if rd.Logger != nil {
		return rd.Logger
	}
	return slog.Default()
}

// Draw paints doc in the rectangle (x, y, w, h) of the
// current page.
func Draw(pdf *fpdf.Fpdf, doc *svgdom.Document, x, y, w, h float64) {
	rd := NewRenderer(pdf)
	doc.Draw(svgdraw.NewCanvas(rd, doc.TargetMatrix(x, y, w, h)))
}

// RenderSVGToPDF reads the given SVG document and writes
// a one page PDF file, sized after the document, to `output`.
func RenderSVGToPDF(svg io.Reader, output io.Writer, opts svgdom.Options) error {
	doc, err := svgdom.ReadDocumentStream(svg, opts)
	if err != nil {
		return err
	}
	w, h := doc.Width*pxToPt, doc.Height*pxToPt
	if w <= 0 || h <= 0 {
		return errEmptySize
	}
	pdf := fpdf.NewCustom(&fpdf.InitType{OrientationStr: "P", UnitStr: "pt", Size: fpdf.SizeType{Wd: w, Ht: h}})
	pdf.AddPage()
	Draw(pdf, doc, 0, 0, w, h)
	if err := pdf.Output(output); err != nil {
		return fmt.Errorf("writing PDF: %w", err)
	}
	return nil
}

// emit executes o, or buffers it in the current layer
func (rd *Renderer) emit(o op) {
	if len(rd.layers) == 0 {
		o(rd.pdf, 1)
		return
	}
	l := rd.layers[len(rd.layers)-1]
	l.ops = append(l.ops, o)
}

func beginOp(pdf *fpdf.Fpdf, _ float64) { pdf.TransformBegin() }

func endOp(pdf *fpdf.Fpdf, _ float64) { pdf.TransformEnd() }

func (rd *Renderer) Save() {
	rd.saves = append(rd.saves, false)
	rd.emit(beginOp)
}

func (rd *Renderer) SaveLayer(params svgdraw.Layer) {
	if params.Filter != nil {
		rd.logger().Warn("svgpdf: filters are not supported, drawing the unfiltered content")
	}
	rd.saves = append(rd.saves, true)
	rd.layers = append(rd.layers, &layer{params: params, ops: []op{beginOp}})
}

func (rd *Renderer) Restore() {
	if len(rd.saves) == 0 {
		return
	}
	isLayer := rd.saves[len(rd.saves)-1]
	rd.saves = rd.saves[:len(rd.saves)-1]
	if !isLayer {
		rd.emit(endOp)
		return
	}

	l := rd.layers[len(rd.layers)-1]
	rd.layers = rd.layers[:len(rd.layers)-1]
	l.ops = append(l.ops, endOp)

	if l.params.Blend == svgdraw.BlendSrcIn && len(rd.layers) != 0 {
		// the parent holds the mask content: it is replaced
		// by the masked content, drawn as is
		rd.logger().Warn("svgpdf: masks are not supported, drawing the unmasked content")
		parent := rd.layers[len(rd.layers)-1]
		parent.ops = parent.ops[:1]
	}
	opacity := clamp01(l.params.Opacity)
	for _, o := range l.ops {
		o := o
		rd.emit(func(pdf *fpdf.Fpdf, alpha float64) { o(pdf, alpha*opacity) })
	}
}

func clipOp(useNonZeroWinding bool) string {
	if useNonZeroWinding {
		return "W n"
	}
	return "W* n"
}

func (rd *Renderer) Clip(path svgpath.Path, useNonZeroWinding bool) {
	rd.emit(func(pdf *fpdf.Fpdf, _ float64) {
		if len(path) == 0 { // clip everything
			pdf.RawWriteStr("0 0 0 0 re W n")
			return
		}
		writePath(pdf, path)
		pdf.RawWriteStr(clipOp(useNonZeroWinding))
	})
}

func (rd *Renderer) SetupDrawers(willFill, willStroke bool) (svgdraw.Filler, svgdraw.Stroker) {
	var (
		f svgdraw.Filler
		s svgdraw.Stroker
	)
	if willFill {
		f = &rd.filler
	}
	if willStroke {
		s = &rd.stroker
	}
	return f, s
}

func fixedTof(a fixed.Point26_6) (float64, float64) {
	return float64(a.X) / 64, float64(a.Y) / 64
}

// pdfPather writes path commands on the page
type pdfPather struct {
	pdf *fpdf.Fpdf
	a   fixed.Point26_6 // current point
}

func (p *pdfPather) Start(a fixed.Point26_6) {
	p.pdf.MoveTo(fixedTof(a))
	p.a = a
}

func (p *pdfPather) Line(b fixed.Point26_6) {
	p.pdf.LineTo(fixedTof(b))
	p.a = b
}

// QuadBezier is written as the equivalent cubic curve.
func (p *pdfPather) QuadBezier(b fixed.Point26_6, c fixed.Point26_6) {
	ax, ay := fixedTof(p.a)
	bx, by := fixedTof(b)
	x, y := fixedTof(c)
	p.pdf.CurveBezierCubicTo(ax+2*(bx-ax)/3, ay+2*(by-ay)/3, x+2*(bx-x)/3, y+2*(by-y)/3, x, y)
	p.a = c
}

func (p *pdfPather) CubeBezier(b fixed.Point26_6, c fixed.Point26_6, d fixed.Point26_6) {
	cx0, cy0 := fixedTof(b)
	cx1, cy1 := fixedTof(c)
	x, y := fixedTof(d)
	p.pdf.CurveBezierCubicTo(cx0, cy0, cx1, cy1, x, y)
	p.a = d
}

func (p *pdfPather) Stop(closeLoop bool) {
	if closeLoop {
		p.pdf.ClosePath()
	}
}

// writePath outputs a path, given in device space
func writePath(pdf *fpdf.Fpdf, path svgpath.Path) {
	path.AddTo(&pdfPather{pdf: pdf}, svgpath.Identity)
}

// implements the path commands,
// shared by the filler and the stroker
type pather struct {
	rd   *Renderer
	path svgpath.Path

	paint   svgdraw.Pattern
	opacity float64
}

func (p *pather) Clear()                             { p.path.Clear() }
func (p *pather) Start(a fixed.Point26_6)            { p.path.Start(a) }
func (p *pather) Line(b fixed.Point26_6)             { p.path.Line(b) }
func (p *pather) QuadBezier(b, c fixed.Point26_6)    { p.path.QuadBezier(b, c) }
func (p *pather) CubeBezier(b, c, d fixed.Point26_6) { p.path.CubeBezier(b, c, d) }
func (p *pather) Stop(closeLoop bool)                { p.path.Stop(closeLoop) }

func (p *pather) SetColor(paint svgdraw.Pattern, opacity float64) {
	p.paint, p.opacity = paint, opacity
}

// snapshot returns a copy of the current path, safe to buffer
func (p *pather) snapshot() svgpath.Path {
	return append(svgpath.Path(nil), p.path...)
}

// implements the filling operation
type filler struct {
	pather
	useNonZeroWinding bool
}

func (f *filler) SetWinding(useNonZeroWinding bool) {
	f.useNonZeroWinding = useNonZeroWinding
}

func (f *filler) Draw() {
	path, paint, opacity, nonZero := f.snapshot(), f.paint, f.opacity, f.useNonZeroWinding
	f.rd.emit(func(pdf *fpdf.Fpdf, alpha float64) {
		fillPath(pdf, path, paint, opacity*alpha, nonZero)
	})
}

func fillOp(useNonZeroWinding bool) string {
	if useNonZeroWinding {
		return "f"
	}
	return "f*"
}

func fillPath(pdf *fpdf.Fpdf, path svgpath.Path, paint svgdraw.Pattern, opacity float64, useNonZeroWinding bool) {
	switch paint := paint.(type) {
	case svgdraw.PlainColor:
		pdf.SetFillColor(int(paint.R), int(paint.G), int(paint.B))
		pdf.SetAlpha(clamp01(opacity*float64(paint.A)/0xff), "")
		writePath(pdf, path)
		pdf.DrawPath(fillOp(useNonZeroWinding))
	case svgdraw.Gradient:
		bbox := path.Bounds()
		if bbox.IsEmpty() || len(paint.Stops) == 0 {
			return
		}
		pdf.TransformBegin()
		writePath(pdf, path)
		pdf.RawWriteStr(clipOp(useNonZeroWinding))
		pdf.SetAlpha(clamp01(opacity), "")
		drawGradient(pdf, paint, bbox)
		pdf.TransformEnd()
	}
}

func rgb(c color.Color) (r, g, b int) {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return int(n.R), int(n.G), int(n.B)
}

// drawGradient paints the bounding box `bbox` (in device space).
// Only the first and last stops are used.
func drawGradient(pdf *fpdf.Fpdf, g svgdraw.Gradient, bbox svgpath.Rect) {
	r1, g1, b1 := rgb(g.Stops[0].StopColor)
	r2, g2, b2 := rgb(g.Stops[len(g.Stops)-1].StopColor)
	// normalized coordinates, with the origin at the lower left corner
	norm := func(x, y float64) (float64, float64) {
		x, y = g.Matrix.Transform(x, y)
		return (x - bbox.X) / bbox.W, 1 - (y-bbox.Y)/bbox.H
	}
	switch dir := g.Direction.(type) {
	case svgdraw.Linear:
		x1, y1 := norm(dir[0], dir[1])
		x2, y2 := norm(dir[2], dir[3])
		pdf.LinearGradient(bbox.X, bbox.Y, bbox.W, bbox.H, r1, g1, b1, r2, g2, b2, x1, y1, x2, y2)
	case svgdraw.Radial:
		cx, cy := norm(dir[0], dir[1])
		fx, fy := norm(dir[2], dir[3])
		scale := math.Sqrt(math.Abs(g.Matrix.A*g.Matrix.D - g.Matrix.B*g.Matrix.C))
		r := dir[4] * scale / math.Sqrt(bbox.W*bbox.H)
		pdf.RadialGradient(bbox.X, bbox.Y, bbox.W, bbox.H, r1, g1, b1, r2, g2, b2, fx, fy, cx, cy, r)
	}
}

// implements the stroking operation
type stroker struct {
	pather
	options svgdraw.StrokeOptions
}

func (s *stroker) SetStrokeOptions(options svgdraw.StrokeOptions) {
	s.options = options
}

func (s *stroker) Draw() {
	path, paint, opacity, options := s.snapshot(), s.paint, s.opacity, s.options
	s.rd.emit(func(pdf *fpdf.Fpdf, alpha float64) {
		strokePath(pdf, path, paint, opacity*alpha, options)
	})
}

func capStyle(c svgdraw.CapMode) string {
	switch c {
	case svgdraw.RoundCap:
		return "round"
	case svgdraw.SquareCap:
		return "square"
	default:
		return "butt"
	}
}

func joinStyle(j svgdraw.JoinMode) string {
	switch j {
	case svgdraw.Round, svgdraw.Arc:
		return "round"
	case svgdraw.Bevel:
		return "bevel"
	default:
		return "miter"
	}
}

// strokePath uses the first stop of gradients as plain color
func strokePath(pdf *fpdf.Fpdf, path svgpath.Path, paint svgdraw.Pattern, opacity float64, options svgdraw.StrokeOptions) {
	var c color.Color
	switch paint := paint.(type) {
	case svgdraw.PlainColor:
		c = paint.NRGBA
	case svgdraw.Gradient:
		if len(paint.Stops) == 0 {
			return
		}
		c = paint.Stops[0].StopColor
	default:
		return
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	pdf.SetDrawColor(int(n.R), int(n.G), int(n.B))
	pdf.SetAlpha(clamp01(opacity*float64(n.A)/0xff), "")

	pdf.SetLineWidth(float64(options.LineWidth) / 64)
	pdf.SetLineCapStyle(capStyle(options.Join.TrailLineCap))
	pdf.SetLineJoinStyle(joinStyle(options.Join.LineJoin))
	if options.Join.MiterLimit > 0 {
		pdf.RawWriteStr(fmt.Sprintf("%.2f M", float64(options.Join.MiterLimit)/64))
	}
	pdf.SetDashPattern(options.Dash.Dash, options.Dash.DashOffset)
	writePath(pdf, path)
	pdf.DrawPath("S")
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
