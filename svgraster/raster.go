// Implements a raster backend to render SVG images,
// by wrapping rasterx.
// Clips are kept as alpha masks and layers as full size
// images, composited when restored.
package svgraster

import (
	"image"
	"image/color"
	"io"
	"log/slog"
	"math"

	"github.com/benoitkugler/svgdom/svgdom"
	"github.com/benoitkugler/svgdom/svgdraw"
	"github.com/benoitkugler/svgdom/svgpath"
	"github.com/srwiley/rasterx"
)

var _ svgdraw.Driver = (*Renderer)(nil) // assert interface conformance

type state struct {
	clip  *image.Alpha   // nil means no clipping
	layer *svgdraw.Layer // nil for a plain Save
}

// Renderer draws on an image.RGBA of fixed size.
type Renderer struct {
	// Logger defaults to slog.Default()
	Logger *slog.Logger

	bounds  image.Rectangle
	targets []*image.RGBA // targets[0] is the output image
	states  []state
	clip    *image.Alpha

	filler *filler // we use separated instances
	dasher *dasher
}

// NewRenderer returns a renderer drawing on a transparent
// image of the given size.
func NewRenderer(width, height int) *Renderer {
	rd := &Renderer{bounds: image.Rect(0, 0, width, height)}
	rd.targets = []*image.RGBA{image.NewRGBA(rd.bounds)}

	fs := rasterx.NewScannerGV(width, height, rd.targets[0], rd.bounds)
	ds := rasterx.NewScannerGV(width, height, rd.targets[0], rd.bounds)
	rd.filler = &filler{Filler: rasterx.NewFiller(width, height, fs), scanner: fs, rd: rd}
	rd.dasher = &dasher{Dasher: rasterx.NewDasher(width, height, ds), scanner: ds, rd: rd}
	return rd
}

// Image returns the output image.
func (rd *Renderer) Image() *image.RGBA { return rd.targets[0] }

func (rd *Renderer) target() *image.RGBA { return rd.targets[len(rd.targets)-1] }

func (rd *Renderer) logger() *slog.Logger {
	if rd.Logger != nil {
		return rd.Logger
	}
	return slog.Default()
}

// Rasterize draws the document, scaled to fit an image of
// size width x height.
func Rasterize(doc *svgdom.Document, width, height int) *image.RGBA {
	rd := NewRenderer(width, height)
	doc.Draw(svgdraw.NewCanvas(rd, doc.TargetMatrix(0, 0, float64(width), float64(height))))
	return rd.Image()
}

// RasterSVGToImage parses an SVG document and renders it
// at its natural size.
func RasterSVGToImage(svg io.Reader, opts svgdom.Options) (*image.RGBA, error) {
	doc, err := svgdom.ReadDocumentStream(svg, opts)
	if err != nil {
		return nil, err
	}
	w, h := int(math.Ceil(doc.Width)), int(math.Ceil(doc.Height))
	return Rasterize(doc, w, h), nil
}

func (rd *Renderer) SetupDrawers(willFill, willStroke bool) (svgdraw.Filler, svgdraw.Stroker) {
	var (
		f svgdraw.Filler
		s svgdraw.Stroker
	)
	if willFill {
		rd.filler.scanner.Dest = rd.target()
		f = rd.filler
	}
	if willStroke {
		rd.dasher.scanner.Dest = rd.target()
		s = rd.dasher
	}
	return f, s
}

func (rd *Renderer) Save() {
	rd.states = append(rd.states, state{clip: rd.clip})
}

func (rd *Renderer) SaveLayer(layer svgdraw.Layer) {
	rd.states = append(rd.states, state{clip: rd.clip, layer: &layer})
	rd.targets = append(rd.targets, image.NewRGBA(rd.bounds))
}

func (rd *Renderer) Restore() {
	if len(rd.states) == 0 {
		return
	}
	st := rd.states[len(rd.states)-1]
	rd.states = rd.states[:len(rd.states)-1]
	rd.clip = st.clip
	if st.layer == nil {
		return
	}

	content := rd.target()
	rd.targets = rd.targets[:len(rd.targets)-1]
	if st.layer.Filter != nil {
		content = rd.applyFilter(content, st.layer.Filter)
	}
	// the filter may spread the content out of the clip
	composite(rd.target(), content, *st.layer, st.clip)
}

// Clip rasterizes the path into an alpha mask, and
// intersects it with the current one.
// The even-odd rule is not supported by the scanner.
func (rd *Renderer) Clip(path svgpath.Path, useNonZeroWinding bool) {
	mask := image.NewAlpha(rd.bounds)
	w, h := rd.bounds.Dx(), rd.bounds.Dy()
	scanner := rasterx.NewScannerGV(w, h, mask, rd.bounds)
	f := rasterx.NewFiller(w, h, scanner)
	f.SetWinding(useNonZeroWinding)
	f.SetColor(color.Opaque)
	path.AddTo(f, svgpath.Identity)
	f.Draw()

	if rd.clip != nil {
		for i, a := range rd.clip.Pix {
			mask.Pix[i] = uint8(uint16(mask.Pix[i]) * uint16(a) / 0xff)
		}
	}
	rd.clip = mask
}

// clipSource restricts the paint of s to the current clip
func (rd *Renderer) clipSource(s *rasterx.ScannerGV) {
	if rd.clip != nil {
		s.Source = clippedImage{Image: s.Source, clip: rd.clip}
	}
}

type clippedImage struct {
	image.Image
	clip *image.Alpha
}

func (c clippedImage) At(x, y int) color.Color {
	k := uint32(c.clip.AlphaAt(x, y).A)
	if k == 0 {
		return color.Transparent
	}
	r, g, b, a := c.Image.At(x, y).RGBA()
	return color.RGBA64{uint16(r * k / 0xff), uint16(g * k / 0xff), uint16(b * k / 0xff), uint16(a * k / 0xff)}
}

type filler struct {
	*rasterx.Filler
	scanner *rasterx.ScannerGV
	rd      *Renderer
}

func (f *filler) SetColor(color svgdraw.Pattern, opacity float64) {
	f.scanner.SetColor(colorFromPattern(color, opacity))
}

func (f *filler) Draw() {
	f.rd.clipSource(f.scanner)
	f.Filler.Draw()
}

type dasher struct {
	*rasterx.Dasher
	scanner *rasterx.ScannerGV
	rd      *Renderer
}

func (d *dasher) SetColor(color svgdraw.Pattern, opacity float64) {
	d.scanner.SetColor(colorFromPattern(color, opacity))
}

func (d *dasher) Draw() {
	d.rd.clipSource(d.scanner)
	d.Dasher.Draw()
}

var (
	joinToJoin = [...]rasterx.JoinMode{
		svgdraw.Round:     rasterx.Round,
		svgdraw.Bevel:     rasterx.Bevel,
		svgdraw.Miter:     rasterx.Miter,
		svgdraw.MiterClip: rasterx.MiterClip,
		svgdraw.Arc:       rasterx.Arc,
		svgdraw.ArcClip:   rasterx.ArcClip,
	}

	capToFunc = [...]rasterx.CapFunc{
		svgdraw.NilCap:       nil,
		svgdraw.ButtCap:      rasterx.ButtCap,
		svgdraw.SquareCap:    rasterx.SquareCap,
		svgdraw.RoundCap:     rasterx.RoundCap,
		svgdraw.CubicCap:     rasterx.CubicCap,
		svgdraw.QuadraticCap: rasterx.QuadraticCap,
	}

	gapToFunc = [...]rasterx.GapFunc{
		svgdraw.NilGap:       nil,
		svgdraw.FlatGap:      rasterx.FlatGap,
		svgdraw.RoundGap:     rasterx.RoundGap,
		svgdraw.CubicGap:     rasterx.CubicGap,
		svgdraw.QuadraticGap: rasterx.QuadraticGap,
	}
)

func (d *dasher) SetStrokeOptions(options svgdraw.StrokeOptions) {
	d.SetStroke(
		options.LineWidth, options.Join.MiterLimit, capToFunc[options.Join.LeadLineCap],
		capToFunc[options.Join.TrailLineCap], gapToFunc[options.Join.LineGap],
		joinToJoin[options.Join.LineJoin], options.Dash.Dash, options.Dash.DashOffset,
	)
}

// toRasterxGradient maps the device space gradient
// to the bounding box mode of rasterx, with a unit box,
// so that the full matrix is inverted for each pixel.
func toRasterxGradient(grad svgdraw.Gradient) rasterx.Gradient {
	var (
		points   [5]float64
		isRadial bool
	)
	switch dir := grad.Direction.(type) {
	case svgdraw.Linear:
		points[0], points[1], points[2], points[3] = dir[0], dir[1], dir[2], dir[3]
	case svgdraw.Radial:
		points[0], points[1], points[2], points[3], points[4] = dir[0], dir[1], dir[2], dir[3], dir[4] // in rasterx fr is ignored
		isRadial = true
	}
	stops := make([]rasterx.GradStop, len(grad.Stops))
	for i := range grad.Stops {
		stops[i] = rasterx.GradStop(grad.Stops[i])
	}
	out := rasterx.Gradient{
		Points:   points,
		Stops:    stops,
		Matrix:   rasterx.Matrix2D(grad.Matrix),
		Spread:   rasterx.SpreadMethod(grad.Spread),
		Units:    rasterx.ObjectBoundingBox,
		IsRadial: isRadial,
	}
	out.Bounds.W, out.Bounds.H = 1, 1
	return out
}

// colorFromPattern returns a color or a rasterx.ColorFunc
func colorFromPattern(pattern svgdraw.Pattern, opacity float64) interface{} {
	switch pattern := pattern.(type) {
	case svgdraw.PlainColor:
		c := pattern.NRGBA
		c.A = uint8(float64(c.A)*clamp01(opacity) + 0.5)
		return c
	case svgdraw.Gradient:
		grad := toRasterxGradient(pattern)
		return grad.GetColorFunction(clamp01(opacity))
	}
	return color.Transparent
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
