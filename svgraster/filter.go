package svgraster

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/blend"
	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/convolution"
	"github.com/anthonynsimon/bild/fcolor"
	"github.com/anthonynsimon/bild/parallel"
	"github.com/anthonynsimon/bild/transform"
	"github.com/benoitkugler/svgdom/svgdraw"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// applyFilter runs the chain on the content of a layer.
// Images are premultiplied, as expected by the compositing operators.
func (rd *Renderer) applyFilter(source *image.RGBA, chain *svgdraw.FilterChain) *image.RGBA {
	results := map[string]*image.RGBA{svgdraw.SourceGraphic: source}
	last := source
	input := func(name string) *image.RGBA {
		if name == "" {
			return last
		}
		if name == svgdraw.SourceAlpha && results[name] == nil {
			results[name] = sourceAlpha(source)
		}
		if img := results[name]; img != nil {
			return img
		}
		// unknown references fall back to the previous result
		rd.logger().Warn("unknown filter input", "in", name)
		return last
	}

	for _, prim := range chain.Primitives {
		in := input(prim.In)
		var out *image.RGBA
		switch effect := prim.Effect.(type) {
		case svgdraw.Blur:
			out = blurImage(in, effect)
		case svgdraw.Offset:
			// bild moves positive dy upwards
			out = transform.Translate(in, int(math.Round(effect.Dx)), -int(math.Round(effect.Dy)))
		case svgdraw.ColorMatrix:
			out = adjust.Apply(in, colorMatrix(effect.Matrix))
		case svgdraw.ColorSpace:
			out = convertColorSpace(in, effect)
		case svgdraw.Composite:
			out = compositeImages(in, input(prim.In2), effect)
		default:
			rd.logger().Warn("unsupported filter primitive", "effect", effect)
			out = in
		}
		out = rd.fit(out)
		if prim.Result != "" {
			results[prim.Result] = out
		}
		last = out
	}
	return last
}

// fit moves img to the renderer bounds
func (rd *Renderer) fit(img *image.RGBA) *image.RGBA {
	if img.Bounds() == rd.bounds {
		return img
	}
	out := image.NewRGBA(rd.bounds)
	draw.Draw(out, rd.bounds, img, img.Bounds().Min, draw.Src)
	return out
}

func sourceAlpha(img *image.RGBA) *image.RGBA {
	return adjust.Apply(img, func(c color.RGBA) color.RGBA { return color.RGBA{A: c.A} })
}

// gaussianKernel returns nil for a null deviation.
func gaussianKernel(sigma float64, vertical bool) convolution.Matrix {
	if sigma <= 0 {
		return nil
	}
	r := int(math.Ceil(3 * sigma))
	n := 2*r + 1
	var k *convolution.Kernel
	if vertical {
		k = convolution.NewKernel(1, n)
	} else {
		k = convolution.NewKernel(n, 1)
	}
	for i := range k.Matrix {
		x := float64(i - r)
		k.Matrix[i] = math.Exp(-x * x / (2 * sigma * sigma))
	}
	return k.Normalized()
}

// blurImage applies a separable gaussian blur.
func blurImage(img *image.RGBA, b svgdraw.Blur) *image.RGBA {
	kx, ky := gaussianKernel(b.StdDevX, false), gaussianKernel(b.StdDevY, true)
	if kx == nil && ky == nil {
		return img
	}

	// the convolution extends the edges, unless wrapping is asked
	src, pad := img, 0
	if b.Edge == svgdraw.EdgeNone {
		if kx != nil {
			pad = kx.MaxX() / 2
		}
		if ky != nil && ky.MaxY()/2 > pad {
			pad = ky.MaxY() / 2
		}
		src = clone.Pad(img, pad, pad, clone.NoFill)
	}
	opts := &convolution.Options{Wrap: b.Edge == svgdraw.EdgeWrap}
	if kx != nil {
		src = convolution.Convolve(src, kx, opts)
	}
	if ky != nil {
		src = convolution.Convolve(src, ky, opts)
	}
	if pad != 0 {
		w, h := img.Bounds().Dx(), img.Bounds().Dy()
		src = transform.Crop(src, image.Rect(pad, pad, pad+w, pad+h))
	}
	return src
}

func unpremultiply(c color.RGBA) (r, g, b, a float64) {
	if c.A == 0 {
		return 0, 0, 0, 0
	}
	a = float64(c.A) / 0xff
	return float64(c.R) / 0xff / a, float64(c.G) / 0xff / a, float64(c.B) / 0xff / a, a
}

func premultiply(r, g, b, a float64) color.RGBA {
	r, g, b, a = clamp01(r), clamp01(g), clamp01(b), clamp01(a)
	return color.RGBA{
		R: uint8(r*a*0xff + 0.5),
		G: uint8(g*a*0xff + 0.5),
		B: uint8(b*a*0xff + 0.5),
		A: uint8(a*0xff + 0.5),
	}
}

// colorMatrix applies m (4x5, row major) to the
// non premultiplied components.
func colorMatrix(m [20]float64) func(color.RGBA) color.RGBA {
	return func(c color.RGBA) color.RGBA {
		r, g, b, a := unpremultiply(c)
		var out [4]float64
		for row := range out {
			l := m[5*row : 5*row+5]
			out[row] = l[0]*r + l[1]*g + l[2]*b + l[3]*a + l[4]
		}
		return premultiply(out[0], out[1], out[2], out[3])
	}
}

func convertColorSpace(img *image.RGBA, cs svgdraw.ColorSpace) *image.RGBA {
	if cs.From == cs.To {
		return img
	}
	return adjust.Apply(img, func(c color.RGBA) color.RGBA {
		if c.A == 0 {
			return c
		}
		r, g, b, a := unpremultiply(c)
		col := colorful.Color{R: r, G: g, B: b}
		if cs.To == svgdraw.LinearRGB {
			r, g, b = col.LinearRgb()
		} else {
			col = colorful.LinearRgb(r, g, b)
			r, g, b = col.R, col.G, col.B
		}
		return premultiply(r, g, b, a)
	})
}

func scaleColor(c fcolor.RGBAF64, k float64) fcolor.RGBAF64 {
	return fcolor.RGBAF64{R: c.R * k, G: c.G * k, B: c.B * k, A: c.A * k}
}

func addColor(c, d fcolor.RGBAF64) fcolor.RGBAF64 {
	return fcolor.RGBAF64{R: c.R + d.R, G: c.G + d.G, B: c.B + d.B, A: c.A + d.A}
}

// compositeImages combines in (over) with in2 (under), on
// premultiplied values.
func compositeImages(in, in2 *image.RGBA, c svgdraw.Composite) *image.RGBA {
	return blend.Blend(in2, in, func(dst, src fcolor.RGBAF64) fcolor.RGBAF64 {
		switch c.Operator {
		case svgdraw.CompositeIn:
			return scaleColor(src, dst.A)
		case svgdraw.CompositeOut:
			return scaleColor(src, 1-dst.A)
		case svgdraw.CompositeAtop:
			return addColor(scaleColor(src, dst.A), scaleColor(dst, 1-src.A))
		case svgdraw.CompositeXor:
			return addColor(scaleColor(src, 1-dst.A), scaleColor(dst, 1-src.A))
		case svgdraw.CompositeArithmetic:
			arith := func(i1, i2 float64) float64 { return c.K1*i1*i2 + c.K2*i1 + c.K3*i2 + c.K4 }
			out := fcolor.RGBAF64{
				R: arith(src.R, dst.R),
				G: arith(src.G, dst.G),
				B: arith(src.B, dst.B),
				A: clamp01(arith(src.A, dst.A)),
			}
			out.R, out.G, out.B = math.Min(out.R, out.A), math.Min(out.G, out.A), math.Min(out.B, out.A)
			return out
		default: // over
			return addColor(src, scaleColor(dst, 1-src.A))
		}
	})
}

// composite draws the content of a layer on dst, restricted to clip
// if not nil.
func composite(dst, content *image.RGBA, layer svgdraw.Layer, clip *image.Alpha) {
	opacity := clamp01(layer.Opacity)
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				i := y*dst.Stride + 4*x
				k := opacity
				if clip != nil {
					k *= float64(clip.Pix[y*clip.Stride+x]) / 0xff
				}
				s := content.Pix[i : i+4 : i+4]
				d := dst.Pix[i : i+4 : i+4]
				switch layer.Blend {
				case svgdraw.BlendSrcIn:
					// keep the layer where the parent is painted
					k *= float64(d[3]) / 0xff
					for j := range d {
						d[j] = uint8(float64(s[j])*k + 0.5)
					}
				default:
					inv := 1 - float64(s[3])*k/0xff
					for j := range d {
						d[j] = uint8(math.Min(float64(s[j])*k+float64(d[j])*inv+0.5, 0xff))
					}
				}
			}
		}
	})
}
