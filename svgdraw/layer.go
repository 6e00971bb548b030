package svgdraw

import "fmt"

// BlendMode describes how a layer is composited
// on its parent when restored.
type BlendMode uint8

const (
	// BlendSrcOver paints the layer over its parent.
	BlendSrcOver BlendMode = iota
	// BlendSrcIn keeps the layer only where the parent is painted,
	// and replaces the parent content. It is used to realize masks.
	BlendSrcIn
)

func (b BlendMode) String() string {
	switch b {
	case BlendSrcOver:
		return "SrcOver"
	case BlendSrcIn:
		return "SrcIn"
	default:
		return fmt.Sprintf("<unknown BlendMode %d>", b)
	}
}

// Layer describes an offscreen drawing surface.
type Layer struct {
	Blend   BlendMode
	Opacity float64      // group opacity, applied when compositing
	Filter  *FilterChain // optional, applied to the layer content before compositing
}

// Standard filter inputs. Other values refer to the Result
// of a previous primitive.
const (
	SourceGraphic = "SourceGraphic"
	SourceAlpha   = "SourceAlpha"
)

// FilterChain is an ordered list of filter primitives.
// The output of the chain is the output of its last primitive.
// Distances are expressed in device space.
type FilterChain struct {
	Primitives []FilterPrimitive
}

// FilterPrimitive is one step of a FilterChain.
// An empty In means the result of the previous primitive
// (or SourceGraphic for the first one).
type FilterPrimitive struct {
	In, In2 string
	Result  string
	Effect  Effect
}

// Effect is one of Blur, Offset, ColorMatrix, Composite, ColorSpace
type Effect interface {
	isEffect()
}

func (Blur) isEffect()        {}
func (Offset) isEffect()      {}
func (ColorMatrix) isEffect() {}
func (Composite) isEffect()   {}
func (ColorSpace) isEffect()  {}

// EdgeMode determines how to extend the input image
// as necessary with color values so that the matrix operations
// can be applied when the kernel is positioned at or near the edge
// of the input image.
type EdgeMode uint8

const (
	EdgeDuplicate EdgeMode = iota
	EdgeWrap
	EdgeNone
)

func (e EdgeMode) String() string {
	switch e {
	case EdgeDuplicate:
		return "duplicate"
	case EdgeWrap:
		return "wrap"
	case EdgeNone:
		return "none"
	default:
		return fmt.Sprintf("<unknown EdgeMode %d>", e)
	}
}

// Blur is a gaussian blur.
type Blur struct {
	StdDevX, StdDevY float64
	Edge             EdgeMode
}

// Offset translates its input.
type Offset struct {
	Dx, Dy float64
}

// ColorMatrix applies the 4x5 matrix (row major)
// to the non premultiplied RGBA values, in [0,1].
type ColorMatrix struct {
	Matrix [20]float64
}

// CompositeOperator is the Porter-Duff operator of a Composite.
type CompositeOperator uint8

const (
	CompositeOver CompositeOperator = iota
	CompositeIn
	CompositeOut
	CompositeAtop
	CompositeXor
	CompositeArithmetic
)

// Composite combines In (source) and In2 (destination).
type Composite struct {
	Operator       CompositeOperator
	K1, K2, K3, K4 float64 // only used for CompositeArithmetic
}

// ColorInterpolation is the color space used by filters.
type ColorInterpolation uint8

const (
	SRGB ColorInterpolation = iota
	LinearRGB
)

func (c ColorInterpolation) String() string {
	if c == LinearRGB {
		return "linearRGB"
	}
	return "sRGB"
}

// ColorSpace converts its input between sRGB and linearRGB.
type ColorSpace struct {
	From, To ColorInterpolation
}
