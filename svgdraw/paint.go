package svgdraw

import (
	"image/color"

	"github.com/benoitkugler/svgdom/svgpath"
)

// Pattern is either a PlainColor or a Gradient
type Pattern interface {
	isPattern()
}

func (PlainColor) isPattern() {}
func (Gradient) isPattern()   {}

// PlainColor is an uniform color.
type PlainColor struct {
	color.NRGBA
}

// NewPlainColor returns a PlainColor from the given channels.
func NewPlainColor(r, g, b, a uint8) PlainColor {
	return PlainColor{color.NRGBA{r, g, b, a}}
}

// GradientUnits is the type for gradient units
type GradientUnits byte

// SVG bounds paremater constants
const (
	ObjectBoundingBox GradientUnits = iota
	UserSpaceOnUse
)

// SpreadMethod is the type for spread parameters
type SpreadMethod byte

// SVG spread parameter constants
const (
	PadSpread SpreadMethod = iota
	ReflectSpread
	RepeatSpread
)

// GradStop represents a stop in the SVG 2.0 gradient specification
type GradStop struct {
	StopColor color.Color
	Offset    float64
	Opacity   float64
}

// Gradient holds a description of an SVG 2.0 gradient
type Gradient struct {
	Direction GradientDirecter
	Stops     []GradStop
	Bounds    svgpath.Rect
	Matrix    svgpath.Matrix2D
	Spread    SpreadMethod
	Units     GradientUnits
}

// GradientDirecter is either Linear or Radial
type GradientDirecter interface {
	isRadial() bool
}

// Linear stores x1, y1, x2, y2
type Linear [4]float64

func (Linear) isRadial() bool { return false }

// Radial stores cx, cy, fx, fy, r, fr
type Radial [6]float64

func (Radial) isRadial() bool { return true }

// resolveUnits returns a copy of the gradient, with UserSpaceOnUse
// units and a matrix mapping gradient space to device space.
// `bbox` is the bounding box of the painted path, in user space,
// and `ctm` the current user to device transform.
func (g Gradient) resolveUnits(bbox svgpath.Rect, ctm svgpath.Matrix2D) Gradient {
	out := g
	out.Stops = append([]GradStop(nil), g.Stops...)
	if g.Units == ObjectBoundingBox {
		box := svgpath.Identity.Translate(bbox.X, bbox.Y).Scale(bbox.W, bbox.H)
		out.Matrix = ctm.Mult(box).Mult(g.Matrix)
	} else {
		out.Matrix = ctm.Mult(g.Matrix)
	}
	out.Bounds = bbox
	out.Units = UserSpaceOnUse
	return out
}
