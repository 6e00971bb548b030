package svgpath

import (
	"math"
	"testing"

	"github.com/tdewolff/test"
)

func TestRect(t *testing.T) {
	var p Path
	p.AddRect(0, 0, 10, 5, 0)
	test.String(t, p.ToSVGPath(), "M0.000,0.000 L10.000,0.000 L10.000,5.000 L0.000,5.000 Z")

	box := p.Bounds()
	test.T(t, box, Rect{0, 0, 10, 5})
}

func TestRoundRect(t *testing.T) {
	var p Path
	p.AddRoundRect(0, 0, 20, 10, 4, 2, 0)
	box := p.Bounds()
	test.That(t, math.Abs(box.W-20) < 0.05, box)
	test.That(t, math.Abs(box.H-10) < 0.05, box)

	// radius larger than half the size are clamped
	var q Path
	q.AddRoundRect(0, 0, 10, 10, 50, 50, 0)
	box = q.Bounds()
	test.That(t, math.Abs(box.W-10) < 0.05, box)

	// no radius : plain rectangle
	q.Clear()
	q.AddRoundRect(0, 0, 10, 10, 0, 3, 0)
	test.T(t, len(q), 5)
}

func TestEllipse(t *testing.T) {
	var p Path
	p.AddEllipse(50, 40, 20, 10, 0)
	test.T(t, len(p), 6) // move, 4 quarters, close
	box := p.Bounds()
	test.That(t, math.Abs(box.X-30) < 0.05, box)
	test.That(t, math.Abs(box.Y-30) < 0.05, box)
	test.That(t, math.Abs(box.W-40) < 0.05, box)
	test.That(t, math.Abs(box.H-20) < 0.05, box)

	p.Clear()
	p.AddEllipse(0, 0, 0, 10, 0)
	test.T(t, len(p), 0)
}

func TestPolyline(t *testing.T) {
	var p Path
	p.AddPolyline([]float64{0, 0, 10, 0, 10, 10, 3}, true)
	test.String(t, p.ToSVGPath(), "M0.000,0.000 L10.000,0.000 L10.000,10.000 Z")

	p.Clear()
	p.AddPolyline([]float64{1}, false)
	test.T(t, len(p), 0)
}

func TestTransformPath(t *testing.T) {
	var p Path
	p.AddLine(0, 0, 10, 0)
	q := p.Transform(Identity.Translate(5, 5).Scale(2, 2))
	test.String(t, q.ToSVGPath(), "M5.000,5.000 L25.000,5.000")
	// p is unchanged
	test.String(t, p.ToSVGPath(), "M0.000,0.000 L10.000,0.000")
}

func TestMeasure(t *testing.T) {
	var p Path
	p.AddPolyline([]float64{0, 0, 10, 0, 10, 10}, false)
	m := NewMeasure(p)
	test.Float(t, m.Length(), 20)

	pt, angle := m.PointAt(5)
	test.T(t, pt, Point{5, 0})
	test.Float(t, angle, 0)

	pt, angle = m.PointAt(15)
	test.T(t, pt, Point{10, 5})
	near(t, angle, 90)

	pt, _ = m.PointAt(100)
	test.T(t, pt, Point{10, 10})
	pt, _ = m.PointAt(-1)
	test.T(t, pt, Point{0, 0})

	test.Float(t, NewMeasure(nil).Length(), 0)
}

func TestFlatten(t *testing.T) {
	var p Path
	p.AddCircle(0, 0, 10)
	p.AddLine(20, 20, 30, 30)
	polys := p.Flatten(Identity)
	test.T(t, len(polys), 2)
	test.That(t, polys[0].Closed)
	test.T(t, len(polys[0].Points), 1+4*curveSteps)
	test.That(t, !polys[1].Closed)
}
