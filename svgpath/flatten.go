package svgpath

import (
	"math"

	"golang.org/x/image/math/fixed"
)

// curveSteps is the number of segments used to flatten
// one bezier curve.
const curveSteps = 16

// Point is a point in user space.
type Point struct{ X, Y float64 }

func fromFixed(p fixed.Point26_6) Point {
	return Point{float64(p.X) / 64, float64(p.Y) / 64}
}

// Polygon is a flattened sub path.
type Polygon struct {
	Points []Point
	Closed bool
}

// flattener implements Adder by approximating curves with lines
type flattener struct {
	polys   []Polygon
	current []Point
}

func (f *flattener) last() Point {
	if len(f.current) == 0 {
		return Point{}
	}
	return f.current[len(f.current)-1]
}

func (f *flattener) Start(a fixed.Point26_6) {
	f.Stop(false)
	f.current = append(f.current, fromFixed(a))
}

func (f *flattener) Line(b fixed.Point26_6) { f.current = append(f.current, fromFixed(b)) }

func (f *flattener) QuadBezier(b, c fixed.Point26_6) {
	p0, p1, p2 := f.last(), fromFixed(b), fromFixed(c)
	for i := 1; i <= curveSteps; i++ {
		t := float64(i) / curveSteps
		u := 1 - t
		f.current = append(f.current, Point{
			u*u*p0.X + 2*u*t*p1.X + t*t*p2.X,
			u*u*p0.Y + 2*u*t*p1.Y + t*t*p2.Y,
		})
	}
}

func (f *flattener) CubeBezier(b, c, d fixed.Point26_6) {
	p0, p1, p2, p3 := f.last(), fromFixed(b), fromFixed(c), fromFixed(d)
	for i := 1; i <= curveSteps; i++ {
		t := float64(i) / curveSteps
		u := 1 - t
		f.current = append(f.current, Point{
			u*u*u*p0.X + 3*u*u*t*p1.X + 3*u*t*t*p2.X + t*t*t*p3.X,
			u*u*u*p0.Y + 3*u*u*t*p1.Y + 3*u*t*t*p2.Y + t*t*t*p3.Y,
		})
	}
}

func (f *flattener) Stop(closeLoop bool) {
	if len(f.current) == 0 {
		return
	}
	f.polys = append(f.polys, Polygon{Points: f.current, Closed: closeLoop})
	f.current = nil
}

// Flatten approximates the path, transformed by M,
// by a list of polygons.
func (p Path) Flatten(M Matrix2D) []Polygon {
	var f flattener
	p.AddTo(&f, M)
	return f.polys
}

// Measure stores the cumulated length of a flattened
// path, allowing to sample points at a given distance,
// as required by motion animations.
type Measure struct {
	points  []Point
	lengths []float64 // lengths[i] is the distance from points[0] to points[i]
}

// NewMeasure flattens the path (ignoring sub path boundaries).
func NewMeasure(p Path) *Measure {
	var m Measure
	for _, poly := range p.Flatten(Identity) {
		pts := poly.Points
		if poly.Closed && len(pts) > 0 {
			pts = append(pts, pts[0])
		}
		for _, pt := range pts {
			l := 0.
			if n := len(m.points); n != 0 {
				prev := m.points[n-1]
				l = m.lengths[n-1] + math.Hypot(pt.X-prev.X, pt.Y-prev.Y)
			}
			m.points = append(m.points, pt)
			m.lengths = append(m.lengths, l)
		}
	}
	return &m
}

// Length returns the total length of the path.
func (m *Measure) Length() float64 {
	if len(m.lengths) == 0 {
		return 0
	}
	return m.lengths[len(m.lengths)-1]
}

// PointAt returns the point at distance `dist` along the path,
// and the angle (in degrees) of the tangent at this point.
// `dist` is clamped to [0, Length()].
func (m *Measure) PointAt(dist float64) (Point, float64) {
	n := len(m.points)
	if n == 0 {
		return Point{}, 0
	}
	if n == 1 {
		return m.points[0], 0
	}
	if dist <= 0 {
		dist = 0
	}
	// find the segment [i-1, i] containing dist
	i := 1
	for i < n-1 && m.lengths[i] < dist {
		i++
	}
	a, b := m.points[i-1], m.points[i]
	segLength := m.lengths[i] - m.lengths[i-1]
	t := 1.
	if segLength > 0 {
		t = (dist - m.lengths[i-1]) / segLength
	}
	if t > 1 {
		t = 1
	}
	angle := math.Atan2(b.Y-a.Y, b.X-a.X) * 180 / math.Pi
	return Point{a.X + t*(b.X-a.X), a.Y + t*(b.Y-a.Y)}, angle
}
