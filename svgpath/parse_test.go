package svgpath

import (
	"math"
	"testing"

	"github.com/tdewolff/test"
)

func TestParsePoints(t *testing.T) {
	var tests = []struct {
		input    string
		expected []float64
	}{
		{"", nil},
		{"1 2", []float64{1, 2}},
		{" 1,2 , 3", []float64{1, 2, 3}},
		{"1-2", []float64{1, -2}},
		{"0.5.5", []float64{0.5, 0.5}},
		{"1e2,-3.5E-1", []float64{100, -0.35}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			pts, err := ParsePoints(tt.input)
			test.Error(t, err)
			test.T(t, len(pts), len(tt.expected))
			for i := range pts {
				test.Float(t, pts[i], tt.expected[i])
			}
		})
	}

	_, err := ParsePoints("1 a")
	test.That(t, err != nil, "expected error")
}

func TestParsePathData(t *testing.T) {
	var tests = []struct {
		d        string
		expected string
	}{
		{"M10 20L30 40", "M10.000,20.000 L30.000,40.000"},
		{"m10 20l5 5z", "M10.000,20.000 L15.000,25.000 Z"},
		{"M0 0 10 0 10 10", "M0.000,0.000 L10.000,0.000 L10.000,10.000"},
		{"M0 0H10V5h-5v-5", "M0.000,0.000 L10.000,0.000 L10.000,5.000 L5.000,5.000 L5.000,0.000"},
		{"M0 0Q5 5 10 0T20 0", "M0.000,0.000 Q5.000,5.000,10.000,0.000 Q15.000,-5.000,20.000,0.000"},
		{"M0 0C0 5 10 5 10 0S20 -5 20 0", "M0.000,0.000 C0.000,5.000,10.000,5.000,10.000,0.000 C10.000,-5.000,20.000,-5.000,20.000,0.000"},
		{"M0 0S5 5 10 0", "M0.000,0.000 C0.000,0.000,5.000,5.000,10.000,0.000"},
		{"M0 0A0 5 0 0 1 10 0", "M0.000,0.000 L10.000,0.000"},
	}
	for _, tt := range tests {
		t.Run(tt.d, func(t *testing.T) {
			p, err := ParsePathData(tt.d)
			test.Error(t, err)
			test.String(t, p.ToSVGPath(), tt.expected)
		})
	}
}

func TestParsePathArc(t *testing.T) {
	// half circle from (0,0) to (20,0), flags packed without separators
	p, err := ParsePathData("M0 0a10 10 0 0120 0")
	test.Error(t, err)
	test.That(t, len(p) > 2, "arc must be approximated by cubics")
	last := p[len(p)-1].(CubicTo)
	test.Float(t, float64(last[2].X)/64, 20)
	test.Float(t, float64(last[2].Y)/64, 0)

	// sweep = 1 goes through the negative y side
	box := p.Bounds()
	test.That(t, math.Abs(box.Y+10) < 0.1, "top of the arc", box.Y)
	test.That(t, math.Abs(box.H-10) < 0.1, box.H)
}

func TestParsePathErrors(t *testing.T) {
	for _, d := range []string{"M10", "M0 0L1", "M0 0 X 1", "M0 0 A1 1 0 2 0 3 3"} {
		_, err := ParsePathData(d)
		test.That(t, err != nil, "expected error for", d)
	}

	// the path is kept up to the error
	p, err := ParsePathData("M0 0 L10 10 L5")
	test.That(t, err != nil)
	test.T(t, len(p), 2)
}
