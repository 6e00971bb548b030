package svgpath

import (
	"math"
	"testing"

	"github.com/tdewolff/test"
)

func near(t *testing.T, got, expected float64) {
	t.Helper()
	test.That(t, math.Abs(got-expected) < 1e-9, got, "!=", expected)
}

func matrixEqual(t *testing.T, got, expected Matrix2D) {
	t.Helper()
	near(t, got.A, expected.A)
	near(t, got.B, expected.B)
	near(t, got.C, expected.C)
	near(t, got.D, expected.D)
	near(t, got.E, expected.E)
	near(t, got.F, expected.F)
}

func TestMatrix(t *testing.T) {
	m := Identity.Translate(10, 5).Scale(2, 3)
	x, y := m.Transform(1, 1)
	test.Float(t, x, 12)
	test.Float(t, y, 8)

	inv := m.Invert()
	x, y = inv.Transform(12, 8)
	near(t, x, 1)
	near(t, y, 1)

	matrixEqual(t, m.Mult(inv), Identity)
	test.That(t, Matrix2D{}.Invert().IsIdentity(), "singular matrix")

	r := Identity.Rotate(math.Pi / 2)
	x, y = r.Transform(1, 0)
	near(t, x, 0)
	near(t, y, 1)
}

func TestParseTransform(t *testing.T) {
	tr, err := ParseTransform("translate(10) scale(2), rotate(90 5 5)")
	test.Error(t, err)
	test.T(t, len(tr), 3)
	test.String(t, tr[0].Type, "translate")
	test.String(t, tr.String(), "translate(10) scale(2) rotate(90 5 5)")

	expected := Identity.Translate(10, 0).Scale(2, 2).
		Translate(5, 5).Rotate(math.Pi / 2).Translate(-5, -5)
	matrixEqual(t, tr.Matrix(), expected)

	tr, err = ParseTransform("skewX(45)matrix(1 0 0 1 3 4)")
	test.Error(t, err)
	test.String(t, tr[0].Type, "skewx")
	test.String(t, tr.String(), "skewX(45) matrix(1 0 0 1 3 4)")
	matrixEqual(t, tr.Matrix(), Matrix2D{1, 0, 1, 1, 7, 4})

	for _, bad := range []string{"rotate(1 2)", "foo(1)", "scale(", "translate(1 2 3)"} {
		_, err = ParseTransform(bad)
		test.That(t, err != nil, "expected error for", bad)
	}
}

func TestNormalizeTransformOp(t *testing.T) {
	test.T(t, len(TransformOp{"translate", []float64{3}}.Normalize().Params), 2)
	test.T(t, TransformOp{"scale", []float64{3}}.Normalize().Params[1], 3.)
	test.T(t, len(TransformOp{"rotate", []float64{30}}.Normalize().Params), 3)
	test.T(t, len(TransformOp{"matrix", []float64{1, 0, 0, 1, 0, 0}}.Normalize().Params), 6)
}
