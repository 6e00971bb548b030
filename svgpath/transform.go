package svgpath

import (
	"math"
	"strconv"
	"strings"
)

// TransformOp is one item of a `transform` attribute,
// such as rotate(45, 10, 10).
type TransformOp struct {
	Type   string // lower case : matrix, translate, scale, rotate, skewx, skewy
	Params []float64
}

// Normalize returns a copy of op where the optional parameters
// are made explicit, so that two ops of the same type always
// have the same number of parameters :
// translate(x) -> translate(x 0), scale(s) -> scale(s s),
// rotate(a) -> rotate(a 0 0)
func (op TransformOp) Normalize() TransformOp {
	params := append([]float64(nil), op.Params...)
	switch op.Type {
	case "translate":
		if len(params) == 1 {
			params = append(params, 0)
		}
	case "scale":
		if len(params) == 1 {
			params = append(params, params[0])
		}
	case "rotate":
		if len(params) == 1 {
			params = append(params, 0, 0)
		}
	}
	return TransformOp{Type: op.Type, Params: params}
}

// Apply returns m1 followed by the transformation op (in local coordinates).
func (op TransformOp) Apply(m1 Matrix2D) (Matrix2D, error) {
	points := op.Params
	ln := len(points)
	switch op.Type {
	case "rotate":
		if ln == 1 {
			m1 = m1.Rotate(points[0] * math.Pi / 180)
		} else if ln == 3 {
			m1 = m1.Translate(points[1], points[2]).
				Rotate(points[0]*math.Pi/180).
				Translate(-points[1], -points[2])
		} else {
			return m1, ErrParamMismatch
		}
	case "translate":
		if ln == 1 {
			m1 = m1.Translate(points[0], 0)
		} else if ln == 2 {
			m1 = m1.Translate(points[0], points[1])
		} else {
			return m1, ErrParamMismatch
		}
	case "skewx":
		if ln == 1 {
			m1 = m1.SkewX(points[0] * math.Pi / 180)
		} else {
			return m1, ErrParamMismatch
		}
	case "skewy":
		if ln == 1 {
			m1 = m1.SkewY(points[0] * math.Pi / 180)
		} else {
			return m1, ErrParamMismatch
		}
	case "scale":
		if ln == 1 {
			m1 = m1.Scale(points[0], points[0])
		} else if ln == 2 {
			m1 = m1.Scale(points[0], points[1])
		} else {
			return m1, ErrParamMismatch
		}
	case "matrix":
		if ln == 6 {
			m1 = m1.Mult(Matrix2D{
				A: points[0],
				B: points[1],
				C: points[2],
				D: points[3],
				E: points[4],
				F: points[5],
			})
		} else {
			return m1, ErrParamMismatch
		}
	default:
		return m1, ErrParamMismatch
	}
	return m1, nil
}

// String returns the textual form of op, such as "rotate(45 10 10)".
func (op TransformOp) String() string {
	var sb strings.Builder
	switch op.Type {
	case "skewx":
		sb.WriteString("skewX")
	case "skewy":
		sb.WriteString("skewY")
	default:
		sb.WriteString(op.Type)
	}
	sb.WriteByte('(')
	for i, p := range op.Params {
		if i != 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.FormatFloat(p, 'g', -1, 64))
	}
	sb.WriteByte(')')
	return sb.String()
}

// Transform is a list of TransformOp, applied
// from left to right.
type Transform []TransformOp

// ParseTransform parses a `transform` attribute.
// The operations parsed before an error are returned.
func ParseTransform(v string) (Transform, error) {
	var out Transform
	ts := strings.Split(v, ")")
	for _, t := range ts {
		t = strings.TrimSpace(t)
		t = strings.TrimLeft(t, ", \t\n")
		if len(t) == 0 {
			continue
		}
		d := strings.Split(t, "(")
		if len(d) != 2 || len(d[1]) < 1 {
			return out, ErrParamMismatch // badly formed transformation
		}
		points, err := ParsePoints(d[1])
		if err != nil {
			return out, err
		}
		op := TransformOp{Type: strings.ToLower(strings.TrimSpace(d[0])), Params: points}
		if _, err = op.Apply(Identity); err != nil {
			return out, err
		}
		out = append(out, op)
	}
	return out, nil
}

// Matrix returns the composition of the operations.
func (tr Transform) Matrix() Matrix2D {
	m := Identity
	for _, op := range tr {
		m, _ = op.Apply(m) // ops have been validated when parsed
	}
	return m
}

// String returns the textual form of the transform.
func (tr Transform) String() string {
	chunks := make([]string, len(tr))
	for i, op := range tr {
		chunks[i] = op.String()
	}
	return strings.Join(chunks, " ")
}
