package svgpath

import (
	"errors"
	"fmt"
	"math"

	"github.com/tdewolff/parse/v2/strconv"
)

var (
	// ErrParamMismatch is returned when a command or a transform
	// is given the wrong number of arguments.
	ErrParamMismatch  = errors.New("param mismatch")
	errCommandUnknown = errors.New("unknown command")
)

func skipCommaWhitespace(b []byte) int {
	i := 0
	for i < len(b) && (b[i] == ' ' || b[i] == ',' || b[i] == '\n' || b[i] == '\r' || b[i] == '\t') {
		i++
	}
	return i
}

// ParsePoints parses a list of numbers separated by
// white space and/or commas, as found in polygons points or
// animation values.
func ParsePoints(s string) ([]float64, error) {
	b := []byte(s)
	var out []float64
	i := skipCommaWhitespace(b)
	for i < len(b) {
		f, n := strconv.ParseFloat(b[i:])
		if n == 0 {
			return out, fmt.Errorf("invalid number at %d in %q", i, s)
		}
		out = append(out, f)
		i += n
		i += skipCommaWhitespace(b[i:])
	}
	return out, nil
}

// pathCursor is used to parse SVG format path strings into a Path
type pathCursor struct {
	path       Path
	placeX     float64 // start of the current sub path
	placeY     float64
	curX, curY float64 // current point
	cntlPtX    float64 // last control point, used for S and T
	cntlPtY    float64
	lastKey    byte
	points     []float64
	inPath     bool
}

// ParsePathData compiles the `d` attribute of a path element.
// On error, the path built so far is returned: as in
// browsers, the rendering stops at the first faulty segment.
func ParsePathData(d string) (Path, error) {
	var c pathCursor
	err := c.compilePath([]byte(d))
	return c.path, err
}

// readPoints scans numbers until the next command letter.
// For arcs, flags may be packed without separators, so that
// they are read as single digits.
func (c *pathCursor) readPoints(b []byte, isArc bool) (int, error) {
	c.points = c.points[:0]
	i := skipCommaWhitespace(b)
	for i < len(b) {
		ch := b[i]
		if ch != '.' && ch != '-' && ch != '+' && (ch < '0' || ch > '9') {
			break
		}
		if k := len(c.points) % 7; isArc && (k == 3 || k == 4) {
			if ch != '0' && ch != '1' {
				return i, fmt.Errorf("invalid arc flag %q", ch)
			}
			c.points = append(c.points, float64(ch-'0'))
			i++
		} else {
			f, n := strconv.ParseFloat(b[i:])
			if n == 0 {
				return i, fmt.Errorf("invalid number at %q", b[i:])
			}
			c.points = append(c.points, f)
			i += n
		}
		i += skipCommaWhitespace(b[i:])
	}
	return i, nil
}

func (c *pathCursor) compilePath(b []byte) error {
	i := skipCommaWhitespace(b)
	for i < len(b) {
		key := b[i]
		i++
		n, err := c.readPoints(b[i:], key == 'a' || key == 'A')
		i += n
		if err != nil {
			return err
		}
		if err = c.addSeg(key); err != nil {
			return err
		}
	}
	return nil
}

// reflectControl returns the reflection of the previous control
// point if the previous command was a curve of the same family.
func (c *pathCursor) reflectControl(quad bool) (float64, float64) {
	cubics, quads := "CcSs", "QqTt"
	family := cubics
	if quad {
		family = quads
	}
	for j := 0; j < len(family); j++ {
		if c.lastKey == family[j] {
			return 2*c.curX - c.cntlPtX, 2*c.curY - c.cntlPtY
		}
	}
	return c.curX, c.curY
}

func (c *pathCursor) ensureStarted() {
	if !c.inPath {
		c.path.Start(toFixedP(c.placeX, c.placeY))
		c.curX, c.curY = c.placeX, c.placeY
		c.inPath = true
	}
}

// addSeg decodes an SVG seqment string into equivalent raster path commands saved
// in the cursor's Path
func (c *pathCursor) addSeg(key byte) error {
	l := len(c.points)
	switch key {
	case 'Z', 'z':
		if l != 0 {
			return ErrParamMismatch
		}
		if c.inPath {
			c.path.Stop(true)
		}
		c.curX, c.curY = c.placeX, c.placeY
		c.inPath = false
	case 'M', 'm':
		if l < 2 || l%2 != 0 {
			return ErrParamMismatch
		}
		if key == 'm' {
			c.points[0] += c.curX
			c.points[1] += c.curY
		}
		c.placeX, c.placeY = c.points[0], c.points[1]
		c.curX, c.curY = c.placeX, c.placeY
		c.path.Start(toFixedP(c.curX, c.curY))
		c.inPath = true
		// extra pairs are implicit line-to
		for j := 2; j < l; j += 2 {
			x, y := c.points[j], c.points[j+1]
			if key == 'm' {
				x += c.curX
				y += c.curY
			}
			c.curX, c.curY = x, y
			c.path.Line(toFixedP(x, y))
		}
	case 'L', 'l':
		if l == 0 || l%2 != 0 {
			return ErrParamMismatch
		}
		c.ensureStarted()
		for j := 0; j < l; j += 2 {
			x, y := c.points[j], c.points[j+1]
			if key == 'l' {
				x += c.curX
				y += c.curY
			}
			c.curX, c.curY = x, y
			c.path.Line(toFixedP(x, y))
		}
	case 'H', 'h':
		if l == 0 {
			return ErrParamMismatch
		}
		c.ensureStarted()
		for _, x := range c.points {
			if key == 'h' {
				x += c.curX
			}
			c.curX = x
			c.path.Line(toFixedP(c.curX, c.curY))
		}
	case 'V', 'v':
		if l == 0 {
			return ErrParamMismatch
		}
		c.ensureStarted()
		for _, y := range c.points {
			if key == 'v' {
				y += c.curY
			}
			c.curY = y
			c.path.Line(toFixedP(c.curX, c.curY))
		}
	case 'Q', 'q':
		if l == 0 || l%4 != 0 {
			return ErrParamMismatch
		}
		c.ensureStarted()
		for j := 0; j < l; j += 4 {
			pts := c.points[j : j+4]
			if key == 'q' {
				for k := 0; k < 4; k += 2 {
					pts[k] += c.curX
					pts[k+1] += c.curY
				}
			}
			c.path.QuadBezier(toFixedP(pts[0], pts[1]), toFixedP(pts[2], pts[3]))
			c.cntlPtX, c.cntlPtY = pts[0], pts[1]
			c.curX, c.curY = pts[2], pts[3]
			c.lastKey = key
		}
	case 'T', 't':
		if l == 0 || l%2 != 0 {
			return ErrParamMismatch
		}
		c.ensureStarted()
		for j := 0; j < l; j += 2 {
			x, y := c.points[j], c.points[j+1]
			if key == 't' {
				x += c.curX
				y += c.curY
			}
			cx, cy := c.reflectControl(true)
			c.path.QuadBezier(toFixedP(cx, cy), toFixedP(x, y))
			c.cntlPtX, c.cntlPtY = cx, cy
			c.curX, c.curY = x, y
			c.lastKey = key
		}
	case 'C', 'c':
		if l == 0 || l%6 != 0 {
			return ErrParamMismatch
		}
		c.ensureStarted()
		for j := 0; j < l; j += 6 {
			pts := c.points[j : j+6]
			if key == 'c' {
				for k := 0; k < 6; k += 2 {
					pts[k] += c.curX
					pts[k+1] += c.curY
				}
			}
			c.path.CubeBezier(toFixedP(pts[0], pts[1]), toFixedP(pts[2], pts[3]), toFixedP(pts[4], pts[5]))
			c.cntlPtX, c.cntlPtY = pts[2], pts[3]
			c.curX, c.curY = pts[4], pts[5]
			c.lastKey = key
		}
	case 'S', 's':
		if l == 0 || l%4 != 0 {
			return ErrParamMismatch
		}
		c.ensureStarted()
		for j := 0; j < l; j += 4 {
			pts := c.points[j : j+4]
			if key == 's' {
				for k := 0; k < 4; k += 2 {
					pts[k] += c.curX
					pts[k+1] += c.curY
				}
			}
			cx, cy := c.reflectControl(false)
			c.path.CubeBezier(toFixedP(cx, cy), toFixedP(pts[0], pts[1]), toFixedP(pts[2], pts[3]))
			c.cntlPtX, c.cntlPtY = pts[0], pts[1]
			c.curX, c.curY = pts[2], pts[3]
			c.lastKey = key
		}
	case 'A', 'a':
		if l == 0 || l%7 != 0 {
			return ErrParamMismatch
		}
		c.ensureStarted()
		for j := 0; j < l; j += 7 {
			pts := c.points[j : j+7]
			if key == 'a' {
				pts[5] += c.curX
				pts[6] += c.curY
			}
			c.addArc(pts)
		}
	default:
		return fmt.Errorf("%w: %q", errCommandUnknown, key)
	}
	if key != 'Q' && key != 'q' && key != 'T' && key != 't' &&
		key != 'C' && key != 'c' && key != 'S' && key != 's' {
		c.lastKey = key
	}
	return nil
}

// addArc handles the arc command, degenerating to a line
// when a radius is zero.
func (c *pathCursor) addArc(pts []float64) {
	rx, ry := math.Abs(pts[0]), math.Abs(pts[1])
	if pts[5] == c.curX && pts[6] == c.curY {
		return
	}
	if rx == 0 || ry == 0 {
		c.curX, c.curY = pts[5], pts[6]
		c.path.Line(toFixedP(c.curX, c.curY))
		return
	}
	cx, cy := findEllipseCenter(&rx, &ry, pts[2]*math.Pi/180, c.curX, c.curY,
		pts[5], pts[6], pts[4] == 0, pts[3] == 0)
	pts[0], pts[1] = rx, ry
	c.curX, c.curY = c.path.addArc(pts, cx, cy, c.curX, c.curY)
}
