package svgdom

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// ParseColor parses a color in one of the forms
// #RGB, #RRGGBB, rgb(r,g,b), rgba(r,g,b,a) or a SVG named color.
// Components of rgb() may be percentages.
func ParseColor(s string) (color.NRGBA, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return color.NRGBA{}, fmt.Errorf("empty color")
	}
	if v[0] == '#' {
		return parseHexColor(v[1:])
	}
	v = strings.ToLower(v)
	if v == "transparent" {
		return color.NRGBA{}, nil
	}
	if c, ok := colornames.Map[v]; ok {
		return color.NRGBA{c.R, c.G, c.B, c.A}, nil
	}

	var args string
	hasAlpha := false
	switch {
	case strings.HasPrefix(v, "rgba(") && strings.HasSuffix(v, ")"):
		args, hasAlpha = v[5:len(v)-1], true
	case strings.HasPrefix(v, "rgb(") && strings.HasSuffix(v, ")"):
		args = v[4 : len(v)-1]
	default:
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	comps := strings.Split(args, ",")
	if (hasAlpha && len(comps) != 4) || (!hasAlpha && len(comps) != 3) {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	var out color.NRGBA
	out.A = 0xff
	for i, ptr := range [3]*uint8{&out.R, &out.G, &out.B} {
		c, err := parseColorComponent(comps[i])
		if err != nil {
			return color.NRGBA{}, err
		}
		*ptr = c
	}
	if hasAlpha {
		a, err := ParseDouble(comps[3])
		if err != nil {
			return color.NRGBA{}, err
		}
		out.A = uint8(clamp01(a)*255 + 0.5)
	}
	return out, nil
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func parseColorComponent(v string) (uint8, error) {
	v = strings.TrimSpace(v)
	if strings.HasSuffix(v, "%") {
		f, err := ParseDouble(v[:len(v)-1])
		if err != nil {
			return 0, err
		}
		return uint8(clamp01(f/100)*255 + 0.5), nil
	}
	f, err := ParseDouble(v)
	if err != nil {
		return 0, err
	}
	if f < 0 {
		f = 0
	} else if f > 255 {
		f = 255
	}
	return uint8(f + 0.5), nil
}

func parseHexColor(x string) (color.NRGBA, error) {
	switch len(x) {
	case 3:
		var rgb [3]uint8
		for i := range rgb {
			d, err := strconv.ParseUint(x[i:i+1], 16, 8)
			if err != nil {
				return color.NRGBA{}, fmt.Errorf("invalid color #%s", x)
			}
			rgb[i] = uint8(d) | uint8(d)<<4
		}
		return color.NRGBA{rgb[0], rgb[1], rgb[2], 0xff}, nil
	case 6:
		c, err := colorful.Hex("#" + x)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid color #%s", x)
		}
		r, g, b := c.RGB255()
		return color.NRGBA{r, g, b, 0xff}, nil
	default:
		return color.NRGBA{}, fmt.Errorf("invalid color #%s", x)
	}
}

func toColorful(c color.NRGBA) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// FormatColor returns #rrggbb for opaque colors, rgba(r,g,b,a) otherwise.
func FormatColor(c color.NRGBA) string {
	if c.A == 0xff {
		return toColorful(c).Hex()
	}
	return fmt.Sprintf("rgba(%d,%d,%d,%s)", c.R, c.G, c.B, formatDouble(float64(c.A)/255))
}

// interpolateColor blends the RGB components, and the alpha channel
func interpolateColor(a, b color.NRGBA, t float64) color.NRGBA {
	r, g, bl := toColorful(a).BlendRgb(toColorful(b), t).Clamped().RGB255()
	alpha := lerp(float64(a.A), float64(b.A), t)
	return color.NRGBA{r, g, bl, uint8(alpha + 0.5)}
}
