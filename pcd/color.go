package pcd

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// DefaultHueScale maps the normalized scalar onto hues from red (0) to
// blue-violet (0.7 of the hue circle).
const DefaultHueScale = 0.7

// Color is an RGB triple with components in [0, 1].
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// Scalar selects the value to color by.
type Scalar func(Vertex) float64

// Altitude selects z.
func Altitude(v Vertex) float64 {
	return v.Z
}

// MapColors assigns a hue to every vertex from the normalized scalar t:
// hue = t*hueScale of the full circle, saturation 1 and lightness 0.5.
// A cloud with a single scalar value maps every vertex to t = 0.
// A non-positive hueScale is replaced by DefaultHueScale.
func MapColors(vs Vertices, sel Scalar, hueScale float64) []Color {
	if len(vs) == 0 {
		return nil
	}
	if sel == nil {
		sel = Altitude
	}
	if !(hueScale > 0) || math.IsInf(hueScale, 0) {
		hueScale = DefaultHueScale
	}

	min, max := math.Inf(1), math.Inf(-1)
	for _, v := range vs {
		s := sel(v)
		min = math.Min(min, s)
		max = math.Max(max, s)
	}
	// Halves keep the span finite for extreme values.
	halfSpan := max/2 - min/2

	ret := make([]Color, len(vs))
	for i, v := range vs {
		var t float64
		if halfSpan > 0 {
			t = (sel(v)/2 - min/2) / halfSpan
		}
		ret[i] = hueColor(t, hueScale)
	}
	return ret
}

func hueColor(t, hueScale float64) Color {
	if !(t > 0) {
		t = 0
	} else if t > 1 {
		t = 1
	}
	c := colorful.Hsl(t*hueScale*360, 1, 0.5).Clamped()
	return Color{R: c.R, G: c.G, B: c.B}
}
