package astro

import "math"

// ScaleMode defines how heliocentric distances map to screen space.
type ScaleMode int

const (
	// ScaleLog uses log10(r + 1), which fits Mercury through Neptune.
	ScaleLog ScaleMode = iota

	// ScaleInner is linear out to 5 AU and clamps beyond.
	ScaleInner

	// ScaleOuter is linear to 5 AU over half the radius, logarithmic beyond.
	ScaleOuter
)

// scaleModeCount is the number of scale modes, for cycling.
const scaleModeCount = 3

// Next returns the following mode, wrapping around.
func (m ScaleMode) Next() ScaleMode {
	return (m + 1) % scaleModeCount
}

// String returns the mode name.
func (m ScaleMode) String() string {
	switch m {
	case ScaleLog:
		return "Log"
	case ScaleInner:
		return "Inner"
	case ScaleOuter:
		return "Outer"
	default:
		return "unknown"
	}
}

// ProjectionConfig configures the top-down ecliptic projection.
type ProjectionConfig struct {
	Scale float64 // Zoom factor
	Mode  ScaleMode
}

// ProjectedPoint is a position on the ecliptic plane in display units.
type ProjectedPoint struct {
	X, Y float64
	R    float64 // True 3D distance in AU
	Z    float64 // Height above the ecliptic in AU
}

// ProjectEclipticTopDown projects a heliocentric ecliptic vector onto the
// ecliptic plane seen from the north. X points to the vernal equinox.
func ProjectEclipticTopDown(v Vec3, cfg ProjectionConfig) ProjectedPoint {
	rAU := math.Hypot(v.X, v.Y)
	rDisplay := ScaleRadius(rAU, cfg.Mode)
	angle := math.Atan2(v.Y, v.X)

	return ProjectedPoint{
		X: rDisplay * math.Cos(angle) * cfg.Scale,
		Y: rDisplay * math.Sin(angle) * cfg.Scale,
		R: v.Norm(),
		Z: v.Z,
	}
}

// ScaleRadius maps an in-plane distance in AU to display units.
func ScaleRadius(rAU float64, mode ScaleMode) float64 {
	switch mode {
	case ScaleInner:
		return math.Min(rAU, 5)
	case ScaleOuter:
		if rAU <= 5 {
			return rAU / 5 * 0.5
		}
		return 0.5 + math.Log10(rAU/5+1)*0.5
	default:
		return math.Log10(rAU + 1)
	}
}
