package ephem

import "math"

// Elements is a set of Keplerian elements. Angles are in degrees, a in AU.
type Elements struct {
	A        float64 // Semi-major axis
	E        float64 // Eccentricity
	I        float64 // Inclination
	L        float64 // Mean longitude
	LongPeri float64 // Longitude of perihelion (varpi)
	LongNode float64 // Longitude of the ascending node (Omega)
}

// at returns base + rate*T for T Julian centuries past J2000.
func (e Elements) at(rate Elements, T float64) Elements {
	return Elements{
		A:        e.A + rate.A*T,
		E:        e.E + rate.E*T,
		I:        e.I + rate.I*T,
		L:        e.L + rate.L*T,
		LongPeri: e.LongPeri + rate.LongPeri*T,
		LongNode: e.LongNode + rate.LongNode*T,
	}
}

// planetModel carries the orbit and appearance constants of one planet.
type planetModel struct {
	name        string
	naif        TargetID
	base        Elements // J2000 values
	rate        Elements // change per Julian century
	diameterAU1 float64  // apparent diameter in arcsec at 1 AU
	magnitude   func(r, delta, phaseDeg float64) float64
}

// Approximate Keplerian elements for 1800-2050 AD, J2000 mean ecliptic and
// equinox (Standish, "Keplerian Elements for Approximate Positions of the
// Major Planets", table 1).
var earthMoonBarycenter = planetModel{
	name: "EM Bary",
	naif: NAIFEarth,
	base: Elements{1.00000261, 0.01671123, -0.00001531, 100.46457166, 102.93768193, 0.0},
	rate: Elements{0.00000562, -0.00004392, -0.01294668, 35999.37244981, 0.32327364, 0.0},
}

var planetModels = []planetModel{
	{
		name:        "Mercury",
		naif:        NAIFMercury,
		base:        Elements{0.38709927, 0.20563593, 7.00497902, 252.25032350, 77.45779628, 48.33076593},
		rate:        Elements{0.00000037, 0.00001906, -0.00594749, 149472.67411175, 0.16047689, -0.12534081},
		diameterAU1: 6.72,
		magnitude: func(r, delta, i float64) float64 {
			return -0.42 + distanceModulus(r, delta) + 0.0380*i - 0.000273*i*i + 0.000002*i*i*i
		},
	},
	{
		name:        "Venus",
		naif:        NAIFVenus,
		base:        Elements{0.72333566, 0.00677672, 3.39467605, 181.97909950, 131.60246718, 76.67984255},
		rate:        Elements{0.00000390, -0.00004107, -0.00078890, 58517.81538729, 0.00268329, -0.27769418},
		diameterAU1: 16.82,
		magnitude: func(r, delta, i float64) float64 {
			return -4.40 + distanceModulus(r, delta) + 0.0009*i + 0.000239*i*i - 0.00000065*i*i*i
		},
	},
	{
		name:        "Mars",
		naif:        NAIFMars,
		base:        Elements{1.52371034, 0.09339410, 1.84969142, -4.55343205, -23.94362959, 49.55953891},
		rate:        Elements{0.00001847, 0.00007882, -0.00813131, 19140.30268499, 0.44441088, -0.29257343},
		diameterAU1: 9.36,
		magnitude: func(r, delta, i float64) float64 {
			return -1.52 + distanceModulus(r, delta) + 0.016*i
		},
	},
	{
		name:        "Jupiter",
		naif:        NAIFJupiter,
		base:        Elements{5.20288700, 0.04838624, 1.30439695, 34.39644051, 14.72847983, 100.47390909},
		rate:        Elements{-0.00011607, -0.00013253, -0.00183714, 3034.74612775, 0.21252668, 0.20469106},
		diameterAU1: 196.88,
		magnitude: func(r, delta, i float64) float64 {
			return -9.40 + distanceModulus(r, delta) + 0.005*i
		},
	},
	{
		name:        "Saturn",
		naif:        NAIFSaturn,
		base:        Elements{9.53667594, 0.05386179, 2.48599187, 49.95424423, 92.59887831, 113.66242448},
		rate:        Elements{-0.00125060, -0.00050991, 0.00193609, 1222.49362201, -0.41897216, -0.28867794},
		diameterAU1: 165.46,
		// Ring tilt terms are not modelled; the globe-only value can be off
		// by up to about a magnitude when the rings are wide open.
		magnitude: func(r, delta, i float64) float64 {
			return -8.88 + distanceModulus(r, delta)
		},
	},
	{
		name:        "Uranus",
		naif:        NAIFUranus,
		base:        Elements{19.18916464, 0.04725744, 0.77263783, 313.23810451, 170.95427630, 74.01692503},
		rate:        Elements{-0.00196176, -0.00004397, -0.00242939, 428.48202785, 0.40805281, 0.04240589},
		diameterAU1: 70.04,
		magnitude: func(r, delta, i float64) float64 {
			return -7.19 + distanceModulus(r, delta)
		},
	},
	{
		name:        "Neptune",
		naif:        NAIFNeptune,
		base:        Elements{30.06992276, 0.00859048, 1.77004347, -55.12002969, 44.96476227, 131.78422574},
		rate:        Elements{0.00026291, 0.00005105, 0.00035372, 218.45945325, -0.32241464, -0.00508664},
		diameterAU1: 67.0,
		magnitude: func(r, delta, i float64) float64 {
			return -6.87 + distanceModulus(r, delta)
		},
	},
}

func distanceModulus(r, delta float64) float64 {
	return 5 * math.Log10(r*delta)
}
