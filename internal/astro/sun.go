package astro

import (
	"math"
	"time"
)

// Sun holds a low-precision solar position.
type Sun struct {
	Equatorial
	EclipticLonDeg float64 // Apparent ecliptic longitude in degrees
	DistanceAU     float64 // Earth-Sun distance
}

// SunPosition calculates the apparent equatorial coordinates of the Sun.
// Uses a simplified solar ephemeris based on the Astronomical Almanac.
// Accuracy: ~0.01 degrees for RA, ~0.001 degrees for Dec.
func SunPosition(t time.Time) Sun {
	// Julian centuries from J2000.0
	T := JulianCenturies(t)

	// Mean longitude of the Sun (degrees)
	L0 := NormalizeDegrees(280.46646 + 36000.76983*T + 0.0003032*T*T)

	// Mean anomaly of the Sun (degrees)
	M := NormalizeDegrees(357.52911 + 35999.05029*T - 0.0001537*T*T)
	Mrad := degToRad(M)

	// Sun's equation of center (degrees)
	C := (1.914602 - 0.004817*T - 0.000014*T*T) * math.Sin(Mrad)
	C += (0.019993 - 0.000101*T) * math.Sin(2*Mrad)
	C += 0.000289 * math.Sin(3*Mrad)

	sunLon := L0 + C
	v := degToRad(M + C)

	// Radius vector from the orbit eccentricity
	e := 0.016708634 - 0.000042037*T - 0.0000001267*T*T
	R := (1.000001018 * (1 - e*e)) / (1 + e*math.Cos(v))

	// Apparent longitude (correcting for aberration and nutation)
	omega := 125.04 - 1934.136*T
	sunLonApp := NormalizeDegrees(sunLon - 0.00569 - 0.00478*math.Sin(degToRad(omega)))

	// Corrected obliquity
	eps := MeanObliquityAt(T) + 0.00256*math.Cos(degToRad(omega))

	sunLonRad := degToRad(sunLonApp)
	epsRad := degToRad(eps)

	ra := math.Atan2(math.Cos(epsRad)*math.Sin(sunLonRad), math.Cos(sunLonRad))
	dec := math.Asin(math.Sin(epsRad) * math.Sin(sunLonRad))

	return Sun{
		Equatorial: Equatorial{
			RAHours: NormalizeHours(radToDeg(ra) / 15),
			DecDeg:  radToDeg(dec),
		},
		EclipticLonDeg: sunLonApp,
		DistanceAU:     R,
	}
}

// SunSeparation calculates the angular separation in degrees between the Sun
// and a target.
func SunSeparation(target Equatorial, t time.Time) float64 {
	return AngularSeparation(SunPosition(t).Equatorial, target)
}

// AngularSeparation calculates the angular separation between two points on
// the celestial sphere. Returns separation in degrees.
func AngularSeparation(a, b Equatorial) float64 {
	ra1Rad := degToRad(a.RADeg())
	dec1Rad := degToRad(a.DecDeg)
	ra2Rad := degToRad(b.RADeg())
	dec2Rad := degToRad(b.DecDeg)

	// Haversine formula for angular separation
	dRA := ra2Rad - ra1Rad
	dDec := dec2Rad - dec1Rad

	h := math.Sin(dDec/2)*math.Sin(dDec/2) +
		math.Cos(dec1Rad)*math.Cos(dec2Rad)*math.Sin(dRA/2)*math.Sin(dRA/2)

	// Clamp to avoid numerical errors with asin
	if h > 1 {
		h = 1
	}

	return radToDeg(2 * math.Asin(math.Sqrt(h)))
}

// SunSeparationTier categorizes sun separation for display.
type SunSeparationTier int

const (
	SunSepSafe    SunSeparationTier = iota // >= 20 degrees
	SunSepCaution                          // 10-20 degrees
	SunSepWarning                          // < 10 degrees, lost in twilight glare
)

// GetSunSeparationTier returns the tier for a given separation angle.
func GetSunSeparationTier(sepDeg float64) SunSeparationTier {
	switch {
	case sepDeg < 10:
		return SunSepWarning
	case sepDeg < 20:
		return SunSepCaution
	default:
		return SunSepSafe
	}
}
