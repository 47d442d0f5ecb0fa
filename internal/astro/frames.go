package astro

import (
	"fmt"
	"math"
	"time"
)

// AU is the Astronomical Unit in kilometers.
const AU = 149597870.7

// Vec3 represents a 3D vector in any reference frame.
type Vec3 struct {
	X, Y, Z float64
}

// Norm returns the magnitude of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalized returns a unit vector in the same direction.
func (v Vec3) Normalized() Vec3 {
	n := v.Norm()
	if n == 0 {
		return Vec3{}
	}
	return Vec3{X: v.X / n, Y: v.Y / n, Z: v.Z / n}
}

// Scale returns the vector scaled by a factor.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Add returns the sum of two vectors.
func (v Vec3) Add(u Vec3) Vec3 {
	return Vec3{X: v.X + u.X, Y: v.Y + u.Y, Z: v.Z + u.Z}
}

// Sub returns the difference of two vectors.
func (v Vec3) Sub(u Vec3) Vec3 {
	return Vec3{X: v.X - u.X, Y: v.Y - u.Y, Z: v.Z - u.Z}
}

// Dot returns the scalar product of two vectors.
func (v Vec3) Dot(u Vec3) float64 {
	return v.X*u.X + v.Y*u.Y + v.Z*u.Z
}

// SphericalVector builds a vector from a longitude and latitude in degrees and
// a radius. It works for both ecliptic (lon/lat) and equatorial (RA/Dec)
// frames.
func SphericalVector(lonDeg, latDeg, r float64) Vec3 {
	lon := degToRad(lonDeg)
	lat := degToRad(latDeg)
	return Vec3{
		X: r * math.Cos(lat) * math.Cos(lon),
		Y: r * math.Cos(lat) * math.Sin(lon),
		Z: r * math.Sin(lat),
	}
}

// EclipticLatitude returns the ecliptic latitude in degrees for a vector.
func EclipticLatitude(v Vec3) float64 {
	r := v.Norm()
	if r == 0 {
		return 0
	}
	return radToDeg(math.Asin(clampUnit(v.Z / r)))
}

// EclipticLongitude returns the ecliptic longitude in degrees [0, 360) for a vector.
func EclipticLongitude(v Vec3) float64 {
	return NormalizeDegrees(radToDeg(math.Atan2(v.Y, v.X)))
}

// MeanObliquity returns the mean obliquity of the ecliptic in degrees.
func MeanObliquity(t time.Time) float64 {
	return MeanObliquityAt(JulianCenturies(t))
}

// MeanObliquityAt returns the mean obliquity in degrees for T Julian
// centuries since J2000.
func MeanObliquityAt(T float64) float64 {
	return 23.439291 - 0.0130042*T - 0.00000016*T*T + 0.000000504*T*T*T
}

// GeneralPrecessionAt returns the general precession in longitude in degrees
// accumulated between J2000 and T Julian centuries.
func GeneralPrecessionAt(T float64) float64 {
	return 1.396971*T + 0.0003086*T*T
}

// PrecessEcliptic carries a J2000 ecliptic vector to the mean equinox of
// date by rotating it about the ecliptic pole. The slow motion of the
// ecliptic plane itself is ignored.
func PrecessEcliptic(v Vec3, T float64) Vec3 {
	p := degToRad(GeneralPrecessionAt(T))
	c, s := math.Cos(p), math.Sin(p)
	return Vec3{
		X: v.X*c - v.Y*s,
		Y: v.X*s + v.Y*c,
		Z: v.Z,
	}
}

// EquatorialToEcliptic converts equatorial XYZ to ecliptic XYZ for an
// obliquity in degrees. Units are preserved.
func EquatorialToEcliptic(eq Vec3, epsDeg float64) Vec3 {
	// Rotation matrix around X-axis by obliquity
	cosE := math.Cos(degToRad(epsDeg))
	sinE := math.Sin(degToRad(epsDeg))

	return Vec3{
		X: eq.X,
		Y: eq.Y*cosE + eq.Z*sinE,
		Z: -eq.Y*sinE + eq.Z*cosE,
	}
}

// EclipticToEquatorial converts ecliptic XYZ to equatorial XYZ for an
// obliquity in degrees.
func EclipticToEquatorial(ecl Vec3, epsDeg float64) Vec3 {
	// Rotation matrix around X-axis by -obliquity
	cosE := math.Cos(degToRad(epsDeg))
	sinE := math.Sin(degToRad(epsDeg))

	return Vec3{
		X: ecl.X,
		Y: ecl.Y*cosE - ecl.Z*sinE,
		Z: ecl.Y*sinE + ecl.Z*cosE,
	}
}

// RADecFromVector converts an equatorial vector to RA/Dec and its length.
// A zero vector maps to RA 0, Dec 0.
func RADecFromVector(v Vec3) (Equatorial, float64) {
	r := v.Norm()
	if r == 0 {
		return Equatorial{}, 0
	}
	ra := NormalizeHours(radToDeg(math.Atan2(v.Y, v.X)) / 15)
	dec := radToDeg(math.Asin(clampUnit(v.Z / r)))
	return Equatorial{RAHours: ra, DecDeg: dec}, r
}

// VectorFromRADec is the inverse of RADecFromVector.
func VectorFromRADec(eq Equatorial, r float64) Vec3 {
	return SphericalVector(eq.RAHours*15, eq.DecDeg, r)
}

// EclipticToEquatorialCoords rotates an ecliptic longitude/latitude pair in
// degrees into RA/Dec.
func EclipticToEquatorialCoords(lonDeg, latDeg, epsDeg float64) Equatorial {
	eq, _ := RADecFromVector(EclipticToEquatorial(SphericalVector(lonDeg, latDeg, 1), epsDeg))
	return eq
}

// KmToAU converts kilometers to Astronomical Units.
func KmToAU(km float64) float64 {
	return km / AU
}

// AUToKm converts Astronomical Units to kilometers.
func AUToKm(au float64) float64 {
	return au * AU
}

// LightTimeFromAU returns the one-way light time in seconds for a distance in AU.
func LightTimeFromAU(au float64) float64 {
	// Light travels 1 AU in ~499.005 seconds
	return au * 499.005
}

// FormatLightTime formats light time in seconds to a human-readable string.
func FormatLightTime(seconds float64) string {
	if seconds < 60 {
		return fmt.Sprintf("%.1fs", seconds)
	}
	if seconds < 3600 {
		return fmt.Sprintf("%dm%ds", int(seconds/60), int(seconds)%60)
	}
	return fmt.Sprintf("%dh%dm", int(seconds/3600), (int(seconds)%3600)/60)
}
