// Package astro provides astronomical coordinate transformations and sky math.
//
// Every function in this package is a pure function of its arguments. Nothing
// is cached between calls, so callers may invoke them concurrently and at
// animation-frame rates without synchronization.
package astro

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// J2000 is the Julian Date of the J2000.0 epoch (2000-01-01T12:00:00 UTC).
const J2000 = 2451545.0

// SiderealRatio is the number of sidereal days per solar day
// (360.98564736629 / 360).
const SiderealRatio = 1.00273790935

// Errors returned for invalid input domains. They are always wrapped with the
// offending value, so match them with errors.Is.
var (
	ErrInvalidLatitude    = errors.New("latitude out of range [-90, 90]")
	ErrInvalidLongitude   = errors.New("longitude out of range [-180, 180]")
	ErrInvalidDeclination = errors.New("declination out of range [-90, 90]")
	ErrNotFinite          = errors.New("coordinate is not a finite number")
)

// Equatorial is a fixed position on the celestial sphere.
type Equatorial struct {
	RAHours float64 // Right Ascension in hours [0, 24)
	DecDeg  float64 // Declination in degrees [-90, 90]
}

// Normalize returns the coordinate with RA wrapped into [0, 24).
func (e Equatorial) Normalize() Equatorial {
	e.RAHours = NormalizeHours(e.RAHours)
	return e
}

// RADeg returns the right ascension in degrees.
func (e Equatorial) RADeg() float64 {
	return e.RAHours * 15
}

// Validate reports whether the declination is usable. RA is never rejected
// because it wraps modulo 24.
func (e Equatorial) Validate() error {
	if math.IsNaN(e.RAHours) || math.IsInf(e.RAHours, 0) {
		return fmt.Errorf("%w: ra=%v", ErrNotFinite, e.RAHours)
	}
	if math.IsNaN(e.DecDeg) || math.IsInf(e.DecDeg, 0) {
		return fmt.Errorf("%w: dec=%v", ErrNotFinite, e.DecDeg)
	}
	if e.DecDeg < -90 || e.DecDeg > 90 {
		return fmt.Errorf("%w: dec=%v", ErrInvalidDeclination, e.DecDeg)
	}
	return nil
}

// Observer represents a ground-based observer location.
type Observer struct {
	Name       string  // Optional name for the site
	LatDeg     float64 // Latitude in degrees (north positive)
	LonDeg     float64 // Longitude in degrees (east positive)
	ElevationM float64 // Height above sea level in meters
	Timezone   string  // IANA zone name used for display only
}

// Validate checks latitude and longitude ranges. Values are never clamped.
func (o Observer) Validate() error {
	if math.IsNaN(o.LatDeg) || math.IsInf(o.LatDeg, 0) {
		return fmt.Errorf("%w: lat=%v", ErrNotFinite, o.LatDeg)
	}
	if math.IsNaN(o.LonDeg) || math.IsInf(o.LonDeg, 0) {
		return fmt.Errorf("%w: lon=%v", ErrNotFinite, o.LonDeg)
	}
	if o.LatDeg < -90 || o.LatDeg > 90 {
		return fmt.Errorf("%w: lat=%v", ErrInvalidLatitude, o.LatDeg)
	}
	if o.LonDeg < -180 || o.LonDeg > 180 {
		return fmt.Errorf("%w: lon=%v", ErrInvalidLongitude, o.LonDeg)
	}
	return nil
}

// Horizontal is an observer-relative sky position.
type Horizontal struct {
	AltDeg float64 // Altitude in degrees (0=horizon, 90=zenith)
	AzDeg  float64 // Azimuth in degrees (0=N, 90=E, 180=S, 270=W)
}

// Visible reports whether the position is above the geometric horizon.
func (h Horizontal) Visible() bool {
	return h.AltDeg > 0
}

// EquatorialToHorizontal converts equatorial coordinates (RA/Dec) to horizontal
// coordinates (Alt/Az) for a given observer and time.
//
// Uses standard astronomical conventions:
//   - Azimuth: 0° = North, 90° = East, 180° = South, 270° = West
//   - Altitude: 0° = horizon, 90° = zenith
func EquatorialToHorizontal(eq Equatorial, obs Observer, t time.Time) (Horizontal, error) {
	if err := obs.Validate(); err != nil {
		return Horizontal{}, err
	}
	if err := eq.Validate(); err != nil {
		return Horizontal{}, err
	}

	ha := degToRad(HourAngle(LocalSiderealTime(t, obs.LonDeg), eq.RAHours))
	return horizontalFromHourAngle(ha, degToRad(eq.DecDeg), degToRad(obs.LatDeg)), nil
}

// Altitude returns the altitude in degrees of eq for the observer at time t.
func Altitude(eq Equatorial, obs Observer, t time.Time) (float64, error) {
	h, err := EquatorialToHorizontal(eq, obs, t)
	if err != nil {
		return 0, err
	}
	return h.AltDeg, nil
}

// Azimuth returns the azimuth in degrees of eq for the observer at time t.
func Azimuth(eq Equatorial, obs Observer, t time.Time) (float64, error) {
	h, err := EquatorialToHorizontal(eq, obs, t)
	if err != nil {
		return 0, err
	}
	return h.AzDeg, nil
}

// horizontalFromHourAngle does the spherical trig. All inputs in radians.
func horizontalFromHourAngle(ha, dec, lat float64) Horizontal {
	sinAlt := math.Sin(dec)*math.Sin(lat) + math.Cos(dec)*math.Cos(lat)*math.Cos(ha)
	alt := math.Asin(clampUnit(sinAlt))

	// Measured from North, increasing toward East. A positive hour angle
	// (west of the meridian) gives an azimuth in (180, 360).
	y := -math.Cos(dec) * math.Sin(ha)
	x := math.Sin(dec)*math.Cos(lat) - math.Cos(dec)*math.Sin(lat)*math.Cos(ha)
	az := NormalizeDegrees(radToDeg(math.Atan2(y, x)))

	return Horizontal{
		AltDeg: radToDeg(alt),
		AzDeg:  az,
	}
}

// HourAngle returns the hour angle in degrees, normalized to [-180, 180),
// for a local sidereal time and right ascension both given in hours.
func HourAngle(lstHours, raHours float64) float64 {
	return NormalizeSignedDegrees((lstHours - raHours) * 15)
}

// LocalSiderealTime calculates the Local Sidereal Time in hours [0, 24)
// for a given UTC time and east-positive observer longitude.
func LocalSiderealTime(t time.Time, lonDeg float64) float64 {
	gmst := GreenwichMeanSiderealTime(t)
	return NormalizeHours(gmst/15 + lonDeg/15)
}

// GreenwichMeanSiderealTime calculates GMST in degrees [0, 360) for a given
// UTC time. Uses the IAU 1982 formula based on Julian Date.
func GreenwichMeanSiderealTime(t time.Time) float64 {
	jd := JulianDate(t)

	// Julian centuries since J2000.0
	T := (jd - J2000) / 36525.0

	// GMST = 280.46061837 + 360.98564736629*(JD-2451545) + 0.000387933*T^2 - T^3/38710000
	gmst := 280.46061837 +
		360.98564736629*(jd-J2000) +
		0.000387933*T*T -
		T*T*T/38710000.0

	return NormalizeDegrees(gmst)
}

// JulianDate calculates the Julian Date for a given time.
func JulianDate(t time.Time) float64 {
	t = t.UTC()

	y := float64(t.Year())
	m := float64(t.Month())
	d := float64(t.Day())

	// Time of day as fraction
	h := float64(t.Hour())
	min := float64(t.Minute())
	sec := float64(t.Second())
	ns := float64(t.Nanosecond())

	dayFrac := (h + min/60 + sec/3600 + ns/3600e9) / 24.0

	// Adjust for January/February (treat as months 13/14 of previous year)
	if m <= 2 {
		y--
		m += 12
	}

	// Gregorian calendar correction
	A := math.Floor(y / 100)
	B := 2 - A + math.Floor(A/4)

	jd := math.Floor(365.25*(y+4716)) +
		math.Floor(30.6001*(m+1)) +
		d + dayFrac + B - 1524.5

	return jd
}

// DaysSinceJ2000 returns the (fractional) days elapsed since J2000.0.
func DaysSinceJ2000(t time.Time) float64 {
	return JulianDate(t) - J2000
}

// JulianCenturies returns Julian centuries elapsed since J2000.0.
func JulianCenturies(t time.Time) float64 {
	return DaysSinceJ2000(t) / 36525.0
}

// NormalizeHours wraps an hour value into [0, 24).
func NormalizeHours(h float64) float64 {
	h = math.Mod(h, 24)
	if h < 0 {
		h += 24
	}
	if h >= 24 {
		h = 0
	}
	return h
}

// NormalizeSignedHours wraps an hour value into [-12, 12).
func NormalizeSignedHours(h float64) float64 {
	return NormalizeHours(h+12) - 12
}

// NormalizeDegrees wraps an angle into [0, 360).
func NormalizeDegrees(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	if a >= 360 {
		a = 0
	}
	return a
}

// NormalizeSignedDegrees wraps an angle into [-180, 180).
func NormalizeSignedDegrees(a float64) float64 {
	a = NormalizeDegrees(a + 180)
	return a - 180
}

func clampUnit(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}

// degToRad converts degrees to radians.
func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// radToDeg converts radians to degrees.
func radToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
