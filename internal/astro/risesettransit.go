package astro

import (
	"math"
	"time"
)

// StandardAltitude is the geometric altitude in degrees of an object's
// center at apparent rise or set. It folds in mean horizon refraction.
const StandardAltitude = -0.5667

// RiseSetTransit holds the daily horizon events of a fixed object.
type RiseSetTransit struct {
	Rise          *time.Time // nil when the object never crosses the horizon
	Set           *time.Time // nil when the object never crosses the horizon
	Transit       time.Time  // Upper meridian crossing, always set
	TransitAltDeg float64    // Geometric altitude at transit
	Circumpolar   bool       // Always above StandardAltitude
	NeverRises    bool       // Always below StandardAltitude
}

// CalculateRiseSetTransit computes the rise, upper transit and set of a fixed
// equatorial position for the calendar day containing date, evaluated in
// date's location. Returned times are UTC.
//
// Transit is the meridian crossing nearest the local midpoint of that day,
// so it falls inside the day whenever the day has one. A day shortened by a
// daylight-saving change is shorter than a sidereal day and misses the
// transit of a narrow band of right ascensions; those get the nearest
// transit, just outside the day. Rise and set sit symmetrically around the
// transit at the hour angle where the altitude equals StandardAltitude.
// Circumpolar and never-rising objects have nil Rise and Set.
func CalculateRiseSetTransit(eq Equatorial, obs Observer, date time.Time) (RiseSetTransit, error) {
	if err := obs.Validate(); err != nil {
		return RiseSetTransit{}, err
	}
	if err := eq.Validate(); err != nil {
		return RiseSetTransit{}, err
	}
	eq = eq.Normalize()

	midday := LocalMidday(date)

	// Signed sidereal hours from midday to LST == RA, converted to solar time.
	lstMid := LocalSiderealTime(midday, obs.LonDeg)
	offset := NormalizeSignedHours(eq.RAHours - lstMid)
	transit := midday.Add(hoursToDuration(offset / SiderealRatio)).UTC()

	result := RiseSetTransit{
		Transit:       transit,
		TransitAltDeg: TransitAltitude(eq.DecDeg, obs.LatDeg),
	}

	h0, circumpolar, never := HorizonHourAngle(eq.DecDeg, obs.LatDeg, StandardAltitude)
	if circumpolar || never {
		result.Circumpolar = circumpolar
		result.NeverRises = never
		return result, nil
	}

	half := hoursToDuration(h0 / 15 / SiderealRatio)

	rise := transit.Add(-half)
	set := transit.Add(half)
	result.Rise = &rise
	result.Set = &set
	return result, nil
}

// LocalMidday returns the instant halfway through the calendar day containing
// t, in t's location. It is not always 12:00 on a daylight-saving day.
func LocalMidday(t time.Time) time.Time {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	end := time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
	return start.Add(end.Sub(start) / 2)
}

// SameLocalDay reports whether a and b fall on the same calendar day in loc.
func SameLocalDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// HorizonHourAngle returns the hour angle in degrees, in [0, 180], at which
// an object at declination decDeg crosses altitude altDeg for an observer at
// latitude latDeg. When no crossing exists exactly one flag is set.
func HorizonHourAngle(decDeg, latDeg, altDeg float64) (h0 float64, circumpolar, neverRises bool) {
	lat := degToRad(latDeg)
	dec := degToRad(decDeg)
	sinH0 := math.Sin(degToRad(altDeg))

	denom := math.Cos(lat) * math.Cos(dec)
	if math.Abs(denom) < 1e-12 {
		// Observer or object at a pole: altitude does not change over the day.
		if math.Sin(dec)*math.Sin(lat) > sinH0 {
			return 0, true, false
		}
		return 0, false, true
	}

	cosH0 := (sinH0 - math.Sin(dec)*math.Sin(lat)) / denom
	switch {
	case cosH0 < -1:
		return 180, true, false
	case cosH0 > 1:
		return 0, false, true
	}
	return radToDeg(math.Acos(cosH0)), false, false
}

// TransitAltitude returns the altitude in degrees at upper culmination.
func TransitAltitude(decDeg, latDeg float64) float64 {
	return 90 - math.Abs(latDeg-decDeg)
}

// hoursToDuration converts fractional hours to a time.Duration.
func hoursToDuration(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}
