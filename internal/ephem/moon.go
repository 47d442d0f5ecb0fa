package ephem

import (
	"math"
	"time"

	"github.com/litescript/ls-starmap/internal/astro"
)

const (
	// SynodicMonth is the mean new-moon to new-moon period in days.
	SynodicMonth = 29.530588853

	// EarthRadiusKm is the equatorial radius used for lunar distances.
	EarthRadiusKm = 6378.14

	// MoonRadiusKm is the mean lunar radius.
	MoonRadiusKm = 1737.4

	// moonEpochJD is 2000 Jan 0.0 UT, the zero point of the lunar mean elements.
	moonEpochJD = 2451543.5
)

// Moon is the OrbitalBody for Earth's Moon: a Kepler orbit from mean
// geocentric elements plus the largest periodic perturbations.
type Moon struct{}

// Name implements OrbitalBody.
func (Moon) Name() string { return "Moon" }

// NAIFID implements OrbitalBody.
func (Moon) NAIFID() TargetID { return NAIFMoon }

// lunarGeometry is the geocentric ecliptic result before the observer
// reduction.
type lunarGeometry struct {
	lonDeg     float64 // ecliptic longitude, equinox of date
	latDeg     float64
	distanceER float64 // Earth radii
	converged  bool
}

func (Moon) position(t time.Time, obs astro.Observer) (PlanetPosition, error) {
	g, err := lunarEcliptic(t)
	if err != nil {
		return PlanetPosition{}, err
	}

	eps := astro.MeanObliquity(t)
	geo := astro.EclipticToEquatorialCoords(g.lonDeg, g.latDeg, eps)
	topo := topocentricMoon(geo, g.distanceER, obs, t)

	sun := astro.SunPosition(t)
	elong := lunarElongation(g, sun.EclipticLonDeg)
	phaseAngle := 180 - elong

	distKm := g.distanceER * EarthRadiusKm
	return PlanetPosition{
		Name: "Moon",
		Position: Position{
			RAHours:    topo.RAHours,
			DecDeg:     topo.DecDeg,
			DistanceAU: astro.KmToAU(distKm),
		},
		Magnitude:   -12.73 + 0.026*math.Abs(phaseAngle) + 4e-9*math.Pow(phaseAngle, 4),
		Phase:       phaseFraction(phaseAngle),
		AngularSize: 2 * math.Atan(MoonRadiusKm/distKm) * 180 / math.Pi * 3600,
		PhaseAngle:  phaseAngle,
		Elongation:  elong,
		Converged:   g.converged,
	}, nil
}

// GetMoonPosition returns the Moon's topocentric position for obs at t.
func GetMoonPosition(t time.Time, obs astro.Observer) (PlanetPosition, error) {
	return PositionOf(Moon{}, t, obs)
}

// lunarEcliptic computes the Moon's geocentric ecliptic longitude, latitude
// and distance. Angles in degrees.
func lunarEcliptic(t time.Time) (lunarGeometry, error) {
	d := astro.JulianDate(t) - moonEpochJD

	// Mean elements of the lunar orbit
	N := 125.1228 - 0.0529538083*d // ascending node
	i := 5.1454                    // inclination
	w := 318.0634 + 0.1643573223*d // argument of perigee
	a := 60.2666                   // Earth radii
	e := 0.054900
	Mm := astro.NormalizeDegrees(115.3654 + 13.0649929509*d)

	// Sun's mean elements for the perturbation arguments
	Ms := astro.NormalizeDegrees(356.0470 + 0.9856002585*d)
	ws := 282.9404 + 4.70935e-5*d

	sol, err := SolveKepler(rad(Mm), e)
	if err != nil {
		return lunarGeometry{}, err
	}

	xv := a * (math.Cos(sol.E) - e)
	yv := a * math.Sqrt(1-e*e) * math.Sin(sol.E)
	v := math.Atan2(yv, xv)
	r := math.Hypot(xv, yv)

	vw := v + rad(w)
	n := rad(N)
	xh := r * (math.Cos(n)*math.Cos(vw) - math.Sin(n)*math.Sin(vw)*math.Cos(rad(i)))
	yh := r * (math.Sin(n)*math.Cos(vw) + math.Cos(n)*math.Sin(vw)*math.Cos(rad(i)))
	zh := r * math.Sin(vw) * math.Sin(rad(i))

	lon := deg(math.Atan2(yh, xh))
	lat := deg(math.Atan2(zh, math.Hypot(xh, yh)))

	Ls := Ms + ws
	Lm := N + w + Mm
	D := Lm - Ls // mean elongation
	F := Lm - N  // argument of latitude

	lon += -1.274*sinD(Mm-2*D) + // evection
		0.658*sinD(2*D) + // variation
		-0.186*sinD(Ms) + // yearly equation
		-0.059*sinD(2*Mm-2*D) +
		-0.057*sinD(Mm-2*D+Ms) +
		0.053*sinD(Mm+2*D) +
		0.046*sinD(2*D-Ms) +
		0.041*sinD(Mm-Ms) +
		-0.035*sinD(D) + // parallactic equation
		-0.031*sinD(Mm+Ms) +
		-0.015*sinD(2*F-2*D) +
		0.011*sinD(Mm-4*D)

	lat += -0.173*sinD(F-2*D) +
		-0.055*sinD(Mm-F-2*D) +
		-0.046*sinD(Mm+F-2*D) +
		0.033*sinD(F+2*D) +
		0.017*sinD(2*Mm+F)

	r += -0.58*cosD(Mm-2*D) - 0.46*cosD(2*D)

	return lunarGeometry{
		lonDeg:     astro.NormalizeDegrees(lon),
		latDeg:     lat,
		distanceER: r,
		converged:  sol.Converged,
	}, nil
}

// topocentricMoon shifts a geocentric lunar position by the observer's
// diurnal parallax.
func topocentricMoon(geo astro.Equatorial, distanceER float64, obs astro.Observer, t time.Time) astro.Equatorial {
	mpar := math.Asin(1 / distanceER)

	// Geocentric latitude and distance from Earth's centre (oblate Earth)
	gclat := rad(obs.LatDeg - 0.1924*sinD(2*obs.LatDeg))
	rho := 0.99833 + 0.00167*cosD(2*obs.LatDeg)

	ha := rad(astro.HourAngle(astro.LocalSiderealTime(t, obs.LonDeg), geo.RAHours))
	dec := rad(geo.DecDeg)

	dRA := mpar * rho * math.Cos(gclat) * math.Sin(ha) / math.Cos(dec)

	var dDec float64
	if math.Abs(gclat) < 1e-9 {
		dDec = mpar * rho * math.Sin(-dec) * math.Cos(ha)
	} else {
		g := math.Atan2(math.Tan(gclat), math.Cos(ha))
		dDec = mpar * rho * math.Sin(gclat) * math.Sin(g-dec) / math.Sin(g)
	}

	return astro.Equatorial{
		RAHours: astro.NormalizeHours(rad2hours(rad(geo.RADeg()) - dRA)),
		DecDeg:  deg(dec - dDec),
	}
}

// lunarElongation returns the Sun-Earth-Moon angle in degrees [0, 180].
func lunarElongation(g lunarGeometry, sunLonDeg float64) float64 {
	cos := cosD(g.latDeg) * cosD(g.lonDeg-sunLonDeg)
	return deg(math.Acos(math.Max(-1, math.Min(1, cos))))
}

// LunarPhase describes the Moon's phase at an instant.
type LunarPhase struct {
	Name         string  // e.g. "Waxing Gibbous"
	Illumination float64 // Illuminated fraction [0, 1]
	Waxing       bool
	AgeDays      float64 // Days since the last new moon, from mean motion
	LonDiffDeg   float64 // Moon minus Sun ecliptic longitude [0, 360)
}

// MoonPhase returns the Moon's phase at t. It is geocentric and does not
// depend on the observer.
func MoonPhase(t time.Time) (LunarPhase, error) {
	if err := checkRange(t); err != nil {
		return LunarPhase{}, err
	}
	g, err := lunarEcliptic(t)
	if err != nil {
		return LunarPhase{}, err
	}

	sunLon := astro.SunPosition(t).EclipticLonDeg
	elong := lunarElongation(g, sunLon)
	illum := phaseFraction(180 - elong)
	delta := astro.NormalizeDegrees(g.lonDeg - sunLon)
	waxing := delta < 180

	return LunarPhase{
		Name:         phaseName(illum, waxing),
		Illumination: illum,
		Waxing:       waxing,
		AgeDays:      delta / 360 * SynodicMonth,
		LonDiffDeg:   delta,
	}, nil
}

// phaseName returns the 8-phase name from illumination and direction.
func phaseName(illumination float64, waxing bool) string {
	switch {
	case illumination < 0.01:
		return "New Moon"
	case illumination > 0.99:
		return "Full Moon"
	case illumination >= 0.49 && illumination <= 0.51:
		if waxing {
			return "First Quarter"
		}
		return "Last Quarter"
	case illumination < 0.50:
		if waxing {
			return "Waxing Crescent"
		}
		return "Waning Crescent"
	default:
		if waxing {
			return "Waxing Gibbous"
		}
		return "Waning Gibbous"
	}
}

func rad(d float64) float64 { return d * math.Pi / 180 }

func deg(r float64) float64 { return r * 180 / math.Pi }

func rad2hours(r float64) float64 { return deg(r) / 15 }

func sinD(d float64) float64 { return math.Sin(rad(d)) }

func cosD(d float64) float64 { return math.Cos(rad(d)) }
