package ephem

import (
	"fmt"
	"time"

	"github.com/litescript/ls-starmap/internal/astro"
)

// SunAngularSizeAU1 is the Sun's apparent diameter in arcsec at 1 AU.
const SunAngularSizeAU1 = 1919.26

// GetEclipticPoint returns the RA/Dec of the point on the ecliptic at
// longitude lonDeg (latitude zero), rotated by the mean obliquity at t.
func GetEclipticPoint(lonDeg float64, t time.Time) astro.Equatorial {
	return astro.EclipticToEquatorialCoords(astro.NormalizeDegrees(lonDeg), 0, astro.MeanObliquity(t))
}

// EclipticPath samples the ecliptic every stepDeg degrees of longitude,
// starting at 0. A non-positive step defaults to 5 degrees.
func EclipticPath(t time.Time, stepDeg float64) []astro.Equatorial {
	if stepDeg <= 0 {
		stepDeg = 5
	}
	var pts []astro.Equatorial
	for lon := 0.0; lon < 360; lon += stepDeg {
		pts = append(pts, GetEclipticPoint(lon, t))
	}
	return pts
}

// GetSunPosition returns the Sun as a PlanetPosition so it can be listed
// next to the planets. Phase is always 1.
func GetSunPosition(t time.Time, obs astro.Observer) (PlanetPosition, error) {
	if err := obs.Validate(); err != nil {
		return PlanetPosition{}, err
	}
	if err := checkRange(t); err != nil {
		return PlanetPosition{}, err
	}

	sun := astro.SunPosition(t)
	return PlanetPosition{
		Name: "Sun",
		Position: Position{
			RAHours:    sun.RAHours,
			DecDeg:     sun.DecDeg,
			DistanceAU: sun.DistanceAU,
		},
		Magnitude:   -26.74,
		Phase:       1,
		AngularSize: SunAngularSizeAU1 / sun.DistanceAU,
		Converged:   true,
	}, nil
}

// GetBodyPosition dispatches by name to the Sun, Moon or a planet.
func GetBodyPosition(name string, t time.Time, obs astro.Observer) (PlanetPosition, error) {
	info, ok := GetTargetByName(name)
	if !ok {
		return PlanetPosition{}, fmt.Errorf("%w: %q", ErrUnknownBody, name)
	}
	switch info.Kind {
	case KindSun:
		return GetSunPosition(t, obs)
	case KindMoon:
		return GetMoonPosition(t, obs)
	default:
		return GetPlanetPosition(info.Name, t, obs)
	}
}
