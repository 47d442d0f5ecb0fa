// Package ephem computes apparent positions of the Sun, Moon and planets from
// mean orbital elements, and cross-checks them against JPL Horizons.
package ephem

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/litescript/ls-starmap/internal/astro"
)

// MaxCenturies bounds the usable window of the mean elements around J2000.
const MaxCenturies = 10.0

var (
	// ErrUnknownBody is returned for names that match no supported body.
	ErrUnknownBody = errors.New("unknown body")

	// ErrTimeOutOfRange is returned for instants too far from J2000 for the
	// mean elements to mean anything.
	ErrTimeOutOfRange = errors.New("time outside supported ephemeris range")
)

// Position is a geocentric (or topocentric, for the Moon) apparent position.
type Position struct {
	RAHours    float64 // Right Ascension in hours [0, 24)
	DecDeg     float64 // Declination in degrees
	DistanceAU float64 // Distance from the observer
}

// Equatorial returns the RA/Dec part of the position.
func (p Position) Equatorial() astro.Equatorial {
	return astro.Equatorial{RAHours: p.RAHours, DecDeg: p.DecDeg}
}

// PlanetPosition is a solar-system body's position plus its appearance.
type PlanetPosition struct {
	Name        string
	Position    Position
	Magnitude   float64 // Apparent visual magnitude
	Phase       float64 // Illuminated fraction [0, 1]
	AngularSize float64 // Apparent diameter in arcseconds
	PhaseAngle  float64 // Sun-body-Earth angle in degrees
	Elongation  float64 // Sun-Earth-body angle in degrees
	Converged   bool    // Kepler's equation met tolerance for every orbit used
}

// OrbitalBody is a body whose position comes from an orbit model. The
// concrete variants are Planet and Moon.
type OrbitalBody interface {
	Name() string
	NAIFID() TargetID
	position(t time.Time, obs astro.Observer) (PlanetPosition, error)
}

// PositionOf computes the body's apparent position for obs at t.
func PositionOf(b OrbitalBody, t time.Time, obs astro.Observer) (PlanetPosition, error) {
	if err := obs.Validate(); err != nil {
		return PlanetPosition{}, err
	}
	if err := checkRange(t); err != nil {
		return PlanetPosition{}, err
	}
	return b.position(t, obs)
}

func checkRange(t time.Time) error {
	T := astro.JulianCenturies(t)
	if math.Abs(T) > MaxCenturies {
		return fmt.Errorf("%w: %s is %.1f centuries from J2000", ErrTimeOutOfRange, t.UTC().Format(time.RFC3339), T)
	}
	return nil
}

// phaseFraction returns the illuminated fraction for a phase angle in degrees.
func phaseFraction(phaseAngleDeg float64) float64 {
	return (1 + math.Cos(phaseAngleDeg*math.Pi/180)) / 2
}

// triangleAngle returns the angle in degrees opposite side c in a triangle
// with sides a, b, c.
func triangleAngle(a, b, c float64) float64 {
	if a == 0 || b == 0 {
		return 0
	}
	cos := (a*a + b*b - c*c) / (2 * a * b)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi
}
