package ephem

import (
	"fmt"
	"math"
	"time"

	"github.com/litescript/ls-starmap/internal/astro"
)

// Planet is an OrbitalBody driven by JPL mean elements.
type Planet struct {
	model *planetModel
}

// Name implements OrbitalBody.
func (p Planet) Name() string { return p.model.name }

// NAIFID implements OrbitalBody.
func (p Planet) NAIFID() TargetID { return p.model.naif }

func (p Planet) position(t time.Time, _ astro.Observer) (PlanetPosition, error) {
	T := astro.JulianCenturies(t)
	earth, earthSol, err := heliocentric(&earthMoonBarycenter, T)
	if err != nil {
		return PlanetPosition{}, err
	}
	return p.fromEarth(T, earth, earthSol.Converged)
}

// fromEarth finishes the geocentric reduction given Earth's heliocentric
// ecliptic vector, so a batch can share one Earth solution. The geocentric
// vector is precessed to the equinox of date, the frame sidereal time and
// the Sun and Moon positions use.
func (p Planet) fromEarth(T float64, earth astro.Vec3, earthConverged bool) (PlanetPosition, error) {
	helio, sol, err := heliocentric(p.model, T)
	if err != nil {
		return PlanetPosition{}, err
	}

	geo := astro.PrecessEcliptic(helio.Sub(earth), T)
	eq, delta := astro.RADecFromVector(astro.EclipticToEquatorial(geo, astro.MeanObliquityAt(T)))

	r := helio.Norm()
	R := earth.Norm()
	phaseAngle := triangleAngle(r, delta, R)
	elongation := triangleAngle(R, delta, r)

	return PlanetPosition{
		Name: p.model.name,
		Position: Position{
			RAHours:    eq.RAHours,
			DecDeg:     eq.DecDeg,
			DistanceAU: delta,
		},
		Magnitude:   p.model.magnitude(r, delta, phaseAngle),
		Phase:       phaseFraction(phaseAngle),
		AngularSize: p.model.diameterAU1 / delta,
		PhaseAngle:  phaseAngle,
		Elongation:  elongation,
		Converged:   sol.Converged && earthConverged,
	}, nil
}

// heliocentric returns the heliocentric ecliptic (J2000) position in AU for
// T centuries past J2000.
func heliocentric(m *planetModel, T float64) (astro.Vec3, KeplerSolution, error) {
	el := m.base.at(m.rate, T)

	omega := el.LongPeri - el.LongNode // argument of perihelion
	M := astro.NormalizeSignedDegrees(el.L - el.LongPeri)

	sol, err := SolveKepler(M*math.Pi/180, el.E)
	if err != nil {
		return astro.Vec3{}, sol, fmt.Errorf("%s: %w", m.name, err)
	}

	// Position in the orbital plane, x toward perihelion
	xp := el.A * (math.Cos(sol.E) - el.E)
	yp := el.A * math.Sqrt(1-el.E*el.E) * math.Sin(sol.E)

	w := omega * math.Pi / 180
	node := el.LongNode * math.Pi / 180
	inc := el.I * math.Pi / 180

	cw, sw := math.Cos(w), math.Sin(w)
	cn, sn := math.Cos(node), math.Sin(node)
	ci, si := math.Cos(inc), math.Sin(inc)

	return astro.Vec3{
		X: (cw*cn-sw*sn*ci)*xp + (-sw*cn-cw*sn*ci)*yp,
		Y: (cw*sn+sw*cn*ci)*xp + (-sw*sn+cw*cn*ci)*yp,
		Z: (sw*si)*xp + (cw*si)*yp,
	}, sol, nil
}

// HeliocentricPosition returns a planet's heliocentric position in AU on the
// J2000 ecliptic and equinox, the vector Horizons reports for CENTER='@10'.
// It is not precessed.
func HeliocentricPosition(name string, t time.Time) (astro.Vec3, error) {
	p, err := planetByName(name)
	if err != nil {
		return astro.Vec3{}, err
	}
	if err := checkRange(t); err != nil {
		return astro.Vec3{}, err
	}
	v, _, err := heliocentric(p.model, astro.JulianCenturies(t))
	return v, err
}

// EarthHeliocentric returns the Earth-Moon barycentre's heliocentric
// position in AU, in the same J2000 frame as HeliocentricPosition. Earth is
// not a target, so this is the only way to place it on an orbit plot.
func EarthHeliocentric(t time.Time) (astro.Vec3, error) {
	if err := checkRange(t); err != nil {
		return astro.Vec3{}, err
	}
	v, _, err := heliocentric(&earthMoonBarycenter, astro.JulianCenturies(t))
	return v, err
}

// Planets returns the seven modelled planets, Mercury through Neptune.
func Planets() []Planet {
	out := make([]Planet, len(planetModels))
	for i := range planetModels {
		out[i] = Planet{model: &planetModels[i]}
	}
	return out
}

func planetByName(name string) (Planet, error) {
	info, ok := GetTargetByName(name)
	if ok && info.Kind == KindPlanet {
		for i := range planetModels {
			if planetModels[i].naif == info.NAIFID {
				return Planet{model: &planetModels[i]}, nil
			}
		}
	}
	return Planet{}, fmt.Errorf("%w: %q", ErrUnknownBody, name)
}

// GetAllPlanetPositions returns geocentric positions of Mercury through
// Neptune, in that order. The observer is validated but planets get no
// topocentric correction; their parallax is below 0.01 degrees.
func GetAllPlanetPositions(t time.Time, obs astro.Observer) ([]PlanetPosition, error) {
	if err := obs.Validate(); err != nil {
		return nil, err
	}
	if err := checkRange(t); err != nil {
		return nil, err
	}

	T := astro.JulianCenturies(t)
	earth, earthSol, err := heliocentric(&earthMoonBarycenter, T)
	if err != nil {
		return nil, err
	}

	planets := Planets()
	out := make([]PlanetPosition, 0, len(planets))
	for _, p := range planets {
		pos, err := p.fromEarth(T, earth, earthSol.Converged)
		if err != nil {
			return nil, err
		}
		out = append(out, pos)
	}
	return out, nil
}

// GetPlanetPosition returns one planet by name (case-insensitive). The
// result is identical to the matching GetAllPlanetPositions entry.
func GetPlanetPosition(name string, t time.Time, obs astro.Observer) (PlanetPosition, error) {
	p, err := planetByName(name)
	if err != nil {
		return PlanetPosition{}, err
	}
	return PositionOf(p, t, obs)
}
