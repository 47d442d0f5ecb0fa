// Package almanac assembles per-night tables of positions and horizon events
// for the Sun, Moon, planets and catalog stars, and renders them as JSON,
// text tables, sparklines and a small ASCII sky.
package almanac

import (
	"errors"
	"fmt"
	"time"

	"github.com/litescript/ls-starmap/internal/astro"
	"github.com/litescript/ls-starmap/internal/catalog"
	"github.com/litescript/ls-starmap/internal/ephem"
)

// ErrUnknownTarget is returned when a name matches neither a body nor a star.
var ErrUnknownTarget = errors.New("unknown target")

// refinePasses is the number of hour-angle corrections applied to the
// events of moving bodies. Two keep the Moon within a few hundredths of a
// degree of the horizon altitude.
const refinePasses = 2

// Kind classifies an almanac target.
type Kind int

const (
	KindSun Kind = iota
	KindMoon
	KindPlanet
	KindStar
)

// String returns the kind name used in exports.
func (k Kind) String() string {
	switch k {
	case KindSun:
		return "sun"
	case KindMoon:
		return "moon"
	case KindPlanet:
		return "planet"
	case KindStar:
		return "star"
	default:
		return "unknown"
	}
}

// Target is something the almanac can locate: a solar-system body computed
// from ephem, or a fixed catalog star.
type Target struct {
	Name string
	Kind Kind

	star catalog.Star
}

// BodyTarget returns the target for a Sun, Moon or planet name.
func BodyTarget(name string) (Target, error) {
	info, ok := ephem.GetTargetByName(name)
	if !ok {
		return Target{}, fmt.Errorf("%w: %q", ErrUnknownTarget, name)
	}
	kind := KindPlanet
	switch info.Kind {
	case ephem.KindSun:
		kind = KindSun
	case ephem.KindMoon:
		kind = KindMoon
	}
	return Target{Name: info.Name, Kind: kind}, nil
}

// StarTarget wraps a catalog star.
func StarTarget(s catalog.Star) Target {
	return Target{Name: s.Label(), Kind: KindStar, star: s}
}

// ResolveTarget looks name up as a body first and then in cat. cat may be nil.
func ResolveTarget(name string, cat *catalog.Catalog) (Target, error) {
	if t, err := BodyTarget(name); err == nil {
		return t, nil
	}
	if cat != nil {
		if s, ok := cat.ByName(name); ok {
			return StarTarget(s), nil
		}
	}
	return Target{}, fmt.Errorf("%w: %q", ErrUnknownTarget, name)
}

// Moving reports whether the target's RA/Dec changes over a day.
func (t Target) Moving() bool {
	return t.Kind != KindStar
}

// Position returns the target's apparent position for obs at the given time.
// Stars report phase 1 and no distance.
func (t Target) Position(at time.Time, obs astro.Observer) (ephem.PlanetPosition, error) {
	if t.Kind != KindStar {
		return ephem.GetBodyPosition(t.Name, at, obs)
	}
	if err := obs.Validate(); err != nil {
		return ephem.PlanetPosition{}, err
	}
	return ephem.PlanetPosition{
		Name: t.Name,
		Position: ephem.Position{
			RAHours: t.star.RAHours,
			DecDeg:  t.star.DecDeg,
		},
		Magnitude: t.star.Magnitude,
		Phase:     1,
		Converged: true,
	}, nil
}

// Entry is one row of an almanac.
type Entry struct {
	Name       string
	Kind       Kind
	Body       ephem.PlanetPosition
	Horizontal astro.Horizontal
	SunSepDeg  float64 // Angular distance from the Sun, 0 for the Sun itself
	Events     astro.RiseSetTransit
}

// Visible reports whether the entry is above the horizon.
func (e Entry) Visible() bool {
	return e.Horizontal.Visible()
}

// Tier returns the display elevation tier.
func (e Entry) Tier() astro.ElevationTier {
	return astro.GetElevationTier(e.Horizontal.AltDeg)
}

// Almanac is the sky for one observer at one instant.
type Almanac struct {
	Time      time.Time
	Observer  astro.Observer
	LSTHours  float64
	MoonPhase ephem.LunarPhase
	Entries   []Entry
}

// Build computes the Sun, Moon and planets, followed by stars in the order
// given, for obs at t. Horizon events cover the calendar day of t in t's
// location.
func Build(t time.Time, obs astro.Observer, stars []catalog.Star) (*Almanac, error) {
	if err := obs.Validate(); err != nil {
		return nil, err
	}
	phase, err := ephem.MoonPhase(t)
	if err != nil {
		return nil, err
	}

	a := &Almanac{
		Time:      t,
		Observer:  obs,
		LSTHours:  astro.LocalSiderealTime(t, obs.LonDeg),
		MoonPhase: phase,
		Entries:   make([]Entry, 0, len(ephem.Targets)+len(stars)),
	}

	targets := make([]Target, 0, len(ephem.Targets)+len(stars))
	for _, name := range ephem.Bodies() {
		target, err := BodyTarget(name)
		if err != nil {
			return nil, err
		}
		targets = append(targets, target)
	}
	for _, s := range stars {
		targets = append(targets, StarTarget(s))
	}

	sun := astro.SunPosition(t).Equatorial
	for _, target := range targets {
		e, err := EntryFor(target, t, obs)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", target.Name, err)
		}
		if e.Kind != KindSun {
			e.SunSepDeg = astro.AngularSeparation(e.Body.Position.Equatorial(), sun)
		}
		a.Entries = append(a.Entries, e)
	}
	return a, nil
}

// EntryFor computes a single almanac row.
func EntryFor(target Target, t time.Time, obs astro.Observer) (Entry, error) {
	pos, err := target.Position(t, obs)
	if err != nil {
		return Entry{}, err
	}
	eq := pos.Position.Equatorial()

	hz, err := astro.EquatorialToHorizontal(eq, obs, t)
	if err != nil {
		return Entry{}, err
	}
	events, err := astro.CalculateRiseSetTransit(eq, obs, t)
	if err != nil {
		return Entry{}, err
	}
	if target.Moving() {
		if events, err = refineEvents(target, obs, t, events); err != nil {
			return Entry{}, err
		}
	}

	return Entry{
		Name:       target.Name,
		Kind:       target.Kind,
		Body:       pos,
		Horizontal: hz,
		Events:     events,
	}, nil
}

type eventKind int

const (
	eventRise eventKind = iota
	eventTransit
	eventSet
)

// refineEvents corrects the events of a moving body using its position at
// each estimated event time. The transit is refined first and kept on the
// calendar day of day when the body transits that day at all. The horizon
// flags are then re-evaluated at the refined transit, and rise and set are
// seeded from it, so a body that only reaches or leaves the limiting
// declination during the day is classified by where it culminates.
func refineEvents(target Target, obs astro.Observer, day time.Time, rst astro.RiseSetTransit) (astro.RiseSetTransit, error) {
	transit, err := refineEvent(target, obs, rst.Transit, eventTransit)
	if err != nil {
		return rst, err
	}
	if !astro.SameLocalDay(transit, day, day.Location()) {
		// The estimate converged on a neighbouring day's transit; try the
		// one a day toward the requested date.
		shift := 24 * time.Hour
		if transit.After(day) {
			shift = -shift
		}
		alt, err := refineEvent(target, obs, transit.Add(shift), eventTransit)
		if err != nil {
			return rst, err
		}
		if astro.SameLocalDay(alt, day, day.Location()) {
			transit = alt
		}
	}
	rst.Transit = transit

	pos, err := target.Position(transit, obs)
	if err != nil {
		return rst, err
	}
	dec := pos.Position.DecDeg
	rst.TransitAltDeg = astro.TransitAltitude(dec, obs.LatDeg)

	h0, circumpolar, never := astro.HorizonHourAngle(dec, obs.LatDeg, astro.StandardAltitude)
	rst.Circumpolar = circumpolar
	rst.NeverRises = never
	rst.Rise, rst.Set = nil, nil
	if circumpolar || never {
		return rst, nil
	}

	half := time.Duration(h0 / 15 / astro.SiderealRatio * float64(time.Hour))
	rise, err := refineEvent(target, obs, transit.Add(-half), eventRise)
	if err != nil {
		return rst, err
	}
	set, err := refineEvent(target, obs, transit.Add(half), eventSet)
	if err != nil {
		return rst, err
	}
	rst.Rise = &rise
	rst.Set = &set
	return rst, nil
}

// refineEvent applies refinePasses corrections to one event estimate.
func refineEvent(target Target, obs astro.Observer, at time.Time, kind eventKind) (time.Time, error) {
	for pass := 0; pass < refinePasses; pass++ {
		next, err := correctEvent(target, obs, at, kind)
		if err != nil {
			return at, err
		}
		at = next
	}
	return at, nil
}

func correctEvent(target Target, obs astro.Observer, at time.Time, kind eventKind) (time.Time, error) {
	pos, err := target.Position(at, obs)
	if err != nil {
		return at, err
	}

	var want float64
	if kind != eventTransit {
		h0, circumpolar, never := astro.HorizonHourAngle(pos.Position.DecDeg, obs.LatDeg, astro.StandardAltitude)
		if circumpolar || never {
			// The body stopped crossing the horizon; keep the estimate.
			return at, nil
		}
		want = h0
		if kind == eventRise {
			want = -h0
		}
	}

	ha := astro.HourAngle(astro.LocalSiderealTime(at, obs.LonDeg), pos.Position.RAHours)
	dh := astro.NormalizeSignedDegrees(want - ha)
	return at.Add(time.Duration(dh / 15 / astro.SiderealRatio * float64(time.Hour))).UTC(), nil
}

// Visible returns the entries above the horizon.
func (a *Almanac) Visible() []Entry {
	var out []Entry
	for _, e := range a.Entries {
		if e.Visible() {
			out = append(out, e)
		}
	}
	return out
}

// Find returns the entry with the given name (exact match).
func (a *Almanac) Find(name string) (Entry, bool) {
	for _, e := range a.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}
