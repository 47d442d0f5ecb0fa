package ephem

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/litescript/ls-starmap/internal/astro"
)

var greenwich = astro.Observer{Name: "Greenwich", LatDeg: 51.4769, LonDeg: -0.0005}

func TestGetAllPlanetPositions_AllSeven(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	positions, err := GetAllPlanetPositions(at, greenwich)
	if err != nil {
		t.Fatalf("GetAllPlanetPositions() error: %v", err)
	}

	want := []string{"Mercury", "Venus", "Mars", "Jupiter", "Saturn", "Uranus", "Neptune"}
	var got []string
	for _, p := range positions {
		got = append(got, p.Name)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("planet order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, PlanetNames()); diff != "" {
		t.Errorf("PlanetNames mismatch (-want +got):\n%s", diff)
	}
}

func TestGetAllPlanetPositions_Ranges(t *testing.T) {
	start := time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC)

	// Every 97 days for a century covers all synodic configurations
	for at := start; at.Year() < 2050; at = at.Add(97 * 24 * time.Hour) {
		positions, err := GetAllPlanetPositions(at, greenwich)
		if err != nil {
			t.Fatalf("%v: %v", at, err)
		}
		for _, p := range positions {
			if math.IsNaN(p.Magnitude) || math.IsInf(p.Magnitude, 0) {
				t.Errorf("%v %s: magnitude not finite: %v", at, p.Name, p.Magnitude)
			}
			if p.Position.RAHours < 0 || p.Position.RAHours >= 24 {
				t.Errorf("%v %s: RA out of range: %v", at, p.Name, p.Position.RAHours)
			}
			if p.Position.DecDeg < -32 || p.Position.DecDeg > 32 {
				t.Errorf("%v %s: declination %v far from the ecliptic", at, p.Name, p.Position.DecDeg)
			}
			if p.Phase < 0 || p.Phase > 1 {
				t.Errorf("%v %s: phase out of range: %v", at, p.Name, p.Phase)
			}
			if p.Position.DistanceAU <= 0 || p.AngularSize <= 0 {
				t.Errorf("%v %s: non-positive distance or size: %+v", at, p.Name, p)
			}
			if !p.Converged {
				t.Errorf("%v %s: Kepler did not converge", at, p.Name)
			}
		}

		// Inferior planets never stray far from the Sun
		if e := positions[0].Elongation; e > 28.5 {
			t.Errorf("%v: Mercury elongation %v > 28.5", at, e)
		}
		if e := positions[1].Elongation; e > 48 {
			t.Errorf("%v: Venus elongation %v > 48", at, e)
		}
	}
}

func TestGetAllPlanetPositions_KnownValues(t *testing.T) {
	// 2024-01-01 00:00 UTC, mean equinox of date. Reference values agree
	// with JPL Horizons apparent positions to a few arcminutes.
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		want Position
	}{
		{"Mars", Position{RAHours: 17.8040, DecDeg: -23.9561, DistanceAU: 2.4238}},
		{"Jupiter", Position{RAHours: 2.2412, DecDeg: 12.2363, DistanceAU: 4.4810}},
		{"Saturn", Position{RAHours: 22.3897, DecDeg: -11.8136, DistanceAU: 10.2844}},
		{"Neptune", Position{RAHours: 23.7314, DecDeg: -3.0925, DistanceAU: 30.1356}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GetPlanetPosition(tt.name, at, greenwich)
			if err != nil {
				t.Fatalf("GetPlanetPosition() error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got.Position, cmpopts.EquateApprox(0, 0.001)); diff != "" {
				t.Errorf("position mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGetPlanetPosition_MatchesBatch(t *testing.T) {
	at := time.Date(2031, 7, 19, 3, 30, 0, 0, time.UTC)

	all, err := GetAllPlanetPositions(at, greenwich)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range all {
		got, err := GetPlanetPosition(want.Name, at, greenwich)
		if err != nil {
			t.Fatalf("GetPlanetPosition(%q) error: %v", want.Name, err)
		}
		if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
			t.Errorf("%s mismatch (-batch +single):\n%s", want.Name, diff)
		}
	}
}

func TestGetPlanetPosition_CaseInsensitive(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	want, _ := GetPlanetPosition("Mars", at, greenwich)

	for _, name := range []string{"mars", "MARS", " Mars ", "mAr"} {
		got, err := GetPlanetPosition(name, at, greenwich)
		if err != nil {
			t.Errorf("GetPlanetPosition(%q) error: %v", name, err)
			continue
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("GetPlanetPosition(%q) mismatch (-want +got):\n%s", name, diff)
		}
	}
}

func TestGetPlanetPosition_Errors(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		body    string
		at      time.Time
		obs     astro.Observer
		wantErr error
	}{
		{"earth is not a target", "Earth", at, greenwich, ErrUnknownBody},
		{"pluto", "Pluto", at, greenwich, ErrUnknownBody},
		{"empty", "", at, greenwich, ErrUnknownBody},
		{"moon is not a planet", "Moon", at, greenwich, ErrUnknownBody},
		{"far past", "Mars", time.Date(900, 1, 1, 0, 0, 0, 0, time.UTC), greenwich, ErrTimeOutOfRange},
		{"far future", "Mars", time.Date(3100, 1, 1, 0, 0, 0, 0, time.UTC), greenwich, ErrTimeOutOfRange},
		{"bad observer", "Mars", at, astro.Observer{LatDeg: 95}, astro.ErrInvalidLatitude},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GetPlanetPosition(tt.body, tt.at, tt.obs)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := GetAllPlanetPositions(time.Date(900, 1, 1, 0, 0, 0, 0, time.UTC), greenwich); !errors.Is(err, ErrTimeOutOfRange) {
		t.Errorf("GetAllPlanetPositions out of range error = %v", err)
	}

	// The edges of the window still work
	if _, err := GetPlanetPosition("Mars", time.Date(1200, 6, 1, 0, 0, 0, 0, time.UTC), greenwich); err != nil {
		t.Errorf("year 1200 should be supported: %v", err)
	}
}

func TestHeliocentricPosition(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		rMin, rMax float64
	}{
		{"Mercury", 0.30, 0.47},
		{"Venus", 0.71, 0.73},
		{"Mars", 1.38, 1.67},
		{"Jupiter", 4.95, 5.46},
		{"Neptune", 29.8, 30.4},
	}

	for _, tt := range tests {
		v, err := HeliocentricPosition(tt.name, at)
		if err != nil {
			t.Fatalf("HeliocentricPosition(%q) error: %v", tt.name, err)
		}
		if r := v.Norm(); r < tt.rMin || r > tt.rMax {
			t.Errorf("%s: r = %v AU, want [%v, %v]", tt.name, r, tt.rMin, tt.rMax)
		}
		// Orbits lie close to the ecliptic
		if lat := astro.EclipticLatitude(v); math.Abs(lat) > 7.1 {
			t.Errorf("%s: ecliptic latitude %v", tt.name, lat)
		}
	}
}

func TestPlanetMagnitudes(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	positions, err := GetAllPlanetPositions(at, greenwich)
	if err != nil {
		t.Fatal(err)
	}

	// Broad bands around typical apparent magnitudes
	bands := map[string][2]float64{
		"Mercury": {-2.5, 5.5},
		"Venus":   {-5.0, -3.5},
		"Mars":    {-3.0, 2.0},
		"Jupiter": {-3.0, -1.5},
		"Saturn":  {-0.5, 1.5},
		"Uranus":  {5.3, 6.1},
		"Neptune": {7.7, 8.1},
	}
	for _, p := range positions {
		b := bands[p.Name]
		if p.Magnitude < b[0] || p.Magnitude > b[1] {
			t.Errorf("%s magnitude %v outside [%v, %v]", p.Name, p.Magnitude, b[0], b[1])
		}
	}
}

func TestGeocentricSunMatchesSunPosition(t *testing.T) {
	for _, at := range []time.Time{
		time.Date(1500, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
		time.Date(2900, 1, 1, 0, 0, 0, 0, time.UTC),
	} {
		earth, err := EarthHeliocentric(at)
		if err != nil {
			t.Fatal(err)
		}
		T := astro.JulianCenturies(at)
		sun := astro.PrecessEcliptic(earth.Scale(-1), T)

		want := astro.SunPosition(at)
		if d := astro.NormalizeSignedDegrees(astro.EclipticLongitude(sun) - want.EclipticLonDeg); math.Abs(d) > 0.05 {
			t.Errorf("%s: Sun longitude off by %.3f°", at.Format(time.DateOnly), d)
		}

		eq, _ := astro.RADecFromVector(astro.EclipticToEquatorial(sun, astro.MeanObliquityAt(T)))
		if d := astro.AngularSeparation(eq, want.Equatorial); d > 0.05 {
			t.Errorf("%s: Sun RA/Dec %+v is %.3f° from %+v", at.Format(time.DateOnly), eq, d, want.Equatorial)
		}
	}
}

func TestEarthHeliocentric(t *testing.T) {
	for _, at := range []time.Time{
		time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 7, 5, 0, 0, 0, 0, time.UTC),
		time.Date(1950, 10, 1, 0, 0, 0, 0, time.UTC),
	} {
		v, err := EarthHeliocentric(at)
		if err != nil {
			t.Fatal(err)
		}
		if r := v.Norm(); r < 0.983 || r > 1.017 {
			t.Errorf("%s: Earth-Sun distance = %.4f AU", at.Format(time.DateOnly), r)
		}

		// Earth sits opposite the Sun's geocentric longitude once carried to
		// the equinox of date
		want := astro.NormalizeDegrees(astro.SunPosition(at).EclipticLonDeg + 180)
		got := astro.EclipticLongitude(astro.PrecessEcliptic(v, astro.JulianCenturies(at)))
		if d := math.Abs(astro.NormalizeSignedDegrees(got - want)); d > 0.1 {
			t.Errorf("%s: Earth longitude = %.3f, want %.3f", at.Format(time.DateOnly), got, want)
		}
	}

	if _, err := EarthHeliocentric(time.Date(3500, 1, 1, 0, 0, 0, 0, time.UTC)); !errors.Is(err, ErrTimeOutOfRange) {
		t.Errorf("out-of-range error = %v", err)
	}
}
