package almanac

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/litescript/ls-starmap/internal/astro"
	"github.com/litescript/ls-starmap/internal/catalog"
	"github.com/litescript/ls-starmap/internal/ephem"
)

func testAlmanac(t *testing.T) *Almanac {
	t.Helper()
	a, err := Build(time.Date(2024, 1, 15, 22, 0, 0, 0, time.UTC), greenwich, catalog.Default().Brighter(1.5))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return a
}

func TestAlmanac_Export(t *testing.T) {
	a := testAlmanac(t)
	export := a.Export()

	if !export.Time.Equal(a.Time) {
		t.Errorf("Time = %v, want %v", export.Time, a.Time)
	}
	if export.Observer.Name != "Greenwich" {
		t.Errorf("Observer.Name = %q", export.Observer.Name)
	}
	if export.LST != astro.FormatRA(a.LSTHours) {
		t.Errorf("LST = %q", export.LST)
	}
	if len(export.Entries) != len(a.Entries) {
		t.Fatalf("entries = %d, want %d", len(export.Entries), len(a.Entries))
	}

	for i, e := range export.Entries {
		src := a.Entries[i]
		if e.Name != src.Name || e.Kind != src.Kind.String() {
			t.Errorf("entry %d = %s/%s, want %s/%s", i, e.Name, e.Kind, src.Name, src.Kind)
		}
		if e.Visible != (e.AltDeg > 0) {
			t.Errorf("%s: Visible=%v with alt %.1f", e.Name, e.Visible, e.AltDeg)
		}
	}
}

func TestExport_WriteJSON(t *testing.T) {
	a := testAlmanac(t)

	var buf bytes.Buffer
	if err := a.Export().WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON() error: %v", err)
	}

	var decoded Export
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded.Entries) != len(a.Entries) {
		t.Errorf("decoded %d entries, want %d", len(decoded.Entries), len(a.Entries))
	}
	if !strings.Contains(buf.String(), "\n  \"observer\"") {
		t.Error("expected two-space indentation")
	}

	// Canopus never rises from Greenwich, so its rise and set are omitted.
	var raw struct {
		Entries []map[string]any `json:"entries"`
	}
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatal(err)
	}
	for _, e := range raw.Entries {
		if e["name"] != "Canopus" {
			continue
		}
		if _, ok := e["rise"]; ok {
			t.Error("Canopus has a rise time")
		}
		if e["never_rises"] != true {
			t.Errorf("Canopus never_rises = %v", e["never_rises"])
		}
	}
}

func TestWriteSummaryTable(t *testing.T) {
	a := testAlmanac(t)

	var buf bytes.Buffer
	WriteSummaryTable(&buf, a, time.UTC)
	out := buf.String()

	for _, want := range []string{
		"Sky @ 2024-01-15T22:00:00Z",
		"Greenwich",
		"LST " + astro.FormatRA(a.LSTHours),
		"Moon: " + a.MoonPhase.Name,
		"Sirius",
		"never rises",
		"Above horizon:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}

	lines := strings.Count(out, "\n")
	if lines < len(a.Entries)+5 {
		t.Errorf("summary has %d lines for %d entries", lines, len(a.Entries))
	}
}

func TestWriteSummaryTable_Empty(t *testing.T) {
	a := &Almanac{Time: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), Observer: astro.Observer{LatDeg: 10, LonDeg: 20}}

	var buf bytes.Buffer
	WriteSummaryTable(&buf, a, nil)
	if !strings.Contains(buf.String(), "Nothing to show") {
		t.Errorf("output = %q", buf.String())
	}
	if !strings.Contains(buf.String(), "10.0000, 20.0000") {
		t.Errorf("unnamed observer not shown by coordinates: %q", buf.String())
	}
}

func TestEventColumns(t *testing.T) {
	rise := time.Date(2024, 1, 15, 7, 5, 0, 0, time.UTC)
	tests := []struct {
		name     string
		ev       astro.RiseSetTransit
		wantRise string
		wantSet  string
	}{
		{"circumpolar", astro.RiseSetTransit{Circumpolar: true}, "circumpolar", ""},
		{"never rises", astro.RiseSetTransit{NeverRises: true}, "never rises", ""},
		{"rise only", astro.RiseSetTransit{Rise: &rise}, "07:05", "--"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, s := eventColumns(tt.ev, time.UTC)
			if r != tt.wantRise || s != tt.wantSet {
				t.Errorf("eventColumns() = %q, %q; want %q, %q", r, s, tt.wantRise, tt.wantSet)
			}
		})
	}
}

func TestTruncateStr(t *testing.T) {
	tests := []struct {
		s    string
		n    int
		want string
	}{
		{"Mars", 12, "Mars"},
		{"Fomalhaut Alpha", 12, "Fomalhaut .."},
		{"Sirius", 3, "Sir"},
	}
	for _, tt := range tests {
		if got := truncateStr(tt.s, tt.n); got != tt.want {
			t.Errorf("truncateStr(%q, %d) = %q, want %q", tt.s, tt.n, got, tt.want)
		}
	}
}

func TestWriteMiniSky(t *testing.T) {
	a := testAlmanac(t)
	cfg := DefaultMiniSkyConfig()

	var buf bytes.Buffer
	WriteMiniSky(&buf, a, cfg)
	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	// Title, sky rows, horizon, then the legend.
	if len(lines) < cfg.Height+2 {
		t.Fatalf("only %d lines:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "Sky from Greenwich") {
		t.Errorf("title = %q", lines[0])
	}
	for i := 1; i <= cfg.Height; i++ {
		if w := len([]rune(lines[i])); w != cfg.Width+6 {
			t.Errorf("row %d width = %d, want %d", i, w, cfg.Width+6)
		}
	}
	horizon := lines[cfg.Height+1]
	for _, c := range "NESW" {
		if !strings.ContainsRune(horizon, c) {
			t.Errorf("horizon %q missing %c", horizon, c)
		}
	}

	visibleBodies := 0
	for _, e := range a.Entries {
		if e.Kind != KindStar && e.Visible() {
			visibleBodies++
		}
	}
	legend := lines[cfg.Height+2:]
	if visibleBodies == 0 {
		if len(legend) != 1 || !strings.Contains(legend[0], "No solar-system bodies") {
			t.Errorf("legend = %q", legend)
		}
	} else if len(legend) != visibleBodies {
		t.Errorf("legend has %d lines, want %d", len(legend), visibleBodies)
	}
}

func TestMiniSkyCell(t *testing.T) {
	cfg := MiniSkyConfig{Width: 72, Height: 12}
	tests := []struct {
		name    string
		h       astro.Horizontal
		row     int
		col     int
		visible bool
	}{
		{"zenith north", astro.Horizontal{AltDeg: 90, AzDeg: 0}, 0, 0, true},
		{"low east", astro.Horizontal{AltDeg: 1, AzDeg: 90}, 11, 18, true},
		{"south 45", astro.Horizontal{AltDeg: 45, AzDeg: 180}, 6, 36, true},
		{"below", astro.Horizontal{AltDeg: -5, AzDeg: 180}, 0, 0, false},
		{"az wraps", astro.Horizontal{AltDeg: 30, AzDeg: 359.9}, 8, 71, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, col, ok := cfg.cell(tt.h)
			if ok != tt.visible || row != tt.row || col != tt.col {
				t.Errorf("cell() = %d,%d,%v; want %d,%d,%v", row, col, ok, tt.row, tt.col, tt.visible)
			}
		})
	}
}

func TestWriteMiniSky_NoBodies(t *testing.T) {
	a := &Almanac{
		Time:     time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Observer: greenwich,
		Entries: []Entry{
			{Name: "Mars", Kind: KindPlanet, Horizontal: astro.Horizontal{AltDeg: -10, AzDeg: 100}},
			{Name: "Vega", Kind: KindStar, Body: ephem.PlanetPosition{Magnitude: 0.03}, Horizontal: astro.Horizontal{AltDeg: 60, AzDeg: 300}},
		},
	}

	var buf bytes.Buffer
	WriteMiniSky(&buf, a, MiniSkyConfig{Width: 36, Height: 6, ShowStars: true, BrightStar: 1.5})
	out := buf.String()
	if !strings.Contains(out, "No solar-system bodies above the horizon") {
		t.Errorf("missing empty legend:\n%s", out)
	}
	if !strings.ContainsRune(out, '*') {
		t.Errorf("bright star not plotted:\n%s", out)
	}
}
