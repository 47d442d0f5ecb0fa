package almanac

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/litescript/ls-starmap/internal/astro"
)

// Export is the JSON-serializable form of an almanac.
type Export struct {
	Time      time.Time       `json:"time"`
	Observer  ObserverExport  `json:"observer"`
	LST       string          `json:"lst"`
	LSTHours  float64         `json:"lst_hours"`
	MoonPhase MoonPhaseExport `json:"moon_phase"`
	Entries   []EntryExport   `json:"entries"`
}

// ObserverExport is a JSON-friendly observer.
type ObserverExport struct {
	Name       string  `json:"name,omitempty"`
	LatDeg     float64 `json:"lat"`
	LonDeg     float64 `json:"lon"`
	ElevationM float64 `json:"elevation_m"`
	Timezone   string  `json:"timezone,omitempty"`
}

// MoonPhaseExport is a JSON-friendly lunar phase.
type MoonPhaseExport struct {
	Name         string  `json:"name"`
	Illumination float64 `json:"illumination"`
	Waxing       bool    `json:"waxing"`
	AgeDays      float64 `json:"age_days"`
}

// EntryExport is one almanac row with derived fields.
type EntryExport struct {
	Name          string     `json:"name"`
	Kind          string     `json:"kind"`
	RAHours       float64    `json:"ra_hours"`
	DecDeg        float64    `json:"dec_deg"`
	DistanceAU    float64    `json:"distance_au,omitempty"`
	Magnitude     float64    `json:"magnitude"`
	Phase         float64    `json:"phase"`
	AngularSize   float64    `json:"angular_size_arcsec,omitempty"`
	AltDeg        float64    `json:"alt_deg"`
	AzDeg         float64    `json:"az_deg"`
	Visible       bool       `json:"visible"`
	SunSepDeg     float64    `json:"sun_separation_deg,omitempty"`
	Rise          *time.Time `json:"rise,omitempty"`
	Transit       time.Time  `json:"transit"`
	Set           *time.Time `json:"set,omitempty"`
	TransitAltDeg float64    `json:"transit_alt_deg"`
	Circumpolar   bool       `json:"circumpolar,omitempty"`
	NeverRises    bool       `json:"never_rises,omitempty"`
	Converged     bool       `json:"converged"`
}

// Export converts the almanac to its exportable form.
func (a *Almanac) Export() *Export {
	out := &Export{
		Time: a.Time.UTC(),
		Observer: ObserverExport{
			Name:       a.Observer.Name,
			LatDeg:     a.Observer.LatDeg,
			LonDeg:     a.Observer.LonDeg,
			ElevationM: a.Observer.ElevationM,
			Timezone:   a.Observer.Timezone,
		},
		LST:      astro.FormatRA(a.LSTHours),
		LSTHours: a.LSTHours,
		MoonPhase: MoonPhaseExport{
			Name:         a.MoonPhase.Name,
			Illumination: a.MoonPhase.Illumination,
			Waxing:       a.MoonPhase.Waxing,
			AgeDays:      a.MoonPhase.AgeDays,
		},
		Entries: make([]EntryExport, 0, len(a.Entries)),
	}

	for _, e := range a.Entries {
		out.Entries = append(out.Entries, EntryExport{
			Name:          e.Name,
			Kind:          e.Kind.String(),
			RAHours:       e.Body.Position.RAHours,
			DecDeg:        e.Body.Position.DecDeg,
			DistanceAU:    e.Body.Position.DistanceAU,
			Magnitude:     e.Body.Magnitude,
			Phase:         e.Body.Phase,
			AngularSize:   e.Body.AngularSize,
			AltDeg:        e.Horizontal.AltDeg,
			AzDeg:         e.Horizontal.AzDeg,
			Visible:       e.Visible(),
			SunSepDeg:     e.SunSepDeg,
			Rise:          e.Events.Rise,
			Transit:       e.Events.Transit,
			Set:           e.Events.Set,
			TransitAltDeg: e.Events.TransitAltDeg,
			Circumpolar:   e.Events.Circumpolar,
			NeverRises:    e.Events.NeverRises,
			Converged:     e.Body.Converged,
		})
	}
	return out
}

// WriteJSON writes the export as indented JSON.
func (e *Export) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}

// WriteSummaryTable writes a text table of the almanac, with event times
// shown in loc.
func WriteSummaryTable(w io.Writer, a *Almanac, loc *time.Location) {
	if loc == nil {
		loc = time.UTC
	}
	name := a.Observer.Name
	if name == "" {
		name = fmt.Sprintf("%.4f, %.4f", a.Observer.LatDeg, a.Observer.LonDeg)
	}

	fmt.Fprintf(w, "Sky @ %s  %s  LST %s\n", a.Time.In(loc).Format(time.RFC3339), name, astro.FormatRA(a.LSTHours))
	fmt.Fprintf(w, "Moon: %s, %.0f%% lit\n", a.MoonPhase.Name, a.MoonPhase.Illumination*100)
	fmt.Fprintln(w, strings.Repeat("─", 96))

	if len(a.Entries) == 0 {
		fmt.Fprintln(w, "Nothing to show")
		return
	}

	fmt.Fprintf(w, "%-12s %-9s %-10s %6s %6s %-3s %5s  %-11s %-5s %-5s\n",
		"Name", "RA", "Dec", "Alt", "Az", "", "Mag", "Rise", "Trans", "Set")
	fmt.Fprintln(w, strings.Repeat("─", 96))

	visible := 0
	for _, e := range a.Entries {
		if e.Visible() {
			visible++
		}
		rise, set := eventColumns(e.Events, loc)
		fmt.Fprintf(w, "%-12s %-9s %-10s %6.1f %6.1f %-3s %5.1f  %-11s %-5s %-5s\n",
			truncateStr(e.Name, 12),
			astro.FormatRA(e.Body.Position.RAHours),
			astro.FormatDec(e.Body.Position.DecDeg),
			e.Horizontal.AltDeg,
			e.Horizontal.AzDeg,
			astro.FormatAzimuth(e.Horizontal.AzDeg),
			e.Body.Magnitude,
			rise,
			e.Events.Transit.In(loc).Format("15:04"),
			set,
		)
	}

	fmt.Fprintf(w, "\nAbove horizon: %d of %d\n", visible, len(a.Entries))
}

// eventColumns formats the rise and set columns.
func eventColumns(ev astro.RiseSetTransit, loc *time.Location) (rise, set string) {
	switch {
	case ev.Circumpolar:
		return "circumpolar", ""
	case ev.NeverRises:
		return "never rises", ""
	}
	rise, set = "--", "--"
	if ev.Rise != nil {
		rise = ev.Rise.In(loc).Format("15:04")
	}
	if ev.Set != nil {
		set = ev.Set.In(loc).Format("15:04")
	}
	return rise, set
}

func truncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-2] + ".."
}
