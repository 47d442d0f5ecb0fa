package almanac

import (
	"fmt"
	"io"
	"strings"

	"github.com/litescript/ls-starmap/internal/astro"
)

// MiniSkyConfig controls the ASCII sky plot.
type MiniSkyConfig struct {
	Width      int     // Columns spanning azimuth 0-360
	Height     int     // Rows spanning altitude 90-0
	ShowStars  bool    // Plot star entries as '*' or '.'
	BrightStar float64 // Stars at or below this magnitude use '*'
}

// DefaultMiniSkyConfig returns a plot that fits an 80-column terminal.
func DefaultMiniSkyConfig() MiniSkyConfig {
	return MiniSkyConfig{Width: 72, Height: 12, ShowStars: true, BrightStar: 1.5}
}

// bodyMarkers label solar-system bodies in plot order.
const bodyMarkers = "123456789abcdefghijklmnopqrstuvwxyz"

// WriteMiniSky plots the entries above the horizon on an azimuth/altitude
// grid with North at the left edge, followed by a legend of the bodies.
func WriteMiniSky(w io.Writer, a *Almanac, cfg MiniSkyConfig) {
	if cfg.Width < 8 || cfg.Height < 2 {
		cfg = DefaultMiniSkyConfig()
	}

	grid := make([][]rune, cfg.Height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", cfg.Width))
	}

	if cfg.ShowStars {
		for _, e := range a.Entries {
			if e.Kind != KindStar {
				continue
			}
			row, col, ok := cfg.cell(e.Horizontal)
			if !ok || grid[row][col] != ' ' {
				continue
			}
			glyph := '.'
			if e.Body.Magnitude <= cfg.BrightStar {
				glyph = '*'
			}
			grid[row][col] = glyph
		}
	}

	var legend []string
	for _, e := range a.Entries {
		if e.Kind == KindStar || len(legend) >= len(bodyMarkers) {
			continue
		}
		row, col, ok := cfg.cell(e.Horizontal)
		if !ok {
			continue
		}
		marker := rune(bodyMarkers[len(legend)])
		grid[row][col] = marker
		legend = append(legend, fmt.Sprintf("  %c %-8s alt %5.1f°  az %5.1f° %-3s mag %5.1f",
			marker, e.Name, e.Horizontal.AltDeg, e.Horizontal.AzDeg,
			astro.FormatAzimuth(e.Horizontal.AzDeg), e.Body.Magnitude))
	}

	name := a.Observer.Name
	if name == "" {
		name = fmt.Sprintf("%.2f, %.2f", a.Observer.LatDeg, a.Observer.LonDeg)
	}
	fmt.Fprintf(w, "Sky from %s @ %s\n", name, a.Time.UTC().Format("2006-01-02 15:04 MST"))

	for i, row := range grid {
		label := "   "
		switch i {
		case 0:
			label = "90°"
		case cfg.Height / 2:
			label = "45°"
		}
		fmt.Fprintf(w, "%s |%s|\n", label, string(row))
	}
	fmt.Fprintf(w, " 0° +%s+\n", horizonRow(cfg.Width))

	if len(legend) == 0 {
		fmt.Fprintln(w, "No solar-system bodies above the horizon")
		return
	}
	for _, line := range legend {
		fmt.Fprintln(w, line)
	}
}

// cell maps a horizontal position to a grid cell. ok is false below the
// horizon.
func (cfg MiniSkyConfig) cell(h astro.Horizontal) (row, col int, ok bool) {
	if !h.Visible() {
		return 0, 0, false
	}
	col = int(astro.NormalizeDegrees(h.AzDeg) / 360 * float64(cfg.Width))
	row = int((90 - h.AltDeg) / 90 * float64(cfg.Height))
	return min(row, cfg.Height-1), min(col, cfg.Width-1), true
}

// horizonRow draws the horizon with the cardinal points at their azimuths.
func horizonRow(width int) string {
	row := []rune(strings.Repeat("-", width))
	for i, c := range "NESW" {
		row[i*width/4] = c
	}
	return string(row)
}
