package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-starmap/internal/almanac"
	"github.com/litescript/ls-starmap/internal/astro"
)

// Visibility display colors
const (
	colorVisHigh   = "#7CFC00" // Lawn green - high elevation
	colorVisMedium = "#FFD700" // Gold - medium elevation
	colorVisLow    = "#FF6347" // Tomato - low elevation
	colorVisNone   = "#444444" // Dark gray - below horizon

	// Sun separation colors
	colorSunSafe    = "#7CFC00" // Green - safe (>=20°)
	colorSunCaution = "#FFD700" // Gold - caution (10-20°)
	colorSunWarning = "#FF4500" // Orange-red - warning (<10°)
)

// RenderVisibilityPanel renders one body's events for the day.
// Format:
//
//	Rise 22:14   Peak 23:02 @ 58°   Set 23:49
func RenderVisibilityPanel(e almanac.Entry, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	ev := e.Events
	tier := astro.GetElevationTier(ev.TransitAltDeg)

	switch {
	case ev.NeverRises:
		return dimStyle.Render("Below horizon all day")
	case ev.Circumpolar:
		return colorByTier(tier, fmt.Sprintf("Always up, peak %s @ %.0f°",
			ev.Transit.In(loc).Format("15:04"), ev.TransitAltDeg))
	}

	var parts []string
	if ev.Rise != nil {
		parts = append(parts, "Rise "+ev.Rise.In(loc).Format("15:04"))
	}
	parts = append(parts, fmt.Sprintf("Peak %s @ %.0f°", ev.Transit.In(loc).Format("15:04"), ev.TransitAltDeg))
	if ev.Set != nil {
		parts = append(parts, "Set "+ev.Set.In(loc).Format("15:04"))
	}
	return colorByTier(tier, strings.Join(parts, "   "))
}

// RenderVisibilityBar renders a compact horizontal bar showing the current
// altitude tier of each planet.
// Format: Mer ████   Ven ░░░░   Mar ██░░
func RenderVisibilityBar(entries []almanac.Entry) string {
	var parts []string
	for _, e := range entries {
		if e.Kind != almanac.KindPlanet {
			continue
		}
		parts = append(parts, renderBarSegment(shortName(e.Name), e.Tier(), true))
	}
	return strings.Join(parts, "   ")
}

// shortName abbreviates a body name to three letters.
func shortName(name string) string {
	r := []rune(name)
	if len(r) > 3 {
		r = r[:3]
	}
	return string(r)
}

// renderBarSegment renders one body's visibility bar segment.
func renderBarSegment(name string, tier astro.ElevationTier, valid bool) string {
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	label := labelStyle.Render(name + " ")

	if !valid {
		dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
		return label + dimStyle.Render("····")
	}

	bar := tierToBar(tier)
	color := tierToColor(tier)
	barStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(color))

	return label + barStyle.Render(bar)
}

// tierToBar converts elevation tier to a 4-character bar representation.
func tierToBar(tier astro.ElevationTier) string {
	switch tier {
	case astro.ElevationHigh:
		return "████"
	case astro.ElevationMedium:
		return "██░░"
	case astro.ElevationLow:
		return "█░░░"
	default:
		return "░░░░"
	}
}

// tierToColor returns the color for an elevation tier.
func tierToColor(tier astro.ElevationTier) string {
	switch tier {
	case astro.ElevationHigh:
		return colorVisHigh
	case astro.ElevationMedium:
		return colorVisMedium
	case astro.ElevationLow:
		return colorVisLow
	default:
		return colorVisNone
	}
}

// colorByTier applies tier-based coloring to text.
func colorByTier(tier astro.ElevationTier, text string) string {
	color := tierToColor(tier)
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	return style.Render(text)
}

// RenderCurrentElevation renders a body's current altitude.
func RenderCurrentElevation(altDeg float64) string {
	tier := astro.GetElevationTier(altDeg)
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(tierToColor(tier)))

	if altDeg <= 0 {
		return style.Render("Below horizon")
	}
	return style.Render(fmt.Sprintf("%.0f°", altDeg))
}

// RenderSunSeparation renders the sun separation angle with appropriate styling.
func RenderSunSeparation(sepDeg float64) string {
	sunTier := astro.GetSunSeparationTier(sepDeg)
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(sunTierToColor(sunTier)))

	var status string
	switch sunTier {
	case astro.SunSepWarning:
		status = " (glare)"
	case astro.SunSepCaution:
		status = " (twilight)"
	}

	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	return dimStyle.Render("sun-sep: ") + style.Render(fmt.Sprintf("%.1f°", sepDeg)+status)
}

// sunTierToColor returns the color for a sun separation tier.
func sunTierToColor(tier astro.SunSeparationTier) string {
	switch tier {
	case astro.SunSepWarning:
		return colorSunWarning
	case astro.SunSepCaution:
		return colorSunCaution
	default:
		return colorSunSafe
	}
}
