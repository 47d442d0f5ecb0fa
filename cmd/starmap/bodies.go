package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/litescript/ls-starmap/internal/astro"
	"github.com/litescript/ls-starmap/internal/ephem"
)

var planetsCmd = &cobra.Command{
	Use:   "planets",
	Short: "List planet positions, magnitudes and phases",
	Args:  cobra.NoArgs,
	RunE:  runPlanets,
}

var moonCmd = &cobra.Command{
	Use:   "moon",
	Short: "Show the Moon's position and phase",
	Args:  cobra.NoArgs,
	RunE:  runMoon,
}

func init() {
	rootCmd.AddCommand(planetsCmd, moonCmd)
}

func runPlanets(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	planets, err := ephem.GetAllPlanetPositions(e.at, e.obs)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Planets from %s at %s\n", observerLabel(e.obs), e.at.In(e.loc).Format(time.RFC3339))
	fmt.Fprintf(out, "%-8s %-9s %-10s %7s %7s %-3s %8s %5s %5s %7s %6s\n",
		"Name", "RA", "Dec", "Alt", "Az", "", "Dist AU", "Mag", "Lit", "Size\"", "Elong")
	fmt.Fprintln(out, strings.Repeat("─", 88))

	for _, p := range planets {
		if !p.Converged {
			e.logger.Warn().Str("body", p.Name).Time("at", e.at).Msg("kepler solver did not converge")
		}
		h, err := astro.EquatorialToHorizontal(p.Position.Equatorial(), e.obs, e.at)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%-8s %-9s %-10s %6.1f° %6.1f° %-3s %8.3f %5.1f %4.0f%% %7.1f %5.0f°\n",
			p.Name,
			astro.FormatRA(p.Position.RAHours),
			astro.FormatDec(p.Position.DecDeg),
			h.AltDeg,
			h.AzDeg,
			astro.FormatAzimuth(h.AzDeg),
			p.Position.DistanceAU,
			p.Magnitude,
			p.Phase*100,
			p.AngularSize,
			p.Elongation,
		)
	}
	return nil
}

func runMoon(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	moon, err := ephem.GetMoonPosition(e.at, e.obs)
	if err != nil {
		return err
	}
	phase, err := ephem.MoonPhase(e.at)
	if err != nil {
		return err
	}
	h, err := astro.EquatorialToHorizontal(moon.Position.Equatorial(), e.obs, e.at)
	if err != nil {
		return err
	}

	direction := "waning"
	if phase.Waxing {
		direction = "waxing"
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Moon from %s at %s\n", observerLabel(e.obs), e.at.In(e.loc).Format(time.RFC3339))
	fmt.Fprintf(out, "  Phase     %s (%s, %.1f%% lit, age %.1f d)\n", phase.Name, direction, phase.Illumination*100, phase.AgeDays)
	fmt.Fprintf(out, "  RA/Dec    %s  %s (topocentric)\n", astro.FormatRA(moon.Position.RAHours), astro.FormatDec(moon.Position.DecDeg))
	fmt.Fprintf(out, "  Alt/Az    %.1f°  %.1f° (%s)\n", h.AltDeg, h.AzDeg, astro.FormatAzimuth(h.AzDeg))
	fmt.Fprintf(out, "  Distance  %.0f km\n", astro.AUToKm(moon.Position.DistanceAU))
	fmt.Fprintf(out, "  Diameter  %.1f'\n", moon.AngularSize/60)
	fmt.Fprintf(out, "  Mag       %.1f\n", moon.Magnitude)
	return nil
}
