package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/litescript/ls-starmap/internal/almanac"
	"github.com/litescript/ls-starmap/internal/astro"
	"github.com/litescript/ls-starmap/internal/ephem"
)

var lstCmd = &cobra.Command{
	Use:   "lst",
	Short: "Show sidereal time and Julian date for the observer",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Time:  %s\n", e.at.In(e.loc).Format(time.RFC3339))
		fmt.Fprintf(out, "Site:  %s (%.4f, %.4f)\n", observerLabel(e.obs), e.obs.LatDeg, e.obs.LonDeg)
		fmt.Fprintf(out, "JD:    %.5f\n", astro.JulianDate(e.at))
		fmt.Fprintf(out, "GMST:  %s\n", astro.FormatRA(astro.GreenwichMeanSiderealTime(e.at)/15))
		fmt.Fprintf(out, "LST:   %s\n", astro.FormatRA(astro.LocalSiderealTime(e.at, e.obs.LonDeg)))
		return nil
	},
}

var altazCmd = &cobra.Command{
	Use:   "altaz [target]",
	Short: "Convert a body, star, or --ra/--dec to altitude and azimuth",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAltAz,
}

var risesetCmd = &cobra.Command{
	Use:   "riseset <target>",
	Short: "Show rise, transit and set times for a body or star",
	Args:  cobra.ExactArgs(1),
	RunE:  runRiseSet,
}

var traceCmd = &cobra.Command{
	Use:   "trace <target>",
	Short: "Plot a target's altitude over the surrounding day",
	Args:  cobra.ExactArgs(1),
	RunE:  runTrace,
}

var eclipticCmd = &cobra.Command{
	Use:   "ecliptic",
	Short: "Trace the ecliptic and show which part is above the horizon",
	Args:  cobra.NoArgs,
	RunE:  runEcliptic,
}

func init() {
	altazCmd.Flags().Float64("ra", 0, "right ascension in hours (e.g. 6.75)")
	altazCmd.Flags().Float64("dec", 0, "declination in degrees (e.g. -16.7)")
	altazCmd.Flags().String("source", "model", "ephemeris for solar-system bodies: model or horizons")

	traceCmd.Flags().Duration("window", almanac.DefaultTraceWindow, "half-width of the window around --time")
	traceCmd.Flags().Duration("step", almanac.DefaultTraceStep, "time between samples")
	traceCmd.Flags().Int("width", 72, "sparkline width in columns")

	eclipticCmd.Flags().Float64("step", 15, "ecliptic longitude step in degrees")

	rootCmd.AddCommand(lstCmd, altazCmd, risesetCmd, traceCmd, eclipticCmd)
}

func runAltAz(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}

	name, eq, err := altazTarget(cmd, e, args)
	if err != nil {
		return err
	}

	h, err := astro.EquatorialToHorizontal(eq, e.obs, e.at)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s from %s at %s\n", name, observerLabel(e.obs), e.at.In(e.loc).Format(time.RFC3339))
	fmt.Fprintf(out, "  RA %s  Dec %s\n", astro.FormatRA(eq.RAHours), astro.FormatDec(eq.DecDeg))
	fmt.Fprintf(out, "  Alt %.2f°  Az %.2f° (%s)\n", h.AltDeg, h.AzDeg, astro.FormatAzimuth(h.AzDeg))
	if !h.Visible() {
		fmt.Fprintln(out, "  below the horizon")
	}
	return nil
}

// altazTarget resolves either a named target or explicit coordinates.
func altazTarget(cmd *cobra.Command, e *env, args []string) (string, astro.Equatorial, error) {
	flags := cmd.Flags()
	if len(args) == 0 {
		if !flags.Changed("ra") || !flags.Changed("dec") {
			return "", astro.Equatorial{}, fmt.Errorf("give a target name or both --ra and --dec")
		}
		var eq astro.Equatorial
		eq.RAHours, _ = flags.GetFloat64("ra")
		eq.DecDeg, _ = flags.GetFloat64("dec")
		if err := eq.Validate(); err != nil {
			return "", astro.Equatorial{}, err
		}
		return "RA/Dec", eq, nil
	}

	target, err := almanac.ResolveTarget(args[0], e.cat)
	if err != nil {
		return "", astro.Equatorial{}, err
	}

	source, _ := flags.GetString("source")
	provider, err := altazProvider(source, e)
	if err != nil {
		return "", astro.Equatorial{}, err
	}
	if !target.Moving() {
		if _, remote := provider.(*ephem.HorizonsClient); remote {
			return "", astro.Equatorial{}, fmt.Errorf("%s is a catalog star; only solar-system bodies can be fetched from Horizons", target.Name)
		}
		pos, err := target.Position(e.at, e.obs)
		if err != nil {
			return "", astro.Equatorial{}, err
		}
		return target.Name, pos.Position.Equatorial(), nil
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, ephem.RequestTimeout)
	defer cancelTimeout()

	pos, err := provider.Position(ctx, ephem.GetNAIFIDByName(target.Name), e.at, e.obs)
	if err != nil {
		return "", astro.Equatorial{}, err
	}
	return target.Name, pos.Equatorial(), nil
}

// altazProvider maps --source to an ephemeris provider.
func altazProvider(source string, e *env) (ephem.Provider, error) {
	mode := ephem.ParseMode(strings.ToLower(source))
	if mode.String() != strings.ToLower(source) {
		return nil, fmt.Errorf("unknown --source %q (want model or horizons)", source)
	}
	if mode == ephem.ModeHorizons {
		return ephem.NewHorizonsClient(e.cfg.HorizonsURL), nil
	}
	return ephem.ModelProvider{}, nil
}

func runRiseSet(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	target, err := almanac.ResolveTarget(args[0], e.cat)
	if err != nil {
		return err
	}
	entry, err := almanac.EntryFor(target, e.at.In(e.loc), e.obs)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	ev := entry.Events
	fmt.Fprintf(out, "%s from %s on %s\n", entry.Name, observerLabel(e.obs), e.at.In(e.loc).Format("2006-01-02 MST"))
	switch {
	case ev.Circumpolar:
		fmt.Fprintln(out, "  circumpolar: above the horizon all day")
	case ev.NeverRises:
		fmt.Fprintln(out, "  never rises")
	default:
		fmt.Fprintf(out, "  Rise     %s\n", eventTime(ev.Rise, e.loc))
	}
	fmt.Fprintf(out, "  Transit  %s  alt %.1f°\n", ev.Transit.In(e.loc).Format("15:04:05"), ev.TransitAltDeg)
	if !ev.Circumpolar && !ev.NeverRises {
		fmt.Fprintf(out, "  Set      %s\n", eventTime(ev.Set, e.loc))
	}
	return nil
}

func eventTime(t *time.Time, loc *time.Location) string {
	if t == nil {
		return "--"
	}
	return t.In(loc).Format("15:04:05")
}

func runTrace(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	window, _ := cmd.Flags().GetDuration("window")
	step, _ := cmd.Flags().GetDuration("step")
	width, _ := cmd.Flags().GetInt("width")

	target, err := almanac.ResolveTarget(args[0], e.cat)
	if err != nil {
		return err
	}
	trace, err := almanac.ComputeElevationTrace(target, e.obs, e.at, window, step)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s from %s, %s to %s\n", trace.Name, observerLabel(e.obs),
		trace.WindowStart.In(e.loc).Format("Jan 02 15:04"), trace.WindowEnd.In(e.loc).Format("Jan 02 15:04 MST"))
	fmt.Fprintln(out, trace.RenderSparkline(width, e.at))
	if now, ok := trace.CurrentAltitude(e.at); ok {
		fmt.Fprintf(out, "now   %6.1f°\n", now.AltDeg)
	}
	if peak, ok := trace.Peak(); ok {
		fmt.Fprintf(out, "peak  %6.1f° at %s\n", peak.AltDeg, peak.Time.In(e.loc).Format("15:04"))
	}
	for _, c := range trace.Crossings {
		label := "set"
		if c.Rising {
			label = "rise"
		}
		fmt.Fprintf(out, "%-5s         %s\n", label, c.Time.In(e.loc).Format("Jan 02 15:04"))
	}
	return nil
}

func runEcliptic(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	step, _ := cmd.Flags().GetFloat64("step")
	if step <= 0 || step > 180 {
		return fmt.Errorf("--step must be in (0, 180], got %v", step)
	}

	sun, err := ephem.GetSunPosition(e.at, e.obs)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Ecliptic from %s at %s\n", observerLabel(e.obs), e.at.In(e.loc).Format(time.RFC3339))
	fmt.Fprintf(out, "%6s  %-9s %-10s %7s %7s\n", "Lon", "RA", "Dec", "Alt", "Az")

	above := 0
	path := ephem.EclipticPath(e.at, step)
	for i, eq := range path {
		h, err := astro.EquatorialToHorizontal(eq, e.obs, e.at)
		if err != nil {
			return err
		}
		mark := ""
		if h.Visible() {
			above++
			mark = " *"
		}
		fmt.Fprintf(out, "%5.0f°  %-9s %-10s %6.1f° %6.1f°%s\n",
			float64(i)*step, astro.FormatRA(eq.RAHours), astro.FormatDec(eq.DecDeg), h.AltDeg, h.AzDeg, mark)
	}
	fmt.Fprintf(out, "\n%d of %d points above the horizon; Sun at RA %s Dec %s\n",
		above, len(path), astro.FormatRA(sun.Position.RAHours), astro.FormatDec(sun.Position.DecDeg))
	return nil
}
