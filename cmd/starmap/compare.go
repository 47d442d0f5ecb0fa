package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/spf13/cobra"

	"github.com/litescript/ls-starmap/internal/astro"
	"github.com/litescript/ls-starmap/internal/ephem"
)

var compareCmd = &cobra.Command{
	Use:   "compare <body>",
	Short: "Cross-check the local model against JPL Horizons",
	Long: `compare fetches the apparent position of a solar-system body from the
JPL Horizons API and reports how far the local orbit model is from it. With
--span the comparison is repeated every --step over the span. With --helio the
heliocentric ecliptic vectors are compared as well (planets only).`,
	Args: cobra.ExactArgs(1),
	RunE: runCompare,
}

func init() {
	f := compareCmd.Flags()
	f.Duration("span", 0, "compare over this span starting at --time")
	f.Duration("step", 6*time.Hour, "time between samples when --span is set")
	f.Duration("timeout", ephem.RequestTimeout, "overall deadline for Horizons requests")
	f.Bool("helio", false, "also compare heliocentric ecliptic vectors")

	rootCmd.AddCommand(compareCmd)
}

// comparison is one model-versus-reference sample.
type comparison struct {
	at         time.Time
	model      ephem.Position
	reference  ephem.Position
	errArcmin  float64
	distErrPct float64
}

func runCompare(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}

	info, ok := ephem.GetTargetByName(args[0])
	if !ok {
		return fmt.Errorf("%w: %q", ephem.ErrUnknownBody, args[0])
	}

	flags := cmd.Flags()
	span, _ := flags.GetDuration("span")
	step, _ := flags.GetDuration("step")
	timeout, _ := flags.GetDuration("timeout")
	helio, _ := flags.GetBool("helio")

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, timeout)
	defer cancelTimeout()

	client := ephem.NewHorizonsClient(e.cfg.HorizonsURL)
	model := ephem.ModelProvider{}

	start := e.at.UTC().Truncate(time.Minute)
	times := []time.Time{start}
	if span > 0 {
		e.logger.Debug().
			Str("body", info.Name).
			Int("naif", int(info.NAIFID)).
			Time("start", start).
			Dur("span", span).
			Dur("step", step).
			Msg("fetching reference path")

		refPath, err := ephem.GetPath(ctx, client, info.NAIFID, start, start.Add(span), step, e.obs)
		if err != nil {
			return err
		}
		times = times[:0]
		for _, sample := range refPath.Samples {
			times = append(times, sample.Time)
		}
	}

	var results []comparison
	for _, at := range times {
		// Path samples carry only RA/Dec; the client cache holds the range
		refPos, err := client.Observe(ctx, info.NAIFID, at, e.obs)
		if err != nil {
			return err
		}
		modelPos, err := model.Position(ctx, info.NAIFID, at, e.obs)
		if err != nil {
			return err
		}
		results = append(results, compareSample(at, modelPos, refPos))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (NAIF %d) from %s: model vs %s\n", info.Name, info.NAIFID, observerLabel(e.obs), client.Name())
	writeComparisons(out, results, e.loc)

	if helio {
		if info.Kind != ephem.KindPlanet {
			return fmt.Errorf("--helio needs a planet, got %s", info.Name)
		}
		return writeHelioComparison(ctx, out, client, info, start)
	}
	return nil
}

func compareSample(at time.Time, modelPos, refPos ephem.Position) comparison {
	c := comparison{
		at:        at,
		model:     modelPos,
		reference: refPos,
		errArcmin: astro.AngularSeparation(modelPos.Equatorial(), refPos.Equatorial()) * 60,
	}
	if refPos.DistanceAU > 0 {
		c.distErrPct = (modelPos.DistanceAU - refPos.DistanceAU) / refPos.DistanceAU * 100
	}
	return c
}

func writeComparisons(w io.Writer, results []comparison, loc *time.Location) {
	fmt.Fprintf(w, "%-16s  %-9s %-10s  %-9s %-10s  %8s %7s\n",
		"Time", "Model RA", "Model Dec", "Ref RA", "Ref Dec", "Err '", "Dist %")

	var worst, sum float64
	for _, c := range results {
		fmt.Fprintf(w, "%-16s  %-9s %-10s  %-9s %-10s  %8.2f %+6.2f%%\n",
			c.at.In(loc).Format("2006-01-02 15:04"),
			astro.FormatRA(c.model.RAHours), astro.FormatDec(c.model.DecDeg),
			astro.FormatRA(c.reference.RAHours), astro.FormatDec(c.reference.DecDeg),
			c.errArcmin, c.distErrPct)
		sum += c.errArcmin
		worst = max(worst, c.errArcmin)
	}
	if len(results) > 1 {
		fmt.Fprintf(w, "\n%d samples: mean error %.2f', worst %.2f'\n", len(results), sum/float64(len(results)), worst)
	}
}

func writeHelioComparison(ctx context.Context, w io.Writer, client *ephem.HorizonsClient, info ephem.TargetInfo, at time.Time) error {
	ref, err := client.HeliocentricVector(ctx, info.NAIFID, at)
	if err != nil {
		return err
	}
	model, err := ephem.HeliocentricPosition(info.Name, at)
	if err != nil {
		return err
	}
	diff := model.Sub(ref)
	fmt.Fprintf(w, "\nHeliocentric ecliptic (AU)\n")
	fmt.Fprintf(w, "  model      %+.6f %+.6f %+.6f\n", model.X, model.Y, model.Z)
	fmt.Fprintf(w, "  reference  %+.6f %+.6f %+.6f\n", ref.X, ref.Y, ref.Z)
	fmt.Fprintf(w, "  difference %.6f AU (%.0f km)\n", diff.Norm(), astro.AUToKm(diff.Norm()))

	cos := max(-1, min(1, model.Normalized().Dot(ref.Normalized())))
	fmt.Fprintf(w, "  direction  %.2f' from the Sun\n", math.Acos(cos)*180/math.Pi*60)
	return nil
}
