package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/litescript/ls-starmap/internal/almanac"
	"github.com/litescript/ls-starmap/internal/catalog"
	"github.com/litescript/ls-starmap/internal/state"
)

// defaultAlmanacMag lists the first-magnitude stars after the bodies.
const defaultAlmanacMag = 1.5

// almanacOptions selects the headless outputs.
type almanacOptions struct {
	jsonPath string // "-" writes JSON to stdout
	miniSky  bool
	events   bool
	watch    time.Duration
	mag      float64

	up            bool   // only bodies above the horizon
	constellation string // restrict stars to one constellation
}

var almanacCmd = &cobra.Command{
	Use:   "almanac",
	Short: "Print the day's positions and rise/set times for every body",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		flags := cmd.Flags()
		var opts almanacOptions
		opts.jsonPath, _ = flags.GetString("json")
		opts.miniSky, _ = flags.GetBool("mini-sky")
		opts.events, _ = flags.GetBool("events")
		opts.watch, _ = flags.GetDuration("watch")
		opts.mag, _ = flags.GetFloat64("mag")
		opts.up, _ = flags.GetBool("up")
		opts.constellation, _ = flags.GetString("constellation")
		if opts.constellation != "" && !flags.Changed("mag") {
			opts.mag = math.Inf(1)
		}

		if opts.watch < 0 {
			return fmt.Errorf("--watch must not be negative, got %v", opts.watch)
		}
		if opts.watch == 0 {
			return runAlmanacOnce(cmd, opts)
		}
		return runAlmanacWatch(cmd, opts)
	},
}

func init() {
	f := almanacCmd.Flags()
	f.String("json", "", "write the almanac as JSON to a file, or - for stdout")
	f.Lookup("json").NoOptDefVal = "-"
	f.Bool("mini-sky", false, "append an ASCII plot of the sky")
	f.Bool("events", false, "in watch mode, list horizon crossings since the last output")
	f.Duration("watch", 0, "repeat at this interval (e.g. 30s)")
	f.Float64("mag", defaultAlmanacMag, "include catalog stars brighter than this magnitude")
	f.Bool("up", false, "list only bodies above the horizon")
	f.String("constellation", "", "list stars of one constellation (IAU code, e.g. ORI) instead of the brightest")

	rootCmd.AddCommand(almanacCmd)
}

func runAlmanacOnce(cmd *cobra.Command, opts almanacOptions) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	return writeAlmanac(cmd.OutOrStdout(), e, e.at, opts)
}

// writeAlmanac builds the almanac for at and writes the selected outputs.
func writeAlmanac(out io.Writer, e *env, at time.Time, opts almanacOptions) error {
	a, err := almanac.Build(at.In(e.loc), e.obs, almanacStars(e.cat, opts))
	if err != nil {
		return err
	}
	if opts.up {
		a.Entries = a.Visible()
	}

	if opts.jsonPath != "" {
		if err := writeAlmanacJSON(out, a, opts.jsonPath); err != nil {
			return err
		}
		if opts.jsonPath == "-" {
			return nil
		}
	}

	almanac.WriteSummaryTable(out, a, e.loc)

	if opts.miniSky {
		fmt.Fprintln(out)
		almanac.WriteMiniSky(out, a, almanac.DefaultMiniSkyConfig())
	}
	return nil
}

// almanacStars selects the catalog stars listed after the bodies.
func almanacStars(cat *catalog.Catalog, opts almanacOptions) []catalog.Star {
	if opts.constellation == "" {
		return cat.Brighter(opts.mag)
	}
	var out []catalog.Star
	for _, s := range cat.Constellation(opts.constellation) {
		if s.Magnitude <= opts.mag {
			out = append(out, s)
		}
	}
	return out
}

func writeAlmanacJSON(out io.Writer, a *almanac.Almanac, path string) error {
	export := a.Export()
	if path == "-" {
		if err := export.WriteJSON(out); err != nil {
			return fmt.Errorf("write JSON to stdout: %w", err)
		}
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create almanac file: %w", err)
	}
	defer f.Close()
	if err := export.WriteJSON(f); err != nil {
		return fmt.Errorf("write JSON to file: %w", err)
	}
	return nil
}

// runAlmanacWatch repeats the almanac every interval. A real-time simulation
// clock starting at --time tracks horizon crossings between outputs.
func runAlmanacWatch(cmd *cobra.Command, opts almanacOptions) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	cfg := state.DefaultConfig(e.obs)
	cfg.Start = e.at
	mgr := state.NewManager(cfg)

	return watchLoop(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), e, mgr, opts)
}

func watchLoop(ctx context.Context, out, errOut io.Writer, e *env, mgr *state.Manager, opts almanacOptions) error {
	var seen time.Time
	outputOnce := func() {
		snap := mgr.Snapshot()
		if err := writeAlmanac(out, e, snap.Time, opts); err != nil {
			fmt.Fprintf(errOut, "Error: %v\n", err)
			e.logger.Error().Err(err).Time("at", snap.Time).Msg("almanac failed")
			return
		}
		if opts.events {
			seen = writeNewEvents(out, snap, seen, e.loc)
		}
	}

	outputOnce()

	ticker := time.NewTicker(opts.watch)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			mgr.Advance(now.Sub(last))
			last = now
			fmt.Fprintln(out) // Blank line between outputs
			outputOnce()
		}
	}
}

// writeNewEvents prints events later than seen and returns the newest
// event time.
func writeNewEvents(w io.Writer, snap state.Snapshot, seen time.Time, loc *time.Location) time.Time {
	var fresh []state.Event
	for _, ev := range snap.Events {
		if ev.Time.After(seen) {
			fresh = append(fresh, ev)
		}
	}
	if len(fresh) == 0 {
		return seen
	}
	fmt.Fprintln(w, "\nHorizon events:")
	for _, ev := range fresh {
		fmt.Fprintf(w, "  %s  %-8s %-4s az %3.0f°\n", ev.Time.In(loc).Format("15:04:05"), ev.Body, ev.Type, ev.AzDeg)
		if ev.Time.After(seen) {
			seen = ev.Time
		}
	}
	return seen
}
