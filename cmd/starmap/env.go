package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/litescript/ls-starmap/internal/astro"
	"github.com/litescript/ls-starmap/internal/catalog"
	"github.com/litescript/ls-starmap/internal/config"
	"github.com/litescript/ls-starmap/internal/logging"
)

// env is everything a command needs after flags, config and environment
// have been merged.
type env struct {
	cfg    config.Config
	obs    astro.Observer
	loc    *time.Location
	at     time.Time
	cat    *catalog.Catalog
	logger zerolog.Logger
}

// timeLayouts are accepted by --time, tried in order.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// loadEnv resolves the observer, display zone, instant and catalog.
func loadEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	latLonSet := flags.Changed("lat") || flags.Changed("lon")
	if latLonSet && !flags.Changed("site") {
		// Explicit coordinates win over a site from the config file
		cfg.Site = ""
	}
	if latLonSet && !flags.Changed("observer") {
		cfg.Observer.Name = ""
		cfg.Observer.Timezone = ""
	}

	obs, err := cfg.ResolveObserver()
	if err != nil {
		return nil, err
	}

	logger := logging.Setup(cfg.LogLevel)

	loc := config.Location(obs)
	if tz, _ := flags.GetString("tz"); tz != "" {
		loc, err = time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("--tz: %w", err)
		}
	}

	timeFlag, _ := flags.GetString("time")
	at, err := parseTime(timeFlag, loc)
	if err != nil {
		return nil, err
	}

	cat := catalog.Default()
	if cfg.Catalog != "" {
		cat, err = catalog.Load(cfg.Catalog)
		if err != nil {
			return nil, err
		}
	}

	logger.Debug().
		Str("observer", obs.Name).
		Float64("lat", obs.LatDeg).
		Float64("lon", obs.LonDeg).
		Str("tz", loc.String()).
		Time("at", at).
		Int("stars", cat.Len()).
		Msg("environment resolved")

	return &env{cfg: cfg, obs: obs, loc: loc, at: at, cat: cat, logger: logger}, nil
}

// parseTime parses a --time value. Values without an offset are read in loc.
func parseTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "now") {
		return time.Now(), nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid --time %q: want RFC3339 or 2006-01-02 15:04", s)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

// observerLabel names the observer for output headers.
func observerLabel(obs astro.Observer) string {
	if obs.Name != "" {
		return obs.Name
	}
	return fmt.Sprintf("%.4f, %.4f", obs.LatDeg, obs.LonDeg)
}
