// Package config loads runtime settings and named observing sites.
package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // site time zones must resolve on hosts without zoneinfo

	"github.com/spf13/viper"

	"github.com/litescript/ls-starmap/internal/astro"
)

// ObserverConfig is the observing location when no site is selected.
type ObserverConfig struct {
	Name      string  `mapstructure:"name"`
	Lat       float64 `mapstructure:"lat"`
	Lon       float64 `mapstructure:"lon"`
	Elevation float64 `mapstructure:"elevation"`
	Timezone  string  `mapstructure:"timezone"`
}

// UIConfig holds terminal UI settings.
type UIConfig struct {
	FrameInterval time.Duration `mapstructure:"frame_interval"`
	Rate          float64       `mapstructure:"rate"`
	MagLimit      float64       `mapstructure:"mag_limit"`
	Labels        bool          `mapstructure:"labels"`
}

// Config holds all runtime configuration.
// Values are populated from .starmap.yaml, STARMAP_* env vars, and CLI flags.
type Config struct {
	Observer    ObserverConfig `mapstructure:"observer"`
	Site        string         `mapstructure:"site"`
	SitesFile   string         `mapstructure:"sites_file"`
	Catalog     string         `mapstructure:"catalog"`
	LogLevel    string         `mapstructure:"log_level"`
	Ephemeris   string         `mapstructure:"ephemeris"`
	HorizonsURL string         `mapstructure:"horizons_url"`
	UI          UIConfig       `mapstructure:"ui"`
}

// SetDefaults registers built-in defaults with viper.
func SetDefaults() {
	viper.SetDefault("observer.name", "Greenwich")
	viper.SetDefault("observer.lat", 51.4769)
	viper.SetDefault("observer.lon", -0.0005)
	viper.SetDefault("observer.elevation", 46.0)
	viper.SetDefault("observer.timezone", "")
	viper.SetDefault("site", "")
	viper.SetDefault("sites_file", "")
	viper.SetDefault("catalog", "")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("ephemeris", "model")
	viper.SetDefault("horizons_url", "")
	viper.SetDefault("ui.frame_interval", "100ms")
	viper.SetDefault("ui.rate", 1.0)
	viper.SetDefault("ui.mag_limit", 4.5)
	viper.SetDefault("ui.labels", true)
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	SetDefaults()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.UI.FrameInterval <= 0 {
		return Config{}, fmt.Errorf("ui.frame_interval must be positive, got %v", cfg.UI.FrameInterval)
	}
	if _, err := cfg.ResolveObserver(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Sites returns the configured sites list, or the built-in one.
func (c Config) Sites() (*Sites, error) {
	if c.SitesFile == "" {
		return DefaultSites(), nil
	}
	return LoadSites(c.SitesFile)
}

// ResolveObserver returns the named site when one is configured and the
// explicit observer otherwise. The result is validated.
func (c Config) ResolveObserver() (astro.Observer, error) {
	obs := astro.Observer{
		Name:       c.Observer.Name,
		LatDeg:     c.Observer.Lat,
		LonDeg:     c.Observer.Lon,
		ElevationM: c.Observer.Elevation,
		Timezone:   c.Observer.Timezone,
	}

	if c.Site != "" {
		sites, err := c.Sites()
		if err != nil {
			return astro.Observer{}, err
		}
		site, err := sites.Find(c.Site)
		if err != nil {
			return astro.Observer{}, fmt.Errorf("%w (known: %s)", err, strings.Join(sites.Names(), ", "))
		}
		obs = site.Observer()
	}

	if err := obs.Validate(); err != nil {
		return astro.Observer{}, fmt.Errorf("observer: %w", err)
	}
	return obs, nil
}

// Location returns the observer's display time zone, falling back to local
// time when none is configured or the name is unknown.
func Location(obs astro.Observer) *time.Location {
	if obs.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(obs.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
