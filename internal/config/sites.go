package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/litescript/ls-starmap/internal/astro"
)

//go:embed sites.yaml
var defaultSitesYAML []byte

// ErrUnknownSite is returned when a site name is not in the sites list.
var ErrUnknownSite = errors.New("unknown site")

// Site is a named observing location.
type Site struct {
	Name      string   `yaml:"name"`
	Aliases   []string `yaml:"aliases,omitempty"`
	Lat       float64  `yaml:"lat"`
	Lon       float64  `yaml:"lon"`
	Elevation float64  `yaml:"elevation,omitempty"`
	Timezone  string   `yaml:"timezone,omitempty"`
}

// Observer converts the site to an astro.Observer.
func (s Site) Observer() astro.Observer {
	return astro.Observer{
		Name:       s.Name,
		LatDeg:     s.Lat,
		LonDeg:     s.Lon,
		ElevationM: s.Elevation,
		Timezone:   s.Timezone,
	}
}

// Sites is the root structure of a sites file.
type Sites struct {
	Sites []Site `yaml:"sites"`
}

// ParseSites decodes and validates a YAML sites document.
func ParseSites(data []byte) (*Sites, error) {
	var s Sites
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse sites: %w", err)
	}
	for _, site := range s.Sites {
		if site.Name == "" {
			return nil, fmt.Errorf("parse sites: site without a name")
		}
		if err := site.Observer().Validate(); err != nil {
			return nil, fmt.Errorf("site %q: %w", site.Name, err)
		}
	}
	return &s, nil
}

// LoadSites reads a YAML sites file from the specified path.
func LoadSites(path string) (*Sites, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSites(data)
}

// DefaultSites returns the built-in site list.
func DefaultSites() *Sites {
	s, err := ParseSites(defaultSitesYAML)
	if err != nil {
		panic("config: embedded sites.yaml: " + err.Error())
	}
	return s
}

// Find looks a site up by name or alias (case-insensitive).
func (s *Sites) Find(name string) (Site, error) {
	want := strings.TrimSpace(name)
	for _, site := range s.Sites {
		if strings.EqualFold(site.Name, want) {
			return site, nil
		}
		for _, alias := range site.Aliases {
			if strings.EqualFold(alias, want) {
				return site, nil
			}
		}
	}
	return Site{}, fmt.Errorf("%w: %q", ErrUnknownSite, name)
}

// Names returns the site names in file order.
func (s *Sites) Names() []string {
	names := make([]string, len(s.Sites))
	for i, site := range s.Sites {
		names[i] = site.Name
	}
	return names
}
