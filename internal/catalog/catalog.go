// Package catalog loads and queries bright-star catalogs.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/litescript/ls-starmap/internal/astro"
)

//go:embed stars.json
var defaultData []byte

var (
	// ErrInvalidStar is returned when a record fails validation.
	ErrInvalidStar = errors.New("invalid star record")

	// ErrDuplicateID is returned when two records share an id.
	ErrDuplicateID = errors.New("duplicate star id")
)

// Star is a cataloged star. Coordinates are J2000.
type Star struct {
	ID            string  `json:"id"`
	RAHours       float64 `json:"ra"`
	DecDeg        float64 `json:"dec"`
	Magnitude     float64 `json:"magnitude"`
	SpectralClass string  `json:"spectralClass"`
	Name          string  `json:"name,omitempty"`
	Bayer         string  `json:"bayer,omitempty"`
	Constellation string  `json:"constellation"`
}

// Equatorial returns the star's position.
func (s Star) Equatorial() astro.Equatorial {
	return astro.Equatorial{RAHours: s.RAHours, DecDeg: s.DecDeg}
}

// Label returns the proper name, falling back to the Bayer designation and
// then the id.
func (s Star) Label() string {
	switch {
	case s.Name != "":
		return s.Name
	case s.Bayer != "":
		return s.Bayer
	default:
		return s.ID
	}
}

func (s Star) validate() error {
	switch {
	case s.ID == "":
		return fmt.Errorf("%w: missing id", ErrInvalidStar)
	case math.IsNaN(s.RAHours) || s.RAHours < 0 || s.RAHours >= 24:
		return fmt.Errorf("%w: %s: ra %v outside [0, 24)", ErrInvalidStar, s.ID, s.RAHours)
	case math.IsNaN(s.DecDeg) || s.DecDeg < -90 || s.DecDeg > 90:
		return fmt.Errorf("%w: %s: dec %v outside [-90, 90]", ErrInvalidStar, s.ID, s.DecDeg)
	case math.IsNaN(s.Magnitude) || math.IsInf(s.Magnitude, 0):
		return fmt.Errorf("%w: %s: magnitude not finite", ErrInvalidStar, s.ID)
	}
	return nil
}

// Catalog holds stars sorted brightest first.
type Catalog struct {
	Stars []Star

	byName map[string]int
}

// Parse decodes and validates a JSON array of star records.
func Parse(r io.Reader) (*Catalog, error) {
	var stars []Star
	if err := json.NewDecoder(r).Decode(&stars); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	seen := make(map[string]bool, len(stars))
	for _, s := range stars {
		if err := s.validate(); err != nil {
			return nil, err
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, s.ID)
		}
		seen[s.ID] = true
	}
	return newCatalog(stars), nil
}

// Load reads a catalog file from disk.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := Parse(bytes.NewReader(defaultData))
	if err != nil {
		panic("catalog: embedded stars.json: " + err.Error())
	}
	return c
})

// Default returns the embedded catalog of about 90 bright stars. The result
// is shared and must not be modified.
func Default() *Catalog {
	return defaultCatalog()
}

func newCatalog(stars []Star) *Catalog {
	sort.SliceStable(stars, func(i, j int) bool {
		return stars[i].Magnitude < stars[j].Magnitude
	})
	c := &Catalog{Stars: stars, byName: make(map[string]int, len(stars)*2)}
	for i, s := range stars {
		for _, key := range []string{s.ID, s.Name, s.Bayer} {
			if key != "" {
				c.byName[strings.ToLower(key)] = i
			}
		}
	}
	return c
}

// Len returns the number of stars.
func (c *Catalog) Len() int {
	return len(c.Stars)
}

// Brighter returns the stars with magnitude at or below limitMag.
func (c *Catalog) Brighter(limitMag float64) []Star {
	// Stars are sorted by magnitude
	n := sort.Search(len(c.Stars), func(i int) bool {
		return c.Stars[i].Magnitude > limitMag
	})
	return c.Stars[:n:n]
}

// ByName finds a star by proper name, Bayer designation or id
// (case-insensitive).
func (c *Catalog) ByName(name string) (Star, bool) {
	i, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Star{}, false
	}
	return c.Stars[i], true
}

// Constellation returns the stars in a constellation by IAU code.
func (c *Catalog) Constellation(code string) []Star {
	var out []Star
	for _, s := range c.Stars {
		if strings.EqualFold(s.Constellation, code) {
			out = append(out, s)
		}
	}
	return out
}
