package ephem

import "strings"

// TargetID is a NAIF SPICE ID for a solar-system body.
type TargetID int

// BodyKind distinguishes how a target's position is computed.
type BodyKind int

const (
	KindPlanet BodyKind = iota
	KindMoon
	KindSun
)

// String returns the kind name.
func (k BodyKind) String() string {
	switch k {
	case KindPlanet:
		return "planet"
	case KindMoon:
		return "moon"
	case KindSun:
		return "sun"
	default:
		return "unknown"
	}
}

// TargetInfo contains naming and NAIF mapping for a body.
type TargetInfo struct {
	Code    string   // Short code (e.g., "MAR")
	Name    string   // Display name
	NAIFID  TargetID // NAIF SPICE ID, also the Horizons COMMAND
	Kind    BodyKind // How the position is computed
	Aliases []string // Alternative names accepted by lookup
}

// NAIF SPICE IDs for the bodies this package models.
// Sourced from https://naif.jpl.nasa.gov/pub/naif/toolkit_docs/C/req/naif_ids.html
const (
	NAIFSun     TargetID = 10
	NAIFMercury TargetID = 199
	NAIFVenus   TargetID = 299
	NAIFEarth   TargetID = 399
	NAIFMoon    TargetID = 301
	NAIFMars    TargetID = 499
	NAIFJupiter TargetID = 599
	NAIFSaturn  TargetID = 699
	NAIFUranus  TargetID = 799
	NAIFNeptune TargetID = 899
)

// Targets is the canonical list of supported bodies. Planets appear in
// order of distance from the Sun. Earth is deliberately absent: positions
// are geocentric.
var Targets = []TargetInfo{
	{Code: "SUN", Name: "Sun", NAIFID: NAIFSun, Kind: KindSun, Aliases: []string{"Sol"}},
	{Code: "MOON", Name: "Moon", NAIFID: NAIFMoon, Kind: KindMoon, Aliases: []string{"Luna"}},
	{Code: "MER", Name: "Mercury", NAIFID: NAIFMercury, Kind: KindPlanet},
	{Code: "VEN", Name: "Venus", NAIFID: NAIFVenus, Kind: KindPlanet},
	{Code: "MAR", Name: "Mars", NAIFID: NAIFMars, Kind: KindPlanet},
	{Code: "JUP", Name: "Jupiter", NAIFID: NAIFJupiter, Kind: KindPlanet},
	{Code: "SAT", Name: "Saturn", NAIFID: NAIFSaturn, Kind: KindPlanet},
	{Code: "URA", Name: "Uranus", NAIFID: NAIFUranus, Kind: KindPlanet},
	{Code: "NEP", Name: "Neptune", NAIFID: NAIFNeptune, Kind: KindPlanet},
}

// TargetsByNAIF maps NAIF IDs to target info for quick lookup.
var TargetsByNAIF = func() map[TargetID]TargetInfo {
	m := make(map[TargetID]TargetInfo, len(Targets))
	for _, t := range Targets {
		m[t.NAIFID] = t
	}
	return m
}()

// TargetsByName maps lowercase names, codes and aliases to target info.
var TargetsByName = func() map[string]TargetInfo {
	m := make(map[string]TargetInfo, len(Targets)*3)
	for _, t := range Targets {
		m[normalizeName(t.Name)] = t
		m[normalizeName(t.Code)] = t
		for _, alias := range t.Aliases {
			m[normalizeName(alias)] = t
		}
	}
	return m
}()

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// GetTargetByNAIF returns target info for a NAIF ID.
func GetTargetByNAIF(id TargetID) (TargetInfo, bool) {
	t, ok := TargetsByNAIF[id]
	return t, ok
}

// GetTargetByName returns target info for a body name, code or alias
// (case-insensitive).
func GetTargetByName(name string) (TargetInfo, bool) {
	t, ok := TargetsByName[normalizeName(name)]
	return t, ok
}

// GetNAIFIDByName returns the NAIF ID for a body name, or 0 if unknown.
func GetNAIFIDByName(name string) TargetID {
	if t, ok := GetTargetByName(name); ok {
		return t.NAIFID
	}
	return 0
}

// Bodies returns the names of all supported bodies in canonical order.
func Bodies() []string {
	names := make([]string, len(Targets))
	for i, t := range Targets {
		names[i] = t.Name
	}
	return names
}

// PlanetNames returns the seven modelled planets, Mercury through Neptune.
func PlanetNames() []string {
	var names []string
	for _, t := range Targets {
		if t.Kind == KindPlanet {
			names = append(names, t.Name)
		}
	}
	return names
}
