// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - Almanac view, elevation sparklines, Horizons cross-check command
// 0.2.0 - Cobra CLI, named sites, rise/set event log in the simulation clock
// 0.1.0 - Initial release: sky view, planetary ephemeris, headless almanac
