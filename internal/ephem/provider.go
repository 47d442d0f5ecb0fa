package ephem

import (
	"context"
	"fmt"
	"time"

	"github.com/litescript/ls-starmap/internal/astro"
)

// EphemerisPath is a body's apparent track over time.
type EphemerisPath struct {
	TargetID TargetID
	Samples  []astro.Sample
	Start    time.Time
	End      time.Time
}

// Provider defines the interface for ephemeris data sources.
type Provider interface {
	// Name returns the provider name for display/logging.
	Name() string

	// Position returns the apparent position of a target for obs at t.
	Position(ctx context.Context, target TargetID, t time.Time, obs astro.Observer) (Position, error)
}

// ModelProvider serves positions from the local orbit models.
type ModelProvider struct{}

// Name implements Provider.
func (ModelProvider) Name() string {
	return "Model"
}

// Position implements Provider.
func (ModelProvider) Position(ctx context.Context, target TargetID, t time.Time, obs astro.Observer) (Position, error) {
	if err := ctx.Err(); err != nil {
		return Position{}, err
	}
	info, ok := GetTargetByNAIF(target)
	if !ok {
		return Position{}, fmt.Errorf("%w: NAIF %d", ErrUnknownBody, target)
	}
	pp, err := GetBodyPosition(info.Name, t, obs)
	if err != nil {
		return Position{}, err
	}
	return pp.Position, nil
}

// GetPath samples a provider every step over [start, end].
func GetPath(ctx context.Context, p Provider, target TargetID, start, end time.Time, step time.Duration, obs astro.Observer) (EphemerisPath, error) {
	if step <= 0 || !end.After(start) {
		return EphemerisPath{}, astro.ErrInvalidStep
	}

	path := EphemerisPath{TargetID: target, Start: start, End: end}
	for at := start; !at.After(end); at = at.Add(step) {
		pos, err := p.Position(ctx, target, at, obs)
		if err != nil {
			return EphemerisPath{}, fmt.Errorf("%s at %s: %w", p.Name(), at.Format(time.RFC3339), err)
		}
		path.Samples = append(path.Samples, astro.Sample{Time: at, Equatorial: pos.Equatorial()})
	}
	return path, nil
}

// Mode represents which ephemeris source to use.
type Mode int

const (
	ModeModel    Mode = iota // Local orbit models (default)
	ModeHorizons             // JPL Horizons
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeModel:
		return "model"
	case ModeHorizons:
		return "horizons"
	default:
		return "unknown"
	}
}

// ParseMode parses a mode string. Unknown values select the local model.
func ParseMode(s string) Mode {
	switch s {
	case "horizons":
		return ModeHorizons
	default:
		return ModeModel
	}
}
