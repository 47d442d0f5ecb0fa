package astro

import (
	"errors"
	"math"
	"time"
)

// Sample is an RA/Dec position at a specific time. Moving bodies are
// described by a chronological slice of samples.
type Sample struct {
	Time time.Time
	Equatorial
}

// Crossing is an interpolated passage through an altitude threshold.
type Crossing struct {
	Time   time.Time
	Rising bool // true when the altitude increases through the threshold
}

// Errors for sampled visibility calculations.
var (
	ErrInsufficientSamples = errors.New("insufficient samples for visibility calculation")
	ErrInvalidStep         = errors.New("sample step must be positive and shorter than the span")
)

// FixedSamples samples a fixed position every step over [from, from+span].
func FixedSamples(eq Equatorial, from time.Time, span, step time.Duration) ([]Sample, error) {
	if step <= 0 || step > span {
		return nil, ErrInvalidStep
	}
	n := int(span/step) + 1
	samples := make([]Sample, 0, n)
	for i := 0; i < n; i++ {
		samples = append(samples, Sample{Time: from.Add(time.Duration(i) * step), Equatorial: eq})
	}
	return samples, nil
}

// ScanCrossings converts samples to altitudes and returns every crossing of
// thresholdDeg, interpolated linearly between neighbouring samples.
func ScanCrossings(obs Observer, samples []Sample, thresholdDeg float64) ([]Crossing, error) {
	if len(samples) < 2 {
		return nil, ErrInsufficientSamples
	}

	alts, err := sampleAltitudes(obs, samples)
	if err != nil {
		return nil, err
	}

	var out []Crossing
	for i := 1; i < len(samples); i++ {
		prev, curr := alts[i-1], alts[i]
		switch {
		case prev <= thresholdDeg && curr > thresholdDeg:
			out = append(out, Crossing{
				Time:   InterpolateCrossing(samples[i-1].Time, samples[i].Time, prev, curr, thresholdDeg),
				Rising: true,
			})
		case prev > thresholdDeg && curr <= thresholdDeg:
			out = append(out, Crossing{
				Time: InterpolateCrossing(samples[i-1].Time, samples[i].Time, prev, curr, thresholdDeg),
			})
		}
	}
	return out, nil
}

// MaxAltitudeSamples finds the time of maximum altitude across samples.
func MaxAltitudeSamples(obs Observer, samples []Sample) (time.Time, float64, error) {
	if len(samples) == 0 {
		return time.Time{}, 0, ErrInsufficientSamples
	}

	alts, err := sampleAltitudes(obs, samples)
	if err != nil {
		return time.Time{}, 0, err
	}

	maxIdx := 0
	for i, a := range alts {
		if a > alts[maxIdx] {
			maxIdx = i
		}
	}

	// Refine using quadratic interpolation when the peak has two neighbours
	if maxIdx == 0 || maxIdx == len(samples)-1 {
		return samples[maxIdx].Time, alts[maxIdx], nil
	}

	// Parabola y = at^2 + bt + c through t = -1, 0, +1
	y0, y1, y2 := alts[maxIdx-1], alts[maxIdx], alts[maxIdx+1]
	c := y1
	a := (y0+y2)/2 - c
	b := (y2 - y0) / 2

	// Maximum at t = -b/(2a), but only if parabola opens downward (a < 0)
	if a >= 0 {
		return samples[maxIdx].Time, y1, nil
	}

	tMax := math.Max(-1, math.Min(1, -b/(2*a)))

	var dt time.Duration
	if tMax < 0 {
		dt = samples[maxIdx].Time.Sub(samples[maxIdx-1].Time)
	} else {
		dt = samples[maxIdx+1].Time.Sub(samples[maxIdx].Time)
	}
	refined := samples[maxIdx].Time.Add(time.Duration(float64(dt) * tMax))

	return refined, a*tMax*tMax + b*tMax + c, nil
}

func sampleAltitudes(obs Observer, samples []Sample) ([]float64, error) {
	alts := make([]float64, len(samples))
	for i, s := range samples {
		alt, err := Altitude(s.Equatorial, obs, s.Time)
		if err != nil {
			return nil, err
		}
		alts[i] = alt
	}
	return alts, nil
}

// InterpolateCrossing finds the time when altitude crosses a threshold,
// interpolating linearly between two observations.
func InterpolateCrossing(t1, t2 time.Time, alt1, alt2, threshold float64) time.Time {
	if math.Abs(alt2-alt1) < 0.0001 {
		return t1
	}

	fraction := (threshold - alt1) / (alt2 - alt1)
	fraction = math.Max(0, math.Min(1, fraction))

	return t1.Add(time.Duration(float64(t2.Sub(t1)) * fraction))
}

// ElevationTier categorizes altitude for UI display.
type ElevationTier int

const (
	ElevationNone   ElevationTier = iota // Below horizon
	ElevationLow                         // 0-15 degrees
	ElevationMedium                      // 15-45 degrees
	ElevationHigh                        // 45+ degrees
)

// GetElevationTier returns the tier for a given altitude.
func GetElevationTier(altDeg float64) ElevationTier {
	switch {
	case altDeg <= 0:
		return ElevationNone
	case altDeg < 15:
		return ElevationLow
	case altDeg < 45:
		return ElevationMedium
	default:
		return ElevationHigh
	}
}

// String returns a short label for the tier.
func (t ElevationTier) String() string {
	switch t {
	case ElevationLow:
		return "low"
	case ElevationMedium:
		return "medium"
	case ElevationHigh:
		return "high"
	default:
		return "below"
	}
}
