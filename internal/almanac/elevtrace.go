package almanac

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-starmap/internal/astro"
)

// ElevationSample is a single altitude measurement at a point in time.
type ElevationSample struct {
	Time   time.Time
	AltDeg float64
}

// ElevationTrace is a target's altitude sampled over a time window.
type ElevationTrace struct {
	Name        string
	Observer    astro.Observer
	Samples     []ElevationSample
	Crossings   []astro.Crossing // Horizon crossings inside the window
	WindowStart time.Time
	WindowEnd   time.Time

	positions []astro.Sample
}

// DefaultTraceWindow is the half-width of the default trace window.
const DefaultTraceWindow = 12 * time.Hour

// DefaultTraceStep is the default time between samples.
const DefaultTraceStep = 10 * time.Minute

// ComputeElevationTrace samples the target's altitude every step over
// [center-window, center+window]. Moving bodies are recomputed at every
// sample.
func ComputeElevationTrace(target Target, obs astro.Observer, center time.Time, window, step time.Duration) (*ElevationTrace, error) {
	if window <= 0 || step <= 0 || step > 2*window {
		return nil, astro.ErrInvalidStep
	}

	start := center.Add(-window)
	end := center.Add(window)
	positions, err := tracePositions(target, obs, start, end, step)
	if err != nil {
		return nil, err
	}

	trace := &ElevationTrace{
		Name:        target.Name,
		Observer:    obs,
		WindowStart: start,
		WindowEnd:   end,
		Samples:     make([]ElevationSample, 0, len(positions)),
		positions:   positions,
	}
	for _, p := range positions {
		alt, err := astro.Altitude(p.Equatorial, obs, p.Time)
		if err != nil {
			return nil, err
		}
		trace.Samples = append(trace.Samples, ElevationSample{Time: p.Time, AltDeg: alt})
	}

	if len(positions) >= 2 {
		trace.Crossings, err = astro.ScanCrossings(obs, positions, 0)
		if err != nil {
			return nil, err
		}
	}
	return trace, nil
}

// tracePositions returns the target's RA/Dec at every sample time.
func tracePositions(target Target, obs astro.Observer, start, end time.Time, step time.Duration) ([]astro.Sample, error) {
	if !target.Moving() {
		pos, err := target.Position(start, obs)
		if err != nil {
			return nil, err
		}
		return astro.FixedSamples(pos.Position.Equatorial(), start, end.Sub(start), step)
	}

	var out []astro.Sample
	for at := start; !at.After(end); at = at.Add(step) {
		pos, err := target.Position(at, obs)
		if err != nil {
			return nil, err
		}
		out = append(out, astro.Sample{Time: at, Equatorial: pos.Position.Equatorial()})
	}
	return out, nil
}

// CurrentAltitude returns the sample closest to at. ok is false for an
// empty trace.
func (t *ElevationTrace) CurrentAltitude(at time.Time) (s ElevationSample, ok bool) {
	minDelta := time.Duration(1<<63 - 1)
	for _, sample := range t.Samples {
		delta := sample.Time.Sub(at)
		if delta < 0 {
			delta = -delta
		}
		if delta < minDelta {
			minDelta = delta
			s, ok = sample, true
		}
	}
	return s, ok
}

// Peak returns the highest point of the trace, interpolated between
// samples when the positions are known.
func (t *ElevationTrace) Peak() (ElevationSample, bool) {
	if len(t.Samples) == 0 {
		return ElevationSample{}, false
	}
	if len(t.positions) == len(t.Samples) {
		if at, alt, err := astro.MaxAltitudeSamples(t.Observer, t.positions); err == nil {
			return ElevationSample{Time: at, AltDeg: alt}, true
		}
	}
	best := t.Samples[0]
	for _, s := range t.Samples[1:] {
		if s.AltDeg > best.AltDeg {
			best = s
		}
	}
	return best, true
}

// Resample averages the samples into width buckets.
func (t *ElevationTrace) Resample(width int) []float64 {
	if len(t.Samples) == 0 || width <= 0 {
		return nil
	}

	result := make([]float64, width)
	perBucket := float64(len(t.Samples)) / float64(width)

	for i := 0; i < width; i++ {
		startIdx := int(float64(i) * perBucket)
		endIdx := int(float64(i+1) * perBucket)
		if endIdx > len(t.Samples) {
			endIdx = len(t.Samples)
		}
		if startIdx >= endIdx {
			startIdx = endIdx - 1
		}
		if startIdx < 0 {
			startIdx = 0
		}

		sum := 0.0
		for j := startIdx; j < endIdx; j++ {
			sum += t.Samples[j].AltDeg
		}
		if n := endIdx - startIdx; n > 0 {
			result[i] = sum / float64(n)
		}
	}
	return result
}

// sparklineBlocks are the block characters from lowest to highest.
var sparklineBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// blockFor maps an altitude to a block index, or -1 below the horizon.
func blockFor(alt float64) int {
	if alt <= 0 {
		return -1
	}
	idx := int(alt / 90 * 7)
	if idx > 7 {
		idx = 7
	}
	return idx
}

// Sparkline renders the trace as width block characters. Buckets below the
// horizon are blank.
func (t *ElevationTrace) Sparkline(width int) string {
	var sb strings.Builder
	for _, alt := range t.Resample(width) {
		if idx := blockFor(alt); idx >= 0 {
			sb.WriteRune(sparklineBlocks[idx])
		} else {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

// Gradient stops for the coloured sparkline.
var (
	elevColorLow  = [3]uint8{0x1b, 0x2b, 0x4b} // dark blue
	elevColorMid  = [3]uint8{0x34, 0x78, 0xc0} // blue
	elevColorHigh = [3]uint8{0x8b, 0xe9, 0xff} // cyan
)

// RenderSparkline is Sparkline with each cell coloured by altitude, followed
// by the altitude nearest to now.
func (t *ElevationTrace) RenderSparkline(width int, now time.Time) string {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	samples := t.Resample(width)
	if len(samples) == 0 {
		return dim.Render("no elevation data")
	}

	var sb strings.Builder
	for _, alt := range samples {
		idx := blockFor(alt)
		if idx < 0 {
			sb.WriteString(dim.Render("_"))
			continue
		}
		r, g, b := interpolateElevColor(alt / 90)
		color := fmt.Sprintf("#%02x%02x%02x", r, g, b)
		sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(string(sparklineBlocks[idx])))
	}

	if cur, ok := t.CurrentAltitude(now); ok {
		nowStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
		sb.WriteString(nowStyle.Render(fmt.Sprintf(" now: %.0f°", cur.AltDeg)))
	}
	return sb.String()
}

// interpolateElevColor returns the gradient colour for t in [0, 1].
func interpolateElevColor(t float64) (uint8, uint8, uint8) {
	t = max(0, min(1, t))

	from, to, s := elevColorLow, elevColorMid, t*2
	if t >= 0.5 {
		from, to, s = elevColorMid, elevColorHigh, (t-0.5)*2
	}
	mix := func(a, b uint8) uint8 {
		return uint8(float64(a)*(1-s) + float64(b)*s)
	}
	return mix(from[0], to[0]), mix(from[1], to[1]), mix(from[2], to[2])
}
