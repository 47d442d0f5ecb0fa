// Package state holds the simulated sky clock shared by the UI and headless
// modes, with thread-safe access.
package state

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/litescript/ls-starmap/internal/almanac"
	"github.com/litescript/ls-starmap/internal/astro"
	"github.com/litescript/ls-starmap/internal/ephem"
)

// EventType is the kind of horizon event observed between frames.
type EventType string

const (
	EventRise EventType = "RISE"
	EventSet  EventType = "SET"
)

// Event is a body crossing the horizon in simulated time.
type Event struct {
	Type  EventType `json:"type"`
	Time  time.Time `json:"time"`
	Body  string    `json:"body"`
	AzDeg float64   `json:"az_deg"`
}

// RateSteps are the clock speeds the UI steps through, in simulated seconds
// per wall second.
var RateSteps = []float64{1, 10, 60, 300, 1800, 3600, 21600, 86400}

// BodyState is a body's position at the current simulated time.
type BodyState struct {
	Name       string
	Kind       almanac.Kind
	Position   ephem.PlanetPosition
	Horizontal astro.Horizontal
}

// Manager owns the simulated clock and the bodies computed for it.
type Manager struct {
	mu sync.RWMutex

	// Clock
	simTime time.Time
	rate    float64
	paused  bool

	observer astro.Observer
	targets  []almanac.Target

	// Last computed sky, used for crossing detection
	bodies    []BodyState
	computed  time.Time
	lastError error
	frames    int

	// Event log (ring buffer)
	events       []Event
	maxEvents    int
	eventWriteAt int
}

// Config holds configuration for the state manager.
type Config struct {
	Observer  astro.Observer
	Start     time.Time // Zero means the current wall time
	Rate      float64   // Zero means real time
	MaxEvents int
}

// DefaultConfig returns real-time defaults for obs.
func DefaultConfig(obs astro.Observer) Config {
	return Config{
		Observer:  obs,
		Rate:      1,
		MaxEvents: 50,
	}
}

// NewManager creates a state manager and computes the initial sky.
func NewManager(cfg Config) *Manager {
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 50
	}
	rate := cfg.Rate
	if rate == 0 {
		rate = 1
	}
	start := cfg.Start
	if start.IsZero() {
		start = time.Now()
	}

	var targets []almanac.Target
	for _, name := range ephem.Bodies() {
		if t, err := almanac.BodyTarget(name); err == nil {
			targets = append(targets, t)
		}
	}

	m := &Manager{
		simTime:   start.UTC(),
		rate:      rate,
		observer:  cfg.Observer,
		targets:   targets,
		maxEvents: maxEvents,
		events:    make([]Event, 0, maxEvents),
	}
	m.recompute(false)
	return m
}

// Advance moves simulated time forward by wall*rate (backward for a negative
// rate) and recomputes the sky. Horizon crossings since the previous frame
// are recorded as events. It returns the new simulated time.
func (m *Manager) Advance(wall time.Duration) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.paused {
		m.simTime = m.simTime.Add(time.Duration(float64(wall) * m.rate))
	}
	m.recompute(true)
	return m.simTime
}

// SetTime jumps the clock without recording events.
func (m *Manager) SetTime(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.simTime = t.UTC()
	m.recompute(false)
}

// Now resets the clock to the wall clock at real-time rate.
func (m *Manager) Now() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.simTime = time.Now().UTC()
	m.rate = 1
	m.recompute(false)
}

// SetObserver moves the observer and recomputes the sky.
func (m *Manager) SetObserver(obs astro.Observer) error {
	if err := obs.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observer = obs
	m.recompute(false)
	return nil
}

// TogglePause pauses or resumes the clock and returns the new paused state.
func (m *Manager) TogglePause() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = !m.paused
	return m.paused
}

// SetRate sets the clock multiplier. A zero rate is rejected.
func (m *Manager) SetRate(rate float64) error {
	if rate == 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return fmt.Errorf("invalid clock rate %v", rate)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rate = rate
	return nil
}

// Reverse flips the direction of the clock.
func (m *Manager) Reverse() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rate = -m.rate
}

// Faster moves to the next rate step, keeping the direction.
func (m *Manager) Faster() float64 {
	return m.stepRate(1)
}

// Slower moves to the previous rate step, keeping the direction.
func (m *Manager) Slower() float64 {
	return m.stepRate(-1)
}

func (m *Manager) stepRate(dir int) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	sign := 1.0
	if m.rate < 0 {
		sign = -1
	}
	speed := math.Abs(m.rate)

	// Index of the first step at or above the current speed
	idx := len(RateSteps) - 1
	for i, s := range RateSteps {
		if s >= speed {
			idx = i
			break
		}
	}
	if dir > 0 && RateSteps[idx] <= speed {
		idx++
	} else if dir < 0 {
		idx--
	}
	idx = max(0, min(len(RateSteps)-1, idx))

	m.rate = sign * RateSteps[idx]
	return m.rate
}

// recompute refreshes body positions for the current simulated time. When
// detect is set, altitude sign changes against the previous frame become
// events. Callers must hold the write lock.
func (m *Manager) recompute(detect bool) {
	bodies := make([]BodyState, 0, len(m.targets))
	var firstErr error
	for _, t := range m.targets {
		pos, err := t.Position(m.simTime, m.observer)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", t.Name, err)
			}
			continue
		}
		hz, err := astro.EquatorialToHorizontal(pos.Position.Equatorial(), m.observer, m.simTime)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		bodies = append(bodies, BodyState{Name: t.Name, Kind: t.Kind, Position: pos, Horizontal: hz})
	}

	if detect && firstErr == nil && len(m.bodies) == len(bodies) && !m.computed.Equal(m.simTime) {
		m.detectEvents(m.bodies, m.computed, bodies, m.simTime)
	}

	m.bodies = bodies
	m.computed = m.simTime
	m.lastError = firstErr
	m.frames++
}

// detectEvents compares two frames and logs each horizon crossing at its
// interpolated time. The frames may be in either time order.
func (m *Manager) detectEvents(prev []BodyState, prevTime time.Time, curr []BodyState, currTime time.Time) {
	early, late := prev, curr
	t1, t2 := prevTime, currTime
	if currTime.Before(prevTime) {
		early, late = curr, prev
		t1, t2 = currTime, prevTime
	}

	for i := range early {
		a, b := early[i].Horizontal.AltDeg, late[i].Horizontal.AltDeg
		var typ EventType
		switch {
		case a <= astro.StandardAltitude && b > astro.StandardAltitude:
			typ = EventRise
		case a > astro.StandardAltitude && b <= astro.StandardAltitude:
			typ = EventSet
		default:
			continue
		}
		m.addEvent(Event{
			Type:  typ,
			Time:  astro.InterpolateCrossing(t1, t2, a, b, astro.StandardAltitude),
			Body:  late[i].Name,
			AzDeg: late[i].Horizontal.AzDeg,
		})
	}
}

// addEvent adds an event to the ring buffer.
func (m *Manager) addEvent(e Event) {
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, e)
	} else {
		m.events[m.eventWriteAt] = e
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
}

// Snapshot represents an immutable snapshot of current state.
type Snapshot struct {
	Time      time.Time
	Rate      float64
	Paused    bool
	Observer  astro.Observer
	LSTHours  float64
	Bodies    []BodyState
	Events    []Event
	LastError error
	Frames    int
}

// Body returns the named body from the snapshot.
func (s Snapshot) Body(name string) (BodyState, bool) {
	for _, b := range s.Bodies {
		if b.Name == name {
			return b, true
		}
	}
	return BodyState{}, false
}

// Snapshot returns a consistent snapshot of current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bodies := make([]BodyState, len(m.bodies))
	copy(bodies, m.bodies)

	return Snapshot{
		Time:      m.simTime,
		Rate:      m.rate,
		Paused:    m.paused,
		Observer:  m.observer,
		LSTHours:  astro.LocalSiderealTime(m.simTime, m.observer.LonDeg),
		Bodies:    bodies,
		Events:    m.getEventsOrdered(),
		LastError: m.lastError,
		Frames:    m.frames,
	}
}

// getEventsOrdered returns events in the order they were recorded.
func (m *Manager) getEventsOrdered() []Event {
	if len(m.events) == 0 {
		return nil
	}

	// If buffer isn't full yet, just copy
	if len(m.events) < m.maxEvents {
		result := make([]Event, len(m.events))
		copy(result, m.events)
		return result
	}

	// Ring buffer is full, reorder from oldest to newest
	result := make([]Event, m.maxEvents)
	for i := 0; i < m.maxEvents; i++ {
		result[i] = m.events[(m.eventWriteAt+i)%m.maxEvents]
	}
	return result
}

// RecentEvents returns the last n events.
func (m *Manager) RecentEvents(n int) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.getEventsOrdered()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

// Time returns the simulated time.
func (m *Manager) Time() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.simTime
}

// Rate returns the clock multiplier.
func (m *Manager) Rate() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rate
}

// Observer returns the current observer.
func (m *Manager) Observer() astro.Observer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.observer
}
