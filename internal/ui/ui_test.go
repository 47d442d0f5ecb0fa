package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/litescript/ls-starmap/internal/astro"
	"github.com/litescript/ls-starmap/internal/catalog"
	"github.com/litescript/ls-starmap/internal/state"
)

var testStart = time.Date(2024, 6, 21, 3, 30, 0, 0, time.UTC)

func newTestModel(t *testing.T) (Model, *state.Manager) {
	t.Helper()
	cfg := state.DefaultConfig(greenwich)
	cfg.Start = testStart
	cfg.Rate = 60
	mgr := state.NewManager(cfg)

	m := New(mgr, Options{
		FrameInterval: 100 * time.Millisecond,
		MagLimit:      2,
		Location:      time.UTC,
		Catalog:       catalog.Default(),
	})
	return m, mgr
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestModel_ClockKeys(t *testing.T) {
	m, mgr := newTestModel(t)

	m, _ = update(t, m, key(" "))
	if !mgr.Snapshot().Paused || m.statusMsg != "Paused" {
		t.Errorf("space did not pause (status %q)", m.statusMsg)
	}
	m, _ = update(t, m, key(" "))
	if mgr.Snapshot().Paused {
		t.Error("second space did not resume")
	}

	tests := []struct {
		key  string
		want float64
	}{
		{"+", 300},
		{"=", 1800},
		{"-", 300},
		{"r", -300},
		{"n", 1},
	}
	for _, tt := range tests {
		m, _ = update(t, m, key(tt.key))
		if got := mgr.Rate(); got != tt.want {
			t.Errorf("after %q rate = %v, want %v", tt.key, got, tt.want)
		}
	}
	if m.statusMsg != "Clock reset to now" {
		t.Errorf("status = %q", m.statusMsg)
	}
}

func TestModel_CycleSites(t *testing.T) {
	m, mgr := newTestModel(t)

	m, _ = update(t, m, key("O"))
	if m.statusMsg != "No sites configured" {
		t.Errorf("status = %q", m.statusMsg)
	}

	paranal := astro.Observer{Name: "Paranal", LatDeg: -24.6275, LonDeg: -70.4044, ElevationM: 2635}
	m.opts.Sites = []astro.Observer{paranal, {Name: "Nowhere", LatDeg: 95}, greenwich}

	m, _ = update(t, m, key("O"))
	if got := mgr.Observer(); got != paranal || m.statusMsg != "Site Paranal" {
		t.Errorf("observer = %+v, status %q", got, m.statusMsg)
	}
	if m.snapshot.Observer != paranal {
		t.Error("snapshot not refreshed after the site change")
	}

	// Invalid sites are reported and skipped over on the next press
	m, _ = update(t, m, key("O"))
	if mgr.Observer() != paranal || !strings.HasPrefix(m.statusMsg, "Site Nowhere:") {
		t.Errorf("invalid site: observer %+v, status %q", mgr.Observer(), m.statusMsg)
	}
	m, _ = update(t, m, key("O"))
	m, _ = update(t, m, key("O"))
	if mgr.Observer() != paranal {
		t.Errorf("cycle did not wrap: %+v", mgr.Observer())
	}
}

func TestModel_FrameAdvancesClock(t *testing.T) {
	m, mgr := newTestModel(t)

	wall := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m, cmd := update(t, m, FrameMsg(wall))
	if cmd == nil {
		t.Fatal("frame should schedule the next frame")
	}
	// First frame advances by one interval at 60x.
	if want := testStart.Add(6 * time.Second); !mgr.Time().Equal(want) {
		t.Errorf("time after first frame = %v, want %v", mgr.Time(), want)
	}

	m, _ = update(t, m, FrameMsg(wall.Add(time.Second)))
	if want := testStart.Add(66 * time.Second); !mgr.Time().Equal(want) {
		t.Errorf("time after second frame = %v, want %v", mgr.Time(), want)
	}
	if !m.snapshot.Time.Equal(mgr.Time()) {
		t.Errorf("snapshot not refreshed: %v", m.snapshot.Time)
	}
	if !m.skyView.at.Equal(mgr.Time()) {
		t.Errorf("sky view not refreshed: %v", m.skyView.at)
	}
}

func TestModel_SwitchViews(t *testing.T) {
	m, _ := newTestModel(t)
	if m.viewMode != ViewSky {
		t.Fatalf("initial view = %v", m.viewMode)
	}

	m, _ = update(t, m, key("tab"))
	if m.viewMode != ViewAlmanac {
		t.Errorf("tab -> %v, want almanac", m.viewMode)
	}
	if m.almanacView.almanac == nil {
		t.Error("almanac not built")
	}
	m, _ = update(t, m, key("tab"))
	if m.viewMode != ViewOrbits {
		t.Errorf("tab -> %v, want orbits", m.viewMode)
	}
	if len(m.orbitView.bodies) != 8 {
		t.Errorf("orbit bodies = %d, want 8", len(m.orbitView.bodies))
	}
	m, _ = update(t, m, key("tab"))
	if m.viewMode != ViewSky {
		t.Errorf("tab -> %v, want sky", m.viewMode)
	}

	m, _ = update(t, m, key("2"))
	if m.viewMode != ViewAlmanac {
		t.Errorf("2 -> %v", m.viewMode)
	}
	m, _ = update(t, m, key("s"))
	if m.viewMode != ViewSky {
		t.Errorf("s -> %v", m.viewMode)
	}
	m, _ = update(t, m, key("3"))
	if m.viewMode != ViewOrbits {
		t.Errorf("3 -> %v", m.viewMode)
	}
}

func TestModel_KeysReachActiveView(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = update(t, m, key("left"))
	if m.skyView.camAz != 170 {
		t.Errorf("sky camAz = %v, want 170", m.skyView.camAz)
	}

	m, _ = update(t, m, key("a"))
	m, _ = update(t, m, key("down"))
	if m.almanacView.selected != 1 {
		t.Errorf("almanac selected = %d, want 1", m.almanacView.selected)
	}
	if m.skyView.camAz != 170 {
		t.Error("almanac key leaked into the sky view")
	}
}

func TestModel_Quit(t *testing.T) {
	m, _ := newTestModel(t)
	for _, k := range []tea.KeyMsg{key("q"), {Type: tea.KeyCtrlC}} {
		_, cmd := update(t, m, k)
		if cmd == nil {
			t.Fatalf("%q returned no command", k.String())
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%q did not quit", k.String())
		}
	}
}

func TestModel_View(t *testing.T) {
	m, _ := newTestModel(t)
	if got := m.View(); got != "Initializing..." {
		t.Errorf("view before size = %q", got)
	}

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 48})
	view := m.View()
	for _, want := range []string{"Sky Simulation", "[1] Sky", "[2] Almanac", "2024-06-21 03:30:00 UTC", "1 min/s", "Sky View"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 24})
	view = m.View()
	if strings.Contains(view, "Sky Simulation") || !strings.Contains(view, "ls-starmap") {
		t.Error("short terminal should use the compact header")
	}

	m, _ = update(t, m, key(" "))
	if !strings.Contains(m.View(), "paused") {
		t.Error("paused clock not shown")
	}
}

func TestModel_FooterShowsEvents(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 30})

	// Sunrise at Greenwich is about 03:45 UTC; 30 one-second frames at 60x
	// cover 03:30 to 04:00.
	wall := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 30; i++ {
		m, _ = update(t, m, FrameMsg(wall.Add(time.Duration(i)*time.Second)))
	}
	events := m.snapshot.Events
	sunrise := false
	for _, e := range events {
		if e.Body == "Sun" && e.Type == state.EventRise {
			sunrise = true
		}
	}
	if !sunrise {
		t.Fatalf("no sunrise among %+v", events)
	}

	last := events[len(events)-1]
	want := last.Body + " " + strings.ToLower(string(last.Type))
	if !strings.Contains(m.renderFooter(), want) {
		t.Errorf("footer missing %q: %q", want, m.renderFooter())
	}
}

func TestFormatRate(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1, "1x"},
		{10, "10x"},
		{-10, "-10x"},
		{60, "1 min/s"},
		{300, "5 min/s"},
		{3600, "1 h/s"},
		{21600, "6 h/s"},
		{86400, "1 day/s"},
		{-86400, "-1 day/s"},
		{2.5, "2.5x"},
	}
	for _, tt := range tests {
		if got := formatRate(tt.rate); got != tt.want {
			t.Errorf("formatRate(%v) = %q, want %q", tt.rate, got, tt.want)
		}
	}
}

func TestFormatLST(t *testing.T) {
	tests := []struct {
		hours float64
		want  string
	}{
		{0, "00:00:00"},
		{6.5, "06:30:00"},
		{23.9997, "23:59:59"},
		{23.9999999, "00:00:00"},
	}
	for _, tt := range tests {
		if got := formatLST(tt.hours); got != tt.want {
			t.Errorf("formatLST(%v) = %q, want %q", tt.hours, got, tt.want)
		}
	}
}

func TestGradientColor(t *testing.T) {
	if got := gradientColor(0, 0, 10, 6); got != "#3B82F6" {
		t.Errorf("left edge = %s, want #3B82F6", got)
	}
	// Bottom rows fade toward half brightness.
	if got := gradientColor(0, 3, 10, 6); got != "#2C61B8" {
		t.Errorf("faded left edge = %s, want #2C61B8", got)
	}
}

func TestLogoLines(t *testing.T) {
	lines := logoLines()
	if len(lines) != 6 {
		t.Fatalf("logo rows = %d", len(lines))
	}
	width := len([]rune(lines[0]))
	for i, line := range lines {
		if w := len([]rune(line)); w != width {
			t.Errorf("row %d width = %d, want %d", i, w, width)
		}
	}
}
