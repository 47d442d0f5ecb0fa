// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-starmap/internal/astro"
	"github.com/litescript/ls-starmap/internal/catalog"
	"github.com/litescript/ls-starmap/internal/state"
	"github.com/litescript/ls-starmap/internal/version"
)

// ViewMode represents the current UI view.
type ViewMode int

const (
	ViewSky ViewMode = iota
	ViewAlmanac
	ViewOrbits
)

// viewCount is the number of views cycled by tab.
const viewCount = 3

// Msg types for Bubble Tea
type (
	// FrameMsg advances the simulated clock by one frame.
	FrameMsg time.Time
)

// Options configures the UI.
type Options struct {
	FrameInterval time.Duration
	MagLimit      float64 // faintest star drawn or listed
	Labels        bool    // label every body instead of only the focused one
	Location      *time.Location
	Catalog       *catalog.Catalog
	Sites         []astro.Observer // cycled by O
}

// Model is the root Bubble Tea model.
type Model struct {
	// Dependencies
	state *state.Manager
	opts  Options

	// UI state
	viewMode  ViewMode
	width     int
	height    int
	ready     bool
	statusMsg string // Feedback for the last clock command
	lastFrame time.Time
	siteIdx   int // index into opts.Sites, -1 before the first switch

	// Sub-models
	skyView     SkyViewModel
	almanacView AlmanacViewModel
	orbitView   OrbitViewModel

	snapshot state.Snapshot
}

// New creates a new root UI model.
func New(stateMgr *state.Manager, opts Options) Model {
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = 100 * time.Millisecond
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}

	m := Model{
		state:       stateMgr,
		opts:        opts,
		viewMode:    ViewSky,
		siteIdx:     -1,
		skyView:     NewSkyViewModel(opts.Catalog, opts.MagLimit, opts.Labels),
		almanacView: NewAlmanacViewModel(opts.Catalog, opts.MagLimit, opts.Location),
		orbitView:   NewOrbitViewModel(opts.Catalog),
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return frameCmd(m.opts.FrameInterval)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "1", "s":
			m.viewMode = ViewSky
		case "2", "a":
			m.viewMode = ViewAlmanac
			m.refresh()
		case "3":
			m.viewMode = ViewOrbits
			m.refresh()
		case "tab":
			m.viewMode = (m.viewMode + 1) % viewCount
			m.refresh()

		case " ":
			if m.state.TogglePause() {
				m.statusMsg = "Paused"
			} else {
				m.statusMsg = "Resumed"
			}
			m.refresh()
		case "+", "=":
			m.statusMsg = "Rate " + formatRate(m.state.Faster())
		case "-":
			m.statusMsg = "Rate " + formatRate(m.state.Slower())
		case "r":
			m.state.Reverse()
			m.statusMsg = "Rate " + formatRate(m.state.Rate())
		case "n":
			m.state.Now()
			m.statusMsg = "Clock reset to now"
			m.refresh()
		case "O":
			m.nextSite()

		default:
			cmds = append(cmds, m.updateActiveView(msg))
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		contentHeight := msg.Height - m.headerHeight() - 3
		m.skyView = m.skyView.SetSize(msg.Width, contentHeight)
		m.almanacView = m.almanacView.SetSize(msg.Width, contentHeight)
		m.orbitView = m.orbitView.SetSize(msg.Width, contentHeight)

	case FrameMsg:
		cmds = append(cmds, frameCmd(m.opts.FrameInterval))
		now := time.Time(msg)
		elapsed := m.opts.FrameInterval
		if !m.lastFrame.IsZero() {
			elapsed = now.Sub(m.lastFrame)
		}
		m.lastFrame = now

		m.state.Advance(elapsed)
		m.refresh()

	default:
		cmds = append(cmds, m.updateActiveView(msg))
	}

	return m, tea.Batch(cmds...)
}

// nextSite moves the observer to the next configured site.
func (m *Model) nextSite() {
	if len(m.opts.Sites) == 0 {
		m.statusMsg = "No sites configured"
		return
	}
	m.siteIdx = (m.siteIdx + 1) % len(m.opts.Sites)
	obs := m.opts.Sites[m.siteIdx]
	if err := m.state.SetObserver(obs); err != nil {
		m.statusMsg = "Site " + obs.Name + ": " + err.Error()
		return
	}
	m.statusMsg = "Site " + obs.Name
	m.refresh()
}

// refresh takes a new snapshot and pushes it to the views.
func (m *Model) refresh() {
	m.snapshot = m.state.Snapshot()
	m.skyView = m.skyView.UpdateData(m.snapshot)
	if m.viewMode == ViewAlmanac || m.almanacView.almanac == nil {
		m.almanacView = m.almanacView.UpdateData(m.snapshot)
	}
	if m.viewMode == ViewOrbits {
		m.orbitView = m.orbitView.UpdateData(m.snapshot)
	}
}

func (m *Model) updateActiveView(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.viewMode {
	case ViewSky:
		m.skyView, cmd = m.skyView.Update(msg)
	case ViewAlmanac:
		m.almanacView, cmd = m.almanacView.Update(msg)
	case ViewOrbits:
		m.orbitView, cmd = m.orbitView.Update(msg)
	}
	return cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var content string
	switch m.viewMode {
	case ViewSky:
		content = m.skyView.View()
	case ViewAlmanac:
		content = m.almanacView.View()
	case ViewOrbits:
		content = m.orbitView.View()
	}

	return m.renderFrame(content)
}

func (m Model) renderFrame(content string) string {
	header := m.renderHeader()
	footer := m.renderFooter()

	return header + "\n" + content + "\n" + footer
}

// compactHeight is the terminal height below which the logo is dropped.
const compactHeight = 36

func (m Model) headerHeight() int {
	if m.height < compactHeight {
		return 4
	}
	return len(logoLines()) + 6
}

func (m Model) renderHeader() string {
	if m.height < compactHeight {
		return "\n" + m.renderTitle() + "\n" + m.renderStatusLine()
	}
	return m.renderLogo() + m.renderStatusLine()
}

// logoLetters are the block glyphs spelling the logo, six rows each.
var logoLetters = [][6]string{
	{"██╗     ", "██║     ", "██║     ", "██║     ", "███████╗", "╚══════╝"},
	{"███████╗", "██╔════╝", "███████╗", "╚════██║", "███████║", "╚══════╝"},
	{"      ", "      ", "█████╗", "╚════╝", "      ", "      "},
	{"███████╗", "██╔════╝", "███████╗", "╚════██║", "███████║", "╚══════╝"},
	{"████████╗", "╚══██╔══╝", "   ██║   ", "   ██║   ", "   ██║   ", "   ╚═╝   "},
	{" █████╗ ", "██╔══██╗", "███████║", "██╔══██║", "██║  ██║", "╚═╝  ╚═╝"},
	{"██████╗ ", "██╔══██╗", "██████╔╝", "██╔══██╗", "██║  ██║", "╚═╝  ╚═╝"},
	{"███╗   ███╗", "████╗ ████║", "██╔████╔██║", "██║╚██╔╝██║", "██║ ╚═╝ ██║", "╚═╝     ╚═╝"},
	{" █████╗ ", "██╔══██╗", "███████║", "██╔══██║", "██║  ██║", "╚═╝  ╚═╝"},
	{"██████╗ ", "██╔══██╗", "██████╔╝", "██╔═══╝ ", "██║     ", "╚═╝     "},
}

// logoLines joins the letters into rows.
func logoLines() []string {
	lines := make([]string, 6)
	for row := range lines {
		var b strings.Builder
		b.WriteString("  ")
		for _, letter := range logoLetters {
			b.WriteString(letter[row])
		}
		lines[row] = b.String()
	}
	return lines
}

func (m Model) renderLogo() string {
	logo := logoLines()

	var b strings.Builder
	b.WriteString("\n")

	// Render each line with a horizontal truecolor gradient
	for row, line := range logo {
		runes := []rune(line)
		lineLen := len(runes)

		for col, r := range runes {
			color := gradientColor(col, row, lineLen, len(logo))
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
			b.WriteString(style.Render(string(r)))
		}
		b.WriteString("\n")
	}

	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	b.WriteString(muted.Render("  Sky Simulation · Planetary Ephemeris"))
	b.WriteString("\n")

	copyright := fmt.Sprintf("  (c) 2025 litescript.net | v%s", version.Version)
	b.WriteString(muted.Render(copyright))
	b.WriteString("\n\n")

	return b.String()
}

// renderTitle renders a one-line gradient title for short terminals.
func (m Model) renderTitle() string {
	title := []rune("  ls-starmap")
	var b strings.Builder
	for col, r := range title {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(gradientColor(col, 0, len(title), 1))).Bold(true)
		b.WriteString(style.Render(string(r)))
	}
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	b.WriteString(muted.Render(" v" + version.Version))
	return b.String()
}

// gradientColor returns a hex color for a position in the logo gradient.
// Creates a vibrant nebula effect: blue -> purple -> magenta -> pink
func gradientColor(col, row, width, height int) string {
	xRatio := float64(col) / float64(width)
	yRatio := float64(row) / float64(height)

	// Blue (#3B82F6) -> Purple (#8B5CF6) -> Magenta (#D946EF) -> Pink (#EC4899)
	var r, g, b float64

	if xRatio < 0.33 {
		t := xRatio / 0.33
		r = 59 + t*(139-59)
		g = 130 + t*(92-130)
		b = 246
	} else if xRatio < 0.66 {
		t := (xRatio - 0.33) / 0.33
		r = 139 + t*(217-139)
		g = 92 + t*(70-92)
		b = 246 + t*(239-246)
	} else {
		t := (xRatio - 0.66) / 0.34
		r = 217 + t*(236-217)
		g = 70 + t*(72-70)
		b = 239 + t*(153-239)
	}

	// Vertical fade: brighter at top, darker toward bottom
	brightnessFactor := 1.0 - (yRatio * 0.5)
	r *= brightnessFactor
	g *= brightnessFactor
	b *= brightnessFactor

	clamp := func(v float64) int {
		return max(0, min(255, int(v)))
	}
	return fmt.Sprintf("#%02X%02X%02X", clamp(r), clamp(g), clamp(b))
}

func (m Model) renderStatusLine() string {
	return m.renderTabs() + "\n" + m.renderClock() + "\n"
}

func (m Model) renderTabs() string {
	tabs := []string{"[1] Sky", "[2] Almanac", "[3] Orbits"}
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	var parts []string
	for i, tab := range tabs {
		if ViewMode(i) == m.viewMode {
			parts = append(parts, activeStyle.Render("▶ "+tab))
		} else {
			parts = append(parts, dimStyle.Render("  "+tab))
		}
	}
	return "  " + strings.Join(parts, "  ")
}

// renderClock shows simulated time, rate and direction.
func (m Model) renderClock() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	clockStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))

	snap := m.snapshot
	clock := clockStyle.Render(snap.Time.In(m.opts.Location).Format("2006-01-02 15:04:05 MST"))

	var mode string
	switch {
	case snap.Paused:
		mode = m.renderShimmerText("❚❚ paused")
	case snap.Rate < 0:
		mode = accentStyle.Render("◀ " + formatRate(snap.Rate))
	default:
		mode = accentStyle.Render("▶ " + formatRate(snap.Rate))
	}

	lst := dimStyle.Render(fmt.Sprintf("LST %s", formatLST(snap.LSTHours)))
	return "  " + clock + "  " + mode + "  " + lst
}

func (m Model) renderFooter() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))

	// Animated spinner frames
	spinnerFrames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	spinner := spinnerFrames[m.snapshot.Frames%len(spinnerFrames)]

	var status string
	switch {
	case m.snapshot.LastError != nil:
		status = errorStyle.Render("ERROR: " + m.snapshot.LastError.Error())
	case len(m.snapshot.Events) > 0:
		e := m.snapshot.Events[len(m.snapshot.Events)-1]
		status = accentStyle.Render(spinner) + dimStyle.Render(fmt.Sprintf(" %s %s %s az %.0f°",
			e.Body, strings.ToLower(string(e.Type)), e.Time.In(m.opts.Location).Format("15:04"), e.AzDeg))
	default:
		status = accentStyle.Render(spinner) + dimStyle.Render(" no horizon events yet")
	}

	var help string
	switch m.viewMode {
	case ViewSky:
		help = dimStyle.Render("arrows: pan | j/k: focus | l: labels | space: pause | +/-: rate | r: reverse | n: now | O: site")
	case ViewAlmanac:
		help = dimStyle.Render("↑↓: select | space: pause | +/-: rate | r: reverse | n: now | tab: switch view")
	case ViewOrbits:
		help = dimStyle.Render("arrows: pan | j/k: focus | i/o: zoom | z: scale | c: center | t: stars | +/-: rate")
	}

	footer := "  " + status + "  " + dimStyle.Render("|") + "  " + help

	if m.statusMsg != "" {
		footer += "\n  " + dimStyle.Render(m.statusMsg)
	}

	return footer
}

// formatRate renders a clock multiplier as "60x" or "1 day/s".
func formatRate(rate float64) string {
	sign := ""
	if rate < 0 {
		sign = "-"
	}
	speed := math.Abs(rate)
	switch {
	case speed >= 86400 && math.Mod(speed, 86400) == 0:
		return fmt.Sprintf("%s%.0f day/s", sign, speed/86400)
	case speed >= 3600 && math.Mod(speed, 3600) == 0:
		return fmt.Sprintf("%s%.0f h/s", sign, speed/3600)
	case speed >= 60 && math.Mod(speed, 60) == 0:
		return fmt.Sprintf("%s%.0f min/s", sign, speed/60)
	default:
		return fmt.Sprintf("%s%gx", sign, speed)
	}
}

// formatLST renders sidereal hours as hh:mm:ss.
func formatLST(hours float64) string {
	secs := int(math.Round(hours*3600)) % 86400
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs/60%60, secs%60)
}

func frameCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}

// renderShimmerText renders text with a subtle moving shine effect.
func (m Model) renderShimmerText(text string) string {
	runes := []rune(text)
	textLen := len(runes)
	if textLen == 0 {
		return ""
	}

	pos := m.snapshot.Frames % (textLen + 8) // padding for smooth entry/exit

	var result strings.Builder

	for i, r := range runes {
		dist := i - pos + 4
		if dist < 0 {
			dist = -dist
		}

		// Base is dim purple, highlight is brighter lavender
		var r8, g8, b8 int
		if dist <= 1 {
			r8, g8, b8 = 180, 160, 220
		} else if dist <= 3 {
			r8, g8, b8 = 140, 120, 180
		} else if dist <= 5 {
			r8, g8, b8 = 110, 90, 150
		} else {
			r8, g8, b8 = 80, 70, 120
		}

		hexColor := fmt.Sprintf("#%02X%02X%02X", r8, g8, b8)
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(hexColor))
		result.WriteString(style.Render(string(r)))
	}

	return result.String()
}
