package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-starmap/internal/almanac"
	"github.com/litescript/ls-starmap/internal/astro"
	"github.com/litescript/ls-starmap/internal/catalog"
	"github.com/litescript/ls-starmap/internal/state"
)

// almanacRefresh is how far simulated time may drift before the table is
// rebuilt. Rise and set times only change meaningfully over minutes.
const almanacRefresh = time.Minute

// AlmanacViewModel lists every body with its position and daily events,
// plus an elevation sparkline for the selected row.
type AlmanacViewModel struct {
	width  int
	height int

	loc   *time.Location
	stars []catalog.Star

	almanac  *almanac.Almanac
	builtFor astro.Observer
	err      error

	selected int
	scroll   int

	trace    *almanac.ElevationTrace
	traceFor string
	traceErr error
}

// NewAlmanacViewModel creates an almanac view listing stars brighter than
// magLimit after the solar-system bodies. Times are shown in loc.
func NewAlmanacViewModel(cat *catalog.Catalog, magLimit float64, loc *time.Location) AlmanacViewModel {
	if loc == nil {
		loc = time.Local
	}
	m := AlmanacViewModel{loc: loc}
	if cat != nil {
		m.stars = cat.Brighter(magLimit)
	}
	return m
}

// SetSize updates the viewport size.
func (m AlmanacViewModel) SetSize(width, height int) AlmanacViewModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData rebuilds the table when simulated time has moved far enough or
// the observer changed.
func (m AlmanacViewModel) UpdateData(snapshot state.Snapshot) AlmanacViewModel {
	if !m.stale(snapshot) {
		return m
	}

	a, err := almanac.Build(snapshot.Time.In(m.loc), snapshot.Observer, m.stars)
	m.builtFor = snapshot.Observer
	if err != nil {
		// Keep the time so an out-of-range clock is not retried every frame
		m.err = err
		m.almanac = &almanac.Almanac{Time: snapshot.Time, Observer: snapshot.Observer}
		m.trace = nil
		return m
	}
	m.err = nil
	m.almanac = a
	if m.selected >= len(a.Entries) {
		m.selected = 0
	}
	return m.refreshTrace()
}

func (m AlmanacViewModel) stale(snapshot state.Snapshot) bool {
	if m.almanac == nil || m.builtFor != snapshot.Observer {
		return true
	}
	d := snapshot.Time.Sub(m.almanac.Time)
	return d >= almanacRefresh || d <= -almanacRefresh
}

// refreshTrace recomputes the sparkline for the selected entry.
func (m AlmanacViewModel) refreshTrace() AlmanacViewModel {
	e, ok := m.selectedEntry()
	if !ok {
		m.trace = nil
		return m
	}

	target, err := m.target(e)
	if err != nil {
		m.trace, m.traceErr = nil, err
		return m
	}
	m.trace, m.traceErr = almanac.ComputeElevationTrace(target, m.almanac.Observer, m.almanac.Time,
		almanac.DefaultTraceWindow, almanac.DefaultTraceStep)
	m.traceFor = e.Name
	return m
}

// target maps an entry back to something that can be positioned.
func (m AlmanacViewModel) target(e almanac.Entry) (almanac.Target, error) {
	if e.Kind != almanac.KindStar {
		return almanac.BodyTarget(e.Name)
	}
	for _, s := range m.stars {
		if s.Label() == e.Name {
			return almanac.StarTarget(s), nil
		}
	}
	return almanac.Target{}, fmt.Errorf("%w: %s", almanac.ErrUnknownTarget, e.Name)
}

func (m AlmanacViewModel) selectedEntry() (almanac.Entry, bool) {
	if m.almanac == nil || m.selected < 0 || m.selected >= len(m.almanac.Entries) {
		return almanac.Entry{}, false
	}
	return m.almanac.Entries[m.selected], true
}

// Update handles messages.
func (m AlmanacViewModel) Update(msg tea.Msg) (AlmanacViewModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			m = m.moveSelection(-1)
		case "down", "j":
			m = m.moveSelection(1)
		case "home", "g":
			m = m.moveSelection(-len(m.entries()))
		case "end", "G":
			m = m.moveSelection(len(m.entries()))
		}
	}
	return m, nil
}

func (m AlmanacViewModel) entries() []almanac.Entry {
	if m.almanac == nil {
		return nil
	}
	return m.almanac.Entries
}

func (m AlmanacViewModel) moveSelection(delta int) AlmanacViewModel {
	n := len(m.entries())
	if n == 0 {
		return m
	}
	m.selected = max(0, min(n-1, m.selected+delta))

	rows := m.tableRows()
	if m.selected < m.scroll {
		m.scroll = m.selected
	} else if m.selected >= m.scroll+rows {
		m.scroll = m.selected - rows + 1
	}
	return m.refreshTrace()
}

// tableRows is the number of entry rows that fit beside the header and the
// detail panel.
func (m AlmanacViewModel) tableRows() int {
	return max(3, m.height-9)
}

// View renders the almanac.
func (m AlmanacViewModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("135"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))

	if m.almanac == nil {
		return dimStyle.Render("Computing almanac...")
	}

	var b strings.Builder
	a := m.almanac

	header := fmt.Sprintf("%s | %s | LST %s",
		titleStyle.Render("Almanac"),
		a.Time.In(m.loc).Format("Mon 2006-01-02 15:04 MST"),
		astro.FormatRA(a.LSTHours))
	if a.MoonPhase.Name != "" {
		header += dimStyle.Render(fmt.Sprintf(" | Moon: %s, %.0f%% lit", a.MoonPhase.Name, a.MoonPhase.Illumination*100))
	}
	b.WriteString(header + "\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("ERROR: "+m.err.Error()) + "\n")
		return b.String()
	}

	b.WriteString(dimStyle.Render(fmt.Sprintf("  %-12s %7s %-4s %6s %5s  %-11s %-5s %-5s  %s",
		"Name", "Alt", "", "Az", "Mag", "Rise", "Peak", "Set", "Sun")) + "\n")

	end := min(len(a.Entries), m.scroll+m.tableRows())
	for i := m.scroll; i < end; i++ {
		b.WriteString(m.renderRow(a.Entries[i], i == m.selected))
		b.WriteString("\n")
	}

	b.WriteString(m.renderDetail())
	return b.String()
}

func (m AlmanacViewModel) renderRow(e almanac.Entry, selected bool) string {
	rise, set := "--", "--"
	switch {
	case e.Events.Circumpolar:
		rise, set = "circumpolar", ""
	case e.Events.NeverRises:
		rise, set = "never rises", ""
	default:
		if e.Events.Rise != nil {
			rise = e.Events.Rise.In(m.loc).Format("15:04")
		}
		if e.Events.Set != nil {
			set = e.Events.Set.In(m.loc).Format("15:04")
		}
	}

	sun := ""
	if e.Kind != almanac.KindSun {
		sun = fmt.Sprintf("%.0f°", e.SunSepDeg)
	}

	name := e.Name
	if r := []rune(name); len(r) > 12 {
		name = string(r[:10]) + ".."
	}

	row := fmt.Sprintf("%-12s %6.1f° %-4s %5.1f° %5.1f  %-11s %-5s %-5s  %s",
		name,
		e.Horizontal.AltDeg,
		astro.FormatAzimuth(e.Horizontal.AzDeg),
		e.Horizontal.AzDeg,
		e.Body.Magnitude,
		rise,
		e.Events.Transit.In(m.loc).Format("15:04"),
		set,
		sun,
	)

	if selected {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(colorBodyFocused)).Bold(true)
		return style.Render("▶ " + row)
	}
	return "  " + colorByTier(e.Tier(), row)
}

func (m AlmanacViewModel) renderDetail() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("135")).Bold(true)

	var b strings.Builder
	b.WriteString("\n")

	if e, ok := m.selectedEntry(); ok {
		line := labelStyle.Render(e.Name) + "  " + RenderCurrentElevation(e.Horizontal.AltDeg) +
			"  " + RenderVisibilityPanel(e, m.loc)
		if e.Kind != almanac.KindSun {
			line += "  " + RenderSunSeparation(e.SunSepDeg)
		}
		b.WriteString(line + "\n")

		switch {
		case m.traceErr != nil:
			b.WriteString(dimStyle.Render("trace: "+m.traceErr.Error()) + "\n")
		case m.trace != nil && m.traceFor == e.Name:
			width := max(10, min(72, m.width-16))
			b.WriteString(dimStyle.Render("±12h ") + m.trace.RenderSparkline(width, m.almanac.Time) + "\n")
		}
	}

	b.WriteString(RenderVisibilityBar(m.entries()))
	return b.String()
}
